package hash

import (
	"fmt"

	"github.com/emberdb/ember/index"
	"github.com/emberdb/ember/index/common"
	"github.com/emberdb/ember/record"
	"github.com/emberdb/ember/table"
	"github.com/emberdb/ember/tx"
	"github.com/emberdb/ember/utils"
)

// bucketCount is fixed rather than computed from table size: this index
// never rehashes, so a search always costs exactly one bucket scan
// regardless of how the underlying table has grown.
const bucketCount = 100

var _ index.Index = (*Index)(nil)

// Index is a static hash index: every distinct search key maps to one of
// bucketCount buckets, each of which is its own heap-file table holding
// (block, slot, value) rows for every key that hashed there.
type Index struct {
	t      *tx.Transaction
	name   string
	layout *record.Layout
	key    any
	bucket *table.Scan
}

func NewIndex(t *tx.Transaction, name string, layout *record.Layout) index.Index {
	return &Index{t: t, name: name, layout: layout}
}

func bucketTable(indexName string, key any) (string, error) {
	h, err := utils.HashValue(key)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d", indexName, h%bucketCount), nil
}

// BeforeFirst closes whatever bucket scan is open and opens the one that
// key hashes to.
func (idx *Index) BeforeFirst(key any) error {
	idx.Close()
	idx.key = key

	tableName, err := bucketTable(idx.name, key)
	if err != nil {
		return err
	}
	idx.bucket, err = table.NewTableScan(idx.t, tableName, idx.layout)
	return err
}

// Next scans the current bucket for the next row whose stored value equals
// this index's search key — a hash index must recheck the value itself
// since bucket membership only guarantees a matching hash, not a match.
func (idx *Index) Next() (bool, error) {
	for {
		hasNext, err := idx.bucket.Next()
		if err != nil || !hasNext {
			return false, err
		}
		val, err := idx.bucket.GetVal(common.DataValueField)
		if err != nil {
			return false, err
		}
		if val == idx.key {
			return true, nil
		}
	}
}

func (idx *Index) GetDataRecordID() (*record.ID, error) {
	blockNum, err := idx.bucket.GetInt(common.BlockField)
	if err != nil {
		return nil, err
	}
	slot, err := idx.bucket.GetInt(common.IDField)
	if err != nil {
		return nil, err
	}
	return record.NewID(blockNum, slot), nil
}

func (idx *Index) Insert(val any, rid *record.ID) error {
	if err := idx.BeforeFirst(val); err != nil {
		return err
	}
	if err := idx.bucket.Insert(); err != nil {
		return err
	}
	if err := idx.bucket.SetInt(common.BlockField, rid.BlockNumber()); err != nil {
		return err
	}
	if err := idx.bucket.SetInt(common.IDField, rid.Slot()); err != nil {
		return err
	}
	return idx.bucket.SetVal(common.DataValueField, val)
}

// Delete scans the bucket linearly for the row carrying rid and removes
// it; a miss is not an error.
func (idx *Index) Delete(val any, rid *record.ID) error {
	if err := idx.BeforeFirst(val); err != nil {
		return err
	}

	for {
		hasNext, err := idx.bucket.Next()
		if err != nil {
			return err
		}
		if !hasNext {
			return nil
		}
		found, err := idx.GetDataRecordID()
		if err != nil {
			return err
		}
		if found.Equals(rid) {
			return idx.bucket.Delete()
		}
	}
}

func (idx *Index) Close() {
	if idx.bucket != nil {
		idx.bucket.Close()
		idx.bucket = nil
	}
}

// SearchCost assumes an even key distribution across buckets, so the cost
// of a lookup is just the size of one bucket.
func SearchCost(numBlocks, recordsPerBucket int) int {
	return numBlocks / bucketCount
}
