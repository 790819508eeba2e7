package btree

import (
	"fmt"
	"math"
	"time"

	"github.com/emberdb/ember/file"
	"github.com/emberdb/ember/index"
	"github.com/emberdb/ember/index/common"
	"github.com/emberdb/ember/record"
	"github.com/emberdb/ember/tx"
	"github.com/emberdb/ember/types"
)

var _ index.Index = (*Index)(nil)

const (
	leafSuffix      = "_leaf"
	directorySuffix = "_directory"
)

// Index is a B-tree static index over a single table's data file: one
// leaf-block file holding (value, RID) pairs in key order, and a
// directory-block file layered above it pointing down to the right leaf.
type Index struct {
	t          *tx.Transaction
	dirLayout  *record.Layout
	leafLayout *record.Layout
	leafFile   string
	leaf       *Leaf
	root       *file.BlockId
}

// NewIndex opens the B-tree backing indexName, creating its leaf and
// directory files (and the directory's initial root block) if this is the
// first time the index has been opened.
func NewIndex(t *tx.Transaction, indexName string, leafLayout *record.Layout) (index.Index, error) {
	idx := &Index{
		t:          t,
		leafFile:   indexName + leafSuffix,
		leafLayout: leafLayout,
	}

	if err := idx.ensureLeafFile(); err != nil {
		return nil, err
	}
	if err := idx.ensureDirectoryFile(indexName + directorySuffix); err != nil {
		return nil, err
	}
	return idx, nil
}

func (idx *Index) ensureLeafFile() error {
	size, err := idx.t.Size(idx.leafFile)
	if err != nil {
		return err
	}
	if size > 0 {
		return nil
	}

	block, err := idx.t.Append(idx.leafFile)
	if err != nil {
		return err
	}
	page, err := NewPage(idx.t, block, idx.leafLayout)
	if err != nil {
		return err
	}
	defer page.Close()
	return page.format(block, -1)
}

// ensureDirectoryFile builds the two-column schema (child block, data
// value) shared by every directory block and, the first time the index is
// opened, formats the directory file's root block with one placeholder
// entry.
func (idx *Index) ensureDirectoryFile(dirFile string) error {
	schema := record.NewSchema()
	schema.Add(common.BlockField, idx.leafLayout.Schema())
	schema.Add(common.DataValueField, idx.leafLayout.Schema())
	idx.dirLayout = record.NewLayout(schema)
	idx.root = file.NewBlockId(dirFile, 0)

	size, err := idx.t.Size(dirFile)
	if err != nil {
		return err
	}
	if size > 0 {
		return nil
	}

	if _, err := idx.t.Append(dirFile); err != nil {
		return err
	}
	root, err := NewPage(idx.t, idx.root, idx.dirLayout)
	if err != nil {
		return err
	}
	defer root.Close()
	if err := root.format(idx.root, 0); err != nil {
		return err
	}

	zero, err := zeroValueFor(schema.Type(common.DataValueField))
	if err != nil {
		return err
	}
	return root.InsertDirectory(0, zero, 0)
}

// zeroValueFor returns the placeholder value stored in a freshly formatted
// root block's lone entry, typed to match the index's search key field.
func zeroValueFor(fieldType types.SchemaType) (any, error) {
	switch fieldType {
	case types.Integer:
		return 0, nil
	case types.Varchar:
		return "", nil
	case types.Boolean:
		return false, nil
	case types.Long:
		return int64(0), nil
	case types.Short:
		return int16(0), nil
	case types.Date:
		return time.Time{}, nil
	default:
		return nil, fmt.Errorf("unsupported type: %v", fieldType)
	}
}

// BeforeFirst descends the directory to the leaf block that could hold
// searchKey and parks the leaf cursor just before its first matching entry.
func (idx *Index) BeforeFirst(searchKey any) error {
	idx.Close()

	root, err := NewDirectory(idx.t, idx.root, idx.dirLayout)
	if err != nil {
		return err
	}
	leafBlockNum, err := root.Search(searchKey)
	root.Close()
	if err != nil {
		return err
	}

	leafBlock := file.NewBlockId(idx.leafFile, leafBlockNum)
	idx.leaf, err = NewLeaf(idx.t, leafBlock, idx.leafLayout, searchKey)
	return err
}

func (idx *Index) Next() (bool, error) {
	return idx.leaf.Next()
}

func (idx *Index) GetDataRecordID() (*record.ID, error) {
	return idx.leaf.GetDataRID()
}

// Insert places dataRID under dataVal in the appropriate leaf block,
// propagating a split up through the directory (and building a new root,
// if the root itself splits) as needed.
func (idx *Index) Insert(dataVal any, dataRID *record.ID) error {
	if err := idx.BeforeFirst(dataVal); err != nil {
		return err
	}

	split, err := idx.leaf.Insert(dataRID)
	idx.leaf.Close()
	if err != nil {
		return err
	}
	if split == nil {
		return nil
	}

	root, err := NewDirectory(idx.t, idx.root, idx.dirLayout)
	if err != nil {
		return err
	}

	rootSplit, err := root.Insert(split)
	if err != nil {
		return err
	}
	if rootSplit != nil {
		return root.MakeNewRoot(rootSplit)
	}
	root.Close()
	return nil
}

func (idx *Index) Delete(dataVal any, dataRID *record.ID) error {
	if err := idx.BeforeFirst(dataVal); err != nil {
		return err
	}
	if err := idx.leaf.Delete(dataRID); err != nil {
		return err
	}
	idx.leaf.Close()
	return nil
}

func (idx *Index) Close() {
	if idx.leaf != nil {
		idx.leaf.Close()
	}
}

// SearchCost estimates the block accesses needed to find every record
// with a given search key: roughly the B-tree's height plus one leaf read.
func (idx *Index) SearchCost(numBlocks, recordsPerBlock int) int {
	return 1 + int(math.Log(float64(numBlocks))/math.Log(float64(recordsPerBlock)))
}
