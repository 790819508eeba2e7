package query

import (
	"github.com/emberdb/ember/materialize"
	"github.com/emberdb/ember/scan"
	"github.com/emberdb/ember/types"
	"time"
)

var _ scan.Scan = (*HashJoinScan)(nil)

// HashJoinScan is the scan for the hash join operator. Both inputs have
// already been partitioned on their join fields; records can only join
// within the same partition pair, so each pair is nested-loop joined in
// turn.
type HashJoinScan struct {
	partitions1 []*materialize.TempTable
	partitions2 []*materialize.TempTable
	fieldName1  string
	fieldName2  string

	currentPartition int
	scan1            scan.UpdateScan
	scan2            scan.UpdateScan
	lhsActive        bool
}

// NewHashJoinScan creates a hash join scan over the two partition lists.
// Both lists must have the same length.
func NewHashJoinScan(partitions1, partitions2 []*materialize.TempTable, fieldName1, fieldName2 string) (*HashJoinScan, error) {
	hjs := &HashJoinScan{
		partitions1: partitions1,
		partitions2: partitions2,
		fieldName1:  fieldName1,
		fieldName2:  fieldName2,
	}
	if err := hjs.BeforeFirst(); err != nil {
		return nil, err
	}
	return hjs, nil
}

// BeforeFirst positions the scan before the first partition pair.
func (hjs *HashJoinScan) BeforeFirst() error {
	hjs.closePartitionScans()
	hjs.currentPartition = -1
	hjs.lhsActive = false
	return nil
}

// Next moves to the next joined record: the next record of the current
// right partition matching the current left record, else the next left
// record, else the next partition pair.
func (hjs *HashJoinScan) Next() (bool, error) {
	for {
		// No partition pair open: open the next one.
		if hjs.scan1 == nil {
			hasMore, err := hjs.openNextPartition()
			if err != nil || !hasMore {
				return false, err
			}
		}

		// No current left record: advance the left scan.
		if !hjs.lhsActive {
			hasLhs, err := hjs.scan1.Next()
			if err != nil {
				return false, err
			}
			if !hasLhs {
				// Left partition exhausted; move to the next pair.
				hjs.closePartitionScans()
				continue
			}
			hjs.lhsActive = true
			if err := hjs.scan2.BeforeFirst(); err != nil {
				return false, err
			}
		}

		// Advance the right scan to the next matching record.
		for {
			hasRhs, err := hjs.scan2.Next()
			if err != nil {
				return false, err
			}
			if !hasRhs {
				hjs.lhsActive = false
				break
			}

			val1, err := hjs.scan1.GetVal(hjs.fieldName1)
			if err != nil {
				return false, err
			}
			val2, err := hjs.scan2.GetVal(hjs.fieldName2)
			if err != nil {
				return false, err
			}
			if types.CompareSupportedTypes(val1, val2, types.EQ) {
				return true, nil
			}
		}
	}
}

func (hjs *HashJoinScan) openNextPartition() (bool, error) {
	hjs.currentPartition++
	if hjs.currentPartition >= len(hjs.partitions1) {
		return false, nil
	}

	var err error
	if hjs.scan1, err = hjs.partitions1[hjs.currentPartition].Open(); err != nil {
		return false, err
	}
	if hjs.scan2, err = hjs.partitions2[hjs.currentPartition].Open(); err != nil {
		hjs.scan1.Close()
		hjs.scan1 = nil
		return false, err
	}
	hjs.lhsActive = false
	return true, nil
}

func (hjs *HashJoinScan) closePartitionScans() {
	if hjs.scan1 != nil {
		hjs.scan1.Close()
		hjs.scan1 = nil
	}
	if hjs.scan2 != nil {
		hjs.scan2.Close()
		hjs.scan2 = nil
	}
	hjs.lhsActive = false
}

// Close closes any open partition scans.
func (hjs *HashJoinScan) Close() {
	hjs.closePartitionScans()
}

// HasField returns true if the specified field is in either input.
func (hjs *HashJoinScan) HasField(fieldName string) bool {
	if hjs.scan1 == nil || hjs.scan2 == nil {
		return false
	}
	return hjs.scan1.HasField(fieldName) || hjs.scan2.HasField(fieldName)
}

// GetVal returns the value of the specified field in the current record.
func (hjs *HashJoinScan) GetVal(fieldName string) (any, error) {
	if hjs.scan1.HasField(fieldName) {
		return hjs.scan1.GetVal(fieldName)
	}
	return hjs.scan2.GetVal(fieldName)
}

// GetInt returns the integer value of the specified field in the current record.
func (hjs *HashJoinScan) GetInt(fieldName string) (int, error) {
	if hjs.scan1.HasField(fieldName) {
		return hjs.scan1.GetInt(fieldName)
	}
	return hjs.scan2.GetInt(fieldName)
}

// GetLong returns the long value of the specified field in the current record.
func (hjs *HashJoinScan) GetLong(fieldName string) (int64, error) {
	if hjs.scan1.HasField(fieldName) {
		return hjs.scan1.GetLong(fieldName)
	}
	return hjs.scan2.GetLong(fieldName)
}

// GetShort returns the short value of the specified field in the current record.
func (hjs *HashJoinScan) GetShort(fieldName string) (int16, error) {
	if hjs.scan1.HasField(fieldName) {
		return hjs.scan1.GetShort(fieldName)
	}
	return hjs.scan2.GetShort(fieldName)
}

// GetString returns the string value of the specified field in the current record.
func (hjs *HashJoinScan) GetString(fieldName string) (string, error) {
	if hjs.scan1.HasField(fieldName) {
		return hjs.scan1.GetString(fieldName)
	}
	return hjs.scan2.GetString(fieldName)
}

// GetBool returns the boolean value of the specified field in the current record.
func (hjs *HashJoinScan) GetBool(fieldName string) (bool, error) {
	if hjs.scan1.HasField(fieldName) {
		return hjs.scan1.GetBool(fieldName)
	}
	return hjs.scan2.GetBool(fieldName)
}

// GetDate returns the date value of the specified field in the current record.
func (hjs *HashJoinScan) GetDate(fieldName string) (time.Time, error) {
	if hjs.scan1.HasField(fieldName) {
		return hjs.scan1.GetDate(fieldName)
	}
	return hjs.scan2.GetDate(fieldName)
}
