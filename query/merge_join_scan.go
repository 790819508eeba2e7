package query

import (
	"github.com/emberdb/ember/scan"
	"github.com/emberdb/ember/types"
	"time"
)

var _ scan.Scan = (*MergeJoinScan)(nil)

// MergeJoinScan is the scan for the merge join operator. Both inputs must
// be sorted on their join field; the right side must be a SortScan so the
// current group of matching records can be revisited.
type MergeJoinScan struct {
	scan1      scan.Scan
	scan2      *SortScan
	fieldName1 string
	fieldName2 string
	joinValue  any
}

// NewMergeJoinScan creates a merge join scan over the two sorted scans.
func NewMergeJoinScan(s1 scan.Scan, s2 *SortScan, fieldName1, fieldName2 string) (*MergeJoinScan, error) {
	mjs := &MergeJoinScan{
		scan1:      s1,
		scan2:      s2,
		fieldName1: fieldName1,
		fieldName2: fieldName2,
	}
	if err := mjs.BeforeFirst(); err != nil {
		return nil, err
	}
	return mjs, nil
}

// BeforeFirst positions both scans before their first records.
func (mjs *MergeJoinScan) BeforeFirst() error {
	mjs.joinValue = nil
	if err := mjs.scan1.BeforeFirst(); err != nil {
		return err
	}
	return mjs.scan2.BeforeFirst()
}

// Next moves to the next joined record.
// If the next RHS record has the same join value, move to it.
// Otherwise, if the next LHS record has the same join value, reposition the
// RHS scan back to the first record having that join value.
// Otherwise, repeatedly advance the scan with the smallest value until a
// common join value is found. When either scan runs out, return false.
func (mjs *MergeJoinScan) Next() (bool, error) {
	hasMore2, err := mjs.scan2.Next()
	if err != nil {
		return false, err
	}
	if hasMore2 && mjs.joinValue != nil {
		val2, err := mjs.scan2.GetVal(mjs.fieldName2)
		if err != nil {
			return false, err
		}
		if types.CompareSupportedTypes(val2, mjs.joinValue, types.EQ) {
			return true, nil
		}
	}

	hasMore1, err := mjs.scan1.Next()
	if err != nil {
		return false, err
	}
	if hasMore1 && mjs.joinValue != nil {
		val1, err := mjs.scan1.GetVal(mjs.fieldName1)
		if err != nil {
			return false, err
		}
		if types.CompareSupportedTypes(val1, mjs.joinValue, types.EQ) {
			if err := mjs.scan2.RestorePosition(); err != nil {
				return false, err
			}
			return true, nil
		}
	}

	// Look for a new join value by advancing the scan with the smaller value.
	for hasMore1 && hasMore2 {
		val1, err := mjs.scan1.GetVal(mjs.fieldName1)
		if err != nil {
			return false, err
		}
		val2, err := mjs.scan2.GetVal(mjs.fieldName2)
		if err != nil {
			return false, err
		}

		switch {
		case types.CompareSupportedTypes(val1, val2, types.LT):
			if hasMore1, err = mjs.scan1.Next(); err != nil {
				return false, err
			}
		case types.CompareSupportedTypes(val1, val2, types.GT):
			if hasMore2, err = mjs.scan2.Next(); err != nil {
				return false, err
			}
		default:
			mjs.scan2.SavePosition()
			mjs.joinValue = val2
			return true, nil
		}
	}

	return false, nil
}

// Close closes both underlying scans.
func (mjs *MergeJoinScan) Close() {
	mjs.scan1.Close()
	mjs.scan2.Close()
}

// HasField returns true if the specified field is in either underlying scan.
func (mjs *MergeJoinScan) HasField(fieldName string) bool {
	return mjs.scan1.HasField(fieldName) || mjs.scan2.HasField(fieldName)
}

// GetVal returns the value of the specified field in the current record.
func (mjs *MergeJoinScan) GetVal(fieldName string) (any, error) {
	if mjs.scan1.HasField(fieldName) {
		return mjs.scan1.GetVal(fieldName)
	}
	return mjs.scan2.GetVal(fieldName)
}

// GetInt returns the integer value of the specified field in the current record.
func (mjs *MergeJoinScan) GetInt(fieldName string) (int, error) {
	if mjs.scan1.HasField(fieldName) {
		return mjs.scan1.GetInt(fieldName)
	}
	return mjs.scan2.GetInt(fieldName)
}

// GetLong returns the long value of the specified field in the current record.
func (mjs *MergeJoinScan) GetLong(fieldName string) (int64, error) {
	if mjs.scan1.HasField(fieldName) {
		return mjs.scan1.GetLong(fieldName)
	}
	return mjs.scan2.GetLong(fieldName)
}

// GetShort returns the short value of the specified field in the current record.
func (mjs *MergeJoinScan) GetShort(fieldName string) (int16, error) {
	if mjs.scan1.HasField(fieldName) {
		return mjs.scan1.GetShort(fieldName)
	}
	return mjs.scan2.GetShort(fieldName)
}

// GetString returns the string value of the specified field in the current record.
func (mjs *MergeJoinScan) GetString(fieldName string) (string, error) {
	if mjs.scan1.HasField(fieldName) {
		return mjs.scan1.GetString(fieldName)
	}
	return mjs.scan2.GetString(fieldName)
}

// GetBool returns the boolean value of the specified field in the current record.
func (mjs *MergeJoinScan) GetBool(fieldName string) (bool, error) {
	if mjs.scan1.HasField(fieldName) {
		return mjs.scan1.GetBool(fieldName)
	}
	return mjs.scan2.GetBool(fieldName)
}

// GetDate returns the date value of the specified field in the current record.
func (mjs *MergeJoinScan) GetDate(fieldName string) (time.Time, error) {
	if mjs.scan1.HasField(fieldName) {
		return mjs.scan1.GetDate(fieldName)
	}
	return mjs.scan2.GetDate(fieldName)
}
