package query

import (
	"github.com/emberdb/ember/scan"
	"github.com/emberdb/ember/types"
)

// SortField is a single sort criterion: a field name plus its direction.
type SortField struct {
	Field      string
	Descending bool
}

// RecordComparator is a comparator for scans based on a list of sort fields.
type RecordComparator struct {
	order []SortField
}

// NewRecordComparator creates a new ascending comparator using the specified fields.
func NewRecordComparator(fields []string) *RecordComparator {
	order := make([]SortField, len(fields))
	for i, field := range fields {
		order[i] = SortField{Field: field}
	}
	return &RecordComparator{order: order}
}

// NewRecordComparatorFromOrder creates a comparator honoring each sort
// field's direction.
func NewRecordComparatorFromOrder(order []SortField) *RecordComparator {
	return &RecordComparator{order: order}
}

// Compare compares the current records of two scans based on the specified fields. Expects supported types.
func (rc *RecordComparator) Compare(s1, s2 scan.Scan) int {
	for _, sortField := range rc.order {
		// Get values for the current field
		val1, err1 := s1.GetVal(sortField.Field)
		val2, err2 := s2.GetVal(sortField.Field)

		if err1 != nil || err2 != nil {
			panic("Error retrieving field values for comparison")
		}

		// Compare using CompareSupportedTypes with equality and ordering operators
		result := 0
		if types.CompareSupportedTypes(val1, val2, types.LT) {
			result = -1 // val1 < val2
		} else if types.CompareSupportedTypes(val1, val2, types.GT) {
			result = 1 // val1 > val2
		}
		if result == 0 {
			// The values are equal for this field; continue to the next one.
			continue
		}
		if sortField.Descending {
			result = -result
		}
		return result
	}
	return 0 // All fields are equal
}
