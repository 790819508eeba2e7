package plan_impl

import (
	"fmt"

	"github.com/emberdb/ember/plan"
	"github.com/emberdb/ember/query"
	"github.com/emberdb/ember/record"
	"github.com/emberdb/ember/scan"
	"github.com/emberdb/ember/tx"
)

var _ plan.Plan = (*MergeJoinPlan)(nil)

// MergeJoinPlan implements the merge join operator: both inputs are sorted
// on their join fields and merged in a single pass.
type MergeJoinPlan struct {
	plan1      plan.Plan
	plan2      plan.Plan
	fieldName1 string
	fieldName2 string
	schema     *record.Schema
}

// NewMergeJoinPlan creates a merge join plan for the two specified queries,
// joined on equality of the two specified fields.
func NewMergeJoinPlan(transaction *tx.Transaction, p1, p2 plan.Plan, fieldName1, fieldName2 string) *MergeJoinPlan {
	schema := record.NewSchema()
	schema.AddAll(p1.Schema())
	schema.AddAll(p2.Schema())

	return &MergeJoinPlan{
		plan1:      NewSortPlan(transaction, p1, []string{fieldName1}),
		plan2:      NewSortPlan(transaction, p2, []string{fieldName2}),
		fieldName1: fieldName1,
		fieldName2: fieldName2,
		schema:     schema,
	}
}

// Open sorts both underlying queries on their join field and returns a
// merge join scan over the two sorted results.
func (mjp *MergeJoinPlan) Open() (scan.Scan, error) {
	scan1, err := mjp.plan1.Open()
	if err != nil {
		return nil, err
	}

	scan2, err := mjp.plan2.Open()
	if err != nil {
		scan1.Close()
		return nil, err
	}
	sortScan2, ok := scan2.(*query.SortScan)
	if !ok {
		scan1.Close()
		scan2.Close()
		return nil, fmt.Errorf("merge join requires a sorted right-hand input")
	}

	return query.NewMergeJoinScan(scan1, sortScan2, mjp.fieldName1, mjp.fieldName2)
}

// BlocksAccessed estimates the number of block accesses: one pass over
// each sorted input.
func (mjp *MergeJoinPlan) BlocksAccessed() int {
	return mjp.plan1.BlocksAccessed() + mjp.plan2.BlocksAccessed()
}

// RecordsOutput estimates the number of joined records.
func (mjp *MergeJoinPlan) RecordsOutput() int {
	maxVals := max(
		mjp.plan1.DistinctValues(mjp.fieldName1),
		mjp.plan2.DistinctValues(mjp.fieldName2),
	)
	return (mjp.plan1.RecordsOutput() * mjp.plan2.RecordsOutput()) / maxVals
}

// DistinctValues estimates the number of distinct values for the specified
// field, which is the same as in the relevant underlying query.
func (mjp *MergeJoinPlan) DistinctValues(fieldName string) int {
	if mjp.plan1.Schema().HasField(fieldName) {
		return mjp.plan1.DistinctValues(fieldName)
	}
	return mjp.plan2.DistinctValues(fieldName)
}

// Schema returns the union of the two underlying schemas.
func (mjp *MergeJoinPlan) Schema() *record.Schema {
	return mjp.schema
}
