package plan_impl

import (
	"github.com/emberdb/ember/materialize"
	"github.com/emberdb/ember/plan"
	"github.com/emberdb/ember/query"
	"github.com/emberdb/ember/record"
	"github.com/emberdb/ember/scan"
	"github.com/emberdb/ember/tx"
	"github.com/emberdb/ember/types"
)

// hashJoinPartitions is the number of buckets each input is split into
// before the per-bucket joins.
const hashJoinPartitions = 8

var _ plan.Plan = (*HashJoinPlan)(nil)

// HashJoinPlan implements the hash join operator: both inputs are
// partitioned into temporary tables by the hash of their join field, and
// records are joined within matching partitions only.
type HashJoinPlan struct {
	transaction *tx.Transaction
	plan1       plan.Plan
	plan2       plan.Plan
	fieldName1  string
	fieldName2  string
	schema      *record.Schema
}

// NewHashJoinPlan creates a hash join plan for the two specified queries,
// joined on equality of the two specified fields.
func NewHashJoinPlan(transaction *tx.Transaction, p1, p2 plan.Plan, fieldName1, fieldName2 string) *HashJoinPlan {
	schema := record.NewSchema()
	schema.AddAll(p1.Schema())
	schema.AddAll(p2.Schema())

	return &HashJoinPlan{
		transaction: transaction,
		plan1:       p1,
		plan2:       p2,
		fieldName1:  fieldName1,
		fieldName2:  fieldName2,
		schema:      schema,
	}
}

// Open partitions both inputs and returns a hash join scan over the
// partition pairs.
func (hjp *HashJoinPlan) Open() (scan.Scan, error) {
	partitions1, err := hjp.partition(hjp.plan1, hjp.fieldName1)
	if err != nil {
		return nil, err
	}
	partitions2, err := hjp.partition(hjp.plan2, hjp.fieldName2)
	if err != nil {
		return nil, err
	}
	return query.NewHashJoinScan(partitions1, partitions2, hjp.fieldName1, hjp.fieldName2)
}

// partition copies every record of the plan into one of the bucket temp
// tables, chosen by the hash of its join field value.
func (hjp *HashJoinPlan) partition(p plan.Plan, fieldName string) ([]*materialize.TempTable, error) {
	schema := p.Schema()
	buckets := make([]*materialize.TempTable, hashJoinPartitions)
	bucketScans := make([]scan.UpdateScan, hashJoinPartitions)
	for i := range buckets {
		buckets[i] = materialize.NewTempTable(hjp.transaction, schema)
	}
	defer func() {
		for _, bucketScan := range bucketScans {
			if bucketScan != nil {
				bucketScan.Close()
			}
		}
	}()

	src, err := p.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	if err := src.BeforeFirst(); err != nil {
		return nil, err
	}
	for {
		hasNext, err := src.Next()
		if err != nil {
			return nil, err
		}
		if !hasNext {
			break
		}

		val, err := src.GetVal(fieldName)
		if err != nil {
			return nil, err
		}
		bucket := types.Hash(val) % hashJoinPartitions
		if bucket < 0 {
			bucket += hashJoinPartitions
		}

		dest := bucketScans[bucket]
		if dest == nil {
			if dest, err = buckets[bucket].Open(); err != nil {
				return nil, err
			}
			bucketScans[bucket] = dest
		}

		if err := dest.Insert(); err != nil {
			return nil, err
		}
		for _, fldName := range schema.Fields() {
			fldVal, err := src.GetVal(fldName)
			if err != nil {
				return nil, err
			}
			if err := dest.SetVal(fldName, fldVal); err != nil {
				return nil, err
			}
		}
	}

	return buckets, nil
}

// BlocksAccessed estimates the number of block accesses: one pass over
// each materialized input on the build side plus one on the probe side.
// The one-time cost of partitioning is not included, mirroring SortPlan.
func (hjp *HashJoinPlan) BlocksAccessed() int {
	mp1 := NewMaterializePlan(hjp.transaction, hjp.plan1)
	mp2 := NewMaterializePlan(hjp.transaction, hjp.plan2)
	return mp1.BlocksAccessed() + mp2.BlocksAccessed()
}

// RecordsOutput estimates the number of joined records.
func (hjp *HashJoinPlan) RecordsOutput() int {
	maxVals := max(
		hjp.plan1.DistinctValues(hjp.fieldName1),
		hjp.plan2.DistinctValues(hjp.fieldName2),
	)
	return (hjp.plan1.RecordsOutput() * hjp.plan2.RecordsOutput()) / maxVals
}

// DistinctValues estimates the number of distinct values for the specified
// field, which is the same as in the relevant underlying query.
func (hjp *HashJoinPlan) DistinctValues(fieldName string) int {
	if hjp.plan1.Schema().HasField(fieldName) {
		return hjp.plan1.DistinctValues(fieldName)
	}
	return hjp.plan2.DistinctValues(fieldName)
}

// Schema returns the union of the two underlying schemas.
func (hjp *HashJoinPlan) Schema() *record.Schema {
	return hjp.schema
}
