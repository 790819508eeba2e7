package plan_impl

import (
	"github.com/emberdb/ember/metadata"
	"github.com/emberdb/ember/plan"
	"github.com/emberdb/ember/query"
	"github.com/emberdb/ember/record"
	"github.com/emberdb/ember/tx"
)

// tablePlanner computes the access paths available for a single table
// under a given predicate: a plain table scan, an index select, and the
// join shapes connecting the table to an existing plan.
type tablePlanner struct {
	transaction *tx.Transaction
	tablePlan   *TablePlan
	predicate   *query.Predicate
	schema      *record.Schema
	indexes     map[string]*metadata.IndexInfo
}

func newTablePlanner(transaction *tx.Transaction, tableName string, predicate *query.Predicate, metadataManager *metadata.Manager) (*tablePlanner, error) {
	if predicate == nil {
		predicate = query.NewPredicate()
	}
	tablePlan, err := NewTablePlan(transaction, tableName, metadataManager)
	if err != nil {
		return nil, err
	}
	indexes, err := metadataManager.GetIndexInfo(tableName, transaction)
	if err != nil {
		return nil, err
	}
	return &tablePlanner{
		transaction: transaction,
		tablePlan:   tablePlan,
		predicate:   predicate,
		schema:      tablePlan.Schema(),
		indexes:     indexes,
	}, nil
}

// makeSelectPlan returns the cheapest access path for the table alone:
// an index select if the predicate equates an indexed field with a
// constant, else a table scan. The part of the predicate that applies to
// the table is wrapped on top in either case.
func (tp *tablePlanner) makeSelectPlan() plan.Plan {
	p := tp.makeIndexSelect()
	if p == nil {
		p = tp.tablePlan
	}
	return tp.addSelectPredicate(p)
}

func (tp *tablePlanner) makeIndexSelect() plan.Plan {
	for fieldName, indexInfo := range tp.indexes {
		if val := tp.predicate.EquatesWithConstant(fieldName); val != nil {
			return NewIndexSelectPlan(tp.tablePlan, indexInfo, val)
		}
	}
	return nil
}

// makeJoinPlan returns the cheapest way (by estimated block accesses) to
// join this table to the current plan, or nil if the predicate contains
// no term connecting the two.
func (tp *tablePlanner) makeJoinPlan(current plan.Plan) (plan.Plan, error) {
	currentSchema := current.Schema()
	joinPredicate := tp.predicate.JoinSubPredicate(tp.schema, currentSchema)
	if joinPredicate == nil {
		return nil, nil
	}

	best, err := tp.makeProductJoin(current, currentSchema)
	if err != nil {
		return nil, err
	}

	for _, fieldName := range tp.schema.Fields() {
		otherField := tp.predicate.EquatesWithField(fieldName)
		if otherField == "" || !currentSchema.HasField(otherField) {
			continue
		}

		candidates := []plan.Plan{
			NewMergeJoinPlan(tp.transaction, current, tp.tablePlan, otherField, fieldName),
			NewHashJoinPlan(tp.transaction, current, tp.tablePlan, otherField, fieldName),
		}
		if indexInfo, ok := tp.indexes[fieldName]; ok {
			candidates = append(candidates, NewIndexJoinPlan(current, tp.tablePlan, *indexInfo, otherField))
		}

		for _, candidate := range candidates {
			wrapped := tp.addJoinPredicate(tp.addSelectPredicate(candidate), currentSchema)
			if wrapped.BlocksAccessed() < best.BlocksAccessed() {
				best = wrapped
			}
		}
	}

	return best, nil
}

// makeProductPlan returns the product of the current plan and this
// table's select plan.
func (tp *tablePlanner) makeProductPlan(current plan.Plan) (plan.Plan, error) {
	return NewProductPlan(current, tp.makeSelectPlan())
}

func (tp *tablePlanner) makeProductJoin(current plan.Plan, currentSchema *record.Schema) (plan.Plan, error) {
	p, err := tp.makeProductPlan(current)
	if err != nil {
		return nil, err
	}
	return tp.addJoinPredicate(p, currentSchema), nil
}

func (tp *tablePlanner) addSelectPredicate(p plan.Plan) plan.Plan {
	selectPredicate := tp.predicate.SelectSubPredicate(tp.schema)
	if selectPredicate == nil {
		return p
	}
	return NewSelectPlan(p, selectPredicate)
}

func (tp *tablePlanner) addJoinPredicate(p plan.Plan, currentSchema *record.Schema) plan.Plan {
	joinPredicate := tp.predicate.JoinSubPredicate(currentSchema, tp.schema)
	if joinPredicate == nil {
		return p
	}
	return NewSelectPlan(p, joinPredicate)
}
