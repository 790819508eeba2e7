package plan_impl

import (
	"github.com/emberdb/ember/metadata"
	"github.com/emberdb/ember/parse"
	"github.com/emberdb/ember/plan"
	"github.com/emberdb/ember/tx"
)

var _ QueryPlanner = (*HeuristicQueryPlanner)(nil)

// HeuristicQueryPlanner chooses physical access paths by estimated cost:
// each table enters the plan through the cheapest of a table scan or an
// index select, and tables are joined greedily, each round picking the
// cheapest of product, index join, merge join, and hash join.
type HeuristicQueryPlanner struct {
	metadataManager *metadata.Manager
}

// NewHeuristicQueryPlanner creates a new HeuristicQueryPlanner
func NewHeuristicQueryPlanner(metadataManager *metadata.Manager) *HeuristicQueryPlanner {
	return &HeuristicQueryPlanner{metadataManager: metadataManager}
}

// CreatePlan creates a query plan as follows:
//  1. Each base table gets a table planner; views are inlined and planned
//     recursively, so a query against a view takes exactly the locks a
//     written-out query against its base tables would.
//  2. The plan starts from the source with the lowest estimated output.
//  3. Remaining sources are joined in greedily, each round choosing the
//     join shape with the fewest estimated block accesses.
//  4. The shared grouping, extend, projection, and ordering stages finish
//     the plan.
func (qp *HeuristicQueryPlanner) CreatePlan(queryData *parse.QueryData, transaction *tx.Transaction) (plan.Plan, error) {
	tablePlanners := make([]*tablePlanner, 0, len(queryData.Tables()))
	var viewPlans []plan.Plan

	for _, tableName := range queryData.Tables() {
		viewDefinition, err := qp.metadataManager.GetViewDefinition(tableName, transaction)
		if err != nil {
			return nil, err
		}

		if viewDefinition == "" {
			tp, err := newTablePlanner(transaction, tableName, queryData.Pred(), qp.metadataManager)
			if err != nil {
				return nil, err
			}
			tablePlanners = append(tablePlanners, tp)
		} else {
			parser := parse.NewParser(viewDefinition)
			viewData, err := parser.Query()
			if err != nil {
				return nil, err
			}
			viewPlan, err := qp.CreatePlan(viewData, transaction)
			if err != nil {
				return nil, err
			}
			viewPlans = append(viewPlans, viewPlan)
		}
	}

	// Start from the source with the lowest estimated output.
	currentPlan, tablePlanners, viewPlans := qp.lowestSelectPlan(tablePlanners, viewPlans)

	// Join the remaining sources in greedily.
	for len(tablePlanners) > 0 {
		var bestPlan plan.Plan
		bestIdx := -1

		// Prefer a source the predicate actually connects to the
		// current plan.
		for idx, tp := range tablePlanners {
			joinPlan, err := tp.makeJoinPlan(currentPlan)
			if err != nil {
				return nil, err
			}
			if joinPlan == nil {
				continue
			}
			if bestPlan == nil || joinPlan.BlocksAccessed() < bestPlan.BlocksAccessed() {
				bestPlan = joinPlan
				bestIdx = idx
			}
		}

		// No connecting predicate: fall back to the cheapest product.
		if bestPlan == nil {
			for idx, tp := range tablePlanners {
				productPlan, err := tp.makeProductPlan(currentPlan)
				if err != nil {
					return nil, err
				}
				if bestPlan == nil || productPlan.BlocksAccessed() < bestPlan.BlocksAccessed() {
					bestPlan = productPlan
					bestIdx = idx
				}
			}
		}

		currentPlan = bestPlan
		tablePlanners = append(tablePlanners[:bestIdx], tablePlanners[bestIdx+1:]...)
	}

	// Fold in any view plans; they join through a product with the
	// applicable predicate terms on top.
	for _, viewPlan := range viewPlans {
		joined, err := qp.joinViewPlan(currentPlan, viewPlan, queryData)
		if err != nil {
			return nil, err
		}
		currentPlan = joined
	}

	return finishQueryPlan(queryData, transaction, currentPlan)
}

// lowestSelectPlan picks the source with the lowest estimated record
// output as the start of the join order and removes it from its list.
func (qp *HeuristicQueryPlanner) lowestSelectPlan(tablePlanners []*tablePlanner, viewPlans []plan.Plan) (plan.Plan, []*tablePlanner, []plan.Plan) {
	var bestPlan plan.Plan
	bestTableIdx := -1

	for idx, tp := range tablePlanners {
		selectPlan := tp.makeSelectPlan()
		if bestPlan == nil || selectPlan.RecordsOutput() < bestPlan.RecordsOutput() {
			bestPlan = selectPlan
			bestTableIdx = idx
		}
	}
	if bestTableIdx >= 0 {
		return bestPlan, append(tablePlanners[:bestTableIdx], tablePlanners[bestTableIdx+1:]...), viewPlans
	}

	// Only views: start from the first one.
	return viewPlans[0], tablePlanners, viewPlans[1:]
}

// joinViewPlan attaches an inlined view to the current plan: a product,
// with the predicate terms that mention the view's fields applied on top.
func (qp *HeuristicQueryPlanner) joinViewPlan(currentPlan plan.Plan, viewPlan plan.Plan, queryData *parse.QueryData) (plan.Plan, error) {
	joined, err := NewProductPlan(currentPlan, viewPlan)
	if err != nil {
		return nil, err
	}

	var result plan.Plan = joined
	predicate := queryData.Pred()
	if predicate == nil {
		return result, nil
	}
	if selectPredicate := predicate.SelectSubPredicate(viewPlan.Schema()); selectPredicate != nil {
		result = NewSelectPlan(result, selectPredicate)
	}
	if joinPredicate := predicate.JoinSubPredicate(currentPlan.Schema(), viewPlan.Schema()); joinPredicate != nil {
		result = NewSelectPlan(result, joinPredicate)
	}
	return result, nil
}
