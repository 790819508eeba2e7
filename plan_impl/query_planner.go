package plan_impl

import (
	"fmt"

	"github.com/emberdb/ember/parse"
	"github.com/emberdb/ember/plan"
	"github.com/emberdb/ember/query"
	"github.com/emberdb/ember/tx"
)

// QueryPlanner is an interface implemented by planners for the SQL select statement.
type QueryPlanner interface {
	// CreatePlan creates a query plan for the specified query data.
	CreatePlan(queryData *parse.QueryData, transaction *tx.Transaction) (plan.Plan, error)
}

// finishQueryPlan applies the stages shared by every query planner on top
// of the joined-and-filtered plan: grouping, computed select-list fields,
// projection, and ordering.
func finishQueryPlan(queryData *parse.QueryData, transaction *tx.Transaction, currentPlan plan.Plan) (plan.Plan, error) {
	projectionFields := queryData.Fields()
	if queryData.IsSelectAll() {
		projectionFields = currentPlan.Schema().Fields()
	}

	// Grouping. An aggregate without GROUP BY aggregates the whole input
	// as a single group.
	if len(queryData.GroupBy()) > 0 || len(queryData.Aggregates()) > 0 {
		currentPlan = NewGroupByPlan(transaction, currentPlan, queryData.GroupBy(), queryData.Aggregates())

		// Apply having clause if present
		if queryData.Having() != nil {
			currentPlan = NewSelectPlan(currentPlan, queryData.Having())
		}

		for _, aggFunc := range queryData.Aggregates() {
			projectionFields = append(projectionFields, aggFunc.FieldName())
		}
	}

	// Computed select-list fields. An expression without an alias has no
	// output name, so it cannot be planned.
	for _, item := range queryData.Extends() {
		if item.Alias() == "" {
			return nil, fmt.Errorf("select expression %q has no alias", item.Expression().String())
		}
		currentPlan = NewExtendPlan(currentPlan, item.Expression(), item.Alias())
		projectionFields = append(projectionFields, item.Alias())
	}

	// Ordering runs before the projection so the sort may use fields the
	// statement does not select; the pass-through projection preserves
	// the sorted order.
	if len(queryData.OrderBy()) > 0 {
		order := make([]query.SortField, len(queryData.OrderBy()))
		for i, item := range queryData.OrderBy() {
			order[i] = query.SortField{Field: item.Field(), Descending: item.Descending()}
		}
		currentPlan = NewSortPlanFromOrder(transaction, currentPlan, order)
	}

	// Projection on the final output field list
	return NewProjectPlan(currentPlan, projectionFields)
}
