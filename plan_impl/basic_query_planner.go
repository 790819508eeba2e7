package plan_impl

import (
	"github.com/emberdb/ember/metadata"
	"github.com/emberdb/ember/parse"
	"github.com/emberdb/ember/plan"
	"github.com/emberdb/ember/tx"
)

var _ QueryPlanner = &BasicQueryPlanner{}

type BasicQueryPlanner struct {
	metadataManager *metadata.Manager
}

// NewBasicQueryPlanner creates a new BasicQueryPlanner
func NewBasicQueryPlanner(metadataManager *metadata.Manager) *BasicQueryPlanner {
	return &BasicQueryPlanner{metadataManager: metadataManager}
}

// CreatePlan creates a query plan as follows:
// 1. Takes the product of all tables and views
// 2. Applies predicate selection
// 3. Applies grouping and having if specified
// 4. Projects on the field list
// 5. Applies ordering if specified
func (qp *BasicQueryPlanner) CreatePlan(queryData *parse.QueryData, transaction *tx.Transaction) (plan.Plan, error) {
	// 1. Create a plan for each mentioned table or view
	plans := make([]plan.Plan, len(queryData.Tables()))
	for idx, tableName := range queryData.Tables() {
		viewDefinition, err := qp.metadataManager.GetViewDefinition(tableName, transaction)
		if err != nil {
			return nil, err
		}

		if viewDefinition == "" {
			tablePlan, err := NewTablePlan(transaction, tableName, qp.metadataManager)
			if err != nil {
				return nil, err
			}
			plans[idx] = tablePlan
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
			plans[idx] = viewPlan
		}
	}

	// 2. Create the product of all table plans
	currentPlan := plans[0]
	plans = plans[1:]

	for _, nextPlan := range plans {
		planChoice1, err := NewProductPlan(currentPlan, nextPlan)
		if err != nil {
			return nil, err
		}

		planChoice2, err := NewProductPlan(nextPlan, currentPlan)
		if err != nil {
			return nil, err
		}

		if planChoice1.BlocksAccessed() < planChoice2.BlocksAccessed() {
			currentPlan = planChoice1
		} else {
			currentPlan = planChoice2
		}
	}

	// 3. Add a selection plan for the predicate
	currentPlan = NewSelectPlan(currentPlan, queryData.Pred())

	// 4. Apply the shared grouping, extend, projection, and ordering stages
	return finishQueryPlan(queryData, transaction, currentPlan)
}
