package plan_impl

import (
	"time"

	"github.com/emberdb/ember/plan"
	"github.com/emberdb/ember/query"
	"github.com/emberdb/ember/record"
	"github.com/emberdb/ember/scan"
)

var _ plan.Plan = (*ExtendPlan)(nil)

// ExtendPlan implements the extend operator: it exposes the underlying
// plan's fields plus one virtual field computed from an expression.
type ExtendPlan struct {
	inputPlan  plan.Plan
	expression *query.Expression
	fieldName  string
	schema     *record.Schema
}

// NewExtendPlan creates a new extend node in the query tree.
func NewExtendPlan(inputPlan plan.Plan, expression *query.Expression, fieldName string) *ExtendPlan {
	schema := record.NewSchema()
	schema.AddAll(inputPlan.Schema())

	if expression.IsFieldName() {
		srcField := expression.AsFieldName()
		schema.AddField(fieldName, inputPlan.Schema().Type(srcField), inputPlan.Schema().Length(srcField))
	} else {
		switch val := expression.AsConstant().(type) {
		case string:
			schema.AddStringField(fieldName, len(val))
		case bool:
			schema.AddBoolField(fieldName)
		case int64:
			schema.AddLongField(fieldName)
		case int16:
			schema.AddShortField(fieldName)
		case time.Time:
			schema.AddDateField(fieldName)
		default:
			// Integer constants and arithmetic expressions.
			schema.AddIntField(fieldName)
		}
	}

	return &ExtendPlan{
		inputPlan:  inputPlan,
		expression: expression,
		fieldName:  fieldName,
		schema:     schema,
	}
}

// Open creates an extend scan over the underlying scan.
func (ep *ExtendPlan) Open() (scan.Scan, error) {
	inputScan, err := ep.inputPlan.Open()
	if err != nil {
		return nil, err
	}
	return query.NewExtendScan(inputScan, ep.expression, ep.fieldName), nil
}

// BlocksAccessed estimates the number of block accesses,
// which is the same as in the underlying query.
func (ep *ExtendPlan) BlocksAccessed() int {
	return ep.inputPlan.BlocksAccessed()
}

// RecordsOutput estimates the number of records,
// which is the same as in the underlying query.
func (ep *ExtendPlan) RecordsOutput() int {
	return ep.inputPlan.RecordsOutput()
}

// DistinctValues estimates the number of distinct values. The computed
// field is assumed to be as selective as the records it is computed from.
func (ep *ExtendPlan) DistinctValues(fieldName string) int {
	if fieldName == ep.fieldName {
		return ep.inputPlan.RecordsOutput()
	}
	return ep.inputPlan.DistinctValues(fieldName)
}

// Schema returns the schema of the underlying query plus the computed field.
func (ep *ExtendPlan) Schema() *record.Schema {
	return ep.schema
}
