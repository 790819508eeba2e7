package parse

import (
	"github.com/emberdb/ember/query"
	"github.com/emberdb/ember/query/functions"
)

// OrderByItem is a single entry of an ORDER BY clause: a field name plus
// its sort direction.
type OrderByItem struct {
	field      string
	descending bool
}

func NewOrderByItem(field string, descending bool) OrderByItem {
	return OrderByItem{field: field, descending: descending}
}

func (item OrderByItem) Field() string {
	return item.field
}

func (item OrderByItem) Descending() bool {
	return item.descending
}

// ExtendItem is a computed select-list entry: an expression plus the alias
// it is exposed under. An empty alias means the statement named an
// expression without "as"; the planner rejects that case.
type ExtendItem struct {
	alias      string
	expression *query.Expression
}

func NewExtendItem(alias string, expression *query.Expression) ExtendItem {
	return ExtendItem{alias: alias, expression: expression}
}

func (item ExtendItem) Alias() string {
	return item.alias
}

func (item ExtendItem) Expression() *query.Expression {
	return item.expression
}

type QueryData struct {
	fields     []string
	tables     []string
	predicate  *query.Predicate
	groupBy    []string
	having     *query.Predicate
	orderBy    []OrderByItem
	aggregates []functions.AggregationFunction
	extends    []ExtendItem
	allFields  bool
}

func NewQueryData(fields, tables []string, predicate *query.Predicate) *QueryData {
	return &QueryData{
		fields:    fields,
		tables:    tables,
		predicate: predicate,
	}
}

func (qd *QueryData) Fields() []string {
	return qd.fields
}

func (qd *QueryData) Tables() []string {
	return qd.tables
}

func (qd *QueryData) Pred() *query.Predicate {
	return qd.predicate
}

func (qd *QueryData) GroupBy() []string {
	return qd.groupBy
}

func (qd *QueryData) Having() *query.Predicate {
	return qd.having
}

func (qd *QueryData) OrderBy() []OrderByItem {
	return qd.orderBy
}

func (qd *QueryData) Aggregates() []functions.AggregationFunction {
	return qd.aggregates
}

func (qd *QueryData) Extends() []ExtendItem {
	return qd.extends
}

// IsSelectAll reports whether the statement used "select *".
func (qd *QueryData) IsSelectAll() bool {
	return qd.allFields
}

func (qd *QueryData) String() string {
	if (len(qd.fields) == 0 && !qd.allFields && len(qd.extends) == 0 && len(qd.aggregates) == 0) || len(qd.tables) == 0 {
		return ""
	}
	result := "select "
	if qd.allFields {
		result += "*, "
	}
	for _, fieldName := range qd.fields {
		result += fieldName + ", "
	}
	for _, item := range qd.extends {
		result += item.expression.String() + " as " + item.alias + ", "
	}
	for _, agg := range qd.aggregates {
		result += agg.FieldName() + ", "
	}
	// remove final comma/space
	result = result[:len(result)-2]
	result += " from "
	for _, tableName := range qd.tables {
		result += tableName + ", "
	}
	if len(qd.tables) > 0 {
		result = result[:len(result)-2]
	}
	if qd.predicate != nil {
		if predicateString := qd.predicate.String(); predicateString != "" {
			result += " where " + predicateString
		}
	}
	if len(qd.groupBy) > 0 {
		result += " group by "
		for _, fieldName := range qd.groupBy {
			result += fieldName + ", "
		}
		result = result[:len(result)-2]
	}
	if qd.having != nil {
		if havingString := qd.having.String(); havingString != "" {
			result += " having " + havingString
		}
	}
	if len(qd.orderBy) > 0 {
		result += " order by "
		for _, item := range qd.orderBy {
			result += item.field
			if item.descending {
				result += " desc"
			}
			result += ", "
		}
		result = result[:len(result)-2]
	}
	return result
}
