package functions

import "github.com/emberdb/ember/scan"

// AliasedFunction exposes another aggregation function's result under the
// alias the statement gave it, e.g. "COUNT(sid) AS c". Everything keyed on
// FieldName — the group-by output schema, value lookup, and the final
// projection — then sees the alias instead of the generated name.
type AliasedFunction struct {
	fn    AggregationFunction
	alias string
}

// NewAliasedFunction wraps the given aggregation function under an alias.
func NewAliasedFunction(fn AggregationFunction, alias string) *AliasedFunction {
	return &AliasedFunction{fn: fn, alias: alias}
}

func (f *AliasedFunction) ProcessFirst(s scan.Scan) error {
	return f.fn.ProcessFirst(s)
}

func (f *AliasedFunction) ProcessNext(s scan.Scan) error {
	return f.fn.ProcessNext(s)
}

// FieldName returns the alias the statement assigned.
func (f *AliasedFunction) FieldName() string {
	return f.alias
}

func (f *AliasedFunction) Value() any {
	return f.fn.Value()
}
