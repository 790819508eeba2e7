package query

import (
	"github.com/emberdb/ember/plan"
	"github.com/emberdb/ember/record"
	"github.com/emberdb/ember/scan"
	"github.com/emberdb/ember/types"
)

type Term struct {
	lhs    *Expression
	rhs    *Expression
	op     Operator
	isNull bool
}

// NewTerm creates a new term.
func NewTerm(lhs, rhs *Expression, op Operator) *Term {
	return &Term{lhs: lhs, rhs: rhs, op: op}
}

// NewIsNullTerm creates a term of the form "expr IS NULL".
func NewIsNullTerm(lhs *Expression) *Term {
	return &Term{lhs: lhs, isNull: true}
}

func (t *Term) IsSatisfied(inputScan scan.Scan) bool {
	var lhsVal, rhsVal any
	var err error
	if lhsVal, err = t.lhs.Evaluate(inputScan); err != nil {
		return false
	}

	if t.isNull {
		return lhsVal == nil
	}

	if rhsVal, err = t.rhs.Evaluate(inputScan); err != nil {
		return false
	}

	return types.CompareSupportedTypes(lhsVal, rhsVal, t.op)
}

// ReductionFactor calculates the extent to which selecting on the term reduces
// the number of records output by a query.
// For example if the reduction factor is 2, then the term cuts the size of the
// output in half. If the reduction factor is 1, then the term has no effect.
func (t *Term) ReductionFactor(queryPlan plan.Plan) int {
	var lhsName, rhsName string

	// Fields are never stored as null, so an IS NULL term filters
	// everything out.
	if t.isNull {
		return int(^uint(0) >> 1)
	}

	// If both sides are field names, calculate the max distinct values.
	if t.lhs.IsFieldName() && t.rhs.IsFieldName() {
		lhsName = t.lhs.AsFieldName()
		rhsName = t.rhs.AsFieldName()
		return max(queryPlan.DistinctValues(lhsName), queryPlan.DistinctValues(rhsName))
	}

	// If LHS is a field name, use its distinct values.
	if t.lhs.IsFieldName() {
		lhsName = t.lhs.AsFieldName()
		return reductionForConstantComparison(queryPlan.DistinctValues(lhsName), t.op)
	}

	// If RHS is a field name, use its distinct values.
	if t.rhs.IsFieldName() {
		rhsName = t.rhs.AsFieldName()
		return reductionForConstantComparison(queryPlan.DistinctValues(rhsName), t.op)
	}

	// Handle constant comparisons
	lhsConst := t.lhs.AsConstant()
	rhsConst := t.rhs.AsConstant()

	// If constants are equal for EQ, perfect selectivity; otherwise, default.
	if lhsConst == rhsConst && t.op == EQ {
		return 1
	}
	if lhsConst != rhsConst && t.op == NE {
		return 1
	}

	// Default case for constant-to-constant comparisons.
	return int(^uint(0) >> 1) // High value for poor selectivity
}

// Helper to calculate reduction factor for constant comparisons using distinct values.
func reductionForConstantComparison(distinctValues int, op Operator) int {
	switch op {
	case EQ:
		return max(1, distinctValues)
	case NE:
		// Assumes non-equality doesn't significantly reduce distinct values.
		return distinctValues
	case LT, LE, GT, GE:
		// Assume uniform distribution: a range comparison keeps about half the records.
		return min(2, max(1, distinctValues))
	default:
		return distinctValues // Default for unsupported operators
	}
}

// EquatesWithConstant determines if this term is of the form "F=c"
// where F is the specified field and c is some constant.
// If so, the method returns that constant.
// If not, the method returns nil.
func (t *Term) EquatesWithConstant(fieldName string) any {
	if t.isNull || t.op != EQ { // Explicit check for equality
		return nil
	}
	if t.lhs.IsFieldName() && t.lhs.AsFieldName() == fieldName && !t.rhs.IsFieldName() {
		return t.rhs.AsConstant()
	} else if t.rhs.IsFieldName() && t.rhs.AsFieldName() == fieldName && !t.lhs.IsFieldName() {
		return t.lhs.AsConstant()
	}
	return nil
}

// ComparesWithConstant determines if this term is of the form "F op c"
// (or "c op F") where F is the specified field and c is some constant.
// If so, the method returns the operator as seen from the field's side
// along with the constant. If not, it returns types.NONE and nil.
func (t *Term) ComparesWithConstant(fieldName string) (types.Operator, any) {
	if t.isNull {
		return types.NONE, nil
	}
	if t.lhs.IsFieldName() && t.lhs.AsFieldName() == fieldName && !t.rhs.IsFieldName() {
		return t.op, t.rhs.AsConstant()
	}
	if t.rhs.IsFieldName() && t.rhs.AsFieldName() == fieldName && !t.lhs.IsFieldName() {
		return reverseOperator(t.op), t.lhs.AsConstant()
	}
	return types.NONE, nil
}

// reverseOperator flips an ordering operator so "c op F" reads as "F op' c".
func reverseOperator(op types.Operator) types.Operator {
	switch op {
	case types.LT:
		return types.GT
	case types.LE:
		return types.GE
	case types.GT:
		return types.LT
	case types.GE:
		return types.LE
	default:
		return op
	}
}

// EquatesWithField determines if this term is of the form "F1=F2"
// where F1 is the specified field and F2 is another field.
// If so, the method returns the name of the other field.
// If not, the method returns an empty string.
func (t *Term) EquatesWithField(fieldName string) string {
	if t.isNull || t.op != EQ { // Explicit check for equality
		return ""
	}
	if t.lhs.IsFieldName() && t.lhs.AsFieldName() == fieldName && t.rhs.IsFieldName() {
		return t.rhs.AsFieldName()
	} else if t.rhs.IsFieldName() && t.rhs.AsFieldName() == fieldName && t.lhs.IsFieldName() {
		return t.lhs.AsFieldName()
	}
	return ""
}

// AppliesTo returns true if both of the term's expressions
// apply to the specified schema.
func (t *Term) AppliesTo(schema *record.Schema) bool {
	if t.isNull {
		return t.lhs.AppliesTo(schema)
	}
	return t.lhs.AppliesTo(schema) && t.rhs.AppliesTo(schema)
}

func (t *Term) String() string {
	if t.isNull {
		return t.lhs.String() + " is null"
	}
	return t.lhs.String() + " " + t.op.String() + " " + t.rhs.String()
}
