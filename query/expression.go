package query

import (
	"fmt"
	"github.com/emberdb/ember/record"
	"github.com/emberdb/ember/scan"
)

// Expression is either a constant, a field reference, or an arithmetic
// combination of two sub-expressions. Arithmetic is defined on integer
// operands only; evaluating it over any other field type is an error.
type Expression struct {
	value     any
	fieldName string
	lhs       *Expression
	rhs       *Expression
	op        rune
}

// NewFieldExpression creates a new expression for a field name.
func NewFieldExpression(fieldName string) *Expression {
	return &Expression{value: nil, fieldName: fieldName}
}

// NewConstantExpression creates a new expression for a constant value.
func NewConstantExpression(value any) *Expression {
	return &Expression{value: value, fieldName: ""}
}

// NewArithmeticExpression combines two sub-expressions with one of the
// operators '+', '-', '*', '/'.
func NewArithmeticExpression(lhs, rhs *Expression, op rune) *Expression {
	return &Expression{lhs: lhs, rhs: rhs, op: op}
}

// Evaluate the expression with respect to the current record of the specified inputScan.
func (e *Expression) Evaluate(inputScan scan.Scan) (any, error) {
	if e.op != 0 {
		return e.evaluateArithmetic(inputScan)
	}
	if e.fieldName == "" {
		// A constant, possibly the null constant.
		return e.value, nil
	}
	return inputScan.GetVal(e.fieldName)
}

func (e *Expression) evaluateArithmetic(inputScan scan.Scan) (any, error) {
	lhsVal, err := e.lhs.Evaluate(inputScan)
	if err != nil {
		return nil, err
	}
	rhsVal, err := e.rhs.Evaluate(inputScan)
	if err != nil {
		return nil, err
	}

	lhsInt, lhsOk := lhsVal.(int)
	rhsInt, rhsOk := rhsVal.(int)
	if !lhsOk || !rhsOk {
		return nil, fmt.Errorf("arithmetic requires integer operands, got %T and %T", lhsVal, rhsVal)
	}

	switch e.op {
	case '+':
		return lhsInt + rhsInt, nil
	case '-':
		return lhsInt - rhsInt, nil
	case '*':
		return lhsInt * rhsInt, nil
	case '/':
		if rhsInt == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return lhsInt / rhsInt, nil
	default:
		return nil, fmt.Errorf("unknown arithmetic operator %q", e.op)
	}
}

// IsFieldName returns true if the expression is a plain field reference.
func (e *Expression) IsFieldName() bool {
	return e.op == 0 && e.fieldName != ""
}

// AsConstant returns the constant value of the expression,
// or nil if the expression does not denote a constant.
func (e *Expression) AsConstant() any {
	if e.op != 0 {
		return nil
	}
	return e.value
}

// AsFieldName returns the field name if the expression is a field reference,
// or an empty string if the expression does not denote a field.
func (e *Expression) AsFieldName() string {
	if e.op != 0 {
		return ""
	}
	return e.fieldName
}

// AppliesTo determines if all the fields mentioned in this expression are contained in the specified schema.
func (e *Expression) AppliesTo(schema *record.Schema) bool {
	if e.op != 0 {
		return e.lhs.AppliesTo(schema) && e.rhs.AppliesTo(schema)
	}
	if e.fieldName == "" {
		// Constants apply everywhere.
		return true
	}
	return schema.HasField(e.fieldName)
}

func (e *Expression) String() string {
	if e.op != 0 {
		return fmt.Sprintf("%s %c %s", e.lhs.String(), e.op, e.rhs.String())
	}
	if e.fieldName != "" {
		return e.fieldName
	}
	if e.value == nil {
		return "null"
	}
	return fmt.Sprintf("%v", e.value)
}
