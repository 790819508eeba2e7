package query

import (
	"fmt"
	"github.com/emberdb/ember/scan"
	"time"
)

var _ scan.Scan = (*ExtendScan)(nil)

// ExtendScan wraps an underlying scan with one additional virtual field
// whose value is computed from an expression over the current record.
type ExtendScan struct {
	inputScan  scan.Scan
	expression *Expression
	fieldName  string
}

// NewExtendScan creates a new extend scan exposing the underlying scan's
// fields plus the computed field.
func NewExtendScan(s scan.Scan, expression *Expression, fieldName string) *ExtendScan {
	return &ExtendScan{inputScan: s, expression: expression, fieldName: fieldName}
}

func (es *ExtendScan) BeforeFirst() error {
	return es.inputScan.BeforeFirst()
}

func (es *ExtendScan) Next() (bool, error) {
	return es.inputScan.Next()
}

func (es *ExtendScan) Close() {
	es.inputScan.Close()
}

// HasField returns true for the computed field or any underlying field.
func (es *ExtendScan) HasField(fieldName string) bool {
	return fieldName == es.fieldName || es.inputScan.HasField(fieldName)
}

// GetVal returns the computed value for the virtual field,
// or delegates to the underlying scan.
func (es *ExtendScan) GetVal(fieldName string) (any, error) {
	if fieldName == es.fieldName {
		return es.expression.Evaluate(es.inputScan)
	}
	return es.inputScan.GetVal(fieldName)
}

// GetInt returns the integer value of the specified field in the current record.
func (es *ExtendScan) GetInt(fieldName string) (int, error) {
	if fieldName == es.fieldName {
		val, err := es.expression.Evaluate(es.inputScan)
		if err != nil {
			return 0, err
		}
		intVal, ok := val.(int)
		if !ok {
			return 0, fmt.Errorf("field %s is not an integer", fieldName)
		}
		return intVal, nil
	}
	return es.inputScan.GetInt(fieldName)
}

// GetString returns the string value of the specified field in the current record.
func (es *ExtendScan) GetString(fieldName string) (string, error) {
	if fieldName == es.fieldName {
		val, err := es.expression.Evaluate(es.inputScan)
		if err != nil {
			return "", err
		}
		strVal, ok := val.(string)
		if !ok {
			return "", fmt.Errorf("field %s is not a string", fieldName)
		}
		return strVal, nil
	}
	return es.inputScan.GetString(fieldName)
}

// GetLong returns the long value of the specified field in the current record.
func (es *ExtendScan) GetLong(fieldName string) (int64, error) {
	if fieldName == es.fieldName {
		val, err := es.expression.Evaluate(es.inputScan)
		if err != nil {
			return 0, err
		}
		longVal, ok := val.(int64)
		if !ok {
			return 0, fmt.Errorf("field %s is not a long", fieldName)
		}
		return longVal, nil
	}
	return es.inputScan.GetLong(fieldName)
}

// GetShort returns the short value of the specified field in the current record.
func (es *ExtendScan) GetShort(fieldName string) (int16, error) {
	if fieldName == es.fieldName {
		val, err := es.expression.Evaluate(es.inputScan)
		if err != nil {
			return 0, err
		}
		shortVal, ok := val.(int16)
		if !ok {
			return 0, fmt.Errorf("field %s is not a short", fieldName)
		}
		return shortVal, nil
	}
	return es.inputScan.GetShort(fieldName)
}

// GetBool returns the boolean value of the specified field in the current record.
func (es *ExtendScan) GetBool(fieldName string) (bool, error) {
	if fieldName == es.fieldName {
		val, err := es.expression.Evaluate(es.inputScan)
		if err != nil {
			return false, err
		}
		boolVal, ok := val.(bool)
		if !ok {
			return false, fmt.Errorf("field %s is not a boolean", fieldName)
		}
		return boolVal, nil
	}
	return es.inputScan.GetBool(fieldName)
}

// GetDate returns the date value of the specified field in the current record.
func (es *ExtendScan) GetDate(fieldName string) (time.Time, error) {
	if fieldName == es.fieldName {
		val, err := es.expression.Evaluate(es.inputScan)
		if err != nil {
			return time.Time{}, err
		}
		dateVal, ok := val.(time.Time)
		if !ok {
			return time.Time{}, fmt.Errorf("field %s is not a date", fieldName)
		}
		return dateVal, nil
	}
	return es.inputScan.GetDate(fieldName)
}
