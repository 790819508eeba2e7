package plan_impl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberdb/ember/query"
	"github.com/emberdb/ember/record"
	"github.com/emberdb/ember/scan"
)

func TestExtendPlan_Arithmetic(t *testing.T) {
	txn, cleanup := setupTestEnvironment(t, 800, 8)
	defer cleanup()

	mdm := createTableMetadataWithSchema(t, txn, "employees", map[string]interface{}{
		"emp_id": 0,
		"salary": 0,
	})

	tp, err := NewTablePlan(txn, "employees", mdm)
	require.NoError(t, err)
	s, err := tp.Open()
	require.NoError(t, err)
	insertRecords(t, s.(scan.UpdateScan), []map[string]interface{}{
		{"emp_id": 1, "salary": 1000},
		{"emp_id": 2, "salary": 2500},
	})
	s.Close()

	tp, err = NewTablePlan(txn, "employees", mdm)
	require.NoError(t, err)

	doubled := query.NewArithmeticExpression(
		query.NewFieldExpression("salary"),
		query.NewConstantExpression(2),
		'*',
	)
	extendPlan := NewExtendPlan(tp, doubled, "double_salary")

	// The schema carries the base fields plus the computed one, typed int.
	require.True(t, extendPlan.Schema().HasField("double_salary"))
	assert.Equal(t, record.Integer, extendPlan.Schema().Type("double_salary"))

	extendScan, err := extendPlan.Open()
	require.NoError(t, err)
	defer extendScan.Close()

	require.NoError(t, extendScan.BeforeFirst())
	results := map[int]int{}
	for {
		hasNext, err := extendScan.Next()
		require.NoError(t, err)
		if !hasNext {
			break
		}
		id, err := extendScan.GetInt("emp_id")
		require.NoError(t, err)
		doubledSalary, err := extendScan.GetInt("double_salary")
		require.NoError(t, err)
		results[id] = doubledSalary
	}

	assert.Equal(t, map[int]int{1: 2000, 2: 5000}, results)
}

func TestExtendPlan_FieldAlias(t *testing.T) {
	txn, cleanup := setupTestEnvironment(t, 800, 8)
	defer cleanup()

	mdm := createTableMetadataWithSchema(t, txn, "employees", map[string]interface{}{
		"emp_name": "string",
	})

	tp, err := NewTablePlan(txn, "employees", mdm)
	require.NoError(t, err)
	s, err := tp.Open()
	require.NoError(t, err)
	insertRecords(t, s.(scan.UpdateScan), []map[string]interface{}{
		{"emp_name": "Alice"},
	})
	s.Close()

	tp, err = NewTablePlan(txn, "employees", mdm)
	require.NoError(t, err)

	extendPlan := NewExtendPlan(tp, query.NewFieldExpression("emp_name"), "who")

	// An aliased field copies the source field's type and length.
	assert.Equal(t, record.Varchar, extendPlan.Schema().Type("who"))

	extendScan, err := extendPlan.Open()
	require.NoError(t, err)
	defer extendScan.Close()

	hasNext, err := extendScan.Next()
	require.NoError(t, err)
	require.True(t, hasNext)

	who, err := extendScan.GetString("who")
	require.NoError(t, err)
	assert.Equal(t, "Alice", who)
}
