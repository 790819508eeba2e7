package plan_impl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberdb/ember/scan"
)

func TestMergeJoinPlan_Basic(t *testing.T) {
	txn, cleanup := setupTestEnvironment(t, 800, 8)
	defer cleanup()

	mdm := createTableMetadataWithSchema(t, txn, "departments", map[string]interface{}{
		"did":       0,
		"dept_name": "string",
	})
	createTableMetadataWithSchema(t, txn, "employees", map[string]interface{}{
		"emp_id":   0,
		"emp_name": "string",
		"dept_id":  0,
	})

	deptPlan, err := NewTablePlan(txn, "departments", mdm)
	require.NoError(t, err)
	s1, err := deptPlan.Open()
	require.NoError(t, err)
	us1 := s1.(scan.UpdateScan)
	insertRecords(t, us1, []map[string]interface{}{
		{"did": 10, "dept_name": "Engineering"},
		{"did": 20, "dept_name": "Marketing"},
		{"did": 30, "dept_name": "Finance"},
	})
	s1.Close()

	empPlan, err := NewTablePlan(txn, "employees", mdm)
	require.NoError(t, err)
	s2, err := empPlan.Open()
	require.NoError(t, err)
	us2 := s2.(scan.UpdateScan)
	insertRecords(t, us2, []map[string]interface{}{
		{"emp_id": 1, "emp_name": "Alice", "dept_id": 10},
		{"emp_id": 2, "emp_name": "Bob", "dept_id": 20},
		{"emp_id": 3, "emp_name": "Carol", "dept_id": 20},
		{"emp_id": 4, "emp_name": "Dan", "dept_id": 30},
	})
	s2.Close()

	deptPlan, err = NewTablePlan(txn, "departments", mdm)
	require.NoError(t, err)
	empPlan, err = NewTablePlan(txn, "employees", mdm)
	require.NoError(t, err)

	joinPlan := NewMergeJoinPlan(txn, deptPlan, empPlan, "did", "dept_id")

	// Schema is the union of both inputs
	require.True(t, joinPlan.Schema().HasField("did"))
	require.True(t, joinPlan.Schema().HasField("dept_name"))
	require.True(t, joinPlan.Schema().HasField("emp_name"))

	joinScan, err := joinPlan.Open()
	require.NoError(t, err)
	defer joinScan.Close()

	// Every employee joins exactly one department, so the result has one
	// row per employee.
	matches := map[string]string{}
	for {
		hasNext, err := joinScan.Next()
		require.NoError(t, err)
		if !hasNext {
			break
		}
		empName, err := joinScan.GetString("emp_name")
		require.NoError(t, err)
		deptName, err := joinScan.GetString("dept_name")
		require.NoError(t, err)
		matches[empName] = deptName
	}

	assert.Equal(t, map[string]string{
		"Alice": "Engineering",
		"Bob":   "Marketing",
		"Carol": "Marketing",
		"Dan":   "Finance",
	}, matches)
}

func TestMergeJoinPlan_NoMatches(t *testing.T) {
	txn, cleanup := setupTestEnvironment(t, 800, 8)
	defer cleanup()

	mdm := createTableMetadataWithSchema(t, txn, "lhs", map[string]interface{}{
		"lkey": 0,
	})
	createTableMetadataWithSchema(t, txn, "rhs", map[string]interface{}{
		"rkey": 0,
	})

	lhsPlan, err := NewTablePlan(txn, "lhs", mdm)
	require.NoError(t, err)
	s1, err := lhsPlan.Open()
	require.NoError(t, err)
	insertRecords(t, s1.(scan.UpdateScan), []map[string]interface{}{
		{"lkey": 1}, {"lkey": 2},
	})
	s1.Close()

	rhsPlan, err := NewTablePlan(txn, "rhs", mdm)
	require.NoError(t, err)
	s2, err := rhsPlan.Open()
	require.NoError(t, err)
	insertRecords(t, s2.(scan.UpdateScan), []map[string]interface{}{
		{"rkey": 7}, {"rkey": 8},
	})
	s2.Close()

	lhsPlan, err = NewTablePlan(txn, "lhs", mdm)
	require.NoError(t, err)
	rhsPlan, err = NewTablePlan(txn, "rhs", mdm)
	require.NoError(t, err)

	joinPlan := NewMergeJoinPlan(txn, lhsPlan, rhsPlan, "lkey", "rkey")
	joinScan, err := joinPlan.Open()
	require.NoError(t, err)
	defer joinScan.Close()

	hasNext, err := joinScan.Next()
	require.NoError(t, err)
	assert.False(t, hasNext, "disjoint key sets should produce no joined rows")
}
