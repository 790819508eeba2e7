package tx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberdb/ember/buffer"
	"github.com/emberdb/ember/file"
	"github.com/emberdb/ember/log"
	"github.com/emberdb/ember/tx/concurrency"
)

func setupTransactionTest(t *testing.T) (*file.Manager, *log.Manager, *buffer.Manager, *concurrency.LockTable) {
	t.Helper()

	dbDir := t.TempDir()
	fm, err := file.NewManager(dbDir, 400)
	require.NoError(t, err)
	lm, err := log.NewManager(fm, "logfile")
	require.NoError(t, err)
	bm := buffer.NewManager(fm, lm, 8)
	lt := concurrency.NewLockTable()
	return fm, lm, bm, lt
}

func TestTransactionCommitMakesValuesVisible(t *testing.T) {
	fm, lm, bm, lt := setupTransactionTest(t)

	tx1 := NewTransaction(fm, lm, bm, lt)
	block, err := tx1.Append("testfile")
	require.NoError(t, err)
	require.NoError(t, tx1.Pin(block))
	// Initialize without logging: the block's prior contents are garbage.
	require.NoError(t, tx1.SetInt(block, 80, 1, false))
	require.NoError(t, tx1.SetString(block, 40, "one", false))
	require.NoError(t, tx1.Commit())

	tx2 := NewTransaction(fm, lm, bm, lt)
	require.NoError(t, tx2.Pin(block))
	intVal, err := tx2.GetInt(block, 80)
	require.NoError(t, err)
	strVal, err := tx2.GetString(block, 40)
	require.NoError(t, err)
	assert.Equal(t, 1, intVal)
	assert.Equal(t, "one", strVal)
	require.NoError(t, tx2.Commit())
}

func TestTransactionRollbackRestoresPreviousValues(t *testing.T) {
	fm, lm, bm, lt := setupTransactionTest(t)

	tx1 := NewTransaction(fm, lm, bm, lt)
	block, err := tx1.Append("testfile")
	require.NoError(t, err)
	require.NoError(t, tx1.Pin(block))
	require.NoError(t, tx1.SetInt(block, 80, 1, false))
	require.NoError(t, tx1.SetString(block, 40, "one", false))
	require.NoError(t, tx1.Commit())

	// Modify both values with logging, then roll back.
	tx2 := NewTransaction(fm, lm, bm, lt)
	require.NoError(t, tx2.Pin(block))
	require.NoError(t, tx2.SetInt(block, 80, 2, true))
	require.NoError(t, tx2.SetString(block, 40, "two", true))
	require.NoError(t, tx2.Rollback())

	tx3 := NewTransaction(fm, lm, bm, lt)
	require.NoError(t, tx3.Pin(block))
	intVal, err := tx3.GetInt(block, 80)
	require.NoError(t, err)
	strVal, err := tx3.GetString(block, 40)
	require.NoError(t, err)
	assert.Equal(t, 1, intVal, "rollback must restore the pre-transaction integer")
	assert.Equal(t, "one", strVal, "rollback must restore the pre-transaction string")
	require.NoError(t, tx3.Commit())
}

func TestTransactionRecoverUndoesUncommittedWork(t *testing.T) {
	fm, lm, bm, lt := setupTransactionTest(t)

	tx1 := NewTransaction(fm, lm, bm, lt)
	block, err := tx1.Append("testfile")
	require.NoError(t, err)
	require.NoError(t, tx1.Pin(block))
	require.NoError(t, tx1.SetInt(block, 80, 1, false))
	require.NoError(t, tx1.Commit())

	// This transaction modifies the block but never finishes; its update
	// record is on the log.
	tx2 := NewTransaction(fm, lm, bm, lt)
	require.NoError(t, tx2.Pin(block))
	require.NoError(t, tx2.SetInt(block, 80, 9999, true))

	// Simulate the crash: the process's buffer pool and lock table are
	// gone, only the files and the log survive.
	bm = buffer.NewManager(fm, lm, 8)
	lt = concurrency.NewLockTable()

	// Startup-style recovery undoes the orphaned update.
	recoveryTx := NewTransaction(fm, lm, bm, lt)
	require.NoError(t, recoveryTx.Recover())
	require.NoError(t, recoveryTx.Commit())

	tx3 := NewTransaction(fm, lm, bm, lt)
	require.NoError(t, tx3.Pin(block))
	intVal, err := tx3.GetInt(block, 80)
	require.NoError(t, err)
	assert.Equal(t, 1, intVal, "recovery must restore the last committed value")
	require.NoError(t, tx3.Commit())
}
