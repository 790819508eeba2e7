package materialize

import (
	"fmt"
	"github.com/emberdb/ember/record"
	"github.com/emberdb/ember/scan"
	"github.com/emberdb/ember/table"
	"github.com/emberdb/ember/tx"
	"github.com/google/uuid"
)

const tempTablePrefix = "temp"

// TempTable represents a temporary table not registered in the catalog.
type TempTable struct {
	tx      *tx.Transaction
	tblName string
	layout  *record.Layout
}

// NewTempTable creates a new temporary table with the specified schema and transaction.
func NewTempTable(tx *tx.Transaction, schema *record.Schema) *TempTable {
	return &TempTable{
		tx:      tx,
		tblName: nextTableName(),
		layout:  record.NewLayout(schema),
	}
}

// Open opens a table scan for the temporary table.
func (tt *TempTable) Open() (scan.UpdateScan, error) {
	return table.NewTableScan(tt.tx, tt.tblName, tt.layout)
}

// TableName returns the name of the temporary table.
func (tt *TempTable) TableName() string {
	return tt.tblName
}

// GetLayout returns the table's metadata (layout).
func (tt *TempTable) GetLayout() *record.Layout {
	return tt.layout
}

// nextTableName generates a unique name for the next temporary table. A
// random UUID is used instead of a process-local counter so that temp
// tables never collide across separate database instances sharing the
// same directory (e.g. in tests run in parallel against the same disk).
func nextTableName() string {
	return fmt.Sprintf("%s_%s", tempTablePrefix, uuid.NewString())
}
