package driver

import "database/sql/driver"

// EmberResult implements driver.Result for statements executed through
// Stmt.Exec (CREATE, INSERT, UPDATE, DELETE).
type EmberResult struct {
	rowsAffected int64
}

var _ driver.Result = (*EmberResult)(nil)

// LastInsertId is not supported; the engine has no auto-increment column.
func (r *EmberResult) LastInsertId() (int64, error) {
	return 0, nil
}

func (r *EmberResult) RowsAffected() (int64, error) {
	return r.rowsAffected, nil
}
