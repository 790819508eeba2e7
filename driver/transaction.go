package driver

import "github.com/emberdb/ember/tx"

// EmberTx implements driver.Tx so that database/sql can manage
// a transaction with Commit() and Rollback().
// It just holds a reference to the connection so we can clear activeTx on commit/rollback
type EmberTx struct {
	conn *EmberConn
	tx   *tx.Transaction
}

func (t *EmberTx) Commit() error {
	err := t.tx.Commit()
	t.conn.activeTx = nil
	return err
}

func (t *EmberTx) Rollback() error {
	err := t.tx.Rollback()
	t.conn.activeTx = nil
	return err
}
