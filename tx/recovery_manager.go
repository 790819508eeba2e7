package tx

import (
	"github.com/emberdb/ember/buffer"
	"github.com/emberdb/ember/log"
	"time"
)

// RecoveryManager is responsible for the recovery of a transaction, in the
// event of a system crash or an explicit call to Rollback. It implements an
// undo-only recovery scheme: every update the transaction makes is preceded
// by a log record containing the value being overwritten, so rolling back
// (or recovering from a crash) only ever requires replaying those records in
// reverse, never redoing anything.
type RecoveryManager struct {
	logManager    *log.Manager
	bufferManager *buffer.Manager
	tx            *Transaction
	txNum         int
}

// NewRecoveryManager creates a recovery manager for the specified
// transaction, and writes a start record to the log.
func NewRecoveryManager(tx *Transaction, txNum int, logManager *log.Manager, bufferManager *buffer.Manager) *RecoveryManager {
	rm := &RecoveryManager{
		logManager:    logManager,
		bufferManager: bufferManager,
		tx:            tx,
		txNum:         txNum,
	}
	if _, err := WriteStartToLog(logManager, txNum); err != nil {
		// The start record is purely advisory (used by recovery to bound its
		// scan); a failure to write it does not prevent the transaction from
		// proceeding.
		txLogger.Warn().Err(err).Int("txnum", txNum).Msg("failed to write start record")
	}
	return rm
}

// Commit flushes all buffers modified by this transaction to disk, then
// writes a commit record to the log and flushes it. The buffers must be flushed
// before the commit record itself is forced, so that a crash between the
// two never leaves a committed transaction whose data never made it to disk.
func (rm *RecoveryManager) Commit() error {
	if err := rm.bufferManager.FlushAll(rm.txNum); err != nil {
		return err
	}
	lsn, err := WriteCommitToLog(rm.logManager, rm.txNum)
	if err != nil {
		return err
	}
	return rm.logManager.Flush(lsn)
}

// Rollback undoes every update this transaction made, then writes and
// flushes a rollback record to the log.
func (rm *RecoveryManager) Rollback() error {
	if err := rm.doRollback(); err != nil {
		return err
	}
	if err := rm.bufferManager.FlushAll(rm.txNum); err != nil {
		return err
	}
	lsn, err := WriteRollbackToLog(rm.logManager, rm.txNum)
	if err != nil {
		return err
	}
	return rm.logManager.Flush(lsn)
}

// Recover rolls back every transaction that was not yet committed or rolled
// back at the time of a system crash, then writes a quiescent checkpoint
// record. It is called once at system startup, before any user transaction
// begins, so every buffer it touches belongs to crash recovery, not to live
// concurrent work.
func (rm *RecoveryManager) Recover() error {
	finishedTxs := make(map[int]bool)
	iter, err := rm.logManager.Iterator()
	if err != nil {
		return err
	}
	for iter.HasNext() {
		bytes, err := iter.Next()
		if err != nil {
			return err
		}
		record, err := CreateLogRecord(bytes)
		if err != nil {
			return err
		}
		if record.Op() == Checkpoint {
			break
		}
		if record.Op() == Commit || record.Op() == Rollback {
			finishedTxs[record.TxNumber()] = true
			continue
		}
		if !finishedTxs[record.TxNumber()] {
			if err := record.Undo(rm.tx); err != nil {
				return err
			}
		}
	}
	if err := rm.bufferManager.FlushAll(rm.txNum); err != nil {
		return err
	}
	lsn, err := WriteCheckpointToLog(rm.logManager)
	if err != nil {
		return err
	}
	return rm.logManager.Flush(lsn)
}

// doRollback iterates through the log, calling Undo for any log record
// belonging to this transaction, until it finds this transaction's start
// record.
func (rm *RecoveryManager) doRollback() error {
	iter, err := rm.logManager.Iterator()
	if err != nil {
		return err
	}
	for iter.HasNext() {
		bytes, err := iter.Next()
		if err != nil {
			return err
		}
		record, err := CreateLogRecord(bytes)
		if err != nil {
			return err
		}
		if record.TxNumber() != rm.txNum {
			continue
		}
		if record.Op() == Start {
			return nil
		}
		if err := record.Undo(rm.tx); err != nil {
			return err
		}
	}
	return nil
}

// SetInt writes a set-int log record for the value currently stored at the
// given offset of the buffer's block, before the new value overwrites it.
func (rm *RecoveryManager) SetInt(buff *buffer.Buffer, offset int, _ int) (int64, error) {
	oldVal := buff.Contents().GetInt(offset)
	block := buff.Block()
	return WriteSetIntToLog(rm.logManager, rm.txNum, block, offset, oldVal)
}

// SetLong writes a set-long log record for the value currently stored at the
// given offset of the buffer's block, before the new value overwrites it.
func (rm *RecoveryManager) SetLong(buff *buffer.Buffer, offset int, _ int64) (int64, error) {
	oldVal := buff.Contents().GetLong(offset)
	block := buff.Block()
	return WriteSetLongToLog(rm.logManager, rm.txNum, block, offset, oldVal)
}

// SetShort writes a set-short log record for the value currently stored at
// the given offset of the buffer's block, before the new value overwrites it.
func (rm *RecoveryManager) SetShort(buff *buffer.Buffer, offset int, _ int16) (int64, error) {
	oldVal := buff.Contents().GetShort(offset)
	block := buff.Block()
	return WriteSetShortToLog(rm.logManager, rm.txNum, block, offset, oldVal)
}

// SetBool writes a set-bool log record for the value currently stored at the
// given offset of the buffer's block, before the new value overwrites it.
func (rm *RecoveryManager) SetBool(buff *buffer.Buffer, offset int, _ bool) (int64, error) {
	oldVal := buff.Contents().GetBool(offset)
	block := buff.Block()
	return WriteSetBoolToLog(rm.logManager, rm.txNum, block, offset, oldVal)
}

// SetDate writes a set-date log record for the value currently stored at the
// given offset of the buffer's block, before the new value overwrites it.
func (rm *RecoveryManager) SetDate(buff *buffer.Buffer, offset int, _ time.Time) (int64, error) {
	oldVal := buff.Contents().GetDate(offset)
	block := buff.Block()
	return WriteSetDateToLog(rm.logManager, rm.txNum, block, offset, oldVal)
}

// SetString writes a set-string log record for the value currently stored at
// the given offset of the buffer's block, before the new value overwrites it.
func (rm *RecoveryManager) SetString(buff *buffer.Buffer, offset int, _ string) (int64, error) {
	oldVal, err := buff.Contents().GetString(offset)
	if err != nil {
		return -1, err
	}
	block := buff.Block()
	return WriteSetStringToLog(rm.logManager, rm.txNum, block, offset, oldVal)
}
