package tx

import (
	"github.com/emberdb/ember/file"
	"github.com/emberdb/ember/log"
	"github.com/emberdb/ember/types"
)

// CheckpointRecord marks a quiescent checkpoint: every transaction active at
// the time it's written has already committed or rolled back, so recovery
// never needs to scan past it.
type CheckpointRecord struct {
	LogRecord
}

// NewCheckpointRecord creates a new CheckpointRecord. It carries no payload.
func NewCheckpointRecord() (*CheckpointRecord, error) {
	return &CheckpointRecord{}, nil
}

// Op returns the type of the log record.
func (r *CheckpointRecord) Op() LogRecordType {
	return Checkpoint
}

// TxNumber returns a dummy value, since checkpoint records have no
// associated transaction.
func (r *CheckpointRecord) TxNumber() int {
	return -1
}

// Undo does nothing. CheckpointRecord does not change any data.
func (r *CheckpointRecord) Undo(_ *Transaction) error {
	return nil
}

// String returns a string representation of the log record.
func (r *CheckpointRecord) String() string {
	return "<CHECKPOINT>"
}

// WriteCheckpointToLog writes a checkpoint record to the log. This record
// contains only the Checkpoint operator, with no further information.
// The method returns the LSN of the new log record.
func WriteCheckpointToLog(logManager *log.Manager) (int64, error) {
	record := make([]byte, types.IntSize)
	page := file.NewPageFromBytes(record)
	page.SetInt(0, int(Checkpoint))
	return logManager.Append(record)
}
