package concurrency

import (
	"github.com/emberdb/ember/file"
)

const (
	shared    = "S"
	exclusive = "X"
)

// Manager handles a single transaction's concurrency control. Each
// transaction owns one Manager, which tracks the locks the transaction
// currently holds locally and coordinates acquisition/release against the
// LockTable shared by the whole process. Locking follows the standard
// two-phase protocol: a transaction only ever acquires locks, releasing all
// of them together when it commits or rolls back.
type Manager struct {
	lockTable *LockTable
	locks     map[file.BlockId]string
}

// NewManager creates a concurrency Manager bound to the given process-wide
// LockTable.
func NewManager(lockTable *LockTable) *Manager {
	return &Manager{
		lockTable: lockTable,
		locks:     make(map[file.BlockId]string),
	}
}

// SLock obtains a shared lock on the specified block, if the transaction
// doesn't already hold a lock on it.
func (m *Manager) SLock(block *file.BlockId) error {
	if _, ok := m.locks[*block]; ok {
		return nil
	}
	if err := m.lockTable.SLock(block); err != nil {
		return err
	}
	m.locks[*block] = shared
	return nil
}

// XLock obtains an exclusive lock on the specified block. If the transaction
// doesn't yet hold any lock on the block, it first acquires a shared lock,
// then upgrades it to exclusive.
func (m *Manager) XLock(block *file.BlockId) error {
	if m.hasXLock(block) {
		return nil
	}
	if err := m.SLock(block); err != nil {
		return err
	}
	if err := m.lockTable.XLock(block); err != nil {
		return err
	}
	m.locks[*block] = exclusive
	return nil
}

// Release releases all locks held by this transaction.
func (m *Manager) Release() {
	for block := range m.locks {
		b := block
		m.lockTable.Unlock(&b)
	}
	m.locks = make(map[file.BlockId]string)
}

func (m *Manager) hasXLock(block *file.BlockId) bool {
	lockType, ok := m.locks[*block]
	return ok && lockType == exclusive
}
