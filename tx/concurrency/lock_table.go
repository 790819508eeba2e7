package concurrency

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/emberdb/ember/file"
	"github.com/emberdb/ember/metrics"
)

// maxWaitTime is the maximum time a transaction will wait to acquire a lock
// before the lock table gives up and reports a timeout.
const maxWaitTime = 10 * time.Second

// ErrLockTimeout is returned when a lock could not be acquired within maxWaitTime.
var ErrLockTimeout = errors.New("lock abort: timed out waiting for lock")

// LockTable is the process-wide table of locks on blocks. It is shared by
// every transaction's Manager, and is the single source of truth for which
// transaction holds what kind of lock on a given block.
//
// A negative value means the block has an exclusive lock. A positive value
// records the number of shared locks currently held on the block.
type LockTable struct {
	mu    sync.Mutex
	cond  *sync.Cond
	locks map[file.BlockId]int
}

// NewLockTable creates a new, empty lock table.
func NewLockTable() *LockTable {
	lt := &LockTable{locks: make(map[file.BlockId]int)}
	lt.cond = sync.NewCond(&lt.mu)
	return lt
}

// SLock grants a shared lock on the specified block, blocking the caller
// until any conflicting exclusive lock is released or maxWaitTime elapses.
func (lt *LockTable) SLock(block *file.BlockId) error {
	start := time.Now()
	lt.mu.Lock()
	defer lt.mu.Unlock()

	err := lt.waitFor(func() bool { return lt.locks[*block] >= 0 }, func() {
		lt.locks[*block]++
	})
	metrics.LockWaitSeconds.WithLabelValues("shared").Observe(time.Since(start).Seconds())
	if errors.Is(err, ErrLockTimeout) {
		metrics.LockTimeoutsTotal.WithLabelValues("shared").Inc()
	}
	return err
}

// XLock grants an exclusive lock on the specified block, blocking the caller
// until at most one shared lock (the caller's own) remains on it or
// maxWaitTime elapses.
func (lt *LockTable) XLock(block *file.BlockId) error {
	start := time.Now()
	lt.mu.Lock()
	defer lt.mu.Unlock()

	err := lt.waitFor(func() bool { return lt.locks[*block] <= 1 }, func() {
		lt.locks[*block] = -1
	})
	metrics.LockWaitSeconds.WithLabelValues("exclusive").Observe(time.Since(start).Seconds())
	if errors.Is(err, ErrLockTimeout) {
		metrics.LockTimeoutsTotal.WithLabelValues("exclusive").Inc()
	}
	return err
}

// Unlock releases a lock (shared or exclusive) held on the specified block.
func (lt *LockTable) Unlock(block *file.BlockId) {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	val := lt.locks[*block]
	if val > 1 {
		lt.locks[*block] = val - 1
	} else {
		delete(lt.locks, *block)
		lt.cond.Broadcast()
	}
}

// waitFor blocks on lt.cond until ready() reports true, then runs acquire()
// while still holding lt.mu. It gives up after maxWaitTime.
func (lt *LockTable) waitFor(ready func() bool, acquire func()) error {
	if ready() {
		acquire()
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), maxWaitTime)
	defer cancel()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			lt.mu.Lock()
			lt.cond.Broadcast()
			lt.mu.Unlock()
		case <-done:
		}
	}()

	for !ready() {
		lt.cond.Wait()
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %v", ErrLockTimeout, ctx.Err())
		}
	}
	acquire()
	return nil
}
