package buffer

import (
	"github.com/emberdb/ember/file"
	"github.com/emberdb/ember/log"
)

// Buffer wraps a page and stores information about its status, such as
// whether it is dirty (modified but not yet flushed), which transaction
// last modified it, and how many clients currently have it pinned.
type Buffer struct {
	fileManager *file.Manager
	logManager  *log.Manager
	contents    *file.Page
	block       *file.BlockId
	pins        int
	txnum       int
	lsn         int64
}

// NewBuffer creates a new buffer, not yet assigned to any block.
func NewBuffer(fileManager *file.Manager, logManager *log.Manager) *Buffer {
	return &Buffer{
		fileManager: fileManager,
		logManager:  logManager,
		contents:    file.NewPage(fileManager.BlockSize()),
		txnum:       -1,
		lsn:         -1,
	}
}

// Contents returns the page holding the buffer's contents.
func (b *Buffer) Contents() *file.Page {
	return b.contents
}

// Block returns the block that this buffer is currently assigned to, if any.
func (b *Buffer) Block() *file.BlockId {
	return b.block
}

// SetModified marks the buffer as modified by the given transaction. A
// negative lsn indicates that no log record was generated for the
// modification (e.g. for changes that are never undone).
func (b *Buffer) SetModified(txnum int, lsn int64) {
	b.txnum = txnum
	if lsn >= 0 {
		b.lsn = lsn
	}
}

// isPinned returns true if some client currently has this buffer pinned.
func (b *Buffer) isPinned() bool {
	return b.pins > 0
}

// modifyingTxn returns the id of the transaction that last modified this
// buffer, or -1 if no transaction has modified it since it was assigned.
func (b *Buffer) modifyingTxn() int {
	return b.txnum
}

// assignToBlock reads the specified block into the buffer, flushing any
// previous contents first if they were modified.
func (b *Buffer) assignToBlock(block *file.BlockId) error {
	if err := b.flush(); err != nil {
		return err
	}
	b.block = block
	if err := b.fileManager.Read(block, b.contents); err != nil {
		return err
	}
	b.pins = 0
	return nil
}

// flush writes the buffer to disk if it has been modified, first forcing the
// corresponding log record to disk to satisfy the write-ahead-log rule.
func (b *Buffer) flush() error {
	if b.txnum < 0 {
		return nil
	}
	if err := b.logManager.Flush(b.lsn); err != nil {
		return err
	}
	if err := b.fileManager.Write(b.block, b.contents); err != nil {
		return err
	}
	b.txnum = -1
	return nil
}

// pin increases the pin count of the buffer.
func (b *Buffer) pin() {
	b.pins++
}

// unpin decreases the pin count of the buffer.
func (b *Buffer) unpin() {
	b.pins--
}
