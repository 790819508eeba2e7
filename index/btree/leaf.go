package btree

import (
	"github.com/emberdb/ember/file"
	"github.com/emberdb/ember/record"
	"github.com/emberdb/ember/tx"
	"github.com/emberdb/ember/types"
)

// Leaf positions a cursor over the run of leaf-block entries matching one
// search key, transparently following the overflow chain (entries for a
// single key that spilled across more than one block) when needed.
type Leaf struct {
	t      *tx.Transaction
	layout *record.Layout
	key    any
	page   *Page
	slot   int
	file   string
}

// NewLeaf opens block and parks the cursor just before the first entry
// that could match key.
func NewLeaf(t *tx.Transaction, block *file.BlockId, layout *record.Layout, key any) (*Leaf, error) {
	page, err := NewPage(t, block, layout)
	if err != nil {
		return nil, err
	}
	slot, err := page.FindSlotBefore(key)
	if err != nil {
		page.Close()
		return nil, err
	}
	return &Leaf{t: t, layout: layout, key: key, page: page, slot: slot, file: block.Filename()}, nil
}

func (l *Leaf) Close() {
	l.page.Close()
}

// Next advances to the following entry matching this leaf's search key,
// crossing into the overflow chain if the current block is exhausted.
func (l *Leaf) Next() (bool, error) {
	l.slot++

	count, err := l.page.GetNumberOfRecords()
	if err != nil {
		return false, err
	}
	if l.slot >= count {
		return l.followOverflow()
	}

	val, err := l.page.GetDataVal(l.slot)
	if err != nil {
		return false, err
	}
	if types.CompareSupportedTypes(val, l.key, types.EQ) {
		return true, nil
	}
	return l.followOverflow()
}

func (l *Leaf) GetDataRID() (*record.ID, error) {
	return l.page.getDataRID(l.slot)
}

// Delete scans forward for the entry carrying dataRID and removes it.
func (l *Leaf) Delete(dataRID *record.ID) error {
	for {
		found, err := l.Next()
		if err != nil {
			return err
		}
		if !found {
			return nil
		}
		rid, err := l.GetDataRID()
		if err != nil {
			return err
		}
		if rid.Equals(dataRID) {
			return l.page.delete(l.slot)
		}
	}
}

// Insert places a new (key, dataRID) entry in this leaf block. If the
// block overflows as a result, it splits and the caller must propagate the
// returned DirectoryEntry up to the parent directory block.
func (l *Leaf) Insert(dataRID *record.ID) (*DirectoryEntry, error) {
	if entry, handled, err := l.insertBeforeCurrentRun(dataRID); err != nil || handled {
		return entry, err
	}

	l.slot++
	if err := l.page.InsertLeaf(l.slot, l.key, dataRID); err != nil {
		return nil, err
	}

	full, err := l.page.IsFull()
	if err != nil {
		return nil, err
	}
	if !full {
		return nil, nil
	}
	return l.split()
}

// insertBeforeCurrentRun handles the special case where this leaf's first
// entry already sorts after the key being inserted: the block's existing
// contents move into a freshly appended sibling block, the new entry becomes
// the sole occupant of slot 0 with the flag reset to -1 (no overflow link),
// and a DirectoryEntry keyed by the old first value points at the sibling.
func (l *Leaf) insertBeforeCurrentRun(dataRID *record.ID) (*DirectoryEntry, bool, error) {
	flag, err := l.page.GetFlag()
	if err != nil {
		return nil, false, err
	}
	if flag < 0 {
		return nil, false, nil
	}

	firstVal, err := l.page.GetDataVal(0)
	if err != nil {
		return nil, false, err
	}
	if !types.CompareSupportedTypes(firstVal, l.key, types.GT) {
		return nil, false, nil
	}

	newBlock, err := l.page.Split(0, flag)
	if err != nil {
		return nil, false, err
	}
	l.slot = 0
	if err := l.page.SetFlag(-1); err != nil {
		return nil, false, err
	}
	if err := l.page.InsertLeaf(l.slot, l.key, dataRID); err != nil {
		return nil, false, err
	}
	return NewDirectoryEntry(firstVal, newBlock.Number()), true, nil
}

// split divides an overflowing leaf block. A block whose every entry
// shares one key becomes the head of a fresh overflow link (no new
// directory entry is needed); otherwise the block splits at its midpoint,
// nudged to a key boundary, and a DirectoryEntry for the new sibling is
// returned.
func (l *Leaf) split() (*DirectoryEntry, error) {
	firstKey, err := l.page.GetDataVal(0)
	if err != nil {
		return nil, err
	}
	count, err := l.page.GetNumberOfRecords()
	if err != nil {
		return nil, err
	}
	lastKey, err := l.page.GetDataVal(count - 1)
	if err != nil {
		return nil, err
	}

	if types.CompareSupportedTypes(lastKey, firstKey, types.EQ) {
		flag, err := l.page.GetFlag()
		if err != nil {
			return nil, err
		}
		newBlock, err := l.page.Split(1, flag)
		if err != nil {
			return nil, err
		}
		return nil, l.page.SetFlag(newBlock.Number())
	}

	mid := count / 2
	splitKey, err := l.page.GetDataVal(mid)
	if err != nil {
		return nil, err
	}

	if types.CompareSupportedTypes(splitKey, firstKey, types.EQ) {
		for {
			val, err := l.page.GetDataVal(mid)
			if err != nil {
				return nil, err
			}
			if !types.CompareSupportedTypes(val, splitKey, types.EQ) {
				splitKey = val
				break
			}
			mid++
		}
	} else {
		for mid > 0 {
			val, err := l.page.GetDataVal(mid - 1)
			if err != nil {
				return nil, err
			}
			if !types.CompareSupportedTypes(val, splitKey, types.EQ) {
				break
			}
			mid--
		}
	}

	newBlock, err := l.page.Split(mid, -1)
	if err != nil {
		return nil, err
	}
	return NewDirectoryEntry(splitKey, newBlock.Number()), nil
}

// followOverflow moves to the head of the overflow chain linked from the
// current block's flag, if this leaf's key matches the block's first entry
// and such a link exists.
func (l *Leaf) followOverflow() (bool, error) {
	firstKey, err := l.page.GetDataVal(0)
	if err != nil {
		return false, err
	}
	flag, err := l.page.GetFlag()
	if err != nil {
		return false, err
	}
	if flag < 0 || !types.CompareSupportedTypes(l.key, firstKey, types.EQ) {
		return false, nil
	}

	l.page.Close()
	page, err := NewPage(l.t, file.NewBlockId(l.file, flag), l.layout)
	if err != nil {
		return false, err
	}
	l.page = page
	l.slot = 0
	return true, nil
}
