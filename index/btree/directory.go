package btree

import (
	"github.com/emberdb/ember/file"
	"github.com/emberdb/ember/record"
	"github.com/emberdb/ember/tx"
	"github.com/emberdb/ember/types"
)

// Directory is one block of the B-tree's internal-node file. A flag of 0
// marks a directory block whose children are leaves; a positive flag marks
// a block whose children are themselves directory blocks at flag-1 levels
// above the leaves.
type Directory struct {
	t      *tx.Transaction
	layout *record.Layout
	page   *Page
	file   string
}

func NewDirectory(t *tx.Transaction, block *file.BlockId, layout *record.Layout) (*Directory, error) {
	page, err := NewPage(t, block, layout)
	if err != nil {
		return nil, err
	}
	return &Directory{t: t, layout: layout, page: page, file: block.Filename()}, nil
}

func (d *Directory) Close() {
	d.page.Close()
}

// Search descends from this directory block to the leaf block that would
// hold searchKey, re-pinning one directory page per level until it reaches
// flag 0, and returns that leaf's block number.
func (d *Directory) Search(searchKey any) (int, error) {
	child, err := d.childFor(searchKey)
	if err != nil {
		return -1, err
	}

	for {
		flag, err := d.page.GetFlag()
		if err != nil {
			return -1, err
		}
		if flag <= 0 {
			return child.Number(), nil
		}

		d.page.Close()
		page, err := NewPage(d.t, child, d.layout)
		if err != nil {
			return -1, err
		}
		d.page = page

		if child, err = d.childFor(searchKey); err != nil {
			return -1, err
		}
	}
}

// childFor finds the slot whose key range contains searchKey and returns
// the block number of the child it points to.
func (d *Directory) childFor(searchKey any) (*file.BlockId, error) {
	slot, err := d.page.FindSlotBefore(searchKey)
	if err != nil {
		return nil, err
	}

	next, err := d.page.GetDataVal(slot + 1)
	if err != nil {
		return nil, err
	}
	if types.CompareSupportedTypes(next, searchKey, types.EQ) {
		slot++
	}

	childNum, err := d.page.GetChildNumber(slot)
	if err != nil {
		return nil, err
	}
	return file.NewBlockId(d.file, childNum), nil
}

// MakeNewRoot handles the case where the tree's root block itself split: the
// root's existing contents are moved into a fresh block, and the root is
// rebuilt to hold exactly two entries — one pointing at that moved block,
// one at the newly split sibling — one level higher than before.
func (d *Directory) MakeNewRoot(sibling *DirectoryEntry) error {
	oldFirstVal, err := d.page.GetDataVal(0)
	if err != nil {
		return err
	}
	level, err := d.page.GetFlag()
	if err != nil {
		return err
	}

	movedBlock, err := d.page.Split(0, level)
	if err != nil {
		return err
	}

	movedEntry := NewDirectoryEntry(oldFirstVal, movedBlock.Number())
	if _, err := d.insert(movedEntry); err != nil {
		return err
	}
	if _, err := d.insert(sibling); err != nil {
		return err
	}
	return d.page.SetFlag(level + 1)
}

// Insert places entry in the subtree rooted at this directory block,
// recursing toward the leaf level first. It returns a non-nil
// DirectoryEntry only when this block itself had to split to make room,
// in which case the caller (one level up) must insert that entry too.
func (d *Directory) Insert(entry *DirectoryEntry) (*DirectoryEntry, error) {
	flag, err := d.page.GetFlag()
	if err != nil {
		return nil, err
	}
	if flag == 0 {
		return d.insert(entry)
	}

	childBlock, err := d.childFor(entry.DataValue())
	if err != nil {
		return nil, err
	}
	child, err := NewDirectory(d.t, childBlock, d.layout)
	if err != nil {
		return nil, err
	}
	defer child.Close()

	split, err := child.Insert(entry)
	if err != nil {
		return nil, err
	}
	if split == nil {
		return nil, nil
	}
	return d.insert(split)
}

// insert writes entry into this block at its sorted position and splits
// the block in half if that overflows it.
func (d *Directory) insert(entry *DirectoryEntry) (*DirectoryEntry, error) {
	slot, err := d.page.FindSlotBefore(entry.DataValue())
	if err != nil {
		return nil, err
	}
	if err := d.page.InsertDirectory(slot+1, entry.DataValue(), entry.BlockNumber()); err != nil {
		return nil, err
	}

	full, err := d.page.IsFull()
	if err != nil {
		return nil, err
	}
	if !full {
		return nil, nil
	}

	level, err := d.page.GetFlag()
	if err != nil {
		return nil, err
	}
	count, err := d.page.GetNumberOfRecords()
	if err != nil {
		return nil, err
	}
	mid := count / 2
	midVal, err := d.page.GetDataVal(mid)
	if err != nil {
		return nil, err
	}
	newBlock, err := d.page.Split(mid, level)
	if err != nil {
		return nil, err
	}
	return NewDirectoryEntry(midVal, newBlock.Number()), nil
}
