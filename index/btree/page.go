package btree

import (
	"fmt"
	"time"

	"github.com/emberdb/ember/file"
	"github.com/emberdb/ember/index/common"
	"github.com/emberdb/ember/record"
	"github.com/emberdb/ember/tx"
	"github.com/emberdb/ember/types"
)

// Page's header occupies the first two integers of every B-tree block: a
// flag (leaf-level overflow link, or directory-level tree height) followed
// by a record count. Records start immediately after.
var (
	flagOffset  = 0
	countOffset = types.IntSize
	headerSize  = 2 * types.IntSize
)

// Page is the record-page machinery shared by B-tree leaf and directory
// blocks: both are slotted pages of fixed-size entries preceded by the
// two-integer header above.
type Page struct {
	t      *tx.Transaction
	block  *file.BlockId
	layout *record.Layout
}

func NewPage(t *tx.Transaction, block *file.BlockId, layout *record.Layout) (*Page, error) {
	if err := t.Pin(block); err != nil {
		return nil, err
	}
	return &Page{t: t, block: block, layout: layout}, nil
}

// Close unpins the page's block.
func (pg *Page) Close() {
	if pg.block != nil {
		pg.t.Unpin(pg.block)
		pg.block = nil
	}
}

// FindSlotBefore returns the slot immediately preceding where the first
// record with the given search key belongs (or the last slot, if every
// record sorts before searchKey).
func (pg *Page) FindSlotBefore(searchKey any) (int, error) {
	count, err := pg.GetNumberOfRecords()
	if err != nil {
		return -1, err
	}
	for slot := 0; slot < count; slot++ {
		val, err := pg.GetDataVal(slot)
		if err != nil {
			return -1, err
		}
		if types.CompareSupportedTypes(val, searchKey, types.GE) {
			return slot - 1, nil
		}
	}
	return count - 1, nil
}

// IsFull reports whether one more record would overflow the block.
func (pg *Page) IsFull() (bool, error) {
	count, err := pg.GetNumberOfRecords()
	if err != nil {
		return false, err
	}
	return pg.slotOffset(count+1) >= pg.t.BlockSize(), nil
}

// Split carves off every record from splitPos onward into a freshly
// appended block (tagged with flag) and returns that block's identity.
func (pg *Page) Split(splitPos, flag int) (*file.BlockId, error) {
	newBlock, err := pg.AppendNew(flag)
	if err != nil {
		return nil, err
	}
	newPage, err := NewPage(pg.t, newBlock, pg.layout)
	if err != nil {
		return nil, err
	}
	if err := pg.moveRecordsFrom(splitPos, newPage); err != nil {
		return nil, err
	}
	if err := newPage.SetFlag(flag); err != nil {
		return nil, err
	}
	newPage.Close()
	return newBlock, nil
}

func (pg *Page) GetDataVal(slot int) (any, error) {
	return pg.readField(slot, common.DataValueField)
}

func (pg *Page) GetFlag() (int, error) {
	return pg.t.GetInt(pg.block, flagOffset)
}

func (pg *Page) SetFlag(val int) error {
	return pg.t.SetInt(pg.block, flagOffset, val, true)
}

// AppendNew grows this page's file by one block, formats it empty with the
// given flag, and returns its identity.
func (pg *Page) AppendNew(flag int) (*file.BlockId, error) {
	block, err := pg.t.Append(pg.block.Filename())
	if err != nil {
		return nil, err
	}
	if err := pg.t.Pin(block); err != nil {
		return nil, err
	}
	if err := pg.format(block, flag); err != nil {
		return nil, err
	}
	return block, nil
}

func (pg *Page) format(block *file.BlockId, flag int) error {
	if err := pg.t.SetInt(block, flagOffset, flag, false); err != nil {
		return err
	}
	if err := pg.t.SetInt(block, countOffset, 0, false); err != nil {
		return err
	}
	slotSize := pg.layout.SlotSize()
	for pos := headerSize; pos+slotSize <= pg.t.BlockSize(); pos += slotSize {
		if err := pg.zeroSlot(block, pos); err != nil {
			return err
		}
	}
	return nil
}

// zeroSlot writes the type-appropriate zero value into every field of the
// slot at byte offset pos within block.
func (pg *Page) zeroSlot(block *file.BlockId, pos int) error {
	schema := pg.layout.Schema()
	for _, field := range schema.Fields() {
		offset := pos + pg.layout.Offset(field)
		var err error
		switch schema.Type(field) {
		case types.Integer:
			err = pg.t.SetInt(block, offset, 0, false)
		case types.Varchar:
			err = pg.t.SetString(block, offset, "", false)
		case types.Boolean:
			err = pg.t.SetBool(block, offset, false, false)
		case types.Date:
			err = pg.t.SetDate(block, offset, time.Time{}, false)
		case types.Long:
			err = pg.t.SetLong(block, offset, 0, false)
		case types.Short:
			err = pg.t.SetShort(block, offset, 0, false)
		default:
			err = fmt.Errorf("unsupported type: %v", schema.Type(field))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (pg *Page) GetChildNumber(slot int) (int, error) {
	return pg.readInt(slot, common.BlockField)
}

// InsertDirectory opens up room at slot and writes a (value, child block)
// directory entry there.
func (pg *Page) InsertDirectory(slot int, value any, childBlock int) error {
	if err := pg.makeRoom(slot); err != nil {
		return err
	}
	if err := pg.writeField(slot, common.DataValueField, value); err != nil {
		return err
	}
	return pg.writeInt(slot, common.BlockField, childBlock)
}

// getDataRID reads the (block, slot) RID stored in a leaf entry.
func (pg *Page) getDataRID(slot int) (*record.ID, error) {
	blockNum, err := pg.readInt(slot, common.BlockField)
	if err != nil {
		return nil, err
	}
	id, err := pg.readInt(slot, common.IDField)
	if err != nil {
		return nil, err
	}
	return record.NewID(blockNum, id), nil
}

// InsertLeaf opens up room at slot and writes a (value, RID) leaf entry there.
func (pg *Page) InsertLeaf(slot int, value any, rid *record.ID) error {
	if err := pg.makeRoom(slot); err != nil {
		return err
	}
	if err := pg.writeField(slot, common.DataValueField, value); err != nil {
		return err
	}
	if err := pg.writeInt(slot, common.BlockField, rid.BlockNumber()); err != nil {
		return err
	}
	return pg.writeInt(slot, common.IDField, rid.Slot())
}

func (pg *Page) GetNumberOfRecords() (int, error) {
	return pg.t.GetInt(pg.block, countOffset)
}

// moveRecordsFrom relocates every record from slot onward (in this page)
// into dest, compacting this page as it goes so its record count always
// reflects what remains.
func (pg *Page) moveRecordsFrom(slot int, dest *Page) error {
	destSlot := 0
	for {
		count, err := pg.GetNumberOfRecords()
		if err != nil {
			return err
		}
		if slot >= count {
			return nil
		}
		if err := dest.makeRoom(destSlot); err != nil {
			return err
		}
		for _, field := range pg.layout.Schema().Fields() {
			val, err := pg.readField(slot, field)
			if err != nil {
				return err
			}
			if err := dest.writeField(destSlot, field, val); err != nil {
				return err
			}
		}
		if err := pg.deleteSlot(slot); err != nil {
			return err
		}
		destSlot++
	}
}

func (pg *Page) fieldOffset(slot int, field string) int {
	return pg.slotOffset(slot) + pg.layout.Offset(field)
}

func (pg *Page) slotOffset(slot int) int {
	return headerSize + slot*pg.layout.SlotSize()
}

func (pg *Page) readInt(slot int, field string) (int, error) {
	return pg.t.GetInt(pg.block, pg.fieldOffset(slot, field))
}

func (pg *Page) writeInt(slot int, field string, val int) error {
	return pg.t.SetInt(pg.block, pg.fieldOffset(slot, field), val, true)
}

func (pg *Page) readField(slot int, field string) (any, error) {
	pos := pg.fieldOffset(slot, field)
	switch pg.layout.Schema().Type(field) {
	case types.Integer:
		return pg.t.GetInt(pg.block, pos)
	case types.Varchar:
		return pg.t.GetString(pg.block, pos)
	case types.Boolean:
		return pg.t.GetBool(pg.block, pos)
	case types.Date:
		return pg.t.GetDate(pg.block, pos)
	case types.Long:
		return pg.t.GetLong(pg.block, pos)
	case types.Short:
		return pg.t.GetShort(pg.block, pos)
	default:
		return nil, fmt.Errorf("unsupported type: %v", pg.layout.Schema().Type(field))
	}
}

func (pg *Page) writeField(slot int, field string, val any) error {
	pos := pg.fieldOffset(slot, field)
	switch pg.layout.Schema().Type(field) {
	case types.Integer:
		return pg.t.SetInt(pg.block, pos, val.(int), true)
	case types.Varchar:
		return pg.t.SetString(pg.block, pos, val.(string), true)
	case types.Boolean:
		return pg.t.SetBool(pg.block, pos, val.(bool), true)
	case types.Date:
		return pg.t.SetDate(pg.block, pos, val.(time.Time), true)
	case types.Long:
		return pg.t.SetLong(pg.block, pos, val.(int64), true)
	case types.Short:
		return pg.t.SetShort(pg.block, pos, val.(int16), true)
	default:
		return fmt.Errorf("unsupported type: %v", pg.layout.Schema().Type(field))
	}
}

// makeRoom shifts every record at or after slot one position to the right,
// then bumps the record count, leaving slot free for a new entry.
func (pg *Page) makeRoom(slot int) error {
	count, err := pg.GetNumberOfRecords()
	if err != nil {
		return err
	}
	for i := count; i > slot; i-- {
		if err := pg.copySlot(i-1, i); err != nil {
			return err
		}
	}
	return pg.setNumberOfRecords(count + 1)
}

// deleteSlot shifts every record after slot one position to the left,
// overwriting it, then shrinks the record count.
func (pg *Page) deleteSlot(slot int) error {
	count, err := pg.GetNumberOfRecords()
	if err != nil {
		return err
	}
	for i := slot + 1; i < count; i++ {
		if err := pg.copySlot(i, i-1); err != nil {
			return err
		}
	}
	return pg.setNumberOfRecords(count - 1)
}

func (pg *Page) delete(slot int) error {
	return pg.deleteSlot(slot)
}

func (pg *Page) setNumberOfRecords(n int) error {
	return pg.t.SetInt(pg.block, countOffset, n, true)
}

func (pg *Page) copySlot(from, to int) error {
	for _, field := range pg.layout.Schema().Fields() {
		val, err := pg.readField(from, field)
		if err != nil {
			return err
		}
		if err := pg.writeField(to, field, val); err != nil {
			return err
		}
	}
	return nil
}
