package record

import (
	"fmt"
	"time"

	"github.com/emberdb/ember/file"
	"github.com/emberdb/ember/tx"
)

// Slot status flags, stored in the int-sized header word at the front of
// every slot.
const (
	FlagEmpty = iota
	FlagUsed
)

var ErrNoSlotFound = fmt.Errorf("no slot found")

// Page is the record-level view of a heap-file block: a sequence of
// fixed-size slots, each prefixed with an empty/in-use flag, laid out
// according to a Layout.
type Page struct {
	t      *tx.Transaction
	block  *file.BlockId
	layout *Layout
}

func NewPage(t *tx.Transaction, block *file.BlockId, layout *Layout) (*Page, error) {
	if err := t.Pin(block); err != nil {
		return nil, err
	}
	return &Page{t: t, block: block, layout: layout}, nil
}

func (p *Page) GetInt(slot int, field string) (int, error) {
	return p.t.GetInt(p.block, p.fieldOffset(slot, field))
}

func (p *Page) GetLong(slot int, field string) (int64, error) {
	return p.t.GetLong(p.block, p.fieldOffset(slot, field))
}

func (p *Page) GetString(slot int, field string) (string, error) {
	return p.t.GetString(p.block, p.fieldOffset(slot, field))
}

func (p *Page) GetBool(slot int, field string) (bool, error) {
	return p.t.GetBool(p.block, p.fieldOffset(slot, field))
}

func (p *Page) GetDate(slot int, field string) (time.Time, error) {
	return p.t.GetDate(p.block, p.fieldOffset(slot, field))
}

func (p *Page) GetShort(slot int, field string) (int16, error) {
	return p.t.GetShort(p.block, p.fieldOffset(slot, field))
}

func (p *Page) SetInt(slot int, field string, val int) error {
	return p.t.SetInt(p.block, p.fieldOffset(slot, field), val, true)
}

func (p *Page) SetLong(slot int, field string, val int64) error {
	return p.t.SetLong(p.block, p.fieldOffset(slot, field), val, true)
}

func (p *Page) SetString(slot int, field string, val string) error {
	return p.t.SetString(p.block, p.fieldOffset(slot, field), val, true)
}

func (p *Page) SetBool(slot int, field string, val bool) error {
	return p.t.SetBool(p.block, p.fieldOffset(slot, field), val, true)
}

func (p *Page) SetDate(slot int, field string, val time.Time) error {
	return p.t.SetDate(p.block, p.fieldOffset(slot, field), val, true)
}

func (p *Page) SetShort(slot int, field string, val int16) error {
	return p.t.SetShort(p.block, p.fieldOffset(slot, field), val, true)
}

// Delete tombstones a slot without touching its field bytes; the space is
// reclaimed the next time InsertAfter scans past it.
func (p *Page) Delete(slot int) error {
	return p.setFlag(slot, FlagEmpty)
}

// Format stamps every slot in the block as empty and zeroes each field,
// unlogged since a freshly formatted block has no prior value worth
// recovering.
func (p *Page) Format() error {
	schema := p.layout.Schema()
	for slot := 0; p.isValidSlot(slot); slot++ {
		if err := p.t.SetInt(p.block, p.offset(slot), FlagEmpty, false); err != nil {
			return err
		}
		for _, field := range schema.Fields() {
			if err := p.zeroField(slot, field, schema.Type(field)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Page) zeroField(slot int, field string, fieldType SchemaType) error {
	pos := p.fieldOffset(slot, field)
	switch fieldType {
	case Integer:
		return p.t.SetInt(p.block, pos, 0, false)
	case Long:
		return p.t.SetLong(p.block, pos, 0, false)
	case Short:
		return p.t.SetShort(p.block, pos, 0, false)
	case Boolean:
		return p.t.SetBool(p.block, pos, false, false)
	case Date:
		return p.t.SetDate(p.block, pos, time.Time{}, false)
	case Varchar:
		return p.t.SetString(p.block, pos, "", false)
	default:
		return nil
	}
}

// NextAfter finds the next occupied slot after slot.
func (p *Page) NextAfter(slot int) (int, error) {
	return p.searchAfter(slot, FlagUsed)
}

// InsertAfter finds the next empty slot after slot, claims it, and
// returns its number.
func (p *Page) InsertAfter(slot int) (int, error) {
	free, err := p.searchAfter(slot, FlagEmpty)
	if err != nil {
		return -1, fmt.Errorf("insert after slot %d: %w", slot, err)
	}
	if err := p.setFlag(free, FlagUsed); err != nil {
		return -1, fmt.Errorf("set flag for slot %d: %w", free, err)
	}
	return free, nil
}

func (p *Page) searchAfter(slot, wantFlag int) (int, error) {
	for slot++; p.isValidSlot(slot); slot++ {
		flag, err := p.t.GetInt(p.block, p.offset(slot))
		if err != nil {
			return -1, fmt.Errorf("read flag at slot %d: %w", slot, err)
		}
		if flag == wantFlag {
			return slot, nil
		}
	}
	return -1, ErrNoSlotFound
}

func (p *Page) Block() *file.BlockId {
	return p.block
}

func (p *Page) isValidSlot(slot int) bool {
	return p.offset(slot+1) <= p.t.BlockSize()
}

func (p *Page) offset(slot int) int {
	return slot * p.layout.SlotSize()
}

func (p *Page) fieldOffset(slot int, field string) int {
	return p.offset(slot) + p.layout.Offset(field)
}

func (p *Page) setFlag(slot, flag int) error {
	return p.t.SetInt(p.block, p.offset(slot), flag, true)
}
