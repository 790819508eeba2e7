package table

import (
	"fmt"
	"time"

	"github.com/emberdb/ember/file"
	"github.com/emberdb/ember/record"
	"github.com/emberdb/ember/scan"
	"github.com/emberdb/ember/tx"
	"github.com/emberdb/ember/types"
)

// heapFileSuffix is appended to a table name to get the name of the file
// holding its records.
const heapFileSuffix = ".tbl"

var _ scan.UpdateScan = (*Scan)(nil)

// Scan walks the heap file backing a single table, one record slot at a
// time, presenting it as the Scan/UpdateScan contract expects: a cursor
// that can be advanced, read from, written to, and repositioned by RID.
type Scan struct {
	t        *tx.Transaction
	layout   *record.Layout
	heapFile string

	page *record.Page
	slot int
}

// NewTableScan opens (or, for a table with no blocks yet, initializes) a
// scan positioned before the first slot of block zero.
func NewTableScan(t *tx.Transaction, tableName string, layout *record.Layout) (*Scan, error) {
	if err := checkSlotFits(layout, t.BlockSize()); err != nil {
		return nil, err
	}

	s := &Scan{
		t:        t,
		layout:   layout,
		heapFile: tableName + heapFileSuffix,
		slot:     -1,
	}

	blockCount, err := t.Size(s.heapFile)
	if err != nil {
		return nil, fmt.Errorf("table scan: file size: %w", err)
	}
	if blockCount == 0 {
		return s, s.appendBlock()
	}
	return s, s.loadBlock(0)
}

func checkSlotFits(layout *record.Layout, blockSize int) error {
	if layout.SlotSize() > blockSize {
		return fmt.Errorf("record slot size (%d) exceeds block size (%d)", layout.SlotSize(), blockSize)
	}
	return nil
}

func (s *Scan) BeforeFirst() error {
	return s.loadBlock(0)
}

// Next advances the cursor to the following occupied slot, crossing into
// subsequent blocks of the heap file as needed. It reports false once the
// last block has been exhausted.
func (s *Scan) Next() (bool, error) {
	for {
		next, err := s.page.NextAfter(s.slot)
		if err == nil {
			s.slot = next
			return true, nil
		}

		last, lastErr := s.onLastBlock()
		if lastErr != nil {
			return false, lastErr
		}
		if last {
			return false, nil
		}
		if err := s.loadBlock(s.blockNumber() + 1); err != nil {
			return false, err
		}
	}
}

func (s *Scan) GetInt(field string) (int, error)      { return s.page.GetInt(s.slot, field) }
func (s *Scan) GetLong(field string) (int64, error)    { return s.page.GetLong(s.slot, field) }
func (s *Scan) GetShort(field string) (int16, error)   { return s.page.GetShort(s.slot, field) }
func (s *Scan) GetString(field string) (string, error) { return s.page.GetString(s.slot, field) }
func (s *Scan) GetBool(field string) (bool, error)     { return s.page.GetBool(s.slot, field) }
func (s *Scan) GetDate(field string) (time.Time, error) {
	return s.page.GetDate(s.slot, field)
}

// GetVal reads the current slot's value for field, boxed according to its
// declared schema type.
func (s *Scan) GetVal(field string) (any, error) {
	switch s.layout.Schema().Type(field) {
	case types.Integer:
		return s.GetInt(field)
	case types.Long:
		return s.GetLong(field)
	case types.Short:
		return s.GetShort(field)
	case types.Varchar:
		return s.GetString(field)
	case types.Boolean:
		return s.GetBool(field)
	case types.Date:
		return s.GetDate(field)
	default:
		return nil, fmt.Errorf("unsupported field type: %v", s.layout.Schema().Type(field))
	}
}

func (s *Scan) SetInt(field string, v int) error      { return s.page.SetInt(s.slot, field, v) }
func (s *Scan) SetLong(field string, v int64) error   { return s.page.SetLong(s.slot, field, v) }
func (s *Scan) SetShort(field string, v int16) error  { return s.page.SetShort(s.slot, field, v) }
func (s *Scan) SetString(field string, v string) error { return s.page.SetString(s.slot, field, v) }
func (s *Scan) SetBool(field string, v bool) error    { return s.page.SetBool(s.slot, field, v) }
func (s *Scan) SetDate(field string, v time.Time) error {
	return s.page.SetDate(s.slot, field, v)
}

// SetVal writes val into field, rejecting it if its dynamic type doesn't
// match the field's declared schema type.
func (s *Scan) SetVal(field string, val any) error {
	fieldType := s.layout.Schema().Type(field)
	mismatch := fmt.Errorf("type mismatch for field %s", field)

	switch fieldType {
	case types.Integer:
		v, ok := val.(int)
		if !ok {
			return mismatch
		}
		return s.SetInt(field, v)
	case types.Long:
		v, ok := val.(int64)
		if !ok {
			return mismatch
		}
		return s.SetLong(field, v)
	case types.Short:
		v, ok := val.(int16)
		if !ok {
			return mismatch
		}
		return s.SetShort(field, v)
	case types.Varchar:
		v, ok := val.(string)
		if !ok {
			return mismatch
		}
		return s.SetString(field, v)
	case types.Boolean:
		v, ok := val.(bool)
		if !ok {
			return mismatch
		}
		return s.SetBool(field, v)
	case types.Date:
		v, ok := val.(time.Time)
		if !ok {
			return mismatch
		}
		return s.SetDate(field, v)
	default:
		return mismatch
	}
}

func (s *Scan) HasField(field string) bool {
	return s.layout.Schema().HasField(field)
}

// Close unpins whatever block is currently backing the scan.
func (s *Scan) Close() {
	if s.page != nil {
		s.t.Unpin(s.page.Block())
	}
}

// Insert finds room for a new record — scanning forward from the current
// slot, crossing block boundaries and appending a fresh block once the
// heap file is exhausted — and leaves the cursor parked on the empty slot
// it claimed.
func (s *Scan) Insert() error {
	if err := checkSlotFits(s.layout, s.t.BlockSize()); err != nil {
		return err
	}

	for {
		slot, err := s.page.InsertAfter(s.slot)
		if err == nil {
			s.slot = slot
			return nil
		}

		last, err := s.onLastBlock()
		if err != nil {
			return fmt.Errorf("table scan: checking last block: %w", err)
		}
		if last {
			if err := s.appendBlock(); err != nil {
				return fmt.Errorf("table scan: append block: %w", err)
			}
			continue
		}
		if err := s.loadBlock(s.blockNumber() + 1); err != nil {
			return fmt.Errorf("table scan: load next block: %w", err)
		}
	}
}

func (s *Scan) Delete() error {
	return s.page.Delete(s.slot)
}

func (s *Scan) GetRecordID() *record.ID {
	return record.NewID(s.blockNumber(), s.slot)
}

// MoveToRecordID repositions the cursor directly at the given RID,
// pinning its block regardless of where the scan currently sits.
func (s *Scan) MoveToRecordID(rid *record.ID) error {
	s.Close()

	page, err := record.NewPage(s.t, &file.BlockId{File: s.heapFile, BlockNumber: rid.BlockNumber()}, s.layout)
	if err != nil {
		return fmt.Errorf("table scan: pin block for rid: %w", err)
	}
	s.page = page
	s.slot = rid.Slot()
	return nil
}

func (s *Scan) blockNumber() int {
	return s.page.Block().Number()
}

// loadBlock unpins whatever block the scan currently holds and pins the
// given block instead, resetting the cursor to just before its first slot.
func (s *Scan) loadBlock(blockNum int) error {
	s.Close()
	page, err := record.NewPage(s.t, &file.BlockId{File: s.heapFile, BlockNumber: blockNum}, s.layout)
	if err != nil {
		return fmt.Errorf("table scan: pin block %d: %w", blockNum, err)
	}
	s.page = page
	s.slot = -1
	return nil
}

// appendBlock grows the heap file by one block, formats its slots as
// empty, and parks the cursor just before its first slot.
func (s *Scan) appendBlock() error {
	s.Close()

	blk, err := s.t.Append(s.heapFile)
	if err != nil {
		return fmt.Errorf("table scan: append block: %w", err)
	}
	page, err := record.NewPage(s.t, blk, s.layout)
	if err != nil {
		return fmt.Errorf("table scan: pin new block: %w", err)
	}
	if err := page.Format(); err != nil {
		return fmt.Errorf("table scan: format new block: %w", err)
	}
	s.page = page
	s.slot = -1
	return nil
}

// onLastBlock reports whether the scan's current block is the final one
// in the heap file.
func (s *Scan) onLastBlock() (bool, error) {
	blockCount, err := s.t.Size(s.heapFile)
	if err != nil {
		return false, fmt.Errorf("table scan: file size: %w", err)
	}
	return s.blockNumber() == blockCount-1, nil
}
