package record

import "fmt"

// ID identifies one record slot by the block holding it and its slot
// index within that block's record page.
type ID struct {
	block int
	slot  int
}

func NewID(block, slot int) *ID {
	return &ID{block: block, slot: slot}
}

func (id *ID) BlockNumber() int {
	return id.block
}

func (id *ID) Slot() int {
	return id.slot
}

func (id *ID) Equals(other *ID) bool {
	return other != nil && id.block == other.block && id.slot == other.slot
}

func (id *ID) String() string {
	return fmt.Sprintf("[%d, %d]", id.block, id.slot)
}
