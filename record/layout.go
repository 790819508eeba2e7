package record

import (
	"fmt"
	"sort"

	"github.com/emberdb/ember/file"
	"github.com/emberdb/ember/utils"
)

// Layout describes a record's on-disk shape: the byte offset of each field
// within a slot, and the total slot size.
type Layout struct {
	schema   *Schema
	offsets  map[string]int
	slotSize int
}

// NewLayout computes offsets for schema, placing the most strictly-aligned
// fields first so later fields need the least padding before them. The
// first int-sized word of every slot is reserved for the empty/in-use
// flag and is never part of the schema's own fields.
func NewLayout(schema *Schema) *Layout {
	fields := append([]string(nil), schema.Fields()...)
	alignOf := make(map[string]int, len(fields))
	for _, f := range fields {
		alignOf[f] = alignmentRequirement(schema.Type(f))
	}
	sort.Slice(fields, func(i, j int) bool {
		return alignOf[fields[i]] > alignOf[fields[j]]
	})

	l := &Layout{schema: schema, offsets: make(map[string]int, len(fields))}

	pos := utils.IntSize
	for _, f := range fields {
		pos = padTo(pos, alignOf[f])
		l.offsets[f] = pos
		pos += l.lengthInBytes(f)
	}
	l.slotSize = padTo(pos, maxAlignment(alignOf))

	return l
}

// padTo rounds pos up to the next multiple of align.
func padTo(pos, align int) int {
	if rem := pos % align; rem != 0 {
		return pos + align - rem
	}
	return pos
}

// NewLayoutFromMetadata rebuilds a layout from offsets already computed
// and persisted by the catalog, rather than recomputing them.
func NewLayoutFromMetadata(schema *Schema, offsets map[string]int, slotSize int) *Layout {
	return &Layout{schema: schema, offsets: offsets, slotSize: slotSize}
}

func (l *Layout) Schema() *Schema {
	return l.schema
}

func (l *Layout) Offset(field string) int {
	return l.offsets[field]
}

func (l *Layout) SlotSize() int {
	return l.slotSize
}

func (l *Layout) lengthInBytes(field string) int {
	switch l.schema.Type(field) {
	case Integer:
		return utils.IntSize
	case Long:
		return 8
	case Short:
		return 2
	case Boolean:
		return 1
	case Date:
		return 8
	case Varchar:
		return file.MaxLength(l.schema.Length(field))
	default:
		panic(fmt.Sprintf("unknown field type: %d", l.schema.Type(field)))
	}
}
