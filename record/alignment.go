package record

import "github.com/emberdb/ember/utils"

// Byte alignments for each fixed-size field type. Varchar fields carry no
// alignment requirement since they're packed byte-tight.
const (
	LongAlignment    = 8
	ShortAlignment   = 2
	BooleanAlignment = 1
	DateAlignment    = 8
	VarcharAlignment = 1
)

func alignmentRequirement(t SchemaType) int {
	switch t {
	case Integer:
		return utils.IntSize
	case Long:
		return LongAlignment
	case Short:
		return ShortAlignment
	case Boolean:
		return BooleanAlignment
	case Date:
		return DateAlignment
	case Varchar:
		return VarcharAlignment
	default:
		return 1
	}
}

// maxAlignment returns the largest alignment value present, used to pad a
// slot's total size up to its strictest field boundary.
func maxAlignment(alignments map[string]int) int {
	best := 1
	for _, a := range alignments {
		if a > best {
			best = a
		}
	}
	return best
}
