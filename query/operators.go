package query

import "github.com/emberdb/ember/types"

// Operator is the type of Operator used in a term.
type Operator = types.Operator

const (
	EQ = types.EQ
	NE = types.NE
	LT = types.LT
	LE = types.LE
	GT = types.GT
	GE = types.GE
)
