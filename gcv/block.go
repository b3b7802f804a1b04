// SPDX-License-Identifier: MIT

// Package gcv aggregates distances over composite vectors split into named
// equation blocks (graphlet coefficient vectors).
//
// Each block of a row is either Defined (a convex vector) or Undefined (the
// coefficients had a zero denominator). The distance of two rows is the mean of
// the per-block normalised distances over the blocks defined in both rows; a
// pair with no such block has distance NaN. DistanceMatrix computes the same
// values block by block on the rows where each block is defined.
package gcv

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/graco/distance"
)

var (
	// ErrMixedBlock marks a block with some but not all entries NaN.
	ErrMixedBlock = errors.New("gcv: block is partially defined")
	// ErrUnknownBlock is returned for a key that is not part of the layout.
	ErrUnknownBlock = errors.New("gcv: unknown block")
	// ErrBlockDim is returned when a block has the wrong length for its key.
	ErrBlockDim = errors.New("gcv: block dimension mismatch")
	// ErrDuplicateBlock is returned when a key appears twice.
	ErrDuplicateBlock = errors.New("gcv: duplicate block")
)

// BlockKey names an equation block.
type BlockKey struct {
	Group    string
	Equation string
}

func (k BlockKey) String() string { return k.Group + "/" + k.Equation }

// Block is Defined (values set) or Undefined (only the dimension is known).
// The zero value is an Undefined block of dimension 0.
type Block struct {
	values []float64
	dim    int
}

// Defined returns a defined block holding a copy of values.
func Defined(values []float64) Block {
	return Block{values: append([]float64(nil), values...), dim: len(values)}
}

// Undefined returns an undefined block of the given dimension.
func Undefined(dim int) Block { return Block{dim: dim} }

// NewBlock classifies raw coefficients: all NaN gives Undefined, no NaN gives
// Defined, anything else is a *distance.InvariantError wrapping ErrMixedBlock.
func NewBlock(values []float64) (Block, error) {
	if len(values) == 0 {
		return Block{}, fmt.Errorf("NewBlock: empty: %w", ErrBlockDim)
	}
	nan := 0
	for _, v := range values {
		if math.IsNaN(v) {
			nan++
		}
	}
	switch {
	case nan == 0:
		return Defined(values), nil
	case nan == len(values):
		return Undefined(len(values)), nil
	}

	return Block{}, &distance.InvariantError{
		Op:     "NewBlock",
		Detail: fmt.Sprintf("%d of %d entries NaN", nan, len(values)),
		Err:    ErrMixedBlock,
	}
}

// IsDefined reports whether the block holds values.
func (b Block) IsDefined() bool { return b.values != nil }

// Dim returns the block length.
func (b Block) Dim() int { return b.dim }

// Values returns the coefficients (nil when undefined). Do not modify.
func (b Block) Values() []float64 { return b.values }

// Raw returns the coefficients with NaN for an undefined block.
func (b Block) Raw() []float64 {
	if b.IsDefined() {
		return append([]float64(nil), b.values...)
	}
	out := make([]float64, b.dim)
	for i := range out {
		out[i] = math.NaN()
	}

	return out
}

// Entry is one block of a Vector.
type Entry struct {
	Key   BlockKey
	Block Block
}

// Vector is a composite vector: blocks in layout order.
type Vector []Entry

// Lookup returns the block stored under k.
func (v Vector) Lookup(k BlockKey) (Block, bool) {
	for _, e := range v {
		if e.Key == k {
			return e.Block, true
		}
	}

	return Block{}, false
}
