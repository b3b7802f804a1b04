// SPDX-License-Identifier: MIT

package gcv

import (
	"fmt"

	"github.com/katalvlaran/graco/matrix"
)

// Matrix holds one composite vector per node. Rows[i][b] is block Keys[b] of
// node Labels[i]; every block b of every row has length Dims[b].
type Matrix struct {
	Labels []string
	Keys   []BlockKey
	Dims   []int
	Rows   [][]Block
}

// Span places a block in the columns of a flat matrix.
type Span struct {
	Key  BlockKey
	Cols []int
}

// NewMatrix returns an empty matrix with the given block layout.
// Errors: ErrDuplicateBlock; ErrBlockDim for a non-positive dimension or a length mismatch.
func NewMatrix(keys []BlockKey, dims []int) (*Matrix, error) {
	if len(keys) != len(dims) {
		return nil, fmt.Errorf("NewMatrix: %d keys, %d dims: %w", len(keys), len(dims), ErrBlockDim)
	}
	seen := make(map[BlockKey]bool, len(keys))
	for b, k := range keys {
		if seen[k] {
			return nil, fmt.Errorf("NewMatrix: %s: %w", k, ErrDuplicateBlock)
		}
		seen[k] = true
		if dims[b] <= 0 {
			return nil, fmt.Errorf("NewMatrix: %s dim %d: %w", k, dims[b], ErrBlockDim)
		}
	}

	return &Matrix{
		Keys: append([]BlockKey(nil), keys...),
		Dims: append([]int(nil), dims...),
	}, nil
}

// AddRow appends a node. blocks follow the Keys order.
// Errors: ErrBlockDim.
func (G *Matrix) AddRow(label string, blocks []Block) error {
	if len(blocks) != len(G.Keys) {
		return fmt.Errorf("AddRow %q: %d blocks, want %d: %w", label, len(blocks), len(G.Keys), ErrBlockDim)
	}
	for b, blk := range blocks {
		if blk.Dim() != G.Dims[b] {
			return fmt.Errorf("AddRow %q: %s has %d entries, want %d: %w", label, G.Keys[b], blk.Dim(), G.Dims[b], ErrBlockDim)
		}
	}
	G.Labels = append(G.Labels, label)
	G.Rows = append(G.Rows, append([]Block(nil), blocks...))

	return nil
}

// AddVector appends a node given as a keyed Vector. Layout blocks absent from
// v are stored undefined.
// Errors: ErrUnknownBlock, ErrDuplicateBlock, ErrBlockDim.
func (G *Matrix) AddVector(label string, v Vector) error {
	index := make(map[BlockKey]int, len(G.Keys))
	for b, k := range G.Keys {
		index[k] = b
	}
	blocks := make([]Block, len(G.Keys))
	seen := make([]bool, len(G.Keys))
	for _, e := range v {
		b, ok := index[e.Key]
		if !ok {
			return fmt.Errorf("AddVector %q: %s: %w", label, e.Key, ErrUnknownBlock)
		}
		if seen[b] {
			return fmt.Errorf("AddVector %q: %s: %w", label, e.Key, ErrDuplicateBlock)
		}
		seen[b] = true
		blocks[b] = e.Block
	}
	for b := range blocks {
		if !seen[b] {
			blocks[b] = Undefined(G.Dims[b])
		}
	}

	return G.AddRow(label, blocks)
}

// FromDense splits the columns of a flat NaN-permitting matrix into blocks.
// labels may be nil. Every block is classified with NewBlock, so a row with a
// partially NaN block fails with ErrMixedBlock.
func FromDense(M *matrix.Dense, labels []string, layout []Span) (*Matrix, error) {
	if err := matrix.ValidateNotNil(M); err != nil {
		return nil, fmt.Errorf("FromDense: %w", err)
	}
	if labels != nil && len(labels) != M.Rows() {
		return nil, fmt.Errorf("FromDense: %d labels for %d rows: %w", len(labels), M.Rows(), matrix.ErrDimensionMismatch)
	}
	keys := make([]BlockKey, len(layout))
	dims := make([]int, len(layout))
	for b, s := range layout {
		keys[b], dims[b] = s.Key, len(s.Cols)
		for _, c := range s.Cols {
			if c < 0 || c >= M.Cols() {
				return nil, fmt.Errorf("FromDense: %s column %d: %w", s.Key, c, matrix.ErrOutOfRange)
			}
		}
	}
	G, err := NewMatrix(keys, dims)
	if err != nil {
		return nil, err
	}

	for i := 0; i < M.Rows(); i++ {
		row, _ := M.Row(i)
		blocks := make([]Block, len(layout))
		for b, s := range layout {
			vals := make([]float64, len(s.Cols))
			for k, c := range s.Cols {
				vals[k] = row[c]
			}
			if blocks[b], err = NewBlock(vals); err != nil {
				return nil, fmt.Errorf("FromDense: row %d block %s: %w", i, s.Key, err)
			}
		}
		label := ""
		if labels != nil {
			label = labels[i]
		}
		if err = G.AddRow(label, blocks); err != nil {
			return nil, err
		}
	}

	return G, nil
}

// Len returns the number of nodes.
func (G *Matrix) Len() int { return len(G.Rows) }

// Row returns node i as a Vector.
func (G *Matrix) Row(i int) (Vector, error) {
	if i < 0 || i >= len(G.Rows) {
		return nil, fmt.Errorf("Row %d: %w", i, matrix.ErrOutOfRange)
	}
	v := make(Vector, len(G.Keys))
	for b, k := range G.Keys {
		v[b] = Entry{Key: k, Block: G.Rows[i][b]}
	}

	return v, nil
}

// Dense flattens the matrix back to columns in Keys order, NaN for undefined blocks.
func (G *Matrix) Dense() (*matrix.Dense, error) {
	rows := make([][]float64, len(G.Rows))
	for i, blocks := range G.Rows {
		for _, blk := range blocks {
			rows[i] = append(rows[i], blk.Raw()...)
		}
	}

	return matrix.NewDenseFrom(rows, matrix.WithNoValidateNaNInf())
}

// block returns column block b of every node, NaN where it is undefined.
func (G *Matrix) block(b int) (*matrix.Dense, error) {
	rows := make([][]float64, len(G.Rows))
	for i, blocks := range G.Rows {
		rows[i] = blocks[b].Raw()
	}

	return matrix.NewDenseFrom(rows, matrix.WithNoValidateNaNInf())
}

// defined returns the rows where block b is defined and their coefficients.
func (G *Matrix) defined(b int) ([]int, *matrix.Dense, error) {
	var idx []int
	for i, blocks := range G.Rows {
		if blocks[b].IsDefined() {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return nil, nil, nil
	}
	all, err := G.block(b)
	if err != nil {
		return nil, nil, err
	}
	B, err := all.SelectRows(idx)
	if err != nil {
		return nil, nil, err
	}

	return idx, B, nil
}

// BlockVariances returns, per block defined in at least two rows, the sample
// variances (ddof=1) of its columns over those rows. These are the variances
// DistanceMatrix uses for seuclidean; pass them to Distance with
// WithBlockVariances to get matching pairwise values.
func (G *Matrix) BlockVariances() (map[BlockKey][]float64, error) {
	out := make(map[BlockKey][]float64, len(G.Keys))
	for b, k := range G.Keys {
		idx, B, err := G.defined(b)
		if err != nil {
			return nil, fmt.Errorf("BlockVariances: %s: %w", k, err)
		}
		if len(idx) < 2 {
			continue
		}
		if out[k], err = matrix.ColumnVariances(B); err != nil {
			return nil, fmt.Errorf("BlockVariances: %s: %w", k, err)
		}
	}

	return out, nil
}

// FillStrategy selects the replacement for undefined blocks.
type FillStrategy int

const (
	// Barycenter fills every entry with 1/dim.
	Barycenter FillStrategy = iota
	// Mean fills with the column means of the rows where the block is defined;
	// a block defined nowhere stays undefined.
	Mean
)

// FillUndefined returns a copy of G with undefined blocks replaced according to s.
func (G *Matrix) FillUndefined(s FillStrategy) (*Matrix, error) {
	out := &Matrix{
		Labels: append([]string(nil), G.Labels...),
		Keys:   append([]BlockKey(nil), G.Keys...),
		Dims:   append([]int(nil), G.Dims...),
		Rows:   make([][]Block, len(G.Rows)),
	}
	for i := range G.Rows {
		out.Rows[i] = append([]Block(nil), G.Rows[i]...)
	}

	for b, k := range G.Keys {
		var fill []float64
		switch s {
		case Barycenter:
			fill = make([]float64, G.Dims[b])
			for j := range fill {
				fill[j] = 1 / float64(G.Dims[b])
			}
		case Mean:
			idx, B, err := G.defined(b)
			if err != nil {
				return nil, fmt.Errorf("FillUndefined: %s: %w", k, err)
			}
			if len(idx) == 0 {
				continue
			}
			if fill, err = matrix.ColumnMeans(B); err != nil {
				return nil, fmt.Errorf("FillUndefined: %s: %w", k, err)
			}
		default:
			return nil, fmt.Errorf("FillUndefined: strategy %d: %w", s, matrix.ErrOutOfRange)
		}
		for i := range out.Rows {
			if !out.Rows[i][b].IsDefined() {
				out.Rows[i][b] = Defined(fill)
			}
		}
	}

	return out, nil
}
