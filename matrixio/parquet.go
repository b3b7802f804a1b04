// SPDX-License-Identifier: MIT

package matrixio

import (
	"errors"
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	"github.com/katalvlaran/graco/matrix"
)

// DistanceRecord is one cell of a distance matrix in long form.
type DistanceRecord struct {
	Row      int32   `parquet:"row"`
	Col      int32   `parquet:"col"`
	Distance float64 `parquet:"distance"`
}

// ErrCorruptParquet is returned when the records do not describe a full upper triangle.
var ErrCorruptParquet = errors.New("matrixio: parquet records do not form a square matrix")

// WriteParquet writes the upper triangle (diagonal included) of the square
// matrix D as DistanceRecord rows, zstd-compressed, row-major order.
//
// Errors: matrix.ErrNilMatrix, matrix.ErrDimensionMismatch, writer errors.
// Complexity: O(n²).
func WriteParquet(w io.Writer, D *matrix.Dense) error {
	if err := matrix.ValidateSquareNonNil(D); err != nil {
		return fmt.Errorf("WriteParquet: %w", err)
	}
	n := D.Rows()
	records := make([]DistanceRecord, 0, n*(n+1)/2)
	var v float64
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v, _ = D.At(i, j)
			records = append(records, DistanceRecord{Row: int32(i), Col: int32(j), Distance: v})
		}
	}

	pw := parquet.NewGenericWriter[DistanceRecord](w, parquet.Compression(&parquet.Zstd))
	if _, err := pw.Write(records); err != nil {
		return fmt.Errorf("WriteParquet: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("WriteParquet: close: %w", err)
	}

	return nil
}

// ReadParquet rebuilds the symmetric distance matrix written by WriteParquet.
// The result permits NaN.
//
// Errors: ErrCorruptParquet when indices are out of range or cells are missing;
// parquet decoding errors.
// Complexity: O(n²).
func ReadParquet(r io.ReaderAt, size int64) (*matrix.Dense, error) {
	pf, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("ReadParquet: %w", err)
	}
	pr := parquet.NewGenericReader[DistanceRecord](pf)
	defer pr.Close()

	records := make([]DistanceRecord, pr.NumRows())
	read := 0
	for read < len(records) {
		k, err := pr.Read(records[read:])
		read += k
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ReadParquet: %w", err)
		}
		if k == 0 {
			break
		}
	}
	if read != len(records) {
		return nil, fmt.Errorf("ReadParquet: read %d of %d rows: %w", read, len(records), io.ErrUnexpectedEOF)
	}

	var n int32
	for _, rec := range records {
		if rec.Col+1 > n {
			n = rec.Col + 1
		}
	}
	want := int(n) * int(n+1) / 2
	if n == 0 || len(records) != want {
		return nil, fmt.Errorf("ReadParquet: %d records for n=%d: %w", len(records), n, ErrCorruptParquet)
	}

	D, err := matrix.NewZerosNaNOK(int(n), int(n))
	if err != nil {
		return nil, fmt.Errorf("ReadParquet: %w", err)
	}
	seen := make([]bool, int(n)*int(n))
	for _, rec := range records {
		i, j := int(rec.Row), int(rec.Col)
		if i < 0 || i > j || seen[i*int(n)+j] {
			return nil, fmt.Errorf("ReadParquet: cell (%d,%d): %w", i, j, ErrCorruptParquet)
		}
		seen[i*int(n)+j] = true
		_ = D.Set(i, j, rec.Distance)
		_ = D.Set(j, i, rec.Distance)
	}

	return D, nil
}
