// SPDX-License-Identifier: MIT

// Package matrixio reads and writes matrices in the formats exchanged with the
// batch-distance executables and with downstream consumers.
//
// Text format (executor wire format):
//
//	# <rows> <cols>
//	v00 v01 ... v0c
//	...
//
// Integers are written with %d, floats with %.7f. The reader accepts any
// whitespace-separated numeric matrix, skips blank lines and '#' comments, and
// checks a leading "# rows cols" header when one is present.
//
// Parquet format: long-form (row, col, distance) records for the upper triangle
// of a square distance matrix, diagonal included.
package matrixio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/katalvlaran/graco/matrix"
)

// DType is the numeric type a matrix is serialised as.
type DType int

const (
	// DTypeFloat writes values with %.7f.
	DTypeFloat DType = iota
	// DTypeInt writes values with %d; every entry must be integral.
	DTypeInt
)

// String returns "int" or "float".
func (d DType) String() string {
	if d == DTypeInt {
		return "int"
	}

	return "float"
}

var (
	// ErrNotIntegral is returned when DTypeInt is requested for a non-integral entry.
	ErrNotIntegral = errors.New("matrixio: value is not integral")

	// ErrEmpty is returned when a text matrix has no data rows.
	ErrEmpty = errors.New("matrixio: empty matrix")

	// ErrHeaderMismatch is returned when the "# rows cols" header disagrees with the data.
	ErrHeaderMismatch = errors.New("matrixio: header does not match data")

	// ErrParse is returned for a token that is not a number.
	ErrParse = errors.New("matrixio: invalid number")
)

const (
	commentPrefix = "#"
	floatPrec     = 7        // %.7f
	maxLineBytes  = 64 << 20 // generous upper bound for one matrix row
)

// DetectDType returns DTypeInt when every entry is finite and integral,
// DTypeFloat otherwise.
func DetectDType(M *matrix.Dense) DType {
	dt := DTypeInt
	M.Do(func(_, _ int, v float64) bool {
		if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
			dt = DTypeFloat
			return false
		}
		return true
	})

	return dt
}

// WriteText serialises M row-major with a "# rows cols" header.
//
// Errors: ErrNotIntegral for DTypeInt with a non-integral entry; writer errors.
// Complexity: O(r*c).
func WriteText(w io.Writer, M *matrix.Dense, dtype DType) error {
	if M == nil {
		return fmt.Errorf("WriteText: %w", matrix.ErrNilMatrix)
	}
	bw := bufio.NewWriter(w)
	r, c := M.Shape()
	if _, err := fmt.Fprintf(bw, "%s %d %d\n", commentPrefix, r, c); err != nil {
		return fmt.Errorf("WriteText: header: %w", err)
	}

	buf := make([]byte, 0, 32)
	for i := 0; i < r; i++ {
		row, _ := M.Row(i) // i in range
		for j, v := range row {
			if j > 0 {
				_ = bw.WriteByte(' ')
			}
			buf = buf[:0]
			if dtype == DTypeInt {
				if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
					return fmt.Errorf("WriteText: (%d,%d)=%g: %w", i, j, v, ErrNotIntegral)
				}
				buf = strconv.AppendInt(buf, int64(v), 10)
			} else {
				buf = strconv.AppendFloat(buf, v, 'f', floatPrec, 64)
			}
			if _, err := bw.Write(buf); err != nil {
				return fmt.Errorf("WriteText: %w", err)
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("WriteText: %w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("WriteText: flush: %w", err)
	}

	return nil
}

// WriteValues writes M without a header, one row per line, each value in the
// shortest representation that round-trips ('g', -1) followed by a space.
// This is the result format of the batch-distance executables.
//
// Errors: matrix.ErrNilMatrix; writer errors.
func WriteValues(w io.Writer, M *matrix.Dense) error {
	if M == nil {
		return fmt.Errorf("WriteValues: %w", matrix.ErrNilMatrix)
	}
	bw := bufio.NewWriter(w)
	buf := make([]byte, 0, 32)
	for i := 0; i < M.Rows(); i++ {
		row, _ := M.Row(i)
		for _, v := range row {
			buf = strconv.AppendFloat(buf[:0], v, 'g', -1, 64)
			buf = append(buf, ' ')
			if _, err := bw.Write(buf); err != nil {
				return fmt.Errorf("WriteValues: %w", err)
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("WriteValues: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("WriteValues: flush: %w", err)
	}

	return nil
}

// ReadText parses a whitespace-separated numeric matrix.
//
// Behavior highlights:
//   - Blank lines are skipped; lines starting with '#' are comments.
//   - The first comment of the form "# <rows> <cols>" is a header and must match the data.
//   - "nan", "-nan", "inf", "-inf" (any case) are accepted.
//   - The result permits NaN/Inf.
//
// Errors: ErrEmpty, matrix.ErrRagged, ErrHeaderMismatch, ErrParse, reader errors.
// Complexity: O(r*c).
func ReadText(r io.Reader) (*matrix.Dense, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var (
		rows      [][]float64
		hdrRows   = -1
		hdrCols   = -1
		seenHdr   bool
		lineNo    int
		width     = -1
		line      string
		fields    []string
		parsedRow []float64
	)
	for sc.Scan() {
		lineNo++
		line = strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, commentPrefix) {
			if !seenHdr && len(rows) == 0 {
				seenHdr = true
				hdrRows, hdrCols = parseHeader(line)
			}
			continue
		}

		fields = strings.Fields(line)
		parsedRow = make([]float64, len(fields))
		for j, tok := range fields {
			v, err := parseNumber(tok)
			if err != nil {
				return nil, fmt.Errorf("ReadText: line %d field %d %q: %w", lineNo, j+1, tok, ErrParse)
			}
			parsedRow[j] = v
		}
		if width >= 0 && len(parsedRow) != width {
			return nil, fmt.Errorf("ReadText: line %d has %d values, want %d: %w", lineNo, len(parsedRow), width, matrix.ErrRagged)
		}
		width = len(parsedRow)
		rows = append(rows, parsedRow)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("ReadText: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("ReadText: %w", ErrEmpty)
	}
	if hdrRows >= 0 && (hdrRows != len(rows) || hdrCols != width) {
		return nil, fmt.Errorf("ReadText: header %dx%d, data %dx%d: %w", hdrRows, hdrCols, len(rows), width, ErrHeaderMismatch)
	}

	return matrix.NewDenseFrom(rows, matrix.WithNoValidateNaNInf())
}

// parseHeader returns (rows, cols) for "# r c", or (-1, -1) for any other comment.
func parseHeader(line string) (int, int) {
	f := strings.Fields(strings.TrimPrefix(line, commentPrefix))
	if len(f) != 2 {
		return -1, -1
	}
	r, err1 := strconv.Atoi(f[0])
	c, err2 := strconv.Atoi(f[1])
	if err1 != nil || err2 != nil || r < 0 || c < 0 {
		return -1, -1
	}

	return r, c
}

// parseNumber is strconv.ParseFloat plus the "-nan" spelling some C++ runtimes emit.
func parseNumber(tok string) (float64, error) {
	if strings.EqualFold(tok, "-nan") || strings.EqualFold(tok, "+nan") {
		return math.NaN(), nil
	}

	return strconv.ParseFloat(tok, 64)
}
