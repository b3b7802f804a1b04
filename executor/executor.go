// SPDX-License-Identifier: MIT

// Package executor runs the batch-distance executables: it writes a matrix to
// a temporary file, runs the executable on it and reads the square distance
// matrix it produces.
//
// File contract (one call):
//
//	<executable> [p] <input> <output>
//
// The input carries a "# rows cols" header and values formatted %d (int) or
// %.7f (float). A run succeeds only with exit status 0 and an empty standard
// error stream. The output is a whitespace-separated n×n matrix whose row order
// is the input row order. p is present for the normalized Lp executables only,
// with ∞ written as 0.
//
// Every call gets its own file pair, so an Executor is safe for concurrent use
// by any number of goroutines and processes sharing TmpDir.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/katalvlaran/graco/matrix"
	"github.com/katalvlaran/graco/matrixio"
	"github.com/katalvlaran/graco/metric"
)

// Executable names.
const (
	ExeGDVSimilarity = "int_GDV-similarity"
	ExeHellinger     = "hellinger"
	ExeJSDivergence  = "js_divergence"

	// InfP is the p argument that selects the ∞ form.
	InfP = "0"
)

const opDistanceMatrix = "DistanceMatrix"

// Executor runs batch executables for the metrics it supports.
type Executor struct {
	cfg Config
	log zerolog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger (default: disabled).
func WithLogger(l zerolog.Logger) Option {
	return func(e *Executor) { e.log = l }
}

// New validates cfg and returns an Executor.
func New(cfg Config, opts ...Option) (*Executor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, executorErrorf("New", err)
	}
	e := &Executor{cfg: cfg, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Supports reports whether m has a batch executable.
func (e *Executor) Supports(m metric.Metric) bool {
	return Supports(m)
}

// Supports reports whether m has a batch executable: the external metrics and
// both normalized Lp families.
func Supports(m metric.Metric) bool {
	return m.Kind == metric.KindExternal || m.Kind == metric.KindNormalizedLp
}

// Executable returns the executable name and the arguments that precede the
// file paths for m on input of the given dtype.
//
// gdv_similarity accepts int input only. hellinger and js_divergence always
// read float input. The normalized Lp executables exist in both dtypes.
//
// Errors: ErrDType, ErrUnsupported.
func Executable(m metric.Metric, dtype matrixio.DType) (string, []string, error) {
	switch m.Kind {
	case metric.KindExternal:
		switch m.External {
		case metric.GDVSimilarity:
			if dtype != matrixio.DTypeInt {
				return "", nil, fmt.Errorf("%s needs int input, got %s: %w", m.Name, dtype, ErrDType)
			}
			return ExeGDVSimilarity, nil, nil
		case metric.Hellinger:
			return ExeHellinger, nil, nil
		case metric.JSDivergence:
			return ExeJSDivergence, nil, nil
		}
	case metric.KindNormalizedLp:
		name := dtype.String() + "_normalized" + strconv.Itoa(int(m.Family)) + "_lp"
		p := InfP
		if !m.IsInfP() {
			p = strconv.FormatFloat(m.P, 'f', -1, 64)
		}
		return name, []string{p}, nil
	}

	return "", nil, fmt.Errorf("%s: %w", m.Name, ErrUnsupported)
}

// path resolves an executable inside BinDir, honouring Config.Executables.
func (e *Executor) path(name string) string {
	if file, ok := e.cfg.Executables[name]; ok && file != "" {
		name = file
	}

	return filepath.Join(e.cfg.BinDir, name)
}

// DistanceMatrix runs the batch executable for m on the rows of M and returns
// the n×n result, NaN permitted.
//
// Implementation:
//   - Stage 1: pick the dtype; hellinger and js_divergence rows are divided by
//     their mass first and always go as float.
//   - Stage 2: reserve a fresh input/output pair in TmpDir, released on every
//     return path (kept on failure when Config.KeepFailed is set).
//   - Stage 3: write the input, run the executable, treat any stderr output as failure.
//   - Stage 4: read the output and check it is n×n.
//
// Errors:
//   - ErrUnsupported, ErrDType, metric.ErrZeroMass.
//   - matrix.ErrNilMatrix; matrix.ErrNaNInf, since the text format carries finite values only.
//   - *ExecError (errors.Is ErrExec) for a failed run; ctx cancellation kills the process.
//   - matrixio errors and matrix.ErrDimensionMismatch for bad output.
func (e *Executor) DistanceMatrix(ctx context.Context, M *matrix.Dense, m metric.Metric) (_ *matrix.Dense, err error) {
	if !Supports(m) {
		return nil, executorErrorf(opDistanceMatrix, fmt.Errorf("%s: %w", m.Name, ErrUnsupported))
	}
	if err = matrix.ValidateFinite(M); err != nil {
		return nil, executorErrorf(opDistanceMatrix, err)
	}

	input, dtype, err := prepareInput(M, m)
	if err != nil {
		return nil, executorErrorf(opDistanceMatrix, err)
	}
	name, args, err := Executable(m, dtype)
	if err != nil {
		return nil, executorErrorf(opDistanceMatrix, err)
	}

	start := time.Now()
	outcome := outcomeSuccess
	defer func() {
		InvocationsTotal.WithLabelValues(name, outcome).Inc()
		DurationSeconds.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()

	tp, err := newTempPair(e.cfg.TmpDir, name, e.log)
	if err != nil {
		outcome = outcomeIO
		return nil, executorErrorf(opDistanceMatrix, err)
	}
	defer func() { tp.release(err != nil && e.cfg.KeepFailed) }()

	if err = writeInput(tp.in, input, dtype); err != nil {
		outcome = outcomeIO
		return nil, executorErrorf(opDistanceMatrix, err)
	}

	argv := append(append([]string{}, args...), tp.in, tp.out)
	rows, cols := M.Shape()
	e.log.Debug().
		Str("executable", name).
		Strs("args", argv).
		Int("rows", rows).
		Int("cols", cols).
		Str("dtype", dtype.String()).
		Msg("running batch executable")

	if err = e.run(ctx, e.path(name), argv); err != nil {
		outcome = outcomeExec
		e.log.Error().Err(err).Str("executable", name).Msg("batch executable failed")
		return nil, executorErrorf(opDistanceMatrix, err)
	}

	D, err := readOutput(tp.out, rows)
	if err != nil {
		outcome = outcomeParse
		e.log.Error().Err(err).Str("executable", name).Str("out", tp.out).Msg("unreadable batch output")
		return nil, executorErrorf(opDistanceMatrix, err)
	}

	e.log.Debug().
		Str("executable", name).
		Dur("duration", time.Since(start)).
		Msg("batch executable done")

	return D, nil
}

// prepareInput returns the matrix to serialise and its dtype.
func prepareInput(M *matrix.Dense, m metric.Metric) (*matrix.Dense, matrixio.DType, error) {
	if m.Kind == metric.KindExternal && (m.External == metric.Hellinger || m.External == metric.JSDivergence) {
		N, norms, err := matrix.NormalizeRowsL1(M)
		if err != nil {
			return nil, matrixio.DTypeFloat, err
		}
		for i, s := range norms {
			if s == 0 {
				return nil, matrixio.DTypeFloat, fmt.Errorf("row %d: %w", i, metric.ErrZeroMass)
			}
		}
		return N.(*matrix.Dense), matrixio.DTypeFloat, nil
	}

	return M, matrixio.DetectDType(M), nil
}

func writeInput(path string, M *matrix.Dense, dtype matrixio.DType) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if err = matrixio.WriteText(f, M, dtype); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

// run executes path with argv. A non-empty stderr fails the run even on exit 0.
func (e *Executor) run(ctx context.Context, path string, argv []string) error {
	cmd := exec.CommandContext(ctx, path, argv...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if runErr == nil && stderr.Len() == 0 {
		return nil
	}

	code := -1
	if cmd.ProcessState != nil {
		code = cmd.ProcessState.ExitCode()
	}
	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) && ctx.Err() == nil {
		runErr = nil // the exit code already says it
	} else if ctx.Err() != nil {
		runErr = ctx.Err()
	}

	return &ExecError{
		Cmd:      append([]string{path}, argv...),
		ExitCode: code,
		Stderr:   stderr.String(),
		Err:      runErr,
	}
}

func readOutput(path string, n int) (*matrix.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	D, err := matrixio.ReadText(f)
	if err != nil {
		return nil, err
	}
	if r, c := D.Shape(); r != n || c != n {
		return nil, fmt.Errorf("output %dx%d for %d rows: %w", r, c, n, matrix.ErrDimensionMismatch)
	}

	return D, nil
}
