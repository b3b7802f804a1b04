// SPDX-License-Identifier: MIT

// Package batch implements the batch-distance executables in Go.
//
// Each executable reads a text matrix (see matrixio), computes the all-pairs
// distance matrix of its rows and writes it without a header:
//
//	int_GDV-similarity <input> <output>
//	hellinger          <input> <output>
//	js_divergence      <input> <output>
//	{int,float}_normalized{1,2}_lp <p> <input> <output>    (p=0 means ∞)
//
// Problems are reported on stderr. The exit status stays 0 in that case, as
// callers treat any stderr output as a failure.
package batch

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/katalvlaran/graco/matrix"
	"github.com/katalvlaran/graco/matrixio"
	"github.com/katalvlaran/graco/metric"
)

var (
	// ErrUnknownExecutable is reported for a name not in Executables().
	ErrUnknownExecutable = errors.New("batch: unknown executable")
	// ErrUsage is reported for a wrong argument count or a bad p.
	ErrUsage = errors.New("batch: usage")
	// ErrNotIntegral is reported when an int_ executable reads fractional input.
	ErrNotIntegral = errors.New("batch: input is not integral")
)

// tool describes one executable.
type tool struct {
	withP   bool
	intOnly bool
	metric  func(p string) (metric.Metric, error)
}

func fixed(name string) func(string) (metric.Metric, error) {
	return func(string) (metric.Metric, error) { return metric.Parse(name) }
}

func normalized(family int) func(string) (metric.Metric, error) {
	return func(p string) (metric.Metric, error) {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return metric.Metric{}, fmt.Errorf("p %q: %w", p, ErrUsage)
		}
		lp := "inf"
		if n > 0 {
			lp = strconv.Itoa(n)
		}
		return metric.Parse("normalized" + strconv.Itoa(family) + "_l" + lp)
	}
}

var executables = map[string]tool{
	"int_GDV-similarity":   {intOnly: true, metric: fixed("gdv_similarity")},
	"hellinger":            {metric: fixed("hellinger")},
	"js_divergence":        {metric: fixed("js_divergence")},
	"int_normalized1_lp":   {withP: true, intOnly: true, metric: normalized(1)},
	"float_normalized1_lp": {withP: true, metric: normalized(1)},
	"int_normalized2_lp":   {withP: true, intOnly: true, metric: normalized(2)},
	"float_normalized2_lp": {withP: true, metric: normalized(2)},
}

// Executables returns the supported executable names, sorted.
func Executables() []string {
	out := make([]string, 0, len(executables))
	for name := range executables {
		out = append(out, name)
	}
	sort.Strings(out)

	return out
}

// Usage returns the one-line usage of an executable.
func Usage(executable string) string {
	if s, ok := executables[executable]; ok && s.withP {
		return executable + " <p> <input> <output>"
	}

	return executable + " <input> <output>"
}

// Run executes the named executable with args (excluding the program name).
// Failures are written to stderr; the return value is the exit status.
func Run(executable string, args []string, stderr io.Writer) int {
	if err := run(executable, args); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", executable, err)
		if errors.Is(err, ErrUsage) {
			fmt.Fprintf(stderr, "usage: %s\n", Usage(executable))
		}
	}

	return 0
}

func run(executable string, args []string) error {
	s, ok := executables[executable]
	if !ok {
		return ErrUnknownExecutable
	}
	want := 2
	if s.withP {
		want = 3
	}
	if len(args) != want {
		return fmt.Errorf("%d arguments, want %d: %w", len(args), want, ErrUsage)
	}

	p := ""
	if s.withP {
		p, args = args[0], args[1:]
	}
	m, err := s.metric(p)
	if err != nil {
		return err
	}

	M, err := readInput(args[0])
	if err != nil {
		return err
	}
	if s.intOnly && matrixio.DetectDType(M) != matrixio.DTypeInt {
		return ErrNotIntegral
	}

	D, err := Compute(M, m)
	if err != nil {
		return err
	}

	return writeOutput(args[1], D)
}

// Compute is the distance matrix an executable produces for M.
func Compute(M *matrix.Dense, m metric.Metric) (*matrix.Dense, error) {
	return metric.Matrix(M, m)
}

func readInput(path string) (*matrix.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return matrixio.ReadText(f)
}

func writeOutput(path string, D *matrix.Dense) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err = matrixio.WriteValues(f, D); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}
