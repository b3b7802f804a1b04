// SPDX-License-Identifier: MIT

package executor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/katalvlaran/graco/logging"
)

var (
	// ErrExec is wrapped by every *ExecError.
	ErrExec = errors.New("executor: external process failed")

	// ErrDType is returned when a dtype-specialised executable gets the wrong dtype.
	ErrDType = errors.New("executor: unsupported dtype")

	// ErrUnsupported is returned for a metric with no batch executable.
	ErrUnsupported = errors.New("executor: metric has no batch executable")

	// ErrInvalidBinDir is returned when BinDir is empty or not a directory.
	ErrInvalidBinDir = errors.New("bin_dir must be an existing directory")

	// ErrInvalidTmpDir is returned when TmpDir is not a directory.
	ErrInvalidTmpDir = errors.New("tmp_dir must be an existing directory")

	// ErrInvalidLogFormat and ErrInvalidLogLevel are the logging sentinels.
	ErrInvalidLogFormat = logging.ErrInvalidLogFormat
	ErrInvalidLogLevel  = logging.ErrInvalidLogLevel
)

// ExecError describes a failed executable run: a non-zero exit status, a
// non-empty standard error stream, or a failure to start.
type ExecError struct {
	Cmd      []string // argv as invoked
	ExitCode int      // -1 when the process did not run to completion
	Stderr   string
	Err      error // underlying os/exec error, nil when only stderr was written
}

func (e *ExecError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %q exit %d", ErrExec.Error(), strings.Join(e.Cmd, " "), e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		sb.WriteString(": ")
		sb.WriteString(s)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}

	return sb.String()
}

// Unwrap exposes ErrExec and the underlying error.
func (e *ExecError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrExec}
	}

	return []error{ErrExec, e.Err}
}

func executorErrorf(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
