// SPDX-License-Identifier: MIT

// Package logging builds the zerolog loggers used by the executor, the engine
// and the gracobatch CLI.
//
// Library entry points default to zerolog.Nop(); only a caller that asks for
// logs (a Config with a level and a format) gets output.
package logging

import (
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Supported formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

var (
	// ErrInvalidLogFormat is returned for a format other than json or console.
	ErrInvalidLogFormat = errors.New("log_format must be 'json' or 'console'")
	// ErrInvalidLogLevel is returned for a level other than debug, info, warn or error.
	ErrInvalidLogLevel = errors.New("log_level must be debug, info, warn, or error")
)

// Config selects level and output format.
type Config struct {
	Level     string `envconfig:"LOG_LEVEL" yaml:"log_level"`
	Format    string `envconfig:"LOG_FORMAT" yaml:"log_format"`
	Component string `ignored:"true" yaml:"-"`
}

// DefaultConfig returns info-level JSON output.
func DefaultConfig() Config {
	return Config{Level: "info", Format: FormatJSON}
}

// Validate checks Level and Format.
func (c Config) Validate() error {
	if _, err := ParseLevel(c.Level); err != nil {
		return err
	}
	if c.Format != FormatJSON && c.Format != FormatConsole {
		return ErrInvalidLogFormat
	}

	return nil
}

// ParseLevel maps debug, info, warn and error (case-insensitive) to zerolog levels.
func ParseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "info":
		return zerolog.InfoLevel, nil
	case "warn":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	}

	return zerolog.NoLevel, ErrInvalidLogLevel
}

// New builds a logger writing to w (os.Stderr when nil).
//
// JSON output carries a timestamp; console output uses zerolog.ConsoleWriter
// without colour. A non-empty Component is attached to every event.
func New(cfg Config, w io.Writer) (zerolog.Logger, error) {
	if err := cfg.Validate(); err != nil {
		return zerolog.Nop(), err
	}
	if w == nil {
		w = os.Stderr
	}
	lvl, _ := ParseLevel(cfg.Level)

	out := w
	if cfg.Format == FormatConsole {
		out = zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: time.RFC3339}
	}
	ctx := zerolog.New(out).Level(lvl).With().Timestamp()
	if cfg.Component != "" {
		ctx = ctx.Str("component", cfg.Component)
	}

	return ctx.Logger(), nil
}

// Nop returns a disabled logger.
func Nop() zerolog.Logger { return zerolog.Nop() }
