// SPDX-License-Identifier: MIT

package executor

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/graco/logging"
)

// EnvPrefix is the environment prefix read by LoadConfig (GRACO_BIN_DIR, ...).
const EnvPrefix = "GRACO"

// Config is injected into New. Nothing in this package reads paths from
// globals or from the install location.
type Config struct {
	// BinDir holds the batch executables.
	BinDir string `envconfig:"BIN_DIR" yaml:"bin_dir"`
	// TmpDir receives the per-call input/output files.
	TmpDir string `envconfig:"TMP_DIR" yaml:"tmp_dir"`
	// Executables overrides file names inside BinDir, keyed by executable name
	// (e.g. "hellinger": "hellinger.exe").
	Executables map[string]string `ignored:"true" yaml:"executables"`
	// KeepFailed leaves the temporary files of a failed call in place.
	KeepFailed bool `envconfig:"KEEP_FAILED" yaml:"keep_failed"`

	LogLevel  string `envconfig:"LOG_LEVEL" yaml:"log_level"`
	LogFormat string `envconfig:"LOG_FORMAT" yaml:"log_format"`
}

// DefaultConfig returns the configuration before any file or environment is applied.
func DefaultConfig() Config {
	lc := logging.DefaultConfig()

	return Config{
		TmpDir:    os.TempDir(),
		LogLevel:  lc.Level,
		LogFormat: lc.Format,
	}
}

// Logging returns the logging part of c.
func (c Config) Logging() logging.Config {
	return logging.Config{Level: c.LogLevel, Format: c.LogFormat, Component: "executor"}
}

// Validate checks directories and logging settings.
func (c Config) Validate() error {
	if c.BinDir == "" || !isDir(c.BinDir) {
		return ErrInvalidBinDir
	}
	if c.TmpDir == "" || !isDir(c.TmpDir) {
		return ErrInvalidTmpDir
	}

	return c.Logging().Validate()
}

// LoadConfig layers defaults, the YAML file at yamlPath, the dotenv file at
// envFile and the GRACO_* environment, then validates the result.
// Empty paths and missing files are skipped; a dotenv entry never overrides a
// variable already set in the environment.
func LoadConfig(yamlPath, envFile string) (Config, error) {
	cfg := DefaultConfig()

	if yamlPath != "" {
		raw, err := os.ReadFile(yamlPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("LoadConfig: %w", err)
		default:
			if err = yaml.Unmarshal(raw, &cfg); err != nil {
				return cfg, fmt.Errorf("LoadConfig: %s: %w", yamlPath, err)
			}
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("LoadConfig: %s: %w", envFile, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("LoadConfig: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func isDir(path string) bool {
	st, err := os.Stat(path)

	return err == nil && st.IsDir()
}
