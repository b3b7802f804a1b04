// SPDX-License-Identifier: MIT
package executor_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/graco/executor"
)

func unsetAfter(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		_, had := os.LookupEnv(k)
		require.False(t, had, "%s set in the test environment", k)
	}
	t.Cleanup(func() {
		for _, k := range keys {
			_ = os.Unsetenv(k)
		}
	})
}

func TestLoadConfigLayers(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "bin")
	yamlTmp := filepath.Join(dir, "yaml-tmp")
	envTmp := filepath.Join(dir, "env-tmp")
	for _, d := range []string{bin, yamlTmp, envTmp} {
		require.NoError(t, os.Mkdir(d, 0o755))
	}

	yamlPath := filepath.Join(dir, "graco.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(
		"bin_dir: "+bin+"\n"+
			"tmp_dir: "+yamlTmp+"\n"+
			"log_format: console\n"+
			"executables:\n  hellinger: hellinger.exe\n"), 0o644))

	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte(
		"GRACO_KEEP_FAILED=true\nGRACO_LOG_LEVEL=debug\nGRACO_TMP_DIR=/does/not/matter\n"), 0o644))

	unsetAfter(t, "GRACO_KEEP_FAILED", "GRACO_LOG_LEVEL", "GRACO_BIN_DIR", "GRACO_LOG_FORMAT")
	t.Setenv("GRACO_TMP_DIR", envTmp) // the process environment wins over .env

	cfg, err := executor.LoadConfig(yamlPath, envPath)
	require.NoError(t, err)
	require.Equal(t, bin, cfg.BinDir)
	require.Equal(t, envTmp, cfg.TmpDir)
	require.True(t, cfg.KeepFailed)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "console", cfg.LogFormat)
	require.Equal(t, map[string]string{"hellinger": "hellinger.exe"}, cfg.Executables)
	require.Equal(t, "executor", cfg.Logging().Component)
}

func TestLoadConfigMissingFiles(t *testing.T) {
	unsetAfter(t, "GRACO_KEEP_FAILED", "GRACO_LOG_LEVEL", "GRACO_TMP_DIR", "GRACO_LOG_FORMAT")
	bin := t.TempDir()
	t.Setenv("GRACO_BIN_DIR", bin)

	dir := t.TempDir()
	cfg, err := executor.LoadConfig(filepath.Join(dir, "none.yaml"), filepath.Join(dir, "none.env"))
	require.NoError(t, err)
	require.Equal(t, bin, cfg.BinDir)
	require.Equal(t, os.TempDir(), cfg.TmpDir)
	require.False(t, cfg.KeepFailed)
}

func TestConfigValidate(t *testing.T) {
	good := executor.DefaultConfig()
	good.BinDir = t.TempDir()
	require.NoError(t, good.Validate())

	tests := []struct {
		name   string
		mutate func(*executor.Config)
		want   error
	}{
		{"no bin dir", func(c *executor.Config) { c.BinDir = "" }, executor.ErrInvalidBinDir},
		{"bin dir is a file", func(c *executor.Config) { c.BinDir = os.Args[0] }, executor.ErrInvalidBinDir},
		{"missing tmp dir", func(c *executor.Config) { c.TmpDir = filepath.Join(c.BinDir, "nope") }, executor.ErrInvalidTmpDir},
		{"log format", func(c *executor.Config) { c.LogFormat = "xml" }, executor.ErrInvalidLogFormat},
		{"log level", func(c *executor.Config) { c.LogLevel = "verbose" }, executor.ErrInvalidLogLevel},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := good
			tc.mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), tc.want)
			_, err := executor.New(cfg)
			require.ErrorIs(t, err, tc.want)
		})
	}
}
