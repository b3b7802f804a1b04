// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/graco/batch"
	"github.com/katalvlaran/graco/distance"
	"github.com/katalvlaran/graco/executor"
	"github.com/katalvlaran/graco/logging"
	"github.com/katalvlaran/graco/matrix"
	"github.com/katalvlaran/graco/matrixio"
)

// rootOptions are the persistent flags.
type rootOptions struct {
	logLevel  string
	logFormat string
	config    string
	envFile   string
	external  bool
}

func newRootCmd() *cobra.Command {
	o := &rootOptions{}
	root := &cobra.Command{
		Use:          "gracobatch",
		Short:        "Graphlet feature distances",
		Long:         `gracobatch computes distance matrices over graphlet feature vectors and provides the batch-distance executables.`,
		SilenceUsage: true,
	}

	lc := logging.DefaultConfig()
	pf := root.PersistentFlags()
	pf.StringVar(&o.logLevel, "log-level", lc.Level, "Log level: debug, info, warn or error")
	pf.StringVar(&o.logFormat, "log-format", lc.Format, "Log format: json or console")
	pf.StringVar(&o.config, "config", "", "Executor YAML configuration file")
	pf.StringVar(&o.envFile, "env-file", ".env", "dotenv file read before the GRACO_* environment")
	pf.BoolVar(&o.external, "external", false, "Run batch-capable metrics through the executables in GRACO_BIN_DIR")

	root.AddCommand(newListCmd())
	for _, name := range batch.Executables() {
		root.AddCommand(newExecutableCmd(name))
	}
	root.AddCommand(newMatrixCmd(o))
	root.AddCommand(newGCVCmd(o))

	return root
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the batch executables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range batch.Executables() {
				fmt.Fprintln(cmd.OutOrStdout(), batch.Usage(name))
			}
			return nil
		},
	}
}

// newExecutableCmd runs one batch executable. Its problems go to stderr and the
// command still succeeds, matching the executable contract.
func newExecutableCmd(name string) *cobra.Command {
	return &cobra.Command{
		Use:                batch.Usage(name),
		Short:              "Run the " + name + " batch executable",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			batch.Run(name, args, cmd.ErrOrStderr())
			return nil
		},
	}
}

// engine builds the logger and the distance engine, with an executor when
// --external is set.
func (o *rootOptions) engine(cmd *cobra.Command) (*distance.Engine, zerolog.Logger, error) {
	log, err := logging.New(logging.Config{Level: o.logLevel, Format: o.logFormat, Component: "gracobatch"}, cmd.ErrOrStderr())
	if err != nil {
		return nil, log, err
	}
	opts := []distance.Option{distance.WithLogger(log)}
	if o.external {
		cfg, err := executor.LoadConfig(o.config, o.envFile)
		if err != nil {
			return nil, log, err
		}
		x, err := executor.New(cfg, executor.WithLogger(log.With().Str("component", "executor").Logger()))
		if err != nil {
			return nil, log, err
		}
		opts = append(opts, distance.WithExecutor(x))
	}

	return distance.NewEngine(opts...), log, nil
}

func readTextFile(path string) (*matrix.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return matrixio.ReadText(f)
}

// writeResult writes D as parquet when parquetPath is set, as text otherwise
// (to outPath, or stdout when empty).
func writeResult(cmd *cobra.Command, D *matrix.Dense, outPath, parquetPath string) error {
	if parquetPath != "" {
		f, err := os.Create(parquetPath)
		if err != nil {
			return err
		}
		if err = matrixio.WriteParquet(f, D); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	}
	if outPath == "" {
		return matrixio.WriteValues(cmd.OutOrStdout(), D)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if err = matrixio.WriteValues(f, D); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}
