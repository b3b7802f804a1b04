// SPDX-License-Identifier: MIT

package main

import (
	"github.com/spf13/cobra"

	"github.com/katalvlaran/graco/matrix"
)

type matrixOptions struct {
	metric     string
	normalized bool
	out        string
	parquet    string
}

func newMatrixCmd(root *rootOptions) *cobra.Command {
	o := &matrixOptions{}
	cmd := &cobra.Command{
		Use:   "matrix <input>",
		Short: "Distance matrix of the rows of a text matrix",
		Long: `Compute the all-pairs distance matrix of the rows of a text matrix.

With --normalized every entry is divided by the metric's normalizer, which
bounds distances between convex rows by 1.

Examples:
  gracobatch matrix --metric canberra --normalized gcv.txt
  gracobatch matrix --metric gdv_similarity --external --parquet d.parquet gdv.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, log, err := root.engine(cmd)
			if err != nil {
				return err
			}
			M, err := readTextFile(args[0])
			if err != nil {
				return err
			}

			var D *matrix.Dense
			if o.normalized {
				D, err = e.NormalizedDistanceMatrix(cmd.Context(), M, o.metric)
			} else {
				D, err = e.DistanceMatrix(cmd.Context(), M, o.metric)
			}
			if err != nil {
				return err
			}
			log.Info().Str("metric", o.metric).Int("rows", M.Rows()).Bool("normalized", o.normalized).Msg("distance matrix computed")

			return writeResult(cmd, D, o.out, o.parquet)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.metric, "metric", "m", "", "Metric name (see 'gracobatch list' for executables)")
	f.BoolVarP(&o.normalized, "normalized", "n", false, "Divide by the metric's normalizer")
	f.StringVarP(&o.out, "out", "o", "", "Text output file (default stdout)")
	f.StringVar(&o.parquet, "parquet", "", "Write long-form parquet instead of text")
	_ = cmd.MarkFlagRequired("metric")

	return cmd
}
