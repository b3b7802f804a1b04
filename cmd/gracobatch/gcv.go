// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/graco/gcv"
)

// layoutFile is the YAML description of the block columns:
//
//	blocks:
//	  - group: o1
//	    equation: "0"
//	    cols: [0, 1]
type layoutFile struct {
	Blocks []struct {
		Group    string `yaml:"group"`
		Equation string `yaml:"equation"`
		Cols     []int  `yaml:"cols"`
	} `yaml:"blocks"`
}

func readLayout(path string) ([]gcv.Span, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var lf layoutFile
	if err = yaml.Unmarshal(raw, &lf); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	spans := make([]gcv.Span, len(lf.Blocks))
	for i, b := range lf.Blocks {
		spans[i] = gcv.Span{Key: gcv.BlockKey{Group: b.Group, Equation: b.Equation}, Cols: b.Cols}
	}

	return spans, nil
}

var fillStrategies = map[string]gcv.FillStrategy{
	"barycenter": gcv.Barycenter,
	"mean":       gcv.Mean,
}

type gcvOptions struct {
	metric  string
	layout  string
	fill    string
	out     string
	parquet string
}

func newGCVCmd(root *rootOptions) *cobra.Command {
	o := &gcvOptions{}
	cmd := &cobra.Command{
		Use:   "gcv <input>",
		Short: "Block-aggregated distance matrix of composite vectors",
		Long: `Compute the block-aggregated distance matrix of composite vectors.

The input is a text matrix whose columns are split into equation blocks by
--layout. A block whose entries are all NaN is undefined for that row; pairs
are averaged over the blocks defined in both rows.

Examples:
  gracobatch gcv --metric hellinger --layout layout.yaml gcv.txt
  gracobatch gcv --metric euclidean --layout layout.yaml --fill barycenter gcv.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, log, err := root.engine(cmd)
			if err != nil {
				return err
			}
			spans, err := readLayout(o.layout)
			if err != nil {
				return err
			}
			M, err := readTextFile(args[0])
			if err != nil {
				return err
			}
			G, err := gcv.FromDense(M, nil, spans)
			if err != nil {
				return err
			}
			if o.fill != "" {
				s, ok := fillStrategies[o.fill]
				if !ok {
					return fmt.Errorf("unknown fill strategy %q", o.fill)
				}
				if G, err = G.FillUndefined(s); err != nil {
					return err
				}
			}

			D, err := gcv.DistanceMatrix(cmd.Context(), e, G, o.metric)
			if err != nil {
				return err
			}
			log.Info().Str("metric", o.metric).Int("rows", G.Len()).Int("blocks", len(G.Keys)).Msg("gcv distance matrix computed")

			return writeResult(cmd, D, o.out, o.parquet)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.metric, "metric", "m", "", "Metric name")
	f.StringVarP(&o.layout, "layout", "l", "", "YAML block layout")
	f.StringVar(&o.fill, "fill", "", "Fill undefined blocks: barycenter or mean")
	f.StringVarP(&o.out, "out", "o", "", "Text output file (default stdout)")
	f.StringVar(&o.parquet, "parquet", "", "Write long-form parquet instead of text")
	_ = cmd.MarkFlagRequired("metric")
	_ = cmd.MarkFlagRequired("layout")

	return cmd
}
