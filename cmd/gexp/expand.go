package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/stevenktruong/graph-expansion/gexp"
	"github.com/stevenktruong/graph-expansion/libgexp"
)

// ExpandOpts picks the single rewrite step 'gexp expand' prints.
type ExpandOpts struct {
	Seed               string
	Unsolved           bool
	NoCrossDerivatives bool
	Drift              bool
	Tex                bool
}

var expandCmd = &cobra.Command{
	Use:   "expand",
	Short: "Apply one rewrite step to a seed graph",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		var opts ExpandOpts
		opts.Seed, _ = flags.GetString("seed")
		opts.Unsolved, _ = flags.GetBool("unsolved")
		opts.NoCrossDerivatives, _ = flags.GetBool("no-cross")
		opts.Drift, _ = flags.GetBool("drift")
		opts.Tex, _ = flags.GetBool("tex")
		return RunExpand(opts, cmd.OutOrStdout())
	},
}

func init() {
	flags := expandCmd.Flags()
	flags.String("seed", "g-loop-2", "name of the seed graph")
	flags.Bool("unsolved", false, "keep the self-consistent term")
	flags.Bool("no-cross", false, "omit derivatives hitting other random traces")
	flags.Bool("drift", false, "print the drift terms instead")
	flags.Bool("tex", false, "print terms as LaTeX")
	rootCmd.AddCommand(expandCmd)
}

func RunExpand(opts ExpandOpts, out io.Writer) error {
	X, err := libgexp.SeedGraph(opts.Seed)
	if err != nil {
		return err
	}

	var terms []*libgexp.Graph
	switch {
	case opts.Drift:
		terms, err = libgexp.DriftTerms(X)
	case X.NumLightWeights() > 0:
		terms, err = libgexp.ExpandLightWeight(X, libgexp.LightWeightOpts{
			Unsolved:           opts.Unsolved,
			NoCrossDerivatives: opts.NoCrossDerivatives,
		})
	default:
		terms, err = libgexp.ExpandGLoop(X, libgexp.GLoopOpts{
			Unsolved:           opts.Unsolved,
			NoCrossDerivatives: opts.NoCrossDerivatives,
		})
	}
	if err != nil {
		return err
	}

	printHeading(out, termString(X, opts.Tex))
	for i, Y := range terms {
		fmt.Fprintf(out, "%3d  ", i+1)
		Y.WriteAsString(out, gexp.PrintOpts{Tex: opts.Tex, ShowOrder: true})
		fmt.Fprintln(out)
	}
	return nil
}
