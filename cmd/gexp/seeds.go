package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stevenktruong/graph-expansion/libgexp"
	"github.com/stevenktruong/graph-expansion/pygexp"
)

var seedsCmd = &cobra.Command{
	Use:   "seeds",
	Short: "List the named seed graphs",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		for _, s := range libgexp.Seeds() {
			fmt.Fprintf(out, "%-18s order %d  %s\n", s.Name, s.Order, s.Description)
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of gexp",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "gexp version %s\n", pygexp.LIB_VERSION)
	},
}

func init() {
	rootCmd.AddCommand(seedsCmd)
	rootCmd.AddCommand(versionCmd)
}
