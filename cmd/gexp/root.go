package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/plan-systems/klog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gexp",
	Short: "gexp computes leading terms of perturbative graph expansions",
	Long: `gexp expands products of random-matrix traces one rewrite at a time
until only deterministic terms remain, and collects those at a target order.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetInt("verbosity")
		if klogFlags != nil && cmd.Flags().Changed("verbosity") {
			return klogFlags.Set("v", strconv.Itoa(verbosity))
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		klog.Flush()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "YAML file with search and catalog settings")
	rootCmd.PersistentFlags().IntP("verbosity", "v", 1, "klog verbosity level")
}
