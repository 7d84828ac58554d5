package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"batchprof/internal/trace"
)

// aggregateCmd re-runs the trace aggregation against an existing rocprofv3
// output directory, without executing anything. Useful when traces were
// collected in a separate step.
var aggregateCmd = &cobra.Command{
	Use:     "aggregate <directory>",
	Short:   "Aggregate timing statistics from an existing rocprofv3 output directory",
	Example: "  batchprof aggregate profile_results/command_1",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := trace.Aggregate(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, name := range trace.StatNames {
			fmt.Fprintf(out, "%s (us): %s\n", name, summary.Field(name))
		}
		if !summary.Measured() {
			return fmt.Errorf("no kernel trace data found in %s", args[0])
		}
		return nil
	},
}
