package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"batchprof/internal/profile"
	"batchprof/internal/report"
	"batchprof/internal/trace"
	"batchprof/internal/ui"
)

const defaultProfilerArgs = "--runtime-trace"

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run every command from a file under the profiler and write a CSV report",
	Long: `Reads benchmark commands from a file (one per line, blank lines and
#-comments ignored), wraps each in a rocprofv3 invocation around the
benchmark driver, and writes one report row per command with min/max/mean/
stddev/count of the recorded kernel durations in microseconds.

Command format example:
  conv --bf16 -n 16 -c 64 -H 48 -W 32 -k 64 -y 3 -x 3 -p 1 -q 1 --in_layout NHWC`,
	Args: cobra.NoArgs,
	RunE: runBatch,
}

func init() {
	runCmd.Flags().String("commands-file", "", "File containing benchmark commands, one per line (required)")
	runCmd.Flags().String("csv", "profile_results.csv", "Output CSV file for aggregated results")
	runCmd.Flags().String("output-dir", "profile_results", "Directory for profiler outputs; ignored with --use-tempdir")
	runCmd.Flags().String("driver", "build/bin/benchmarks/fusilli_benchmark_driver", "Path to the benchmark driver binary")
	runCmd.Flags().Int("iter", 10, "Number of iterations for each benchmark")
	runCmd.Flags().String("rocprof-args", defaultProfilerArgs, "Extra arguments for rocprofv3, space separated")
	runCmd.Flags().String("rocprof", profile.DefaultProfiler, "Profiler executable to invoke")
	runCmd.Flags().Bool("verbose", false, "Print detailed output")
	runCmd.Flags().Bool("no-verbose", false, "Disable detailed output")
	runCmd.Flags().Bool("continue-on-error", false, "Continue running even if a command fails")
	runCmd.Flags().Bool("use-tempdir", false, "Store profiler outputs in temporary directories, removed after parsing")
	runCmd.MarkFlagRequired("commands-file")

	viper.BindPFlag("verbose", runCmd.Flags().Lookup("verbose"))
	viper.BindPFlag("driver", runCmd.Flags().Lookup("driver"))
	viper.BindPFlag("iter", runCmd.Flags().Lookup("iter"))
	viper.BindPFlag("rocprof_args", runCmd.Flags().Lookup("rocprof-args"))
	viper.BindPFlag("rocprof", runCmd.Flags().Lookup("rocprof"))
}

func runBatch(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	commandsFile, _ := cmd.Flags().GetString("commands-file")
	csvPath, _ := cmd.Flags().GetString("csv")
	outputDir, _ := cmd.Flags().GetString("output-dir")
	continueOnError, _ := cmd.Flags().GetBool("continue-on-error")
	useTempDir, _ := cmd.Flags().GetBool("use-tempdir")
	iterations := viper.GetInt("iter")
	driver := viper.GetString("driver")
	profiler := viper.GetString("rocprof")

	// Verbose defaults on only when no CSV destination is configured; an
	// explicit --verbose or --no-verbose always wins.
	verbose := csvPath == ""
	if cmd.Flags().Changed("no-verbose") {
		verbose = false
	}
	if cmd.Flags().Changed("verbose") {
		verbose, _ = cmd.Flags().GetBool("verbose")
	}

	profilerArgs := strings.Fields(viper.GetString("rocprof_args"))
	if len(profilerArgs) == 0 {
		profilerArgs = strings.Fields(defaultProfilerArgs)
	}

	commands, err := profile.LoadCommands(commandsFile)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Found %d commands\n", len(commands))

	if !useTempDir {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("creating output directory %s: %w", outputDir, err)
		}
	}

	if verbose {
		fmt.Fprintf(out, "Rocprof args: %s\n", strings.Join(profilerArgs, " "))
		if useTempDir {
			fmt.Fprintln(out, "Using temporary directories (auto-cleanup)")
		} else {
			if abs, err := filepath.Abs(outputDir); err == nil {
				fmt.Fprintf(out, "Output directory: %s\n", abs)
			}
		}
		fmt.Fprintf(out, "Results will be written to: %s\n\n", csvPath)
	}

	writer, err := report.Create(csvPath, trace.StatNames)
	if err != nil {
		return err
	}
	defer writer.Close()
	if err := writer.WriteHeader(); err != nil {
		return err
	}

	runner := profile.NewRunner(profile.Options{
		Profiler:     profiler,
		Driver:       driver,
		Iterations:   iterations,
		ProfilerArgs: profilerArgs,
		OutputDir:    outputDir,
		UseTempDir:   useTempDir,
		Verbose:      verbose,
	}, slog.Default())
	runner.Out = out

	var totals ui.Totals
	for i, command := range commands {
		totals.Attempted++
		ui.Progress(out, i+1, len(commands), command.Line, verbose)

		summary, err := runner.Run(cmd.Context(), command, i+1)
		if err != nil {
			// Trace-parse failures are data-integrity errors, not failed
			// commands; they abort the run with the file named.
			return fmt.Errorf("command %d/%d: %w", i+1, len(commands), err)
		}

		if err := writer.WriteRow(command.Line, summary); err != nil {
			return err
		}

		if summary.Measured() {
			totals.Succeeded++
			continue
		}
		totals.Failed++
		if !continueOnError {
			fmt.Fprintln(out, "\nStopping due to error. Use --continue-on-error to continue.")
			break
		}
	}

	tracesDir := ""
	if !useTempDir {
		if abs, err := filepath.Abs(outputDir); err == nil {
			tracesDir = abs
		} else {
			tracesDir = outputDir
		}
	}
	ui.Summary(out, totals, csvPath, tracesDir)

	if totals.Failed > 0 {
		return fmt.Errorf("%d of %d commands failed", totals.Failed, totals.Attempted)
	}
	return nil
}
