// Package profile runs benchmark commands under the rocprofv3 profiler and
// hands the trace output to the aggregator.
package profile

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/kballard/go-shellquote"

	"batchprof/internal/trace"
)

// DefaultProfiler is the profiler binary wrapped around every command.
const DefaultProfiler = "rocprofv3"

// Options configures a Runner.
type Options struct {
	// Profiler is the profiling executable, DefaultProfiler unless overridden.
	Profiler string
	// Driver is the benchmark driver executable that runs each command.
	Driver string
	// Iterations is passed to the driver as --iter.
	Iterations int
	// ProfilerArgs are extra arguments placed before the -- separator.
	ProfilerArgs []string
	// OutputDir is the root for per-command trace directories. Ignored when
	// UseTempDir is set.
	OutputDir string
	// UseTempDir stores traces in a temporary directory removed after
	// aggregation, on every exit path.
	UseTempDir bool
	// Verbose echoes constructed command lines and profiler stdout to Out.
	Verbose bool
}

// Runner executes one profiled command at a time.
type Runner struct {
	opts   Options
	logger *slog.Logger
	// Out receives verbose diagnostics. Defaults to io.Discard.
	Out io.Writer
}

// NewRunner returns a Runner with defaults applied.
func NewRunner(opts Options, logger *slog.Logger) *Runner {
	if opts.Profiler == "" {
		opts.Profiler = DefaultProfiler
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{opts: opts, logger: logger, Out: io.Discard}
}

// Run profiles a single command and aggregates its traces. A command that
// cannot be tokenized, fails to launch, or exits non-zero yields the
// all-sentinel summary with a nil error so the batch can keep going.
// Aggregation errors are propagated: a trace file that exists but cannot be
// parsed is a data-integrity problem, not a failed command.
func (r *Runner) Run(ctx context.Context, cmd Command, index int) (trace.Summary, error) {
	if len(cmd.Args) == 0 {
		if r.opts.Verbose {
			fmt.Fprintf(r.Out, ">>> Failed to parse command: %s\n", cmd.Line)
		}
		r.logger.Warn("skipping unparsable command", "line", cmd.Line)
		return trace.EmptySummary(), nil
	}

	outputDir, cleanup, err := r.outputDir(index)
	if err != nil {
		return trace.Summary{}, err
	}
	defer cleanup()

	argv := r.buildArgv(cmd, outputDir)
	if r.opts.Verbose {
		fmt.Fprintf(r.Out, ">>> %s\n\n", shellquote.Join(argv...))
	}
	r.logger.Debug("running profiler", "command", cmd.Line, "output_dir", outputDir)

	var stdout, stderr bytes.Buffer
	proc := exec.CommandContext(ctx, argv[0], argv[1:]...)
	proc.Stdout = &stdout
	proc.Stderr = &stderr

	if err := proc.Run(); err != nil {
		if r.opts.Verbose {
			fmt.Fprintf(r.Out, ">>> Command failed: %v\n", err)
			if stderr.Len() > 0 {
				fmt.Fprintf(r.Out, ">>> stderr: %s\n", stderr.String())
			}
		}
		r.logger.Warn("profiler run failed", "command", cmd.Line, "error", err)
		return trace.EmptySummary(), nil
	}

	if r.opts.Verbose && stdout.Len() > 0 {
		fmt.Fprintln(r.Out, stdout.String())
	}

	summary, err := trace.Aggregate(outputDir)
	if err != nil {
		return trace.Summary{}, err
	}

	if r.opts.Verbose {
		fmt.Fprintf(r.Out, ">>> Stats: min=%s, max=%s, mean=%s, count=%s\n",
			summary.Min.Format(), summary.Max.Format(), summary.Mean.Format(), summary.Count.Format())
	}
	return summary, nil
}

// buildArgv wraps the driver invocation with the profiler invocation:
// <profiler> --output-format csv --output-directory <dir> <extra> -- <driver> --iter <N> <command>
func (r *Runner) buildArgv(cmd Command, outputDir string) []string {
	argv := []string{
		r.opts.Profiler,
		"--output-format", "csv",
		"--output-directory", outputDir,
	}
	argv = append(argv, r.opts.ProfilerArgs...)
	argv = append(argv, "--", r.opts.Driver, "--iter", strconv.Itoa(r.opts.Iterations))
	argv = append(argv, cmd.Args...)
	return argv
}

// outputDir picks the trace destination for one command: a persistent
// per-command subdirectory, or a temporary directory whose cleanup runs on
// every exit path once aggregation has read from it.
func (r *Runner) outputDir(index int) (string, func(), error) {
	if r.opts.UseTempDir {
		dir, err := os.MkdirTemp("", "batchprof-*")
		if err != nil {
			return "", nil, fmt.Errorf("creating temp trace directory: %w", err)
		}
		return dir, func() { os.RemoveAll(dir) }, nil
	}
	dir := filepath.Join(r.opts.OutputDir, fmt.Sprintf("command_%d", index))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", nil, fmt.Errorf("creating trace directory %s: %w", dir, err)
	}
	return dir, func() {}, nil
}
