// Package trace parses rocprofv3 kernel trace CSVs and reduces dispatch
// durations to summary timing statistics.
package trace

import (
	"encoding/csv"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Trace files are named <something>kernel_trace.csv by rocprofv3, one row per
// kernel dispatch.
const traceFileSuffix = "kernel_trace.csv"

const (
	startColumn = "Start_Timestamp"
	endColumn   = "End_Timestamp"
)

// Aggregate scans dir recursively for kernel trace files and reduces every
// recorded dispatch duration to a Summary. Finding no trace files is not an
// error: it yields the all-sentinel summary, meaning zero recorded events.
// A trace file that exists but cannot be parsed is a hard error.
func Aggregate(dir string) (Summary, error) {
	files, err := findTraceFiles(dir)
	if err != nil {
		return Summary{}, fmt.Errorf("scanning trace directory %s: %w", dir, err)
	}
	if len(files) == 0 {
		return EmptySummary(), nil
	}

	var durations []float64
	for _, file := range files {
		samples, err := parseTraceFile(file)
		if err != nil {
			return Summary{}, fmt.Errorf("failed to parse trace file %s: %w", file, err)
		}
		durations = append(durations, samples...)
	}

	if len(durations) == 0 {
		return EmptySummary(), nil
	}

	return reduce(durations), nil
}

func findTraceFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), traceFileSuffix) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// parseTraceFile extracts one duration sample, in microseconds, from every
// row carrying both timestamp columns. Timestamps are nanoseconds.
func parseTraceFile(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	startIdx, endIdx := -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case startColumn:
			startIdx = i
		case endColumn:
			endIdx = i
		}
	}
	if startIdx < 0 || endIdx < 0 {
		return nil, nil
	}

	var durations []float64
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		start, err := strconv.ParseFloat(strings.TrimSpace(row[startIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad %s %q", line, startColumn, row[startIdx])
		}
		end, err := strconv.ParseFloat(strings.TrimSpace(row[endIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad %s %q", line, endColumn, row[endIdx])
		}
		durations = append(durations, (end-start)/1000.0)
	}
	return durations, nil
}

func reduce(durations []float64) Summary {
	// Sample standard deviation uses the n-1 divisor, so a single sample is
	// defined as exactly zero rather than unavailable.
	stddev := 0.0
	if len(durations) > 1 {
		stddev = stat.StdDev(durations, nil)
	}
	return Summary{
		Min:    Measured(floats.Min(durations)),
		Max:    Measured(floats.Max(durations)),
		Mean:   Measured(stat.Mean(durations, nil)),
		Stddev: Measured(stddev),
		Count:  CountOf(len(durations)),
	}
}
