// Package report writes the aggregated profiling results as CSV, one row per
// benchmark command in input order.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"batchprof/internal/trace"
)

// Writer streams report rows to an underlying writer. Every row is flushed
// as soon as it is written so a partially failed batch still leaves a row
// for each attempted command on disk.
type Writer struct {
	csv       *csv.Writer
	statNames []string
	closer    io.Closer
}

// NewWriter wraps w with the given statistic column order.
func NewWriter(w io.Writer, statNames []string) *Writer {
	return &Writer{csv: csv.NewWriter(w), statNames: statNames}
}

// Create opens (truncating) a file-backed report writer.
func Create(path string, statNames []string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating report file: %w", err)
	}
	w := NewWriter(f, statNames)
	w.closer = f
	return w, nil
}

// WriteHeader emits the command column followed by one microsecond column
// per statistic name.
func (w *Writer) WriteHeader() error {
	header := make([]string, 0, len(w.statNames)+1)
	header = append(header, "command")
	for _, name := range w.statNames {
		header = append(header, fmt.Sprintf("%s (us)", name))
	}
	return w.writeRecord(header)
}

// WriteRow emits one report row pairing a command line with its summary.
func (w *Writer) WriteRow(command string, summary trace.Summary) error {
	row := make([]string, 0, len(w.statNames)+1)
	row = append(row, command)
	for _, name := range w.statNames {
		row = append(row, summary.Field(name))
	}
	return w.writeRecord(row)
}

func (w *Writer) writeRecord(record []string) error {
	if err := w.csv.Write(record); err != nil {
		return fmt.Errorf("writing report record: %w", err)
	}
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return fmt.Errorf("flushing report: %w", err)
	}
	return nil
}

// Close closes the underlying file, if the writer owns one.
func (w *Writer) Close() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return err
	}
	if w.closer != nil {
		return w.closer.Close()
	}
	return nil
}
