package trace

import "strconv"

// NotAvailable is the literal written to the report wherever a statistic
// could not be measured.
const NotAvailable = "N.A."

// StatNames is the fixed order in which statistics appear in report headers
// and rows. The report writer receives it explicitly rather than assuming it.
var StatNames = []string{"min", "max", "mean", "stddev", "count"}

// Stat is a single timing statistic: either a measured value in microseconds
// or unavailable. The zero value is unavailable.
type Stat struct {
	value    float64
	measured bool
}

// Measured wraps a measured value.
func Measured(v float64) Stat {
	return Stat{value: v, measured: true}
}

// Unavailable returns the sentinel statistic.
func Unavailable() Stat {
	return Stat{}
}

// Available reports whether the statistic holds a measured value.
func (s Stat) Available() bool {
	return s.measured
}

// Value returns the measured value, valid only when Available.
func (s Stat) Value() float64 {
	return s.value
}

// Format renders the statistic for the report: two decimal places when
// measured, the N.A. sentinel otherwise.
func (s Stat) Format() string {
	if !s.measured {
		return NotAvailable
	}
	return strconv.FormatFloat(s.value, 'f', 2, 64)
}

// Count is the number of duration samples behind a summary. Unlike Stat it
// formats as a bare integer.
type Count struct {
	n        int
	measured bool
}

// CountOf wraps a measured sample count.
func CountOf(n int) Count {
	return Count{n: n, measured: true}
}

// Available reports whether the count was measured.
func (c Count) Available() bool {
	return c.measured
}

// Value returns the measured count, valid only when Available.
func (c Count) Value() int {
	return c.n
}

// Format renders the count for the report.
func (c Count) Format() string {
	if !c.measured {
		return NotAvailable
	}
	return strconv.Itoa(c.n)
}

// Summary is the reduction of one command's duration samples. All fields are
// unavailable when no trace files or no valid rows were found.
type Summary struct {
	Min    Stat
	Max    Stat
	Mean   Stat
	Stddev Stat
	Count  Count
}

// EmptySummary returns the all-sentinel summary.
func EmptySummary() Summary {
	return Summary{}
}

// Measured reports whether the summary holds measured statistics. A summary
// is measured as a whole or not at all.
func (s Summary) Measured() bool {
	return s.Mean.Available()
}

// Field returns the formatted value of the named statistic, in terms of the
// names listed in StatNames.
func (s Summary) Field(name string) string {
	switch name {
	case "min":
		return s.Min.Format()
	case "max":
		return s.Max.Format()
	case "mean":
		return s.Mean.Format()
	case "stddev":
		return s.Stddev.Format()
	case "count":
		return s.Count.Format()
	default:
		return NotAvailable
	}
}
