package ui

import (
	"fmt"
	"io"
	"strings"
)

const ruleWidth = 80

// Totals is the end-of-run tally shown in the summary block.
type Totals struct {
	Attempted int
	Succeeded int
	Failed    int
}

func rule() string {
	return ruleStyle.Render(strings.Repeat("=", ruleWidth))
}

// Progress prints the one-line-per-command progress indicator. In verbose
// mode the command line itself is shown between rules.
func Progress(w io.Writer, index, total int, line string, verbose bool) {
	if verbose {
		fmt.Fprintf(w, "\n%s\n", rule())
		fmt.Fprintf(w, "Command %d/%d: %s\n", index, total, commandStyle.Render(line))
		fmt.Fprintf(w, "%s\n", rule())
		return
	}
	fmt.Fprintf(w, "Running command %d/%d\n", index, total)
}

// Summary prints the end-of-run block: totals, report path and, when traces
// are kept, where they live.
func Summary(w io.Writer, totals Totals, reportPath, outputDir string) {
	fmt.Fprintf(w, "\n%s\n", rule())
	fmt.Fprintln(w, summaryTitleStyle.Render("SUMMARY"))
	fmt.Fprintf(w, "%s\n", rule())
	fmt.Fprintf(w, "%s %d\n", labelStyle.Render("Total commands:"), totals.Attempted)
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Successful:"), successStyle.Render(fmt.Sprintf("%d", totals.Succeeded)))
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Failed:"), failureStyle.Render(fmt.Sprintf("%d", totals.Failed)))
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Results CSV:"), reportPath)
	if outputDir != "" {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Trace outputs:"), outputDir)
	}
	fmt.Fprintf(w, "%s\n\n", rule())
}
