package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execCLI runs the root command in-process and returns its combined output.
func execCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// stubProfiler writes a shell script standing in for rocprofv3. The trace
// directory arrives as $4 (after --output-format csv --output-directory).
func stubProfiler(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub profiler scripts need a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "rocprofv3")
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

func stubEmitting(t *testing.T, dispatches int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("Kernel_Name,Start_Timestamp,End_Timestamp\n")
	for i := 0; i < dispatches; i++ {
		fmt.Fprintf(&b, "k%d,%d,%d\n", i, i*1000, i*1000+2500)
	}
	return stubProfiler(t, fmt.Sprintf(`#!/bin/sh
out="$4"
mkdir -p "$out/pass1"
cat > "$out/pass1/results_kernel_trace.csv" <<'EOF'
%sEOF
`, b.String()))
}

func readReport(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestRun_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	commands := writeFile(t, dir, "commands.txt", "conv --bf16 -n 16 -c 64\n")
	csvPath := filepath.Join(dir, "out.csv")

	out, err := execCLI(t, "run",
		"--commands-file", commands,
		"--csv", csvPath,
		"--rocprof", stubEmitting(t, 10),
		"--driver", "fake_driver",
		"--use-tempdir=true",
		"--continue-on-error=false",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Found 1 commands")
	assert.Contains(t, out, "SUMMARY")

	records := readReport(t, csvPath)
	require.Len(t, records, 2, "header plus exactly one data row")
	header, row := records[0], records[1]
	assert.Equal(t, "count (us)", header[5])
	assert.Equal(t, "conv --bf16 -n 16 -c 64", row[0])
	assert.Equal(t, "10", row[5])
	assert.Equal(t, "2.50", row[3], "mean of identical 2.5us dispatches")
}

func TestRun_StopsOnFailure(t *testing.T) {
	dir := t.TempDir()
	commands := writeFile(t, dir, "commands.txt", "conv -n 1\nconv -n 2\n")
	csvPath := filepath.Join(dir, "out.csv")

	out, err := execCLI(t, "run",
		"--commands-file", commands,
		"--csv", csvPath,
		"--rocprof", stubProfiler(t, "#!/bin/sh\nexit 1\n"),
		"--driver", "fake_driver",
		"--use-tempdir=true",
		"--continue-on-error=false",
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 commands failed")
	assert.Contains(t, out, "Stopping due to error")

	records := readReport(t, csvPath)
	require.Len(t, records, 2, "only the attempted command has a row")
	assert.Equal(t, []string{"conv -n 1", "N.A.", "N.A.", "N.A.", "N.A.", "N.A."}, records[1])
}

func TestRun_ContinueOnError(t *testing.T) {
	dir := t.TempDir()
	commands := writeFile(t, dir, "commands.txt", "conv -n 1\nconv -n 2\n")
	csvPath := filepath.Join(dir, "out.csv")

	_, err := execCLI(t, "run",
		"--commands-file", commands,
		"--csv", csvPath,
		"--rocprof", stubProfiler(t, "#!/bin/sh\nexit 1\n"),
		"--driver", "fake_driver",
		"--use-tempdir=true",
		"--continue-on-error=true",
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 2 commands failed")

	records := readReport(t, csvPath)
	require.Len(t, records, 3, "every command keeps its row")
}

func TestRun_MalformedTraceAborts(t *testing.T) {
	dir := t.TempDir()
	commands := writeFile(t, dir, "commands.txt", "conv -n 1\n")
	csvPath := filepath.Join(dir, "out.csv")

	stub := stubProfiler(t, `#!/bin/sh
out="$4"
mkdir -p "$out"
printf 'Start_Timestamp,End_Timestamp\n0,not-a-number\n' > "$out/bad_kernel_trace.csv"
`)

	_, err := execCLI(t, "run",
		"--commands-file", commands,
		"--csv", csvPath,
		"--rocprof", stub,
		"--driver", "fake_driver",
		"--use-tempdir=true",
		"--continue-on-error=false",
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse trace file")
	assert.Contains(t, err.Error(), "not-a-number")

	records := readReport(t, csvPath)
	assert.Len(t, records, 1, "a data-integrity failure never becomes a sentinel row")
}

func TestRun_MissingCommandsFile(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "out.csv")

	_, err := execCLI(t, "run",
		"--commands-file", filepath.Join(dir, "nope.txt"),
		"--csv", csvPath,
		"--use-tempdir=true",
		"--continue-on-error=false",
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "commands file not found")
	assert.NoFileExists(t, csvPath, "no report is created before the input is validated")
}
