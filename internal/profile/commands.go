package profile

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/kballard/go-shellquote"
)

// Command is one benchmark invocation read from the commands file. The line
// is kept verbatim for the report; Args is its tokenized form.
type Command struct {
	Line string
	Args []string
}

// Parse tokenizes a raw command line. Lines that cannot be tokenized come
// back with nil Args; the caller decides how to report them.
func Parse(line string) Command {
	args, err := shellquote.Split(line)
	if err != nil {
		return Command{Line: line}
	}
	return Command{Line: line, Args: args}
}

// LoadCommands reads the commands file: one command per line, blank lines
// and #-comments skipped. A missing file or a file with no commands is an
// error, there is nothing to run.
func LoadCommands(path string) ([]Command, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("commands file not found: %w", err)
	}
	defer f.Close()

	var commands []Command
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		commands = append(commands, Parse(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading commands file %s: %w", path, err)
	}
	if len(commands) == 0 {
		return nil, fmt.Errorf("no commands found in %s", path)
	}
	return commands, nil
}
