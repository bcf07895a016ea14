package driver

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterh/liner"
)

// Config controls the interactive playground.
type Config struct {
	Prompt string
	// HistoryFile is relative to the home directory unless absolute. Empty
	// disables history.
	HistoryFile string
	Banner      string
}

// DefaultConfig returns the configuration `jsbind repl` starts with.
func DefaultConfig() *Config {
	return &Config{
		Prompt:      "jsbind> ",
		HistoryFile: ".jsbind_history",
		Banner:      "jsbind operator playground (:help for commands, Ctrl+D to exit)",
	}
}

func (c *Config) historyPath() string {
	if c.HistoryFile == "" || filepath.IsAbs(c.HistoryFile) {
		return c.HistoryFile
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, c.HistoryFile)
}

const helpText = `commands:
  eq a, b | neq a, b      loose equality and its negation
  eqs a, b | neqs a, b    strict equality and its negation
  and a, b | or a, b      short-circuit; b is only read when needed
  cond t, a, b            conditional; only the branch taken is read
  add a, b                the + operator
  truthy v | typeof v     boolean conversion, typeof
  path Dotted.Name        resolve a member path on the global (or $name.path)
  let x = literal         bind a name, use it later as $x
  :bindings  :help  :quit
operands are YAML flow literals: 1, "1", [1, 2], {a: 1}, null, undefined,
NaN, Infinity, $name`

// handleCommand runs a `:` command and reports whether the session ends.
func (s *Session) handleCommand(line string) (exit bool) {
	switch strings.TrimSpace(line) {
	case ":quit", ":q", ":exit":
		return true
	case ":help", ":h":
		fmt.Fprintln(s.out, helpText)
	case ":bindings":
		for _, name := range s.Bindings() {
			fmt.Fprintf(s.out, "$%s = %s\n", name, s.bindings[name].Inspect())
		}
	default:
		fmt.Fprintf(s.out, "unknown command %s (try :help)\n", strings.TrimSpace(line))
	}
	return false
}

// execLine evaluates one input line. Blank lines and `#` comments are
// skipped and count as success.
func (s *Session) execLine(line string) (ok, exit bool) {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "" || strings.HasPrefix(trimmed, "#"):
		return true, false
	case strings.HasPrefix(trimmed, ":"):
		return true, s.handleCommand(trimmed)
	}
	return s.DisplayResult(s.Eval(trimmed)), false
}

// RunLines evaluates r line by line, the non-interactive mode. It returns
// false if any line failed.
func (s *Session) RunLines(r io.Reader) bool {
	allOK := true
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		ok, exit := s.execLine(scanner.Text())
		allOK = allOK && ok
		if exit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %s\n", err)
		return false
	}
	return allOK
}

// RunRepl runs the interactive playground on the terminal with line
// editing and history.
func (s *Session) RunRepl(cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Banner != "" {
		fmt.Fprintln(s.out, cfg.Banner)
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(completer)

	histPath := cfg.historyPath()
	if histPath != "" {
		// History is best-effort
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}

	for {
		line, err := ln.Prompt(cfg.Prompt)
		if err == liner.ErrPromptAborted {
			continue
		}
		if err == io.EOF {
			fmt.Fprintln(s.out)
			break
		}
		if err != nil {
			return fmt.Errorf("driver: reading input: %w", err)
		}
		if strings.TrimSpace(line) != "" {
			ln.AppendHistory(line)
		}
		if _, exit := s.execLine(line); exit {
			break
		}
	}

	if histPath != "" {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}
	return nil
}

func completer(line string) []string {
	var out []string
	for name := range commands {
		if strings.HasPrefix(name, line) {
			out = append(out, name+" ")
		}
	}
	for _, name := range []string{":help", ":quit", ":bindings"} {
		if strings.HasPrefix(name, line) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
