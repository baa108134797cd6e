package context

import (
	"os"
	"path/filepath"
	"strings"
)

type shellType int

const (
	shellBash shellType = iota
	shellZsh
	shellFish
)

// collectShellHistory reads the active shell's history file and returns at
// most historyLines of the most recent commands.
func (c *Collector) collectShellHistory() []string {
	path := c.findHistoryFile()
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	lines := parseHistory(string(data), detectShell())
	if len(lines) > c.historyLines {
		lines = lines[len(lines)-c.historyLines:]
	}
	return lines
}

// findHistoryFile checks $HISTFILE first, then falls back to the usual
// per-shell locations under $HOME in order.
func (c *Collector) findHistoryFile() string {
	if histfile := os.Getenv("HISTFILE"); histfile != "" {
		if _, err := os.Stat(histfile); err == nil {
			return histfile
		}
	}

	home := os.Getenv("HOME")
	if home == "" {
		return ""
	}

	candidates := []string{
		filepath.Join(home, ".zsh_history"),
		filepath.Join(home, ".bash_history"),
		filepath.Join(home, ".local/share/fish/fish_history"),
		filepath.Join(home, ".history"),
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// detectShell infers the shell flavour from $SHELL, falling back to
// $HISTFILE's name, defaulting to bash.
func detectShell() shellType {
	if shell := os.Getenv("SHELL"); shell != "" {
		switch {
		case strings.Contains(shell, "zsh"):
			return shellZsh
		case strings.Contains(shell, "fish"):
			return shellFish
		case strings.Contains(shell, "bash"):
			return shellBash
		}
	}

	if histfile := os.Getenv("HISTFILE"); histfile != "" {
		switch {
		case strings.Contains(histfile, "zsh"):
			return shellZsh
		case strings.Contains(histfile, "fish"):
			return shellFish
		}
	}

	return shellBash
}

func parseHistory(content string, shell shellType) []string {
	switch shell {
	case shellZsh:
		return parseZshHistory(content)
	case shellFish:
		return parseFishHistory(content)
	default:
		return parseBashHistory(content)
	}
}

// parseZshHistory handles both the extended format (": ts:0;command") and
// the plain one-command-per-line format.
func parseZshHistory(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ": ") {
			if idx := strings.Index(line, ";"); idx >= 0 {
				cmd := line[idx+1:]
				if cmd != "" {
					out = append(out, cmd)
				}
			}
			continue
		}
		out = append(out, line)
	}
	return out
}

// parseFishHistory reads fish's YAML-like history, keeping only the
// "- cmd:" lines.
func parseFishHistory(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "- cmd:") {
			out = append(out, strings.TrimSpace(strings.TrimPrefix(line, "- cmd:")))
		}
	}
	return out
}

// parseBashHistory treats every non-empty, non-comment line as a command.
func parseBashHistory(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}
