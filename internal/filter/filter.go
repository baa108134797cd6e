// Package filter sanitizes text before it reaches the LLM Client or the
// Event Publisher, redacting anything that looks like a credential.
package filter

import (
	"fmt"
	"regexp"
)

// defaultPatterns covers generic key/token/secret/password assignments,
// bearer tokens, AWS keys, hosted-SCM personal access tokens, database URLs
// with embedded credentials, PEM private-key headers, and shell exports
// assigning key-ish identifiers.
var defaultPatterns = []string{
	`(?i)(api[_-]?key|apikey)\s*[=:]\s*\S+`,
	`(?i)(secret[_-]?key|secretkey)\s*[=:]\s*\S+`,
	`(?i)(access[_-]?token|accesstoken)\s*[=:]\s*\S+`,
	`(?i)(auth[_-]?token|authtoken)\s*[=:]\s*\S+`,
	`(?i)bearer\s+[a-zA-Z0-9._-]+`,
	`(?i)(password|passwd|pwd)\s*[=:]\s*\S+`,
	`(?i)aws[_-]?(access[_-]?key[_-]?id|secret[_-]?access[_-]?key)\s*[=:]\s*\S+`,
	`AKIA[0-9A-Z]{16}`,
	`gh[pousr]_[A-Za-z0-9_]{36,}`,
	`glpat-[A-Za-z0-9_-]{20,}`,
	`(?i)(private[_-]?key|privatekey)\s*[=:]\s*\S+`,
	`(?i)(client[_-]?secret|clientsecret)\s*[=:]\s*\S+`,
	`(?i)(postgres|mysql|mongodb|redis)://[^:]+:[^@]+@`,
	`-----BEGIN\s+(RSA|DSA|EC|OPENSSH)\s+PRIVATE\s+KEY-----`,
	`(?i)export\s+\w*(key|token|secret|password|credential)\w*\s*=\s*\S+`,
}

const defaultReplacement = "[REDACTED]"

// Config configures a Filter beyond the built-in pattern set. ExcludePatterns
// is accepted for forward compatibility with the TOML [filter] sub-table but
// is not yet consulted by Compile (see SPEC_FULL.md §5.3).
type Config struct {
	AdditionalPatterns []string `toml:"additional_patterns"`
	ExcludePatterns    []string `toml:"exclude_patterns"`
	Replacement        string   `toml:"replacement"`
}

// DefaultConfig returns the zero-value configuration: no extra patterns, the
// standard [REDACTED] replacement.
func DefaultConfig() Config {
	return Config{Replacement: defaultReplacement}
}

// Filter is an immutable, compiled set of secret-detection patterns. It must
// be built once (via New or Compile) and reused; compiling per-call would
// defeat the point of precompiling regexp.Regexp.
type Filter struct {
	patterns    []*regexp.Regexp
	replacement string
}

// New builds a Filter with only the built-in pattern set.
func New() (*Filter, error) {
	return Compile(DefaultConfig())
}

// Compile builds a Filter from the built-in patterns plus cfg's additional
// patterns.
func Compile(cfg Config) (*Filter, error) {
	replacement := cfg.Replacement
	if replacement == "" {
		replacement = defaultReplacement
	}

	all := make([]string, 0, len(defaultPatterns)+len(cfg.AdditionalPatterns))
	all = append(all, defaultPatterns...)
	all = append(all, cfg.AdditionalPatterns...)

	compiled := make([]*regexp.Regexp, 0, len(all))
	for _, p := range all {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to compile pattern %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}

	return &Filter{patterns: compiled, replacement: replacement}, nil
}

// Result is the outcome of filtering one piece of text.
type Result struct {
	Text            string
	RedactionCount  int
}

// Filter sanitizes text, replacing every match of every pattern with the
// configured replacement literal.
func (f *Filter) Filter(text string) Result {
	result := text
	count := 0
	for _, pattern := range f.patterns {
		matches := pattern.FindAllStringIndex(result, -1)
		count += len(matches)
		result = pattern.ReplaceAllString(result, f.replacement)
	}
	return Result{Text: result, RedactionCount: count}
}

// FilterLines filters each line independently, threading a running
// redaction count.
func (f *Filter) FilterLines(lines []string) ([]string, int) {
	total := 0
	filtered := make([]string, len(lines))
	for i, line := range lines {
		r := f.Filter(line)
		filtered[i] = r.Text
		total += r.RedactionCount
	}
	return filtered, total
}
