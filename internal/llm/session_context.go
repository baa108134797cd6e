// Package llm provides the summarisation client used to turn a pane's
// recent activity into an intent-log entry.
package llm

// SessionContext is the input to a Provider's Summarize call: everything
// the Context Collector could gather about a pane, already passed through
// the secret filter.
type SessionContext struct {
	PaneName        string   `json:"pane_name"`
	Cwd             string   `json:"cwd"`
	ShellHistory    []string `json:"shell_history"`
	GitBranch       string   `json:"git_branch,omitempty"`
	GitDiff         string   `json:"git_diff,omitempty"`
	ActiveFiles     []string `json:"active_files"`
	ExistingSummary string   `json:"existing_summary,omitempty"`
}

// NewSessionContext builds a SessionContext for the given pane with empty
// slices rather than nil, so downstream JSON/prompt rendering never has to
// special-case a missing field.
func NewSessionContext(paneName string) *SessionContext {
	return &SessionContext{
		PaneName:     paneName,
		ShellHistory: []string{},
		ActiveFiles:  []string{},
	}
}

func (c *SessionContext) WithCwd(cwd string) *SessionContext {
	c.Cwd = cwd
	return c
}

func (c *SessionContext) WithShellHistory(history []string) *SessionContext {
	c.ShellHistory = history
	return c
}

func (c *SessionContext) WithGitBranch(branch string) *SessionContext {
	c.GitBranch = branch
	return c
}

func (c *SessionContext) WithGitDiff(diff string) *SessionContext {
	c.GitDiff = diff
	return c
}

func (c *SessionContext) WithActiveFiles(files []string) *SessionContext {
	c.ActiveFiles = files
	return c
}

func (c *SessionContext) WithExistingSummary(summary string) *SessionContext {
	c.ExistingSummary = summary
	return c
}
