// Package context gathers everything the LLM Client needs to summarise a
// pane's recent activity: shell history, git branch/diff, and recently
// touched files, all passed through the secret filter before leaving the
// collector.
package context

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/delorenj/perth/internal/filter"
	"github.com/delorenj/perth/internal/llm"
)

const (
	defaultHistoryLines = 20
	recentFileThreshold = 30 * time.Minute
	recentFileLimit     = 20
)

var skippedDirs = map[string]bool{
	"node_modules": true,
	"target":       true,
	"dist":         true,
	"build":        true,
	"__pycache__":  true,
	".git":         true,
}

// Collector gathers SessionContext for a pane.
type Collector struct {
	filter          *filter.Filter
	historyLines    int
	recentThreshold time.Duration
	git             gitInfo
}

// New builds a Collector with default settings and the given filter.
func New(f *filter.Filter) *Collector {
	return &Collector{
		filter:          f,
		historyLines:    defaultHistoryLines,
		recentThreshold: recentFileThreshold,
		git:             commandLineGit{},
	}
}

// WithSettings overrides the history-line count and recent-file threshold.
func (c *Collector) WithSettings(historyLines int, recentThresholdMins int) *Collector {
	c.historyLines = historyLines
	c.recentThreshold = time.Duration(recentThresholdMins) * time.Minute
	return c
}

// Collect gathers context for paneName. cwd overrides the process's
// current directory when non-empty. Per-source failures are swallowed into
// empty output rather than aborting the whole collection.
func (c *Collector) Collect(paneName, cwd string) (*llm.SessionContext, error) {
	workingDir := cwd
	if workingDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		workingDir = wd
	}

	history := c.collectShellHistory()
	branch, diff := c.git.BranchAndDiffStat(workingDir)
	activeFiles := c.collectRecentFiles(workingDir)

	filteredHistory, _ := c.filter.FilterLines(history)
	filteredFiles, _ := c.filter.FilterLines(activeFiles)
	if branch != "" {
		branch = c.filter.Filter(branch).Text
	}
	filteredDiff := ""
	if diff != "" {
		filteredDiff = c.filter.Filter(diff).Text
	}

	ctx := llm.NewSessionContext(paneName).
		WithCwd(workingDir).
		WithShellHistory(filteredHistory).
		WithActiveFiles(filteredFiles)
	if branch != "" {
		ctx.WithGitBranch(branch)
	}
	if filteredDiff != "" {
		ctx.WithGitDiff(filteredDiff)
	}
	return ctx, nil
}

// collectRecentFiles walks cwd for files modified within the recent
// threshold, skipping hidden paths and known build-artifact directories.
func (c *Collector) collectRecentFiles(cwd string) []string {
	now := time.Now()
	var results []string
	c.walkRecent(cwd, cwd, now, &results)
	sort.Strings(results)
	if len(results) > recentFileLimit {
		results = results[:recentFileLimit]
	}
	return results
}

func (c *Collector) walkRecent(base, dir string, now time.Time, results *[]string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		name := entry.Name()
		if len(name) > 0 && name[0] == '.' {
			continue
		}
		if skippedDirs[name] {
			continue
		}

		path := filepath.Join(dir, name)
		if entry.IsDir() {
			c.walkRecent(base, path, now, results)
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) < c.recentThreshold {
			relative, err := filepath.Rel(base, path)
			if err != nil {
				continue
			}
			*results = append(*results, relative)
		}
	}
}
