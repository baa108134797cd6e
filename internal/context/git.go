package context

import (
	"os/exec"
	"strings"

	"github.com/go-git/go-git/v5"
)

// gitInfo abstracts branch/diff collection so tests can stub it without a
// real repository or git binary.
type gitInfo interface {
	// BranchAndDiffStat returns the current branch name and a short diff
	// stat for cwd, or two empty strings when cwd is not inside a git
	// working tree.
	BranchAndDiffStat(cwd string) (branch, diffStat string)
}

type commandLineGit struct{}

// BranchAndDiffStat resolves the branch via go-git's HEAD reference (no
// subprocess needed for that part) and shells out to `git diff --stat` for
// the diff summary, since go-git's diff machinery doesn't produce the
// `--stat` text format directly.
func (commandLineGit) BranchAndDiffStat(cwd string) (string, string) {
	repo, err := git.PlainOpenWithOptions(cwd, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", ""
	}

	var branch string
	if head, err := repo.Head(); err == nil && head.Name().IsBranch() {
		branch = head.Name().Short()
	}

	diff := runGitOutput(cwd, "diff", "--stat")
	return branch, diff
}

func runGitOutput(cwd string, args ...string) string {
	cmd := exec.Command("git", args...)
	cmd.Dir = cwd
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
