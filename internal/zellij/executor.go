package zellij

import "os/exec"

// Executor runs external commands. CLIDriver depends on this interface,
// not os/exec directly, so tests can substitute a fake without touching the
// filesystem or spawning zellij (mirrors the teacher's cmd.Executor /
// session/tmux.TmuxSession's cmdExec field).
type Executor interface {
	Run(cmd *exec.Cmd) error
	Output(cmd *exec.Cmd) ([]byte, error)
}

// execExecutor is the production Executor, backed by os/exec.
type execExecutor struct{}

// MakeExecutor returns the real Executor used outside of tests.
func MakeExecutor() Executor { return execExecutor{} }

func (execExecutor) Run(cmd *exec.Cmd) error { return cmd.Run() }

func (execExecutor) Output(cmd *exec.Cmd) ([]byte, error) { return cmd.Output() }
