package zellij

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

var _ Driver = (*CLIDriver)(nil)

// CLIDriver is the production Driver, invoking the `zellij` binary as a
// child process.
type CLIDriver struct {
	exec Executor

	versionOnce    sync.Once
	cachedVersion  string
	cachedVerError error
}

// NewCLIDriver returns a CLIDriver using the real os/exec Executor.
func NewCLIDriver() *CLIDriver {
	return &CLIDriver{exec: MakeExecutor()}
}

// NewCLIDriverWithExecutor returns a CLIDriver over a supplied Executor, for
// tests.
func NewCLIDriverWithExecutor(exec Executor) *CLIDriver {
	return &CLIDriver{exec: exec}
}

func (d *CLIDriver) ActiveSession() (string, bool) {
	name := activeSessionNameEnv()
	return name, name != ""
}

func (d *CLIDriver) QueryTabNames(ctx context.Context, session string) ([]string, error) {
	out, err := d.action(ctx, session, "query-tab-names")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			names = append(names, line)
		}
	}
	return names, nil
}

func (d *CLIDriver) NewTab(ctx context.Context, session, name string) error {
	_, err := d.action(ctx, session, "new-tab", "--name", name)
	return err
}

func (d *CLIDriver) GoToTab(ctx context.Context, session, name string) error {
	_, err := d.action(ctx, session, "go-to-tab-name", name)
	return err
}

func (d *CLIDriver) NewPane(ctx context.Context, session string, direction Direction, cwd string) error {
	args := []string{"new-pane"}
	if direction != "" {
		args = append(args, "--direction", string(direction))
	}
	if cwd != "" {
		args = append(args, "--cwd", cwd)
	}
	_, err := d.action(ctx, session, args...)
	return err
}

func (d *CLIDriver) RenamePane(ctx context.Context, session, name string) error {
	_, err := d.action(ctx, session, "rename-pane", name)
	return err
}

func (d *CLIDriver) FocusNextPane(ctx context.Context, session string) error {
	_, err := d.action(ctx, session, "focus-next-pane")
	return err
}

func (d *CLIDriver) FocusPaneByIndex(ctx context.Context, session string, index int) error {
	for i := 0; i < index; i++ {
		if err := d.FocusNextPane(ctx, session); err != nil {
			return fmt.Errorf("focus pane by index: step %d of %d: %w", i+1, index, err)
		}
	}
	return nil
}

func (d *CLIDriver) DumpLayout(ctx context.Context, session string) (*Layout, error) {
	out, err := d.action(ctx, session, "dump-layout", "--json")
	if err != nil {
		if isUnsupportedFlagError(err) {
			return d.dumpLayoutText(ctx, session)
		}
		return nil, err
	}
	if strings.TrimSpace(string(out)) == "" {
		return nil, nil
	}

	var raw rawDumpLayout
	if err := json.Unmarshal(out, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse layout JSON: %w", err)
	}
	return raw.normalise(), nil
}

func (d *CLIDriver) dumpLayoutText(ctx context.Context, session string) (*Layout, error) {
	out, err := d.action(ctx, session, "dump-layout")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(out)) == "" {
		return nil, nil
	}
	return parseKDLLayout(string(out)), nil
}

func (d *CLIDriver) AttachSession(ctx context.Context, name string) error {
	cmd := exec.CommandContext(ctx, "zellij", "attach", name)
	if err := d.exec.Run(cmd); err != nil {
		return fmt.Errorf("zellij attach failed: %w", err)
	}
	return nil
}

func (d *CLIDriver) CheckVersion(ctx context.Context, minVersion string) (string, error) {
	d.versionOnce.Do(func() {
		cmd := exec.CommandContext(ctx, "zellij", "--version")
		out, err := d.exec.Output(cmd)
		if err != nil {
			d.cachedVerError = fmt.Errorf("failed to run zellij --version: %w", err)
			return
		}
		d.cachedVersion = parseVersionString(string(out))
	})
	if d.cachedVerError != nil {
		return "", d.cachedVerError
	}
	if compareSemver(d.cachedVersion, minVersion) < 0 {
		return d.cachedVersion, fmt.Errorf("zellij %s is below the required minimum %s", d.cachedVersion, minVersion)
	}
	return d.cachedVersion, nil
}

// action runs `zellij action [--session <session>] <args...>`, returning
// stdout. A non-zero exit is an error carrying the child's stderr text.
func (d *CLIDriver) action(ctx context.Context, session string, args ...string) ([]byte, error) {
	full := []string{"action"}
	if session != "" {
		full = append(full, "--session", session)
	}
	full = append(full, args...)

	cmd := exec.CommandContext(ctx, "zellij", full...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := d.exec.Output(cmd)
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("zellij action failed: %s", msg)
	}
	return out, nil
}

func isUnsupportedFlagError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unknown") || strings.Contains(msg, "unrecognized") || strings.Contains(msg, "unexpected argument")
}

// rawDumpLayout is the shape zellij's `dump-layout --json` emits. It is
// looser than Layout (panes may be nested inside "floating_panes" as well
// as "panes") because a subtree is only a leaf once both are absent.
type rawDumpLayout struct {
	Tabs []rawTab `json:"tabs"`
}

type rawTab struct {
	Name          string    `json:"name"`
	Active        bool      `json:"active"`
	Layout        string    `json:"layout"`
	Panes         []rawPane `json:"panes"`
	FloatingPanes []rawPane `json:"floating_panes"`
}

type rawPane struct {
	Name           string    `json:"name"`
	PaneName       string    `json:"pane_name"`
	Cwd            string    `json:"cwd"`
	Command        string    `json:"command"`
	RunningCommand string    `json:"running_command"`
	ID             *uint64   `json:"id"`
	PaneID         *uint64   `json:"pane_id"`
	Focused        bool      `json:"focused"`
	Panes          []rawPane `json:"panes"`
	FloatingPanes  []rawPane `json:"floating_panes"`
}

func (r *rawDumpLayout) normalise() *Layout {
	layout := &Layout{Tabs: make([]LayoutTab, 0, len(r.Tabs))}
	for _, tab := range r.Tabs {
		tabLayout := tab.Layout
		if tabLayout == "" {
			tabLayout = "vertical"
		}
		var panes []LayoutPane
		for _, p := range tab.Panes {
			panes = append(panes, flattenPane(p)...)
		}
		for _, p := range tab.FloatingPanes {
			panes = append(panes, flattenPane(p)...)
		}
		layout.Tabs = append(layout.Tabs, LayoutTab{Name: tab.Name, Active: tab.Active, Layout: tabLayout, Panes: panes})
	}
	return layout
}

// flattenPane recursively descends a pane subtree, treating the absence of
// both "panes" and "floating_panes" as the leaf condition, and assigning no
// position itself — callers number leaves in traversal order.
func flattenPane(p rawPane) []LayoutPane {
	if len(p.Panes) == 0 && len(p.FloatingPanes) == 0 {
		name := p.PaneName
		if name == "" {
			name = p.Name
		}

		command := p.Command
		if command == "" {
			command = p.RunningCommand
		}

		var paneID string
		switch {
		case p.ID != nil:
			paneID = fmt.Sprintf("%d", *p.ID)
		case p.PaneID != nil:
			paneID = fmt.Sprintf("%d", *p.PaneID)
		}

		return []LayoutPane{{Name: name, Cwd: p.Cwd, Command: command, PaneID: paneID, Focused: p.Focused}}
	}
	var out []LayoutPane
	for _, child := range p.Panes {
		out = append(out, flattenPane(child)...)
	}
	for _, child := range p.FloatingPanes {
		out = append(out, flattenPane(child)...)
	}
	return out
}
