// Package zellij is Perth's Multiplexer Adapter: a thin, testable wrapper
// around the `zellij` CLI.
package zellij

import "context"

// Layout is the normalised shape every Driver.DumpLayout call returns,
// regardless of whether the underlying zellij build supports structured
// JSON output or only a textual KDL dump. Consumers must work over this
// shape, never over zellij's raw output.
type Layout struct {
	Tabs []LayoutTab `json:"tabs"`
}

// LayoutTab is one tab's normalised layout.
type LayoutTab struct {
	Name   string       `json:"name"`
	Active bool         `json:"active"`
	Layout string       `json:"layout"`
	Panes  []LayoutPane `json:"panes"`
}

// LayoutPane is one pane's normalised layout, flattened out of whatever
// split nesting the multiplexer reported.
type LayoutPane struct {
	Name    string `json:"name"`
	Cwd     string `json:"cwd,omitempty"`
	Command string `json:"command,omitempty"`
	PaneID  string `json:"pane_id,omitempty"`
	Focused bool   `json:"focused"`
}

// Direction is the split direction passed to NewPane.
type Direction string

const (
	DirectionDown  Direction = "down"
	DirectionRight Direction = "right"
)

// Driver is the Multiplexer Adapter's capability surface.
type Driver interface {
	// ActiveSession reads the active session name from the environment.
	// It performs no I/O and cannot fail.
	ActiveSession() (string, bool)

	QueryTabNames(ctx context.Context, session string) ([]string, error)
	NewTab(ctx context.Context, session, name string) error
	GoToTab(ctx context.Context, session, name string) error
	NewPane(ctx context.Context, session string, direction Direction, cwd string) error
	RenamePane(ctx context.Context, session, name string) error
	FocusNextPane(ctx context.Context, session string) error
	// FocusPaneByIndex calls FocusNextPane exactly i times. Position drift
	// is tolerated; the Orchestrator treats any error this returns as
	// best-effort and swallows it after logging.
	FocusPaneByIndex(ctx context.Context, session string, index int) error
	// DumpLayout returns nil, not an error, when the multiplexer's dump
	// produced no output.
	DumpLayout(ctx context.Context, session string) (*Layout, error)
	AttachSession(ctx context.Context, name string) error
	// CheckVersion shells `zellij --version` once, caches that first
	// outcome (the parsed version or the error running it) for the life of
	// the Driver, and returns an error if the installed version is below
	// minVersion.
	CheckVersion(ctx context.Context, minVersion string) (string, error)
}
