// Package snapshot is Perth's Snapshot Engine: it captures a live zellij
// session's tab/pane layout into a SessionSnapshot, and restores a
// SessionSnapshot back into a live session.
package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/delorenj/perth/internal/types"
	"github.com/delorenj/perth/internal/zellij"
	"github.com/google/uuid"
)

// Capturer captures the active zellij session's layout into a snapshot.
type Capturer struct {
	driver zellij.Driver
	now    func() time.Time
}

// NewCapturer returns a Capturer over the given Driver.
func NewCapturer(driver zellij.Driver) *Capturer {
	return &Capturer{driver: driver, now: time.Now}
}

// Capture takes the active session's current layout and builds a
// SessionSnapshot plus a RestoreReport carrying any per-tab/per-pane
// warnings encountered along the way. Every tab in the normalised layout
// is captured; there is no per-tab failure path. An empty tab list fails
// the whole capture, since that almost always means dump-layout returned
// something the parser couldn't make sense of rather than a genuinely
// empty session.
func (c *Capturer) Capture(ctx context.Context, name string, description *string, parentID *string) (*types.SessionSnapshot, *types.RestoreReport, error) {
	start := c.now()
	session, ok := c.driver.ActiveSession()
	if !ok {
		return nil, nil, fmt.Errorf("not inside a zellij session; snapshot requires an active session")
	}

	layout, err := c.driver.DumpLayout(ctx, session)
	if err != nil {
		return nil, nil, fmt.Errorf("dump layout: %w", err)
	}
	if layout == nil {
		return nil, nil, fmt.Errorf("failed to get layout from zellij; dump-layout returned empty")
	}

	report := types.NewRestoreReport()

	tabs := c.parseTabs(layout, report)
	if len(tabs) == 0 {
		return nil, nil, fmt.Errorf("no tabs captured; session appears empty")
	}

	snap := types.NewSessionSnapshot(name, session, c.now().UTC().Format(time.RFC3339))
	snap.Tabs = tabs
	snap.RecomputePaneCount()
	if parentID != nil {
		if id, perr := uuid.Parse(*parentID); perr == nil {
			snap.ParentID = &id
		}
	}
	snap.Description = description

	report.Finalize(c.now().Sub(start))
	return snap, report, nil
}

func (c *Capturer) parseTabs(layout *zellij.Layout, report *types.RestoreReport) []types.TabSnapshot {
	tabs := make([]types.TabSnapshot, 0, len(layout.Tabs))
	for index, raw := range layout.Tabs {
		tab := c.parseTab(raw, index, report)
		tabs = append(tabs, tab)
	}
	return tabs
}

func (c *Capturer) parseTab(raw zellij.LayoutTab, index int, report *types.RestoreReport) types.TabSnapshot {
	layoutDir := raw.Layout
	if layoutDir == "" {
		layoutDir = "vertical"
	}

	panes := c.collectPanes(raw.Panes, raw.Name, report)

	return types.TabSnapshot{
		Name:   raw.Name,
		Index:  index,
		Active: raw.Active,
		Layout: layoutDir,
		Panes:  panes,
	}
}

// collectPanes assigns sequential positions to the already-flattened leaf
// panes the Multiplexer Adapter handed back, substituting "unnamed" and
// recording an info warning for any pane the multiplexer reported with no
// name.
func (c *Capturer) collectPanes(raw []zellij.LayoutPane, tabName string, report *types.RestoreReport) []types.PaneSnapshot {
	panes := make([]types.PaneSnapshot, 0, len(raw))
	for position, p := range raw {
		name := p.Name
		if name == "" {
			name = "unnamed"
			component := fmt.Sprintf("tab '%s' position %d", tabName, position)
			report.AddWarning(types.WarningLevelInfo, "pane has no name; will be restored as unnamed", &component, nil)
		}

		pane := types.PaneSnapshot{
			Name:     name,
			Position: position,
			Focused:  p.Focused,
		}
		if p.Cwd != "" {
			cwd := p.Cwd
			pane.Cwd = &cwd
		}
		if p.Command != "" {
			cmd := p.Command
			pane.Command = &cmd
		}
		if p.PaneID != "" {
			pid := p.PaneID
			pane.PaneID = &pid
		}
		panes = append(panes, pane)
	}
	return panes
}
