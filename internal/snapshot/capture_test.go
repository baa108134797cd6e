package snapshot

import (
	"context"
	"testing"
	"time"

	"github.com/delorenj/perth/internal/types"
	"github.com/delorenj/perth/internal/zellij"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

func TestCapture_NotInSession_Errors(t *testing.T) {
	d := &fakeDriver{hasSession: false}
	c := NewCapturer(d)
	c.now = fixedNow

	_, _, err := c.Capture(context.Background(), "snap", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not inside a zellij session")
}

func TestCapture_NilLayout_Errors(t *testing.T) {
	d := &fakeDriver{session: "main", hasSession: true, layout: nil}
	c := NewCapturer(d)
	c.now = fixedNow

	_, _, err := c.Capture(context.Background(), "snap", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dump-layout returned empty")
}

func TestCapture_EmptyTabs_Errors(t *testing.T) {
	d := &fakeDriver{session: "main", hasSession: true, layout: &zellij.Layout{Tabs: []zellij.LayoutTab{}}}
	c := NewCapturer(d)
	c.now = fixedNow

	_, _, err := c.Capture(context.Background(), "snap", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no tabs captured")
}

func TestCapture_FlattensTabsAndPanes(t *testing.T) {
	layout := &zellij.Layout{
		Tabs: []zellij.LayoutTab{
			{
				Name:   "editor",
				Active: true,
				Layout: "vertical",
				Panes: []zellij.LayoutPane{
					{Name: "code", Cwd: "/home/user/proj", Command: "nvim", PaneID: "1", Focused: true},
					{Name: "logs", Cwd: "/home/user/proj"},
				},
			},
		},
	}
	d := &fakeDriver{session: "main", hasSession: true, layout: layout}
	c := NewCapturer(d)
	c.now = fixedNow

	desc := "a description"
	snap, report, err := c.Capture(context.Background(), "snap-1", &desc, nil)
	require.NoError(t, err)
	require.NotNil(t, snap)

	assert.Equal(t, "main", snap.Session)
	assert.Equal(t, "snap-1", snap.Name)
	assert.Equal(t, &desc, snap.Description)
	assert.Equal(t, 2, snap.PaneCount)
	require.Len(t, snap.Tabs, 1)

	tab := snap.Tabs[0]
	assert.Equal(t, "editor", tab.Name)
	assert.True(t, tab.Active)
	assert.Equal(t, "vertical", tab.Layout)
	require.Len(t, tab.Panes, 2)

	assert.Equal(t, "code", tab.Panes[0].Name)
	assert.Equal(t, 0, tab.Panes[0].Position)
	require.NotNil(t, tab.Panes[0].Cwd)
	assert.Equal(t, "/home/user/proj", *tab.Panes[0].Cwd)
	assert.True(t, tab.Panes[0].Focused)

	assert.Equal(t, "logs", tab.Panes[1].Name)
	assert.Equal(t, 1, tab.Panes[1].Position)

	assert.Equal(t, types.RestoreStatusSuccess, report.Status)
	assert.Empty(t, report.Warnings)
}

func TestCapture_UnnamedPane_WarnsAndDefaultsName(t *testing.T) {
	layout := &zellij.Layout{
		Tabs: []zellij.LayoutTab{
			{Name: "build", Panes: []zellij.LayoutPane{{Name: ""}}},
		},
	}
	d := &fakeDriver{session: "main", hasSession: true, layout: layout}
	c := NewCapturer(d)
	c.now = fixedNow

	snap, report, err := c.Capture(context.Background(), "snap", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "unnamed", snap.Tabs[0].Panes[0].Name)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, types.WarningLevelInfo, report.Warnings[0].Level)
	assert.Equal(t, types.RestoreStatusSuccess, report.Status)
}

func TestCapture_MissingTabLayout_DefaultsToVertical(t *testing.T) {
	layout := &zellij.Layout{
		Tabs: []zellij.LayoutTab{
			{Name: "no-layout", Panes: []zellij.LayoutPane{{Name: "a"}}},
		},
	}
	d := &fakeDriver{session: "main", hasSession: true, layout: layout}
	c := NewCapturer(d)
	c.now = fixedNow

	snap, _, err := c.Capture(context.Background(), "snap", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "vertical", snap.Tabs[0].Layout)
}
