package snapshot

import (
	"context"

	"github.com/delorenj/perth/internal/zellij"
)

// fakeDriver is a scriptable zellij.Driver test double.
type fakeDriver struct {
	session    string
	hasSession bool

	layout    *zellij.Layout
	layoutErr error

	tabNames    []string
	tabNamesErr error

	newTabCalls    []string
	newTabErr      error
	goToTabCalls   []string
	goToTabErr     error
	newPaneCalls   []newPaneCall
	newPaneErr     error
	renamePaneCall []string
	renamePaneErr  error
}

type newPaneCall struct {
	direction zellij.Direction
	cwd       string
}

func (f *fakeDriver) ActiveSession() (string, bool) { return f.session, f.hasSession }

func (f *fakeDriver) QueryTabNames(ctx context.Context, session string) ([]string, error) {
	return f.tabNames, f.tabNamesErr
}

func (f *fakeDriver) NewTab(ctx context.Context, session, name string) error {
	f.newTabCalls = append(f.newTabCalls, name)
	return f.newTabErr
}

func (f *fakeDriver) GoToTab(ctx context.Context, session, name string) error {
	f.goToTabCalls = append(f.goToTabCalls, name)
	return f.goToTabErr
}

func (f *fakeDriver) NewPane(ctx context.Context, session string, direction zellij.Direction, cwd string) error {
	f.newPaneCalls = append(f.newPaneCalls, newPaneCall{direction: direction, cwd: cwd})
	return f.newPaneErr
}

func (f *fakeDriver) RenamePane(ctx context.Context, session, name string) error {
	f.renamePaneCall = append(f.renamePaneCall, name)
	return f.renamePaneErr
}

func (f *fakeDriver) FocusNextPane(ctx context.Context, session string) error { return nil }

func (f *fakeDriver) FocusPaneByIndex(ctx context.Context, session string, index int) error {
	return nil
}

func (f *fakeDriver) DumpLayout(ctx context.Context, session string) (*zellij.Layout, error) {
	return f.layout, f.layoutErr
}

func (f *fakeDriver) AttachSession(ctx context.Context, name string) error { return nil }

func (f *fakeDriver) CheckVersion(ctx context.Context, minVersion string) (string, error) {
	return "", nil
}
