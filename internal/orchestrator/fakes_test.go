package orchestrator

import (
	"context"

	"github.com/delorenj/perth/internal/llm"
	"github.com/delorenj/perth/internal/types"
	"github.com/delorenj/perth/internal/zellij"
)

// fakeStore is an in-memory state.Store double.
type fakeStore struct {
	panes     map[string]*types.PaneRecord
	tabs      map[string]*types.TabRecord
	history   map[string][]*types.IntentEntry
	snapshots map[string]*types.SessionSnapshot

	migrateResult *types.MigrationResult
	migrateErr    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		panes:     map[string]*types.PaneRecord{},
		tabs:      map[string]*types.TabRecord{},
		history:   map[string][]*types.IntentEntry{},
		snapshots: map[string]*types.SessionSnapshot{},
	}
}

func (f *fakeStore) GetPane(ctx context.Context, paneName string) (*types.PaneRecord, error) {
	return f.panes[paneName], nil
}

func (f *fakeStore) UpsertPane(ctx context.Context, record *types.PaneRecord) error {
	f.panes[record.PaneName] = record
	return nil
}

func (f *fakeStore) TouchPane(ctx context.Context, paneName string, metaUpdates map[string]string) error {
	p, ok := f.panes[paneName]
	if !ok {
		return nil
	}
	p.Stale = false
	for k, v := range metaUpdates {
		p.Meta[k] = v
	}
	return nil
}

func (f *fakeStore) MarkSeen(ctx context.Context, paneName string) error {
	if p, ok := f.panes[paneName]; ok {
		p.Stale = false
	}
	return nil
}

func (f *fakeStore) MarkStale(ctx context.Context, paneName string) error {
	if p, ok := f.panes[paneName]; ok {
		p.Stale = true
	}
	return nil
}

func (f *fakeStore) ListPaneNames(ctx context.Context) ([]string, error) {
	var names []string
	for name := range f.panes {
		names = append(names, name)
	}
	return names, nil
}

func (f *fakeStore) ListAllPanes(ctx context.Context) ([]*types.PaneRecord, error) {
	var out []*types.PaneRecord
	for _, p := range f.panes {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeStore) LogIntent(ctx context.Context, paneName string, entry *types.IntentEntry) error {
	f.history[paneName] = append([]*types.IntentEntry{entry}, f.history[paneName]...)
	return nil
}

func (f *fakeStore) GetHistory(ctx context.Context, paneName string, limit int) ([]*types.IntentEntry, error) {
	h := f.history[paneName]
	if limit > 0 && limit < len(h) {
		return h[:limit], nil
	}
	return h, nil
}

func (f *fakeStore) GetHistoryCount(ctx context.Context, paneName string) (int64, error) {
	return int64(len(f.history[paneName])), nil
}

func (f *fakeStore) ClearHistory(ctx context.Context, paneName string) error {
	delete(f.history, paneName)
	return nil
}

func (f *fakeStore) GetTab(ctx context.Context, tabName, session string) (*types.TabRecord, error) {
	return f.tabs[session+"/"+tabName], nil
}

func (f *fakeStore) UpsertTab(ctx context.Context, record *types.TabRecord) error {
	f.tabs[record.Session+"/"+record.TabName] = record
	return nil
}

func (f *fakeStore) TouchTab(ctx context.Context, tabName, session string) error {
	return nil
}

func (f *fakeStore) ListTabNames(ctx context.Context, session string) ([]string, error) {
	var names []string
	for _, t := range f.tabs {
		if t.Session == session {
			names = append(names, t.TabName)
		}
	}
	return names, nil
}

func (f *fakeStore) ListTabs(ctx context.Context, session string) ([]*types.TabRecord, error) {
	var out []*types.TabRecord
	for _, t := range f.tabs {
		if t.Session == session {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) TabExists(ctx context.Context, tabName, session string) (bool, error) {
	_, ok := f.tabs[session+"/"+tabName]
	return ok, nil
}

func (f *fakeStore) MigrateKeyspace(ctx context.Context, dryRun bool) (*types.MigrationResult, error) {
	if f.migrateErr != nil {
		return nil, f.migrateErr
	}
	if f.migrateResult != nil {
		return f.migrateResult, nil
	}
	return types.NewMigrationResult(), nil
}

func (f *fakeStore) SaveSnapshot(ctx context.Context, snapshot *types.SessionSnapshot) error {
	f.snapshots[snapshot.Session+"/"+snapshot.Name] = snapshot
	return nil
}

func (f *fakeStore) ListSnapshots(ctx context.Context, session string) ([]*types.SessionSnapshot, error) {
	return nil, nil
}

func (f *fakeStore) ListAllSnapshots(ctx context.Context) ([]*types.SessionSnapshot, error) {
	return nil, nil
}

func (f *fakeStore) GetSnapshot(ctx context.Context, session, name string) (*types.SessionSnapshot, error) {
	snap, ok := f.snapshots[session+"/"+name]
	if !ok {
		return nil, nil
	}
	return snap, nil
}

func (f *fakeStore) DeleteSnapshot(ctx context.Context, session, name string) error {
	delete(f.snapshots, session+"/"+name)
	return nil
}

func (f *fakeStore) GetSnapshotAncestry(ctx context.Context, session, name string) ([]*types.SessionSnapshot, error) {
	return nil, nil
}

// fakeDriver is a scriptable zellij.Driver test double.
type fakeDriver struct {
	session    string
	hasSession bool

	layout    *zellij.Layout
	layoutErr error

	tabNames    []string
	tabNamesErr error

	newTabCalls  []string
	newTabErr    error
	goToTabCalls []string
	goToTabErr   error

	newPaneCalls   []newPaneCall
	newPaneErr     error
	renamePaneCall []string
	renamePaneErr  error

	attachCalls []string
	attachErr   error

	focusByIndexCalls []int
	focusByIndexErr   error

	checkVersionVal string
	checkVersionErr error
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
	f.focusByIndexCalls = append(f.focusByIndexCalls, index)
	return f.focusByIndexErr
}

func (f *fakeDriver) DumpLayout(ctx context.Context, session string) (*zellij.Layout, error) {
	return f.layout, f.layoutErr
}

func (f *fakeDriver) AttachSession(ctx context.Context, name string) error {
	f.attachCalls = append(f.attachCalls, name)
	return f.attachErr
}

func (f *fakeDriver) CheckVersion(ctx context.Context, minVersion string) (string, error) {
	return f.checkVersionVal, f.checkVersionErr
}

// fakeProvider is a scriptable llm.Provider test double.
type fakeProvider struct {
	name      string
	available bool
	result    llm.SummarizationResult
	err       error

	lastContext *llm.SessionContext
}

func (f *fakeProvider) Summarize(ctx context.Context, sc *llm.SessionContext) (llm.SummarizationResult, error) {
	f.lastContext = sc
	return f.result, f.err
}

func (f *fakeProvider) Name() string      { return f.name }
func (f *fakeProvider) IsAvailable() bool { return f.available }
