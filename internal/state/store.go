// Package state is Perth's State Store: the Redis-backed record of panes,
// tabs, intent history, and session snapshots.
package state

import (
	"context"

	"github.com/delorenj/perth/internal/types"
)

// Store is the State Store's capability surface. Orchestrator depends on
// this interface, not on RedisStore directly, so tests can substitute a
// fake (mirroring the teacher's planstore.Store split between SQLiteStore
// and HTTPStore).
type Store interface {
	GetPane(ctx context.Context, paneName string) (*types.PaneRecord, error)
	UpsertPane(ctx context.Context, record *types.PaneRecord) error
	TouchPane(ctx context.Context, paneName string, metaUpdates map[string]string) error
	MarkSeen(ctx context.Context, paneName string) error
	MarkStale(ctx context.Context, paneName string) error
	ListPaneNames(ctx context.Context) ([]string, error)
	ListAllPanes(ctx context.Context) ([]*types.PaneRecord, error)

	LogIntent(ctx context.Context, paneName string, entry *types.IntentEntry) error
	GetHistory(ctx context.Context, paneName string, limit int) ([]*types.IntentEntry, error)
	GetHistoryCount(ctx context.Context, paneName string) (int64, error)
	ClearHistory(ctx context.Context, paneName string) error

	GetTab(ctx context.Context, tabName, session string) (*types.TabRecord, error)
	UpsertTab(ctx context.Context, record *types.TabRecord) error
	TouchTab(ctx context.Context, tabName, session string) error
	ListTabNames(ctx context.Context, session string) ([]string, error)
	ListTabs(ctx context.Context, session string) ([]*types.TabRecord, error)
	TabExists(ctx context.Context, tabName, session string) (bool, error)

	MigrateKeyspace(ctx context.Context, dryRun bool) (*types.MigrationResult, error)

	SaveSnapshot(ctx context.Context, snapshot *types.SessionSnapshot) error
	ListSnapshots(ctx context.Context, session string) ([]*types.SessionSnapshot, error)
	ListAllSnapshots(ctx context.Context) ([]*types.SessionSnapshot, error)
	GetSnapshot(ctx context.Context, session, name string) (*types.SessionSnapshot, error)
	DeleteSnapshot(ctx context.Context, session, name string) error
	GetSnapshotAncestry(ctx context.Context, session, name string) ([]*types.SessionSnapshot, error)
}

// DefaultHistoryLimit is the maximum number of intent-history entries kept
// per pane; LogIntent trims the list to this size after every prepend.
const DefaultHistoryLimit = 100

// MetaPrefix tags hash fields that belong to a PaneRecord/TabRecord's
// free-form Meta map.
const MetaPrefix = "meta:"

func paneKey(name string) string         { return "perth:pane:" + name }
func legacyPaneKey(name string) string   { return "znav:pane:" + name }
func historyKey(name string) string      { return "perth:pane:" + name + ":history" }
func tabKey(name, session string) string { return "perth:tab:" + session + ":" + name }
func snapshotKey(session, name string) string {
	return "perth:snapshots:" + session + ":" + name
}
