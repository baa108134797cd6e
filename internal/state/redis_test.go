package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delorenj/perth/internal/types"
)

func newTestStore() *RedisStore {
	return newRedisStore(newFakeConn())
}

func TestRedisStore_UpsertAndGetPane_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	record := types.NewPaneRecord("editor", "main", "code", "2026-01-01T00:00:00Z", map[string]string{"cwd": "/tmp"})
	require.NoError(t, s.UpsertPane(ctx, record))

	got, err := s.GetPane(ctx, "editor")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "main", got.Session)
	assert.Equal(t, "code", got.Tab)
	assert.Equal(t, "/tmp", got.Meta["cwd"])
	assert.False(t, got.Stale)
}

func TestRedisStore_GetPane_MissingReturnsNil(t *testing.T) {
	s := newTestStore()
	got, err := s.GetPane(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStore_MarkStaleThenSeen(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	record := types.NewPaneRecord("editor", "main", "code", "2026-01-01T00:00:00Z", nil)
	require.NoError(t, s.UpsertPane(ctx, record))

	require.NoError(t, s.MarkStale(ctx, "editor"))
	got, err := s.GetPane(ctx, "editor")
	require.NoError(t, err)
	assert.True(t, got.Stale)

	require.NoError(t, s.MarkSeen(ctx, "editor"))
	got, err = s.GetPane(ctx, "editor")
	require.NoError(t, err)
	assert.False(t, got.Stale)
}

func TestRedisStore_LogIntent_TrimsToHistoryLimit(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	for i := 0; i < DefaultHistoryLimit+10; i++ {
		entry := types.NewIntentEntry("checkpoint", types.IntentTypeCheckpoint, types.IntentSourceManual)
		require.NoError(t, s.LogIntent(ctx, "editor", entry))
	}

	count, err := s.GetHistoryCount(ctx, "editor")
	require.NoError(t, err)
	assert.Equal(t, int64(DefaultHistoryLimit), count)
}

func TestRedisStore_LogIntent_NewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	first := types.NewIntentEntry("first", types.IntentTypeCheckpoint, types.IntentSourceManual)
	second := types.NewIntentEntry("second", types.IntentTypeCheckpoint, types.IntentSourceManual)
	require.NoError(t, s.LogIntent(ctx, "editor", first))
	require.NoError(t, s.LogIntent(ctx, "editor", second))

	history, err := s.GetHistory(ctx, "editor", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "second", history[0].Summary)
	assert.Equal(t, "first", history[1].Summary)
}

func TestRedisStore_ClearHistory(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	require.NoError(t, s.LogIntent(ctx, "editor", types.NewIntentEntry("x", "", "")))
	require.NoError(t, s.ClearHistory(ctx, "editor"))

	count, err := s.GetHistoryCount(ctx, "editor")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestRedisStore_MigrateKeyspace_DryRunMakesNoWrites(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	conn := s.conn.(*fakeConn)
	conn.hashes["znav:pane:editor"] = map[string]string{"session": "main", "tab": "code"}

	result, err := s.MigrateKeyspace(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalKeys)
	assert.Equal(t, 1, result.MigratedCount)
	assert.Len(t, result.WouldMigrate, 1)

	_, ok := conn.hashes["perth:pane:editor"]
	assert.False(t, ok, "dry run must not write the migration target")
}

func TestRedisStore_MigrateKeyspace_CopiesAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	conn := s.conn.(*fakeConn)
	conn.hashes["znav:pane:editor"] = map[string]string{"session": "main", "tab": "code"}

	result, err := s.MigrateKeyspace(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, result.MigratedCount)
	assert.Equal(t, "main", conn.hashes["perth:pane:editor"]["session"])

	second, err := s.MigrateKeyspace(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 0, second.MigratedCount)
	assert.Equal(t, 1, second.SkippedCount)
}

func TestRedisStore_MigrateKeyspace_NeverTouchesLegacyKeyOutsideMigration(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	conn := s.conn.(*fakeConn)

	record := types.NewPaneRecord("editor", "main", "code", "2026-01-01T00:00:00Z", nil)
	require.NoError(t, s.UpsertPane(ctx, record))

	_, ok := conn.hashes["znav:pane:editor"]
	assert.False(t, ok, "UpsertPane must write perth:pane:*, never znav:pane:*")
}

func TestRedisStore_UpsertAndGetTab_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	corr := "req-7"
	tab := types.NewTabRecord("build", "main", "2026-01-01T00:00:00Z", nil)
	tab.CorrelationID = &corr
	require.NoError(t, s.UpsertTab(ctx, tab))

	got, err := s.GetTab(ctx, "build", "main")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "req-7", *got.CorrelationID)

	exists, err := s.TabExists(ctx, "build", "main")
	require.NoError(t, err)
	assert.True(t, exists)

	missing, err := s.TabExists(ctx, "nope", "main")
	require.NoError(t, err)
	assert.False(t, missing)
}

func TestRedisStore_SnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	snap := types.NewSessionSnapshot("before-refactor", "main", "2026-01-01T00:00:00Z")
	snap.Tabs = []types.TabSnapshot{{Name: "editor", Panes: []types.PaneSnapshot{{Name: "code"}}}}
	snap.RecomputePaneCount()
	require.NoError(t, s.SaveSnapshot(ctx, snap))

	got, err := s.GetSnapshot(ctx, "main", "before-refactor")
	require.NoError(t, err)
	assert.Equal(t, snap.ID, got.ID)
	assert.Equal(t, 1, got.PaneCount)
}

func TestRedisStore_SnapshotAncestry_StopsAtMissingParent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	root := types.NewSessionSnapshot("root", "main", "2026-01-01T00:00:00Z")
	require.NoError(t, s.SaveSnapshot(ctx, root))

	child := types.NewSessionSnapshot("child", "main", "2026-01-02T00:00:00Z")
	child.ParentID = &root.ID
	require.NoError(t, s.SaveSnapshot(ctx, child))

	ancestry, err := s.GetSnapshotAncestry(ctx, "main", "child")
	require.NoError(t, err)
	require.Len(t, ancestry, 2)
	assert.Equal(t, "child", ancestry[0].Name)
	assert.Equal(t, "root", ancestry[1].Name)
}
