package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/delorenj/perth/internal/types"
)

var _ Store = (*RedisStore)(nil)

// RedisStore is the Store implementation backed by Redis. It mirrors
// original_source/src/state.rs method-for-method: same key formats, same
// field names, same trim/prepend ordering.
type RedisStore struct {
	conn conn
}

// newRedisStore builds a RedisStore over an already-connected conn,
// bypassing DialRedis's own connection setup. Used by tests with a fake
// conn.
func newRedisStore(c conn) *RedisStore {
	return &RedisStore{conn: c}
}

func nowString() string { return time.Now().UTC().Format(time.RFC3339) }

func (s *RedisStore) GetPane(ctx context.Context, paneName string) (*types.PaneRecord, error) {
	key := paneKey(paneName)
	m, err := s.conn.HGetAll(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("get pane %q: %w", paneName, err)
	}
	if len(m) == 0 {
		return nil, nil
	}

	record := &types.PaneRecord{PaneName: paneName, Meta: map[string]string{}}
	for k, v := range m {
		if meta, ok := strings.CutPrefix(k, MetaPrefix); ok {
			record.Meta[meta] = v
			continue
		}
		switch k {
		case "session":
			record.Session = v
		case "tab":
			record.Tab = v
		case "pane_id":
			id := v
			record.PaneID = &id
		case "created_at":
			record.CreatedAt = v
		case "last_seen":
			record.LastSeen = v
		case "last_accessed":
			record.LastAccessed = v
		case "stale":
			record.Stale = v == "true"
		}
	}
	return record, nil
}

func (s *RedisStore) UpsertPane(ctx context.Context, record *types.PaneRecord) error {
	key := paneKey(record.PaneName)
	fields := []interface{}{
		"session", record.Session,
		"tab", record.Tab,
		"created_at", record.CreatedAt,
		"last_seen", record.LastSeen,
		"last_accessed", record.LastAccessed,
		"stale", "false",
	}
	if record.PaneID != nil {
		fields = append(fields, "pane_id", *record.PaneID)
	}
	for k, v := range record.Meta {
		fields = append(fields, MetaPrefix+k, v)
	}
	if err := s.conn.HSet(ctx, key, fields...); err != nil {
		return fmt.Errorf("upsert pane %q: %w", record.PaneName, err)
	}
	return nil
}

func (s *RedisStore) TouchPane(ctx context.Context, paneName string, metaUpdates map[string]string) error {
	key := paneKey(paneName)
	now := nowString()
	fields := []interface{}{
		"last_accessed", now,
		"last_seen", now,
		"stale", "false",
	}
	for k, v := range metaUpdates {
		fields = append(fields, MetaPrefix+k, v)
	}
	if err := s.conn.HSet(ctx, key, fields...); err != nil {
		return fmt.Errorf("touch pane %q: %w", paneName, err)
	}
	return nil
}

func (s *RedisStore) MarkSeen(ctx context.Context, paneName string) error {
	key := paneKey(paneName)
	now := nowString()
	if err := s.conn.HSet(ctx, key, "last_seen", now, "stale", "false"); err != nil {
		return fmt.Errorf("mark pane %q seen: %w", paneName, err)
	}
	return nil
}

func (s *RedisStore) MarkStale(ctx context.Context, paneName string) error {
	key := paneKey(paneName)
	if err := s.conn.HSet(ctx, key, "stale", "true"); err != nil {
		return fmt.Errorf("mark pane %q stale: %w", paneName, err)
	}
	return nil
}

func (s *RedisStore) ListPaneNames(ctx context.Context) ([]string, error) {
	keys, err := scanKeysByPrefix(ctx, s.conn, "perth:pane:")
	if err != nil {
		return nil, fmt.Errorf("list pane names: %w", err)
	}
	names := make([]string, 0, len(keys))
	for _, key := range keys {
		if strings.HasSuffix(key, ":history") {
			continue
		}
		if name, ok := strings.CutPrefix(key, "perth:pane:"); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *RedisStore) ListAllPanes(ctx context.Context) ([]*types.PaneRecord, error) {
	names, err := s.ListPaneNames(ctx)
	if err != nil {
		return nil, err
	}
	panes := make([]*types.PaneRecord, 0, len(names))
	for _, name := range names {
		p, err := s.GetPane(ctx, name)
		if err != nil {
			return nil, err
		}
		if p != nil {
			panes = append(panes, p)
		}
	}
	return panes, nil
}

// LogIntent prepends entry to the pane's history list, stamps last_intent/
// last_intent_at on the pane hash, then trims the list to DefaultHistoryLimit
// entries. The prepend MUST happen before the trim; this function never
// reorders those two calls.
func (s *RedisStore) LogIntent(ctx context.Context, paneName string, entry *types.IntentEntry) error {
	historyKey := historyKey(paneName)
	paneKey := paneKey(paneName)

	encoded, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("serialize intent entry: %w", err)
	}

	if err := s.conn.LPush(ctx, historyKey, string(encoded)); err != nil {
		return fmt.Errorf("log intent for pane %q: %w", paneName, err)
	}

	if err := s.conn.HSet(ctx, paneKey,
		"last_intent", entry.Summary,
		"last_intent_at", entry.Timestamp.Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("stamp last intent for pane %q: %w", paneName, err)
	}

	if err := s.conn.LTrim(ctx, historyKey, 0, DefaultHistoryLimit-1); err != nil {
		return fmt.Errorf("trim intent history for pane %q: %w", paneName, err)
	}

	return nil
}

func (s *RedisStore) GetHistory(ctx context.Context, paneName string, limit int) ([]*types.IntentEntry, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	key := historyKey(paneName)
	raw, err := s.conn.LRange(ctx, key, 0, int64(limit-1))
	if err != nil {
		return nil, fmt.Errorf("get history for pane %q: %w", paneName, err)
	}

	entries := make([]*types.IntentEntry, 0, len(raw))
	for _, js := range raw {
		var entry types.IntentEntry
		if err := json.Unmarshal([]byte(js), &entry); err != nil {
			return nil, fmt.Errorf("decode intent entry for pane %q: %w", paneName, err)
		}
		entries = append(entries, &entry)
	}
	return entries, nil
}

func (s *RedisStore) GetHistoryCount(ctx context.Context, paneName string) (int64, error) {
	n, err := s.conn.LLen(ctx, historyKey(paneName))
	if err != nil {
		return 0, fmt.Errorf("count history for pane %q: %w", paneName, err)
	}
	return n, nil
}

func (s *RedisStore) ClearHistory(ctx context.Context, paneName string) error {
	if err := s.conn.Del(ctx, historyKey(paneName)); err != nil {
		return fmt.Errorf("clear history for pane %q: %w", paneName, err)
	}
	return nil
}

func (s *RedisStore) GetTab(ctx context.Context, tabName, session string) (*types.TabRecord, error) {
	key := tabKey(tabName, session)
	m, err := s.conn.HGetAll(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("get tab %q: %w", tabName, err)
	}
	if len(m) == 0 {
		return nil, nil
	}

	record := &types.TabRecord{TabName: tabName, Session: session, Meta: map[string]string{}}
	for k, v := range m {
		if meta, ok := strings.CutPrefix(k, MetaPrefix); ok {
			record.Meta[meta] = v
			continue
		}
		switch k {
		case "correlation_id":
			id := v
			record.CorrelationID = &id
		case "created_at":
			record.CreatedAt = v
		case "last_accessed":
			record.LastAccessed = v
		}
	}
	return record, nil
}

func (s *RedisStore) UpsertTab(ctx context.Context, record *types.TabRecord) error {
	key := tabKey(record.TabName, record.Session)
	fields := []interface{}{
		"created_at", record.CreatedAt,
		"last_accessed", record.LastAccessed,
	}
	if record.CorrelationID != nil {
		fields = append(fields, "correlation_id", *record.CorrelationID)
	}
	for k, v := range record.Meta {
		fields = append(fields, MetaPrefix+k, v)
	}
	if err := s.conn.HSet(ctx, key, fields...); err != nil {
		return fmt.Errorf("upsert tab %q: %w", record.TabName, err)
	}
	return nil
}

func (s *RedisStore) TouchTab(ctx context.Context, tabName, session string) error {
	key := tabKey(tabName, session)
	if err := s.conn.HSet(ctx, key, "last_accessed", nowString()); err != nil {
		return fmt.Errorf("touch tab %q: %w", tabName, err)
	}
	return nil
}

func (s *RedisStore) ListTabNames(ctx context.Context, session string) ([]string, error) {
	prefix := fmt.Sprintf("perth:tab:%s:", session)
	keys, err := scanKeysByPrefix(ctx, s.conn, prefix)
	if err != nil {
		return nil, fmt.Errorf("list tab names for session %q: %w", session, err)
	}
	names := make([]string, 0, len(keys))
	for _, key := range keys {
		if name, ok := strings.CutPrefix(key, prefix); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *RedisStore) ListTabs(ctx context.Context, session string) ([]*types.TabRecord, error) {
	names, err := s.ListTabNames(ctx, session)
	if err != nil {
		return nil, err
	}
	tabs := make([]*types.TabRecord, 0, len(names))
	for _, name := range names {
		tab, err := s.GetTab(ctx, name, session)
		if err != nil {
			return nil, err
		}
		if tab != nil {
			tabs = append(tabs, tab)
		}
	}
	return tabs, nil
}

func (s *RedisStore) TabExists(ctx context.Context, tabName, session string) (bool, error) {
	n, err := s.conn.Exists(ctx, tabKey(tabName, session))
	if err != nil {
		return false, fmt.Errorf("check tab %q exists: %w", tabName, err)
	}
	return n > 0, nil
}

// MigrateKeyspace scans znav:pane:* (v1.0 pane data), copying every hash
// field verbatim to perth:pane:{name} unless the target already exists. In
// dry-run mode no writes occur.
func (s *RedisStore) MigrateKeyspace(ctx context.Context, dryRun bool) (*types.MigrationResult, error) {
	result := types.NewMigrationResult()

	keys, err := scanKeysByPrefix(ctx, s.conn, "znav:pane:")
	if err != nil {
		return nil, fmt.Errorf("scan legacy pane keys: %w", err)
	}

	legacyKeys := make([]string, 0, len(keys))
	for _, key := range keys {
		if !strings.Contains(key, ":history") {
			legacyKeys = append(legacyKeys, key)
		}
	}
	result.TotalKeys = len(legacyKeys)

	for _, oldKey := range legacyKeys {
		paneName, ok := strings.CutPrefix(oldKey, "znav:pane:")
		if !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("invalid key format: %s", oldKey))
			result.ErrorCount++
			continue
		}
		newKey := paneKey(paneName)

		exists, err := s.conn.Exists(ctx, newKey)
		if err != nil {
			return nil, fmt.Errorf("check migration target %q: %w", newKey, err)
		}
		if exists > 0 {
			result.Skipped = append(result.Skipped, fmt.Sprintf("%s -> %s (already exists)", oldKey, newKey))
			result.SkippedCount++
			continue
		}

		if dryRun {
			result.WouldMigrate = append(result.WouldMigrate, fmt.Sprintf("%s -> %s", oldKey, newKey))
			result.MigratedCount++
			continue
		}

		data, err := s.conn.HGetAll(ctx, oldKey)
		if err != nil {
			return nil, fmt.Errorf("read legacy pane %q: %w", oldKey, err)
		}
		if len(data) == 0 {
			result.Skipped = append(result.Skipped, fmt.Sprintf("%s (empty)", oldKey))
			result.SkippedCount++
			continue
		}

		fields := make([]interface{}, 0, len(data)*2)
		for k, v := range data {
			fields = append(fields, k, v)
		}
		if err := s.conn.HSet(ctx, newKey, fields...); err != nil {
			return nil, fmt.Errorf("write migrated pane %q: %w", newKey, err)
		}
		result.Migrated = append(result.Migrated, fmt.Sprintf("%s -> %s", oldKey, newKey))
		result.MigratedCount++
	}

	return result, nil
}

func (s *RedisStore) SaveSnapshot(ctx context.Context, snapshot *types.SessionSnapshot) error {
	encoded, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("serialize snapshot %q: %w", snapshot.Name, err)
	}
	if err := s.conn.Set(ctx, snapshot.RedisKey(), string(encoded), 0); err != nil {
		return fmt.Errorf("save snapshot %q: %w", snapshot.Name, err)
	}
	return nil
}

func (s *RedisStore) ListSnapshots(ctx context.Context, session string) ([]*types.SessionSnapshot, error) {
	pattern := fmt.Sprintf("perth:snapshots:%s:*", session)
	return s.listSnapshotsByPattern(ctx, pattern)
}

func (s *RedisStore) ListAllSnapshots(ctx context.Context) ([]*types.SessionSnapshot, error) {
	return s.listSnapshotsByPattern(ctx, "perth:snapshots:*")
}

func (s *RedisStore) listSnapshotsByPattern(ctx context.Context, pattern string) ([]*types.SessionSnapshot, error) {
	keys, err := s.conn.Keys(ctx, pattern)
	if err != nil {
		return nil, fmt.Errorf("scan snapshot keys: %w", err)
	}

	snapshots := make([]*types.SessionSnapshot, 0, len(keys))
	for _, key := range keys {
		js, err := s.conn.Get(ctx, key)
		if err != nil {
			continue
		}
		var snap types.SessionSnapshot
		if err := json.Unmarshal([]byte(js), &snap); err != nil {
			continue
		}
		snapshots = append(snapshots, &snap)
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].CreatedAt > snapshots[j].CreatedAt
	})
	return snapshots, nil
}

func (s *RedisStore) GetSnapshot(ctx context.Context, session, name string) (*types.SessionSnapshot, error) {
	key := snapshotKey(session, name)
	js, err := s.conn.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("snapshot %q not found", name)
		}
		return nil, fmt.Errorf("get snapshot %q: %w", name, err)
	}
	var snap types.SessionSnapshot
	if err := json.Unmarshal([]byte(js), &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %q: %w", name, err)
	}
	return &snap, nil
}

func (s *RedisStore) DeleteSnapshot(ctx context.Context, session, name string) error {
	if err := s.conn.Del(ctx, snapshotKey(session, name)); err != nil {
		return fmt.Errorf("delete snapshot %q: %w", name, err)
	}
	return nil
}

// GetSnapshotAncestry walks parent_id links within a single session,
// newest-first, stopping at a missing parent without erroring.
func (s *RedisStore) GetSnapshotAncestry(ctx context.Context, session, name string) ([]*types.SessionSnapshot, error) {
	current, err := s.GetSnapshot(ctx, session, name)
	if err != nil {
		return nil, err
	}

	ancestry := []*types.SessionSnapshot{current}

	for current.ParentID != nil {
		siblings, err := s.ListSnapshots(ctx, session)
		if err != nil {
			return nil, err
		}
		var parent *types.SessionSnapshot
		for _, candidate := range siblings {
			if candidate.ID == *current.ParentID {
				parent = candidate
				break
			}
		}
		if parent == nil {
			break
		}
		ancestry = append(ancestry, parent)
		current = parent
	}

	return ancestry, nil
}
