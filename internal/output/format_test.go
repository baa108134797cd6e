package output

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delorenj/perth/internal/types"
)

func entryAt(summary string, t types.IntentType, src types.IntentSource, when time.Time, artifacts ...string) *types.IntentEntry {
	e := &types.IntentEntry{
		Summary:   summary,
		EntryType: t,
		Source:    src,
		Timestamp: when,
		Artifacts: artifacts,
	}
	return e
}

func TestParseFormat_DefaultsToText(t *testing.T) {
	assert.Equal(t, FormatText, ParseFormat("nonsense"))
	assert.Equal(t, FormatJSON, ParseFormat("json"))
	assert.Equal(t, FormatMarkdown, ParseFormat("markdown"))
}

func TestRenderText_EmptyHistory(t *testing.T) {
	out, err := Render(FormatText, nil, "editor", false)
	require.NoError(t, err)
	assert.Equal(t, "No history for pane 'editor'", out)
}

func TestRenderText_NoColor_ShowsPlainBadges(t *testing.T) {
	entries := []*types.IntentEntry{
		entryAt("Implemented feature X", types.IntentTypeMilestone, types.IntentSourceAgent, time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC), "src/feature.go"),
	}
	out, err := Render(FormatText, entries, "editor", false)
	require.NoError(t, err)
	assert.Contains(t, out, "[★ MILESTONE]")
	assert.Contains(t, out, "[AGENT]")
	assert.Contains(t, out, "Implemented feature X")
	assert.Contains(t, out, "-> src/feature.go")
	assert.NotContains(t, out, "\x1b[")
}

func TestRenderText_Color_WrapsInANSI(t *testing.T) {
	entries := []*types.IntentEntry{
		entryAt("Checked something", types.IntentTypeCheckpoint, types.IntentSourceManual, time.Now()),
	}
	out, err := Render(FormatText, entries, "editor", true)
	require.NoError(t, err)
	assert.Contains(t, out, "\x1b[")
}

func TestRenderJSON_PrettyAndCompact(t *testing.T) {
	entries := []*types.IntentEntry{
		entryAt("did a thing", types.IntentTypeCheckpoint, types.IntentSourceManual, time.Now()),
	}

	pretty, err := Render(FormatJSON, entries, "editor", false)
	require.NoError(t, err)
	assert.Contains(t, pretty, "\n")
	var doc historyDocument
	require.NoError(t, json.Unmarshal([]byte(pretty), &doc))
	assert.Equal(t, "2.0", doc.SchemaVersion)
	assert.Len(t, doc.Entries, 1)

	compact, err := Render(FormatJSONCompact, entries, "editor", false)
	require.NoError(t, err)
	assert.NotContains(t, compact, "\n")
}

func TestRenderJSON_EmptyEntriesIsEmptyArrayNotNull(t *testing.T) {
	out, err := Render(FormatJSON, nil, "editor", false)
	require.NoError(t, err)
	assert.Contains(t, out, `"entries": []`)
}

func TestRenderMarkdown_GroupsByDate(t *testing.T) {
	entries := []*types.IntentEntry{
		entryAt("second", types.IntentTypeCheckpoint, types.IntentSourceManual, time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)),
		entryAt("first", types.IntentTypeMilestone, types.IntentSourceAutomated, time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC), "a.go"),
	}
	out := renderMarkdown(entries, "editor")
	assert.Contains(t, out, "## 2026-01-02")
	assert.Contains(t, out, "## 2026-01-01")
	assert.Contains(t, out, "🌟")
	assert.Contains(t, out, "`a.go`")
}

func TestRenderMarkdown_Empty(t *testing.T) {
	out := renderMarkdown(nil, "editor")
	assert.Contains(t, out, "*No entries recorded.*")
}

func TestRenderContext_EmptyHistory_SuggestsFirstSteps(t *testing.T) {
	out := renderContext(nil, "editor")
	assert.Contains(t, out, "new session with no prior history")
	assert.Contains(t, out, "perth pane log")
}

func TestRenderContext_CapsRecentActivityAndMilestones(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var entries []*types.IntentEntry
	for i := 0; i < 8; i++ {
		entries = append(entries, entryAt("entry", types.IntentTypeMilestone, types.IntentSourceManual, base.Add(time.Duration(-i)*time.Hour)))
	}
	out := renderContext(entries, "editor")
	assert.Equal(t, recentActivityCap, strings.Count(out, "🌟 MILESTONE"))
	assert.Equal(t, milestoneCap, strings.Count(out, "\n- entry ("))
}

func TestRenderContext_SuggestsNextStepsByLastEntryType(t *testing.T) {
	entries := []*types.IntentEntry{
		entryAt("explored the thing", types.IntentTypeExploration, types.IntentSourceManual, time.Now()),
	}
	out := renderContext(entries, "editor")
	assert.Contains(t, out, "Review findings from the exploration")
}

func TestUseColor_RespectsNOCOLOR(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.False(t, UseColor())
}
