package orchestrator

import (
	"context"
	"testing"

	"github.com/delorenj/perth/internal/llm"
	"github.com/delorenj/perth/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogIntent_AppendsAndPublishes(t *testing.T) {
	store := newFakeStore()
	driver := &fakeDriver{session: "work", hasSession: true}
	o := newTestOrchestrator(store, driver, &fakeProvider{name: "noop"}, Config{})

	entry := types.NewIntentEntry("did a thing", types.IntentTypeCheckpoint, types.IntentSourceManual)
	err := o.LogIntent(context.Background(), "editor", entry)
	require.NoError(t, err)

	history := store.history["editor"]
	require.Len(t, history, 1)
	assert.Equal(t, "did a thing", history[0].Summary)
}

func TestSnapshotIntent_BreakerOpen_Errors(t *testing.T) {
	store := newFakeStore()
	driver := &fakeDriver{}
	provider := &fakeProvider{name: "anthropic", available: true}
	o := newTestOrchestrator(store, driver, provider, Config{ConsentGiven: true})
	for i := 0; i < 3; i++ {
		o.breaker.RecordFailure()
	}

	_, err := o.SnapshotIntent(context.Background(), "editor")
	assert.Error(t, err)
}

func TestSnapshotIntent_ProviderUnavailable_Errors(t *testing.T) {
	store := newFakeStore()
	driver := &fakeDriver{}
	provider := &fakeProvider{name: "anthropic", available: false}
	o := newTestOrchestrator(store, driver, provider, Config{ConsentGiven: true})

	_, err := o.SnapshotIntent(context.Background(), "editor")
	assert.Error(t, err)
}

func TestSnapshotIntent_NoConsent_Errors(t *testing.T) {
	store := newFakeStore()
	driver := &fakeDriver{}
	provider := &fakeProvider{name: "anthropic", available: true}
	o := newTestOrchestrator(store, driver, provider, Config{ConsentGiven: false})

	_, err := o.SnapshotIntent(context.Background(), "editor")
	assert.Error(t, err)
}

func TestSnapshotIntent_NoOpProvider_SkipsBreakerAndConsentGates(t *testing.T) {
	store := newFakeStore()
	driver := &fakeDriver{}
	provider := &fakeProvider{name: "noop", available: false}
	o := newTestOrchestrator(store, driver, provider, Config{ConsentGiven: false})
	for i := 0; i < 3; i++ {
		o.breaker.RecordFailure()
	}

	// noop's IsAvailable() is always false, so it still fails — but at the
	// availability check, not the breaker or consent gate.
	_, err := o.SnapshotIntent(context.Background(), "editor")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not available")
}

func TestSnapshotIntent_Success_RecordsBreakerSuccessAndLogsEntry(t *testing.T) {
	store := newFakeStore()
	driver := &fakeDriver{}
	provider := &fakeProvider{
		name:      "anthropic",
		available: true,
		result: llm.SummarizationResult{
			Summary:       "refactored the parser",
			SuggestedType: "milestone",
			KeyFiles:      []string{"parser.go"},
			TokensUsed:    42,
		},
	}
	o := newTestOrchestrator(store, driver, provider, Config{ConsentGiven: true})
	o.breaker.RecordFailure()
	o.breaker.RecordFailure()

	result, err := o.SnapshotIntent(context.Background(), "editor")
	require.NoError(t, err)
	assert.Equal(t, "refactored the parser", result.Entry.Summary)
	assert.Equal(t, types.IntentTypeMilestone, result.Entry.EntryType)
	assert.Equal(t, "anthropic", result.Provider)
	assert.Equal(t, 42, result.TokensUsed)
	assert.Equal(t, uint32(0), o.breaker.FailureCount())

	history := store.history["editor"]
	require.Len(t, history, 1)
}

func TestSnapshotIntent_SummarizeFailure_RecordsBreakerFailure(t *testing.T) {
	store := newFakeStore()
	driver := &fakeDriver{}
	provider := &fakeProvider{name: "anthropic", available: true, err: assertErr{}}
	o := newTestOrchestrator(store, driver, provider, Config{ConsentGiven: true})

	_, err := o.SnapshotIntent(context.Background(), "editor")
	assert.Error(t, err)
	assert.Equal(t, uint32(1), o.breaker.FailureCount())
}

func TestSnapshotIntent_UsesExistingSummaryFromHistory(t *testing.T) {
	store := newFakeStore()
	store.history["editor"] = []*types.IntentEntry{
		types.NewIntentEntry("previous work", types.IntentTypeCheckpoint, types.IntentSourceManual),
	}
	driver := &fakeDriver{}
	provider := &fakeProvider{
		name:      "anthropic",
		available: true,
		result:    llm.SummarizationResult{Summary: "continued work"},
	}
	o := newTestOrchestrator(store, driver, provider, Config{ConsentGiven: true})

	result, err := o.SnapshotIntent(context.Background(), "editor")
	require.NoError(t, err)
	assert.Equal(t, "continued work", result.Entry.Summary)
	require.NotNil(t, provider.lastContext)
	assert.Equal(t, "previous work", provider.lastContext.ExistingSummary)
}
