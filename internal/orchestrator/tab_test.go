package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTab_NoActiveSession_Errors(t *testing.T) {
	store := newFakeStore()
	driver := &fakeDriver{hasSession: false}
	o := newTestOrchestrator(store, driver, &fakeProvider{name: "noop"}, Config{})

	_, err := o.CreateTab(context.Background(), "review", "", nil)
	assert.Error(t, err)
}

func TestCreateTab_CreatesNewTab(t *testing.T) {
	store := newFakeStore()
	driver := &fakeDriver{session: "work", hasSession: true}
	o := newTestOrchestrator(store, driver, &fakeProvider{name: "noop"}, Config{})

	created, err := o.CreateTab(context.Background(), "review", "", map[string]string{"k": "v"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, []string{"review"}, driver.newTabCalls)

	record := store.tabs["work/review"]
	require.NotNil(t, record)
	assert.Nil(t, record.CorrelationID)
}

func TestCreateTab_WithCorrelationID_SuffixesEffectiveName(t *testing.T) {
	store := newFakeStore()
	driver := &fakeDriver{session: "work", hasSession: true}
	o := newTestOrchestrator(store, driver, &fakeProvider{name: "noop"}, Config{})

	created, err := o.CreateTab(context.Background(), "review", "abc123", nil)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, []string{"review-abc123"}, driver.newTabCalls)

	record := store.tabs["work/review"]
	require.NotNil(t, record)
	require.NotNil(t, record.CorrelationID)
	assert.Equal(t, "abc123", *record.CorrelationID)
	assert.Equal(t, "review-abc123", record.EffectiveName())
}

func TestCreateTab_ExistingTab_SwitchesAndTouches(t *testing.T) {
	store := newFakeStore()
	driver := &fakeDriver{session: "work", hasSession: true, tabNames: []string{"review"}}
	o := newTestOrchestrator(store, driver, &fakeProvider{name: "noop"}, Config{})

	created, err := o.CreateTab(context.Background(), "review", "", nil)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, []string{"review"}, driver.goToTabCalls)
	assert.Empty(t, driver.newTabCalls)
}

func TestTabInfo_Delegates(t *testing.T) {
	store := newFakeStore()
	driver := &fakeDriver{session: "work", hasSession: true}
	o := newTestOrchestrator(store, driver, &fakeProvider{name: "noop"}, Config{})

	_, err := o.CreateTab(context.Background(), "review", "", nil)
	require.NoError(t, err)

	record, err := o.TabInfo(context.Background(), "review")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "review", record.TabName)
}

func TestTabInfo_NoActiveSession_Errors(t *testing.T) {
	store := newFakeStore()
	driver := &fakeDriver{hasSession: false}
	o := newTestOrchestrator(store, driver, &fakeProvider{name: "noop"}, Config{})

	_, err := o.TabInfo(context.Background(), "review")
	assert.Error(t, err)
}
