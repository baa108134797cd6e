package orchestrator

import (
	"context"
	"fmt"

	"github.com/delorenj/perth/internal/bloodbank"
	"github.com/delorenj/perth/internal/types"
)

// CreateTab creates or focuses a typed tab, per spec.md §4.8's "Create tab
// (typed path)" operation. correlationID, when non-empty, is suffixed onto
// the tab name the multiplexer actually sees.
func (o *Orchestrator) CreateTab(ctx context.Context, name, correlationID string, meta map[string]string) (created bool, err error) {
	if err := o.requireVersion(ctx); err != nil {
		return false, err
	}

	session, ok := o.driver.ActiveSession()
	if !ok {
		return false, fmt.Errorf("not inside a zellij session; tab creation requires an active session")
	}

	var corrPtr *string
	effectiveName := name
	if correlationID != "" {
		corrPtr = &correlationID
		effectiveName = fmt.Sprintf("%s-%s", name, correlationID)
	}

	tabs, err := o.driver.QueryTabNames(ctx, session)
	if err != nil {
		return false, fmt.Errorf("list tabs: %w", err)
	}

	exists := false
	for _, t := range tabs {
		if t == effectiveName {
			exists = true
			break
		}
	}

	now := nowString(o.now)

	if exists {
		if err := o.driver.GoToTab(ctx, session, effectiveName); err != nil {
			return false, fmt.Errorf("failed to switch to existing tab: %w", err)
		}
		if err := o.store.TouchTab(ctx, name, session); err != nil {
			return false, fmt.Errorf("touch tab '%s': %w", name, err)
		}
		return false, nil
	}

	if err := o.driver.NewTab(ctx, session, effectiveName); err != nil {
		return false, fmt.Errorf("failed to create tab: %w", err)
	}

	record := types.NewTabRecord(name, session, now, meta)
	record.CorrelationID = corrPtr
	if err := o.store.UpsertTab(ctx, record); err != nil {
		return false, fmt.Errorf("save tab '%s': %w", name, err)
	}

	o.publisher.Publish(ctx, bloodbank.EventTabCreated, record, bloodbank.NewMetadata().WithSession(session))

	return true, nil
}

// TabInfo looks up a TabRecord within the active session by name.
func (o *Orchestrator) TabInfo(ctx context.Context, tabName string) (*types.TabRecord, error) {
	session, ok := o.driver.ActiveSession()
	if !ok {
		return nil, fmt.Errorf("not inside a zellij session; tab info requires an active session")
	}
	record, err := o.store.GetTab(ctx, tabName, session)
	if err != nil {
		return nil, fmt.Errorf("look up tab '%s': %w", tabName, err)
	}
	return record, nil
}
