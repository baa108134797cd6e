package orchestrator

import (
	"context"
	"fmt"

	"github.com/delorenj/perth/internal/types"
)

// Snapshot captures the active session's layout, persists it, and returns
// the snapshot plus its capture report.
func (o *Orchestrator) Snapshot(ctx context.Context, name string, description *string, parentID *string) (*types.SessionSnapshot, *types.RestoreReport, error) {
	if err := o.requireVersion(ctx); err != nil {
		return nil, nil, err
	}

	snap, report, err := o.capturer.Capture(ctx, name, description, parentID)
	if err != nil {
		return nil, nil, fmt.Errorf("capture snapshot '%s': %w", name, err)
	}

	if err := o.store.SaveSnapshot(ctx, snap); err != nil {
		return nil, nil, fmt.Errorf("save snapshot '%s': %w", name, err)
	}

	return snap, report, nil
}

// Restore loads a named snapshot for session and recreates its tabs/panes.
func (o *Orchestrator) Restore(ctx context.Context, session, name string, dryRun bool) (*types.RestoreReport, error) {
	if err := o.requireVersion(ctx); err != nil {
		return nil, err
	}

	snap, err := o.store.GetSnapshot(ctx, session, name)
	if err != nil {
		return nil, fmt.Errorf("load snapshot '%s': %w", name, err)
	}
	if snap == nil {
		return nil, fmt.Errorf("no snapshot named '%s' for session '%s'", name, session)
	}

	report, err := o.restorer.Restore(ctx, snap, dryRun)
	if err != nil {
		return nil, fmt.Errorf("restore snapshot '%s': %w", name, err)
	}
	return report, nil
}
