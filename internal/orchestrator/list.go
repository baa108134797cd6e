package orchestrator

import (
	"context"
	"fmt"

	"github.com/delorenj/perth/internal/types"
)

// ListPanes returns every tracked PaneRecord across all sessions. Rendering
// the session→tab→pane tree is a CLI/output concern, not the
// Orchestrator's — per spec.md §1, table/tree rendering is a referenced
// collaborator, not a re-specified component.
func (o *Orchestrator) ListPanes(ctx context.Context) ([]*types.PaneRecord, error) {
	panes, err := o.store.ListAllPanes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list panes: %w", err)
	}
	return panes, nil
}
