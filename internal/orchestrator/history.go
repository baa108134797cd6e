package orchestrator

import (
	"context"
	"fmt"

	"github.com/delorenj/perth/internal/types"
)

// History returns paneName's logged intent entries, most recent first.
// limit <= 0 defers to the State Store's default window.
func (o *Orchestrator) History(ctx context.Context, paneName string, limit int) ([]*types.IntentEntry, error) {
	entries, err := o.store.GetHistory(ctx, paneName, limit)
	if err != nil {
		return nil, fmt.Errorf("read history for pane '%s': %w", paneName, err)
	}
	return entries, nil
}
