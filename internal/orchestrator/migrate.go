package orchestrator

import (
	"context"
	"fmt"

	"github.com/delorenj/perth/internal/types"
)

// Migrate delegates to the State Store's v1→v2 keyspace migration. It never
// touches the multiplexer, so it skips version-check gating.
func (o *Orchestrator) Migrate(ctx context.Context, dryRun bool) (*types.MigrationResult, error) {
	result, err := o.store.MigrateKeyspace(ctx, dryRun)
	if err != nil {
		return nil, fmt.Errorf("migrate keyspace: %w", err)
	}
	return result, nil
}
