package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/delorenj/perth/internal/config"
	"github.com/delorenj/perth/internal/orchestrator"
)

func newMigrateCmd() *cobra.Command {
	var dryRun bool
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "migrate the State Store's keyspace from v1 to v2",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOrchestrator(cmd, func(ctx context.Context, orch *orchestrator.Orchestrator, cfg config.Config) error {
				result, err := orch.Migrate(ctx, dryRun)
				if err != nil {
					return newExitError(1, err)
				}

				out := cmd.OutOrStdout()
				if dryRun {
					fmt.Fprintf(out, "would migrate %d of %d keys (%d already v2, %d errors)\n",
						len(result.WouldMigrate), result.TotalKeys, result.SkippedCount, result.ErrorCount)
				} else {
					fmt.Fprintf(out, "migrated %d of %d keys (%d already v2, %d errors)\n",
						result.MigratedCount, result.TotalKeys, result.SkippedCount, result.ErrorCount)
				}
				for _, e := range result.Errors {
					fmt.Fprintf(out, "  error: %s\n", e)
				}

				// §7: migrate uses exit code 1 iff any per-key error occurred,
				// even if other keys migrated successfully.
				if result.ErrorCount > 0 {
					return newExitError(1, nil)
				}
				return nil
			})
		},
	}
	migrateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would migrate without writing anything")
	return migrateCmd
}
