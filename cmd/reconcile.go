package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/delorenj/perth/internal/config"
	"github.com/delorenj/perth/internal/orchestrator"
)

func newReconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "sync tracked panes against the active session's live layout",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOrchestrator(cmd, func(ctx context.Context, orch *orchestrator.Orchestrator, cfg config.Config) error {
				summary, err := orch.Reconcile(ctx)
				if err != nil {
					return newExitError(1, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "session %s: %d total, %d seen, %d stale, %d skipped\n",
					summary.Session, summary.Total, summary.Seen, summary.Stale, summary.Skipped)
				return nil
			})
		},
	}
}
