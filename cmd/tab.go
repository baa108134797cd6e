package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/delorenj/perth/internal/config"
	"github.com/delorenj/perth/internal/orchestrator"
)

// executeTabCreate creates or focuses a typed tab.
func executeTabCreate(ctx context.Context, orch *orchestrator.Orchestrator, name, correlationID string, meta map[string]string) (bool, error) {
	return orch.CreateTab(ctx, name, correlationID, meta)
}

// executeTabInfo looks up tabName and renders it as JSON, returning
// (rendered, found).
func executeTabInfo(ctx context.Context, orch *orchestrator.Orchestrator, tabName string) (string, bool, error) {
	record, err := orch.TabInfo(ctx, tabName)
	if err != nil {
		return "", false, err
	}
	if record == nil {
		data, err := json.MarshalIndent(map[string]string{"tab_name": tabName, "status": "missing"}, "", "  ")
		if err != nil {
			return "", false, fmt.Errorf("encode tab info: %w", err)
		}
		return string(data), false, nil
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", false, fmt.Errorf("encode tab info: %w", err)
	}
	return string(data), true, nil
}

func newTabCmd() *cobra.Command {
	tabCmd := &cobra.Command{
		Use:   "tab",
		Short: "manage typed tabs",
	}

	var correlationID string
	var meta []string
	createCmd := &cobra.Command{
		Use:   "create <name>",
		Short: "create or focus a typed tab",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOrchestrator(cmd, func(ctx context.Context, orch *orchestrator.Orchestrator, cfg config.Config) error {
				if !cfg.Tab.ValidateName(args[0]) {
					return newExitError(1, fmt.Errorf("tab name %q is invalid: %s", args[0], cfg.Tab.FormatHint()))
				}
				metaMap, err := parseMetaFlags(meta)
				if err != nil {
					return newExitError(1, err)
				}
				created, err := executeTabCreate(ctx, orch, args[0], correlationID, metaMap)
				if err != nil {
					return newExitError(1, err)
				}
				if created {
					fmt.Fprintf(cmd.OutOrStdout(), "created tab %q\n", args[0])
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "focused tab %q\n", args[0])
				}
				return nil
			})
		},
	}
	createCmd.Flags().StringVar(&correlationID, "correlation-id", "", "suffix distinguishing concurrent instances of this tab")
	createCmd.Flags().StringSliceVar(&meta, "meta", nil, "metadata as key=value (repeatable)")
	tabCmd.AddCommand(createCmd)

	infoCmd := &cobra.Command{
		Use:   "info <name>",
		Short: "print a tab's record as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOrchestrator(cmd, func(ctx context.Context, orch *orchestrator.Orchestrator, cfg config.Config) error {
				rendered, found, err := executeTabInfo(ctx, orch, args[0])
				if err != nil {
					return newExitError(1, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), rendered)
				if !found {
					return newExitError(2, nil)
				}
				return nil
			})
		},
	}
	tabCmd.AddCommand(infoCmd)

	return tabCmd
}
