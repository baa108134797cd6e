package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/delorenj/perth/internal/config"
	"github.com/delorenj/perth/internal/orchestrator"
	"github.com/delorenj/perth/internal/output"
	"github.com/delorenj/perth/internal/types"
)

// executePaneOpen opens or creates paneName, per spec.md §6's `pane` verb.
func executePaneOpen(ctx context.Context, orch *orchestrator.Orchestrator, cfg config.Config, paneName, tab, session string, meta map[string]string) error {
	return orch.OpenOrCreatePane(ctx, paneName, tab, session, meta, cfg.Display.ShowLastIntent)
}

// executePaneInfo looks up paneName and renders it as JSON. The caller is
// responsible for translating a missing-pane result into exit code 2.
func executePaneInfo(ctx context.Context, orch *orchestrator.Orchestrator, paneName string) (types.PaneInfoOutput, string, error) {
	info, err := orch.PaneInfo(ctx, paneName)
	if err != nil {
		return info, "", err
	}
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return info, "", fmt.Errorf("encode pane info: %w", err)
	}
	return info, string(data), nil
}

// executePaneBatch spawns a batch of panes into tabName.
func executePaneBatch(ctx context.Context, orch *orchestrator.Orchestrator, tabName string, paneNames, cwds []string, vertical bool) (*orchestrator.BatchResult, error) {
	return orch.BatchPanes(ctx, tabName, paneNames, cwds, vertical)
}

// executePaneLog appends a manually-logged intent entry.
func executePaneLog(ctx context.Context, orch *orchestrator.Orchestrator, paneName, summary, entryType, source string, artifacts []string) error {
	entry := types.NewIntentEntry(summary, types.ParseIntentType(entryType), types.ParseIntentSource(source))
	if artifacts != nil {
		entry.Artifacts = artifacts
	}
	return orch.LogIntent(ctx, paneName, entry)
}

// executePaneHistory reads paneName's history, filters by entryType when
// non-empty, trims to last (0 means "use the store's default window"), and
// renders it in format.
func executePaneHistory(ctx context.Context, orch *orchestrator.Orchestrator, paneName string, last int, entryType, format string, useColor bool) (string, error) {
	fetchLimit := last
	if entryType != "" {
		// Filtering happens after the fetch, so pull the store's full default
		// window rather than risk truncating before the filter runs.
		fetchLimit = 0
	}

	entries, err := orch.History(ctx, paneName, fetchLimit)
	if err != nil {
		return "", err
	}

	if entryType != "" {
		filtered := make([]*types.IntentEntry, 0, len(entries))
		want := types.ParseIntentType(entryType)
		for _, e := range entries {
			if e.EntryType == want {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	if last > 0 && len(entries) > last {
		entries = entries[:last]
	}

	rendered, err := output.Render(output.ParseFormat(format), entries, paneName, useColor)
	if err != nil || !useColor || output.ParseFormat(format) != output.FormatMarkdown {
		return rendered, err
	}
	return output.MarkdownPreview(rendered)
}

// executePaneSnapshot runs the LLM summarisation pipeline for paneName.
func executePaneSnapshot(ctx context.Context, orch *orchestrator.Orchestrator, paneName string) (*types.SnapshotResult, error) {
	return orch.SnapshotIntent(ctx, paneName)
}

func newPaneCmd() *cobra.Command {
	paneCmd := &cobra.Command{
		Use:   "pane <name>",
		Short: "open or create a named pane",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return withOrchestrator(cmd, func(ctx context.Context, orch *orchestrator.Orchestrator, cfg config.Config) error {
				meta, err := parseMetaFlags(paneMetaFlag)
				if err != nil {
					return newExitError(1, err)
				}
				if err := executePaneOpen(ctx, orch, cfg, args[0], paneTabFlag, paneSessionFlag, meta); err != nil {
					return newExitError(1, err)
				}
				return nil
			})
		},
	}
	paneCmd.Flags().StringVar(&paneTabFlag, "tab", "", "tab to open the pane in")
	paneCmd.Flags().StringVar(&paneSessionFlag, "session", "", "session to open the pane in")
	paneCmd.Flags().StringSliceVar(&paneMetaFlag, "meta", nil, "metadata as key=value (repeatable)")

	paneCmd.AddCommand(newPaneInfoCmd())
	paneCmd.AddCommand(newPaneBatchCmd())
	paneCmd.AddCommand(newPaneLogCmd())
	paneCmd.AddCommand(newPaneHistoryCmd())
	paneCmd.AddCommand(newPaneSnapshotCmd())
	return paneCmd
}

var (
	paneTabFlag     string
	paneSessionFlag string
	paneMetaFlag    []string
)

func newPaneInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <name>",
		Short: "print a pane's record as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOrchestrator(cmd, func(ctx context.Context, orch *orchestrator.Orchestrator, cfg config.Config) error {
				info, rendered, err := executePaneInfo(ctx, orch, args[0])
				if err != nil {
					return newExitError(1, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), rendered)
				if info.Status == types.PaneStatusMissing {
					return newExitError(2, nil)
				}
				return nil
			})
		},
	}
}

func newPaneBatchCmd() *cobra.Command {
	var tab string
	var panes []string
	var cwds []string
	var layout string

	batchCmd := &cobra.Command{
		Use:   "batch",
		Short: "spawn a batch of panes into a tab",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOrchestrator(cmd, func(ctx context.Context, orch *orchestrator.Orchestrator, cfg config.Config) error {
				if layout != "" && layout != "vertical" && layout != "horizontal" {
					return newExitError(1, fmt.Errorf("--layout must be vertical or horizontal, got %q", layout))
				}
				result, err := executePaneBatch(ctx, orch, tab, panes, cwds, layout == "vertical")
				if err != nil {
					return newExitError(1, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created: %v\nskipped: %v\n", result.Created, result.Skipped)
				return nil
			})
		},
	}
	batchCmd.Flags().StringVar(&tab, "tab", "", "tab to spawn panes into (required)")
	batchCmd.Flags().StringSliceVar(&panes, "panes", nil, "comma-separated pane names to create")
	batchCmd.Flags().StringSliceVar(&cwds, "cwd", nil, "comma-separated working directories, aligned by index with --panes")
	batchCmd.Flags().StringVar(&layout, "layout", "horizontal", "split direction for new panes: vertical or horizontal")
	return batchCmd
}

func newPaneLogCmd() *cobra.Command {
	var entryType string
	var source string
	var artifacts []string

	logCmd := &cobra.Command{
		Use:   "log <name> <summary>",
		Short: "append an intent log entry for a pane",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOrchestrator(cmd, func(ctx context.Context, orch *orchestrator.Orchestrator, cfg config.Config) error {
				if err := executePaneLog(ctx, orch, args[0], args[1], entryType, source, artifacts); err != nil {
					return newExitError(1, err)
				}
				return nil
			})
		},
	}
	logCmd.Flags().StringVarP(&entryType, "type", "t", "checkpoint", "entry type: checkpoint, milestone, or exploration")
	logCmd.Flags().StringVarP(&source, "source", "s", "manual", "entry source: manual, automated, or agent")
	logCmd.Flags().StringSliceVarP(&artifacts, "artifacts", "a", nil, "files or artifacts associated with this work")
	return logCmd
}

func newPaneHistoryCmd() *cobra.Command {
	var last int
	var entryType string
	var format string

	historyCmd := &cobra.Command{
		Use:   "history <name>",
		Short: "view a pane's intent history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOrchestrator(cmd, func(ctx context.Context, orch *orchestrator.Orchestrator, cfg config.Config) error {
				rendered, err := executePaneHistory(ctx, orch, args[0], last, entryType, format, output.UseColor())
				if err != nil {
					return newExitError(1, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), rendered)
				return nil
			})
		},
	}
	historyCmd.Flags().IntVar(&last, "last", 0, "limit to the last N entries (0 = store default window)")
	historyCmd.Flags().StringVar(&entryType, "type", "", "filter by entry type: checkpoint, milestone, or exploration")
	historyCmd.Flags().StringVar(&format, "format", "text", "output format: text, json, json-compact, markdown, context")
	return historyCmd
}

func newPaneSnapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot <name>",
		Short: "generate an LLM-summarised intent entry for a pane",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOrchestrator(cmd, func(ctx context.Context, orch *orchestrator.Orchestrator, cfg config.Config) error {
				result, err := executePaneSnapshot(ctx, orch, args[0])
				if err != nil {
					return newExitError(1, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", result.Provider, result.Entry.Summary)
				return nil
			})
		},
	}
}
