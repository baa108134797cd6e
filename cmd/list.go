package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/delorenj/perth/internal/config"
	"github.com/delorenj/perth/internal/orchestrator"
	"github.com/delorenj/perth/internal/types"
)

// renderPaneTree groups panes into a session -> tab -> pane tree and renders
// it depth-first, sessions and tabs sorted by name, panes sorted by their
// stored "position" meta (a pane whose position is absent or unparsable
// sorts after those with one; the order among equal positions is not
// defined). Tree/table rendering is a CLI-layer concern per spec.md §1;
// the Orchestrator only supplies the flat PaneRecord list.
func renderPaneTree(panes []*types.PaneRecord) string {
	if len(panes) == 0 {
		return "No tracked panes."
	}

	type tabGroup struct {
		name  string
		panes []*types.PaneRecord
	}
	sessions := map[string]map[string]*tabGroup{}

	for _, p := range panes {
		tabs, ok := sessions[p.Session]
		if !ok {
			tabs = map[string]*tabGroup{}
			sessions[p.Session] = tabs
		}
		tab := p.Tab
		if tab == "" {
			tab = "(no tab)"
		}
		grp, ok := tabs[tab]
		if !ok {
			grp = &tabGroup{name: tab}
			tabs[tab] = grp
		}
		grp.panes = append(grp.panes, p)
	}

	sessionNames := make([]string, 0, len(sessions))
	for name := range sessions {
		sessionNames = append(sessionNames, name)
	}
	sort.Strings(sessionNames)

	var b strings.Builder
	for _, sessionName := range sessionNames {
		fmt.Fprintf(&b, "%s\n", sessionName)

		tabs := sessions[sessionName]
		tabNames := make([]string, 0, len(tabs))
		for name := range tabs {
			tabNames = append(tabNames, name)
		}
		sort.Strings(tabNames)

		for _, tabName := range tabNames {
			grp := tabs[tabName]
			fmt.Fprintf(&b, "  %s\n", grp.name)

			sort.Slice(grp.panes, func(i, j int) bool {
				return panePosition(grp.panes[i]) < panePosition(grp.panes[j])
			})
			for _, p := range grp.panes {
				marker := ""
				if p.Stale {
					marker = " (stale)"
				}
				fmt.Fprintf(&b, "    %s%s\n", p.PaneName, marker)
			}
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// panePosition returns p's stored "position" meta as an int, or a large
// sentinel when absent or unparsable so such panes sort last.
func panePosition(p *types.PaneRecord) int {
	const unpositioned = 1 << 30
	raw, ok := p.Meta["position"]
	if !ok {
		return unpositioned
	}
	var n int
	if _, err := fmt.Sscanf(raw, "%d", &n); err != nil {
		return unpositioned
	}
	return n
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "render the session -> tab -> pane tree of tracked panes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOrchestrator(cmd, func(ctx context.Context, orch *orchestrator.Orchestrator, cfg config.Config) error {
				panes, err := orch.ListPanes(ctx)
				if err != nil {
					return newExitError(1, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderPaneTree(panes))
				return nil
			})
		},
	}
}
