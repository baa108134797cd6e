package orchestrator

import (
	"context"
	"fmt"

	"github.com/delorenj/perth/internal/log"
)

// ReconcileSummary tallies what Reconcile did.
type ReconcileSummary struct {
	Session string
	Total   int
	Seen    int
	Stale   int
	Skipped int
}

// Reconcile syncs State pane records against the active session's live
// layout: panes the layout still reports are marked seen, panes it no
// longer reports are marked stale, and panes belonging to a different
// session (or present when the layout can't be trusted) are left alone.
func (o *Orchestrator) Reconcile(ctx context.Context) (*ReconcileSummary, error) {
	if err := o.requireVersion(ctx); err != nil {
		return nil, err
	}

	session, ok := o.driver.ActiveSession()
	if !ok {
		return nil, fmt.Errorf("not inside a zellij session; reconcile requires an active session")
	}

	layoutPanes := map[string]bool{}
	layoutConfident := false
	if layout, err := o.driver.DumpLayout(ctx, session); err == nil && layout != nil {
		for _, tab := range layout.Tabs {
			for _, pane := range tab.Panes {
				if pane.Name != "" {
					layoutPanes[pane.Name] = true
				}
			}
		}
		if len(layoutPanes) > 0 {
			layoutConfident = true
		}
	}

	names, err := o.store.ListPaneNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pane names: %w", err)
	}

	summary := &ReconcileSummary{Session: session}

	for _, name := range names {
		summary.Total++

		record, err := o.store.GetPane(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("look up pane '%s': %w", name, err)
		}
		if record == nil {
			summary.Skipped++
			continue
		}

		if record.Session != session {
			summary.Skipped++
			continue
		}

		if !layoutConfident {
			summary.Skipped++
			continue
		}

		if layoutPanes[record.PaneName] {
			if err := o.store.MarkSeen(ctx, record.PaneName); err != nil {
				return nil, fmt.Errorf("mark pane '%s' seen: %w", record.PaneName, err)
			}
			summary.Seen++
		} else {
			if err := o.store.MarkStale(ctx, record.PaneName); err != nil {
				return nil, fmt.Errorf("mark pane '%s' stale: %w", record.PaneName, err)
			}
			summary.Stale++
		}
	}

	log.InfoLog.Printf("reconcile: session=%s total=%d seen=%d stale=%d skipped=%d",
		summary.Session, summary.Total, summary.Seen, summary.Stale, summary.Skipped)

	return summary, nil
}
