package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/delorenj/perth/internal/log"
	"github.com/delorenj/perth/internal/types"
	"github.com/delorenj/perth/internal/zellij"
)

// Restorer recreates a zellij session's tabs and panes from a SessionSnapshot.
type Restorer struct {
	driver zellij.Driver
	now    func() time.Time
}

// NewRestorer returns a Restorer over the given Driver.
func NewRestorer(driver zellij.Driver) *Restorer {
	return &Restorer{driver: driver, now: time.Now}
}

// Restore recreates snap's tabs and panes in the active session. When
// dryRun is true, no Driver calls that mutate the multiplexer are made;
// the report is still populated so callers can show what would happen.
func (r *Restorer) Restore(ctx context.Context, snap *types.SessionSnapshot, dryRun bool) (*types.RestoreReport, error) {
	if _, ok := r.driver.ActiveSession(); !ok {
		return nil, fmt.Errorf("not inside a zellij session; restore requires an active session")
	}

	start := r.now()
	report := types.NewRestoreReport()

	var existingTabs []string
	if !dryRun {
		session, _ := r.driver.ActiveSession()
		names, err := r.driver.QueryTabNames(ctx, session)
		if err != nil {
			return nil, fmt.Errorf("query existing tabs: %w", err)
		}
		existingTabs = names
	}

	for _, tab := range snap.Tabs {
		if err := r.restoreTab(ctx, tab, existingTabs, dryRun, report); err != nil {
			report.TabsFailed++
			component := fmt.Sprintf("tab '%s'", tab.Name)
			report.AddWarning(types.WarningLevelError, fmt.Sprintf("failed to restore tab: %v", err), &component, nil)
			continue
		}
		report.TabsRestored++
	}

	report.Finalize(r.now().Sub(start))
	return report, nil
}

func (r *Restorer) restoreTab(ctx context.Context, tab types.TabSnapshot, existingTabs []string, dryRun bool, report *types.RestoreReport) error {
	session, _ := r.driver.ActiveSession()
	exists := false
	for _, t := range existingTabs {
		if t == tab.Name {
			exists = true
			break
		}
	}

	if dryRun {
		component := fmt.Sprintf("tab '%s'", tab.Name)
		if exists {
			report.AddWarning(types.WarningLevelInfo, fmt.Sprintf("tab '%s' already exists, would skip creation", tab.Name), &component, nil)
		} else {
			log.InfoLog.Printf("[DRY RUN] would create tab: %s", tab.Name)
		}
		for _, pane := range tab.Panes {
			log.InfoLog.Printf("[DRY RUN] would create pane: %s at position %d", pane.Name, pane.Position)
			if pane.Cwd != nil {
				log.InfoLog.Printf("[DRY RUN]   cwd: %s", *pane.Cwd)
			}
			report.PanesRestored++
		}
		return nil
	}

	if exists {
		if err := r.driver.GoToTab(ctx, session, tab.Name); err != nil {
			return fmt.Errorf("failed to switch to existing tab: %w", err)
		}
		component := fmt.Sprintf("tab '%s'", tab.Name)
		report.AddWarning(types.WarningLevelInfo, fmt.Sprintf("tab '%s' already exists, switching to it", tab.Name), &component, nil)
	} else {
		if err := r.driver.NewTab(ctx, session, tab.Name); err != nil {
			return fmt.Errorf("failed to create tab: %w", err)
		}
	}

	for index, pane := range tab.Panes {
		if err := r.restorePane(ctx, session, pane, index, tab.Name, report); err != nil {
			report.PanesFailed++
			component := fmt.Sprintf("tab '%s', pane '%s'", tab.Name, pane.Name)
			report.AddWarning(types.WarningLevelWarning, fmt.Sprintf("failed to restore pane: %v", err), &component, nil)
			continue
		}
		report.PanesRestored++
	}

	return nil
}

func (r *Restorer) restorePane(ctx context.Context, session string, pane types.PaneSnapshot, index int, tabName string, report *types.RestoreReport) error {
	// The first pane already exists as the tab's initial pane; only rename it.
	if index == 0 {
		if err := r.driver.RenamePane(ctx, session, pane.Name); err != nil {
			return fmt.Errorf("failed to rename first pane: %w", err)
		}
		if pane.Name == "unnamed" {
			component := fmt.Sprintf("tab '%s'", tabName)
			report.AddWarning(types.WarningLevelInfo, "first pane has no name", &component, nil)
		}
		return nil
	}

	direction := zellij.DirectionDown
	if index%2 != 0 {
		direction = zellij.DirectionRight
	}

	cwd := ""
	if pane.Cwd != nil {
		cwd = *pane.Cwd
	}
	if err := r.driver.NewPane(ctx, session, direction, cwd); err != nil {
		return fmt.Errorf("failed to create pane: %w", err)
	}

	if err := r.driver.RenamePane(ctx, session, pane.Name); err != nil {
		return fmt.Errorf("failed to rename pane: %w", err)
	}

	if pane.Cwd == nil {
		component := fmt.Sprintf("tab '%s', pane '%s'", tabName, pane.Name)
		report.AddWarning(types.WarningLevelInfo, "pane has no saved working directory", &component, nil)
	}

	return nil
}
