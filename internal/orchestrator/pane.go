package orchestrator

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/delorenj/perth/internal/bloodbank"
	"github.com/delorenj/perth/internal/log"
	"github.com/delorenj/perth/internal/types"
)

// OpenOrCreatePane opens an existing pane or creates a new one, per
// spec.md §4.8's open-or-create operation. session, tab may be empty to mean
// "unspecified"; meta is merged into the pane's metadata.
func (o *Orchestrator) OpenOrCreatePane(ctx context.Context, paneName, tab, session string, meta map[string]string, showLastIntent bool) error {
	if err := o.requireVersion(ctx); err != nil {
		return err
	}

	record, err := o.store.GetPane(ctx, paneName)
	if err != nil {
		return fmt.Errorf("look up pane '%s': %w", paneName, err)
	}
	if record != nil {
		return o.openExistingPane(ctx, record, session, meta, showLastIntent)
	}
	return o.createPane(ctx, paneName, tab, session, meta)
}

func (o *Orchestrator) openExistingPane(ctx context.Context, record *types.PaneRecord, session string, meta map[string]string, showLastIntent bool) error {
	if session != "" && session != record.Session {
		return fmt.Errorf("pane '%s' already belongs to session '%s'", record.PaneName, record.Session)
	}

	actionSession, err := o.ensureSession(ctx, record.Session)
	if err != nil {
		return err
	}

	if record.Tab != "" && record.Tab != currentTab {
		if err := o.driver.GoToTab(ctx, actionSession, record.Tab); err != nil {
			if markErr := o.store.MarkStale(ctx, record.PaneName); markErr != nil {
				log.ErrorLog.Printf("failed to mark pane '%s' stale after tab switch failure: %v", record.PaneName, markErr)
			}
			return fmt.Errorf("failed to switch to pane tab; marked stale: %w", err)
		}

		if positionStr, ok := record.Meta["position"]; ok {
			if position, err := strconv.Atoi(positionStr); err == nil {
				if err := o.driver.FocusPaneByIndex(ctx, actionSession, position); err != nil {
					log.WarningLog.Printf("could not focus pane '%s' at position %d: %v", record.PaneName, position, err)
				}
			}
		}
	}

	if err := o.store.TouchPane(ctx, record.PaneName, meta); err != nil {
		return fmt.Errorf("touch pane '%s': %w", record.PaneName, err)
	}

	o.publisher.Publish(ctx, bloodbank.EventPaneOpened, record, bloodbank.NewMetadata().WithSession(record.Session))

	if showLastIntent {
		o.renderLastIntentHint(ctx, record.PaneName)
	}

	return nil
}

// renderLastIntentHint writes a best-effort one-line resume hint to
// standard error; any failure is swallowed.
func (o *Orchestrator) renderLastIntentHint(ctx context.Context, paneName string) {
	history, err := o.store.GetHistory(ctx, paneName, 1)
	if err != nil || len(history) == 0 {
		return
	}
	fmt.Fprintf(os.Stderr, "resuming '%s': %s\n", paneName, history[0].Summary)
}

func (o *Orchestrator) createPane(ctx context.Context, paneName, tab, session string, meta map[string]string) error {
	targetSession := session
	if targetSession == "" {
		current, ok := o.driver.ActiveSession()
		if !ok {
			return fmt.Errorf("no active session; pass --session")
		}
		targetSession = current
	}

	actionSession, err := o.ensureSession(ctx, targetSession)
	if err != nil {
		return err
	}

	createdTab := false
	finalTab := currentTab
	if tab != "" {
		createdTab, err = o.ensureTabInSession(ctx, actionSession, tab)
		if err != nil {
			return err
		}
		finalTab = tab
	}

	position := 0
	if finalTab != currentTab {
		position = o.countPanesInTab(ctx, actionSession, finalTab)
	}

	if createdTab {
		if err := o.driver.RenamePane(ctx, actionSession, paneName); err != nil {
			return fmt.Errorf("failed to rename pane: %w", err)
		}
	} else {
		if err := o.driver.NewPane(ctx, actionSession, "", ""); err != nil {
			return fmt.Errorf("failed to create pane: %w", err)
		}
		if err := o.driver.RenamePane(ctx, actionSession, paneName); err != nil {
			return fmt.Errorf("failed to rename pane: %w", err)
		}
	}

	metaWithPosition := map[string]string{}
	for k, v := range meta {
		metaWithPosition[k] = v
	}
	metaWithPosition["position"] = strconv.Itoa(position)

	now := nowString(o.now)
	record := types.NewPaneRecord(paneName, targetSession, finalTab, now, metaWithPosition)
	if err := o.store.UpsertPane(ctx, record); err != nil {
		return fmt.Errorf("save pane '%s': %w", paneName, err)
	}

	o.publisher.Publish(ctx, bloodbank.EventPaneCreated, record, bloodbank.NewMetadata().WithSession(targetSession))

	return nil
}

// PaneInfo looks up a pane by name, shaping the result per spec.md §4.8's
// pane-info operation.
func (o *Orchestrator) PaneInfo(ctx context.Context, paneName string) (types.PaneInfoOutput, error) {
	record, err := o.store.GetPane(ctx, paneName)
	if err != nil {
		return types.PaneInfoOutput{}, fmt.Errorf("look up pane '%s': %w", paneName, err)
	}
	if record == nil {
		return types.MissingPaneInfo(paneName), nil
	}

	status := types.PaneStatusFound
	if record.Stale {
		status = types.PaneStatusStale
	}
	return types.PaneInfoOutput{
		PaneName:     record.PaneName,
		Session:      record.Session,
		Tab:          record.Tab,
		PaneID:       record.PaneID,
		CreatedAt:    record.CreatedAt,
		LastSeen:     record.LastSeen,
		LastAccessed: record.LastAccessed,
		Meta:         record.Meta,
		Status:       status,
		Source:       "redis",
	}, nil
}
