package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/delorenj/perth/internal/bloodbank"
	"github.com/delorenj/perth/internal/types"
	"github.com/delorenj/perth/internal/zellij"
)

// BatchResult is BatchPanes' return shape: which panes were created, and
// which were skipped because a State record already existed for them.
type BatchResult struct {
	Created []string
	Skipped []string
}

// BatchPanes spawns a batch of panes into tabName, per spec.md §4.8's
// "Batch panes" operation. cwds, when non-nil, must be either empty or the
// same length as paneNames; a missing entry for a given index means "no
// cwd override".
func (o *Orchestrator) BatchPanes(ctx context.Context, tabName string, paneNames []string, cwds []string, vertical bool) (*BatchResult, error) {
	if err := o.requireVersion(ctx); err != nil {
		return nil, err
	}
	if len(paneNames) == 0 {
		return nil, fmt.Errorf("pane names list must not be empty")
	}

	session, ok := o.driver.ActiveSession()
	if !ok {
		return nil, fmt.Errorf("not inside a zellij session; batch requires an active session")
	}

	createdTab, err := o.ensureTabInSession(ctx, session, tabName)
	if err != nil {
		return nil, err
	}

	direction := zellij.DirectionDown
	if vertical {
		direction = zellij.DirectionRight
	}

	result := &BatchResult{Created: []string{}, Skipped: []string{}}
	now := nowString(o.now)

	for i, paneName := range paneNames {
		existing, err := o.store.GetPane(ctx, paneName)
		if err != nil {
			return nil, fmt.Errorf("look up pane '%s': %w", paneName, err)
		}
		if existing != nil {
			result.Skipped = append(result.Skipped, paneName)
			continue
		}

		cwd := ""
		if i < len(cwds) {
			cwd = cwds[i]
		}
		absCwd := cwd
		if absCwd != "" {
			if resolved, err := filepath.Abs(absCwd); err == nil {
				absCwd = resolved
			}
		}

		if createdTab && i == 0 {
			if err := o.driver.RenamePane(ctx, session, paneName); err != nil {
				return nil, fmt.Errorf("failed to rename pane '%s': %w", paneName, err)
			}
		} else {
			if err := o.driver.NewPane(ctx, session, direction, absCwd); err != nil {
				return nil, fmt.Errorf("failed to create pane '%s': %w", paneName, err)
			}
			if err := o.driver.RenamePane(ctx, session, paneName); err != nil {
				return nil, fmt.Errorf("failed to rename pane '%s': %w", paneName, err)
			}
		}

		meta := map[string]string{"position": strconv.Itoa(i)}
		if absCwd != "" {
			meta["cwd"] = absCwd
		}

		record := types.NewPaneRecord(paneName, session, tabName, now, meta)
		if err := o.store.UpsertPane(ctx, record); err != nil {
			return nil, fmt.Errorf("save pane '%s': %w", paneName, err)
		}

		o.publisher.Publish(ctx, bloodbank.EventPaneCreated, record, bloodbank.NewMetadata().WithSession(session))
		result.Created = append(result.Created, paneName)
	}

	return result, nil
}
