package orchestrator

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/delorenj/perth/internal/bloodbank"
	"github.com/delorenj/perth/internal/llm"
	"github.com/delorenj/perth/internal/types"
)

// LogIntent appends entry to paneName's history and emits perth.intent.logged
// (and, when entry is a milestone, perth.milestone.recorded too).
func (o *Orchestrator) LogIntent(ctx context.Context, paneName string, entry *types.IntentEntry) error {
	if err := o.store.LogIntent(ctx, paneName, entry); err != nil {
		return fmt.Errorf("log intent for pane '%s': %w", paneName, err)
	}

	metadata := bloodbank.NewMetadata()
	o.publisher.PublishIntentLogged(ctx, entry, metadata, entry.IsMilestone())
	return nil
}

// SnapshotIntent runs the LLM summarisation pipeline for paneName: circuit
// breaker gate, provider availability, consent gate, context collection,
// timed summarisation call, then logs the result as an automated IntentEntry.
func (o *Orchestrator) SnapshotIntent(ctx context.Context, paneName string) (*types.SnapshotResult, error) {
	isNoOp := o.provider.Name() == "noop"

	if !isNoOp {
		if err := o.breaker.AllowRequest(); err != nil {
			return nil, err
		}
	}

	if !o.provider.IsAvailable() {
		return nil, fmt.Errorf("LLM provider '%s' is not available; check its configuration", o.provider.Name())
	}

	if !isNoOp && !o.cfg.ConsentGiven {
		return nil, fmt.Errorf("LLM summarisation requires consent; run \"perth config consent --grant\" first (no data leaves this process until you do)")
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolve current directory: %w", err)
	}

	// Context collection (filesystem + git) and history lookup (State Store
	// round-trip) are independent reads; overlap them per the task-level
	// concurrency the command model allows.
	var sessionContext *llm.SessionContext
	var history []*types.IntentEntry
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sc, collectErr := o.collector.Collect(paneName, cwd)
		if collectErr != nil {
			return fmt.Errorf("collect context for pane '%s': %w", paneName, collectErr)
		}
		sessionContext = sc
		return nil
	})
	g.Go(func() error {
		h, historyErr := o.store.GetHistory(gctx, paneName, 1)
		if historyErr != nil {
			return fmt.Errorf("read history for pane '%s': %w", paneName, historyErr)
		}
		history = h
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if len(history) > 0 {
		sessionContext.WithExistingSummary(history[0].Summary)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, snapshotIntentTimeout)
	defer cancel()

	result, err := o.provider.Summarize(timeoutCtx, sessionContext)
	if !isNoOp {
		if err != nil {
			o.breaker.RecordFailure()
		} else {
			o.breaker.RecordSuccess()
		}
	}
	if err != nil {
		return nil, fmt.Errorf("summarise pane '%s': %w", paneName, err)
	}

	entryType := types.ParseIntentType(result.SuggestedType)
	entry := types.NewIntentEntry(result.Summary, entryType, types.IntentSourceAutomated)
	entry.Artifacts = result.KeyFiles
	if entry.Artifacts == nil {
		entry.Artifacts = []string{}
	}

	if err := o.LogIntent(ctx, paneName, entry); err != nil {
		return nil, err
	}

	return &types.SnapshotResult{
		Entry:      *entry,
		Provider:   o.provider.Name(),
		TokensUsed: result.TokensUsed,
	}, nil
}

