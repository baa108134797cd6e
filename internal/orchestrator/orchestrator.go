// Package orchestrator wires the State Store, Multiplexer Adapter, Event
// Publisher, Snapshot Engine, Context Collector, and LLM Client into the
// command-level operations Perth exposes: opening/creating panes, typed tab
// creation, batch pane spawning, intent logging (manual and LLM-assisted),
// reconciliation against live layout, and keyspace migration.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/delorenj/perth/internal/bloodbank"
	"github.com/delorenj/perth/internal/llm"
	"github.com/delorenj/perth/internal/llm/breaker"
	perthcontext "github.com/delorenj/perth/internal/context"
	"github.com/delorenj/perth/internal/snapshot"
	"github.com/delorenj/perth/internal/state"
	"github.com/delorenj/perth/internal/zellij"
)

// currentTab is the sentinel tab name meaning "wherever the active tab
// happens to be", used when a caller opens or creates a pane without
// specifying a tab.
const currentTab = "current"

// snapshotIntentTimeout bounds the one LLM call the Orchestrator ever
// makes; nothing else in the command surface has a deadline.
const snapshotIntentTimeout = 30 * time.Second

// Config carries the small scalar settings the Orchestrator needs that
// don't belong to any one collaborator.
type Config struct {
	MinZellijVersion string
	ConsentGiven     bool
}

// Orchestrator is Perth's command-level coordinator. Construct one with New,
// supplying every collaborator it wires together.
type Orchestrator struct {
	store     state.Store
	driver    zellij.Driver
	publisher *bloodbank.Publisher
	capturer  *snapshot.Capturer
	restorer  *snapshot.Restorer
	collector *perthcontext.Collector
	provider  llm.Provider
	breaker   *breaker.Breaker

	cfg Config
	now func() time.Time
}

// New builds an Orchestrator over its full set of collaborators.
func New(
	store state.Store,
	driver zellij.Driver,
	publisher *bloodbank.Publisher,
	collector *perthcontext.Collector,
	provider llm.Provider,
	brk *breaker.Breaker,
	cfg Config,
) *Orchestrator {
	return &Orchestrator{
		store:     store,
		driver:    driver,
		publisher: publisher,
		capturer:  snapshot.NewCapturer(driver),
		restorer:  snapshot.NewRestorer(driver),
		collector: collector,
		provider:  provider,
		breaker:   brk,
		cfg:       cfg,
		now:       time.Now,
	}
}

// requireVersion gates any command that is about to touch the multiplexer.
// Commands that only touch State or local configuration must not call this.
func (o *Orchestrator) requireVersion(ctx context.Context) error {
	if o.cfg.MinZellijVersion == "" {
		return nil
	}
	if _, err := o.driver.CheckVersion(ctx, o.cfg.MinZellijVersion); err != nil {
		return fmt.Errorf("zellij version check failed: %w", err)
	}
	return nil
}

// ensureSession resolves a target session name to the override the Adapter
// calls should pass. An empty return means "use the ambient session" (the
// target already is the active one). If no session is active at all, the
// Adapter is asked to attach and an error instructs the caller to re-run.
func (o *Orchestrator) ensureSession(ctx context.Context, target string) (string, error) {
	if current, ok := o.driver.ActiveSession(); ok {
		if current == target {
			return "", nil
		}
		return "", fmt.Errorf("target session '%s' is not active (current '%s'); detach and retry", target, current)
	}

	if _, err := o.driver.QueryTabNames(ctx, target); err == nil {
		return target, nil
	}

	if err := o.driver.AttachSession(ctx, target); err != nil {
		return "", fmt.Errorf("failed to attach session '%s': %w", target, err)
	}
	return "", fmt.Errorf("attached to session '%s'; re-run command to continue", target)
}

// ensureTabInSession switches to tabName if it already exists in session,
// otherwise creates it. It reports whether the tab was freshly created.
func (o *Orchestrator) ensureTabInSession(ctx context.Context, session, tabName string) (bool, error) {
	tabs, err := o.driver.QueryTabNames(ctx, session)
	if err != nil {
		return false, err
	}
	for _, t := range tabs {
		if t == tabName {
			if err := o.driver.GoToTab(ctx, session, tabName); err != nil {
				return false, err
			}
			return false, nil
		}
	}
	if err := o.driver.NewTab(ctx, session, tabName); err != nil {
		return false, fmt.Errorf("failed to create tab: %w", err)
	}
	return true, nil
}

// countPanesInTab counts the leaf panes zellij currently reports for
// tabName, falling back to 0 when the layout can't be read — the caller
// treats that as "no panes yet" rather than failing.
func (o *Orchestrator) countPanesInTab(ctx context.Context, session, tabName string) int {
	layout, err := o.driver.DumpLayout(ctx, session)
	if err != nil || layout == nil {
		return 0
	}
	for _, tab := range layout.Tabs {
		if tab.Name == tabName {
			return len(tab.Panes)
		}
	}
	return 0
}

func nowString(now func() time.Time) string {
	return now().UTC().Format(time.RFC3339)
}
