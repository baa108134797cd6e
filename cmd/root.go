// Package cmd builds Perth's cobra command tree and wires each verb to the
// Orchestrator. Business logic lives in orchestrator; this package only
// parses flags, constructs collaborators, and shapes output.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/delorenj/perth/internal/bloodbank"
	"github.com/delorenj/perth/internal/config"
	perthcontext "github.com/delorenj/perth/internal/context"
	"github.com/delorenj/perth/internal/filter"
	"github.com/delorenj/perth/internal/llm"
	"github.com/delorenj/perth/internal/llm/breaker"
	"github.com/delorenj/perth/internal/orchestrator"
	"github.com/delorenj/perth/internal/state"
	"github.com/delorenj/perth/internal/zellij"
)

// ExitError lets a RunE choose the process exit code without cobra's default
// error-printing getting in the way. Message may be empty when the command
// already wrote its own output (e.g. `pane info` prints JSON before
// signalling exit code 2 for "missing").
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string { return e.Message }

// ExitCode extracts the intended process exit code from err: 0 for nil, the
// carried code for an *ExitError, 1 for anything else. main uses this as the
// single place that turns a command's error into os.Exit's argument.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

// Message returns the text main should print for err, or "" when nothing
// further needs printing (an *ExitError with an empty Message means the
// command already wrote its own output, e.g. `pane info`'s JSON body).
func Message(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// newExitError builds an ExitError carrying err's message.
func newExitError(code int, err error) error {
	if err == nil {
		return &ExitError{Code: code}
	}
	return &ExitError{Code: code, Message: err.Error()}
}

// buildOrchestrator wires every Orchestrator collaborator against the
// already-loaded cfg. The returned cleanup func must be called (via defer) once the
// command finishes; it closes the broker connection.
func buildOrchestrator(ctx context.Context, cfg config.Config) (*orchestrator.Orchestrator, func(), error) {
	store, err := state.DialRedis(ctx, cfg.RedisURL)
	if err != nil {
		return nil, func() {}, fmt.Errorf("connect to state store: %w", err)
	}

	driver := zellij.NewCLIDriver()
	publisher := bloodbank.New(cfg.Bloodbank)

	f, err := filter.New()
	if err != nil {
		return nil, func() {}, fmt.Errorf("build secret filter: %w", err)
	}
	collector := perthcontext.New(f)

	provider := llm.NewFromConfig(cfg.LLM)
	brk := breaker.New()

	orch := orchestrator.New(store, driver, publisher, collector, provider, brk, orchestrator.Config{
		MinZellijVersion: cfg.MinZellijVersion,
		ConsentGiven:     cfg.Privacy.ConsentGiven,
	})

	cleanup := func() {
		if err := publisher.Close(); err != nil {
			_ = err
		}
	}
	return orch, cleanup, nil
}

// withOrchestrator loads config, wires an Orchestrator, runs fn, and closes
// the Orchestrator's collaborators afterward regardless of fn's outcome.
// Every pane/tab/reconcile/list/migrate command goes through this.
func withOrchestrator(cmd *cobra.Command, fn func(ctx context.Context, orch *orchestrator.Orchestrator, cfg config.Config) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return newExitError(1, fmt.Errorf("load config: %w", err))
	}

	orch, cleanup, err := buildOrchestrator(ctx, cfg)
	if err != nil {
		return newExitError(1, err)
	}
	defer cleanup()

	return fn(ctx, orch, cfg)
}

// NewRootCmd builds Perth's full cobra command tree.
func NewRootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:           "perth",
		Short:         "perth - a cognitive-context manager for terminal multiplexer sessions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "perth version %s\n", version)
		},
	}

	root.AddCommand(versionCmd)
	root.AddCommand(newPaneCmd())
	root.AddCommand(newTabCmd())
	root.AddCommand(newReconcileCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newConfigCmd())

	return root
}

// parseMetaFlags turns a list of "key=value" pairs (as repeated --meta
// flags) into a map. An entry with no '=' or an empty key is rejected.
func parseMetaFlags(pairs []string) (map[string]string, error) {
	meta := map[string]string{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --meta entry %q; expected key=value", pair)
		}
		meta[key] = value
	}
	return meta, nil
}
