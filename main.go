package main

import (
	"fmt"
	"os"

	"github.com/delorenj/perth/cmd"
	"github.com/delorenj/perth/internal/config"
	"github.com/delorenj/perth/internal/log"
	"github.com/delorenj/perth/internal/sentry"
)

var version = "0.1.0"

func main() {
	cfg, cfgErr := config.Load()

	if err := sentry.Init(version, cfg.TelemetryEnabled); err != nil {
		// Non-fatal: telemetry failing to initialise must not block the CLI.
		_ = err
	}
	defer sentry.Flush()
	defer sentry.RecoverPanic()

	log.Initialize(false, cfg.TelemetryEnabled)
	defer log.Close()

	if cfgErr != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", cfgErr)
		os.Exit(1)
	}

	root := cmd.NewRootCmd(version)
	err := root.Execute()

	if msg := cmd.Message(err); msg != "" {
		fmt.Fprintln(os.Stderr, msg)
	}
	os.Exit(cmd.ExitCode(err))
}
