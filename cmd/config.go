package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/delorenj/perth/internal/config"
)

// executeConfigShow renders the loaded config as a masked human-readable
// report.
func executeConfigShow() (string, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	path, err := config.Path()
	if err != nil {
		return "", err
	}
	return config.Show(cfg, path), nil
}

// executeConfigSet validates and applies a single dotted-key config change,
// returning the previous value (if any) for the caller to report.
func executeConfigSet(key, value string) (*string, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	_, previous, err := config.SetValue(cfg, key, value)
	if err != nil {
		return nil, err
	}
	return previous, nil
}

// executeConfigConsent grants or revokes LLM summarisation consent.
func executeConfigConsent(grant bool) (bool, error) {
	cfg, err := config.Load()
	if err != nil {
		return false, err
	}
	if grant {
		if _, err := config.GrantConsent(cfg, time.Now()); err != nil {
			return false, err
		}
		return true, nil
	}
	if _, err := config.RevokeConsent(cfg, time.Now()); err != nil {
		return false, err
	}
	return false, nil
}

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "view and edit Perth's local configuration",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "print the resolved config, with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			rendered, err := executeConfigShow()
			if err != nil {
				return newExitError(1, err)
			}
			fmt.Fprint(cmd.OutOrStdout(), rendered)
			return nil
		},
	}
	configCmd.AddCommand(showCmd)

	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "set a single config key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			previous, err := executeConfigSet(args[0], args[1])
			if err != nil {
				return newExitError(1, err)
			}
			if previous != nil && *previous != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s -> %s\n", args[0], *previous, args[1])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", args[0], args[1])
			}
			return nil
		},
	}
	configCmd.AddCommand(setCmd)

	var grant, revoke bool
	consentCmd := &cobra.Command{
		Use:   "consent",
		Short: "grant or revoke LLM summarisation consent",
		RunE: func(cmd *cobra.Command, args []string) error {
			if grant == revoke {
				return newExitError(1, fmt.Errorf("exactly one of --grant or --revoke is required"))
			}
			given, err := executeConfigConsent(grant)
			if err != nil {
				return newExitError(1, err)
			}
			if given {
				fmt.Fprintln(cmd.OutOrStdout(), "consent granted")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "consent revoked")
			}
			return nil
		},
	}
	consentCmd.Flags().BoolVar(&grant, "grant", false, "grant LLM summarisation consent")
	consentCmd.Flags().BoolVar(&revoke, "revoke", false, "revoke LLM summarisation consent")
	configCmd.AddCommand(consentCmd)

	return configCmd
}
