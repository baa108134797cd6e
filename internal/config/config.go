// Package config loads and saves Perth's TOML configuration file and
// renders/mutates it for the `config` command group.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/delorenj/perth/internal/bloodbank"
	"github.com/delorenj/perth/internal/config/consent"
	"github.com/delorenj/perth/internal/filter"
	"github.com/delorenj/perth/internal/llm"
	"github.com/delorenj/perth/internal/log"
)

// FileName is the name of the config file within its directory.
const FileName = "config.toml"

const defaultNamingPattern = `^[a-zA-Z0-9_-]+\([a-zA-Z0-9_-]+\)$`

// PrivacyConfig gates LLM summarisation behind an explicit, timestamped
// opt-in.
type PrivacyConfig struct {
	ConsentGiven   bool    `toml:"consent_given"`
	ConsentGivenAt *string `toml:"consent_given_at,omitempty"`
}

// DisplayConfig controls output rendering defaults.
type DisplayConfig struct {
	ShowLastIntent bool `toml:"show_last_intent"`
}

// TabConfig validates typed tab names against a configurable pattern.
type TabConfig struct {
	NamingPattern string `toml:"naming_pattern"`
}

// ValidateName reports whether name matches the configured pattern. An
// invalid pattern is treated as "accept everything" rather than panicking,
// since it can only originate from a hand-edited config file.
func (t TabConfig) ValidateName(name string) bool {
	pattern := t.NamingPattern
	if pattern == "" {
		pattern = defaultNamingPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		log.WarningLog.Printf("invalid tab naming_pattern %q, accepting all names: %v", pattern, err)
		return true
	}
	return re.MatchString(name)
}

// FormatHint describes the expected tab name shape for error messages.
func (t TabConfig) FormatHint() string {
	if t.NamingPattern != "" && t.NamingPattern != defaultNamingPattern {
		return fmt.Sprintf("must match pattern %q", t.NamingPattern)
	}
	return "must look like repo(context), e.g. perth(auth-refactor)"
}

// Config is Perth's full configuration, as loaded from config.toml.
type Config struct {
	RedisURL         string           `toml:"redis_url"`
	MinZellijVersion string           `toml:"min_zellij_version"`
	TelemetryEnabled bool             `toml:"telemetry_enabled"`
	LLM              llm.Config       `toml:"llm"`
	Privacy          PrivacyConfig    `toml:"privacy"`
	Display          DisplayConfig    `toml:"display"`
	Bloodbank        bloodbank.Config `toml:"bloodbank"`
	Tab              TabConfig        `toml:"tab"`
	Filter           filter.Config    `toml:"filter"`
}

// DefaultConfig matches the original's serde defaults section by section.
func DefaultConfig() Config {
	return Config{
		RedisURL:         "redis://127.0.0.1:6379",
		MinZellijVersion: "",
		TelemetryEnabled: false,
		LLM:              llm.DefaultConfig(),
		Privacy:          PrivacyConfig{},
		Display:          DisplayConfig{ShowLastIntent: true},
		Bloodbank:        bloodbank.DefaultConfig(),
		Tab:              TabConfig{NamingPattern: defaultNamingPattern},
		Filter:           filter.DefaultConfig(),
	}
}

// Dir returns the path to Perth's configuration directory. Uses
// XDG-compliant ~/.config/perth/. On first run it migrates a legacy
// directory, ~/.zellij-driver (the original tool's own directory name),
// into place.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		homeDir = xdg
		newDir := filepath.Join(homeDir, "perth")
		return migrateOrReturn(newDir, nil)
	}

	newDir := filepath.Join(homeDir, ".config", "perth")
	legacyDirs := []string{
		filepath.Join(homeDir, ".zellij-driver"),
	}
	return migrateOrReturn(newDir, legacyDirs)
}

func migrateOrReturn(newDir string, legacyDirs []string) (string, error) {
	if _, err := os.Stat(newDir); err == nil {
		return newDir, nil
	}

	for _, oldDir := range legacyDirs {
		if _, err := os.Stat(oldDir); err == nil {
			if mkErr := os.MkdirAll(filepath.Dir(newDir), 0o755); mkErr != nil {
				log.ErrorLog.Printf("failed to create %s: %v", filepath.Dir(newDir), mkErr)
				return oldDir, nil
			}
			if renameErr := os.Rename(oldDir, newDir); renameErr != nil {
				log.ErrorLog.Printf("failed to migrate %s to %s: %v", oldDir, newDir, renameErr)
				return oldDir, nil
			}
			return newDir, nil
		}
	}

	return newDir, nil
}

// Path returns the full path to config.toml, creating no files.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Load reads config.toml, overlaying it onto DefaultConfig. A missing file
// is not an error: the defaults are written out and returned.
func Load() (Config, error) {
	cfg := DefaultConfig()

	path, err := Path()
	if err != nil {
		return cfg, err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if saveErr := Save(path, cfg); saveErr != nil {
			log.WarningLog.Printf("failed to save default config: %v", saveErr)
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating its directory if needed. Unlike
// `toml_edit`-style in-place mutation, this rewrites the whole file; any
// comments or formatting a user hand-added are lost. See DESIGN.md for why
// this tradeoff was accepted.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open config file %s: %w", path, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encode config file %s: %w", path, err)
	}
	return nil
}

// GrantConsent stamps privacy.consent_given and privacy.consent_given_at
// with the current time, then persists the change.
func GrantConsent(cfg Config, now time.Time) (Config, error) {
	stamp := now.UTC().Format(time.RFC3339)
	cfg.Privacy.ConsentGiven = true
	cfg.Privacy.ConsentGivenAt = &stamp

	path, err := Path()
	if err != nil {
		return cfg, err
	}
	if err := Save(path, cfg); err != nil {
		return cfg, err
	}
	recordConsentEvent(consent.ActionGranted, now)
	return cfg, nil
}

// RevokeConsent clears privacy.consent_given but leaves consent_given_at
// untouched, preserving the record of when consent was last granted.
func RevokeConsent(cfg Config, now time.Time) (Config, error) {
	cfg.Privacy.ConsentGiven = false

	path, err := Path()
	if err != nil {
		return cfg, err
	}
	if err := Save(path, cfg); err != nil {
		return cfg, err
	}
	recordConsentEvent(consent.ActionRevoked, now)
	return cfg, nil
}

// LedgerPath returns the path to the SQLite consent ledger database,
// alongside config.toml in the same configuration directory.
func LedgerPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "consent.db"), nil
}

// recordConsentEvent best-effort appends a grant/revoke action to the
// ledger. Failures are logged, never returned: the authoritative state is
// config.toml's privacy.consent_given, the ledger is an audit trail on top.
func recordConsentEvent(action consent.Action, now time.Time) {
	path, err := LedgerPath()
	if err != nil {
		log.WarningLog.Printf("consent ledger: resolve path: %v", err)
		return
	}
	ledger, err := consent.Open(path)
	if err != nil {
		log.WarningLog.Printf("consent ledger: open: %v", err)
		return
	}
	defer ledger.Close()

	if err := ledger.Record(action, now); err != nil {
		log.WarningLog.Printf("consent ledger: record: %v", err)
	}
}

const maskedSecret = "***"

func maskURLAuth(rawURL string) string {
	schemeEnd := strings.Index(rawURL, "://")
	if schemeEnd == -1 {
		return rawURL
	}
	rest := rawURL[schemeEnd+3:]
	at := strings.Index(rest, "@")
	if at <= 0 {
		return rawURL
	}
	return rawURL[:schemeEnd+3] + maskedSecret + rest[at:]
}

func maskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	prefixLen := 8
	if len(key) < prefixLen {
		prefixLen = len(key)
	}
	return key[:prefixLen] + maskedSecret
}

// Show renders cfg as a human-readable report, masking secrets the way the
// original tool's `config show` command did.
func Show(cfg Config, path string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Config file: %s\n\n", path)

	fmt.Fprintf(&b, "redis_url: %s\n", maskURLAuth(cfg.RedisURL))
	if cfg.MinZellijVersion != "" {
		fmt.Fprintf(&b, "min_zellij_version: %s\n", cfg.MinZellijVersion)
	} else {
		fmt.Fprintf(&b, "min_zellij_version: (none, default)\n")
	}
	fmt.Fprintf(&b, "telemetry_enabled: %t\n", cfg.TelemetryEnabled)

	fmt.Fprintf(&b, "\n[llm]\n")
	fmt.Fprintf(&b, "  provider: %s\n", cfg.LLM.Provider)
	fmt.Fprintf(&b, "  model: %s\n", cfg.LLM.Model)
	fmt.Fprintf(&b, "  max_tokens: %d\n", cfg.LLM.MaxTokens)
	if cfg.LLM.AnthropicAPIKey != "" {
		fmt.Fprintf(&b, "  anthropic_api_key: %s\n", maskAPIKey(cfg.LLM.AnthropicAPIKey))
	}
	if cfg.LLM.OpenAIAPIKey != "" {
		fmt.Fprintf(&b, "  openai_api_key: %s\n", maskAPIKey(cfg.LLM.OpenAIAPIKey))
	}
	if cfg.LLM.OllamaURL != "" {
		fmt.Fprintf(&b, "  ollama_url: %s\n", cfg.LLM.OllamaURL)
	}

	fmt.Fprintf(&b, "\n[privacy]\n")
	consentWord := "no"
	if cfg.Privacy.ConsentGiven {
		consentWord = "yes"
	}
	fmt.Fprintf(&b, "  consent_given: %s\n", consentWord)
	if cfg.Privacy.ConsentGivenAt != nil {
		fmt.Fprintf(&b, "  consent_given_at: %s\n", *cfg.Privacy.ConsentGivenAt)
	}

	fmt.Fprintf(&b, "\n[display]\n")
	fmt.Fprintf(&b, "  show_last_intent: %t\n", cfg.Display.ShowLastIntent)

	fmt.Fprintf(&b, "\n[bloodbank]\n")
	fmt.Fprintf(&b, "  enabled: %t\n", cfg.Bloodbank.Enabled)
	fmt.Fprintf(&b, "  amqp_url: %s\n", maskURLAuth(cfg.Bloodbank.AMQPURL))
	fmt.Fprintf(&b, "  exchange: %s\n", cfg.Bloodbank.Exchange)
	fmt.Fprintf(&b, "  routing_key_prefix: %s\n", cfg.Bloodbank.RoutingKeyPrefix)

	fmt.Fprintf(&b, "\n[tab]\n")
	fmt.Fprintf(&b, "  naming_pattern: %s\n", cfg.Tab.NamingPattern)

	return b.String()
}

// settableKeys whitelists the dotted keys `config set` accepts, mirroring
// the original tool's per-section validation.
var settableKeys = map[string]bool{
	"redis_url":                    true,
	"min_zellij_version":           true,
	"telemetry_enabled":            true,
	"llm.provider":                 true,
	"llm.anthropic_api_key":        true,
	"llm.openai_api_key":           true,
	"llm.ollama_url":               true,
	"llm.model":                    true,
	"llm.max_tokens":               true,
	"display.show_last_intent":     true,
	"bloodbank.enabled":            true,
	"bloodbank.amqp_url":           true,
	"bloodbank.exchange":           true,
	"bloodbank.routing_key_prefix": true,
	"tab.naming_pattern":           true,
}

// SetValue validates key against the settable-key whitelist, applies value
// to cfg, persists the result, and returns the previous value (if any) so
// callers can report what changed.
func SetValue(cfg Config, key, value string) (Config, *string, error) {
	if !settableKeys[key] {
		return cfg, nil, fmt.Errorf("unknown or read-only config key %q", key)
	}

	var previous string

	switch key {
	case "redis_url":
		if !strings.HasPrefix(value, "redis://") && !strings.HasPrefix(value, "rediss://") {
			return cfg, nil, fmt.Errorf("redis_url must start with redis:// or rediss://")
		}
		previous = cfg.RedisURL
		cfg.RedisURL = value
	case "min_zellij_version":
		previous = cfg.MinZellijVersion
		cfg.MinZellijVersion = value
	case "telemetry_enabled":
		b, err := parseBool(value)
		if err != nil {
			return cfg, nil, err
		}
		previous = strconv.FormatBool(cfg.TelemetryEnabled)
		cfg.TelemetryEnabled = b
	case "llm.provider":
		switch value {
		case "none", "anthropic", "openai", "ollama":
		default:
			return cfg, nil, fmt.Errorf("llm.provider must be one of none, anthropic, openai, ollama")
		}
		previous = cfg.LLM.Provider
		cfg.LLM.Provider = value
	case "llm.anthropic_api_key":
		previous = cfg.LLM.AnthropicAPIKey
		cfg.LLM.AnthropicAPIKey = value
	case "llm.openai_api_key":
		previous = cfg.LLM.OpenAIAPIKey
		cfg.LLM.OpenAIAPIKey = value
	case "llm.ollama_url":
		previous = cfg.LLM.OllamaURL
		cfg.LLM.OllamaURL = value
	case "llm.model":
		previous = cfg.LLM.Model
		cfg.LLM.Model = value
	case "llm.max_tokens":
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return cfg, nil, fmt.Errorf("llm.max_tokens must be a positive integer: %w", err)
		}
		previous = strconv.Itoa(cfg.LLM.MaxTokens)
		cfg.LLM.MaxTokens = int(n)
	case "display.show_last_intent":
		b, err := parseBool(value)
		if err != nil {
			return cfg, nil, err
		}
		previous = strconv.FormatBool(cfg.Display.ShowLastIntent)
		cfg.Display.ShowLastIntent = b
	case "bloodbank.enabled":
		b, err := parseBool(value)
		if err != nil {
			return cfg, nil, err
		}
		previous = strconv.FormatBool(cfg.Bloodbank.Enabled)
		cfg.Bloodbank.Enabled = b
	case "bloodbank.amqp_url":
		if !strings.HasPrefix(value, "amqp://") && !strings.HasPrefix(value, "amqps://") {
			return cfg, nil, fmt.Errorf("bloodbank.amqp_url must start with amqp:// or amqps://")
		}
		previous = cfg.Bloodbank.AMQPURL
		cfg.Bloodbank.AMQPURL = value
	case "bloodbank.exchange":
		previous = cfg.Bloodbank.Exchange
		cfg.Bloodbank.Exchange = value
	case "bloodbank.routing_key_prefix":
		previous = cfg.Bloodbank.RoutingKeyPrefix
		cfg.Bloodbank.RoutingKeyPrefix = value
	case "tab.naming_pattern":
		if _, err := regexp.Compile(value); err != nil {
			return cfg, nil, fmt.Errorf("tab.naming_pattern is not a valid regexp: %w", err)
		}
		previous = cfg.Tab.NamingPattern
		cfg.Tab.NamingPattern = value
	}

	path, err := Path()
	if err != nil {
		return cfg, nil, err
	}
	if err := Save(path, cfg); err != nil {
		return cfg, nil, err
	}

	return cfg, &previous, nil
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "true", "yes":
		return true, nil
	case "false", "no":
		return false, nil
	default:
		return false, fmt.Errorf("expected true/false or yes/no, got %q", value)
	}
}
