// Package config loads the provider/model table, failover tuning, and
// journal location a run is configured with: a tolerant YAML/JSON5
// loader over a typed struct, plus non-zero-wins merge helpers.
package config

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	json5 "github.com/yosuke-furukawa/json5/encoding/json5"
	"gopkg.in/yaml.v3"
)

// ProviderConfig is one entry in RunConfig.Providers: the credentials
// and default model for a single provider:model pair.
type ProviderConfig struct {
	APIKey       string `yaml:"api_key" json:"api_key"`
	DefaultModel string `yaml:"default_model" json:"default_model"`
	BaseURL      string `yaml:"base_url" json:"base_url"`
}

// RunConfig is the run loop's provider table and failover tuning,
// loaded from a YAML or JSON5 file: a provider table, a fallback chain,
// and the cooldown/retry knobs the failover state is constructed with.
type RunConfig struct {
	DefaultProvider string                    `yaml:"default_provider" json:"default_provider"`
	Providers       map[string]ProviderConfig `yaml:"providers" json:"providers"`
	FallbackChain   []string                  `yaml:"fallback_chain" json:"fallback_chain"`

	MaxTurns   int    `yaml:"max_turns" json:"max_turns"`
	MaxRetries uint32 `yaml:"max_retries" json:"max_retries"`
	CooldownMs int64  `yaml:"cooldown_ms" json:"cooldown_ms"`

	SessionModel string `yaml:"session_model" json:"session_model"`
	AgentModel   string `yaml:"agent_model" json:"agent_model"`
	GlobalModel  string `yaml:"global_model" json:"global_model"`

	JournalPath string `yaml:"journal_path" json:"journal_path"`
}

// DefaultRunConfig returns the baseline configuration a Runtime is
// built with absent an explicit file.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		MaxTurns:   25,
		MaxRetries: 3,
		CooldownMs: int64(60 * time.Second / time.Millisecond),
	}
}

// Load reads path (YAML by extension, JSON/JSON5 for .json/.json5) and
// decodes it onto DefaultRunConfig(), so file values layer over program
// defaults. Environment references in the file are expanded first.
func Load(path string) (RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RunConfig{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	expanded := os.ExpandEnv(string(data))

	cfg := DefaultRunConfig()
	if err := decode([]byte(expanded), path, &cfg); err != nil {
		return RunConfig{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func decode(data []byte, pathHint string, cfg *RunConfig) error {
	switch strings.ToLower(filepath.Ext(pathHint)) {
	case ".json", ".json5":
		return json5.Unmarshal(data, cfg)
	default:
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		if err := decoder.Decode(cfg); err != nil {
			return err
		}
		if err := decoder.Decode(new(struct{})); err != io.EOF {
			return fmt.Errorf("expected single document")
		}
		return nil
	}
}

// Merge layers override onto base, field by field; only a non-zero
// override wins.
func Merge(base, override RunConfig) RunConfig {
	merged := base
	if override.DefaultProvider != "" {
		merged.DefaultProvider = override.DefaultProvider
	}
	if len(override.Providers) > 0 {
		merged.Providers = override.Providers
	}
	if len(override.FallbackChain) > 0 {
		merged.FallbackChain = override.FallbackChain
	}
	if override.MaxTurns > 0 {
		merged.MaxTurns = override.MaxTurns
	}
	if override.MaxRetries > 0 {
		merged.MaxRetries = override.MaxRetries
	}
	if override.CooldownMs > 0 {
		merged.CooldownMs = override.CooldownMs
	}
	if override.SessionModel != "" {
		merged.SessionModel = override.SessionModel
	}
	if override.AgentModel != "" {
		merged.AgentModel = override.AgentModel
	}
	if override.GlobalModel != "" {
		merged.GlobalModel = override.GlobalModel
	}
	if override.JournalPath != "" {
		merged.JournalPath = override.JournalPath
	}
	return merged
}

// RuntimeOptions configures the ambient concerns around a Runtime:
// structured logging and the compaction ceiling.
type RuntimeOptions struct {
	// Logger receives runtime diagnostics. A caller who never sets this
	// gets a safe no-op logger, not a nil-panic.
	Logger *slog.Logger

	// MaxContextTokens is the ceiling NeedsCompaction checks against.
	MaxContextTokens int
}

// DefaultRuntimeOptions returns the baseline runtime options: a
// discarding logger and a conservative context window.
func DefaultRuntimeOptions() RuntimeOptions {
	return RuntimeOptions{
		Logger:           slog.New(slog.DiscardHandler),
		MaxContextTokens: 200_000,
	}
}

// MergeRuntimeOptions layers override onto base; only a non-zero
// override wins.
func MergeRuntimeOptions(base, override RuntimeOptions) RuntimeOptions {
	merged := base
	if override.Logger != nil {
		merged.Logger = override.Logger
	}
	if override.MaxContextTokens > 0 {
		merged.MaxContextTokens = override.MaxContextTokens
	}
	return merged
}
