package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Config holds application configuration.
type Config struct {
	// GeneratorURL is the base URL of the drafting service API.
	GeneratorURL string `json:"generator_url"`

	// GeneratorModel is the model name passed to the drafting service.
	GeneratorModel string `json:"generator_model"`

	// OperatorEmail is the verified identity used for MCP and CLI review
	// actions. Local callers act as this identity on the authenticated path.
	OperatorEmail string `json:"operator_email,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// If set to 1, all database access is serialized (reduces "database is locked" errors).
	// 0 means use sql.DB default (unlimited). Only set if you experience contention.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	// 0 means use sql.DB default. Typically set equal to DBMaxOpenConns.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		GeneratorURL:   "http://localhost:11434/api",
		GeneratorModel: "llama3",
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.redline.
func Load(baseDir string) (*Config, error) {
	configPath := filepath.Join(baseDir, "config.json")

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return Merge(DefaultConfig(), cfg), nil
}

// Merge overlays non-zero values from overlay onto base and returns the result.
// Neither argument is modified.
func Merge(base, overlay *Config) *Config {
	if base == nil {
		base = &Config{}
	}
	merged := *base
	if overlay == nil {
		return &merged
	}

	if strings.TrimSpace(overlay.GeneratorURL) != "" {
		merged.GeneratorURL = overlay.GeneratorURL
	}
	if strings.TrimSpace(overlay.GeneratorModel) != "" {
		merged.GeneratorModel = overlay.GeneratorModel
	}
	if strings.TrimSpace(overlay.OperatorEmail) != "" {
		merged.OperatorEmail = overlay.OperatorEmail
	}
	if overlay.DBMaxOpenConns > 0 {
		merged.DBMaxOpenConns = overlay.DBMaxOpenConns
	}
	if overlay.DBMaxIdleConns > 0 {
		merged.DBMaxIdleConns = overlay.DBMaxIdleConns
	}
	if len(overlay.DisabledTools) > 0 {
		merged.DisabledTools = append([]string(nil), overlay.DisabledTools...)
	}

	return &merged
}
