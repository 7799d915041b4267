// Package builder is the page-editing service: it owns editing sessions
// (the single live current-model reference per page), wires the mutator,
// history and auto-save pipeline together, and exposes the result over
// HTTP and MCP.
package builder

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/pagecraft/autosave"
)

// Config configures the editor service.
type Config struct {
	// DBPath is the sqlite database holding pages and components.
	DBPath string `yaml:"db_path"`

	// HistoryDepth bounds the undo stack per session.
	HistoryDepth int `yaml:"history_depth"`

	// AutoSave holds the debounce/status timing.
	AutoSave autosave.Config `yaml:"autosave"`

	// Logger for session lifecycle and edit errors.
	Logger *slog.Logger `yaml:"-"`
}

func (c *Config) defaults() {
	if c.DBPath == "" {
		c.DBPath = "data/pagecraft.db"
	}
	if c.HistoryDepth <= 0 {
		c.HistoryDepth = 50
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// LoadConfigFile reads a YAML configuration file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("builder: parse config %s: %w", path, err)
	}
	cfg.defaults()
	return &cfg, nil
}
