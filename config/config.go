// Package config holds the agtail configuration, loaded from
// ~/.config/agtail/config.yaml. A missing file yields the zero config.
package config

//go:generate go run ../tools/schema-generator

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// WatchConfig defines settings for the live viewer.
type WatchConfig struct {
	// FollowActive automatically selects the most recently active
	// project, session and agent as new activity appears.
	FollowActive bool `yaml:"follow_active,omitempty"`

	// RescanSeconds is the hierarchy re-scan interval. 0 uses the default.
	RescanSeconds int `yaml:"rescan_seconds,omitempty"`

	// MaxEntries bounds the in-memory transcript buffer. 0 uses the default.
	MaxEntries int `yaml:"max_entries,omitempty"`
}

// DisplayConfig defines transcript presentation defaults.
type DisplayConfig struct {
	// ShowThinking expands thinking blocks instead of collapsing them.
	ShowThinking bool `yaml:"show_thinking,omitempty"`

	// ExpandTools shows full tool output instead of line-count summaries.
	ExpandTools bool `yaml:"expand_tools,omitempty"`
}

// Config is the top-level configuration structure for agtail.
type Config struct {
	// ProjectsDir overrides the transcript root (default ~/.claude/projects).
	ProjectsDir string `yaml:"projects_dir,omitempty"`

	Watch   WatchConfig   `yaml:"watch,omitempty"`
	Display DisplayConfig `yaml:"display,omitempty"`
}

// DefaultPath returns the config file location under the user's home.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "agtail", "config.yaml"), nil
}

// Load reads the config from path. An absent file is not an error.
func Load(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// LoadDefault loads from DefaultPath.
func LoadDefault() (Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return Config{}, err
	}
	return Load(path)
}
