// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader builds a Config from defaults, an optional YAML file, and the
// SPORTARR_* environment. Flag overrides are applied by the caller on the
// returned Config.
type Loader struct {
	path string
}

// NewLoader returns a loader for the given config file path. An empty path
// skips the file layer.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load applies the layers in precedence order and validates the result.
func (l *Loader) Load() (*Config, error) {
	cfg := Defaults()

	if l.path != "" {
		raw, err := os.ReadFile(l.path) // #nosec G304 -- operator-supplied path
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", l.path, err)
		}
		expanded := os.Expand(string(raw), func(key string) string {
			return os.Getenv(key)
		})
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", l.path, err)
		}
	}

	applyEnv(cfg)
	applySportDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Defaults returns the built-in configuration baseline.
func Defaults() *Config {
	return &Config{
		SkipExisting:        true,
		LinkMode:            LinkModeHardlink,
		CrossDeviceFallback: false,
		Watch: WatchSettings{
			DebounceSeconds:   5,
			ReconcileInterval: 900,
		},
		Provider: ProviderSettings{
			Timeout:        30 * time.Second,
			TTLHours:       12,
			MaxAttempts:    3,
			BaseBackoff:    500 * time.Millisecond,
			RequestsPerSec: 4,
		},
	}
}

var defaultExtensions = []string{".mkv", ".mp4", ".ts", ".m4v", ".avi"}

func applySportDefaults(cfg *Config) {
	for i := range cfg.Sports {
		sport := &cfg.Sports[i]
		if sport.Name == "" {
			sport.Name = sport.ID
		}
		if len(sport.SourceExtensions) == 0 {
			sport.SourceExtensions = append([]string(nil), defaultExtensions...)
		}
		if sport.LinkMode == "" {
			sport.LinkMode = cfg.LinkMode
		}
		if sport.Destination == (DestinationTemplates{}) {
			sport.Destination = DefaultDestinationTemplates()
		}
		for j := range sport.Patterns {
			rule := &sport.Patterns[j]
			if rule.Priority == 0 {
				rule.Priority = 100
			}
			if rule.SeasonSelector.Mode == "" {
				rule.SeasonSelector.Mode = SeasonByRound
			}
			if rule.EpisodeSelector.Group == "" {
				rule.EpisodeSelector.Group = "session"
			}
		}
	}
}
