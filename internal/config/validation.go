// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
)

// Configuration error kinds. All are fatal at startup.
var (
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrUnknownPatternSet = errors.New("unknown pattern set")
	ErrDuplicateSportID  = errors.New("duplicate sport id")
)

var validLinkModes = map[LinkMode]bool{
	LinkModeHardlink: true,
	LinkModeCopy:     true,
	LinkModeSymlink:  true,
}

var validSeasonModes = map[SeasonSelectorMode]bool{
	SeasonByRound:      true,
	SeasonByKey:        true,
	SeasonByTitle:      true,
	SeasonBySequential: true,
	SeasonByWeek:       true,
	SeasonByDate:       true,
}

// Validate checks the assembled configuration and expands pattern sets.
func Validate(cfg *Config) error {
	if cfg.SourceDir == "" {
		return fmt.Errorf("%w: source_dir is required", ErrInvalidConfig)
	}
	if cfg.DestinationDir == "" {
		return fmt.Errorf("%w: destination_dir is required", ErrInvalidConfig)
	}
	if cfg.CacheDir == "" {
		return fmt.Errorf("%w: cache_dir is required", ErrInvalidConfig)
	}
	if !validLinkModes[cfg.LinkMode] {
		return fmt.Errorf("%w: link_mode %q (want hardlink, copy, or symlink)", ErrInvalidConfig, cfg.LinkMode)
	}
	if cfg.Watch.DebounceSeconds < 0 {
		return fmt.Errorf("%w: watch.debounce_seconds must be >= 0", ErrInvalidConfig)
	}
	if cfg.Watch.ReconcileInterval < 0 {
		return fmt.Errorf("%w: watch.reconcile_interval must be >= 0", ErrInvalidConfig)
	}
	if cfg.Provider.MaxAttempts < 1 {
		return fmt.Errorf("%w: provider.max_attempts must be >= 1", ErrInvalidConfig)
	}

	seen := make(map[string]bool, len(cfg.Sports))
	for i := range cfg.Sports {
		sport := &cfg.Sports[i]
		if sport.ID == "" {
			return fmt.Errorf("%w: sport at index %d has no id", ErrInvalidConfig, i)
		}
		if seen[sport.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateSportID, sport.ID)
		}
		seen[sport.ID] = true

		if sport.ShowRef == "" {
			return fmt.Errorf("%w: sport %s has no show_ref", ErrInvalidConfig, sport.ID)
		}
		if sport.LinkMode != "" && !validLinkModes[sport.LinkMode] {
			return fmt.Errorf("%w: sport %s link_mode %q", ErrInvalidConfig, sport.ID, sport.LinkMode)
		}

		expanded, err := ExpandPatternSets(sport.PatternSets)
		if err != nil {
			return fmt.Errorf("sport %s: %w", sport.ID, err)
		}
		sport.Patterns = append(expanded, sport.Patterns...)

		for j := range sport.Patterns {
			rule := &sport.Patterns[j]
			if rule.Regex == "" {
				return fmt.Errorf("%w: sport %s pattern %d has no regex", ErrInvalidConfig, sport.ID, j)
			}
			if !validSeasonModes[rule.SeasonSelector.Mode] {
				return fmt.Errorf("%w: sport %s pattern %d season selector mode %q",
					ErrInvalidConfig, sport.ID, j, rule.SeasonSelector.Mode)
			}
		}
	}
	return nil
}
