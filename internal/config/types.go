// SPDX-License-Identifier: MIT

// Package config loads and validates the application configuration with
// precedence defaults < file < environment < flags.
package config

import "time"

// LinkMode selects how a matched file is materialized at its destination.
type LinkMode string

const (
	LinkModeHardlink LinkMode = "hardlink"
	LinkModeCopy     LinkMode = "copy"
	LinkModeSymlink  LinkMode = "symlink"
)

// SeasonSelectorMode is the closed set of season resolution strategies.
type SeasonSelectorMode string

const (
	SeasonByRound      SeasonSelectorMode = "round"
	SeasonByKey        SeasonSelectorMode = "key"
	SeasonByTitle      SeasonSelectorMode = "title"
	SeasonBySequential SeasonSelectorMode = "sequential"
	SeasonByWeek       SeasonSelectorMode = "week"
	SeasonByDate       SeasonSelectorMode = "date"
)

// SeasonSelector resolves the season from regex capture groups.
type SeasonSelector struct {
	Mode          SeasonSelectorMode `yaml:"mode"`
	Group         string             `yaml:"group,omitempty"`
	Offset        int                `yaml:"offset,omitempty"`
	Mapping       map[string]int     `yaml:"mapping,omitempty"`
	Aliases       map[string]string  `yaml:"aliases,omitempty"`
	ValueTemplate string             `yaml:"value_template,omitempty"`
}

// EpisodeSelector resolves the episode within a selected season.
type EpisodeSelector struct {
	Group              string `yaml:"group,omitempty"`
	AllowTitleFallback bool   `yaml:"allow_title_fallback"`
	DefaultValue       string `yaml:"default_value,omitempty"`
}

// DestinationOverrides lets a pattern rule replace the sport's templates.
type DestinationOverrides struct {
	RootTemplate     string `yaml:"root_template,omitempty"`
	SeasonTemplate   string `yaml:"season_template,omitempty"`
	FilenameTemplate string `yaml:"filename_template,omitempty"`
}

// PatternRule is a declarative matching rule. Lower Priority wins.
type PatternRule struct {
	Regex                 string                `yaml:"regex"`
	Description           string                `yaml:"description,omitempty"`
	Priority              int                   `yaml:"priority"`
	SeasonSelector        SeasonSelector        `yaml:"season_selector"`
	EpisodeSelector       EpisodeSelector       `yaml:"episode_selector"`
	SessionAliases        map[string][]string   `yaml:"session_aliases,omitempty"`
	DestinationOverrides  *DestinationOverrides `yaml:"destination_overrides,omitempty"`
	FallbackMatchupSeason bool                  `yaml:"fallback_matchup_season,omitempty"`
}

// DestinationTemplates render the three path components of a destination.
type DestinationTemplates struct {
	RootTemplate     string `yaml:"root_template"`
	SeasonTemplate   string `yaml:"season_template"`
	FilenameTemplate string `yaml:"filename_template"`
}

// DefaultDestinationTemplates is the library layout used when a sport does
// not override it.
func DefaultDestinationTemplates() DestinationTemplates {
	return DestinationTemplates{
		RootTemplate:     "{show_title}",
		SeasonTemplate:   "{season_number:02} {season_title}",
		FilenameTemplate: "{show_title} - S{season_number:02}E{episode_number:02} - {episode_title}{suffix}",
	}
}

// Sport configures one content domain: its metadata reference, filters,
// patterns, and destination layout.
type Sport struct {
	ID               string               `yaml:"id"`
	Name             string               `yaml:"name,omitempty"`
	Enabled          *bool                `yaml:"enabled,omitempty"`
	ShowRef          string               `yaml:"show_ref"`
	SourceGlobs      []string             `yaml:"source_globs,omitempty"`
	SourceExtensions []string             `yaml:"source_extensions,omitempty"`
	PatternSets      []string             `yaml:"pattern_sets,omitempty"`
	Patterns         []PatternRule        `yaml:"file_patterns,omitempty"`
	AllowUnmatched   bool                 `yaml:"allow_unmatched,omitempty"`
	TeamAliasMap     string               `yaml:"team_alias_map,omitempty"`
	TeamAliases      map[string]string    `yaml:"team_aliases,omitempty"`
	VariantYear      int                  `yaml:"variant_year,omitempty"`
	LinkMode         LinkMode             `yaml:"link_mode,omitempty"`
	Destination      DestinationTemplates `yaml:"destination,omitempty"`
}

// IsEnabled reports whether the sport participates in processing.
// Sports are enabled unless explicitly disabled.
func (s Sport) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// WatchSettings configure the filesystem watcher.
type WatchSettings struct {
	Enabled           bool     `yaml:"enabled"`
	Paths             []string `yaml:"paths,omitempty"`
	Include           []string `yaml:"include,omitempty"`
	Ignore            []string `yaml:"ignore,omitempty"`
	DebounceSeconds   float64  `yaml:"debounce_seconds"`
	ReconcileInterval int      `yaml:"reconcile_interval"`
	StatusAddr        string   `yaml:"status_addr,omitempty"`
}

// Debounce returns the debounce window as a duration.
func (w WatchSettings) Debounce() time.Duration {
	return time.Duration(w.DebounceSeconds * float64(time.Second))
}

// Reconcile returns the reconciliation interval as a duration.
func (w WatchSettings) Reconcile() time.Duration {
	return time.Duration(w.ReconcileInterval) * time.Second
}

// NotificationTarget configures one notification sink.
type NotificationTarget struct {
	Type    string            `yaml:"type"` // "log" | "webhook"
	URL     string            `yaml:"url,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
}

// PostRunSettings configure post-pass actions.
type PostRunSettings struct {
	RefreshTriggerURL string               `yaml:"refresh_trigger,omitempty"`
	Notifications     []NotificationTarget `yaml:"notifications,omitempty"`
}

// ProviderSettings configure the metadata backend.
type ProviderSettings struct {
	BaseURL        string        `yaml:"base_url"`
	APIKey         string        `yaml:"api_key,omitempty"`
	Timeout        time.Duration `yaml:"timeout"`
	TTLHours       int           `yaml:"ttl_hours"`
	MaxAttempts    int           `yaml:"max_attempts"`
	BaseBackoff    time.Duration `yaml:"base_backoff"`
	RequestsPerSec float64       `yaml:"requests_per_sec"`
}

// TraceSettings configure per-pass JSON trace artifacts.
type TraceSettings struct {
	Enabled bool `yaml:"enabled"`
	Keep    int  `yaml:"keep,omitempty"` // number of pass directories to retain
}

// Config is the root application configuration.
type Config struct {
	SourceDir      string `yaml:"source_dir"`
	DestinationDir string `yaml:"destination_dir"`
	CacheDir       string `yaml:"cache_dir"`

	DryRun              bool     `yaml:"dry_run"`
	SkipExisting        bool     `yaml:"skip_existing"`
	LinkMode            LinkMode `yaml:"link_mode"`
	CrossDeviceFallback bool     `yaml:"cross_device_fallback"`

	LogLevel string `yaml:"log_level,omitempty"`

	Watch    WatchSettings    `yaml:"watch"`
	Provider ProviderSettings `yaml:"provider"`
	PostRun  PostRunSettings  `yaml:"post_run"`
	Trace    TraceSettings    `yaml:"trace"`

	Sports []Sport `yaml:"sports"`
}
