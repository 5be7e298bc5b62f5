// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"strconv"
	"strings"
)

// Environment variables override file values. The set mirrors the CLI flags.
const (
	envSourceDir      = "SPORTARR_SOURCE_DIR"
	envDestinationDir = "SPORTARR_DESTINATION_DIR"
	envCacheDir       = "SPORTARR_CACHE_DIR"
	envDryRun         = "SPORTARR_DRY_RUN"
	envSkipExisting   = "SPORTARR_SKIP_EXISTING"
	envLinkMode       = "SPORTARR_LINK_MODE"
	envLogLevel       = "SPORTARR_LOG_LEVEL"
	envWatchEnabled   = "SPORTARR_WATCH"
	envProviderURL    = "SPORTARR_PROVIDER_URL"
	envProviderAPIKey = "SPORTARR_PROVIDER_API_KEY"
)

func applyEnv(cfg *Config) {
	if v := os.Getenv(envSourceDir); v != "" {
		cfg.SourceDir = v
	}
	if v := os.Getenv(envDestinationDir); v != "" {
		cfg.DestinationDir = v
	}
	if v := os.Getenv(envCacheDir); v != "" {
		cfg.CacheDir = v
	}
	if v, ok := parseBoolEnv(envDryRun); ok {
		cfg.DryRun = v
	}
	if v, ok := parseBoolEnv(envSkipExisting); ok {
		cfg.SkipExisting = v
	}
	if v := os.Getenv(envLinkMode); v != "" {
		cfg.LinkMode = LinkMode(strings.ToLower(v))
	}
	if v := os.Getenv(envLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v, ok := parseBoolEnv(envWatchEnabled); ok {
		cfg.Watch.Enabled = v
	}
	if v := os.Getenv(envProviderURL); v != "" {
		cfg.Provider.BaseURL = v
	}
	if v := os.Getenv(envProviderAPIKey); v != "" {
		cfg.Provider.APIKey = v
	}
}

func parseBoolEnv(name string) (bool, bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false, false
	}
	return v, true
}
