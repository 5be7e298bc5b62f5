// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const minimalConfig = `
source_dir: /data/source
destination_dir: /data/library
cache_dir: /data/cache
sports:
  - id: formula1_2025
    show_ref: formula-1-2025
    pattern_sets: [motorsport_round]
`

func TestLoadMinimalConfig(t *testing.T) {
	cfg, err := NewLoader(writeConfig(t, minimalConfig)).Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/source", cfg.SourceDir)
	assert.Equal(t, LinkModeHardlink, cfg.LinkMode)
	assert.True(t, cfg.SkipExisting)
	assert.Equal(t, float64(5), cfg.Watch.DebounceSeconds)

	require.Len(t, cfg.Sports, 1)
	sport := cfg.Sports[0]
	assert.Equal(t, "formula1_2025", sport.Name) // defaults to id
	assert.True(t, sport.IsEnabled())
	assert.Equal(t, defaultExtensions, sport.SourceExtensions)
	require.NotEmpty(t, sport.Patterns, "pattern set should expand into rules")
	assert.Equal(t, SeasonByRound, sport.Patterns[0].SeasonSelector.Mode)
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv(envSourceDir, "/env/source")
	t.Setenv(envDryRun, "true")
	t.Setenv(envLinkMode, "symlink")

	cfg, err := NewLoader(writeConfig(t, minimalConfig)).Load()
	require.NoError(t, err)
	assert.Equal(t, "/env/source", cfg.SourceDir)
	assert.True(t, cfg.DryRun)
	assert.Equal(t, LinkModeSymlink, cfg.LinkMode)
}

func TestValidateRejectsDuplicateSportID(t *testing.T) {
	body := minimalConfig + `
  - id: formula1_2025
    show_ref: formula-1-2025
`
	_, err := NewLoader(writeConfig(t, body)).Load()
	require.ErrorIs(t, err, ErrDuplicateSportID)
}

func TestValidateRejectsUnknownPatternSet(t *testing.T) {
	body := `
source_dir: /s
destination_dir: /d
cache_dir: /c
sports:
  - id: x
    show_ref: x-2025
    pattern_sets: [does_not_exist]
`
	_, err := NewLoader(writeConfig(t, body)).Load()
	require.ErrorIs(t, err, ErrUnknownPatternSet)
}

func TestValidateRejectsMissingDirs(t *testing.T) {
	_, err := NewLoader(writeConfig(t, "dry_run: true\n")).Load()
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidateRejectsBadLinkMode(t *testing.T) {
	body := `
source_dir: /s
destination_dir: /d
cache_dir: /c
link_mode: reflink
`
	_, err := NewLoader(writeConfig(t, body)).Load()
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestPatternRuleDefaults(t *testing.T) {
	body := `
source_dir: /s
destination_dir: /d
cache_dir: /c
sports:
  - id: indycar
    show_ref: indycar-2025
    file_patterns:
      - regex: '(?i)indycar.*round(?P<round>\d+)'
`
	cfg, err := NewLoader(writeConfig(t, body)).Load()
	require.NoError(t, err)
	rule := cfg.Sports[0].Patterns[0]
	assert.Equal(t, 100, rule.Priority)
	assert.Equal(t, SeasonByRound, rule.SeasonSelector.Mode)
	assert.Equal(t, "session", rule.EpisodeSelector.Group)
}
