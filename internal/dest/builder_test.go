// SPDX-License-Identifier: MIT

package dest

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sportarr/sportarr/internal/config"
	"github.com/sportarr/sportarr/internal/matcher"
	"github.com/sportarr/sportarr/internal/metadata"
)

func testMatch() (*config.Sport, *metadata.Show, *matcher.Match) {
	show := &metadata.Show{
		ID:           "formula1_2025",
		Title:        "Formula 1",
		DisplayTitle: "Formula 1",
		Seasons: []metadata.Season{{
			Key: "r5", Number: 5, Title: "Monaco Grand Prix", RoundNumber: 5, Year: 2025,
			Episodes: []metadata.Episode{{Number: 6, DisplayNumber: 6, Title: "Race"}},
		}},
	}
	sport := &config.Sport{
		ID:   "formula1_2025",
		Name: "Formula 1",
		Destination: config.DestinationTemplates{
			RootTemplate:     "{show_title} {season_year}",
			SeasonTemplate:   "{season_number:02} {season_title}",
			FilenameTemplate: "{show_title} - S{season_number:02}E{episode_number:02} - {episode_title}{suffix}",
		},
	}
	m := &matcher.Match{
		Season:    &show.Seasons[0],
		Episode:   &show.Seasons[0].Episodes[0],
		PatternID: "round",
		Priority:  50,
		Groups:    map[string]string{"round": "05", "session": "Race"},
	}
	return sport, show, m
}

func TestBuildRendersCanonicalLayout(t *testing.T) {
	sport, show, m := testMatch()
	destDir := t.TempDir()

	ctx := NewContext(sport, show, m, "Formula.1.2025.Round05.Monaco.Race.mkv")
	d, err := Build(destDir, sport, m, ctx)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("Formula 1 2025", "05 Monaco Grand Prix",
		"Formula 1 - S05E06 - Race.mkv"), d.RelPath)
	assert.Equal(t, filepath.Join(destDir, d.RelPath), d.Path)
}

func TestContextExposesCaptureGroups(t *testing.T) {
	sport, show, m := testMatch()
	ctx := NewContext(sport, show, m, "sub/Formula.1.2025.Round05.Monaco.Race.mkv")

	assert.Equal(t, "05", ctx["round"])
	assert.Equal(t, ".mkv", ctx["suffix"])
	assert.Equal(t, "mkv", ctx["extension"])
	assert.Equal(t, "Formula.1.2025.Round05.Monaco.Race", ctx["source_stem"])
	assert.Equal(t, "sub/Formula.1.2025.Round05.Monaco.Race.mkv", ctx["relative_source"])
	assert.Equal(t, "Formula 1", ctx["show_display_title"])
}

func TestBuildMissingKeyIsTemplateError(t *testing.T) {
	sport, show, m := testMatch()
	sport.Destination.FilenameTemplate = "{does_not_exist}"

	ctx := NewContext(sport, show, m, "x.mkv")
	_, err := Build(t.TempDir(), sport, m, ctx)
	require.ErrorIs(t, err, ErrTemplate)
}

func TestBuildRejectsTraversal(t *testing.T) {
	sport, show, m := testMatch()
	ctx := NewContext(sport, show, m, "x.mkv")
	ctx["show_title"] = "../../escape"
	// Sanitization flattens separators, so the segment cannot traverse.
	destDir := t.TempDir()
	d, err := Build(destDir, sport, m, ctx)
	require.NoError(t, err)
	rel, err := filepath.Rel(destDir, d.Path)
	require.NoError(t, err)
	assert.False(t, rel == ".." || filepath.IsAbs(rel) ||
		len(rel) > 2 && rel[:3] == ".."+string(filepath.Separator),
		"path %s escapes %s", d.Path, destDir)
}

func TestBuildRejectsEmptySegment(t *testing.T) {
	sport, show, m := testMatch()
	ctx := NewContext(sport, show, m, "x.mkv")
	ctx["show_title"] = "..."
	sport.Destination.RootTemplate = "{show_title}"

	_, err := Build(t.TempDir(), sport, m, ctx)
	require.ErrorIs(t, err, ErrUnsafePath)
}

func TestBuildRejectsOverlongFilename(t *testing.T) {
	sport, show, m := testMatch()
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'x'
	}
	ctx := NewContext(sport, show, m, "x.mkv")
	ctx["episode_title"] = string(long)

	_, err := Build(t.TempDir(), sport, m, ctx)
	require.ErrorIs(t, err, ErrNameTooLong)
}

func TestBuildNeverTruncatesExtension(t *testing.T) {
	sport, show, m := testMatch()
	sport.Destination.FilenameTemplate = "{episode_title}{suffix}"

	// Over the sanitizer's clamp: rejected, never silently truncated.
	ctx := NewContext(sport, show, m, "x.mkv")
	ctx["episode_title"] = strings.Repeat("x", 210)
	_, err := Build(t.TempDir(), sport, m, ctx)
	require.ErrorIs(t, err, ErrNameTooLong)

	// Under the clamp: the extension survives sanitization intact.
	ctx["episode_title"] = strings.Repeat("x", 190)
	d, err := Build(t.TempDir(), sport, m, ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(d.Filename, ".mkv"))
}

func TestBuildAppliesRuleOverrides(t *testing.T) {
	sport, show, m := testMatch()
	sport.Patterns = []config.PatternRule{{
		Regex:       ".",
		Description: "round",
		DestinationOverrides: &config.DestinationOverrides{
			FilenameTemplate: "{episode_title}{suffix}",
		},
	}}

	ctx := NewContext(sport, show, m, "x.mkv")
	d, err := Build(t.TempDir(), sport, m, ctx)
	require.NoError(t, err)
	assert.Equal(t, "Race.mkv", d.Filename)
}
