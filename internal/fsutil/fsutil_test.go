// SPDX-License-Identifier: MIT

package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfineRelPath(t *testing.T) {
	root := t.TempDir()

	tests := []struct {
		name    string
		target  string
		wantErr bool
	}{
		{name: "simple child", target: "Formula 1 2025/race.mkv"},
		{name: "dot segments resolve inside", target: "a/../b/file.mkv"},
		{name: "traversal", target: "../outside.mkv", wantErr: true},
		{name: "embedded traversal", target: "a/../../outside.mkv", wantErr: true},
		{name: "absolute", target: "/etc/passwd", wantErr: true},
		{name: "backslash", target: "a\\b.mkv", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConfineRelPath(root, tt.target)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			realRoot, err := filepath.EvalSymlinks(root)
			require.NoError(t, err)
			rel, err := filepath.Rel(realRoot, got)
			require.NoError(t, err)
			assert.False(t, rel == ".." || filepath.IsAbs(rel))
		})
	}
}

func TestConfineRelPathRejectsSymlinkEscape(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	require.NoError(t, os.Symlink(outside, filepath.Join(root, "leak")))

	_, err := ConfineRelPath(root, "leak/file.mkv")
	require.Error(t, err)
}

func TestSanitizeSegment(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "separators become spaces", input: "AC/DC Night", want: "AC DC Night"},
		{name: "control chars dropped", input: "Race\x00\x1fDay", want: "RaceDay"},
		{name: "whitespace collapsed", input: "  Monaco   Grand  Prix ", want: "Monaco Grand Prix"},
		{name: "acronym casing preserved", input: "NTT IndyCar Series", want: "NTT IndyCar Series"},
		{name: "trailing dots trimmed", input: "Round 5..", want: "Round 5"},
		{name: "empty stays empty", input: "   ", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeSegment(tt.input))
		})
	}
}

func TestSanitizeSegmentIsIdempotent(t *testing.T) {
	inputs := []string{"AC/DC Night", "  Monaco   Grand  Prix ", "Race\x00Day", "plain"}
	for _, in := range inputs {
		once := SanitizeSegment(in)
		assert.Equal(t, once, SanitizeSegment(once), "input %q", in)
	}
}

func TestIsRegularFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "race.mkv")
	require.NoError(t, os.WriteFile(file, []byte("payload"), 0o644))

	assert.NoError(t, IsRegularFile(file))
	assert.ErrorIs(t, IsRegularFile(dir), ErrNotRegular)
	assert.ErrorIs(t, IsRegularFile(filepath.Join(dir, "missing.mkv")), os.ErrNotExist)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "monaco-grand-prix", Slugify("Monaco Grand Prix"))
	assert.Equal(t, "formula-1-2025", Slugify("Formula 1 (2025)"))
	assert.Equal(t, "item", Slugify("!!!"))
}
