// SPDX-License-Identifier: MIT

package fingerprint

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hexPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

func TestTextIsStableLowercaseHex(t *testing.T) {
	first := Text("formula1-2025")
	second := Text("formula1-2025")
	assert.Equal(t, first, second)
	assert.Regexp(t, hexPattern, first)
	assert.NotEqual(t, first, Text("formula1-2026"))
}

func TestFileMatchesTextDigest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "release.mkv")
	require.NoError(t, os.WriteFile(path, []byte("payload bytes"), 0o644))

	got, err := File(path)
	require.NoError(t, err)
	assert.Equal(t, Text("payload bytes"), got)
}

func TestFileMissingReturnsNotFound(t *testing.T) {
	_, err := File(filepath.Join(t.TempDir(), "missing.mkv"))
	require.ErrorIs(t, err, ErrNotFound)
}
