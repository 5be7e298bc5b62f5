// SPDX-License-Identifier: MIT

package linker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sportarr/sportarr/internal/config"
)

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLinkHardlinkCreatesDestination(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "src.mkv", "payload")
	dst := filepath.Join(dir, "lib", "a", "b.mkv")

	outcome, err := New(false).Link(Request{Source: src, Destination: dst, Mode: config.LinkModeHardlink})
	require.NoError(t, err)
	assert.Equal(t, OutcomeLinked, outcome)

	same, err := sameInode(src, dst)
	require.NoError(t, err)
	assert.True(t, same)
}

func TestLinkSameContentIsNoop(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "src.mkv", "payload")
	dst := filepath.Join(dir, "dst.mkv")
	require.NoError(t, os.Link(src, dst))

	outcome, err := New(false).Link(Request{Source: src, Destination: dst, Mode: config.LinkModeHardlink})
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoop, outcome)
}

func TestLinkKeepsExistingByDefault(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "src.mkv", "new payload")
	dst := writeSource(t, dir, "dst.mkv", "old payload")

	outcome, err := New(false).Link(Request{
		Source: src, Destination: dst, Mode: config.LinkModeHardlink,
		Priority: 100, HasExistingRecord: true, ExistingPriority: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeKept, outcome)

	content, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "old payload", string(content))
}

func TestLinkHigherPriorityReplaces(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "src.mkv", "new payload")
	dst := writeSource(t, dir, "dst.mkv", "old payload")

	outcome, err := New(false).Link(Request{
		Source: src, Destination: dst, Mode: config.LinkModeHardlink,
		Priority: 10, HasExistingRecord: true, ExistingPriority: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeReplaced, outcome)

	same, err := sameInode(src, dst)
	require.NoError(t, err)
	assert.True(t, same, "replacement must be atomic and point at the source")
}

func TestLinkExactSessionBeatsFuzzy(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "src.mkv", "new payload")
	dst := writeSource(t, dir, "dst.mkv", "old payload")

	outcome, err := New(false).Link(Request{
		Source: src, Destination: dst, Mode: config.LinkModeHardlink,
		Priority: 50, SessionExact: true,
		HasExistingRecord: true, ExistingPriority: 50, ExistingSessionExact: false,
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeReplaced, outcome)
}

func TestLinkForcedOverwrite(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "src.mkv", "repack payload")
	dst := writeSource(t, dir, "dst.mkv", "old payload")

	outcome, err := New(false).Link(Request{
		Source: src, Destination: dst, Mode: config.LinkModeCopy, Overwrite: true,
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeReplaced, outcome)

	content, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "repack payload", string(content))
}

func TestLinkCopyMode(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "src.mkv", "payload")
	dst := filepath.Join(dir, "lib", "copy.mkv")

	outcome, err := New(false).Link(Request{Source: src, Destination: dst, Mode: config.LinkModeCopy})
	require.NoError(t, err)
	assert.Equal(t, OutcomeLinked, outcome)

	content, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(content))
}

func TestLinkSymlinkMode(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "src.mkv", "payload")
	dst := filepath.Join(dir, "lib", "link.mkv")

	outcome, err := New(false).Link(Request{Source: src, Destination: dst, Mode: config.LinkModeSymlink})
	require.NoError(t, err)
	assert.Equal(t, OutcomeLinked, outcome)

	target, err := os.Readlink(dst)
	require.NoError(t, err)
	assert.Equal(t, src, target)

	// Relinking the same symlink is a no-op.
	outcome, err = New(false).Link(Request{Source: src, Destination: dst, Mode: config.LinkModeSymlink})
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoop, outcome)
}

func TestLinkSourceVanished(t *testing.T) {
	dir := t.TempDir()
	_, err := New(false).Link(Request{
		Source:      filepath.Join(dir, "missing.mkv"),
		Destination: filepath.Join(dir, "dst.mkv"),
		Mode:        config.LinkModeHardlink,
	})
	require.ErrorIs(t, err, ErrSourceVanished)
}

func TestLinkNonRegularSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "release")
	require.NoError(t, os.Mkdir(src, 0o750))

	_, err := New(false).Link(Request{
		Source:      src,
		Destination: filepath.Join(dir, "dst.mkv"),
		Mode:        config.LinkModeHardlink,
	})
	require.ErrorIs(t, err, ErrSourceVanished)
}

func TestLinkDryRunTouchesNothing(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "src.mkv", "payload")
	dst := filepath.Join(dir, "lib", "dry.mkv")

	outcome, err := New(true).Link(Request{Source: src, Destination: dst, Mode: config.LinkModeHardlink})
	require.NoError(t, err)
	assert.Equal(t, OutcomeLinked, outcome)

	_, statErr := os.Stat(dst)
	assert.True(t, os.IsNotExist(statErr))
}
