// SPDX-License-Identifier: MIT

package processed

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T, cacheDir string) *Store {
	t.Helper()
	store, err := Open(cacheDir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func record(fingerprint, sportID, dest string) Record {
	return Record{
		SourceFingerprint: fingerprint,
		DestinationPath:   dest,
		LinkMode:          "hardlink",
		PatternID:         "round",
		Priority:          50,
		SportID:           sportID,
		CreatedAt:         time.Now().UTC(),
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	store := openStore(t, t.TempDir())

	store.Put(record("abc", "f1", "/lib/a.mkv"))

	// Visible before commit.
	rec, ok := store.Get("abc")
	require.True(t, ok)
	assert.Equal(t, "/lib/a.mkv", rec.DestinationPath)

	require.NoError(t, store.Commit())
	rec, ok = store.Get("abc")
	require.True(t, ok)
	assert.Equal(t, "f1", rec.SportID)
}

func TestRecordsSurviveReopen(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	require.NoError(t, err)
	store.Put(record("abc", "f1", "/lib/a.mkv"))
	require.NoError(t, store.Close())

	reopened := openStore(t, dir)
	rec, ok := reopened.Get("abc")
	require.True(t, ok)
	assert.Equal(t, "/lib/a.mkv", rec.DestinationPath)
}

func TestGetMissing(t *testing.T) {
	store := openStore(t, t.TempDir())
	_, ok := store.Get("nope")
	assert.False(t, ok)
}

func TestPruneSport(t *testing.T) {
	store := openStore(t, t.TempDir())
	store.Put(record("a", "f1", "/lib/a.mkv"))
	store.Put(record("b", "nba", "/lib/b.mkv"))
	require.NoError(t, store.Commit())
	store.Put(record("c", "f1", "/lib/c.mkv")) // pending

	stale, err := store.PruneSport("f1")
	require.NoError(t, err)
	require.Len(t, stale, 2)

	_, ok := store.Get("a")
	assert.False(t, ok)
	_, ok = store.Get("c")
	assert.False(t, ok)
	_, ok = store.Get("b")
	assert.True(t, ok, "other sports keep their records")
}

func TestDestinationsIncludesPending(t *testing.T) {
	store := openStore(t, t.TempDir())
	store.Put(record("a", "f1", "/lib/a.mkv"))
	require.NoError(t, store.Commit())
	store.Put(record("b", "f1", "/lib/b.mkv")) // pending

	dests, err := store.Destinations()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"a": "/lib/a.mkv",
		"b": "/lib/b.mkv",
	}, dests)
}

func TestCorruptStoreStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	dbDir := filepath.Join(dir, "processed.db")
	require.NoError(t, os.MkdirAll(dbDir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dbDir, "MANIFEST"), []byte("garbage"), 0o644))

	store := openStore(t, dir)
	_, ok := store.Get("anything")
	assert.False(t, ok)
}
