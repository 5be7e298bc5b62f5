// SPDX-License-Identifier: MIT

package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	payload []byte
	err     error
	calls   int
}

func (f *fakeProvider) Fetch(_ context.Context, _ string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.payload, nil
}

func testPayload(t *testing.T, showTitle string) []byte {
	t.Helper()
	raw := RawShow{
		Show: showTitle,
		Seasons: []RawSeason{
			{Key: "s1", Number: 1, Title: "Round One", Episodes: []RawEpisode{
				{Number: 1, Title: "Race"},
			}},
		},
	}
	payload, err := json.Marshal(raw)
	require.NoError(t, err)
	return payload
}

func TestStoreFetchesAndCaches(t *testing.T) {
	provider := &fakeProvider{payload: testPayload(t, "Formula 1")}
	store, err := NewStore(t.TempDir(), provider, time.Hour)
	require.NoError(t, err)

	show, stale, err := store.Get(context.Background(), "f1", "formula-1-2025", nil)
	require.NoError(t, err)
	assert.False(t, stale)
	assert.Equal(t, "Formula 1", show.Title)
	assert.Equal(t, 1, provider.calls)

	// Second read within TTL hits the cache.
	_, stale, err = store.Get(context.Background(), "f1", "formula-1-2025", nil)
	require.NoError(t, err)
	assert.False(t, stale)
	assert.Equal(t, 1, provider.calls)

	snap := store.Stats().Snapshot()
	assert.Equal(t, int64(1), snap.CacheHits)
	assert.Equal(t, int64(1), snap.FetchSuccesses)
}

func TestStoreRefetchesExpiredEntries(t *testing.T) {
	provider := &fakeProvider{payload: testPayload(t, "Formula 1")}
	store, err := NewStore(t.TempDir(), provider, time.Hour)
	require.NoError(t, err)

	_, _, err = store.Get(context.Background(), "f1", "formula-1-2025", nil)
	require.NoError(t, err)

	store.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, stale, err := store.Get(context.Background(), "f1", "formula-1-2025", nil)
	require.NoError(t, err)
	assert.False(t, stale)
	assert.Equal(t, 2, provider.calls)
}

func TestStoreServesStaleOnTransientFailure(t *testing.T) {
	provider := &fakeProvider{payload: testPayload(t, "Formula 1")}
	store, err := NewStore(t.TempDir(), provider, time.Hour)
	require.NoError(t, err)

	_, _, err = store.Get(context.Background(), "f1", "formula-1-2025", nil)
	require.NoError(t, err)

	store.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	provider.err = fmt.Errorf("boom: %w", ErrTransient)

	show, stale, err := store.Get(context.Background(), "f1", "formula-1-2025", nil)
	require.NoError(t, err)
	assert.True(t, stale)
	assert.Equal(t, "Formula 1", show.Title)
	assert.Equal(t, int64(1), store.Stats().Snapshot().StaleServed)
}

func TestStoreDoesNotMaskNotFoundWithStale(t *testing.T) {
	provider := &fakeProvider{payload: testPayload(t, "Formula 1")}
	store, err := NewStore(t.TempDir(), provider, time.Hour)
	require.NoError(t, err)

	_, _, err = store.Get(context.Background(), "f1", "formula-1-2025", nil)
	require.NoError(t, err)

	store.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	provider.err = fmt.Errorf("gone: %w", ErrNotFound)

	_, _, err = store.Get(context.Background(), "f1", "formula-1-2025", nil)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStoreDiscardsCorruptEntries(t *testing.T) {
	provider := &fakeProvider{payload: testPayload(t, "Formula 1")}
	store, err := NewStore(t.TempDir(), provider, time.Hour)
	require.NoError(t, err)

	_, _, err = store.Get(context.Background(), "f1", "formula-1-2025", nil)
	require.NoError(t, err)

	path := store.entryPath("formula-1-2025")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o640))

	// Corrupt entry is discarded and refetched.
	show, _, err := store.Get(context.Background(), "f1", "formula-1-2025", nil)
	require.NoError(t, err)
	assert.Equal(t, "Formula 1", show.Title)
	assert.Equal(t, 2, provider.calls)
}

func TestFingerprintLedgerDetectsChanges(t *testing.T) {
	dir := t.TempDir()
	ledger, err := LoadFingerprintLedger(dir)
	require.NoError(t, err)

	assert.False(t, ledger.Changed("ref", "abc"), "unknown ref is not a change")
	ledger.Record("ref", "abc")
	assert.False(t, ledger.Changed("ref", "abc"))
	assert.True(t, ledger.Changed("ref", "def"))
	assert.False(t, ledger.Changed("ref", ""), "empty digest is ignored")

	require.NoError(t, ledger.Save())
	reloaded, err := LoadFingerprintLedger(dir)
	require.NoError(t, err)
	assert.True(t, reloaded.Changed("ref", "def"))
}
