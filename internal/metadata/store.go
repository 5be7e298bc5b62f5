// SPDX-License-Identifier: MIT

package metadata

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"

	applog "github.com/sportarr/sportarr/internal/log"
)

// ErrCacheCorrupt marks cache entries whose payload digest does not match.
var ErrCacheCorrupt = errors.New("metadata cache entry corrupt")

// cacheEntry is the on-disk cache record. Entries are content addressed by
// the show reference fingerprint and carry a payload digest for verification.
type cacheEntry struct {
	ShowRef       string          `json:"show_ref"`
	FetchedAt     time.Time       `json:"fetched_at"`
	PayloadDigest string          `json:"payload_digest"`
	Payload       json.RawMessage `json:"payload"`
}

// Store is a TTL metadata cache over a Provider. Entries live under
// <dir>/metadata/<fingerprint>.json; stale entries are served when the
// provider cannot be reached.
type Store struct {
	dir      string
	provider Provider
	ttl      time.Duration
	stats    *FetchStats
	logger   zerolog.Logger

	now func() time.Time
}

// NewStore creates the cache directory and returns a store.
func NewStore(cacheDir string, provider Provider, ttl time.Duration) (*Store, error) {
	dir := filepath.Join(cacheDir, "metadata")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create metadata cache dir: %w", err)
	}
	return &Store{
		dir:      dir,
		provider: provider,
		ttl:      ttl,
		stats:    &FetchStats{},
		logger:   applog.WithComponent("metadata.store"),
		now:      time.Now,
	}, nil
}

// Stats returns the store's fetch counters.
func (s *Store) Stats() *FetchStats { return s.stats }

// Get returns the normalized show for showRef and whether the payload was
// served stale. Fresh cache entries are served directly; expired entries
// trigger a refetch, falling back to the stale entry when the provider
// fails with a retryable error.
func (s *Store) Get(ctx context.Context, sportID, showRef string, sessionAliases map[string][]string) (*Show, bool, error) {
	entry, err := s.readEntry(showRef)
	if err == nil && s.now().Sub(entry.FetchedAt) < s.ttl {
		s.stats.CacheHit()
		show, err := s.decode(sportID, entry.Payload, sessionAliases)
		return show, false, err
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn().
			Str("event", "metadata.cache.invalid").
			Str("show_ref", showRef).
			Err(err).
			Msg("discarding unreadable cache entry")
		entry = nil
	}

	payload, fetchErr := s.provider.Fetch(ctx, showRef)
	if fetchErr != nil {
		if entry != nil && !errors.Is(fetchErr, ErrNotFound) && !errors.Is(fetchErr, ErrAuthFailure) {
			s.stats.StaleServed()
			s.logger.Warn().
				Str("event", "metadata.cache.stale_accept").
				Str("show_ref", showRef).
				Time("fetched_at", entry.FetchedAt).
				Err(fetchErr).
				Msg("provider unreachable, serving stale metadata")
			show, err := s.decode(sportID, entry.Payload, sessionAliases)
			return show, true, err
		}
		s.stats.FetchFailure()
		return nil, false, fetchErr
	}
	s.stats.FetchSuccess()

	if err := s.writeEntry(showRef, payload); err != nil {
		// A failed cache write is not fatal; the fetched payload is good.
		s.logger.Warn().
			Str("event", "metadata.cache.write_failed").
			Str("show_ref", showRef).
			Err(err).
			Msg("could not persist metadata cache entry")
	}
	show, err := s.decode(sportID, payload, sessionAliases)
	return show, false, err
}

// PayloadDigest returns the digest of the currently cached payload for
// showRef, or "" when no valid entry exists. Used for change detection.
func (s *Store) PayloadDigest(showRef string) string {
	entry, err := s.readEntry(showRef)
	if err != nil {
		return ""
	}
	return entry.PayloadDigest
}

func (s *Store) decode(sportID string, payload []byte, sessionAliases map[string][]string) (*Show, error) {
	raw, err := DecodeRaw(payload)
	if err != nil {
		return nil, err
	}
	return Normalize(sportID, raw, sessionAliases)
}

func (s *Store) entryPath(showRef string) string {
	digest := sha256.Sum256([]byte(showRef))
	return filepath.Join(s.dir, hex.EncodeToString(digest[:])+".json")
}

func (s *Store) readEntry(showRef string) (*cacheEntry, error) {
	raw, err := os.ReadFile(s.entryPath(showRef)) // #nosec G304 -- path derived from digest
	if err != nil {
		return nil, err
	}
	var entry cacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheCorrupt, err)
	}
	digest := sha256.Sum256(entry.Payload)
	if hex.EncodeToString(digest[:]) != entry.PayloadDigest {
		return nil, fmt.Errorf("%w: payload digest mismatch", ErrCacheCorrupt)
	}
	return &entry, nil
}

func (s *Store) writeEntry(showRef string, payload []byte) error {
	digest := sha256.Sum256(payload)
	entry := cacheEntry{
		ShowRef:       showRef,
		FetchedAt:     s.now().UTC(),
		PayloadDigest: hex.EncodeToString(digest[:]),
		Payload:       payload,
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := renameio.WriteFile(s.entryPath(showRef), raw, 0o640); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}
