// SPDX-License-Identifier: MIT

// Package processed is the durable record of already-linked sources,
// keyed by source content fingerprint.
package processed

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	applog "github.com/sportarr/sportarr/internal/log"
)

const keyPrefix = "proc:"

// Record describes one completed link action.
type Record struct {
	SourceFingerprint string    `json:"source_fingerprint"`
	DestinationPath   string    `json:"destination_path"`
	LinkMode          string    `json:"link_mode"`
	PatternID         string    `json:"pattern_id"`
	Priority          int       `json:"priority"`
	SessionExact      bool      `json:"session_exact"`
	SportID           string    `json:"sport_id"`
	CreatedAt         time.Time `json:"created_at"`
}

// Store is a badger-backed processed cache at <cache_dir>/processed.db.
// Writes are batched per pass and committed at pass end; a corrupt store is
// recreated empty. Safe for concurrent use.
type Store struct {
	db     *badger.DB
	logger zerolog.Logger

	mu      sync.Mutex
	pending map[string]Record
}

// Open opens (or recreates) the store.
func Open(cacheDir string) (*Store, error) {
	dir := filepath.Join(cacheDir, "processed.db")
	logger := applog.WithComponent("processed")

	db, err := openBadger(dir)
	if err != nil {
		logger.Warn().
			Str("event", "processed.corrupt").
			Str("path", dir).
			Err(err).
			Msg("processed cache unreadable, starting empty")
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			return nil, fmt.Errorf("reset processed cache: %w", rmErr)
		}
		if db, err = openBadger(dir); err != nil {
			return nil, fmt.Errorf("open processed cache: %w", err)
		}
	}
	return &Store{db: db, pending: make(map[string]Record), logger: logger}, nil
}

func openBadger(dir string) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir).
		WithLogger(nil).
		WithCompactL0OnClose(true)
	return badger.Open(opts)
}

// Close flushes pending writes and closes the store.
func (s *Store) Close() error {
	if err := s.Commit(); err != nil {
		return err
	}
	return s.db.Close()
}

// Get returns the record for a source fingerprint, pending writes included.
func (s *Store) Get(fingerprint string) (*Record, bool) {
	s.mu.Lock()
	rec, ok := s.pending[fingerprint]
	s.mu.Unlock()
	if ok {
		return &rec, true
	}
	var stored Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + fingerprint))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &stored)
		})
	})
	if err != nil {
		return nil, false
	}
	return &stored, true
}

// Put queues a record for the next Commit.
func (s *Store) Put(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[rec.SourceFingerprint] = rec
}

// Commit writes all queued records in one batch.
func (s *Store) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return nil
	}
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for fingerprint, rec := range s.pending {
		raw, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode processed record: %w", err)
		}
		if err := wb.Set([]byte(keyPrefix+fingerprint), raw); err != nil {
			return fmt.Errorf("queue processed record: %w", err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("commit processed records: %w", err)
	}
	s.pending = make(map[string]Record)
	return nil
}

// PruneSport removes all records for a sport and returns them, used when
// the sport's metadata fingerprint changed and destinations may be stale.
func (s *Store) PruneSport(sportID string) ([]Record, error) {
	var stale []Record
	err := s.db.Update(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(keyPrefix)
		var keys [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			var rec Record
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				continue // skip undecodable entries
			}
			if rec.SportID != sportID {
				continue
			}
			stale = append(stale, rec)
			keys = append(keys, item.KeyCopy(nil))
		}
		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("prune processed records for %s: %w", sportID, err)
	}
	s.mu.Lock()
	for fingerprint, rec := range s.pending {
		if rec.SportID == sportID {
			stale = append(stale, rec)
			delete(s.pending, fingerprint)
		}
	}
	s.mu.Unlock()
	return stale, nil
}

// Destinations returns the recorded destination path per source
// fingerprint, pending writes included. The status endpoint serves it as
// the library inventory.
func (s *Store) Destinations() (map[string]string, error) {
	out := make(map[string]string)
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec Record
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				continue
			}
			out[strings.TrimPrefix(string(it.Item().Key()), keyPrefix)] = rec.DestinationPath
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	for fingerprint, rec := range s.pending {
		out[fingerprint] = rec.DestinationPath
	}
	s.mu.Unlock()
	return out, nil
}
