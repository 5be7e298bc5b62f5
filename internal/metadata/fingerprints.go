// SPDX-License-Identifier: MIT

package metadata

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/renameio/v2"
)

// FingerprintLedger tracks the payload digest last seen per show reference,
// persisted at <cache_dir>/state/fingerprints.json. Digest changes signal
// that previously linked destinations may be stale. Safe for concurrent
// use; sports are loaded in parallel.
type FingerprintLedger struct {
	path string

	mu      sync.Mutex
	digests map[string]string
}

// LoadFingerprintLedger reads the ledger, starting empty when the file is
// missing or unreadable.
func LoadFingerprintLedger(cacheDir string) (*FingerprintLedger, error) {
	dir := filepath.Join(cacheDir, "state")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	ledger := &FingerprintLedger{
		path:    filepath.Join(dir, "fingerprints.json"),
		digests: make(map[string]string),
	}
	raw, err := os.ReadFile(ledger.path) // #nosec G304 -- path under cache dir
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ledger, nil
		}
		return nil, fmt.Errorf("read fingerprint ledger: %w", err)
	}
	if err := json.Unmarshal(raw, &ledger.digests); err != nil {
		// A corrupt ledger only costs one extra reconcile pass.
		ledger.digests = make(map[string]string)
	}
	return ledger, nil
}

// Changed reports whether the digest for showRef differs from the last
// recorded one. An empty digest never counts as a change.
func (l *FingerprintLedger) Changed(showRef, digest string) bool {
	if digest == "" {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	prev, ok := l.digests[showRef]
	return ok && prev != digest
}

// Record stores the digest for showRef in memory. Call Save to persist.
func (l *FingerprintLedger) Record(showRef, digest string) {
	if digest == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.digests[showRef] = digest
}

// Save atomically persists the ledger.
func (l *FingerprintLedger) Save() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	raw, err := json.MarshalIndent(l.digests, "", "  ")
	if err != nil {
		return fmt.Errorf("encode fingerprint ledger: %w", err)
	}
	if err := renameio.WriteFile(l.path, raw, 0o640); err != nil {
		return fmt.Errorf("write fingerprint ledger: %w", err)
	}
	return nil
}
