// SPDX-License-Identifier: MIT

// Package trace persists per-file match diagnostics as JSON artifacts
// under the cache directory, one directory per pass.
package trace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/renameio/v2"

	"github.com/sportarr/sportarr/internal/fsutil"
)

// FileTrace records what happened to one source file during a pass.
type FileTrace struct {
	Source        string            `json:"source"`
	SportID       string            `json:"sport_id,omitempty"`
	Step          string            `json:"step"` // filter | match | build | link
	Outcome       string            `json:"outcome"`
	PatternID     string            `json:"pattern_id,omitempty"`
	Groups        map[string]string `json:"groups,omitempty"`
	Score         float64           `json:"score,omitempty"`
	Destination   string            `json:"destination,omitempty"`
	FailureKind   string            `json:"failure_kind,omitempty"`
	FailureDetail string            `json:"failure_detail,omitempty"`
	At            time.Time         `json:"at"`
}

// Writer persists trace artifacts for one pass. A nil Writer is a no-op.
type Writer struct {
	dir string
}

// NewWriter creates cache_dir/traces/<passID>/ and returns a writer, or
// nil when tracing is disabled.
func NewWriter(cacheDir, passID string, enabled bool) (*Writer, error) {
	if !enabled {
		return nil, nil
	}
	dir := filepath.Join(cacheDir, "traces", passID)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create trace dir: %w", err)
	}
	return &Writer{dir: dir}, nil
}

// Write persists one file trace atomically.
func (w *Writer) Write(t FileTrace) error {
	if w == nil {
		return nil
	}
	raw, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("encode trace: %w", err)
	}
	name := fsutil.Slugify(filepath.Base(t.Source)) + ".json"
	if err := renameio.WriteFile(filepath.Join(w.dir, name), raw, 0o640); err != nil {
		return fmt.Errorf("write trace: %w", err)
	}
	return nil
}

// Prune keeps the newest keep pass directories under cache_dir/traces.
func Prune(cacheDir string, keep int) error {
	if keep <= 0 {
		return nil
	}
	root := filepath.Join(cacheDir, "traces")
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	type dirInfo struct {
		name string
		mod  time.Time
	}
	var dirs []dirInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		dirs = append(dirs, dirInfo{name: entry.Name(), mod: info.ModTime()})
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].mod.After(dirs[j].mod) })
	for _, dir := range dirs[min(keep, len(dirs)):] {
		if err := os.RemoveAll(filepath.Join(root, dir.name)); err != nil {
			return err
		}
	}
	return nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
