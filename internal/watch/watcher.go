// SPDX-License-Identifier: MIT

// Package watch turns raw filesystem events into debounced pass triggers,
// with glob filtering and forced periodic reconciliation.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/sportarr/sportarr/internal/config"
	applog "github.com/sportarr/sportarr/internal/log"
)

// TriggerReason explains why a pass was requested.
type TriggerReason string

const (
	ReasonEvents    TriggerReason = "events"
	ReasonReconcile TriggerReason = "reconcile"
)

// Trigger is one coalesced pass request.
type Trigger struct {
	Reason TriggerReason
	// Events counts the filesystem events coalesced into this trigger.
	Events int
}

// Watcher observes the configured paths and emits debounced triggers.
type Watcher struct {
	paths     []string
	include   []string
	ignore    []string
	debounce  time.Duration
	reconcile time.Duration
	logger    zerolog.Logger

	triggers chan Trigger
}

// New builds a watcher from settings. Paths default to the source dir.
func New(sourceDir string, settings config.WatchSettings) *Watcher {
	paths := settings.Paths
	if len(paths) == 0 {
		paths = []string{sourceDir}
	}
	return &Watcher{
		paths:     paths,
		include:   settings.Include,
		ignore:    settings.Ignore,
		debounce:  settings.Debounce(),
		reconcile: settings.Reconcile(),
		logger:    applog.WithComponent("watch"),
		triggers:  make(chan Trigger, 1),
	}
}

// Triggers is the coalesced pass-request stream.
func (w *Watcher) Triggers() <-chan Trigger { return w.triggers }

// Run watches until the context is cancelled. Create, write, and rename
// events for files passing the glob filters arm the debounce timer;
// the reconcile ticker fires a pass unconditionally.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	for _, path := range w.paths {
		if err := addRecursive(fsw, path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
	}

	var reconcileC <-chan time.Time
	if w.reconcile > 0 {
		ticker := time.NewTicker(w.reconcile)
		defer ticker.Stop()
		reconcileC = ticker.C
	}

	// The debounce timer is armed on the first relevant event and reset on
	// each further one; it fires only after a full quiet window.
	debounce := time.NewTimer(time.Hour)
	if !debounce.Stop() {
		<-debounce.C
	}
	defer debounce.Stop()

	pendingEvents := 0

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op.Has(fsnotify.Create) {
				// New directories must be watched for events inside them.
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = addRecursive(fsw, event.Name)
				}
			}
			if !w.relevant(event) {
				continue
			}
			pendingEvents++
			if !debounce.Stop() {
				select {
				case <-debounce.C:
				default:
				}
			}
			debounce.Reset(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().
				Str("event", "watch.error").
				Err(err).
				Msg("filesystem watcher error")

		case <-debounce.C:
			w.logger.Debug().
				Str("event", "watch.debounced").
				Int("events", pendingEvents).
				Msg("quiet window elapsed, requesting pass")
			w.send(Trigger{Reason: ReasonEvents, Events: pendingEvents})
			pendingEvents = 0

		case <-reconcileC:
			w.send(Trigger{Reason: ReasonReconcile})
		}
	}
}

// send delivers a trigger without blocking; a pending trigger already
// covers the new one.
func (w *Watcher) send(t Trigger) {
	select {
	case w.triggers <- t:
	default:
	}
}

// relevant applies operation and glob filters to an event.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.ToSlash(event.Name)
	base := filepath.Base(event.Name)
	for _, glob := range w.ignore {
		if matched, err := doublestar.Match(glob, name); err == nil && matched {
			return false
		}
		if matched, err := doublestar.Match(glob, base); err == nil && matched {
			return false
		}
	}
	if len(w.include) == 0 {
		return true
	}
	for _, glob := range w.include {
		if matched, err := doublestar.Match(glob, name); err == nil && matched {
			return true
		}
		if matched, err := doublestar.Match(glob, base); err == nil && matched {
			return true
		}
	}
	return false
}

func addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
}
