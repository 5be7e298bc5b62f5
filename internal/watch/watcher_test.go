// SPDX-License-Identifier: MIT

package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sportarr/sportarr/internal/config"
)

func startWatcher(t *testing.T, dir string, settings config.WatchSettings) *Watcher {
	t.Helper()
	w := New(dir, settings)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	// Give the watcher time to register the root.
	time.Sleep(50 * time.Millisecond)
	return w
}

// Fifteen rapid events must coalesce into exactly one trigger, delivered
// only after a full quiet window.
func TestDebounceCoalescesEvents(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir, config.WatchSettings{DebounceSeconds: 0.3})

	for i := 0; i < 15; i++ {
		name := filepath.Join(dir, "file"+string(rune('a'+i))+".mkv")
		require.NoError(t, os.WriteFile(name, []byte("x"), 0o644))
		time.Sleep(10 * time.Millisecond)
	}
	lastEvent := time.Now()

	select {
	case trigger := <-w.Triggers():
		assert.Equal(t, ReasonEvents, trigger.Reason)
		assert.GreaterOrEqual(t, time.Since(lastEvent), 250*time.Millisecond,
			"trigger fired before the quiet window elapsed")
	case <-time.After(3 * time.Second):
		t.Fatal("no trigger within deadline")
	}

	// No second trigger follows.
	select {
	case trigger := <-w.Triggers():
		t.Fatalf("unexpected extra trigger: %+v", trigger)
	case <-time.After(500 * time.Millisecond):
	}
}

func TestReconcileFiresWithoutEvents(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir, config.WatchSettings{DebounceSeconds: 5, ReconcileInterval: 1})

	select {
	case trigger := <-w.Triggers():
		assert.Equal(t, ReasonReconcile, trigger.Reason)
	case <-time.After(3 * time.Second):
		t.Fatal("reconcile trigger never fired")
	}
}

func TestIgnoredGlobsAreDropped(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir, config.WatchSettings{
		DebounceSeconds: 0.2,
		Ignore:          []string{"*.partial"},
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "incoming.partial"), []byte("x"), 0o644))

	select {
	case trigger := <-w.Triggers():
		t.Fatalf("ignored file produced trigger: %+v", trigger)
	case <-time.After(600 * time.Millisecond):
	}
}

func TestRelevantFilters(t *testing.T) {
	w := New("/src", config.WatchSettings{
		Include: []string{"**/*.mkv"},
		Ignore:  []string{"**/*.tmp"},
	})

	tests := []struct {
		name string
		op   fsnotify.Op
		want bool
	}{
		{"/src/a/b.mkv", fsnotify.Create, true},
		{"/src/a/b.mkv", fsnotify.Write, true},
		{"/src/a/b.tmp", fsnotify.Create, false},
		{"/src/a/b.mkv", fsnotify.Chmod, false},
		{"/src/a/b.txt", fsnotify.Create, false},
	}
	for _, tt := range tests {
		got := w.relevant(fsnotify.Event{Name: tt.name, Op: tt.op})
		assert.Equal(t, tt.want, got, "%s %v", tt.name, tt.op)
	}
}
