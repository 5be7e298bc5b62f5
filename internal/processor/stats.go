// SPDX-License-Identifier: MIT

package processor

import (
	"sync"
	"time"
)

// SportReport is the per-sport slice of a pass report.
type SportReport struct {
	Linked  int  `json:"linked"`
	Skipped int  `json:"skipped"`
	Failed  int  `json:"failed"`
	Loaded  bool `json:"metadata_loaded"`
	Stale   bool `json:"metadata_stale"`
}

// Report summarizes one pass. Reason codes key the skip and failure maps.
type Report struct {
	PassID     string                 `json:"pass_id"`
	Reason     string                 `json:"reason"`
	StartedAt  time.Time              `json:"started_at"`
	Duration   time.Duration          `json:"duration"`
	Discovered int                    `json:"discovered"`
	Linked     int                    `json:"linked"`
	Replaced   int                    `json:"replaced"`
	WouldWrite []string               `json:"would_write,omitempty"`
	Skipped    map[string]int         `json:"skipped"`
	Failed     map[string]int         `json:"failed"`
	Sports     map[string]*SportReport `json:"sports"`

	mu sync.Mutex
}

func newReport(passID, reason string) *Report {
	return &Report{
		PassID:    passID,
		Reason:    reason,
		StartedAt: time.Now().UTC(),
		Skipped:   make(map[string]int),
		Failed:    make(map[string]int),
		Sports:    make(map[string]*SportReport),
	}
}

func (r *Report) sport(id string) *SportReport {
	if _, ok := r.Sports[id]; !ok {
		r.Sports[id] = &SportReport{}
	}
	return r.Sports[id]
}

func (r *Report) addLinked(sportID string, replaced bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Linked++
	if replaced {
		r.Replaced++
	}
	if sportID != "" {
		r.sport(sportID).Linked++
	}
}

func (r *Report) addSkipped(sportID, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Skipped[reason]++
	if sportID != "" {
		r.sport(sportID).Skipped++
	}
}

func (r *Report) addFailed(sportID, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Failed[reason]++
	if sportID != "" {
		r.sport(sportID).Failed++
	}
}

func (r *Report) addWouldWrite(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.WouldWrite = append(r.WouldWrite, path)
}

// HasFailures reports whether any sport was skipped or any file failed.
func (r *Report) HasFailures() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Failed) > 0 {
		return true
	}
	for _, sport := range r.Sports {
		if !sport.Loaded {
			return true
		}
	}
	return false
}

// Summary renders the report as a flat map for notifications and the
// refresh trigger payload.
func (r *Report) Summary() map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return map[string]any{
		"pass_id":    r.PassID,
		"reason":     r.Reason,
		"discovered": r.Discovered,
		"linked":     r.Linked,
		"replaced":   r.Replaced,
		"skipped":    r.Skipped,
		"failed":     r.Failed,
		"duration":   r.Duration.String(),
	}
}
