// SPDX-License-Identifier: MIT

package metadata

import (
	"sync/atomic"

	"github.com/sportarr/sportarr/internal/metrics"
)

// FetchStats counts cache and provider outcomes. Every outcome feeds both
// the status endpoint snapshot and the Prometheus fetch counter.
type FetchStats struct {
	cacheHits      atomic.Int64
	fetchSuccesses atomic.Int64
	fetchFailures  atomic.Int64
	staleServed    atomic.Int64
}

func (s *FetchStats) CacheHit() {
	s.cacheHits.Add(1)
	metrics.MetadataFetches.WithLabelValues("cache_hit").Inc()
}

func (s *FetchStats) FetchSuccess() {
	s.fetchSuccesses.Add(1)
	metrics.MetadataFetches.WithLabelValues("fetch_success").Inc()
}

func (s *FetchStats) FetchFailure() {
	s.fetchFailures.Add(1)
	metrics.MetadataFetches.WithLabelValues("fetch_failure").Inc()
}

func (s *FetchStats) StaleServed() {
	s.staleServed.Add(1)
	metrics.MetadataFetches.WithLabelValues("stale_served").Inc()
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	CacheHits      int64 `json:"cache_hits"`
	FetchSuccesses int64 `json:"fetch_successes"`
	FetchFailures  int64 `json:"fetch_failures"`
	StaleServed    int64 `json:"stale_served"`
}

// Snapshot returns the current counter values.
func (s *FetchStats) Snapshot() Snapshot {
	return Snapshot{
		CacheHits:      s.cacheHits.Load(),
		FetchSuccesses: s.fetchSuccesses.Load(),
		FetchFailures:  s.fetchFailures.Load(),
		StaleServed:    s.staleServed.Load(),
	}
}
