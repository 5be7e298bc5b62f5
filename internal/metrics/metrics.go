// SPDX-License-Identifier: MIT

// Package metrics exposes Prometheus counters for pass activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PassesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sportarr",
		Name:      "passes_total",
		Help:      "Completed processing passes by trigger reason.",
	}, []string{"reason"})

	FilesLinked = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sportarr",
		Name:      "files_linked_total",
		Help:      "Files materialized at their destination, by sport.",
	}, []string{"sport"})

	FilesSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sportarr",
		Name:      "files_skipped_total",
		Help:      "Files skipped during a pass, by reason.",
	}, []string{"reason"})

	FilesFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sportarr",
		Name:      "files_failed_total",
		Help:      "Files that failed matching or linking, by reason.",
	}, []string{"reason"})

	MetadataFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sportarr",
		Name:      "metadata_fetches_total",
		Help:      "Metadata provider fetches by outcome.",
	}, []string{"outcome"})

	PassDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sportarr",
		Name:      "pass_duration_seconds",
		Help:      "Wall-clock duration of a full pass.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	})
)
