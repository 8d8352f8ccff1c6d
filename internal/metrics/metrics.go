// SPDX-License-Identifier: MIT

// Package metrics exposes prometheus instrumentation for the upload and
// commit paths.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UploadsStarted counts upload submissions entering the orchestrator.
	UploadsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "snapcast",
		Name:      "uploads_started_total",
		Help:      "Total upload submissions started",
	})

	// UploadsCompleted counts submissions that produced a video record.
	UploadsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "snapcast",
		Name:      "uploads_completed_total",
		Help:      "Total upload submissions that completed successfully",
	})

	// UploadsFailed counts failed submissions by failure kind.
	UploadsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "snapcast",
		Name:      "uploads_failed_total",
		Help:      "Total failed upload submissions",
	}, []string{"kind"})

	// CommitsTotal counts metadata commits by outcome.
	CommitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "snapcast",
		Name:      "commits_total",
		Help:      "Total metadata commit attempts",
	}, []string{"outcome"})

	// RateLimitRejections counts commit attempts denied by the fixed window.
	RateLimitRejections = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "snapcast",
		Name:      "ratelimit_rejections_total",
		Help:      "Total commit attempts rejected by the per-user rate limit",
	})
)
