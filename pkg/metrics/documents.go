// Package metrics exposes the engine's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DocumentsIssued counts created documents by class.
	DocumentsIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tradedocs_documents_issued_total",
		Help: "Documents created, labelled by document class.",
	}, []string{"class"})

	// SequencerRetries counts reservation attempts that hit a lock conflict
	// and were retried.
	SequencerRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tradedocs_sequencer_retries_total",
		Help: "Document number reservations retried after a lock conflict.",
	})

	// RenderDuration observes render latency by engine and document class.
	RenderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tradedocs_render_duration_seconds",
		Help:    "Duration of document renders in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"engine", "class"})

	// RenderFailures counts renders that returned an error.
	RenderFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tradedocs_render_failures_total",
		Help: "Failed document renders, labelled by engine.",
	}, []string{"engine"})
)
