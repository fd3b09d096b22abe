package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OutreachGenerations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outreach_generations_total",
			Help: "Outreach generation requests by type, channel and result",
		},
		[]string{"outreach_type", "message_type", "result"},
	)

	EnrichmentFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outreach_enrichment_failures_total",
			Help: "Best-effort enrichment fetches that failed and were skipped",
		},
		[]string{"source"},
	)

	EntriesDeleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_entries_deleted_total",
			Help: "Entries removed by admin maintenance, by deletion mode",
		},
		[]string{"mode"},
	)

	LinkPreviewLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "link_preview_lookups_total",
			Help: "Link preview resolutions by result",
		},
		[]string{"result"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Redis cache reads by result (hit, miss, corrupt, error)",
		},
		[]string{"result"},
	)
)

var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by route and status class",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"method", "route", "status"},
)
