package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Resolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pgrds_resolutions_total",
		Help: "Total number of property resolutions, by outcome.",
	}, []string{"outcome"})

	ControlReads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pgrds_control_reads_total",
		Help: "Total number of control file reads, by outcome.",
	}, []string{"outcome"})

	CatalogLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pgrds_catalog_lookups_total",
		Help: "Total number of pg_extension version lookups, by outcome.",
	}, []string{"outcome"})

	AllowlistRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pgrds_allowlist_rejections_total",
		Help: "Total number of extensions rejected by the allowlist.",
	})

	ResolveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pgrds_resolve_duration_seconds",
		Help:    "Duration of property resolutions.",
		Buckets: prometheus.DefBuckets,
	})
)
