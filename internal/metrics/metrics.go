package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// FXResolutions counts resolved quotes by provenance.
	FXResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bourselens_fx_resolutions_total",
			Help: "FX quotes resolved, by source.",
		},
		[]string{"mode", "source"},
	)

	// FXSourceFailures counts live source lookups that failed and advanced the fallback chain.
	FXSourceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bourselens_fx_source_failures_total",
			Help: "Live FX source lookups that failed.",
		},
		[]string{"provider"},
	)

	FXSourceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bourselens_fx_source_duration_seconds",
			Help:    "Latency of live FX source lookups.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	ReportsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bourselens_reports_generated_total",
			Help: "Report generations, by outcome.",
		},
		[]string{"outcome"},
	)

	ReportDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bourselens_report_duration_seconds",
			Help:    "Wall time of one report generation.",
			Buckets: prometheus.DefBuckets,
		},
	)

	// NAFields counts USD fields that came out as N/A.
	NAFields = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bourselens_na_fields_total",
			Help: "Converted USD fields left as N/A, by field.",
		},
		[]string{"field"},
	)
)

// Handler exposes the default registry.
func Handler() http.Handler { return promhttp.Handler() }
