// Package metrics defines Prometheus metrics for courtsec.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "courtsec_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtsec_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtsec_errors_total",
			Help: "Total errors by type",
		},
		[]string{"type"},
	)

	CommitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtsec_commits_total",
			Help: "Change set commits by outcome",
		},
		[]string{"outcome"},
	)

	CommitDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "courtsec_commit_duration_seconds",
			Help:    "Time spent inside the write transaction of a commit",
			Buckets: prometheus.DefBuckets,
		},
	)

	AuditRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtsec_audit_records_total",
			Help: "Audit records committed by table and action",
		},
		[]string{"table", "action"},
	)

	FeedSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "courtsec_feed_subscribers",
			Help: "Connected audit feed WebSocket clients",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal, ErrorsTotal,
		CommitsTotal, CommitDuration, AuditRecordsTotal,
		FeedSubscribers,
	)
}
