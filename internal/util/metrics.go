package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SalesCommittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sales_committed_total",
		Help: "Total number of sales committed",
	})

	SalesFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sales_failed_total",
		Help: "Total number of rejected sale commits",
	}, []string{"reason"})

	SaleAmount = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sale_amount",
		Help:    "Distribution of committed sale totals",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})

	CheckoutLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_latency_seconds",
		Help:    "Latency of the sale commit pipeline",
		Buckets: prometheus.DefBuckets,
	})

	LoginAttemptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "login_attempts_total",
		Help: "Total number of login attempts",
	})

	LoginFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "login_failures_total",
		Help: "Total number of failed login attempts",
	})

	LowStockEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "low_stock_events_total",
		Help: "Total number of products driven below their minimum stock",
	})

	SnapshotSavesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snapshot_saves_total",
		Help: "Total number of state snapshots written",
	})

	SnapshotSaveFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snapshot_save_failures_total",
		Help: "Total number of failed snapshot writes",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
