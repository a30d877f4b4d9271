package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	EntriesPosted *prometheus.CounterVec
	EntriesFailed *prometheus.CounterVec
	PostDuration  prometheus.Histogram
	EntryAmount   prometheus.Histogram
	PostErrors    *prometheus.CounterVec

	// Reversal metrics
	EntriesReversed prometheus.Counter
	ReversalErrors  *prometheus.CounterVec

	// Recharge metrics
	RechargeRequests    *prometheus.CounterVec
	AdmissionRejections prometheus.Counter

	// Query metrics
	StatsCacheHits   prometheus.Counter
	StatsCacheMisses prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBRetries     *prometheus.CounterVec
	DBConnections prometheus.Gauge

	// Outbox metrics
	EventsPublished *prometheus.CounterVec
	PublishErrors   prometheus.Counter

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec

	// Audit metrics
	AuditLogsCreated *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Ledger metrics
		EntriesPosted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletledger_entries_posted_total",
				Help: "Total number of ledger entries posted",
			},
			[]string{"transaction_type", "entry_type"},
		),
		EntriesFailed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletledger_entries_failed_total",
				Help: "Total number of FAILED ledger entries recorded",
			},
			[]string{"transaction_type"},
		),
		PostDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "walletledger_post_duration_seconds",
			Help:    "Duration of ledger post operations",
			Buckets: prometheus.DefBuckets,
		}),
		EntryAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "walletledger_entry_amount",
			Help:    "Posted entry amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),
		PostErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletledger_post_errors_total",
				Help: "Total number of ledger post errors by type",
			},
			[]string{"error_type"},
		),

		// Reversal metrics
		EntriesReversed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "walletledger_entries_reversed_total",
			Help: "Total number of ledger entries reversed",
		}),
		ReversalErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletledger_reversal_errors_total",
				Help: "Total number of reversal errors by type",
			},
			[]string{"error_type"},
		),

		// Recharge metrics
		RechargeRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletledger_recharge_requests_total",
				Help: "Recharge requests by resulting status",
			},
			[]string{"status"},
		),
		AdmissionRejections: promauto.NewCounter(prometheus.CounterOpts{
			Name: "walletledger_admission_rejections_total",
			Help: "Recharge requests rejected by the pending cap",
		}),

		// Query metrics
		StatsCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "walletledger_stats_cache_hits_total",
			Help: "Stats served from cache",
		}),
		StatsCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "walletledger_stats_cache_misses_total",
			Help: "Stats computed from the database",
		}),

		// API metrics
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "walletledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Database metrics
		DBRetries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletledger_db_retries_total",
				Help: "Transactions retried after lock contention",
			},
			[]string{"code"},
		),
		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "walletledger_db_connections",
			Help: "Current number of acquired database connections",
		}),

		// Outbox metrics
		EventsPublished: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletledger_events_published_total",
				Help: "Outbox events published",
			},
			[]string{"event_type"},
		),
		PublishErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "walletledger_publish_errors_total",
			Help: "Outbox events that failed to publish",
		}),

		// Rate limiting metrics
		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletledger_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),

		// Audit metrics
		AuditLogsCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletledger_audit_logs_total",
				Help: "Total audit logs created",
			},
			[]string{"action", "status"},
		),
	}
}
