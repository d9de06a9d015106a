package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProbesTotal tracks endpoint probes per chain, endpoint and outcome
	ProbesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rpcpulse_probes_total",
			Help: "Total number of endpoint probes",
		},
		[]string{"chain", "endpoint", "outcome"},
	)

	// ProbeLatency tracks probe latency per chain and endpoint
	ProbeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rpcpulse_probe_latency_seconds",
			Help:    "Endpoint probe latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"chain", "endpoint"},
	)

	// EndpointUp reports whether an endpoint is currently active
	EndpointUp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rpcpulse_endpoint_up",
			Help: "Whether the endpoint is active (1) or down (0)",
		},
		[]string{"chain", "endpoint"},
	)

	// SnapshotRefreshTotal tracks snapshot refreshes per chain and outcome
	SnapshotRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rpcpulse_snapshot_refresh_total",
			Help: "Total number of health snapshot refreshes",
		},
		[]string{"chain", "outcome"},
	)

	// CongestionLevel reports the congestion level per chain (0=low 1=medium 2=high)
	CongestionLevel = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rpcpulse_congestion_level",
			Help: "Estimated network congestion level (0=low 1=medium 2=high)",
		},
		[]string{"chain"},
	)

	// RecoveryAttemptsTotal tracks recovery attempts per category, action and outcome
	RecoveryAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rpcpulse_recovery_attempts_total",
			Help: "Total number of recovery action attempts",
		},
		[]string{"category", "action", "outcome"},
	)

	// DBConnectionPoolUsage reports database connection pool usage percentage
	DBConnectionPoolUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rpcpulse_db_pool_usage_percent",
			Help: "Database connection pool usage percentage",
		},
	)
)
