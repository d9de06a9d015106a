package domain

import "time"

// ChainStatus is the aggregate health of all endpoints of one chain.
type ChainStatus string

const (
	ChainHealthy  ChainStatus = "healthy"
	ChainDegraded ChainStatus = "degraded"
	ChainDown     ChainStatus = "down"
)

// CongestionLevel is a coarse classification of network load derived
// from gas price and average response time.
type CongestionLevel string

const (
	CongestionLow    CongestionLevel = "low"
	CongestionMedium CongestionLevel = "medium"
	CongestionHigh   CongestionLevel = "high"
)

// GasTrend describes the direction of recent gas price movement.
type GasTrend string

const (
	GasTrendRising  GasTrend = "rising"
	GasTrendFalling GasTrend = "falling"
	GasTrendStable  GasTrend = "stable"
)

// NetworkMetrics holds chain-wide measurements for one snapshot.
type NetworkMetrics struct {
	AvgResponseTimeMs int64    `json:"avg_response_time_ms"`
	TxSuccessRatePct  float64  `json:"tx_success_rate_pct"`
	AvgBlockTimeSec   float64  `json:"avg_block_time_sec"`
	GasPriceTrend     GasTrend `json:"gas_price_trend"`
	LastBlockNumber   uint64   `json:"last_block_number"`
}

// NetworkHealthSnapshot is the aggregate view for one chain at one
// point in time. Snapshots are immutable once returned; the cache
// replaces them wholesale, never mutates one in place.
type NetworkHealthSnapshot struct {
	ChainID         ChainID         `json:"chain_id"`
	Status          ChainStatus     `json:"status"`
	CongestionLevel CongestionLevel `json:"congestion_level"`
	Metrics         NetworkMetrics  `json:"metrics"`
	Endpoints       []Endpoint      `json:"endpoints"`
	CapturedAt      time.Time       `json:"captured_at"`
}

// AggregateStatus derives the chain status from an endpoint pool:
// healthy when every endpoint is healthy, down when none are, degraded
// otherwise.
func AggregateStatus(endpoints []*Endpoint) ChainStatus {
	if len(endpoints) == 0 {
		return ChainDown
	}
	healthy := 0
	for _, ep := range endpoints {
		if ep.Status == EndpointHealthy {
			healthy++
		}
	}
	switch healthy {
	case len(endpoints):
		return ChainHealthy
	case 0:
		return ChainDown
	default:
		return ChainDegraded
	}
}
