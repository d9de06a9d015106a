package domain

import "time"

type ChainID uint64

const (
	ChainIDEthereum ChainID = 1
	ChainIDPolygon  ChainID = 137
	ChainIDBase     ChainID = 8453
)

// EndpointStatus is the health state of a single RPC endpoint.
type EndpointStatus string

const (
	EndpointHealthy  EndpointStatus = "healthy"
	EndpointDegraded EndpointStatus = "degraded"
	EndpointDown     EndpointStatus = "down"
)

// EndpointMetrics holds the last-probe measurements for an endpoint.
// SuccessRatePct carries last-probe semantics: 100 after a successful
// probe, 0 after a failed one. ErrorCount accumulates across failures
// and resets to zero on success.
type EndpointMetrics struct {
	ResponseTimeMs int64     `json:"response_time_ms"`
	SuccessRatePct float64   `json:"success_rate_pct"`
	ErrorCount     int       `json:"error_count"`
	LastCheckedAt  time.Time `json:"last_checked_at"`
}

// Endpoint identifies one RPC provider for a chain. Records are created
// once from configuration and mutated in place by the health monitor on
// every probe cycle; they are never destroyed during the process lifetime.
type Endpoint struct {
	URL      string          `json:"url"`
	ChainID  ChainID         `json:"chain_id"`
	Status   EndpointStatus  `json:"status"`
	Metrics  EndpointMetrics `json:"metrics"`
	IsActive bool            `json:"is_active"`
}

// NewEndpoint creates an endpoint record in its initial healthy state.
func NewEndpoint(url string, chainID ChainID) *Endpoint {
	return &Endpoint{
		URL:     url,
		ChainID: chainID,
		Status:  EndpointHealthy,
		Metrics: EndpointMetrics{
			SuccessRatePct: 100,
		},
		IsActive: true,
	}
}

// RecordSuccess applies a successful probe result.
func (e *Endpoint) RecordSuccess(latency time.Duration) {
	e.Status = EndpointHealthy
	e.IsActive = true
	e.Metrics.ResponseTimeMs = latency.Milliseconds()
	e.Metrics.SuccessRatePct = 100
	e.Metrics.ErrorCount = 0
	e.Metrics.LastCheckedAt = time.Now()
}

// RecordFailure applies a failed probe result. A down endpoint is never
// active (the selector and cache both rely on that invariant).
func (e *Endpoint) RecordFailure(latency time.Duration) {
	e.Status = EndpointDown
	e.IsActive = false
	e.Metrics.ResponseTimeMs = latency.Milliseconds()
	e.Metrics.SuccessRatePct = 0
	e.Metrics.ErrorCount++
	e.Metrics.LastCheckedAt = time.Now()
}
