package health

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vietddude/rpcpulse/internal/core/domain"
	"github.com/vietddude/rpcpulse/internal/metrics"
)

// Monitor owns the endpoint records of one chain and refreshes them by
// fanning probes out across the pool. Each record has exactly one
// writer (the monitor goroutine probing it), so no cross-endpoint
// locking is needed.
type Monitor struct {
	chainID   domain.ChainID
	chainName string
	prober    *Prober
	endpoints []*domain.Endpoint
	log       *slog.Logger
}

// NewMonitor creates a monitor over an explicit endpoint pool.
func NewMonitor(chainID domain.ChainID, chainName string, prober *Prober, endpoints []*domain.Endpoint) *Monitor {
	return &Monitor{
		chainID:   chainID,
		chainName: chainName,
		prober:    prober,
		endpoints: endpoints,
		log:       slog.With("chain", chainName),
	}
}

// Endpoints returns the live endpoint records. Callers must treat them
// as read-only; the monitor is the sole writer.
func (m *Monitor) Endpoints() []*domain.Endpoint {
	return m.endpoints
}

// CheckAll probes every endpoint concurrently and applies each result
// to its record. It returns once all probes have resolved; individual
// failures never abort the batch.
func (m *Monitor) CheckAll(ctx context.Context) {
	var wg sync.WaitGroup
	for _, ep := range m.endpoints {
		wg.Add(1)
		go func(ep *domain.Endpoint) {
			defer wg.Done()
			m.checkOne(ctx, ep)
		}(ep)
	}
	wg.Wait()
}

func (m *Monitor) checkOne(ctx context.Context, ep *domain.Endpoint) {
	result := m.prober.Probe(ctx, ep)

	if result.Success {
		ep.RecordSuccess(result.Latency)
		metrics.ProbesTotal.WithLabelValues(m.chainName, ep.URL, "success").Inc()
		metrics.EndpointUp.WithLabelValues(m.chainName, ep.URL).Set(1)
	} else {
		ep.RecordFailure(result.Latency)
		metrics.ProbesTotal.WithLabelValues(m.chainName, ep.URL, "failure").Inc()
		metrics.EndpointUp.WithLabelValues(m.chainName, ep.URL).Set(0)
		m.log.Debug("Endpoint probe failed",
			"endpoint", ep.URL,
			"error_count", ep.Metrics.ErrorCount,
		)
	}
	metrics.ProbeLatency.WithLabelValues(m.chainName, ep.URL).Observe(result.Latency.Seconds())
}

// Status derives the aggregate chain status from the current records.
func (m *Monitor) Status() domain.ChainStatus {
	return domain.AggregateStatus(m.endpoints)
}

// ActiveEndpoints returns the endpoints currently eligible for use, in
// pool order.
func (m *Monitor) ActiveEndpoints() []*domain.Endpoint {
	var active []*domain.Endpoint
	for _, ep := range m.endpoints {
		if ep.IsActive {
			active = append(active, ep)
		}
	}
	return active
}
