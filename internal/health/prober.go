// Package health implements endpoint probing, per-endpoint health
// tracking, congestion estimation, failover selection and the cached
// chain-wide health snapshot.
package health

import (
	"context"
	"time"

	"github.com/vietddude/rpcpulse/internal/core/domain"
	"github.com/vietddude/rpcpulse/internal/infra/rpc"
)

// ProbeResult is the outcome of a single liveness probe. Failures are
// data, not errors: a failed probe still reports its time-to-failure.
type ProbeResult struct {
	Success bool
	Latency time.Duration
}

// Prober issues single liveness probes against endpoints. It holds the
// registry of raw clients keyed by endpoint URL; callers construct it
// explicitly, there is no process-wide client map.
type Prober struct {
	clients map[string]rpc.ChainClient
	timeout time.Duration
}

// NewProber creates a prober over the given URL-to-client registry.
func NewProber(clients map[string]rpc.ChainClient, timeout time.Duration) *Prober {
	return &Prober{clients: clients, timeout: timeout}
}

// Client returns the raw client for an endpoint URL, if registered.
func (p *Prober) Client(url string) (rpc.ChainClient, bool) {
	c, ok := p.clients[url]
	return c, ok
}

// Probe performs exactly one latest-block-number call against the
// endpoint and measures the elapsed time. It never returns an error;
// an unknown endpoint counts as an instant failure.
func (p *Prober) Probe(ctx context.Context, endpoint *domain.Endpoint) ProbeResult {
	client, ok := p.clients[endpoint.URL]
	if !ok {
		return ProbeResult{Success: false}
	}

	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	_, err := client.GetLatestBlockNumber(probeCtx)
	return ProbeResult{
		Success: err == nil,
		Latency: time.Since(start),
	}
}
