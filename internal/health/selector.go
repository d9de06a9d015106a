package health

import "github.com/vietddude/rpcpulse/internal/core/domain"

// SelectAlternative picks the best healthy alternative to the current
// endpoint from the pool, or nil when none qualifies. Candidates must
// be healthy, active and not the current endpoint. The score favors
// low latency and high success rate; ties resolve to the earliest
// candidate in pool order, so selection is deterministic.
func SelectAlternative(current *domain.Endpoint, pool []*domain.Endpoint) *domain.Endpoint {
	var best *domain.Endpoint
	var bestScore float64

	for _, candidate := range pool {
		if current != nil && candidate.URL == current.URL {
			continue
		}
		if candidate.Status != domain.EndpointHealthy || !candidate.IsActive {
			continue
		}

		score := endpointScore(candidate)
		if best == nil || score < bestScore {
			best = candidate
			bestScore = score
		}
	}

	return best
}

// endpointScore ranks a candidate; lower is better.
func endpointScore(ep *domain.Endpoint) float64 {
	return float64(ep.Metrics.ResponseTimeMs) + (100 - ep.Metrics.SuccessRatePct)
}
