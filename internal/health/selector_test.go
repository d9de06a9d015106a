package health

import (
	"testing"

	"github.com/vietddude/rpcpulse/internal/core/domain"
)

func poolEndpoint(url string, status domain.EndpointStatus, active bool, responseMs int64, successPct float64) *domain.Endpoint {
	ep := domain.NewEndpoint(url, domain.ChainIDEthereum)
	ep.Status = status
	ep.IsActive = active
	ep.Metrics.ResponseTimeMs = responseMs
	ep.Metrics.SuccessRatePct = successPct
	return ep
}

func TestSelectAlternative_SkipsCurrent(t *testing.T) {
	current := poolEndpoint("https://a.example.org", domain.EndpointHealthy, true, 50, 100)

	if got := SelectAlternative(current, []*domain.Endpoint{current}); got != nil {
		t.Errorf("Expected nil when pool only contains the current endpoint, got %s", got.URL)
	}
}

func TestSelectAlternative_SkipsUnhealthyAndInactive(t *testing.T) {
	current := poolEndpoint("https://a.example.org", domain.EndpointDown, false, 50, 0)
	down := poolEndpoint("https://b.example.org", domain.EndpointDown, false, 10, 0)
	inactive := poolEndpoint("https://c.example.org", domain.EndpointHealthy, false, 10, 100)
	healthy := poolEndpoint("https://d.example.org", domain.EndpointHealthy, true, 900, 100)

	got := SelectAlternative(current, []*domain.Endpoint{down, inactive, healthy})
	if got == nil || got.URL != healthy.URL {
		t.Fatalf("Expected the only healthy candidate, got %v", got)
	}
}

func TestSelectAlternative_EmptyPool(t *testing.T) {
	current := poolEndpoint("https://a.example.org", domain.EndpointDown, false, 50, 0)

	if got := SelectAlternative(current, nil); got != nil {
		t.Errorf("Expected nil for empty pool, got %s", got.URL)
	}
}

func TestSelectAlternative_PicksLowestScore(t *testing.T) {
	current := poolEndpoint("https://a.example.org", domain.EndpointDown, false, 50, 0)
	slow := poolEndpoint("https://b.example.org", domain.EndpointHealthy, true, 400, 100)
	fast := poolEndpoint("https://c.example.org", domain.EndpointHealthy, true, 30, 100)

	got := SelectAlternative(current, []*domain.Endpoint{slow, fast})
	if got == nil || got.URL != fast.URL {
		t.Fatalf("Expected the fastest candidate, got %v", got)
	}
}

func TestSelectAlternative_TieKeepsPoolOrder(t *testing.T) {
	current := poolEndpoint("https://a.example.org", domain.EndpointDown, false, 50, 0)
	first := poolEndpoint("https://b.example.org", domain.EndpointHealthy, true, 100, 100)
	second := poolEndpoint("https://c.example.org", domain.EndpointHealthy, true, 100, 100)

	for i := 0; i < 10; i++ {
		got := SelectAlternative(current, []*domain.Endpoint{first, second})
		if got == nil || got.URL != first.URL {
			t.Fatalf("Expected deterministic first-candidate tie-break, got %v", got)
		}
	}
}
