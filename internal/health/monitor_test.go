package health

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/vietddude/rpcpulse/internal/core/domain"
	"github.com/vietddude/rpcpulse/internal/infra/rpc"
)

// fakeClient is a hand-rolled ChainClient for monitor and cache tests.
// Probe calls and sampling calls are counted separately so tests can
// assert how many probe batches actually ran.
type fakeClient struct {
	mu sync.Mutex

	headNumber uint64
	gasPrice   *big.Int
	headTxs    []string
	blockGap   uint64 // seconds between consecutive block timestamps

	probeErr   error
	sampleErr  error
	probeDelay time.Duration

	probeCalls  int
	sampleCalls int
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		headNumber: 1000,
		gasPrice:   gwei(20),
		headTxs:    []string{"0xaa", "0xbb"},
		blockGap:   12,
	}
}

func (f *fakeClient) GetLatestBlockNumber(ctx context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probeCalls++
	if f.probeDelay > 0 {
		f.mu.Unlock()
		time.Sleep(f.probeDelay)
		f.mu.Lock()
	}
	if f.probeErr != nil {
		return 0, f.probeErr
	}
	return f.headNumber, nil
}

func (f *fakeClient) GetBlock(ctx context.Context, number uint64) (rpc.Block, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sampleErr != nil {
		return rpc.Block{}, f.sampleErr
	}
	return rpc.Block{Number: number, TimestampSec: number * f.blockGap}, nil
}

func (f *fakeClient) GetGasPrice(ctx context.Context) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sampleErr != nil {
		return nil, f.sampleErr
	}
	return new(big.Int).Set(f.gasPrice), nil
}

func (f *fakeClient) GetLatestBlock(ctx context.Context) (rpc.LatestBlock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sampleCalls++
	if f.sampleErr != nil {
		return rpc.LatestBlock{}, f.sampleErr
	}
	return rpc.LatestBlock{Number: f.headNumber, Transactions: f.headTxs}, nil
}

func (f *fakeClient) setProbeErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probeErr = err
}

func (f *fakeClient) setSampleErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sampleErr = err
}

func (f *fakeClient) probeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.probeCalls
}

func newTestMonitor(t *testing.T, urls ...string) (*Monitor, map[string]*fakeClient, []*domain.Endpoint) {
	t.Helper()

	fakes := make(map[string]*fakeClient, len(urls))
	clients := make(map[string]rpc.ChainClient, len(urls))
	endpoints := make([]*domain.Endpoint, 0, len(urls))
	for _, url := range urls {
		fake := newFakeClient()
		fakes[url] = fake
		clients[url] = fake
		endpoints = append(endpoints, domain.NewEndpoint(url, domain.ChainIDEthereum))
	}

	prober := NewProber(clients, time.Second)
	monitor := NewMonitor(domain.ChainIDEthereum, "ethereum", prober, endpoints)
	return monitor, fakes, endpoints
}

func TestMonitor_CheckAll_Success(t *testing.T) {
	monitor, _, endpoints := newTestMonitor(t, "https://a.example.org", "https://b.example.org")

	monitor.CheckAll(context.Background())

	for _, ep := range endpoints {
		if ep.Status != domain.EndpointHealthy {
			t.Errorf("Expected %s healthy, got %s", ep.URL, ep.Status)
		}
		if !ep.IsActive {
			t.Errorf("Expected %s active", ep.URL)
		}
		if ep.Metrics.SuccessRatePct != 100 {
			t.Errorf("Expected 100%% success rate, got %v", ep.Metrics.SuccessRatePct)
		}
		if ep.Metrics.LastCheckedAt.IsZero() {
			t.Errorf("Expected LastCheckedAt to be set for %s", ep.URL)
		}
	}

	if got := monitor.Status(); got != domain.ChainHealthy {
		t.Errorf("Expected healthy chain status, got %s", got)
	}
}

func TestMonitor_CheckAll_FailureMarksDownAndInactive(t *testing.T) {
	monitor, fakes, endpoints := newTestMonitor(t, "https://a.example.org", "https://b.example.org")
	fakes["https://b.example.org"].setProbeErr(errors.New("connection refused"))

	monitor.CheckAll(context.Background())

	bad := endpoints[1]
	if bad.Status != domain.EndpointDown {
		t.Errorf("Expected down, got %s", bad.Status)
	}
	if bad.IsActive {
		t.Error("Expected down endpoint to be inactive")
	}
	if bad.Metrics.ErrorCount != 1 {
		t.Errorf("Expected error count 1, got %d", bad.Metrics.ErrorCount)
	}
	if bad.Metrics.SuccessRatePct != 0 {
		t.Errorf("Expected 0%% success rate, got %v", bad.Metrics.SuccessRatePct)
	}

	if got := monitor.Status(); got != domain.ChainDegraded {
		t.Errorf("Expected degraded chain status, got %s", got)
	}

	if active := monitor.ActiveEndpoints(); len(active) != 1 || active[0].URL != endpoints[0].URL {
		t.Errorf("Expected only the healthy endpoint active, got %v", active)
	}
}

func TestMonitor_ErrorCountAccumulatesAndResets(t *testing.T) {
	monitor, fakes, endpoints := newTestMonitor(t, "https://a.example.org")
	fake := fakes["https://a.example.org"]
	ep := endpoints[0]

	fake.setProbeErr(errors.New("timeout"))
	monitor.CheckAll(context.Background())
	monitor.CheckAll(context.Background())
	if ep.Metrics.ErrorCount != 2 {
		t.Fatalf("Expected error count 2 after two failures, got %d", ep.Metrics.ErrorCount)
	}

	fake.setProbeErr(nil)
	monitor.CheckAll(context.Background())
	if ep.Metrics.ErrorCount != 0 {
		t.Errorf("Expected error count reset on success, got %d", ep.Metrics.ErrorCount)
	}
	if ep.Status != domain.EndpointHealthy || !ep.IsActive {
		t.Errorf("Expected endpoint restored to healthy/active, got %s active=%v", ep.Status, ep.IsActive)
	}
}

func TestMonitor_Status_AllDown(t *testing.T) {
	monitor, fakes, _ := newTestMonitor(t, "https://a.example.org", "https://b.example.org")
	for _, fake := range fakes {
		fake.setProbeErr(errors.New("unreachable"))
	}

	monitor.CheckAll(context.Background())

	if got := monitor.Status(); got != domain.ChainDown {
		t.Errorf("Expected down chain status, got %s", got)
	}
	if active := monitor.ActiveEndpoints(); len(active) != 0 {
		t.Errorf("Expected no active endpoints, got %d", len(active))
	}
}

func TestProber_UnknownEndpointFails(t *testing.T) {
	prober := NewProber(map[string]rpc.ChainClient{}, time.Second)
	ep := domain.NewEndpoint("https://unknown.example.org", domain.ChainIDEthereum)

	result := prober.Probe(context.Background(), ep)
	if result.Success {
		t.Error("Expected probe of unregistered endpoint to fail")
	}
}
