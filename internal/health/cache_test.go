package health

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vietddude/rpcpulse/internal/core/domain"
)

func newTestCache(t *testing.T, cfg CacheConfig, urls ...string) (*Cache, map[string]*fakeClient) {
	t.Helper()

	monitor, fakes, _ := newTestMonitor(t, urls...)
	cache := NewCache(cfg, "ethereum", monitor, monitor.prober)
	return cache, fakes
}

func TestCache_SnapshotWithinWindowServesCached(t *testing.T) {
	cache, fakes := newTestCache(t, CacheConfig{CacheTimeout: time.Minute}, "https://a.example.org")
	fake := fakes["https://a.example.org"]

	first, err := cache.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("First snapshot failed: %v", err)
	}

	second, err := cache.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Second snapshot failed: %v", err)
	}

	if fake.probeCount() != 1 {
		t.Errorf("Expected exactly one probe batch, got %d", fake.probeCount())
	}
	if !second.CapturedAt.Equal(first.CapturedAt) {
		t.Error("Expected the cached snapshot to be served unchanged")
	}
}

func TestCache_SnapshotAfterTimeoutRefreshes(t *testing.T) {
	cache, fakes := newTestCache(t, CacheConfig{CacheTimeout: 10 * time.Millisecond}, "https://a.example.org")
	fake := fakes["https://a.example.org"]

	if _, err := cache.Snapshot(context.Background()); err != nil {
		t.Fatalf("First snapshot failed: %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	if _, err := cache.Snapshot(context.Background()); err != nil {
		t.Fatalf("Second snapshot failed: %v", err)
	}

	if fake.probeCount() != 2 {
		t.Errorf("Expected a second probe batch after the window expired, got %d", fake.probeCount())
	}
}

func TestCache_RefreshPopulatesSnapshot(t *testing.T) {
	cache, _ := newTestCache(t, CacheConfig{}, "https://a.example.org", "https://b.example.org")

	snap, err := cache.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if snap.ChainID != domain.ChainIDEthereum {
		t.Errorf("Expected chain ID %d, got %d", domain.ChainIDEthereum, snap.ChainID)
	}
	if snap.Status != domain.ChainHealthy {
		t.Errorf("Expected healthy status, got %s", snap.Status)
	}
	if snap.CongestionLevel != domain.CongestionLow {
		t.Errorf("Expected low congestion at 20 gwei, got %s", snap.CongestionLevel)
	}
	if snap.Metrics.LastBlockNumber != 1000 {
		t.Errorf("Expected head 1000, got %d", snap.Metrics.LastBlockNumber)
	}
	if snap.Metrics.AvgBlockTimeSec != 12 {
		t.Errorf("Expected 12s average block time, got %v", snap.Metrics.AvgBlockTimeSec)
	}
	if len(snap.Endpoints) != 2 {
		t.Errorf("Expected 2 endpoint views, got %d", len(snap.Endpoints))
	}
	if snap.CapturedAt.IsZero() {
		t.Error("Expected CapturedAt to be set")
	}
}

func TestCache_RefreshFailureKeepsPreviousSnapshot(t *testing.T) {
	cache, fakes := newTestCache(t, CacheConfig{CacheTimeout: time.Millisecond}, "https://a.example.org")
	fake := fakes["https://a.example.org"]

	first, err := cache.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Initial refresh failed: %v", err)
	}

	fake.setSampleErr(errors.New("rpc overloaded"))
	stale, err := cache.Refresh(context.Background())
	if err == nil {
		t.Fatal("Expected refresh error when sampling fails")
	}
	if !stale.CapturedAt.Equal(first.CapturedAt) {
		t.Error("Expected the previous snapshot to survive a failed refresh")
	}
}

func TestCache_RefreshFailsWithNoActiveEndpoints(t *testing.T) {
	cache, fakes := newTestCache(t, CacheConfig{}, "https://a.example.org")
	fakes["https://a.example.org"].setProbeErr(errors.New("unreachable"))

	if _, err := cache.Refresh(context.Background()); err == nil {
		t.Fatal("Expected refresh error when every endpoint is down")
	}
}

func TestCache_SampleFallsBackToNextEndpoint(t *testing.T) {
	cache, fakes := newTestCache(t, CacheConfig{}, "https://a.example.org", "https://b.example.org")
	fakes["https://a.example.org"].setSampleErr(errors.New("rate limited"))

	snap, err := cache.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if snap.Metrics.LastBlockNumber != 1000 {
		t.Errorf("Expected sampling to succeed via the second endpoint, got head %d", snap.Metrics.LastBlockNumber)
	}
}

func TestCache_ConcurrentRefreshesShareOneBatch(t *testing.T) {
	cache, fakes := newTestCache(t, CacheConfig{}, "https://a.example.org")
	fake := fakes["https://a.example.org"]
	fake.probeDelay = 50 * time.Millisecond

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Refresh(context.Background()); err != nil {
				t.Errorf("Concurrent refresh failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if fake.probeCount() != 1 {
		t.Errorf("Expected concurrent refreshes to share one probe batch, got %d", fake.probeCount())
	}
}

func TestCache_GasTrend(t *testing.T) {
	cache, fakes := newTestCache(t, CacheConfig{CacheTimeout: time.Millisecond}, "https://a.example.org")
	fake := fakes["https://a.example.org"]

	snap, err := cache.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if snap.Metrics.GasPriceTrend != domain.GasTrendStable {
		t.Errorf("Expected stable trend on first refresh, got %s", snap.Metrics.GasPriceTrend)
	}

	fake.mu.Lock()
	fake.gasPrice = gwei(40) // doubled
	fake.mu.Unlock()

	snap, err = cache.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if snap.Metrics.GasPriceTrend != domain.GasTrendRising {
		t.Errorf("Expected rising trend after a doubled gas price, got %s", snap.Metrics.GasPriceTrend)
	}

	fake.mu.Lock()
	fake.gasPrice = gwei(41) // within 5% of previous
	fake.mu.Unlock()

	snap, err = cache.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if snap.Metrics.GasPriceTrend != domain.GasTrendStable {
		t.Errorf("Expected stable trend for a sub-5%% move, got %s", snap.Metrics.GasPriceTrend)
	}
}

func TestCache_HookReceivesEverySnapshot(t *testing.T) {
	cache, _ := newTestCache(t, CacheConfig{CacheTimeout: time.Millisecond}, "https://a.example.org")

	var mu sync.Mutex
	var received []domain.NetworkHealthSnapshot
	cache.SetSnapshotHook(func(snap domain.NetworkHealthSnapshot) {
		mu.Lock()
		received = append(received, snap)
		mu.Unlock()
	})

	for i := 0; i < 3; i++ {
		if _, err := cache.Refresh(context.Background()); err != nil {
			t.Fatalf("Refresh %d failed: %v", i, err)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 3 {
		t.Errorf("Expected 3 hook invocations, got %d", len(received))
	}
}

func TestCache_StartStop(t *testing.T) {
	cache, fakes := newTestCache(t, CacheConfig{RefreshInterval: 20 * time.Millisecond}, "https://a.example.org")
	fake := fakes["https://a.example.org"]

	cache.Start(context.Background())
	time.Sleep(70 * time.Millisecond)
	cache.Stop()

	if fake.probeCount() < 2 {
		t.Errorf("Expected background refreshes to run, got %d probe batches", fake.probeCount())
	}

	settled := fake.probeCount()
	time.Sleep(50 * time.Millisecond)
	if fake.probeCount() != settled {
		t.Error("Expected no refreshes after Stop")
	}
}
