package health

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/vietddude/rpcpulse/internal/core/domain"
	"github.com/vietddude/rpcpulse/internal/infra/rpc"
	"github.com/vietddude/rpcpulse/internal/metrics"
)

// CacheConfig holds the staleness window and refresh cadence.
type CacheConfig struct {
	CacheTimeout    time.Duration
	RefreshInterval time.Duration
	BlockSampleSize int
}

// DefaultCacheConfig provides the standard windows.
var DefaultCacheConfig = CacheConfig{
	CacheTimeout:    10 * time.Second,
	RefreshInterval: 30 * time.Second,
	BlockSampleSize: 10,
}

// SnapshotHook is invoked after every successful refresh with the new
// snapshot, outside the cache lock.
type SnapshotHook func(domain.NetworkHealthSnapshot)

// Cache wraps a Monitor with a time-boxed snapshot cache and a
// background refresh timer. Concurrent readers during an in-flight
// refresh share the same result instead of launching duplicate probe
// batches. A failed refresh never overwrites the previous snapshot.
type Cache struct {
	cfg       CacheConfig
	chainName string
	monitor   *Monitor
	prober    *Prober
	log       *slog.Logger

	mu           sync.RWMutex
	snapshot     *domain.NetworkHealthSnapshot
	lastGasPrice *big.Int
	hook         SnapshotHook

	group  singleflight.Group
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewCache creates a snapshot cache over the given monitor.
func NewCache(cfg CacheConfig, chainName string, monitor *Monitor, prober *Prober) *Cache {
	if cfg.CacheTimeout == 0 {
		cfg.CacheTimeout = DefaultCacheConfig.CacheTimeout
	}
	if cfg.RefreshInterval == 0 {
		cfg.RefreshInterval = DefaultCacheConfig.RefreshInterval
	}
	if cfg.BlockSampleSize == 0 {
		cfg.BlockSampleSize = DefaultCacheConfig.BlockSampleSize
	}
	return &Cache{
		cfg:       cfg,
		chainName: chainName,
		monitor:   monitor,
		prober:    prober,
		log:       slog.With("chain", chainName),
	}
}

// SetSnapshotHook registers the post-refresh hook. Must be called
// before Start.
func (c *Cache) SetSnapshotHook(hook SnapshotHook) {
	c.hook = hook
}

// ChainID returns the chain this cache serves.
func (c *Cache) ChainID() domain.ChainID {
	return c.monitor.chainID
}

// Start launches the periodic background refresh.
func (c *Cache) Start(ctx context.Context) {
	refreshCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.cfg.RefreshInterval)
		defer ticker.Stop()

		for {
			select {
			case <-refreshCtx.Done():
				return
			case <-ticker.C:
				if _, err := c.Refresh(refreshCtx); err != nil {
					c.log.Warn("Background refresh failed", "error", err)
				}
			}
		}
	}()
}

// Stop cancels the background refresh and waits for it to exit.
func (c *Cache) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
}

// Snapshot returns the cached snapshot when it is still inside the
// staleness window, refreshing first otherwise.
func (c *Cache) Snapshot(ctx context.Context) (domain.NetworkHealthSnapshot, error) {
	c.mu.RLock()
	if c.snapshot != nil && time.Since(c.snapshot.CapturedAt) < c.cfg.CacheTimeout {
		snap := *c.snapshot
		c.mu.RUnlock()
		return snap, nil
	}
	c.mu.RUnlock()

	return c.Refresh(ctx)
}

// Refresh recomputes the snapshot now. Concurrent callers share one
// in-flight refresh. On failure the previous snapshot, if any, is
// returned alongside the error.
func (c *Cache) Refresh(ctx context.Context) (domain.NetworkHealthSnapshot, error) {
	v, err, _ := c.group.Do("refresh", func() (any, error) {
		return c.refresh(ctx)
	})
	if err != nil {
		metrics.SnapshotRefreshTotal.WithLabelValues(c.chainName, "failure").Inc()

		c.mu.RLock()
		defer c.mu.RUnlock()
		if c.snapshot != nil {
			return *c.snapshot, err
		}
		return domain.NetworkHealthSnapshot{}, err
	}

	metrics.SnapshotRefreshTotal.WithLabelValues(c.chainName, "success").Inc()
	return v.(domain.NetworkHealthSnapshot), nil
}

func (c *Cache) refresh(ctx context.Context) (domain.NetworkHealthSnapshot, error) {
	c.monitor.CheckAll(ctx)

	active := c.monitor.ActiveEndpoints()
	if len(active) == 0 {
		return domain.NetworkHealthSnapshot{}, fmt.Errorf("no active endpoints for chain %d", c.monitor.chainID)
	}

	var totalMs int64
	for _, ep := range active {
		totalMs += ep.Metrics.ResponseTimeMs
	}
	avgResponseMs := totalMs / int64(len(active))

	sample, err := c.sampleChain(ctx, active)
	if err != nil {
		return domain.NetworkHealthSnapshot{}, fmt.Errorf("chain sampling: %w", err)
	}

	congestion := EstimateCongestion(sample.gasPrice, time.Duration(avgResponseMs)*time.Millisecond)

	c.mu.Lock()
	trend := gasTrend(c.lastGasPrice, sample.gasPrice)
	c.lastGasPrice = sample.gasPrice

	snapshot := domain.NetworkHealthSnapshot{
		ChainID:         c.monitor.chainID,
		Status:          c.monitor.Status(),
		CongestionLevel: congestion,
		Metrics: domain.NetworkMetrics{
			AvgResponseTimeMs: avgResponseMs,
			TxSuccessRatePct:  sample.txSuccessRate,
			AvgBlockTimeSec:   sample.avgBlockTime,
			GasPriceTrend:     trend,
			LastBlockNumber:   sample.latestNumber,
		},
		Endpoints:  copyEndpoints(c.monitor.Endpoints()),
		CapturedAt: time.Now(),
	}
	c.snapshot = &snapshot
	c.mu.Unlock()

	metrics.CongestionLevel.WithLabelValues(c.chainName).Set(congestionValue(congestion))

	if c.hook != nil {
		c.hook(snapshot)
	}
	return snapshot, nil
}

type chainSample struct {
	latestNumber  uint64
	gasPrice      *big.Int
	avgBlockTime  float64
	txSuccessRate float64
}

// sampleChain gathers block-timing and gas metrics from the first
// active endpoint that answers, trying the next one when a batch
// fails. The whole batch comes from a single endpoint so the sample
// stays internally consistent.
func (c *Cache) sampleChain(ctx context.Context, active []*domain.Endpoint) (chainSample, error) {
	var lastErr error
	for _, ep := range active {
		client, ok := c.prober.Client(ep.URL)
		if !ok {
			continue
		}
		sample, err := c.sampleFrom(ctx, client)
		if err != nil {
			lastErr = err
			c.log.Debug("Chain sampling failed, trying next endpoint",
				"endpoint", ep.URL, "error", err)
			continue
		}
		return sample, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no clients registered for active endpoints")
	}
	return chainSample{}, lastErr
}

func (c *Cache) sampleFrom(ctx context.Context, client rpc.ChainClient) (chainSample, error) {
	latest, err := client.GetLatestBlock(ctx)
	if err != nil {
		return chainSample{}, err
	}

	gasPrice, err := client.GetGasPrice(ctx)
	if err != nil {
		return chainSample{}, err
	}

	count := c.cfg.BlockSampleSize
	if uint64(count) > latest.Number {
		count = int(latest.Number)
	}

	blocks := make([]rpc.Block, count)
	g, sampleCtx := errgroup.WithContext(ctx)
	for i := 0; i < count; i++ {
		g.Go(func() error {
			block, err := client.GetBlock(sampleCtx, latest.Number-uint64(i))
			if err != nil {
				return err
			}
			blocks[i] = block
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return chainSample{}, err
	}

	return chainSample{
		latestNumber:  latest.Number,
		gasPrice:      gasPrice,
		avgBlockTime:  avgBlockTime(blocks),
		txSuccessRate: txSuccessProxy(len(latest.Transactions)),
	}, nil
}

// avgBlockTime computes mean seconds per block across the sample.
// Blocks arrive newest first.
func avgBlockTime(blocks []rpc.Block) float64 {
	if len(blocks) < 2 {
		return 0
	}
	newest := blocks[0].TimestampSec
	oldest := blocks[len(blocks)-1].TimestampSec
	if newest <= oldest {
		return 0
	}
	return float64(newest-oldest) / float64(len(blocks)-1)
}

// txSuccessProxy is a crude transaction-count-based success-rate proxy:
// a non-empty head block counts as evidence transactions are landing.
func txSuccessProxy(txCount int) float64 {
	if txCount == 0 {
		return 90
	}
	return 99
}

// gasTrend compares the current gas price against the previous refresh.
// Changes below 5% count as stable.
func gasTrend(previous, current *big.Int) domain.GasTrend {
	if previous == nil || current == nil || previous.Sign() == 0 {
		return domain.GasTrendStable
	}

	diff := new(big.Int).Sub(current, previous)
	threshold := new(big.Int).Div(previous, big.NewInt(20))

	switch {
	case diff.CmpAbs(threshold) <= 0:
		return domain.GasTrendStable
	case diff.Sign() > 0:
		return domain.GasTrendRising
	default:
		return domain.GasTrendFalling
	}
}

func copyEndpoints(endpoints []*domain.Endpoint) []domain.Endpoint {
	out := make([]domain.Endpoint, len(endpoints))
	for i, ep := range endpoints {
		out[i] = *ep
	}
	return out
}

func congestionValue(level domain.CongestionLevel) float64 {
	switch level {
	case domain.CongestionHigh:
		return 2
	case domain.CongestionMedium:
		return 1
	default:
		return 0
	}
}
