// Package control wires configuration into the running application:
// chain clients, monitors, caches, the recovery orchestrator and the
// HTTP health server.
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/vietddude/rpcpulse/internal/core/config"
	"github.com/vietddude/rpcpulse/internal/core/domain"
	"github.com/vietddude/rpcpulse/internal/health"
	redisclient "github.com/vietddude/rpcpulse/internal/infra/redis"
	"github.com/vietddude/rpcpulse/internal/infra/rpc"
	"github.com/vietddude/rpcpulse/internal/infra/storage"
	"github.com/vietddude/rpcpulse/internal/infra/storage/memory"
	"github.com/vietddude/rpcpulse/internal/infra/storage/postgres"
	"github.com/vietddude/rpcpulse/internal/recovery"
)

// Config holds the application configuration.
type Config struct {
	Port     int
	Chains   []config.ChainConfig
	Health   config.HealthConfig
	Recovery config.RecoveryConfig
	Redis    redisclient.Config
	Database postgres.Config
}

// Pulse is the main application struct that manages the health
// subsystem lifecycle.
type Pulse struct {
	cfg          Config
	caches       map[domain.ChainID]*health.Cache
	monitors     map[domain.ChainID]*health.Monitor
	orchestrator *recovery.Orchestrator
	healthServer *health.Server
	db           *postgres.DB
	redisClient  *redisclient.Client
	historyRepo  storage.HistoryRepository
	attemptRepo  storage.AttemptRepository
}

// NewPulse creates a new Pulse instance with all dependencies initialized.
func NewPulse(cfg Config) (*Pulse, error) {
	p := &Pulse{
		cfg:      cfg,
		caches:   make(map[domain.ChainID]*health.Cache),
		monitors: make(map[domain.ChainID]*health.Monitor),
	}

	// 1. Initialize Storage
	if cfg.Database.URL != "" {
		db, err := postgres.NewDB(context.Background(), cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}

		// Run migrations. Goose needs the direct *sql.DB which sqlx wraps.
		if err := goose.SetDialect("postgres"); err != nil {
			return nil, err
		}
		if err := goose.Up(db.DB.DB, "migrations"); err != nil {
			return nil, fmt.Errorf("failed to migrate db: %w", err)
		}

		p.db = db
		p.historyRepo = postgres.NewHistoryRepo(db)
		p.attemptRepo = postgres.NewAttemptRepo(db)
		slog.Info("Using PostgreSQL storage")
	} else {
		store := memory.NewMemoryStorage()
		p.historyRepo = memory.NewHistoryRepo(store)
		p.attemptRepo = memory.NewAttemptRepo(store)
		slog.Info("Using Memory storage")
	}

	// 2. Optional Redis snapshot publishing
	if cfg.Redis.URL != "" {
		redisClient, err := redisclient.NewClient(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
		p.redisClient = redisClient
		slog.Info("Publishing snapshots to Redis")
	}

	// 3. Per-chain monitors and caches
	for _, chain := range cfg.Chains {
		clients := make(map[string]rpc.ChainClient, len(chain.Endpoints))
		endpoints := make([]*domain.Endpoint, 0, len(chain.Endpoints))
		for _, ep := range chain.Endpoints {
			clients[ep.URL] = rpc.NewHTTPClient(ep.URL, cfg.Health.ProbeTimeout)
			endpoints = append(endpoints, domain.NewEndpoint(ep.URL, chain.ChainID))
		}

		prober := health.NewProber(clients, cfg.Health.ProbeTimeout)
		monitor := health.NewMonitor(chain.ChainID, chain.Name, prober, endpoints)
		cache := health.NewCache(health.CacheConfig{
			CacheTimeout:    cfg.Health.CacheTimeout,
			RefreshInterval: cfg.Health.RefreshInterval,
			BlockSampleSize: cfg.Health.BlockSampleSize,
		}, chain.Name, monitor, prober)
		cache.SetSnapshotHook(p.onSnapshot)

		p.monitors[chain.ChainID] = monitor
		p.caches[chain.ChainID] = cache
	}

	// 4. Recovery orchestrator
	gate := recovery.NewConsentGate(nil, cfg.Recovery.ConsentTimeout)
	p.orchestrator = recovery.NewOrchestrator(recovery.RetryConfig{
		MaxAttempts:       cfg.Recovery.MaxAttempts,
		InitialDelay:      cfg.Recovery.InitialDelay,
		MaxDelay:          cfg.Recovery.MaxDelay,
		BackoffMultiplier: cfg.Recovery.BackoffMultiplier,
	}, gate, recovery.Ports{
		OnSwitchEndpoint: func(to *domain.Endpoint) {
			slog.Info("Switched endpoint", "chain", to.ChainID, "endpoint", to.URL)
		},
	})
	p.orchestrator.SetAttemptSink(func(ctx context.Context, attempt domain.RecoveryAttempt) {
		if err := p.attemptRepo.Add(ctx, &attempt); err != nil {
			slog.Warn("Failed to persist recovery attempt", "error", err)
		}
	})

	p.healthServer = health.NewServer(p.caches, cfg.Port)

	return p, nil
}

// onSnapshot persists and publishes every fresh snapshot.
func (p *Pulse) onSnapshot(snapshot domain.NetworkHealthSnapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	healthy := 0
	var down []string
	for _, ep := range snapshot.Endpoints {
		if ep.Status == domain.EndpointHealthy {
			healthy++
		} else if ep.Status == domain.EndpointDown {
			down = append(down, ep.URL)
		}
	}

	cycle := &storage.ProbeCycle{
		ChainID:       snapshot.ChainID,
		Status:        snapshot.Status,
		Congestion:    snapshot.CongestionLevel,
		AvgLatencyMs:  snapshot.Metrics.AvgResponseTimeMs,
		HealthyCount:  healthy,
		TotalCount:    len(snapshot.Endpoints),
		DownEndpoints: down,
		CapturedAt:    snapshot.CapturedAt,
	}
	if err := p.historyRepo.Add(ctx, cycle); err != nil {
		slog.Warn("Failed to persist probe cycle", "chain", snapshot.ChainID, "error", err)
	}

	if p.redisClient != nil {
		// TTL of two refresh intervals: a stalled publisher expires
		// instead of serving frozen health forever.
		ttl := 2 * p.cfg.Health.RefreshInterval
		if err := p.redisClient.PublishSnapshot(ctx, snapshot, ttl); err != nil {
			slog.Warn("Failed to publish snapshot", "chain", snapshot.ChainID, "error", err)
		}
	}
}

// Recover runs one recovery session using the endpoint pool of the
// chain the request names, when it has no explicit candidate pool.
func (p *Pulse) Recover(ctx context.Context, chainID domain.ChainID, req recovery.Request) recovery.Result {
	if req.Candidates == nil {
		if monitor, ok := p.monitors[chainID]; ok {
			req.Candidates = monitor.Endpoints()
		}
	}
	return p.orchestrator.Recover(ctx, req)
}

// Snapshot returns the current health snapshot for a chain.
func (p *Pulse) Snapshot(ctx context.Context, chainID domain.ChainID) (domain.NetworkHealthSnapshot, error) {
	cache, ok := p.caches[chainID]
	if !ok {
		return domain.NetworkHealthSnapshot{}, fmt.Errorf("unknown chain %d", chainID)
	}
	return cache.Snapshot(ctx)
}

// Start launches the background refresh loops and the health server.
func (p *Pulse) Start(ctx context.Context) error {
	for chainID, cache := range p.caches {
		cache.Start(ctx)
		slog.Info("Started health cache", "chain", chainID)
	}

	if p.db != nil {
		p.db.StartMetricsCollector(ctx)
	}

	go func() {
		if err := p.healthServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Health server failed", "error", err)
		}
	}()
	slog.Info("Health server listening", "port", p.cfg.Port)

	return nil
}

// Stop shuts everything down, waiting for background loops to exit.
func (p *Pulse) Stop(ctx context.Context) error {
	for _, cache := range p.caches {
		cache.Stop()
	}

	if err := p.healthServer.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop health server: %w", err)
	}

	if p.redisClient != nil {
		if err := p.redisClient.Close(); err != nil {
			slog.Warn("Failed to close redis client", "error", err)
		}
	}
	if p.db != nil {
		if err := p.db.Close(); err != nil {
			slog.Warn("Failed to close database", "error", err)
		}
	}
	return nil
}
