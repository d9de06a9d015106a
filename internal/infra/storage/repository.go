// Package storage defines the persistence contracts for probe-cycle
// history and the recovery-attempt log.
package storage

import (
	"context"
	"time"

	"github.com/vietddude/rpcpulse/internal/core/domain"
)

// ProbeCycle summarizes one completed snapshot refresh for history.
type ProbeCycle struct {
	ChainID       domain.ChainID         `db:"chain_id"`
	Status        domain.ChainStatus     `db:"status"`
	Congestion    domain.CongestionLevel `db:"congestion"`
	AvgLatencyMs  int64                  `db:"avg_latency_ms"`
	HealthyCount  int                    `db:"healthy_count"`
	TotalCount    int                    `db:"total_count"`
	DownEndpoints []string               `db:"down_endpoints"`
	CapturedAt    time.Time              `db:"captured_at"`
}

// HistoryRepository stores probe-cycle history.
type HistoryRepository interface {
	// Add appends one probe cycle
	Add(ctx context.Context, cycle *ProbeCycle) error

	// GetRecent returns the most recent cycles for a chain, newest first
	GetRecent(ctx context.Context, chainID domain.ChainID, limit int) ([]*ProbeCycle, error)

	// Count returns the number of stored cycles for a chain
	Count(ctx context.Context, chainID domain.ChainID) (int, error)
}

// AttemptRepository stores the recovery-attempt log.
type AttemptRepository interface {
	// Add appends one recovery attempt
	Add(ctx context.Context, attempt *domain.RecoveryAttempt) error

	// GetRecent returns the most recent attempts, newest first
	GetRecent(ctx context.Context, limit int) ([]*domain.RecoveryAttempt, error)
}
