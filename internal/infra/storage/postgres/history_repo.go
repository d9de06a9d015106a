package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/vietddude/rpcpulse/internal/core/domain"
	"github.com/vietddude/rpcpulse/internal/infra/storage"
)

// HistoryRepo implements storage.HistoryRepository using PostgreSQL.
type HistoryRepo struct {
	db *DB
}

// NewHistoryRepo creates a new PostgreSQL probe-cycle history repository.
func NewHistoryRepo(db *DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

// Add appends one probe cycle.
func (r *HistoryRepo) Add(ctx context.Context, cycle *storage.ProbeCycle) error {
	query := `
		INSERT INTO probe_cycles (chain_id, status, congestion, avg_latency_ms, healthy_count, total_count, down_endpoints, captured_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		cycle.ChainID,
		cycle.Status,
		cycle.Congestion,
		cycle.AvgLatencyMs,
		cycle.HealthyCount,
		cycle.TotalCount,
		pq.Array(cycle.DownEndpoints),
		cycle.CapturedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add probe cycle: %w", err)
	}
	return nil
}

// GetRecent returns the most recent cycles for a chain, newest first.
func (r *HistoryRepo) GetRecent(ctx context.Context, chainID domain.ChainID, limit int) ([]*storage.ProbeCycle, error) {
	query := `
		SELECT chain_id, status, congestion, avg_latency_ms, healthy_count, total_count, down_endpoints, captured_at
		FROM probe_cycles
		WHERE chain_id = $1
		ORDER BY captured_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, chainID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get probe cycles: %w", err)
	}
	defer rows.Close()

	var cycles []*storage.ProbeCycle
	for rows.Next() {
		var dest struct {
			ChainID      uint64
			Status       string
			Congestion   string
			AvgLatencyMs int64
			HealthyCount int
			TotalCount   int
			Down         pq.StringArray
			CapturedAt   time.Time
		}
		if err := rows.Scan(
			&dest.ChainID,
			&dest.Status,
			&dest.Congestion,
			&dest.AvgLatencyMs,
			&dest.HealthyCount,
			&dest.TotalCount,
			&dest.Down,
			&dest.CapturedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan probe cycle: %w", err)
		}

		cycles = append(cycles, &storage.ProbeCycle{
			ChainID:       domain.ChainID(dest.ChainID),
			Status:        domain.ChainStatus(dest.Status),
			Congestion:    domain.CongestionLevel(dest.Congestion),
			AvgLatencyMs:  dest.AvgLatencyMs,
			HealthyCount:  dest.HealthyCount,
			TotalCount:    dest.TotalCount,
			DownEndpoints: dest.Down,
			CapturedAt:    dest.CapturedAt,
		})
	}
	return cycles, rows.Err()
}

// Count returns the number of stored cycles for a chain.
func (r *HistoryRepo) Count(ctx context.Context, chainID domain.ChainID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM probe_cycles WHERE chain_id = $1`, chainID)
	if err != nil {
		return 0, fmt.Errorf("failed to count probe cycles: %w", err)
	}
	return count, nil
}
