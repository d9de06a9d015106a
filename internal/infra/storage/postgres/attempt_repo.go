package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/vietddude/rpcpulse/internal/core/domain"
)

// AttemptRepo implements storage.AttemptRepository using PostgreSQL.
type AttemptRepo struct {
	db *DB
}

// NewAttemptRepo creates a new PostgreSQL recovery-attempt repository.
func NewAttemptRepo(db *DB) *AttemptRepo {
	return &AttemptRepo{db: db}
}

// Add appends one recovery attempt.
func (r *AttemptRepo) Add(ctx context.Context, attempt *domain.RecoveryAttempt) error {
	query := `
		INSERT INTO recovery_attempts (id, category, action, succeeded, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		attempt.ID,
		attempt.Category,
		attempt.Action,
		attempt.Succeeded,
		attempt.Detail,
		attempt.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to add recovery attempt: %w", err)
	}
	return nil
}

// GetRecent returns the most recent attempts, newest first.
func (r *AttemptRepo) GetRecent(ctx context.Context, limit int) ([]*domain.RecoveryAttempt, error) {
	query := `
		SELECT id, category, action, succeeded, detail, created_at
		FROM recovery_attempts
		ORDER BY created_at DESC
		LIMIT $1
	`

	var rows []struct {
		ID        string    `db:"id"`
		Category  string    `db:"category"`
		Action    string    `db:"action"`
		Succeeded bool      `db:"succeeded"`
		Detail    string    `db:"detail"`
		CreatedAt time.Time `db:"created_at"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("failed to get recovery attempts: %w", err)
	}

	attempts := make([]*domain.RecoveryAttempt, 0, len(rows))
	for _, row := range rows {
		attempts = append(attempts, &domain.RecoveryAttempt{
			ID:        row.ID,
			Timestamp: row.CreatedAt,
			Category:  domain.ErrorCategory(row.Category),
			Action:    domain.ActionType(row.Action),
			Succeeded: row.Succeeded,
			Detail:    row.Detail,
		})
	}
	return attempts, nil
}
