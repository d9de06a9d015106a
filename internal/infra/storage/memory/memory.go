// Package memory provides in-memory repository implementations, used
// when no database is configured.
package memory

import (
	"context"
	"sync"

	"github.com/vietddude/rpcpulse/internal/core/domain"
	"github.com/vietddude/rpcpulse/internal/infra/storage"
)

type MemoryStorage struct {
	cycles   map[domain.ChainID][]*storage.ProbeCycle
	attempts []*domain.RecoveryAttempt
	mu       sync.RWMutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		cycles: make(map[domain.ChainID][]*storage.ProbeCycle),
	}
}

// -----------------------------------------------------------------------------
// History Repository
// -----------------------------------------------------------------------------

type HistoryRepo struct {
	store *MemoryStorage
}

func NewHistoryRepo(store *MemoryStorage) *HistoryRepo {
	return &HistoryRepo{store: store}
}

func (r *HistoryRepo) Add(ctx context.Context, cycle *storage.ProbeCycle) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.cycles[cycle.ChainID] = append(r.store.cycles[cycle.ChainID], cycle)
	return nil
}

func (r *HistoryRepo) GetRecent(ctx context.Context, chainID domain.ChainID, limit int) ([]*storage.ProbeCycle, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	cycles := r.store.cycles[chainID]
	out := make([]*storage.ProbeCycle, 0, limit)
	for i := len(cycles) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, cycles[i])
	}
	return out, nil
}

func (r *HistoryRepo) Count(ctx context.Context, chainID domain.ChainID) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return len(r.store.cycles[chainID]), nil
}

// -----------------------------------------------------------------------------
// Attempt Repository
// -----------------------------------------------------------------------------

type AttemptRepo struct {
	store *MemoryStorage
}

func NewAttemptRepo(store *MemoryStorage) *AttemptRepo {
	return &AttemptRepo{store: store}
}

func (r *AttemptRepo) Add(ctx context.Context, attempt *domain.RecoveryAttempt) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.attempts = append(r.store.attempts, attempt)
	return nil
}

func (r *AttemptRepo) GetRecent(ctx context.Context, limit int) ([]*domain.RecoveryAttempt, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]*domain.RecoveryAttempt, 0, limit)
	for i := len(r.store.attempts) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.store.attempts[i])
	}
	return out, nil
}
