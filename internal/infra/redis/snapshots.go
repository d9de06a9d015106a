package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vietddude/rpcpulse/internal/core/domain"
)

// Key helpers
func snapshotKey(chainID domain.ChainID) string {
	return fmt.Sprintf("health:snapshot:%d", chainID)
}

// PublishSnapshot stores the latest snapshot for a chain as JSON with
// the given TTL. Stale entries expire rather than lingering as ghosts
// of a stopped publisher.
func (c *Client) PublishSnapshot(ctx context.Context, snapshot domain.NetworkHealthSnapshot, ttl time.Duration) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := c.rdb.Set(ctx, snapshotKey(snapshot.ChainID), data, ttl).Err(); err != nil {
		return fmt.Errorf("set snapshot: %w", err)
	}
	return nil
}

// GetSnapshot reads the latest published snapshot for a chain. Returns
// found=false when no snapshot is present or it has expired.
func (c *Client) GetSnapshot(ctx context.Context, chainID domain.ChainID) (domain.NetworkHealthSnapshot, bool, error) {
	data, err := c.rdb.Get(ctx, snapshotKey(chainID)).Bytes()
	if err == redis.Nil {
		return domain.NetworkHealthSnapshot{}, false, nil
	}
	if err != nil {
		return domain.NetworkHealthSnapshot{}, false, fmt.Errorf("get snapshot: %w", err)
	}

	var snapshot domain.NetworkHealthSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return domain.NetworkHealthSnapshot{}, false, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return snapshot, true, nil
}
