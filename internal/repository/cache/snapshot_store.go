// internal/repository/cache/snapshot_store.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fleetmap-service/internal/domain/fleet"

	"github.com/redis/go-redis/v9"
)

const snapshotKey = "fleetmap:snapshot:vehicles"

// SnapshotStore keeps the last successful vehicle collection in Redis.
type SnapshotStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSnapshotStore(client *redis.Client, ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{client: client, ttl: ttl}
}

// Load returns the cached collection; ok is false on a miss.
func (s *SnapshotStore) Load(ctx context.Context) ([]fleet.Vehicle, bool, error) {
	data, err := s.client.Get(ctx, snapshotKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var vehicles []fleet.Vehicle
	if err := json.Unmarshal(data, &vehicles); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	if vehicles == nil {
		vehicles = []fleet.Vehicle{}
	}
	return vehicles, true, nil
}

func (s *SnapshotStore) Store(ctx context.Context, vehicles []fleet.Vehicle) error {
	data, err := json.Marshal(vehicles)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := s.client.Set(ctx, snapshotKey, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}
