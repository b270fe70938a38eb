package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"parkmap/internal/models"
)

const snapshotKey = "parkmap:lots:latest"

// StoredSnapshot is the last successfully decoded lot list, kept so a
// restarted instance can serve it until its own first fetch lands.
type StoredSnapshot struct {
	Lots      []models.ParkingLot `json:"lots"`
	FetchedAt time.Time           `json:"fetched_at"`
}

// SnapshotStore persists the latest snapshot in redis.
type SnapshotStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSnapshotStore returns redis-backed store.
func NewSnapshotStore(client *redis.Client, ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{client: client, ttl: ttl}
}

// Save overwrites the stored snapshot.
func (s *SnapshotStore) Save(ctx context.Context, snapshot StoredSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, snapshotKey, data, s.ttl).Err()
}

// Load returns the stored snapshot, or nil when none exists.
func (s *SnapshotStore) Load(ctx context.Context) (*StoredSnapshot, error) {
	result, err := s.client.Get(ctx, snapshotKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var snapshot StoredSnapshot
	if err := json.Unmarshal(result, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}
