package redisstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"ai-skincare-client/pkg/store"
)

const keyPrefix = "skincare:snapshot:"

// SnapshotRepository persists session snapshots in Redis so a brief
// survives client restarts. Lookups that fail for any reason report
// not-found; the caller starts a fresh session.
type SnapshotRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSnapshotRepository(redisURL string, ttl time.Duration) (*SnapshotRepository, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &SnapshotRepository{client: client, ttl: ttl}, nil
}

func (r *SnapshotRepository) Save(snapshot *store.Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.client.Set(ctx, keyPrefix+snapshot.BriefID, payload, r.ttl).Err()
}

func (r *SnapshotRepository) Get(briefID string) (*store.Snapshot, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	payload, err := r.client.Get(ctx, keyPrefix+briefID).Bytes()
	if err != nil {
		return nil, false
	}
	var snapshot store.Snapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, false
	}
	return &snapshot, true
}

func (r *SnapshotRepository) Delete(briefID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r.client.Del(ctx, keyPrefix+briefID)
}

func (r *SnapshotRepository) Close() error {
	return r.client.Close()
}
