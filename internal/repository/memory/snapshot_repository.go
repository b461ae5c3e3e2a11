package memory

import (
	"time"

	"github.com/patrickmn/go-cache"

	"ai-skincare-client/pkg/store"
)

// SnapshotRepository keeps best-effort local session snapshots in
// process memory. Snapshots expire; resume after expiry starts fresh.
type SnapshotRepository struct {
	cache *cache.Cache
}

func NewSnapshotRepository(ttl time.Duration) *SnapshotRepository {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	c := cache.New(ttl, 10*time.Minute)
	return &SnapshotRepository{cache: c}
}

func (r *SnapshotRepository) Save(snapshot *store.Snapshot) error {
	r.cache.Set(snapshot.BriefID, snapshot, cache.DefaultExpiration)
	return nil
}

func (r *SnapshotRepository) Get(briefID string) (*store.Snapshot, bool) {
	if x, found := r.cache.Get(briefID); found {
		return x.(*store.Snapshot), true
	}
	return nil, false
}

func (r *SnapshotRepository) Delete(briefID string) {
	r.cache.Delete(briefID)
}
