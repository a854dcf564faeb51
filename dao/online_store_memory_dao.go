package dao

import (
	"context"
	"sync"

	"github.com/datalane/featurestore-go/domain"
)

// OnlineStoreMemoryDao is the in-process backend, mainly for tests and single
// node deployments without redis. Writes merge field-wise like the redis
// backend.
type OnlineStoreMemoryDao struct {
	mu    sync.RWMutex
	store map[string]map[string]string
}

func NewOnlineStoreMemoryDao() *OnlineStoreMemoryDao {
	return &OnlineStoreMemoryDao{store: make(map[string]map[string]string)}
}

func (d *OnlineStoreMemoryDao) WriteFeatures(ctx context.Context, view *domain.FeatureView, entityID string, features map[string]domain.Value) error {
	encoded := encodeFeatures(features)
	if len(encoded) == 0 {
		return nil
	}

	key := view.OnlineKey(entityID)
	d.mu.Lock()
	defer d.mu.Unlock()
	entry, ok := d.store[key]
	if !ok {
		entry = make(map[string]string, len(encoded))
		d.store[key] = entry
	}
	for name, v := range encoded {
		entry[name] = v
	}
	return nil
}

func (d *OnlineStoreMemoryDao) ReadFeatures(ctx context.Context, view *domain.FeatureView, entityID string) (map[string]string, error) {
	key := view.OnlineKey(entityID)
	d.mu.RLock()
	defer d.mu.RUnlock()
	entry, ok := d.store[key]
	if !ok {
		return nil, nil
	}
	out := make(map[string]string, len(entry))
	for name, v := range entry {
		out[name] = v
	}
	return out, nil
}
