package dao

import (
	"context"

	"github.com/go-redis/redis/v8"

	"github.com/datalane/featurestore-go/domain"
	"github.com/datalane/featurestore-go/fserrors"
)

// OnlineStoreRedisDao stores each entity as a redis hash. HSET merges fields
// into an existing hash, which gives the merge-on-write contract for free.
type OnlineStoreRedisDao struct {
	client *redis.Client
}

func NewOnlineStoreRedisDao(client *redis.Client) *OnlineStoreRedisDao {
	return &OnlineStoreRedisDao{client: client}
}

func (d *OnlineStoreRedisDao) WriteFeatures(ctx context.Context, view *domain.FeatureView, entityID string, features map[string]domain.Value) error {
	encoded := encodeFeatures(features)
	if len(encoded) == 0 {
		return nil
	}

	key := view.OnlineKey(entityID)
	fields := make(map[string]interface{}, len(encoded))
	for name, v := range encoded {
		fields[name] = v
	}
	if err := d.client.HSet(ctx, key, fields).Err(); err != nil {
		return &fserrors.StoreWriteError{Backend: "redis", Key: key, Err: err}
	}
	return nil
}

func (d *OnlineStoreRedisDao) ReadFeatures(ctx context.Context, view *domain.FeatureView, entityID string) (map[string]string, error) {
	key := view.OnlineKey(entityID)
	data, err := d.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, &fserrors.StoreReadError{Backend: "redis", Key: key, Err: err}
	}
	if len(data) == 0 {
		return nil, nil
	}
	return data, nil
}
