package dao

import (
	"context"
	"fmt"

	"github.com/datalane/featurestore-go/constants"
	"github.com/datalane/featurestore-go/datasource/redisdb"
	"github.com/datalane/featurestore-go/domain"
)

// OnlineStoreDao is the keyed hash-map abstraction over the online cache
// backend. Keys derive from (view name, entity id) the same way on every
// backend, see domain.FeatureView.OnlineKey.
type OnlineStoreDao interface {
	// WriteFeatures stores each non-null feature under the entity's key as
	// its deterministic string form. This is a merge: fields already present
	// at the key and absent from this call stay untouched.
	WriteFeatures(ctx context.Context, view *domain.FeatureView, entityID string, features map[string]domain.Value) error

	// ReadFeatures returns the stored field map, or nil when no write has
	// ever targeted the key. Absence is a normal return, not an error.
	ReadFeatures(ctx context.Context, view *domain.FeatureView, entityID string) (map[string]string, error)
}

// NewOnlineStoreDao builds the online DAO for the configured backend. The set
// of backends is closed: redis or in-process memory.
func NewOnlineStoreDao(config DaoConfig) (OnlineStoreDao, error) {
	switch config.OnlineBackend {
	case constants.Online_Backend_Redis:
		r, err := redisdb.GetRedis(config.RedisName)
		if err != nil {
			return nil, err
		}
		return NewOnlineStoreRedisDao(r.Client), nil
	case constants.Online_Backend_Memory:
		return NewOnlineStoreMemoryDao(), nil
	default:
		return nil, fmt.Errorf("no OnlineStoreDao implement for backend %q", config.OnlineBackend)
	}
}

// encodeFeatures drops null values and encodes the rest to storage strings.
func encodeFeatures(features map[string]domain.Value) map[string]string {
	encoded := make(map[string]string, len(features))
	for name, v := range features {
		if v.IsNull() {
			continue
		}
		encoded[name] = v.EncodeString()
	}
	return encoded
}
