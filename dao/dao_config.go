package dao

import "github.com/datalane/featurestore-go/config"

// DaoConfig selects the backing datasources for the offline and online DAOs.
// Selection happens once at construction, not per call.
type DaoConfig struct {
	// offline store
	OfflineDriver string
	SQLStoreName  string

	// online store
	OnlineBackend string
	RedisName     string
}

// Default datasource names used when wiring from process configuration.
const (
	DefaultSQLStoreName = "offline"
	DefaultRedisName    = "online"
)

// NewDaoConfig derives a DaoConfig from process configuration.
func NewDaoConfig(cfg config.Config) DaoConfig {
	return DaoConfig{
		OfflineDriver: cfg.OfflineDriver,
		SQLStoreName:  DefaultSQLStoreName,
		OnlineBackend: cfg.OnlineBackend,
		RedisName:     DefaultRedisName,
	}
}
