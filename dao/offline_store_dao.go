package dao

import (
	"context"
	"fmt"

	"github.com/datalane/featurestore-go/constants"
	"github.com/datalane/featurestore-go/datasource/sqldb"
	"github.com/datalane/featurestore-go/domain"
)

// OfflineStoreDao reads from and appends to the historical store of a feature
// view. Table and column identifiers come verbatim from the catalog schema;
// the DAO trusts the schema it is given.
type OfflineStoreDao interface {
	// LatestRows returns at most one row per distinct entity, the one with
	// the maximum timestamp. limit bounds distinct entities, not raw rows.
	// When two rows for one entity share the maximum timestamp, which one is
	// returned depends on storage-engine ordering and is not stable across
	// runs.
	LatestRows(ctx context.Context, view *domain.FeatureView, limit int) ([]domain.Row, error)

	// InsertRows appends the rows inside a single transaction: either every
	// row becomes visible or none does. A feature column absent from an input
	// row is inserted as NULL.
	InsertRows(ctx context.Context, view *domain.FeatureView, rows []map[string]interface{}) (int, error)
}

// NewOfflineStoreDao builds the offline DAO for the configured SQL driver.
func NewOfflineStoreDao(config DaoConfig) (OfflineStoreDao, error) {
	switch config.OfflineDriver {
	case constants.Offline_Driver_SQLite, constants.Offline_Driver_Postgres, constants.Offline_Driver_MySQL:
		store, err := sqldb.GetSQLStore(config.SQLStoreName)
		if err != nil {
			return nil, err
		}
		return NewOfflineStoreSQLDao(store.DB, config.OfflineDriver), nil
	default:
		return nil, fmt.Errorf("no OfflineStoreDao implement for driver %q", config.OfflineDriver)
	}
}
