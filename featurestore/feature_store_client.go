// Package featurestore is the collaborator-facing client: registry lookup and
// reload, offline ingestion, materialization into the online store, and
// single-entity online reads. It returns plain data or typed failures;
// translating failures to transport codes is the caller's job.
package featurestore

import (
	"context"
	"fmt"
	"time"

	"github.com/expr-lang/expr"

	"github.com/datalane/featurestore-go/config"
	"github.com/datalane/featurestore-go/constants"
	"github.com/datalane/featurestore-go/dao"
	"github.com/datalane/featurestore-go/datasource/redisdb"
	"github.com/datalane/featurestore-go/datasource/sqldb"
	"github.com/datalane/featurestore-go/domain"
	"github.com/datalane/featurestore-go/fserrors"
	"github.com/datalane/featurestore-go/metric"
	"github.com/datalane/featurestore-go/registry"
)

// DefaultMaterializeLimit bounds the distinct entities one materialization
// run copies when the caller does not override it.
const DefaultMaterializeLimit = 1000

// Logger is the minimal logging surface the client reports through.
type Logger interface {
	Printf(format string, v ...interface{})
}

type ClientOption func(c *Client)

// WithLogger sets the logger used to report internal changes.
func WithLogger(l Logger) ClientOption {
	return func(c *Client) {
		c.Logger = l
	}
}

// WithErrorLogger sets the logger used to report errors.
func WithErrorLogger(l Logger) ClientOption {
	return func(c *Client) {
		c.ErrorLogger = l
	}
}

// WithMetrics attaches a collector set; without it nothing is recorded.
func WithMetrics(m *metric.Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithMaterializeLimit overrides DefaultMaterializeLimit.
func WithMaterializeLimit(limit int) ClientOption {
	return func(c *Client) {
		c.materializeLimit = limit
	}
}

// WithOfflineDao injects a pre-built offline DAO instead of wiring one from
// configuration.
func WithOfflineDao(d dao.OfflineStoreDao) ClientOption {
	return func(c *Client) {
		c.offlineDao = d
	}
}

// WithOnlineDao injects a pre-built online DAO instead of wiring one from
// configuration.
func WithOnlineDao(d dao.OnlineStoreDao) ClientOption {
	return func(c *Client) {
		c.onlineDao = d
	}
}

// Client owns the registry snapshot handle and the two store DAOs. Construct
// one per process and pass it into every request path; all methods are safe
// for concurrent use.
type Client struct {
	registry   *registry.Registry
	offlineDao dao.OfflineStoreDao
	onlineDao  dao.OnlineStoreDao
	metrics    *metric.Metrics

	materializeLimit int

	// Logger specifies a logger used to report internal changes
	Logger Logger

	// ErrorLogger is the logger to report errors
	ErrorLogger Logger
}

// NewClient loads the catalog, registers the configured datasources and wires
// the DAOs. Backend selection happens here, once.
func NewClient(cfg config.Config, opts ...ClientOption) (*Client, error) {
	reg, err := registry.Load(cfg.RegistryPath)
	if err != nil {
		return nil, err
	}

	client := &Client{
		registry:         reg,
		materializeLimit: DefaultMaterializeLimit,
	}
	for _, opt := range opts {
		opt(client)
	}

	if client.offlineDao == nil {
		if err := sqldb.RegisterSQLStore(dao.DefaultSQLStoreName, cfg.OfflineDriver, cfg.OfflineDSN); err != nil {
			return nil, err
		}
		client.offlineDao, err = dao.NewOfflineStoreDao(dao.NewDaoConfig(cfg))
		if err != nil {
			return nil, err
		}
	}

	if client.onlineDao == nil {
		if cfg.OnlineBackend == constants.Online_Backend_Redis {
			if err := redisdb.RegisterRedis(dao.DefaultRedisName, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err != nil {
				return nil, err
			}
		}
		client.onlineDao, err = dao.NewOnlineStoreDao(dao.NewDaoConfig(cfg))
		if err != nil {
			return nil, err
		}
	}

	return client, nil
}

// New assembles a client from already-built parts. Mainly for tests and
// embedders that manage datasources themselves.
func New(reg *registry.Registry, offline dao.OfflineStoreDao, online dao.OnlineStoreDao, opts ...ClientOption) *Client {
	client := &Client{
		registry:         reg,
		offlineDao:       offline,
		onlineDao:        online,
		materializeLimit: DefaultMaterializeLimit,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

func (c *Client) logError(err error) {
	if c.ErrorLogger != nil {
		c.ErrorLogger.Printf(err.Error())
		return
	}

	if c.Logger != nil {
		c.Logger.Printf(err.Error())
	}
}

// Registry returns the catalog handle.
func (c *Client) Registry() *registry.Registry { return c.registry }

// GetFeatureView looks a feature view up by name. Absence is a normal
// outcome.
func (c *Client) GetFeatureView(name string) (*domain.FeatureView, bool) {
	return c.registry.Get(name)
}

// ReloadRegistry re-parses the catalog and swaps the active snapshot. On
// failure the previous snapshot stays active.
func (c *Client) ReloadRegistry() ([]*domain.FeatureView, error) {
	views, err := c.registry.Reload()
	c.metrics.RecordRegistryReload(err)
	if err != nil {
		c.logError(fmt.Errorf("registry reload error, err=%v", err))
		return nil, err
	}
	return views, nil
}

// Ingest appends rows to the feature view's historical table in one atomic
// batch. Any malformed timestamp or constraint violation aborts the whole
// batch and leaves the store unchanged.
func (c *Client) Ingest(ctx context.Context, viewName string, rows []map[string]interface{}) (int, error) {
	view, ok := c.registry.Get(viewName)
	if !ok {
		return 0, fmt.Errorf("%w: %s", fserrors.ErrUnknownFeatureView, viewName)
	}

	n, err := c.offlineDao.InsertRows(ctx, view, rows)
	c.metrics.RecordIngest(viewName, n, err)
	if err != nil {
		c.logError(fmt.Errorf("ingest error, feature_view=%s, err=%v", viewName, err))
		return 0, err
	}
	return n, nil
}

// Materialize copies the latest historical value per entity into the online
// store and returns the number of entities written. Writes are issued
// sequentially; a failing write aborts the remaining work without rolling
// back entities already written. Re-running is safe: it re-derives the full
// latest-row set and re-applies it.
func (c *Client) Materialize(ctx context.Context, viewName string) (int, error) {
	return c.MaterializeWithLimit(ctx, viewName, c.materializeLimit)
}

// MaterializeWithLimit is Materialize with an explicit bound on distinct
// entities.
func (c *Client) MaterializeWithLimit(ctx context.Context, viewName string, limit int) (int, error) {
	view, ok := c.registry.Get(viewName)
	if !ok {
		return 0, fmt.Errorf("%w: %s", fserrors.ErrUnknownFeatureView, viewName)
	}

	start := time.Now()
	n, err := c.materializeView(ctx, view, limit)
	c.metrics.RecordMaterialize(viewName, start, err)
	if err != nil {
		c.logError(fmt.Errorf("materialize error, feature_view=%s, err=%v", viewName, err))
		return n, err
	}
	return n, nil
}

func (c *Client) materializeView(ctx context.Context, view *domain.FeatureView, limit int) (int, error) {
	rows, err := c.offlineDao.LatestRows(ctx, view, limit)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, row := range rows {
		if view.MaterializeFilter != nil {
			keep, err := evalFilter(view, row)
			if err != nil {
				return n, err
			}
			if !keep {
				continue
			}
		}

		entityID := row.EntityID.EncodeString()
		if err := c.onlineDao.WriteFeatures(ctx, view, entityID, row.Features); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func evalFilter(view *domain.FeatureView, row domain.Row) (bool, error) {
	out, err := expr.Run(view.MaterializeFilter, row.ExprEnv(view))
	if err != nil {
		return false, fmt.Errorf("materialize_filter %q: %w", view.FilterSource, err)
	}
	keep, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("materialize_filter %q: result is %T, want bool", view.FilterSource, out)
	}
	return keep, nil
}

// GetOnlineFeatures reads the cached feature map for one entity. A nil map
// means no write has ever targeted that (view, entity) pair; it is not an
// error.
func (c *Client) GetOnlineFeatures(ctx context.Context, viewName, entityID string) (map[string]string, error) {
	view, ok := c.registry.Get(viewName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", fserrors.ErrUnknownFeatureView, viewName)
	}

	start := time.Now()
	data, err := c.onlineDao.ReadFeatures(ctx, view, entityID)
	if err != nil {
		c.logError(fmt.Errorf("online read error, feature_view=%s, entity=%s, err=%v", viewName, entityID, err))
		return nil, err
	}
	c.metrics.RecordOnlineRequest(viewName, start, data != nil)
	return data, nil
}

// GetOnlineValues is GetOnlineFeatures plus a decode of each stored string
// back into a typed value via the feature's declared value_type. Fields not
// declared in the schema stay string-typed.
func (c *Client) GetOnlineValues(ctx context.Context, viewName, entityID string) (map[string]domain.Value, error) {
	data, err := c.GetOnlineFeatures(ctx, viewName, entityID)
	if err != nil || data == nil {
		return nil, err
	}

	view, viewOK := c.registry.Get(viewName)
	values := make(map[string]domain.Value, len(data))
	for name, s := range data {
		var t constants.FSType
		ok := false
		if viewOK {
			t, ok = view.FeatureType(name)
		}
		if !ok {
			values[name] = domain.StringValue(s)
			continue
		}
		v, err := domain.DecodeValue(s, t)
		if err != nil {
			values[name] = domain.StringValue(s)
			continue
		}
		values[name] = v
	}
	return values, nil
}
