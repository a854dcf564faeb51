package featurestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"fortio.org/assert"
	_ "modernc.org/sqlite"

	"github.com/datalane/featurestore-go/constants"
	"github.com/datalane/featurestore-go/dao"
	"github.com/datalane/featurestore-go/domain"
	"github.com/datalane/featurestore-go/fserrors"
	"github.com/datalane/featurestore-go/registry"
)

const testCatalog = `
feature_views:
  - name: user_features
    entity:
      name: user_id
      value_type: int
    ttl_seconds: 86400
    offline:
      table: user_features
      timestamp_column: event_ts
      entity_column: user_id
    features:
      - name: age
        value_type: int
      - name: country
        value_type: string
      - name: purchases_7d
        value_type: float
  - name: adult_features
    entity:
      name: user_id
      value_type: int
    materialize_filter: "age >= 30"
    offline:
      table: user_features
      timestamp_column: event_ts
      entity_column: user_id
    features:
      - name: age
        value_type: int
      - name: country
        value_type: string
      - name: purchases_7d
        value_type: float
`

var clientSeq int

func newTestClient(t *testing.T) *Client {
	t.Helper()

	path := filepath.Join(t.TempDir(), "feature_views.yaml")
	if err := os.WriteFile(path, []byte(testCatalog), 0o644); err != nil {
		t.Fatal(err)
	}
	reg, err := registry.Load(path)
	if err != nil {
		t.Fatal(err)
	}

	clientSeq++
	dsn := fmt.Sprintf("file:client_test_%d?mode=memory&cache=shared", clientSeq)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE user_features (
		  user_id INTEGER NOT NULL,
		  event_ts TEXT NOT NULL,
		  age INTEGER,
		  country TEXT,
		  purchases_7d REAL,
		  PRIMARY KEY (user_id, event_ts)
		)`)
	if err != nil {
		t.Fatal(err)
	}

	offline := dao.NewOfflineStoreSQLDao(db, constants.Offline_Driver_SQLite)
	online := dao.NewOnlineStoreMemoryDao()
	return New(reg, offline, online)
}

func seedClient(t *testing.T, client *Client) {
	t.Helper()
	rows := []map[string]interface{}{
		{"user_id": 123, "event_ts": "2026-01-01T00:00:00Z", "age": 28, "country": "FR", "purchases_7d": 1.0},
		{"user_id": 123, "event_ts": "2026-02-01T00:00:00Z", "age": 29, "country": "FR", "purchases_7d": 3.0},
		{"user_id": 456, "event_ts": "2026-02-01T00:00:00Z", "age": 41, "country": "DE", "purchases_7d": 0.0},
	}
	n, err := client.Ingest(context.Background(), "user_features", rows)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 3, n)
}

func TestMaterializeAndGetOnline(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	seedClient(t, client)

	n, err := client.Materialize(ctx, "user_features")
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 2, n)

	feats, err := client.GetOnlineFeatures(ctx, "user_features", "123")
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, map[string]string{
		"age":          "29",
		"country":      "FR",
		"purchases_7d": "3.0",
	}, feats)

	absent, err := client.GetOnlineFeatures(ctx, "user_features", "999")
	if err != nil {
		t.Fatal(err)
	}
	if absent != nil {
		t.Errorf("uncached entity should read nil, got %v", absent)
	}
}

func TestMaterializeIsIdempotent(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	seedClient(t, client)

	first, err := client.Materialize(ctx, "user_features")
	if err != nil {
		t.Fatal(err)
	}
	second, err := client.Materialize(ctx, "user_features")
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, first, second)

	feats, err := client.GetOnlineFeatures(ctx, "user_features", "456")
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "41", feats["age"])
}

func TestMaterializeFilterSkipsRows(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	seedClient(t, client)

	// adult_features shares the table but keeps only age >= 30.
	n, err := client.Materialize(ctx, "adult_features")
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 1, n)

	feats, err := client.GetOnlineFeatures(ctx, "adult_features", "456")
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "41", feats["age"])

	skipped, err := client.GetOnlineFeatures(ctx, "adult_features", "123")
	if err != nil {
		t.Fatal(err)
	}
	if skipped != nil {
		t.Errorf("filtered entity should not be materialized, got %v", skipped)
	}
}

func TestUnknownFeatureView(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	if _, err := client.Ingest(ctx, "nope", nil); !errors.Is(err, fserrors.ErrUnknownFeatureView) {
		t.Errorf("ingest: expected ErrUnknownFeatureView, got %v", err)
	}
	if _, err := client.Materialize(ctx, "nope"); !errors.Is(err, fserrors.ErrUnknownFeatureView) {
		t.Errorf("materialize: expected ErrUnknownFeatureView, got %v", err)
	}
	if _, err := client.GetOnlineFeatures(ctx, "nope", "1"); !errors.Is(err, fserrors.ErrUnknownFeatureView) {
		t.Errorf("get online: expected ErrUnknownFeatureView, got %v", err)
	}

	if _, ok := client.GetFeatureView("nope"); ok {
		t.Error("lookup absence should be a plain false, not an error")
	}
}

func TestGetOnlineValuesDecodesTypes(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	seedClient(t, client)

	if _, err := client.Materialize(ctx, "user_features"); err != nil {
		t.Fatal(err)
	}

	values, err := client.GetOnlineValues(ctx, "user_features", "123")
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, int64(29), values["age"].Interface())
	assert.Equal(t, "FR", values["country"].Interface())
	assert.Equal(t, 3.0, values["purchases_7d"].Interface())
	assert.Equal(t, domain.KindFloat, values["purchases_7d"].Kind())
}

func TestIngestAtomicity(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	rows := []map[string]interface{}{
		{"user_id": 1, "event_ts": "2026-01-01T00:00:00Z", "age": 20},
		{"user_id": 2, "event_ts": "garbage", "age": 30},
	}
	if _, err := client.Ingest(ctx, "user_features", rows); err == nil {
		t.Fatal("batch with malformed timestamp should fail")
	}

	// Nothing from the failed batch may be visible.
	n, err := client.Materialize(ctx, "user_features")
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 0, n)
}
