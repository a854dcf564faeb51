package dao

import (
	"context"
	"testing"

	"fortio.org/assert"

	"github.com/datalane/featurestore-go/domain"
)

func testView(name string) *domain.FeatureView {
	return &domain.FeatureView{Name: name}
}

func TestMemoryDaoReadAbsent(t *testing.T) {
	d := NewOnlineStoreMemoryDao()

	data, err := d.ReadFeatures(context.Background(), testView("v"), "123")
	if err != nil {
		t.Fatal(err)
	}
	if data != nil {
		t.Errorf("absent entity should read nil, got %v", data)
	}
}

func TestMemoryDaoWriteMerges(t *testing.T) {
	d := NewOnlineStoreMemoryDao()
	view := testView("v")
	ctx := context.Background()

	err := d.WriteFeatures(ctx, view, "123", map[string]domain.Value{
		"age":     domain.IntValue(28),
		"country": domain.StringValue("FR"),
	})
	if err != nil {
		t.Fatal(err)
	}

	// Second write omits country; it must stay untouched.
	err = d.WriteFeatures(ctx, view, "123", map[string]domain.Value{
		"age": domain.IntValue(29),
	})
	if err != nil {
		t.Fatal(err)
	}

	data, err := d.ReadFeatures(ctx, view, "123")
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, map[string]string{"age": "29", "country": "FR"}, data)
}

func TestMemoryDaoSkipsNulls(t *testing.T) {
	d := NewOnlineStoreMemoryDao()
	view := testView("v")
	ctx := context.Background()

	err := d.WriteFeatures(ctx, view, "1", map[string]domain.Value{
		"a": domain.FloatValue(3.0),
		"b": domain.NullValue(),
	})
	if err != nil {
		t.Fatal(err)
	}

	data, err := d.ReadFeatures(ctx, view, "1")
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, map[string]string{"a": "3.0"}, data)

	// A write of only nulls creates no entry at all.
	err = d.WriteFeatures(ctx, view, "2", map[string]domain.Value{"a": domain.NullValue()})
	if err != nil {
		t.Fatal(err)
	}
	data, err = d.ReadFeatures(ctx, view, "2")
	if err != nil {
		t.Fatal(err)
	}
	if data != nil {
		t.Errorf("null-only write should leave the key absent, got %v", data)
	}
}

func TestMemoryDaoKeysAreViewScoped(t *testing.T) {
	d := NewOnlineStoreMemoryDao()
	ctx := context.Background()

	if err := d.WriteFeatures(ctx, testView("a"), "1", map[string]domain.Value{"f": domain.IntValue(1)}); err != nil {
		t.Fatal(err)
	}

	data, err := d.ReadFeatures(ctx, testView("b"), "1")
	if err != nil {
		t.Fatal(err)
	}
	if data != nil {
		t.Errorf("same entity under another view should be absent, got %v", data)
	}
}
