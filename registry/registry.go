// Package registry loads and holds the catalog of feature-view definitions.
// The active catalog is an immutable snapshot behind an atomic pointer;
// Reload parses the source anew and swaps the snapshot only on success, so
// concurrent readers see either the old or the new catalog in full.
package registry

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/expr-lang/expr"
	"gopkg.in/yaml.v3"

	"github.com/datalane/featurestore-go/constants"
	"github.com/datalane/featurestore-go/domain"
	"github.com/datalane/featurestore-go/fserrors"
)

type entityConf struct {
	Name      string `yaml:"name"`
	ValueType string `yaml:"value_type"`
}

type featureConf struct {
	Name      string `yaml:"name"`
	ValueType string `yaml:"value_type"`
}

type offlineConf struct {
	Table           string `yaml:"table"`
	TimestampColumn string `yaml:"timestamp_column"`
	EntityColumn    string `yaml:"entity_column"`
}

type featureViewConf struct {
	Name              string        `yaml:"name"`
	Entity            entityConf    `yaml:"entity"`
	Features          []featureConf `yaml:"features"`
	Offline           offlineConf   `yaml:"offline"`
	TTLSeconds        int           `yaml:"ttl_seconds"`
	MaterializeFilter string        `yaml:"materialize_filter"`
}

type catalogConf struct {
	FeatureViews []featureViewConf `yaml:"feature_views"`
}

type snapshot struct {
	views map[string]*domain.FeatureView
	order []*domain.FeatureView
}

// Registry is the loaded, queryable catalog of feature-view schemas.
type Registry struct {
	path   string
	active atomic.Pointer[snapshot]
}

// Load parses the catalog file at path and returns a registry holding it.
func Load(path string) (*Registry, error) {
	r := &Registry{path: path}
	if _, err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Path returns the configured catalog source path.
func (r *Registry) Path() string { return r.path }

// Get looks a feature view up by exact name. Absence is a normal outcome.
func (r *Registry) Get(name string) (*domain.FeatureView, bool) {
	snap := r.active.Load()
	if snap == nil {
		return nil, false
	}
	view, ok := snap.views[name]
	return view, ok
}

// List returns the feature views of the active snapshot in catalog order.
func (r *Registry) List() []*domain.FeatureView {
	snap := r.active.Load()
	if snap == nil {
		return nil
	}
	out := make([]*domain.FeatureView, len(snap.order))
	copy(out, snap.order)
	return out
}

// Reload re-parses the catalog source and swaps the active snapshot. On any
// failure the previous snapshot stays visible untouched.
func (r *Registry) Reload() ([]*domain.FeatureView, error) {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", fserrors.ErrConfigNotFound, r.path)
		}
		return nil, fmt.Errorf("read catalog %s: %w", r.path, err)
	}

	var conf catalogConf
	if err := yaml.Unmarshal(raw, &conf); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", r.path, err)
	}

	snap, err := buildSnapshot(conf)
	if err != nil {
		return nil, err
	}

	r.active.Store(snap)
	return r.List(), nil
}

func buildSnapshot(conf catalogConf) (*snapshot, error) {
	snap := &snapshot{views: make(map[string]*domain.FeatureView, len(conf.FeatureViews))}

	for i, fv := range conf.FeatureViews {
		view, err := buildView(i, fv)
		if err != nil {
			return nil, err
		}
		if _, dup := snap.views[view.Name]; dup {
			return nil, &fserrors.ValidationError{Index: i, Field: "name", Msg: fmt.Sprintf("duplicate feature view %q", view.Name)}
		}
		snap.views[view.Name] = view
		snap.order = append(snap.order, view)
	}

	return snap, nil
}

func buildView(idx int, fv featureViewConf) (*domain.FeatureView, error) {
	if fv.Name == "" {
		return nil, &fserrors.ValidationError{Index: idx, Field: "name", Msg: "required"}
	}
	if fv.Entity.Name == "" {
		return nil, &fserrors.ValidationError{Index: idx, Field: "entity.name", Msg: "required"}
	}
	entityType, err := constants.FSTypeFromName(fv.Entity.ValueType)
	if err != nil {
		return nil, &fserrors.ValidationError{Index: idx, Field: "entity.value_type", Msg: err.Error()}
	}
	if fv.Offline.Table == "" {
		return nil, &fserrors.ValidationError{Index: idx, Field: "offline.table", Msg: "required"}
	}
	if fv.Offline.TimestampColumn == "" {
		return nil, &fserrors.ValidationError{Index: idx, Field: "offline.timestamp_column", Msg: "required"}
	}
	if fv.Offline.EntityColumn == "" {
		return nil, &fserrors.ValidationError{Index: idx, Field: "offline.entity_column", Msg: "required"}
	}
	if len(fv.Features) == 0 {
		return nil, &fserrors.ValidationError{Index: idx, Field: "features", Msg: "at least one feature is required"}
	}
	if fv.TTLSeconds < 0 {
		return nil, &fserrors.ValidationError{Index: idx, Field: "ttl_seconds", Msg: "must be non-negative"}
	}

	view := &domain.FeatureView{
		Name: fv.Name,
		Entity: domain.Entity{
			Name:      fv.Entity.Name,
			ValueType: entityType,
		},
		Offline: domain.OfflineSource{
			Table:           fv.Offline.Table,
			TimestampColumn: fv.Offline.TimestampColumn,
			EntityColumn:    fv.Offline.EntityColumn,
		},
		TTLSeconds: fv.TTLSeconds,
	}

	for j, f := range fv.Features {
		if f.Name == "" {
			return nil, &fserrors.ValidationError{Index: idx, Field: fmt.Sprintf("features[%d].name", j), Msg: "required"}
		}
		ft, err := constants.FSTypeFromName(f.ValueType)
		if err != nil {
			return nil, &fserrors.ValidationError{Index: idx, Field: fmt.Sprintf("features[%d].value_type", j), Msg: err.Error()}
		}
		view.Features = append(view.Features, domain.Feature{Name: f.Name, ValueType: ft})
	}

	if fv.MaterializeFilter != "" {
		program, err := expr.Compile(fv.MaterializeFilter)
		if err != nil {
			return nil, &fserrors.ValidationError{Index: idx, Field: "materialize_filter", Msg: err.Error()}
		}
		view.MaterializeFilter = program
		view.FilterSource = fv.MaterializeFilter
	}

	return view, nil
}
