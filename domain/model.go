package domain

import (
	"fmt"

	"github.com/expr-lang/expr/vm"

	"github.com/datalane/featurestore-go/constants"
)

// Entity identifies the key dimension a feature view is keyed by.
type Entity struct {
	Name      string
	ValueType constants.FSType
}

// Feature is one named attribute of a feature view. ValueType is declarative
// metadata; it is not enforced at write time.
type Feature struct {
	Name      string
	ValueType constants.FSType
}

// OfflineSource identifies the historical-store relation for a feature view
// and the two columns treated as event time and entity key. Identifiers are
// taken verbatim from the catalog; the catalog author is the trust boundary.
type OfflineSource struct {
	Table           string
	TimestampColumn string
	EntityColumn    string
}

// FeatureView binds one entity type to an ordered set of features and one
// offline source. Instances are immutable once loaded; the registry replaces
// whole snapshots instead of mutating views in place.
type FeatureView struct {
	Name     string
	Entity   Entity
	Features []Feature
	Offline  OfflineSource

	// TTLSeconds is stored from the catalog but not enforced by any read or
	// write path.
	TTLSeconds int

	// MaterializeFilter, when non-nil, is evaluated against each historical
	// row during materialization; rows evaluating false are skipped.
	MaterializeFilter *vm.Program
	FilterSource      string
}

// FeatureNames returns the declared feature column names in catalog order.
func (v *FeatureView) FeatureNames() []string {
	names := make([]string, 0, len(v.Features))
	for _, f := range v.Features {
		names = append(names, f.Name)
	}
	return names
}

// FeatureType looks up the declared type of a feature by name.
func (v *FeatureView) FeatureType(name string) (constants.FSType, bool) {
	for _, f := range v.Features {
		if f.Name == name {
			return f.ValueType, true
		}
	}
	return 0, false
}

// OnlineKey derives the storage key for one entity. The composite is stable
// across backends so the same (view, entity) pair always maps to the same
// storage location.
func (v *FeatureView) OnlineKey(entityID string) string {
	return fmt.Sprintf("fv:%s:entity:%s", v.Name, entityID)
}
