package domain

import "time"

// Row is one historical record read from the offline store: the entity key,
// the event timestamp, and the declared feature columns. Rows are immutable
// once read.
type Row struct {
	EntityID  Value
	Timestamp time.Time
	Features  map[string]Value
}

// ExprEnv exposes the row as an evaluation environment for a materialization
// filter: the entity column, the timestamp column and every feature column by
// name, with native Go values.
func (r Row) ExprEnv(view *FeatureView) map[string]interface{} {
	env := make(map[string]interface{}, len(r.Features)+2)
	for name, v := range r.Features {
		env[name] = v.Interface()
	}
	env[view.Offline.EntityColumn] = r.EntityID.Interface()
	env[view.Offline.TimestampColumn] = r.Timestamp
	return env
}
