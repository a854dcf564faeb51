package dao

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/huandu/go-sqlbuilder"

	"github.com/datalane/featurestore-go/constants"
	"github.com/datalane/featurestore-go/domain"
	"github.com/datalane/featurestore-go/fserrors"
)

// OfflineStoreSQLDao implements OfflineStoreDao over database/sql. The
// latest-row query is dialect specific: postgres uses DISTINCT ON, sqlite and
// mysql use a ROW_NUMBER window.
type OfflineStoreSQLDao struct {
	db     *sql.DB
	driver string
	flavor sqlbuilder.Flavor
}

func NewOfflineStoreSQLDao(db *sql.DB, driver string) *OfflineStoreSQLDao {
	flavor := sqlbuilder.SQLite
	switch driver {
	case constants.Offline_Driver_Postgres:
		flavor = sqlbuilder.PostgreSQL
	case constants.Offline_Driver_MySQL:
		flavor = sqlbuilder.MySQL
	}
	return &OfflineStoreSQLDao{db: db, driver: driver, flavor: flavor}
}

func projectedColumns(view *domain.FeatureView) []string {
	cols := make([]string, 0, len(view.Features)+2)
	cols = append(cols, view.Offline.EntityColumn, view.Offline.TimestampColumn)
	cols = append(cols, view.FeatureNames()...)
	return cols
}

func (d *OfflineStoreSQLDao) LatestRows(ctx context.Context, view *domain.FeatureView, limit int) ([]domain.Row, error) {
	cols := projectedColumns(view)

	var query string
	var args []interface{}

	if d.driver == constants.Offline_Driver_Postgres {
		sb := d.flavor.NewSelectBuilder()
		selectExprs := make([]string, len(cols))
		copy(selectExprs, cols)
		selectExprs[0] = fmt.Sprintf("DISTINCT ON (%s) %s", view.Offline.EntityColumn, view.Offline.EntityColumn)
		sb.Select(selectExprs...).From(view.Offline.Table)
		sb.OrderBy(view.Offline.EntityColumn, view.Offline.TimestampColumn+" DESC")
		sb.Limit(limit)
		query, args = sb.Build()
	} else {
		inner := d.flavor.NewSelectBuilder()
		innerExprs := make([]string, 0, len(cols)+1)
		innerExprs = append(innerExprs, cols...)
		innerExprs = append(innerExprs, fmt.Sprintf(
			"ROW_NUMBER() OVER (PARTITION BY %s ORDER BY %s DESC) AS rn",
			view.Offline.EntityColumn, view.Offline.TimestampColumn))
		inner.Select(innerExprs...).From(view.Offline.Table)

		sb := d.flavor.NewSelectBuilder()
		sb.Select(cols...).From(sb.BuilderAs(inner, "t"))
		sb.Where(sb.Equal("rn", 1))
		sb.Limit(limit)
		query, args = sb.Build()
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &fserrors.StoreReadError{Backend: "offline/" + d.driver, Key: view.Offline.Table, Err: err}
	}
	defer rows.Close()

	var result []domain.Row
	for rows.Next() {
		vals := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &fserrors.StoreReadError{Backend: "offline/" + d.driver, Key: view.Offline.Table, Err: err}
		}

		row := domain.Row{
			EntityID: convertColumn(vals[0], view.Entity.ValueType),
			Features: make(map[string]domain.Value, len(view.Features)),
		}
		ts, err := convertTimestamp(vals[1])
		if err != nil {
			return nil, err
		}
		row.Timestamp = ts
		for i, f := range view.Features {
			row.Features[f.Name] = convertColumn(vals[2+i], f.ValueType)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &fserrors.StoreReadError{Backend: "offline/" + d.driver, Key: view.Offline.Table, Err: err}
	}

	return result, nil
}

func (d *OfflineStoreSQLDao) InsertRows(ctx context.Context, view *domain.FeatureView, inputRows []map[string]interface{}) (int, error) {
	cols := projectedColumns(view)

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, &fserrors.StoreWriteError{Backend: "offline/" + d.driver, Key: view.Offline.Table, Err: err}
	}
	defer tx.Rollback()

	n := 0
	for _, input := range inputRows {
		args, err := d.insertArgs(view, cols, input)
		if err != nil {
			return 0, err
		}

		ib := d.flavor.NewInsertBuilder()
		ib.InsertInto(view.Offline.Table).Cols(cols...).Values(args...)
		query, queryArgs := ib.Build()

		if _, err := tx.ExecContext(ctx, query, queryArgs...); err != nil {
			return 0, &fserrors.StoreWriteError{Backend: "offline/" + d.driver, Key: view.Offline.Table, Err: err}
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, &fserrors.StoreWriteError{Backend: "offline/" + d.driver, Key: view.Offline.Table, Err: err}
	}
	return n, nil
}

func (d *OfflineStoreSQLDao) insertArgs(view *domain.FeatureView, cols []string, input map[string]interface{}) ([]interface{}, error) {
	args := make([]interface{}, 0, len(cols))

	args = append(args, domain.ValueFromAny(input[view.Offline.EntityColumn]).Interface())

	ts, err := domain.ParseTimestamp(input[view.Offline.TimestampColumn])
	if err != nil {
		return nil, err
	}
	if d.driver == constants.Offline_Driver_SQLite {
		// Text storage keeps UTC ISO timestamps ordered lexicographically.
		args = append(args, ts.UTC().Format(time.RFC3339Nano))
	} else {
		args = append(args, ts)
	}

	for _, name := range view.FeatureNames() {
		raw, ok := input[name]
		if !ok {
			args = append(args, nil)
			continue
		}
		args = append(args, domain.ValueFromAny(raw).Interface())
	}
	return args, nil
}

func convertColumn(raw interface{}, t constants.FSType) domain.Value {
	switch x := raw.(type) {
	case nil:
		return domain.NullValue()
	case bool:
		return domain.BoolValue(x)
	case int64:
		switch t {
		case constants.FS_FLOAT, constants.FS_DOUBLE:
			return domain.FloatValue(float64(x))
		case constants.FS_BOOLEAN:
			return domain.BoolValue(x != 0)
		default:
			return domain.IntValue(x)
		}
	case float64:
		switch t {
		case constants.FS_INT32, constants.FS_INT64:
			return domain.IntValue(int64(x))
		default:
			return domain.FloatValue(x)
		}
	case time.Time:
		return domain.TimeValue(x)
	case []byte:
		return decodeText(string(x), t)
	case string:
		return decodeText(x, t)
	default:
		return domain.StringValue(fmt.Sprint(x))
	}
}

func decodeText(s string, t constants.FSType) domain.Value {
	v, err := domain.DecodeValue(s, t)
	if err != nil {
		return domain.StringValue(s)
	}
	return v
}

func convertTimestamp(raw interface{}) (time.Time, error) {
	switch x := raw.(type) {
	case time.Time:
		return x, nil
	case int64:
		return time.Unix(x, 0).UTC(), nil
	case []byte:
		return domain.ParseTimestamp(string(x))
	default:
		return domain.ParseTimestamp(raw)
	}
}
