package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/datalane/featurestore-go/constants"
	"github.com/datalane/featurestore-go/fserrors"
)

// ValueKind tags the runtime type of a feature value.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindInt
	KindFloat
	KindString
	KindBool
	KindTime
)

// Value is the tagged feature value carried end-to-end through ingestion,
// historical rows and cache entries. Values are encoded to a storage string
// only at the backend boundary and decoded back via the declared FSType.
type Value struct {
	kind ValueKind
	i    int64
	f    float64
	s    string
	b    bool
	t    time.Time
}

func NullValue() Value            { return Value{kind: KindNull} }
func IntValue(i int64) Value      { return Value{kind: KindInt, i: i} }
func FloatValue(f float64) Value  { return Value{kind: KindFloat, f: f} }
func StringValue(s string) Value  { return Value{kind: KindString, s: s} }
func BoolValue(b bool) Value      { return Value{kind: KindBool, b: b} }
func TimeValue(t time.Time) Value { return Value{kind: KindTime, t: t} }

func (v Value) Kind() ValueKind { return v.kind }
func (v Value) IsNull() bool    { return v.kind == KindNull }

// Interface returns the native Go representation, suitable as a SQL argument.
// Null maps to nil.
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindBool:
		return v.b
	case KindTime:
		return v.t
	default:
		return nil
	}
}

// EncodeString produces the deterministic storage form of the value. Floats
// keep a decimal point so 3.0 encodes as "3.0", not "3". Null values have no
// storage form; callers skip them instead of calling EncodeString.
func (v Value) EncodeString() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return formatFloat(v.f)
	case KindString:
		return v.s
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindTime:
		return v.t.UTC().Format(time.RFC3339Nano)
	default:
		return ""
	}
}

func formatFloat(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// DecodeValue parses a storage string back into a typed value using the
// feature's declared FSType.
func DecodeValue(s string, t constants.FSType) (Value, error) {
	switch t {
	case constants.FS_INT32, constants.FS_INT64:
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Value{}, err
		}
		return IntValue(i), nil
	case constants.FS_FLOAT, constants.FS_DOUBLE:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Value{}, err
		}
		return FloatValue(f), nil
	case constants.FS_BOOLEAN:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(b), nil
	case constants.FS_TIMESTAMP:
		ts, err := ParseTimestamp(s)
		if err != nil {
			return Value{}, err
		}
		return TimeValue(ts), nil
	default:
		return StringValue(s), nil
	}
}

// ValueFromAny converts a caller-supplied row cell (typically decoded JSON)
// into a tagged value. json.Number keeps integers exact.
func ValueFromAny(raw interface{}) Value {
	switch x := raw.(type) {
	case nil:
		return NullValue()
	case Value:
		return x
	case bool:
		return BoolValue(x)
	case string:
		return StringValue(x)
	case int:
		return IntValue(int64(x))
	case int32:
		return IntValue(int64(x))
	case int64:
		return IntValue(x)
	case float32:
		return FloatValue(float64(x))
	case float64:
		return FloatValue(x)
	case time.Time:
		return TimeValue(x)
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return IntValue(i)
		}
		if f, err := x.Float64(); err == nil {
			return FloatValue(f)
		}
		return StringValue(x.String())
	default:
		return StringValue(stringify(raw))
	}
}

func stringify(raw interface{}) string {
	if s, ok := raw.(interface{ String() string }); ok {
		return s.String()
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return ""
	}
	return string(b)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp accepts a native temporal value or ISO-8601 text. A trailing
// "Z" designator is equivalent to "+00:00".
func ParseTimestamp(raw interface{}) (time.Time, error) {
	switch x := raw.(type) {
	case time.Time:
		return x, nil
	case string:
		s := x
		if strings.HasSuffix(s, "Z") {
			s = strings.TrimSuffix(s, "Z") + "+00:00"
		}
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, &fserrors.TimestampFormatError{Value: x}
	default:
		return time.Time{}, &fserrors.TimestampFormatError{Value: raw}
	}
}
