package utils

import (
	"fmt"
	"strconv"
)

// ToString renders any scalar as its string form.
func ToString(i interface{}, defaultVal string) string {
	switch value := i.(type) {
	case nil:
		return defaultVal
	case string:
		return value
	case []byte:
		return string(value)
	default:
		return fmt.Sprintf("%v", value)
	}
}

// ToInt64 converts loose numeric input, returning defaultVal when it cannot.
func ToInt64(i interface{}, defaultVal int64) int64 {
	switch value := i.(type) {
	case int:
		return int64(value)
	case int32:
		return int64(value)
	case int64:
		return value
	case float32:
		return int64(value)
	case float64:
		return int64(value)
	case string:
		if v, err := strconv.ParseInt(value, 10, 64); err == nil {
			return v
		}
		return defaultVal
	case []byte:
		if v, err := strconv.ParseInt(string(value), 10, 64); err == nil {
			return v
		}
		return defaultVal
	default:
		return defaultVal
	}
}

// ToFloat64 converts loose numeric input, returning defaultVal when it cannot.
func ToFloat64(i interface{}, defaultVal float64) float64 {
	switch value := i.(type) {
	case int:
		return float64(value)
	case int32:
		return float64(value)
	case int64:
		return float64(value)
	case float32:
		return float64(value)
	case float64:
		return value
	case string:
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			return v
		}
		return defaultVal
	case []byte:
		if v, err := strconv.ParseFloat(string(value), 64); err == nil {
			return v
		}
		return defaultVal
	default:
		return defaultVal
	}
}
