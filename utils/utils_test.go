package utils

import (
	"testing"

	"fortio.org/assert"
)

func TestToString(t *testing.T) {
	assert.Equal(t, "x", ToString("x", ""))
	assert.Equal(t, "7", ToString(7, ""))
	assert.Equal(t, "b", ToString([]byte("b"), ""))
	assert.Equal(t, "fallback", ToString(nil, "fallback"))
}

func TestToInt64(t *testing.T) {
	assert.Equal(t, int64(5), ToInt64(5, 0))
	assert.Equal(t, int64(5), ToInt64("5", 0))
	assert.Equal(t, int64(5), ToInt64(5.9, 0))
	assert.Equal(t, int64(-1), ToInt64("nope", -1))
}

func TestToFloat64(t *testing.T) {
	assert.Equal(t, 2.5, ToFloat64(2.5, 0))
	assert.Equal(t, 2.5, ToFloat64("2.5", 0))
	assert.Equal(t, 2.0, ToFloat64(2, 0))
	assert.Equal(t, -1.0, ToFloat64(struct{}{}, -1))
}
