// Package fserrors defines the error taxonomy shared by the registry, the
// offline store and the online store. Absence of a feature view or of a cache
// entry is not an error anywhere in this module; only genuine failures
// (missing catalog file, malformed catalog entry, bad timestamp, backend
// read/write failure) are represented here.
package fserrors

import (
	"errors"
	"fmt"
)

// ErrConfigNotFound reports a missing catalog source.
var ErrConfigNotFound = errors.New("catalog source not found")

// ErrUnknownFeatureView reports an operation against a feature-view name the
// active catalog does not contain. Registry lookups return plain absence; the
// client facade returns this error so transports can translate it.
var ErrUnknownFeatureView = errors.New("unknown feature view")

// ValidationError reports a malformed or incomplete catalog entry. Index is
// the position of the feature view in the catalog sequence, Field the
// offending field.
type ValidationError struct {
	Index int
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid feature_view at index %d: field %q: %s", e.Index, e.Field, e.Msg)
}

// TimestampFormatError reports a timestamp value that is neither a native
// temporal value nor valid ISO-8601 text.
type TimestampFormatError struct {
	Value interface{}
}

func (e *TimestampFormatError) Error() string {
	return fmt.Sprintf("malformed timestamp value %v", e.Value)
}

// StoreWriteError wraps a failed write against the offline or online backend.
type StoreWriteError struct {
	Backend string
	Key     string
	Err     error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("%s write failed, key=%s: %v", e.Backend, e.Key, e.Err)
}

func (e *StoreWriteError) Unwrap() error { return e.Err }

// StoreReadError wraps a failed read against the offline or online backend.
type StoreReadError struct {
	Backend string
	Key     string
	Err     error
}

func (e *StoreReadError) Error() string {
	return fmt.Sprintf("%s read failed, key=%s: %v", e.Backend, e.Key, e.Err)
}

func (e *StoreReadError) Unwrap() error { return e.Err }
