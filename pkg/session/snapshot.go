package session

import (
	"fmt"

	"github.com/aretw0/arttic/pkg/domain"
)

// Snapshot is a read-only view of the store at one revision. Commits replace
// the store's map instead of mutating it, so a Snapshot never changes.
type Snapshot struct {
	params   domain.Params
	revision uint64
}

// Revision counts committed updates.
func (s Snapshot) Revision() uint64 { return s.revision }

// Get returns the value for key. Binary values are copied.
func (s Snapshot) Get(key domain.Key) any { return cloneValue(s.params[key]) }

// Params returns a deep copy of every value.
func (s Snapshot) Params() domain.Params { return s.params.Clone() }

// String returns key as a string, formatting non-string values.
func (s Snapshot) String(key domain.Key) string {
	switch v := s.params[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Int returns key as an int. Floats are truncated.
func (s Snapshot) Int(key domain.Key) int {
	switch v := s.params[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// Int64 returns key as an int64. Seeds need the full unsigned 32-bit range.
func (s Snapshot) Int64(key domain.Key) int64 {
	switch v := s.params[key].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case uint32:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

// Float returns key as a float64.
func (s Snapshot) Float(key domain.Key) float64 {
	switch v := s.params[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

// Bool returns key as a bool.
func (s Snapshot) Bool(key domain.Key) bool {
	v, _ := s.params[key].(bool)
	return v
}

// Bytes returns a copy of a binary value.
func (s Snapshot) Bytes(key domain.Key) []byte {
	v, _ := s.params[key].([]byte)
	if v == nil {
		return nil
	}
	return append([]byte(nil), v...)
}

// Diff returns the keys changed between prev and s.
func (s Snapshot) Diff(prev Snapshot) *domain.ParamsDiff {
	changed := domain.Diff(prev.params, s.params)
	if changed == nil {
		return nil
	}
	return &domain.ParamsDiff{Revision: s.revision, Changed: changed}
}
