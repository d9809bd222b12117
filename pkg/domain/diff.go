package domain

import "reflect"

// ParamsDiff is the JSON delta pushed to introspection subscribers.
type ParamsDiff struct {
	Revision uint64 `json:"revision"`

	// Changed holds added or modified keys. Removed keys map to nil.
	Changed map[Key]any `json:"changed"`
}

// Diff calculates the keys that differ between oldParams and newParams.
// A nil oldParams yields every key of newParams (initial load).
// It returns nil when nothing changed.
func Diff(oldParams, newParams Params) map[Key]any {
	delta := make(map[Key]any)

	for k, newVal := range newParams {
		oldVal, exists := oldParams[k]
		if !exists || !reflect.DeepEqual(oldVal, newVal) {
			delta[k] = newVal
		}
	}
	for k := range oldParams {
		if _, exists := newParams[k]; !exists {
			delta[k] = nil
		}
	}

	if len(delta) == 0 {
		return nil
	}
	return delta
}
