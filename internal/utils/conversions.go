package utils

import "math"

// Truthy reports whether v would be considered true by the host page.
// nil, false, zero numbers, NaN and the empty string are falsy; every
// other value, including empty maps and slices, is truthy.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case int:
		return t != 0
	case int8:
		return t != 0
	case int16:
		return t != 0
	case int32:
		return t != 0
	case int64:
		return t != 0
	case uint:
		return t != 0
	case uint8:
		return t != 0
	case uint16:
		return t != 0
	case uint32:
		return t != 0
	case uint64:
		return t != 0
	case float32:
		return t != 0 && !math.IsNaN(float64(t))
	case float64:
		return t != 0 && !math.IsNaN(t)
	}
	return true
}

// String returns v when it is a non-empty string.
func String(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok && s != ""
}
