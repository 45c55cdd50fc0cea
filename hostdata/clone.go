package hostdata

// cloneValue deep copies the container types that JSON decoding and host code
// produce. Any other value is returned as-is.
func cloneValue(v any) any {
	switch t := v.(type) {
	case RawRecord:
		return cloneRecord(t)
	case map[string]any:
		return map[string]any(cloneRecord(t))
	case map[string]string:
		out := make(map[string]string, len(t))
		for k, s := range t {
			out[k] = s
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	}
	return v
}

func cloneRecord(rec map[string]any) RawRecord {
	if rec == nil {
		return nil
	}
	out := make(RawRecord, len(rec))
	for k, v := range rec {
		out[k] = cloneValue(v)
	}
	return out
}
