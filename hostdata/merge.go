package hostdata

import (
	"encoding/json"
	"fmt"
)

// Merge applies patch on top of base one top-level key at a time. A key present
// in patch replaces the value in base wholesale; keys absent from patch keep
// their base value.
func Merge(base, patch BridgeData) BridgeData {
	return Normalize(MergeRecords(base.ToRecord(), patch.ToRecord()))
}

// MergeRecords returns a shallow merge of src over dst without modifying either.
func MergeRecords(dst, src RawRecord) RawRecord {
	out := make(RawRecord, len(dst)+len(src))
	for k, v := range dst {
		out[k] = v
	}
	for k, v := range src {
		out[k] = v
	}
	return out
}

// Canonical returns a stable serialisation of d. Map keys are sorted, so equal
// states always serialise identically.
func Canonical(d BridgeData) string {
	rec := d.ToRecord()
	b, err := json.Marshal(map[string]any(rec))
	if err != nil {
		// Host values that JSON cannot carry still get a deterministic form.
		return fmt.Sprintf("%v", map[string]any(rec))
	}
	return string(b)
}

// Equal compares the canonical forms of a and b.
func Equal(a, b BridgeData) bool {
	return Canonical(a) == Canonical(b)
}

// Changes reports whether merging patch into base would alter base.
func Changes(base, patch BridgeData) bool {
	return !Equal(Merge(base, patch), base)
}
