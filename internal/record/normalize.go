package record

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
)

// volatileFields update on every API read without indicating a status
// change, so they are stripped before hashing.
var volatileFields = []string{"updatedAtTimestamp", "createdAtTimestamp"}

// Normalize returns a copy of the record with volatile timestamp
// fields removed from the data object and from every event entry.
// A record without a data object is returned as a plain copy — there
// is nothing to strip. The input is never mutated, and normalizing an
// already-normalized record is a no-op.
func Normalize(r Record) Record {
	out := deepCopy(map[string]any(r)).(map[string]any)

	data, ok := out["data"].(map[string]any)
	if !ok {
		return Record(out)
	}

	for _, field := range volatileFields {
		delete(data, field)
	}

	if events, ok := data["events"].([]any); ok {
		for _, e := range events {
			event, ok := e.(map[string]any)
			if !ok {
				continue
			}
			for _, field := range volatileFields {
				delete(event, field)
			}
		}
	}

	return Record(out)
}

// Fingerprint returns a 32-character hex digest of the record's
// canonical JSON serialization. encoding/json writes map keys in
// sorted order at every level, so in-memory key ordering never moves
// the digest. The digest gates whether the differ runs at all; it is
// not a security boundary, so MD5's weakness does not matter here.
func Fingerprint(r Record) string {
	// Records come from json.Unmarshal, so marshaling cannot fail.
	raw, _ := json.Marshal(map[string]any(r))
	sum := md5.Sum(raw)
	return hex.EncodeToString(sum[:])
}

func deepCopy(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = deepCopy(inner)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = deepCopy(inner)
		}
		return out
	default:
		return v
	}
}
