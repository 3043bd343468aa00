package record

// Record is a raw case record as decoded from the case-service API.
// The schema is open: USCIS adds fields freely, and change detection
// must stay sensitive to fields we do not model, so the record keeps
// the decoded JSON mapping as-is and exposes typed accessors over the
// parts the differ cares about.
type Record map[string]any

// Event is one entry of the record's events sequence.
type Event map[string]any

// Data returns the record's top-level data object, or nil if the
// record is malformed.
func (r Record) Data() map[string]any {
	data, _ := r["data"].(map[string]any)
	return data
}

// UpdatedAt returns the case's updatedAt value, or "" if absent.
func (r Record) UpdatedAt() string {
	s, _ := r.Data()["updatedAt"].(string)
	return s
}

// Events returns the case's event sequence in API order. Missing or
// malformed events yield an empty slice.
func (r Record) Events() []Event {
	raw, _ := r.Data()["events"].([]any)
	events := make([]Event, 0, len(raw))
	for _, e := range raw {
		if m, ok := e.(map[string]any); ok {
			events = append(events, Event(m))
		}
	}
	return events
}

// EvidenceRequests returns the case's evidence request entries.
func (r Record) EvidenceRequests() []any {
	seq, _ := r.Data()["evidenceRequests"].([]any)
	return seq
}

// Notices returns the case's notice entries.
func (r Record) Notices() []any {
	seq, _ := r.Data()["notices"].([]any)
	return seq
}

// Code returns the event's code, or "Unknown" if absent.
func (e Event) Code() string {
	if s, ok := e["eventCode"].(string); ok {
		return s
	}
	return "Unknown"
}

// DateTime returns the event's timestamp string, or "Unknown date" if
// absent.
func (e Event) DateTime() string {
	if s, ok := e["eventDateTime"].(string); ok {
		return s
	}
	return "Unknown date"
}
