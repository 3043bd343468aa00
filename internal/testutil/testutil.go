// Package testutil provides shared fixtures for casewatch tests.
package testutil

import (
	"encoding/json"
	"testing"

	"github.com/pders01/casewatch/internal/record"
)

// SampleRecord returns a raw case record shaped like a case-service
// API response, volatile timestamp fields included.
func SampleRecord(receiptNumber string) record.Record {
	return record.Record{
		"data": map[string]any{
			"receiptNumber":      receiptNumber,
			"formType":           "I-485",
			"status":             "Case Was Received",
			"updatedAt":          "2024-01-02T10:00:00Z",
			"updatedAtTimestamp": float64(1704189600),
			"createdAtTimestamp": float64(1672531200),
			"events": []any{
				map[string]any{
					"eventCode":          "CASE_RECEIVED",
					"eventDateTime":      "2024-01-01T09:00:00Z",
					"updatedAtTimestamp": float64(1704103200),
					"createdAtTimestamp": float64(1704103200),
				},
			},
			"evidenceRequests": []any{},
			"notices":          []any{},
		},
	}
}

// CloneRecord returns an independent deep copy of a record via a JSON
// round trip, so the copy carries the same value types a decoded API
// response would.
func CloneRecord(t *testing.T, r record.Record) record.Record {
	t.Helper()

	raw, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("failed to marshal record: %v", err)
	}

	var out record.Record
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("failed to unmarshal record: %v", err)
	}

	return out
}

// Data returns the record's data object, failing the test if it is
// missing.
func Data(t *testing.T, r record.Record) map[string]any {
	t.Helper()

	data, ok := r["data"].(map[string]any)
	if !ok {
		t.Fatal("record has no data object")
	}
	return data
}
