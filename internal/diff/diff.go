// Package diff derives human-readable change descriptions between two
// observations of the same case.
package diff

import (
	"fmt"

	"github.com/pders01/casewatch/internal/record"
	"github.com/pders01/casewatch/internal/store"
)

// Changes compares the previous snapshot of a case with its current
// canonical record and returns descriptions of what changed, in the
// order the checks run. A nil prev means the case has never been seen
// and yields a single first-observation descriptor.
//
// Sequence comparisons are length-based and assume monotonic growth;
// a shrinking sequence produces no descriptor. An empty result with a
// changed fingerprint means only unmonitored fields moved.
func Changes(prev *store.Snapshot, curr record.Record) []string {
	if prev == nil {
		return []string{"Initial monitoring setup"}
	}

	var changes []string

	if prevAt, currAt := prev.Record.UpdatedAt(), curr.UpdatedAt(); prevAt != currAt {
		changes = append(changes, fmt.Sprintf("Case updated: %s", currAt))
	}

	prevEvents := prev.Record.Events()
	currEvents := curr.Events()
	if n := len(currEvents) - len(prevEvents); n > 0 {
		changes = append(changes, fmt.Sprintf("%d new event(s) added", n))
		// The case-service API returns events newest first, so the
		// first n entries are the ones that were absent last cycle.
		for _, event := range currEvents[:n] {
			changes = append(changes, fmt.Sprintf("New event: %s on %s", event.Code(), event.DateTime()))
		}
	}

	if len(curr.EvidenceRequests()) > len(prev.Record.EvidenceRequests()) {
		changes = append(changes, "New evidence request received")
	}

	if len(curr.Notices()) > len(prev.Record.Notices()) {
		changes = append(changes, "New notice received")
	}

	return changes
}
