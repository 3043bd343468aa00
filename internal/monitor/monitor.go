// Package monitor runs the poll-diff-notify cycle over the configured
// cases.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pders01/casewatch/internal/config"
	"github.com/pders01/casewatch/internal/diff"
	"github.com/pders01/casewatch/internal/record"
	"github.com/pders01/casewatch/internal/store"
)

// Fetcher retrieves the raw record for one receipt number.
type Fetcher interface {
	FetchCase(ctx context.Context, receiptNumber string) (record.Record, error)
}

// Notifier delivers a change summary.
type Notifier interface {
	Notify(ctx context.Context, title, message string) error
}

// Store loads and wholesale-replaces the snapshot set.
type Store interface {
	Load() (map[string]store.Snapshot, error)
	Save(map[string]store.Snapshot) error
}

// Monitor drives the per-cycle logic. Cases are processed strictly
// one at a time; the previous cycle's snapshot set is passed in and
// the new set is returned, with no hidden state in between.
type Monitor struct {
	cfg      *config.Config
	fetcher  Fetcher
	notifier Notifier
	store    Store
	logger   *slog.Logger
	now      func() time.Time
}

// CycleResult is the outcome of one full pass over the configured
// cases.
type CycleResult struct {
	// States is the new snapshot set, keyed by receipt number. Cases
	// that failed to fetch are absent and will look like first
	// observations next cycle.
	States map[string]store.Snapshot
	// Failed lists the receipt numbers that could not be fetched.
	Failed []string
	// Notified counts the notifications that were delivered.
	Notified int
}

// New wires a monitor from its collaborators.
func New(cfg *config.Config, fetcher Fetcher, notifier Notifier, st Store, logger *slog.Logger) *Monitor {
	return &Monitor{
		cfg:      cfg,
		fetcher:  fetcher,
		notifier: notifier,
		store:    st,
		logger:   logger,
		now:      time.Now,
	}
}

// RunCycle processes every configured case once: fetch, normalize,
// fingerprint, and only when the fingerprint moved, diff and notify.
// A snapshot is recorded for every case that fetched, changed or not.
func (m *Monitor) RunCycle(ctx context.Context, prev map[string]store.Snapshot) CycleResult {
	result := CycleResult{States: make(map[string]store.Snapshot, len(m.cfg.Cases))}

	for _, cs := range m.cfg.Cases {
		description := cs.Description
		if description == "" {
			description = cs.ReceiptNumber
		}

		m.logger.Info("checking case", "receipt", cs.ReceiptNumber)

		raw, err := m.fetcher.FetchCase(ctx, cs.ReceiptNumber)
		if err != nil {
			m.logger.Error("failed to fetch case", "receipt", cs.ReceiptNumber, "error", err)
			result.Failed = append(result.Failed, cs.ReceiptNumber)
			continue
		}

		canonical := record.Normalize(raw)
		fingerprint := record.Fingerprint(canonical)

		var prevSnap *store.Snapshot
		if snap, ok := prev[cs.ReceiptNumber]; ok {
			prevSnap = &snap
		}

		result.States[cs.ReceiptNumber] = store.Snapshot{
			Fingerprint: fingerprint,
			Record:      canonical,
			LastChecked: m.now(),
			Description: description,
		}

		if prevSnap != nil && prevSnap.Fingerprint == fingerprint {
			m.logger.Info("no changes", "receipt", cs.ReceiptNumber)
			continue
		}

		changes := diff.Changes(prevSnap, canonical)
		if len(changes) == 0 {
			m.logger.Info("fingerprint changed but no significant changes detected",
				"receipt", cs.ReceiptNumber)
			continue
		}

		m.logger.Info("changes detected", "receipt", cs.ReceiptNumber, "changes", changes)

		title := fmt.Sprintf("USCIS Case Update: %s", description)
		if err := m.notifier.Notify(ctx, title, renderMessage(cs.ReceiptNumber, changes)); err != nil {
			m.logger.Error("failed to send notification", "receipt", cs.ReceiptNumber, "error", err)
		} else {
			result.Notified++
		}
	}

	return result
}

// RunOnce executes one full cycle against the persisted store. An
// unreadable store is a cold start, not a failure.
func (m *Monitor) RunOnce(ctx context.Context) error {
	prev, err := m.store.Load()
	if err != nil {
		m.logger.Warn("snapshot store unreadable, starting cold", "error", err)
	}

	result := m.RunCycle(ctx, prev)

	if len(result.Failed) > 0 {
		m.logger.Warn("some cases failed this cycle", "failed", result.Failed)
	}

	if err := m.store.Save(result.States); err != nil {
		return fmt.Errorf("failed to save snapshot store: %w", err)
	}

	return nil
}

// Run repeats RunOnce on the configured interval until the context is
// cancelled. A failed cycle is logged and the loop waits for the next
// tick; cancellation is only observed between cycles.
func (m *Monitor) Run(ctx context.Context) error {
	interval := m.cfg.Interval()
	m.logger.Info("starting monitor", "interval", interval.String(), "cases", len(m.cfg.Cases))

	for {
		if err := m.RunOnce(ctx); err != nil {
			m.logger.Error("cycle failed", "error", err)
		}
		m.logger.Info("next check scheduled", "in", interval.String())

		select {
		case <-ctx.Done():
			m.logger.Info("monitor stopped")
			return nil
		case <-time.After(interval):
		}
	}
}

func renderMessage(receiptNumber string, changes []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Case %s has been updated:\n", receiptNumber)
	for i, change := range changes {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("• " + change)
	}
	return b.String()
}
