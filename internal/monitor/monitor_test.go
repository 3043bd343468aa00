package monitor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/pders01/casewatch/internal/config"
	"github.com/pders01/casewatch/internal/record"
	"github.com/pders01/casewatch/internal/store"
	"github.com/pders01/casewatch/internal/testutil"
)

type fakeFetcher struct {
	records map[string]record.Record
	errs    map[string]error
}

func (f *fakeFetcher) FetchCase(ctx context.Context, receiptNumber string) (record.Record, error) {
	if err := f.errs[receiptNumber]; err != nil {
		return nil, err
	}
	return f.records[receiptNumber], nil
}

type fakeNotifier struct {
	titles   []string
	messages []string
	err      error
}

func (n *fakeNotifier) Notify(ctx context.Context, title, message string) error {
	if n.err != nil {
		return n.err
	}
	n.titles = append(n.titles, title)
	n.messages = append(n.messages, message)
	return nil
}

type memStore struct {
	states  map[string]store.Snapshot
	loadErr error
	saved   map[string]store.Snapshot
	saveErr error
}

func (s *memStore) Load() (map[string]store.Snapshot, error) {
	if s.states == nil {
		s.states = make(map[string]store.Snapshot)
	}
	return s.states, s.loadErr
}

func (s *memStore) Save(states map[string]store.Snapshot) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = states
	return nil
}

func testConfig(receipts ...string) *config.Config {
	cases := make([]config.Case, len(receipts))
	for i, r := range receipts {
		cases[i] = config.Case{ReceiptNumber: r, Description: "Case " + r}
	}
	return &config.Config{
		Cases:              cases,
		CheckIntervalHours: 6,
		APIBase:            "http://example.invalid/",
		StateFile:          "state.json",
	}
}

func testMonitor(cfg *config.Config, f Fetcher, n Notifier, st Store) *Monitor {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(cfg, f, n, st, logger)
}

func TestFirstObservationNotifies(t *testing.T) {
	fetcher := &fakeFetcher{records: map[string]record.Record{
		"IOE1": testutil.SampleRecord("IOE1"),
	}}
	notifier := &fakeNotifier{}
	m := testMonitor(testConfig("IOE1"), fetcher, notifier, &memStore{})

	result := m.RunCycle(context.Background(), nil)

	if len(result.States) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(result.States))
	}
	if result.Notified != 1 {
		t.Fatalf("expected 1 notification, got %d", result.Notified)
	}
	if got := notifier.titles[0]; got != "USCIS Case Update: Case IOE1" {
		t.Errorf("unexpected title %q", got)
	}
	if !strings.Contains(notifier.messages[0], "Initial monitoring setup") {
		t.Errorf("first observation message missing setup descriptor: %q", notifier.messages[0])
	}
}

func TestUnchangedFingerprintSkipsDifferAndRefreshesSnapshot(t *testing.T) {
	raw := testutil.SampleRecord("IOE1")
	canonical := record.Normalize(raw)
	fingerprint := record.Fingerprint(canonical)

	prev := map[string]store.Snapshot{
		"IOE1": {
			Fingerprint: fingerprint,
			Record:      canonical,
			LastChecked: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Description: "Case IOE1",
		},
	}

	fetcher := &fakeFetcher{records: map[string]record.Record{"IOE1": raw}}
	notifier := &fakeNotifier{}
	m := testMonitor(testConfig("IOE1"), fetcher, notifier, &memStore{})

	checkedAt := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return checkedAt }

	result := m.RunCycle(context.Background(), prev)

	if result.Notified != 0 || len(notifier.titles) != 0 {
		t.Error("no notification expected for an unchanged fingerprint")
	}
	snap, ok := result.States["IOE1"]
	if !ok {
		t.Fatal("snapshot not refreshed")
	}
	if !snap.LastChecked.Equal(checkedAt) {
		t.Errorf("LastChecked not refreshed: %v", snap.LastChecked)
	}
	if snap.Fingerprint != fingerprint {
		t.Errorf("fingerprint changed unexpectedly: %s", snap.Fingerprint)
	}
}

func TestVolatileOnlyChangeIsInvisible(t *testing.T) {
	raw := testutil.SampleRecord("IOE1")
	canonical := record.Normalize(raw)
	prev := map[string]store.Snapshot{
		"IOE1": {Fingerprint: record.Fingerprint(canonical), Record: canonical, Description: "Case IOE1"},
	}

	// Same record, fresher volatile timestamps.
	refetched := testutil.CloneRecord(t, raw)
	testutil.Data(t, refetched)["updatedAtTimestamp"] = float64(9999999999)

	fetcher := &fakeFetcher{records: map[string]record.Record{"IOE1": refetched}}
	notifier := &fakeNotifier{}
	m := testMonitor(testConfig("IOE1"), fetcher, notifier, &memStore{})

	result := m.RunCycle(context.Background(), prev)

	if result.Notified != 0 {
		t.Error("volatile-only change must not notify")
	}
	if result.States["IOE1"].Fingerprint != prev["IOE1"].Fingerprint {
		t.Error("volatile-only change must not move the fingerprint")
	}
}

func TestUnmonitoredChangePersistsWithoutNotification(t *testing.T) {
	raw := testutil.SampleRecord("IOE1")
	canonical := record.Normalize(raw)
	prev := map[string]store.Snapshot{
		"IOE1": {Fingerprint: record.Fingerprint(canonical), Record: canonical, Description: "Case IOE1"},
	}

	// A field the differ does not watch moves the fingerprint but
	// produces no descriptors.
	changed := testutil.CloneRecord(t, raw)
	testutil.Data(t, changed)["status"] = "Case Was Transferred"

	fetcher := &fakeFetcher{records: map[string]record.Record{"IOE1": changed}}
	notifier := &fakeNotifier{}
	m := testMonitor(testConfig("IOE1"), fetcher, notifier, &memStore{})

	result := m.RunCycle(context.Background(), prev)

	if result.Notified != 0 || len(notifier.titles) != 0 {
		t.Error("no notification expected when only unmonitored fields changed")
	}
	if result.States["IOE1"].Fingerprint == prev["IOE1"].Fingerprint {
		t.Error("new snapshot should carry the new fingerprint")
	}
}

func TestFetchFailureSkipsCase(t *testing.T) {
	fetcher := &fakeFetcher{
		records: map[string]record.Record{
			"IOE1": testutil.SampleRecord("IOE1"),
			"IOE3": testutil.SampleRecord("IOE3"),
		},
		errs: map[string]error{"IOE2": errors.New("connection refused")},
	}
	notifier := &fakeNotifier{}
	m := testMonitor(testConfig("IOE1", "IOE2", "IOE3"), fetcher, notifier, &memStore{})

	result := m.RunCycle(context.Background(), nil)

	if len(result.States) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(result.States))
	}
	if _, ok := result.States["IOE2"]; ok {
		t.Error("failed case must not get a snapshot")
	}
	if len(result.Failed) != 1 || result.Failed[0] != "IOE2" {
		t.Errorf("unexpected failed list %v", result.Failed)
	}
	if result.Notified != 2 {
		t.Errorf("the two healthy cases should still notify, got %d", result.Notified)
	}
}

func TestNotifyFailureKeepsSnapshot(t *testing.T) {
	fetcher := &fakeFetcher{records: map[string]record.Record{
		"IOE1": testutil.SampleRecord("IOE1"),
	}}
	notifier := &fakeNotifier{err: errors.New("home assistant unreachable")}
	st := &memStore{}
	m := testMonitor(testConfig("IOE1"), fetcher, notifier, st)

	if err := m.RunOnce(context.Background()); err != nil {
		t.Fatalf("notify failure must not fail the cycle: %v", err)
	}

	if st.saved == nil {
		t.Fatal("snapshot set not saved")
	}
	if _, ok := st.saved["IOE1"]; !ok {
		t.Error("snapshot missing despite notification failure")
	}
}

func TestRunOnceColdStartOnCorruptStore(t *testing.T) {
	fetcher := &fakeFetcher{records: map[string]record.Record{
		"IOE1": testutil.SampleRecord("IOE1"),
	}}
	notifier := &fakeNotifier{}
	st := &memStore{loadErr: errors.New("failed to parse state file")}
	m := testMonitor(testConfig("IOE1"), fetcher, notifier, st)

	if err := m.RunOnce(context.Background()); err != nil {
		t.Fatalf("corrupt store must not be fatal: %v", err)
	}

	// Cold start: the case reads as a first observation.
	if len(notifier.messages) != 1 || !strings.Contains(notifier.messages[0], "Initial monitoring setup") {
		t.Errorf("expected a first-observation notification, got %v", notifier.messages)
	}
}

func TestRunOnceSaveFailureSurfaces(t *testing.T) {
	fetcher := &fakeFetcher{records: map[string]record.Record{
		"IOE1": testutil.SampleRecord("IOE1"),
	}}
	st := &memStore{saveErr: errors.New("disk full")}
	m := testMonitor(testConfig("IOE1"), fetcher, &fakeNotifier{}, st)

	if err := m.RunOnce(context.Background()); err == nil {
		t.Error("expected an error when the snapshot store cannot be saved")
	}
}

func TestRenderMessage(t *testing.T) {
	msg := renderMessage("IOE1", []string{
		"Case updated: 2024-02-01",
		"1 new event(s) added",
	})

	want := "Case IOE1 has been updated:\n" +
		"• Case updated: 2024-02-01\n" +
		"• 1 new event(s) added"
	if msg != want {
		t.Errorf("unexpected message:\n%q\nwant:\n%q", msg, want)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	fetcher := &fakeFetcher{records: map[string]record.Record{
		"IOE1": testutil.SampleRecord("IOE1"),
	}}
	m := testMonitor(testConfig("IOE1"), fetcher, &fakeNotifier{}, &memStore{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("cancelled run should return cleanly, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}
