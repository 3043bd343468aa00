package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pders01/casewatch/internal/record"
)

// Snapshot is the persisted last-known state of one case. The record
// kept here is the canonical (normalized) form, which retains
// everything the differ needs on the next cycle. Field names match
// the state file layout of earlier versions of this tool.
type Snapshot struct {
	Fingerprint string        `json:"hash"`
	Record      record.Record `json:"data"`
	LastChecked time.Time     `json:"last_checked"`
	Description string        `json:"description"`
}

// FileStore persists the full snapshot set as a single JSON document.
// Only one generation of state exists: every save replaces the whole
// file.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by the given file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the snapshot set keyed by receipt number. A missing
// state file is a cold start and returns an empty map. Read or parse
// failures return the error alongside an empty map so the caller can
// log and continue cold.
func (s *FileStore) Load() (map[string]Snapshot, error) {
	states := make(map[string]Snapshot)

	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return states, nil
	}
	if err != nil {
		return states, fmt.Errorf("failed to read state file: %w", err)
	}

	if err := json.Unmarshal(raw, &states); err != nil {
		return make(map[string]Snapshot), fmt.Errorf("failed to parse state file: %w", err)
	}

	return states, nil
}

// Save replaces the entire snapshot set atomically: the new set is
// written to a temp file in the same directory and renamed over the
// old one, so a crash mid-write never leaves a truncated store.
func (s *FileStore) Save(states map[string]Snapshot) error {
	raw, err := json.MarshalIndent(states, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal states: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".casewatch-state-*")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close state file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace state file: %w", err)
	}

	return nil
}
