// Package snapshot persists a full-state mirror to one JSON file so the UI
// can render instantly on cold start, before the asynchronous database load
// finishes. It is never the source of truth once that load resolves.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/antiXlive/Expense/internal/models"
)

// Data is the serialized snapshot shape, one blob under one key.
type Data struct {
	Tx            []models.Transaction `json:"tx"`
	Categories    []models.Category    `json:"categories"`
	Subcategories []models.Subcategory `json:"subcategories"`
	Settings      models.Settings      `json:"settings"`
	LastBackup    int64                `json:"lastBackup"`
	LastScreen    string               `json:"lastScreen"`
}

// Store reads and writes the snapshot file.
type Store struct {
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

// Save serializes data to the snapshot file. The write goes through a temp
// file and rename so a crash cannot leave a half-written snapshot.
func (s *Store) Save(data Data) error {
	raw, err := json.MarshalIndent(&data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot file, applying defaults for any missing field.
// A missing file yields an empty snapshot with default settings; a missing
// settings.autoBackup is never interpreted as anything but false.
func (s *Store) Load() (Data, error) {
	data := Data{Settings: models.DefaultSettings()}

	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return data, nil
	}
	if err != nil {
		return data, fmt.Errorf("read snapshot: %w", err)
	}

	// decode over defaults so absent keys keep them
	if err := json.Unmarshal(raw, &data); err != nil {
		return Data{Settings: models.DefaultSettings()}, fmt.Errorf("parse snapshot: %w", err)
	}
	return data, nil
}
