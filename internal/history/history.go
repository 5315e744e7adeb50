// Package history reads and writes conversation history files: JSON arrays of
// {role, text} records used to seed a chat session.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	RoleUser  = "user"
	RoleModel = "model"

	// Extension is the only file extension accepted for history files.
	Extension = ".json"

	filenameLayout = "02-01-2006 15-04-05"
)

var (
	ErrNotJSONFile = errors.New("path does not refer to a JSON file")
	ErrInvalidRole = errors.New("invalid record role")
	ErrEmptyText   = errors.New("record has no text")
)

// Record is a single conversation turn.
type Record struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// IsJSONPath reports whether path carries the history file extension.
func IsJSONPath(path string) bool {
	return strings.HasSuffix(path, Extension)
}

// Load reads a history file. The path must end in .json and name an existing
// regular file.
func Load(path string) ([]Record, error) {
	if !IsJSONPath(path) {
		return nil, ErrNotJSONFile
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotJSONFile
		}
		return nil, fmt.Errorf("stat history file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, ErrNotJSONFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read history file: %w", err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode history file %s: %w", path, err)
	}
	for i, r := range records {
		if r.Role != RoleUser && r.Role != RoleModel {
			return nil, fmt.Errorf("record %d has role %q: %w", i, r.Role, ErrInvalidRole)
		}
		if strings.TrimSpace(r.Text) == "" {
			return nil, fmt.Errorf("record %d: %w", i, ErrEmptyText)
		}
	}
	return records, nil
}

// Save writes records to path as a JSON array, creating parent directories.
func Save(path string, records []Record) error {
	if !IsJSONPath(path) {
		return ErrNotJSONFile
	}
	if records == nil {
		records = []Record{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create history dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write history file: %w", err)
	}
	return nil
}

// DefaultFilename names a history file after the given time, e.g.
// "16-10-2026 05-49-03.json".
func DefaultFilename(t time.Time) string {
	return t.Format(filenameLayout) + Extension
}
