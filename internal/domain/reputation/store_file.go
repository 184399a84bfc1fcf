package reputation

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore persists the state as a single human-inspectable JSON document,
// rewritten in full on each save.
type FileStore struct {
	path string
}

// NewFileStore creates a file store rooted at baseDir
func NewFileStore(baseDir string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileStore{path: filepath.Join(baseDir, "reports.json")}, nil
}

// Load reads the persisted state. A missing file yields the empty initial
// state; a corrupt file is surfaced so the caller can decide the fallback.
func (s *FileStore) Load(ctx context.Context) (*State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewState(), nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	state := NewState()
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}
	return state, nil
}

// Save writes the whole state atomically via a temp file rename
func (s *FileStore) Save(ctx context.Context, state *State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}
