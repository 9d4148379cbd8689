package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// DefaultPath is where the file store writes when no path is configured.
const DefaultPath = "editor_state"

// FileStore keeps the state as a small JSON document.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultPath
	}
	return &FileStore{Path: path}
}

func (f *FileStore) Load() (EditorState, error) {
	var s EditorState
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, fmt.Errorf("%w: %s", ErrNotFound, f.Path)
		}
		return s, fmt.Errorf("failed to read %s: %w", f.Path, err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("failed to decode %s: %w", f.Path, err)
	}
	return s, nil
}

func (f *FileStore) Save(s EditorState) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode editor state: %w", err)
	}
	if err := os.WriteFile(f.Path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", f.Path, err)
	}
	return nil
}

func (f *FileStore) Close() error {
	return nil
}
