package visited

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// JSONFile stores visited names as a JSON array of strings
type JSONFile struct {
	path string
}

// NewJSONFile creates a repository backed by the file at path
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

// Load reads the saved names. A missing file yields no names.
func (f *JSONFile) Load(ctx context.Context) ([]string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.path, err)
	}

	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", f.path, err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// Save replaces the file contents with names, sorted
func (f *JSONFile) Save(ctx context.Context, names []string) error {
	sorted := append([]string{}, names...)
	sort.Strings(sorted)

	data, err := json.Marshal(sorted)
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".visited-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", f.path, err)
	}
	return nil
}

// Close is a no-op
func (f *JSONFile) Close() error {
	return nil
}
