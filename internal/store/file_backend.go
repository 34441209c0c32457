package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/webradar/webradar/pkg/content"
)

// FileBackend persists discoveries as a single JSON file
type FileBackend struct {
	path string
}

// NewFileBackend creates a JSON file backend at the given path. Parent
// directories are created on the first Save.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

func (f *FileBackend) Save(ctx context.Context, discoveries []*content.Discovery) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}

	data, err := json.MarshalIndent(discoveries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling discoveries: %w", err)
	}

	// Write-then-rename keeps a crash from truncating the store
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing store file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replacing store file: %w", err)
	}
	return nil
}

func (f *FileBackend) Load(ctx context.Context) ([]*content.Discovery, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []*content.Discovery{}, nil
		}
		return nil, fmt.Errorf("reading store file: %w", err)
	}

	var discoveries []*content.Discovery
	if err := json.Unmarshal(data, &discoveries); err != nil {
		return nil, fmt.Errorf("decoding store file: %w", err)
	}
	return discoveries, nil
}
