package state

import (
	"context"
	"os"
	"path/filepath"

	"pos-service/internal/models"
)

// Snapshot persists the serialized state tree. Save is a full-tree overwrite;
// Load returns (nil, nil) when no snapshot exists yet.
type Snapshot interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Close() error
}

// FileSnapshot writes the state blob to a local file, the closest analog to
// the browser's local storage.
type FileSnapshot struct {
	path string
}

// NewFileSnapshot creates a file-backed snapshot at the given path
func NewFileSnapshot(path string) *FileSnapshot {
	return &FileSnapshot{path: path}
}

// Load reads the snapshot file
func (f *FileSnapshot) Load(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, &models.SnapshotError{Op: "load", Err: err}
	}
	return data, nil
}

// Save writes to a temp file and renames it over the target, so a crash
// mid-write can't leave a truncated snapshot behind.
func (f *FileSnapshot) Save(_ context.Context, data []byte) error {
	tmp := f.path + ".tmp"
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &models.SnapshotError{Op: "save", Err: err}
		}
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &models.SnapshotError{Op: "save", Err: err}
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return &models.SnapshotError{Op: "save", Err: err}
	}
	return nil
}

// Close is a no-op for files
func (f *FileSnapshot) Close() error { return nil }
