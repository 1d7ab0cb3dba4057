package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/peterbourgon/diskv/v3"
)

// Disk stores each key as one file under a base directory. Writes go to a
// temp file and are renamed into place.
type Disk struct {
	d *diskv.Diskv
}

// NewDisk returns a Disk rooted at dir.
func NewDisk(dir string) *Disk {
	return &Disk{d: diskv.New(diskv.Options{
		BasePath:     dir,
		TempDir:      filepath.Join(dir, ".tmp"),
		CacheSizeMax: 0,
	})}
}

func (s *Disk) Load(_ context.Context, key string) ([]byte, error) {
	if !s.d.Has(key) {
		return nil, ErrNotFound
	}
	data, err := s.d.Read(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

func (s *Disk) Save(_ context.Context, key string, data []byte) error {
	if err := s.d.Write(key, data); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *Disk) Delete(_ context.Context, key string) error {
	if err := s.d.Erase(key); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("erase %s: %w", key, err)
	}
	return nil
}

func (s *Disk) Close() error { return nil }
