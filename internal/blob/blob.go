// Package blob is a durable key-value store for whole-document blobs. Callers
// load and save entire values; there is no partial update.
package blob

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dukerupert/tally/internal/database"
)

// ErrNotFound is returned by Load when no value has been saved under a key.
var ErrNotFound = errors.New("blob not found")

// Backend names accepted by Open.
const (
	KindDisk   = "disk"
	KindBolt   = "bolt"
	KindSQLite = "sqlite"
)

// Store loads and saves whole values by key. Save overwrites.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open returns the backend named kind rooted at dir.
func Open(kind, dir string) (Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	switch kind {
	case "", KindDisk:
		return NewDisk(dir), nil
	case KindBolt:
		return OpenBolt(filepath.Join(dir, "tally.bolt"))
	case KindSQLite:
		db, err := database.Open(filepath.Join(dir, "tally.db"))
		if err != nil {
			return nil, err
		}
		return NewSQL(db), nil
	default:
		return nil, fmt.Errorf("unknown blob store %q", kind)
	}
}
