package blob

import (
	"context"
	"io"
)

// Store holds the raw scan artifacts. Keys are opaque; the ingest service
// derives them from document UIDs.
type Store interface {
	Upload(ctx context.Context, key string, r io.Reader) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Close() error
}
