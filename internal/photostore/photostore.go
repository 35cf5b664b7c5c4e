package photostore

import (
	"context"
	"io"
)

// Store persists photo evidence and returns an opaque public URL for it.
// The rest of the system never interprets the URL.
type Store interface {
	Save(ctx context.Context, prefix, mimeType string, r io.Reader) (publicURL string, err error)
	Delete(ctx context.Context, publicURL string) error
}
