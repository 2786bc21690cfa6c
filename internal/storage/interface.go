package storage

import (
	"context"
	"io"
)

// PhotoStorage stores item photos. Keys are relative paths such as
// "items/12/3f2c....jpg".
type PhotoStorage interface {
	// Save writes the photo under key, replacing any existing file
	Save(ctx context.Context, key string, reader io.Reader) error

	// Open returns the stored photo for streaming back to clients
	Open(key string) (io.ReadCloser, error)

	// Delete removes the photo. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// URL returns the public URL the photo is served from
	URL(key string) string
}
