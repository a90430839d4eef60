package ports

import (
	"context"
	"io"
)

// FileStorage is the external byte-storage capability: store bytes, get back
// a reference. Validation happens before any core mutation; deletion after a
// committed mutation is best-effort and must never fail the operation.
type FileStorage interface {
	// Validate rejects disallowed extensions and oversized uploads with
	// ErrValidation before anything is written.
	Validate(filename string, size int64) error
	// Store writes the content under the given category and returns an opaque
	// reference to the stored file.
	Store(ctx context.Context, filename string, content io.Reader, category string) (string, error)
	// Delete removes a stored file by reference. Returns false when the
	// reference did not resolve; errors are for the caller to log, not fail on.
	Delete(ref string) (bool, error)
}
