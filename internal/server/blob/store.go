// Package blob stores task attachments. Stored objects are addressed by a
// relative path of the form "<namespace>/<uuid><ext>", which is what gets
// persisted on the task row.
package blob

import (
	"context"
	"errors"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidPath is returned for paths that escape the store root.
var ErrInvalidPath = errors.New("invalid blob path")

// Store puts and deletes attachment blobs.
type Store interface {
	// Put stores body under namespace with a fresh unique name that keeps
	// filename's extension, and returns the relative path.
	Put(ctx context.Context, namespace, filename string, body io.Reader, size int64, contentType string) (string, error)
	// Delete removes the blob at path. Deleting a missing blob is not an error.
	Delete(ctx context.Context, path string) error
}

// NewKey builds a unique relative path for filename inside namespace.
func NewKey(namespace, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join(namespace, uuid.NewString()+ext)
}

func checkPath(p string) error {
	if p == "" || path.IsAbs(p) || strings.Contains(p, "\\") {
		return ErrInvalidPath
	}
	clean := path.Clean(p)
	if clean != p || clean == "." || strings.HasPrefix(clean, "../") || clean == ".." {
		return ErrInvalidPath
	}
	return nil
}
