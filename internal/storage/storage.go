// Package storage keeps uploaded files in a blob store addressed by URL.
package storage

import (
	"context"
	"io"
	"path"
	"strings"
)

// BlobStore stores uploaded files. Put returns the URL the blob is served
// from; Delete takes that same URL.
type BlobStore interface {
	Put(ctx context.Context, folder, filename, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

// extension returns the file extension without the dot, lower-cased.
func extension(filename string) string {
	ext := path.Ext(filename)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
