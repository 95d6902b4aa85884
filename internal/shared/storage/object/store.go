package object

import (
	"context"
	"errors"
	"io"
)

var (
	ErrNotFound   = errors.New("object not found")
	ErrInvalidKey = errors.New("invalid storage key")
)

// ObjectStore holds finished export archives under slash-separated keys.
type ObjectStore interface {
	SaveWithKey(ctx context.Context, storageKey, contentType string, r io.Reader) (int64, error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
}
