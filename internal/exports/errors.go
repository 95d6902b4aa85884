package exports

import "errors"

var (
	// ErrNotFound hides both authorization failures and missing users.
	ErrNotFound = errors.New("export target not found")
	// ErrArchiveUnavailable means files were produced but no archive could be written or published.
	ErrArchiveUnavailable = errors.New("export archive unavailable")
)
