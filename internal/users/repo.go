package users

import (
	"context"
	"errors"
)

var (
	ErrNotFound    = errors.New("user not found")
	ErrInvalidUser = errors.New("user id and email are required")
)

// Repo stores the accounts that can request an export.
type Repo interface {
	Upsert(ctx context.Context, user User) error
	GetByID(ctx context.Context, userID string) (User, error)
}
