package users

import (
	"context"
	"errors"
	"strings"
)

var errNotConfigured = errors.New("users service not configured")

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// UpsertFromAuth records the identity returned by a login. The email is
// stored trimmed and lower-cased.
func (s *Service) UpsertFromAuth(ctx context.Context, user User) error {
	if s == nil || s.Repo == nil {
		return errNotConfigured
	}
	user.ID = strings.TrimSpace(user.ID)
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if IsAnonymousID(user.ID) || user.Email == "" {
		return ErrInvalidUser
	}
	return s.Repo.Upsert(ctx, user)
}

// GetByID loads an account. Anonymous ids are never found.
func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errNotConfigured
	}
	if IsAnonymousID(userID) {
		return User{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, strings.TrimSpace(userID))
}
