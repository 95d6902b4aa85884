package users

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo keeps accounts in process. Used in dev and tests.
type MemoryRepo struct {
	Now func() time.Time

	mu   sync.RWMutex
	byID map[string]User
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{Now: time.Now, byID: map[string]User{}}
}

// Upsert keeps the original creation time of an existing account.
func (r *MemoryRepo) Upsert(ctx context.Context, user User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	now := r.Now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()
	user.CreatedAt = now
	if prev, ok := r.byID[user.ID]; ok {
		user.CreatedAt = prev.CreatedAt
	}
	user.UpdatedAt = now
	r.byID[user.ID] = user
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if user, ok := r.byID[userID]; ok {
		return user, nil
	}
	return User{}, ErrNotFound
}
