package repository

import (
	"context"

	"pharmacure/internal/domain"
	"pharmacure/internal/storage"
)

// SessionRepository holds the single signed-in identity, persisted separately
// from the user collection. Current returns nil when nobody is signed in.
type SessionRepository interface {
	Current(ctx context.Context) (*domain.User, error)
	Set(ctx context.Context, user *domain.User) error
	Clear(ctx context.Context) error
}

type sessionRepository struct {
	store *storage.Store
}

// NewSessionRepository creates a new instance of SessionRepository.
func NewSessionRepository(store *storage.Store) SessionRepository {
	return &sessionRepository{store: store}
}

func (r *sessionRepository) Current(ctx context.Context) (*domain.User, error) {
	var user *domain.User
	if err := r.store.Get(ctx, storage.KeyCurrentUser, &user); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *sessionRepository) Set(ctx context.Context, user *domain.User) error {
	return r.store.Set(ctx, storage.KeyCurrentUser, user)
}

func (r *sessionRepository) Clear(ctx context.Context) error {
	return r.store.Remove(ctx, storage.KeyCurrentUser)
}
