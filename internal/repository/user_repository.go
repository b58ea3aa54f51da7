package repository

import (
	"context"
	"errors"

	"pharmacure/internal/domain"
	"pharmacure/internal/storage"
)

var (
	ErrUserNotFound = errors.New("user not found")
)

// UserRepository defines data access for registered users.
type UserRepository interface {
	List(ctx context.Context) ([]domain.User, error)
	Save(ctx context.Context, users []domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByPhone(ctx context.Context, phone string) (*domain.User, error)
}

type userRepository struct {
	store *storage.Store
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(store *storage.Store) UserRepository {
	return &userRepository{store: store}
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	users := []domain.User{}
	if err := r.store.Get(ctx, storage.KeyUsers, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Save(ctx context.Context, users []domain.User) error {
	return r.store.Set(ctx, storage.KeyUsers, users)
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	users, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *userRepository) FindByPhone(ctx context.Context, phone string) (*domain.User, error) {
	users, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Phone == phone {
			return &users[i], nil
		}
	}
	return nil, ErrUserNotFound
}
