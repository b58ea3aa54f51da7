package repository

import (
	"context"

	"pharmacure/internal/domain"
	"pharmacure/internal/storage"
)

// CartRepository defines data access for the cart lines.
type CartRepository interface {
	List(ctx context.Context) ([]domain.CartLine, error)
	Save(ctx context.Context, lines []domain.CartLine) error
}

type cartRepository struct {
	store *storage.Store
}

// NewCartRepository creates a new instance of CartRepository.
func NewCartRepository(store *storage.Store) CartRepository {
	return &cartRepository{store: store}
}

func (r *cartRepository) List(ctx context.Context) ([]domain.CartLine, error) {
	lines := []domain.CartLine{}
	if err := r.store.Get(ctx, storage.KeyCart, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *cartRepository) Save(ctx context.Context, lines []domain.CartLine) error {
	return r.store.Set(ctx, storage.KeyCart, lines)
}
