package repository

import (
	"context"
	"errors"

	"pharmacure/internal/domain"
	"pharmacure/internal/storage"
)

var (
	ErrMedicineNotFound = errors.New("medicine not found")
)

// MedicineRepository defines data access for the medicine collection. The
// collection is persisted whole; mutations load it, change it in memory and
// save it back.
type MedicineRepository interface {
	List(ctx context.Context) ([]domain.Medicine, error)
	Save(ctx context.Context, medicines []domain.Medicine) error
	FindByID(ctx context.Context, id string) (*domain.Medicine, error)
}

type medicineRepository struct {
	store *storage.Store
}

// NewMedicineRepository creates a new instance of MedicineRepository.
func NewMedicineRepository(store *storage.Store) MedicineRepository {
	return &medicineRepository{store: store}
}

func (r *medicineRepository) List(ctx context.Context) ([]domain.Medicine, error) {
	medicines := []domain.Medicine{}
	if err := r.store.Get(ctx, storage.KeyMedicines, &medicines); err != nil {
		return nil, err
	}
	return medicines, nil
}

func (r *medicineRepository) Save(ctx context.Context, medicines []domain.Medicine) error {
	return r.store.Set(ctx, storage.KeyMedicines, medicines)
}

func (r *medicineRepository) FindByID(ctx context.Context, id string) (*domain.Medicine, error) {
	medicines, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range medicines {
		if medicines[i].ID == id {
			return &medicines[i], nil
		}
	}
	return nil, ErrMedicineNotFound
}
