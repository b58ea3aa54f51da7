package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"pharmacure/internal/domain"
	"pharmacure/internal/ident"
	"pharmacure/internal/repository"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Sort keys accepted by SortBy. Anything else leaves the order unchanged.
const (
	SortByName  = "name"
	SortByPrice = "price"
	SortByStock = "stock"
)

// DefaultLowStockThreshold mirrors the stock level the admin dashboard flags.
const DefaultLowStockThreshold = 10

// MedicineInput carries client-supplied medicine fields. Price and Stock stay
// untyped: strings are accepted and coerced to numbers at write time, exactly
// as the persisted records require.
type MedicineInput struct {
	ID          string      `json:"id,omitempty"`
	Name        string      `json:"name" validate:"required"`
	Category    string      `json:"category" validate:"required"`
	Price       interface{} `json:"price"`
	Stock       interface{} `json:"stock"`
	Description string      `json:"description"`
}

// CatalogService owns the medicine collection and a derived working set. The
// working set is ephemeral: Search and Filter rebuild it from a fresh copy of
// the full collection on every call (they do not narrow each other), while
// Sort reorders whatever the working set currently holds. Combining criteria
// therefore requires reapplying all of them in one request.
type CatalogService interface {
	List(ctx context.Context) ([]domain.Medicine, error)
	WorkingSet() []domain.Medicine
	Add(ctx context.Context, input MedicineInput) (*domain.Medicine, error)
	Update(ctx context.Context, input MedicineInput) (*domain.Medicine, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Medicine, error)
	Search(ctx context.Context, query string) ([]domain.Medicine, error)
	FilterByCategory(ctx context.Context, category string) ([]domain.Medicine, error)
	SortBy(key string) []domain.Medicine
	LowStock(ctx context.Context, threshold int) ([]domain.Medicine, error)
}

type catalogService struct {
	repo    repository.MedicineRepository
	collate *collate.Collator

	mu      sync.Mutex
	working []domain.Medicine
}

// NewCatalogService creates a new instance of CatalogService.
func NewCatalogService(repo repository.MedicineRepository) CatalogService {
	return &catalogService{
		repo:    repo,
		collate: collate.New(language.English, collate.Loose),
	}
}

// List reloads the full collection and resets the working set to it.
func (s *catalogService) List(ctx context.Context) ([]domain.Medicine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	medicines, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load medicines: %w", err)
	}
	s.working = medicines
	return copyMedicines(medicines), nil
}

// WorkingSet returns the current filtered/sorted view without touching
// storage.
func (s *catalogService) WorkingSet() []domain.Medicine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyMedicines(s.working)
}

func (s *catalogService) Add(ctx context.Context, input MedicineInput) (*domain.Medicine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	medicines, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load medicines: %w", err)
	}

	medicine := domain.Medicine{
		ID:          ident.New(),
		Name:        input.Name,
		Category:    input.Category,
		Price:       coerceFloat(input.Price),
		Stock:       coerceInt(input.Stock),
		Description: input.Description,
		CreatedAt:   time.Now(),
	}

	medicines = append(medicines, medicine)
	if err := s.repo.Save(ctx, medicines); err != nil {
		return nil, fmt.Errorf("failed to save medicines: %w", err)
	}

	s.working = medicines
	return &medicine, nil
}

func (s *catalogService) Update(ctx context.Context, input MedicineInput) (*domain.Medicine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	medicines, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load medicines: %w", err)
	}

	idx := -1
	for i := range medicines {
		if medicines[i].ID == input.ID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, repository.ErrMedicineNotFound
	}

	medicines[idx].Name = input.Name
	medicines[idx].Category = input.Category
	medicines[idx].Price = coerceFloat(input.Price)
	medicines[idx].Stock = coerceInt(input.Stock)
	medicines[idx].Description = input.Description
	medicines[idx].UpdatedAt = time.Now()

	if err := s.repo.Save(ctx, medicines); err != nil {
		return nil, fmt.Errorf("failed to save medicines: %w", err)
	}

	s.working = medicines
	updated := medicines[idx]
	return &updated, nil
}

// Delete removes the medicine with the given id. No match is a silent no-op.
func (s *catalogService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	medicines, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load medicines: %w", err)
	}

	kept := medicines[:0]
	for _, m := range medicines {
		if m.ID != id {
			kept = append(kept, m)
		}
	}

	if err := s.repo.Save(ctx, kept); err != nil {
		return fmt.Errorf("failed to save medicines: %w", err)
	}

	s.working = kept
	return nil
}

func (s *catalogService) GetByID(ctx context.Context, id string) (*domain.Medicine, error) {
	return s.repo.FindByID(ctx, id)
}

// Search matches query case-insensitively against name, category and
// description. A blank query resets the working set to the full collection.
func (s *catalogService) Search(ctx context.Context, query string) ([]domain.Medicine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	medicines, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load medicines: %w", err)
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		s.working = medicines
		return copyMedicines(medicines), nil
	}

	matched := []domain.Medicine{}
	for _, m := range medicines {
		if strings.Contains(strings.ToLower(m.Name), query) ||
			strings.Contains(strings.ToLower(m.Category), query) ||
			(m.Description != "" && strings.Contains(strings.ToLower(m.Description), query)) {
			matched = append(matched, m)
		}
	}

	s.working = matched
	return copyMedicines(matched), nil
}

// FilterByCategory keeps exact category matches. An empty selector resets the
// working set to the full collection.
func (s *catalogService) FilterByCategory(ctx context.Context, category string) ([]domain.Medicine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	medicines, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load medicines: %w", err)
	}

	if category == "" {
		s.working = medicines
		return copyMedicines(medicines), nil
	}

	matched := []domain.Medicine{}
	for _, m := range medicines {
		if m.Category == category {
			matched = append(matched, m)
		}
	}

	s.working = matched
	return copyMedicines(matched), nil
}

// SortBy orders the current working set in place: name ascending with a
// locale-aware compare, price ascending, stock descending. Unknown keys leave
// the order unchanged.
func (s *catalogService) SortBy(key string) []domain.Medicine {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch key {
	case SortByName:
		sort.SliceStable(s.working, func(i, j int) bool {
			return s.collate.CompareString(s.working[i].Name, s.working[j].Name) < 0
		})
	case SortByPrice:
		sort.SliceStable(s.working, func(i, j int) bool {
			return s.working[i].Price < s.working[j].Price
		})
	case SortByStock:
		sort.SliceStable(s.working, func(i, j int) bool {
			return s.working[i].Stock > s.working[j].Stock
		})
	}

	return copyMedicines(s.working)
}

// LowStock returns medicines at or below the threshold. A non-positive
// threshold falls back to the default.
func (s *catalogService) LowStock(ctx context.Context, threshold int) ([]domain.Medicine, error) {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}

	medicines, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load medicines: %w", err)
	}

	low := []domain.Medicine{}
	for _, m := range medicines {
		if m.Stock <= threshold {
			low = append(low, m)
		}
	}
	return low, nil
}

func copyMedicines(medicines []domain.Medicine) []domain.Medicine {
	out := make([]domain.Medicine, len(medicines))
	copy(out, medicines)
	return out
}
