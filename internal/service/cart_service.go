package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"pharmacure/internal/domain"
	"pharmacure/internal/repository"
)

var (
	ErrStockExceeded = errors.New("cannot add more items, stock limit reached")
	ErrEmptyCart     = errors.New("cart is empty")
)

// CartItem is a cart line joined with its resolved medicine.
type CartItem struct {
	domain.CartLine
	Medicine domain.Medicine `json:"medicine"`
}

// CartTotals summarizes the resolvable cart lines. Lines whose medicine was
// deleted are excluded from Lines and Total but stay in storage.
type CartTotals struct {
	Lines int     `json:"lines"`
	Units int     `json:"units"`
	Total float64 `json:"total"`
}

// DeltaResult reports what a quantity change did. Added is true only on the
// zero-to-positive transition, which is the one moment the storefront shows
// its "added to cart" notice.
type DeltaResult struct {
	MedicineID string `json:"medicineId"`
	Quantity   int    `json:"quantity"`
	Added      bool   `json:"added"`
	Removed    bool   `json:"removed"`
}

// CartService enforces the cart invariants: at most one line per medicine,
// quantity within [1, stock], and lines removed rather than stored at zero.
type CartService interface {
	Items(ctx context.Context) ([]CartItem, error)
	// ApplyDelta adjusts the quantity for a medicine. An unknown medicine id
	// or a change that would go below zero is a silent no-op returning nil.
	ApplyDelta(ctx context.Context, medicineID string, delta int) (*DeltaResult, error)
	Remove(ctx context.Context, medicineID string) error
	Totals(ctx context.Context) (CartTotals, error)
	// Count is the badge number: the sum of quantities over every stored line.
	Count(ctx context.Context) (int, error)
	Checkout(ctx context.Context) error
}

type cartService struct {
	cartRepo     repository.CartRepository
	medicineRepo repository.MedicineRepository

	mu sync.Mutex
}

// NewCartService creates a new instance of CartService.
func NewCartService(cartRepo repository.CartRepository, medicineRepo repository.MedicineRepository) CartService {
	return &cartService{cartRepo: cartRepo, medicineRepo: medicineRepo}
}

func (s *cartService) Items(ctx context.Context) ([]CartItem, error) {
	lines, err := s.cartRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	items := []CartItem{}
	for _, line := range lines {
		medicine, err := s.medicineRepo.FindByID(ctx, line.MedicineID)
		if err != nil {
			if errors.Is(err, repository.ErrMedicineNotFound) {
				// Orphaned line: the medicine was deleted underneath it.
				continue
			}
			return nil, err
		}
		items = append(items, CartItem{CartLine: line, Medicine: *medicine})
	}
	return items, nil
}

func (s *cartService) ApplyDelta(ctx context.Context, medicineID string, delta int) (*DeltaResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	medicine, err := s.medicineRepo.FindByID(ctx, medicineID)
	if err != nil {
		if errors.Is(err, repository.ErrMedicineNotFound) {
			return nil, nil
		}
		return nil, err
	}

	lines, err := s.cartRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	idx := -1
	current := 0
	for i := range lines {
		if lines[i].MedicineID == medicineID {
			idx = i
			current = lines[i].Quantity
			break
		}
	}

	next := current + delta
	if next < 0 {
		return nil, nil
	}
	if next > medicine.Stock {
		return nil, ErrStockExceeded
	}

	if next == 0 {
		if idx == -1 {
			return nil, nil
		}
		lines = append(lines[:idx], lines[idx+1:]...)
		if err := s.cartRepo.Save(ctx, lines); err != nil {
			return nil, fmt.Errorf("failed to save cart: %w", err)
		}
		return &DeltaResult{MedicineID: medicineID, Quantity: 0, Removed: true}, nil
	}

	if idx == -1 {
		lines = append(lines, domain.CartLine{
			MedicineID: medicineID,
			Quantity:   next,
			AddedAt:    time.Now(),
		})
	} else {
		lines[idx].Quantity = next
	}

	if err := s.cartRepo.Save(ctx, lines); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}

	return &DeltaResult{
		MedicineID: medicineID,
		Quantity:   next,
		Added:      current == 0 && next > 0,
	}, nil
}

// Remove drops the line unconditionally if present.
func (s *cartService) Remove(ctx context.Context, medicineID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.cartRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load cart: %w", err)
	}

	kept := lines[:0]
	for _, line := range lines {
		if line.MedicineID != medicineID {
			kept = append(kept, line)
		}
	}

	if err := s.cartRepo.Save(ctx, kept); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func (s *cartService) Totals(ctx context.Context) (CartTotals, error) {
	items, err := s.Items(ctx)
	if err != nil {
		return CartTotals{}, err
	}

	totals := CartTotals{Lines: len(items)}
	for _, item := range items {
		totals.Units += item.Quantity
		totals.Total += item.Medicine.Price * float64(item.Quantity)
	}
	return totals, nil
}

func (s *cartService) Count(ctx context.Context) (int, error) {
	lines, err := s.cartRepo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load cart: %w", err)
	}

	count := 0
	for _, line := range lines {
		count += line.Quantity
	}
	return count, nil
}

// Checkout clears every line in a single persist. No order record is created;
// the operation is intentionally terminal.
func (s *cartService) Checkout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.cartRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load cart: %w", err)
	}
	if len(lines) == 0 {
		return ErrEmptyCart
	}

	if err := s.cartRepo.Save(ctx, []domain.CartLine{}); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
