package service

import (
	"context"
	"errors"
	"testing"

	"pharmacure/internal/domain"
	"pharmacure/internal/repository"
)

func seedCatalog(t *testing.T, env *testEnv) CatalogService {
	t.Helper()

	env.seedMedicine(t, domain.Medicine{ID: "m1", Name: "Paracetamol", Category: "Pain Relief", Price: 2.5, Stock: 10})
	env.seedMedicine(t, domain.Medicine{ID: "m2", Name: "Napa Extra", Category: "Pain Relief", Price: 4, Stock: 3})
	env.seedMedicine(t, domain.Medicine{ID: "m3", Name: "Cetirizine", Category: "Allergy", Price: 1.5, Stock: 25, Description: "antihistamine for hay fever"})

	return NewCatalogService(env.medicines)
}

func TestCatalogAdd_CoercesStringNumerics(t *testing.T) {
	env := newTestEnv(t)
	svc := NewCatalogService(env.medicines)
	ctx := context.Background()

	added, err := svc.Add(ctx, MedicineInput{
		Name:     "Omeprazole",
		Category: "Gastric",
		Price:    "12.5",
		Stock:    "30",
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if added.Price != 12.5 {
		t.Errorf("expected price 12.5, got %v", added.Price)
	}
	if added.Stock != 30 {
		t.Errorf("expected stock 30, got %v", added.Stock)
	}
	if added.ID == "" {
		t.Error("expected a generated id")
	}
	if added.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be stamped")
	}
}

func TestCatalogAdd_NonNumericFallsBackToZero(t *testing.T) {
	env := newTestEnv(t)
	svc := NewCatalogService(env.medicines)

	added, err := svc.Add(context.Background(), MedicineInput{
		Name:     "Mystery",
		Category: "Misc",
		Price:    "free",
		Stock:    "plenty",
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if added.Price != 0 || added.Stock != 0 {
		t.Errorf("expected zero price and stock, got %v / %v", added.Price, added.Stock)
	}
}

func TestCatalogUpdate_UnknownIDReturnsNotFound(t *testing.T) {
	env := newTestEnv(t)
	svc := seedCatalog(t, env)

	_, err := svc.Update(context.Background(), MedicineInput{
		ID:       "missing",
		Name:     "X",
		Category: "Y",
	})
	if !errors.Is(err, repository.ErrMedicineNotFound) {
		t.Fatalf("expected ErrMedicineNotFound, got %v", err)
	}
}

func TestCatalogUpdate_StampsUpdatedAt(t *testing.T) {
	env := newTestEnv(t)
	svc := seedCatalog(t, env)

	updated, err := svc.Update(context.Background(), MedicineInput{
		ID:       "m1",
		Name:     "Paracetamol 500mg",
		Category: "Pain Relief",
		Price:    3,
		Stock:    8,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if updated.Name != "Paracetamol 500mg" {
		t.Errorf("expected renamed medicine, got %q", updated.Name)
	}
	if updated.UpdatedAt.IsZero() {
		t.Error("expected UpdatedAt to be stamped")
	}
}

func TestCatalogDelete_UnknownIDIsNoOp(t *testing.T) {
	env := newTestEnv(t)
	svc := seedCatalog(t, env)
	ctx := context.Background()

	if err := svc.Delete(ctx, "missing"); err != nil {
		t.Fatalf("Delete of unknown id should succeed, got %v", err)
	}

	medicines, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(medicines) != 3 {
		t.Errorf("expected 3 medicines untouched, got %d", len(medicines))
	}
}

func TestCatalogSearch_MatchesNameCategoryAndDescription(t *testing.T) {
	env := newTestEnv(t)
	svc := seedCatalog(t, env)
	ctx := context.Background()

	byName, err := svc.Search(ctx, "  NAPA ")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(byName) != 1 || byName[0].ID != "m2" {
		t.Errorf("expected only m2 for name match, got %v", byName)
	}

	byCategory, err := svc.Search(ctx, "pain")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(byCategory) != 2 {
		t.Errorf("expected 2 category matches, got %d", len(byCategory))
	}

	byDescription, err := svc.Search(ctx, "hay fever")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(byDescription) != 1 || byDescription[0].ID != "m3" {
		t.Errorf("expected only m3 for description match, got %v", byDescription)
	}
}

func TestCatalogSearch_DoesNotNarrowPreviousFilter(t *testing.T) {
	env := newTestEnv(t)
	svc := seedCatalog(t, env)
	ctx := context.Background()

	if _, err := svc.FilterByCategory(ctx, "Allergy"); err != nil {
		t.Fatalf("FilterByCategory failed: %v", err)
	}

	// The search starts over from the full collection, not the filtered view.
	results, err := svc.Search(ctx, "paracetamol")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 || results[0].ID != "m1" {
		t.Errorf("expected m1 despite prior Allergy filter, got %v", results)
	}
}

func TestCatalogSearch_BlankQueryResetsWorkingSet(t *testing.T) {
	env := newTestEnv(t)
	svc := seedCatalog(t, env)
	ctx := context.Background()

	if _, err := svc.Search(ctx, "napa"); err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	all, err := svc.Search(ctx, "   ")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected full collection on blank query, got %d", len(all))
	}
}

func TestCatalogFilter_ExactCategoryOnly(t *testing.T) {
	env := newTestEnv(t)
	svc := seedCatalog(t, env)

	results, err := svc.FilterByCategory(context.Background(), "Pain")
	if err != nil {
		t.Fatalf("FilterByCategory failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("partial category must not match, got %v", results)
	}
}

func TestCatalogSortBy_OrdersWorkingSet(t *testing.T) {
	env := newTestEnv(t)
	svc := seedCatalog(t, env)
	ctx := context.Background()

	if _, err := svc.List(ctx); err != nil {
		t.Fatalf("List failed: %v", err)
	}

	byName := svc.SortBy(SortByName)
	if byName[0].Name != "Cetirizine" || byName[2].Name != "Paracetamol" {
		t.Errorf("unexpected name order: %v", names(byName))
	}

	byPrice := svc.SortBy(SortByPrice)
	if byPrice[0].ID != "m3" || byPrice[2].ID != "m2" {
		t.Errorf("expected price ascending, got %v", names(byPrice))
	}

	byStock := svc.SortBy(SortByStock)
	if byStock[0].ID != "m3" || byStock[2].ID != "m2" {
		t.Errorf("expected stock descending, got %v", names(byStock))
	}
}

func TestCatalogSortBy_UnknownKeyLeavesOrder(t *testing.T) {
	env := newTestEnv(t)
	svc := seedCatalog(t, env)
	ctx := context.Background()

	if _, err := svc.List(ctx); err != nil {
		t.Fatalf("List failed: %v", err)
	}
	before := svc.WorkingSet()

	after := svc.SortBy("popularity")
	for i := range before {
		if before[i].ID != after[i].ID {
			t.Fatalf("unknown sort key reordered the set: %v vs %v", names(before), names(after))
		}
	}
}

func TestCatalogSortBy_AppliesToFilteredSet(t *testing.T) {
	env := newTestEnv(t)
	svc := seedCatalog(t, env)
	ctx := context.Background()

	if _, err := svc.FilterByCategory(ctx, "Pain Relief"); err != nil {
		t.Fatalf("FilterByCategory failed: %v", err)
	}

	sorted := svc.SortBy(SortByPrice)
	if len(sorted) != 2 {
		t.Fatalf("expected sort over the 2 filtered rows, got %d", len(sorted))
	}
	if sorted[0].ID != "m1" || sorted[1].ID != "m2" {
		t.Errorf("expected m1 then m2 by price, got %v", names(sorted))
	}
}

func TestCatalogLowStock(t *testing.T) {
	env := newTestEnv(t)
	svc := seedCatalog(t, env)
	ctx := context.Background()

	low, err := svc.LowStock(ctx, 0)
	if err != nil {
		t.Fatalf("LowStock failed: %v", err)
	}
	// Default threshold 10 catches m1 (10) and m2 (3).
	if len(low) != 2 {
		t.Errorf("expected 2 low-stock medicines at the default threshold, got %d", len(low))
	}

	low, err = svc.LowStock(ctx, 5)
	if err != nil {
		t.Fatalf("LowStock failed: %v", err)
	}
	if len(low) != 1 || low[0].ID != "m2" {
		t.Errorf("expected only m2 at threshold 5, got %v", names(low))
	}
}

func names(medicines []domain.Medicine) []string {
	out := make([]string, len(medicines))
	for i, m := range medicines {
		out[i] = m.Name
	}
	return out
}
