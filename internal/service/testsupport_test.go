package service

import (
	"context"
	"testing"

	"pharmacure/internal/domain"
	"pharmacure/internal/repository"
	"pharmacure/internal/storage"

	"go.uber.org/zap"
)

// testEnv wires the real repositories over an in-memory store so service
// tests exercise the same persistence path the server does.
type testEnv struct {
	store        *storage.Store
	medicines    repository.MedicineRepository
	cart         repository.CartRepository
	doctors      repository.DoctorRepository
	appointments repository.AppointmentRepository
	users        repository.UserRepository
	session      repository.SessionRepository
	activity     repository.ActivityRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := storage.Open(":memory:", zap.NewNop())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if err := store.EnsureDefaults(context.Background()); err != nil {
		t.Fatalf("failed to seed defaults: %v", err)
	}

	return &testEnv{
		store:        store,
		medicines:    repository.NewMedicineRepository(store),
		cart:         repository.NewCartRepository(store),
		doctors:      repository.NewDoctorRepository(store),
		appointments: repository.NewAppointmentRepository(store),
		users:        repository.NewUserRepository(store),
		session:      repository.NewSessionRepository(store),
		activity:     repository.NewActivityRepository(store),
	}
}

func (e *testEnv) seedMedicine(t *testing.T, m domain.Medicine) domain.Medicine {
	t.Helper()

	ctx := context.Background()
	existing, err := e.medicines.List(ctx)
	if err != nil {
		t.Fatalf("failed to list medicines: %v", err)
	}
	if err := e.medicines.Save(ctx, append(existing, m)); err != nil {
		t.Fatalf("failed to save medicines: %v", err)
	}
	return m
}
