package repository

import (
	"context"
	"sync"
	"time"

	"pharmacure/internal/domain"
	"pharmacure/internal/ident"
	"pharmacure/internal/storage"
)

// ActivityRepository is the append-only audit trail. Entries are never pruned
// and no core operation reads them back; the admin dashboard may list them.
type ActivityRepository interface {
	Append(ctx context.Context, userID, description string) error
	List(ctx context.Context) ([]domain.ActivityEntry, error)
}

type activityRepository struct {
	store *storage.Store
	mu    sync.Mutex
}

// NewActivityRepository creates a new instance of ActivityRepository.
func NewActivityRepository(store *storage.Store) ActivityRepository {
	return &activityRepository{store: store}
}

// Append loads the trail, adds one entry and writes it back. The mutex covers
// the read-modify-write window so concurrent appenders cannot drop entries.
func (r *activityRepository) Append(ctx context.Context, userID, description string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := []domain.ActivityEntry{}
	if err := r.store.Get(ctx, storage.KeyActivities, &entries); err != nil {
		return err
	}

	entries = append(entries, domain.ActivityEntry{
		ID:          ident.New(),
		UserID:      userID,
		Description: description,
		Timestamp:   time.Now(),
	})

	return r.store.Set(ctx, storage.KeyActivities, entries)
}

func (r *activityRepository) List(ctx context.Context) ([]domain.ActivityEntry, error) {
	entries := []domain.ActivityEntry{}
	if err := r.store.Get(ctx, storage.KeyActivities, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
