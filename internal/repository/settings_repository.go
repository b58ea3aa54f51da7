package repository

import (
	"context"

	"pharmacure/internal/domain"
	"pharmacure/internal/storage"
)

// SettingsRepository holds the installation preferences document.
type SettingsRepository interface {
	Get(ctx context.Context) (domain.Settings, error)
	Save(ctx context.Context, settings domain.Settings) error
}

type settingsRepository struct {
	store *storage.Store
}

// NewSettingsRepository creates a new instance of SettingsRepository.
func NewSettingsRepository(store *storage.Store) SettingsRepository {
	return &settingsRepository{store: store}
}

func (r *settingsRepository) Get(ctx context.Context) (domain.Settings, error) {
	settings := domain.DefaultSettings()
	if err := r.store.Get(ctx, storage.KeySettings, &settings); err != nil {
		return domain.Settings{}, err
	}
	return settings, nil
}

func (r *settingsRepository) Save(ctx context.Context, settings domain.Settings) error {
	return r.store.Set(ctx, storage.KeySettings, settings)
}
