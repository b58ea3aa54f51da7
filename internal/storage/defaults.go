package storage

import (
	"context"

	"pharmacure/internal/domain"

	"go.uber.org/zap"
)

// EnsureDefaults seeds every collection key that does not exist yet: empty
// arrays for the collections and the default settings object. Keys that are
// already present are left untouched, so it is safe to call on every start.
func (s *Store) EnsureDefaults(ctx context.Context) error {
	empty := [][2]interface{}{
		{KeyMedicines, []domain.Medicine{}},
		{KeyDoctors, []domain.Doctor{}},
		{KeyAppointments, []domain.Appointment{}},
		{KeyUsers, []domain.User{}},
		{KeyCart, []domain.CartLine{}},
		{KeyActivities, []domain.ActivityEntry{}},
		{KeySettings, domain.DefaultSettings()},
	}

	for _, kv := range empty {
		key := kv[0].(string)
		present, err := s.has(ctx, key)
		if err != nil {
			return err
		}
		if present {
			continue
		}
		if err := s.Set(ctx, key, kv[1]); err != nil {
			return err
		}
		s.log.Info("Seeded default value", zap.String("key", key))
	}

	return nil
}
