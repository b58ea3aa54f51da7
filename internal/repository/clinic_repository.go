package repository

import (
	"context"
	"errors"

	"pharmacure/internal/domain"
	"pharmacure/internal/storage"
)

var (
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
)

// DoctorRepository defines data access for the doctor directory.
type DoctorRepository interface {
	List(ctx context.Context) ([]domain.Doctor, error)
	Save(ctx context.Context, doctors []domain.Doctor) error
	FindByID(ctx context.Context, id string) (*domain.Doctor, error)
}

type doctorRepository struct {
	store *storage.Store
}

// NewDoctorRepository creates a new instance of DoctorRepository.
func NewDoctorRepository(store *storage.Store) DoctorRepository {
	return &doctorRepository{store: store}
}

func (r *doctorRepository) List(ctx context.Context) ([]domain.Doctor, error) {
	doctors := []domain.Doctor{}
	if err := r.store.Get(ctx, storage.KeyDoctors, &doctors); err != nil {
		return nil, err
	}
	return doctors, nil
}

func (r *doctorRepository) Save(ctx context.Context, doctors []domain.Doctor) error {
	return r.store.Set(ctx, storage.KeyDoctors, doctors)
}

func (r *doctorRepository) FindByID(ctx context.Context, id string) (*domain.Doctor, error) {
	doctors, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range doctors {
		if doctors[i].ID == id {
			return &doctors[i], nil
		}
	}
	return nil, ErrDoctorNotFound
}

// AppointmentRepository defines data access for the appointment collection.
type AppointmentRepository interface {
	List(ctx context.Context) ([]domain.Appointment, error)
	Save(ctx context.Context, appointments []domain.Appointment) error
}

type appointmentRepository struct {
	store *storage.Store
}

// NewAppointmentRepository creates a new instance of AppointmentRepository.
func NewAppointmentRepository(store *storage.Store) AppointmentRepository {
	return &appointmentRepository{store: store}
}

func (r *appointmentRepository) List(ctx context.Context) ([]domain.Appointment, error) {
	appointments := []domain.Appointment{}
	if err := r.store.Get(ctx, storage.KeyAppointments, &appointments); err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) Save(ctx context.Context, appointments []domain.Appointment) error {
	return r.store.Set(ctx, storage.KeyAppointments, appointments)
}
