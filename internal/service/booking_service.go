package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"pharmacure/internal/domain"
	"pharmacure/internal/ident"
	"pharmacure/internal/repository"

	"go.uber.org/zap"
)

var (
	ErrSlotTaken = errors.New("this time slot is already booked")
	ErrPastDate  = errors.New("cannot book appointment for past dates")
)

const appointmentDateLayout = "2006-01-02"

// DoctorInput carries client-supplied doctor fields. Experience accepts a
// string or a number and is coerced like the catalog numerics.
type DoctorInput struct {
	ID             string      `json:"id,omitempty"`
	Name           string      `json:"name" validate:"required"`
	Specialization string      `json:"specialization" validate:"required"`
	Experience     interface{} `json:"experience"`
	Phone          string      `json:"phone"`
	Bio            string      `json:"bio"`
	Photo          string      `json:"photo"`
}

// AppointmentInput is a booking request for the signed-in user.
type AppointmentInput struct {
	DoctorID string `json:"doctorId" validate:"required"`
	Date     string `json:"date" validate:"required"`
	TimeSlot string `json:"timeSlot" validate:"required"`
	Reason   string `json:"reason"`
}

// BookingService owns the doctor directory and the appointment book. A slot
// is identified by the exact (doctor, date, timeSlot) triple; there is no
// reschedule operation, only cancel and rebook.
type BookingService interface {
	ListDoctors(ctx context.Context) ([]domain.Doctor, error)
	AddDoctor(ctx context.Context, input DoctorInput) (*domain.Doctor, error)
	UpdateDoctor(ctx context.Context, input DoctorInput) (*domain.Doctor, error)
	DeleteDoctor(ctx context.Context, id string) error

	Book(ctx context.Context, userID string, input AppointmentInput) (*domain.Appointment, error)
	Cancel(ctx context.Context, appointmentID string) error
	ListAppointments(ctx context.Context) ([]domain.Appointment, error)
	ListUserAppointments(ctx context.Context, userID string) ([]domain.Appointment, error)
}

type bookingService struct {
	doctorRepo      repository.DoctorRepository
	appointmentRepo repository.AppointmentRepository
	activityRepo    repository.ActivityRepository
	logger          *zap.Logger

	doctorMu      sync.Mutex
	appointmentMu sync.Mutex

	// now is swappable so date-boundary behavior is testable.
	now func() time.Time
}

// NewBookingService creates a new instance of BookingService.
func NewBookingService(
	doctorRepo repository.DoctorRepository,
	appointmentRepo repository.AppointmentRepository,
	activityRepo repository.ActivityRepository,
	logger *zap.Logger,
) BookingService {
	return &bookingService{
		doctorRepo:      doctorRepo,
		appointmentRepo: appointmentRepo,
		activityRepo:    activityRepo,
		logger:          logger,
		now:             time.Now,
	}
}

func (s *bookingService) ListDoctors(ctx context.Context) ([]domain.Doctor, error) {
	return s.doctorRepo.List(ctx)
}

func (s *bookingService) AddDoctor(ctx context.Context, input DoctorInput) (*domain.Doctor, error) {
	s.doctorMu.Lock()
	defer s.doctorMu.Unlock()

	doctors, err := s.doctorRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load doctors: %w", err)
	}

	doctor := domain.Doctor{
		ID:             ident.New(),
		Name:           input.Name,
		Specialization: input.Specialization,
		Experience:     coerceInt(input.Experience),
		Phone:          input.Phone,
		Bio:            input.Bio,
		Photo:          input.Photo,
	}

	doctors = append(doctors, doctor)
	if err := s.doctorRepo.Save(ctx, doctors); err != nil {
		return nil, fmt.Errorf("failed to save doctors: %w", err)
	}
	return &doctor, nil
}

func (s *bookingService) UpdateDoctor(ctx context.Context, input DoctorInput) (*domain.Doctor, error) {
	s.doctorMu.Lock()
	defer s.doctorMu.Unlock()

	doctors, err := s.doctorRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load doctors: %w", err)
	}

	idx := -1
	for i := range doctors {
		if doctors[i].ID == input.ID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, repository.ErrDoctorNotFound
	}

	doctors[idx].Name = input.Name
	doctors[idx].Specialization = input.Specialization
	doctors[idx].Experience = coerceInt(input.Experience)
	doctors[idx].Phone = input.Phone
	doctors[idx].Bio = input.Bio
	if input.Photo != "" {
		doctors[idx].Photo = input.Photo
	}

	if err := s.doctorRepo.Save(ctx, doctors); err != nil {
		return nil, fmt.Errorf("failed to save doctors: %w", err)
	}

	updated := doctors[idx]
	return &updated, nil
}

// DeleteDoctor removes by id; absence is a silent no-op. Existing
// appointments for the doctor are left orphaned, not cascaded.
func (s *bookingService) DeleteDoctor(ctx context.Context, id string) error {
	s.doctorMu.Lock()
	defer s.doctorMu.Unlock()

	doctors, err := s.doctorRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load doctors: %w", err)
	}

	kept := doctors[:0]
	for _, d := range doctors {
		if d.ID != id {
			kept = append(kept, d)
		}
	}

	if err := s.doctorRepo.Save(ctx, kept); err != nil {
		return fmt.Errorf("failed to save doctors: %w", err)
	}
	return nil
}

func (s *bookingService) Book(ctx context.Context, userID string, input AppointmentInput) (*domain.Appointment, error) {
	s.appointmentMu.Lock()
	defer s.appointmentMu.Unlock()

	date, err := time.ParseInLocation(appointmentDateLayout, input.Date, time.Local)
	if err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	}

	appointments, err := s.appointmentRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load appointments: %w", err)
	}

	for _, apt := range appointments {
		if apt.DoctorID == input.DoctorID && apt.Date == input.Date && apt.TimeSlot == input.TimeSlot {
			return nil, ErrSlotTaken
		}
	}

	// Compared at day granularity; time of day never matters.
	today := s.now()
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.Local)
	if date.Before(today) {
		return nil, ErrPastDate
	}

	appointment := domain.Appointment{
		ID:        ident.New(),
		UserID:    userID,
		DoctorID:  input.DoctorID,
		Date:      input.Date,
		TimeSlot:  input.TimeSlot,
		Reason:    input.Reason,
		Status:    domain.AppointmentStatusConfirmed,
		CreatedAt: s.now(),
	}

	appointments = append(appointments, appointment)
	if err := s.appointmentRepo.Save(ctx, appointments); err != nil {
		return nil, fmt.Errorf("failed to save appointments: %w", err)
	}

	label := "doctor"
	if doctor, err := s.doctorRepo.FindByID(ctx, input.DoctorID); err == nil {
		label = doctor.Name
	}
	if err := s.activityRepo.Append(ctx, userID, "Appointment booked with "+label); err != nil {
		s.logger.Warn("Failed to record booking activity", zap.Error(err))
	}

	return &appointment, nil
}

func (s *bookingService) Cancel(ctx context.Context, appointmentID string) error {
	s.appointmentMu.Lock()
	defer s.appointmentMu.Unlock()

	appointments, err := s.appointmentRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load appointments: %w", err)
	}

	idx := -1
	for i := range appointments {
		if appointments[i].ID == appointmentID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return repository.ErrAppointmentNotFound
	}

	cancelled := appointments[idx]
	appointments = append(appointments[:idx], appointments[idx+1:]...)
	if err := s.appointmentRepo.Save(ctx, appointments); err != nil {
		return fmt.Errorf("failed to save appointments: %w", err)
	}

	if err := s.activityRepo.Append(ctx, cancelled.UserID, "Appointment cancelled"); err != nil {
		s.logger.Warn("Failed to record cancellation activity", zap.Error(err))
	}
	return nil
}

func (s *bookingService) ListAppointments(ctx context.Context) ([]domain.Appointment, error) {
	return s.appointmentRepo.List(ctx)
}

func (s *bookingService) ListUserAppointments(ctx context.Context, userID string) ([]domain.Appointment, error) {
	appointments, err := s.appointmentRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	own := []domain.Appointment{}
	for _, apt := range appointments {
		if apt.UserID == userID {
			own = append(own, apt)
		}
	}
	return own, nil
}
