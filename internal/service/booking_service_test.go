package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"pharmacure/internal/domain"
	"pharmacure/internal/repository"

	"go.uber.org/zap"
)

func newBookingFixture(t *testing.T) (*testEnv, *bookingService) {
	t.Helper()

	env := newTestEnv(t)
	svc := NewBookingService(env.doctors, env.appointments, env.activity, zap.NewNop()).(*bookingService)
	return env, svc
}

func futureDate() string {
	return time.Now().AddDate(0, 0, 7).Format("2006-01-02")
}

func TestAddDoctor_CoercesExperience(t *testing.T) {
	_, svc := newBookingFixture(t)

	doctor, err := svc.AddDoctor(context.Background(), DoctorInput{
		Name:           "Dr. Rahman",
		Specialization: "Cardiology",
		Experience:     "15 years",
	})
	if err != nil {
		t.Fatalf("AddDoctor failed: %v", err)
	}

	if doctor.Experience != 15 {
		t.Errorf("expected experience 15, got %d", doctor.Experience)
	}
	if doctor.ID == "" {
		t.Error("expected a generated id")
	}
}

func TestUpdateDoctor_KeepsPhotoWhenBlank(t *testing.T) {
	_, svc := newBookingFixture(t)
	ctx := context.Background()

	doctor, err := svc.AddDoctor(ctx, DoctorInput{
		Name:           "Dr. Khan",
		Specialization: "Dermatology",
		Experience:     8,
		Photo:          "khan.jpg",
	})
	if err != nil {
		t.Fatalf("AddDoctor failed: %v", err)
	}

	updated, err := svc.UpdateDoctor(ctx, DoctorInput{
		ID:             doctor.ID,
		Name:           "Dr. Khan",
		Specialization: "Dermatology",
		Experience:     9,
	})
	if err != nil {
		t.Fatalf("UpdateDoctor failed: %v", err)
	}

	if updated.Photo != "khan.jpg" {
		t.Errorf("blank photo must keep the existing one, got %q", updated.Photo)
	}
	if updated.Experience != 9 {
		t.Errorf("expected experience 9, got %d", updated.Experience)
	}
}

func TestUpdateDoctor_UnknownIDReturnsNotFound(t *testing.T) {
	_, svc := newBookingFixture(t)

	_, err := svc.UpdateDoctor(context.Background(), DoctorInput{
		ID:             "missing",
		Name:           "X",
		Specialization: "Y",
	})
	if !errors.Is(err, repository.ErrDoctorNotFound) {
		t.Fatalf("expected ErrDoctorNotFound, got %v", err)
	}
}

func TestDeleteDoctor_LeavesAppointmentsOrphaned(t *testing.T) {
	_, svc := newBookingFixture(t)
	ctx := context.Background()

	doctor, err := svc.AddDoctor(ctx, DoctorInput{Name: "Dr. Orphan", Specialization: "ENT"})
	if err != nil {
		t.Fatalf("AddDoctor failed: %v", err)
	}

	apt, err := svc.Book(ctx, "u1", AppointmentInput{
		DoctorID: doctor.ID,
		Date:     futureDate(),
		TimeSlot: "10:00 AM",
	})
	if err != nil {
		t.Fatalf("Book failed: %v", err)
	}

	if err := svc.DeleteDoctor(ctx, doctor.ID); err != nil {
		t.Fatalf("DeleteDoctor failed: %v", err)
	}

	appointments, err := svc.ListAppointments(ctx)
	if err != nil {
		t.Fatalf("ListAppointments failed: %v", err)
	}
	if len(appointments) != 1 || appointments[0].ID != apt.ID {
		t.Errorf("expected the appointment to survive doctor deletion, got %v", appointments)
	}
}

func TestBook_CreatesConfirmedAppointment(t *testing.T) {
	_, svc := newBookingFixture(t)
	ctx := context.Background()

	doctor, err := svc.AddDoctor(ctx, DoctorInput{Name: "Dr. Haque", Specialization: "Medicine"})
	if err != nil {
		t.Fatalf("AddDoctor failed: %v", err)
	}

	apt, err := svc.Book(ctx, "u1", AppointmentInput{
		DoctorID: doctor.ID,
		Date:     futureDate(),
		TimeSlot: "11:00 AM",
		Reason:   "fever",
	})
	if err != nil {
		t.Fatalf("Book failed: %v", err)
	}

	if apt.Status != domain.AppointmentStatusConfirmed {
		t.Errorf("expected confirmed status, got %q", apt.Status)
	}
	if apt.UserID != "u1" {
		t.Errorf("expected booking user u1, got %q", apt.UserID)
	}
}

func TestBook_DuplicateSlotRejected(t *testing.T) {
	_, svc := newBookingFixture(t)
	ctx := context.Background()

	date := futureDate()
	input := AppointmentInput{DoctorID: "d1", Date: date, TimeSlot: "11:00 AM"}

	if _, err := svc.Book(ctx, "u1", input); err != nil {
		t.Fatalf("first Book failed: %v", err)
	}

	// A different user booking the identical triple collides.
	if _, err := svc.Book(ctx, "u2", input); !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}

	// Same doctor and date, different slot is fine.
	if _, err := svc.Book(ctx, "u2", AppointmentInput{DoctorID: "d1", Date: date, TimeSlot: "12:00 PM"}); err != nil {
		t.Fatalf("different slot should book, got %v", err)
	}
}

func TestBook_PastDateRejectedAtDayGranularity(t *testing.T) {
	_, svc := newBookingFixture(t)
	ctx := context.Background()

	// Pin the clock late in the day so a same-day booking would fail if
	// the comparison were instant-based rather than day-based.
	svc.now = func() time.Time {
		return time.Date(2026, time.March, 10, 23, 30, 0, 0, time.Local)
	}

	if _, err := svc.Book(ctx, "u1", AppointmentInput{DoctorID: "d1", Date: "2026-03-09", TimeSlot: "10:00 AM"}); !errors.Is(err, ErrPastDate) {
		t.Fatalf("expected ErrPastDate for yesterday, got %v", err)
	}

	if _, err := svc.Book(ctx, "u1", AppointmentInput{DoctorID: "d1", Date: "2026-03-10", TimeSlot: "10:00 AM"}); err != nil {
		t.Fatalf("same-day booking should succeed, got %v", err)
	}
}

func TestBook_MalformedDateIsValidationError(t *testing.T) {
	_, svc := newBookingFixture(t)

	_, err := svc.Book(context.Background(), "u1", AppointmentInput{
		DoctorID: "d1",
		Date:     "10/03/2026",
		TimeSlot: "10:00 AM",
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestCancel_RemovesAndRejectsUnknown(t *testing.T) {
	env, svc := newBookingFixture(t)
	ctx := context.Background()

	apt, err := svc.Book(ctx, "u1", AppointmentInput{DoctorID: "d1", Date: futureDate(), TimeSlot: "09:00 AM"})
	if err != nil {
		t.Fatalf("Book failed: %v", err)
	}

	if err := svc.Cancel(ctx, apt.ID); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if err := svc.Cancel(ctx, apt.ID); !errors.Is(err, repository.ErrAppointmentNotFound) {
		t.Fatalf("expected ErrAppointmentNotFound, got %v", err)
	}

	// The cancelled slot can be rebooked.
	if _, err := svc.Book(ctx, "u2", AppointmentInput{DoctorID: "d1", Date: futureDate(), TimeSlot: "09:00 AM"}); err != nil {
		t.Fatalf("rebooking a cancelled slot should succeed, got %v", err)
	}

	activities, err := env.activity.List(ctx)
	if err != nil {
		t.Fatalf("failed to list activities: %v", err)
	}
	if len(activities) == 0 {
		t.Error("expected booking and cancellation activities to be recorded")
	}
}

func TestListUserAppointments_FiltersByUser(t *testing.T) {
	_, svc := newBookingFixture(t)
	ctx := context.Background()

	date := futureDate()
	if _, err := svc.Book(ctx, "u1", AppointmentInput{DoctorID: "d1", Date: date, TimeSlot: "09:00 AM"}); err != nil {
		t.Fatalf("Book failed: %v", err)
	}
	if _, err := svc.Book(ctx, "u2", AppointmentInput{DoctorID: "d1", Date: date, TimeSlot: "10:00 AM"}); err != nil {
		t.Fatalf("Book failed: %v", err)
	}

	own, err := svc.ListUserAppointments(ctx, "u1")
	if err != nil {
		t.Fatalf("ListUserAppointments failed: %v", err)
	}
	if len(own) != 1 || own[0].UserID != "u1" {
		t.Errorf("expected only u1's appointment, got %v", own)
	}
}
