package transport

import (
	"net/http"

	"pharmacure/internal/domain"
	"pharmacure/internal/middleware"
	"pharmacure/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ClinicHandler handles HTTP requests for doctors and appointments
type ClinicHandler struct {
	bookingService service.BookingService
	logger         *zap.Logger
}

// NewClinicHandler creates a new ClinicHandler
func NewClinicHandler(bookingService service.BookingService, logger *zap.Logger) *ClinicHandler {
	return &ClinicHandler{
		bookingService: bookingService,
		logger:         logger,
	}
}

// RegisterRoutes registers all doctor and appointment routes
func (h *ClinicHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/doctors", func(r chi.Router) {
		r.Get("/", h.ListDoctors)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(adminMiddleware)
			r.Post("/", h.CreateDoctor)
			r.Put("/{id}", h.UpdateDoctor)
			r.Delete("/{id}", h.DeleteDoctor)
		})
	})

	r.Route("/api/appointments", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.ListAppointments)
		r.Post("/", h.Book)
		r.Delete("/{id}", h.Cancel)
	})
}

// ListDoctors serves the doctor directory
func (h *ClinicHandler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.bookingService.ListDoctors(r.Context())
	if err != nil {
		h.logger.Error("Failed to load doctors", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load doctors")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, doctors)
}

// CreateDoctor adds a doctor to the directory (admin only)
func (h *ClinicHandler) CreateDoctor(w http.ResponseWriter, r *http.Request) {
	var req service.DoctorInput
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doctor, err := h.bookingService.AddDoctor(r.Context(), req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, doctor)
}

// UpdateDoctor edits a doctor (admin only)
func (h *ClinicHandler) UpdateDoctor(w http.ResponseWriter, r *http.Request) {
	var req service.DoctorInput
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.ID = chi.URLParam(r, "id")

	doctor, err := h.bookingService.UpdateDoctor(r.Context(), req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, doctor)
}

// DeleteDoctor removes a doctor (admin only). Existing appointments for the
// doctor are left in place.
func (h *ClinicHandler) DeleteDoctor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.bookingService.DeleteDoctor(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "doctor deleted"})
}

// ListAppointments serves the signed-in user's appointments; admins see all
func (h *ClinicHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	role, _ := middleware.GetUserRole(r.Context())

	appointments, err := func() ([]domain.Appointment, error) {
		if role == domain.RoleAdmin {
			return h.bookingService.ListAppointments(r.Context())
		}
		return h.bookingService.ListUserAppointments(r.Context(), userID)
	}()
	if err != nil {
		h.logger.Error("Failed to load appointments", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load appointments")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, appointments)
}

// Book creates a confirmed appointment for the signed-in user
func (h *ClinicHandler) Book(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req service.AppointmentInput
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	appointment, err := h.bookingService.Book(r.Context(), userID, req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, appointment)
}

// Cancel removes an appointment by id
func (h *ClinicHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.bookingService.Cancel(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "appointment cancelled"})
}
