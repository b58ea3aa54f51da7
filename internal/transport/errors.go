package transport

import (
	"errors"
	"net/http"

	"pharmacure/internal/middleware"
	"pharmacure/internal/repository"
	"pharmacure/internal/service"

	"go.uber.org/zap"
)

// respondServiceError maps the service error taxonomy onto HTTP statuses.
// Everything in the taxonomy is a user-facing, non-retryable condition; only
// unrecognized errors become 500s.
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, repository.ErrMedicineNotFound),
		errors.Is(err, repository.ErrDoctorNotFound),
		errors.Is(err, repository.ErrAppointmentNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrDuplicatePhone),
		errors.Is(err, service.ErrSlotTaken):
		middleware.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		middleware.RespondWithError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrIncorrectPassword),
		errors.Is(err, service.ErrPastDate),
		errors.Is(err, service.ErrStockExceeded),
		errors.Is(err, service.ErrEmptyCart):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error("Unhandled service error", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
