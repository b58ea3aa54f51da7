package transport

import (
	"net/http"
	"time"

	"pharmacure/internal/domain"
	"pharmacure/internal/middleware"
	"pharmacure/internal/repository"
	"pharmacure/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// DashboardStats is the admin dashboard summary
type DashboardStats struct {
	MedicineCount     int `json:"medicineCount"`
	DoctorCount       int `json:"doctorCount"`
	CustomerCount     int `json:"customerCount"`
	TodayAppointments int `json:"todayAppointments"`
}

// AdminHandler handles HTTP requests for the admin dashboard
type AdminHandler struct {
	catalogService service.CatalogService
	bookingService service.BookingService
	authService    service.AuthService
	activityRepo   repository.ActivityRepository
	logger         *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(
	catalogService service.CatalogService,
	bookingService service.BookingService,
	authService service.AuthService,
	activityRepo repository.ActivityRepository,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		catalogService: catalogService,
		bookingService: bookingService,
		authService:    authService,
		activityRepo:   activityRepo,
		logger:         logger,
	}
}

// RegisterRoutes registers all admin routes
func (h *AdminHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(adminMiddleware)
		r.Get("/stats", h.Stats)
		r.Get("/users", h.ListUsers)
		r.Get("/activities", h.ListActivities)
	})
}

// Stats serves the dashboard counters. Today's appointments are matched on
// the stored YYYY-MM-DD date string in server-local time.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	medicines, err := h.catalogService.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to load medicines", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}

	doctors, err := h.bookingService.ListDoctors(r.Context())
	if err != nil {
		h.logger.Error("Failed to load doctors", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}

	users, err := h.authService.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("Failed to load users", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}

	appointments, err := h.bookingService.ListAppointments(r.Context())
	if err != nil {
		h.logger.Error("Failed to load appointments", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}

	customers := 0
	for i := range users {
		if users[i].Role == domain.RoleCustomer {
			customers++
		}
	}

	today := time.Now().Format("2006-01-02")
	todayCount := 0
	for i := range appointments {
		if appointments[i].Date == today {
			todayCount++
		}
	}

	middleware.RespondWithJSON(w, http.StatusOK, DashboardStats{
		MedicineCount:     len(medicines),
		DoctorCount:       len(doctors),
		CustomerCount:     customers,
		TodayAppointments: todayCount,
	})
}

// ListUsers serves all registered users without credentials
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.authService.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("Failed to load users", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load users")
		return
	}

	profiles := make([]UserProfile, 0, len(users))
	for i := range users {
		profiles = append(profiles, toUserProfile(&users[i]))
	}

	middleware.RespondWithJSON(w, http.StatusOK, profiles)
}

// ListActivities serves the audit trail, newest first
func (h *AdminHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	activities, err := h.activityRepo.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to load activities", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load activities")
		return
	}

	// Stored oldest first; the dashboard shows the most recent on top.
	for i, j := 0, len(activities)-1; i < j; i, j = i+1, j-1 {
		activities[i], activities[j] = activities[j], activities[i]
	}

	middleware.RespondWithJSON(w, http.StatusOK, activities)
}
