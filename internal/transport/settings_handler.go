package transport

import (
	"net/http"

	"pharmacure/internal/domain"
	"pharmacure/internal/middleware"
	"pharmacure/internal/repository"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SettingsRequest carries the two persisted preferences
type SettingsRequest struct {
	Language string `json:"language" validate:"required,oneof=en bn"`
	Theme    string `json:"theme" validate:"required,oneof=light dark"`
}

// SettingsHandler handles HTTP requests for user preferences
type SettingsHandler struct {
	settingsRepo repository.SettingsRepository
	logger       *zap.Logger
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settingsRepo repository.SettingsRepository, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{
		settingsRepo: settingsRepo,
		logger:       logger,
	}
}

// RegisterRoutes registers the settings routes
func (h *SettingsHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/settings", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.Get)
		r.Put("/", h.Update)
	})
}

// Get serves the stored preferences, falling back to defaults
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsRepo.Get(r.Context())
	if err != nil {
		h.logger.Error("Failed to load settings", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, settings)
}

// Update replaces the stored preferences
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	settings := domain.Settings{Language: req.Language, Theme: req.Theme}
	if err := h.settingsRepo.Save(r.Context(), settings); err != nil {
		h.logger.Error("Failed to save settings", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, settings)
}
