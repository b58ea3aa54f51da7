package transport

import (
	"net/http"
	"strconv"

	"pharmacure/internal/domain"
	"pharmacure/internal/middleware"
	"pharmacure/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CatalogHandler handles HTTP requests for the medicine catalog
type CatalogHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers all catalog routes
func (h *CatalogHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/medicines", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(adminMiddleware)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
			r.Get("/low-stock", h.LowStock)
		})
	})
}

// List serves the catalog. query and category each rebuild the result from
// the full collection (they do not narrow each other; query wins when both
// are present), then sort reorders it.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		medicines []domain.Medicine
		err       error
	)
	switch {
	case q.Get("query") != "":
		medicines, err = h.catalogService.Search(r.Context(), q.Get("query"))
	case q.Get("category") != "":
		medicines, err = h.catalogService.FilterByCategory(r.Context(), q.Get("category"))
	default:
		medicines, err = h.catalogService.List(r.Context())
	}
	if err != nil {
		h.logger.Error("Failed to load medicines", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load medicines")
		return
	}

	if sortKey := q.Get("sort"); sortKey != "" {
		medicines = h.catalogService.SortBy(sortKey)
	}

	middleware.RespondWithJSON(w, http.StatusOK, medicines)
}

// Get serves a single medicine by id
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	medicine, err := h.catalogService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, medicine)
}

// Create adds a new medicine (admin only)
func (h *CatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.MedicineInput
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	medicine, err := h.catalogService.Add(r.Context(), req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, medicine)
}

// Update edits an existing medicine (admin only)
func (h *CatalogHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.MedicineInput
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.ID = chi.URLParam(r, "id")

	medicine, err := h.catalogService.Update(r.Context(), req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, medicine)
}

// Delete removes a medicine (admin only). Removing an unknown id succeeds.
func (h *CatalogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.catalogService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "medicine deleted"})
}

// LowStock lists medicines at or below the threshold (admin only)
func (h *CatalogHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	threshold := service.DefaultLowStockThreshold
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "threshold must be an integer")
			return
		}
		threshold = parsed
	}

	medicines, err := h.catalogService.LowStock(r.Context(), threshold)
	if err != nil {
		h.logger.Error("Failed to load low stock medicines", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load medicines")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, medicines)
}
