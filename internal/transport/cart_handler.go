package transport

import (
	"net/http"

	"pharmacure/internal/middleware"
	"pharmacure/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CartDeltaRequest adjusts the quantity of one medicine by a signed amount
type CartDeltaRequest struct {
	MedicineID string `json:"medicineId" validate:"required"`
	Delta      int    `json:"delta" validate:"required"`
}

// CartResponse is the cart page payload: resolvable lines plus totals
type CartResponse struct {
	Items  []service.CartItem `json:"items"`
	Totals service.CartTotals `json:"totals"`
	Count  int                `json:"count"`
}

// CartHandler handles HTTP requests for the shopping cart
type CartHandler struct {
	cartService service.CartService
	logger      *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService service.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		logger:      logger,
	}
}

// RegisterRoutes registers all cart routes
func (h *CartHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.Get)
		r.Post("/items", h.ApplyDelta)
		r.Delete("/items/{medicineId}", h.Remove)
		r.Post("/checkout", h.Checkout)
	})
}

// Get serves the cart contents with totals
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	items, err := h.cartService.Items(r.Context())
	if err != nil {
		h.logger.Error("Failed to load cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}

	totals, err := h.cartService.Totals(r.Context())
	if err != nil {
		h.logger.Error("Failed to total cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}

	count, err := h.cartService.Count(r.Context())
	if err != nil {
		h.logger.Error("Failed to count cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, CartResponse{
		Items:  items,
		Totals: totals,
		Count:  count,
	})
}

// ApplyDelta adjusts one line's quantity. A no-op change (unknown medicine,
// or a decrement past zero) returns a null result rather than an error.
func (h *CartHandler) ApplyDelta(w http.ResponseWriter, r *http.Request) {
	var req CartDeltaRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.cartService.ApplyDelta(r.Context(), req.MedicineID, req.Delta)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	count, err := h.cartService.Count(r.Context())
	if err != nil {
		h.logger.Error("Failed to count cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"result": result,
		"count":  count,
	})
}

// Remove drops a line regardless of its quantity
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	medicineID := chi.URLParam(r, "medicineId")

	if err := h.cartService.Remove(r.Context(), medicineID); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "item removed"})
}

// Checkout clears the cart in a single write
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	if err := h.cartService.Checkout(r.Context()); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "order placed"})
}
