package handler

import (
	"net/http"

	"shopfront/internal/model"
	"shopfront/internal/service"

	"github.com/rs/zerolog"
)

// CategoryHandler handles public category-related HTTP requests.
type CategoryHandler struct {
	service service.CategoryService
	logger  zerolog.Logger
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(service service.CategoryService, logger zerolog.Logger) *CategoryHandler {
	return &CategoryHandler{
		service: service,
		logger:  logger.With().Str("handler", "category").Logger(),
	}
}

// GetAll handles GET /api/categories requests. With ?include=products
// each category carries its products.
func (h *CategoryHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	var (
		categories []model.Category
		err        error
	)
	if r.URL.Query().Get("include") == "products" {
		categories, err = h.service.GetAllWithProducts(r.Context())
	} else {
		categories, err = h.service.GetAll(r.Context())
	}
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, categories)
}

// GetByID handles GET /api/categories/{id} requests.
func (h *CategoryHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidID, "category ID must be numeric", h.logger)
		return
	}

	category, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	if category == nil {
		writeError(w, http.StatusNotFound, model.ErrCodeCategoryNotFound, "category not found", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, category)
}
