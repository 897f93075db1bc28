package handler

import (
	"net/http"

	"github.com/quotewise/intake-api/internal/domain"
	"go.uber.org/zap"
)

// CatalogHandler serves the question-set catalog so the widget can render the
// manual category picker.
type CatalogHandler struct {
	catalog []domain.QuestionSet
	logger  *zap.Logger
}

func NewCatalogHandler(catalog []domain.QuestionSet, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// @Summary List question-set categories
// @Tags Catalog
// @Produce json
// @Success 200 {object} domain.CatalogDTO
// @Router /catalog [get]
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, domain.CatalogDTO{Categories: h.catalog})
}
