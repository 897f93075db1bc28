package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/quotewise/intake-api/internal/domain"
	"github.com/quotewise/intake-api/internal/mapper"
	"github.com/quotewise/intake-api/internal/repository"
	"go.uber.org/zap"
)

// LeadHandler exposes admin read access to persisted leads
type LeadHandler struct {
	repo   *repository.LeadRepository
	logger *zap.Logger
}

func NewLeadHandler(repo *repository.LeadRepository, logger *zap.Logger) *LeadHandler {
	return &LeadHandler{
		repo:   repo,
		logger: logger,
	}
}

// @Summary List leads for a contractor
// @Tags Leads
// @Produce json
// @Param contractorId query string true "Contractor ID"
// @Param page query int false "Page number (default 1)"
// @Param pageSize query int false "Page size (default 20, max 100)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /leads [get]
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	contractorID := r.URL.Query().Get("contractorId")
	if contractorID == "" {
		respondWithError(w, http.StatusBadRequest, "contractorId query parameter is required")
		return
	}

	page := 1
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	pageSize := 20
	if ps, err := strconv.Atoi(r.URL.Query().Get("pageSize")); err == nil && ps > 0 && ps <= 100 {
		pageSize = ps
	}

	leads, total, err := h.repo.ListByContractor(r.Context(), contractorID, page, pageSize)
	if err != nil {
		h.logger.Error("failed to list leads",
			zap.String("contractor_id", contractorID),
			zap.Error(err),
		)
		respondWithError(w, http.StatusInternalServerError, "Failed to list leads")
		return
	}

	dtos := make([]domain.LeadDTO, 0, len(leads))
	for i := range leads {
		dtos = append(dtos, mapper.ToLeadDTO(&leads[i]))
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"data":     dtos,
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
	})
}

// @Summary Get a lead by ID
// @Tags Leads
// @Produce json
// @Param id path string true "Lead ID"
// @Success 200 {object} domain.LeadDTO
// @Failure 404 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /leads/{id} [get]
func (h *LeadHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid lead ID: must be a valid UUID")
		return
	}

	lead, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrLeadNotFound) {
			respondWithError(w, http.StatusNotFound, "Lead not found")
			return
		}
		h.logger.Error("failed to get lead", zap.String("lead_id", id.String()), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to get lead")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToLeadDTO(lead))
}
