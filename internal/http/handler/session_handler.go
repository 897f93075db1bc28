package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/quotewise/intake-api/internal/auth"
	"github.com/quotewise/intake-api/internal/domain"
	"github.com/quotewise/intake-api/internal/wizard"
	"go.uber.org/zap"
)

// SessionHandler exposes the wizard flow over HTTP. Each stage trigger is its
// own endpoint; every success response is the full session snapshot so the
// widget can render from a single shape.
type SessionHandler struct {
	service *wizard.Service
	logger  *zap.Logger
}

func NewSessionHandler(service *wizard.Service, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		service: service,
		logger:  logger,
	}
}

// @Summary Start a wizard session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param request body domain.CreateSessionRequest false "Session options"
// @Success 201 {object} domain.SessionDTO
// @Failure 400 {object} domain.APIError
// @Router /sessions [post]
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateSessionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	// A widget token wins over the request body so an embedded widget cannot
	// impersonate another contractor.
	cfg := domain.EstimateConfig{ContractorID: req.ContractorID}
	if tokenCfg, ok := auth.EstimateConfigFromContext(r.Context()); ok {
		cfg = tokenCfg
	}

	dto := h.service.CreateSession(cfg)
	respondJSON(w, http.StatusCreated, dto)
}

// @Summary Get session state
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} domain.SessionDTO
// @Failure 404 {object} domain.APIError
// @Router /sessions/{id} [get]
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	dto, err := h.service.GetSession(id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// @Summary End a session
// @Tags Sessions
// @Param id path string true "Session ID"
// @Success 204
// @Router /sessions/{id} [delete]
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	h.service.DeleteSession(id)
	w.WriteHeader(http.StatusNoContent)
}

// @Summary Submit project photos
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body domain.SubmitPhotosRequest true "Photo URLs"
// @Success 200 {object} domain.SessionDTO
// @Failure 409 {object} domain.APIError
// @Router /sessions/{id}/photos [post]
func (h *SessionHandler) SubmitPhotos(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req domain.SubmitPhotosRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.service.SubmitPhotos(r.Context(), id, req.PhotoURLs)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// @Summary Submit project description
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body domain.SubmitDescriptionRequest true "Project description"
// @Success 200 {object} domain.SessionDTO
// @Failure 409 {object} domain.APIError
// @Router /sessions/{id}/description [post]
func (h *SessionHandler) SubmitDescription(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req domain.SubmitDescriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.service.SubmitDescription(r.Context(), id, req.Description)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// @Summary Select a category manually
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body domain.SelectCategoryRequest true "Category"
// @Success 200 {object} domain.SessionDTO
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Router /sessions/{id}/category [post]
func (h *SessionHandler) SelectCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req domain.SelectCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.service.SelectCategory(r.Context(), id, req.Category)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// @Summary Complete the question flow
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body domain.CompleteQuestionsRequest true "Answer state"
// @Success 200 {object} domain.SessionDTO
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Router /sessions/{id}/questions [post]
func (h *SessionHandler) CompleteQuestions(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req domain.CompleteQuestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.service.CompleteQuestions(r.Context(), id, req.Answers)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// @Summary Submit contact details
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body domain.SubmitContactRequest true "Contact details"
// @Success 200 {object} domain.SessionDTO
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Router /sessions/{id}/contact [post]
func (h *SessionHandler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req domain.SubmitContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.service.SubmitContact(r.Context(), id, &req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// @Summary Skip contact collection and request a test estimate
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} domain.SessionDTO
// @Failure 409 {object} domain.APIError
// @Router /sessions/{id}/skip [post]
func (h *SessionHandler) Skip(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	dto, err := h.service.Skip(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

func (h *SessionHandler) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid session ID: must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

// respondServiceError maps wizard errors to HTTP status codes. Gateway
// failures never reach here; those surface as notices on a 200 response.
func (h *SessionHandler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		respondWithError(w, http.StatusNotFound, "Session not found or expired")
	case errors.Is(err, wizard.ErrInvalidStage):
		respondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, wizard.ErrNoAnswers):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, wizard.ErrUnknownCategory):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrContractorRequired):
		respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("unhandled wizard error", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
