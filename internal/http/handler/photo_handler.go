package handler

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/quotewise/intake-api/internal/domain"
	"github.com/quotewise/intake-api/internal/storage"
	"go.uber.org/zap"
)

// allowedPhotoTypes are the content types accepted for project photos
var allowedPhotoTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/heic": true,
	"image/heif": true,
}

// PhotoHandler stores project photos and serves them back by storage path.
// The widget uploads photos first, then submits the returned URLs to the
// session's photo stage.
type PhotoHandler struct {
	storage     storage.Storage
	maxUploadMB int64
	logger      *zap.Logger
}

func NewPhotoHandler(store storage.Storage, maxUploadMB int64, logger *zap.Logger) *PhotoHandler {
	return &PhotoHandler{
		storage:     store,
		maxUploadMB: maxUploadMB,
		logger:      logger,
	}
}

// @Summary Upload a project photo
// @Tags Photos
// @Accept multipart/form-data
// @Produce json
// @Param photo formData file true "Photo to upload"
// @Success 201 {object} domain.UploadedPhotoDTO
// @Failure 400 {object} domain.APIError
// @Failure 413 {object} domain.APIError
// @Router /photos [post]
func (h *PhotoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// Limit request size
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadMB*1024*1024)

	if err := r.ParseMultipartForm(h.maxUploadMB * 1024 * 1024); err != nil {
		respondWithError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("Photo too large: maximum size is %dMB", h.maxUploadMB))
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid upload: photo field is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !allowedPhotoTypes[contentType] {
		respondWithError(w, http.StatusBadRequest, "Unsupported photo type: must be JPEG, PNG, WebP, or HEIC")
		return
	}

	storagePath, size, err := h.storage.Upload(r.Context(), header.Filename, contentType, file)
	if err != nil {
		h.logger.Error("failed to store photo", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to store photo")
		return
	}

	respondJSON(w, http.StatusCreated, domain.UploadedPhotoDTO{
		URL:  "/api/v1/photos/" + storagePath,
		Size: size,
	})
}

// @Summary Serve a stored photo
// @Tags Photos
// @Produce image/jpeg
// @Param path path string true "Storage path"
// @Success 200
// @Failure 404 {object} domain.APIError
// @Router /photos/{path} [get]
func (h *PhotoHandler) Serve(w http.ResponseWriter, r *http.Request) {
	storagePath := chi.URLParam(r, "*")
	if storagePath == "" || strings.Contains(storagePath, "..") {
		respondWithError(w, http.StatusBadRequest, "Invalid photo path")
		return
	}

	reader, err := h.storage.Download(r.Context(), storagePath)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Photo not found")
		return
	}
	defer reader.Close()

	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = io.Copy(w, reader)
}
