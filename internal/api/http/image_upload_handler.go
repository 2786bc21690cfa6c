package http

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"rental-backend/internal/domain"
	"rental-backend/internal/service"
	"rental-backend/internal/storage"
)

// PhotoHandler accepts item photo uploads from staff and serves stored
// photos back to everyone.
type PhotoHandler struct {
	admin    service.AdminService
	photos   storage.PhotoStorage
	maxBytes int64
}

func NewPhotoHandler(admin service.AdminService, photos storage.PhotoStorage, maxBytes int64) *PhotoHandler {
	return &PhotoHandler{admin: admin, photos: photos, maxBytes: maxBytes}
}

// Upload handles a multipart form with the image in the "photo" field.
func (h *PhotoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	file, header, err := r.FormFile("photo")
	if err != nil {
		writeError(w, r, domain.NewValidationError("photo", "a photo file up to the size limit is required"))
		return
	}
	defer file.Close()

	item, err := h.admin.UploadItemPhoto(r.Context(), id, header.Header.Get("Content-Type"), file)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Download streams the photo stored under the path after /photos/.
func (h *PhotoHandler) Download(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/photos/")

	file, err := h.photos.Open(key)
	if errors.Is(err, os.ErrNotExist) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "photo not found"})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer file.Close()

	contentType := "application/octet-stream"
	switch filepath.Ext(key) {
	case ".jpg", ".jpeg":
		contentType = "image/jpeg"
	case ".png":
		contentType = "image/png"
	case ".webp":
		contentType = "image/webp"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	io.Copy(w, file)
}
