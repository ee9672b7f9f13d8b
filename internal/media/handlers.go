package media

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nkg-services/backend-electro/internal/common"
)

// Handler exposes the admin media endpoints.
type Handler struct {
	Service *Service
}

// Upload handles POST /api/v1/admin/media. Expects multipart form data with
// a "file" part.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.Service.MaxBytes); err != nil {
		common.WriteError(w, common.NewAppError("BAD_REQUEST", "invalid multipart payload", http.StatusBadRequest, err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		common.WriteError(w, common.BadRequest("file", "file part is required"))
		return
	}
	defer file.Close()

	upload, err := h.Service.Store(file, header)
	if err != nil {
		common.WriteError(w, common.NewAppError("BAD_REQUEST", err.Error(), http.StatusBadRequest, err))
		return
	}
	common.JSONData(w, http.StatusCreated, upload)
}

// Delete handles DELETE /api/v1/admin/media/{fileName}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Remove(chi.URLParam(r, "fileName")); err != nil {
		common.WriteError(w, common.NewAppError("BAD_REQUEST", err.Error(), http.StatusBadRequest, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
