package analytics

import (
	"net/http"

	"github.com/nkg-services/backend-electro/internal/common"
)

// Handler exposes the dashboard endpoint.
type Handler struct {
	Service *Service
}

// Dashboard handles GET /api/v1/admin/dashboard.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	overview, err := h.Service.Dashboard(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, overview)
}
