package oembed

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// HandleGetDiscoveryLink handles GET /charts/{id}/oembed-link
// It returns the <link> tag chart pages embed in their head so consumers can
// discover the oEmbed endpoint.
func (h *Handler) HandleGetDiscoveryLink(w http.ResponseWriter, r *http.Request) {
	chartID := chi.URLParam(r, "id")

	link, err := h.service.DiscoveryLink(r.Context(), chartID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(link)); err != nil {
		slog.Warn("[OEMBED-HANDLER] failed to write discovery link", "chart_id", chartID, "error", err)
	}
}
