package oembed

import (
	"errors"
	"log/slog"
	"net/http"

	"ChartEmbed/internal/api/handlers"
	"ChartEmbed/internal/core/oembed"
	"ChartEmbed/internal/metrics"
)

// notFoundMessage is shared by every not-found cause so responses never
// reveal whether a chart exists.
const notFoundMessage = "No published chart found for this URL"

// handleServiceError maps oEmbed errors to HTTP responses
func handleServiceError(w http.ResponseWriter, err error) {
	var validationErr *oembed.ValidationError

	switch {
	case errors.Is(err, oembed.ErrUnsupportedFormat):
		metrics.OEmbedRequests.WithLabelValues("unsupported_format").Inc()
		handlers.WriteError(w, http.StatusNotImplemented, "UnsupportedFormat", "Only the json format is supported")
	case errors.As(err, &validationErr):
		metrics.OEmbedRequests.WithLabelValues("invalid_request").Inc()
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", validationErr.Error())
	case errors.Is(err, oembed.ErrInvalidRequest):
		metrics.OEmbedRequests.WithLabelValues("invalid_request").Inc()
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
	case oembed.IsNotFound(err):
		metrics.OEmbedRequests.WithLabelValues("not_found").Inc()
		handlers.WriteError(w, http.StatusNotFound, "NotFound", notFoundMessage)
	default:
		metrics.OEmbedRequests.WithLabelValues("error").Inc()
		slog.Error("[OEMBED-HANDLER] unexpected error", "error", err)
		handlers.WriteError(w, http.StatusInternalServerError, "InternalServerError", "An internal error occurred")
	}
}
