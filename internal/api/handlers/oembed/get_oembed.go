package oembed

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"ChartEmbed/internal/api/handlers"
	"ChartEmbed/internal/core/oembed"
	"ChartEmbed/internal/metrics"
)

// embedQuery holds the parsed query parameters of GET /oembed
type embedQuery struct {
	MaxWidth  *int   `query:"maxwidth" validate:"omitempty,gt=0"`
	MaxHeight *int   `query:"maxheight" validate:"omitempty,gt=0"`
	URL       string `query:"url" validate:"required,http_url"`
	Format    string `query:"format"`
	Iframe    bool   `query:"iframe"`
}

// HandleGetOEmbed handles GET /oembed
// Query params: url (required), format, maxwidth, maxheight, iframe
func (h *Handler) HandleGetOEmbed(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	// An unsupported format wins over every other problem with the request
	if err := h.service.Negotiate(query.Get("format")); err != nil {
		handleServiceError(w, err)
		return
	}

	q, err := parseEmbedQuery(query)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	req := oembed.Request{
		URL:    q.URL,
		Format: q.Format,
		Iframe: q.Iframe,
	}
	if q.MaxWidth != nil {
		req.MaxWidth = *q.MaxWidth
	}
	if q.MaxHeight != nil {
		req.MaxHeight = *q.MaxHeight
	}

	resp, err := h.service.Embed(r.Context(), req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	metrics.OEmbedRequests.WithLabelValues("ok").Inc()
	handlers.WriteJSON(w, http.StatusOK, resp)
}

// parseEmbedQuery converts and validates the query parameters
func parseEmbedQuery(query url.Values) (*embedQuery, error) {
	q := &embedQuery{
		URL:    strings.TrimSpace(query.Get("url")),
		Format: query.Get("format"),
	}

	var err error
	if q.MaxWidth, err = parseBound(query, "maxwidth"); err != nil {
		return nil, err
	}
	if q.MaxHeight, err = parseBound(query, "maxheight"); err != nil {
		return nil, err
	}
	if q.Iframe, err = parseIframe(query); err != nil {
		return nil, err
	}

	if err := getValidator().Struct(q); err != nil {
		return nil, toValidationError(err)
	}
	return q, nil
}

// parseBound returns nil when the parameter is absent or empty
func parseBound(query url.Values, name string) (*int, error) {
	raw := strings.TrimSpace(query.Get(name))
	if raw == "" {
		return nil, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, oembed.NewValidationError(name, "must be a positive integer")
	}
	return &n, nil
}

// parseIframe treats a bare or empty iframe parameter as true
func parseIframe(query url.Values) (bool, error) {
	values, present := query["iframe"]
	if !present {
		return false, nil
	}

	var raw string
	if len(values) > 0 {
		raw = strings.ToLower(strings.TrimSpace(values[0]))
	}

	switch raw {
	case "", "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	default:
		return false, oembed.NewValidationError("iframe", "must be true or false")
	}
}

func toValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		slog.Warn("[OEMBED-HANDLER] unexpected validation failure", "error", err)
		return oembed.NewValidationError("request", err.Error())
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return oembed.NewValidationError(fe.Field(), "is required")
	case "http_url":
		return oembed.NewValidationError(fe.Field(), "must be an absolute http or https URL")
	case "gt":
		return oembed.NewValidationError(fe.Field(), "must be a positive integer")
	default:
		return oembed.NewValidationError(fe.Field(), "is invalid")
	}
}
