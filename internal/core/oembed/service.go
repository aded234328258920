package oembed

import (
	"context"
	"log/slog"
	"strings"

	"ChartEmbed/internal/core/charts"
)

// Service builds oEmbed documents for published charts
type Service interface {
	// Negotiate checks the requested format. It runs before anything else so
	// that an unsupported format wins over every other request problem.
	Negotiate(format string) error

	// Embed resolves req.URL to a chart and builds its oEmbed document.
	Embed(ctx context.Context, req Request) (*Response, error)

	// DiscoveryLink renders the head <link> tag for a published chart.
	DiscoveryLink(ctx context.Context, chartID string) (string, error)
}

// Config holds the deployment settings of the response builder
type Config struct {
	ProviderName    string
	ProviderURL     string
	ElementIDPrefix string
	// StrictFormat rejects requests without a format instead of defaulting to json
	StrictFormat bool
}

type service struct {
	resolver   *Resolver
	guard      *Guard
	thumbnails ThumbnailSource
	cfg        Config
	renderer   Renderer
}

// ServiceOption configures the service
type ServiceOption func(*service)

// WithThumbnails adds thumbnail fields to responses when src has one for the chart
func WithThumbnails(src ThumbnailSource) ServiceOption {
	return func(s *service) {
		s.thumbnails = src
	}
}

// NewService creates the oEmbed service
func NewService(cfg Config, resolver *Resolver, guard *Guard, opts ...ServiceOption) Service {
	cfg.ProviderURL = strings.TrimRight(cfg.ProviderURL, "/")
	s := &service{
		cfg:      cfg,
		resolver: resolver,
		guard:    guard,
		renderer: NewRenderer(cfg.ElementIDPrefix),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Negotiate(format string) error {
	switch format {
	case FormatJSON:
		return nil
	case "":
		if s.cfg.StrictFormat {
			return NewValidationError("format", "is required")
		}
		return nil
	default:
		return ErrUnsupportedFormat
	}
}

func (s *service) Embed(ctx context.Context, req Request) (*Response, error) {
	if err := s.Negotiate(req.Format); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.URL) == "" {
		return nil, NewValidationError("url", "is required")
	}
	if req.MaxWidth < 0 {
		return nil, NewValidationError("maxwidth", "must be a positive integer")
	}
	if req.MaxHeight < 0 {
		return nil, NewValidationError("maxheight", "must be a positive integer")
	}

	chartID, err := s.resolver.Resolve(ctx, req.URL)
	if err != nil {
		return nil, err
	}

	chart, err := s.guard.Authorize(ctx, chartID, req.URL)
	if err != nil {
		return nil, err
	}

	width, height := chart.Metadata.Publish.EmbedSize()
	natural := NaturalSize(width, height)
	if natural.Width != width || natural.Height != height {
		slog.Warn("[OEMBED] chart has no embed size, using default",
			"chart_id", chart.ID,
			"embed_width", width,
			"embed_height", height,
		)
	}
	dims := Fit(natural, Bounds{MaxWidth: req.MaxWidth, MaxHeight: req.MaxHeight})

	resp := &Response{
		Type:         ResponseType,
		Version:      Version,
		ProviderName: s.cfg.ProviderName,
		ProviderURL:  s.cfg.ProviderURL,
		Title:        chart.Title,
		HTML:         s.renderer.Render(chart, dims, req.Iframe),
		Width:        dims.Width,
		Height:       dims.Height,
		AuthorName:   chart.AuthorName(),
	}
	s.addThumbnail(ctx, chart, resp)

	return resp, nil
}

// addThumbnail is best-effort: a broken thumbnail never fails the response
func (s *service) addThumbnail(ctx context.Context, chart *charts.Chart, resp *Response) {
	if s.thumbnails == nil {
		return
	}

	thumb, err := s.thumbnails.Thumbnail(ctx, chart.ID)
	if err != nil {
		slog.Warn("[OEMBED] failed to read chart thumbnail", "chart_id", chart.ID, "error", err)
		return
	}
	if thumb == nil || thumb.Width <= 0 || thumb.Height <= 0 {
		return
	}

	resp.ThumbnailURL = thumb.URL
	resp.ThumbnailWidth = thumb.Width
	resp.ThumbnailHeight = thumb.Height
}

func (s *service) DiscoveryLink(ctx context.Context, chartID string) (string, error) {
	if chartID == "" {
		return "", ErrNotResolved
	}

	chart, err := s.guard.Authorize(ctx, chartID, "")
	if err != nil {
		return "", err
	}
	return DiscoveryLink(s.cfg.ProviderURL, chart), nil
}
