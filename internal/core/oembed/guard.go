package oembed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"

	"ChartEmbed/internal/core/charts"
	"ChartEmbed/internal/metrics"
)

// HostMatchMode selects how the request URL host is compared with the host of
// the chart's public URL
type HostMatchMode string

const (
	// HostMatchOff skips the host comparison
	HostMatchOff HostMatchMode = "off"
	// HostMatchExact requires equal hostnames (case-insensitive, port ignored)
	HostMatchExact HostMatchMode = "exact"
	// HostMatchSite requires the same registrable domain (eTLD+1)
	HostMatchSite HostMatchMode = "site"
)

// ParseHostMatchMode parses a configured host match mode; "" means exact
func ParseHostMatchMode(s string) (HostMatchMode, error) {
	switch mode := HostMatchMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case "":
		return HostMatchExact, nil
	case HostMatchOff, HostMatchExact, HostMatchSite:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown host match mode %q (want off, exact or site)", s)
	}
}

// Guard re-validates a resolved chart id before anything about the chart is exposed
type Guard struct {
	repo                     charts.Repository
	hostMatch                HostMatchMode
	requirePublishPermission bool
}

// GuardOption configures a Guard
type GuardOption func(*Guard)

// WithHostMatch sets the host comparison policy
func WithHostMatch(mode HostMatchMode) GuardOption {
	return func(g *Guard) {
		g.hostMatch = mode
	}
}

// WithPublishPermission makes the guard reject charts whose owner may not publish
func WithPublishPermission(required bool) GuardOption {
	return func(g *Guard) {
		g.requirePublishPermission = required
	}
}

// NewGuard creates an access guard over the chart store
func NewGuard(repo charts.Repository, opts ...GuardOption) *Guard {
	g := &Guard{
		repo:      repo,
		hostMatch: HostMatchExact,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Authorize loads the chart and checks it may be embedded.
// requestURL is the URL the id was resolved from; when empty the host check is skipped.
// Every policy failure returns ErrUnauthorized; store failures are returned wrapped.
func (g *Guard) Authorize(ctx context.Context, id, requestURL string) (*charts.Chart, error) {
	chart, err := g.repo.GetByID(ctx, id)
	if errors.Is(err, charts.ErrChartNotFound) {
		return nil, g.reject(id, "not_found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load chart %s: %w", id, err)
	}

	if reason := g.check(chart, requestURL); reason != "" {
		return nil, g.reject(id, reason)
	}
	return chart, nil
}

func (g *Guard) check(chart *charts.Chart, requestURL string) string {
	switch {
	case chart.Deleted:
		return "deleted"
	case chart.LastEditStep != charts.PublishedStep:
		return "unpublished"
	case g.requirePublishPermission && (chart.Owner == nil || !chart.Owner.CanPublish):
		return "owner_not_allowed"
	case requestURL != "" && !sameHost(g.hostMatch, requestURL, chart.PublicURL):
		return "host_mismatch"
	}
	return ""
}

func (g *Guard) reject(id, reason string) error {
	slog.Debug("[OEMBED] chart rejected", "chart_id", id, "reason", reason)
	metrics.OEmbedRejections.WithLabelValues(reason).Inc()
	return ErrUnauthorized
}

func sameHost(mode HostMatchMode, requestURL, publicURL string) bool {
	if mode == HostMatchOff {
		return true
	}

	a, b := hostname(requestURL), hostname(publicURL)
	if a == "" || b == "" {
		return false
	}
	if mode == HostMatchSite {
		return registrableDomain(a) == registrableDomain(b)
	}
	return a == b
}

func hostname(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSuffix(u.Hostname(), "."))
}

// registrableDomain returns the eTLD+1 of host, or host itself for
// localhost, IP addresses and other names publicsuffix cannot split.
func registrableDomain(host string) string {
	registrable, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return registrable
}
