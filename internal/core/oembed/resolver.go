package oembed

import (
	"context"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"ChartEmbed/internal/metrics"
)

const defaultPatternCacheSize = 256

// compiledPattern caches the outcome of compiling one pattern text,
// failures included, so a broken pattern is reported once.
type compiledPattern struct {
	re  *regexp.Regexp
	err error
}

// Resolver maps a chart URL to the chart id it references
type Resolver struct {
	registry     *Registry
	cache        *lru.Cache[string, compiledPattern]
	canonical    string
	cacheSize    int
	pathFallback bool
}

// ResolverOption configures a Resolver
type ResolverOption func(*Resolver)

// WithPathFallback makes the resolver take the first URL path segment as the
// chart id when no pattern matches. Off by default.
func WithPathFallback(enabled bool) ResolverOption {
	return func(r *Resolver) {
		r.pathFallback = enabled
	}
}

// WithPatternCacheSize bounds the number of compiled patterns kept in memory
func WithPatternCacheSize(size int) ResolverOption {
	return func(r *Resolver) {
		if size > 0 {
			r.cacheSize = size
		}
	}
}

// NewResolver creates a resolver. canonical is the primary-domain pattern,
// tested before any provider pattern; it may be empty. registry may be nil.
func NewResolver(canonical string, registry *Registry, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		canonical: canonical,
		registry:  registry,
		cacheSize: defaultPatternCacheSize,
	}
	for _, opt := range opts {
		opt(r)
	}

	cache, err := lru.New[string, compiledPattern](r.cacheSize)
	if err != nil {
		slog.Warn("[OEMBED] failed to create pattern cache, falling back to minimal size", "error", err)
		cache, _ = lru.New[string, compiledPattern](1)
	}
	r.cache = cache

	return r
}

// Resolve returns the chart id referenced by rawURL.
// The canonical pattern is tried first and alone; provider patterns are only
// collected when it does not match. The first matching pattern decides the
// outcome, and a match with an empty id is ErrNotResolved.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (string, error) {
	if r.canonical != "" {
		if id, ok := r.match(r.canonical, rawURL); ok {
			return resolved(id, "canonical")
		}
	}

	if r.registry != nil {
		for _, pattern := range r.registry.Collect(ctx) {
			if id, ok := r.match(pattern, rawURL); ok {
				return resolved(id, "provider")
			}
		}
	}

	if r.pathFallback {
		if id := firstPathSegment(rawURL); id != "" {
			return resolved(id, "path_fallback")
		}
	}

	return "", ErrNotResolved
}

func resolved(id, source string) (string, error) {
	if id == "" {
		return "", ErrNotResolved
	}
	metrics.OEmbedResolutions.WithLabelValues(source).Inc()
	return id, nil
}

// match tests pattern against the whole of rawURL and extracts the id.
func (r *Resolver) match(pattern, rawURL string) (string, bool) {
	re, err := r.compile(pattern)
	if err != nil {
		return "", false
	}

	m := re.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	return extractID(re, m), true
}

func (r *Resolver) compile(pattern string) (*regexp.Regexp, error) {
	if cached, ok := r.cache.Get(pattern); ok {
		return cached.re, cached.err
	}

	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		slog.Warn("[OEMBED] skipping invalid URL pattern", "pattern", pattern, "error", err)
		metrics.PatternCompileErrors.Inc()
	}
	r.cache.Add(pattern, compiledPattern{re: re, err: err})
	return re, err
}

// extractID prefers the named group "id" and falls back to the first group.
func extractID(re *regexp.Regexp, m []string) string {
	if idx := re.SubexpIndex("id"); idx > 0 {
		return m[idx]
	}
	if len(m) > 1 {
		return m[1]
	}
	return ""
}

func firstPathSegment(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	segments := strings.Split(u.Path, "/")
	if len(segments) < 2 {
		return ""
	}
	return segments[1]
}
