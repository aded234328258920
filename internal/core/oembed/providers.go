package oembed

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// ChartURLPattern returns the published-chart URL scheme on the given domain:
// http(s)://<domain>/<id>, optionally followed by a numeric version segment
// and a trailing slash or index.html.
func ChartURLPattern(domain string) string {
	domain = strings.TrimSuffix(strings.TrimSpace(domain), "/")
	return `https?://` + regexp.QuoteMeta(domain) + `/(?P<id>[a-zA-Z0-9]+)(?:/[0-9]+)?(?:/(?:index\.html)?)?`
}

// StaticPatterns returns a provider that always yields the given patterns
func StaticPatterns(patterns ...string) PatternProvider {
	fixed := append([]string(nil), patterns...)
	return func(context.Context) ([]string, error) {
		return fixed, nil
	}
}

// DomainSource lists alternate domains charts are hosted on
type DomainSource interface {
	ListDomains(ctx context.Context) ([]string, error)
}

// DomainPatterns returns a provider that maps every domain listed by src to
// the standard chart URL scheme on that domain.
func DomainPatterns(src DomainSource) PatternProvider {
	return func(ctx context.Context) ([]string, error) {
		domains, err := src.ListDomains(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list chart domains: %w", err)
		}

		patterns := make([]string, 0, len(domains))
		for _, domain := range domains {
			if strings.TrimSpace(domain) == "" {
				continue
			}
			patterns = append(patterns, ChartURLPattern(domain))
		}
		return patterns, nil
	}
}
