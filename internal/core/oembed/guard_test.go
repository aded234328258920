package oembed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ChartEmbed/internal/core/charts"
)

func TestGuard_AuthorizePublishedChart(t *testing.T) {
	chart := publishedChart("AbCdE")
	g := NewGuard(newFakeChartRepo(chart))

	got, err := g.Authorize(context.Background(), "AbCdE", "https://primary.example/AbCdE")
	require.NoError(t, err)
	assert.Same(t, chart, got)
}

func TestGuard_Rejections(t *testing.T) {
	deleted := publishedChart("del")
	deleted.Deleted = true

	draft := publishedChart("draft")
	draft.LastEditStep = 3

	pastPublished := publishedChart("past")
	pastPublished.LastEditStep = 6

	tests := []struct {
		name string
		id   string
	}{
		{"unknown chart", "missing"},
		{"deleted chart", "del"},
		{"unpublished chart", "draft"},
		{"edit step past publish", "past"},
	}

	g := NewGuard(newFakeChartRepo(deleted, draft, pastPublished), WithHostMatch(HostMatchOff))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chart, err := g.Authorize(context.Background(), tt.id, "https://primary.example/"+tt.id)
			assert.ErrorIs(t, err, ErrUnauthorized)
			assert.Nil(t, chart)
		})
	}
}

func TestGuard_PublishPermission(t *testing.T) {
	restricted := publishedChart("restricted")
	restricted.Owner.CanPublish = false

	orphan := publishedChart("orphan")
	orphan.Owner = nil

	repo := newFakeChartRepo(restricted, orphan)

	t.Run("not required", func(t *testing.T) {
		g := NewGuard(repo)
		_, err := g.Authorize(context.Background(), "restricted", "")
		assert.NoError(t, err)
	})

	t.Run("required", func(t *testing.T) {
		g := NewGuard(repo, WithPublishPermission(true))

		_, err := g.Authorize(context.Background(), "restricted", "")
		assert.ErrorIs(t, err, ErrUnauthorized)

		_, err = g.Authorize(context.Background(), "orphan", "")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestGuard_HostMatch(t *testing.T) {
	chart := publishedChart("AbCdE")
	chart.PublicURL = "https://charts.news.example.co.uk/AbCdE/1/"
	repo := newFakeChartRepo(chart)

	tests := []struct {
		name       string
		mode       HostMatchMode
		requestURL string
		wantErr    bool
	}{
		{"exact same host", HostMatchExact, "https://charts.news.example.co.uk/AbCdE", false},
		{"exact ignores case and port", HostMatchExact, "http://CHARTS.news.example.co.uk:8080/AbCdE", false},
		{"exact different subdomain", HostMatchExact, "https://embed.news.example.co.uk/AbCdE", true},
		{"site same registrable domain", HostMatchSite, "https://embed.example.co.uk/AbCdE", false},
		{"site different registrable domain", HostMatchSite, "https://charts.other.co.uk/AbCdE", true},
		{"off accepts any host", HostMatchOff, "https://anything.example/AbCdE", false},
		{"empty request URL skips check", HostMatchExact, "", false},
		{"unparseable request URL", HostMatchExact, "://", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGuard(repo, WithHostMatch(tt.mode))
			_, err := g.Authorize(context.Background(), "AbCdE", tt.requestURL)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnauthorized)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGuard_StoreErrorIsNotUnauthorized(t *testing.T) {
	storeErr := errors.New("connection refused")
	repo := newFakeChartRepo()
	repo.err = storeErr

	g := NewGuard(repo)

	_, err := g.Authorize(context.Background(), "AbCdE", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, storeErr)
	assert.NotErrorIs(t, err, ErrUnauthorized)
}

func TestGuard_NotFoundAndUnpublishedAreIndistinguishable(t *testing.T) {
	draft := publishedChart("draft")
	draft.LastEditStep = 2
	g := NewGuard(newFakeChartRepo(draft))

	_, missingErr := g.Authorize(context.Background(), "missing", "")
	_, draftErr := g.Authorize(context.Background(), "draft", "")

	assert.Equal(t, missingErr, draftErr)
	assert.True(t, IsNotFound(missingErr))
}

func TestParseHostMatchMode(t *testing.T) {
	tests := []struct {
		in      string
		want    HostMatchMode
		wantErr bool
	}{
		{"", HostMatchExact, false},
		{"exact", HostMatchExact, false},
		{" Site ", HostMatchSite, false},
		{"OFF", HostMatchOff, false},
		{"fuzzy", "", true},
	}

	for _, tt := range tests {
		got, err := ParseHostMatchMode(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestRegistrableDomain(t *testing.T) {
	assert.Equal(t, "example.co.uk", registrableDomain("charts.news.example.co.uk"))
	assert.Equal(t, "example.org", registrableDomain("example.org"))
	assert.Equal(t, "localhost", registrableDomain("localhost"))
}

var _ charts.Repository = (*fakeChartRepo)(nil)
