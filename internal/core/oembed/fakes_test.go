package oembed

import (
	"context"
	"sync"

	"ChartEmbed/internal/core/charts"
)

// fakeChartRepo is an in-memory charts.Repository
type fakeChartRepo struct {
	charts map[string]*charts.Chart
	err    error
	calls  []string
	mu     sync.Mutex
}

func newFakeChartRepo(list ...*charts.Chart) *fakeChartRepo {
	repo := &fakeChartRepo{charts: make(map[string]*charts.Chart)}
	for _, c := range list {
		repo.charts[c.ID] = c
	}
	return repo
}

func (f *fakeChartRepo) GetByID(ctx context.Context, id string) (*charts.Chart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, id)
	if f.err != nil {
		return nil, f.err
	}
	chart, ok := f.charts[id]
	if !ok {
		return nil, charts.ErrChartNotFound
	}
	return chart, nil
}

// publishedChart returns a published 600x400 chart on primary.example
func publishedChart(id string) *charts.Chart {
	return &charts.Chart{
		ID:           id,
		Title:        "Unemployment rate",
		PublicURL:    "https://primary.example/" + id + "/1/",
		LastEditStep: charts.PublishedStep,
		Owner:        &charts.Owner{ID: 7, Name: "Ada Lovelace", CanPublish: true},
		Metadata: charts.Metadata{Publish: charts.PublishMetadata{
			EmbedWidth:  600,
			EmbedHeight: 400,
		}},
	}
}

// countingProvider records how often it was invoked
type countingProvider struct {
	patterns []string
	err      error
	calls    int
	mu       sync.Mutex
}

func (p *countingProvider) provide(context.Context) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.patterns, p.err
}

func (p *countingProvider) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
