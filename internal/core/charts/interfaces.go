package charts

import "context"

// Repository defines read access to stored charts
type Repository interface {
	// GetByID loads a chart together with its owner.
	// Returns ErrChartNotFound when no row exists for the id; deleted and
	// unpublished charts are returned as-is so callers can apply their own policy.
	GetByID(ctx context.Context, id string) (*Chart, error)
}

// DomainRepository lists the alternate hosting domains charts may be published on
type DomainRepository interface {
	ListDomains(ctx context.Context) ([]string, error)
}
