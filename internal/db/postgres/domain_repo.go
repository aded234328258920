package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"ChartEmbed/internal/core/charts"
)

type postgresDomainRepo struct {
	db *sql.DB
}

// NewDomainRepository creates a repository over the alternate chart domains table
func NewDomainRepository(db *sql.DB) charts.DomainRepository {
	return &postgresDomainRepo{db: db}
}

// ListDomains returns the enabled alternate domains, highest priority first
func (r *postgresDomainRepo) ListDomains(ctx context.Context) ([]string, error) {
	query := `
		SELECT domain
		FROM chart_domains
		WHERE enabled = TRUE
		ORDER BY priority DESC, domain ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list chart domains: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var domains []string
	for rows.Next() {
		var domain string
		if err := rows.Scan(&domain); err != nil {
			return nil, fmt.Errorf("failed to scan chart domain: %w", err)
		}
		domains = append(domains, domain)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chart domains: %w", err)
	}

	return domains, nil
}
