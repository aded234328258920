package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ChartEmbed/internal/core/charts"
)

type postgresChartRepo struct {
	db *sql.DB
}

// NewChartRepository creates a new PostgreSQL chart repository
func NewChartRepository(db *sql.DB) charts.Repository {
	return &postgresChartRepo{db: db}
}

// GetByID retrieves a chart and its owner by chart id
func (r *postgresChartRepo) GetByID(ctx context.Context, id string) (*charts.Chart, error) {
	query := `
		SELECT c.id, c.title, c.public_url, c.last_edit_step, c.deleted, c.metadata,
		       u.id, u.name, u.can_publish
		FROM charts c
		LEFT JOIN users u ON u.id = c.author_id
		WHERE c.id = $1`

	chart := &charts.Chart{}
	var (
		metadata   []byte
		ownerID    sql.NullInt64
		ownerName  sql.NullString
		canPublish sql.NullBool
	)

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&chart.ID, &chart.Title, &chart.PublicURL, &chart.LastEditStep, &chart.Deleted, &metadata,
		&ownerID, &ownerName, &canPublish,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, charts.ErrChartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chart by id: %w", err)
	}

	chart.Metadata, err = charts.ParseMetadata(metadata)
	if err != nil {
		return nil, fmt.Errorf("chart %s: %w", id, err)
	}

	if ownerID.Valid {
		chart.Owner = &charts.Owner{
			ID:         ownerID.Int64,
			Name:       ownerName.String,
			CanPublish: canPublish.Bool,
		}
	}

	return chart, nil
}
