package postgres

import (
	"database/sql"
	"os"
	"testing"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"

	"ChartEmbed/internal/db/migrations"
)

// setupTestDB connects to TEST_DATABASE_URL and runs migrations.
// Tests are skipped when no test database is configured.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping PostgreSQL integration test")
	}

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err, "Failed to connect to test database")

	goose.SetBaseFS(migrations.FS)
	require.NoError(t, goose.SetDialect("postgres"))
	require.NoError(t, goose.Up(db, "."), "Failed to run migrations")

	return db
}

// createTestUser inserts a chart owner and returns its id
func createTestUser(t *testing.T, db *sql.DB, name string, canPublish bool) int64 {
	t.Helper()

	var id int64
	err := db.QueryRow(`INSERT INTO users (name, can_publish) VALUES ($1, $2) RETURNING id`, name, canPublish).Scan(&id)
	require.NoError(t, err, "Failed to create test user")

	t.Cleanup(func() {
		_, _ = db.Exec("DELETE FROM users WHERE id = $1", id)
	})
	return id
}

// createTestChart inserts a chart row; authorID of 0 leaves the chart without owner
func createTestChart(t *testing.T, db *sql.DB, id, title string, step int, deleted bool, metadata *string, authorID int64) {
	t.Helper()

	var author sql.NullInt64
	if authorID != 0 {
		author = sql.NullInt64{Int64: authorID, Valid: true}
	}

	_, err := db.Exec(`
		INSERT INTO charts (id, title, public_url, last_edit_step, deleted, metadata, author_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, title, "https://primary.example/"+id+"/1/", step, deleted, metadata, author)
	require.NoError(t, err, "Failed to create test chart")

	t.Cleanup(func() {
		_, _ = db.Exec("DELETE FROM charts WHERE id = $1", id)
	})
}
