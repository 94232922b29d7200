package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"custlens/domain/core"
	"custlens/domain/stats"
	"custlens/internal/errors"
	"custlens/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// snapshotRepository implements the SnapshotRepository interface
type snapshotRepository struct {
	db *sqlx.DB
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(db *sqlx.DB) ports.SnapshotRepository {
	return &snapshotRepository{db: db}
}

// Save inserts a dashboard; criteria and the full dashboard go to JSONB columns.
func (r *snapshotRepository) Save(ctx context.Context, d *stats.Dashboard) error {
	criteriaJSON, err := json.Marshal(d.Criteria)
	if err != nil {
		return fmt.Errorf("failed to marshal criteria: %w", err)
	}
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal dashboard: %w", err)
	}

	query := `INSERT INTO dashboard_snapshots (
		id, criteria, fingerprint, summary, row_count, payload, created_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7
	)`

	_, err = r.db.ExecContext(ctx, query,
		d.ID.String(), criteriaJSON, string(d.Fingerprint), d.Summary, d.RowCount, payload, d.GeneratedAt,
	)
	if err != nil {
		return errors.DatabaseError("failed to save snapshot", err)
	}
	return nil
}

// GetByID retrieves a snapshot by its ID
func (r *snapshotRepository) GetByID(ctx context.Context, id core.SnapshotID) (*stats.Dashboard, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx, `SELECT payload FROM dashboard_snapshots WHERE id = $1`, id.String()).Scan(&payload)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", core.ErrSnapshotNotFound, id)
		}
		return nil, errors.DatabaseError("failed to get snapshot", err)
	}

	var d stats.Dashboard
	if err := json.Unmarshal(payload, &d); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot %s: %w", id, err)
	}
	return &d, nil
}

// ListRecent lists the newest snapshots first.
func (r *snapshotRepository) ListRecent(ctx context.Context, limit int) ([]ports.SnapshotSummary, error) {
	query := `SELECT id, fingerprint, summary, row_count, created_at
	FROM dashboard_snapshots
	ORDER BY created_at DESC
	LIMIT $1`

	list := []ports.SnapshotSummary{}
	if err := r.db.SelectContext(ctx, &list, query, limit); err != nil {
		return nil, errors.DatabaseError("failed to list snapshots", err)
	}
	return list, nil
}

// Connect opens and pings a Postgres connection.
func Connect(ctx context.Context, url string) (*sqlx.DB, error) {
	if url == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, errors.DatabaseError("failed to connect to database", err)
	}
	return db, nil
}
