package ports

import (
	"context"
	"time"

	"custlens/domain/core"
	"custlens/domain/stats"
)

// SnapshotRepository archives computed dashboards. Archived snapshots are
// never read back into the filter/aggregate pipeline.
type SnapshotRepository interface {
	Save(ctx context.Context, d *stats.Dashboard) error
	GetByID(ctx context.Context, id core.SnapshotID) (*stats.Dashboard, error)
	ListRecent(ctx context.Context, limit int) ([]SnapshotSummary, error)
}

// SnapshotSummary is the listing form of an archived dashboard.
type SnapshotSummary struct {
	ID          core.SnapshotID `json:"id" db:"id"`
	Fingerprint core.Hash       `json:"fingerprint" db:"fingerprint"`
	Summary     string          `json:"summary" db:"summary"`
	RowCount    int             `json:"row_count" db:"row_count"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}
