package stats

import (
	"time"

	"custlens/domain/core"
	"custlens/domain/customer"
)

// Table names used by every dashboard.
const (
	TableRecords         = "records"
	TableDescriptive     = "descriptive_stats"
	TableAgeDistribution = "age_distribution"
	TableCityCounts      = "city_distribution"
	TableCategoryStats   = "purchase_by_category"
	TableCorrelation     = "correlation"
	TableAgePivot        = "age_group_pivot"
	TableTopPurchases    = "top_purchases"
)

// Dashboard is the complete set of value exports for one FilterCriteria.
type Dashboard struct {
	ID          core.SnapshotID         `json:"id"`
	Criteria    customer.FilterCriteria `json:"criteria"`
	Summary     string                  `json:"summary"`
	Fingerprint core.Hash               `json:"fingerprint"`
	Dataset     customer.Params         `json:"dataset"`
	RowCount    int                     `json:"row_count"`
	Metrics     Metrics                 `json:"metrics"`
	Scatter     []Point                 `json:"income_vs_purchase"`
	Tables      []*Table                `json:"tables"`
	GeneratedAt time.Time               `json:"generated_at"`
}

// Table returns the named table or nil.
func (d *Dashboard) Table(name string) *Table {
	for _, t := range d.Tables {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// TableNames lists the tables in dashboard order.
func (d *Dashboard) TableNames() []string {
	names := make([]string, len(d.Tables))
	for i, t := range d.Tables {
		names[i] = t.Name
	}
	return names
}
