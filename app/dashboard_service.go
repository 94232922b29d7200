package app

import (
	"context"
	"time"

	"custlens/domain/core"
	"custlens/domain/customer"
	"custlens/domain/stats"
	"custlens/internal"
	"custlens/internal/analysis"
	"custlens/internal/errors"
	"custlens/internal/filter"
	"custlens/ports"
)

// DefaultTopN is the number of rows in the top-purchases table.
const DefaultTopN = 10

// DashboardOptions tunes a dashboard computation.
type DashboardOptions struct {
	TopN int
	// RecordLimit caps the raw-records table; 0 keeps every filtered row.
	RecordLimit int
	Buckets     analysis.Buckets
}

// DefaultDashboardOptions returns the dashboard's standard layout.
func DefaultDashboardOptions() DashboardOptions {
	return DashboardOptions{TopN: DefaultTopN, Buckets: analysis.DefaultAgeBuckets()}
}

// RecordPage is one page of filtered raw rows.
type RecordPage struct {
	Total   int               `json:"total"`
	Offset  int               `json:"offset"`
	Limit   int               `json:"limit"`
	Records []customer.Record `json:"records"`
}

// DashboardService runs the filter → aggregate pipeline over a shared,
// immutable dataset. Each call is an independent computation.
type DashboardService struct {
	source ports.DatasetSource
	repo   ports.SnapshotRepository
	logger *internal.Logger
	now    func() time.Time
}

// NewDashboardService creates a dashboard service. repo may be nil, in which
// case archive operations report NOT_CONFIGURED.
func NewDashboardService(source ports.DatasetSource, repo ports.SnapshotRepository, logger *internal.Logger) *DashboardService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DashboardService{
		source: source,
		repo:   repo,
		logger: logger.With("Dashboard"),
		now:    time.Now,
	}
}

// View filters the current dataset.
func (s *DashboardService) View(ctx context.Context, criteria customer.FilterCriteria) (customer.View, error) {
	if err := ctx.Err(); err != nil {
		return customer.View{}, err
	}
	ds, err := s.source.Dataset()
	if err != nil {
		return customer.View{}, errors.Wrap(err, "failed to load dataset")
	}
	view, err := filter.ApplyDataset(ds, criteria)
	if err != nil {
		return customer.View{}, errors.Wrap(err, "invalid filter criteria")
	}
	return view, nil
}

// DatasetInfo loads the current dataset and reports its parameters.
func (s *DashboardService) DatasetInfo(ctx context.Context) (customer.Params, error) {
	if err := ctx.Err(); err != nil {
		return customer.Params{}, err
	}
	ds, err := s.source.Dataset()
	if err != nil {
		return customer.Params{}, errors.Wrap(err, "failed to load dataset")
	}
	return ds.Params(), nil
}

// Compute runs one full recomputation for criteria.
func (s *DashboardService) Compute(ctx context.Context, criteria customer.FilterCriteria, opts DashboardOptions) (*stats.Dashboard, error) {
	start := s.now()
	if opts.TopN <= 0 {
		opts.TopN = DefaultTopN
	}
	if len(opts.Buckets.Edges) == 0 {
		opts.Buckets = analysis.DefaultAgeBuckets()
	}

	view, err := s.View(ctx, criteria)
	if err != nil {
		return nil, err
	}
	criteria = criteria.Normalize()

	d := &stats.Dashboard{
		ID:          core.NewSnapshotID(),
		Criteria:    criteria,
		Summary:     filter.Describe(criteria),
		Fingerprint: criteria.Fingerprint(),
		Dataset:     view.Dataset().Params(),
		RowCount:    view.Len(),
		Metrics:     analysis.Summarize(view),
		GeneratedAt: start.UTC(),
	}

	if d.Scatter, err = analysis.ScatterSeries(view, customer.FieldIncome, customer.FieldPurchaseAmount); err != nil {
		return nil, errors.Wrap(err, "failed to build scatter series")
	}

	records := view.Records()
	if opts.RecordLimit > 0 && len(records) > opts.RecordLimit {
		records = records[:opts.RecordLimit]
	}
	d.Tables = append(d.Tables, analysis.RecordsTable(stats.TableRecords, "Filtered Data", records))

	desc, err := analysis.DescribeAll(view, customer.FieldAge, customer.FieldIncome, customer.FieldPurchaseAmount)
	if err != nil {
		return nil, errors.Wrap(err, "failed to compute descriptive statistics")
	}
	d.Tables = append(d.Tables, analysis.DescriptiveTable(desc))

	d.Tables = append(d.Tables, analysis.CountsTable(stats.TableAgeDistribution, "Age Distribution", "Age", analysis.AgeDistribution(view)))

	cities, err := analysis.ValueCounts(view, customer.FieldCity)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count cities")
	}
	d.Tables = append(d.Tables, analysis.CountsTable(stats.TableCityCounts, "City Distribution", "City", cities))

	groups, err := analysis.GroupByCategory(view, customer.FieldPurchaseAmount, customer.FieldProductCategory)
	if err != nil {
		return nil, errors.Wrap(err, "failed to group purchases")
	}
	d.Tables = append(d.Tables, analysis.GroupByTable(stats.TableCategoryStats, "Purchase Amount by Product Category", groups))

	corr, err := analysis.CorrelationMatrix(view)
	if err != nil {
		return nil, errors.Wrap(err, "failed to compute correlation matrix")
	}
	d.Tables = append(d.Tables, analysis.CorrelationTable(corr))

	pivot, err := analysis.AgeBucketPivot(view, opts.Buckets)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build age pivot")
	}
	d.Tables = append(d.Tables, analysis.PivotTableTable(pivot))

	top, err := analysis.TopN(view, customer.FieldPurchaseAmount, opts.TopN)
	if err != nil {
		return nil, errors.Wrap(err, "failed to rank purchases")
	}
	d.Tables = append(d.Tables, analysis.RecordsTable(stats.TableTopPurchases, "Top Purchases", top))

	s.logger.Debug("computed %s: %d rows in %s (fingerprint %s)", d.ID, d.RowCount, time.Since(start), d.Fingerprint.Short())
	return d, nil
}

// Records returns one page of filtered rows.
func (s *DashboardService) Records(ctx context.Context, criteria customer.FilterCriteria, limit, offset int) (*RecordPage, error) {
	if limit < 0 || offset < 0 {
		return nil, errors.InvalidInput("limit and offset must not be negative")
	}
	view, err := s.View(ctx, criteria)
	if err != nil {
		return nil, err
	}

	page := &RecordPage{Total: view.Len(), Offset: offset, Limit: limit, Records: []customer.Record{}}
	if offset >= view.Len() {
		return page, nil
	}
	end := view.Len()
	if limit > 0 && limit < end-offset {
		end = offset + limit
	}
	for i := offset; i < end; i++ {
		page.Records = append(page.Records, view.At(i))
	}
	return page, nil
}

// Describe computes descriptive statistics of one field.
func (s *DashboardService) Describe(ctx context.Context, criteria customer.FilterCriteria, field customer.Field) (stats.DescriptiveStats, error) {
	view, err := s.View(ctx, criteria)
	if err != nil {
		return stats.DescriptiveStats{}, err
	}
	return analysis.DescriptiveStats(view, field)
}

// GroupBy aggregates field per value of groupKey.
func (s *DashboardService) GroupBy(ctx context.Context, criteria customer.FilterCriteria, field, groupKey customer.Field) (stats.GroupByResult, error) {
	view, err := s.View(ctx, criteria)
	if err != nil {
		return stats.GroupByResult{}, err
	}
	return analysis.GroupByCategory(view, field, groupKey)
}

// Pivot builds the age-group × category table of mean purchase amount.
func (s *DashboardService) Pivot(ctx context.Context, criteria customer.FilterCriteria, buckets analysis.Buckets) (stats.PivotTable, error) {
	view, err := s.View(ctx, criteria)
	if err != nil {
		return stats.PivotTable{}, err
	}
	return analysis.AgeBucketPivot(view, buckets)
}

// Correlation computes the correlation matrix of the given numeric fields.
func (s *DashboardService) Correlation(ctx context.Context, criteria customer.FilterCriteria, fields ...customer.Field) (stats.CorrelationMatrix, error) {
	view, err := s.View(ctx, criteria)
	if err != nil {
		return stats.CorrelationMatrix{}, err
	}
	return analysis.CorrelationMatrix(view, fields...)
}

// Top returns the n records with the largest field value.
func (s *DashboardService) Top(ctx context.Context, criteria customer.FilterCriteria, field customer.Field, n int) ([]customer.Record, error) {
	view, err := s.View(ctx, criteria)
	if err != nil {
		return nil, err
	}
	return analysis.TopN(view, field, n)
}

// ExploreCity summarises one city within the filtered rows.
func (s *DashboardService) ExploreCity(ctx context.Context, criteria customer.FilterCriteria, city string) (stats.CityExploration, error) {
	view, err := s.View(ctx, criteria)
	if err != nil {
		return stats.CityExploration{}, err
	}
	return analysis.ExploreCity(view, city)
}

// ExploreCategory summarises one product category within the filtered rows.
func (s *DashboardService) ExploreCategory(ctx context.Context, criteria customer.FilterCriteria, category string) (stats.CategoryExploration, error) {
	view, err := s.View(ctx, criteria)
	if err != nil {
		return stats.CategoryExploration{}, err
	}
	return analysis.ExploreCategory(view, category)
}

// Archive stores a computed dashboard.
func (s *DashboardService) Archive(ctx context.Context, d *stats.Dashboard) error {
	if s.repo == nil {
		return errors.NotConfigured("snapshot archive")
	}
	if err := s.repo.Save(ctx, d); err != nil {
		return errors.Wrapf(err, "failed to archive snapshot %s", d.ID)
	}
	s.logger.Info("archived snapshot %s (%d rows)", d.ID, d.RowCount)
	return nil
}

// Snapshot loads an archived dashboard.
func (s *DashboardService) Snapshot(ctx context.Context, id core.SnapshotID) (*stats.Dashboard, error) {
	if s.repo == nil {
		return nil, errors.NotConfigured("snapshot archive")
	}
	return s.repo.GetByID(ctx, id)
}

// RecentSnapshots lists the most recently archived dashboards.
func (s *DashboardService) RecentSnapshots(ctx context.Context, limit int) ([]ports.SnapshotSummary, error) {
	if s.repo == nil {
		return nil, errors.NotConfigured("snapshot archive")
	}
	if limit <= 0 {
		limit = 20
	}
	return s.repo.ListRecent(ctx, limit)
}
