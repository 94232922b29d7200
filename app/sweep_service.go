package app

import (
	"context"
	"time"

	"custlens/domain/stats"
	"custlens/internal"
	"custlens/internal/presets"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// SweepResult is the dashboard computed for one preset.
type SweepResult struct {
	Preset    presets.Preset   `json:"preset"`
	Dashboard *stats.Dashboard `json:"dashboard"`
}

// SweepService computes dashboards for many presets concurrently. Each
// dashboard is still a single sequential recomputation.
type SweepService struct {
	dashboards *DashboardService
	workers    *semaphore.Weighted
	limit      int64
	logger     *internal.Logger
}

// NewSweepService creates a sweep service running at most workers
// computations at once.
func NewSweepService(dashboards *DashboardService, workers int, logger *internal.Logger) *SweepService {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &SweepService{
		dashboards: dashboards,
		workers:    semaphore.NewWeighted(int64(workers)),
		limit:      int64(workers),
		logger:     logger.With("Sweep"),
	}
}

// Run computes every preset and returns results in preset order. The first
// failure cancels the remaining computations.
func (s *SweepService) Run(ctx context.Context, list []presets.Preset, opts DashboardOptions) ([]SweepResult, error) {
	start := time.Now()
	results := make([]SweepResult, len(list))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range list {
		i, p := i, p
		if err := s.workers.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer s.workers.Release(1)
			d, err := s.dashboards.Compute(gctx, p.Criteria, opts)
			if err != nil {
				s.logger.Warn("preset %q failed: %v", p.Name, err)
				return err
			}
			results[i] = SweepResult{Preset: p, Dashboard: d}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.logger.Info("swept %d presets with %d workers in %s", len(list), s.limit, time.Since(start))
	return results, nil
}
