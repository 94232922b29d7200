// Package schedule archives preset dashboards on a cron schedule.
package schedule

import (
	"context"
	"fmt"
	"sync"

	"custlens/app"
	"custlens/internal"
	"custlens/internal/errors"
	"custlens/internal/presets"

	"github.com/robfig/cron"
)

// Archiver sweeps a preset list and archives every resulting dashboard.
type Archiver struct {
	sweeps     *app.SweepService
	dashboards *app.DashboardService
	presets    []presets.Preset
	opts       app.DashboardOptions
	logger     *internal.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

// NewArchiver creates an archiver over the given services.
func NewArchiver(sweeps *app.SweepService, dashboards *app.DashboardService, list []presets.Preset, opts app.DashboardOptions, logger *internal.Logger) *Archiver {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Archiver{
		sweeps:     sweeps,
		dashboards: dashboards,
		presets:    list,
		opts:       opts,
		logger:     logger.With("Archiver"),
	}
}

// RunOnce sweeps the presets and archives each dashboard. It returns the
// number archived; the first archive failure stops the run.
func (a *Archiver) RunOnce(ctx context.Context) (int, error) {
	results, err := a.sweeps.Run(ctx, a.presets, a.opts)
	if err != nil {
		return 0, err
	}
	for i, r := range results {
		if err := a.dashboards.Archive(ctx, r.Dashboard); err != nil {
			return i, errors.Wrapf(err, "preset %q", r.Preset.Name)
		}
	}
	return len(results), nil
}

// Start schedules RunOnce with a cron spec such as "@every 1h" or
// "0 0 * * * *". ctx bounds every scheduled run.
func (a *Archiver) Start(ctx context.Context, spec string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cron != nil {
		return errors.InvalidInput("archiver already started")
	}

	c := cron.New()
	err := c.AddFunc(spec, func() {
		n, err := a.RunOnce(ctx)
		if err != nil {
			a.logger.Error("scheduled archive failed after %d snapshots: %v", n, err)
			return
		}
		a.logger.Info("scheduled archive stored %d snapshots", n)
	})
	if err != nil {
		return errors.ConfigInvalid(fmt.Sprintf("invalid snapshot schedule %q: %v", spec, err))
	}
	c.Start()
	a.cron = c
	a.logger.Info("snapshot archive scheduled: %s", spec)
	return nil
}

// Stop halts the schedule. A run already in progress finishes on its own.
func (a *Archiver) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cron != nil {
		a.cron.Stop()
		a.cron = nil
	}
}
