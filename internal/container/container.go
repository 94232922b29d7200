package container

import (
	"context"
	"fmt"

	"custlens/adapters/excel"
	"custlens/adapters/postgres"
	"custlens/app"
	"custlens/internal"
	"custlens/internal/api"
	"custlens/internal/config"
	"custlens/internal/migration"
	"custlens/internal/presets"
	"custlens/internal/schedule"
	"custlens/internal/synth"
	"custlens/ports"
	"custlens/ui"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB    *sqlx.DB
	Cache *synth.Cache

	// Data access
	Source       ports.DatasetSource
	SnapshotRepo ports.SnapshotRepository
	Presets      []presets.Preset

	// Services
	Dashboards *app.DashboardService
	Sweeps     *app.SweepService

	// Background jobs, started by StartBackground
	Archiver *schedule.Archiver
}

// New creates a new dependency injection container. The snapshot archive
// stays disabled until InitWithDatabase.
func New(cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
		Cache:  synth.NewCache(logger),
	}

	if cfg.Data.DataFile != "" {
		logger.Info("using data file %s", cfg.Data.DataFile)
		c.Source = excel.NewFileSource(cfg.Data.DataFile)
	} else {
		c.Source = c.Cache.Source(synth.GeneratorConfig{NumRows: cfg.Data.NumRows, Seed: cfg.Data.Seed})
	}

	c.Presets = presets.Defaults()
	if cfg.Sweep.PresetsFile != "" {
		list, err := presets.Load(cfg.Sweep.PresetsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load presets: %w", err)
		}
		c.Presets = list
	}

	c.initServices()
	return c, nil
}

// Connect opens the configured database, if any, and initializes the archive.
func (c *Container) Connect(ctx context.Context) error {
	if !c.Config.Database.Enabled() {
		c.Logger.Info("DATABASE_URL not set, snapshot archive disabled")
		return nil
	}
	db, err := postgres.Connect(ctx, c.Config.Database.URL)
	if err != nil {
		return err
	}
	if err := c.InitWithDatabase(ctx, db); err != nil {
		db.Close()
		return err
	}
	return nil
}

// InitWithDatabase migrates the schema and enables the snapshot archive.
func (c *Container) InitWithDatabase(ctx context.Context, db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}
	if err := migration.NewRunner().Run(ctx, db); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}

	c.DB = db
	c.SnapshotRepo = postgres.NewSnapshotRepository(db)
	c.initServices()

	c.Logger.Info("container initialized with snapshot archive")
	return nil
}

// initServices (re)builds the services over the current dependencies.
func (c *Container) initServices() {
	c.Dashboards = app.NewDashboardService(c.Source, c.SnapshotRepo, c.Logger)
	c.Sweeps = app.NewSweepService(c.Dashboards, c.Config.Sweep.Workers, c.Logger)
}

// StartBackground starts the data file watcher and the snapshot schedule
// when configured. Both stop when ctx is done.
func (c *Container) StartBackground(ctx context.Context) error {
	if src, ok := c.Source.(*excel.FileSource); ok && c.Config.Data.WatchDataFile {
		w, err := excel.NewWatcher(src, c.Logger)
		if err != nil {
			return fmt.Errorf("failed to watch data file: %w", err)
		}
		go func() {
			if err := w.Run(ctx); err != nil {
				c.Logger.Error("data file watcher stopped: %v", err)
			}
		}()
		c.Logger.Info("watching %s for changes", src.Path())
	}

	if spec := c.Config.Sweep.Schedule; spec != "" {
		if c.SnapshotRepo == nil {
			return fmt.Errorf("snapshot schedule requires the snapshot archive")
		}
		c.Archiver = schedule.NewArchiver(c.Sweeps, c.Dashboards, c.Presets, c.DashboardOptions(), c.Logger)
		if err := c.Archiver.Start(ctx, spec); err != nil {
			return err
		}
	}
	return nil
}

// DashboardOptions returns the configured dashboard layout.
func (c *Container) DashboardOptions() app.DashboardOptions {
	opts := app.DefaultDashboardOptions()
	opts.TopN = c.Config.Defaults.TopN
	return opts
}

// APIHandler builds the JSON API handler.
func (c *Container) APIHandler() *api.Handler {
	return api.NewHandler(c.Dashboards, c.Config.DefaultCriteria(), c.DashboardOptions(), c.Logger).
		WithSweep(c.Sweeps, c.Presets)
}

// UIApp builds the HTML report application.
func (c *Container) UIApp() (*ui.App, error) {
	return ui.NewApp(c.Dashboards, ui.Config{
		Defaults: c.Config.DefaultCriteria(),
		Options:  c.DashboardOptions(),
	}, c.Logger)
}

// Router serves the JSON API under /api and the HTML report for every other
// path.
func (c *Container) Router() (*gin.Engine, error) {
	uiApp, err := c.UIApp()
	if err != nil {
		return nil, err
	}
	router := api.NewRouter(c.APIHandler(), c.Config.Server.GinMode)
	router.NoRoute(gin.WrapH(uiApp))
	return router, nil
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if c.Archiver != nil {
		c.Archiver.Stop()
	}
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
