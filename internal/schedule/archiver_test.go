package schedule

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"custlens/app"
	"custlens/domain/core"
	"custlens/domain/stats"
	"custlens/internal"
	"custlens/internal/errors"
	"custlens/internal/presets"
	"custlens/internal/synth"
	"custlens/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRepo struct {
	mu    sync.Mutex
	saved []*stats.Dashboard
	err   error
}

func (r *recordingRepo) Save(_ context.Context, d *stats.Dashboard) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.saved = append(r.saved, d)
	return nil
}

func (r *recordingRepo) GetByID(context.Context, core.SnapshotID) (*stats.Dashboard, error) {
	return nil, core.ErrSnapshotNotFound
}

func (r *recordingRepo) ListRecent(context.Context, int) ([]ports.SnapshotSummary, error) {
	return nil, nil
}

func (r *recordingRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saved)
}

func newArchiver(repo ports.SnapshotRepository) *Archiver {
	logger := internal.NewDiscardLogger()
	src := synth.NewCache(logger).Source(synth.GeneratorConfig{NumRows: 200, Seed: 11})
	dashboards := app.NewDashboardService(src, repo, logger)
	sweeps := app.NewSweepService(dashboards, 2, logger)
	return NewArchiver(sweeps, dashboards, presets.Defaults(), app.DefaultDashboardOptions(), logger)
}

func TestRunOnce_ArchivesEveryPreset(t *testing.T) {
	repo := &recordingRepo{}
	n, err := newArchiver(repo).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(presets.Defaults()), n)
	require.Len(t, repo.saved, n)
	for i, p := range presets.Defaults() {
		assert.Equal(t, p.Criteria.Fingerprint(), repo.saved[i].Fingerprint)
	}
}

func TestRunOnce_WithoutArchive(t *testing.T) {
	n, err := newArchiver(nil).RunOnce(context.Background())
	assert.Equal(t, 0, n)
	assert.Equal(t, errors.CodeNotConfigured, errors.GetCode(err))
}

func TestRunOnce_StopsOnSaveFailure(t *testing.T) {
	repo := &recordingRepo{err: errors.DatabaseError("insert failed", stderrors.New("conn reset"))}
	_, err := newArchiver(repo).RunOnce(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CodeDatabaseError, errors.GetCode(err))
}

func TestStart_InvalidSpec(t *testing.T) {
	a := newArchiver(&recordingRepo{})
	err := a.Start(context.Background(), "not a schedule")
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
	a.Stop()
}

func TestStart_RunsOnSchedule(t *testing.T) {
	repo := &recordingRepo{}
	a := newArchiver(repo)
	require.NoError(t, a.Start(context.Background(), "@every 1s"))
	defer a.Stop()

	assert.Error(t, a.Start(context.Background(), "@every 1s"), "second start is rejected")
	require.Eventually(t, func() bool {
		return repo.count() >= len(presets.Defaults())
	}, 5*time.Second, 50*time.Millisecond)
}
