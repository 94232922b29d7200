package config

import (
	"testing"
	"time"

	"custlens/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "NUM_ROWS", "SEED", "AGE_MIN", "AGE_MAX", "TOP_N", "SWEEP_WORKERS", "DATABASE_URL", "DATA_FILE", "WATCH_DATA_FILE", "SNAPSHOT_SCHEDULE", "GIN_MODE"} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 1000, cfg.Data.NumRows)
	assert.Equal(t, int64(0), cfg.Data.Seed)
	assert.Equal(t, 20, cfg.Defaults.AgeMin)
	assert.Equal(t, 60, cfg.Defaults.AgeMax)
	assert.Equal(t, 10, cfg.Defaults.TopN)
	assert.False(t, cfg.Database.Enabled())
	assert.True(t, cfg.Data.WatchDataFile)
	assert.Empty(t, cfg.Sweep.Schedule)

	criteria := cfg.DefaultCriteria()
	assert.Equal(t, 20, criteria.AgeMin)
	assert.Equal(t, "All", criteria.City)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("NUM_ROWS", "250")
	t.Setenv("SEED", "7")
	t.Setenv("AGE_MIN", "30")
	t.Setenv("AGE_MAX", "40")
	t.Setenv("DATABASE_URL", "postgres://localhost/custlens")
	t.Setenv("WATCH_DATA_FILE", "false")
	t.Setenv("SNAPSHOT_SCHEDULE", "@every 1h")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.False(t, cfg.Data.WatchDataFile)
	assert.Equal(t, "@every 1h", cfg.Sweep.Schedule)
	assert.Equal(t, 250, cfg.Data.NumRows)
	assert.Equal(t, int64(7), cfg.Data.Seed)
	assert.Equal(t, 30, cfg.DefaultCriteria().AgeMin)
	assert.True(t, cfg.Database.Enabled())
}

func TestFromEnvRejectsInvalid(t *testing.T) {
	t.Setenv("NUM_ROWS", "0")
	_, err := FromEnv()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))

	t.Setenv("NUM_ROWS", "100")
	t.Setenv("AGE_MIN", "65")
	t.Setenv("AGE_MAX", "30")
	_, err = FromEnv()
	assert.Error(t, err)

	t.Setenv("AGE_MIN", "20")
	t.Setenv("AGE_MAX", "60")
	t.Setenv("GIN_MODE", "verbose")
	_, err = FromEnv()
	assert.Error(t, err)
}

func TestFromEnvScheduleNeedsDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SNAPSHOT_SCHEDULE", "@every 1h")
	_, err := FromEnv()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}
