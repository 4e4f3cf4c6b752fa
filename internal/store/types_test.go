package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/rvegen/internal/pack"
)

func validConfig() RunConfig {
	return RunConfig{
		Lx: 20, Ly: 20,
		Circles:      5,
		Distribution: "fixed",
		Radius:       1,
		Seed:         42,
	}
}

func TestRunConfigValidate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	bad := validConfig()
	bad.Lx = 0
	assert.Error(t, bad.Validate(), "non-positive width")

	bad = validConfig()
	bad.Circles = 0
	assert.Error(t, bad.Validate(), "non-positive circle count")

	bad = validConfig()
	bad.Distribution = "poisson"
	assert.Error(t, bad.Validate(), "unknown distribution")

	bad = validConfig()
	bad.Radius = -1
	assert.Error(t, bad.Validate(), "non-positive fixed radius")
}

func TestRunConfigApplyDefaults(t *testing.T) {
	cfg := RunConfig{Lx: 10, Ly: 10, Circles: 1, Radius: 1}
	cfg.ApplyDefaults()

	assert.Equal(t, pack.DistFixed, cfg.Distribution)
	assert.Equal(t, pack.DefaultMinInside, cfg.MinInside)
	assert.Equal(t, pack.DefaultMaxAttempts, cfg.MaxAttempts)
}

func TestRunConfigEngineRoundTrip(t *testing.T) {
	cfg := validConfig()
	engine, err := cfg.Engine()
	require.NoError(t, err)

	res, err := engine.Place(context.Background(), cfg.Circles)
	require.NoError(t, err)
	assert.Len(t, res.Primaries(), 5)
}

func TestRunRecordValidate(t *testing.T) {
	cfg := validConfig()
	engine, err := cfg.Engine()
	require.NoError(t, err)
	res, err := engine.Place(context.Background(), cfg.Circles)
	require.NoError(t, err)

	record := NewRunRecord("run-1", cfg, res)
	assert.NoError(t, record.Validate())

	noID := *record
	noID.ID = ""
	assert.Error(t, noID.Validate())

	stale := *record
	stale.Timestamp = time.Time{}
	assert.Error(t, stale.Validate())

	mismatch := *record
	mismatch.Config.Circles = 7
	assert.Error(t, mismatch.Validate(), "primary count must match config")
}

func TestRunRecordMeshInfo(t *testing.T) {
	cfg := validConfig()
	engine, err := cfg.Engine()
	require.NoError(t, err)
	res, err := engine.Place(context.Background(), cfg.Circles)
	require.NoError(t, err)

	record := NewRunRecord("run-1", cfg, res)
	info := record.MeshInfo()

	assert.Equal(t, "run-1", info.ID)
	assert.Equal(t, 5, info.Circles)
	assert.Equal(t, res.AreaFraction, info.Distribution)
}
