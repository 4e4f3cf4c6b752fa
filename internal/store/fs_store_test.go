package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore returns a store rooted in a temp directory.
func setupTestStore(t *testing.T) *FSStore {
	t.Helper()

	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err, "failed to create test store")
	return s
}

// createTestRecord runs a tiny packing and wraps it in a record.
func createTestRecord(t *testing.T, id string) *RunRecord {
	t.Helper()

	config := RunConfig{
		Lx: 20, Ly: 20,
		Circles:      3,
		Distribution: "fixed",
		Radius:       1,
		Seed:         42,
	}
	engine, err := config.Engine()
	require.NoError(t, err)

	res, err := engine.Place(context.Background(), config.Circles)
	require.NoError(t, err)

	return NewRunRecord(id, config, res)
}

func TestSaveAndLoadRun(t *testing.T) {
	s := setupTestStore(t)
	record := createTestRecord(t, "run-1")

	require.NoError(t, s.SaveRun(record))

	loaded, err := s.LoadRun("run-1")
	require.NoError(t, err)

	assert.Equal(t, record.ID, loaded.ID)
	assert.Equal(t, record.Config, loaded.Config)
	assert.Equal(t, record.Placed, loaded.Placed)
	assert.Equal(t, record.AreaFraction, loaded.AreaFraction)
}

func TestSaveRunRejectsInvalidRecord(t *testing.T) {
	s := setupTestStore(t)
	record := createTestRecord(t, "")

	err := s.SaveRun(record)
	require.Error(t, err)

	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestLoadRunNotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.LoadRun("missing")
	require.Error(t, err)

	var nfErr *NotFoundError
	assert.ErrorAs(t, err, &nfErr)
}

func TestSaveRunLeavesNoTempFile(t *testing.T) {
	s := setupTestStore(t)
	record := createTestRecord(t, "run-1")
	require.NoError(t, s.SaveRun(record))

	entries, err := os.ReadDir(s.RunDir("run-1"))
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp")
	}
}

func TestWriteMeshInfo(t *testing.T) {
	s := setupTestStore(t)
	record := createTestRecord(t, "run-1")

	require.NoError(t, s.WriteMeshInfo(record))

	data, err := os.ReadFile(filepath.Join(s.RunDir("run-1"), "meshinfo.json"))
	require.NoError(t, err)

	// The downstream pipeline reads exactly these keys.
	text := string(data)
	assert.Contains(t, text, `"id"`)
	assert.Contains(t, text, `"circles"`)
	assert.Contains(t, text, `"distribution"`)
	assert.Contains(t, text, `"circles": 3`)
}

func TestListRuns(t *testing.T) {
	s := setupTestStore(t)

	infos, err := s.ListRuns()
	require.NoError(t, err)
	assert.Empty(t, infos)

	require.NoError(t, s.SaveRun(createTestRecord(t, "run-a")))
	require.NoError(t, s.SaveRun(createTestRecord(t, "run-b")))

	infos, err = s.ListRuns()
	require.NoError(t, err)
	require.Len(t, infos, 2)

	ids := []string{infos[0].ID, infos[1].ID}
	assert.ElementsMatch(t, []string{"run-a", "run-b"}, ids)
	assert.Equal(t, 3, infos[0].Circles)
}

func TestListRunsSkipsCorruptedEntries(t *testing.T) {
	s := setupTestStore(t)
	require.NoError(t, s.SaveRun(createTestRecord(t, "run-good")))

	// A run directory with an unreadable record must not break listing.
	badDir := s.RunDir("run-bad")
	require.NoError(t, os.MkdirAll(badDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(badDir, "run.json"), []byte("{not json"), 0644))

	infos, err := s.ListRuns()
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "run-good", infos[0].ID)
}

func TestDeleteRun(t *testing.T) {
	s := setupTestStore(t)
	require.NoError(t, s.SaveRun(createTestRecord(t, "run-1")))

	require.NoError(t, s.DeleteRun("run-1"))

	_, err := os.Stat(s.RunDir("run-1"))
	assert.True(t, os.IsNotExist(err))

	var nfErr *NotFoundError
	assert.ErrorAs(t, s.DeleteRun("run-1"), &nfErr)
}
