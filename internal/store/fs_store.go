package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// FSStore persists runs under a base directory:
// <baseDir>/runs/<runID>/run.json plus per-run artifacts (meshinfo,
// geometry exports, preview), and <baseDir>/data.csv for the results
// table. JSON writes use the temp file + rename pattern, so readers
// never observe a partial file.
type FSStore struct {
	baseDir string

	// resultsMu serializes appends to the shared results CSV.
	resultsMu sync.Mutex
}

// NewFSStore creates a filesystem-backed store, creating baseDir if
// needed.
func NewFSStore(baseDir string) (*FSStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &FSStore{baseDir: baseDir}, nil
}

// BaseDir returns the store's root directory.
func (fs *FSStore) BaseDir() string {
	return fs.baseDir
}

// RunDir returns the artifact directory for a run. Backends write
// their exports here next to run.json.
func (fs *FSStore) RunDir(id string) string {
	return filepath.Join(fs.baseDir, "runs", id)
}

func (fs *FSStore) runPath(id string) string {
	return filepath.Join(fs.RunDir(id), "run.json")
}

func (fs *FSStore) meshInfoPath(id string) string {
	return filepath.Join(fs.RunDir(id), "meshinfo.json")
}

// SaveRun validates and atomically persists a run record.
func (fs *FSStore) SaveRun(record *RunRecord) error {
	if record == nil {
		return fmt.Errorf("record cannot be nil")
	}
	if err := record.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(fs.RunDir(record.ID), 0755); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}

	if err := fs.writeJSON(fs.runPath(record.ID), record); err != nil {
		return err
	}

	slog.Debug("Run saved", "id", record.ID, "path", fs.runPath(record.ID))
	return nil
}

// WriteMeshInfo writes the run's companion metadata record.
func (fs *FSStore) WriteMeshInfo(record *RunRecord) error {
	if err := os.MkdirAll(fs.RunDir(record.ID), 0755); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}
	return fs.writeJSON(fs.meshInfoPath(record.ID), record.MeshInfo())
}

// LoadRun retrieves a run record by ID.
func (fs *FSStore) LoadRun(id string) (*RunRecord, error) {
	if id == "" {
		return nil, fmt.Errorf("id cannot be empty")
	}

	path := fs.runPath(id)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &NotFoundError{ID: id}
	} else if err != nil {
		return nil, fmt.Errorf("failed to read run file: %w", err)
	}

	var record RunRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to deserialize run: %w", err)
	}

	slog.Debug("Run loaded", "id", id, "path", path)
	return &record, nil
}

// ListRuns returns metadata for every stored run.
func (fs *FSStore) ListRuns() ([]RunInfo, error) {
	runsDir := filepath.Join(fs.baseDir, "runs")

	entries, err := os.ReadDir(runsDir)
	if os.IsNotExist(err) {
		return []RunInfo{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read runs directory: %w", err)
	}

	var infos []RunInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		record, err := fs.LoadRun(entry.Name())
		if err != nil {
			slog.Warn("Failed to load run for listing", "id", entry.Name(), "error", err)
			continue
		}
		infos = append(infos, record.ToInfo())
	}

	slog.Debug("Listed runs", "count", len(infos))
	return infos, nil
}

// DeleteRun removes a run and all its artifacts.
func (fs *FSStore) DeleteRun(id string) error {
	if id == "" {
		return fmt.Errorf("id cannot be empty")
	}

	dir := fs.RunDir(id)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return &NotFoundError{ID: id}
	} else if err != nil {
		return fmt.Errorf("failed to stat run directory: %w", err)
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove run directory: %w", err)
	}

	slog.Debug("Run deleted", "id", id, "path", dir)
	return nil
}

// writeJSON marshals v and writes it atomically to path.
func (fs *FSStore) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", filepath.Base(path), err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
