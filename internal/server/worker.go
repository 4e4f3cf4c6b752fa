package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/cwbudde/rvegen/internal/backend"
	"github.com/cwbudde/rvegen/internal/pack"
	"github.com/cwbudde/rvegen/internal/preview"
	"github.com/cwbudde/rvegen/internal/store"
)

// runJob executes a generation job in the background, persists the
// resulting run and writes the mesh artifacts next to it.
func runJob(ctx context.Context, jm *JobManager, st *store.FSStore, jobID string) {
	job, exists := jm.GetJob(jobID)
	if !exists {
		slog.Error("Job not found", "jobId", jobID)
		return
	}

	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateRunning
		j.StartTime = time.Now()
	})
	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:     jobID,
		State:     StateRunning,
		Timestamp: time.Now(),
	})

	cfg := job.Config
	cfg.ApplyDefaults()

	engine, err := cfg.Engine()
	if err != nil {
		markJobFailed(jm, jobID, err)
		return
	}

	observer := func(placed, attempts int) {
		jm.UpdateJob(jobID, func(j *Job) {
			j.Placed = placed
			j.Attempts = attempts
		})
		jm.broadcaster.Broadcast(ProgressEvent{
			JobID:     jobID,
			State:     StateRunning,
			Placed:    placed,
			Attempts:  attempts,
			Timestamp: time.Now(),
		})
	}

	res, err := engine.PlaceObserved(ctx, cfg.Circles, observer)
	if err != nil {
		if ctx.Err() != nil {
			markJobCancelled(jm, jobID)
			return
		}
		markJobFailed(jm, jobID, err)
		return
	}

	record := store.NewRunRecord(jobID, cfg, res)
	if err := st.SaveRun(record); err != nil {
		markJobFailed(jm, jobID, fmt.Errorf("failed to save run: %w", err))
		return
	}
	if err := st.WriteMeshInfo(record); err != nil {
		markJobFailed(jm, jobID, fmt.Errorf("failed to write mesh info: %w", err))
		return
	}
	if err := st.AppendResult(store.ResultRow{
		ID:           jobID,
		Circles:      cfg.Circles,
		Distribution: res.AreaFraction,
	}); err != nil {
		markJobFailed(jm, jobID, fmt.Errorf("failed to append result: %w", err))
		return
	}

	if err := WriteArtifacts(st.RunDir(jobID), cfg, res); err != nil {
		markJobFailed(jm, jobID, err)
		return
	}

	now := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCompleted
		j.Placed = len(res.Primaries())
		j.Attempts = res.Attempts
		j.AreaFraction = res.AreaFraction
		j.EndTime = &now
	})
	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:        jobID,
		State:        StateCompleted,
		Placed:       len(res.Primaries()),
		Attempts:     res.Attempts,
		AreaFraction: res.AreaFraction,
		Timestamp:    now,
	})

	slog.Info("Job completed",
		"jobId", jobID,
		"circles", len(res.Primaries()),
		"attempts", res.Attempts,
		"areaFraction", res.AreaFraction)
}

// WriteArtifacts exports the mesh scripts and the preview image into
// the run directory. The run command shares it with the job worker.
func WriteArtifacts(dir string, cfg store.RunConfig, res *pack.Result) error {
	meshSize := cfg.MeshSize
	if meshSize == 0 {
		meshSize = backend.DefaultMeshSize
	}

	model, err := backend.NewModel(res.Rect, res.Circles(), meshSize)
	if err != nil {
		return fmt.Errorf("failed to build geometry model: %w", err)
	}
	for _, sk := range model.Skipped {
		slog.Warn("Skipping invalid circle", "index", sk.Index, "reason", sk.Reason)
	}

	exports := map[string]backend.Backend{
		"model.geo":    backend.GmshBackend{},
		"geometry.dxf": backend.DXFBackend{},
	}
	for name, b := range exports {
		if err := b.Export(model, filepath.Join(dir, name)); err != nil {
			return fmt.Errorf("failed to export %s: %w", name, err)
		}
	}

	f, err := os.Create(filepath.Join(dir, "preview.png"))
	if err != nil {
		return fmt.Errorf("failed to create preview: %w", err)
	}
	defer f.Close()

	if err := preview.WritePNG(f, res, preview.DefaultScale); err != nil {
		return fmt.Errorf("failed to render preview: %w", err)
	}
	return nil
}

func markJobFailed(jm *JobManager, jobID string, err error) {
	now := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &now
	})
	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:     jobID,
		State:     StateFailed,
		Timestamp: now,
	})
	slog.Error("Job failed", "jobId", jobID, "error", err)
}

func markJobCancelled(jm *JobManager, jobID string) {
	now := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCancelled
		j.EndTime = &now
	})
	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:     jobID,
		State:     StateCancelled,
		Timestamp: now,
	})
	slog.Info("Job cancelled", "jobId", jobID)
}
