package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cwbudde/rvegen/internal/config"
	"github.com/cwbudde/rvegen/internal/server"
	"github.com/cwbudde/rvegen/internal/store"
)

var (
	runDataDir   string
	batchPath    string
	cellLx       float64
	cellLy       float64
	circles      int
	distribution string
	radius       float64
	minRadius    float64
	maxRadius    float64
	minInside    float64
	meshSize     float64
	seed         int64
	maxAttempts  int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate a circle packing and export its geometry",
	Long: `Generates a periodic random circle packing and writes the run record,
the gmsh script, the DXF drawing and a preview image into the data directory.
With --batch, runs every entry of a YAML scenario file instead.`,
	RunE: runGenerate,
}

func init() {
	runCmd.Flags().StringVar(&runDataDir, "data-dir", "./data", "Base directory for run storage")
	runCmd.Flags().StringVar(&batchPath, "batch", "", "YAML scenario file with multiple runs")
	runCmd.Flags().Float64Var(&cellLx, "lx", 20, "Cell width")
	runCmd.Flags().Float64Var(&cellLy, "ly", 20, "Cell height")
	runCmd.Flags().IntVar(&circles, "circles", 10, "Number of circles")
	runCmd.Flags().StringVar(&distribution, "dist", "fixed", "Radius distribution: fixed, uniform, gaussian")
	runCmd.Flags().Float64Var(&radius, "radius", 1, "Radius for the fixed distribution")
	runCmd.Flags().Float64Var(&minRadius, "min-radius", 0, "Minimum radius for randomized distributions")
	runCmd.Flags().Float64Var(&maxRadius, "max-radius", 0, "Maximum radius for randomized distributions")
	runCmd.Flags().Float64Var(&minInside, "min-inside", 0, "Minimum area fraction a circle keeps inside the cell")
	runCmd.Flags().Float64Var(&meshSize, "mesh-size", 0, "Characteristic mesh size for the gmsh script")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Random seed")
	runCmd.Flags().IntVar(&maxAttempts, "max-attempts", 0, "Placement attempts per circle before giving up")

	rootCmd.AddCommand(runCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	st, err := store.NewFSStore(runDataDir)
	if err != nil {
		return fmt.Errorf("failed to create run store: %w", err)
	}

	if batchPath != "" {
		return runBatch(cmd.Context(), st, batchPath)
	}

	cfg := store.RunConfig{
		Lx:           cellLx,
		Ly:           cellLy,
		Circles:      circles,
		Distribution: distribution,
		Radius:       radius,
		MinRadius:    minRadius,
		MaxRadius:    maxRadius,
		MinInside:    minInside,
		MeshSize:     meshSize,
		Seed:         seed,
		MaxAttempts:  maxAttempts,
	}
	return executeRun(cmd.Context(), st, cfg)
}

func runBatch(ctx context.Context, st *store.FSStore, path string) error {
	scenario, err := config.LoadScenario(path)
	if err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}

	runs := scenario.Resolved()
	slog.Info("Starting batch", "scenario", path, "runs", len(runs))

	for i, cfg := range runs {
		if err := executeRun(ctx, st, cfg); err != nil {
			return fmt.Errorf("run %d failed: %w", i, err)
		}
	}
	return nil
}

func executeRun(ctx context.Context, st *store.FSStore, cfg store.RunConfig) error {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	slog.Info("Starting generation",
		"circles", cfg.Circles,
		"distribution", cfg.Distribution,
		"lx", cfg.Lx, "ly", cfg.Ly,
		"seed", cfg.Seed)

	engine, err := cfg.Engine()
	if err != nil {
		return err
	}

	start := time.Now()
	res, err := engine.Place(ctx, cfg.Circles)
	if err != nil {
		return fmt.Errorf("packing failed: %w", err)
	}
	elapsed := time.Since(start)

	id := uuid.New().String()
	record := store.NewRunRecord(id, cfg, res)
	if err := st.SaveRun(record); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	if err := st.WriteMeshInfo(record); err != nil {
		return fmt.Errorf("failed to write mesh info: %w", err)
	}
	if err := st.AppendResult(store.ResultRow{
		ID:           id,
		Circles:      cfg.Circles,
		Distribution: res.AreaFraction,
	}); err != nil {
		return fmt.Errorf("failed to append result: %w", err)
	}

	if err := server.WriteArtifacts(st.RunDir(id), cfg, res); err != nil {
		return err
	}

	slog.Info("Generation complete",
		"id", id,
		"elapsed", elapsed,
		"attempts", res.Attempts,
		"areaFraction", res.AreaFraction)

	fmt.Printf("Wrote %s (%d circles, %.2f%% area, %d attempts)\n",
		st.RunDir(id), cfg.Circles, res.AreaFraction, res.Attempts)

	return nil
}
