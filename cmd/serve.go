package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/rvegen/internal/config"
	"github.com/cwbudde/rvegen/internal/server"
)

var (
	serveAddr    string
	serveDataDir string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP job server",
	Long: `Starts the HTTP server that accepts generation jobs, streams their
progress and serves the exported geometry files.
Flags override the RVEGEN_ADDR and RVEGEN_DATA_DIR environment variables.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides RVEGEN_ADDR)")
	serveCmd.Flags().StringVar(&serveDataDir, "data-dir", "", "Base directory for run storage (overrides RVEGEN_DATA_DIR)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadServer()
	if err != nil {
		return fmt.Errorf("failed to load server config: %w", err)
	}
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}
	if serveDataDir != "" {
		cfg.DataDir = serveDataDir
	}

	s, err := server.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}
