package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var (
	serverURL string
)

var statusCmd = &cobra.Command{
	Use:   "status [job-id]",
	Short: "Query server status or specific job",
	Long: `Queries the server for job status information.
If no job-id is provided, lists all jobs.
If job-id is provided, shows detailed status for that job.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		// List all jobs
		url := fmt.Sprintf("%s/api/v1/jobs", serverURL)
		return listJobs(url)
	}

	jobID := args[0]
	url := fmt.Sprintf("%s/api/v1/jobs/%s/status", serverURL, jobID)
	return getJobStatus(url, jobID)
}

func listJobs(url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned error: %s", string(body))
	}

	var jobs []map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&jobs); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if len(jobs) == 0 {
		fmt.Println("No jobs found")
		return nil
	}

	fmt.Printf("Found %d job(s):\n\n", len(jobs))
	for _, job := range jobs {
		fmt.Printf("Job ID: %s\n", job["id"])
		fmt.Printf("  State: %s\n", job["state"])
		if config, ok := job["config"].(map[string]interface{}); ok {
			fmt.Printf("  Circles: %v\n", config["circles"])
			fmt.Printf("  Distribution: %v\n", config["distribution"])
		}
		if placed, ok := job["placed"].(float64); ok && placed > 0 {
			fmt.Printf("  Placed: %.0f\n", placed)
		}
		fmt.Println()
	}

	return nil
}

func getJobStatus(url, jobID string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("job not found: %s", jobID)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned error: %s", string(body))
	}

	var status map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	fmt.Printf("Job: %s\n", status["id"])
	fmt.Printf("State: %s\n", status["state"])
	fmt.Println()

	if config, ok := status["config"].(map[string]interface{}); ok {
		fmt.Println("Configuration:")
		fmt.Printf("  Cell: %v x %v\n", config["lx"], config["ly"])
		fmt.Printf("  Circles: %v\n", config["circles"])
		fmt.Printf("  Distribution: %v\n", config["distribution"])
		fmt.Printf("  Seed: %v\n", config["seed"])
		fmt.Println()
	}

	fmt.Println("Progress:")
	if placed, ok := status["placed"].(float64); ok {
		fmt.Printf("  Placed: %.0f\n", placed)
	}
	if attempts, ok := status["attempts"].(float64); ok {
		fmt.Printf("  Attempts: %.0f\n", attempts)
	}
	if fraction, ok := status["areaFraction"].(float64); ok && fraction > 0 {
		fmt.Printf("  Area fraction: %.2f%%\n", fraction)
	}

	if seconds, ok := status["elapsed"].(float64); ok {
		elapsed := time.Duration(seconds * float64(time.Second))
		fmt.Printf("  Elapsed: %s\n", elapsed.Round(time.Millisecond))
	}

	if errMsg, ok := status["error"].(string); ok && errMsg != "" {
		fmt.Printf("\nError: %s\n", errMsg)
	}

	return nil
}
