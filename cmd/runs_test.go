package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cwbudde/rvegen/internal/store"
)

func TestSelectRunsForDeletion_ByAge(t *testing.T) {
	now := time.Now()
	infos := []store.RunInfo{
		{ID: "run1", Timestamp: now.AddDate(0, 0, -10)},
		{ID: "run2", Timestamp: now.AddDate(0, 0, -5)},
		{ID: "run3", Timestamp: now.AddDate(0, 0, -1)},
		{ID: "run4", Timestamp: now.AddDate(0, 0, -30)},
	}

	// Delete runs older than 7 days
	toDelete := selectRunsForDeletion(infos, 0, 7)

	if len(toDelete) != 2 {
		t.Errorf("Expected 2 runs to delete, got %d", len(toDelete))
	}

	found10 := false
	found30 := false
	for _, info := range toDelete {
		if info.ID == "run1" {
			found10 = true
		}
		if info.ID == "run4" {
			found30 = true
		}
	}

	if !found10 || !found30 {
		t.Error("Expected run1 and run4 to be selected for deletion")
	}
}

func TestSelectRunsForDeletion_ByCount(t *testing.T) {
	now := time.Now()
	infos := []store.RunInfo{
		{ID: "run1", Timestamp: now.AddDate(0, 0, -10)},
		{ID: "run2", Timestamp: now.AddDate(0, 0, -5)},
		{ID: "run3", Timestamp: now.AddDate(0, 0, -1)},
		{ID: "run4", Timestamp: now.AddDate(0, 0, -30)},
	}

	// Keep only the last 2 runs
	toDelete := selectRunsForDeletion(infos, 2, 0)

	if len(toDelete) != 2 {
		t.Errorf("Expected 2 runs to delete, got %d", len(toDelete))
	}

	for _, info := range toDelete {
		if info.ID != "run1" && info.ID != "run4" {
			t.Errorf("Unexpected run selected for deletion: %s", info.ID)
		}
	}
}

func TestSelectRunsForDeletion_Combined(t *testing.T) {
	now := time.Now()
	infos := []store.RunInfo{
		{ID: "run1", Timestamp: now.AddDate(0, 0, -10)},
		{ID: "run2", Timestamp: now.AddDate(0, 0, -1)},
	}

	// Age selects run1; keep-last would also select run1. No duplicates.
	toDelete := selectRunsForDeletion(infos, 1, 7)

	if len(toDelete) != 1 {
		t.Fatalf("Expected 1 run to delete, got %d", len(toDelete))
	}
	if toDelete[0].ID != "run1" {
		t.Errorf("Expected run1, got %s", toDelete[0].ID)
	}
}

func TestSelectRunsForDeletion_KeepAll(t *testing.T) {
	now := time.Now()
	infos := []store.RunInfo{
		{ID: "run1", Timestamp: now.AddDate(0, 0, -100)},
	}

	toDelete := selectRunsForDeletion(infos, 0, 0)

	if len(toDelete) != 0 {
		t.Errorf("Expected no runs to delete, got %d", len(toDelete))
	}
}

func TestGetDirSize(t *testing.T) {
	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, "a.txt"), make([]byte, 100), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.txt"), make([]byte, 50), 0644); err != nil {
		t.Fatal(err)
	}

	size, err := getDirSize(dir)
	if err != nil {
		t.Fatalf("getDirSize failed: %v", err)
	}
	if size != 150 {
		t.Errorf("Expected 150 bytes, got %d", size)
	}
}

func TestFormatBytes(t *testing.T) {
	cases := []struct {
		bytes int64
		want  string
	}{
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
	}

	for _, tc := range cases {
		if got := formatBytes(tc.bytes); got != tc.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tc.bytes, got, tc.want)
		}
	}
}
