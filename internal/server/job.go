package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cwbudde/rvegen/internal/store"
)

// JobState represents the current state of a generation job.
type JobState string

const (
	StatePending   JobState = "pending"
	StateRunning   JobState = "running"
	StateCompleted JobState = "completed"
	StateFailed    JobState = "failed"
	StateCancelled JobState = "cancelled"
)

// Job represents one generation run executing in the background.
type Job struct {
	ID           string          `json:"id"`
	State        JobState        `json:"state"`
	Config       store.RunConfig `json:"config"`
	Placed       int             `json:"placed"`
	Attempts     int             `json:"attempts"`
	AreaFraction float64         `json:"areaFraction"`
	StartTime    time.Time       `json:"startTime"`
	EndTime      *time.Time      `json:"endTime,omitempty"`
	Error        string          `json:"error,omitempty"`
}

// JobManager manages the lifecycle of jobs.
type JobManager struct {
	mu          sync.RWMutex
	jobs        map[string]*Job
	broadcaster *EventBroadcaster
}

// NewJobManager creates a new JobManager.
func NewJobManager() *JobManager {
	return &JobManager{
		jobs:        make(map[string]*Job),
		broadcaster: NewEventBroadcaster(),
	}
}

// CreateJob registers a new pending job for the given configuration.
func (jm *JobManager) CreateJob(config store.RunConfig) *Job {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	job := &Job{
		ID:        uuid.New().String(),
		State:     StatePending,
		Config:    config,
		StartTime: time.Now(),
	}

	jm.jobs[job.ID] = job
	return job
}

// GetJob retrieves a snapshot copy of a job by ID.
func (jm *JobManager) GetJob(id string) (Job, bool) {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	job, exists := jm.jobs[id]
	if !exists {
		return Job{}, false
	}
	return *job, true
}

// ListJobs returns snapshots of all jobs.
func (jm *JobManager) ListJobs() []Job {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	jobs := make([]Job, 0, len(jm.jobs))
	for _, job := range jm.jobs {
		jobs = append(jobs, *job)
	}
	return jobs
}

// UpdateJob atomically updates a job using the provided function.
func (jm *JobManager) UpdateJob(id string, updateFn func(*Job)) error {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	job, exists := jm.jobs[id]
	if !exists {
		return fmt.Errorf("job not found: %s", id)
	}

	updateFn(job)
	return nil
}

// RunningJobs returns snapshots of all jobs currently running.
func (jm *JobManager) RunningJobs() []Job {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	running := make([]Job, 0)
	for _, job := range jm.jobs {
		if job.State == StateRunning {
			running = append(running, *job)
		}
	}
	return running
}
