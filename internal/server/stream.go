package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// ProgressEvent is pushed to SSE subscribers while a job is running.
type ProgressEvent struct {
	JobID        string    `json:"jobId"`
	State        JobState  `json:"state"`
	Placed       int       `json:"placed"`
	Attempts     int       `json:"attempts"`
	AreaFraction float64   `json:"areaFraction"`
	Timestamp    time.Time `json:"timestamp"`
}

// EventBroadcaster fans out progress events to per-job subscribers.
// The most recent event per job is retained and replayed on subscribe,
// so reconnecting clients and clients arriving after a terminal state
// still see where the job stands.
type EventBroadcaster struct {
	mu          sync.RWMutex
	subscribers map[string][]chan ProgressEvent
	lastEvent   map[string]ProgressEvent
}

// NewEventBroadcaster creates a new EventBroadcaster.
func NewEventBroadcaster() *EventBroadcaster {
	return &EventBroadcaster{
		subscribers: make(map[string][]chan ProgressEvent),
		lastEvent:   make(map[string]ProgressEvent),
	}
}

// Subscribe registers a new subscriber for the given job and returns the
// channel events arrive on together with an unsubscribe function.
func (eb *EventBroadcaster) Subscribe(jobID string) (chan ProgressEvent, func()) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	ch := make(chan ProgressEvent, 16)
	eb.subscribers[jobID] = append(eb.subscribers[jobID], ch)

	// Replay the last event for reconnecting clients. The channel is
	// fresh, so the buffered send always succeeds.
	if last, ok := eb.lastEvent[jobID]; ok {
		ch <- last
	}

	unsubscribe := func() {
		eb.mu.Lock()
		defer eb.mu.Unlock()

		subs := eb.subscribers[jobID]
		for i, sub := range subs {
			if sub == ch {
				eb.subscribers[jobID] = append(subs[:i], subs[i+1:]...)
				close(ch)
				break
			}
		}
		if len(eb.subscribers[jobID]) == 0 {
			delete(eb.subscribers, jobID)
		}
	}

	return ch, unsubscribe
}

// Broadcast delivers an event to all subscribers of its job. Slow
// subscribers with a full channel miss the event rather than block the run.
func (eb *EventBroadcaster) Broadcast(event ProgressEvent) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.lastEvent[event.JobID] = event

	for _, ch := range eb.subscribers[event.JobID] {
		select {
		case ch <- event:
		default:
		}
	}
}

// ServeSSE streams progress events for a job as server-sent events until
// the client disconnects or the job reaches a terminal state.
func (eb *EventBroadcaster) ServeSSE(w http.ResponseWriter, r *http.Request, jobID string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events, unsubscribe := eb.Subscribe(jobID)
	defer unsubscribe()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}

			data, err := json.Marshal(event)
			if err != nil {
				continue
			}

			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()

			if event.State == StateCompleted || event.State == StateFailed || event.State == StateCancelled {
				return
			}
		}
	}
}
