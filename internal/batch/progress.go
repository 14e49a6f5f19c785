package batch

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker tracks and reports progress for a batch of tasks.
type ProgressTracker struct {
	startTime    time.Time
	lastUpdate   time.Time
	out          io.Writer
	taskStatuses map[string]TaskStatus
	updateCount  int
	mu           sync.RWMutex
}

// NewProgressTracker creates a tracker that prints to out.
func NewProgressTracker(out io.Writer) *ProgressTracker {
	if out == nil {
		out = io.Discard
	}

	return &ProgressTracker{
		startTime:    time.Now(),
		lastUpdate:   time.Now(),
		out:          out,
		taskStatuses: make(map[string]TaskStatus),
	}
}

// Update records a progress update.
func (pt *ProgressTracker) Update(update ProgressUpdate) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	pt.taskStatuses[update.TaskID] = update.Status
	pt.lastUpdate = time.Now()
	pt.updateCount++
}

// GetSummary returns a summary of the current progress.
func (pt *ProgressTracker) GetSummary() ProgressSummary {
	pt.mu.RLock()
	defer pt.mu.RUnlock()

	summary := ProgressSummary{
		StartTime:    pt.startTime,
		LastUpdate:   pt.lastUpdate,
		ElapsedTime:  time.Since(pt.startTime),
		UpdateCount:  pt.updateCount,
		StatusCounts: make(map[TaskStatus]int),
	}

	for _, status := range pt.taskStatuses {
		summary.StatusCounts[status]++
	}

	summary.TotalTasks = len(pt.taskStatuses)

	return summary
}

// ProgressSummary provides a summary of progress tracking.
type ProgressSummary struct {
	StartTime    time.Time          `json:"start_time"`
	LastUpdate   time.Time          `json:"last_update"`
	StatusCounts map[TaskStatus]int `json:"status_counts"`
	ElapsedTime  time.Duration      `json:"elapsed_time"`
	UpdateCount  int                `json:"update_count"`
	TotalTasks   int                `json:"total_tasks"`
}

// PrintProgress writes a one-line progress report, overwriting the previous one.
func (pt *ProgressTracker) PrintProgress() {
	summary := pt.GetSummary()

	completed := summary.StatusCounts[TaskStatusCompleted]
	failed := summary.StatusCounts[TaskStatusFailed]
	processing := summary.StatusCounts[TaskStatusProcessing]

	fmt.Fprintf(pt.out, "\r🔄 Scored: %d/%d URLs", completed+failed, summary.TotalTasks)

	if failed > 0 {
		fmt.Fprintf(pt.out, " (%d failed)", failed)
	}

	if processing > 0 {
		fmt.Fprintf(pt.out, " (%d processing)", processing)
	}

	if summary.TotalTasks > 0 {
		percentage := float64(completed+failed) / float64(summary.TotalTasks) * 100
		fmt.Fprintf(pt.out, " [%.1f%%]", percentage)
	}

	fmt.Fprintf(pt.out, " [%v elapsed]", summary.ElapsedTime.Round(time.Millisecond))
}

// Finish terminates the progress line.
func (pt *ProgressTracker) Finish() {
	pt.PrintProgress()
	fmt.Fprintln(pt.out)
}
