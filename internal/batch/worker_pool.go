package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/btraven00/phishq/internal/detector"
)

// Analyzer scores a single URL. *detector.Detector satisfies it.
type Analyzer interface {
	Analyze(rawURL string) *detector.AnalysisResult
}

// WorkerPool runs URL analyses on a fixed number of goroutines.
type WorkerPool struct {
	ctx            context.Context
	analyzer       Analyzer
	tasks          chan Task
	results        chan TaskResult
	progressChan   chan ProgressUpdate
	cancel         context.CancelFunc
	wg             sync.WaitGroup
	closeOnce      sync.Once
	numWorkers     int
	totalTasks     int
	completedTasks int
	mu             sync.RWMutex
}

// Task is a single URL to analyze. Index is its position in the input.
type Task struct {
	ID    string
	URL   string
	Index int
}

// TaskResult is the outcome of a Task.
type TaskResult struct {
	Error  error
	Result *detector.AnalysisResult
	Task   Task
}

// ProgressUpdate provides progress information.
type ProgressUpdate struct {
	TaskID      string
	URL         string
	Status      TaskStatus
	Message     string
	Completed   int
	Total       int
	ElapsedTime time.Duration
}

// TaskStatus represents the status of a task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// NewWorkerPool creates a worker pool bound to ctx. Cancelling ctx stops the
// workers; tasks still queued are never analyzed.
func NewWorkerPool(ctx context.Context, numWorkers int, analyzer Analyzer) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = 4
	}

	ctx, cancel := context.WithCancel(ctx)

	return &WorkerPool{
		analyzer:     analyzer,
		numWorkers:   numWorkers,
		tasks:        make(chan Task, numWorkers*2),
		results:      make(chan TaskResult, numWorkers*2),
		progressChan: make(chan ProgressUpdate, 100),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Start launches the workers.
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)

		go wp.worker(i)
	}
}

func (wp *WorkerPool) worker(workerID int) {
	defer wp.wg.Done()

	for {
		select {
		case <-wp.ctx.Done():
			return
		case task, ok := <-wp.tasks:
			if !ok {
				return
			}

			wp.processTask(workerID, task)
		}
	}
}

func (wp *WorkerPool) processTask(workerID int, task Task) {
	start := time.Now()

	wp.sendProgress(ProgressUpdate{
		TaskID:  task.ID,
		URL:     task.URL,
		Status:  TaskStatusProcessing,
		Message: fmt.Sprintf("Worker %d started processing", workerID),
	})

	result, err := wp.analyze(task)
	elapsed := time.Since(start)

	wp.mu.Lock()
	wp.completedTasks++
	completed := wp.completedTasks
	total := wp.totalTasks
	wp.mu.Unlock()

	status := TaskStatusCompleted
	message := fmt.Sprintf("Worker %d completed in %v", workerID, elapsed)

	if err != nil {
		status = TaskStatusFailed
		message = fmt.Sprintf("Worker %d failed: %v", workerID, err)
	}

	wp.sendProgress(ProgressUpdate{
		TaskID:      task.ID,
		URL:         task.URL,
		Status:      status,
		Completed:   completed,
		Total:       total,
		ElapsedTime: elapsed,
		Message:     message,
	})

	select {
	case wp.results <- TaskResult{Task: task, Result: result, Error: err}:
	case <-wp.ctx.Done():
	}
}

// analyze turns a panic inside the analyzer into an error for this task only.
func (wp *WorkerPool) analyze(task Task) (result *detector.AnalysisResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: %v", ErrAnalysisPanic, r)
		}
	}()

	result = wp.analyzer.Analyze(task.URL)
	if result == nil {
		return nil, ErrNoResult
	}

	return result, nil
}

// sendProgress drops the update when nobody keeps up with the channel.
func (wp *WorkerPool) sendProgress(update ProgressUpdate) {
	select {
	case wp.progressChan <- update:
	default:
	}
}

// SubmitTask queues a task. It reports false when the pool's context was
// cancelled before the task could be queued.
func (wp *WorkerPool) SubmitTask(task Task) bool {
	if wp.ctx.Err() != nil {
		return false
	}

	wp.mu.Lock()
	wp.totalTasks++
	wp.mu.Unlock()

	wp.sendProgress(ProgressUpdate{
		TaskID:  task.ID,
		URL:     task.URL,
		Status:  TaskStatusPending,
		Message: "Task queued for processing",
	})

	select {
	case wp.tasks <- task:
		return true
	case <-wp.ctx.Done():
		return false
	}
}

// Results returns the results channel. It is closed by Wait.
func (wp *WorkerPool) Results() <-chan TaskResult {
	return wp.results
}

// Progress returns the progress channel. It is closed by Wait.
func (wp *WorkerPool) Progress() <-chan ProgressUpdate {
	return wp.progressChan
}

// Wait stops accepting tasks, waits for the workers and closes the output
// channels. It must be called from the goroutine that submits tasks.
func (wp *WorkerPool) Wait() {
	wp.closeOnce.Do(func() {
		close(wp.tasks)
		wp.wg.Wait()
		close(wp.results)
		close(wp.progressChan)
		wp.cancel()
	})
}

// Shutdown cancels outstanding work and releases the pool.
func (wp *WorkerPool) Shutdown() {
	wp.cancel()
	wp.Wait()
}

// GetStats returns current processing statistics.
func (wp *WorkerPool) GetStats() WorkerPoolStats {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	return WorkerPoolStats{
		TotalTasks:     wp.totalTasks,
		CompletedTasks: wp.completedTasks,
		PendingTasks:   wp.totalTasks - wp.completedTasks,
		NumWorkers:     wp.numWorkers,
	}
}

// WorkerPoolStats provides statistics about the worker pool.
type WorkerPoolStats struct {
	TotalTasks     int `json:"total_tasks"`
	CompletedTasks int `json:"completed_tasks"`
	PendingTasks   int `json:"pending_tasks"`
	NumWorkers     int `json:"num_workers"`
}
