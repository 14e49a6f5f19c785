package batch

import (
	"context"
	"testing"
)

func TestNewWorkerPool(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 0, fakeAnalyzer{})
	if pool == nil {
		t.Fatal("NewWorkerPool returned nil")
	}

	if pool.numWorkers != 4 {
		t.Errorf("Expected default of 4 workers, got %d", pool.numWorkers)
	}

	if pool.tasks == nil || pool.results == nil || pool.progressChan == nil {
		t.Error("Channels not initialized")
	}

	pool.Shutdown()
}

func TestWorkerPoolProcessing(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 2, fakeAnalyzer{})
	pool.Start()

	tasks := []Task{
		{ID: "t1", URL: "https://a.com", Index: 0},
		{ID: "t2", URL: "panic", Index: 1},
		{ID: "t3", URL: "https://b.com", Index: 2},
	}

	go func() {
		for _, task := range tasks {
			pool.SubmitTask(task)
		}

		pool.Wait()
	}()

	var results []TaskResult
	for result := range pool.Results() {
		results = append(results, result)
	}

	if len(results) != len(tasks) {
		t.Fatalf("Expected %d results, got %d", len(tasks), len(results))
	}

	for _, result := range results {
		if result.Task.URL == "panic" {
			if result.Error == nil {
				t.Error("Expected error for panicking task, got nil")
			}

			continue
		}

		if result.Error != nil {
			t.Errorf("Unexpected error for %s: %v", result.Task.URL, result.Error)
		}
	}

	stats := pool.GetStats()
	if stats.TotalTasks != 3 || stats.CompletedTasks != 3 || stats.PendingTasks != 0 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
}

func TestWorkerPoolSubmitAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewWorkerPool(ctx, 1, fakeAnalyzer{})
	pool.Start()

	cancel()

	if pool.SubmitTask(Task{ID: "late", URL: "https://a.com"}) {
		t.Error("Expected SubmitTask to refuse work after cancellation")
	}

	pool.Wait()
}
