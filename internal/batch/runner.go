// Package batch scores many URLs concurrently while keeping the output in
// input order.
package batch

import (
	"context"
	"errors"
	"io"
	"runtime"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/btraven00/phishq/internal/detector"
)

var (
	// ErrAnalysisPanic wraps a panic raised while analyzing one URL.
	ErrAnalysisPanic = errors.New("analysis panicked")
	// ErrNoResult is returned when the analyzer produced nothing.
	ErrNoResult = errors.New("analyzer returned no result")
	// ErrNotProcessed marks items that never reached a worker.
	ErrNotProcessed = errors.New("url was not processed")
)

// ErrorRecord describes a URL whose analysis failed.
type ErrorRecord struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// Item is one position of a batch result: either Result or Error is set.
type Item struct {
	Result *detector.AnalysisResult `json:"result,omitempty"`
	Error  *ErrorRecord             `json:"error,omitempty"`
	URL    string                   `json:"url"`
	Index  int                      `json:"index"`
}

// Failed reports whether the item holds an ErrorRecord.
func (i Item) Failed() bool {
	return i.Error != nil
}

// Runner fans a batch out over a worker pool.
type Runner struct {
	analyzer   Analyzer
	logger     *logrus.Logger
	onProgress func(ProgressUpdate)
	workers    int
}

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers sets the pool size. Values below one select runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithLogger sets the logger used for failures and batch summaries.
func WithLogger(logger *logrus.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithProgress registers a callback receiving every progress update. It is
// called from a single goroutine.
func WithProgress(fn func(ProgressUpdate)) Option {
	return func(r *Runner) {
		r.onProgress = fn
	}
}

// NewRunner creates a Runner around analyzer.
func NewRunner(analyzer Analyzer, opts ...Option) *Runner {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	r := &Runner{
		analyzer: analyzer,
		logger:   discard,
		workers:  runtime.NumCPU(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// ScoreBatch analyzes every URL. The returned slice has one item per input,
// at the same index, whether or not its analysis succeeded. Cancelling ctx
// turns the unprocessed remainder into error items.
func (r *Runner) ScoreBatch(ctx context.Context, urls []string) []Item {
	items := make([]Item, len(urls))
	if len(urls) == 0 {
		return items
	}

	workers := r.workers
	if workers > len(urls) {
		workers = len(urls)
	}

	pool := NewWorkerPool(ctx, workers, r.analyzer)

	progressDone := make(chan struct{})

	go func() {
		defer close(progressDone)

		for update := range pool.Progress() {
			if r.onProgress != nil {
				r.onProgress(update)
			}
		}
	}()

	pool.Start()

	go func() {
		for i, u := range urls {
			if !pool.SubmitTask(Task{ID: uuid.NewString(), URL: u, Index: i}) {
				break
			}
		}

		pool.Wait()
	}()

	filled := make([]bool, len(urls))

	for res := range pool.Results() {
		items[res.Task.Index] = r.toItem(res)
		filled[res.Task.Index] = true
	}

	<-progressDone

	for i, ok := range filled {
		if ok {
			continue
		}

		err := ctx.Err()
		if err == nil {
			err = ErrNotProcessed
		}

		items[i] = Item{
			Index: i,
			URL:   urls[i],
			Error: &ErrorRecord{URL: urls[i], Error: err.Error()},
		}
	}

	failed := 0

	for _, item := range items {
		if item.Failed() {
			failed++
		}
	}

	r.logger.WithFields(logrus.Fields{
		"urls":    len(urls),
		"failed":  failed,
		"workers": workers,
	}).Info("batch scored")

	return items
}

func (r *Runner) toItem(res TaskResult) Item {
	item := Item{Index: res.Task.Index, URL: res.Task.URL}

	if res.Error != nil {
		r.logger.WithFields(logrus.Fields{
			"task": res.Task.ID,
			"url":  res.Task.URL,
		}).WithError(res.Error).Warn("url analysis failed")

		item.Error = &ErrorRecord{URL: res.Task.URL, Error: res.Error.Error()}

		return item
	}

	item.Result = res.Result

	return item
}
