package pipeline

import (
	"context"
	"sync"

	"github.com/coolbeans/lexarticles/pkg/logger"
)

// WorkerFunc processes one item. It reports progress on messages, and
// either a result or an error.
type WorkerFunc[T any, R any] func(ctx context.Context, item T, messages chan<- string, results chan<- R, errors chan<- error)

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	// MaxConcurrency bounds the number of items in flight. Zero or less
	// means one worker per item.
	MaxConcurrency int
	LogPrefix      string
}

// Runner fans items out to workers and gathers their results.
type Runner[T any, R any] struct {
	config RunnerConfig
}

// NewRunner creates a Runner with the given configuration.
func NewRunner[T any, R any](config RunnerConfig) *Runner[T, R] {
	if config.LogPrefix == "" {
		config.LogPrefix = "runner"
	}
	return &Runner[T, R]{config: config}
}

// RunResult holds everything the workers produced, in completion order.
type RunResult[R any] struct {
	Results []R
	Errors  []error
}

// Run executes worker for each item. Once ctx is done no further items are
// dispatched; items already running finish and ctx.Err() is reported once.
func (r *Runner[T, R]) Run(ctx context.Context, items []T, worker WorkerFunc[T, R]) RunResult[R] {
	result := RunResult[R]{
		Results: []R{},
		Errors:  []error{},
	}
	if len(items) == 0 {
		return result
	}

	var collectors sync.WaitGroup

	messages := make(chan string)
	collectors.Add(1)
	go func() {
		defer collectors.Done()
		for message := range messages {
			logger.Debug("%s: %s", r.config.LogPrefix, message)
		}
	}()

	results := make(chan R)
	collectors.Add(1)
	go func() {
		defer collectors.Done()
		for res := range results {
			result.Results = append(result.Results, res)
		}
	}()

	errs := make(chan error)
	collectors.Add(1)
	go func() {
		defer collectors.Done()
		for err := range errs {
			result.Errors = append(result.Errors, err)
		}
	}()

	var throttle chan struct{}
	if r.config.MaxConcurrency > 0 {
		throttle = make(chan struct{}, r.config.MaxConcurrency)
	}

	var workers sync.WaitGroup
	var cancelled error

dispatch:
	for _, item := range items {
		if throttle != nil {
			select {
			case throttle <- struct{}{}:
			case <-ctx.Done():
				cancelled = ctx.Err()
				break dispatch
			}
		} else if err := ctx.Err(); err != nil {
			cancelled = err
			break
		}
		// A free slot and a cancelled context can both be ready.
		if err := ctx.Err(); err != nil {
			if throttle != nil {
				<-throttle
			}
			cancelled = err
			break
		}

		workers.Add(1)
		go func(item T) {
			defer workers.Done()
			if throttle != nil {
				defer func() { <-throttle }()
			}
			worker(ctx, item, messages, results, errs)
		}(item)
	}

	workers.Wait()

	close(messages)
	close(results)
	close(errs)
	collectors.Wait()

	if cancelled != nil {
		logger.Warn("%s: cancelled: %v", r.config.LogPrefix, cancelled)
		result.Errors = append(result.Errors, cancelled)
	}
	return result
}
