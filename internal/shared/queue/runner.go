// Package queue provides a single-concurrency task runner. Tasks are
// consumed in FIFO order, one at a time, and a failing task never aborts
// the ones behind it.
package queue

import "context"

// Outcome records the result of one task.
type Outcome[T any] struct {
	Task T
	Err  error
}

// Failed reports whether the task errored.
func (o Outcome[T]) Failed() bool { return o.Err != nil }

// Runner executes tasks sequentially through the do function.
type Runner[T any] struct {
	do       func(ctx context.Context, task T) error
	onResult func(task T, err error)
}

// Option configures a Runner.
type Option[T any] func(*Runner[T])

// WithProgress registers a callback invoked after each task settles,
// before the next one starts.
func WithProgress[T any](fn func(task T, err error)) Option[T] {
	return func(r *Runner[T]) { r.onResult = fn }
}

// NewRunner builds a runner around the task executor.
func NewRunner[T any](do func(ctx context.Context, task T) error, opts ...Option[T]) *Runner[T] {
	r := &Runner[T]{do: do}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Run processes every task in order. Per-task failures are collected, not
// propagated; only context cancellation stops the queue early, and the
// unprocessed tasks are reported with the context error.
func (r *Runner[T]) Run(ctx context.Context, tasks []T) []Outcome[T] {
	outcomes := make([]Outcome[T], 0, len(tasks))
	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			outcomes = append(outcomes, Outcome[T]{Task: task, Err: err})
			continue
		}
		err := r.do(ctx, task)
		if r.onResult != nil {
			r.onResult(task, err)
		}
		outcomes = append(outcomes, Outcome[T]{Task: task, Err: err})
	}
	return outcomes
}

// FailedCount counts the outcomes that errored.
func FailedCount[T any](outcomes []Outcome[T]) int {
	failed := 0
	for _, o := range outcomes {
		if o.Failed() {
			failed++
		}
	}
	return failed
}
