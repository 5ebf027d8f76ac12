// Package asyncx runs independent checks concurrently, each under its own
// deadline.
package asyncx

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Check is one named probe.
type Check struct {
	Name string
	Run  func(ctx context.Context) error
}

// Outcome is the settled result of a Check.
type Outcome struct {
	Name string
	Err  error
	Took time.Duration
}

// OK reports whether the check passed.
func (o Outcome) OK() bool { return o.Err == nil }

// Settle runs every check concurrently and waits for all of them. A failing
// check never cancels the others. Outcomes keep the order of checks.
func Settle(ctx context.Context, timeout time.Duration, checks ...Check) []Outcome {
	out := make([]Outcome, len(checks))

	var g errgroup.Group
	for i, c := range checks {
		g.Go(func() error {
			start := time.Now()
			err := WithTimeout(ctx, timeout, c.Run)
			out[i] = Outcome{Name: c.Name, Err: err, Took: time.Since(start)}
			return nil
		})
	}
	_ = g.Wait()

	return out
}

// WithTimeout runs fn with a deadline of d. It returns
// context.DeadlineExceeded when fn has not returned in time, even if fn
// ignores its context.
func WithTimeout(ctx context.Context, d time.Duration, fn func(context.Context) error) error {
	if d <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- fn(ctx) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
