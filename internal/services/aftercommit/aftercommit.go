// Package aftercommit runs best-effort side effects after a primary write
// has been persisted. Each action has its own error and panic boundary so a
// failing email or notification never rolls back or aborts the request.
package aftercommit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gysagsohn/game-tracker-server/internal/metrics"
)

// Action is a named side effect
type Action struct {
	Name string
	Run  func(ctx context.Context) error
}

// Runner executes post-commit actions
type Runner struct {
	logger *slog.Logger
}

// New creates a Runner
func New(logger *slog.Logger) *Runner {
	return &Runner{logger: logger}
}

// Run executes every action in order and returns the number that failed.
// Actions run detached from the request's cancellation.
func (r *Runner) Run(ctx context.Context, actions ...Action) int {
	ctx = context.WithoutCancel(ctx)
	failed := 0
	for _, a := range actions {
		if a.Run == nil {
			continue
		}
		if err := r.runOne(ctx, a); err != nil {
			failed++
			metrics.RecordPostCommitFailure(a.Name)
			r.logger.Warn("post-commit action failed",
				slog.String("action", a.Name),
				slog.String("error", err.Error()),
			)
		}
	}
	return failed
}

func (r *Runner) runOne(ctx context.Context, a Action) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return a.Run(ctx)
}
