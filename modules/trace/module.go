// Package trace provides step decorators for observing build runs: "timed"
// logs how long a wrapped call took, "logged" logs entry and result type.
package trace

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/objforge/internal/ctxlog"
	"github.com/vk/objforge/internal/executor"
	"github.com/vk/objforge/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the decorators.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterDecorator("timed", Timed)
	r.RegisterDecorator("logged", Logged)
}

// Timed logs the wrapped call's duration at debug level.
func Timed(next executor.StepFunc) executor.StepFunc {
	return func(ctx context.Context, p *executor.Producer, obj any, kwargs map[string]any) (any, error) {
		start := time.Now()
		res, err := next(ctx, p, obj, kwargs)
		ctxlog.FromContext(ctx).Debug("step timed", "elapsed", time.Since(start))
		return res, err
	}
}

// Logged logs entry and the result's dynamic type.
func Logged(next executor.StepFunc) executor.StepFunc {
	return func(ctx context.Context, p *executor.Producer, obj any, kwargs map[string]any) (any, error) {
		logger := ctxlog.FromContext(ctx)
		logger.Debug("step starting", "kwargs", len(kwargs))
		res, err := next(ctx, p, obj, kwargs)
		if err != nil {
			logger.Debug("step failed", "error", err)
			return res, err
		}
		logger.Debug("step finished", "result_type", typeName(res))
		return res, err
	}
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}
