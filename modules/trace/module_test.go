package trace

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/objforge/internal/ctxlog"
	"github.com/vk/objforge/internal/executor"
	"github.com/vk/objforge/internal/registry"
	"github.com/vk/objforge/internal/testutil"
)

func TestRegister(t *testing.T) {
	r := registry.New()
	(&Module{}).Register(r)

	for _, name := range []string{"timed", "logged"} {
		_, ok := r.Decorator(name)
		require.True(t, ok, name)
	}
}

func TestTimed_LogsElapsed(t *testing.T) {
	logger, buf := testutil.Logger(t)
	ctx := ctxlog.WithLogger(context.Background(), logger)

	inner := func(ctx context.Context, p *executor.Producer, obj any, kwargs map[string]any) (any, error) {
		return "done", nil
	}
	res, err := Timed(inner)(ctx, nil, nil, nil)
	require.NoError(t, err)
	require.Equal(t, "done", res)
	require.Contains(t, buf.String(), "step timed")
	require.Contains(t, buf.String(), "elapsed=")
}

func TestLogged_Success(t *testing.T) {
	logger, buf := testutil.Logger(t)
	ctx := ctxlog.WithLogger(context.Background(), logger)

	inner := func(ctx context.Context, p *executor.Producer, obj any, kwargs map[string]any) (any, error) {
		return map[string]any{}, nil
	}
	_, err := Logged(inner)(ctx, nil, nil, map[string]any{"key": "a"})
	require.NoError(t, err)
	require.Contains(t, buf.String(), "step starting")
	require.Contains(t, buf.String(), "result_type=map[string]interface")
}

func TestLogged_Failure(t *testing.T) {
	logger, buf := testutil.Logger(t)
	ctx := ctxlog.WithLogger(context.Background(), logger)

	boom := errors.New("boom")
	inner := func(ctx context.Context, p *executor.Producer, obj any, kwargs map[string]any) (any, error) {
		return nil, boom
	}
	_, err := Logged(inner)(ctx, nil, nil, nil)
	require.ErrorIs(t, err, boom)
	require.Contains(t, buf.String(), "step failed")
}
