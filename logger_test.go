package scanfilter

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger(t *testing.T) {
	ctx := context.Background()

	t.Run("fields", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		l.WithBlocklet("part-0001").WithPredicate("city").LogEvaluate(ctx, 12, nil)

		out := buf.String()
		assert.Contains(t, out, "blocklet=part-0001")
		assert.Contains(t, out, "column=city")
		assert.Contains(t, out, "survivors=12")
	})

	t.Run("errors are logged at error level", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelError}))
		l.LogScan(ctx, 3, 0, 2, nil)
		assert.Empty(t, buf.String())

		l.LogScan(ctx, 3, 0, 2, errors.New("boom"))
		assert.Contains(t, buf.String(), "scan failed")
		assert.Contains(t, buf.String(), "error=boom")
	})

	t.Run("noop", func(t *testing.T) {
		l := NoopLogger()
		assert.False(t, l.Enabled(ctx, slog.LevelError))
		l.LogScan(ctx, 1, 0, 1, errors.New("ignored"))
	})

	t.Run("default handler", func(t *testing.T) {
		assert.NotNil(t, NewLogger(nil))
		assert.True(t, NewJSONLogger(slog.LevelDebug).Enabled(ctx, slog.LevelDebug))
		assert.False(t, NewTextLogger(slog.LevelWarn).Enabled(ctx, slog.LevelInfo))
	})
}
