package logx

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func TestChain_RequestID(t *testing.T) {
	buf := &bytes.Buffer{}
	h := &Chain{
		Middleware: []Middleware{RequestID()},
		Handler:    slog.HandlerOptions{}.NewJSONHandler(buf),
	}
	lg := slog.New(h)

	ctx := ContextWithRequestID(context.Background(), "req-123")
	lg.InfoCtx(ctx, "with id")
	lg.InfoCtx(context.Background(), "without id")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"request_id":"req-123"`)
	assert.NotContains(t, lines[1], "request_id")
}

func TestCopyAndTrim(t *testing.T) {
	t.Run("short body passes through", func(t *testing.T) {
		rd, portion := copyAndTrim(io.NopCloser(strings.NewReader("short\tbody\n")))

		assert.Equal(t, "shortbody", portion)

		bts, err := io.ReadAll(rd)
		require.NoError(t, err)
		assert.Equal(t, "short\tbody\n", string(bts))
	})

	t.Run("long body is trimmed in the log only", func(t *testing.T) {
		long := strings.Repeat("a", trimBodyAt+100)
		rd, portion := copyAndTrim(io.NopCloser(strings.NewReader(long)))

		assert.Equal(t, strings.Repeat("a", trimBodyAt)+"...", portion)

		bts, err := io.ReadAll(rd)
		require.NoError(t, err)
		assert.Equal(t, long, string(bts))
	})

	t.Run("nil body", func(t *testing.T) {
		rd, portion := copyAndTrim(nil)
		assert.Nil(t, rd)
		assert.Empty(t, portion)
	})
}
