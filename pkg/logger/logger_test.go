package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newBufferLogger(t *testing.T, opts ...Option) (*BaseLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	opts = append(opts, WithWriter(&buf))
	l, err := New(&Config{
		Level:            DebugLevel,
		Format:           JSONFormat,
		EnableStacktrace: false,
	}, opts...)
	require.NoError(t, err)
	return l, &buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		m := make(map[string]interface{})
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr error
	}{
		{name: "nil config uses default", config: nil},
		{name: "partial config", config: &Config{Format: JSONFormat}},
		{name: "file without path", config: &Config{EnableFile: true}, wantErr: ErrInvalidOutputPath},
		{name: "bad level", config: &Config{Level: "verbose"}, wantErr: ErrInvalidLevel},
		{name: "bad format", config: &Config{Format: "xml"}, wantErr: ErrInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.config)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestNew_DoesNotMutateInput(t *testing.T) {
	cfg := &Config{Format: JSONFormat}
	_, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, Level(""), cfg.Level)
}

func TestLoggerKeyValues(t *testing.T) {
	l, buf := newBufferLogger(t)

	l.Debug("tick completed", "agent", 7, "status", "running")
	l.Info("raw field", zap.String("state", "wander"))
	l.Warn("odd args", "dangling")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 3)

	assert.Equal(t, "debug", lines[0]["level"])
	assert.Equal(t, float64(7), lines[0]["agent"])
	assert.Equal(t, "running", lines[0]["status"])
	assert.Equal(t, "wander", lines[1]["state"])
	assert.Equal(t, "dangling", lines[2]["!BADKEY"])
}

func TestLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&Config{Level: WarnLevel, Format: JSONFormat}, WithWriter(&buf))
	require.NoError(t, err)

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "shown", lines[0]["msg"])
}

func TestLoggerNamedAndWithFields(t *testing.T) {
	l, buf := newBufferLogger(t, WithGlobalFields("service", "drone"))

	named := l.Named("fsm").WithFields("agent", "a-1")
	named.Info("transition")
	assert.Same(t, l, l.WithFields())

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "fsm", lines[0]["logger"])
	assert.Equal(t, "a-1", lines[0]["agent"])
	assert.Equal(t, "drone", lines[0]["service"])
}

type ctxKey struct{}

func TestLoggerContextExtractor(t *testing.T) {
	extractor := func(ctx context.Context) []zap.Field {
		if v, ok := ctx.Value(ctxKey{}).(uint64); ok {
			return []zap.Field{zap.Uint64("tick", v)}
		}
		return nil
	}
	l, buf := newBufferLogger(t, WithContextExtractor(extractor))

	ctx := context.WithValue(context.Background(), ctxKey{}, uint64(12))
	l.InfoContext(ctx, "with tick", "agent", 3)
	l.InfoContext(context.Background(), "without tick")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 2)
	assert.Equal(t, float64(12), lines[0]["tick"])
	assert.Equal(t, float64(3), lines[0]["agent"])
	_, ok := lines[1]["tick"]
	assert.False(t, ok)
}

func TestFieldFilterHook(t *testing.T) {
	l, buf := newBufferLogger(t, WithHooks(FieldFilterHook("agent", "2")))

	l.Info("agent one", "agent", 1)
	l.Info("agent two", "agent", 2)
	l.Info("no agent")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "agent two", lines[0]["msg"])
	assert.Equal(t, "no agent", lines[1]["msg"])
}

func TestDefaultLogger(t *testing.T) {
	prev := Default()
	t.Cleanup(func() { SetDefault(prev) })

	noop := NewNoop()
	SetDefault(noop)
	assert.Same(t, noop, Default())
	assert.NotNil(t, Named("x"))
	assert.NoError(t, Sync())
}

func TestNoopLogger(t *testing.T) {
	l := NewNoop()
	l.Info("ignored", "k", "v")
	l.ErrorContext(context.Background(), "ignored")
	assert.Same(t, l, l.Named("x"))
	assert.Same(t, l, l.WithFields("k", "v"))
	assert.NoError(t, l.Sync())
}
