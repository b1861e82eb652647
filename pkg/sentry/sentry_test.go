package sentry

import (
	"context"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDSN = "https://public@sentry.example.com/1"

type captured struct {
	mu     sync.Mutex
	events []*sentry.Event
}

func (c *captured) beforeSend(e *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
	return nil // 测试中不真正发送
}

func newTestClient(t *testing.T, opts ...Option) (*Client, *captured) {
	t.Helper()
	sink := &captured{}
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.DSN = testDSN
	cfg.Tags["service"] = "drone"

	c, err := New(cfg, append([]Option{WithBeforeSend(sink.beforeSend)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, sink
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"disabled without dsn", func(c *Config) {}, nil},
		{"enabled without dsn", func(c *Config) { c.Enabled = true }, ErrInvalidDSN},
		{"bad sample rate", func(c *Config) { c.SampleRate = 2 }, ErrInvalidConfig},
		{"negative breadcrumbs", func(c *Config) { c.MaxBreadcrumbs = -1 }, ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	var nilCfg *Config
	assert.ErrorIs(t, nilCfg.Validate(), ErrNilConfig)
}

func TestNewReporter_Disabled(t *testing.T) {
	r, err := NewReporter(DefaultConfig())
	require.NoError(t, err)
	assert.IsType(t, NopReporter{}, r)

	r.CaptureError(context.Background(), errors.New("ignored"), nil)
	r.CapturePanic(context.Background(), "ignored", nil)
}

func TestClient_CaptureErrorWithTags(t *testing.T) {
	type key struct{}
	c, sink := newTestClient(t, WithContextTags(func(ctx context.Context) map[string]string {
		if v, ok := ctx.Value(key{}).(string); ok {
			return map[string]string{"tick": v}
		}
		return nil
	}))

	ctx := context.WithValue(context.Background(), key{}, "42")
	c.CaptureError(ctx, errors.New("boom"), map[string]string{"agent": "7"})

	require.Len(t, sink.events, 1)
	ev := sink.events[0]
	assert.Equal(t, "7", ev.Tags["agent"])
	assert.Equal(t, "42", ev.Tags["tick"])
	assert.Equal(t, "drone", ev.Tags["service"])

	// 标签只作用于本次事件
	c.CaptureError(context.Background(), errors.New("again"), nil)
	require.Len(t, sink.events, 2)
	assert.NotContains(t, sink.events[1].Tags, "agent")

	stats := c.Stats()
	assert.Equal(t, uint64(2), stats.EventsTotal)
	assert.Equal(t, uint64(2), stats.EventsDropped, "before send dropped both events")
}

func TestClient_CapturePanic(t *testing.T) {
	c, sink := newTestClient(t)

	func() {
		defer func() {
			if r := recover(); r != nil {
				c.CapturePanic(context.Background(), r, map[string]string{"agent": "3"})
			}
		}()
		panic("strategy exploded")
	}()

	require.Len(t, sink.events, 1)
	assert.Equal(t, "3", sink.events[0].Tags["agent"])
}

func TestClient_Close(t *testing.T) {
	c, sink := newTestClient(t)
	require.NoError(t, c.Close())
	assert.True(t, c.IsClosed())
	assert.ErrorIs(t, c.Close(), ErrClientClosed)

	c.CaptureError(context.Background(), errors.New("late"), nil)
	assert.Nil(t, c.CaptureException(errors.New("late")))
	assert.Empty(t, sink.events)
}
