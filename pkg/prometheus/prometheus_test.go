package prometheus

import (
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	cfg := DefaultConfig()
	cfg.EnableGoCollector = false
	cfg.EnableProcessCollector = false
	c, err := New(cfg)
	require.NoError(t, err)
	return c
}

// gathered 采集指定指标族第一个样本的值
func gathered(t *testing.T, c *Client, name string) float64 {
	t.Helper()
	families, err := c.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		m := mf.GetMetric()[0]
		switch {
		case m.GetCounter() != nil:
			return m.GetCounter().GetValue()
		case m.GetGauge() != nil:
			return m.GetGauge().GetValue()
		case m.GetHistogram() != nil:
			return float64(m.GetHistogram().GetSampleCount())
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{"default", DefaultConfig(), false},
		{"empty namespace", &Config{}, true},
		{"http enabled without addr", &Config{Namespace: "t", HTTPServer: HTTPServerConfig{Enabled: true}}, true},
		{"http defaults filled", &Config{Namespace: "t", HTTPServer: HTTPServerConfig{Enabled: true, Addr: ":0"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			if tt.config.HTTPServer.Enabled {
				assert.Equal(t, "/metrics", tt.config.HTTPServer.Path)
			}
		})
	}
}

func TestMetrics_RegisterAndLookup(t *testing.T) {
	c := newTestClient(t)

	counter, err := c.NewCounter("ticks_total", "ticks", []string{"kind"})
	require.NoError(t, err)
	counter.WithLabelValues("fixed").Add(3)
	assert.Equal(t, 3.0, gathered(t, c, "drone_ticks_total"))

	_, err = c.NewCounter("ticks_total", "again", nil)
	assert.ErrorIs(t, err, ErrMetricExists)

	got, ok := c.GetCounter("ticks_total")
	require.True(t, ok)
	assert.Same(t, counter, got)

	_, ok = c.GetGauge("ticks_total")
	assert.False(t, ok, "lookup checks the metric type")

	gauge := c.MustNewGauge("agents", "agents", nil)
	gauge.WithLabelValues().Set(4)
	assert.Equal(t, 4.0, gathered(t, c, "drone_agents"))

	hist := c.MustNewHistogram("tick_seconds", "tick", nil, nil)
	hist.WithLabelValues().Observe(0.01)
	assert.Equal(t, 1.0, gathered(t, c, "drone_tick_seconds"))

	assert.Panics(t, func() { c.MustNewGauge("agents", "dup", nil) })
}

func TestClient_Closed(t *testing.T) {
	c := newTestClient(t)
	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Close(), ErrClientClosed)

	_, err := c.NewGauge("late", "late", nil)
	assert.ErrorIs(t, err, ErrClientClosed)
	assert.ErrorIs(t, c.Start(), ErrClientClosed)
}

func TestClient_HTTPServer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EnableGoCollector = false
	cfg.EnableProcessCollector = false
	cfg.HTTPServer.Enabled = true
	cfg.HTTPServer.Addr = "127.0.0.1:0"

	c, err := New(cfg)
	require.NoError(t, err)
	c.MustNewCounter("faults_total", "faults", nil).WithLabelValues().Inc()

	require.NoError(t, c.Start())
	t.Cleanup(func() { _ = c.Close() })
	assert.ErrorIs(t, c.Start(), ErrAlreadyStarted)

	resp, err := http.Get("http://" + c.Addr() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "drone_faults_total")

	require.NoError(t, c.Stop())
}

func TestClient_StartDisabled(t *testing.T) {
	c := newTestClient(t)
	require.NoError(t, c.Start())
	assert.Empty(t, c.Addr())
	require.NoError(t, c.Stop())
}
