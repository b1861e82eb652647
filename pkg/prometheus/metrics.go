package prometheus

import (
	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// register 以 name 为键注册指标，同名指标只能注册一次
func register[V Collector](c *Client, name string, build func() V) (V, error) {
	var zero V
	if c.IsClosed() {
		return zero, ErrClientClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.metrics[name]; ok {
		return zero, errors.Wrapf(ErrMetricExists, "%s", name)
	}

	m := build()
	if err := c.registry.Register(m); err != nil {
		return zero, errors.Wrapf(err, "prometheus: register %s", name)
	}
	c.metrics[name] = m
	return m, nil
}

func lookup[V Collector](c *Client, name string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.metrics[name].(V)
	return v, ok
}

func must[V any](v V, err error) V {
	if err != nil {
		panic(err)
	}
	return v
}

// NewCounter 创建并注册 Counter
func (c *Client) NewCounter(name, help string, labels []string) (*CounterVec, error) {
	return register(c, name, func() *CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: c.config.Namespace,
			Subsystem: c.config.Subsystem,
			Name:      name,
			Help:      help,
		}, labels)
	})
}

// MustNewCounter 创建 Counter，失败则 panic
func (c *Client) MustNewCounter(name, help string, labels []string) *CounterVec {
	return must(c.NewCounter(name, help, labels))
}

// GetCounter 获取已注册的 Counter
func (c *Client) GetCounter(name string) (*CounterVec, bool) {
	return lookup[*CounterVec](c, name)
}

// NewGauge 创建并注册 Gauge
func (c *Client) NewGauge(name, help string, labels []string) (*GaugeVec, error) {
	return register(c, name, func() *GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: c.config.Namespace,
			Subsystem: c.config.Subsystem,
			Name:      name,
			Help:      help,
		}, labels)
	})
}

// MustNewGauge 创建 Gauge，失败则 panic
func (c *Client) MustNewGauge(name, help string, labels []string) *GaugeVec {
	return must(c.NewGauge(name, help, labels))
}

// GetGauge 获取已注册的 Gauge
func (c *Client) GetGauge(name string) (*GaugeVec, bool) {
	return lookup[*GaugeVec](c, name)
}

// NewHistogram 创建并注册 Histogram，buckets 为 nil 时使用默认分桶
func (c *Client) NewHistogram(name, help string, labels []string, buckets []float64) (*HistogramVec, error) {
	if buckets == nil {
		buckets = prometheus.DefBuckets
	}
	return register(c, name, func() *HistogramVec {
		return prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: c.config.Namespace,
			Subsystem: c.config.Subsystem,
			Name:      name,
			Help:      help,
			Buckets:   buckets,
		}, labels)
	})
}

// MustNewHistogram 创建 Histogram，失败则 panic
func (c *Client) MustNewHistogram(name, help string, labels []string, buckets []float64) *HistogramVec {
	return must(c.NewHistogram(name, help, labels, buckets))
}

// GetHistogram 获取已注册的 Histogram
func (c *Client) GetHistogram(name string) (*HistogramVec, bool) {
	return lookup[*HistogramVec](c, name)
}
