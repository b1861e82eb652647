package prometheus

import (
	"context"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lk2023060901/dronecore/pkg/logger"
	"github.com/lk2023060901/dronecore/pkg/util/conc"
)

// Option 客户端选项
type Option func(*Client)

// WithLogger 设置日志
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l.Named("prometheus")
		}
	}
}

// Client Prometheus 客户端，同时是一个可选的指标 HTTP 服务
type Client struct {
	config   *Config
	registry *prometheus.Registry
	logger   logger.Logger

	mu      sync.Mutex
	metrics map[string]Collector

	httpServer *http.Server
	listener   net.Listener
	serving    *conc.Future[struct{}]

	closed atomic.Bool
}

// New 创建 Prometheus 客户端
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config:   cfg,
		registry: prometheus.NewRegistry(),
		logger:   logger.NewNoop(),
		metrics:  make(map[string]Collector),
	}
	for _, opt := range opts {
		opt(c)
	}

	if cfg.EnableGoCollector {
		c.registry.MustRegister(collectors.NewGoCollector())
	}

	if cfg.EnableProcessCollector {
		c.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	return c, nil
}

// Registry 获取底层 Registry
func (c *Client) Registry() *prometheus.Registry {
	return c.registry
}

// Handler 返回 HTTP Handler
func (c *Client) Handler() http.Handler {
	return promhttp.HandlerFor(
		c.registry,
		promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		},
	)
}

// Config 获取配置
func (c *Client) Config() *Config {
	return c.config
}

// Addr 实际监听地址，未启动时为空
func (c *Client) Addr() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.listener == nil {
		return ""
	}
	return c.listener.Addr().String()
}

// Start 启动指标 HTTP 服务器，不阻塞；未启用时直接返回
func (c *Client) Start() error {
	if c.closed.Load() {
		return ErrClientClosed
	}
	if !c.config.HTTPServer.Enabled {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.httpServer != nil {
		return ErrAlreadyStarted
	}

	ln, err := net.Listen("tcp", c.config.HTTPServer.Addr)
	if err != nil {
		return errors.Wrapf(err, "prometheus: listen %s", c.config.HTTPServer.Addr)
	}

	mux := http.NewServeMux()
	mux.Handle(c.config.HTTPServer.Path, c.Handler())

	srv := &http.Server{
		Handler:      mux,
		ReadTimeout:  c.config.HTTPServer.Timeout,
		WriteTimeout: c.config.HTTPServer.Timeout,
	}
	c.httpServer = srv
	c.listener = ln

	c.serving = conc.Go(func() (struct{}, error) {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.logger.Error("metrics http server stopped", "error", err)
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	c.logger.Info("metrics http server started",
		"addr", ln.Addr().String(),
		"path", c.config.HTTPServer.Path,
	)
	return nil
}

// Stop 关闭 HTTP 服务器
func (c *Client) Stop() error {
	c.mu.Lock()
	srv, serving := c.httpServer, c.serving
	c.mu.Unlock()

	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "prometheus: shutdown http server")
	}
	if serving != nil {
		serving.Await()
	}
	return nil
}

// Close 关闭客户端，之后不能再注册指标
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClientClosed
	}
	return c.Stop()
}

// IsClosed 检查客户端是否已关闭
func (c *Client) IsClosed() bool {
	return c.closed.Load()
}
