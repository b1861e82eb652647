package sentry

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/getsentry/sentry-go"
)

// Option 客户端选项
type Option func(*options)

type options struct {
	beforeSend  func(*sentry.Event, *sentry.EventHint) *sentry.Event
	contextTags ContextTags
}

// WithBeforeSend 事件发送前回调，返回 nil 丢弃事件
func WithBeforeSend(fn func(*sentry.Event, *sentry.EventHint) *sentry.Event) Option {
	return func(o *options) { o.beforeSend = fn }
}

// WithContextTags 每次上报时从 context 提取标签
func WithContextTags(fn ContextTags) Option {
	return func(o *options) { o.contextTags = fn }
}

// Client Sentry 客户端
type Client struct {
	hub    *sentry.Hub
	config *Config
	opts   options
	closed atomic.Bool

	stats struct {
		eventsTotal    atomic.Uint64
		eventsCaptured atomic.Uint64
		eventsDropped  atomic.Uint64
	}
}

var _ Reporter = (*Client)(nil)

// New 创建 Sentry 客户端
func New(cfg *Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.DSN == "" {
		return nil, ErrInvalidDSN
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	clientOpts := cfg.toClientOptions()
	clientOpts.BeforeSend = o.beforeSend

	client, err := sentry.NewClient(clientOpts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create sentry client")
	}

	// 独立 Hub，不污染 SDK 全局状态
	hub := sentry.NewHub(client, sentry.NewScope())
	hub.ConfigureScope(func(scope *sentry.Scope) {
		for key, value := range cfg.Tags {
			scope.SetTag(key, value)
		}
	})

	return &Client{hub: hub, config: cfg, opts: o}, nil
}

// NewReporter 按配置返回上报器，未启用时返回 NopReporter
func NewReporter(cfg *Config, opts ...Option) (Reporter, error) {
	if cfg == nil || !cfg.Enabled {
		return NopReporter{}, nil
	}
	return New(cfg, opts...)
}

// scoped 克隆 Hub 并设置本次事件的标签，调用方可并发使用
func (c *Client) scoped(ctx context.Context, tags map[string]string) *sentry.Hub {
	hub := c.hub.Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		if c.opts.contextTags != nil && ctx != nil {
			for k, v := range c.opts.contextTags(ctx) {
				scope.SetTag(k, v)
			}
		}
		for k, v := range tags {
			scope.SetTag(k, v)
		}
	})
	return hub
}

func (c *Client) record(eventID *sentry.EventID) *sentry.EventID {
	c.stats.eventsTotal.Add(1)
	if eventID != nil && *eventID != "" {
		c.stats.eventsCaptured.Add(1)
	} else {
		c.stats.eventsDropped.Add(1)
	}
	return eventID
}

// CaptureException 捕获异常
func (c *Client) CaptureException(err error) *sentry.EventID {
	if c.closed.Load() {
		return nil
	}
	return c.record(c.hub.CaptureException(err))
}

// CaptureError 带标签捕获错误
func (c *Client) CaptureError(ctx context.Context, err error, tags map[string]string) {
	if c.closed.Load() || err == nil {
		return
	}
	c.record(c.scoped(ctx, tags).CaptureException(err))
}

// CapturePanic 带标签上报已恢复的 panic（不重新抛出）
func (c *Client) CapturePanic(ctx context.Context, recovered any, tags map[string]string) {
	if c.closed.Load() {
		return
	}
	c.record(c.scoped(ctx, tags).RecoverWithContext(ctx, recovered))
}

// Hub 获取底层 Hub
func (c *Client) Hub() *sentry.Hub {
	return c.hub
}

// Flush 等待所有事件上报完成
func (c *Client) Flush(timeout time.Duration) bool {
	return c.hub.Flush(timeout)
}

// Close 关闭客户端
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return ErrClientClosed
	}

	c.hub.Flush(c.config.ShutdownTimeout)
	return nil
}

// Stats 获取统计信息
func (c *Client) Stats() Stats {
	return Stats{
		EventsTotal:    c.stats.eventsTotal.Load(),
		EventsCaptured: c.stats.eventsCaptured.Load(),
		EventsDropped:  c.stats.eventsDropped.Load(),
	}
}

// IsClosed 是否已关闭
func (c *Client) IsClosed() bool {
	return c.closed.Load()
}
