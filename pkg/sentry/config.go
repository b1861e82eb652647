package sentry

import (
	"time"

	"github.com/getsentry/sentry-go"
)

// Config Sentry 配置
type Config struct {
	// Enabled 为 false 时不创建客户端，上报全部丢弃
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// 基础配置
	DSN         string `json:"dsn" yaml:"dsn" mapstructure:"dsn"`                         // Sentry DSN
	Environment string `json:"environment" yaml:"environment" mapstructure:"environment"` // 环境 (dev/test/prod)
	Release     string `json:"release" yaml:"release" mapstructure:"release"`             // 版本号
	ServerName  string `json:"server_name" yaml:"server_name" mapstructure:"server_name"` // 服务器名称

	// 采样配置
	SampleRate float64 `json:"sample_rate" yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"` // 错误采样率 (0.0-1.0)

	// 上下文配置
	AttachStacktrace bool `json:"attach_stacktrace" yaml:"attach_stacktrace" mapstructure:"attach_stacktrace"`
	MaxBreadcrumbs   int  `json:"max_breadcrumbs" yaml:"max_breadcrumbs" mapstructure:"max_breadcrumbs" validate:"gte=0"`

	// 关闭时等待事件发送的时长
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`

	Debug bool `json:"debug" yaml:"debug" mapstructure:"debug"`

	// 全局标签
	Tags map[string]string `json:"tags" yaml:"tags" mapstructure:"tags"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Environment:      "production",
		SampleRate:       1.0,
		AttachStacktrace: true,
		MaxBreadcrumbs:   100,
		ShutdownTimeout:  2 * time.Second,
		Tags:             make(map[string]string),
	}
}

// Validate 验证配置，未启用时只检查数值范围
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}

	if c.Enabled && c.DSN == "" {
		return ErrInvalidDSN
	}

	if c.SampleRate < 0 || c.SampleRate > 1 {
		return ErrInvalidConfig
	}

	if c.MaxBreadcrumbs < 0 {
		return ErrInvalidConfig
	}

	return nil
}

func (c *Config) toClientOptions() sentry.ClientOptions {
	return sentry.ClientOptions{
		Dsn:              c.DSN,
		Environment:      c.Environment,
		Release:          c.Release,
		ServerName:       c.ServerName,
		SampleRate:       c.SampleRate,
		AttachStacktrace: c.AttachStacktrace,
		MaxBreadcrumbs:   c.MaxBreadcrumbs,
		Debug:            c.Debug,
	}
}
