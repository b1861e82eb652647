package app

import (
	"fmt"
	"sync"

	"github.com/lk2023060901/dronecore/pkg/logger"
)

// LoggerRegistry 管理具名日志对象，如 "fsm"、"bt"、"driver"
type LoggerRegistry struct {
	mu      sync.RWMutex
	loggers map[string]logger.Logger
}

func NewLoggerRegistry() *LoggerRegistry {
	return &LoggerRegistry{
		loggers: make(map[string]logger.Logger),
	}
}

// Register 注册具名 Logger
func (r *LoggerRegistry) Register(name string, l logger.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loggers[name] = l
}

// Get 获取具名 Logger，不存在时返回 nil
func (r *LoggerRegistry) Get(name string) logger.Logger {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loggers[name]
}

// SyncAll 同步所有已注册的 Logger
func (r *LoggerRegistry) SyncAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, l := range r.loggers {
		_ = l.Sync()
	}
}

// InitLoggers 根据配置初始化具名 Logger
func (r *LoggerRegistry) InitLoggers(configs map[string]*logger.Config, opts ...logger.Option) error {
	for name, cfg := range configs {
		l, err := logger.New(cfg, opts...)
		if err != nil {
			return fmt.Errorf("logger %q: %w", name, err)
		}
		r.Register(name, l.Named(name))
	}
	return nil
}
