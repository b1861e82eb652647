package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/lk2023060901/dronecore/pkg/logger"
	"github.com/lk2023060901/dronecore/pkg/util/conc"
)

var (
	ErrAppAlreadyRunning = errors.New("application is already running")
)

// Application 应用接口
type Application interface {
	Run() error
	Shutdown() error
	Logger(name string) logger.Logger
	AppLogger() logger.Logger
}

// Server 随应用启动/停止的长期运行组件（模拟循环、指标 HTTP 服务等）
// Start 不应阻塞
type Server interface {
	Start() error
	Stop() error
}

// Closer 资源清理接口
type Closer interface {
	Close() error
}

// BaseApp Application 的基础实现
type BaseApp struct {
	opts     Options
	logger   logger.Logger
	registry *LoggerRegistry
	servers  []Server
	closers  []Closer

	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.RWMutex

	initErr error

	started atomic.Bool
	closed  atomic.Bool
}

// NewBaseApp 创建 BaseApp
func NewBaseApp(opts ...Option) *BaseApp {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(context.Background())

	a := &BaseApp{
		opts:     o,
		logger:   o.Logger.Named(o.Name),
		registry: NewLoggerRegistry(),
		ctx:      ctx,
		cancel:   cancel,
	}

	if o.LogConfig != nil {
		if l, err := logger.New(o.LogConfig, o.LoggerOptions...); err == nil {
			a.logger = l.Named(o.Name)
		}
	}

	// 具名日志在构造时创建，组件装配阶段即可通过 Logger(name) 取到
	if len(o.NamedLoggers) > 0 {
		if err := a.registry.InitLoggers(o.NamedLoggers, o.LoggerOptions...); err != nil {
			a.logger.Error("failed to initialize named loggers", "error", err)
			a.initErr = err
		}
	}

	return a
}

// ID 应用实例 ID
func (a *BaseApp) ID() string {
	return a.opts.ID
}

// Context 应用生命周期 context，Shutdown 时取消
func (a *BaseApp) Context() context.Context {
	return a.ctx
}

// AppLogger 应用主日志
func (a *BaseApp) AppLogger() logger.Logger {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.logger
}

// Logger 获取具名 Logger，未在配置中单独定义时从主日志派生
func (a *BaseApp) Logger(name string) logger.Logger {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if l := a.registry.Get(name); l != nil {
		return l
	}
	return a.logger.Named(name)
}

// RegisterLogger 注册具名 Logger
func (a *BaseApp) RegisterLogger(name string, l logger.Logger) {
	a.registry.Register(name, l)
}

// Start 按注册顺序启动所有 Server，具名日志初始化失败时直接返回该错误
// 任一 Server 启动失败时逆序停止已启动的 Server
func (a *BaseApp) Start() error {
	if !a.started.CompareAndSwap(false, true) {
		return ErrAppAlreadyRunning
	}

	if a.initErr != nil {
		return a.initErr
	}

	info := GetInfo()
	a.logger.Info("application starting",
		"name", info.AppName,
		"version", info.Version,
		"commit", info.GitCommit,
		"build_date", info.BuildDate,
		"go_version", info.GoVersion,
		"id", a.opts.ID,
	)

	a.mu.RLock()
	servers := append([]Server(nil), a.servers...)
	a.mu.RUnlock()

	for i, srv := range servers {
		if err := srv.Start(); err != nil {
			a.logger.Error("failed to start server", "index", i, "error", err)
			for j := i - 1; j >= 0; j-- {
				if stopErr := servers[j].Stop(); stopErr != nil {
					a.logger.Error("failed to stop server", "index", j, "error", stopErr)
				}
			}
			return fmt.Errorf("start server %d: %w", i, err)
		}
	}
	return nil
}

// Run 启动应用并阻塞直到收到退出信号或 context 被取消
func (a *BaseApp) Run() error {
	if err := a.Start(); err != nil {
		return err
	}

	fmt.Println(GetInfo().String())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		a.logger.Info("received signal, shutting down", "signal", sig.String())
	case <-a.ctx.Done():
		a.logger.Info("context cancelled, shutting down")
	}

	return a.Shutdown()
}

// Stop 请求 Run 退出
func (a *BaseApp) Stop() {
	a.cancel()
}

// Shutdown 并发停止所有 Server，超时后放弃等待，再按 LIFO 关闭 Closer
func (a *BaseApp) Shutdown() error {
	if !a.closed.CompareAndSwap(false, true) {
		return nil
	}

	a.cancel()
	a.logger.Info("application shutting down")

	a.mu.RLock()
	servers := append([]Server(nil), a.servers...)
	closers := append([]Closer(nil), a.closers...)
	a.mu.RUnlock()

	futures := make([]*conc.Future[struct{}], 0, len(servers))
	for _, srv := range servers {
		s := srv
		futures = append(futures, conc.Go(func() (struct{}, error) {
			return struct{}{}, s.Stop()
		}))
	}

	waitFuture := conc.Go(func() (struct{}, error) {
		return struct{}{}, conc.AwaitAll(futures...)
	})

	var errs []error
	select {
	case <-waitFuture.Inner():
		if err := waitFuture.Err(); err != nil {
			a.logger.Error("failed to stop server", "error", err)
			errs = append(errs, err)
		} else {
			a.logger.Info("all servers stopped")
		}
	case <-time.After(a.opts.StopTimeout):
		a.logger.Warn("shutdown timeout, forcing exit", "timeout", a.opts.StopTimeout)
	}

	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			a.logger.Error("failed to close component", "error", err)
			errs = append(errs, err)
		}
	}

	a.registry.SyncAll()
	_ = a.logger.Sync()

	a.logger.Info("application exited")
	return errors.Join(errs...)
}

// AppendServer 添加 Server
func (a *BaseApp) AppendServer(srv ...Server) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.servers = append(a.servers, srv...)
}

// AppendCloser 添加 Closer
func (a *BaseApp) AppendCloser(closer ...Closer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closers = append(a.closers, closer...)
}
