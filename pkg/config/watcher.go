package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/lk2023060901/dronecore/pkg/util/conc"
)

// WatcherConfig 配置监听器参数
type WatcherConfig struct {
	// EnvPrefix 非空时环境变量可覆盖文件中的值
	EnvPrefix string `mapstructure:"env_prefix"`
	// Debounce 编辑器保存时常产生多次事件，合并窗口内的事件只重载一次
	Debounce time.Duration `mapstructure:"debounce"`
	// SkipValidation 为 true 时跳过 validator 校验；校验失败时保留旧配置
	SkipValidation bool `mapstructure:"skip_validation"`
}

// DefaultWatcherConfig 默认监听配置
func DefaultWatcherConfig() *WatcherConfig {
	return &WatcherConfig{
		Debounce: 100 * time.Millisecond,
	}
}

// Watcher 配置文件热更新监听器
type Watcher[T any] struct {
	path      string
	cfg       *WatcherConfig
	opts      []Option
	validator *Validator
	fsw       *fsnotify.Watcher

	mu        sync.RWMutex
	current   *T
	callbacks []func(*T)
	onError   func(error)

	stopOnce sync.Once
	stopCh   chan struct{}
	loop     *conc.Future[struct{}]
}

// NewWatcher 加载 path 指向的配置并开始监听其变化，opts 用于每次重载时创建的 Manager（如 WithDefaults）
func NewWatcher[T any](path string, cfg *WatcherConfig, opts ...Option) (*Watcher[T], error) {
	merged, err := MergeConfig(DefaultWatcherConfig(), cfg)
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %s: %w", path, err)
	}

	w := &Watcher[T]{
		path:      abs,
		cfg:       merged,
		opts:      opts,
		validator: NewValidator(),
		onError:   func(error) {},
		stopCh:    make(chan struct{}),
	}

	initial, err := w.load()
	if err != nil {
		return nil, err
	}
	w.current = initial

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fs watcher: %w", err)
	}
	// 监听目录而不是文件：很多编辑器通过 rename 覆盖文件
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	w.fsw = fsw
	w.loop = conc.Go(w.run)

	return w, nil
}

func (w *Watcher[T]) load() (*T, error) {
	m := NewManager(w.opts...)
	if w.cfg.EnvPrefix != "" {
		m.BindEnv(w.cfg.EnvPrefix)
	}
	if err := m.LoadFile(w.path); err != nil {
		return nil, err
	}

	var out T
	if err := m.Unmarshal(&out); err != nil {
		return nil, err
	}
	if !w.cfg.SkipValidation {
		if err := w.validator.Validate(&out); err != nil {
			return nil, err
		}
	}
	return &out, nil
}

func (w *Watcher[T]) run() (struct{}, error) {
	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.stopCh:
			return struct{}{}, nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return struct{}{}, nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.cfg.Debounce)
			} else {
				timer.Reset(w.cfg.Debounce)
			}
			timerCh = timer.C

		case <-timerCh:
			timerCh = nil
			w.reload()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return struct{}{}, nil
			}
			w.reportError(fmt.Errorf("config watcher: %w", err))
		}
	}
}

func (w *Watcher[T]) reload() {
	next, err := w.load()
	if err != nil {
		w.reportError(err)
		return
	}

	w.mu.Lock()
	w.current = next
	callbacks := append([]func(*T){}, w.callbacks...)
	w.mu.Unlock()

	for _, cb := range callbacks {
		cb(next)
	}
}

func (w *Watcher[T]) reportError(err error) {
	w.mu.RLock()
	handler := w.onError
	w.mu.RUnlock()
	handler(err)
}

// Current 返回当前生效的配置
func (w *Watcher[T]) Current() *T {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// OnChange 注册配置变化回调，回调在监听协程中执行
func (w *Watcher[T]) OnChange(callback func(*T)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// OnError 设置重载失败时的处理函数
func (w *Watcher[T]) OnError(handler func(error)) {
	if handler == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onError = handler
}

// Close 停止监听，可重复调用
func (w *Watcher[T]) Close() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stopCh)
		err = w.fsw.Close()
		w.loop.Await()
	})
	return err
}
