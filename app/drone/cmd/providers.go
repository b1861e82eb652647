package main

import (
	"context"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/dronecore/app/drone/internal/behavior"
	"github.com/lk2023060901/dronecore/app/drone/internal/metrics"
	"github.com/lk2023060901/dronecore/app/drone/internal/simulation"
	"github.com/lk2023060901/dronecore/pkg/app"
	"github.com/lk2023060901/dronecore/pkg/bt"
	"github.com/lk2023060901/dronecore/pkg/config"
	"github.com/lk2023060901/dronecore/pkg/idgen"
	"github.com/lk2023060901/dronecore/pkg/logger"
	"github.com/lk2023060901/dronecore/pkg/prometheus"
	"github.com/lk2023060901/dronecore/pkg/sentry"
	"github.com/lk2023060901/dronecore/pkg/tick"
)

// providePrometheus 提供 Prometheus 客户端，默认值已在加载配置时写入
func providePrometheus(cfg *Config, l logger.Logger) (*prometheus.Client, func(), error) {
	client, err := prometheus.New(&cfg.Prometheus, prometheus.WithLogger(l))
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := client.Close(); err != nil && !errors.Is(err, prometheus.ErrClientClosed) {
			l.Warn("failed to close prometheus client", "error", err)
		}
	}
	return client, cleanup, nil
}

// FaultReporter 异步故障上报，持有底层 Sentry 客户端以便关闭时刷新
type FaultReporter struct {
	*sentry.AsyncReporter
	client *sentry.Client
}

// Close 先等待排队中的上报，再刷新 Sentry
func (r *FaultReporter) Close() error {
	_ = r.AsyncReporter.Close()
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}

// tickTags 事件附带 tick 序号
func tickTags(ctx context.Context) map[string]string {
	info, ok := tick.FromContext(ctx)
	if !ok {
		return nil
	}
	return map[string]string{"tick": strconv.FormatUint(info.Seq, 10)}
}

// provideFaultReporter 提供故障上报，Sentry 未启用时上报直接丢弃
// cleanup 先等待排队中的上报，再刷新 Sentry
func provideFaultReporter(cfg *Config, l logger.Logger) (*FaultReporter, func(), error) {
	var r *FaultReporter
	if !cfg.Sentry.Enabled {
		r = &FaultReporter{AsyncReporter: sentry.NewAsyncReporter(sentry.NopReporter{}, 1)}
	} else {
		merged, err := config.MergeConfig(sentry.DefaultConfig(), &cfg.Sentry)
		if err != nil {
			return nil, nil, err
		}
		client, err := sentry.New(merged, sentry.WithContextTags(tickTags))
		if err != nil {
			return nil, nil, err
		}
		l.Info("sentry reporting enabled", "environment", merged.Environment)
		r = &FaultReporter{
			AsyncReporter: sentry.NewAsyncReporter(client, cfg.Reporter.Workers),
			client:        client,
		}
	}

	cleanup := func() {
		if err := r.Close(); err != nil {
			l.Warn("failed to flush fault reports", "error", err)
		}
	}
	return r, cleanup, nil
}

// provideReporter 将故障上报暴露为 sentry.Reporter
func provideReporter(r *FaultReporter) sentry.Reporter {
	return r
}

// provideIDGenerator 提供对象 ID 生成器
func provideIDGenerator(cfg *Config) (idgen.Generator, error) {
	switch cfg.IDGen.Kind {
	case "sequence":
		return idgen.NewSequence(1), nil
	case "", "sonyflake":
		machineID := cfg.IDGen.MachineID
		if machineID == 0 {
			machineID = 1
		}
		return idgen.NewSonyflake(machineID)
	default:
		return nil, errors.Newf("unknown idgen kind %q", cfg.IDGen.Kind)
	}
}

// provideTuningStore 提供行为参数快照
func provideTuningStore(cfg *Config) (*behavior.TuningStore, error) {
	return behavior.NewTuningStore(&cfg.Tuning)
}

// provideBehaviors 合并内联与文件中的行为树定义，并逐一校验
func provideBehaviors(cfg *Config) (map[string]bt.Definition, error) {
	defs := make(map[string]bt.Definition, len(cfg.Behaviors)+len(cfg.BehaviorFiles))
	for name, def := range cfg.Behaviors {
		defs[name] = def
	}

	dir := filepath.Dir(app.GetConfigPath())
	for name, path := range cfg.BehaviorFiles {
		if _, ok := defs[name]; ok {
			return nil, errors.Newf("behavior %q defined both inline and in %s", name, path)
		}
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "behavior %q", name)
		}
		def, err := bt.ParseDefinitionYAML(data)
		if err != nil {
			return nil, errors.Wrapf(err, "behavior %q", name)
		}
		defs[name] = def
	}

	for name, def := range defs {
		if err := behavior.ValidateTree(def); err != nil {
			return nil, errors.Wrapf(err, "behavior %q", name)
		}
	}
	return defs, nil
}

// provideSimulation 提供模拟宿主
func provideSimulation(
	cfg *Config,
	ids idgen.Generator,
	tuning *behavior.TuningStore,
	behaviors map[string]bt.Definition,
	m *metrics.DroneMetrics,
	reporter sentry.Reporter,
	baseApp *app.BaseApp,
) (*simulation.Simulation, error) {
	return simulation.New(&cfg.Simulation, ids, tuning,
		simulation.WithLogger(baseApp.Logger("simulation")),
		simulation.WithMetrics(m),
		simulation.WithReporter(reporter),
		simulation.WithBehaviors(behaviors),
	)
}

// tuningFile 热更新只关心配置文件中的 tuning 段
type tuningFile struct {
	Tuning behavior.Tuning `mapstructure:"tuning"`
}

// TuningWatcher 监听配置文件并发布新的行为参数
type TuningWatcher struct {
	watcher *config.Watcher[tuningFile]
}

// Close 停止监听，未开启热更新时为空操作
func (w *TuningWatcher) Close() error {
	if w.watcher == nil {
		return nil
	}
	return w.watcher.Close()
}

// provideTuningWatcher 提供行为参数热更新
func provideTuningWatcher(cfg *Config, store *behavior.TuningStore, l logger.Logger) (*TuningWatcher, error) {
	if !cfg.HotReload {
		return &TuningWatcher{}, nil
	}

	// 文件中删去的键回到默认值；校验交给 TuningStore，失败时保留旧参数
	defaults, err := config.StructDefaults("tuning", behavior.DefaultTuning())
	if err != nil {
		return nil, err
	}
	w, err := config.NewWatcher[tuningFile](app.GetConfigPath(), &config.WatcherConfig{
		EnvPrefix:      app.EnvPrefix,
		SkipValidation: true,
	}, config.WithDefaults(defaults))
	if err != nil {
		return nil, err
	}

	w.OnChange(func(f *tuningFile) {
		if err := store.Store(&f.Tuning); err != nil {
			l.Warn("tuning reload rejected", "error", err)
			return
		}
		t := store.Load()
		l.Info("tuning reloaded",
			"wander_radius", t.WanderRadius,
			"wander_interval", t.WanderInterval.String(),
			"follow_min_distance", t.FollowMinDistance,
			"follow_max_distance", t.FollowMaxDistance,
			"threat_level_gap", t.ThreatLevelGap,
		)
	})
	w.OnError(func(err error) {
		l.Warn("tuning reload failed", "error", err)
	})
	return &TuningWatcher{watcher: w}, nil
}

// provideAppOptions 提供应用选项
func provideAppOptions(cfg *Config, l logger.Logger) []app.Option {
	return []app.Option{
		app.WithName(app.AppName),
		app.WithLogger(l),
		app.WithLogConfig(&cfg.Log),
		app.WithNamedLoggers(cfg.Loggers),
		app.WithLoggerOptions(logger.WithContextExtractor(tick.LogFields)),
	}
}

// provideAppComponents 提供应用组件
// 停止时先关闭热更新；故障上报与指标客户端由 InitApp 返回的 cleanup 依次关闭
func provideAppComponents(
	promClient *prometheus.Client,
	sim *simulation.Simulation,
	watcher *TuningWatcher,
) app.Components {
	return app.Components{
		Servers: []app.Server{
			promClient, // 指标 HTTP 服务
			sim,
		},
		Closers: []app.Closer{
			watcher,
		},
	}
}
