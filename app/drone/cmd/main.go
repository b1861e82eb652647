package main

import (
	"github.com/lk2023060901/dronecore/app/drone/internal/behavior"
	"github.com/lk2023060901/dronecore/app/drone/internal/simulation"
	"github.com/lk2023060901/dronecore/pkg/app"
	"github.com/lk2023060901/dronecore/pkg/bt"
	"github.com/lk2023060901/dronecore/pkg/config"
	"github.com/lk2023060901/dronecore/pkg/logger"
	"github.com/lk2023060901/dronecore/pkg/prometheus"
	"github.com/lk2023060901/dronecore/pkg/sentry"
	"github.com/lk2023060901/dronecore/pkg/tick"
)

// IDGenConfig 对象 ID 生成配置
type IDGenConfig struct {
	// sequence 或 sonyflake
	Kind      string `mapstructure:"kind" validate:"omitempty,oneof=sequence sonyflake"`
	MachineID uint16 `mapstructure:"machine_id"`
}

// ReporterConfig 故障上报配置
type ReporterConfig struct {
	// 上报协程数，0 表示 GOMAXPROCS
	Workers int `mapstructure:"workers" validate:"gte=0"`
}

// Config 定义 drone 服务的完整配置结构
type Config struct {
	Log     logger.Config             `mapstructure:"log"`
	Loggers map[string]*logger.Config `mapstructure:"loggers"`

	// Prometheus 配置
	Prometheus prometheus.Config `mapstructure:"prometheus"`

	// Sentry 配置
	Sentry   sentry.Config  `mapstructure:"sentry"`
	Reporter ReporterConfig `mapstructure:"reporter"`

	// 模拟配置
	Simulation simulation.Config `mapstructure:"simulation"`
	IDGen      IDGenConfig       `mapstructure:"idgen"`

	// 行为参数，hot_reload 开启时修改配置文件即时生效
	Tuning    behavior.Tuning `mapstructure:"tuning"`
	HotReload bool            `mapstructure:"hot_reload"`

	// 行为树定义：内联定义，或相对配置文件目录的 YAML 文件
	Behaviors     map[string]bt.Definition `mapstructure:"behaviors"`
	BehaviorFiles map[string]string        `mapstructure:"behavior_files"`
}

// DefaultConfig 各段的默认值，与 defaultSettings 写入 viper 的内容一致
func DefaultConfig() *Config {
	return &Config{
		Prometheus: *prometheus.DefaultConfig(),
		Simulation: *simulation.DefaultConfig(),
		Tuning:     *behavior.DefaultTuning(),
	}
}

// defaultSettings 将默认值写入 viper，文件中缺失的键取默认值，显式写出的零值保持为零
// log 与 sentry 由各自的构造函数补全
func defaultSettings() (map[string]any, error) {
	d := DefaultConfig()
	out := make(map[string]any, 3)
	for key, v := range map[string]any{
		"prometheus": &d.Prometheus,
		"simulation": &d.Simulation,
		"tuning":     &d.Tuning,
	} {
		section, err := config.StructDefaults(key, v)
		if err != nil {
			return nil, err
		}
		out[key] = section[key]
	}
	return out, nil
}

func main() {
	var cfg Config

	// 1. 加载配置
	defaults, err := defaultSettings()
	if err != nil {
		panic(err)
	}
	if err := app.LoadConfig(&cfg, config.WithDefaults(defaults)); err != nil {
		panic(err)
	}

	// 2. 初始化主日志，日志附带 tick 序号
	l, err := logger.New(&cfg.Log, logger.WithContextExtractor(tick.LogFields))
	if err != nil {
		panic(err)
	}
	logger.SetDefault(l)

	// 3. 通过 Wire 初始化应用
	application, cleanup, err := InitApp(&cfg, l)
	if err != nil {
		l.Error("failed to initialize application", "error", err)
		return
	}
	defer cleanup()

	// 4. 运行服务
	if err := application.Run(); err != nil {
		l.Error("application exited with error", "error", err)
	}
}
