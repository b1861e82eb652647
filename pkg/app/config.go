package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lk2023060901/dronecore/pkg/config"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，DRONE_TUNING_WANDER_RADIUS 覆盖 tuning.wander_radius
const EnvPrefix = "DRONE"

var (
	configPath string
	logPath    string
)

// LoadConfig 解析命令行参数并加载配置
// 优先级：命令行显式参数 > 环境变量 > 配置文件 > 默认值
func LoadConfig(target any, opts ...config.Option) error {
	execDir, err := GetExecDir()
	if err != nil {
		return fmt.Errorf("failed to get executable directory: %w", err)
	}

	defaultConfig := filepath.Join(execDir, "config.yaml")

	if pflag.Lookup("config") == nil {
		pflag.StringVarP(&configPath, "config", "c", defaultConfig, "path to config file")
	}
	if pflag.Lookup("log.path") == nil {
		pflag.StringVar(&logPath, "log.path", "", "output path for logs, enables file logging")
	}
	if !pflag.Parsed() {
		pflag.Parse()
	}

	path := configPath
	if !pflag.CommandLine.Changed("config") {
		if envConfig := os.Getenv(EnvPrefix + "_CONFIG"); envConfig != "" {
			path = envConfig
		}
	}

	overrides := map[string]any{}
	if pflag.CommandLine.Changed("log.path") {
		overrides["log.output_path"] = logPath
		overrides["log.enable_file"] = true
	}

	return LoadConfigFile(path, target, overrides, opts...)
}

// LoadConfigFile 从指定文件加载配置，overrides 拥有最高优先级
func LoadConfigFile(path string, target any, overrides map[string]any, opts ...config.Option) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("config file not found at %s: %w", path, err)
	}
	configPath = path

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for k, val := range overrides {
		v.Set(k, val)
	}

	// WithViper 必须最先生效，否则 WithDefaults 等选项会作用在被替换掉的实例上
	mgr := config.NewManager(append([]config.Option{config.WithViper(v)}, opts...)...)
	if err := mgr.LoadFile(path); err != nil {
		return err
	}
	if err := mgr.Unmarshal(target); err != nil {
		return err
	}

	if out := v.GetString("log.output_path"); out != "" && v.GetBool("log.enable_file") {
		logPath = out
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	return nil
}

// GetExecDir 获取可执行文件所在目录（处理符号链接）
func GetExecDir() (string, error) {
	execPath, err := os.Executable()
	if err != nil {
		return "", err
	}
	realPath, err := filepath.EvalSymlinks(execPath)
	if err != nil {
		return filepath.Dir(execPath), nil
	}
	return filepath.Dir(realPath), nil
}

// GetConfigPath 返回最终使用的配置文件路径
func GetConfigPath() string {
	return configPath
}

// GetLogPath 返回最终生效的日志文件路径，未启用文件日志时为空
func GetLogPath() string {
	return logPath
}
