package simulation

import (
	"time"

	"github.com/lk2023060901/dronecore/app/drone/internal/agent"
	"github.com/lk2023060901/dronecore/app/drone/internal/arena"
	"github.com/lk2023060901/dronecore/app/drone/internal/behavior"
	"github.com/lk2023060901/dronecore/pkg/entity"
)

// SpawnConfig 一组同类无人机
type SpawnConfig struct {
	Team   entity.Team `mapstructure:"team" validate:"required"`
	Count  int         `mapstructure:"count" validate:"gte=1"`
	Level  int         `mapstructure:"level" validate:"gte=0"`
	Speed  float64     `mapstructure:"speed" validate:"gte=0"`
	Health float64     `mapstructure:"health" validate:"gt=0"`
	Bounty int         `mapstructure:"bounty" validate:"gte=0"`

	// 决策类型 fsm / tree，默认 fsm
	Brain string `mapstructure:"brain" validate:"omitempty,oneof=fsm tree"`
	// Brain 为 tree 时使用的行为树名，默认内置树
	Behavior string `mapstructure:"behavior"`
}

// Config 模拟配置
type Config struct {
	// 固定步长
	FixedStep time.Duration `mapstructure:"fixed_step" validate:"gt=0"`

	// 是否在固定步长之间额外执行帧更新
	FrameUpdates  bool          `mapstructure:"frame_updates"`
	FrameInterval time.Duration `mapstructure:"frame_interval" validate:"gte=0"`

	// 随机种子，决定出生位置以及每架无人机的随机序列
	Seed uint64 `mapstructure:"seed"`

	// 每隔多少个固定步长输出一次状态日志，0 表示不输出
	ReportEvery uint64 `mapstructure:"report_every"`

	Arena  arena.Config  `mapstructure:"arena"`
	Spawns []SpawnConfig `mapstructure:"spawns" validate:"dive"`
}

// DefaultConfig 默认配置：红蓝各四架，外加一架高等级中立无人机
func DefaultConfig() *Config {
	return &Config{
		FixedStep:     50 * time.Millisecond,
		FrameInterval: 16 * time.Millisecond,
		Seed:          1,
		ReportEvery:   200,
		Arena:         *arena.DefaultConfig(),
		Spawns: []SpawnConfig{
			{Team: entity.TeamRed, Count: 4, Level: 1, Speed: 6, Health: 40, Bounty: 50, Brain: agent.KindFSM},
			{Team: entity.TeamBlue, Count: 4, Level: 1, Speed: 6, Health: 40, Bounty: 50, Brain: agent.KindTree, Behavior: behavior.DefaultTreeName},
			{Team: entity.TeamNeutral, Count: 1, Level: 5, Speed: 4, Health: 200, Bounty: 300, Brain: agent.KindTree},
		},
	}
}
