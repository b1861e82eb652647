package behavior

import (
	"sync/atomic"
	"time"

	"github.com/lk2023060901/dronecore/pkg/config"
)

// Tuning 行为参数，可热更新
type Tuning struct {
	// 游荡点在出生点周围的半径
	WanderRadius float64 `mapstructure:"wander_radius" validate:"gt=0"`
	// 游荡方向的重新选择间隔
	WanderInterval time.Duration `mapstructure:"wander_interval" validate:"gt=0"`

	// 追击时与目标保持的距离区间
	FollowMinDistance float64 `mapstructure:"follow_min_distance" validate:"gte=0"`
	FollowMaxDistance float64 `mapstructure:"follow_max_distance" validate:"gtefield=FollowMinDistance"`

	// 敌方等级至少高出该值才视为威胁
	ThreatLevelGap int `mapstructure:"threat_level_gap" validate:"gte=0"`
}

// DefaultTuning 默认参数
func DefaultTuning() *Tuning {
	return &Tuning{
		WanderRadius:      20,
		WanderInterval:    3 * time.Second,
		FollowMinDistance: 4,
		FollowMaxDistance: 8,
		ThreatLevelGap:    2,
	}
}

// TuningStore 当前生效参数的快照
// 配置监听协程写入，模拟协程每个 tick 读取
type TuningStore struct {
	current   atomic.Pointer[Tuning]
	validator *config.Validator
}

// NewTuningStore 创建参数快照，t 为 nil 时取默认值
func NewTuningStore(t *Tuning) (*TuningStore, error) {
	s := &TuningStore{validator: config.NewValidator()}
	if err := s.Store(t); err != nil {
		return nil, err
	}
	return s, nil
}

// Load 返回当前参数的副本
func (s *TuningStore) Load() Tuning {
	return *s.current.Load()
}

// Store 校验并替换参数，校验失败时保持原值
func (s *TuningStore) Store(t *Tuning) error {
	next := DefaultTuning()
	if t != nil {
		cp := *t
		next = &cp
	}
	if err := s.validator.Validate(next); err != nil {
		return err
	}
	s.current.Store(next)
	return nil
}
