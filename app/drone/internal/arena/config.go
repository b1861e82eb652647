package arena

import (
	"time"

	"github.com/lk2023060901/dronecore/pkg/combat"
)

// Config 内存场景配置
type Config struct {
	// 场景为以原点为中心的正方形，边长的一半
	HalfExtent float64 `mapstructure:"half_extent" validate:"gt=0"`

	// 探测半径
	DetectionRadius float64 `mapstructure:"detection_radius" validate:"gt=0"`

	// 两个对象水平距离不超过该值时视为接触
	ContactRadius float64 `mapstructure:"contact_radius" validate:"gt=0"`

	// 每升一级需要的经验
	ExperiencePerLevel int `mapstructure:"experience_per_level" validate:"gt=0"`

	// 接触伤害
	Contact combat.ContactConfig `mapstructure:"contact"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		HalfExtent:         100,
		DetectionRadius:    30,
		ContactRadius:      1.5,
		ExperiencePerLevel: 100,
		Contact: combat.ContactConfig{
			Amount:   10,
			Cooldown: 500 * time.Millisecond,
		},
	}
}
