package combat

import (
	"time"

	"github.com/lk2023060901/dronecore/pkg/entity"
)

// ContactConfig 接触伤害配置
type ContactConfig struct {
	Amount   float64       `mapstructure:"amount" validate:"gt=0"`
	Cooldown time.Duration `mapstructure:"cooldown" validate:"gte=0"`
}

// ContactDamage 接触伤害源
// 同一目标在 Cooldown 内只会受到一次伤害，友方不受伤害。
type ContactDamage struct {
	cfg        ContactConfig
	source     entity.ID
	team       entity.Team
	instigator entity.ID
	receiver   ContextReceiver
	last       map[entity.ID]time.Time
}

// NewContactDamage 创建接触伤害源，instigator 通常就是 source 本身
func NewContactDamage(cfg ContactConfig, source entity.ID, team entity.Team, instigator entity.ID, receiver ContextReceiver) *ContactDamage {
	return &ContactDamage{
		cfg:        cfg,
		source:     source,
		team:       team,
		instigator: instigator,
		receiver:   receiver,
		last:       make(map[entity.ID]time.Time),
	}
}

// Source 伤害源 ID
func (c *ContactDamage) Source() entity.ID {
	return c.source
}

// Touch 与 target 发生接触，返回需要结算的伤害
// 友方、自身或冷却中的目标返回 false
func (c *ContactDamage) Touch(now time.Time, target entity.ID, targetTeam entity.Team) (DamageContext, bool) {
	if target == c.source || !entity.Hostile(c.team, targetTeam) {
		return DamageContext{}, false
	}
	if at, ok := c.last[target]; ok && now.Sub(at) < c.cfg.Cooldown {
		return DamageContext{}, false
	}
	c.last[target] = now
	return DamageContext{
		Amount:             c.cfg.Amount,
		Source:             c.source,
		SourceTeam:         c.team,
		Instigator:         c.instigator,
		InstigatorReceiver: c.receiver,
	}, true
}

// Forget 清除目标的冷却记录，目标被摧毁或离开场景时调用
func (c *ContactDamage) Forget(target entity.ID) {
	delete(c.last, target)
}
