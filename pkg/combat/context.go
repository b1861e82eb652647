// Package combat 定义伤害与摧毁结算的数据契约
//
// 决策层只构造并转发 DamageContext / DestructionContext，伤害数值由外部系统决定。
package combat

import (
	"github.com/lk2023060901/dronecore/pkg/entity"
)

// ContextReceiver 接收摧毁结算的一方，通常是攻击者
type ContextReceiver interface {
	ReceiveDestruction(ctx DestructionContext)
}

// ReceiverFunc 函数适配 ContextReceiver
type ReceiverFunc func(DestructionContext)

func (f ReceiverFunc) ReceiveDestruction(ctx DestructionContext) { f(ctx) }

// DamageContext 一次伤害
type DamageContext struct {
	Amount     float64
	Source     entity.ID   // 造成接触的对象，如子弹或机体
	SourceTeam entity.Team // 伤害来源阵营
	Instigator entity.ID   // 最终归属的攻击者

	// 目标被摧毁时 DestructionContext 投递给它，可为 nil
	InstigatorReceiver ContextReceiver
}

// DestructionContext 一次摧毁
type DestructionContext struct {
	ExperienceToAward int
	Victim            entity.ID
	Instigator        entity.ID
}

// Damageable 可受伤对象
type Damageable interface {
	ID() entity.ID
	Team() entity.Team

	// ApplyDamage 扣除生命值，返回是否因此被摧毁
	ApplyDamage(amount float64) (destroyed bool)

	// Experience 被摧毁时奖励给攻击者的经验
	Experience() int
}
