package combat

import (
	"context"
	"math"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/dronecore/pkg/entity"
	"github.com/lk2023060901/dronecore/pkg/logger"
)

// Outcome 一次结算的结果
type Outcome struct {
	Target      entity.ID
	Damage      DamageContext
	Destroyed   bool
	Destruction DestructionContext // Destroyed 为 true 时有效
}

// Resolver 伤害结算
type Resolver interface {
	Resolve(ctx context.Context, target entity.ID, dmg DamageContext) (Outcome, error)
}

// Observer 结算回调
type Observer func(Outcome)

// ResolverOption 选项
type ResolverOption func(*BasicResolver)

// WithLogger 设置日志
func WithLogger(l logger.Logger) ResolverOption {
	return func(r *BasicResolver) {
		if l != nil {
			r.logger = l.Named("combat")
		}
	}
}

// WithObserver 设置结算回调
func WithObserver(fn Observer) ResolverOption {
	return func(r *BasicResolver) { r.observer = fn }
}

// BasicResolver 对已注册的 Damageable 直接扣血
// 被摧毁的目标会自动注销，DestructionContext 投递给伤害中的 InstigatorReceiver。
// 非并发安全，只能在模拟协程中使用。
type BasicResolver struct {
	targets  map[entity.ID]Damageable
	logger   logger.Logger
	observer Observer
}

// NewBasicResolver 创建结算器
func NewBasicResolver(opts ...ResolverOption) *BasicResolver {
	r := &BasicResolver{
		targets: make(map[entity.ID]Damageable),
		logger:  logger.NewNoop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register 注册可受伤对象
func (r *BasicResolver) Register(d Damageable) error {
	id := d.ID()
	if !id.Valid() {
		return errors.Wrap(ErrUnknownTarget, "invalid id")
	}
	if _, ok := r.targets[id]; ok {
		return errors.Wrapf(ErrDuplicateTarget, "id %s", id)
	}
	r.targets[id] = d
	return nil
}

// Unregister 注销
func (r *BasicResolver) Unregister(id entity.ID) {
	delete(r.targets, id)
}

// Registered 是否已注册
func (r *BasicResolver) Registered(id entity.ID) bool {
	_, ok := r.targets[id]
	return ok
}

// Resolve 结算一次伤害
func (r *BasicResolver) Resolve(ctx context.Context, target entity.ID, dmg DamageContext) (Outcome, error) {
	if dmg.Amount <= 0 || math.IsNaN(dmg.Amount) || math.IsInf(dmg.Amount, 0) {
		return Outcome{}, errors.Wrapf(ErrInvalidDamage, "amount %v", dmg.Amount)
	}
	d, ok := r.targets[target]
	if !ok {
		return Outcome{}, errors.Wrapf(ErrUnknownTarget, "id %s", target)
	}

	out := Outcome{Target: target, Damage: dmg}
	if d.ApplyDamage(dmg.Amount) {
		delete(r.targets, target)
		out.Destroyed = true
		out.Destruction = DestructionContext{
			ExperienceToAward: d.Experience(),
			Victim:            target,
			Instigator:        dmg.Instigator,
		}
		if dmg.InstigatorReceiver != nil {
			dmg.InstigatorReceiver.ReceiveDestruction(out.Destruction)
		}
		r.logger.DebugContext(ctx, "target destroyed",
			"target", target.String(),
			"instigator", dmg.Instigator.String(),
			"experience", out.Destruction.ExperienceToAward,
		)
	}

	if r.observer != nil {
		r.observer(out)
	}
	return out, nil
}
