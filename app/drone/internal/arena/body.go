package arena

import (
	"github.com/lk2023060901/dronecore/pkg/combat"
	"github.com/lk2023060901/dronecore/pkg/entity"
	"github.com/lk2023060901/dronecore/pkg/geom"
)

// SpawnSpec 生成对象的参数
type SpawnSpec struct {
	Team     entity.Team
	Level    int
	Position geom.Vec3
	Speed    float64 // 每秒移动距离
	Health   float64
	Bounty   int // 被摧毁时奖励给攻击者的经验
}

// Body 场景中的一个对象
type Body struct {
	id       entity.ID
	team     entity.Team
	level    int
	position geom.Vec3
	home     geom.Vec3
	speed    float64
	health   float64
	bounty   int
	earned   int

	direction geom.Vec3
	follow    entity.TransformHandle
	followMin float64
	followMax float64
	target    entity.TransformHandle

	contact   *combat.ContactDamage
	perLevel  int
	destroyed bool
}

var (
	_ combat.Damageable      = (*Body)(nil)
	_ combat.ContextReceiver = (*Body)(nil)
)

func (b *Body) ID() entity.ID                     { return b.id }
func (b *Body) Team() entity.Team                 { return b.team }
func (b *Body) Level() int                        { return b.level }
func (b *Body) Position() geom.Vec3               { return b.position }
func (b *Body) Home() geom.Vec3                   { return b.home }
func (b *Body) Health() float64                   { return b.health }
func (b *Body) Earned() int                       { return b.earned }
func (b *Body) Direction() geom.Vec3              { return b.direction }
func (b *Body) Target() entity.TransformHandle    { return b.target }
func (b *Body) Following() entity.TransformHandle { return b.follow }
func (b *Body) Destroyed() bool                   { return b.destroyed }

// Transform 自身的位置句柄
func (b *Body) Transform() entity.TransformHandle {
	return entity.TransformHandle(b.id)
}

// ApplyDamage 扣血，生命值归零时被摧毁
func (b *Body) ApplyDamage(amount float64) bool {
	if b.destroyed {
		return false
	}
	b.health -= amount
	if b.health <= 0 {
		b.health = 0
		b.destroyed = true
	}
	return b.destroyed
}

// Experience 被摧毁时奖励的经验
func (b *Body) Experience() int {
	return b.bounty
}

// ReceiveDestruction 击毁他人后获得经验并按需升级
func (b *Body) ReceiveDestruction(ctx combat.DestructionContext) {
	b.earned += ctx.ExperienceToAward
	for b.perLevel > 0 && b.earned >= b.perLevel*b.level {
		b.level++
	}
}

func (b *Body) object(observer geom.Vec3) Object {
	return Object{
		ID:        b.id,
		Transform: b.Transform(),
		Team:      b.team,
		Level:     b.level,
		Position:  b.position,
		Distance:  geom.HorizontalDist(observer, b.position),
	}
}
