package arena

import (
	"context"
	"sort"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/dronecore/pkg/combat"
	"github.com/lk2023060901/dronecore/pkg/entity"
	"github.com/lk2023060901/dronecore/pkg/geom"
	"github.com/lk2023060901/dronecore/pkg/idgen"
	"github.com/lk2023060901/dronecore/pkg/logger"
)

// ErrUnknownBody 对象不存在
var ErrUnknownBody = errors.New("arena: unknown body")

// Option 场景选项
type Option func(*World)

// WithLogger 设置日志
func WithLogger(l logger.Logger) Option {
	return func(w *World) {
		if l != nil {
			w.logger = l.Named("arena")
		}
	}
}

// WithThreatGap 设置判定威胁所需的等级差，每次查询时读取
func WithThreatGap(fn func() int) Option {
	return func(w *World) { w.threatGap = fn }
}

// World 内存场景：运动学移动、接触伤害、摧毁结算
// 只能在模拟协程中访问
type World struct {
	cfg       Config
	ids       idgen.Generator
	resolver  *combat.BasicResolver
	logger    logger.Logger
	threatGap func() int

	bodies map[entity.ID]*Body
}

// New 创建场景，resolver 负责伤害结算
func New(cfg Config, ids idgen.Generator, resolver *combat.BasicResolver, opts ...Option) *World {
	w := &World{
		cfg:       cfg,
		ids:       ids,
		resolver:  resolver,
		logger:    logger.NewNoop(),
		threatGap: func() int { return 1 },
		bodies:    make(map[entity.ID]*Body),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Spawn 生成对象并注册到结算器
func (w *World) Spawn(spec SpawnSpec) (*Body, error) {
	id, err := w.ids.NextID()
	if err != nil {
		return nil, errors.Wrap(err, "arena: allocate id")
	}
	level := spec.Level
	if level < 1 {
		level = 1
	}
	pos := w.clamp(spec.Position.Horizontal())
	b := &Body{
		id:       id,
		team:     spec.Team,
		level:    level,
		position: pos,
		home:     pos,
		speed:    spec.Speed,
		health:   spec.Health,
		bounty:   spec.Bounty,
		perLevel: w.cfg.ExperiencePerLevel,
	}
	b.contact = combat.NewContactDamage(w.cfg.Contact, id, spec.Team, id, b)

	if err := w.resolver.Register(b); err != nil {
		return nil, err
	}
	w.bodies[id] = b
	w.logger.Debug("body spawned", "id", id.String(), "team", spec.Team.String(), "level", level)
	return b, nil
}

// Remove 移除对象
func (w *World) Remove(id entity.ID) {
	if _, ok := w.bodies[id]; !ok {
		return
	}
	delete(w.bodies, id)
	w.resolver.Unregister(id)
	for _, b := range w.bodies {
		b.contact.Forget(id)
		if b.follow.ID() == id {
			b.follow = 0
		}
		if b.target.ID() == id {
			b.target = 0
		}
	}
}

// Body 按 ID 查找
func (w *World) Body(id entity.ID) (*Body, bool) {
	b, ok := w.bodies[id]
	return b, ok
}

// Bodies 按 ID 升序返回所有对象
func (w *World) Bodies() []*Body {
	out := make([]*Body, 0, len(w.bodies))
	for _, b := range w.bodies {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// Len 对象数量
func (w *World) Len() int {
	return len(w.bodies)
}

func (w *World) clamp(p geom.Vec3) geom.Vec3 {
	e := w.cfg.HalfExtent
	p.X = min(max(p.X, -e), e)
	p.Z = min(max(p.Z, -e), e)
	return p
}

// Visible 观察者探测半径内的其他对象
func (w *World) Visible(id entity.ID) []Object {
	self, ok := w.bodies[id]
	if !ok {
		return nil
	}
	var out []Object
	for _, b := range w.Bodies() {
		if b.id == id || b.destroyed {
			continue
		}
		o := b.object(self.position)
		if o.Distance <= w.cfg.DetectionRadius {
			out = append(out, o)
		}
	}
	return out
}

// Step 推进 dt：先移动再结算接触，返回本步被摧毁的对象 ID（已从场景移除）
func (w *World) Step(ctx context.Context, now time.Time, dt time.Duration) []entity.ID {
	bodies := w.Bodies()
	for _, b := range bodies {
		w.move(b, dt)
	}

	var destroyed []entity.ID
	for i, a := range bodies {
		for _, b := range bodies[i+1:] {
			if a.destroyed || b.destroyed {
				continue
			}
			if geom.HorizontalDist(a.position, b.position) > w.cfg.ContactRadius {
				continue
			}
			destroyed = append(destroyed, w.touch(ctx, now, a, b)...)
			destroyed = append(destroyed, w.touch(ctx, now, b, a)...)
		}
	}

	for _, id := range destroyed {
		w.Remove(id)
	}
	return destroyed
}

func (w *World) move(b *Body, dt time.Duration) {
	dir := b.direction
	if b.follow.Valid() {
		target, ok := w.bodies[b.follow.ID()]
		if !ok {
			b.follow = 0
		} else {
			to := target.position.Sub(b.position).Horizontal()
			d := to.Len()
			switch {
			case d > b.followMax:
				dir = to.Normalize()
			case d < b.followMin:
				dir = to.Scale(-1).Normalize()
			default:
				dir = geom.Zero
			}
		}
	}
	if dir.IsZero() || b.speed <= 0 {
		return
	}
	b.position = w.clamp(b.position.Add(dir.Scale(b.speed * dt.Seconds())))
}

func (w *World) touch(ctx context.Context, now time.Time, src, dst *Body) []entity.ID {
	if src.destroyed || dst.destroyed {
		return nil
	}
	dmg, ok := src.contact.Touch(now, dst.id, dst.team)
	if !ok {
		return nil
	}
	out, err := w.resolver.Resolve(ctx, dst.id, dmg)
	if err != nil {
		w.logger.WarnContext(ctx, "contact damage not resolved", "source", src.id.String(), "target", dst.id.String(), "error", err)
		return nil
	}
	if out.Destroyed {
		return []entity.ID{dst.id}
	}
	return nil
}

// Navigator 返回绑定到 id 的移动执行器
func (w *World) Navigator(id entity.ID) Navigator {
	return &navigator{world: w, id: id}
}

// Detector 返回绑定到 id 的探测器
func (w *World) Detector(id entity.ID) Detector {
	return &detector{world: w, id: id}
}

// TargetProvider 返回绑定到 id 的目标提供者
func (w *World) TargetProvider(id entity.ID) TargetProvider {
	return &targetProvider{world: w, id: id}
}

type navigator struct {
	world *World
	id    entity.ID
}

func (n *navigator) SetMovementDirection(dir geom.Vec3) {
	if b, ok := n.world.bodies[n.id]; ok {
		b.direction = dir.Heading()
	}
}

func (n *navigator) FollowTarget(target entity.TransformHandle, minDistance, maxDistance float64) {
	b, ok := n.world.bodies[n.id]
	if !ok || target.ID() == n.id {
		return
	}
	if maxDistance < minDistance {
		minDistance, maxDistance = maxDistance, minDistance
	}
	b.follow = target
	b.followMin = minDistance
	b.followMax = maxDistance
}

func (n *navigator) StopFollowing() {
	if b, ok := n.world.bodies[n.id]; ok {
		b.follow = 0
	}
}

func (n *navigator) Position() geom.Vec3 {
	if b, ok := n.world.bodies[n.id]; ok {
		return b.position
	}
	return geom.Zero
}

type detector struct {
	world *World
	id    entity.ID
}

func (d *detector) HighestThreat() (Object, bool) {
	self, ok := d.world.bodies[d.id]
	if !ok {
		return Object{}, false
	}
	return SelectHighestThreat(self.team, self.level, d.world.threatGap(), d.world.Visible(d.id))
}

func (d *detector) MostImportant() (Object, bool) {
	self, ok := d.world.bodies[d.id]
	if !ok {
		return Object{}, false
	}
	return SelectMostImportant(self.team, d.world.Visible(d.id))
}

type targetProvider struct {
	world *World
	id    entity.ID
}

func (t *targetProvider) SetTarget(target entity.TransformHandle) {
	if b, ok := t.world.bodies[t.id]; ok {
		b.target = target
	}
}

func (t *targetProvider) ClearTarget() {
	if b, ok := t.world.bodies[t.id]; ok {
		b.target = 0
	}
}
