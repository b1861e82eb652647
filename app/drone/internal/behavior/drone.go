// Package behavior 实现无人机的游荡/追击/躲避行为，
// 同一套动作既可以组成状态图，也可以注册为行为树叶子节点
package behavior

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/dronecore/app/drone/internal/arena"
	"github.com/lk2023060901/dronecore/pkg/blackboard"
	"github.com/lk2023060901/dronecore/pkg/bt"
	"github.com/lk2023060901/dronecore/pkg/entity"
	"github.com/lk2023060901/dronecore/pkg/geom"
	"github.com/lk2023060901/dronecore/pkg/tick"
)

// ErrMissingDependency 缺少协作者
var ErrMissingDependency = errors.New("behavior: missing dependency")

// Deps 一架无人机的协作者
type Deps struct {
	Self     entity.ID
	Team     entity.Team
	Nav      arena.Navigator
	Detector arena.Detector
	Targets  arena.TargetProvider
	Tuning   *TuningStore
	Rand     *rand.Rand
}

// Drone 一架无人机的行为实现，持有游荡状态
type Drone struct {
	deps Deps
	home geom.Vec3

	heading    geom.Vec3
	nextChange time.Time
	wandering  bool
}

// New 创建行为实现，出生点取导航器当前位置
func New(deps Deps) (*Drone, error) {
	switch {
	case deps.Nav == nil:
		return nil, errors.Wrap(ErrMissingDependency, "navigator")
	case deps.Detector == nil:
		return nil, errors.Wrap(ErrMissingDependency, "detector")
	case deps.Targets == nil:
		return nil, errors.Wrap(ErrMissingDependency, "target provider")
	case deps.Tuning == nil:
		return nil, errors.Wrap(ErrMissingDependency, "tuning")
	}
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewPCG(uint64(deps.Self), 0x9e3779b97f4a7c15))
	}
	return &Drone{deps: deps, home: deps.Nav.Position()}, nil
}

// Prepare 写入初始黑板内容
func (d *Drone) Prepare(bb *blackboard.Blackboard) {
	blackboard.Set(bb, Team, d.deps.Team)
}

// HasThreat 是否探测到威胁
func (d *Drone) HasThreat() bool {
	_, ok := d.deps.Detector.HighestThreat()
	return ok
}

// HasTarget 是否探测到可追击的敌对目标
func (d *Drone) HasTarget() bool {
	_, ok := d.target()
	return ok
}

func (d *Drone) target() (arena.Object, bool) {
	obj, ok := d.deps.Detector.MostImportant()
	if !ok || !entity.Hostile(d.deps.Team, obj.Team) {
		return arena.Object{}, false
	}
	return obj, true
}

// Wander 在出生点周围 WanderRadius 内随机选点前进，每 WanderInterval 换一次方向
func (d *Drone) Wander(ctx context.Context, _ *blackboard.Blackboard) bt.Status {
	now := tick.Now(ctx)
	if !d.wandering || !now.Before(d.nextChange) {
		t := d.deps.Tuning.Load()
		d.heading = d.pickHeading(t.WanderRadius)
		d.nextChange = now.Add(t.WanderInterval)
		d.wandering = true
	}
	d.deps.Nav.SetMovementDirection(d.heading)
	return bt.StatusSuccess
}

// pickHeading 在以出生点为圆心的圆盘内均匀取点，返回朝向该点的水平单位向量
func (d *Drone) pickHeading(radius float64) geom.Vec3 {
	angle := d.deps.Rand.Float64() * 2 * math.Pi
	r := radius * math.Sqrt(d.deps.Rand.Float64())
	point := d.home.Add(geom.FromAngle(angle).Scale(r))
	if h := point.Sub(d.deps.Nav.Position()).Heading(); !h.IsZero() {
		return h
	}
	return geom.FromAngle(angle)
}

// NextWanderChange 下一次重新选择游荡方向的时间
func (d *Drone) NextWanderChange() time.Time {
	return d.nextChange
}

// StopWandering 下次游荡时立即重新选点
func (d *Drone) StopWandering() {
	d.wandering = false
}

// Pursue 追击最重要的敌对目标；没有目标时释放之前的目标并失败
func (d *Drone) Pursue(_ context.Context, bb *blackboard.Blackboard) bt.Status {
	obj, ok := d.target()
	if !ok {
		d.ReleaseTarget(bb)
		return bt.StatusFailure
	}
	t := d.deps.Tuning.Load()
	blackboard.Set(bb, AttackTarget, obj.Transform)
	d.deps.Targets.SetTarget(obj.Transform)
	d.deps.Nav.FollowTarget(obj.Transform, t.FollowMinDistance, t.FollowMaxDistance)
	d.StopWandering()
	return bt.StatusSuccess
}

// ReleaseTarget 清除攻击目标并停止跟随
func (d *Drone) ReleaseTarget(bb *blackboard.Blackboard) {
	if blackboard.Has(bb, AttackTarget) {
		blackboard.Clear(bb, AttackTarget)
		d.deps.Targets.ClearTarget()
		d.deps.Nav.StopFollowing()
	}
}

// Flee 背离威胁移动；没有威胁时失败
func (d *Drone) Flee(_ context.Context, bb *blackboard.Blackboard) bt.Status {
	obj, ok := d.deps.Detector.HighestThreat()
	if !ok {
		blackboard.Clear(bb, ThreatSource)
		blackboard.Clear(bb, ThreatLevel)
		return bt.StatusFailure
	}
	d.ReleaseTarget(bb)
	d.deps.Nav.StopFollowing()

	dir := d.deps.Nav.Position().Sub(obj.Position).Heading()
	if dir.IsZero() {
		dir = geom.FromAngle(d.deps.Rand.Float64() * 2 * math.Pi)
	}
	d.deps.Nav.SetMovementDirection(dir)

	blackboard.Set(bb, ThreatSource, obj.Transform)
	blackboard.Set(bb, ThreatLevel, float64(obj.Level))
	d.StopWandering()
	return bt.StatusSuccess
}
