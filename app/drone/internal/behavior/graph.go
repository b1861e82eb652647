package behavior

import (
	"context"

	"github.com/lk2023060901/dronecore/pkg/blackboard"
	"github.com/lk2023060901/dronecore/pkg/fsm"
	"github.com/lk2023060901/dronecore/pkg/predicate"
)

// 状态图中的状态
const (
	StateWander fsm.StateID = "wander"
	StatePursue fsm.StateID = "pursue"
	StateFlee   fsm.StateID = "flee"
)

// Frame 每次驱动状态图时传给状态钩子的上下文
type Frame struct {
	Ctx context.Context
	BB  *blackboard.Blackboard
}

// NewGraph 组装游荡/追击/躲避状态图
//
//	any    -> flee    有威胁
//	wander -> pursue  有目标
//	pursue -> wander  无目标
//	flee   -> pursue  无威胁且有目标
//	flee   -> wander  无威胁
//
// 返回的状态图尚未设置初始状态，初始状态为 StateWander
func (d *Drone) NewGraph(opts ...fsm.Option) (*fsm.Graph[Frame], error) {
	g := fsm.New[Frame](opts...)

	wander := fsm.State[Frame]{
		ID:          StateWander,
		Update:      func(f Frame) { d.Wander(f.Ctx, f.BB) },
		FixedUpdate: func(f Frame) { d.Wander(f.Ctx, f.BB) },
		OnExit:      func(Frame) { d.StopWandering() },
	}
	pursue := fsm.State[Frame]{
		ID:          StatePursue,
		Update:      func(f Frame) { d.Pursue(f.Ctx, f.BB) },
		FixedUpdate: func(f Frame) { d.Pursue(f.Ctx, f.BB) },
		OnExit:      func(f Frame) { d.ReleaseTarget(f.BB) },
	}
	flee := fsm.State[Frame]{
		ID:          StateFlee,
		Update:      func(f Frame) { d.Flee(f.Ctx, f.BB) },
		FixedUpdate: func(f Frame) { d.Flee(f.Ctx, f.BB) },
		OnExit: func(f Frame) {
			blackboard.Clear(f.BB, ThreatSource)
			blackboard.Clear(f.BB, ThreatLevel)
		},
	}

	hasThreat := predicate.Predicate(d.HasThreat)
	hasTarget := predicate.Predicate(d.HasTarget)

	steps := []func() error{
		func() error { return g.AddAnyTransition(flee, hasThreat) },
		func() error { return g.AddTransition(wander, pursue, hasTarget) },
		func() error { return g.AddTransition(pursue, wander, predicate.Not(hasTarget)) },
		func() error { return g.AddTransition(flee, pursue, predicate.And(predicate.Not(hasThreat), hasTarget)) },
		func() error { return g.AddTransition(flee, wander, predicate.Not(hasThreat)) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	return g, nil
}
