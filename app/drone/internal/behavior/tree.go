package behavior

import (
	"context"

	"github.com/lk2023060901/dronecore/pkg/blackboard"
	"github.com/lk2023060901/dronecore/pkg/bt"
)

// 行为树中可引用的动作与条件
const (
	ActionWander        = "wander"
	ActionPursue        = "pursue"
	ActionFlee          = "flee"
	ActionReleaseTarget = "release_target"

	ConditionHasThreat = "has_threat"
	ConditionHasTarget = "has_target"
)

// Registry 返回绑定到本机的动作和条件注册表
func (d *Drone) Registry() (*bt.Registry, error) {
	reg := bt.NewRegistry()
	actions := map[string]bt.ActionFunc{
		ActionWander: d.Wander,
		ActionPursue: d.Pursue,
		ActionFlee:   d.Flee,
		ActionReleaseTarget: func(_ context.Context, bb *blackboard.Blackboard) bt.Status {
			d.ReleaseTarget(bb)
			return bt.StatusSuccess
		},
	}
	for name, fn := range actions {
		if err := reg.RegisterAction(name, fn); err != nil {
			return nil, err
		}
	}
	conditions := map[string]bt.ConditionFunc{
		ConditionHasThreat: bt.FromPredicate(d.HasThreat),
		ConditionHasTarget: bt.FromPredicate(d.HasTarget),
	}
	for name, fn := range conditions {
		if err := reg.RegisterCondition(name, fn); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// BuildTree 按定义构建本机的行为树根节点
func (d *Drone) BuildTree(def bt.Definition, opts ...bt.BuildOption) (bt.Node, error) {
	reg, err := d.Registry()
	if err != nil {
		return nil, err
	}
	return bt.Build(def, reg, append([]bt.BuildOption{bt.WithRand(d.deps.Rand)}, opts...)...)
}

// DefaultTreeName 内置行为树名称
const DefaultTreeName = "default"

// DefaultTree 内置行为树：有威胁时躲避，其次追击，最后游荡
func DefaultTree() bt.Definition {
	return bt.Definition{
		Type:        string(bt.KindPrioritySelector),
		Name:        "root",
		SortOnReset: true,
		Children: []bt.Definition{
			{
				Type:     string(bt.KindSequence),
				Name:     "evade",
				Priority: 30,
				Children: []bt.Definition{
					{Type: string(bt.KindCondition), Condition: ConditionHasThreat},
					{Type: string(bt.KindAction), Action: ActionFlee},
				},
			},
			{Type: string(bt.KindAction), Action: ActionPursue, Priority: 20},
			{Type: string(bt.KindAction), Action: ActionWander, Priority: 10},
		},
	}
}

// ValidateTree 检查定义能否基于无人机的动作和条件构建
func ValidateTree(def bt.Definition) error {
	var d Drone
	reg, err := d.Registry()
	if err != nil {
		return err
	}
	return bt.Validate(def, reg)
}
