package bt

import (
	"context"

	"github.com/lk2023060901/dronecore/pkg/blackboard"
	"github.com/lk2023060901/dronecore/pkg/predicate"
)

// ActionFunc 动作策略，移动/攻击等副作用全部在这里发生
type ActionFunc func(ctx context.Context, bb *blackboard.Blackboard) Status

// ConditionFunc 条件判定
type ConditionFunc func(ctx context.Context, bb *blackboard.Blackboard) bool

// FromPredicate 将无参判定适配为 ConditionFunc
func FromPredicate(p predicate.Predicate) ConditionFunc {
	return func(context.Context, *blackboard.Blackboard) bool { return p() }
}

// Action 动作叶子节点
type Action struct {
	BaseNode
	fn ActionFunc
}

// NewAction 创建动作节点
func NewAction(name string, fn ActionFunc) *Action {
	return &Action{BaseNode: BaseNode{name: name}, fn: fn}
}

// Tick 策略返回非法状态时按失败处理
func (a *Action) Tick(ctx context.Context, bb *blackboard.Blackboard) Status {
	switch st := a.fn(ctx, bb); st {
	case StatusSuccess, StatusFailure, StatusRunning:
		return st
	default:
		return StatusFailure
	}
}

// Condition 条件叶子节点：true -> Success，false -> Failure
type Condition struct {
	BaseNode
	fn ConditionFunc
}

// NewCondition 创建条件节点
func NewCondition(name string, fn ConditionFunc) *Condition {
	return &Condition{BaseNode: BaseNode{name: name}, fn: fn}
}

func (c *Condition) Tick(ctx context.Context, bb *blackboard.Blackboard) Status {
	if c.fn(ctx, bb) {
		return StatusSuccess
	}
	return StatusFailure
}
