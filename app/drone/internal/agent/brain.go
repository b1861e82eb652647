package agent

import (
	"context"

	"github.com/lk2023060901/dronecore/pkg/bt"
	"github.com/lk2023060901/dronecore/pkg/fsm"
)

// 决策实现类型
const (
	KindFSM  = "fsm"
	KindTree = "tree"
)

// Brain 一个 agent 的决策引擎，由 Driver 每个 tick 调用一次
type Brain interface {
	Update(ctx context.Context) error
	FixedUpdate(ctx context.Context) error
	Kind() string
}

// Resetter 发生故障后由 Driver 调用以清理运行状态
type Resetter interface {
	Reset()
}

// FSMBrain 以状态图实现的决策
// frame 将 tick context 转换为状态钩子的上下文；首次调用时进入 initial 状态
type FSMBrain[C any] struct {
	graph   *fsm.Graph[C]
	initial fsm.StateID
	frame   func(ctx context.Context) C
}

// NewFSMBrain 创建状态图决策
func NewFSMBrain[C any](graph *fsm.Graph[C], initial fsm.StateID, frame func(ctx context.Context) C) *FSMBrain[C] {
	return &FSMBrain[C]{graph: graph, initial: initial, frame: frame}
}

func (b *FSMBrain[C]) start(c C) error {
	if _, ok := b.graph.Current(); ok {
		return nil
	}
	return b.graph.SetState(c, b.initial)
}

func (b *FSMBrain[C]) Update(ctx context.Context) error {
	c := b.frame(ctx)
	if err := b.start(c); err != nil {
		return err
	}
	return b.graph.Update(c)
}

func (b *FSMBrain[C]) FixedUpdate(ctx context.Context) error {
	c := b.frame(ctx)
	if err := b.start(c); err != nil {
		return err
	}
	return b.graph.FixedUpdate(c)
}

func (b *FSMBrain[C]) Kind() string { return KindFSM }

// State 当前状态
func (b *FSMBrain[C]) State() (fsm.StateID, bool) {
	return b.graph.Current()
}

// TreeBrain 以行为树实现的决策，Update 与 FixedUpdate 都执行一次根节点
type TreeBrain struct {
	tree *bt.Tree
}

// NewTreeBrain 创建行为树决策
func NewTreeBrain(tree *bt.Tree) *TreeBrain {
	return &TreeBrain{tree: tree}
}

func (b *TreeBrain) Update(ctx context.Context) error {
	b.tree.Tick(ctx)
	return nil
}

func (b *TreeBrain) FixedUpdate(ctx context.Context) error {
	b.tree.Tick(ctx)
	return nil
}

func (b *TreeBrain) Kind() string { return KindTree }

// Reset 中止行为树当前运行
func (b *TreeBrain) Reset() {
	b.tree.Reset()
}

// Tree 底层行为树
func (b *TreeBrain) Tree() *bt.Tree {
	return b.tree
}
