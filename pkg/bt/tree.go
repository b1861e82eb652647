package bt

import (
	"context"

	"github.com/lk2023060901/dronecore/pkg/blackboard"
	"github.com/lk2023060901/dronecore/pkg/logger"
)

// TreeOption 行为树选项
type TreeOption func(*Tree)

// WithTreeLogger 设置日志
func WithTreeLogger(l logger.Logger) TreeOption {
	return func(t *Tree) {
		if l != nil {
			t.logger = l.Named("bt")
		}
	}
}

// WithStatusObserver 每次根节点结束一轮运行时回调
func WithStatusObserver(fn func(Status)) TreeOption {
	return func(t *Tree) { t.observer = fn }
}

// Tree 行为树：根节点 + 所属 agent 的黑板
// 由宿主每个模拟步进调用一次 Tick，自身不持有定时器
type Tree struct {
	root       Node
	blackboard *blackboard.Blackboard
	logger     logger.Logger
	observer   func(Status)
	ticks      uint64
}

// NewTree 创建行为树，bb 为 nil 时新建空黑板
func NewTree(root Node, bb *blackboard.Blackboard, opts ...TreeOption) *Tree {
	if bb == nil {
		bb = blackboard.New()
	}
	t := &Tree{
		root:       root,
		blackboard: bb,
		logger:     logger.NewNoop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Tick 执行根节点一次
func (t *Tree) Tick(ctx context.Context) Status {
	t.ticks++
	status := t.root.Tick(ctx, t.blackboard)
	if status.Done() {
		t.logger.DebugContext(ctx, "tick completed",
			"root", t.root.Name(),
			"status", status.String(),
		)
		// 组合节点结束时会自行重置，这里保证叶子根节点也被重置
		t.root.Reset()
		if t.observer != nil {
			t.observer(status)
		}
	}
	return status
}

// Root 根节点
func (t *Tree) Root() Node {
	return t.root
}

// Blackboard 黑板
func (t *Tree) Blackboard() *blackboard.Blackboard {
	return t.blackboard
}

// Ticks 已执行的 Tick 次数
func (t *Tree) Ticks() uint64 {
	return t.ticks
}

// Reset 中止当前运行，黑板保持不变
func (t *Tree) Reset() {
	t.root.Reset()
}
