package bt

import (
	"context"

	"github.com/lk2023060901/dronecore/pkg/blackboard"
)

// Status 节点执行状态
type Status int

const (
	StatusInvalid Status = iota // 尚未执行
	StatusSuccess
	StatusFailure
	StatusRunning
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "Success"
	case StatusFailure:
		return "Failure"
	case StatusRunning:
		return "Running"
	default:
		return "Invalid"
	}
}

// Done 是否为终止状态
func (s Status) Done() bool {
	return s == StatusSuccess || s == StatusFailure
}

// Node 行为树节点接口
type Node interface {
	// Tick 执行一次，返回 Success/Failure/Running 之一
	Tick(ctx context.Context, bb *blackboard.Blackboard) Status

	// Reset 清空运行状态，组合节点会递归重置子节点
	Reset()

	Name() string
}

// Parent 带子节点的节点
type Parent interface {
	Node
	Children() []Node
}

// BaseNode 基础节点
type BaseNode struct {
	name string
}

func (n *BaseNode) Name() string {
	return n.name
}

func (n *BaseNode) Reset() {}

func resetAll(nodes []Node) {
	for _, n := range nodes {
		n.Reset()
	}
}

// Walk 深度优先遍历，fn 返回 false 时不再进入该节点的子节点
func Walk(n Node, fn func(n Node, depth int) bool) {
	walk(n, 0, fn)
}

func walk(n Node, depth int, fn func(Node, int) bool) {
	if !fn(n, depth) {
		return
	}
	if p, ok := n.(Parent); ok {
		for _, c := range p.Children() {
			walk(c, depth+1, fn)
		}
	}
}
