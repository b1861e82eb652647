// Package fsm 实现带条件转移的有限状态图
//
// 每次 Update/FixedUpdate 最多发生一次转移：先按注册顺序检查 any 转移，
// 全部不满足时再检查当前状态的出边，第一个条件为真的转移生效。
package fsm

import (
	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/dronecore/pkg/logger"
	"github.com/lk2023060901/dronecore/pkg/predicate"
)

// Observer 状态变化回调，from 在首次 SetState 时为空
type Observer func(from, to StateID)

type options struct {
	name     string
	logger   logger.Logger
	observer Observer
}

// Option 状态图选项
type Option func(*options)

// WithName 设置状态图名称，用于日志
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithLogger 设置日志
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver 设置状态变化回调
func WithObserver(fn Observer) Option {
	return func(o *options) { o.observer = fn }
}

// Graph 状态图
type Graph[C any] struct {
	opts    options
	nodes   map[StateID]*node[C]
	order   []StateID
	any     []Transition
	current *node[C]
}

// New 创建空状态图
func New[C any](opts ...Option) *Graph[C] {
	o := options{name: "fsm", logger: logger.NewNoop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Graph[C]{
		opts:  o,
		nodes: make(map[StateID]*node[C]),
	}
}

// AddState 注册状态；同一 ID 重复注册时保留第一次的定义
func (g *Graph[C]) AddState(s State[C]) error {
	_, err := g.register(s)
	return err
}

func (g *Graph[C]) register(s State[C]) (*node[C], error) {
	if s.ID == "" {
		return nil, errors.Wrap(ErrInvalidState, "empty state id")
	}
	if n, ok := g.nodes[s.ID]; ok {
		return n, nil
	}
	n := &node[C]{state: s}
	g.nodes[s.ID] = n
	g.order = append(g.order, s.ID)
	return n, nil
}

// AddTransition 注册 from -> to 的转移，未注册的状态会被自动注册
func (g *Graph[C]) AddTransition(from, to State[C], condition predicate.Predicate) error {
	if condition == nil {
		return errors.Wrapf(ErrInvalidTransition, "%s -> %s: nil condition", from.ID, to.ID)
	}
	fromNode, err := g.register(from)
	if err != nil {
		return err
	}
	if _, err := g.register(to); err != nil {
		return err
	}
	fromNode.transitions = append(fromNode.transitions, Transition{From: from.ID, To: to.ID, Condition: condition})
	return nil
}

// AddAnyTransition 注册从任意状态出发的转移，优先于局部转移
func (g *Graph[C]) AddAnyTransition(to State[C], condition predicate.Predicate) error {
	if condition == nil {
		return errors.Wrapf(ErrInvalidTransition, "any -> %s: nil condition", to.ID)
	}
	if _, err := g.register(to); err != nil {
		return err
	}
	g.any = append(g.any, Transition{To: to.ID, Condition: condition})
	return nil
}

// SetState 强制切换状态：先 OnExit 旧状态再 OnEnter 新状态，不检查条件
// 目标即当前状态时不做任何事
func (g *Graph[C]) SetState(ctx C, id StateID) error {
	next, ok := g.nodes[id]
	if !ok {
		return errors.Wrapf(ErrUnknownState, "%s: set state %q", g.opts.name, id)
	}
	g.change(ctx, next)
	return nil
}

func (g *Graph[C]) change(ctx C, next *node[C]) {
	if g.current == next {
		return
	}

	var from StateID
	if prev := g.current; prev != nil {
		from = prev.state.ID
		if prev.state.OnExit != nil {
			prev.state.OnExit(ctx)
		}
	}

	g.current = next
	if next.state.OnEnter != nil {
		next.state.OnEnter(ctx)
	}

	g.opts.logger.Debug("state changed", "graph", g.opts.name, "from", string(from), "to", string(next.state.ID))
	if g.opts.observer != nil {
		g.opts.observer(from, next.state.ID)
	}
}

// eligible 返回本次应生效的转移，没有时返回 nil
func (g *Graph[C]) eligible() *Transition {
	for i := range g.any {
		if g.any[i].Condition() {
			return &g.any[i]
		}
	}
	for i := range g.current.transitions {
		if g.current.transitions[i].Condition() {
			return &g.current.transitions[i]
		}
	}
	return nil
}

func (g *Graph[C]) step(ctx C) error {
	if g.current == nil {
		return errors.Wrap(ErrNoCurrentState, g.opts.name)
	}
	if t := g.eligible(); t != nil {
		g.change(ctx, g.nodes[t.To])
	}
	return nil
}

// Update 每帧调用：最多执行一次转移，然后调用当前状态的 Update
func (g *Graph[C]) Update(ctx C) error {
	if err := g.step(ctx); err != nil {
		return err
	}
	if fn := g.current.state.Update; fn != nil {
		fn(ctx)
	}
	return nil
}

// FixedUpdate 每个固定步长调用：最多执行一次转移，然后调用当前状态的 FixedUpdate
func (g *Graph[C]) FixedUpdate(ctx C) error {
	if err := g.step(ctx); err != nil {
		return err
	}
	if fn := g.current.state.FixedUpdate; fn != nil {
		fn(ctx)
	}
	return nil
}

// Current 当前状态
func (g *Graph[C]) Current() (StateID, bool) {
	if g.current == nil {
		return "", false
	}
	return g.current.state.ID, true
}

// Registered 状态是否已注册
func (g *Graph[C]) Registered(id StateID) bool {
	_, ok := g.nodes[id]
	return ok
}

// States 按注册顺序返回所有状态
func (g *Graph[C]) States() []StateID {
	return append([]StateID(nil), g.order...)
}

// Transitions 返回 any 转移与 id 的局部转移，按检查顺序
func (g *Graph[C]) Transitions(id StateID) []Transition {
	out := append([]Transition(nil), g.any...)
	if n, ok := g.nodes[id]; ok {
		out = append(out, n.transitions...)
	}
	return out
}

// Name 状态图名称
func (g *Graph[C]) Name() string {
	return g.opts.name
}
