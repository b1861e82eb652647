package bt

import (
	"context"
	"math/rand/v2"
	"sort"

	"github.com/lk2023060901/dronecore/pkg/blackboard"
)

// composite 是 Sequence/Selector 共用的运行状态
type composite struct {
	BaseNode
	children        []Node
	current         int
	processMultiple bool
}

func (c *composite) Children() []Node {
	return c.children
}

func (c *composite) Reset() {
	c.current = 0
	resetAll(c.children)
}

// run 从 current 开始执行子节点
// 子节点返回 advance 时前进到下一个，返回另一种终止状态时整个节点以该状态结束
func (c *composite) run(ctx context.Context, bb *blackboard.Blackboard, advance Status) Status {
	for c.current < len(c.children) {
		switch st := c.children[c.current].Tick(ctx, bb); st {
		case StatusRunning:
			return StatusRunning
		case advance:
			c.current++
			if c.current < len(c.children) && !c.processMultiple {
				return StatusRunning
			}
		default:
			c.Reset()
			return st
		}
	}
	c.Reset()
	return advance
}

// Sequence 顺序节点：依次执行子节点，全部成功才成功，遇到失败立即失败
type Sequence struct {
	composite
}

// NewSequence 创建顺序节点，默认一次 Tick 内连续执行成功的子节点
func NewSequence(name string, children ...Node) *Sequence {
	return &Sequence{composite{
		BaseNode:        BaseNode{name: name},
		children:        children,
		processMultiple: true,
	}}
}

// WithProcessMultiple 为 false 时子节点成功后返回 Running，下一次 Tick 再执行后续子节点
func (s *Sequence) WithProcessMultiple(v bool) *Sequence {
	s.processMultiple = v
	return s
}

func (s *Sequence) Tick(ctx context.Context, bb *blackboard.Blackboard) Status {
	return s.run(ctx, bb, StatusSuccess)
}

// Selector 选择节点：依次执行子节点，一个成功即成功，全部失败才失败
type Selector struct {
	composite
}

// NewSelector 创建选择节点
func NewSelector(name string, children ...Node) *Selector {
	return &Selector{composite{
		BaseNode:        BaseNode{name: name},
		children:        children,
		processMultiple: true,
	}}
}

// WithProcessMultiple 为 false 时子节点失败后返回 Running，下一次 Tick 再尝试后续子节点
func (s *Selector) WithProcessMultiple(v bool) *Selector {
	s.processMultiple = v
	return s
}

func (s *Selector) Tick(ctx context.Context, bb *blackboard.Blackboard) Status {
	return s.run(ctx, bb, StatusFailure)
}

// PriorityChild 带优先级的子节点
type PriorityChild struct {
	Node     Node
	Priority int
}

// Prioritized 构造 PriorityChild
func Prioritized(priority int, n Node) PriorityChild {
	return PriorityChild{Node: n, Priority: priority}
}

// PrioritySelector 按优先级从高到低排列子节点的选择节点
// 优先级相同的子节点保持注册顺序
type PrioritySelector struct {
	composite
	entries     []PriorityChild
	sortOnReset bool
}

// NewPrioritySelector 创建优先级选择节点，创建时即按优先级排序
func NewPrioritySelector(name string, children ...PriorityChild) *PrioritySelector {
	p := &PrioritySelector{
		composite: composite{
			BaseNode:        BaseNode{name: name},
			processMultiple: true,
		},
		entries: append([]PriorityChild(nil), children...),
	}
	p.sort()
	return p
}

// WithSortOnReset 为 true 时每次运行结束后按当前优先级重新排序
func (p *PrioritySelector) WithSortOnReset(v bool) *PrioritySelector {
	p.sortOnReset = v
	return p
}

// WithProcessMultiple 同 Selector
func (p *PrioritySelector) WithProcessMultiple(v bool) *PrioritySelector {
	p.processMultiple = v
	return p
}

func (p *PrioritySelector) sort() {
	sort.SliceStable(p.entries, func(i, j int) bool {
		return p.entries[i].Priority > p.entries[j].Priority
	})
	children := make([]Node, len(p.entries))
	for i, e := range p.entries {
		children[i] = e.Node
	}
	p.children = children
}

// SetPriority 修改指定名称子节点的优先级，在下一次排序时生效
func (p *PrioritySelector) SetPriority(name string, priority int) bool {
	for i := range p.entries {
		if p.entries[i].Node.Name() == name {
			p.entries[i].Priority = priority
			return true
		}
	}
	return false
}

// Entries 当前顺序下的子节点及优先级
func (p *PrioritySelector) Entries() []PriorityChild {
	return append([]PriorityChild(nil), p.entries...)
}

func (p *PrioritySelector) Tick(ctx context.Context, bb *blackboard.Blackboard) Status {
	st := p.run(ctx, bb, StatusFailure)
	if st.Done() && p.sortOnReset {
		p.sort()
	}
	return st
}

func (p *PrioritySelector) Reset() {
	p.composite.Reset()
	if p.sortOnReset {
		p.sort()
	}
}

// ParallelPolicy 并行节点的结果聚合规则
type ParallelPolicy int

const (
	// PolicySuccessOnAll 全部成功才成功，任一失败立即失败
	PolicySuccessOnAll ParallelPolicy = iota
	// PolicySuccessOnOne 任一成功立即成功，全部失败才失败
	PolicySuccessOnOne
)

func (p ParallelPolicy) String() string {
	if p == PolicySuccessOnOne {
		return "success_on_one"
	}
	return "success_on_all"
}

func (p ParallelPolicy) decide(successes, failures, total int) Status {
	switch p {
	case PolicySuccessOnOne:
		if successes > 0 {
			return StatusSuccess
		}
		if failures == total {
			return StatusFailure
		}
	default:
		if failures > 0 {
			return StatusFailure
		}
		if successes == total {
			return StatusSuccess
		}
	}
	return StatusRunning
}

// Parallel 并行节点
// 每次 Tick 执行全部子节点各一次（不短路，已结束的子节点也会再次执行）。
// 每个子节点最近一次的终止结果在本轮运行内保留，子节点随后返回 Running 不会抹掉它，
// 因此成功可以跨 Tick 累积。结束时重置自身和全部子节点，仍在运行的子节点被中止。
type Parallel struct {
	BaseNode
	children []Node
	results  []Status
	policy   ParallelPolicy
}

// NewParallel 创建并行节点
func NewParallel(name string, policy ParallelPolicy, children ...Node) *Parallel {
	return &Parallel{
		BaseNode: BaseNode{name: name},
		children: children,
		results:  make([]Status, len(children)),
		policy:   policy,
	}
}

func (p *Parallel) Children() []Node {
	return p.children
}

// Policy 聚合规则
func (p *Parallel) Policy() ParallelPolicy {
	return p.policy
}

func (p *Parallel) Tick(ctx context.Context, bb *blackboard.Blackboard) Status {
	if len(p.children) == 0 {
		return StatusSuccess
	}
	successes, failures := 0, 0
	for i, child := range p.children {
		if st := child.Tick(ctx, bb); st.Done() {
			p.results[i] = st
		}
		switch p.results[i] {
		case StatusSuccess:
			successes++
		case StatusFailure:
			failures++
		}
	}

	st := p.policy.decide(successes, failures, len(p.children))
	if st.Done() {
		p.Reset()
	}
	return st
}

func (p *Parallel) Reset() {
	for i := range p.results {
		p.results[i] = StatusInvalid
	}
	resetAll(p.children)
}

// RandomSelector 每轮运行开始时打乱子节点顺序的选择节点
type RandomSelector struct {
	composite
	all []Node
	rng *rand.Rand
}

// NewRandomSelector 创建随机选择节点，rng 为 nil 时使用全局随机源
func NewRandomSelector(name string, rng *rand.Rand, children ...Node) *RandomSelector {
	r := &RandomSelector{
		composite: composite{
			BaseNode:        BaseNode{name: name},
			processMultiple: true,
		},
		all: children,
		rng: rng,
	}
	r.shuffle()
	return r
}

func (r *RandomSelector) shuffle() {
	order := append([]Node(nil), r.all...)
	swap := func(i, j int) { order[i], order[j] = order[j], order[i] }
	if r.rng != nil {
		r.rng.Shuffle(len(order), swap)
	} else {
		rand.Shuffle(len(order), swap)
	}
	r.children = order
}

func (r *RandomSelector) Tick(ctx context.Context, bb *blackboard.Blackboard) Status {
	st := r.run(ctx, bb, StatusFailure)
	if st.Done() {
		r.shuffle()
	}
	return st
}

func (r *RandomSelector) Reset() {
	r.composite.Reset()
	r.shuffle()
}
