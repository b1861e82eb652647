package bt

import (
	"context"
	"time"

	"github.com/lk2023060901/dronecore/pkg/blackboard"
	"github.com/lk2023060901/dronecore/pkg/tick"
)

// decorator 单子节点装饰器
type decorator struct {
	BaseNode
	child Node
}

func (d *decorator) Children() []Node {
	return []Node{d.child}
}

func (d *decorator) Reset() {
	d.child.Reset()
}

// Inverter 反转节点：反转子节点的结果
type Inverter struct {
	decorator
}

// NewInverter 创建反转节点
func NewInverter(name string, child Node) *Inverter {
	return &Inverter{decorator{BaseNode: BaseNode{name: name}, child: child}}
}

func (i *Inverter) Tick(ctx context.Context, bb *blackboard.Blackboard) Status {
	switch st := i.child.Tick(ctx, bb); st {
	case StatusSuccess:
		return StatusFailure
	case StatusFailure:
		return StatusSuccess
	default:
		return st
	}
}

// RepeatForever 无限重复
const RepeatForever = -1

// Repeater 重复节点：子节点每结束一次计数加一，达到次数后成功
// 每次 Tick 最多完成一次子节点运行
type Repeater struct {
	decorator
	maxCount int
	count    int
}

// NewRepeater 创建重复节点，maxCount 为 RepeatForever 时永不结束
func NewRepeater(name string, maxCount int, child Node) *Repeater {
	return &Repeater{
		decorator: decorator{BaseNode: BaseNode{name: name}, child: child},
		maxCount:  maxCount,
	}
}

func (r *Repeater) Tick(ctx context.Context, bb *blackboard.Blackboard) Status {
	if r.maxCount != RepeatForever && r.count >= r.maxCount {
		r.Reset()
		return StatusSuccess
	}

	if st := r.child.Tick(ctx, bb); st.Done() {
		r.count++
		r.child.Reset()
		if r.maxCount != RepeatForever && r.count >= r.maxCount {
			r.Reset()
			return StatusSuccess
		}
	}
	return StatusRunning
}

// Count 本轮已完成次数
func (r *Repeater) Count() int {
	return r.count
}

func (r *Repeater) Reset() {
	r.count = 0
	r.child.Reset()
}

// UntilSuccess 重复执行直到子节点成功
type UntilSuccess struct {
	decorator
}

// NewUntilSuccess 创建直到成功节点
func NewUntilSuccess(name string, child Node) *UntilSuccess {
	return &UntilSuccess{decorator{BaseNode: BaseNode{name: name}, child: child}}
}

func (u *UntilSuccess) Tick(ctx context.Context, bb *blackboard.Blackboard) Status {
	st := u.child.Tick(ctx, bb)
	if st == StatusSuccess {
		u.Reset()
		return StatusSuccess
	}
	if st.Done() {
		u.child.Reset()
	}
	return StatusRunning
}

// UntilFailure 重复执行直到子节点失败，失败时返回成功
type UntilFailure struct {
	decorator
}

// NewUntilFailure 创建直到失败节点
func NewUntilFailure(name string, child Node) *UntilFailure {
	return &UntilFailure{decorator{BaseNode: BaseNode{name: name}, child: child}}
}

func (u *UntilFailure) Tick(ctx context.Context, bb *blackboard.Blackboard) Status {
	st := u.child.Tick(ctx, bb)
	if st == StatusFailure {
		u.Reset()
		return StatusSuccess
	}
	if st.Done() {
		u.child.Reset()
	}
	return StatusRunning
}

// Delay 延迟节点：运行开始后等待 duration 再执行子节点
// 时间取自 tick 时钟，未携带 tick.Info 时退化为墙钟
type Delay struct {
	decorator
	duration time.Duration
	start    time.Time
	started  bool
}

// NewDelay 创建延迟节点
func NewDelay(name string, duration time.Duration, child Node) *Delay {
	return &Delay{
		decorator: decorator{BaseNode: BaseNode{name: name}, child: child},
		duration:  duration,
	}
}

func (d *Delay) Tick(ctx context.Context, bb *blackboard.Blackboard) Status {
	now := tick.Now(ctx)
	if !d.started {
		d.start = now
		d.started = true
	}
	if now.Sub(d.start) < d.duration {
		return StatusRunning
	}

	st := d.child.Tick(ctx, bb)
	if st.Done() {
		d.Reset()
	}
	return st
}

func (d *Delay) Reset() {
	d.started = false
	d.child.Reset()
}

// Timeout 超时节点：子节点运行超过 duration 仍未结束则中止并失败
type Timeout struct {
	decorator
	duration time.Duration
	start    time.Time
	started  bool
}

// NewTimeout 创建超时节点
func NewTimeout(name string, duration time.Duration, child Node) *Timeout {
	return &Timeout{
		decorator: decorator{BaseNode: BaseNode{name: name}, child: child},
		duration:  duration,
	}
}

func (t *Timeout) Tick(ctx context.Context, bb *blackboard.Blackboard) Status {
	now := tick.Now(ctx)
	if !t.started {
		t.start = now
		t.started = true
	}
	if now.Sub(t.start) >= t.duration {
		t.Reset()
		return StatusFailure
	}

	st := t.child.Tick(ctx, bb)
	if st.Done() {
		t.Reset()
	}
	return st
}

func (t *Timeout) Reset() {
	t.started = false
	t.child.Reset()
}
