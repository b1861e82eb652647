package agent

import (
	"context"
	"sort"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/dronecore/pkg/entity"
	"github.com/lk2023060901/dronecore/pkg/logger"
	"github.com/lk2023060901/dronecore/pkg/sentry"
	"github.com/lk2023060901/dronecore/pkg/tick"
)

// 故障原因
const (
	FaultPanic = "panic"
	FaultError = "error"
)

// Recorder 指标记录
type Recorder interface {
	ObserveTick(fixed bool, agents int, elapsed time.Duration)
	AgentFault(brain, reason string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveTick(bool, int, time.Duration) {}
func (nopRecorder) AgentFault(string, string)            {}

// Option Driver 选项
type Option func(*Driver)

// WithLogger 设置日志
func WithLogger(l logger.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.logger = l.Named("driver")
		}
	}
}

// WithReporter 设置故障上报
func WithReporter(r sentry.Reporter) Option {
	return func(d *Driver) {
		if r != nil {
			d.reporter = r
		}
	}
}

// WithRecorder 设置指标记录
func WithRecorder(r Recorder) Option {
	return func(d *Driver) {
		if r != nil {
			d.recorder = r
		}
	}
}

// Report 一次驱动的结果
type Report struct {
	Evaluated int
	Faults    int
}

// Driver 决策驱动器
// 非并发安全，只能在模拟协程中使用。tick 进行中调用 Add/Remove 会推迟到本次 tick 结束后生效。
type Driver struct {
	agents []*Agent
	index  map[entity.ID]*Agent

	ticking       bool
	pendingAdd    []*Agent
	pendingRemove []entity.ID

	logger   logger.Logger
	reporter sentry.Reporter
	recorder Recorder
}

// NewDriver 创建驱动器
func NewDriver(opts ...Option) *Driver {
	d := &Driver{
		index:    make(map[entity.ID]*Agent),
		logger:   logger.NewNoop(),
		reporter: sentry.NopReporter{},
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Add 添加 agent
func (d *Driver) Add(a *Agent) error {
	if a == nil || !a.id.Valid() || a.brain == nil {
		return ErrInvalidAgent
	}
	if _, ok := d.index[a.id]; ok {
		return errors.Wrapf(ErrDuplicateAgent, "id %s", a.id)
	}
	for _, p := range d.pendingAdd {
		if p.id == a.id {
			return errors.Wrapf(ErrDuplicateAgent, "id %s (pending)", a.id)
		}
	}

	if d.ticking {
		d.pendingAdd = append(d.pendingAdd, a)
		return nil
	}
	d.insert(a)
	return nil
}

// Remove 移除 agent，返回是否存在
func (d *Driver) Remove(id entity.ID) bool {
	if d.ticking {
		for i, p := range d.pendingAdd {
			if p.id == id {
				d.pendingAdd = append(d.pendingAdd[:i], d.pendingAdd[i+1:]...)
				return true
			}
		}
		_, ok := d.index[id]
		if ok {
			d.pendingRemove = append(d.pendingRemove, id)
		}
		return ok
	}
	return d.remove(id)
}

func (d *Driver) insert(a *Agent) {
	i := sort.Search(len(d.agents), func(i int) bool { return d.agents[i].id >= a.id })
	d.agents = append(d.agents, nil)
	copy(d.agents[i+1:], d.agents[i:])
	d.agents[i] = a
	d.index[a.id] = a
	a.logger = d.logger.WithFields("agent", a.id.String(), "team", a.team.String())
}

func (d *Driver) remove(id entity.ID) bool {
	if _, ok := d.index[id]; !ok {
		return false
	}
	delete(d.index, id)
	i := sort.Search(len(d.agents), func(i int) bool { return d.agents[i].id >= id })
	d.agents = append(d.agents[:i], d.agents[i+1:]...)
	return true
}

func (d *Driver) applyPending() {
	for _, id := range d.pendingRemove {
		d.remove(id)
	}
	d.pendingRemove = d.pendingRemove[:0]

	for _, a := range d.pendingAdd {
		if _, ok := d.index[a.id]; !ok {
			d.insert(a)
		}
	}
	d.pendingAdd = d.pendingAdd[:0]
}

// Update 每帧驱动所有 agent 一次
func (d *Driver) Update(ctx context.Context, info tick.Info) Report {
	return d.run(ctx, info, false)
}

// FixedUpdate 每个固定步长驱动所有 agent 一次
func (d *Driver) FixedUpdate(ctx context.Context, info tick.Info) Report {
	return d.run(ctx, info, true)
}

func (d *Driver) run(ctx context.Context, info tick.Info, fixed bool) Report {
	ctx = tick.NewContext(ctx, info)
	start := time.Now()

	var report Report
	d.ticking = true
	for _, a := range d.agents {
		report.Evaluated++
		if !d.tickAgent(ctx, a, fixed) {
			report.Faults++
		}
	}
	d.ticking = false
	d.applyPending()

	d.recorder.ObserveTick(fixed, report.Evaluated, time.Since(start))
	return report
}

// tickAgent 执行单个 agent，返回是否成功
func (d *Driver) tickAgent(ctx context.Context, a *Agent, fixed bool) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			d.fault(ctx, a, FaultPanic, errors.Wrapf(ErrBrainPanic, "%v", r))
			d.reporter.CapturePanic(ctx, r, d.tags(a))
			ok = false
		}
	}()

	var err error
	if fixed {
		err = a.brain.FixedUpdate(ctx)
	} else {
		err = a.brain.Update(ctx)
	}
	if err != nil {
		d.fault(ctx, a, FaultError, err)
		d.reporter.CaptureError(ctx, err, d.tags(a))
		return false
	}
	return true
}

func (d *Driver) fault(ctx context.Context, a *Agent, reason string, err error) {
	a.faults++
	a.logger.ErrorContext(ctx, "agent tick failed",
		"brain", a.brain.Kind(),
		"reason", reason,
		"error", err,
	)
	d.recorder.AgentFault(a.brain.Kind(), reason)
	if r, ok := a.brain.(Resetter); ok {
		r.Reset()
	}
}

func (d *Driver) tags(a *Agent) map[string]string {
	return map[string]string{
		"agent": a.id.String(),
		"brain": a.brain.Kind(),
		"team":  a.team.String(),
	}
}

// Len agent 数量，不含待添加的
func (d *Driver) Len() int {
	return len(d.agents)
}

// Agent 按 ID 查找
func (d *Driver) Agent(id entity.ID) (*Agent, bool) {
	a, ok := d.index[id]
	return a, ok
}

// Agents 按 ID 升序返回所有 agent
func (d *Driver) Agents() []*Agent {
	return append([]*Agent(nil), d.agents...)
}
