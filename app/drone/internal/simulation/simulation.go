// Package simulation 无头模拟宿主：固定步长驱动全部无人机的决策，再推进内存场景
package simulation

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/dronecore/app/drone/internal/agent"
	"github.com/lk2023060901/dronecore/app/drone/internal/arena"
	"github.com/lk2023060901/dronecore/app/drone/internal/behavior"
	"github.com/lk2023060901/dronecore/app/drone/internal/metrics"
	"github.com/lk2023060901/dronecore/pkg/blackboard"
	"github.com/lk2023060901/dronecore/pkg/bt"
	"github.com/lk2023060901/dronecore/pkg/combat"
	"github.com/lk2023060901/dronecore/pkg/config"
	"github.com/lk2023060901/dronecore/pkg/entity"
	"github.com/lk2023060901/dronecore/pkg/fsm"
	"github.com/lk2023060901/dronecore/pkg/geom"
	"github.com/lk2023060901/dronecore/pkg/idgen"
	"github.com/lk2023060901/dronecore/pkg/logger"
	"github.com/lk2023060901/dronecore/pkg/sentry"
	"github.com/lk2023060901/dronecore/pkg/tick"
	"github.com/lk2023060901/dronecore/pkg/util/conc"
)

// Option 模拟选项
type Option func(*Simulation)

// WithLogger 设置日志，同时作为驱动器、战场与各大脑的父日志
func WithLogger(l logger.Logger) Option {
	return func(s *Simulation) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics 设置指标
func WithMetrics(m *metrics.DroneMetrics) Option {
	return func(s *Simulation) { s.metrics = m }
}

// WithReporter 设置故障上报
func WithReporter(r sentry.Reporter) Option {
	return func(s *Simulation) { s.reporter = r }
}

// WithBehaviors 设置可引用的行为树定义
func WithBehaviors(defs map[string]bt.Definition) Option {
	return func(s *Simulation) {
		for name, def := range defs {
			s.behaviors[name] = def
		}
	}
}

// WithEpoch 设置模拟时钟起点，默认为创建时的墙上时间
func WithEpoch(t time.Time) Option {
	return func(s *Simulation) { s.clock.Now = t }
}

// StepReport 一个固定步长的结果
type StepReport struct {
	Tick      uint64
	Evaluated int
	Faults    int
	Destroyed []entity.ID
}

// Simulation 模拟宿主，实现 app.Server
// Step/Frame 只能在同一个协程中调用；Start 后由内部循环协程调用
type Simulation struct {
	cfg       *Config
	tuning    *behavior.TuningStore
	behaviors map[string]bt.Definition
	logger    logger.Logger
	metrics   *metrics.DroneMetrics
	reporter  sentry.Reporter

	world  *arena.World
	driver *agent.Driver
	rand   *rand.Rand
	clock  tick.Info
	// 已生成的无人机数，作为各自随机序列的流编号
	spawned uint64

	mu     sync.Mutex
	cancel context.CancelFunc
	loop   *conc.Future[struct{}]
}

// New 创建模拟并按 cfg.Spawns 生成无人机
// cfg 为 nil 时使用 DefaultConfig()；非 nil 时按原值使用，零值即零值
func New(cfg *Config, ids idgen.Generator, tuning *behavior.TuningStore, opts ...Option) (*Simulation, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := *cfg
	c.Spawns = append([]SpawnConfig(nil), cfg.Spawns...)
	if err := config.NewValidator().Validate(&c); err != nil {
		return nil, errors.Wrap(err, "simulation: invalid config")
	}
	if tuning == nil {
		var err error
		if tuning, err = behavior.NewTuningStore(nil); err != nil {
			return nil, err
		}
	}

	s := &Simulation{
		cfg:       &c,
		tuning:    tuning,
		behaviors: map[string]bt.Definition{behavior.DefaultTreeName: behavior.DefaultTree()},
		logger:    logger.NewNoop(),
		reporter:  sentry.NopReporter{},
		rand:      rand.New(rand.NewPCG(c.Seed, 0)),
		clock:     tick.Info{Now: time.Now()},
	}
	for _, opt := range opts {
		opt(s)
	}

	resolverOpts := []combat.ResolverOption{combat.WithLogger(s.logger)}
	driverOpts := []agent.Option{agent.WithLogger(s.logger), agent.WithReporter(s.reporter)}
	if s.metrics != nil {
		resolverOpts = append(resolverOpts, combat.WithObserver(s.metrics.CombatObserver()))
		driverOpts = append(driverOpts, agent.WithRecorder(s.metrics))
	}

	s.world = arena.New(c.Arena, ids, combat.NewBasicResolver(resolverOpts...),
		arena.WithLogger(s.logger),
		arena.WithThreatGap(func() int { return s.tuning.Load().ThreatLevelGap }),
	)
	s.driver = agent.NewDriver(driverOpts...)

	for i, spawn := range c.Spawns {
		if _, err := s.Spawn(spawn); err != nil {
			return nil, errors.Wrapf(err, "simulation: spawns[%d]", i)
		}
	}
	return s, nil
}

// Spawn 在场景内随机位置生成一组无人机并加入驱动器
func (s *Simulation) Spawn(spec SpawnConfig) ([]entity.ID, error) {
	if err := s.checkBehavior(spec); err != nil {
		return nil, err
	}

	half := s.cfg.Arena.HalfExtent
	ids := make([]entity.ID, 0, spec.Count)
	for range spec.Count {
		pos := geom.V((s.rand.Float64()*2-1)*half, 0, (s.rand.Float64()*2-1)*half)
		body, err := s.world.Spawn(arena.SpawnSpec{
			Team:     spec.Team,
			Level:    spec.Level,
			Position: pos,
			Speed:    spec.Speed,
			Health:   spec.Health,
			Bounty:   spec.Bounty,
		})
		if err != nil {
			return ids, err
		}

		a, err := s.newAgent(body, spec, s.spawned)
		s.spawned++
		if err == nil {
			err = s.driver.Add(a)
		}
		if err != nil {
			s.world.Remove(body.ID())
			return ids, err
		}
		ids = append(ids, body.ID())
	}
	return ids, nil
}

func (s *Simulation) checkBehavior(spec SpawnConfig) error {
	if spec.Brain != agent.KindTree {
		return nil
	}
	if _, ok := s.behaviors[behaviorName(spec)]; !ok {
		return errors.Wrapf(ErrUnknownBehavior, "%q", spec.Behavior)
	}
	return nil
}

func behaviorName(spec SpawnConfig) string {
	if spec.Behavior == "" {
		return behavior.DefaultTreeName
	}
	return spec.Behavior
}

// stream 与实体 ID 无关，ID 生成器基于时间时同一种子仍能复现
func (s *Simulation) newAgent(body *arena.Body, spec SpawnConfig, stream uint64) (*agent.Agent, error) {
	id := body.ID()
	drone, err := behavior.New(behavior.Deps{
		Self:     id,
		Team:     body.Team(),
		Nav:      s.world.Navigator(id),
		Detector: s.world.Detector(id),
		Targets:  s.world.TargetProvider(id),
		Tuning:   s.tuning,
		Rand:     rand.New(rand.NewPCG(s.cfg.Seed, stream)),
	})
	if err != nil {
		return nil, err
	}

	bb := blackboard.New()
	drone.Prepare(bb)

	var brain agent.Brain
	switch spec.Brain {
	case agent.KindTree:
		name := behaviorName(spec)
		root, err := drone.BuildTree(s.behaviors[name])
		if err != nil {
			return nil, errors.Wrapf(err, "behavior %q", name)
		}
		treeOpts := []bt.TreeOption{bt.WithTreeLogger(s.logger.WithFields("agent", id.String()))}
		if s.metrics != nil {
			treeOpts = append(treeOpts, bt.WithStatusObserver(s.metrics.TreeObserver(name)))
		}
		brain = agent.NewTreeBrain(bt.NewTree(root, bb, treeOpts...))
	default:
		graphOpts := []fsm.Option{
			fsm.WithName("drone-" + id.String()),
			fsm.WithLogger(s.logger),
		}
		if s.metrics != nil {
			graphOpts = append(graphOpts, fsm.WithObserver(s.metrics.FSMObserver("drone")))
		}
		g, err := drone.NewGraph(graphOpts...)
		if err != nil {
			return nil, err
		}
		brain = agent.NewFSMBrain(g, behavior.StateWander, func(ctx context.Context) behavior.Frame {
			return behavior.Frame{Ctx: ctx, BB: bb}
		})
	}
	return agent.New(id, body.Team(), brain, bb), nil
}

// Step 推进一个固定步长：先驱动全部决策，再推进场景，被摧毁的无人机在步长结束时移除
func (s *Simulation) Step(ctx context.Context) StepReport {
	s.clock = s.clock.Next(s.cfg.FixedStep, true)
	r := s.driver.FixedUpdate(ctx, s.clock)

	destroyed := s.world.Step(tick.NewContext(ctx, s.clock), s.clock.Now, s.cfg.FixedStep)
	for _, id := range destroyed {
		s.driver.Remove(id)
		s.logger.InfoContext(tick.NewContext(ctx, s.clock), "drone destroyed", "id", id.String())
	}

	if n := s.cfg.ReportEvery; n > 0 && s.clock.Seq%n == 0 {
		s.report(ctx)
	}
	return StepReport{Tick: s.clock.Seq, Evaluated: r.Evaluated, Faults: r.Faults, Destroyed: destroyed}
}

// Frame 在两个固定步长之间执行一次帧更新，不推进模拟时钟
func (s *Simulation) Frame(ctx context.Context) agent.Report {
	info := s.clock
	info.Delta = s.cfg.FrameInterval
	info.Fixed = false
	return s.driver.Update(ctx, info)
}

func (s *Simulation) report(ctx context.Context) {
	teams := make(map[string]int)
	for _, b := range s.world.Bodies() {
		teams[b.Team().String()]++
	}
	s.logger.InfoContext(tick.NewContext(ctx, s.clock), "simulation status",
		"agents", s.driver.Len(),
		"red", teams["red"],
		"blue", teams["blue"],
		"neutral", teams["neutral"],
	)
}

// Start 启动模拟循环，立即返回
func (s *Simulation) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.loop = conc.Go(func() (struct{}, error) {
		s.run(ctx)
		return struct{}{}, nil
	})
	s.logger.Info("simulation started",
		"agents", s.driver.Len(),
		"fixed_step", s.cfg.FixedStep.String(),
		"frame_updates", s.cfg.FrameUpdates,
	)
	return nil
}

func (s *Simulation) run(ctx context.Context) {
	fixed := time.NewTicker(s.cfg.FixedStep)
	defer fixed.Stop()

	var frames <-chan time.Time
	if s.cfg.FrameUpdates && s.cfg.FrameInterval > 0 {
		ft := time.NewTicker(s.cfg.FrameInterval)
		defer ft.Stop()
		frames = ft.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-fixed.C:
			s.Step(ctx)
		case <-frames:
			s.Frame(ctx)
		}
	}
}

// Stop 停止模拟循环并等待其退出
func (s *Simulation) Stop() error {
	s.mu.Lock()
	cancel, loop := s.cancel, s.loop
	s.mu.Unlock()
	if cancel == nil {
		return ErrNotStarted
	}

	cancel()
	_, err := loop.Await()
	s.logger.Info("simulation stopped", "tick", s.clock.Seq)
	return err
}

// Driver 决策驱动器
func (s *Simulation) Driver() *agent.Driver {
	return s.driver
}

// World 内存场景
func (s *Simulation) World() *arena.World {
	return s.world
}

// Clock 当前模拟时钟
func (s *Simulation) Clock() tick.Info {
	return s.clock
}

// Config 生效的配置
func (s *Simulation) Config() *Config {
	return s.cfg
}
