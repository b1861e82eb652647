// Package metrics 无人机模拟的 Prometheus 指标
package metrics

import (
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/dronecore/app/drone/internal/agent"
	"github.com/lk2023060901/dronecore/pkg/bt"
	"github.com/lk2023060901/dronecore/pkg/combat"
	"github.com/lk2023060901/dronecore/pkg/fsm"
	"github.com/lk2023060901/dronecore/pkg/prometheus"
)

var _ agent.Recorder = (*DroneMetrics)(nil)

// tick 耗时分桶，单位秒
var tickBuckets = []float64{.0001, .0005, .001, .0025, .005, .01, .025, .05, .1}

// DroneMetrics 模拟服务指标
type DroneMetrics struct {
	TickDuration *prometheus.HistogramVec // 一次驱动全部 agent 的耗时（按 fixed/frame）
	Agents       *prometheus.GaugeVec     // 当前受驱动的 agent 数

	Transitions *prometheus.CounterVec // 状态转移（按状态图、源状态、目标状态）
	TreeResults *prometheus.CounterVec // 行为树根节点结束（按树名、结果）
	Faults      *prometheus.CounterVec // agent 故障（按决策类型、原因）

	Damage       *prometheus.CounterVec // 造成的伤害总量（按来源阵营）
	Destructions *prometheus.CounterVec // 击毁数（按来源阵营）
}

// New 在 client 上注册全部指标
func New(c *prometheus.Client) (*DroneMetrics, error) {
	var (
		m   DroneMetrics
		err error
	)
	if m.TickDuration, err = c.NewHistogram("tick_duration_seconds", "驱动全部 agent 一次的耗时", []string{"kind"}, tickBuckets); err != nil {
		return nil, errors.Wrap(err, "metrics")
	}
	if m.Agents, err = c.NewGauge("agents", "当前受驱动的 agent 数", nil); err != nil {
		return nil, errors.Wrap(err, "metrics")
	}
	if m.Transitions, err = c.NewCounter("fsm_transitions_total", "状态机转移次数", []string{"graph", "from", "to"}); err != nil {
		return nil, errors.Wrap(err, "metrics")
	}
	if m.TreeResults, err = c.NewCounter("bt_results_total", "行为树根节点结束次数", []string{"tree", "status"}); err != nil {
		return nil, errors.Wrap(err, "metrics")
	}
	if m.Faults, err = c.NewCounter("agent_faults_total", "agent 决策故障次数", []string{"brain", "reason"}); err != nil {
		return nil, errors.Wrap(err, "metrics")
	}
	if m.Damage, err = c.NewCounter("damage_total", "造成的伤害总量", []string{"team"}); err != nil {
		return nil, errors.Wrap(err, "metrics")
	}
	if m.Destructions, err = c.NewCounter("destructions_total", "击毁数", []string{"team"}); err != nil {
		return nil, errors.Wrap(err, "metrics")
	}
	return &m, nil
}

func kindLabel(fixed bool) string {
	if fixed {
		return "fixed"
	}
	return "frame"
}

// ObserveTick 记录一次驱动
func (m *DroneMetrics) ObserveTick(fixed bool, agents int, elapsed time.Duration) {
	m.TickDuration.WithLabelValues(kindLabel(fixed)).Observe(elapsed.Seconds())
	m.Agents.WithLabelValues().Set(float64(agents))
}

// AgentFault 记录一次故障
func (m *DroneMetrics) AgentFault(brain, reason string) {
	m.Faults.WithLabelValues(brain, reason).Inc()
}

// FSMObserver 返回记录转移的状态机回调
func (m *DroneMetrics) FSMObserver(graph string) fsm.Observer {
	return func(from, to fsm.StateID) {
		m.Transitions.WithLabelValues(graph, string(from), string(to)).Inc()
	}
}

// TreeObserver 返回记录根节点结果的行为树回调
func (m *DroneMetrics) TreeObserver(tree string) func(bt.Status) {
	return func(s bt.Status) {
		m.TreeResults.WithLabelValues(tree, s.String()).Inc()
	}
}

// CombatObserver 返回记录伤害与击毁的结算回调
func (m *DroneMetrics) CombatObserver() combat.Observer {
	return func(o combat.Outcome) {
		team := o.Damage.SourceTeam.String()
		m.Damage.WithLabelValues(team).Add(o.Damage.Amount)
		if o.Destroyed {
			m.Destructions.WithLabelValues(team).Inc()
		}
	}
}
