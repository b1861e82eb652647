// Package agent 驱动所有 agent 的决策引擎：每个 tick 按 ID 顺序逐个执行，
// 单个 agent 的 panic 或错误被隔离在该 agent 内
package agent

import (
	"github.com/lk2023060901/dronecore/pkg/blackboard"
	"github.com/lk2023060901/dronecore/pkg/entity"
	"github.com/lk2023060901/dronecore/pkg/logger"
)

// Agent 一架受决策引擎驱动的无人机
type Agent struct {
	id     entity.ID
	team   entity.Team
	brain  Brain
	bb     *blackboard.Blackboard
	logger logger.Logger
	faults int
}

// New 创建 agent，bb 为 nil 时新建空黑板
func New(id entity.ID, team entity.Team, brain Brain, bb *blackboard.Blackboard) *Agent {
	if bb == nil {
		bb = blackboard.New()
	}
	return &Agent{id: id, team: team, brain: brain, bb: bb, logger: logger.NewNoop()}
}

func (a *Agent) ID() entity.ID { return a.id }

func (a *Agent) Team() entity.Team { return a.team }

func (a *Agent) Brain() Brain { return a.brain }

func (a *Agent) Blackboard() *blackboard.Blackboard { return a.bb }

// Logger 带 agent 与阵营字段的日志，加入 Driver 后派生自 Driver 的日志
func (a *Agent) Logger() logger.Logger { return a.logger }

// Faults 累计故障次数
func (a *Agent) Faults() int { return a.faults }
