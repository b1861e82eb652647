package behavior

import (
	"github.com/lk2023060901/dronecore/pkg/blackboard"
	"github.com/lk2023060901/dronecore/pkg/entity"
)

// 行为之间共享的黑板键
var (
	// AttackTarget 当前攻击目标
	AttackTarget = blackboard.NewKey[entity.TransformHandle]("attack_target")
	// ThreatSource 正在躲避的威胁
	ThreatSource = blackboard.NewKey[entity.TransformHandle]("threat_source")
	// ThreatLevel 威胁的等级
	ThreatLevel = blackboard.NewKey[float64]("threat_level")
	// Team 自身阵营
	Team = blackboard.NewKey[entity.Team]("team")
)
