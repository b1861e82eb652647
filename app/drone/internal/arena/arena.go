// Package arena 定义决策层依赖的外部协作者接口，并提供一个内存实现供无头模拟使用
package arena

import (
	"sort"

	"github.com/lk2023060901/dronecore/pkg/entity"
	"github.com/lk2023060901/dronecore/pkg/geom"
)

// Object 探测器看到的对象快照
type Object struct {
	ID        entity.ID
	Transform entity.TransformHandle
	Team      entity.Team
	Level     int
	Position  geom.Vec3
	Distance  float64 // 到观察者的水平距离
}

// Navigator 移动执行器
type Navigator interface {
	// SetMovementDirection 设置期望朝向，实现方会压平到水平面并归一化
	SetMovementDirection(dir geom.Vec3)
	// FollowTarget 与目标保持 [minDistance, maxDistance] 的距离
	FollowTarget(target entity.TransformHandle, minDistance, maxDistance float64)
	StopFollowing()
	// Position 当前所在位置
	Position() geom.Vec3
}

// Detector 只读的探测查询，没有结果时 ok 为 false
type Detector interface {
	HighestThreat() (Object, bool)
	MostImportant() (Object, bool)
}

// TargetProvider 将选中的目标交给瞄准/开火子系统
type TargetProvider interface {
	SetTarget(target entity.TransformHandle)
	ClearTarget()
}

// byImportance 等级高者优先，其次距离近者，最后 ID 小者
func byImportance(objs []Object) {
	sort.SliceStable(objs, func(i, j int) bool {
		a, b := objs[i], objs[j]
		if a.Level != b.Level {
			return a.Level > b.Level
		}
		if a.Distance != b.Distance {
			return a.Distance < b.Distance
		}
		return a.ID < b.ID
	})
}

// SelectMostImportant 优先选择等级最高的敌对对象，没有敌对对象时选择最近的对象
func SelectMostImportant(self entity.Team, visible []Object) (Object, bool) {
	var hostile []Object
	for _, o := range visible {
		if entity.Hostile(self, o.Team) {
			hostile = append(hostile, o)
		}
	}
	if len(hostile) > 0 {
		byImportance(hostile)
		return hostile[0], true
	}
	return Nearest(visible)
}

// Nearest 距离最近的对象，距离相同取 ID 小者
func Nearest(visible []Object) (Object, bool) {
	if len(visible) == 0 {
		return Object{}, false
	}
	best := visible[0]
	for _, o := range visible[1:] {
		if o.Distance < best.Distance || (o.Distance == best.Distance && o.ID < best.ID) {
			best = o
		}
	}
	return best, true
}

// SelectHighestThreat 选择等级至少高出自身 gap 级的敌对对象中威胁最大者
func SelectHighestThreat(self entity.Team, selfLevel, gap int, visible []Object) (Object, bool) {
	var threats []Object
	for _, o := range visible {
		if entity.Hostile(self, o.Team) && o.Level-selfLevel >= gap {
			threats = append(threats, o)
		}
	}
	if len(threats) == 0 {
		return Object{}, false
	}
	byImportance(threats)
	return threats[0], true
}
