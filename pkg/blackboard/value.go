package blackboard

import (
	"fmt"
	"strconv"

	"github.com/lk2023060901/dronecore/pkg/entity"
)

// Kind 黑板值的种类，集合封闭
type Kind uint8

const (
	KindNone Kind = iota
	KindTransform
	KindNumber
	KindTeam
	KindBool
	KindTarget
)

func (k Kind) String() string {
	switch k {
	case KindTransform:
		return "transform"
	case KindNumber:
		return "number"
	case KindTeam:
		return "team"
	case KindBool:
		return "bool"
	case KindTarget:
		return "target"
	default:
		return "none"
	}
}

// Value 带标签的黑板值，零值即 none
type Value struct {
	kind Kind
	id   entity.ID
	num  float64
	team entity.Team
	flag bool
}

// None 清空用的哨兵值
func None() Value { return Value{} }

func Transform(h entity.TransformHandle) Value {
	return Value{kind: KindTransform, id: h.ID()}
}

func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

func Team(t entity.Team) Value {
	return Value{kind: KindTeam, team: t}
}

func Bool(b bool) Value {
	return Value{kind: KindBool, flag: b}
}

func Target(h entity.TargetHandle) Value {
	return Value{kind: KindTarget, id: h.ID()}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNone() bool { return v.kind == KindNone }

func (v Value) AsTransform() (entity.TransformHandle, bool) {
	return entity.TransformHandle(v.id), v.kind == KindTransform
}

func (v Value) AsNumber() (float64, bool) {
	return v.num, v.kind == KindNumber
}

func (v Value) AsTeam() (entity.Team, bool) {
	return v.team, v.kind == KindTeam
}

func (v Value) AsBool() (bool, bool) {
	return v.flag, v.kind == KindBool
}

func (v Value) AsTarget() (entity.TargetHandle, bool) {
	return entity.TargetHandle(v.id), v.kind == KindTarget
}

func (v Value) String() string {
	switch v.kind {
	case KindTransform:
		return "transform(" + v.id.String() + ")"
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindTeam:
		return v.team.String()
	case KindBool:
		return strconv.FormatBool(v.flag)
	case KindTarget:
		return "target(" + v.id.String() + ")"
	default:
		return "none"
	}
}

// Storable 可存入黑板的 Go 类型
type Storable interface {
	entity.TransformHandle | float64 | entity.Team | bool | entity.TargetHandle
}

func valueOf[T Storable](v T) Value {
	switch x := any(v).(type) {
	case entity.TransformHandle:
		return Transform(x)
	case float64:
		return Number(x)
	case entity.Team:
		return Team(x)
	case bool:
		return Bool(x)
	case entity.TargetHandle:
		return Target(x)
	default:
		panic(fmt.Sprintf("blackboard: unsupported type %T", v))
	}
}

func extract[T Storable](v Value) (T, bool) {
	var out T
	ok := false
	switch p := any(&out).(type) {
	case *entity.TransformHandle:
		*p, ok = v.AsTransform()
	case *float64:
		*p, ok = v.AsNumber()
	case *entity.Team:
		*p, ok = v.AsTeam()
	case *bool:
		*p, ok = v.AsBool()
	case *entity.TargetHandle:
		*p, ok = v.AsTarget()
	}
	if !ok {
		var zero T
		return zero, false
	}
	return out, true
}

func kindOf[T Storable]() Kind {
	var zero T
	return valueOf(zero).kind
}
