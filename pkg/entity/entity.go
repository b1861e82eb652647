// Package entity 定义决策层与外部系统之间传递的对象句柄
package entity

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrUnknownTeam 无法识别的阵营名
var ErrUnknownTeam = errors.New("entity: unknown team")

// ID 场景内对象的唯一标识，0 表示无效
type ID uint64

// None 无效 ID
const None ID = 0

func (id ID) Valid() bool { return id != None }

func (id ID) String() string { return strconv.FormatUint(uint64(id), 10) }

// TransformHandle 指向某个对象位置/朝向的句柄，由外部系统解析
type TransformHandle ID

func (h TransformHandle) ID() ID { return ID(h) }

func (h TransformHandle) Valid() bool { return ID(h).Valid() }

// TargetHandle 攻击目标句柄，交给瞄准/开火子系统
type TargetHandle ID

func (h TargetHandle) ID() ID { return ID(h) }

func (h TargetHandle) Valid() bool { return ID(h).Valid() }

// Team 阵营
type Team uint8

const (
	TeamNone Team = iota
	TeamRed
	TeamBlue
	TeamNeutral // 敌视所有阵营的野怪
)

func (t Team) String() string {
	switch t {
	case TeamRed:
		return "red"
	case TeamBlue:
		return "blue"
	case TeamNeutral:
		return "neutral"
	default:
		return "none"
	}
}

// ParseTeam 解析配置中的阵营名，不区分大小写，未知名称返回 TeamNone
func ParseTeam(s string) Team {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "red":
		return TeamRed
	case "blue":
		return TeamBlue
	case "neutral":
		return TeamNeutral
	default:
		return TeamNone
	}
}

func (t Team) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText 配置解析时使用，只接受具体阵营
func (t *Team) UnmarshalText(text []byte) error {
	team := ParseTeam(string(text))
	if team == TeamNone {
		return errors.Wrapf(ErrUnknownTeam, "%q", text)
	}
	*t = team
	return nil
}

// Hostile 判断两个阵营是否敌对；同阵营友好，中立阵营与其他任何阵营敌对
func Hostile(a, b Team) bool {
	if a == TeamNone || b == TeamNone || a == b {
		return false
	}
	if a == TeamNeutral || b == TeamNeutral {
		return true
	}
	return a != b
}
