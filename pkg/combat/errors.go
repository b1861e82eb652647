package combat

import "github.com/cockroachdb/errors"

var (
	// ErrUnknownTarget 目标未注册或已被摧毁
	ErrUnknownTarget = errors.New("combat: unknown target")
	// ErrInvalidDamage 伤害值不合法
	ErrInvalidDamage = errors.New("combat: invalid damage")
	// ErrDuplicateTarget 重复注册
	ErrDuplicateTarget = errors.New("combat: duplicate target")
)
