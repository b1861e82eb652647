package bt

import "github.com/cockroachdb/errors"

var (
	// ErrUnknownNodeKind 定义中的节点类型不存在
	ErrUnknownNodeKind = errors.New("bt: unknown node kind")
	// ErrUnknownAction 定义引用了未注册的动作
	ErrUnknownAction = errors.New("bt: unknown action")
	// ErrUnknownCondition 定义引用了未注册的条件
	ErrUnknownCondition = errors.New("bt: unknown condition")
	// ErrInvalidDefinition 定义结构不合法
	ErrInvalidDefinition = errors.New("bt: invalid definition")
	// ErrDuplicateName 动作或条件重复注册
	ErrDuplicateName = errors.New("bt: duplicate name")
)
