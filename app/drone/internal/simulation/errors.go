package simulation

import "github.com/cockroachdb/errors"

var (
	// ErrUnknownBehavior 引用了未定义的行为树
	ErrUnknownBehavior = errors.New("simulation: unknown behavior")
	// ErrAlreadyStarted 重复启动
	ErrAlreadyStarted = errors.New("simulation: already started")
	// ErrNotStarted 未启动
	ErrNotStarted = errors.New("simulation: not started")
)
