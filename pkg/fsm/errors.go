package fsm

import "github.com/cockroachdb/errors"

var (
	// ErrUnknownState 引用了未注册的状态
	ErrUnknownState = errors.New("fsm: unknown state")
	// ErrNoCurrentState 首次 SetState 之前调用了 Update/FixedUpdate
	ErrNoCurrentState = errors.New("fsm: no current state, call SetState first")
	// ErrInvalidState 状态定义不合法（如空 ID）
	ErrInvalidState = errors.New("fsm: invalid state")
	// ErrInvalidTransition 转移定义不合法（如缺少条件）
	ErrInvalidTransition = errors.New("fsm: invalid transition")
)
