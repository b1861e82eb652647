package agent

import "github.com/cockroachdb/errors"

var (
	// ErrDuplicateAgent ID 已存在
	ErrDuplicateAgent = errors.New("agent: duplicate agent id")
	// ErrInvalidAgent agent 缺少 ID 或决策
	ErrInvalidAgent = errors.New("agent: invalid agent")
	// ErrBrainPanic 决策执行中发生 panic
	ErrBrainPanic = errors.New("agent: brain panicked")
)
