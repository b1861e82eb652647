package fsm

import "github.com/lk2023060901/dronecore/pkg/predicate"

// StateID 状态标识，同一个图内唯一
type StateID string

// State 由四个生命周期钩子组成的状态，钩子均可为 nil
// C 是驱动方每次调用时传入的上下文，状态本身不持有所属状态机
type State[C any] struct {
	ID          StateID
	OnEnter     func(ctx C)
	OnExit      func(ctx C)
	Update      func(ctx C)
	FixedUpdate func(ctx C)
}

// Transition 带条件的有向边，From 为空表示 any 转移
type Transition struct {
	From      StateID
	To        StateID
	Condition predicate.Predicate
}

type node[C any] struct {
	state       State[C]
	transitions []Transition
}
