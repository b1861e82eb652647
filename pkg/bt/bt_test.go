package bt

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/dronecore/pkg/blackboard"
	"github.com/lk2023060901/dronecore/pkg/predicate"
	"github.com/lk2023060901/dronecore/pkg/tick"
)

// scripted 按脚本依次返回状态，脚本用完后重复最后一个
type scripted struct {
	BaseNode
	script []Status
	calls  int
	resets int
}

func newScripted(name string, script ...Status) *scripted {
	return &scripted{BaseNode: BaseNode{name: name}, script: script}
}

func (s *scripted) Tick(context.Context, *blackboard.Blackboard) Status {
	i := s.calls
	if i >= len(s.script) {
		i = len(s.script) - 1
	}
	s.calls++
	return s.script[i]
}

func (s *scripted) Reset() { s.resets++ }

func tickOnce(n Node) Status {
	return n.Tick(context.Background(), blackboard.New())
}

func TestSequence_StopsAtFailure(t *testing.T) {
	a := newScripted("a", StatusSuccess)
	b := newScripted("b", StatusSuccess)
	c := newScripted("c", StatusFailure)
	d := newScripted("d", StatusSuccess)
	seq := NewSequence("seq", a, b, c, d)

	assert.Equal(t, StatusFailure, tickOnce(seq))
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
	assert.Equal(t, 1, c.calls)
	assert.Zero(t, d.calls, "children after the failing one must not run")
}

func TestSequence_SingleStep(t *testing.T) {
	a := newScripted("a", StatusSuccess)
	b := newScripted("b", StatusSuccess)
	seq := NewSequence("seq", a, b).WithProcessMultiple(false)

	assert.Equal(t, StatusRunning, tickOnce(seq))
	assert.Equal(t, 0, b.calls)
	assert.Equal(t, StatusSuccess, tickOnce(seq))
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
}

func TestSelector_ResumesRunningChild(t *testing.T) {
	a := newScripted("a", StatusFailure)
	b := newScripted("b", StatusRunning, StatusSuccess)
	sel := NewSelector("sel", a, b)

	assert.Equal(t, StatusRunning, tickOnce(sel))
	assert.Equal(t, 1, sel.current)

	assert.Equal(t, StatusSuccess, tickOnce(sel))
	assert.Equal(t, 1, a.calls, "running child is resumed, earlier children are skipped")
	assert.Equal(t, 2, b.calls)
	assert.Equal(t, 0, sel.current, "completed selector resets")
}

func TestEmptyComposites(t *testing.T) {
	assert.Equal(t, StatusSuccess, tickOnce(NewSequence("s")))
	assert.Equal(t, StatusFailure, tickOnce(NewSelector("s")))
	assert.Equal(t, StatusSuccess, tickOnce(NewParallel("p", PolicySuccessOnOne)))
}

func TestParallel(t *testing.T) {
	t.Run("success on one", func(t *testing.T) {
		a := newScripted("a", StatusRunning)
		b := newScripted("b", StatusFailure)
		c := newScripted("c", StatusRunning, StatusSuccess)
		p := NewParallel("p", PolicySuccessOnOne, a, b, c)

		assert.Equal(t, StatusRunning, tickOnce(p))
		assert.Equal(t, StatusSuccess, tickOnce(p))
		assert.Equal(t, 2, a.calls)
		assert.Equal(t, 2, b.calls, "finished children are ticked again on every invocation")
		assert.Equal(t, 2, c.calls)
		assert.Equal(t, 1, a.resets, "still running children are reset on termination")
	})

	t.Run("success on all needs every child", func(t *testing.T) {
		a := newScripted("a", StatusSuccess)
		b := newScripted("b", StatusRunning, StatusRunning, StatusSuccess)
		p := NewParallel("p", PolicySuccessOnAll, a, b)

		assert.Equal(t, StatusRunning, tickOnce(p))
		assert.Equal(t, StatusRunning, tickOnce(p))
		assert.Equal(t, StatusSuccess, tickOnce(p))
		assert.Equal(t, 3, a.calls, "a succeeded on the first tick and keeps being ticked")
		assert.Equal(t, 3, b.calls)
	})

	t.Run("every child is ticked once per invocation", func(t *testing.T) {
		move := newScripted("move", StatusSuccess)
		aim := newScripted("aim", StatusRunning)
		p := NewParallel("p", PolicySuccessOnAll, move, aim)

		for i := 1; i <= 4; i++ {
			assert.Equal(t, StatusRunning, tickOnce(p))
			assert.Equal(t, i, move.calls)
			assert.Equal(t, i, aim.calls)
		}
	})

	t.Run("success on all fails when an earlier success turns into failure", func(t *testing.T) {
		a := newScripted("a", StatusSuccess, StatusFailure)
		b := newScripted("b", StatusRunning)
		p := NewParallel("p", PolicySuccessOnAll, a, b)

		assert.Equal(t, StatusRunning, tickOnce(p))
		assert.Equal(t, StatusFailure, tickOnce(p))
		assert.Equal(t, 1, b.resets)
	})

	t.Run("success on all fails on first failure", func(t *testing.T) {
		a := newScripted("a", StatusRunning)
		b := newScripted("b", StatusFailure)
		c := newScripted("c", StatusSuccess)
		p := NewParallel("p", PolicySuccessOnAll, a, b, c)

		assert.Equal(t, StatusFailure, tickOnce(p))
		assert.Equal(t, 1, c.calls, "every child is ticked even after a decisive result")
	})

	t.Run("success on one fails when all fail", func(t *testing.T) {
		p := NewParallel("p", PolicySuccessOnOne,
			newScripted("a", StatusFailure),
			newScripted("b", StatusRunning, StatusFailure))

		assert.Equal(t, StatusRunning, tickOnce(p))
		assert.Equal(t, StatusFailure, tickOnce(p))
	})
}

func names(p *PrioritySelector) []string {
	var out []string
	for _, c := range p.Children() {
		out = append(out, c.Name())
	}
	return out
}

func TestPrioritySelector(t *testing.T) {
	t.Run("orders by descending priority, stable on ties", func(t *testing.T) {
		p := NewPrioritySelector("ps",
			Prioritized(1, newScripted("low", StatusFailure)),
			Prioritized(5, newScripted("high", StatusFailure)),
			Prioritized(1, newScripted("low2", StatusFailure)),
			Prioritized(3, newScripted("mid", StatusFailure)),
		)
		assert.Equal(t, []string{"high", "mid", "low", "low2"}, names(p))
	})

	t.Run("resorts after a completed run", func(t *testing.T) {
		a := newScripted("a", StatusFailure)
		b := newScripted("b", StatusSuccess)
		p := NewPrioritySelector("ps", Prioritized(2, a), Prioritized(1, b)).WithSortOnReset(true)

		require.True(t, p.SetPriority("b", 10))
		assert.Equal(t, []string{"a", "b"}, names(p), "priority change applies on the next sort")
		assert.Equal(t, 10, p.Entries()[1].Priority)

		assert.Equal(t, StatusSuccess, tickOnce(p))
		assert.Equal(t, []string{"b", "a"}, names(p))

		assert.Equal(t, StatusSuccess, tickOnce(p))
		assert.Equal(t, 1, a.calls, "b now runs first and succeeds")
	})

	t.Run("keeps order without sortOnReset", func(t *testing.T) {
		p := NewPrioritySelector("ps",
			Prioritized(2, newScripted("a", StatusFailure)),
			Prioritized(1, newScripted("b", StatusSuccess)))
		p.SetPriority("b", 10)
		tickOnce(p)
		assert.Equal(t, []string{"a", "b"}, names(p))
		assert.False(t, p.SetPriority("missing", 1))
	})
}

func TestRandomSelector_Deterministic(t *testing.T) {
	build := func() (*RandomSelector, []*scripted) {
		kids := []*scripted{
			newScripted("a", StatusFailure),
			newScripted("b", StatusFailure),
			newScripted("c", StatusFailure),
		}
		return NewRandomSelector("rs", rand.New(rand.NewPCG(7, 11)), kids[0], kids[1], kids[2]), kids
	}
	r1, k1 := build()
	r2, _ := build()

	var o1, o2 []string
	for _, c := range r1.Children() {
		o1 = append(o1, c.Name())
	}
	for _, c := range r2.Children() {
		o2 = append(o2, c.Name())
	}
	assert.Equal(t, o1, o2)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, o1)

	assert.Equal(t, StatusFailure, tickOnce(r1))
	for _, k := range k1 {
		assert.Equal(t, 1, k.calls)
	}
}

func TestLeaves(t *testing.T) {
	bb := blackboard.New()
	key := blackboard.NewKey[bool]("flag")

	cond := NewCondition("flag", func(_ context.Context, bb *blackboard.Blackboard) bool {
		v, _ := blackboard.Get(bb, key)
		return v
	})
	assert.Equal(t, StatusFailure, cond.Tick(context.Background(), bb))
	blackboard.Set(bb, key, true)
	assert.Equal(t, StatusSuccess, cond.Tick(context.Background(), bb))

	bad := NewAction("bad", func(context.Context, *blackboard.Blackboard) Status { return StatusInvalid })
	assert.Equal(t, StatusFailure, bad.Tick(context.Background(), bb))

	never := NewCondition("never", FromPredicate(predicate.Never()))
	assert.Equal(t, StatusFailure, never.Tick(context.Background(), bb))
}

func TestDecorators(t *testing.T) {
	t.Run("inverter", func(t *testing.T) {
		assert.Equal(t, StatusFailure, tickOnce(NewInverter("i", newScripted("a", StatusSuccess))))
		assert.Equal(t, StatusSuccess, tickOnce(NewInverter("i", newScripted("a", StatusFailure))))
		assert.Equal(t, StatusRunning, tickOnce(NewInverter("i", newScripted("a", StatusRunning))))
	})

	t.Run("repeater", func(t *testing.T) {
		r := NewRepeater("r", 2, newScripted("a", StatusSuccess))
		assert.Equal(t, StatusRunning, tickOnce(r))
		assert.Equal(t, StatusSuccess, tickOnce(r))
		assert.Zero(t, r.Count())
	})

	t.Run("until success", func(t *testing.T) {
		u := NewUntilSuccess("u", newScripted("a", StatusFailure, StatusFailure, StatusSuccess))
		assert.Equal(t, StatusRunning, tickOnce(u))
		assert.Equal(t, StatusRunning, tickOnce(u))
		assert.Equal(t, StatusSuccess, tickOnce(u))
	})

	t.Run("until failure", func(t *testing.T) {
		u := NewUntilFailure("u", newScripted("a", StatusSuccess, StatusFailure))
		assert.Equal(t, StatusRunning, tickOnce(u))
		assert.Equal(t, StatusSuccess, tickOnce(u))
	})
}

func TestTimedDecorators_UseTickClock(t *testing.T) {
	start := time.Unix(1000, 0)
	info := tick.Info{Now: start}
	at := func(d time.Duration) context.Context {
		i := info
		i.Now = start.Add(d)
		return tick.NewContext(context.Background(), i)
	}
	bb := blackboard.New()

	t.Run("delay", func(t *testing.T) {
		child := newScripted("a", StatusSuccess)
		d := NewDelay("d", time.Second, child)
		assert.Equal(t, StatusRunning, d.Tick(at(0), bb))
		assert.Equal(t, StatusRunning, d.Tick(at(500*time.Millisecond), bb))
		assert.Zero(t, child.calls)
		assert.Equal(t, StatusSuccess, d.Tick(at(time.Second), bb))
		assert.Equal(t, 1, child.calls)
	})

	t.Run("timeout", func(t *testing.T) {
		child := newScripted("a", StatusRunning)
		to := NewTimeout("t", time.Second, child)
		assert.Equal(t, StatusRunning, to.Tick(at(0), bb))
		assert.Equal(t, StatusRunning, to.Tick(at(900*time.Millisecond), bb))
		assert.Equal(t, StatusFailure, to.Tick(at(time.Second), bb))
		assert.Equal(t, 1, child.resets, "child is aborted on timeout")
	})
}

func TestTree_Tick(t *testing.T) {
	var observed []Status
	root := NewSequence("root", newScripted("a", StatusRunning, StatusSuccess))
	tree := NewTree(root, nil, WithStatusObserver(func(s Status) { observed = append(observed, s) }))

	assert.Equal(t, StatusRunning, tree.Tick(context.Background()))
	assert.Equal(t, StatusSuccess, tree.Tick(context.Background()))
	assert.Equal(t, []Status{StatusSuccess}, observed)
	assert.Equal(t, uint64(2), tree.Ticks())
	assert.NotNil(t, tree.Blackboard())
	assert.Same(t, root, tree.Root())
}

func TestWalk(t *testing.T) {
	root := NewSelector("root",
		NewSequence("seq", newScripted("a", StatusSuccess), newScripted("b", StatusSuccess)),
		NewInverter("inv", newScripted("c", StatusSuccess)),
	)
	var visited []string
	Walk(root, func(n Node, depth int) bool {
		visited = append(visited, n.Name())
		return true
	})
	assert.Equal(t, []string{"root", "seq", "a", "b", "inv", "c"}, visited)
}

func TestStatus_String(t *testing.T) {
	tests := []struct {
		s    Status
		want string
	}{
		{StatusSuccess, "Success"},
		{StatusFailure, "Failure"},
		{StatusRunning, "Running"},
		{StatusInvalid, "Invalid"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.s.String())
	}
}
