package bt

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/dronecore/pkg/blackboard"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	require.NoError(t, reg.RegisterAction("succeed", func(context.Context, *blackboard.Blackboard) Status {
		return StatusSuccess
	}))
	require.NoError(t, reg.RegisterAction("fail", func(context.Context, *blackboard.Blackboard) Status {
		return StatusFailure
	}))
	require.NoError(t, reg.RegisterCondition("ready", func(context.Context, *blackboard.Blackboard) bool {
		return true
	}))
	return reg
}

const droneTree = `
type: priority_selector
name: root
sort_on_reset: true
children:
  - type: sequence
    name: flee
    priority: 10
    children:
      - type: condition
        condition: ready
      - type: action
        action: fail
  - type: action
    name: wander
    action: succeed
    priority: 1
  - type: timeout
    duration: 2s
    priority: 5
    children:
      - type: action
        action: fail
`

func TestBuild_FromYAML(t *testing.T) {
	def, err := ParseDefinitionYAML([]byte(droneTree))
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, def.Children[2].Duration)

	node, err := Build(def, testRegistry(t))
	require.NoError(t, err)

	ps, ok := node.(*PrioritySelector)
	require.True(t, ok)
	assert.Equal(t, []string{"flee", "timeout", "wander"}, names(ps))

	assert.Equal(t, StatusSuccess, tickOnce(node))
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name    string
		def     Definition
		wantErr error
		path    string
	}{
		{
			name:    "unknown kind",
			def:     Definition{Type: "loop"},
			wantErr: ErrUnknownNodeKind,
			path:    "root",
		},
		{
			name: "unknown action",
			def: Definition{Type: "selector", Children: []Definition{
				{Type: "action", Action: "succeed"},
				{Type: "action", Action: "teleport"},
			}},
			wantErr: ErrUnknownAction,
			path:    "root.children[1]",
		},
		{
			name: "unknown condition",
			def: Definition{Type: "sequence", Name: "s", Children: []Definition{
				{Type: "condition", Condition: "has_target"},
			}},
			wantErr: ErrUnknownCondition,
			path:    "root(s).children[0]",
		},
		{
			name:    "composite without children",
			def:     Definition{Type: "sequence"},
			wantErr: ErrInvalidDefinition,
		},
		{
			name: "decorator with two children",
			def: Definition{Type: "inverter", Children: []Definition{
				{Type: "action", Action: "succeed"},
				{Type: "action", Action: "succeed"},
			}},
			wantErr: ErrInvalidDefinition,
		},
		{
			name: "bad policy",
			def: Definition{Type: "parallel", Policy: "majority", Children: []Definition{
				{Type: "action", Action: "succeed"},
			}},
			wantErr: ErrInvalidDefinition,
		},
		{
			name: "leaf with children",
			def: Definition{Type: "action", Action: "succeed", Children: []Definition{
				{Type: "action", Action: "succeed"},
			}},
			wantErr: ErrInvalidDefinition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.def, testRegistry(t))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			if tt.path != "" {
				assert.Contains(t, err.Error(), tt.path)
			}
		})
	}
}

func TestBuild_Defaults(t *testing.T) {
	reg := testRegistry(t)
	off := false

	node, err := Build(Definition{Type: "sequence", ProcessMultiple: &off, Children: []Definition{
		{Type: "action", Action: "succeed"},
		{Type: "action", Action: "succeed"},
	}}, reg)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, tickOnce(node))

	node, err = Build(Definition{Type: "repeater", Children: []Definition{
		{Type: "action", Action: "succeed"},
	}}, reg)
	require.NoError(t, err)
	for range 5 {
		assert.Equal(t, StatusRunning, tickOnce(node), "count 0 repeats forever")
	}

	node, err = Build(Definition{Type: "parallel", Policy: "success_on_one", Children: []Definition{
		{Type: "action", Action: "fail"},
		{Type: "condition", Condition: "ready"},
	}}, reg)
	require.NoError(t, err)
	assert.Equal(t, PolicySuccessOnOne, node.(*Parallel).Policy())
	assert.Equal(t, StatusSuccess, tickOnce(node))
}

func TestRegistry_Duplicate(t *testing.T) {
	reg := testRegistry(t)
	err := reg.RegisterAction("succeed", func(context.Context, *blackboard.Blackboard) Status { return StatusSuccess })
	assert.True(t, errors.Is(err, ErrDuplicateName))
	err = reg.RegisterCondition("", nil)
	assert.True(t, errors.Is(err, ErrInvalidDefinition))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" Priority_Selector ")
	require.NoError(t, err)
	assert.Equal(t, KindPrioritySelector, k)

	_, err = ParseKind("")
	assert.True(t, errors.Is(err, ErrUnknownNodeKind))
}
