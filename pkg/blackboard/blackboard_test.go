package blackboard

import (
	"testing"

	"github.com/lk2023060901/dronecore/pkg/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	targetKey = NewKey[entity.TransformHandle]("target")
	rangeKey  = NewKey[float64]("range")
	teamKey   = NewKey[entity.Team]("team")
	alertKey  = NewKey[bool]("alert")
	aimKey    = NewKey[entity.TargetHandle]("aim")
)

func TestGet_Unset(t *testing.T) {
	bb := New()

	_, ok := Get(bb, targetKey)
	assert.False(t, ok)

	// 未设置的 bool 不应被误读为 false
	v, ok := Get(bb, alertKey)
	assert.False(t, ok)
	assert.False(t, v)
}

func TestSetGet_PersistsUntilOverwritten(t *testing.T) {
	bb := New()
	transformA := entity.TransformHandle(11)

	Set(bb, targetKey, transformA)
	for tick := 0; tick < 3; tick++ {
		got, ok := Get(bb, targetKey)
		require.True(t, ok)
		assert.Equal(t, transformA, got)
	}

	Set(bb, targetKey, entity.TransformHandle(12))
	got, ok := Get(bb, targetKey)
	require.True(t, ok)
	assert.Equal(t, entity.TransformHandle(12), got)
}

func TestAllKinds(t *testing.T) {
	bb := New()
	Set(bb, rangeKey, 7.5)
	Set(bb, teamKey, entity.TeamBlue)
	Set(bb, alertKey, false)
	Set(bb, aimKey, entity.TargetHandle(3))

	r, ok := Get(bb, rangeKey)
	assert.True(t, ok)
	assert.Equal(t, 7.5, r)

	team, ok := Get(bb, teamKey)
	assert.True(t, ok)
	assert.Equal(t, entity.TeamBlue, team)

	alert, ok := Get(bb, alertKey)
	assert.True(t, ok)
	assert.False(t, alert)

	aim, ok := Get(bb, aimKey)
	assert.True(t, ok)
	assert.Equal(t, entity.TargetHandle(3), aim)

	assert.Equal(t, []string{"aim", "alert", "range", "team"}, bb.Keys())
}

func TestClear(t *testing.T) {
	bb := New()
	Set(bb, targetKey, entity.TransformHandle(1))
	require.True(t, Has(bb, targetKey))

	Clear(bb, targetKey)
	assert.False(t, Has(bb, targetKey))
	_, ok := bb.Load("target")
	assert.False(t, ok)
	assert.Empty(t, bb.Keys())
}

func TestKindMismatchReadsAbsent(t *testing.T) {
	bb := New()
	numberUnderTarget := NewKey[float64]("target")

	Set(bb, targetKey, entity.TransformHandle(5))
	_, ok := Get(bb, numberUnderTarget)
	assert.False(t, ok)

	// transform 与 target 句柄共享底层 ID，但种类不同
	sameNameAim := NewKey[entity.TargetHandle]("target")
	_, ok = Get(bb, sameNameAim)
	assert.False(t, ok)
}

func TestValue(t *testing.T) {
	tests := []struct {
		value Value
		kind  Kind
		str   string
	}{
		{None(), KindNone, "none"},
		{Transform(4), KindTransform, "transform(4)"},
		{Number(1.5), KindNumber, "1.5"},
		{Team(entity.TeamRed), KindTeam, "red"},
		{Bool(true), KindBool, "true"},
		{Target(9), KindTarget, "target(9)"},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.value.Kind())
			assert.Equal(t, tt.str, tt.value.String())
		})
	}

	_, ok := Number(1).AsBool()
	assert.False(t, ok)
}

func TestKeyKind(t *testing.T) {
	assert.Equal(t, KindTransform, targetKey.Kind())
	assert.Equal(t, KindNumber, rangeKey.Kind())
	assert.Equal(t, KindTeam, teamKey.Kind())
	assert.Equal(t, KindBool, alertKey.Kind())
	assert.Equal(t, KindTarget, aimKey.Kind())
	assert.Equal(t, "range:number", rangeKey.String())
	assert.Panics(t, func() { NewKey[bool]("") })
}

func TestStoreLoad(t *testing.T) {
	bb := New()
	bb.Store("speed", Number(3))
	v, ok := bb.Load("speed")
	require.True(t, ok)
	f, ok := v.AsNumber()
	assert.True(t, ok)
	assert.Equal(t, 3.0, f)

	bb.Store("speed", None())
	_, ok = bb.Load("speed")
	assert.False(t, ok)
}
