package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec3_Arithmetic(t *testing.T) {
	a := V(1, 2, 3)
	b := V(4, 5, 6)

	assert.Equal(t, V(5, 7, 9), a.Add(b))
	assert.Equal(t, V(3, 3, 3), b.Sub(a))
	assert.Equal(t, V(2, 4, 6), a.Scale(2))
	assert.Equal(t, 32.0, a.Dot(b))
	assert.InDelta(t, math.Sqrt(14), a.Len(), 1e-9)
}

func TestVec3_Normalize(t *testing.T) {
	assert.Equal(t, Zero, Zero.Normalize())
	assert.InDelta(t, 1.0, V(3, 0, 4).Normalize().Len(), 1e-9)
}

func TestVec3_Heading(t *testing.T) {
	h := V(3, 10, 4).Heading()
	assert.Equal(t, 0.0, h.Y)
	assert.InDelta(t, 0.6, h.X, 1e-9)
	assert.InDelta(t, 0.8, h.Z, 1e-9)
	assert.True(t, V(0, 5, 0).Heading().IsZero())
}

func TestDistances(t *testing.T) {
	assert.InDelta(t, 5.0, Dist(V(0, 0, 0), V(3, 4, 0)), 1e-9)
	assert.InDelta(t, 5.0, HorizontalDist(V(0, 100, 0), V(3, 0, 4)), 1e-9)
}

func TestFromAngle(t *testing.T) {
	v := FromAngle(math.Pi / 2)
	assert.InDelta(t, 0.0, v.X, 1e-9)
	assert.InDelta(t, 1.0, v.Z, 1e-9)
}
