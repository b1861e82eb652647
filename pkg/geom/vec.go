// Package geom 提供决策层使用的最小向量运算
package geom

import "math"

// Vec3 三维向量，Y 轴朝上，水平面为 XZ
type Vec3 struct {
	X, Y, Z float64
}

// Zero 零向量
var Zero = Vec3{}

func V(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) LenSq() float64 { return v.Dot(v) }

func (v Vec3) Len() float64 { return math.Sqrt(v.LenSq()) }

// Normalize 返回单位向量；长度过小时返回零向量
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l < 1e-9 {
		return Zero
	}
	return v.Scale(1 / l)
}

// Horizontal 投影到水平面
func (v Vec3) Horizontal() Vec3 { return Vec3{X: v.X, Z: v.Z} }

// Heading 水平面上的单位方向
func (v Vec3) Heading() Vec3 { return v.Horizontal().Normalize() }

func (v Vec3) IsZero() bool { return v == Zero }

// Dist 两点距离
func Dist(a, b Vec3) float64 { return a.Sub(b).Len() }

// HorizontalDist 两点在水平面上的距离
func HorizontalDist(a, b Vec3) float64 { return a.Sub(b).Horizontal().Len() }

// FromAngle 水平面上角度 rad 对应的单位向量，0 指向 +X
func FromAngle(rad float64) Vec3 {
	return Vec3{X: math.Cos(rad), Z: math.Sin(rad)}
}
