package tunnel

import (
	"math"

	"github.com/soypat/geometry/md3"
)

// Vec4 is a point or direction in 4-space.
type Vec4 struct {
	X, Y, Z, W float64
}

// Add returns p+q.
func (p Vec4) Add(q Vec4) Vec4 {
	return Vec4{X: p.X + q.X, Y: p.Y + q.Y, Z: p.Z + q.Z, W: p.W + q.W}
}

// Sub returns p-q.
func (p Vec4) Sub(q Vec4) Vec4 {
	return Vec4{X: p.X - q.X, Y: p.Y - q.Y, Z: p.Z - q.Z, W: p.W - q.W}
}

// Scale returns k*p.
func (p Vec4) Scale(k float64) Vec4 {
	return Vec4{X: k * p.X, Y: k * p.Y, Z: k * p.Z, W: k * p.W}
}

// Dot returns the dot product p·q.
func (p Vec4) Dot(q Vec4) float64 {
	return p.X*q.X + p.Y*q.Y + p.Z*q.Z + p.W*q.W
}

// Norm returns the euclidean length of p.
func (p Vec4) Norm() float64 {
	return math.Sqrt(p.Dot(p))
}

// Unit returns p normalized. The zero vector is returned unchanged.
func (p Vec4) Unit() Vec4 {
	mag := p.Norm()
	if mag == 0 {
		return p
	}
	return p.Scale(1 / mag)
}

// XYZ drops the W component.
func (p Vec4) XYZ() md3.Vec {
	return md3.Vec{X: p.X, Y: p.Y, Z: p.Z}
}

// Project3D performs the stereographic projection of p onto 3-space
// from the pole w=1: (x,y,z)/(1-w). The result is infinite when W == 1,
// callers must keep W bounded away from 1.
func (p Vec4) Project3D() md3.Vec {
	scale := 1 / (1 - p.W)
	return md3.Scale(scale, p.XYZ())
}
