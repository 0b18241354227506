package tunnel

import (
	"math"

	"github.com/soypat/geometry/md3"
)

// Polygon is a regular polygon centered at the origin of its local XY plane.
// It is the cross section swept along a curve.
type Polygon struct {
	radius   float64
	vertices []md3.Vec
}

// NewPolygon creates a regular polygon of circumradius radius with sides vertices
// placed counter-clockwise at angles 2π·i/sides.
func NewPolygon(radius float64, sides int) (Polygon, error) {
	if sides < 3 {
		return Polygon{}, argErrorf("polygon requires at least 3 sides, got %d", sides)
	}
	if !isFinite(radius) || radius <= 0 {
		return Polygon{}, argErrorf("polygon radius must be finite and positive, got %v", radius)
	}
	verts := make([]md3.Vec, sides)
	step := tau / float64(sides)
	for i := range verts {
		sin, cos := math.Sincos(float64(i) * step)
		verts[i] = md3.Vec{X: radius * cos, Y: radius * sin}
	}
	return Polygon{radius: radius, vertices: verts}, nil
}

// Sides returns the number of vertices of the polygon.
func (p Polygon) Sides() int { return len(p.vertices) }

// Radius returns the circumradius.
func (p Polygon) Radius() float64 { return p.radius }

// Vertices returns a copy of the local plane vertices.
func (p Polygon) Vertices() []md3.Vec {
	return append([]md3.Vec{}, p.vertices...)
}

// Transform maps every vertex through m and returns the resulting ring.
// The polygon itself is not modified.
func (p Polygon) Transform(m Mat4) []md3.Vec {
	return p.appendTransform(make([]md3.Vec, 0, len(p.vertices)), m)
}

func (p Polygon) appendTransform(dst []md3.Vec, m Mat4) []md3.Vec {
	for _, v := range p.vertices {
		dst = append(dst, m.Transform(v))
	}
	return dst
}

// LineVertices returns the polygon outline transformed by m as a flat
// list of line segments: each edge contributes its two endpoints as x,y,z
// triples, the last edge closes back to the first vertex.
func (p Polygon) LineVertices(m Mat4) []float32 {
	ring := p.Transform(m)
	dst := make([]float32, 0, 6*len(ring))
	for i, v := range ring {
		next := ring[(i+1)%len(ring)]
		dst = appendVec32(dst, v)
		dst = appendVec32(dst, next)
	}
	return dst
}
