package tunnel

import (
	"errors"
	"math"

	"github.com/soypat/geometry/md3"
)

// MeshParams are the tunnel parameters. The zero value is invalid.
type MeshParams struct {
	// PolygonRadius is the circumradius of the swept cross section.
	PolygonRadius float64
	// PolygonSides is the number of sides of the cross section, at least 3.
	PolygonSides int
	// NumPolygons is the amount of curve segments, at least 1. The tunnel
	// is made of NumPolygons+1 rings, the last one closing the loop.
	NumPolygons int
}

// Validate returns an error wrapping [ErrInvalidArgument] for every out of range field.
func (p MeshParams) Validate() error {
	var errs []error
	if p.PolygonSides < 3 {
		errs = append(errs, argErrorf("polygon requires at least 3 sides, got %d", p.PolygonSides))
	}
	if !isFinite(p.PolygonRadius) || p.PolygonRadius <= 0 {
		errs = append(errs, argErrorf("polygon radius must be finite and positive, got %v", p.PolygonRadius))
	}
	if p.NumPolygons < 1 {
		errs = append(errs, argErrorf("need at least one polygon segment, got %d", p.NumPolygons))
	}
	return errors.Join(errs...)
}

// Rings returns the number of rings generated, NumPolygons+1.
func (p MeshParams) Rings() int { return p.NumPolygons + 1 }

// Vertex is a tunnel vertex with an RGBA color.
type Vertex struct {
	Pos   [3]float32
	Color [4]float32
}

// Mesh is an indexed tunnel mesh. The three index buffers share the vertex
// buffer so each overlay can be toggled independently.
type Mesh struct {
	Vertices []Vertex
	// Triangles holds 3 indices per triangle.
	Triangles []uint32
	// LongLines holds 2 indices per segment running along the curve.
	LongLines []uint32
	// LatLines holds 2 indices per segment around each ring.
	LatLines []uint32
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int { return len(m.Vertices) }

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int { return len(m.Triangles) / 3 }

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool { return len(m.Vertices) == 0 }

// Positions returns the vertex positions as flat x,y,z triples.
func (m *Mesh) Positions() []float32 {
	dst := make([]float32, 0, 3*len(m.Vertices))
	for _, v := range m.Vertices {
		dst = append(dst, v.Pos[:]...)
	}
	return dst
}

// Colors returns the vertex colors as flat r,g,b,a quadruples.
func (m *Mesh) Colors() []float32 {
	dst := make([]float32, 0, 4*len(m.Vertices))
	for _, v := range m.Vertices {
		dst = append(dst, v.Color[:]...)
	}
	return dst
}

// RingColor returns the color of ring i out of n segments. The phase
// δ = 2π·i/n drives r = 0.5+0.5·sin δ, g = 0.35+0.35·cos 3δ and
// b = 0.75+0.25·sin 4δ. Ring n is the closing ring and returns exactly
// the color of ring 0.
func RingColor(i, n int) [4]float32 {
	if n <= 0 || i == n {
		i, n = 0, 1
	}
	delta := float32(i) / float32(n) * 2 * math.Pi
	d := float64(delta)
	return [4]float32{
		0.5 + 0.5*float32(math.Sin(d)),
		0.35 + 0.35*float32(math.Cos(3*d)),
		0.75 + 0.25*float32(math.Sin(4*d)),
		ringAlpha,
	}
}

// ringParam returns the curve parameter of ring i out of n segments.
func ringParam(i, n int) float64 {
	return tau * float64(i) / float64(n)
}

// sweep validates p and returns the rings of the tunnel, ring-major.
func sweep(s Sweeper, p MeshParams) ([]md3.Vec, error) {
	if s == nil {
		return nil, argErrorf("nil curve")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	poly, err := NewPolygon(p.PolygonRadius, p.PolygonSides)
	if err != nil {
		return nil, err
	}
	n := p.NumPolygons
	rings := make([]md3.Vec, 0, p.Rings()*p.PolygonSides)
	for i := 0; i <= n; i++ {
		rings = poly.appendTransform(rings, s.TransformMatrix(ringParam(i, n)))
	}
	return rings, nil
}

// GenerateMesh sweeps a regular polygon along s and returns the indexed tunnel mesh
// with (NumPolygons+1)·PolygonSides vertices.
func GenerateMesh(s Sweeper, p MeshParams) (Mesh, error) {
	rings, err := sweep(s, p)
	if err != nil {
		return Mesh{}, err
	}
	n, sides := p.NumPolygons, p.PolygonSides
	vertices := make([]Vertex, 0, len(rings))
	first := RingColor(0, n)
	for i := 0; i <= n; i++ {
		color := first
		if i != n {
			color = RingColor(i, n)
		}
		for _, v := range rings[i*sides : (i+1)*sides] {
			vertices = append(vertices, Vertex{
				Pos:   [3]float32{float32(v.X), float32(v.Y), float32(v.Z)},
				Color: color,
			})
		}
	}
	idx := func(ring, side int) uint32 {
		return uint32(ring*sides + side)
	}

	triangles := make([]uint32, 0, 6*n*sides)
	for i := 0; i < n; i++ {
		for j := 0; j < sides; j++ {
			next := (j + 1) % sides
			a, b := idx(i, j), idx(i+1, j)
			c, d := idx(i, next), idx(i+1, next)
			triangles = append(triangles, a, b, c, b, d, c)
		}
	}

	longLines := make([]uint32, 0, 2*n*sides)
	for j := 0; j < sides; j++ {
		for i := 0; i < n; i++ {
			longLines = append(longLines, idx(i, j), idx(i+1, j))
		}
	}

	latLines := make([]uint32, 0, 2*(n+1)*sides)
	for i := 0; i <= n; i++ {
		for j := 0; j < sides; j++ {
			latLines = append(latLines, idx(i, j), idx(i, (j+1)%sides))
		}
	}
	return Mesh{
		Vertices:  vertices,
		Triangles: triangles,
		LongLines: longLines,
		LatLines:  latLines,
	}, nil
}
