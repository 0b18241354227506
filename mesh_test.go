package tunnel_test

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/soypat/geometry/md3"
	"github.com/soypat/tunnel"
)

func TestGenerateMeshCounts(t *testing.T) {
	c := mustCurve3D(t, 2, 7, 5)
	for _, sides := range []int{3, 4, 7} {
		for _, n := range []int{1, 2, 10, 57} {
			p := tunnel.MeshParams{PolygonRadius: 1, PolygonSides: sides, NumPolygons: n}
			m, err := tunnel.GenerateMesh(c, p)
			if err != nil {
				t.Fatal(err)
			}
			if m.VertexCount() != (n+1)*sides {
				t.Errorf("sides=%d n=%d: want %d vertices, got %d", sides, n, (n+1)*sides, m.VertexCount())
			}
			if m.TriangleCount() != 2*n*sides {
				t.Errorf("want %d triangles, got %d", 2*n*sides, m.TriangleCount())
			}
			if len(m.LongLines) != 2*n*sides {
				t.Errorf("want %d longitude indices, got %d", 2*n*sides, len(m.LongLines))
			}
			if len(m.LatLines) != 2*(n+1)*sides {
				t.Errorf("want %d latitude indices, got %d", 2*(n+1)*sides, len(m.LatLines))
			}
			for name, buf := range map[string][]uint32{"triangles": m.Triangles, "long": m.LongLines, "lat": m.LatLines} {
				for _, idx := range buf {
					if int(idx) >= m.VertexCount() {
						t.Fatalf("%s index %d out of range %d", name, idx, m.VertexCount())
					}
				}
			}
			first := m.Vertices[0].Color
			last := m.Vertices[n*sides].Color
			if first != last {
				t.Errorf("closing ring color %v differs from first ring %v", last, first)
			}
			if len(m.Positions()) != 3*m.VertexCount() || len(m.Colors()) != 4*m.VertexCount() {
				t.Error("bad flat attribute lengths")
			}
		}
	}
}

func TestGenerateMeshTopology(t *testing.T) {
	c := mustCurve3D(t, 1, 0, 5)
	const sides, n = 4, 8
	m, err := tunnel.GenerateMesh(c, tunnel.MeshParams{PolygonRadius: 1, PolygonSides: sides, NumPolygons: n})
	if err != nil {
		t.Fatal(err)
	}
	// Frame at t=0 has normal +Z so the first polygon vertex sits at (0,0,r+1).
	if got := m.Vertices[0].Pos; got != [3]float32{0, 0, 6} {
		t.Errorf("first vertex want (0,0,6), got %v", got)
	}
	// First quad: a=(0,0) b=(1,0) c=(0,1) d=(1,1).
	want := []uint32{0, sides, 1, sides, sides + 1, 1}
	if !reflect.DeepEqual(m.Triangles[:6], want) {
		t.Errorf("first quad want %v, got %v", want, m.Triangles[:6])
	}
	// Last side wraps around to vertex 0 of the same ring.
	lastQuad := m.Triangles[6*(sides-1) : 6*sides]
	wantLast := []uint32{sides - 1, 2*sides - 1, 0, 2*sides - 1, sides, 0}
	if !reflect.DeepEqual(lastQuad, wantLast) {
		t.Errorf("wrapping quad want %v, got %v", wantLast, lastQuad)
	}
	if !reflect.DeepEqual(m.LongLines[:4], []uint32{0, sides, sides, 2 * sides}) {
		t.Errorf("bad longitude lines %v", m.LongLines[:4])
	}
	closing := m.LatLines[len(m.LatLines)-2:]
	if closing[0] != uint32((n+1)*sides-1) || closing[1] != uint32(n*sides) {
		t.Errorf("bad closing latitude segment %v", closing)
	}
	// Closing ring is a distinct set of records at the same location.
	for j := 0; j < sides; j++ {
		a, b := m.Vertices[j], m.Vertices[n*sides+j]
		for k := range a.Pos {
			if d := a.Pos[k] - b.Pos[k]; d > 1e-5 || d < -1e-5 {
				t.Errorf("closing ring vertex %d not at first ring position: %v vs %v", j, a.Pos, b.Pos)
			}
		}
	}
}

func TestRingColor(t *testing.T) {
	const n = 200
	if tunnel.RingColor(n, n) != tunnel.RingColor(0, n) {
		t.Error("closing ring color must equal ring 0")
	}
	c0 := tunnel.RingColor(0, n)
	want := [4]float32{0.5, 0.7, 0.75, 0.5}
	if c0 != want {
		t.Errorf("ring 0 want %v, got %v", want, c0)
	}
	for i := 0; i <= n; i++ {
		c := tunnel.RingColor(i, n)
		for _, ch := range c {
			if ch < 0 || ch > 1 {
				t.Fatalf("ring %d color channel out of range: %v", i, c)
			}
		}
	}
}

func TestGenerateMeshInvalid(t *testing.T) {
	c := mustCurve3D(t, 3, 2, 5)
	bad := []tunnel.MeshParams{
		{PolygonRadius: 1, PolygonSides: 2, NumPolygons: 10},
		{PolygonRadius: 0, PolygonSides: 5, NumPolygons: 10},
		{PolygonRadius: 1, PolygonSides: 5, NumPolygons: 0},
		{},
	}
	for _, p := range bad {
		_, err := tunnel.GenerateMesh(c, p)
		if !errors.Is(err, tunnel.ErrInvalidArgument) {
			t.Errorf("%+v: expected invalid argument, got %v", p, err)
		}
		_, err = tunnel.GenerateBuffers(c, p, tunnel.AllBuffers)
		if !errors.Is(err, tunnel.ErrInvalidArgument) {
			t.Errorf("%+v: expected invalid argument from flat buffers, got %v", p, err)
		}
	}
	if _, err := tunnel.GenerateMesh(nil, tunnel.MeshParams{PolygonRadius: 1, PolygonSides: 3, NumPolygons: 1}); err == nil {
		t.Error("expected error for nil curve")
	}
}

func TestGenerateDeterministic(t *testing.T) {
	c := mustCurve3D(t, 2, 7, 5)
	p := tunnel.MeshParams{PolygonRadius: 1, PolygonSides: 7, NumPolygons: 200}
	m1, _ := tunnel.GenerateMesh(c, p)
	m2, _ := tunnel.GenerateMesh(c, p)
	if !reflect.DeepEqual(m1, m2) {
		t.Error("mesh generation not deterministic")
	}
	b1, _ := tunnel.GenerateBuffers(c, p, tunnel.AllBuffers)
	b2, _ := tunnel.GenerateBuffers(c, p, tunnel.AllBuffers)
	if !reflect.DeepEqual(b1, b2) {
		t.Error("flat buffer generation not deterministic")
	}
}

func TestGenerateBuffersOptions(t *testing.T) {
	c := mustCurve3D(t, 2, 7, 5)
	const sides, n = 5, 30
	p := tunnel.MeshParams{PolygonRadius: 0.5, PolygonSides: sides, NumPolygons: n}
	fb, err := tunnel.GenerateBuffers(c, p, tunnel.FlatOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(fb.Longitude) != 0 || len(fb.Latitude) != 0 || len(fb.Triangles) != 0 {
		t.Error("disabled buffers must be empty")
	}
	fb, err = tunnel.GenerateBuffers(c, p, tunnel.AllBuffers)
	if err != nil {
		t.Fatal(err)
	}
	if len(fb.Longitude) != 6*n*sides {
		t.Errorf("want %d longitude floats, got %d", 6*n*sides, len(fb.Longitude))
	}
	if len(fb.Latitude) != 6*(n+1)*sides {
		t.Errorf("want %d latitude floats, got %d", 6*(n+1)*sides, len(fb.Latitude))
	}
	if len(fb.Triangles) != 18*n*sides {
		t.Errorf("want %d triangle floats, got %d", 18*n*sides, len(fb.Triangles))
	}
	// Flat lines duplicate the indexed mesh positions.
	m, _ := tunnel.GenerateMesh(c, p)
	for k, idx := range m.LongLines {
		pos := m.Vertices[idx].Pos
		got := fb.Longitude[3*k : 3*k+3]
		if got[0] != pos[0] || got[1] != pos[1] || got[2] != pos[2] {
			t.Fatalf("longitude point %d mismatch: %v vs %v", k, got, pos)
		}
	}
	for k, idx := range m.LatLines {
		pos := m.Vertices[idx].Pos
		got := fb.Latitude[3*k : 3*k+3]
		if got[0] != pos[0] || got[1] != pos[1] || got[2] != pos[2] {
			t.Fatalf("latitude point %d mismatch: %v vs %v", k, got, pos)
		}
	}
}

func vec(buf []float32, i int) md3.Vec {
	return md3.Vec{X: float64(buf[3*i]), Y: float64(buf[3*i+1]), Z: float64(buf[3*i+2])}
}

func TestGenerateBuffersOutward(t *testing.T) {
	c := mustCurve3D(t, 1, 0, 5)
	const sides, n = 4, 8
	p := tunnel.MeshParams{PolygonRadius: 1, PolygonSides: sides, NumPolygons: n}
	fb, err := tunnel.GenerateBuffers(c, p, tunnel.FlatOptions{Tunnel: true})
	if err != nil {
		t.Fatal(err)
	}
	for q := 0; q < n*sides; q++ {
		ring := q / sides
		center := c.Position(2 * math.Pi * float64(ring) / n)
		var tri [6]md3.Vec
		for k := range tri {
			tri[k] = vec(fb.Triangles, 6*q+k)
		}
		// The fourth quad vertex is the one in the second triangle absent from the first.
		fourth := tri[3]
		for _, v := range tri[3:] {
			if v != tri[0] && v != tri[1] && v != tri[2] {
				fourth = v
			}
		}
		quadCenter := md3.Scale(0.25, md3.Add(md3.Add(tri[0], tri[1]), md3.Add(tri[2], fourth)))
		outward := md3.Sub(quadCenter, center)
		for k := 0; k < 2; k++ {
			p0, p1, p2 := tri[3*k], tri[3*k+1], tri[3*k+2]
			normal := md3.Cross(md3.Sub(p1, p0), md3.Sub(p2, p0))
			if md3.Dot(normal, outward) < 0 {
				t.Errorf("quad %d triangle %d faces inward", q, k)
			}
		}
		// Orienting an already oriented quad keeps it unchanged.
		if !tunnel.QuadFacesOutward(center, tri[0], tri[1], tri[2], fourth) {
			t.Errorf("quad %d orientation not idempotent", q)
		}
	}
}
