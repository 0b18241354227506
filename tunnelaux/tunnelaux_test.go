package tunnelaux

import (
	"bytes"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/soypat/geometry/md3"
	"github.com/soypat/tunnel"
)

func testCurve(t *testing.T) tunnel.Curve3D {
	t.Helper()
	c, err := tunnel.NewCurve3D(2, 7, 5)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestDisplayConfigClamp(t *testing.T) {
	cfg := DefaultDisplayConfig()
	cfg.Speed = 3
	cfg.Mesh.NumPolygons = 1
	got := cfg.Clamp()
	if got.Speed != MaxSpeed || got.Mesh.NumPolygons != MinNumPolygons {
		t.Errorf("bad clamp: %+v", got)
	}
	cfg.Speed = -3
	cfg.Mesh.NumPolygons = 5000
	got = cfg.Clamp()
	if got.Speed != -MaxSpeed || got.Mesh.NumPolygons != MaxNumPolygons {
		t.Errorf("bad clamp: %+v", got)
	}
	def := DefaultDisplayConfig()
	if def.Clamp() != def {
		t.Error("default config must be within limits")
	}
}

func TestDriverRegenerate(t *testing.T) {
	d, err := NewDriver(testCurve(t), DefaultDisplayConfig())
	if err != nil {
		t.Fatal(err)
	}
	if d.Generation() != 1 {
		t.Fatalf("want 1 generation after construction, got %d", d.Generation())
	}
	cfg := d.Config()
	cfg.Speed = 0.3
	cfg.ShowTunnel = false
	cfg.OutsideView = true
	if err = d.SetConfig(cfg); err != nil {
		t.Fatal(err)
	}
	if d.Generation() != 1 {
		t.Error("display toggles must not regenerate the mesh")
	}
	cfg.Mesh.NumPolygons = 50
	if err = d.SetConfig(cfg); err != nil {
		t.Fatal(err)
	}
	if d.Generation() != 2 {
		t.Errorf("polygon count change must regenerate, generation %d", d.Generation())
	}
	if d.Mesh().VertexCount() != 51*cfg.Mesh.PolygonSides {
		t.Errorf("unexpected vertex count %d", d.Mesh().VertexCount())
	}

	// Out of range polygon counts are clamped rather than rejected.
	cfg.Mesh.NumPolygons = 2
	if err = d.SetConfig(cfg); err != nil {
		t.Fatal(err)
	}
	if d.Config().Mesh.NumPolygons != MinNumPolygons {
		t.Errorf("want clamped polygon count, got %d", d.Config().Mesh.NumPolygons)
	}

	// Invalid parameters keep the previous state.
	gen := d.Generation()
	prev := d.Config()
	bad := prev
	bad.Mesh.PolygonSides = 2
	if err = d.SetConfig(bad); err == nil {
		t.Fatal("expected error for 2 sided polygon")
	}
	if d.Config() != prev || d.Generation() != gen {
		t.Error("failed SetConfig modified driver state")
	}
}

func TestDriverBuffersCached(t *testing.T) {
	d, err := NewDriver(testCurve(t), DefaultDisplayConfig())
	if err != nil {
		t.Fatal(err)
	}
	fb, err := d.Buffers()
	if err != nil {
		t.Fatal(err)
	}
	if len(fb.Triangles) == 0 || len(fb.Longitude) == 0 || len(fb.Latitude) == 0 {
		t.Fatal("default config should enable every buffer")
	}
	d.Buffers()
	if d.flatGen != 1 {
		t.Errorf("buffers rebuilt without change: %d builds", d.flatGen)
	}
	cfg := d.Config()
	cfg.ShowLatitude = false
	d.SetConfig(cfg)
	fb, _ = d.Buffers()
	if d.flatGen != 2 || len(fb.Latitude) != 0 {
		t.Errorf("toggle should rebuild without latitude: builds=%d lat=%d", d.flatGen, len(fb.Latitude))
	}
}

func TestDriverAdvance(t *testing.T) {
	cfg := DefaultDisplayConfig()
	cfg.Speed = 0.5
	d, err := NewDriver(testCurve(t), cfg)
	if err != nil {
		t.Fatal(err)
	}
	got := d.Advance(2)
	if math.Abs(got-1) > 1e-12 {
		t.Errorf("want t=1, got %v", got)
	}
	for i := 0; i < 100; i++ {
		got = d.Advance(1)
		if got < 0 || got >= 2*math.Pi {
			t.Fatalf("parameter out of range: %v", got)
		}
	}
	cfg.Speed = -0.5
	d.SetConfig(cfg)
	d.Advance(1000)
	if d.Time() < 0 || d.Time() >= 2*math.Pi {
		t.Errorf("negative speed out of range: %v", d.Time())
	}
}

func TestDriverCamera(t *testing.T) {
	c := testCurve(t)
	d, err := NewDriver(c, DefaultDisplayConfig())
	if err != nil {
		t.Fatal(err)
	}
	const tm = 1.3
	pose := d.Camera(tm)
	if pose.Eye != c.Position(tm) {
		t.Error("inside camera must sit on the curve")
	}
	dir := md3.Sub(pose.Target, pose.Eye)
	if math.Abs(md3.Dot(dir, c.D1(tm))-1) > 1e-9 {
		t.Error("inside camera must look along the tangent")
	}
	if math.Abs(md3.Dot(pose.Up, dir)) > 1e-9 {
		t.Error("up vector must be orthogonal to view direction")
	}
	v := pose.ViewMatrix()
	// The eye maps to the view space origin.
	eye := v.Mul4x1(vec32(pose.Eye).Vec4(1))
	if eye.Vec3().Len() > 1e-4 {
		t.Errorf("eye not at view origin: %v", eye)
	}

	cfg := d.Config()
	cfg.OutsideView = true
	d.SetConfig(cfg)
	pose = d.Camera(tm)
	if md3.Norm(pose.Eye) < 2*d.Extent() {
		t.Errorf("outside camera too close: %v (extent %v)", md3.Norm(pose.Eye), d.Extent())
	}
	if pose.Target != (md3.Vec{}) {
		t.Error("outside camera must look at origin")
	}
}

func TestPalette(t *testing.T) {
	const n = 40
	for _, p := range []Palette{PaletteCosine, PaletteHue, PaletteGradient} {
		parsed, err := ParsePalette(p.String())
		if err != nil || parsed != p {
			t.Errorf("palette %v did not round trip: %v %v", p, parsed, err)
		}
		if p.RingColor(n, n) != p.RingColor(0, n) {
			t.Errorf("%v: closing ring color differs", p)
		}
		for i := 0; i <= n; i++ {
			c := p.RingColor(i, n)
			for _, ch := range c {
				if ch < 0 || ch > 1 {
					t.Fatalf("%v: ring %d channel out of range %v", p, i, c)
				}
			}
		}
	}
	if got := PaletteHue.RingColor(0, n); got[0] != 1 || got[1] != 0 || got[2] != 0 {
		t.Errorf("hue palette must start red, got %v", got)
	}
	if _, err := ParsePalette("plaid"); err == nil {
		t.Error("expected error for unknown palette")
	}

	params := tunnel.MeshParams{PolygonRadius: 1, PolygonSides: 5, NumPolygons: n}
	m, err := tunnel.GenerateMesh(testCurve(t), params)
	if err != nil {
		t.Fatal(err)
	}
	if err = Recolor(&m, params, PaletteHue); err != nil {
		t.Fatal(err)
	}
	for i, v := range m.Vertices {
		if v.Color != PaletteHue.RingColor(i/params.PolygonSides, n) {
			t.Fatalf("vertex %d not recolored", i)
		}
	}
	params.PolygonSides = 6
	if err = Recolor(&m, params, PaletteHue); err == nil {
		t.Error("expected error for mismatched parameters")
	}
}

func TestRender(t *testing.T) {
	var stl, obj, pic bytes.Buffer
	params := tunnel.MeshParams{PolygonRadius: 1, PolygonSides: 7, NumPolygons: 60}
	err := Render(testCurve(t), params, RenderConfig{
		STLOutput:   &stl,
		OBJOutput:   &obj,
		PNGOutput:   &pic,
		ImageWidth:  160,
		ImageHeight: 120,
		Caption:     "test",
		Silent:      true,
	})
	if err != nil {
		t.Fatal(err)
	}
	ntri := 2 * params.NumPolygons * params.PolygonSides
	if stl.Len() != 84+50*ntri {
		t.Errorf("want STL of %d bytes, got %d", 84+50*ntri, stl.Len())
	}
	if got := strings.Count(obj.String(), "\nf "); got != ntri {
		t.Errorf("want %d OBJ faces, got %d", ntri, got)
	}
	img, err := png.Decode(&pic)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 160 || b.Dy() != 120 {
		t.Errorf("bad preview size %v", b)
	}
	if err = Render(testCurve(t), params, RenderConfig{}); err == nil {
		t.Error("expected error without outputs")
	}
}

func TestUIInvalid(t *testing.T) {
	if err := UI(testCurve(t), DefaultDisplayConfig(), UIConfig{}); err == nil {
		t.Error("expected error for zero sized window")
	}
}

func TestFramePasses(t *testing.T) {
	var passes []drawPass
	for mask := 0; mask < 8; mask++ {
		cfg := DefaultDisplayConfig()
		cfg.ShowLongitude = mask&1 != 0
		cfg.ShowLatitude = mask&2 != 0
		cfg.ShowTunnel = mask&4 != 0
		passes = framePasses(passes, cfg)
		// Two frames back to back: the clear of the second frame follows the
		// last pass of the first, so it must restore depth writes itself.
		frames := append(append([]drawPass{}, passes...), passes...)
		if frames[0].kind != passClear || !frames[0].depthWrite {
			t.Fatalf("mask %03b: frame must start with a depth writing clear, got %+v", mask, frames[0])
		}
		wantLen := 1
		for _, show := range []bool{cfg.ShowLongitude, cfg.ShowLatitude, cfg.ShowTunnel} {
			if show {
				wantLen++
			}
		}
		if len(passes) != wantLen {
			t.Errorf("mask %03b: want %d passes, got %d", mask, wantLen, len(passes))
		}
		seenTunnel := false
		for i, p := range frames {
			switch p.kind {
			case passClear:
				if !p.depthWrite {
					t.Errorf("mask %03b pass %d: clear with depth writes masked", mask, i)
				}
				seenTunnel = false
			case passLongitude, passLatitude:
				if !p.depthWrite || seenTunnel {
					t.Errorf("mask %03b pass %d: lines must write depth and precede the tunnel", mask, i)
				}
			case passTunnel:
				if p.depthWrite {
					t.Errorf("mask %03b pass %d: translucent tunnel must not write depth", mask, i)
				}
				seenTunnel = true
			}
		}
	}
}

func TestDriverCameraSameParameter(t *testing.T) {
	c := testCurve(t)
	d, err := NewDriver(c, DefaultDisplayConfig())
	if err != nil {
		t.Fatal(err)
	}
	for tm := 0.1; tm < 2*math.Pi; tm += 0.37 {
		pose := d.Camera(tm)
		dir := md3.Sub(pose.Target, pose.Eye)
		if md3.Norm(md3.Sub(dir, c.D1(tm))) > 1e-9 {
			t.Errorf("t=%v: view direction %v is not the tangent %v at the eye", tm, dir, c.D1(tm))
		}
		if md3.Norm(md3.Sub(pose.Up, c.D2(tm))) > 1e-12 {
			t.Errorf("t=%v: up %v is not the normal %v at the eye", tm, pose.Up, c.D2(tm))
		}
	}
}

func TestColorConversion(t *testing.T) {
	r, g, b := cToRGB(0xff8000)
	if r != 1 || math.Abs(float64(g)-128.0/255) > 1e-6 || b != 0 {
		t.Errorf("bad cToRGB: %v %v %v", r, g, b)
	}
	// Bits above the low 24 are ignored.
	r, g, b = cToRGB(0xff0000ff)
	if r != 0 || g != 0 || b != 1 {
		t.Errorf("bad cToRGB for high bits: %v %v %v", r, g, b)
	}
}
