package tunnel

import (
	"math"

	"github.com/soypat/geometry/md3"
)

// Curve4D is the 4D Lissajous curve
//
//	r·(sin(a·t)cos(b·t)sin(c·t), sin(a·t)sin(b·t)sin(c·t), cos(a·t)sin(c·t), cos(c·t))
//
// which lies on the 3-sphere of radius r. It exposes position and two derivative
// directions only; see [Projected4D] for a sweepable 3D view of it.
type Curve4D struct {
	a, b, c, r float64
}

// NewCurve4D creates a 4D Lissajous curve with frequencies a, b, c and scale r.
func NewCurve4D(a, b, c, r float64) (Curve4D, error) {
	if err := checkFinite("curve", a, b, c, r); err != nil {
		return Curve4D{}, err
	}
	if r <= 0 {
		return Curve4D{}, argErrorf("curve scale must be positive, got %v", r)
	}
	return Curve4D{a: a, b: b, c: c, r: r}, nil
}

// A returns the frequency of the first angle.
func (c Curve4D) A() float64 { return c.a }

// B returns the frequency of the second angle.
func (c Curve4D) B() float64 { return c.b }

// C returns the frequency of the third angle, which also drives w.
func (c Curve4D) C() float64 { return c.c }

// R returns the radius of the 3-sphere the curve lies on.
func (c Curve4D) R() float64 { return c.r }

type sincos4 struct {
	sa, ca, sb, cb, sc, cc float64
}

func (c Curve4D) trig(t float64) (s sincos4) {
	s.sa, s.ca = math.Sincos(c.a * t)
	s.sb, s.cb = math.Sincos(c.b * t)
	s.sc, s.cc = math.Sincos(c.c * t)
	return s
}

// Position returns the curve point at t.
func (c Curve4D) Position(t float64) Vec4 {
	s := c.trig(t)
	return Vec4{
		X: s.sa * s.cb * s.sc,
		Y: s.sa * s.sb * s.sc,
		Z: s.ca * s.sc,
		W: s.cc,
	}.Scale(c.r)
}

// velocity is the analytic first derivative of Position divided by r.
func (c Curve4D) velocity(t float64) Vec4 {
	a, b, cf := c.a, c.b, c.c
	s := c.trig(t)
	return Vec4{
		X: a*s.ca*s.cb*s.sc - b*s.sa*s.sb*s.sc + cf*s.sa*s.cb*s.cc,
		Y: a*s.ca*s.sb*s.sc + b*s.sa*s.cb*s.sc + cf*s.sa*s.sb*s.cc,
		Z: -a*s.sa*s.sc + cf*s.ca*s.cc,
		W: -cf * s.sc,
	}
}

// acceleration is the analytic second derivative of Position divided by r.
func (c Curve4D) acceleration(t float64) Vec4 {
	a, b, cf := c.a, c.b, c.c
	s := c.trig(t)
	return Vec4{
		X: -a*a*s.sa*s.cb*s.sc - 2*a*b*s.ca*s.sb*s.sc - b*b*s.sa*s.cb*s.sc +
			2*a*cf*s.ca*s.cb*s.cc - 2*b*cf*s.sa*s.sb*s.cc - cf*cf*s.sa*s.cb*s.sc,
		Y: -a*a*s.sa*s.sb*s.sc + 2*a*b*s.ca*s.cb*s.sc - b*b*s.sa*s.sb*s.sc +
			2*a*cf*s.ca*s.sb*s.cc + 2*b*cf*s.sa*s.cb*s.cc - cf*cf*s.sa*s.sb*s.sc,
		Z: -a*a*s.ca*s.sc - 2*a*cf*s.sa*s.cc - cf*cf*s.ca*s.sc,
		W: -cf * cf * s.cc,
	}
}

// D1 returns the unit tangent at t.
func (c Curve4D) D1(t float64) Vec4 {
	return c.velocity(t).Unit()
}

// D2 returns the normalized second derivative at t. It is generally not
// orthogonal to D1.
func (c Curve4D) D2(t float64) Vec4 {
	return c.acceleration(t).Unit()
}

// Projected4D is the stereographic projection of a [Curve4D] into 3-space
// from the pole w=1. It carries a radial-projection frame so it can be swept
// like a [Curve3D].
type Projected4D struct {
	c Curve4D
}

// NewProjected4D wraps c for sweeping. The curve scale must be below 1 so
// that w = r·cos(c·t) never reaches the projection pole.
func NewProjected4D(c Curve4D) (Projected4D, error) {
	if c.r <= 0 {
		return Projected4D{}, argErrorf("uninitialized 4D curve")
	}
	if c.r >= 1 {
		return Projected4D{}, argErrorf("4D curve scale must be below 1 for stereographic projection, got %v", c.r)
	}
	return Projected4D{c: c}, nil
}

// Curve returns the underlying 4D curve.
func (p Projected4D) Curve() Curve4D { return p.c }

// Position returns the projected curve point at t.
func (p Projected4D) Position(t float64) md3.Vec {
	return p.c.Position(t).Project3D()
}

// D1 returns the unit tangent of the projected curve at t obtained by the
// chain rule of the projection q = xyz·u with u = 1/(1-w):
//
//	q' = xyz'·u + xyz·w'·u²
func (p Projected4D) D1(t float64) md3.Vec {
	return Normalize(p.velocity(t))
}

func (p Projected4D) velocity(t float64) md3.Vec {
	pos := p.c.Position(t)
	vel := p.c.velocity(t).Scale(p.c.r)
	u := 1 / (1 - pos.W)
	return md3.Add(md3.Scale(u, vel.XYZ()), md3.Scale(vel.W*u*u, pos.XYZ()))
}

// acceleration returns the second derivative of the projected curve at t:
//
//	q'' = xyz''·u + 2·xyz'·u' + xyz·u''   with u' = w'·u², u'' = w''·u² + 2·w'²·u³
func (p Projected4D) acceleration(t float64) md3.Vec {
	pos := p.c.Position(t)
	vel := p.c.velocity(t).Scale(p.c.r)
	acc := p.c.acceleration(t).Scale(p.c.r)
	u := 1 / (1 - pos.W)
	du := vel.W * u * u
	ddu := acc.W*u*u + 2*vel.W*vel.W*u*u*u
	q := md3.Scale(u, acc.XYZ())
	q = md3.Add(q, md3.Scale(2*du, vel.XYZ()))
	return md3.Add(q, md3.Scale(ddu, pos.XYZ()))
}

// degenerateNormal is the length below which the radial direction rejected
// against the tangent is considered lost in rounding.
const degenerateNormal = 1e-12

// normalAt returns the radial-projection normal at t. Where the projected curve
// passes through the origin, or runs radially, the radial direction vanishes and
// the acceleration rejected against the tangent is used instead. That is the limit
// of the radial normal when the curve crosses the origin, so the frame stays continuous.
func (p Projected4D) normalAt(t float64, pos, tangent md3.Vec) md3.Vec {
	rej := md3.Sub(pos, md3.Scale(md3.Dot(pos, tangent), tangent))
	if md3.Norm(rej) < degenerateNormal {
		acc := p.acceleration(t)
		rej = md3.Sub(acc, md3.Scale(md3.Dot(acc, tangent), tangent))
	}
	return Normalize(rej)
}

// D2 returns the unit normal of the projected curve at t using the radial projection policy.
func (p Projected4D) D2(t float64) md3.Vec {
	return p.normalAt(t, p.Position(t), p.D1(t))
}

// Frame returns the trihedron of the projected curve at t.
func (p Projected4D) Frame(t float64) Frame {
	pos := p.Position(t)
	tangent := p.D1(t)
	normal := p.normalAt(t, pos, tangent)
	return Frame{
		Position: pos,
		Tangent:  tangent,
		Normal:   normal,
		Binormal: md3.Cross(tangent, normal),
	}
}

// TransformMatrix returns the sweep matrix of the projected curve at t.
func (p Projected4D) TransformMatrix(t float64) Mat4 {
	return p.Frame(t).Matrix()
}
