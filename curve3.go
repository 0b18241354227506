package tunnel

import (
	"math"

	"github.com/soypat/geometry/md3"
)

// Sweeper is a closed curve with a moving frame along which a cross section
// can be swept. Curves are expected to close at t=2π.
type Sweeper interface {
	// Position returns the curve point at parameter t.
	Position(t float64) md3.Vec
	// TransformMatrix returns the frame at t with columns (normal, binormal, tangent, position).
	TransformMatrix(t float64) Mat4
}

// NormalPolicy selects how the normal vector of a 3D curve frame is computed.
type NormalPolicy uint8

const (
	// NormalRadial projects the radial direction position/|position| onto the
	// plane orthogonal to the tangent. Stable for curves on a sphere since the
	// tangent never aligns with the radius.
	NormalRadial NormalPolicy = iota
	// NormalCross uses normalize(position × tangent). Flips sign when position
	// and tangent become collinear.
	NormalCross
)

func (np NormalPolicy) String() string {
	switch np {
	case NormalRadial:
		return "radial"
	case NormalCross:
		return "cross"
	}
	return "unknown"
}

// Frame is the orthonormal trihedron attached to a curve point.
type Frame struct {
	Position md3.Vec
	Tangent  md3.Vec
	Normal   md3.Vec
	Binormal md3.Vec
}

// Matrix returns the sweep matrix of the frame with columns (normal, binormal, tangent, position).
func (f Frame) Matrix() Mat4 {
	return frameMat4(f.Normal, f.Binormal, f.Tangent, f.Position)
}

// Curve3D is the spherical Lissajous curve
//
//	r·(sin(a·t)·cos(b·t), sin(a·t)·sin(b·t), cos(a·t))
//
// which lies on the sphere of radius r.
type Curve3D struct {
	a, b, r float64
	normal  NormalPolicy
}

// NewCurve3D creates a 3D Lissajous curve using the [NormalRadial] frame policy.
func NewCurve3D(a, b, r float64) (Curve3D, error) {
	return NewCurve3DWithNormal(a, b, r, NormalRadial)
}

// NewCurve3DWithNormal creates a 3D Lissajous curve whose frame normal is
// computed with the given policy for every t.
func NewCurve3DWithNormal(a, b, r float64, policy NormalPolicy) (Curve3D, error) {
	if err := checkFinite("curve", a, b, r); err != nil {
		return Curve3D{}, err
	}
	if r <= 0 {
		return Curve3D{}, argErrorf("curve scale must be positive, got %v", r)
	}
	if policy != NormalRadial && policy != NormalCross {
		return Curve3D{}, argErrorf("unknown normal policy %d", policy)
	}
	return Curve3D{a: a, b: b, r: r, normal: policy}, nil
}

// A returns the polar angle frequency.
func (c Curve3D) A() float64 { return c.a }

// B returns the azimuthal angle frequency.
func (c Curve3D) B() float64 { return c.b }

// R returns the radius of the sphere the curve lies on.
func (c Curve3D) R() float64 { return c.r }

// NormalPolicy returns the policy used to compute D2.
func (c Curve3D) NormalPolicy() NormalPolicy { return c.normal }

// Position returns the curve point at t.
func (c Curve3D) Position(t float64) md3.Vec {
	sa, ca := math.Sincos(c.a * t)
	sb, cb := math.Sincos(c.b * t)
	return md3.Vec{X: c.r * sa * cb, Y: c.r * sa * sb, Z: c.r * ca}
}

// velocity is the analytic derivative of Position divided by r.
func (c Curve3D) velocity(t float64) md3.Vec {
	a, b := c.a, c.b
	sa, ca := math.Sincos(a * t)
	sb, cb := math.Sincos(b * t)
	return md3.Vec{
		X: a*ca*cb - b*sa*sb,
		Y: a*ca*sb + b*sa*cb,
		Z: -a * sa,
	}
}

// D1 returns the unit tangent at t.
func (c Curve3D) D1(t float64) md3.Vec {
	return Normalize(c.velocity(t))
}

// D2 returns the unit normal at t computed with the curve's [NormalPolicy].
func (c Curve3D) D2(t float64) md3.Vec {
	return c.normalAt(c.Position(t), c.D1(t))
}

func (c Curve3D) normalAt(pos, tangent md3.Vec) md3.Vec {
	if c.normal == NormalCross {
		return Normalize(md3.Cross(pos, tangent))
	}
	return rejectUnit(Normalize(pos), tangent)
}

// D3 returns the binormal D1×D2 which completes a right handed trihedron.
func (c Curve3D) D3(t float64) md3.Vec {
	return md3.Cross(c.D1(t), c.D2(t))
}

// Frame returns the full trihedron at t.
func (c Curve3D) Frame(t float64) Frame {
	pos := c.Position(t)
	tangent := c.D1(t)
	normal := c.normalAt(pos, tangent)
	return Frame{
		Position: pos,
		Tangent:  tangent,
		Normal:   normal,
		Binormal: md3.Cross(tangent, normal),
	}
}

// TransformMatrix returns the sweep matrix at t. Columns are (D2, D3, D1, Position)
// so a polygon in the local XY plane is placed on the normal/binormal plane at the curve point.
func (c Curve3D) TransformMatrix(t float64) Mat4 {
	return c.Frame(t).Matrix()
}
