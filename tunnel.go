// Package tunnel generates tunnel meshes swept along closed Lissajous curves.
//
// A regular polygon is carried along the curve by a moving orthonormal frame
// (trihedron) and the resulting rings are stitched into triangles and line
// overlays. All functions in this package are pure: they take numeric
// parameters and return freshly allocated buffers ready to be uploaded to any
// renderer.
package tunnel

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/geometry/md3"
)

const (
	tau = 2 * math.Pi
	// ringAlpha is the alpha channel of every tunnel vertex color.
	ringAlpha = 0.5
)

// ErrInvalidArgument is returned by constructors and generators when a
// parameter is out of its domain. Test for it with [errors.Is].
var ErrInvalidArgument = errors.New("invalid argument")

func argErrorf(msg string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(msg, args...))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func checkFinite(names string, values ...float64) error {
	for _, v := range values {
		if !isFinite(v) {
			return argErrorf("non-finite %s parameter %v", names, v)
		}
	}
	return nil
}

// Mat4 is a 4x4 matrix stored row major, m[row][col]. When used to
// transform points the fourth row is ignored and w=1 is implied.
type Mat4 [4][4]float64

// IdentityMat4 returns the identity matrix.
func IdentityMat4() Mat4 {
	return Mat4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// frameMat4 builds the sweep matrix with columns (x, y, z, origin).
func frameMat4(x, y, z, origin md3.Vec) Mat4 {
	return Mat4{
		{x.X, y.X, z.X, origin.X},
		{x.Y, y.Y, z.Y, origin.Y},
		{x.Z, y.Z, z.Z, origin.Z},
		{0, 0, 0, 1},
	}
}

// Transform applies the affine transformation of m to point p (rotation,
// scale and translation). No perspective divide is performed.
func (m Mat4) Transform(p md3.Vec) md3.Vec {
	return md3.Vec{
		X: m[0][0]*p.X + m[0][1]*p.Y + m[0][2]*p.Z + m[0][3],
		Y: m[1][0]*p.X + m[1][1]*p.Y + m[1][2]*p.Z + m[1][3],
		Z: m[2][0]*p.X + m[2][1]*p.Y + m[2][2]*p.Z + m[2][3],
	}
}

// Col returns the first three components of column i.
func (m Mat4) Col(i int) md3.Vec {
	return md3.Vec{X: m[0][i], Y: m[1][i], Z: m[2][i]}
}

// Array returns the matrix in column major order as float32, the layout
// expected by OpenGL uniform uploads.
func (m Mat4) Array() [16]float32 {
	var arr [16]float32
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			arr[col*4+row] = float32(m[row][col])
		}
	}
	return arr
}

// Normalize returns v scaled to unit length. A zero vector is returned
// unchanged so degenerate directions never produce NaNs.
func Normalize(v md3.Vec) md3.Vec {
	mag := md3.Norm(v)
	if mag == 0 {
		return v
	}
	return md3.Scale(1/mag, v)
}

// rejectUnit returns the component of v orthogonal to the unit vector u, normalized.
func rejectUnit(v, u md3.Vec) md3.Vec {
	return Normalize(md3.Sub(v, md3.Scale(md3.Dot(v, u), u)))
}

func appendVec32(dst []float32, v md3.Vec) []float32 {
	return append(dst, float32(v.X), float32(v.Y), float32(v.Z))
}
