package glrender

import (
	"errors"
	"io"

	"github.com/soypat/geometry/ms3"
	"github.com/soypat/tunnel"
)

// Renderer streams triangles into dst and returns io.EOF once exhausted.
type Renderer interface {
	ReadTriangles(dst []ms3.Triangle) (n int, err error)
}

// RenderAll reads the full contents of a Renderer and returns the slice read.
// It does not return error on io.EOF, like the io.RenderAll implementation.
func RenderAll(r Renderer) ([]ms3.Triangle, error) {
	const startSize = 4096
	var err error
	var nt int
	result := make([]ms3.Triangle, 0, startSize)
	buf := make([]ms3.Triangle, startSize)
	for {
		nt, err = r.ReadTriangles(buf)
		if err == nil || err == io.EOF {
			result = append(result, buf[:nt]...)
		}
		if err != nil {
			break
		}
	}
	if err == io.EOF {
		return result, nil
	}
	return result, err
}

// MeshRenderer streams the triangles of an indexed [tunnel.Mesh].
type MeshRenderer struct {
	mesh *tunnel.Mesh
	next int // next triangle to read.
}

// NewMeshRenderer returns a renderer reading the triangles of m. The mesh
// must not be modified while it is read.
func NewMeshRenderer(m *tunnel.Mesh) (*MeshRenderer, error) {
	if m == nil {
		return nil, errors.New("nil mesh")
	}
	if len(m.Triangles)%3 != 0 {
		return nil, errors.New("triangle index buffer length not multiple of 3")
	}
	return &MeshRenderer{mesh: m}, nil
}

// ReadTriangles implements [Renderer].
func (mr *MeshRenderer) ReadTriangles(dst []ms3.Triangle) (n int, err error) {
	if len(dst) == 0 {
		return 0, io.ErrShortBuffer
	}
	idx := mr.mesh.Triangles
	verts := mr.mesh.Vertices
	total := len(idx) / 3
	for n < len(dst) && mr.next < total {
		i := 3 * mr.next
		for k := 0; k < 3; k++ {
			vi := idx[i+k]
			if int(vi) >= len(verts) {
				return n, errors.New("triangle index out of range")
			}
			p := verts[vi].Pos
			dst[n][k] = ms3.Vec{X: p[0], Y: p[1], Z: p[2]}
		}
		n++
		mr.next++
	}
	if mr.next == total {
		return n, io.EOF
	}
	return n, nil
}

// FlatRenderer streams triangles from a flat x,y,z triangle buffer such as
// [tunnel.FlatBuffers.Triangles].
type FlatRenderer struct {
	buf  []float32
	next int
}

// NewFlatRenderer returns a renderer reading triangles from buf which must
// hold 9 floats per triangle.
func NewFlatRenderer(buf []float32) (*FlatRenderer, error) {
	if len(buf)%9 != 0 {
		return nil, errors.New("flat triangle buffer length not multiple of 9")
	}
	return &FlatRenderer{buf: buf}, nil
}

// ReadTriangles implements [Renderer].
func (fr *FlatRenderer) ReadTriangles(dst []ms3.Triangle) (n int, err error) {
	if len(dst) == 0 {
		return 0, io.ErrShortBuffer
	}
	total := len(fr.buf) / 9
	for n < len(dst) && fr.next < total {
		tri := fr.buf[9*fr.next : 9*fr.next+9]
		dst[n] = ms3.Triangle{
			{X: tri[0], Y: tri[1], Z: tri[2]},
			{X: tri[3], Y: tri[4], Z: tri[5]},
			{X: tri[6], Y: tri[7], Z: tri[8]},
		}
		n++
		fr.next++
	}
	if fr.next == total {
		return n, io.EOF
	}
	return n, nil
}
