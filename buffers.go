package tunnel

import (
	"github.com/soypat/geometry/md3"
)

// FlatOptions selects which flat buffers [GenerateBuffers] computes.
type FlatOptions struct {
	Longitude bool
	Latitude  bool
	Tunnel    bool
}

// AllBuffers enables every flat buffer.
var AllBuffers = FlatOptions{Longitude: true, Latitude: true, Tunnel: true}

// FlatBuffers are non-indexed position streams of x,y,z triples. Disabled
// buffers are empty.
type FlatBuffers struct {
	// Longitude holds line segments along the curve, 2 points per segment.
	Longitude []float32
	// Latitude holds line segments around each ring, 2 points per segment.
	Latitude []float32
	// Triangles holds outward facing triangles, 3 points per triangle.
	Triangles []float32
}

// GenerateBuffers sweeps a regular polygon along s and returns flat,
// non-indexed buffers. Tunnel triangles are wound counter-clockwise when seen
// from outside: every quad is tested against the direction from the curve
// point to the quad center and flipped when facing inwards.
func GenerateBuffers(s Sweeper, p MeshParams, opt FlatOptions) (FlatBuffers, error) {
	rings, err := sweep(s, p)
	if err != nil {
		return FlatBuffers{}, err
	}
	n, sides := p.NumPolygons, p.PolygonSides
	at := func(ring, side int) md3.Vec {
		return rings[ring*sides+side%sides]
	}
	var fb FlatBuffers
	if opt.Longitude {
		fb.Longitude = make([]float32, 0, 6*n*sides)
		for j := 0; j < sides; j++ {
			for i := 0; i < n; i++ {
				fb.Longitude = appendVec32(fb.Longitude, at(i, j))
				fb.Longitude = appendVec32(fb.Longitude, at(i+1, j))
			}
		}
	}
	if opt.Latitude {
		fb.Latitude = make([]float32, 0, 6*(n+1)*sides)
		for i := 0; i <= n; i++ {
			for j := 0; j < sides; j++ {
				fb.Latitude = appendVec32(fb.Latitude, at(i, j))
				fb.Latitude = appendVec32(fb.Latitude, at(i, j+1))
			}
		}
	}
	if opt.Tunnel {
		fb.Triangles = make([]float32, 0, 18*n*sides)
		for i := 0; i < n; i++ {
			center := s.Position(ringParam(i, n))
			for j := 0; j < sides; j++ {
				v0, v1 := at(i, j), at(i+1, j)
				v2, v3 := at(i, j+1), at(i+1, j+1)
				fb.Triangles = appendOrientedQuad(fb.Triangles, center, v0, v1, v2, v3)
			}
		}
	}
	return fb, nil
}

// QuadFacesOutward reports whether triangle (v0,v1,v2) faces away from the
// curve point center, i.e. its normal has positive dot product with the
// vector from center to the centroid of quad v0,v1,v2,v3.
func QuadFacesOutward(center, v0, v1, v2, v3 md3.Vec) bool {
	quadCenter := md3.Scale(0.25, md3.Add(md3.Add(v0, v1), md3.Add(v2, v3)))
	outward := md3.Sub(quadCenter, center)
	normal := md3.Cross(md3.Sub(v1, v0), md3.Sub(v2, v0))
	return md3.Dot(normal, outward) > 0
}

func appendOrientedQuad(dst []float32, center, v0, v1, v2, v3 md3.Vec) []float32 {
	if QuadFacesOutward(center, v0, v1, v2, v3) {
		for _, v := range [6]md3.Vec{v0, v1, v2, v1, v3, v2} {
			dst = appendVec32(dst, v)
		}
		return dst
	}
	for _, v := range [6]md3.Vec{v0, v2, v1, v1, v2, v3} {
		dst = appendVec32(dst, v)
	}
	return dst
}
