package glrender

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	math "github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
)

const (
	stlHeaderSize  = 80
	stlRecordSize  = 50
	stlDefaultName = "github.com/soypat/tunnel binary STL"
)

// WriteBinarySTL writes triangles to w in binary STL format and returns the
// number of bytes written. Facet normals are computed from the winding of each
// triangle, degenerate triangles get a zero normal.
func WriteBinarySTL(w io.Writer, triangles []ms3.Triangle) (int, error) {
	if uint64(len(triangles)) > math.MaxUint32 {
		return 0, errors.New("too many triangles for STL")
	}
	var header [stlHeaderSize + 4]byte
	copy(header[:stlHeaderSize], stlDefaultName)
	binary.LittleEndian.PutUint32(header[stlHeaderSize:], uint32(len(triangles)))
	n, err := w.Write(header[:])
	if err != nil {
		return n, fmt.Errorf("writing STL header: %w", err)
	}
	var record [stlRecordSize]byte
	for i := range triangles {
		tri := &triangles[i]
		putVec(record[0:], triangleNormal(*tri))
		putVec(record[12:], tri[0])
		putVec(record[24:], tri[1])
		putVec(record[36:], tri[2])
		// Last two bytes are the unused attribute byte count.
		ngot, err := w.Write(record[:])
		n += ngot
		if err != nil {
			return n, fmt.Errorf("writing STL triangle %d: %w", i, err)
		}
	}
	return n, nil
}

// ReadBinarySTL reads triangles from a binary STL stream, discarding normals.
func ReadBinarySTL(r io.Reader) ([]ms3.Triangle, error) {
	var header [stlHeaderSize + 4]byte
	_, err := io.ReadFull(r, header[:])
	if err != nil {
		return nil, fmt.Errorf("reading STL header: %w", err)
	}
	numTriangles := binary.LittleEndian.Uint32(header[stlHeaderSize:])
	triangles := make([]ms3.Triangle, 0, min(int(numTriangles), 1<<20))
	var record [stlRecordSize]byte
	for i := 0; i < int(numTriangles); i++ {
		_, err = io.ReadFull(r, record[:])
		if err != nil {
			return triangles, fmt.Errorf("reading STL triangle %d: %w", i, err)
		}
		triangles = append(triangles, ms3.Triangle{
			getVec(record[12:]),
			getVec(record[24:]),
			getVec(record[36:]),
		})
	}
	return triangles, nil
}

func triangleNormal(t ms3.Triangle) ms3.Vec {
	n := ms3.Cross(ms3.Sub(t[1], t[0]), ms3.Sub(t[2], t[0]))
	norm := ms3.Norm(n)
	if norm == 0 {
		return ms3.Vec{}
	}
	return ms3.Scale(1/norm, n)
}

func putVec(b []byte, v ms3.Vec) {
	binary.LittleEndian.PutUint32(b[0:], math.Float32bits(v.X))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(v.Y))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(v.Z))
}

func getVec(b []byte) ms3.Vec {
	return ms3.Vec{
		X: math.Float32frombits(binary.LittleEndian.Uint32(b[0:])),
		Y: math.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
		Z: math.Float32frombits(binary.LittleEndian.Uint32(b[8:])),
	}
}
