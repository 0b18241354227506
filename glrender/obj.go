package glrender

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/soypat/tunnel"
)

// OBJConfig selects which index buffers of a [tunnel.Mesh] are written by [WriteOBJ].
type OBJConfig struct {
	// Faces writes triangles as "f" elements.
	Faces bool
	// Longitude and Latitude write line overlays as "l" elements.
	Longitude bool
	Latitude  bool
	// NoColor omits the per vertex RGB extension on "v" lines.
	NoColor bool
}

// WriteOBJ writes m as a Wavefront OBJ document. Vertices carry their RGB color
// after the position unless cfg.NoColor is set. Indices are 1-based as the format requires.
func WriteOBJ(w io.Writer, m *tunnel.Mesh, cfg OBJConfig) error {
	if m == nil {
		return errors.New("nil mesh")
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# tunnel mesh: %d vertices, %d triangles\n", m.VertexCount(), m.TriangleCount())
	for _, v := range m.Vertices {
		if cfg.NoColor {
			fmt.Fprintf(bw, "v %g %g %g\n", v.Pos[0], v.Pos[1], v.Pos[2])
		} else {
			fmt.Fprintf(bw, "v %g %g %g %g %g %g\n", v.Pos[0], v.Pos[1], v.Pos[2], v.Color[0], v.Color[1], v.Color[2])
		}
	}
	if cfg.Faces {
		bw.WriteString("g tunnel\n")
		for i := 0; i+2 < len(m.Triangles); i += 3 {
			fmt.Fprintf(bw, "f %d %d %d\n", m.Triangles[i]+1, m.Triangles[i+1]+1, m.Triangles[i+2]+1)
		}
	}
	writeLines := func(group string, idx []uint32) {
		bw.WriteString("g " + group + "\n")
		for i := 0; i+1 < len(idx); i += 2 {
			fmt.Fprintf(bw, "l %d %d\n", idx[i]+1, idx[i+1]+1)
		}
	}
	if cfg.Longitude {
		writeLines("longitude", m.LongLines)
	}
	if cfg.Latitude {
		writeLines("latitude", m.LatLines)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing OBJ: %w", err)
	}
	return nil
}
