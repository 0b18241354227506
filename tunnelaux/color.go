package tunnelaux

import (
	"errors"

	math "github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms1"
	"github.com/soypat/tunnel"
)

// HSV helpers taken from Esme Lamb's (@dedelala) color manipulation work
// presented at Gophercon AU 2024.
// https://github.com/dedelala/disco/tree/main/color

// Palette selects how tunnel rings are colored.
type Palette uint8

const (
	// PaletteCosine is the default [tunnel.RingColor] palette.
	PaletteCosine Palette = iota
	// PaletteHue sweeps the hue once around the loop at full saturation and value.
	PaletteHue
	// PaletteGradient interpolates in HSV from GradientStart to GradientEnd and back.
	PaletteGradient
)

// Gradient end points used by [PaletteGradient] as 24 bit RGB.
var (
	GradientStart uint32 = 0x4ecdc4
	GradientEnd   uint32 = 0xff6b6b
)

func (p Palette) String() string {
	switch p {
	case PaletteCosine:
		return "cosine"
	case PaletteHue:
		return "hue"
	case PaletteGradient:
		return "gradient"
	}
	return "unknown"
}

// ParsePalette returns the palette named by s as printed by [Palette.String].
func ParsePalette(s string) (Palette, error) {
	for p := PaletteCosine; p <= PaletteGradient; p++ {
		if p.String() == s {
			return p, nil
		}
	}
	return 0, errors.New("unknown palette " + s)
}

// RingColor returns the RGBA color of ring i out of n under palette p. The
// closing ring n always shares the color of ring 0 and alpha matches the core palette.
func (p Palette) RingColor(i, n int) [4]float32 {
	c := tunnel.RingColor(i, n)
	if p == PaletteCosine {
		return c
	}
	if n <= 0 || i == n {
		i, n = 0, 1
	}
	frac := float32(i) / float32(n)
	var r, g, b float32
	switch p {
	case PaletteHue:
		r, g, b = hsvToRGB(frac, 1, 1)
	case PaletteGradient:
		// Triangle wave so the loop closes without a seam.
		blend := 1 - math.Abs(2*frac-1)
		r, g, b = cToRGB(cInterp(GradientStart, GradientEnd, blend))
	}
	return [4]float32{r, g, b, c[3]}
}

// Recolor rewrites the vertex colors of a mesh generated with params using palette p.
func Recolor(m *tunnel.Mesh, params tunnel.MeshParams, p Palette) error {
	if p == PaletteCosine {
		return nil // Already colored by the generator.
	}
	if p > PaletteGradient {
		return errors.New("unknown palette")
	}
	sides := params.PolygonSides
	if sides <= 0 || len(m.Vertices) != params.Rings()*sides {
		return errors.New("mesh does not match parameters")
	}
	n := params.NumPolygons
	for ring := 0; ring <= n; ring++ {
		c := p.RingColor(ring, n)
		for j := 0; j < sides; j++ {
			m.Vertices[ring*sides+j].Color = c
		}
	}
	return nil
}

func cInterp(c0, c1 uint32, t float32) uint32 {
	h0, s0, v0 := rgbToHSV(cToRGB(c0))
	h1, s1, v1 := rgbToHSV(cToRGB(c1))
	return rgbToC(hsvToRGB(interpHSV(h0, s0, v0, h1, s1, v1, t)))
}

func interpHSV(h0, s0, v0, h1, s1, v1, t float32) (h, s, v float32) {
	switch {
	case h1-h0 > 0.5:
		h0 += 1.0
	case h1-h0 < -0.5:
		h1 += 1.0
	}
	h = math.Mod(ms1.Interp(h0, h1, t), 1)
	s = ms1.Interp(s0, s1, t)
	v = ms1.Interp(v0, v1, t)
	return h, s, v
}

// cToRGB converts a 24 bit RGB value stored in the least significant bits
// of c to r, g and b values on the range of 0.0 to 1.0.
func cToRGB(c uint32) (r, g, b float32) {
	r = float32(uint8(c>>16)) / math.MaxUint8
	g = float32(uint8(c>>8)) / math.MaxUint8
	b = float32(uint8(c)) / math.MaxUint8
	return r, g, b
}

// rgbToC converts r, g, and b values on the range of 0.0 to 1.0 to a
// 24 bit RGB value. The inputs are clamped to the range of 0.0 to 1.0
func rgbToC(r, g, b float32) (c uint32) {
	return uint32(ms1.Clamp(r, 0, 1)*math.MaxUint8)<<16 |
		uint32(ms1.Clamp(g, 0, 1)*math.MaxUint8)<<8 |
		uint32(ms1.Clamp(b, 0, 1)*math.MaxUint8)
}

// hsvToRGB converts hue, saturation and brightness values on the range of 0.0
// to 1.0 to RGB values on the range of 0.0 to 1.0
func hsvToRGB(h, s, v float32) (r, g, b float32) {
	var (
		c = s * v
		x = c * (1 - math.Abs(math.Mod(h*6, 2)-1))
		m = v - c
	)
	switch {
	case h >= 0 && h <= 1.0/6:
		r, g, b = c, x, 0
	case h > 1.0/6 && h <= 2.0/6:
		r, g, b = x, c, 0
	case h > 2.0/6 && h <= 3.0/6:
		r, g, b = 0, c, x
	case h > 3.0/6 && h <= 4.0/6:
		r, g, b = 0, x, c
	case h > 4.0/6 && h <= 5.0/6:
		r, g, b = x, 0, c
	case h > 5.0/6 && h <= 1.0:
		r, g, b = c, 0, x
	}
	return r + m, g + m, b + m
}

// rgbToHSV converts red, green, and blue values on the range 0.0 to 1.0
// to hue, saturation and brightness values on the range 0.0 to 1.0
func rgbToHSV(r, g, b float32) (h, s, v float32) {
	var (
		xmax = max(r, g, b)
		xmin = min(r, g, b)
		c    = xmax - xmin
	)
	v = xmax
	switch {
	case c == 0:
		h = 0
	case v == r:
		h = (g - b) / (c * 6)
	case v == g:
		h = 1.0/3 + (b-r)/(c*6)
	case v == b:
		h = 2.0/3 + (r-g)/(c*6)
	}
	if h < 0 {
		h += 1
	}
	if xmax > 0 {
		s = c / xmax
	}
	return h, s, v
}
