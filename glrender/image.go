package glrender

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/chewxy/math32"
	"github.com/golang/freetype/truetype"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/tunnel"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// ImageConfig configures a [WireframeImageRenderer].
type ImageConfig struct {
	// Yaw and Pitch rotate the scene (radians) before the orthographic projection.
	Yaw, Pitch float32
	// LineWidth in pixels. If zero a width of 1.2 pixels is used.
	LineWidth float32
	// Background fills the image before drawing. Nil leaves the image untouched.
	Background color.Color
	// LongitudeColor is used for lines running along the curve. Nil uses a light gray.
	LongitudeColor color.Color
	// Caption is drawn at the top-left corner of the image if not empty.
	Caption string
	// CaptionSize is the caption font size in points. If zero 12 is used.
	CaptionSize float64
}

// WireframeImageRenderer draws tunnel line overlays into images using an
// orthographic projection fitted to the image bounds.
type WireframeImageRenderer struct {
	cfg   ImageConfig
	rot   [3]ms3.Vec // rows of the view rotation.
	ras   vector.Rasterizer
	face  font.Face
	scale float32
	off   ms3.Vec
}

// NewWireframeImageRenderer instances a new [WireframeImageRenderer].
func NewWireframeImageRenderer(cfg ImageConfig) (*WireframeImageRenderer, error) {
	if cfg.LineWidth < 0 {
		return nil, errors.New("negative line width")
	}
	if cfg.LineWidth == 0 {
		cfg.LineWidth = 1.2
	}
	if cfg.LongitudeColor == nil {
		cfg.LongitudeColor = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	}
	if cfg.CaptionSize == 0 {
		cfg.CaptionSize = 12
	}
	wr := &WireframeImageRenderer{cfg: cfg}
	sy, cy := math32.Sincos(cfg.Yaw)
	sp, cp := math32.Sincos(cfg.Pitch)
	// Yaw around Y followed by pitch around X.
	wr.rot = [3]ms3.Vec{
		{X: cy, Y: 0, Z: sy},
		{X: sp * sy, Y: cp, Z: -sp * cy},
		{X: -cp * sy, Y: sp, Z: cp * cy},
	}
	if cfg.Caption != "" {
		ttf, err := truetype.Parse(goregular.TTF)
		if err != nil {
			return nil, fmt.Errorf("parsing caption font: %w", err)
		}
		wr.face = truetype.NewFace(ttf, &truetype.Options{Size: cfg.CaptionSize, Hinting: font.HintingFull})
	}
	return wr, nil
}

// RenderMesh draws the latitude lines of m colored per ring and the longitude
// lines with the configured longitude color.
func (wr *WireframeImageRenderer) RenderMesh(img draw.Image, m *tunnel.Mesh) error {
	if m == nil || m.IsEmpty() {
		return errors.New("empty mesh")
	}
	wr.fit(img.Bounds(), m.Positions())
	if wr.cfg.Background != nil {
		draw.Draw(img, img.Bounds(), image.NewUniform(wr.cfg.Background), image.Point{}, draw.Src)
	}
	pos := func(idx uint32) ms3.Vec {
		p := m.Vertices[idx].Pos
		return ms3.Vec{X: p[0], Y: p[1], Z: p[2]}
	}
	var segs []ms3.Vec
	for i := 0; i+1 < len(m.LongLines); i += 2 {
		segs = append(segs, pos(m.LongLines[i]), pos(m.LongLines[i+1]))
	}
	wr.drawSegments(img, segs, wr.cfg.LongitudeColor)

	// Latitude segments are ring major. Draw each ring with its own color.
	segs = segs[:0]
	var ringColor [4]float32
	flush := func() {
		if len(segs) > 0 {
			wr.drawSegments(img, segs, toRGBA(ringColor))
			segs = segs[:0]
		}
	}
	for i := 0; i+1 < len(m.LatLines); i += 2 {
		c := m.Vertices[m.LatLines[i]].Color
		if c != ringColor {
			flush()
			ringColor = c
		}
		segs = append(segs, pos(m.LatLines[i]), pos(m.LatLines[i+1]))
	}
	flush()
	wr.drawCaption(img)
	return nil
}

// RenderLines draws a flat line buffer (x,y,z pairs as in [tunnel.FlatBuffers])
// with a single color.
func (wr *WireframeImageRenderer) RenderLines(img draw.Image, lines []float32, c color.Color) error {
	if len(lines)%6 != 0 {
		return errors.New("line buffer length not multiple of 6")
	}
	wr.fit(img.Bounds(), lines)
	if wr.cfg.Background != nil {
		draw.Draw(img, img.Bounds(), image.NewUniform(wr.cfg.Background), image.Point{}, draw.Src)
	}
	segs := make([]ms3.Vec, 0, len(lines)/3)
	for i := 0; i+2 < len(lines); i += 3 {
		segs = append(segs, ms3.Vec{X: lines[i], Y: lines[i+1], Z: lines[i+2]})
	}
	wr.drawSegments(img, segs, c)
	wr.drawCaption(img)
	return nil
}

// fit chooses scale and offset so the bounding sphere of the points fills 90% of the image.
func (wr *WireframeImageRenderer) fit(bounds image.Rectangle, flat []float32) {
	var maxR float32
	for i := 0; i+2 < len(flat); i += 3 {
		r := ms3.Norm(ms3.Vec{X: flat[i], Y: flat[i+1], Z: flat[i+2]})
		maxR = math32.Max(maxR, r)
	}
	if maxR == 0 {
		maxR = 1
	}
	half := float32(min(bounds.Dx(), bounds.Dy())) / 2
	wr.scale = 0.9 * half / maxR
	wr.off = ms3.Vec{
		X: float32(bounds.Min.X) + float32(bounds.Dx())/2,
		Y: float32(bounds.Min.Y) + float32(bounds.Dy())/2,
	}
}

// project maps a world point to image coordinates. Image Y grows downward.
func (wr *WireframeImageRenderer) project(p ms3.Vec) (x, y float32) {
	x = ms3.Dot(wr.rot[0], p)*wr.scale + wr.off.X
	y = -ms3.Dot(wr.rot[1], p)*wr.scale + wr.off.Y
	return x, y
}

// drawSegments rasterizes segment pairs as thin quads limited to their pixel bounding box.
func (wr *WireframeImageRenderer) drawSegments(img draw.Image, segs []ms3.Vec, c color.Color) {
	if len(segs) < 2 {
		return
	}
	hw := wr.cfg.LineWidth / 2
	pts := make([][2]float32, len(segs))
	bb := image.Rectangle{Min: image.Pt(1<<30, 1<<30), Max: image.Pt(-1<<30, -1<<30)}
	for i, p := range segs {
		x, y := wr.project(p)
		pts[i] = [2]float32{x, y}
		pad := int(hw) + 2
		bb.Min.X = min(bb.Min.X, int(math32.Floor(x))-pad)
		bb.Min.Y = min(bb.Min.Y, int(math32.Floor(y))-pad)
		bb.Max.X = max(bb.Max.X, int(math32.Ceil(x))+pad)
		bb.Max.Y = max(bb.Max.Y, int(math32.Ceil(y))+pad)
	}
	bb = bb.Intersect(img.Bounds())
	if bb.Empty() {
		return
	}
	wr.ras.Reset(bb.Dx(), bb.Dy())
	ox, oy := float32(bb.Min.X), float32(bb.Min.Y)
	for i := 0; i+1 < len(pts); i += 2 {
		x0, y0 := pts[i][0]-ox, pts[i][1]-oy
		x1, y1 := pts[i+1][0]-ox, pts[i+1][1]-oy
		dx, dy := x1-x0, y1-y0
		l := math32.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		// Left normal keeps every quad with the same winding so coverage never cancels.
		nx, ny := -dy/l*hw, dx/l*hw
		wr.ras.MoveTo(x0+nx, y0+ny)
		wr.ras.LineTo(x1+nx, y1+ny)
		wr.ras.LineTo(x1-nx, y1-ny)
		wr.ras.LineTo(x0-nx, y0-ny)
		wr.ras.ClosePath()
	}
	wr.ras.Draw(img, bb, image.NewUniform(c), image.Point{})
}

func (wr *WireframeImageRenderer) drawCaption(img draw.Image) {
	if wr.face == nil {
		return
	}
	b := img.Bounds()
	ascent := wr.face.Metrics().Ascent
	d := font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: wr.face,
		Dot:  fixed.Point26_6{X: fixed.I(b.Min.X + 6), Y: fixed.I(b.Min.Y+4) + ascent},
	}
	d.DrawString(wr.cfg.Caption)
}

func toRGBA(c [4]float32) color.RGBA {
	conv := func(f float32) uint8 {
		return uint8(math32.Round(255 * min(max(f, 0), 1)))
	}
	// Preview lines are drawn opaque regardless of the mesh alpha.
	return color.RGBA{R: conv(c[0]), G: conv(c[1]), B: conv(c[2]), A: 255}
}
