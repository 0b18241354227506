package tunnelaux

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/soypat/geometry/md3"
	"github.com/soypat/glgl/math/ms1"
	"github.com/soypat/tunnel"
)

// Limits applied by [DisplayConfig.Clamp].
const (
	MaxSpeed       = 0.5
	MinNumPolygons = 10
	MaxNumPolygons = 1000
)

// Curve is a sweepable curve exposing its tangent and normal so a camera can ride it.
// [tunnel.Curve3D] and [tunnel.Projected4D] implement Curve.
type Curve interface {
	tunnel.Sweeper
	D1(t float64) md3.Vec
	D2(t float64) md3.Vec
}

// DisplayConfig holds the values a host changes at runtime.
type DisplayConfig struct {
	// Speed is the curve parameter advanced per second of animation.
	Speed float32
	// Overlay toggles.
	ShowLongitude bool
	ShowLatitude  bool
	ShowTunnel    bool
	// OutsideView places the camera outside the tunnel looking at the origin
	// instead of riding the curve.
	OutsideView bool
	Palette     Palette
	Mesh        tunnel.MeshParams
}

// DefaultDisplayConfig returns the configuration the viewer starts with.
func DefaultDisplayConfig() DisplayConfig {
	return DisplayConfig{
		Speed:         0.1,
		ShowLongitude: true,
		ShowLatitude:  true,
		ShowTunnel:    true,
		Mesh: tunnel.MeshParams{
			PolygonRadius: 1,
			PolygonSides:  7,
			NumPolygons:   200,
		},
	}
}

// Clamp returns cfg with Speed limited to [-MaxSpeed, MaxSpeed] and the
// polygon count limited to [MinNumPolygons, MaxNumPolygons].
func (cfg DisplayConfig) Clamp() DisplayConfig {
	cfg.Speed = ms1.Clamp(cfg.Speed, -MaxSpeed, MaxSpeed)
	cfg.Mesh.NumPolygons = min(max(cfg.Mesh.NumPolygons, MinNumPolygons), MaxNumPolygons)
	return cfg
}

func (cfg DisplayConfig) flatOptions() tunnel.FlatOptions {
	return tunnel.FlatOptions{
		Longitude: cfg.ShowLongitude,
		Latitude:  cfg.ShowLatitude,
		Tunnel:    cfg.ShowTunnel,
	}
}

// Driver owns the animation state of a tunnel viewer. It regenerates the mesh
// only when the mesh parameters or palette change and rebuilds flat buffers only
// when an overlay toggle changes. A Driver is not safe for concurrent use.
type Driver struct {
	curve  Curve
	cfg    DisplayConfig
	t      float64
	extent float64

	mesh     tunnel.Mesh
	buffers  tunnel.FlatBuffers
	meshGen  int
	flatGen  int
	flatOpts tunnel.FlatOptions
	flatOK   bool
}

// NewDriver generates the initial mesh for c with the clamped configuration.
func NewDriver(c Curve, cfg DisplayConfig) (*Driver, error) {
	if c == nil {
		return nil, errors.New("nil curve")
	}
	d := &Driver{curve: c}
	d.cfg = cfg.Clamp()
	err := d.regenerate()
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Config returns the current clamped configuration.
func (d *Driver) Config() DisplayConfig { return d.cfg }

// SetConfig applies cfg after clamping. On error the previous mesh and
// configuration are kept.
func (d *Driver) SetConfig(cfg DisplayConfig) error {
	cfg = cfg.Clamp()
	prev := d.cfg
	d.cfg = cfg
	if cfg.Mesh != prev.Mesh || cfg.Palette != prev.Palette {
		err := d.regenerate()
		if err != nil {
			d.cfg = prev
			return err
		}
	}
	return nil
}

func (d *Driver) regenerate() error {
	m, err := tunnel.GenerateMesh(d.curve, d.cfg.Mesh)
	if err != nil {
		return fmt.Errorf("generating tunnel mesh: %w", err)
	}
	err = Recolor(&m, d.cfg.Mesh, d.cfg.Palette)
	if err != nil {
		return err
	}
	d.mesh = m
	d.meshGen++
	d.flatOK = false
	d.extent = 0
	for _, v := range m.Vertices {
		r := math.Sqrt(float64(v.Pos[0]*v.Pos[0] + v.Pos[1]*v.Pos[1] + v.Pos[2]*v.Pos[2]))
		d.extent = max(d.extent, r)
	}
	return nil
}

// Mesh returns the cached indexed mesh. The returned mesh must not be modified.
func (d *Driver) Mesh() *tunnel.Mesh { return &d.mesh }

// Generation returns the number of times the mesh has been generated. Hosts
// compare it against the last uploaded generation to skip GPU uploads.
func (d *Driver) Generation() int { return d.meshGen }

// Buffers returns flat position buffers for the enabled overlays, rebuilding
// them only after the mesh or the overlay toggles change.
func (d *Driver) Buffers() (tunnel.FlatBuffers, error) {
	opts := d.cfg.flatOptions()
	if d.flatOK && opts == d.flatOpts {
		return d.buffers, nil
	}
	fb, err := tunnel.GenerateBuffers(d.curve, d.cfg.Mesh, opts)
	if err != nil {
		return tunnel.FlatBuffers{}, fmt.Errorf("generating flat buffers: %w", err)
	}
	d.buffers = fb
	d.flatOpts = opts
	d.flatOK = true
	d.flatGen++
	return fb, nil
}

// Time returns the current curve parameter in [0, 2π).
func (d *Driver) Time() float64 { return d.t }

// Advance moves the curve parameter forward by Speed·dt and wraps it into [0, 2π).
// dt is in seconds. Negative speeds travel backwards.
func (d *Driver) Advance(dt float64) float64 {
	const tau = 2 * math.Pi
	d.t = math.Mod(d.t+float64(d.cfg.Speed)*dt, tau)
	if d.t < 0 {
		d.t += tau
	}
	return d.t
}

// Pose is a camera placement in world coordinates.
type Pose struct {
	Eye    md3.Vec
	Target md3.Vec
	Up     md3.Vec
}

// ViewMatrix returns the look-at view matrix of the pose.
func (p Pose) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(vec32(p.Eye), vec32(p.Target), vec32(p.Up))
}

// Camera returns the camera pose at curve parameter t. Inside the tunnel the
// eye sits on the curve looking along the tangent with the curve normal as up.
// Position, tangent and normal are all sampled at the same t, so the view
// direction is the tangent at the eye. Sampling the derivatives at 2t, as some
// hosts do, makes the camera look away from the tunnel axis.
// The outside view orbits the origin at three times the mesh extent.
func (d *Driver) Camera(t float64) Pose {
	if d.cfg.OutsideView {
		dist := 3 * max(d.extent, 1)
		s, c := math.Sincos(t)
		return Pose{
			Eye: md3.Vec{X: dist * s, Y: 0.5 * dist, Z: dist * c},
			Up:  md3.Vec{Y: 1},
		}
	}
	pos := d.curve.Position(t)
	return Pose{
		Eye:    pos,
		Target: md3.Add(pos, d.curve.D1(t)),
		Up:     d.curve.D2(t),
	}
}

// Extent returns the largest distance from the origin to a mesh vertex.
func (d *Driver) Extent() float64 { return d.extent }

func vec32(v md3.Vec) mgl32.Vec3 {
	return mgl32.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
}
