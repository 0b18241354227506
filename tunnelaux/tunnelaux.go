package tunnelaux

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"time"

	"github.com/soypat/tunnel"
	"github.com/soypat/tunnel/glrender"
)

// RenderConfig selects the outputs written by [Render]. At least one output is required.
type RenderConfig struct {
	STLOutput io.Writer
	OBJOutput io.Writer
	// PNGOutput receives a wireframe preview of size ImageWidth×ImageHeight.
	PNGOutput   io.Writer
	ImageWidth  int
	ImageHeight int
	// Yaw and Pitch orient the preview camera in radians.
	Yaw, Pitch float32
	// Caption is drawn on the preview if not empty.
	Caption string
	Palette Palette
	// OBJ selects the elements written to OBJOutput. The zero value writes faces only.
	OBJ    glrender.OBJConfig
	Silent bool
}

// Render is an auxiliary function to aid users in getting a tunnel onto disk quickly.
// It generates the mesh once and writes every configured output.
func Render(c tunnel.Sweeper, params tunnel.MeshParams, cfg RenderConfig) (err error) {
	if cfg.STLOutput == nil && cfg.OBJOutput == nil && cfg.PNGOutput == nil {
		return errors.New("Render requires output parameter in config")
	}
	log := func(args ...any) {
		if !cfg.Silent {
			fmt.Println(args...)
		}
	}
	watch := stopwatch()
	mesh, err := tunnel.GenerateMesh(c, params)
	if err != nil {
		return fmt.Errorf("generating tunnel: %w", err)
	}
	err = Recolor(&mesh, params, cfg.Palette)
	if err != nil {
		return err
	}
	log("generated", mesh.VertexCount(), "vertices and", mesh.TriangleCount(), "triangles in", watch())

	if cfg.STLOutput != nil {
		watch = stopwatch()
		renderer, err := glrender.NewMeshRenderer(&mesh)
		if err != nil {
			return err
		}
		triangles, err := glrender.RenderAll(renderer)
		if err != nil {
			return fmt.Errorf("rendering triangles: %w", err)
		}
		_, err = glrender.WriteBinarySTL(cfg.STLOutput, triangles)
		if err != nil {
			return fmt.Errorf("writing STL file: %w", err)
		}
		log("wrote", outputName(cfg.STLOutput, "STL"), "in", watch())
	}

	if cfg.OBJOutput != nil {
		watch = stopwatch()
		objCfg := cfg.OBJ
		if objCfg == (glrender.OBJConfig{}) {
			objCfg.Faces = true
		}
		err = glrender.WriteOBJ(cfg.OBJOutput, &mesh, objCfg)
		if err != nil {
			return fmt.Errorf("writing OBJ file: %w", err)
		}
		log("wrote", outputName(cfg.OBJOutput, "OBJ"), "in", watch())
	}

	if cfg.PNGOutput != nil {
		watch = stopwatch()
		w, h := cfg.ImageWidth, cfg.ImageHeight
		if w <= 0 || h <= 0 {
			w, h = 800, 600
		}
		wr, err := glrender.NewWireframeImageRenderer(glrender.ImageConfig{
			Yaw:        cfg.Yaw,
			Pitch:      cfg.Pitch,
			Background: color.RGBA{R: 25, G: 25, B: 25, A: 255},
			Caption:    cfg.Caption,
		})
		if err != nil {
			return err
		}
		img := image.NewRGBA(image.Rect(0, 0, w, h))
		err = wr.RenderMesh(img, &mesh)
		if err != nil {
			return fmt.Errorf("rendering preview: %w", err)
		}
		err = png.Encode(cfg.PNGOutput, img)
		if err != nil {
			return fmt.Errorf("encoding PNG: %w", err)
		}
		log("wrote", outputName(cfg.PNGOutput, "PNG preview"), "in", watch())
	}
	return nil
}

// UIConfig configures the interactive viewer started by [UI].
type UIConfig struct {
	Width, Height int
	// Context cancels the render loop when done. May be nil.
	Context context.Context
	// Silent disables key binding help and regeneration logs.
	Silent bool
}

// UI opens a window and animates a camera through the tunnel swept along c.
// Arrow keys change speed and polygon count. Requires cgo.
func UI(c Curve, display DisplayConfig, cfg UIConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return errors.New("invalid UI window dimensions")
	}
	driver, err := NewDriver(c, display)
	if err != nil {
		return err
	}
	return ui(driver, cfg)
}

func outputName(w io.Writer, fallback string) string {
	if fp, ok := w.(*os.File); ok {
		return fp.Name()
	}
	return fallback
}

func stopwatch() func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		return time.Since(start)
	}
}
