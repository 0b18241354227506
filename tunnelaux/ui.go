//go:build !tinygo && cgo

package tunnelaux

import (
	"fmt"
	"time"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/soypat/glgl/v4.6-core/glgl"
	"github.com/soypat/tunnel"
)

const vertexSource = `#version 460
in vec3 aPos;
in vec4 aColor;
uniform mat4 uMVP;
out vec4 vColor;
void main() {
	vColor = aColor;
	gl_Position = uMVP * vec4(aPos, 1.0);
}
` + "\x00"

const fragmentSource = `#version 460
in vec4 vColor;
out vec4 fragColor;
uniform int uLines; // Lines are drawn opaque and lightened.
void main() {
	if (uLines != 0) {
		fragColor = vec4(mix(vColor.rgb, vec3(1.0), 0.4), 1.0);
	} else {
		fragColor = vColor;
	}
}
` + "\x00"

// Attribute layout of the interleaved vertex buffer.
const (
	floatsPerVertex = 7
	vertexStride    = 4 * floatsPerVertex
)

// Key bindings. Speed steps mirror a slider with 0.005 resolution.
const (
	speedStep    = 0.005
	polygonsStep = 10
)

func ui(d *Driver, cfg UIConfig) error {
	log := func(args ...any) {
		if !cfg.Silent {
			fmt.Println(args...)
		}
	}
	window, term, err := startGLFW(cfg.Width, cfg.Height)
	if err != nil {
		return err
	}
	defer term()
	prog, err := glgl.CompileProgram(glgl.ShaderSource{
		Vertex:   vertexSource,
		Fragment: fragmentSource,
	})
	if err != nil {
		return fmt.Errorf("compiling tunnel program: %w", err)
	}
	prog.Bind()
	mvpUniform, err := prog.UniformLocation("uMVP\x00")
	if err != nil {
		return err
	}
	linesUniform, err := prog.UniformLocation("uLines\x00")
	if err != nil {
		return err
	}
	posAttrib, err := prog.AttribLocation("aPos\x00")
	if err != nil {
		return err
	}
	colorAttrib, err := prog.AttribLocation("aColor\x00")
	if err != nil {
		return err
	}

	var vao uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)
	var vbo uint32
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.EnableVertexAttribArray(posAttrib)
	gl.VertexAttribPointer(posAttrib, 3, gl.FLOAT, false, vertexStride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(colorAttrib)
	gl.VertexAttribPointer(colorAttrib, 4, gl.FLOAT, false, vertexStride, gl.PtrOffset(3*4))
	var ebos [3]uint32 // triangles, longitude, latitude.
	gl.GenBuffers(int32(len(ebos)), &ebos[0])

	var counts [3]int32
	uploaded := -1
	upload := func() {
		m := d.Mesh()
		data := interleave(make([]float32, 0, floatsPerVertex*m.VertexCount()), m)
		gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
		gl.BufferData(gl.ARRAY_BUFFER, 4*len(data), gl.Ptr(data), gl.DYNAMIC_DRAW)
		for i, idx := range [3][]uint32{m.Triangles, m.LongLines, m.LatLines} {
			counts[i] = int32(len(idx))
			if len(idx) == 0 {
				continue
			}
			gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ebos[i])
			gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, 4*len(idx), gl.Ptr(idx), gl.DYNAMIC_DRAW)
		}
		uploaded = d.Generation()
		log("uploaded", m.VertexCount(), "vertices and", m.TriangleCount(), "triangles")
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action == glfw.Release {
			return
		}
		c := d.Config()
		switch key {
		case glfw.KeyLeft:
			c.Speed -= speedStep
		case glfw.KeyRight:
			c.Speed += speedStep
		case glfw.KeySpace:
			c.Speed = 0
		case glfw.KeyUp:
			c.Mesh.NumPolygons += polygonsStep
		case glfw.KeyDown:
			c.Mesh.NumPolygons -= polygonsStep
		case glfw.KeyL:
			c.ShowLongitude = !c.ShowLongitude
		case glfw.KeyK:
			c.ShowLatitude = !c.ShowLatitude
		case glfw.KeyT:
			c.ShowTunnel = !c.ShowTunnel
		case glfw.KeyO:
			c.OutsideView = !c.OutsideView
		case glfw.KeyP:
			c.Palette = (c.Palette + 1) % (PaletteGradient + 1)
		case glfw.KeyEscape:
			w.SetShouldClose(true)
			return
		default:
			return
		}
		err := d.SetConfig(c)
		if err != nil {
			log("config rejected:", err)
			return
		}
		c = d.Config()
		log("speed", c.Speed, "polygons", c.Mesh.NumPolygons, "palette", c.Palette)
	})
	log("keys: ←/→ speed, space stop, ↑/↓ polygons, L longitude, K latitude, T tunnel, O outside view, P palette")

	var passes []drawPass
	ctx := cfg.Context
	previousTime := glfw.GetTime()
	for !window.ShouldClose() {
		if ctx != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}
		if uploaded != d.Generation() {
			upload()
		}
		currentTime := glfw.GetTime()
		t := d.Advance(currentTime - previousTime)
		previousTime = currentTime

		width, height := window.GetFramebufferSize()
		far := float32(10 * max(d.Extent(), 1))
		proj := mgl32.Perspective(mgl32.DegToRad(60), float32(width)/float32(max(height, 1)), 0.01, far)
		mvp := proj.Mul4(d.Camera(t).ViewMatrix())

		passes = framePasses(passes, d.Config())
		for _, pass := range passes {
			gl.DepthMask(pass.depthWrite)
			switch pass.kind {
			case passClear:
				gl.Viewport(0, 0, int32(width), int32(height))
				gl.ClearColor(0.1, 0.1, 0.1, 1.0)
				gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
				prog.Bind()
				gl.UniformMatrix4fv(mvpUniform, 1, false, &mvp[0])
				gl.BindVertexArray(vao)
			case passLongitude:
				gl.Uniform1i(linesUniform, 1)
				drawElements(gl.LINES, ebos[1], counts[1])
			case passLatitude:
				gl.Uniform1i(linesUniform, 1)
				drawElements(gl.LINES, ebos[2], counts[2])
			case passTunnel:
				gl.Uniform1i(linesUniform, 0)
				drawElements(gl.TRIANGLES, ebos[0], counts[0])
			}
		}
		window.SwapBuffers()
		glfw.PollEvents()
		time.Sleep(time.Second / 120)
	}
	return nil
}

func drawElements(mode, ebo uint32, count int32) {
	if count == 0 {
		return
	}
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ebo)
	gl.DrawElements(mode, count, gl.UNSIGNED_INT, gl.PtrOffset(0))
}

// interleave appends position and color of every vertex of m to dst.
func interleave(dst []float32, m *tunnel.Mesh) []float32 {
	for _, v := range m.Vertices {
		dst = append(dst, v.Pos[:]...)
		dst = append(dst, v.Color[:]...)
	}
	return dst
}

func startGLFW(width, height int) (window *glfw.Window, term func(), err error) {
	if err := glfw.Init(); err != nil {
		return nil, nil, fmt.Errorf("initializing GLFW: %w", err)
	}
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 6)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.Samples, 4)

	window, err = glfw.CreateWindow(width, height, "Lissajous tunnel", nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, nil, fmt.Errorf("creating GLFW window: %w", err)
	}
	window.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		glfw.Terminate()
		return nil, nil, fmt.Errorf("initializing OpenGL: %w", err)
	}
	gl.Enable(gl.MULTISAMPLE)
	return window, glfw.Terminate, nil
}
