package raster

import (
	"fmt"
	"image/color"

	"paper-anamorph/internal/logging"
	"paper-anamorph/internal/mathutil"
)

// Device is the software rendering backend. It owns the viewport target and
// tracks which target is bound and which clear color is active.
type Device struct {
	// AutoClear clears the bound target before every Render.
	AutoClear bool

	viewport *RenderTarget
	target   *RenderTarget // nil means the viewport
	clear    color.NRGBA
}

// NewDevice creates a device with a w×h viewport.
func NewDevice(w, h int, clear color.NRGBA) (*Device, error) {
	vp, err := NewRenderTarget(w, h, 0)
	if err != nil {
		return nil, fmt.Errorf("raster: viewport: %w", err)
	}
	vp.Clear(clear)
	return &Device{AutoClear: true, viewport: vp, clear: clear}, nil
}

// Viewport returns the on-screen target.
func (d *Device) Viewport() *RenderTarget {
	return d.viewport
}

// ResizeViewport reallocates the on-screen target.
func (d *Device) ResizeViewport(w, h int) error {
	vp, err := NewRenderTarget(w, h, 0)
	if err != nil {
		return fmt.Errorf("raster: resize viewport: %w", err)
	}
	vp.Clear(d.clear)
	d.viewport = vp
	return nil
}

// RenderTarget returns the bound offscreen target, or nil for the viewport.
func (d *Device) RenderTarget() *RenderTarget {
	return d.target
}

// SetRenderTarget binds rt; nil binds the viewport.
func (d *Device) SetRenderTarget(rt *RenderTarget) {
	d.target = rt
}

func (d *Device) ClearColor() color.NRGBA {
	return d.clear
}

func (d *Device) SetClearColor(c color.NRGBA) {
	d.clear = c
}

func (d *Device) current() *RenderTarget {
	if d.target != nil {
		return d.target
	}
	return d.viewport
}

// WithRenderTarget binds rt with the given clear color for the duration of
// fn, then restores the previous target and clear color on every exit path,
// including errors and panics.
func (d *Device) WithRenderTarget(rt *RenderTarget, clear color.NRGBA, fn func() error) error {
	prevTarget, prevClear := d.target, d.clear
	defer func() {
		d.target = prevTarget
		d.clear = prevClear
	}()

	d.target = rt
	d.clear = clear
	rt.Clear(clear)
	return fn()
}

// Render draws every visible mesh of scene through cam into the bound target.
func (d *Device) Render(scene Scene, cam Camera) {
	rt := d.current()
	if d.AutoClear {
		rt.Clear(d.clear)
	}
	vp := cam.ViewProjection()

	drawn := 0
	for _, m := range scene {
		if m == nil || !m.Visible || m.Shader == nil || m.Geometry == nil || m.Geometry.Released() {
			continue
		}
		drawMesh(rt, vp, m)
		drawn++
	}
	logging.Logger().Debug("raster: render", "meshes", drawn, "width", rt.Width, "height", rt.Height)
}

// drawMesh runs the vertex stage for all positions once, then fills each
// triangle.
func drawMesh(rt *RenderTarget, vp mathutil.Mat4, m *Mesh) {
	g := m.Geometry
	mvp := mathutil.Mat4Mul(vp, m.Model)

	n := len(g.Positions)
	clip := make([]mathutil.Vec4, n)
	world := make([]mathutil.Vec3, n)
	for i, p := range g.Positions {
		clip[i] = mvp.MulVec4(p)
		world[i] = m.Model.MulPoint(p)
	}
	hasUV := len(g.UVs) == n

	for _, tri := range g.Indices {
		a, b, c := tri[0], tri[1], tri[2]
		if a < 0 || a >= n || b < 0 || b >= n || c < 0 || c >= n {
			continue
		}
		normal := world[b].Sub(world[a]).Cross(world[c].Sub(world[a])).Normalize()
		var uv [3][2]float64
		if hasUV {
			uv = [3][2]float64{g.UVs[a], g.UVs[b], g.UVs[c]}
		}
		rasterizeTriangle(rt,
			[3]mathutil.Vec4{clip[a], clip[b], clip[c]},
			[3]mathutil.Vec3{g.Positions[a], g.Positions[b], g.Positions[c]},
			uv, normal, m.Shader)
	}
}

// ReadRenderTargetPixels copies rt's color buffer into buf synchronously.
func (d *Device) ReadRenderTargetPixels(rt *RenderTarget, buf []uint8) error {
	if rt == nil {
		rt = d.viewport
	}
	if len(buf) < len(rt.Color) {
		return fmt.Errorf("raster: readback buffer has %d bytes, need %d", len(buf), len(rt.Color))
	}
	copy(buf, rt.Color)
	return nil
}
