// Package sampler implements projective texture mapping: for a point on the
// paper it finds where that point appears in an image captured from the
// projector and fetches the source image there.
package sampler

import (
	"image"
	"image/color"

	"paper-anamorph/internal/mathutil"
	"paper-anamorph/internal/raster"
)

// Mode selects output framing only. The projection math is the same in both.
type Mode int

const (
	// Interactive leaves unprojected areas transparent.
	Interactive Mode = iota
	// Export fills unprojected areas with opaque white and flattens
	// translucent texels onto white, so the print has no holes.
	Export
)

func (m Mode) String() string {
	switch m {
	case Interactive:
		return "interactive"
	case Export:
		return "export"
	}
	return "unknown"
}

var (
	transparent = color.NRGBA{}
	paperWhite  = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

// Uniforms are the per-pass inputs of the projective sampler.
type Uniforms struct {
	View       mathutil.Mat4 // projector world → projector camera
	Projection mathutil.Mat4 // projector camera → clip
	Model      mathutil.Mat4 // surface local → world
	Texture    *image.NRGBA
}

// Sampler evaluates the projection for many points with one precomputed
// Projection × View × Model product.
type Sampler struct {
	u   Uniforms
	pvm mathutil.Mat4
}

// New freezes the uniforms for one pass.
func New(u Uniforms) *Sampler {
	return &Sampler{
		u:   u,
		pvm: mathutil.Mat4Mul(u.Projection, mathutil.Mat4Mul(u.View, u.Model)),
	}
}

// Project maps a surface-local point to image space. (u, v) has (0, 0) at the
// top-left of the source image. ok is false when the point is behind the
// projector or outside its frustum after the perspective divide.
func (s *Sampler) Project(local mathutil.Vec3) (u, v float64, ok bool) {
	clip := s.pvm.MulVec4(local)
	if clip[3] <= 0 {
		return 0, 0, false
	}
	ndc := clip.PerspectiveDivide()
	if ndc[0] < -1 || ndc[0] > 1 || ndc[1] < -1 || ndc[1] > 1 || ndc[2] < -1 || ndc[2] > 1 {
		return 0, 0, false
	}
	// NDC y points up, image rows go down.
	return ndc[0]*0.5 + 0.5, 0.5 - ndc[1]*0.5, true
}

// Sample returns the color for a surface-local point. The bool reports
// whether the source image was sampled.
func (s *Sampler) Sample(local mathutil.Vec3, mode Mode) (color.NRGBA, bool) {
	if s.u.Texture == nil {
		return background(mode), false
	}
	u, v, ok := s.Project(local)
	if !ok {
		return background(mode), false
	}
	r, g, b, a := raster.SampleTexture(s.u.Texture, u, v)
	c := color.NRGBA{R: r, G: g, B: b, A: a}
	if mode == Export && a < 255 {
		c = overWhite(c)
	}
	return c, true
}

func background(mode Mode) color.NRGBA {
	if mode == Export {
		return paperWhite
	}
	return transparent
}

func overWhite(c color.NRGBA) color.NRGBA {
	a := float64(c.A) / 255
	k := 255 * (1 - a)
	return color.NRGBA{
		R: uint8(float64(c.R)*a + k + 0.5),
		G: uint8(float64(c.G)*a + k + 0.5),
		B: uint8(float64(c.B)*a + k + 0.5),
		A: 255,
	}
}

// Shader adapts a Sampler to the rasterizer for one pass in a fixed mode.
// Each pass builds its own Shader, so an export never mutates the mode an
// interactive pass sees.
type Shader struct {
	Sampler *Sampler
	Mode    Mode
}

func (sh Shader) Shade(f raster.Fragment) (color.NRGBA, bool) {
	c, _ := sh.Sampler.Sample(f.Local, sh.Mode)
	return c, c.A > 0
}
