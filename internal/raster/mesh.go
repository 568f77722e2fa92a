package raster

import (
	"image"
	"image/color"

	"paper-anamorph/internal/geometry"
	"paper-anamorph/internal/mathutil"
)

// Fragment carries the interpolated attributes of one covered pixel.
type Fragment struct {
	Local  mathutil.Vec3 // object-space position
	UV     [2]float64    // geometry UV, v up
	Normal mathutil.Vec3 // world-space face normal
}

// Shader colors a fragment. Returning false discards it.
type Shader interface {
	Shade(f Fragment) (color.NRGBA, bool)
}

// Mesh is one drawable: geometry, its object-to-world matrix and a shader.
type Mesh struct {
	Name     string
	Geometry *geometry.Geometry
	Model    mathutil.Mat4
	Shader   Shader
	Visible  bool
}

// Scene is an ordered draw list.
type Scene []*Mesh

// TextureShader maps the geometry UVs onto a texture, optionally lit and
// faded. A nil texture draws Base.
type TextureShader struct {
	Texture *image.NRGBA
	Base    color.NRGBA
	Opacity float64 // 0 is treated as 1
	Light   *LightConfig
}

func (s *TextureShader) Shade(f Fragment) (color.NRGBA, bool) {
	c := s.Base
	if s.Texture != nil {
		c.R, c.G, c.B, c.A = SampleTexture(s.Texture, f.UV[0], 1-f.UV[1])
	}
	if s.Light != nil {
		k := s.Light.ComputeShade(f.Normal)
		c.R = clamp255(float64(c.R) * k)
		c.G = clamp255(float64(c.G) * k)
		c.B = clamp255(float64(c.B) * k)
	}
	if s.Opacity > 0 && s.Opacity < 1 {
		c.A = clamp255(float64(c.A) * s.Opacity)
	}
	return c, c.A > 0
}
