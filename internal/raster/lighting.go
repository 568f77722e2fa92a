package raster

import (
	"math"

	"paper-anamorph/internal/mathutil"
)

// LightConfig holds a flat-shading light rig: one ambient term and one
// directional light.
type LightConfig struct {
	LightDir mathutil.Vec3
	Ambient  float64
	Direct   float64
}

// DefaultLightConfig matches the viewport scene lights.
func DefaultLightConfig() LightConfig {
	return LightConfig{
		LightDir: mathutil.Vec3{5, 10, 7.5}.Normalize(),
		Ambient:  0.6,
		Direct:   1.0,
	}
}

// ComputeShade returns the lighting scalar for a world-space face normal,
// clamped to 1 so lit surfaces never exceed their albedo.
func (lc *LightConfig) ComputeShade(normal mathutil.Vec3) float64 {
	// abs for double-sided
	ndl := math.Abs(normal.Dot(lc.LightDir))
	return math.Min(lc.Ambient+ndl*lc.Direct, 1)
}
