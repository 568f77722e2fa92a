package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
)

// ErrTargetTooLarge is returned when a render target would exceed the pixel
// budget. Allocation is refused instead of letting make() panic.
var ErrTargetTooLarge = errors.New("raster: render target too large")

// maxAllocPixels caps "unlimited" targets so the color buffer length
// (4 bytes per pixel) always fits in an int.
const maxAllocPixels = math.MaxInt / 8

// RenderTarget holds a color buffer and depth buffer as flat slices for cache
// locality.
type RenderTarget struct {
	Width  int
	Height int
	Color  []uint8   // non-premultiplied RGBA, len = W*H*4, row 0 at the top
	Depth  []float64 // NDC depth per pixel, len = W*H, cleared to +inf
}

// NewRenderTarget allocates a w×h target. maxPixels <= 0 means unlimited.
func NewRenderTarget(w, h int, maxPixels int64) (*RenderTarget, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("raster: invalid target size %dx%d", w, h)
	}
	limit := maxPixels
	if limit <= 0 || limit > maxAllocPixels {
		limit = maxAllocPixels
	}
	if int64(w) > limit/int64(h) {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrTargetTooLarge, w, h, limit)
	}
	n := int64(w) * int64(h)
	rt := &RenderTarget{
		Width:  w,
		Height: h,
		Color:  make([]uint8, n*4),
		Depth:  make([]float64, n),
	}
	rt.Clear(color.NRGBA{})
	return rt, nil
}

// Clear fills the color buffer with c and resets depth.
func (rt *RenderTarget) Clear(c color.NRGBA) {
	for i := 0; i < len(rt.Color); i += 4 {
		rt.Color[i] = c.R
		rt.Color[i+1] = c.G
		rt.Color[i+2] = c.B
		rt.Color[i+3] = c.A
	}
	inf := math.Inf(1)
	for i := range rt.Depth {
		rt.Depth[i] = inf
	}
}

// Image copies the color buffer into a new NRGBA image.
func (rt *RenderTarget) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, rt.Width, rt.Height))
	copy(img.Pix, rt.Color)
	return img
}

// blendOver composites a non-premultiplied source pixel over the destination.
func blendOver(dst []uint8, c color.NRGBA) {
	if c.A == 255 {
		dst[0], dst[1], dst[2], dst[3] = c.R, c.G, c.B, 255
		return
	}
	sa := float64(c.A) / 255
	da := float64(dst[3]) / 255
	oa := sa + da*(1-sa)
	if oa <= 0 {
		dst[0], dst[1], dst[2], dst[3] = 0, 0, 0, 0
		return
	}
	k := da * (1 - sa)
	dst[0] = clamp255((float64(c.R)*sa + float64(dst[0])*k) / oa)
	dst[1] = clamp255((float64(c.G)*sa + float64(dst[1])*k) / oa)
	dst[2] = clamp255((float64(c.B)*sa + float64(dst[2])*k) / oa)
	dst[3] = clamp255(oa * 255)
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
