package raster

import (
	"math"

	"paper-anamorph/internal/mathutil"
)

// edgeEps admits pixel centers lying exactly on a shared edge. The depth test
// rejects the second hit, so shared edges are never blended twice.
const edgeEps = 1e-9

// rasterizeTriangle fills one triangle given its clip-space vertices.
// Local position and UV are interpolated perspective-correctly, so the shader
// sees the exact object-space point under each pixel center.
//
// Designed for zero allocation in the pixel loop.
func rasterizeTriangle(
	rt *RenderTarget,
	clip [3]mathutil.Vec4,
	local [3]mathutil.Vec3,
	uv [3][2]float64,
	normal mathutil.Vec3,
	sh Shader,
) {
	// Triangles crossing the camera plane are dropped rather than clipped;
	// the scenes drawn here never straddle it.
	for _, c := range clip {
		if c[3] <= 1e-9 {
			return
		}
	}

	fw := float64(rt.Width)
	fh := float64(rt.Height)

	var sx, sy, sz, invW [3]float64
	for i, c := range clip {
		inv := 1.0 / c[3]
		invW[i] = inv
		sx[i] = (c[0]*inv*0.5 + 0.5) * fw
		sy[i] = (0.5 - c[1]*inv*0.5) * fh
		sz[i] = c[2] * inv
	}
	x0, y0 := sx[0], sy[0]
	x1, y1 := sx[1], sy[1]
	x2, y2 := sx[2], sy[2]

	// Bounding box
	minX := int(math.Floor(math.Min(math.Min(x0, x1), x2)))
	maxX := int(math.Ceil(math.Max(math.Max(x0, x1), x2)))
	minY := int(math.Floor(math.Min(math.Min(y0, y1), y2)))
	maxY := int(math.Ceil(math.Max(math.Max(y0, y1), y2)))

	if minX < 0 {
		minX = 0
	}
	if maxX >= rt.Width {
		maxX = rt.Width - 1
	}
	if minY < 0 {
		minY = 0
	}
	if maxY >= rt.Height {
		maxY = rt.Height - 1
	}
	if minX > maxX || minY > maxY {
		return
	}

	// Barycentric setup
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-12 && det < 1e-12 {
		return
	}
	invDet := 1.0 / det

	// Precompute edge deltas
	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	for py := minY; py <= maxY; py++ {
		dsy := float64(py) + 0.5 - y2
		rowOff := py * rt.Width
		for px := minX; px <= maxX; px++ {
			dsx := float64(px) + 0.5 - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1

			if w0 < -edgeEps || w1 < -edgeEps || w2 < -edgeEps {
				continue
			}

			z := w0*sz[0] + w1*sz[1] + w2*sz[2]
			if z < -1 || z > 1 {
				continue
			}
			idx := rowOff + px
			if z >= rt.Depth[idx] {
				continue
			}

			// Perspective-correct weights
			p0 := w0 * invW[0]
			p1 := w1 * invW[1]
			p2 := w2 * invW[2]
			ps := 1.0 / (p0 + p1 + p2)
			p0 *= ps
			p1 *= ps
			p2 *= ps

			f := Fragment{
				Local: mathutil.Vec3{
					p0*local[0][0] + p1*local[1][0] + p2*local[2][0],
					p0*local[0][1] + p1*local[1][1] + p2*local[2][1],
					p0*local[0][2] + p1*local[1][2] + p2*local[2][2],
				},
				UV: [2]float64{
					p0*uv[0][0] + p1*uv[1][0] + p2*uv[2][0],
					p0*uv[0][1] + p1*uv[1][1] + p2*uv[2][1],
				},
				Normal: normal,
			}

			c, ok := sh.Shade(f)
			if !ok {
				continue
			}
			rt.Depth[idx] = z
			pi := idx * 4
			blendOver(rt.Color[pi:pi+4], c)
		}
	}
}
