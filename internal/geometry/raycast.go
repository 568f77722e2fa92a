package geometry

import (
	"math"

	"paper-anamorph/internal/mathutil"
)

// Ray is a half-line origin + t·dir, t >= 0.
type Ray struct {
	Origin mathutil.Vec3
	Dir    mathutil.Vec3
}

// Raycast intersects r with g placed in the world by model. It returns the
// smallest ray parameter of any hit. Both faces count.
func (g *Geometry) Raycast(r Ray, model mathutil.Mat4) (float64, bool) {
	if g == nil || g.released {
		return 0, false
	}
	world := make([]mathutil.Vec3, len(g.Positions))
	for i, p := range g.Positions {
		world[i] = model.MulPoint(p)
	}

	best, hit := math.Inf(1), false
	for _, tri := range g.Indices {
		if t, ok := intersectTriangle(r, world[tri[0]], world[tri[1]], world[tri[2]]); ok && t < best {
			best, hit = t, true
		}
	}
	return best, hit
}

// intersectTriangle is the Möller–Trumbore test without backface culling.
func intersectTriangle(r Ray, a, b, c mathutil.Vec3) (float64, bool) {
	const eps = 1e-12
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	p := r.Dir.Cross(e2)
	det := e1.Dot(p)
	if math.Abs(det) < eps {
		return 0, false
	}
	inv := 1 / det
	s := r.Origin.Sub(a)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(e1)
	v := r.Dir.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t := e2.Dot(q) * inv
	if t < 0 {
		return 0, false
	}
	return t, true
}
