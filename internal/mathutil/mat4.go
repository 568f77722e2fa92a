package mathutil

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Mat4 is a 4×4 matrix stored row-major and applied to column vectors.
type Mat4 [16]float64

func Mat4Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Mat4Mul returns a × b.
func Mat4Mul(a, b Mat4) Mat4 {
	var m Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			m[r*4+c] = a[r*4+0]*b[0*4+c] + a[r*4+1]*b[1*4+c] +
				a[r*4+2]*b[2*4+c] + a[r*4+3]*b[3*4+c]
		}
	}
	return m
}

// MulPoint transforms a 3D point (w=1) by the 4×4 matrix, ignoring the
// projective row. Use MulVec4 for projections.
func (m Mat4) MulPoint(v Vec3) Vec3 {
	return Vec3{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2] + m[3],
		m[4]*v[0] + m[5]*v[1] + m[6]*v[2] + m[7],
		m[8]*v[0] + m[9]*v[1] + m[10]*v[2] + m[11],
	}
}

// MulDir transforms a direction (w=0).
func (m Mat4) MulDir(v Vec3) Vec3 {
	return Vec3{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2],
		m[4]*v[0] + m[5]*v[1] + m[6]*v[2],
		m[8]*v[0] + m[9]*v[1] + m[10]*v[2],
	}
}

// MulVec4 transforms a point (w=1) into homogeneous coordinates.
func (m Mat4) MulVec4(v Vec3) Vec4 {
	return Vec4{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2] + m[3],
		m[4]*v[0] + m[5]*v[1] + m[6]*v[2] + m[7],
		m[8]*v[0] + m[9]*v[1] + m[10]*v[2] + m[11],
		m[12]*v[0] + m[13]*v[1] + m[14]*v[2] + m[15],
	}
}

// FromMat3Translation builds a 4×4 affine matrix from a 3×3 rotation and translation.
func FromMat3Translation(r Mat3, t Vec3) Mat4 {
	return Mat4{
		r[0], r[1], r[2], t[0],
		r[3], r[4], r[5], t[1],
		r[6], r[7], r[8], t[2],
		0, 0, 0, 1,
	}
}

// Translation returns the translation column.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[3], m[7], m[11]}
}

// Inverse returns m⁻¹ using gonum's LU-based inverse.
// Singular or numerically unusable matrices are reported as errors.
func (m Mat4) Inverse() (Mat4, error) {
	a := mat.NewDense(4, 4, m[:])
	var inv mat.Dense
	if err := inv.Inverse(a); err != nil {
		return Mat4Identity(), fmt.Errorf("mathutil: invert 4x4: %w", err)
	}
	var out Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out[r*4+c] = inv.At(r, c)
		}
	}
	return out, nil
}

// IsIdentity checks if the matrix is approximately identity.
func (m Mat4) IsIdentity() bool {
	id := Mat4Identity()
	for i := 0; i < 16; i++ {
		d := m[i] - id[i]
		if d > 1e-8 || d < -1e-8 {
			return false
		}
	}
	return true
}

// Perspective returns a GL-style perspective projection (camera looks down -Z,
// clip z in [-1, 1]). fovDeg is the vertical field of view.
func Perspective(fovDeg, aspect, near, far float64) Mat4 {
	f := 1 / math.Tan(Deg2Rad(fovDeg)/2)
	nf := 1 / (near - far)
	return Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (far + near) * nf, 2 * far * near * nf,
		0, 0, -1, 0,
	}
}

// Orthographic returns a GL-style orthographic projection for the box
// [left, right] × [bottom, top] × [-near, -far] in view space.
func Orthographic(left, right, top, bottom, near, far float64) Mat4 {
	w := right - left
	h := top - bottom
	d := far - near
	return Mat4{
		2 / w, 0, 0, -(right + left) / w,
		0, 2 / h, 0, -(top + bottom) / h,
		0, 0, -2 / d, -(far + near) / d,
		0, 0, 0, 1,
	}
}

// LookAt returns the camera-to-world matrix of a camera at eye facing target.
// The camera's local -Z points at target.
func LookAt(eye, target, up Vec3) Mat4 {
	z := eye.Sub(target).Normalize()
	if z.Len() == 0 {
		z = Vec3{0, 0, 1}
	}
	x := up.Cross(z).Normalize()
	if x.Len() == 0 {
		// up parallel to view direction; nudge
		x = Vec3{1, 0, 0}.Cross(z).Normalize()
	}
	y := z.Cross(x)
	return Mat4{
		x[0], y[0], z[0], eye[0],
		x[1], y[1], z[1], eye[1],
		x[2], y[2], z[2], eye[2],
		0, 0, 0, 1,
	}
}
