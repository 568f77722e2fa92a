package raster

import (
	"fmt"

	"paper-anamorph/internal/mathutil"
)

// Camera supplies the combined projection × view matrix for a render pass.
type Camera interface {
	ViewProjection() mathutil.Mat4
}

// PerspectiveCamera is a pinhole camera looking down its local -Z axis.
type PerspectiveCamera struct {
	FOV    float64 // vertical, degrees
	Aspect float64
	Near   float64
	Far    float64
	View   mathutil.Mat4 // world → camera
}

// NewPerspectiveCamera returns a camera at the origin.
func NewPerspectiveCamera(fov, aspect, near, far float64) *PerspectiveCamera {
	return &PerspectiveCamera{FOV: fov, Aspect: aspect, Near: near, Far: far, View: mathutil.Mat4Identity()}
}

// SetWorld places the camera with a camera-to-world matrix.
func (c *PerspectiveCamera) SetWorld(world mathutil.Mat4) error {
	v, err := world.Inverse()
	if err != nil {
		return fmt.Errorf("raster: camera world: %w", err)
	}
	c.View = v
	return nil
}

// LookAt positions the camera at eye facing target.
func (c *PerspectiveCamera) LookAt(eye, target, up mathutil.Vec3) error {
	return c.SetWorld(mathutil.LookAt(eye, target, up))
}

func (c *PerspectiveCamera) Projection() mathutil.Mat4 {
	return mathutil.Perspective(c.FOV, c.Aspect, c.Near, c.Far)
}

func (c *PerspectiveCamera) ViewProjection() mathutil.Mat4 {
	return mathutil.Mat4Mul(c.Projection(), c.View)
}

// OrthographicCamera projects the box [Left,Right]×[Bottom,Top] in view space
// onto the full target with no perspective.
type OrthographicCamera struct {
	Left, Right, Top, Bottom float64
	Near, Far                float64
	View                     mathutil.Mat4
}

func (c *OrthographicCamera) Projection() mathutil.Mat4 {
	return mathutil.Orthographic(c.Left, c.Right, c.Top, c.Bottom, c.Near, c.Far)
}

func (c *OrthographicCamera) ViewProjection() mathutil.Mat4 {
	return mathutil.Mat4Mul(c.Projection(), c.View)
}
