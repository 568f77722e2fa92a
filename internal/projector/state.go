// Package projector holds the virtual projector's editable state and derives
// the view and projection matrices used by the sampler.
package projector

import (
	"errors"
	"fmt"
	"math"

	"paper-anamorph/internal/mathutil"
)

// ErrInvalidState is returned for non-finite fields or a degenerate scale.
var ErrInvalidState = errors.New("projector: invalid state")

// Fixed projection frustum. Aspect is 1 because the frustum only defines what
// the projector sees, not the shape of any output image.
const (
	FOV    = 45.0
	Aspect = 1.0
	Near   = 0.1
	Far    = 100.0
)

// State is the projector as the user edits it: position in centimetres
// relative to the surface, intrinsic XYZ rotation in degrees, unitless scale.
type State struct {
	PositionCM  mathutil.Vec3 `json:"position_cm"`
	RotationDeg mathutil.Vec3 `json:"rotation_deg"`
	Scale       mathutil.Vec3 `json:"scale"`
}

// Default returns a projector at the origin with unit scale.
func Default() State {
	return State{Scale: mathutil.Vec3{1, 1, 1}}
}

// Validate rejects NaN/Inf fields and zero scale components, which would
// collapse the projection frustum.
func (s State) Validate() error {
	if !s.PositionCM.IsFinite() || !s.RotationDeg.IsFinite() || !s.Scale.IsFinite() {
		return fmt.Errorf("%w: non-finite field in %+v", ErrInvalidState, s)
	}
	for i, c := range s.Scale {
		if c == 0 {
			return fmt.Errorf("%w: scale[%d] is zero", ErrInvalidState, i)
		}
	}
	return nil
}

// Transform converts to scene units and radians.
func (s State) Transform() mathutil.Transform {
	return mathutil.Transform{
		Position: s.PositionCM.Scale(mathutil.CMToUnit),
		Rotation: mathutil.Vec3Deg2Rad(s.RotationDeg),
		Scale:    s.Scale,
	}
}

// FromTransform projects a scene transform back into editable units. It is
// the read side of the widget → controls sync and never mutates anything.
func FromTransform(t mathutil.Transform) State {
	return State{
		PositionCM:  mathutil.Vec3{mathutil.SceneToCM(t.Position[0]), mathutil.SceneToCM(t.Position[1]), mathutil.SceneToCM(t.Position[2])},
		RotationDeg: mathutil.Vec3Rad2Deg(t.Rotation),
		Scale:       t.Scale,
	}
}

// Display rounds the state the way the numeric controls show it:
// 0.1 cm, 1° and 0.01.
func (s State) Display() State {
	var d State
	for i := 0; i < 3; i++ {
		d.PositionCM[i] = roundTo(s.PositionCM[i], 10)
		d.RotationDeg[i] = roundTo(s.RotationDeg[i], 1)
		d.Scale[i] = roundTo(s.Scale[i], 100)
	}
	return d
}

func roundTo(v, perUnit float64) float64 {
	r := math.Round(v*perUnit) / perUnit
	if r == 0 {
		return 0 // no -0 in the controls
	}
	return r
}

// WorldMatrix is the projector's object-to-world matrix.
func (s State) WorldMatrix() mathutil.Mat4 {
	return s.Transform().Matrix()
}

// ViewMatrix is the inverse of the projector's world matrix.
func (s State) ViewMatrix() (mathutil.Mat4, error) {
	if err := s.Validate(); err != nil {
		return mathutil.Mat4Identity(), err
	}
	v, err := s.WorldMatrix().Inverse()
	if err != nil {
		return mathutil.Mat4Identity(), fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	return v, nil
}

// ProjectionMatrix is the fixed perspective frustum of the projector.
func ProjectionMatrix() mathutil.Mat4 {
	return mathutil.Perspective(FOV, Aspect, Near, Far)
}

// Matrices derives (view, projection) for the current state.
func (s State) Matrices() (view, proj mathutil.Mat4, err error) {
	view, err = s.ViewMatrix()
	if err != nil {
		return view, mathutil.Mat4Identity(), err
	}
	return view, ProjectionMatrix(), nil
}

// PreviewQuadSize sizes the on-screen frustum preview quad so it keeps the
// source image aspect ratio with a height of one scene unit.
func PreviewQuadSize(imgW, imgH int) (w, h float64) {
	if imgW <= 0 || imgH <= 0 {
		return 1, 1
	}
	return float64(imgW) / float64(imgH), 1
}
