// Package widget is a headless transform gizmo: it attaches to one target,
// turns drags into transform edits and notifies listeners after each edit.
package widget

import (
	"errors"
	"fmt"

	"paper-anamorph/internal/mathutil"
)

// Mode selects what a drag edits.
type Mode int

const (
	Translate Mode = iota
	Rotate
	Scale
)

func (m Mode) String() string {
	switch m {
	case Translate:
		return "translate"
	case Rotate:
		return "rotate"
	case Scale:
		return "scale"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ErrDetached is returned by Drag when no target is attached.
var ErrDetached = errors.New("widget: no target attached")

// Target is anything the gizmo can move. SetTransform may reject a value;
// the target must then stay unchanged.
type Target interface {
	Transform() mathutil.Transform
	SetTransform(mathutil.Transform) error
}

// Widget is the gizmo.
type Widget struct {
	mode      Mode
	target    Target
	listeners []func()
}

// New returns a detached widget in translate mode.
func New() *Widget {
	return &Widget{}
}

// Attach binds the widget to t. A nil target detaches.
func (w *Widget) Attach(t Target) {
	w.target = t
}

// Detach unbinds the current target.
func (w *Widget) Detach() {
	w.target = nil
}

// Attached returns the current target, or nil.
func (w *Widget) Attached() Target {
	return w.target
}

// OnChange registers fn to run after every accepted edit.
func (w *Widget) OnChange(fn func()) {
	if fn != nil {
		w.listeners = append(w.listeners, fn)
	}
}

// Mode returns the current edit mode.
func (w *Widget) Mode() Mode {
	return w.mode
}

// SetMode switches the edit mode.
func (w *Widget) SetMode(m Mode) {
	w.mode = m
}

// Drag applies one drag step to the target.
//
// Translate adds delta (scene units) to the position. Rotate turns the target
// by delta radians around the world X, Y and Z axes in that order. Scale
// multiplies each scale component by 1+delta.
func (w *Widget) Drag(delta mathutil.Vec3) error {
	if w.target == nil {
		return ErrDetached
	}
	t := w.target.Transform()
	switch w.mode {
	case Translate:
		t.Position = t.Position.Add(delta)
	case Rotate:
		q := t.Quaternion()
		for axis := 0; axis < 3; axis++ {
			if delta[axis] == 0 {
				continue
			}
			var a mathutil.Vec3
			a[axis] = 1
			q = mathutil.QuatMul(mathutil.QuatFromAxisAngle(a, delta[axis]), q)
		}
		t = t.WithQuaternion(q)
	case Scale:
		t.Scale = t.Scale.Mul(mathutil.Vec3{1 + delta[0], 1 + delta[1], 1 + delta[2]})
	default:
		return fmt.Errorf("widget: drag: unknown mode %v", w.mode)
	}
	if err := w.target.SetTransform(t); err != nil {
		return fmt.Errorf("widget: drag %v: %w", w.mode, err)
	}
	for _, fn := range w.listeners {
		fn()
	}
	return nil
}
