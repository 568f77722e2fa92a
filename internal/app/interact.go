package app

import (
	"paper-anamorph/internal/geometry"
	"paper-anamorph/internal/logging"
	"paper-anamorph/internal/mathutil"
	"paper-anamorph/internal/widget"
)

// Selected returns the target chosen in the target selector. It is kept
// while the widget is detached by a background click or bake mode.
func (a *App) Selected() Target { return a.selected }

// Attached reports which target the widget is currently bound to.
func (a *App) Attached() Target {
	switch a.widget.Attached() {
	case nil:
		return TargetNone
	case widget.Target(a.projTarget):
		return TargetProjector
	}
	return TargetPaper
}

// SelectTarget binds the widget to t. TargetNone detaches without changing
// the selection. In bake mode only the selection is recorded.
func (a *App) SelectTarget(t Target) {
	switch t {
	case TargetProjector, TargetPaper:
		a.selected = t
		if !a.bakeMode {
			a.widget.Attach(a.widgetTarget(t))
		}
	default:
		a.widget.Detach()
	}
}

func (a *App) widgetTarget(t Target) widget.Target {
	if t == TargetPaper {
		return a.surface
	}
	return a.projTarget
}

// HelpersVisible reports whether the projector preview is drawn.
func (a *App) HelpersVisible() bool { return a.showHelpers }

// HandleKey applies a keyboard shortcut and reports whether it was one:
// g translate, r rotate, s scale, h toggle the projector preview.
func (a *App) HandleKey(key rune) bool {
	switch key {
	case 'g':
		a.widget.SetMode(widget.Translate)
	case 'r':
		a.widget.SetMode(widget.Rotate)
	case 's':
		a.widget.SetMode(widget.Scale)
	case 'h':
		a.showHelpers = !a.showHelpers
	default:
		return false
	}
	logging.Logger().Debug("key", "key", string(key), "mode", a.widget.Mode(), "helpers", a.showHelpers)
	return true
}

// Drag forwards one widget drag step.
func (a *App) Drag(delta mathutil.Vec3) error {
	return a.widget.Drag(delta)
}

// Click picks with a ray through the viewport at normalized device
// coordinates (x right, y up, both in [-1, 1]). The nearest of the paper and
// the visible projector preview gets the widget; a background click
// detaches it. Clicks are ignored in bake mode.
func (a *App) Click(nx, ny float64) Target {
	if a.bakeMode {
		return TargetNone
	}
	ray, ok := a.viewRay(nx, ny)
	if !ok {
		return TargetNone
	}

	hit, best := TargetNone, 0.0
	if t, ok := a.surface.Geometry.Raycast(ray, a.surface.FoldedMatrix()); ok {
		hit, best = TargetPaper, t
	}
	if a.showHelpers {
		if t, ok := a.preview.Raycast(ray, a.projector.WorldMatrix()); ok && (hit == TargetNone || t < best) {
			hit = TargetProjector
		}
	}

	if hit == TargetNone {
		a.widget.Detach()
		return TargetNone
	}
	a.SelectTarget(hit)
	return hit
}

// viewRay unprojects a viewport point into a world-space ray from the near
// plane.
func (a *App) viewRay(nx, ny float64) (geometry.Ray, bool) {
	inv, err := a.camera.ViewProjection().Inverse()
	if err != nil {
		return geometry.Ray{}, false
	}
	near := inv.MulVec4(mathutil.Vec3{nx, ny, -1}).PerspectiveDivide()
	far := inv.MulVec4(mathutil.Vec3{nx, ny, 1}).PerspectiveDivide()
	return geometry.Ray{Origin: near, Dir: far.Sub(near)}, true
}
