// Package app is the application controller: it owns the scene state of one
// editing session and exposes every user action as a method.
//
// App is not safe for concurrent use. One goroutine (the UI or CLI loop)
// drives it; background work such as texture.LoadAsync hands results back to
// that goroutine.
package app

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"paper-anamorph/internal/config"
	"paper-anamorph/internal/export"
	"paper-anamorph/internal/geometry"
	"paper-anamorph/internal/logging"
	"paper-anamorph/internal/mathutil"
	"paper-anamorph/internal/projector"
	"paper-anamorph/internal/raster"
	"paper-anamorph/internal/surface"
	"paper-anamorph/internal/texture"
	"paper-anamorph/internal/widget"
)

// Viewport camera and scene look.
const (
	ViewFOV  = 50.0
	ViewNear = 0.1
	ViewFar  = 1000.0

	previewOpacity = 0.7
)

var (
	Background = color.NRGBA{R: 0x28, G: 0x2c, B: 0x34, A: 255}
	viewEye    = mathutil.Vec3{0, 5, 10}
	white      = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

// Target names what the manipulation widget edits.
type Target int

const (
	TargetNone Target = iota
	TargetProjector
	TargetPaper
)

func (t Target) String() string {
	switch t {
	case TargetProjector:
		return "projector"
	case TargetPaper:
		return "paper"
	}
	return "none"
}

// App is one editing session.
type App struct {
	cfg      config.Config
	device   *raster.Device
	camera   *raster.PerspectiveCamera
	exporter *export.Exporter
	sink     export.Sink
	light    raster.LightConfig

	projector projector.State
	surface   *surface.Surface
	source    *texture.SourceImage
	preview   *geometry.Geometry

	widget      *widget.Widget
	projTarget  *projectorTarget
	selected    Target
	showHelpers bool

	bakeMode bool
	baked    *image.NRGBA

	controls []func(projector.State)
}

// New builds a session from a resolved config. Exports are handed to sink,
// which may be nil.
func New(cfg config.Config, sink export.Sink) (*App, error) {
	if cfg.Projector == nil {
		p := config.DefaultProjector()
		cfg.Projector = &p
	}
	if err := cfg.Projector.Validate(); err != nil {
		return nil, fmt.Errorf("app: initial projector: %w", err)
	}

	dev, err := raster.NewDevice(cfg.ViewportWidth, cfg.ViewportHeight, Background)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	cam := raster.NewPerspectiveCamera(ViewFOV, float64(cfg.ViewportWidth)/float64(cfg.ViewportHeight), ViewNear, ViewFar)
	if err := cam.LookAt(viewEye, mathutil.Vec3{}, mathutil.Vec3{0, 1, 0}); err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	surf, err := surface.New(cfg.PaperWidthCM, cfg.PaperHeightCM)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	quad, err := geometry.Plane(1, 1, 1, 1)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	ex := export.New(dev)
	ex.MaxPixels = cfg.MaxPixels
	ex.Supersample = cfg.Supersample

	a := &App{
		cfg:         cfg,
		device:      dev,
		camera:      cam,
		exporter:    ex,
		sink:        sink,
		light:       raster.DefaultLightConfig(),
		projector:   *cfg.Projector,
		surface:     surf,
		preview:     quad,
		widget:      widget.New(),
		selected:    TargetProjector,
		showHelpers: true,
	}
	a.projTarget = &projectorTarget{app: a}
	a.widget.Attach(a.projTarget)
	a.widget.OnChange(a.syncControls)
	return a, nil
}

// Config returns the resolved configuration.
func (a *App) Config() config.Config { return a.cfg }

// Device returns the rendering backend.
func (a *App) Device() *raster.Device { return a.device }

// Surface returns the paper.
func (a *App) Surface() *surface.Surface { return a.surface }

// Widget returns the manipulation widget.
func (a *App) Widget() *widget.Widget { return a.widget }

// SourceImage returns the loaded image, or nil.
func (a *App) SourceImage() *texture.SourceImage { return a.source }

// Projector returns the exact projector state.
func (a *App) Projector() projector.State { return a.projector }

// ProjectorControls returns the projector state as the numeric controls
// display it.
func (a *App) ProjectorControls() projector.State { return a.projector.Display() }

// OnControlsChange registers fn to receive the display-rounded projector
// state after every widget edit.
func (a *App) OnControlsChange(fn func(projector.State)) {
	if fn != nil {
		a.controls = append(a.controls, fn)
	}
}

func (a *App) syncControls() {
	s := a.ProjectorControls()
	for _, fn := range a.controls {
		fn(s)
	}
}

// SetProjectorState is the only way the projector changes. Numeric input
// calls it directly; widget drags on the projector arrive here through
// projectorTarget. Invalid states are rejected and nothing changes.
func (a *App) SetProjectorState(s projector.State) error {
	if err := s.Validate(); err != nil {
		logging.Logger().Warn("projector state rejected", "err", err)
		return err
	}
	a.projector = s
	logging.Logger().Debug("projector state", "position_cm", s.PositionCM, "rotation_deg", s.RotationDeg, "scale", s.Scale)
	return nil
}

// projectorTarget adapts the projector to the widget.
type projectorTarget struct {
	app *App
}

func (p *projectorTarget) Transform() mathutil.Transform {
	return p.app.projector.Transform()
}

func (p *projectorTarget) SetTransform(t mathutil.Transform) error {
	return p.app.SetProjectorState(projector.FromTransform(t))
}

// SetPaperSize rebuilds the paper at a new size. The widget stays attached
// to whatever it was attached to.
func (a *App) SetPaperSize(widthCM, heightCM float64) error {
	attached := a.widget.Attached()
	if err := a.surface.Resize(widthCM, heightCM); err != nil {
		return fmt.Errorf("app: set paper size: %w", err)
	}
	a.widget.Attach(attached)
	logging.Logger().Info("paper resized", "width_cm", widthCM, "height_cm", heightCM)

	if a.bakeMode {
		if err := a.bake(); err != nil {
			return fmt.Errorf("app: set paper size: %w", err)
		}
	}
	return nil
}

// LoadImage decodes path and makes it the source image.
func (a *App) LoadImage(path string) error {
	src, err := texture.Load(path)
	if err != nil {
		return fmt.Errorf("app: %w", err)
	}
	return a.SetSourceImage(src)
}

// SetSourceImage replaces the source image and resizes the preview quad to
// its aspect ratio. The previous quad geometry is released.
func (a *App) SetSourceImage(src *texture.SourceImage) error {
	if src == nil || src.Image == nil {
		return errors.New("app: set source image: nil image")
	}
	w, h := projector.PreviewQuadSize(src.Width, src.Height)
	quad, err := geometry.Plane(w, h, 1, 1)
	if err != nil {
		return fmt.Errorf("app: preview quad: %w", err)
	}
	a.preview.Release()
	a.preview = quad
	a.source = src
	return nil
}

// ResizeViewport changes the interactive view size.
func (a *App) ResizeViewport(w, h int) error {
	if err := a.device.ResizeViewport(w, h); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	a.camera.Aspect = float64(w) / float64(h)
	return nil
}
