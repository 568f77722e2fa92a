package app

import (
	"errors"
	"fmt"
	"image"

	"paper-anamorph/internal/export"
	"paper-anamorph/internal/logging"
)

// ExportResult is one finished export.
type ExportResult struct {
	Image   *image.NRGBA
	Name    string
	Payload []byte
}

// Export renders req, encodes it as format and hands it to the sink.
// Failures leave the interactive state as it was.
func (a *App) Export(req export.Request, format export.Format) (*ExportResult, error) {
	u, err := a.uniforms()
	if err != nil {
		return nil, fmt.Errorf("app: export: %w", err)
	}
	img, err := a.exporter.Export(export.Input{Geometry: a.surface.Geometry, Uniforms: u}, req)
	if err != nil {
		if errors.Is(err, export.ErrMissingSourceImage) {
			logging.Logger().Warn("export refused: load an image first")
		}
		return nil, err
	}
	payload, err := export.Encode(img, format)
	if err != nil {
		return nil, err
	}

	name := format.FileName()
	if a.cfg.OutputName != "" {
		name = a.cfg.OutputName + "." + string(format)
	}
	if a.sink != nil {
		if err := a.sink.Save(name, payload); err != nil {
			return nil, err
		}
	}
	return &ExportResult{Image: img, Name: name, Payload: payload}, nil
}

// ExportPaper exports the current paper size at dpi.
func (a *App) ExportPaper(dpi float64, format export.Format) (*ExportResult, error) {
	return a.Export(export.Request{WidthCM: a.surface.WidthCM, HeightCM: a.surface.HeightCM, DPI: dpi}, format)
}

// BakeMode reports whether the baked flat paper is shown.
func (a *App) BakeMode() bool { return a.bakeMode }

// Baked returns the baked texture while in bake mode.
func (a *App) Baked() *image.NRGBA { return a.baked }

// ToggleBakeMode switches between the interactive projection and the flat
// baked paper. Entering bakes the projection and detaches the widget;
// leaving reattaches it to the selected target. Entering without a source
// image fails and stays interactive.
func (a *App) ToggleBakeMode() error {
	if a.bakeMode {
		a.bakeMode = false
		a.baked = nil
		a.widget.Attach(a.widgetTarget(a.selected))
		return nil
	}
	if err := a.bake(); err != nil {
		return fmt.Errorf("app: bake: %w", err)
	}
	a.bakeMode = true
	a.widget.Detach()
	return nil
}

func (a *App) bake() error {
	u, err := a.uniforms()
	if err != nil {
		return err
	}
	img, err := a.exporter.Bake(export.Input{Geometry: a.surface.Geometry, Uniforms: u}, a.surface.WidthCM, a.surface.HeightCM)
	if err != nil {
		return err
	}
	a.baked = img
	return nil
}
