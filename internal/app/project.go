package app

import (
	"fmt"

	"paper-anamorph/internal/project"
	"paper-anamorph/internal/surface"
	"paper-anamorph/internal/texture"
)

// Project snapshots the session into a project file. imagePath is the
// source image location, if known.
func (a *App) Project(name, projectPath, imagePath string) *project.File {
	p := project.New(name, a.surface.WidthCM, a.surface.HeightCM)
	p.Paper = a.surface.Transform()
	p.Projector = a.projector
	p.DPI = a.cfg.DPI
	p.Format = a.cfg.Format
	if imagePath != "" {
		p.SetImage(projectPath, imagePath)
	}
	return p
}

// ApplyProject restores a session from p, loaded from projectPath. Every
// part of p is checked and the image decoded before anything changes, so a
// failure leaves the session as it was.
func (a *App) ApplyProject(p *project.File, projectPath string) error {
	if err := surface.ValidateSize(p.PaperWidthCM, p.PaperHeightCM); err != nil {
		return fmt.Errorf("app: apply project: %w", err)
	}
	if err := surface.ValidateTransform(p.Paper); err != nil {
		return fmt.Errorf("app: apply project: %w", err)
	}
	if err := p.Projector.Validate(); err != nil {
		return fmt.Errorf("app: apply project: %w", err)
	}
	var src *texture.SourceImage
	if path := p.GetImagePath(projectPath); path != "" {
		var err error
		if src, err = texture.Load(path); err != nil {
			return fmt.Errorf("app: apply project: %w", err)
		}
	}

	if err := a.SetProjectorState(p.Projector); err != nil {
		return fmt.Errorf("app: apply project: %w", err)
	}
	if err := a.surface.SetTransform(p.Paper); err != nil {
		return fmt.Errorf("app: apply project: %w", err)
	}
	if src != nil {
		if err := a.SetSourceImage(src); err != nil {
			return err
		}
	}
	if p.DPI > 0 {
		a.cfg.DPI = p.DPI
	}
	if p.Format != "" {
		a.cfg.Format = p.Format
	}
	return a.SetPaperSize(p.PaperWidthCM, p.PaperHeightCM)
}
