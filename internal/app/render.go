package app

import (
	"fmt"
	"image"

	"paper-anamorph/internal/raster"
	"paper-anamorph/internal/sampler"
)

// uniforms derives the projective sampler inputs from the current state.
// The model matrix is always the interactive paper's placement.
func (a *App) uniforms() (sampler.Uniforms, error) {
	view, proj, err := a.projector.Matrices()
	if err != nil {
		return sampler.Uniforms{}, err
	}
	u := sampler.Uniforms{View: view, Projection: proj, Model: a.surface.FoldedMatrix()}
	if a.source != nil {
		u.Texture = a.source.Image
	}
	return u, nil
}

// scene assembles the interactive draw list.
func (a *App) scene() (raster.Scene, error) {
	var sc raster.Scene
	if a.bakeMode {
		sc = append(sc, a.surface.FlatMesh(&raster.TextureShader{Texture: a.baked, Base: white, Light: &a.light}))
	} else {
		u, err := a.uniforms()
		if err != nil {
			return nil, err
		}
		sc = append(sc, a.surface.FoldedMesh(sampler.Shader{Sampler: sampler.New(u), Mode: sampler.Interactive}))
	}
	if a.showHelpers {
		sh := &raster.TextureShader{Base: white, Opacity: previewOpacity}
		if a.source != nil {
			sh.Texture = a.source.Image
		}
		sc = append(sc, &raster.Mesh{
			Name:     "projector-preview",
			Geometry: a.preview,
			Model:    a.projector.WorldMatrix(),
			Shader:   sh,
			Visible:  true,
		})
	}
	return sc, nil
}

// RenderFrame draws the interactive view into the viewport.
func (a *App) RenderFrame() error {
	sc, err := a.scene()
	if err != nil {
		return fmt.Errorf("app: render: %w", err)
	}
	a.device.Render(sc, a.camera)
	return nil
}

// Snapshot returns a copy of the viewport as last rendered.
func (a *App) Snapshot() *image.NRGBA {
	return a.device.Viewport().Image()
}
