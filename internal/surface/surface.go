// Package surface models the paper sheet: its physical size, the shared
// tessellated geometry and its two presentations.
//
// The folded presentation is what the user positions in the interactive view.
// The flat presentation sits at the origin and is what export and bake
// capture. Both reference the same geometry so their extents always agree.
package surface

import (
	"errors"
	"fmt"
	"math"

	"paper-anamorph/internal/geometry"
	"paper-anamorph/internal/mathutil"
	"paper-anamorph/internal/raster"
)

// Segments is the tessellation of the paper plane along each axis.
const Segments = 32

// ErrInvalidSize is returned for non-positive or non-finite dimensions.
var ErrInvalidSize = errors.New("surface: invalid size")

// Surface is the paper sheet.
type Surface struct {
	WidthCM  float64
	HeightCM float64
	Geometry *geometry.Geometry

	folded mathutil.Transform
}

// New builds a sheet of the given physical size.
func New(widthCM, heightCM float64) (*Surface, error) {
	s := &Surface{folded: mathutil.IdentityTransform()}
	if err := s.Resize(widthCM, heightCM); err != nil {
		return nil, err
	}
	return s, nil
}

// Resize rebuilds the geometry at a new physical size and releases the old
// one. The folded transform is kept. On error nothing changes.
func (s *Surface) Resize(widthCM, heightCM float64) error {
	if err := ValidateSize(widthCM, heightCM); err != nil {
		return err
	}
	g, err := geometry.Plane(mathutil.CMToScene(widthCM), mathutil.CMToScene(heightCM), Segments, Segments)
	if err != nil {
		return fmt.Errorf("surface: resize: %w", err)
	}
	old := s.Geometry
	s.Geometry = g
	s.WidthCM = widthCM
	s.HeightCM = heightCM
	old.Release()
	return nil
}

// ValidateSize checks a physical sheet size without building anything.
func ValidateSize(widthCM, heightCM float64) error {
	if !validCM(widthCM) || !validCM(heightCM) {
		return fmt.Errorf("%w: %gx%g cm", ErrInvalidSize, widthCM, heightCM)
	}
	return nil
}

func validCM(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

// SceneSize returns the sheet size in scene units.
func (s *Surface) SceneSize() (w, h float64) {
	return mathutil.CMToScene(s.WidthCM), mathutil.CMToScene(s.HeightCM)
}

// Transform returns the folded presentation's transform.
func (s *Surface) Transform() mathutil.Transform {
	return s.folded
}

// SetTransform moves the folded presentation. Zero or non-finite scale is
// rejected.
func (s *Surface) SetTransform(t mathutil.Transform) error {
	if err := ValidateTransform(t); err != nil {
		return err
	}
	s.folded = t
	return nil
}

// ValidateTransform reports whether t is acceptable to SetTransform.
func ValidateTransform(t mathutil.Transform) error {
	if !t.Position.IsFinite() || !t.Rotation.IsFinite() || !t.Scale.IsFinite() {
		return fmt.Errorf("surface: non-finite transform %+v", t)
	}
	for i, c := range t.Scale {
		if c == 0 {
			return fmt.Errorf("surface: scale[%d] is zero", i)
		}
	}
	return nil
}

// FoldedMatrix is the interactive presentation's model matrix.
func (s *Surface) FoldedMatrix() mathutil.Mat4 {
	return s.folded.Matrix()
}

// FoldedMesh returns the interactive presentation as a drawable.
func (s *Surface) FoldedMesh(sh raster.Shader) *raster.Mesh {
	return &raster.Mesh{Name: "paper", Geometry: s.Geometry, Model: s.FoldedMatrix(), Shader: sh, Visible: true}
}

// FlatMesh returns the flat presentation at the origin.
func (s *Surface) FlatMesh(sh raster.Shader) *raster.Mesh {
	return &raster.Mesh{Name: "paper-flat", Geometry: s.Geometry, Model: mathutil.Mat4Identity(), Shader: sh, Visible: true}
}
