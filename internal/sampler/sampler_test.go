package sampler

import (
	"image"
	"image/color"
	"math"
	"testing"

	"paper-anamorph/internal/mathutil"
	"paper-anamorph/internal/raster"
)

// headOn returns uniforms for a projector 5 units in front of the surface
// looking straight at it.
func headOn(t *testing.T, tex *image.NRGBA) Uniforms {
	t.Helper()
	world := mathutil.FromMat3Translation(mathutil.Mat3Identity(), mathutil.Vec3{0, 0, 5})
	view, err := world.Inverse()
	if err != nil {
		t.Fatalf("Inverse: %v", err)
	}
	return Uniforms{
		View:       view,
		Projection: mathutil.Perspective(45, 1, 0.1, 100),
		Model:      mathutil.Mat4Identity(),
		Texture:    tex,
	}
}

// quadrants builds a 2×2 image: red TL, green TR, blue BL, white BR.
func quadrants() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{255, 0, 0, 255})
	img.SetNRGBA(1, 0, color.NRGBA{0, 255, 0, 255})
	img.SetNRGBA(0, 1, color.NRGBA{0, 0, 255, 255})
	img.SetNRGBA(1, 1, color.NRGBA{255, 255, 255, 255})
	return img
}

func TestProjectCenter(t *testing.T) {
	s := New(headOn(t, quadrants()))
	u, v, ok := s.Project(mathutil.Vec3{})
	if !ok || math.Abs(u-0.5) > 1e-12 || math.Abs(v-0.5) > 1e-12 {
		t.Errorf("Project(origin) = (%g, %g, %v), want (0.5, 0.5, true)", u, v, ok)
	}
}

func TestProjectOrientation(t *testing.T) {
	s := New(headOn(t, quadrants()))
	tests := []struct {
		p    mathutil.Vec3
		want color.NRGBA
	}{
		{mathutil.Vec3{-1.5, 1.5, 0}, color.NRGBA{255, 0, 0, 255}},
		{mathutil.Vec3{1.5, 1.5, 0}, color.NRGBA{0, 255, 0, 255}},
		{mathutil.Vec3{-1.5, -1.5, 0}, color.NRGBA{0, 0, 255, 255}},
		{mathutil.Vec3{1.5, -1.5, 0}, color.NRGBA{255, 255, 255, 255}},
	}
	for _, tt := range tests {
		got, ok := s.Sample(tt.p, Interactive)
		if !ok || got != tt.want {
			t.Errorf("Sample(%v) = %v, %v; want %v", tt.p, got, ok, tt.want)
		}
	}
}

func TestOutsideFrustumNeverSamples(t *testing.T) {
	s := New(headOn(t, quadrants()))
	// Half-extent of the frustum at distance 5 is 5·tan(22.5°) ≈ 2.07.
	points := []mathutil.Vec3{
		{3, 0, 0},
		{0, -2.5, 0},
		{2.2, 2.2, 0},
		{0, 0, 10},   // behind the projector
		{0, 0, -200}, // past the far plane
	}
	for _, p := range points {
		if _, _, ok := s.Project(p); ok {
			t.Errorf("Project(%v) ok = true, want false", p)
		}
		c, ok := s.Sample(p, Interactive)
		if ok || c != (color.NRGBA{}) {
			t.Errorf("Sample(%v, Interactive) = %v, %v; want transparent miss", p, c, ok)
		}
		c, ok = s.Sample(p, Export)
		if ok || c != (color.NRGBA{255, 255, 255, 255}) {
			t.Errorf("Sample(%v, Export) = %v, %v; want white miss", p, c, ok)
		}
	}
}

func TestModesShareProjection(t *testing.T) {
	s := New(headOn(t, quadrants()))
	for _, p := range []mathutil.Vec3{{-1, 1, 0}, {0.3, -0.7, 0}, {1.9, 0, 0}} {
		a, okA := s.Sample(p, Interactive)
		b, okB := s.Sample(p, Export)
		if okA != okB || (okA && a != b) {
			t.Errorf("Sample(%v) differs between modes: %v/%v vs %v/%v", p, a, okA, b, okB)
		}
	}
}

func TestExportFlattensTranslucentTexels(t *testing.T) {
	tex := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	tex.SetNRGBA(0, 0, color.NRGBA{0, 0, 0, 128})
	s := New(headOn(t, tex))

	c, _ := s.Sample(mathutil.Vec3{}, Interactive)
	if c.A != 128 {
		t.Errorf("interactive alpha = %d, want 128", c.A)
	}
	c, _ = s.Sample(mathutil.Vec3{}, Export)
	if c.A != 255 || c.R != 127 {
		t.Errorf("export = %v, want opaque mid grey", c)
	}
}

func TestModelMatrixApplied(t *testing.T) {
	u := headOn(t, quadrants())
	u.Model = mathutil.FromMat3Translation(mathutil.Mat3Identity(), mathutil.Vec3{10, 0, 0})
	if _, _, ok := New(u).Project(mathutil.Vec3{}); ok {
		t.Error("surface moved out of the frustum still projects")
	}
}

func TestNilTextureMisses(t *testing.T) {
	s := New(headOn(t, nil))
	if _, ok := s.Sample(mathutil.Vec3{}, Interactive); ok {
		t.Error("Sample with no texture reported a hit")
	}
}

func TestShaderDiscardsTransparent(t *testing.T) {
	s := New(headOn(t, quadrants()))
	if _, ok := (Shader{Sampler: s, Mode: Interactive}).Shade(raster.Fragment{Local: mathutil.Vec3{5, 0, 0}}); ok {
		t.Error("interactive shader kept a miss")
	}
	if _, ok := (Shader{Sampler: s, Mode: Export}).Shade(raster.Fragment{Local: mathutil.Vec3{5, 0, 0}}); !ok {
		t.Error("export shader discarded the white background")
	}
}
