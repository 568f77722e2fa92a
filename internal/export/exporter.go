package export

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"paper-anamorph/internal/geometry"
	"paper-anamorph/internal/logging"
	"paper-anamorph/internal/mathutil"
	"paper-anamorph/internal/postprocess"
	"paper-anamorph/internal/raster"
	"paper-anamorph/internal/sampler"
)

const (
	// DefaultMaxPixels bounds a single export target (256 Mpx).
	DefaultMaxPixels int64 = 1 << 28
	// BakeSize is the edge of the square baked texture.
	BakeSize = 2048

	cameraZ    = 1.0
	cameraNear = 0.1
	cameraFar  = 10.0
)

var paperWhite = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

// Input is what a capture reads: the paper geometry and the projector
// uniforms, whose Model is the interactive paper's placement.
type Input struct {
	Geometry *geometry.Geometry
	Uniforms sampler.Uniforms
}

// Exporter captures the flat paper through an orthographic camera into an
// offscreen target on Device. The device's bound target and clear color are
// restored after every capture.
type Exporter struct {
	Device *raster.Device
	// MaxPixels is the budget for one render target; 0 uses DefaultMaxPixels.
	MaxPixels int64
	// Supersample renders at n× the output size and downsamples. Values
	// below 2 disable it.
	Supersample int

	newTarget func(w, h int, maxPixels int64) (*raster.RenderTarget, error)
}

// New returns an exporter on d with default limits.
func New(d *raster.Device) *Exporter {
	return &Exporter{Device: d, MaxPixels: DefaultMaxPixels, Supersample: 1}
}

// Export renders the request at print resolution. Parameters are checked
// before the source image, and both before any allocation.
func (e *Exporter) Export(in Input, req Request) (*image.NRGBA, error) {
	w, h, err := req.Pixels()
	if err != nil {
		return nil, err
	}
	if in.Uniforms.Texture == nil {
		return nil, ErrMissingSourceImage
	}
	img, err := e.capture(in, mathutil.CMToScene(req.WidthCM), mathutil.CMToScene(req.HeightCM), w, h)
	if err != nil {
		return nil, fmt.Errorf("export: %gx%g cm @ %g dpi: %w", req.WidthCM, req.HeightCM, req.DPI, err)
	}
	logging.Logger().Info("export rendered", "width", w, "height", h, "dpi", req.DPI, "supersample", e.supersample())
	return img, nil
}

// Bake captures the paper at BakeSize² for the flat preview.
func (e *Exporter) Bake(in Input, widthCM, heightCM float64) (*image.NRGBA, error) {
	if err := (Request{WidthCM: widthCM, HeightCM: heightCM, DPI: 1}).Validate(); err != nil {
		return nil, err
	}
	if in.Uniforms.Texture == nil {
		return nil, ErrMissingSourceImage
	}
	img, err := e.capture(in, mathutil.CMToScene(widthCM), mathutil.CMToScene(heightCM), BakeSize, BakeSize)
	if err != nil {
		return nil, fmt.Errorf("export: bake: %w", err)
	}
	logging.Logger().Info("bake rendered", "size", BakeSize)
	return img, nil
}

func (e *Exporter) supersample() int {
	if e.Supersample < 2 {
		return 1
	}
	return e.Supersample
}

func (e *Exporter) capture(in Input, sceneW, sceneH float64, w, h int) (*image.NRGBA, error) {
	if e.Device == nil {
		return nil, errors.New("no render device")
	}
	if in.Geometry == nil || in.Geometry.Released() {
		return nil, errors.New("no paper geometry")
	}
	s := int64(e.supersample())
	limit := e.MaxPixels
	if limit <= 0 {
		limit = DefaultMaxPixels
	}
	// Each factor is bounded before multiplying so the products cannot wrap.
	if int64(w) > limit/s || int64(h) > limit/s {
		return nil, fmt.Errorf("%w: %dx%d at %dx supersample exceeds %d pixels", ErrResourceExhaustion, w, h, s, limit)
	}
	rw, rh := int64(w)*s, int64(h)*s
	if rw > limit/rh {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrResourceExhaustion, rw, rh, limit)
	}

	alloc := e.newTarget
	if alloc == nil {
		alloc = raster.NewRenderTarget
	}
	rt, err := alloc(int(rw), int(rh), limit)
	if err != nil {
		if errors.Is(err, raster.ErrTargetTooLarge) {
			return nil, fmt.Errorf("%w: %v", ErrResourceExhaustion, err)
		}
		return nil, err
	}

	cam := &raster.OrthographicCamera{
		Left: -sceneW / 2, Right: sceneW / 2,
		Top: sceneH / 2, Bottom: -sceneH / 2,
		Near: cameraNear, Far: cameraFar,
		View: mathutil.FromMat3Translation(mathutil.Mat3Identity(), mathutil.Vec3{0, 0, -cameraZ}),
	}
	flat := &raster.Mesh{
		Name:     "paper-export",
		Geometry: in.Geometry,
		Model:    mathutil.Mat4Identity(),
		Shader:   sampler.Shader{Sampler: sampler.New(in.Uniforms), Mode: sampler.Export},
		Visible:  true,
	}

	buf := make([]uint8, len(rt.Color))
	err = e.Device.WithRenderTarget(rt, paperWhite, func() error {
		e.Device.Render(raster.Scene{flat}, cam)
		return e.Device.ReadRenderTargetPixels(rt, buf)
	})
	if err != nil {
		return nil, err
	}

	img := &image.NRGBA{Pix: buf, Stride: rt.Width * 4, Rect: image.Rect(0, 0, rt.Width, rt.Height)}
	if s > 1 {
		img = postprocess.Downsample(img, w, h)
	}
	return img, nil
}
