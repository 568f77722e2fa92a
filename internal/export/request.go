// Package export renders the projected image onto the flat paper at print
// resolution.
package export

import (
	"errors"
	"fmt"
	"math"

	"paper-anamorph/internal/mathutil"
)

var (
	// ErrInvalidExportParameters covers non-positive or non-finite sizes and
	// DPI, and sizes that round to zero pixels.
	ErrInvalidExportParameters = errors.New("export: invalid export parameters")
	// ErrMissingSourceImage is returned when no source image is loaded.
	ErrMissingSourceImage = errors.New("export: no source image loaded")
	// ErrResourceExhaustion is returned when the output would exceed the
	// pixel budget.
	ErrResourceExhaustion = errors.New("export: output too large")
)

// Request is the physical output size and print resolution.
type Request struct {
	WidthCM  float64 `json:"width_cm"`
	HeightCM float64 `json:"height_cm"`
	DPI      float64 `json:"dpi"`
}

// Validate checks every field is positive and finite.
func (r Request) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{{"width", r.WidthCM}, {"height", r.HeightCM}, {"dpi", r.DPI}} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v <= 0 {
			return fmt.Errorf("%w: %s = %g", ErrInvalidExportParameters, f.name, f.v)
		}
	}
	return nil
}

// PixelSize converts a physical length to pixels: round(cm / 2.54 × dpi).
func PixelSize(cm, dpi float64) (int, error) {
	px := math.Round(cm / mathutil.InchToCM * dpi)
	if math.IsNaN(px) || px < 1 {
		return 0, fmt.Errorf("%w: %g cm at %g dpi is 0 px", ErrInvalidExportParameters, cm, dpi)
	}
	if px > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %g cm at %g dpi is %g px", ErrResourceExhaustion, cm, dpi, px)
	}
	return int(px), nil
}

// Pixels returns the output size in pixels.
func (r Request) Pixels() (w, h int, err error) {
	if err := r.Validate(); err != nil {
		return 0, 0, err
	}
	if w, err = PixelSize(r.WidthCM, r.DPI); err != nil {
		return 0, 0, err
	}
	if h, err = PixelSize(r.HeightCM, r.DPI); err != nil {
		return 0, 0, err
	}
	return w, h, nil
}
