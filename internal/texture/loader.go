// Package texture decodes source images into NRGBA buffers for projection.
package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "github.com/ftrvxmtrx/tga"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"paper-anamorph/internal/logging"
)

// ErrEmptyImage is returned for images with no pixels.
var ErrEmptyImage = errors.New("texture: empty image")

// SourceImage is a decoded source image. Image bounds always start at 0,0.
type SourceImage struct {
	Image  *image.NRGBA
	Width  int
	Height int
	Format string
}

// FromImage wraps an already decoded image.
func FromImage(img image.Image) (*SourceImage, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}
	n := toNRGBA(img)
	return &SourceImage{Image: n, Width: n.Rect.Dx(), Height: n.Rect.Dy()}, nil
}

// Decode reads one image in any registered format.
func Decode(r io.Reader) (*SourceImage, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("texture: decode: %w", err)
	}
	src, err := FromImage(img)
	if err != nil {
		return nil, err
	}
	src.Format = format
	return src, nil
}

// Load reads and decodes the image at path.
func Load(path string) (*SourceImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("texture: open %s: %w", path, err)
	}
	defer f.Close()

	src, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("texture: %s: %w", path, err)
	}
	logging.Logger().Info("texture loaded", "path", path, "format", src.Format, "width", src.Width, "height", src.Height)
	return src, nil
}

// Result is the outcome of an asynchronous load.
type Result struct {
	Path  string
	Image *SourceImage
	Err   error
}

// LoadAsync decodes path on its own goroutine. The channel receives exactly
// one Result and is then closed.
func LoadAsync(path string) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		img, err := Load(path)
		ch <- Result{Path: path, Image: img, Err: err}
	}()
	return ch
}

// toNRGBA converts any image to NRGBA with bounds at the origin.
func toNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	if n, ok := src.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	switch src.(type) {
	case *image.YCbCr, *image.Gray, *image.NRGBA, *image.RGBA:
		draw.Draw(dst, dst.Rect, src, b.Min, draw.Src)
	default:
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
				i := dst.PixOffset(x, y)
				dst.Pix[i] = c.R
				dst.Pix[i+1] = c.G
				dst.Pix[i+2] = c.B
				dst.Pix[i+3] = c.A
			}
		}
	}
	return dst
}
