package texture

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestDecodePNG(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.SetNRGBA(2, 1, color.NRGBA{10, 20, 30, 128})

	src, err := Decode(bytes.NewReader(encodePNG(t, img)))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if src.Width != 3 || src.Height != 2 || src.Format != "png" {
		t.Errorf("Decode = %dx%d %q, want 3x2 png", src.Width, src.Height, src.Format)
	}
	if got := src.Image.NRGBAAt(2, 1); got != (color.NRGBA{10, 20, 30, 128}) {
		t.Errorf("pixel (2,1) = %v, want {10 20 30 128}", got)
	}
}

func TestDecodeGarbage(t *testing.T) {
	if _, err := Decode(bytes.NewReader([]byte("not an image"))); err == nil {
		t.Error("Decode(garbage) returned nil error")
	}
}

func TestFromImageNormalizesBounds(t *testing.T) {
	tests := []struct {
		name string
		img  image.Image
	}{
		{"offset nrgba", image.NewNRGBA(image.Rect(5, 5, 9, 7))},
		{"gray", image.NewGray(image.Rect(0, 0, 4, 2))},
		{"paletted", image.NewPaletted(image.Rect(1, 1, 5, 3), color.Palette{color.Black})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := FromImage(tt.img)
			if err != nil {
				t.Fatalf("FromImage: %v", err)
			}
			if src.Image.Rect.Min != (image.Point{}) {
				t.Errorf("bounds = %v, want origin at 0,0", src.Image.Rect)
			}
			if src.Width != 4 || src.Height != 2 {
				t.Errorf("size = %dx%d, want 4x2", src.Width, src.Height)
			}
		})
	}
}

func TestGrayBecomesOpaque(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 1, 1))
	g.SetGray(0, 0, color.Gray{Y: 77})
	src, err := FromImage(g)
	if err != nil {
		t.Fatal(err)
	}
	if got := src.Image.NRGBAAt(0, 0); got != (color.NRGBA{77, 77, 77, 255}) {
		t.Errorf("pixel = %v, want {77 77 77 255}", got)
	}
}

func TestFromImageEmpty(t *testing.T) {
	if _, err := FromImage(image.NewNRGBA(image.Rect(0, 0, 0, 4))); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("FromImage(empty) error = %v, want ErrEmptyImage", err)
	}
}

func TestLoadAsync(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "src.png")
	if err := os.WriteFile(path, encodePNG(t, image.NewNRGBA(image.Rect(0, 0, 2, 2))), 0o644); err != nil {
		t.Fatal(err)
	}

	res := <-LoadAsync(path)
	if res.Err != nil {
		t.Fatalf("LoadAsync: %v", res.Err)
	}
	if res.Path != path || res.Image.Width != 2 {
		t.Errorf("result = %+v", res)
	}

	res = <-LoadAsync(filepath.Join(dir, "missing.png"))
	if res.Err == nil {
		t.Error("LoadAsync(missing) returned nil error")
	}
}
