package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"

	"paper-anamorph/internal/logging"
)

// Format is an output encoding.
type Format string

const (
	PNG  Format = "png"
	WebP Format = "webp"
)

// BaseName is the default output file name without extension.
const BaseName = "anamorphosis_export"

// ParseFormat accepts "png" or "webp" in any case; empty means PNG.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return PNG, nil
	case PNG, WebP:
		return f, nil
	}
	return "", fmt.Errorf("export: unknown format %q", s)
}

// FileName returns the default file name for f.
func (f Format) FileName() string {
	return BaseName + "." + string(f)
}

// Encode serializes img. WebP output is lossless.
func Encode(img image.Image, f Format) ([]byte, error) {
	var buf bytes.Buffer
	switch f {
	case PNG, "":
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("export: encode png: %w", err)
		}
	case WebP:
		if err := nativewebp.Encode(&buf, img, nil); err != nil {
			return nil, fmt.Errorf("export: encode webp: %w", err)
		}
	default:
		return nil, fmt.Errorf("export: unknown format %q", f)
	}
	return buf.Bytes(), nil
}

// Sink receives encoded exports, like a browser download.
type Sink interface {
	Save(name string, payload []byte) error
}

// FileSink writes into a directory, creating it if needed.
type FileSink struct {
	Dir string
}

func (s FileSink) Save(name string, payload []byte) error {
	if s.Dir != "" {
		if err := os.MkdirAll(s.Dir, 0o755); err != nil {
			return fmt.Errorf("export: mkdir %s: %w", s.Dir, err)
		}
	}
	path := filepath.Join(s.Dir, name)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	logging.Logger().Info("export saved", "path", path, "bytes", len(payload))
	return nil
}
