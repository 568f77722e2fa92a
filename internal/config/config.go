package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"paper-anamorph/internal/mathutil"
	"paper-anamorph/internal/projector"
)

// Config holds all configurable paths, paper and export settings.
type Config struct {
	// Paths
	BaseDir    string `json:"base_dir"`
	ImagePath  string `json:"image"`
	OutputDir  string `json:"output_dir"`
	OutputName string `json:"output_name"`

	// Paper and export
	PaperWidthCM  float64 `json:"paper_width_cm"`
	PaperHeightCM float64 `json:"paper_height_cm"`
	DPI           float64 `json:"dpi"`
	Format        string  `json:"format"`
	Supersample   int     `json:"supersample"`
	MaxPixels     int64   `json:"max_pixels"`

	// Interactive view
	ViewportWidth  int `json:"viewport_width"`
	ViewportHeight int `json:"viewport_height"`

	// Initial projector placement; nil uses a head-on default.
	Projector *projector.State `json:"projector,omitempty"`

	LogLevel string `json:"log_level"`
}

// Defaults applied by Resolve to fields left at zero.
const (
	DefaultPaperWidthCM   = 40.0
	DefaultPaperHeightCM  = 30.0
	DefaultDPI            = 300.0
	DefaultFormat         = "png"
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
	DefaultMaxPixels      = int64(1) << 28
)

// DefaultProjector looks straight down at the paper from 50 cm.
func DefaultProjector() projector.State {
	s := projector.Default()
	s.PositionCM = mathutil.Vec3{0, 0, 50}
	return s
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.ImagePath != "" {
		c.ImagePath = flags.ImagePath
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.WidthCM > 0 {
		c.PaperWidthCM = flags.WidthCM
	}
	if flags.HeightCM > 0 {
		c.PaperHeightCM = flags.HeightCM
	}
	if flags.DPI > 0 {
		c.DPI = flags.DPI
	}
	if flags.Format != "" {
		c.Format = flags.Format
	}
	if flags.Supersample > 0 {
		c.Supersample = flags.Supersample
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}
	if flags.Projector != nil {
		p := *flags.Projector
		c.Projector = &p
	}

	// Relative paths are resolved against base dir
	if c.BaseDir != "" {
		if c.ImagePath != "" && !filepath.IsAbs(c.ImagePath) {
			c.ImagePath = filepath.Join(c.BaseDir, c.ImagePath)
		}
		if c.OutputDir == "" {
			c.OutputDir = c.BaseDir
		} else if !filepath.IsAbs(c.OutputDir) {
			c.OutputDir = filepath.Join(c.BaseDir, c.OutputDir)
		}
	}

	if c.PaperWidthCM <= 0 {
		c.PaperWidthCM = DefaultPaperWidthCM
	}
	if c.PaperHeightCM <= 0 {
		c.PaperHeightCM = DefaultPaperHeightCM
	}
	if c.DPI <= 0 {
		c.DPI = DefaultDPI
	}
	if c.Format == "" {
		c.Format = DefaultFormat
	}
	if c.Supersample <= 0 {
		c.Supersample = 1
	}
	if c.MaxPixels <= 0 {
		c.MaxPixels = DefaultMaxPixels
	}
	if c.ViewportWidth <= 0 {
		c.ViewportWidth = DefaultViewportWidth
	}
	if c.ViewportHeight <= 0 {
		c.ViewportHeight = DefaultViewportHeight
	}
	if c.Projector == nil {
		p := DefaultProjector()
		c.Projector = &p
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	ImagePath   string
	OutputDir   string
	WidthCM     float64
	HeightCM    float64
	DPI         float64
	Format      string
	Supersample int
	LogLevel    string
	Projector   *projector.State
}
