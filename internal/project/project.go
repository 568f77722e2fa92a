// Package project provides project file handling and persistence.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"paper-anamorph/internal/mathutil"
	"paper-anamorph/internal/projector"
)

// Extension is the conventional project file extension.
const Extension = ".anaproj"

// CurrentVersion is written by Save; Load rejects newer files.
const CurrentVersion = 1

// File represents an anamorphosis project file (.anaproj).
type File struct {
	Version  int       `json:"version"`
	Name     string    `json:"name"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`

	// Source image path (relative to project file)
	ImagePath string `json:"image,omitempty"`

	// Paper
	PaperWidthCM  float64            `json:"paper_width_cm"`
	PaperHeightCM float64            `json:"paper_height_cm"`
	Paper         mathutil.Transform `json:"paper_transform"`

	// Projector
	Projector projector.State `json:"projector"`

	// Export settings
	DPI    float64 `json:"dpi,omitempty"`
	Format string  `json:"format,omitempty"`
}

// New creates a new project file for a sheet of the given size.
func New(name string, widthCM, heightCM float64) *File {
	now := time.Now()
	return &File{
		Version:       CurrentVersion,
		Name:          name,
		Created:       now,
		Modified:      now,
		PaperWidthCM:  widthCM,
		PaperHeightCM: heightCM,
		Paper:         mathutil.IdentityTransform(),
		Projector:     projector.Default(),
	}
}

// Load loads a project from a .anaproj file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("project: read %s: %w", path, err)
	}

	var proj File
	if err := json.Unmarshal(data, &proj); err != nil {
		return nil, fmt.Errorf("project: parse %s: %w", path, err)
	}
	if proj.Version > CurrentVersion {
		return nil, fmt.Errorf("project: %s has version %d, newest supported is %d", path, proj.Version, CurrentVersion)
	}
	if err := proj.Projector.Validate(); err != nil {
		return nil, fmt.Errorf("project: %s: %w", path, err)
	}
	if proj.Paper.Scale == (mathutil.Vec3{}) {
		proj.Paper.Scale = mathutil.Vec3{1, 1, 1}
	}

	return &proj, nil
}

// Save saves the project to a file.
func (p *File) Save(path string) error {
	p.Modified = time.Now()
	if p.Version == 0 {
		p.Version = CurrentVersion
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("project: encode: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("project: write %s: %w", path, err)
	}
	return nil
}

// SetImage sets the source image path (relative to project).
func (p *File) SetImage(projectPath, imagePath string) {
	rel, err := filepath.Rel(filepath.Dir(projectPath), imagePath)
	if err != nil || !filepath.IsAbs(imagePath) {
		p.ImagePath = imagePath
	} else {
		p.ImagePath = rel
	}
	p.Modified = time.Now()
}

// GetImagePath returns the absolute path to the source image.
func (p *File) GetImagePath(projectPath string) string {
	if p.ImagePath == "" {
		return ""
	}
	if filepath.IsAbs(p.ImagePath) {
		return p.ImagePath
	}
	return filepath.Join(filepath.Dir(projectPath), p.ImagePath)
}
