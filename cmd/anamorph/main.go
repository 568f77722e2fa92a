package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"paper-anamorph/internal/app"
	"paper-anamorph/internal/config"
	"paper-anamorph/internal/export"
	"paper-anamorph/internal/logging"
	"paper-anamorph/internal/mathutil"
	"paper-anamorph/internal/project"
	"paper-anamorph/internal/projector"
	"paper-anamorph/internal/texture"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	projectFile := flag.String("project", "", "Path to .anaproj project file")
	imagePath := flag.String("image", "", "Source image to project")
	width := flag.Float64("width", 0, "Paper width in cm (default: 40)")
	height := flag.Float64("height", 0, "Paper height in cm (default: 30)")
	dpi := flag.Float64("dpi", 0, "Export resolution (default: 300)")
	pos := flag.String("pos", "", "Projector position in cm as x,y,z")
	rot := flag.String("rot", "", "Projector rotation in degrees as x,y,z")
	scale := flag.String("scale", "", "Projector scale as x,y,z")
	outputDir := flag.String("out", "", "Output directory (default: current directory)")
	format := flag.String("format", "", "Output format: png or webp (default: png)")
	supersample := flag.Int("supersample", 0, "Render at N× and downsample (default: 1)")
	preview := flag.String("preview", "", "Also write the interactive view to this PNG file")
	saveProject := flag.String("save-project", "", "Write the session to this .anaproj file")
	verbose := flag.Bool("v", false, "Verbose logging")

	flag.Parse()

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	flags := config.Flags{
		ImagePath:   *imagePath,
		OutputDir:   *outputDir,
		WidthCM:     *width,
		HeightCM:    *height,
		DPI:         *dpi,
		Format:      *format,
		Supersample: *supersample,
	}
	if *verbose {
		flags.LogLevel = "debug"
	}
	if *pos != "" || *rot != "" || *scale != "" {
		p, err := projectorFlags(cfg.Projector, *pos, *rot, *scale)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		flags.Projector = &p
	}

	// CLI flags override config file
	cfg.Resolve(flags)

	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logging.ParseLevel(cfg.LogLevel),
	})))

	a, err := app.New(cfg, export.FileSink{Dir: cfg.OutputDir})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Project file first, then explicit flags on top of it
	imageSource := cfg.ImagePath
	if *projectFile != "" {
		p, err := project.Load(*projectFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading project: %v\n", err)
			os.Exit(1)
		}
		if *imagePath != "" {
			p.ImagePath = ""
		}
		if err := a.ApplyProject(p, *projectFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error applying project: %v\n", err)
			os.Exit(1)
		}
		if *width > 0 || *height > 0 {
			w, h := a.Surface().WidthCM, a.Surface().HeightCM
			if *width > 0 {
				w = *width
			}
			if *height > 0 {
				h = *height
			}
			if err := a.SetPaperSize(w, h); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}
		if flags.Projector != nil {
			if err := a.SetProjectorState(*flags.Projector); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}
		if imageSource == "" {
			imageSource = p.GetImagePath(*projectFile)
		}
	}
	if *imagePath != "" || (a.SourceImage() == nil && imageSource != "") {
		res := <-texture.LoadAsync(imageSource)
		if res.Err != nil {
			fmt.Fprintf(os.Stderr, "Error loading image: %v\n", res.Err)
			os.Exit(1)
		}
		if err := a.SetSourceImage(res.Image); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	// Explicit flags win over the project's export settings
	outDPI, formatName := a.Config().DPI, a.Config().Format
	if *dpi > 0 {
		outDPI = *dpi
	}
	if *format != "" {
		formatName = *format
	}
	outFormat, err := export.ParseFormat(formatName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Print summary
	surf := a.Surface()
	req := export.Request{WidthCM: surf.WidthCM, HeightCM: surf.HeightCM, DPI: outDPI}
	pw, ph, err := req.Pixels()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	ctl := a.ProjectorControls()
	fmt.Println("Anamorphic paper projection → " + strings.ToUpper(string(outFormat)))
	fmt.Printf("Paper: %.1f × %.1f cm @ %.0f dpi → %d × %d px\n", surf.WidthCM, surf.HeightCM, req.DPI, pw, ph)
	fmt.Printf("Projector: pos %v cm, rot %v°, scale %v\n", ctl.PositionCM, ctl.RotationDeg, ctl.Scale)
	if src := a.SourceImage(); src != nil {
		fmt.Printf("Image: %s (%d × %d)\n", imageSource, src.Width, src.Height)
	}
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	if *preview != "" {
		if err := writePreview(a, *preview); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing preview: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Preview: %s\n", *preview)
	}

	res, err := a.Export(req, outFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting: %v\n", err)
		os.Exit(1)
	}

	if *saveProject != "" {
		p := a.Project(strings.TrimSuffix(filepath.Base(*saveProject), filepath.Ext(*saveProject)), *saveProject, absPath(imageSource))
		if err := p.Save(*saveProject); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving project: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Project: %s\n", *saveProject)
	}

	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", time.Since(start).Seconds())
	fmt.Printf("Wrote %s (%d bytes)\n", filepath.Join(cfg.OutputDir, res.Name), len(res.Payload))
}

func writePreview(a *app.App, path string) error {
	if err := a.RenderFrame(); err != nil {
		return err
	}
	data, err := export.Encode(a.Snapshot(), export.PNG)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func absPath(p string) string {
	if p == "" {
		return ""
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// projectorFlags applies -pos/-rot/-scale on top of base (or the default
// placement when base is nil).
func projectorFlags(base *projector.State, pos, rot, scale string) (projector.State, error) {
	s := config.DefaultProjector()
	if base != nil {
		s = *base
	}
	for _, f := range []struct {
		name string
		raw  string
		dst  *mathutil.Vec3
	}{
		{"pos", pos, &s.PositionCM},
		{"rot", rot, &s.RotationDeg},
		{"scale", scale, &s.Scale},
	} {
		if f.raw == "" {
			continue
		}
		v, err := parseVec3(f.raw)
		if err != nil {
			return projector.State{}, fmt.Errorf("-%s: %w", f.name, err)
		}
		*f.dst = v
	}
	return s, s.Validate()
}

// parseVec3 reads "x,y,z".
func parseVec3(s string) (mathutil.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return mathutil.Vec3{}, fmt.Errorf("want x,y,z, got %q", s)
	}
	var v mathutil.Vec3
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return mathutil.Vec3{}, fmt.Errorf("component %d: %w", i, err)
		}
		v[i] = f
	}
	return v, nil
}
