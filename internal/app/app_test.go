package app

import (
	"errors"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"

	"paper-anamorph/internal/config"
	"paper-anamorph/internal/export"
	"paper-anamorph/internal/mathutil"
	"paper-anamorph/internal/project"
	"paper-anamorph/internal/projector"
	"paper-anamorph/internal/texture"
	"paper-anamorph/internal/widget"
)

var green = color.NRGBA{0, 200, 0, 255}

type memorySink struct {
	saved map[string][]byte
}

func (m *memorySink) Save(name string, payload []byte) error {
	if m.saved == nil {
		m.saved = map[string][]byte{}
	}
	m.saved[name] = payload
	return nil
}

func newApp(t *testing.T) (*App, *memorySink) {
	t.Helper()
	cfg := config.Config{ViewportWidth: 64, ViewportHeight: 36}
	cfg.Resolve(config.Flags{})
	sink := &memorySink{}
	a, err := New(cfg, sink)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a, sink
}

func solid(w, h int, c color.NRGBA) *texture.SourceImage {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	src, _ := texture.FromImage(img)
	return src
}

// screenOf returns the viewport NDC of a world point.
func screenOf(a *App, p mathutil.Vec3) (float64, float64) {
	ndc := a.camera.ViewProjection().MulVec4(p).PerspectiveDivide()
	return ndc[0], ndc[1]
}

// pixelOf returns the viewport pixel of a world point.
func pixelOf(a *App, p mathutil.Vec3) (int, int) {
	x, y := screenOf(a, p)
	vp := a.device.Viewport()
	return int((x*0.5 + 0.5) * float64(vp.Width)), int((0.5 - y*0.5) * float64(vp.Height))
}

func TestNewDefaults(t *testing.T) {
	a, _ := newApp(t)
	if a.Attached() != TargetProjector || a.Selected() != TargetProjector {
		t.Errorf("attached = %v, selected = %v; want projector", a.Attached(), a.Selected())
	}
	if a.Surface().WidthCM != 40 || a.Surface().HeightCM != 30 {
		t.Errorf("paper = %gx%g, want 40x30", a.Surface().WidthCM, a.Surface().HeightCM)
	}
	if a.Projector() != config.DefaultProjector() {
		t.Errorf("projector = %+v", a.Projector())
	}
	if !a.HelpersVisible() || a.BakeMode() {
		t.Error("helpers hidden or bake mode on at start")
	}
}

func TestResizeThenExport(t *testing.T) {
	a, sink := newApp(t)
	if err := a.SetSourceImage(solid(8, 8, green)); err != nil {
		t.Fatal(err)
	}
	old := a.Surface().Geometry
	a.SelectTarget(TargetPaper)

	if err := a.SetPaperSize(20, 20); err != nil {
		t.Fatalf("SetPaperSize: %v", err)
	}
	if !old.Released() {
		t.Error("old paper geometry not released")
	}
	if a.Attached() != TargetPaper {
		t.Errorf("attached = %v after resize, want paper", a.Attached())
	}

	res, err := a.ExportPaper(150, export.PNG)
	if err != nil {
		t.Fatalf("ExportPaper: %v", err)
	}
	if b := res.Image.Bounds(); b.Dx() != 1181 || b.Dy() != 1181 {
		t.Errorf("export size = %v, want 1181x1181", b)
	}
	if _, ok := sink.saved["anamorphosis_export.png"]; !ok {
		t.Errorf("sink got %v, want anamorphosis_export.png", len(sink.saved))
	}
}

func TestExportWithoutImage(t *testing.T) {
	a, sink := newApp(t)
	if err := a.RenderFrame(); err != nil {
		t.Fatal(err)
	}
	before := a.Snapshot()
	proj := a.Projector()

	_, err := a.Export(export.Request{WidthCM: 40, HeightCM: 30, DPI: 300}, export.PNG)
	if !errors.Is(err, export.ErrMissingSourceImage) {
		t.Fatalf("Export error = %v, want ErrMissingSourceImage", err)
	}
	if len(sink.saved) != 0 {
		t.Error("sink received a payload")
	}
	if a.Device().RenderTarget() != nil || a.Device().ClearColor() != Background {
		t.Error("render state changed")
	}
	if a.Projector() != proj || a.Attached() != TargetProjector {
		t.Error("interactive state changed")
	}
	if err := a.RenderFrame(); err != nil {
		t.Fatal(err)
	}
	if string(a.Snapshot().Pix) != string(before.Pix) {
		t.Error("viewport differs after failed export")
	}
}

func TestExportInvalidParameters(t *testing.T) {
	a, _ := newApp(t)
	_, err := a.Export(export.Request{WidthCM: 40, HeightCM: 30, DPI: -1}, export.PNG)
	if !errors.Is(err, export.ErrInvalidExportParameters) {
		t.Errorf("Export error = %v, want ErrInvalidExportParameters", err)
	}
}

func TestWidgetDragUsesProjectorPath(t *testing.T) {
	a, _ := newApp(t)
	var got []projector.State
	a.OnControlsChange(func(s projector.State) { got = append(got, s) })

	if err := a.Drag(mathutil.Vec3{0.5, 0, 0}); err != nil {
		t.Fatalf("Drag: %v", err)
	}
	want := mathutil.Vec3{5, 0, 50}
	for i := range want {
		if math.Abs(a.Projector().PositionCM[i]-want[i]) > 1e-9 {
			t.Fatalf("projector position = %v, want %v", a.Projector().PositionCM, want)
		}
	}
	if len(got) != 1 || got[0] != a.ProjectorControls() {
		t.Errorf("controls updates = %+v", got)
	}

	// A drag the projector rejects changes nothing and is not reported.
	a.HandleKey('s')
	before := a.Projector()
	if err := a.Drag(mathutil.Vec3{-1, 0, 0}); err == nil {
		t.Error("Drag to zero scale returned nil error")
	}
	if a.Projector() != before || len(got) != 1 {
		t.Error("rejected drag changed state or notified controls")
	}
}

func TestRotateDragSurvivesControlsSync(t *testing.T) {
	a, _ := newApp(t)
	a.HandleKey('r')
	if err := a.Drag(mathutil.Vec3{0.3, 0.2, 0}); err != nil {
		t.Fatalf("Drag: %v", err)
	}
	pre := a.Projector().WorldMatrix()

	// The controls round rotation to whole degrees, so writing them back
	// may move each axis by at most half a degree.
	if err := a.SetProjectorState(a.ProjectorControls()); err != nil {
		t.Fatalf("SetProjectorState(controls): %v", err)
	}
	post := a.Projector().WorldMatrix()
	tol := 2 * math.Sin(mathutil.Deg2Rad(1))
	for i := range pre {
		if math.Abs(post[i]-pre[i]) > tol {
			t.Fatalf("world matrix after sync = %v, want %v (±1°)", post, pre)
		}
	}
}

func TestSetProjectorStateRejectsInvalid(t *testing.T) {
	a, _ := newApp(t)
	before := a.Projector()
	bad := before
	bad.PositionCM[1] = math.NaN()
	if err := a.SetProjectorState(bad); !errors.Is(err, projector.ErrInvalidState) {
		t.Errorf("SetProjectorState error = %v, want ErrInvalidState", err)
	}
	if a.Projector() != before {
		t.Error("invalid state was applied")
	}
}

func TestHandleKey(t *testing.T) {
	a, _ := newApp(t)
	tests := []struct {
		key  rune
		mode widget.Mode
	}{
		{'r', widget.Rotate},
		{'s', widget.Scale},
		{'g', widget.Translate},
	}
	for _, tt := range tests {
		if !a.HandleKey(tt.key) || a.Widget().Mode() != tt.mode {
			t.Errorf("HandleKey(%q) mode = %v, want %v", tt.key, a.Widget().Mode(), tt.mode)
		}
	}
	if !a.HandleKey('h') || a.HelpersVisible() {
		t.Error("h did not hide the preview")
	}
	if a.HandleKey('x') {
		t.Error("HandleKey('x') = true")
	}
}

func TestClickPicking(t *testing.T) {
	a, _ := newApp(t)

	// The view looks at the paper centre.
	if got := a.Click(0, 0); got != TargetPaper || a.Attached() != TargetPaper {
		t.Errorf("Click(centre) = %v, attached %v; want paper", got, a.Attached())
	}

	px, py := screenOf(a, a.Projector().WorldMatrix().Translation())
	if got := a.Click(px, py); got != TargetProjector || a.Attached() != TargetProjector {
		t.Errorf("Click(projector) = %v, attached %v; want projector", got, a.Attached())
	}

	if got := a.Click(0.99, 0.99); got != TargetNone || a.Attached() != TargetNone {
		t.Errorf("Click(background) = %v, attached %v; want none", got, a.Attached())
	}
	if a.Selected() != TargetProjector {
		t.Errorf("selection = %v after background click, want projector kept", a.Selected())
	}

	// A hidden preview cannot be picked.
	a.HandleKey('h')
	if got := a.Click(px, py); got == TargetProjector {
		t.Error("hidden projector preview was picked")
	}
}

func TestRenderFrame(t *testing.T) {
	a, _ := newApp(t)
	if err := a.SetSourceImage(solid(4, 4, green)); err != nil {
		t.Fatal(err)
	}
	if err := a.RenderFrame(); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	snap := a.Snapshot()

	x, y := pixelOf(a, mathutil.Vec3{})
	if got := snap.NRGBAAt(x, y); got != green {
		t.Errorf("paper centre = %v, want projected %v", got, green)
	}
	if got := snap.NRGBAAt(0, 0); got != Background {
		t.Errorf("corner = %v, want background", got)
	}

	qx, qy := pixelOf(a, a.Projector().WorldMatrix().Translation())
	if got := snap.NRGBAAt(qx, qy); got == Background {
		t.Error("projector preview not drawn")
	}
	a.HandleKey('h')
	if err := a.RenderFrame(); err != nil {
		t.Fatal(err)
	}
	if got := a.Snapshot().NRGBAAt(qx, qy); got != Background {
		t.Errorf("hidden preview pixel = %v, want background", got)
	}
}

func TestSetSourceImageReplacesPreview(t *testing.T) {
	a, _ := newApp(t)
	old := a.preview
	if err := a.SetSourceImage(solid(4, 2, green)); err != nil {
		t.Fatal(err)
	}
	if !old.Released() {
		t.Error("old preview quad not released")
	}
	if a.preview.Width != 2 || a.preview.Height != 1 {
		t.Errorf("preview quad = %gx%g, want 2x1", a.preview.Width, a.preview.Height)
	}
	if err := a.SetSourceImage(nil); err == nil {
		t.Error("SetSourceImage(nil) returned nil error")
	}
}

func TestToggleBakeMode(t *testing.T) {
	a, _ := newApp(t)
	if err := a.ToggleBakeMode(); !errors.Is(err, export.ErrMissingSourceImage) {
		t.Fatalf("ToggleBakeMode error = %v, want ErrMissingSourceImage", err)
	}
	if a.BakeMode() {
		t.Fatal("bake mode entered without an image")
	}

	if err := a.SetSourceImage(solid(4, 4, green)); err != nil {
		t.Fatal(err)
	}
	a.SelectTarget(TargetPaper)
	if err := a.ToggleBakeMode(); err != nil {
		t.Fatalf("ToggleBakeMode: %v", err)
	}
	if !a.BakeMode() || a.Attached() != TargetNone {
		t.Errorf("bake mode = %v, attached = %v; want on, none", a.BakeMode(), a.Attached())
	}
	if b := a.Baked().Bounds(); b.Dx() != export.BakeSize || b.Dy() != export.BakeSize {
		t.Errorf("baked texture = %v", b)
	}
	if err := a.RenderFrame(); err != nil {
		t.Fatalf("RenderFrame in bake mode: %v", err)
	}

	if err := a.ToggleBakeMode(); err != nil {
		t.Fatal(err)
	}
	if a.BakeMode() || a.Attached() != TargetPaper || a.Baked() != nil {
		t.Errorf("after leaving bake mode attached = %v", a.Attached())
	}
}

func TestProjectRoundTrip(t *testing.T) {
	dir := t.TempDir()
	imgPath := filepath.Join(dir, "art.png")
	src := solid(4, 4, green)
	payload, err := export.Encode(src.Image, export.PNG)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(imgPath, payload, 0o644); err != nil {
		t.Fatal(err)
	}

	a, _ := newApp(t)
	if err := a.LoadImage(imgPath); err != nil {
		t.Fatal(err)
	}
	s := a.Projector()
	s.RotationDeg = mathutil.Vec3{-20, 10, 0}
	if err := a.SetProjectorState(s); err != nil {
		t.Fatal(err)
	}
	if err := a.SetPaperSize(21, 29.7); err != nil {
		t.Fatal(err)
	}

	projPath := filepath.Join(dir, "a4"+project.Extension)
	if err := a.Project("a4", projPath, imgPath).Save(projPath); err != nil {
		t.Fatal(err)
	}
	p, err := project.Load(projPath)
	if err != nil {
		t.Fatal(err)
	}

	b, _ := newApp(t)
	if err := b.ApplyProject(p, projPath); err != nil {
		t.Fatalf("ApplyProject: %v", err)
	}
	if b.Projector() != a.Projector() {
		t.Errorf("projector = %+v, want %+v", b.Projector(), a.Projector())
	}
	if b.Surface().WidthCM != 21 || b.Surface().HeightCM != 29.7 {
		t.Errorf("paper = %gx%g", b.Surface().WidthCM, b.Surface().HeightCM)
	}
	if b.SourceImage() == nil || b.SourceImage().Width != 4 {
		t.Error("source image not restored")
	}
}

func TestApplyProjectInvalidLeavesSession(t *testing.T) {
	dir := t.TempDir()
	projPath := filepath.Join(dir, "bad"+project.Extension)

	noScale := project.New("bad", 30, 40)
	noScale.Projector.Scale = mathutil.Vec3{0, 1, 1}
	noPaper := project.New("bad", 30, 40)
	noPaper.Paper.Scale = mathutil.Vec3{1, 0, 1}
	missing := project.New("bad", 30, 40)
	missing.SetImage(projPath, filepath.Join(dir, "gone.png"))
	tests := []struct {
		name string
		p    *project.File
	}{
		{"zero projector scale", noScale},
		{"zero paper scale", noPaper},
		{"missing image", missing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := newApp(t)
			src := solid(4, 2, green)
			if err := a.SetSourceImage(src); err != nil {
				t.Fatal(err)
			}
			w, h := a.Surface().WidthCM, a.Surface().HeightCM
			paper := a.Surface().Transform()
			before := a.Projector()

			if err := a.ApplyProject(tt.p, projPath); err == nil {
				t.Fatal("ApplyProject returned nil error")
			}
			if a.Surface().WidthCM != w || a.Surface().HeightCM != h {
				t.Errorf("paper = %gx%g, want %gx%g", a.Surface().WidthCM, a.Surface().HeightCM, w, h)
			}
			if a.Surface().Transform() != paper {
				t.Errorf("paper transform = %+v, want %+v", a.Surface().Transform(), paper)
			}
			if a.Projector() != before {
				t.Errorf("projector = %+v, want %+v", a.Projector(), before)
			}
			if a.SourceImage() != src {
				t.Error("source image replaced")
			}
		})
	}
}
