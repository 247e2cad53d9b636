package canvas_test

import (
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/meshcanvas/internal/canvas"
	"github.com/Faultbox/meshcanvas/internal/engine/model"
	"github.com/Faultbox/meshcanvas/internal/engine/scene"
	"github.com/Faultbox/meshcanvas/internal/engine/soft"
	"github.com/Faultbox/meshcanvas/pkg/math"
)

const eps = 1e-3

type fixture struct {
	t        *testing.T
	scene    *scene.Scene
	dev      *soft.Device
	logs     *observer.ObservedLogs
	log      *zap.Logger
	textures []canvas.Texture
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)
	sc := scene.New()
	if _, err := sc.Layers.Define(canvas.DefaultBakeLayerName); err != nil {
		t.Fatalf("define bake layer: %v", err)
	}
	return &fixture{
		t:     t,
		scene: sc,
		dev:   soft.New(sc, soft.WithLogger(log)),
		logs:  logs,
		log:   log,
	}
}

func (f *fixture) canvas(width, height int) *canvas.Canvas {
	f.t.Helper()
	return f.canvasOn(f.dev, width, height)
}

func (f *fixture) canvasOn(dev canvas.Device, width, height int) *canvas.Canvas {
	f.t.Helper()
	c, err := canvas.New(dev, f.scene, canvas.Config{Width: width, Height: height, Logger: f.log})
	if err != nil {
		f.t.Fatalf("New: %v", err)
	}
	return c
}

// closeAll closes the canvas and the device and fails on leaked resources.
func (f *fixture) closeAll(c *canvas.Canvas) {
	f.t.Helper()
	if err := c.Close(); err != nil {
		f.t.Errorf("canvas Close: %v", err)
	}
	f.closeDevice()
}

// closeDevice releases the fixture's own textures and closes the device.
func (f *fixture) closeDevice() {
	f.t.Helper()
	for _, tex := range f.textures {
		f.dev.Release(tex)
	}
	f.textures = nil
	if err := f.dev.Close(); err != nil {
		f.t.Errorf("device Close: %v", err)
	}
}

func (f *fixture) target(width, height int) canvas.Texture {
	f.t.Helper()
	tex, err := f.dev.NewRenderTarget(width, height)
	if err != nil {
		f.t.Fatalf("NewRenderTarget: %v", err)
	}
	f.textures = append(f.textures, tex)
	return tex
}

func (f *fixture) logged(level zapcore.Level, substr string) bool {
	for _, e := range f.logs.All() {
		if e.Level == level && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func (f *fixture) brush(c color.Color) canvas.Brush {
	f.t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, c)
	tex, err := f.dev.NewTexture(img)
	if err != nil {
		f.t.Fatalf("NewTexture: %v", err)
	}
	f.textures = append(f.textures, tex)
	return canvas.DefaultBrush(tex)
}

func positions(t *testing.T, c *canvas.Canvas) *soft.Image {
	t.Helper()
	img, ok := c.PositionTexture().(*soft.Image)
	if !ok {
		t.Fatalf("position texture is %T", c.PositionTexture())
	}
	return img
}

// regionQuad is a unit quad whose UVs cover only columns [u0, u1).
func regionQuad(name string, u0, u1 float32) *model.Mesh {
	q := model.Quad()
	vertices := make([]model.Vertex, len(q.Vertices))
	for i, v := range q.Vertices {
		v.UV.X = u0 + v.UV.X*(u1-u0)
		vertices[i] = v
	}
	return model.NewMesh(name, vertices, q.Indices)
}

func TestNewRejectsBadConfig(t *testing.T) {
	dev := soft.New(nil)
	tests := []struct {
		name string
		dev  canvas.Device
		cfg  canvas.Config
	}{
		{"nil device", nil, canvas.Config{Width: 4, Height: 4}},
		{"zero width", dev, canvas.Config{Width: 0, Height: 4}},
		{"negative height", dev, canvas.Config{Width: 4, Height: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := canvas.New(tt.dev, nil, tt.cfg); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestEmptyCanvasIsAllSentinel(t *testing.T) {
	f := newFixture(t)
	c := f.canvas(16, 8)

	if err := c.ForceUpdate(); err != nil {
		t.Fatalf("ForceUpdate: %v", err)
	}
	img := positions(t, c)
	for y := 0; y < 8; y++ {
		for x := 0; x < 16; x++ {
			if got := img.At(x, y); got != math.Clear {
				t.Fatalf("texel (%d,%d) = %v, want sentinel", x, y, got)
			}
		}
	}
	if c.Dirty() {
		t.Error("canvas still dirty after ForceUpdate")
	}
	f.closeAll(c)
}

func TestQuadCenterBakesToOrigin(t *testing.T) {
	f := newFixture(t)
	c := f.canvas(256, 256)
	node := f.scene.AddStatic("quad", model.Quad(), math.Identity())
	c.AddStatic(node, node)

	if err := c.ForceUpdate(); err != nil {
		t.Fatalf("ForceUpdate: %v", err)
	}
	img := positions(t, c)

	center := img.Sample(0.5, 0.5)
	if center.A != 1 {
		t.Fatalf("center alpha = %v, want 1", center.A)
	}
	got := math.Vec3{X: center.R, Y: center.G, Z: center.B}
	if !got.ApproxEqual(math.Vec3{}, eps) {
		t.Errorf("center position = %v, want origin", got)
	}

	corner := img.At(0, 0)
	want := math.Vec3{X: -0.5 + 0.5/256, Y: -0.5 + 0.5/256}
	if !(math.Vec3{X: corner.R, Y: corner.G, Z: corner.B}).ApproxEqual(want, eps) {
		t.Errorf("corner position = %v, want %v", corner, want)
	}
	f.closeAll(c)
}

func TestTransformedQuadBakesWorldPositions(t *testing.T) {
	f := newFixture(t)
	c := f.canvas(32, 32)
	transform := math.TRS(math.Vec3{X: 3, Y: -1, Z: 2}, math.QuatFromAxisAngle(math.Vec3{Y: 1}, 0.5), math.Vec3{X: 2, Y: 2, Z: 2})
	node := f.scene.AddStatic("quad", model.Quad(), transform)
	c.AddStatic(node, node)

	if err := c.ForceUpdate(); err != nil {
		t.Fatalf("ForceUpdate: %v", err)
	}
	p := positions(t, c).Sample(0.5, 0.5)
	got := math.Vec3{X: p.R, Y: p.G, Z: p.B}
	// Half floats near 3 have a spacing of about 0.002.
	if !got.ApproxEqual(math.Vec3{X: 3, Y: -1, Z: 2}, 1e-2) {
		t.Errorf("center = %v, want (3,-1,2)", got)
	}
	f.closeAll(c)
}

func TestRebuildOncePerDirtyCycle(t *testing.T) {
	f := newFixture(t)
	c := f.canvas(32, 32)
	brush := f.brush(color.White)
	target := f.target(32, 32)

	for i := 0; i < 3; i++ {
		n := f.scene.AddStatic("quad", model.Quad(), math.Translate(math.Vec3{X: float32(i)}))
		c.AddStatic(n, n)
	}
	for i := 0; i < 4; i++ {
		if err := c.Paint(target, brush, math.Vec3{}); err != nil {
			t.Fatalf("Paint: %v", err)
		}
	}

	s := f.dev.Stats()
	if s.Expands != 1 {
		t.Errorf("expands = %d, want 1", s.Expands)
	}
	if s.Draws != 3 {
		t.Errorf("draws = %d, want 3", s.Draws)
	}
	if s.Composites != 4 {
		t.Errorf("composites = %d, want 4", s.Composites)
	}
	if s.TemporariesInUse != 0 {
		t.Errorf("temporaries in use = %d", s.TemporariesInUse)
	}
	if got := c.Generation(); got != 1 {
		t.Errorf("generation = %d, want 1", got)
	}

	c.MarkDirty()
	c.MarkDirty()
	if err := c.Paint(target, brush, math.Vec3{}); err != nil {
		t.Fatal(err)
	}
	if got := f.dev.Stats().Expands; got != 2 {
		t.Errorf("expands after MarkDirty = %d, want 2", got)
	}
	if got := c.Generation(); got != 2 {
		t.Errorf("generation after MarkDirty = %d, want 2", got)
	}

	f.closeAll(c)
}

func TestResizeReallocatesOnlyOnChange(t *testing.T) {
	f := newFixture(t)
	c := f.canvas(16, 16)
	brush := f.brush(color.White)
	target := f.target(8, 8)

	for i := 0; i < 3; i++ {
		if err := c.Paint(target, brush, math.Vec3{}); err != nil {
			t.Fatal(err)
		}
	}
	if got := f.dev.Stats().PositionBuffers; got != 1 {
		t.Fatalf("position buffers = %d, want 1", got)
	}

	if err := c.Resize(16, 16); err != nil {
		t.Fatal(err)
	}
	if c.Dirty() {
		t.Error("same-size Resize marked the canvas dirty")
	}

	if err := c.Resize(32, 8); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := c.Paint(target, brush, math.Vec3{}); err != nil {
			t.Fatal(err)
		}
	}
	if got := f.dev.Stats().PositionBuffers; got != 2 {
		t.Errorf("position buffers = %d, want 2", got)
	}
	if w, h := c.PositionTexture().Size(); w != 32 || h != 8 {
		t.Errorf("position buffer size = %dx%d, want 32x8", w, h)
	}

	// A dirty rebuild at the same size updates in place.
	if err := c.ForceUpdate(); err != nil {
		t.Fatal(err)
	}
	if got := f.dev.Stats().PositionBuffers; got != 2 {
		t.Errorf("position buffers after ForceUpdate = %d, want 2", got)
	}

	if err := c.Resize(0, 8); err == nil {
		t.Error("Resize(0, 8) succeeded")
	}

	f.closeAll(c)
}

func TestCloseIsIdempotent(t *testing.T) {
	f := newFixture(t)
	c := f.canvas(8, 8)
	n := f.scene.AddStatic("quad", model.Quad(), math.Identity())
	c.AddStatic(n, n)
	c.AddSkinned(n)
	if err := c.ForceUpdate(); err != nil {
		t.Fatal(err)
	}

	if err := c.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	textures, cameras := f.dev.LiveTextures(), f.dev.LiveCameras()
	if err := c.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if f.dev.LiveTextures() != textures || f.dev.LiveCameras() != cameras {
		t.Error("second Close released resources")
	}
	if textures != 0 || cameras != 0 {
		t.Errorf("leaked %d textures, %d cameras", textures, cameras)
	}
	if !c.Disposed() || c.PositionTexture() != nil || c.Extractors() != 0 {
		t.Error("canvas not fully disposed")
	}
	f.closeDevice()
}

func TestDeviceReportsLeakWithoutClose(t *testing.T) {
	f := newFixture(t)
	c := f.canvas(8, 8)
	n := f.scene.AddStatic("quad", model.Quad(), math.Identity())
	c.AddSkinned(n)
	if err := c.ForceUpdate(); err != nil {
		t.Fatal(err)
	}

	err := f.dev.Close()
	if err == nil {
		t.Fatal("device Close did not report leaked canvas resources")
	}
	for _, want := range []string{"position buffer", "camera"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("leak error %q does not mention %s", err, want)
		}
	}
}

func TestDisposedCanvasIgnoresCalls(t *testing.T) {
	f := newFixture(t)
	c := f.canvas(8, 8)
	brush := f.brush(color.White)
	target := f.target(8, 8)
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}

	n := f.scene.AddStatic("quad", model.Quad(), math.Identity())
	c.AddStatic(n, n)
	c.AddSkinned(n)
	if err := c.ForceUpdate(); err != nil {
		t.Errorf("ForceUpdate: %v", err)
	}
	if err := c.Paint(target, brush, math.Vec3{}); err != nil {
		t.Errorf("Paint: %v", err)
	}

	if c.Extractors() != 0 {
		t.Error("disposed canvas accepted geometry")
	}
	if s := f.dev.Stats(); s.PositionBuffers != 0 || s.Composites != 0 {
		t.Errorf("disposed canvas used the device: %+v", s)
	}
	for _, msg := range []string{"AddStatic on disposed", "AddSkinned on disposed", "Paint on disposed"} {
		if !f.logged(zapcore.WarnLevel, msg) {
			t.Errorf("missing warning %q", msg)
		}
	}
	f.closeDevice()
}

func TestAddRejectsInvalidGeometry(t *testing.T) {
	f := newFixture(t)
	c := f.canvas(8, 8)

	c.AddStatic(nil, nil)
	c.AddSkinned()
	if c.Extractors() != 0 {
		t.Errorf("extractors = %d, want 0", c.Extractors())
	}
	if !f.logged(zapcore.WarnLevel, "AddStatic without mesh") {
		t.Error("missing static warning")
	}
	if !f.logged(zapcore.WarnLevel, "empty group") {
		t.Error("missing empty group warning")
	}
	f.closeAll(c)
}

func TestMissingBakeLayerSkipsSkinnedOnly(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sc := scene.New()
	dev := soft.New(sc)
	c, err := canvas.New(dev, sc, canvas.Config{
		Width: 8, Height: 8,
		BakeLayerName: "Missing",
		Logger:        zap.New(core),
	})
	if err != nil {
		t.Fatal(err)
	}
	n := sc.AddStatic("quad", model.Quad(), math.Identity())

	c.AddSkinned(n)
	if c.Extractors() != 0 {
		t.Error("skinned group added without a bake layer")
	}
	if logs.FilterMessageSnippet("bake layer not found").Len() != 1 {
		t.Error("missing bake layer error")
	}

	c.AddStatic(n, n)
	if c.Extractors() != 1 {
		t.Error("static geometry rejected after layer failure")
	}
	if dev.LiveCameras() != 0 {
		t.Error("camera allocated for rejected group")
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if err := dev.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestDestroyedStaticGeometryIsSkipped(t *testing.T) {
	f := newFixture(t)
	c := f.canvas(8, 8)
	n := f.scene.AddStatic("quad", model.Quad(), math.Identity())
	c.AddStatic(n, n)
	n.Destroy()

	if err := c.ForceUpdate(); err != nil {
		t.Fatalf("ForceUpdate: %v", err)
	}
	if got := f.dev.Stats().Draws; got != 0 {
		t.Errorf("draws = %d, want 0", got)
	}
	if got := positions(t, c).At(4, 4); got != math.Clear {
		t.Errorf("texel = %v, want sentinel", got)
	}
	f.closeAll(c)
}

func TestSkinnedGroupWithDestroyedRenderer(t *testing.T) {
	f := newFixture(t)
	c := f.canvas(96, 32)

	var nodes []*scene.Node
	for i, x := range []float32{-2, 0, 2} {
		mesh := regionQuad("part", float32(i)/3, float32(i+1)/3)
		skin, err := model.NewSkin(mesh, model.RigidInfluences(mesh, func(model.Vertex) int { return 0 }), 1)
		if err != nil {
			t.Fatal(err)
		}
		skin.SetBone(0, math.Translate(math.Vec3{Y: 0.25}))
		nodes = append(nodes, f.scene.AddSkinned("part", skin, math.Translate(math.Vec3{X: x})))
	}
	renderers := make([]canvas.SkinnedRenderer, len(nodes))
	for i, n := range nodes {
		renderers[i] = n
	}
	c.AddSkinned(renderers...)
	nodes[1].Destroy()

	if err := c.ForceUpdate(); err != nil {
		t.Fatalf("ForceUpdate: %v", err)
	}
	img := positions(t, c)

	left := img.At(16, 16)
	if left.A != 1 || left.R > -1.5 || abs(left.G-0.25) > 0.05 {
		t.Errorf("left texel = %v, want skinned position near (-2, 0.25, 0)", left)
	}
	right := img.At(80, 16)
	if right.A != 1 || right.R < 1.5 || abs(right.G-0.25) > 0.05 {
		t.Errorf("right texel = %v, want skinned position near (2, 0.25, 0)", right)
	}
	if mid := img.At(48, 16); mid != math.Clear {
		t.Errorf("destroyed renderer texel = %v, want sentinel", mid)
	}

	for _, i := range []int{0, 2} {
		if got := nodes[i].Layer(); got != scene.DefaultLayer {
			t.Errorf("node %d left on layer %d", i, got)
		}
	}
	if got := f.dev.Stats().CameraRenders; got != 1 {
		t.Errorf("camera renders = %d, want 1", got)
	}
	f.closeAll(c)
}

// failingDevice hands out cameras that check the group was moved to the
// bake layer and then fail.
type failingDevice struct {
	*soft.Device
	layerDuringRender []int
	nodes             []*scene.Node
	panics            bool
}

func (d *failingDevice) NewCamera(desc canvas.CameraDesc) (canvas.Camera, error) {
	cam, err := d.Device.NewCamera(desc)
	if err != nil {
		return nil, err
	}
	return &failingCamera{Camera: cam, dev: d}, nil
}

type failingCamera struct {
	canvas.Camera
	dev *failingDevice
}

func (c *failingCamera) Render(canvas.Texture) error {
	for _, n := range c.dev.nodes {
		c.dev.layerDuringRender = append(c.dev.layerDuringRender, n.Layer())
	}
	if c.dev.panics {
		panic("render exploded")
	}
	return errors.New("render failed")
}

func TestRenderFailureRestoresLayers(t *testing.T) {
	f := newFixture(t)
	bake, _ := f.scene.LayerByName(canvas.DefaultBakeLayerName)
	custom, err := f.scene.Layers.Define("Characters")
	if err != nil {
		t.Fatal(err)
	}

	a := f.scene.AddStatic("a", model.Quad(), math.Identity())
	b := f.scene.AddStatic("b", model.Quad(), math.Identity())
	b.SetLayer(custom)

	dev := &failingDevice{Device: f.dev, nodes: []*scene.Node{a, b}}
	c := f.canvasOn(dev, 8, 8)
	c.AddSkinned(a, b)

	if err := c.ForceUpdate(); err != nil {
		t.Fatalf("ForceUpdate: %v", err)
	}
	for i, l := range dev.layerDuringRender {
		if l != bake {
			t.Errorf("node %d on layer %d during render, want %d", i, l, bake)
		}
	}
	if a.Layer() != scene.DefaultLayer || b.Layer() != custom {
		t.Errorf("layers after failure = %d, %d", a.Layer(), b.Layer())
	}
	if !f.logged(zapcore.ErrorLevel, "extractor failed") {
		t.Error("render failure not logged")
	}
	if f.dev.Stats().TemporariesInUse != 0 {
		t.Error("scratch buffer not released")
	}
	if c.Dirty() {
		t.Error("rebuild did not complete after extractor failure")
	}
	f.closeAll(c)
}

func TestRenderPanicRestoresLayers(t *testing.T) {
	f := newFixture(t)
	n := f.scene.AddStatic("a", model.Quad(), math.Identity())
	dev := &failingDevice{Device: f.dev, nodes: []*scene.Node{n}, panics: true}

	e, err := canvas.NewSkinnedExtractor(dev, []canvas.SkinnedRenderer{n}, 5)
	if err != nil {
		t.Fatal(err)
	}
	scratch, err := f.dev.AcquireTemporary(4, 4)
	if err != nil {
		t.Fatal(err)
	}

	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected panic")
			}
		}()
		_ = e.WriteWorldTexels(scratch)
	}()

	if got := dev.layerDuringRender; len(got) != 1 || got[0] != 5 {
		t.Errorf("layer during render = %v, want [5]", got)
	}
	if n.Layer() != scene.DefaultLayer {
		t.Errorf("layer after panic = %d", n.Layer())
	}

	f.dev.ReleaseTemporary(scratch)
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	f.closeDevice()
}

func TestRepeatedRendererRestoresLayer(t *testing.T) {
	f := newFixture(t)
	bake, _ := f.scene.LayerByName(canvas.DefaultBakeLayerName)
	custom, err := f.scene.Layers.Define("Characters")
	if err != nil {
		t.Fatal(err)
	}
	n := f.scene.AddStatic("a", model.Quad(), math.Identity())
	n.SetLayer(custom)

	dev := &failingDevice{Device: f.dev, nodes: []*scene.Node{n}}
	c := f.canvasOn(dev, 8, 8)
	c.AddSkinned(n, n)
	if err := c.ForceUpdate(); err != nil {
		t.Fatalf("ForceUpdate: %v", err)
	}
	if got := dev.layerDuringRender; len(got) != 1 || got[0] != bake {
		t.Errorf("layer during render = %v, want [%d]", got, bake)
	}
	if got := n.Layer(); got != custom {
		t.Errorf("layer after bake = %d, want %d", got, custom)
	}
	f.closeAll(c)
}

func TestStaticAndSkinnedTexelsCombine(t *testing.T) {
	tests := []struct {
		name        string
		skinnedLast bool
	}{
		{"static then skinned", true},
		{"skinned then static", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			c := f.canvas(64, 32)

			static := f.scene.AddStatic("left", regionQuad("left", 0, 0.5), math.Translate(math.Vec3{X: -2}))
			mesh := regionQuad("right", 0.5, 1)
			skin, err := model.NewSkin(mesh, model.RigidInfluences(mesh, func(model.Vertex) int { return 0 }), 1)
			if err != nil {
				t.Fatal(err)
			}
			skin.SetBone(0, math.Translate(math.Vec3{Y: 0.25}))
			body := f.scene.AddSkinned("right", skin, math.Translate(math.Vec3{X: 2}))

			if tt.skinnedLast {
				c.AddStatic(static, static)
				c.AddSkinned(body)
			} else {
				c.AddSkinned(body)
				c.AddStatic(static, static)
			}
			if err := c.ForceUpdate(); err != nil {
				t.Fatalf("ForceUpdate: %v", err)
			}
			img := positions(t, c)

			left := img.At(16, 16)
			if left.A != 1 || abs(left.R+2) > 0.1 || abs(left.G) > 0.1 {
				t.Errorf("static texel = %v, want near (-2, 0, 0)", left)
			}
			right := img.At(48, 16)
			if right.A != 1 || abs(right.R-2) > 0.1 || abs(right.G-0.25) > 0.1 {
				t.Errorf("skinned texel = %v, want near (2, 0.25, 0)", right)
			}
			f.closeAll(c)
		})
	}
}

func TestDecalTransformComposition(t *testing.T) {
	brush := canvas.DefaultBrush(nil)
	brush.Rotation = math.QuatFromAxisAngle(math.Vec3{X: 1}, 0.7)
	brush.Size = math.Vec3{X: 2, Y: 3, Z: 4}

	pos := math.Vec3{X: 1, Y: -2, Z: 0.5}
	rot := math.QuatFromAxisAngle(math.Vec3{Y: 1, Z: 1}.Normalize(), 1.1)
	size := math.Vec3{X: 0.5, Y: 0.25, Z: 2}

	got := brush.DecalTransform(pos, rot, size)

	r0 := mgl32.QuatRotate(0.7, mgl32.Vec3{1, 0, 0})
	r := mgl32.QuatRotate(1.1, mgl32.Vec3{0, 1, 1}.Normalize())
	want := mgl32.Translate3D(1, -2, 0.5).
		Mul4(r.Mul(r0).Mat4()).
		Mul4(mgl32.Scale3D(1, 0.75, 8))
	if !got.ApproxEqual(math.Mat4(want), 1e-4) {
		t.Errorf("decal transform\n got %v\nwant %v", got, want)
	}

	// Identity call rotation and unit size leave only the brush transform.
	base := brush.DecalTransform(pos, math.QuatIdentity(), math.One)
	if !base.ApproxEqual(math.TRS(pos, brush.Rotation, brush.Size), 1e-5) {
		t.Error("identity call does not reduce to the brush transform")
	}
}

func TestFalloff(t *testing.T) {
	b := canvas.DefaultBrush(nil)
	tests := []struct {
		name  string
		local math.Vec3
		want  float32
	}{
		{"center", math.Vec3{}, 1},
		{"inside start", math.Vec3{Z: 0.4}, 1},
		{"beyond end", math.Vec3{Z: 1.1}, 0},
		{"at end", math.Vec3{Z: 1}, 0},
		{"midway", math.Vec3{Z: 0.75}, 0.5},
		{"outside xy", math.Vec3{X: 1.01}, 0},
		{"negative", math.Vec3{Z: -0.4}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := canvas.Falloff(tt.local, b.SmoothingStart, b.SmoothingEnd)
			if abs(got-tt.want) > 1e-5 {
				t.Errorf("Falloff(%v) = %v, want %v", tt.local, got, tt.want)
			}
		})
	}
}

func TestFalloffMatchesDecalPassBounds(t *testing.T) {
	b := canvas.DefaultBrush(nil)
	m := math.TRS(math.Vec3{X: 1}, math.QuatIdentity(), math.Vec3{X: 2, Y: 2, Z: 2})
	inv, _ := m.Inverse()
	world := math.Vec3{X: 1.2, Z: 0.3}

	local := canvas.DecalLocal(inv, world)
	unit := inv.TransformPoint(world)
	a := canvas.Falloff(local, b.SmoothingStart, b.SmoothingEnd)
	c := canvas.Intensity(unit, b.SmoothingStart.Scale(0.5), b.SmoothingEnd.Scale(0.5))
	if abs(a-c) > 1e-6 {
		t.Errorf("Falloff %v != Intensity %v", a, c)
	}
}

func TestPaintProjectsBrush(t *testing.T) {
	f := newFixture(t)
	c := f.canvas(64, 64)
	n := f.scene.AddStatic("quad", model.Quad(), math.Identity())
	c.AddStatic(n, n)

	brush := f.brush(color.NRGBA{R: 255, A: 255})
	brush.Size = math.Vec3{X: 0.4, Y: 0.4, Z: 0.4}
	target := f.target(64, 64)

	if err := c.Paint(target, brush, math.Vec3{}); err != nil {
		t.Fatal(err)
	}
	img := target.(*soft.Image)

	if got := img.At(32, 32); got != (math.Color{R: 1, A: 1}) {
		t.Errorf("center pixel = %v, want opaque red", got)
	}
	if got := img.At(1, 1); got != math.Clear {
		t.Errorf("corner pixel = %v, want untouched", got)
	}

	// A decal placed away from the surface along Z paints nothing.
	before := img.At(32, 32)
	if err := c.Paint(target, brush, math.Vec3{Z: 1}, canvas.WithColor(math.Color{G: 1, A: 1})); err != nil {
		t.Fatal(err)
	}
	if got := img.At(32, 32); got != before {
		t.Errorf("off-surface decal changed pixel to %v", got)
	}

	// Tint multiplies the brush color.
	if err := c.Paint(target, brush, math.Vec3{}, canvas.WithColor(math.Color{R: 0.5, G: 1, B: 1, A: 1})); err != nil {
		t.Fatal(err)
	}
	if got := img.At(32, 32); abs(got.R-0.5) > 1.0/255 {
		t.Errorf("tinted pixel = %v, want R 0.5", got)
	}

	f.closeAll(c)
}

func TestPaintDegenerateSizeIsSkipped(t *testing.T) {
	f := newFixture(t)
	c := f.canvas(8, 8)
	brush := f.brush(color.White)
	target := f.target(8, 8)

	if err := c.Paint(target, brush, math.Vec3{}, canvas.WithSize(math.Vec3{X: 1, Y: 0, Z: 1})); err != nil {
		t.Fatal(err)
	}
	if f.dev.Stats().Composites != 0 {
		t.Error("degenerate decal was composited")
	}
	if !f.logged(zapcore.WarnLevel, "degenerate decal") {
		t.Error("missing degenerate decal warning")
	}
	f.closeAll(c)
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
