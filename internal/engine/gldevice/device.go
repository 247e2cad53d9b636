// Package gldevice implements canvas.Device on OpenGL 4.1 core.
//
// The device owns the position-bake, border-expansion, decal and preview
// programs. They are compiled in New and deleted in Close. Every method
// must be called on the thread that owns the GL context.
package gldevice

import (
	"errors"
	"fmt"
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/meshcanvas/internal/canvas"
	"github.com/Faultbox/meshcanvas/internal/engine/debug"
	"github.com/Faultbox/meshcanvas/internal/engine/framebuffer"
	"github.com/Faultbox/meshcanvas/internal/engine/gldevice/shaders"
	"github.com/Faultbox/meshcanvas/internal/engine/model"
	"github.com/Faultbox/meshcanvas/internal/engine/scene"
	"github.com/Faultbox/meshcanvas/internal/engine/shader"
	"github.com/Faultbox/meshcanvas/internal/engine/texture"
	"github.com/Faultbox/meshcanvas/internal/logger"
	"github.com/Faultbox/meshcanvas/pkg/math"
)

// ErrClosed is returned by operations on a closed device.
var ErrClosed = errors.New("gldevice: device closed")

// Device is the GL rasterization pipeline.
type Device struct {
	scene *scene.Scene
	log   *zap.Logger

	bake    *shader.Program
	expand  *shader.Program
	decal   *shader.Program
	preview *shader.Program

	// emptyVAO is bound for attribute-less fullscreen draws.
	emptyVAO uint32

	meshes  map[*model.Mesh]*meshBuffer
	skinned map[*scene.Node]*meshBuffer
	live    map[*Texture]struct{}
	free    []*Texture
	cameras map[*Camera]struct{}
	closed  bool
}

// Option configures a Device.
type Option func(*Device)

// WithLogger sets the device logger.
func WithLogger(l *zap.Logger) Option {
	return func(d *Device) {
		d.log = l
	}
}

// New initializes GL bindings and compiles the device programs.
// IMPORTANT: Must be called AFTER the OpenGL context is created.
func New(sc *scene.Scene, opts ...Option) (*Device, error) {
	d := &Device{
		scene:   sc,
		meshes:  make(map[*model.Mesh]*meshBuffer),
		skinned: make(map[*scene.Node]*meshBuffer),
		live:    make(map[*Texture]struct{}),
		cameras: make(map[*Camera]struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.log == nil {
		d.log = logger.Named("gldevice")
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	d.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	if err := d.compile(); err != nil {
		d.deletePrograms()
		return nil, err
	}
	gl.GenVertexArrays(1, &d.emptyVAO)
	return d, nil
}

func (d *Device) compile() error {
	var err error
	d.bake, err = shader.NewProgram("bake",
		shaders.BakeVertexShader, shaders.BakeFragmentShader,
		"uLocalToWorld")
	if err != nil {
		return err
	}
	d.expand, err = shader.NewProgram("expand",
		shaders.FullscreenVertexShader, shaders.ExpandFragmentShader,
		"uSource")
	if err != nil {
		return err
	}
	d.decal, err = shader.NewProgram("decal",
		shaders.FullscreenVertexShader, shaders.DecalFragmentShader,
		"uPositions", "uBrush", "uWorldToDecal", "uSmoothingMin", "uSmoothingMax", "uTint")
	if err != nil {
		return err
	}
	d.preview, err = shader.NewProgram("preview",
		shaders.FullscreenVertexShader, shaders.PreviewFragmentShader,
		"uTexture", "uMode", "uBoundsMin", "uBoundsMax")
	return err
}

func (d *Device) deletePrograms() {
	for _, p := range []*shader.Program{d.bake, d.expand, d.decal, d.preview} {
		if p != nil {
			p.Delete()
		}
	}
}

func (d *Device) alloc(width, height int, format framebuffer.Format, k kind) (*Texture, error) {
	if d.closed {
		return nil, ErrClosed
	}
	fb, err := framebuffer.New(int32(width), int32(height), format)
	if err != nil {
		return nil, fmt.Errorf("allocate %s: %w", k, err)
	}
	t := &Texture{fb: fb, kind: k}
	d.live[t] = struct{}{}
	return t, nil
}

// NewPositionBuffer allocates an RGBA16F texture.
func (d *Device) NewPositionBuffer(width, height int) (canvas.Texture, error) {
	return d.alloc(width, height, framebuffer.RGBA16F, kindPosition)
}

// NewRenderTarget allocates a cleared RGBA8 texture.
func (d *Device) NewRenderTarget(width, height int) (canvas.Texture, error) {
	t, err := d.alloc(width, height, framebuffer.RGBA8, kindTarget)
	if err != nil {
		return nil, err
	}
	t.fb.Clear(0, 0, 0, 0)
	return t, nil
}

// NewTexture uploads img as an RGBA8 texture.
func (d *Device) NewTexture(img image.Image) (canvas.Texture, error) {
	if img == nil {
		return nil, errors.New("gldevice: nil image")
	}
	nrgba := texture.Normalize(img, 0)
	b := nrgba.Bounds()
	t, err := d.alloc(b.Dx(), b.Dy(), framebuffer.RGBA8, kindTexture)
	if err != nil {
		return nil, err
	}
	t.upload(nrgba)
	return t, nil
}

// Release frees a texture.
func (d *Device) Release(tex canvas.Texture) {
	t, ok := tex.(*Texture)
	if !ok || t == nil {
		return
	}
	if _, ok := d.live[t]; !ok {
		d.log.Warn("release of unknown texture")
		return
	}
	delete(d.live, t)
	t.fb.Destroy()
}

// AcquireTemporary returns a pooled RGBA16F texture.
func (d *Device) AcquireTemporary(width, height int) (canvas.Texture, error) {
	if d.closed {
		return nil, ErrClosed
	}
	for i, t := range d.free {
		if w, h := t.Size(); w == width && h == height {
			d.free = append(d.free[:i], d.free[i+1:]...)
			d.live[t] = struct{}{}
			return t, nil
		}
	}
	return d.alloc(width, height, framebuffer.RGBA16F, kindTemporary)
}

// ReleaseTemporary returns a texture to the pool.
func (d *Device) ReleaseTemporary(tex canvas.Texture) {
	t, ok := tex.(*Texture)
	if !ok || t == nil || t.kind != kindTemporary {
		d.log.Warn("release of non-temporary texture as temporary")
		return
	}
	if _, ok := d.live[t]; !ok {
		d.log.Warn("temporary released twice")
		return
	}
	delete(d.live, t)
	d.free = append(d.free, t)
}

func (d *Device) texture(tex canvas.Texture, role string) (*Texture, error) {
	if d.closed {
		return nil, ErrClosed
	}
	t, ok := tex.(*Texture)
	if !ok || t == nil {
		return nil, fmt.Errorf("gldevice: %s is not a GL texture", role)
	}
	if _, ok := d.live[t]; !ok {
		return nil, fmt.Errorf("gldevice: %s was released", role)
	}
	return t, nil
}

// Clear fills target with c.
func (d *Device) Clear(target canvas.Texture, c math.Color) {
	t, err := d.texture(target, "clear target")
	if err != nil {
		d.log.Warn("clear skipped", zap.Error(err))
		return
	}
	t.fb.Clear(c.R, c.G, c.B, c.A)
}

// rasterState sets the state shared by every texture-space pass: no
// depth, no culling, blending off.
func rasterState() {
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
	gl.Disable(gl.BLEND)
}

func (d *Device) staticBuffer(mesh *model.Mesh) *meshBuffer {
	b, ok := d.meshes[mesh]
	if !ok {
		b = newMeshBuffer(mesh, mesh.Vertices, gl.STATIC_DRAW)
		d.meshes[mesh] = b
	}
	return b
}

// DrawPositions bakes pass.Mesh into target.
func (d *Device) DrawPositions(target canvas.Texture, pass canvas.BakePass) error {
	t, err := d.texture(target, "bake target")
	if err != nil {
		return err
	}
	if pass.Mesh == nil {
		return errors.New("gldevice: bake pass without mesh")
	}

	restore := t.fb.BindWithViewport()
	defer restore()
	rasterState()

	d.bake.Use()
	m := [16]float32(pass.LocalToWorld)
	d.bake.SetMat4("uLocalToWorld", &m)
	d.staticBuffer(pass.Mesh).draw()
	return nil
}

// Expand dilates pass.Source into dst.
func (d *Device) Expand(dst canvas.Texture, pass canvas.ExpandPass) error {
	out, err := d.texture(dst, "expand target")
	if err != nil {
		return err
	}
	src, err := d.texture(pass.Source, "expand source")
	if err != nil {
		return err
	}
	if out == src {
		return errors.New("gldevice: expand source and target are the same texture")
	}

	restore := out.fb.BindWithViewport()
	defer restore()
	rasterState()

	d.expand.Use()
	d.expand.SetTexture("uSource", 0, src.ID())
	d.fullscreen()
	return nil
}

// Composite blends a decal into target.
func (d *Device) Composite(target canvas.Texture, pass canvas.DecalPass) error {
	out, err := d.texture(target, "paint target")
	if err != nil {
		return err
	}
	positions, err := d.texture(pass.Positions, "position buffer")
	if err != nil {
		return err
	}
	brush, err := d.texture(pass.Brush, "brush")
	if err != nil {
		return err
	}

	restore := out.fb.BindWithViewport()
	defer restore()
	rasterState()
	gl.Enable(gl.BLEND)
	gl.BlendFuncSeparate(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA, gl.ONE, gl.ONE_MINUS_SRC_ALPHA)
	defer gl.Disable(gl.BLEND)

	d.decal.Use()
	d.decal.SetTexture("uPositions", 0, positions.ID())
	d.decal.SetTexture("uBrush", 1, brush.ID())
	m := [16]float32(pass.WorldToDecal)
	d.decal.SetMat4("uWorldToDecal", &m)
	d.decal.SetVec3("uSmoothingMin", pass.SmoothingMin.X, pass.SmoothingMin.Y, pass.SmoothingMin.Z)
	d.decal.SetVec3("uSmoothingMax", pass.SmoothingMax.X, pass.SmoothingMax.Y, pass.SmoothingMax.Z)
	d.decal.SetVec4("uTint", pass.Tint.R, pass.Tint.G, pass.Tint.B, pass.Tint.A)
	d.fullscreen()
	return nil
}

func (d *Device) fullscreen() {
	gl.BindVertexArray(d.emptyVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
	gl.BindVertexArray(0)
}

// NewCamera creates an auxiliary camera over the device scene.
func (d *Device) NewCamera(desc canvas.CameraDesc) (canvas.Camera, error) {
	if d.closed {
		return nil, ErrClosed
	}
	if d.scene == nil {
		return nil, errors.New("gldevice: device has no scene to render")
	}
	c := &Camera{dev: d, desc: desc, view: math.Identity(), projection: math.Identity()}
	d.cameras[c] = struct{}{}
	return c, nil
}

// ReadPositions copies a position buffer back to the CPU.
func (d *Device) ReadPositions(tex canvas.Texture) (*Positions, error) {
	t, err := d.texture(tex, "position buffer")
	if err != nil {
		return nil, err
	}
	if t.fb.Format() != framebuffer.RGBA16F {
		return nil, fmt.Errorf("gldevice: %s is not half float", t.kind)
	}
	w, h := t.Size()
	return &Positions{width: w, height: h, data: t.fb.ReadHalf()}, nil
}

// ReadImage copies an RGBA8 texture back to the CPU, top row first.
func (d *Device) ReadImage(tex canvas.Texture) (*image.NRGBA, error) {
	t, err := d.texture(tex, "render target")
	if err != nil {
		return nil, err
	}
	if t.fb.Format() != framebuffer.RGBA8 {
		return nil, fmt.Errorf("gldevice: %s is not RGBA8", t.kind)
	}
	w, h := t.Size()
	return debug.PixelsToImage(t.fb.ReadPixels(), w, h)
}

// Preview draws tex into the given viewport of the default framebuffer.
// With positions set the texture is shown as world positions scaled into
// bounds.
func (d *Device) Preview(tex canvas.Texture, x, y, width, height int, positions bool, bounds math.AABB) error {
	t, err := d.texture(tex, "preview source")
	if err != nil {
		return err
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(int32(x), int32(y), int32(width), int32(height))
	d.drawPreview(t, positions, bounds)
	return nil
}

// Visualize renders src into dst, an RGBA8 render target, the way Preview
// draws it on screen. UI toolkits that can only show plain textures use
// dst in place of a half-float position buffer.
func (d *Device) Visualize(dst, src canvas.Texture, positions bool, bounds math.AABB) error {
	out, err := d.texture(dst, "visualize target")
	if err != nil {
		return err
	}
	in, err := d.texture(src, "visualize source")
	if err != nil {
		return err
	}
	if out == in {
		return errors.New("gldevice: visualize source and target are the same texture")
	}
	if out.fb.Format() != framebuffer.RGBA8 {
		return fmt.Errorf("gldevice: visualize target %s is not RGBA8", out.kind)
	}

	restore := out.fb.BindWithViewport()
	defer restore()
	d.drawPreview(in, positions, bounds)
	return nil
}

func (d *Device) drawPreview(t *Texture, positions bool, bounds math.AABB) {
	rasterState()
	mode := int32(0)
	if positions {
		mode = 1
	}
	d.preview.Use()
	d.preview.SetTexture("uTexture", 0, t.ID())
	d.preview.SetInt("uMode", mode)
	d.preview.SetVec3("uBoundsMin", bounds.Min.X, bounds.Min.Y, bounds.Min.Z)
	d.preview.SetVec3("uBoundsMax", bounds.Max.X, bounds.Max.Y, bounds.Max.Z)
	d.fullscreen()
}

// Close deletes the programs, the mesh cache and the temporary pool, and
// reports textures and cameras that were never released.
func (d *Device) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true

	var err error
	for t := range d.live {
		w, h := t.Size()
		err = multierr.Append(err, fmt.Errorf("gldevice: leaked %s %dx%d", t.kind, w, h))
		t.fb.Destroy()
	}
	for c := range d.cameras {
		err = multierr.Append(err, fmt.Errorf("gldevice: leaked camera %q", c.desc.Name))
	}
	for _, t := range d.free {
		t.fb.Destroy()
	}
	for _, b := range d.meshes {
		b.destroy()
	}
	for _, b := range d.skinned {
		b.destroy()
	}
	if d.emptyVAO != 0 {
		gl.DeleteVertexArrays(1, &d.emptyVAO)
		d.emptyVAO = 0
	}
	d.deletePrograms()

	d.live, d.free, d.cameras, d.meshes, d.skinned = nil, nil, nil, nil, nil
	d.log.Info("GL device closed")
	return err
}
