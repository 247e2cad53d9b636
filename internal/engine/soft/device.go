// Package soft is a CPU implementation of canvas.Device. It follows the
// same texel-center, half-float and blending rules as the GL device and
// is what the tests and the headless demo run on.
package soft

import (
	"errors"
	"fmt"
	"image"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"

	"github.com/Faultbox/meshcanvas/internal/canvas"
	"github.com/Faultbox/meshcanvas/internal/engine/scene"
	"github.com/Faultbox/meshcanvas/internal/logger"
	"github.com/Faultbox/meshcanvas/pkg/math"
)

// ErrClosed is returned by operations on a closed device.
var ErrClosed = errors.New("soft: device closed")

// Stats counts device work. Tests use it to observe rebuild and
// allocation behavior.
type Stats struct {
	PositionBuffers    int
	RenderTargets      int
	Textures           int
	TemporariesCreated int
	TemporariesInUse   int
	Draws              int
	Expands            int
	Composites         int
	CameraRenders      int
}

type kind int

const (
	kindPosition kind = iota
	kindTarget
	kindTexture
	kindTemporary
)

// Device is a CPU rasterization pipeline over a scene.
type Device struct {
	scene *scene.Scene
	log   *zap.Logger

	live    map[*Image]kind
	free    []*Image
	cameras map[*Camera]struct{}
	stats   Stats
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

// New creates a device. Cameras render the nodes of sc; sc may be nil
// when only static geometry is baked.
func New(sc *scene.Scene, opts ...Option) *Device {
	d := &Device{
		scene:   sc,
		live:    make(map[*Image]kind),
		cameras: make(map[*Camera]struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.log == nil {
		d.log = logger.Named("soft")
	}
	return d
}

// Stats returns a snapshot of the work counters.
func (d *Device) Stats() Stats {
	return d.stats
}

// LiveTextures returns the number of allocated, unreleased images,
// including temporaries that are currently acquired.
func (d *Device) LiveTextures() int {
	return len(d.live)
}

// LiveCameras returns the number of cameras not yet destroyed.
func (d *Device) LiveCameras() int {
	return len(d.cameras)
}

func (d *Device) alloc(width, height int, format Format, k kind) (*Image, error) {
	if d.closed {
		return nil, ErrClosed
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("soft: invalid image size %dx%d", width, height)
	}
	img := newImage(width, height, format)
	d.live[img] = k
	return img, nil
}

// NewPositionBuffer allocates an RGBA16F image.
func (d *Device) NewPositionBuffer(width, height int) (canvas.Texture, error) {
	img, err := d.alloc(width, height, FormatRGBA16F, kindPosition)
	if err != nil {
		return nil, err
	}
	d.stats.PositionBuffers++
	return img, nil
}

// NewRenderTarget allocates a cleared RGBA8 image.
func (d *Device) NewRenderTarget(width, height int) (canvas.Texture, error) {
	img, err := d.alloc(width, height, FormatRGBA8, kindTarget)
	if err != nil {
		return nil, err
	}
	d.stats.RenderTargets++
	return img, nil
}

// NewTexture copies src into an RGBA8 image. The top row of src ends up
// at v = 1.
func (d *Device) NewTexture(src image.Image) (canvas.Texture, error) {
	if src == nil {
		return nil, errors.New("soft: nil image")
	}
	b := src.Bounds()
	img, err := d.alloc(b.Dx(), b.Dy(), FormatRGBA8, kindTexture)
	if err != nil {
		return nil, err
	}

	nrgba := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Copy(nrgba, image.Point{}, src, b, xdraw.Src, nil)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := nrgba.NRGBAAt(x, y)
			img.Set(x, b.Dy()-1-y, math.Color{
				R: float32(c.R) / 255,
				G: float32(c.G) / 255,
				B: float32(c.B) / 255,
				A: float32(c.A) / 255,
			})
		}
	}
	d.stats.Textures++
	return img, nil
}

// Release frees an image. Releasing an unknown or already released image
// is logged and ignored.
func (d *Device) Release(tex canvas.Texture) {
	img, ok := tex.(*Image)
	if !ok || img == nil {
		return
	}
	k, ok := d.live[img]
	if !ok {
		d.log.Warn("release of unknown texture")
		return
	}
	if k == kindTemporary {
		d.log.Warn("temporary released with Release, use ReleaseTemporary")
	}
	delete(d.live, img)
}

// AcquireTemporary returns a pooled RGBA16F image of the given size.
func (d *Device) AcquireTemporary(width, height int) (canvas.Texture, error) {
	if d.closed {
		return nil, ErrClosed
	}
	for i, img := range d.free {
		if w, h := img.Size(); w == width && h == height {
			d.free = append(d.free[:i], d.free[i+1:]...)
			d.live[img] = kindTemporary
			d.stats.TemporariesInUse++
			return img, nil
		}
	}
	img, err := d.alloc(width, height, FormatRGBA16F, kindTemporary)
	if err != nil {
		return nil, err
	}
	img.temporary = true
	d.stats.TemporariesCreated++
	d.stats.TemporariesInUse++
	return img, nil
}

// ReleaseTemporary returns an image to the pool.
func (d *Device) ReleaseTemporary(tex canvas.Texture) {
	img, ok := tex.(*Image)
	if !ok || img == nil || !img.temporary {
		d.log.Warn("release of non-temporary texture as temporary")
		return
	}
	if _, ok := d.live[img]; !ok {
		d.log.Warn("temporary released twice")
		return
	}
	delete(d.live, img)
	d.free = append(d.free, img)
	d.stats.TemporariesInUse--
}

func (d *Device) image(tex canvas.Texture, role string) (*Image, error) {
	if d.closed {
		return nil, ErrClosed
	}
	img, ok := tex.(*Image)
	if !ok || img == nil {
		return nil, fmt.Errorf("soft: %s is not a soft image", role)
	}
	if _, ok := d.live[img]; !ok {
		return nil, fmt.Errorf("soft: %s was released", role)
	}
	return img, nil
}

// Clear fills target with c.
func (d *Device) Clear(target canvas.Texture, c math.Color) {
	img, err := d.image(target, "clear target")
	if err != nil {
		d.log.Warn("clear skipped", zap.Error(err))
		return
	}
	img.Fill(c)
}

// DrawPositions bakes pass.Mesh into target.
func (d *Device) DrawPositions(target canvas.Texture, pass canvas.BakePass) error {
	img, err := d.image(target, "bake target")
	if err != nil {
		return err
	}
	if pass.Mesh == nil {
		return errors.New("soft: bake pass without mesh")
	}
	n := rasterizeUV(img, pass.Mesh.Vertices, pass.Mesh.Indices, pass.LocalToWorld)
	d.stats.Draws++
	d.log.Debug("baked mesh", zap.String("mesh", pass.Mesh.Name), zap.Int("texels", n))
	return nil
}

// Expand dilates pass.Source into dst.
func (d *Device) Expand(dst canvas.Texture, pass canvas.ExpandPass) error {
	out, err := d.image(dst, "expand target")
	if err != nil {
		return err
	}
	src, err := d.image(pass.Source, "expand source")
	if err != nil {
		return err
	}
	if out == src {
		return errors.New("soft: expand source and target are the same image")
	}
	if ow, oh := out.Size(); ow != src.width || oh != src.height {
		return fmt.Errorf("soft: expand size mismatch %dx%d vs %dx%d", ow, oh, src.width, src.height)
	}
	expandBorders(out, src)
	d.stats.Expands++
	return nil
}

// Composite blends a decal into target.
func (d *Device) Composite(target canvas.Texture, pass canvas.DecalPass) error {
	out, err := d.image(target, "paint target")
	if err != nil {
		return err
	}
	positions, err := d.image(pass.Positions, "position buffer")
	if err != nil {
		return err
	}
	brush, err := d.image(pass.Brush, "brush")
	if err != nil {
		return err
	}
	n := composite(out, positions, brush, pass)
	d.stats.Composites++
	d.log.Debug("composited decal", zap.Int("pixels", n))
	return nil
}

// NewCamera creates an auxiliary camera over the device scene.
func (d *Device) NewCamera(desc canvas.CameraDesc) (canvas.Camera, error) {
	if d.closed {
		return nil, ErrClosed
	}
	if d.scene == nil {
		return nil, errors.New("soft: device has no scene to render")
	}
	c := &Camera{
		dev:        d,
		desc:       desc,
		view:       math.Identity(),
		projection: math.Identity(),
	}
	d.cameras[c] = struct{}{}
	return c, nil
}

// Close drops the temporary pool and reports every resource that was
// never released.
func (d *Device) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.free = nil

	var err error
	for img, k := range d.live {
		w, h := img.Size()
		err = multierr.Append(err, fmt.Errorf("soft: leaked %s %dx%d", k, w, h))
	}
	for c := range d.cameras {
		err = multierr.Append(err, fmt.Errorf("soft: leaked camera %q", c.desc.Name))
	}
	d.live = nil
	d.cameras = nil
	return err
}

func (k kind) String() string {
	switch k {
	case kindPosition:
		return "position buffer"
	case kindTarget:
		return "render target"
	case kindTexture:
		return "texture"
	case kindTemporary:
		return "temporary"
	default:
		return "image"
	}
}
