package gldevice

import (
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/meshcanvas/internal/engine/framebuffer"
	"github.com/Faultbox/meshcanvas/pkg/math"
)

type kind int

const (
	kindPosition kind = iota
	kindTarget
	kindTexture
	kindTemporary
)

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
		return "texture"
	}
}

// Texture is a GL texture attached to its own framebuffer, so every
// texture the device hands out can be both sampled and rendered into.
type Texture struct {
	fb   *framebuffer.Framebuffer
	kind kind
}

// Size returns the texture dimensions.
func (t *Texture) Size() (width, height int) {
	return t.fb.Size()
}

// ID returns the GL texture name.
func (t *Texture) ID() uint32 {
	return t.fb.ColorTexture()
}

// upload copies img into the texture, top row at v = 1.
func (t *Texture) upload(img *image.NRGBA) {
	w, h := t.Size()
	pixels := make([]byte, w*h*4)
	stride := w * 4
	for y := 0; y < h; y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+stride]
		copy(pixels[(h-1-y)*stride:], src)
	}

	gl.BindTexture(gl.TEXTURE_2D, t.ID())
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// Positions is a CPU copy of a position buffer.
type Positions struct {
	width, height int
	data          []float32
}

// Size returns the buffer dimensions.
func (p *Positions) Size() (width, height int) {
	return p.width, p.height
}

// At returns the raw texel at (x, y); row 0 is v = 0.
func (p *Positions) At(x, y int) math.Color {
	i := (y*p.width + x) * 4
	return math.Color{R: p.data[i], G: p.data[i+1], B: p.data[i+2], A: p.data[i+3]}
}

// Position returns the world position at (x, y) and whether any geometry
// covers that texel.
func (p *Positions) Position(x, y int) (math.Vec3, bool) {
	c := p.At(x, y)
	if c.A < 0.5 {
		return math.Vec3{}, false
	}
	return math.Vec3{X: c.R / c.A, Y: c.G / c.A, Z: c.B / c.A}, true
}
