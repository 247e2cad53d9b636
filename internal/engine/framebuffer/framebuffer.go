// Package framebuffer provides OpenGL framebuffers with a single color
// attachment, used as position buffers, scratch buffers and paint targets.
package framebuffer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/x448/float16"
)

// Format selects the color attachment storage.
type Format int

const (
	// RGBA8 is an 8-bit normalized color target.
	RGBA8 Format = iota
	// RGBA16F holds half-float data such as world positions.
	RGBA16F
)

func (f Format) internal() (internalFormat int32, dataType uint32) {
	if f == RGBA16F {
		return gl.RGBA16F, gl.HALF_FLOAT
	}
	return gl.RGBA8, gl.UNSIGNED_BYTE
}

// Framebuffer is an offscreen render target backed by a sampleable
// texture. There is no depth attachment: baking and compositing draw in
// texture space where depth has no meaning.
type Framebuffer struct {
	fbo          uint32
	colorTexture uint32
	format       Format
	width        int32
	height       int32
}

// New creates a framebuffer. The texture is filtered bilinearly without
// mipmaps and clamped at the edges.
func New(width, height int32, format Format) (*Framebuffer, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("invalid framebuffer size %dx%d", width, height)
	}

	fb := &Framebuffer{
		format: format,
		width:  width,
		height: height,
	}

	if err := fb.create(); err != nil {
		return nil, fmt.Errorf("creating framebuffer: %w", err)
	}

	return fb, nil
}

func (fb *Framebuffer) create() error {
	gl.GenFramebuffers(1, &fb.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.fbo)

	internalFormat, dataType := fb.format.internal()
	gl.GenTextures(1, &fb.colorTexture)
	gl.BindTexture(gl.TEXTURE_2D, fb.colorTexture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, internalFormat, fb.width, fb.height, 0, gl.RGBA, dataType, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, fb.colorTexture, 0)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		fb.Destroy()
		return fmt.Errorf("framebuffer incomplete: 0x%x", status)
	}
	return nil
}

// Bind makes this framebuffer the current render target.
func (fb *Framebuffer) Bind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.fbo)
	gl.Viewport(0, 0, fb.width, fb.height)
}

// BindWithViewport binds and sets viewport, saving previous state.
// Returns a restore function to restore the previous framebuffer and viewport.
func (fb *Framebuffer) BindWithViewport() func() {
	var prevFBO int32
	var prevViewport [4]int32
	gl.GetIntegerv(gl.FRAMEBUFFER_BINDING, &prevFBO)
	gl.GetIntegerv(gl.VIEWPORT, &prevViewport[0])

	fb.Bind()

	return func() {
		gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(prevFBO))
		gl.Viewport(prevViewport[0], prevViewport[1], prevViewport[2], prevViewport[3])
	}
}

// Clear fills the color attachment.
func (fb *Framebuffer) Clear(r, g, b, a float32) {
	restore := fb.BindWithViewport()
	defer restore()
	gl.ClearColor(r, g, b, a)
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

// ColorTexture returns the color attachment texture ID.
func (fb *Framebuffer) ColorTexture() uint32 {
	return fb.colorTexture
}

// Format returns the color attachment format.
func (fb *Framebuffer) Format() Format {
	return fb.format
}

// Size returns the framebuffer dimensions.
func (fb *Framebuffer) Size() (width, height int) {
	return int(fb.width), int(fb.height)
}

// ReadPixels reads an RGBA8 attachment, flipped so row 0 is the top.
func (fb *Framebuffer) ReadPixels() []byte {
	pixels := make([]byte, fb.width*fb.height*4)

	var prevFBO int32
	gl.GetIntegerv(gl.FRAMEBUFFER_BINDING, &prevFBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.fbo)
	gl.ReadPixels(0, 0, fb.width, fb.height, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(prevFBO))

	stride := int(fb.width) * 4
	row := make([]byte, stride)
	for y := 0; y < int(fb.height)/2; y++ {
		top := pixels[y*stride : (y+1)*stride]
		bottom := pixels[(int(fb.height)-1-y)*stride : (int(fb.height)-y)*stride]
		copy(row, top)
		copy(top, bottom)
		copy(bottom, row)
	}
	return pixels
}

// ReadHalf reads an RGBA16F attachment as float32 values in GL row
// order (row 0 is v = 0).
func (fb *Framebuffer) ReadHalf() []float32 {
	raw := make([]uint16, fb.width*fb.height*4)

	var prevFBO int32
	gl.GetIntegerv(gl.FRAMEBUFFER_BINDING, &prevFBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.fbo)
	gl.ReadPixels(0, 0, fb.width, fb.height, gl.RGBA, gl.HALF_FLOAT, gl.Ptr(raw))
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(prevFBO))

	out := make([]float32, len(raw))
	for i, h := range raw {
		out[i] = float16.Frombits(h).Float32()
	}
	return out
}

// Destroy releases all OpenGL resources.
func (fb *Framebuffer) Destroy() {
	if fb.fbo != 0 {
		gl.DeleteFramebuffers(1, &fb.fbo)
		fb.fbo = 0
	}
	if fb.colorTexture != 0 {
		gl.DeleteTextures(1, &fb.colorTexture)
		fb.colorTexture = 0
	}
}
