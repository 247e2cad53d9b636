package soft

import (
	"image"
	"image/color"

	"github.com/x448/float16"

	"github.com/Faultbox/meshcanvas/pkg/math"
)

// Format is the storage format of an Image.
type Format int

const (
	// FormatRGBA8 stores 8-bit unsigned normalized channels.
	FormatRGBA8 Format = iota
	// FormatRGBA16F stores IEEE 754 half-precision channels.
	FormatRGBA16F
)

func (f Format) String() string {
	switch f {
	case FormatRGBA8:
		return "RGBA8"
	case FormatRGBA16F:
		return "RGBA16F"
	default:
		return "unknown"
	}
}

// Image is a CPU texture. Writes are quantized to the storage format, so
// reads return exactly what a GPU texture of the same format would hold.
type Image struct {
	width, height int
	format        Format
	half          []float16.Float16
	bytes         []uint8
	temporary     bool
}

func newImage(width, height int, format Format) *Image {
	img := &Image{width: width, height: height, format: format}
	switch format {
	case FormatRGBA16F:
		img.half = make([]float16.Float16, width*height*4)
	default:
		img.bytes = make([]uint8, width*height*4)
	}
	return img
}

// Size returns the image dimensions.
func (img *Image) Size() (width, height int) {
	return img.width, img.height
}

// Format returns the storage format.
func (img *Image) Format() Format {
	return img.format
}

// At returns the texel at (x, y); row 0 is v = 0. Coordinates are clamped.
func (img *Image) At(x, y int) math.Color {
	x = min(max(x, 0), img.width-1)
	y = min(max(y, 0), img.height-1)
	i := (y*img.width + x) * 4
	if img.format == FormatRGBA16F {
		return math.Color{
			R: img.half[i].Float32(),
			G: img.half[i+1].Float32(),
			B: img.half[i+2].Float32(),
			A: img.half[i+3].Float32(),
		}
	}
	return math.Color{
		R: float32(img.bytes[i]) / 255,
		G: float32(img.bytes[i+1]) / 255,
		B: float32(img.bytes[i+2]) / 255,
		A: float32(img.bytes[i+3]) / 255,
	}
}

// Set writes the texel at (x, y). Out-of-range coordinates are ignored.
func (img *Image) Set(x, y int, c math.Color) {
	if x < 0 || y < 0 || x >= img.width || y >= img.height {
		return
	}
	i := (y*img.width + x) * 4
	if img.format == FormatRGBA16F {
		img.half[i] = float16.Fromfloat32(c.R)
		img.half[i+1] = float16.Fromfloat32(c.G)
		img.half[i+2] = float16.Fromfloat32(c.B)
		img.half[i+3] = float16.Fromfloat32(c.A)
		return
	}
	img.bytes[i] = unorm8(c.R)
	img.bytes[i+1] = unorm8(c.G)
	img.bytes[i+2] = unorm8(c.B)
	img.bytes[i+3] = unorm8(c.A)
}

// Fill sets every texel to c.
func (img *Image) Fill(c math.Color) {
	for y := 0; y < img.height; y++ {
		for x := 0; x < img.width; x++ {
			img.Set(x, y, c)
		}
	}
}

// Sample reads the image bilinearly at normalized coordinates with
// clamp-to-edge addressing and texel centers at half-integers.
func (img *Image) Sample(u, v float32) math.Color {
	fx := u*float32(img.width) - 0.5
	fy := v*float32(img.height) - 0.5
	x0 := floor(fx)
	y0 := floor(fy)
	tx := fx - float32(x0)
	ty := fy - float32(y0)

	c00 := img.At(x0, y0)
	c10 := img.At(x0+1, y0)
	c01 := img.At(x0, y0+1)
	c11 := img.At(x0+1, y0+1)

	return lerpColor(lerpColor(c00, c10, tx), lerpColor(c01, c11, tx), ty)
}

// NRGBA converts the image to a standard library image, flipping rows so
// v = 1 is at the top. Half-float channels are clamped to [0, 1].
func (img *Image) NRGBA() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, img.width, img.height))
	for y := 0; y < img.height; y++ {
		for x := 0; x < img.width; x++ {
			c := img.At(x, y)
			out.SetNRGBA(x, img.height-1-y, color.NRGBA{
				R: unorm8(c.R), G: unorm8(c.G), B: unorm8(c.B), A: unorm8(c.A),
			})
		}
	}
	return out
}

func unorm8(v float32) uint8 {
	v = min(max(v, 0), 1)
	return uint8(v*255 + 0.5)
}

func floor(v float32) int {
	i := int(v)
	if float32(i) > v {
		i--
	}
	return i
}

func lerpColor(a, b math.Color, t float32) math.Color {
	return math.Color{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
		A: a.A + (b.A-a.A)*t,
	}
}

// Position returns the world position stored at (x, y) and whether any
// geometry covers that texel.
func (img *Image) Position(x, y int) (math.Vec3, bool) {
	c := img.At(x, y)
	if c.A < validAlpha {
		return math.Vec3{}, false
	}
	return math.Vec3{X: c.R / c.A, Y: c.G / c.A, Z: c.B / c.A}, true
}
