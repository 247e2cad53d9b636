// Package texture loads and prepares brush images.
package texture

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// MaxBrushSize bounds the longest side of a loaded brush.
const MaxBrushSize = 1024

// Load decodes a brush image from disk. PNG, JPEG, GIF, BMP, TIFF and
// WebP are supported. The result is NRGBA, scaled down to MaxBrushSize.
func Load(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening brush: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding brush %s: %w", path, err)
	}
	return Normalize(img, MaxBrushSize), nil
}

// Normalize converts img to NRGBA with its origin at (0, 0). If either
// side exceeds maxSize the image is scaled to fit, keeping its aspect.
func Normalize(img image.Image, maxSize int) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSize > 0 && (w > maxSize || h > maxSize) {
		if w >= h {
			h = max(h*maxSize/w, 1)
			w = maxSize
		} else {
			w = max(w*maxSize/h, 1)
			h = maxSize
		}
	}

	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Copy(out, image.Point{}, img, b, draw.Src, nil)
	} else {
		draw.CatmullRom.Scale(out, out.Bounds(), img, b, draw.Src, nil)
	}
	return out
}

// SoftCircle returns a white disc whose alpha fades from opaque at the
// center to transparent at the rim. It is the brush used when none is
// configured.
func SoftCircle(size int) *image.NRGBA {
	size = max(size, 1)
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	r := float32(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := (float32(x) + 0.5 - r) / r
			dy := (float32(y) + 0.5 - r) / r
			d := dx*dx + dy*dy
			a := float32(0)
			if d < 1 {
				a = 1 - d
			}
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: uint8(a*255 + 0.5)})
		}
	}
	return img
}
