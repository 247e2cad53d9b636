// Package debug writes paint targets and position buffers to disk for
// inspection.
package debug

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/Faultbox/meshcanvas/pkg/math"
)

// Exporter writes PNG files into a directory.
type Exporter struct {
	outputDir string
	prefix    string
	now       func() time.Time
}

// NewExporter creates an exporter. Files are named
// <prefix>_<name>_<timestamp>.png, or <prefix>_<name>.png when
// timestamps are disabled.
func NewExporter(outputDir, prefix string, timestamped bool) *Exporter {
	e := &Exporter{outputDir: outputDir, prefix: prefix}
	if timestamped {
		e.now = time.Now
	}
	return e
}

// Filename returns the path a Save of name would write to.
func (e *Exporter) Filename(name string) string {
	base := name
	if e.prefix != "" {
		base = e.prefix + "_" + name
	}
	if e.now != nil {
		base += "_" + e.now().Format("2006-01-02_15-04-05")
	}
	filename := base + ".png"
	if e.outputDir != "" {
		filename = filepath.Join(e.outputDir, filename)
	}
	return filename
}

// Save encodes img as PNG and returns the file path.
func (e *Exporter) Save(name string, img image.Image) (string, error) {
	if e.outputDir != "" {
		if err := os.MkdirAll(e.outputDir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	filename := e.Filename(name)
	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}
	return filename, nil
}

// PixelsToImage wraps RGBA8 rows (top row first) in an image.
func PixelsToImage(pixels []byte, width, height int) (*image.NRGBA, error) {
	if len(pixels) != width*height*4 {
		return nil, fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	copy(img.Pix, pixels)
	return img, nil
}

// PositionSource is anything that yields a world position per texel.
// valid is false for texels no geometry covers.
type PositionSource interface {
	Size() (width, height int)
	Position(x, y int) (p math.Vec3, valid bool)
}

// VisualizePositions maps each world position into bounds and encodes it
// as RGB, so equal colors mean equal positions. Row 0 of src (v = 0) is
// the bottom row of the image. Uncovered texels are transparent.
func VisualizePositions(src PositionSource, bounds math.AABB) *image.NRGBA {
	w, h := src.Size()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	ext := bounds.Max.Sub(bounds.Min)
	inv := math.Vec3{X: safeInv(ext.X), Y: safeInv(ext.Y), Z: safeInv(ext.Z)}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p, ok := src.Position(x, y)
			if !ok {
				continue
			}
			n := p.Sub(bounds.Min).Mul(inv)
			img.SetNRGBA(x, h-1-y, color.NRGBA{
				R: unorm(n.X), G: unorm(n.Y), B: unorm(n.Z), A: 255,
			})
		}
	}
	return img
}

// PositionBounds returns the bounds of every valid texel of src.
func PositionBounds(src PositionSource) math.AABB {
	b := math.EmptyAABB()
	w, h := src.Size()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if p, ok := src.Position(x, y); ok {
				b = b.EncapsulatePoint(p)
			}
		}
	}
	return b
}

func safeInv(v float32) float32 {
	if v == 0 {
		return 0
	}
	return 1 / v
}

func unorm(v float32) uint8 {
	v = min(max(v, 0), 1)
	return uint8(v*255 + 0.5)
}
