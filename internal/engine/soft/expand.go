package soft

import "github.com/Faultbox/meshcanvas/pkg/math"

// validAlpha separates written texels from the cleared sentinel.
const validAlpha = 0.5

var (
	sideOffsets     = [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	diagonalOffsets = [4][2]int{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}}
)

// expandBorders writes src into dst, replacing each sentinel texel with
// the first valid side neighbor, then the first valid diagonal neighbor.
// It is a single pass: values spread by at most one texel.
func expandBorders(dst, src *Image) {
	w, h := src.Size()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := src.At(x, y)
			if c.A < validAlpha {
				c = nearestValid(src, x, y, c)
			}
			dst.Set(x, y, c)
		}
	}
}

func nearestValid(src *Image, x, y int, fallback math.Color) math.Color {
	w, h := src.Size()
	for _, set := range [...][4][2]int{sideOffsets, diagonalOffsets} {
		for _, o := range set {
			nx, ny := x+o[0], y+o[1]
			if nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue
			}
			if n := src.At(nx, ny); n.A >= validAlpha {
				return n
			}
		}
	}
	return fallback
}
