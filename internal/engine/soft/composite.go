package soft

import (
	"github.com/Faultbox/meshcanvas/internal/canvas"
	"github.com/Faultbox/meshcanvas/pkg/math"
)

// composite blends one decal into target. Each target pixel looks up its
// world position, maps it into the decal cube, and is painted with the
// brush weighted by the falloff.
func composite(target, positions, brush *Image, pass canvas.DecalPass) int {
	w, h := target.Size()
	painted := 0

	for y := 0; y < h; y++ {
		v := (float32(y) + 0.5) / float32(h)
		for x := 0; x < w; x++ {
			u := (float32(x) + 0.5) / float32(w)

			// Filtering mixes positions with the zero sentinel; dividing
			// by alpha undoes that near coverage edges.
			p := positions.Sample(u, v)
			if p.A < validAlpha {
				continue
			}
			world := math.Vec3{X: p.R / p.A, Y: p.G / p.A, Z: p.B / p.A}

			local := pass.WorldToDecal.TransformPoint(world)
			intensity := canvas.Intensity(local, pass.SmoothingMin, pass.SmoothingMax)
			if intensity <= 0 {
				continue
			}

			src := brush.Sample(local.X+0.5, local.Y+0.5).Mul(pass.Tint)
			alpha := src.A * intensity
			if alpha <= 0 {
				continue
			}

			dst := target.At(x, y)
			target.Set(x, y, math.Color{
				R: src.R*alpha + dst.R*(1-alpha),
				G: src.G*alpha + dst.G*(1-alpha),
				B: src.B*alpha + dst.B*(1-alpha),
				A: alpha + dst.A*(1-alpha),
			})
			painted++
		}
	}
	return painted
}
