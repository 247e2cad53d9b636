package soft

import (
	"github.com/Faultbox/meshcanvas/internal/engine/model"
	"github.com/Faultbox/meshcanvas/pkg/math"
)

// rasterizeUV draws every triangle of indices into img, placing vertices
// at their texture coordinates and writing the interpolated world position
// with alpha 1. Pixels are sampled at their centers; both windings are
// drawn and edges are inclusive, so texels on a shared edge receive the
// same value from either triangle.
func rasterizeUV(img *Image, vertices []model.Vertex, indices []uint32, localToWorld math.Mat4) int {
	w, h := img.Size()
	fw, fh := float32(w), float32(h)
	drawn := 0

	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		if int(i0) >= len(vertices) || int(i1) >= len(vertices) || int(i2) >= len(vertices) {
			continue
		}
		v0, v1, v2 := vertices[i0], vertices[i1], vertices[i2]

		// Screen space is texture space scaled to the image.
		p0 := math.Vec2{X: v0.UV.X * fw, Y: v0.UV.Y * fh}
		p1 := math.Vec2{X: v1.UV.X * fw, Y: v1.UV.Y * fh}
		p2 := math.Vec2{X: v2.UV.X * fw, Y: v2.UV.Y * fh}

		area := edge(p0, p1, p2)
		if area == 0 {
			continue
		}

		w0 := localToWorld.TransformPoint(v0.Position)
		w1 := localToWorld.TransformPoint(v1.Position)
		w2 := localToWorld.TransformPoint(v2.Position)

		minX := max(floor(min(p0.X, p1.X, p2.X)), 0)
		maxX := min(floor(max(p0.X, p1.X, p2.X)), w-1)
		minY := max(floor(min(p0.Y, p1.Y, p2.Y)), 0)
		maxY := min(floor(max(p0.Y, p1.Y, p2.Y)), h-1)

		for y := minY; y <= maxY; y++ {
			for x := minX; x <= maxX; x++ {
				p := math.Vec2{X: float32(x) + 0.5, Y: float32(y) + 0.5}
				b0 := edge(p1, p2, p) / area
				b1 := edge(p2, p0, p) / area
				b2 := edge(p0, p1, p) / area
				if b0 < 0 || b1 < 0 || b2 < 0 {
					continue
				}
				world := w0.Scale(b0).Add(w1.Scale(b1)).Add(w2.Scale(b2))
				img.Set(x, y, math.Color{R: world.X, G: world.Y, B: world.Z, A: 1})
				drawn++
			}
		}
	}
	return drawn
}

// edge returns twice the signed area of triangle (a, b, c).
func edge(a, b, c math.Vec2) float32 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}
