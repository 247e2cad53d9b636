package model

import (
	gomath "math"

	"github.com/Faultbox/meshcanvas/pkg/math"
)

// Quad returns a unit quad in the XY plane centered at the origin, facing
// +Z, with UVs covering the full [0,1] square.
func Quad() *Mesh {
	n := math.Vec3{Z: 1}
	vertices := []Vertex{
		{Position: math.Vec3{X: -0.5, Y: -0.5}, Normal: n, UV: math.Vec2{X: 0, Y: 0}},
		{Position: math.Vec3{X: 0.5, Y: -0.5}, Normal: n, UV: math.Vec2{X: 1, Y: 0}},
		{Position: math.Vec3{X: 0.5, Y: 0.5}, Normal: n, UV: math.Vec2{X: 1, Y: 1}},
		{Position: math.Vec3{X: -0.5, Y: 0.5}, Normal: n, UV: math.Vec2{X: 0, Y: 1}},
	}
	return NewMesh("quad", vertices, []uint32{0, 1, 2, 0, 2, 3})
}

// Grid returns a subdivided unit quad in the XY plane. Subdivision gives
// skinning something to bend.
func Grid(cols, rows int) *Mesh {
	cols = max(cols, 1)
	rows = max(rows, 1)

	vertices := make([]Vertex, 0, (cols+1)*(rows+1))
	for r := 0; r <= rows; r++ {
		for c := 0; c <= cols; c++ {
			u := float32(c) / float32(cols)
			v := float32(r) / float32(rows)
			vertices = append(vertices, Vertex{
				Position: math.Vec3{X: u - 0.5, Y: v - 0.5},
				Normal:   math.Vec3{Z: 1},
				UV:       math.Vec2{X: u, Y: v},
			})
		}
	}

	indices := make([]uint32, 0, cols*rows*6)
	stride := uint32(cols + 1)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			i := uint32(r)*stride + uint32(c)
			indices = append(indices, i, i+1, i+stride+1, i, i+stride+1, i+stride)
		}
	}
	return NewMesh("grid", vertices, indices)
}

// Cube returns a unit cube centered at the origin. Its six faces are laid
// out in a 3x2 UV atlas so no two faces overlap in texture space.
func Cube() *Mesh {
	type face struct {
		normal, right, up math.Vec3
	}
	faces := []face{
		{math.Vec3{Z: 1}, math.Vec3{X: 1}, math.Vec3{Y: 1}},
		{math.Vec3{Z: -1}, math.Vec3{X: -1}, math.Vec3{Y: 1}},
		{math.Vec3{X: 1}, math.Vec3{Z: -1}, math.Vec3{Y: 1}},
		{math.Vec3{X: -1}, math.Vec3{Z: 1}, math.Vec3{Y: 1}},
		{math.Vec3{Y: 1}, math.Vec3{X: 1}, math.Vec3{Z: -1}},
		{math.Vec3{Y: -1}, math.Vec3{X: 1}, math.Vec3{Z: 1}},
	}

	const pad = 1.0 / 64
	var vertices []Vertex
	var indices []uint32
	for i, f := range faces {
		u0 := float32(i%3) / 3
		v0 := float32(i/3) / 2
		corners := [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
		base := uint32(len(vertices))
		for _, c := range corners {
			p := f.normal.Scale(0.5).
				Add(f.right.Scale(c[0] - 0.5)).
				Add(f.up.Scale(c[1] - 0.5))
			vertices = append(vertices, Vertex{
				Position: p,
				Normal:   f.normal,
				UV: math.Vec2{
					X: u0 + pad + c[0]*(1.0/3-2*pad),
					Y: v0 + pad + c[1]*(0.5-2*pad),
				},
			})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return NewMesh("cube", vertices, indices)
}

// Cylinder returns an open cylinder along Y with height 1 and radius 0.5,
// unwrapped so U runs around the circumference.
func Cylinder(segments, rings int) *Mesh {
	segments = max(segments, 3)
	rings = max(rings, 1)

	var vertices []Vertex
	for r := 0; r <= rings; r++ {
		v := float32(r) / float32(rings)
		for s := 0; s <= segments; s++ {
			u := float32(s) / float32(segments)
			sin, cos := gomath.Sincos(2 * gomath.Pi * float64(u))
			n := math.Vec3{X: float32(cos), Z: float32(sin)}
			vertices = append(vertices, Vertex{
				Position: math.Vec3{X: n.X * 0.5, Y: v - 0.5, Z: n.Z * 0.5},
				Normal:   n,
				UV:       math.Vec2{X: u, Y: v},
			})
		}
	}

	var indices []uint32
	stride := uint32(segments + 1)
	for r := 0; r < rings; r++ {
		for s := 0; s < segments; s++ {
			i := uint32(r)*stride + uint32(s)
			indices = append(indices, i, i+stride, i+stride+1, i, i+stride+1, i+1)
		}
	}
	return NewMesh("cylinder", vertices, indices)
}
