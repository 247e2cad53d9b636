// Package model provides immutable mesh data, primitive builders and
// linear-blend skinning for meshes that are painted on.
package model

import "github.com/Faultbox/meshcanvas/pkg/math"

// Vertex is a mesh vertex. UV places the vertex in the paint texture and
// in the world-position buffer; both share one layout.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	UV       math.Vec2
}

// Mesh holds shared, immutable geometry ready for upload. Callers must not
// mutate a Mesh after handing it to a device: devices cache GPU copies
// keyed by pointer.
type Mesh struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32
	Bounds   math.AABB
}

// Triangles returns the number of indexed triangles.
func (m *Mesh) Triangles() int {
	return len(m.Indices) / 3
}

// NewMesh builds a mesh and computes its local bounds.
func NewMesh(name string, vertices []Vertex, indices []uint32) *Mesh {
	bounds := math.EmptyAABB()
	for _, v := range vertices {
		bounds = bounds.EncapsulatePoint(v.Position)
	}
	return &Mesh{
		Name:     name,
		Vertices: vertices,
		Indices:  indices,
		Bounds:   bounds,
	}
}
