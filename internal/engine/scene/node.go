package scene

import (
	"github.com/Faultbox/meshcanvas/internal/engine/model"
	"github.com/Faultbox/meshcanvas/pkg/math"
)

// Node is one renderable object: a static mesh, or a skinned mesh whose
// vertices are recomputed from its bones each time they are read.
type Node struct {
	Name string

	mesh      *model.Mesh
	skin      *model.Skin
	transform math.Mat4
	layer     int
	destroyed bool

	deformed []model.Vertex
}

// Alive reports whether the node has not been destroyed.
func (n *Node) Alive() bool {
	return n != nil && !n.destroyed
}

// Destroy marks the node dead. The scene stops rendering it and holders
// referring to it see Alive() == false.
func (n *Node) Destroy() {
	n.destroyed = true
	n.deformed = nil
}

// SharedMesh returns the bind-pose mesh.
func (n *Node) SharedMesh() *model.Mesh {
	return n.mesh
}

// Skin returns the skin, or nil for static nodes.
func (n *Node) Skin() *model.Skin {
	return n.skin
}

// LocalToWorld returns the node transform.
func (n *Node) LocalToWorld() math.Mat4 {
	return n.transform
}

// SetTransform moves the node.
func (n *Node) SetTransform(m math.Mat4) {
	n.transform = m
}

// Layer returns the render layer.
func (n *Node) Layer() int {
	return n.layer
}

// SetLayer moves the node to another render layer.
func (n *Node) SetLayer(layer int) {
	n.layer = layer
}

// Vertices returns the current local-space vertices: the skinned pose for
// skinned nodes, the mesh vertices otherwise. The slice is reused.
func (n *Node) Vertices() []model.Vertex {
	if n.skin == nil {
		return n.mesh.Vertices
	}
	n.deformed = n.skin.Deform(n.deformed)
	return n.deformed
}

// Bounds returns the world-space bounds of the current pose.
func (n *Node) Bounds() math.AABB {
	if !n.Alive() {
		return math.EmptyAABB()
	}
	local := n.mesh.Bounds
	if n.skin != nil {
		local = model.Bounds(n.Vertices())
	}
	return local.Transform(n.transform)
}
