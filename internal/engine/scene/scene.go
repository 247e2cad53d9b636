// Package scene is a minimal host scene graph: named layers and a flat
// list of static and skinned nodes that devices render through cameras.
package scene

import (
	"github.com/Faultbox/meshcanvas/internal/engine/model"
	"github.com/Faultbox/meshcanvas/pkg/math"
)

// Scene holds nodes in insertion order.
type Scene struct {
	Layers *Layers
	nodes  []*Node
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{Layers: NewLayers()}
}

// AddStatic places a static mesh in the scene.
func (s *Scene) AddStatic(name string, mesh *model.Mesh, transform math.Mat4) *Node {
	n := &Node{Name: name, mesh: mesh, transform: transform}
	s.nodes = append(s.nodes, n)
	return n
}

// AddSkinned places a skinned mesh in the scene.
func (s *Scene) AddSkinned(name string, skin *model.Skin, transform math.Mat4) *Node {
	n := &Node{Name: name, mesh: skin.Mesh, skin: skin, transform: transform}
	s.nodes = append(s.nodes, n)
	return n
}

// LayerByName resolves a layer through the scene's layer table.
func (s *Scene) LayerByName(name string) (int, bool) {
	return s.Layers.LayerByName(name)
}

// Each calls fn for every live node whose layer is in mask.
func (s *Scene) Each(mask uint32, fn func(*Node)) {
	for _, n := range s.nodes {
		if n.Alive() && mask&Mask(n.layer) != 0 {
			fn(n)
		}
	}
}

// Prune drops destroyed nodes.
func (s *Scene) Prune() {
	live := s.nodes[:0]
	for _, n := range s.nodes {
		if n.Alive() {
			live = append(live, n)
		}
	}
	for i := len(live); i < len(s.nodes); i++ {
		s.nodes[i] = nil
	}
	s.nodes = live
}

// Len returns the number of nodes, including destroyed ones not yet pruned.
func (s *Scene) Len() int {
	return len(s.nodes)
}
