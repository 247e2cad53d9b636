package scene

import (
	"testing"

	"github.com/Faultbox/meshcanvas/internal/engine/model"
	"github.com/Faultbox/meshcanvas/pkg/math"
)

func TestLayersDefine(t *testing.T) {
	l := NewLayers()
	if i, ok := l.LayerByName("Default"); !ok || i != 0 {
		t.Fatalf("Default layer = %d, %v", i, ok)
	}

	bake, err := l.Define("MeshCanvas Bake")
	if err != nil {
		t.Fatalf("Define: %v", err)
	}
	if bake != 1 {
		t.Errorf("expected first free layer 1, got %d", bake)
	}
	again, _ := l.Define("MeshCanvas Bake")
	if again != bake {
		t.Errorf("redefining returned %d, want %d", again, bake)
	}
	if _, ok := l.LayerByName("missing"); ok {
		t.Error("missing layer should not resolve")
	}
	if _, err := l.Define(""); err == nil {
		t.Error("expected error for empty name")
	}
}

func TestLayersExhausted(t *testing.T) {
	l := NewLayers()
	for i := 1; i < MaxLayers; i++ {
		if _, err := l.Define(string(rune('A' + i))); err != nil {
			t.Fatalf("Define %d: %v", i, err)
		}
	}
	if _, err := l.Define("one too many"); err == nil {
		t.Error("expected error when all layers are used")
	}
}

func TestEachFiltersByMaskAndLiveness(t *testing.T) {
	s := New()
	a := s.AddStatic("a", model.Quad(), math.Identity())
	b := s.AddStatic("b", model.Quad(), math.Identity())
	c := s.AddStatic("c", model.Quad(), math.Identity())
	b.SetLayer(3)
	c.SetLayer(3)
	c.Destroy()

	var got []string
	s.Each(Mask(3), func(n *Node) { got = append(got, n.Name) })
	if len(got) != 1 || got[0] != "b" {
		t.Errorf("Each(layer 3) = %v, want [b]", got)
	}

	got = got[:0]
	s.Each(Mask(DefaultLayer), func(n *Node) { got = append(got, n.Name) })
	if len(got) != 1 || got[0] != a.Name {
		t.Errorf("Each(default) = %v, want [a]", got)
	}

	s.Prune()
	if s.Len() != 2 {
		t.Errorf("expected 2 nodes after prune, got %d", s.Len())
	}
}

func TestSkinnedNodeBoundsFollowPose(t *testing.T) {
	mesh := model.Grid(2, 2)
	skin, err := model.NewSkin(mesh, model.RigidInfluences(mesh, func(model.Vertex) int { return 0 }), 1)
	if err != nil {
		t.Fatalf("NewSkin: %v", err)
	}
	s := New()
	n := s.AddSkinned("skinned", skin, math.Translate(math.Vec3{X: 10}))

	skin.SetBone(0, math.Translate(math.Vec3{Y: 5}))
	b := n.Bounds()
	if !b.Center().ApproxEqual(math.Vec3{X: 10, Y: 5}, 1e-5) {
		t.Errorf("bounds center = %v, want (10,5,0)", b.Center())
	}

	n.Destroy()
	if !n.Bounds().IsEmpty() {
		t.Error("destroyed node should report empty bounds")
	}
}
