package model

import (
	"testing"

	"github.com/Faultbox/meshcanvas/pkg/math"
)

func TestQuadCoversUnitSquare(t *testing.T) {
	q := Quad()
	if q.Triangles() != 2 {
		t.Fatalf("expected 2 triangles, got %d", q.Triangles())
	}
	want := math.AABB{Min: math.Vec3{X: -0.5, Y: -0.5}, Max: math.Vec3{X: 0.5, Y: 0.5}}
	if q.Bounds != want {
		t.Errorf("bounds = %v, want %v", q.Bounds, want)
	}
	for _, v := range q.Vertices {
		// UV equals position shifted into [0,1].
		if v.UV.X != v.Position.X+0.5 || v.UV.Y != v.Position.Y+0.5 {
			t.Errorf("vertex %v has mismatched UV", v)
		}
	}
}

func TestGridCounts(t *testing.T) {
	g := Grid(4, 3)
	if len(g.Vertices) != 5*4 {
		t.Errorf("expected 20 vertices, got %d", len(g.Vertices))
	}
	if g.Triangles() != 4*3*2 {
		t.Errorf("expected 24 triangles, got %d", g.Triangles())
	}
	for _, idx := range g.Indices {
		if int(idx) >= len(g.Vertices) {
			t.Fatalf("index %d out of range", idx)
		}
	}
}

func TestCubeAtlasDoesNotOverlap(t *testing.T) {
	c := Cube()
	if c.Triangles() != 12 {
		t.Fatalf("expected 12 triangles, got %d", c.Triangles())
	}
	// Each face occupies its own cell of a 3x2 atlas.
	seen := map[[2]int]bool{}
	for f := 0; f < 6; f++ {
		v := c.Vertices[f*4]
		cell := [2]int{int(v.UV.X * 3), int(v.UV.Y * 2)}
		if seen[cell] {
			t.Errorf("face %d shares atlas cell %v", f, cell)
		}
		seen[cell] = true
	}
}

func TestCylinderBounds(t *testing.T) {
	c := Cylinder(16, 2)
	if !c.Bounds.Min.ApproxEqual(math.Vec3{X: -0.5, Y: -0.5, Z: -0.5}, 1e-3) {
		t.Errorf("min = %v", c.Bounds.Min)
	}
	if !c.Bounds.Max.ApproxEqual(math.Vec3{X: 0.5, Y: 0.5, Z: 0.5}, 1e-3) {
		t.Errorf("max = %v", c.Bounds.Max)
	}
}

func TestSkinDeform(t *testing.T) {
	mesh := Grid(2, 2)
	infl := RigidInfluences(mesh, func(v Vertex) int {
		if v.Position.Y > 0 {
			return 1
		}
		return 0
	})
	skin, err := NewSkin(mesh, infl, 2)
	if err != nil {
		t.Fatalf("NewSkin: %v", err)
	}
	skin.SetBone(1, math.Translate(math.Vec3{Z: 2}))

	out := skin.Deform(nil)
	for i, v := range out {
		src := mesh.Vertices[i]
		wantZ := float32(0)
		if src.Position.Y > 0 {
			wantZ = 2
		}
		if v.Position.Z != wantZ {
			t.Errorf("vertex %d z = %v, want %v", i, v.Position.Z, wantZ)
		}
		if v.UV != src.UV {
			t.Errorf("vertex %d UV changed", i)
		}
	}

	b := Bounds(out)
	if b.Max.Z != 2 || b.Min.Z != 0 {
		t.Errorf("deformed bounds = %v", b)
	}
}

func TestSkinBlendsWeights(t *testing.T) {
	mesh := Quad()
	infl := make([]Influence, len(mesh.Vertices))
	for i := range infl {
		infl[i] = Influence{Bones: [4]uint16{0, 1}, Weights: [4]float32{0.5, 0.5}}
	}
	skin, err := NewSkin(mesh, infl, 2)
	if err != nil {
		t.Fatalf("NewSkin: %v", err)
	}
	skin.SetBone(1, math.Translate(math.Vec3{X: 1}))

	out := skin.Deform(make([]Vertex, 0, 8))
	if got := out[0].Position.X; got != mesh.Vertices[0].Position.X+0.5 {
		t.Errorf("blended x = %v", got)
	}
}

func TestNewSkinRejectsBadInput(t *testing.T) {
	mesh := Quad()
	if _, err := NewSkin(mesh, make([]Influence, 1), 1); err == nil {
		t.Error("expected error for influence count mismatch")
	}

	infl := RigidInfluences(mesh, func(Vertex) int { return 3 })
	if _, err := NewSkin(mesh, infl, 2); err == nil {
		t.Error("expected error for out-of-range bone")
	}
}
