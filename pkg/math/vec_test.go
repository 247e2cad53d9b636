package math

import "testing"

func TestVec3Cross(t *testing.T) {
	got := Vec3{1, 0, 0}.Cross(Vec3{0, 1, 0})
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3Mul(t *testing.T) {
	got := Vec3{1, 2, 3}.Mul(Vec3{4, 5, 0.5})
	want := Vec3{4, 10, 1.5}
	if got != want {
		t.Errorf("Vec3.Mul() = %v, want %v", got, want)
	}
}

func TestColorMul(t *testing.T) {
	got := Color{1, 0.5, 0.25, 1}.Mul(Color{0.5, 0.5, 1, 0.5})
	want := Color{0.5, 0.25, 0.25, 0.5}
	if got != want {
		t.Errorf("Color.Mul() = %v, want %v", got, want)
	}
}

func TestAABBEncapsulate(t *testing.T) {
	b := EmptyAABB()
	if !b.IsEmpty() {
		t.Fatal("EmptyAABB should be empty")
	}
	b = b.Encapsulate(AABB{Min: Vec3{-1, 0, 0}, Max: Vec3{1, 1, 1}})
	b = b.Encapsulate(EmptyAABB())
	b = b.EncapsulatePoint(Vec3{0, 3, -2})

	want := AABB{Min: Vec3{-1, 0, -2}, Max: Vec3{1, 3, 1}}
	if b != want {
		t.Errorf("Encapsulate = %v, want %v", b, want)
	}
	if c := b.Center(); c != (Vec3{0, 1.5, -0.5}) {
		t.Errorf("Center = %v", c)
	}
}

func TestAABBTransform(t *testing.T) {
	b := AABB{Min: Vec3{-1, -1, -1}, Max: Vec3{1, 1, 1}}
	got := b.Transform(TRS(Vec3{10, 0, 0}, QuatIdentity(), Vec3{2, 1, 1}))
	want := AABB{Min: Vec3{8, -1, -1}, Max: Vec3{12, 1, 1}}
	if !got.Min.ApproxEqual(want.Min, 1e-6) || !got.Max.ApproxEqual(want.Max, 1e-6) {
		t.Errorf("Transform = %v, want %v", got, want)
	}
}
