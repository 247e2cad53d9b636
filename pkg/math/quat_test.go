package math

import (
	"math"
	"testing"
)

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q != (Quat{0, 0, 0, 1}) {
		t.Errorf("Identity quaternion should be (0,0,0,1), got %v", q)
	}
	if m := q.ToMat4(); !m.ApproxEqual(Identity(), 1e-6) {
		t.Errorf("identity quat matrix = %v", m)
	}
}

func TestQuatRotateMatchesMatrix(t *testing.T) {
	q := QuatFromEuler(Vec3{20, -70, 35})
	v := Vec3{1, 2, 3}
	byQuat := q.Rotate(v)
	byMat := q.ToMat4().TransformPoint(v)
	if !byQuat.ApproxEqual(byMat, 1e-5) {
		t.Errorf("Rotate = %v, matrix = %v", byQuat, byMat)
	}
}

func TestQuatMulOrder(t *testing.T) {
	yaw := QuatFromAxisAngle(Vec3{0, 1, 0}, float32(math.Pi/2))
	pitch := QuatFromAxisAngle(Vec3{1, 0, 0}, float32(math.Pi/2))

	// pitch first: +Z -> -Y, then yaw leaves -Y alone.
	got := yaw.Mul(pitch).Rotate(Vec3{0, 0, 1})
	if !got.ApproxEqual(Vec3{0, -1, 0}, 1e-5) {
		t.Errorf("yaw*pitch applied to +Z = %v, want (0,-1,0)", got)
	}
}

func TestQuatConjugateUndoes(t *testing.T) {
	q := QuatFromEuler(Vec3{10, 20, 30})
	v := Vec3{-4, 0.5, 2}
	if got := q.Conjugate().Rotate(q.Rotate(v)); !got.ApproxEqual(v, 1e-5) {
		t.Errorf("conjugate round trip = %v, want %v", got, v)
	}
}
