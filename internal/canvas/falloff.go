package canvas

import "github.com/Faultbox/meshcanvas/pkg/math"

// Falloff returns the paint intensity at a decal-local position whose
// coordinates are normalized so the decal cube spans [-1, 1] on every
// axis. Intensity is 1 where every |axis| is within start, 0 where any
// |axis| is beyond end, and a smoothstep in between. Axes are combined
// multiplicatively.
func Falloff(local, start, end math.Vec3) float32 {
	return Intensity(local.Scale(0.5), start.Scale(0.5), end.Scale(0.5))
}

// Intensity is Falloff expressed in the unit cube [-0.5, 0.5] that
// WorldToDecal maps into, with the halved bounds carried by DecalPass.
// Devices evaluate this per pixel.
func Intensity(unit, smoothingMin, smoothingMax math.Vec3) float32 {
	a := unit.Abs()
	return axisIntensity(a.X, smoothingMin.X, smoothingMax.X) *
		axisIntensity(a.Y, smoothingMin.Y, smoothingMax.Y) *
		axisIntensity(a.Z, smoothingMin.Z, smoothingMax.Z)
}

func axisIntensity(a, lo, hi float32) float32 {
	if a <= lo {
		return 1
	}
	if a >= hi {
		return 0
	}
	return 1 - smoothstep(lo, hi, a)
}

func smoothstep(lo, hi, x float32) float32 {
	t := (x - lo) / (hi - lo)
	t = min(max(t, 0), 1)
	return t * t * (3 - 2*t)
}

// DecalLocal maps a world position into the normalized [-1, 1] decal cube.
func DecalLocal(worldToDecal math.Mat4, world math.Vec3) math.Vec3 {
	return worldToDecal.TransformPoint(world).Scale(2)
}
