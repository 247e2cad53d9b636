package canvas

import "github.com/Faultbox/meshcanvas/pkg/math"

// Brush is a reusable decal description. Paint combines it with a
// per-call position, rotation, size and color.
type Brush struct {
	Texture Texture
	// Color multiplies the brush image.
	Color math.Color
	// SmoothingStart and SmoothingEnd bound the falloff per axis, in the
	// normalized decal cube where each axis spans [-1, 1].
	SmoothingStart math.Vec3
	SmoothingEnd   math.Vec3
	Rotation       math.Quat
	Size           math.Vec3
}

// DefaultBrush returns a white, unit-sized brush that fades out along its
// projection axis over the back half of the decal depth.
func DefaultBrush(tex Texture) Brush {
	return Brush{
		Texture:        tex,
		Color:          math.White,
		SmoothingStart: math.Vec3{X: 1, Y: 1, Z: 0.5},
		SmoothingEnd:   math.Vec3{X: 1, Y: 1, Z: 1},
		Rotation:       math.QuatIdentity(),
		Size:           math.One,
	}
}

// DecalTransform returns the local-to-world transform of a decal painted
// with b at position, with the call rotation applied after the brush
// rotation and the sizes multiplied per axis.
func (b Brush) DecalTransform(position math.Vec3, rotation math.Quat, size math.Vec3) math.Mat4 {
	return math.TRS(position, rotation.Mul(b.Rotation), size.Mul(b.Size))
}
