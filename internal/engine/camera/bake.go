// Package camera computes view and projection matrices for auxiliary
// cameras that render a bounded group of objects.
package camera

import "github.com/Faultbox/meshcanvas/pkg/math"

// DefaultOffsetAxis is the direction, from the bounds center, along which
// bake cameras are placed.
var DefaultOffsetAxis = math.Vec3{Z: 1}

// minRadius keeps the projection non-degenerate for flat or empty bounds.
const minRadius = 0.01

// Frame describes where a camera sits and what it sees.
type Frame struct {
	Eye        math.Vec3
	Center     math.Vec3
	View       math.Mat4
	Projection math.Mat4
}

// ViewProjection returns Projection * View.
func (f Frame) ViewProjection() math.Mat4 {
	return f.Projection.Mul(f.View)
}

// FitBounds places a camera on axis (normalized, pointing from the bounds
// center to the eye) far enough out that the whole box lies between the
// near and far planes, with an orthographic volume covering its radius.
func FitBounds(bounds math.AABB, axis math.Vec3) Frame {
	center := bounds.Center()
	radius := max(bounds.Radius(), minRadius)

	axis = axis.Normalize()
	if axis == (math.Vec3{}) {
		axis = DefaultOffsetAxis
	}

	distance := radius * 2
	eye := center.Add(axis.Scale(distance))

	up := math.Vec3{Y: 1}
	if abs32(axis.Dot(up)) > 0.99 {
		up = math.Vec3{Z: 1}
	}

	padding := radius * 0.1
	halfSize := radius + padding
	near := distance - radius - padding
	far := distance + radius + padding
	if near <= 0 {
		near = 0.01
	}

	return Frame{
		Eye:        eye,
		Center:     center,
		View:       math.LookAt(eye, center, up),
		Projection: math.Ortho(-halfSize, halfSize, -halfSize, halfSize, near, far),
	}
}

// Visible reports whether any part of bounds can fall inside the clip
// volume of viewProj. It is conservative: a box whose corners straddle the
// volume counts as visible.
func Visible(viewProj math.Mat4, bounds math.AABB) bool {
	if bounds.IsEmpty() {
		return false
	}
	var outside [6]int
	for _, c := range bounds.Corners() {
		clip := viewProj.MulVec4(math.Point(c))
		w := clip[3]
		for axis := 0; axis < 3; axis++ {
			if clip[axis] < -w {
				outside[axis*2]++
			}
			if clip[axis] > w {
				outside[axis*2+1]++
			}
		}
	}
	for _, n := range outside {
		if n == 8 {
			return false
		}
	}
	return true
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
