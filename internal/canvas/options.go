package canvas

import "github.com/Faultbox/meshcanvas/pkg/math"

type paintOptions struct {
	color    math.Color
	rotation math.Quat
	size     math.Vec3
}

func defaultPaintOptions() paintOptions {
	return paintOptions{
		color:    math.White,
		rotation: math.QuatIdentity(),
		size:     math.One,
	}
}

// PaintOption adjusts a single Paint call.
type PaintOption func(*paintOptions)

// WithColor tints the decal. Default white.
func WithColor(c math.Color) PaintOption {
	return func(o *paintOptions) {
		o.color = c
	}
}

// WithRotation rotates the decal. Default identity.
func WithRotation(q math.Quat) PaintOption {
	return func(o *paintOptions) {
		o.rotation = q
	}
}

// WithSize scales the decal per axis. Default (1, 1, 1).
func WithSize(s math.Vec3) PaintOption {
	return func(o *paintOptions) {
		o.size = s
	}
}
