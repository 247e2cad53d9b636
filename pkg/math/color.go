package math

// Color is a linear RGBA color with float components.
type Color struct {
	R, G, B, A float32
}

var (
	// White is the neutral tint.
	White = Color{1, 1, 1, 1}
	// Clear is the transparent black used as the empty-texel sentinel.
	Clear = Color{}
)

// Mul returns the component-wise product of c and other.
func (c Color) Mul(other Color) Color {
	return Color{c.R * other.R, c.G * other.G, c.B * other.B, c.A * other.A}
}

// Vec4 returns the color as a vector, in RGBA order.
func (c Color) Vec4() Vec4 {
	return Vec4{c.R, c.G, c.B, c.A}
}
