package math

// AABB is an axis-aligned bounding box. The zero value is a box at the
// origin; use EmptyAABB to start an accumulation.
type AABB struct {
	Min Vec3
	Max Vec3
}

// EmptyAABB returns an inverted box that any Encapsulate call replaces.
func EmptyAABB() AABB {
	return AABB{
		Min: Vec3{1e30, 1e30, 1e30},
		Max: Vec3{-1e30, -1e30, -1e30},
	}
}

// IsEmpty reports whether the box contains no points.
func (b AABB) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// EncapsulatePoint grows the box to contain p.
func (b AABB) EncapsulatePoint(p Vec3) AABB {
	return AABB{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Encapsulate grows the box to contain other. Empty boxes are ignored.
func (b AABB) Encapsulate(other AABB) AABB {
	if other.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return other
	}
	return AABB{Min: b.Min.Min(other.Min), Max: b.Max.Max(other.Max)}
}

// Center returns the center point.
func (b AABB) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Extents returns the half size on each axis.
func (b AABB) Extents() Vec3 {
	return b.Max.Sub(b.Min).Scale(0.5)
}

// Radius returns the distance from center to corner.
func (b AABB) Radius() float32 {
	return b.Extents().Length()
}

// Corners returns the eight corner points.
func (b AABB) Corners() [8]Vec3 {
	var out [8]Vec3
	for i := range out {
		p := b.Min
		if i&1 != 0 {
			p.X = b.Max.X
		}
		if i&2 != 0 {
			p.Y = b.Max.Y
		}
		if i&4 != 0 {
			p.Z = b.Max.Z
		}
		out[i] = p
	}
	return out
}

// Transform returns the box enclosing b after transformation by m.
func (b AABB) Transform(m Mat4) AABB {
	out := EmptyAABB()
	for _, c := range b.Corners() {
		out = out.EncapsulatePoint(m.TransformPoint(c))
	}
	return out
}
