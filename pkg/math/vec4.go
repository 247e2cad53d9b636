package math

// Vec4 is a 4-component vector in homogeneous coordinates.
type Vec4 [4]float32

// Point returns p as a homogeneous point (w = 1).
func Point(p Vec3) Vec4 {
	return Vec4{p.X, p.Y, p.Z, 1}
}

// XYZ drops the w component without dividing.
func (v Vec4) XYZ() Vec3 {
	return Vec3{v[0], v[1], v[2]}
}

// Project performs the perspective divide. A zero w leaves xyz unchanged.
func (v Vec4) Project() Vec3 {
	if v[3] == 0 || v[3] == 1 {
		return v.XYZ()
	}
	return Vec3{v[0] / v[3], v[1] / v[3], v[2] / v[3]}
}
