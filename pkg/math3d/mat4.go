package math3d

import "math"

// Mat4 is a 4x4 matrix in column-major order: element (row, col) lives at
// index row+col*4, and the translation of an affine transform sits in
// elements 12, 13 and 14.
type Mat4 [16]float64

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate returns a translation by v.
func Translate(v Vec3) Mat4 {
	m := Identity()
	m[12], m[13], m[14] = v.X, v.Y, v.Z
	return m
}

// Scale returns a non-uniform scale by v.
func Scale(v Vec3) Mat4 {
	return Mat4{
		v.X, 0, 0, 0,
		0, v.Y, 0, 0,
		0, 0, v.Z, 0,
		0, 0, 0, 1,
	}
}

// RotateX returns a rotation of angle radians around +X.
func RotateX(angle float64) Mat4 {
	s, c := math.Sincos(angle)
	return Mat4{
		1, 0, 0, 0,
		0, c, s, 0,
		0, -s, c, 0,
		0, 0, 0, 1,
	}
}

// RotateY returns a rotation of angle radians around +Y.
func RotateY(angle float64) Mat4 {
	s, c := math.Sincos(angle)
	return Mat4{
		c, 0, -s, 0,
		0, 1, 0, 0,
		s, 0, c, 0,
		0, 0, 0, 1,
	}
}

// RotateZ returns a rotation of angle radians around +Z.
func RotateZ(angle float64) Mat4 {
	s, c := math.Sincos(angle)
	return Mat4{
		c, s, 0, 0,
		-s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// FromScaleRotationTranslation composes scale, then rotation, then
// translation into a single affine matrix.
func FromScaleRotationTranslation(scale Vec3, rot Quat, translation Vec3) Mat4 {
	m := rot.Mat4()
	for i := range 3 {
		m[i] *= scale.X
		m[4+i] *= scale.Y
		m[8+i] *= scale.Z
	}
	m[12], m[13], m[14] = translation.X, translation.Y, translation.Z
	return m
}

// LookAt returns a right-handed view matrix for an eye at eye looking at
// center. The camera looks down its local -Z.
func LookAt(eye, center, up Vec3) Mat4 {
	f := center.Sub(eye).Normalize()
	s := f.Cross(up).Normalize()
	u := s.Cross(f)

	return Mat4{
		s.X, u.X, -f.X, 0,
		s.Y, u.Y, -f.Y, 0,
		s.Z, u.Z, -f.Z, 0,
		-s.Dot(eye), -u.Dot(eye), f.Dot(eye), 1,
	}
}

// Perspective returns a right-handed perspective projection with a
// zero-to-one depth range: a view-space point on the near plane lands on
// clip z = 0 and one on the far plane on clip z = w. fovy is the vertical
// field of view in radians and aspect is width/height.
func Perspective(fovy, aspect, near, far float64) Mat4 {
	h := 1 / math.Tan(fovy/2)
	r := far / (near - far)

	return Mat4{
		h / aspect, 0, 0, 0,
		0, h, 0, 0,
		0, 0, r, -1,
		0, 0, r * near, 0,
	}
}

// Orthographic returns a right-handed orthographic projection with the
// same zero-to-one depth range as Perspective.
func Orthographic(left, right, bottom, top, near, far float64) Mat4 {
	w := 1 / (right - left)
	h := 1 / (top - bottom)
	r := 1 / (near - far)

	return Mat4{
		2 * w, 0, 0, 0,
		0, 2 * h, 0, 0,
		0, 0, r, 0,
		-(left + right) * w, -(top + bottom) * h, r * near, 1,
	}
}

// Mul returns a * b, so that (a*b).MulVec4(v) == a.MulVec4(b.MulVec4(v)).
//
//nolint:st1016 // a*b naming convention is clearer for matrix multiplication
func (a Mat4) Mul(b Mat4) Mat4 {
	var m Mat4
	for col := range 4 {
		for row := range 4 {
			m[row+col*4] = a[row]*b[col*4] +
				a[row+4]*b[col*4+1] +
				a[row+8]*b[col*4+2] +
				a[row+12]*b[col*4+3]
		}
	}
	return m
}

// MulVec4 transforms v.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]*v.W,
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]*v.W,
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]*v.W,
		m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]*v.W,
	}
}

// MulPoint transforms v as a point (w = 1) and divides by the resulting w
// when it is non-zero.
func (m Mat4) MulPoint(v Vec3) Vec3 {
	r := m.MulVec4(v.Extend(1))
	if r.W == 0 || r.W == 1 {
		return r.XYZ()
	}
	return r.XYZ().Scale(1 / r.W)
}

// MulDir transforms v as a direction (w = 0); translation is ignored.
func (m Mat4) MulDir(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z,
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z,
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z,
	}
}

// Transpose returns the transposed matrix.
func (m Mat4) Transpose() Mat4 {
	var t Mat4
	for row := range 4 {
		for col := range 4 {
			t[col+row*4] = m[row+col*4]
		}
	}
	return t
}

// minors holds the 2x2 sub-determinants of the top two and bottom two rows,
// which both the determinant and the inverse are built from.
type minors struct {
	s [6]float64
	c [6]float64
}

func (m Mat4) minors() minors {
	a := func(row, col int) float64 { return m[row+col*4] }
	return minors{
		s: [6]float64{
			a(0, 0)*a(1, 1) - a(1, 0)*a(0, 1),
			a(0, 0)*a(1, 2) - a(1, 0)*a(0, 2),
			a(0, 0)*a(1, 3) - a(1, 0)*a(0, 3),
			a(0, 1)*a(1, 2) - a(1, 1)*a(0, 2),
			a(0, 1)*a(1, 3) - a(1, 1)*a(0, 3),
			a(0, 2)*a(1, 3) - a(1, 2)*a(0, 3),
		},
		c: [6]float64{
			a(2, 0)*a(3, 1) - a(3, 0)*a(2, 1),
			a(2, 0)*a(3, 2) - a(3, 0)*a(2, 2),
			a(2, 0)*a(3, 3) - a(3, 0)*a(2, 3),
			a(2, 1)*a(3, 2) - a(3, 1)*a(2, 2),
			a(2, 1)*a(3, 3) - a(3, 1)*a(2, 3),
			a(2, 2)*a(3, 3) - a(3, 2)*a(2, 3),
		},
	}
}

func (n minors) det() float64 {
	s, c := n.s, n.c
	return s[0]*c[5] - s[1]*c[4] + s[2]*c[3] + s[3]*c[2] - s[4]*c[1] + s[5]*c[0]
}

// Determinant returns the determinant of m.
func (m Mat4) Determinant() float64 {
	return m.minors().det()
}

// Inverse returns the inverse of m, or the identity when m is singular.
func (m Mat4) Inverse() Mat4 {
	n := m.minors()
	det := n.det()
	if det == 0 {
		return Identity()
	}
	inv := 1 / det
	s, c := n.s, n.c
	a := func(row, col int) float64 { return m[row+col*4] }

	var out Mat4
	set := func(row, col int, v float64) { out[row+col*4] = v * inv }

	set(0, 0, a(1, 1)*c[5]-a(1, 2)*c[4]+a(1, 3)*c[3])
	set(0, 1, -a(0, 1)*c[5]+a(0, 2)*c[4]-a(0, 3)*c[3])
	set(0, 2, a(3, 1)*s[5]-a(3, 2)*s[4]+a(3, 3)*s[3])
	set(0, 3, -a(2, 1)*s[5]+a(2, 2)*s[4]-a(2, 3)*s[3])

	set(1, 0, -a(1, 0)*c[5]+a(1, 2)*c[2]-a(1, 3)*c[1])
	set(1, 1, a(0, 0)*c[5]-a(0, 2)*c[2]+a(0, 3)*c[1])
	set(1, 2, -a(3, 0)*s[5]+a(3, 2)*s[2]-a(3, 3)*s[1])
	set(1, 3, a(2, 0)*s[5]-a(2, 2)*s[2]+a(2, 3)*s[1])

	set(2, 0, a(1, 0)*c[4]-a(1, 1)*c[2]+a(1, 3)*c[0])
	set(2, 1, -a(0, 0)*c[4]+a(0, 1)*c[2]-a(0, 3)*c[0])
	set(2, 2, a(3, 0)*s[4]-a(3, 1)*s[2]+a(3, 3)*s[0])
	set(2, 3, -a(2, 0)*s[4]+a(2, 1)*s[2]-a(2, 3)*s[0])

	set(3, 0, -a(1, 0)*c[3]+a(1, 1)*c[1]-a(1, 2)*c[0])
	set(3, 1, a(0, 0)*c[3]-a(0, 1)*c[1]+a(0, 2)*c[0])
	set(3, 2, -a(3, 0)*s[3]+a(3, 1)*s[1]-a(3, 2)*s[0])
	set(3, 3, a(2, 0)*s[3]-a(2, 1)*s[1]+a(2, 2)*s[0])

	return out
}

// NormalMatrix returns the inverse-transpose of m. Transforming a surface
// normal with MulDir of the result keeps it perpendicular to the surface
// under non-uniform scale.
func (m Mat4) NormalMatrix() Mat4 {
	return m.Inverse().Transpose()
}

// Translation extracts the translation column.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[12], m[13], m[14]}
}

// Row returns row i as a Vec4.
func (m Mat4) Row(i int) Vec4 {
	return Vec4{m[i], m[i+4], m[i+8], m[i+12]}
}

// ApproxEqual reports whether all elements differ by at most eps.
func (m Mat4) ApproxEqual(o Mat4, eps float64) bool {
	for i := range m {
		if math.Abs(m[i]-o[i]) > eps {
			return false
		}
	}
	return true
}
