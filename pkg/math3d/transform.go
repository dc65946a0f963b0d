package math3d

// Transform places an object or camera in the world: scale, then rotate,
// then translate.
type Transform struct {
	Translation Vec3
	Rotation    Quat
	Scale       Vec3
}

// NewTransform returns the identity transform.
func NewTransform() Transform {
	return Transform{Rotation: QuatIdentity(), Scale: Splat3(1)}
}

// Matrix returns the object-to-world matrix.
func (t Transform) Matrix() Mat4 {
	return FromScaleRotationTranslation(t.Scale, t.Rotation, t.Translation)
}

// Forward is the rotated -Z axis.
func (t Transform) Forward() Vec3 {
	return t.Rotation.Rotate(UnitZ.Negate())
}

// Right is the rotated +X axis.
func (t Transform) Right() Vec3 {
	return t.Rotation.Rotate(UnitX)
}

// Up is the rotated +Y axis.
func (t Transform) Up() Vec3 {
	return t.Rotation.Rotate(UnitY)
}

// ViewMatrix treats t as a camera and returns the world-to-view matrix.
// Scale is ignored.
func (t Transform) ViewMatrix() Mat4 {
	return LookAt(t.Translation, t.Translation.Add(t.Forward()), t.Up())
}
