package mathutil

// Transform is an object's position, intrinsic XYZ Euler rotation (radians)
// and scale in scene units, composed as T × R × S.
type Transform struct {
	Position Vec3
	Rotation Vec3
	Scale    Vec3
}

// IdentityTransform has zero position/rotation and unit scale.
func IdentityTransform() Transform {
	return Transform{Scale: Vec3{1, 1, 1}}
}

// Matrix returns the object-to-world matrix.
func (t Transform) Matrix() Mat4 {
	rs := Mat3Mul(EulerXYZ(t.Rotation), Mat3Diag(t.Scale[0], t.Scale[1], t.Scale[2]))
	return FromMat3Translation(rs, t.Position)
}

// Quaternion returns the rotation as a quaternion.
func (t Transform) Quaternion() Quat {
	return EulerXYZToQuat(t.Rotation)
}

// WithQuaternion returns a copy whose rotation is set from q.
func (t Transform) WithQuaternion(q Quat) Transform {
	t.Rotation = QuatToMat3(q.Normalize()).ToEulerXYZ()
	return t
}
