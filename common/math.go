package common

import (
	"encoding/binary"
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Mat4 is a 4x4 matrix in row-vector convention: a point p is transformed as p' = p·M and
// translation lives in row 3. Storage is mgl32's, so At(row, col) reads the same element a
// Direct3D style m[row][col] would.
type Mat4 = mgl32.Mat4

// Vec2 is a two component float32 vector, used for texture coordinates.
type Vec2 = mgl32.Vec2

// Vec3 is a three component float32 vector.
type Vec3 = mgl32.Vec3

// Vec4 is a four component float32 vector, used for colours.
type Vec4 = mgl32.Vec4

// RadiansPerDegree is the conversion factor applied to every angle stored in degrees.
const RadiansPerDegree float32 = math.Pi / 180.0

// DegToRad converts an angle in degrees to radians.
//
// Parameters:
//   - deg: the angle in degrees
//
// Returns:
//   - float32: the angle in radians
func DegToRad(deg float32) float32 {
	return deg * RadiansPerDegree
}

// Identity returns the 4x4 identity matrix.
//
// Returns:
//   - Mat4: the identity matrix
func Identity() Mat4 {
	return mgl32.Ident4()
}

// LookAtLH builds a left-handed view matrix looking from eye towards at.
//
// Parameters:
//   - eye: the viewer position
//   - at: the point being looked at
//   - up: the world up direction
//
// Returns:
//   - Mat4: the view matrix
func LookAtLH(eye, at, up Vec3) Mat4 {
	zAxis := at.Sub(eye).Normalize()
	xAxis := up.Cross(zAxis).Normalize()
	yAxis := zAxis.Cross(xAxis)

	return mgl32.Mat4FromRows(
		mgl32.Vec4{xAxis.X(), yAxis.X(), zAxis.X(), 0},
		mgl32.Vec4{xAxis.Y(), yAxis.Y(), zAxis.Y(), 0},
		mgl32.Vec4{xAxis.Z(), yAxis.Z(), zAxis.Z(), 0},
		mgl32.Vec4{-xAxis.Dot(eye), -yAxis.Dot(eye), -zAxis.Dot(eye), 1},
	)
}

// PerspectiveFovLH builds a left-handed perspective projection that maps view depth
// [near, far] onto clip depth [0, 1], which is the WebGPU and Direct3D clip convention.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport width divided by height
//   - near: distance to the near plane
//   - far: distance to the far plane
//
// Returns:
//   - Mat4: the projection matrix
func PerspectiveFovLH(fovY, aspect, near, far float32) Mat4 {
	yScale := 1.0 / math32.Tan(fovY/2)
	xScale := yScale / aspect
	depth := far / (far - near)

	return mgl32.Mat4FromRows(
		mgl32.Vec4{xScale, 0, 0, 0},
		mgl32.Vec4{0, yScale, 0, 0},
		mgl32.Vec4{0, 0, depth, 1},
		mgl32.Vec4{0, 0, -near * depth, 0},
	)
}

// OrthoLH builds a left-handed orthographic projection centred on the origin.
//
// Parameters:
//   - width: view volume width
//   - height: view volume height
//   - near: distance to the near plane
//   - far: distance to the far plane
//
// Returns:
//   - Mat4: the projection matrix
func OrthoLH(width, height, near, far float32) Mat4 {
	return mgl32.Mat4FromRows(
		mgl32.Vec4{2 / width, 0, 0, 0},
		mgl32.Vec4{0, 2 / height, 0, 0},
		mgl32.Vec4{0, 0, 1 / (far - near), 0},
		mgl32.Vec4{0, 0, near / (near - far), 1},
	)
}

// RotationX returns a row-vector rotation about the X axis.
func RotationX(angle float32) Mat4 {
	s, c := math32.Sincos(angle)
	return mgl32.Mat4FromRows(
		mgl32.Vec4{1, 0, 0, 0},
		mgl32.Vec4{0, c, s, 0},
		mgl32.Vec4{0, -s, c, 0},
		mgl32.Vec4{0, 0, 0, 1},
	)
}

// RotationY returns a row-vector rotation about the Y axis.
func RotationY(angle float32) Mat4 {
	s, c := math32.Sincos(angle)
	return mgl32.Mat4FromRows(
		mgl32.Vec4{c, 0, -s, 0},
		mgl32.Vec4{0, 1, 0, 0},
		mgl32.Vec4{s, 0, c, 0},
		mgl32.Vec4{0, 0, 0, 1},
	)
}

// RotationZ returns a row-vector rotation about the Z axis.
func RotationZ(angle float32) Mat4 {
	s, c := math32.Sincos(angle)
	return mgl32.Mat4FromRows(
		mgl32.Vec4{c, s, 0, 0},
		mgl32.Vec4{-s, c, 0, 0},
		mgl32.Vec4{0, 0, 1, 0},
		mgl32.Vec4{0, 0, 0, 1},
	)
}

// RotationYawPitchRoll composes a rotation that applies roll about Z, then pitch about X,
// then yaw about Y. All angles are in radians.
//
// Parameters:
//   - yaw: rotation about the Y axis
//   - pitch: rotation about the X axis
//   - roll: rotation about the Z axis
//
// Returns:
//   - Mat4: the combined rotation matrix
func RotationYawPitchRoll(yaw, pitch, roll float32) Mat4 {
	return RotationZ(roll).Mul4(RotationX(pitch)).Mul4(RotationY(yaw))
}

// Translation returns a row-vector translation matrix.
func Translation(x, y, z float32) Mat4 {
	m := mgl32.Ident4()
	m.SetRow(3, mgl32.Vec4{x, y, z, 1})
	return m
}

// TransformCoord transforms the point v by m in row-vector convention and projects the
// result back into w = 1.
//
// Parameters:
//   - v: the point to transform
//   - m: the transform
//
// Returns:
//   - Vec3: the transformed point
func TransformCoord(v Vec3, m Mat4) Vec3 {
	r := m.Transpose().Mul4x1(v.Vec4(1))
	if r.W() == 0 {
		return r.Vec3()
	}
	return r.Vec3().Mul(1 / r.W())
}

// WrapDegrees folds an angle in degrees back into the open interval (-360, 360).
//
// Parameters:
//   - deg: the angle in degrees
//
// Returns:
//   - float32: the wrapped angle
func WrapDegrees(deg float32) float32 {
	return math32.Mod(deg, 360)
}

// MatrixBytes returns the little-endian bytes of m in its storage order. Each four float
// run is one column of m, which is what a WGSL mat4x4<f32> uniform expects.
//
// Parameters:
//   - m: the matrix to serialize
//
// Returns:
//   - []byte: 64 bytes of matrix data
func MatrixBytes(m Mat4) []byte {
	buf := make([]byte, 64)
	PutMatrix(buf, m)
	return buf
}

// PutMatrix writes m into the first 64 bytes of dst in storage order.
func PutMatrix(dst []byte, m Mat4) {
	for i, f := range m {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(f))
	}
}

// PutVec writes the components of v into dst as little-endian float32 values.
func PutVec(dst []byte, v ...float32) {
	for i, f := range v {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(f))
	}
}
