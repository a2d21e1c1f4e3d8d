package common

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

const eps = 1e-5

func assertVec3(t *testing.T, want, got Vec3) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, want[i], got[i], eps, "component %d of %v", i, got)
	}
}

func TestLookAtLHTranslatesEyeToOrigin(t *testing.T) {
	eye := Vec3{0, 0, -10}
	view := LookAtLH(eye, Vec3{0, 0, -9}, Vec3{0, 1, 0})

	assertVec3(t, Vec3{0, 0, 0}, TransformCoord(eye, view))
	assertVec3(t, Vec3{0, 0, 10}, TransformCoord(Vec3{0, 0, 0}, view))
}

func TestLookAtLHIsLeftHanded(t *testing.T) {
	view := LookAtLH(Vec3{0, 0, 0}, Vec3{0, 0, 1}, Vec3{0, 1, 0})

	// +X stays to the right when looking down +Z.
	assertVec3(t, Vec3{1, 0, 0}, TransformCoord(Vec3{1, 0, 0}, view))
}

func TestPerspectiveFovLHDepthRange(t *testing.T) {
	proj := PerspectiveFovLH(math32.Pi/4, 800.0/600.0, 0.1, 1000)

	near := TransformCoord(Vec3{0, 0, 0.1}, proj)
	far := TransformCoord(Vec3{0, 0, 1000}, proj)

	assert.InDelta(t, 0, near.Z(), eps)
	assert.InDelta(t, 1, far.Z(), 1e-4)
}

func TestOrthoLHMapsExtentsToClipEdges(t *testing.T) {
	ortho := OrthoLH(800, 600, 0.1, 1000)

	assertVec3(t, Vec3{1, 1, 0}, TransformCoord(Vec3{400, 300, 0.1}, ortho))
	assertVec3(t, Vec3{-1, -1, 0}, TransformCoord(Vec3{-400, -300, 0.1}, ortho))
}

func TestRotationYawPitchRoll(t *testing.T) {
	tests := []struct {
		name             string
		yaw, pitch, roll float32
		in, want         Vec3
	}{
		{"identity", 0, 0, 0, Vec3{0, 0, 1}, Vec3{0, 0, 1}},
		{"yaw turns look right", math32.Pi / 2, 0, 0, Vec3{0, 0, 1}, Vec3{1, 0, 0}},
		{"pitch tips look down", 0, math32.Pi / 2, 0, Vec3{0, 0, 1}, Vec3{0, -1, 0}},
		{"roll tilts up left", 0, 0, math32.Pi / 2, Vec3{0, 1, 0}, Vec3{-1, 0, 0}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := RotationYawPitchRoll(tc.yaw, tc.pitch, tc.roll)
			assertVec3(t, tc.want, TransformCoord(tc.in, m))
		})
	}
}

func TestRotationYawPitchRollOrder(t *testing.T) {
	yaw, pitch, roll := float32(0.3), float32(0.7), float32(-1.1)
	m := RotationYawPitchRoll(yaw, pitch, roll)
	p := Vec3{1, 2, 3}

	stepwise := TransformCoord(TransformCoord(TransformCoord(p, RotationZ(roll)), RotationX(pitch)), RotationY(yaw))
	assertVec3(t, stepwise, TransformCoord(p, m))
}

func TestTranslation(t *testing.T) {
	assertVec3(t, Vec3{2, 3, 4}, TransformCoord(Vec3{1, 1, 1}, Translation(1, 2, 3)))
}

func TestWrapDegrees(t *testing.T) {
	assert.InDelta(t, 10, WrapDegrees(370), eps)
	assert.InDelta(t, -10, WrapDegrees(-370), eps)
	assert.InDelta(t, 359, WrapDegrees(359), eps)
}

func TestMatrixBytesIsColumnMajor(t *testing.T) {
	m := mgl32.Mat4FromRows(
		mgl32.Vec4{1, 2, 3, 4},
		mgl32.Vec4{5, 6, 7, 8},
		mgl32.Vec4{9, 10, 11, 12},
		mgl32.Vec4{13, 14, 15, 16},
	)
	b := MatrixBytes(m)
	assert.Len(t, b, 64)

	first := make([]float32, 4)
	for i := range first {
		first[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	assert.Equal(t, []float32{1, 5, 9, 13}, first)
}

func TestDegToRad(t *testing.T) {
	assert.InDelta(t, math.Pi, DegToRad(180), eps)
}
