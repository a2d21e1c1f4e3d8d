package camera

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-tutorial/common"
	"github.com/stretchr/testify/assert"
)

func assertVec3(t *testing.T, want, got common.Vec3) {
	t.Helper()
	assert.InDeltaSlice(t, want[:], got[:], 1e-5)
}

func TestCameraReferenceOrientation(t *testing.T) {
	cam := NewCamera()
	cam.SetPosition(0, 0, -10)
	cam.SetRotation(0, 0, 0)
	cam.Render()

	assertVec3(t, common.Vec3{0, 0, -9}, cam.LookAt())
	assertVec3(t, common.Vec3{0, 1, 0}, cam.Up())

	view := cam.ViewMatrix()
	assertVec3(t, common.Vec3{0, 0, 0}, common.TransformCoord(cam.Position(), view))
	assertVec3(t, common.Vec3{0, 0, 1}, common.TransformCoord(cam.LookAt(), view))
}

func TestCameraRenderIsPure(t *testing.T) {
	cam := NewCamera(WithPosition(3, -2, -7), WithRotation(15, 30, 5))
	cam.Render()
	first := cam.ViewMatrix()

	for i := 0; i < 10; i++ {
		cam.Render()
		assert.Equal(t, first, cam.ViewMatrix())
	}
	assert.Equal(t, common.Vec3{3, -2, -7}, cam.Position())
	assert.Equal(t, common.Vec3{15, 30, 5}, cam.Rotation())

	_, _, view := ViewMatrix(common.Vec3{3, -2, -7}, common.Vec3{15, 30, 5})
	assert.Equal(t, first, view)
}

func TestCameraYawTurnsTowardsX(t *testing.T) {
	cam := NewCamera(WithRotation(0, 90, 0))
	cam.Render()

	assertVec3(t, common.Vec3{1, 0, 0}, cam.LookAt())
	assertVec3(t, common.Vec3{0, 1, 0}, cam.Up())
}

func TestCameraPitchTiltsDown(t *testing.T) {
	cam := NewCamera(WithRotation(90, 0, 0))
	cam.Render()

	assertVec3(t, common.Vec3{0, -1, 0}, cam.LookAt())
	assertVec3(t, common.Vec3{0, 0, 1}, cam.Up())
}

func TestCameraSettersDoNotRender(t *testing.T) {
	cam := NewCamera()
	before := cam.ViewMatrix()

	cam.SetPosition(1, 2, 3)
	cam.SetRotation(10, 20, 30)
	assert.Equal(t, before, cam.ViewMatrix())

	cam.Render()
	assert.NotEqual(t, before, cam.ViewMatrix())
}

func TestCameraBaseViewMatrix(t *testing.T) {
	cam := NewCamera(WithPosition(0, 0, -10))
	assert.Equal(t, common.Identity(), cam.BaseViewMatrix())

	cam.RenderBaseViewMatrix()
	base := cam.BaseViewMatrix()
	assert.Equal(t, cam.ViewMatrix(), base)

	cam.SetRotation(0, 45, 0)
	cam.Render()
	assert.Equal(t, base, cam.BaseViewMatrix())
	assert.NotEqual(t, base, cam.ViewMatrix())
}

func TestControllerTurnAcceleratesAndCoasts(t *testing.T) {
	cc := NewCameraController()
	cc.SetFrameTime(16)

	cc.TurnRight(true)
	first := cc.Rotation()[1]
	assert.InDelta(t, 0.16, first, 1e-5)

	cc.TurnRight(true)
	assert.InDelta(t, 0.48, cc.Rotation()[1], 1e-5)

	for i := 0; i < 100; i++ {
		cc.TurnRight(true)
	}
	before := cc.Rotation()[1]
	cc.TurnRight(true)
	assert.InDelta(t, 16*turnMaxSpeed, cc.Rotation()[1]-before, 1e-4)

	for i := 0; i < 100; i++ {
		cc.TurnRight(false)
	}
	stopped := cc.Rotation()[1]
	cc.TurnRight(false)
	assert.Equal(t, stopped, cc.Rotation()[1])
}

func TestControllerYawWraps(t *testing.T) {
	cc := NewCameraController()
	cc.SetFrameTime(16)
	cc.TurnLeft(true)

	yaw := cc.Rotation()[1]
	assert.InDelta(t, 360-0.16, yaw, 1e-4)
	assert.GreaterOrEqual(t, yaw, float32(0))
	assert.Less(t, yaw, float32(360))
}

func TestControllerPitchClamps(t *testing.T) {
	cc := NewCameraController(WithStartRotation(89.9, 0, 0))
	cc.SetFrameTime(1000)
	cc.LookDownward(true)
	assert.Equal(t, float32(maxPitch), cc.Rotation()[0])

	cc.SetRotation(-89.9, 0, 0)
	cc.LookUpward(true)
	assert.Equal(t, float32(-maxPitch), cc.Rotation()[0])
}

func TestControllerMovesAlongYaw(t *testing.T) {
	cc := NewCameraController(WithStartPosition(0, 0, -10), WithStartRotation(0, 90, 0))
	cc.SetFrameTime(10)
	cc.MoveForward(true)

	p := cc.Position()
	assert.InDelta(t, 0.01, p[0], 1e-5)
	assert.InDelta(t, -10, p[2], 1e-5)

	cam := NewCamera()
	cc.Apply(cam)
	assert.Equal(t, p, cam.Position())
	assert.Equal(t, common.Vec3{0, 90, 0}, cam.Rotation())
}
