package camera

import (
	"github.com/Carmen-Shannon/oxy-tutorial/common"
)

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithStartPosition sets the initial controlled position.
//
// Parameters:
//   - x, y, z: world-space coordinates
//
// Returns:
//   - CameraControllerOption: functional option to set the position
func WithStartPosition(x, y, z float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.position = common.Vec3{x, y, z}
	}
}

// WithStartRotation sets the initial controlled rotation in degrees.
//
// Parameters:
//   - x, y, z: pitch, yaw and roll
//
// Returns:
//   - CameraControllerOption: functional option to set the rotation
func WithStartRotation(x, y, z float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.rotation = common.Vec3{x, y, z}
	}
}

// WithSpeedScale multiplies every acceleration, cap and deceleration.
//
// Parameters:
//   - scale: the multiplier, 1 for the default feel
//
// Returns:
//   - CameraControllerOption: functional option to set the speed scale
func WithSpeedScale(scale float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.scale = scale
	}
}
