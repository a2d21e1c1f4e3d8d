package camera

import (
	"github.com/Carmen-Shannon/oxy-tutorial/common"
)

type CameraBuilderOption func(*cameraImpl)

// WithPosition sets the camera's initial eye position.
//
// Parameters:
//   - x, y, z: world-space coordinates
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's position
func WithPosition(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.position = common.Vec3{x, y, z}
	}
}

// WithRotation sets the camera's initial rotation in degrees.
//
// Parameters:
//   - x, y, z: pitch, yaw and roll in degrees
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's rotation
func WithRotation(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.rotation = common.Vec3{x, y, z}
	}
}
