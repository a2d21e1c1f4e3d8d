package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-tutorial/common"
)

var (
	// referenceLook is the look direction before rotation.
	referenceLook = common.Vec3{0, 0, 1}

	// referenceUp is the up direction before rotation.
	referenceUp = common.Vec3{0, 1, 0}
)

type cameraImpl struct {
	mu *sync.Mutex

	position common.Vec3
	rotation common.Vec3

	lookAt         common.Vec3
	up             common.Vec3
	viewMatrix     common.Mat4
	baseViewMatrix common.Mat4
}

// Camera holds a position and a rotation and turns them into a left-handed view matrix.
// Rotation is stored in degrees about the X, Y and Z axes (pitch, yaw and roll).
type Camera interface {
	// SetPosition sets the eye position. No validation is applied.
	//
	// Parameters:
	//   - x, y, z: world-space coordinates
	SetPosition(x, y, z float32)

	// SetRotation sets the rotation in degrees. No validation or wrapping is applied.
	//
	// Parameters:
	//   - x: pitch, rotation about the X axis
	//   - y: yaw, rotation about the Y axis
	//   - z: roll, rotation about the Z axis
	SetRotation(x, y, z float32)

	// Position returns the eye position.
	Position() common.Vec3

	// Rotation returns the rotation in degrees.
	Rotation() common.Vec3

	// Render rebuilds the view matrix from the current position and rotation. It is a pure
	// function of those two values: calling it again without changing them yields the same
	// matrix, and it never modifies them.
	Render()

	// ViewMatrix returns the matrix built by the last Render.
	ViewMatrix() common.Mat4

	// LookAt returns the look-at point used by the last Render.
	LookAt() common.Vec3

	// Up returns the rotated up vector used by the last Render.
	Up() common.Vec3

	// RenderBaseViewMatrix runs Render and keeps the result as the base view matrix, which
	// 2D overlays are drawn with so they stay fixed while the camera later moves.
	RenderBaseViewMatrix()

	// BaseViewMatrix returns the matrix stored by RenderBaseViewMatrix.
	BaseViewMatrix() common.Mat4
}

var _ Camera = &cameraImpl{}

// NewCamera creates a camera at the origin with no rotation. Render has already been run,
// so ViewMatrix is valid immediately.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:             &sync.Mutex{},
		baseViewMatrix: common.Identity(),
	}
	for _, option := range options {
		option(c)
	}
	c.render()
	return c
}

func (c *cameraImpl) SetPosition(x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = common.Vec3{x, y, z}
}

func (c *cameraImpl) SetRotation(x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rotation = common.Vec3{x, y, z}
}

func (c *cameraImpl) Position() common.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) Rotation() common.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rotation
}

func (c *cameraImpl) Render() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.render()
}

func (c *cameraImpl) ViewMatrix() common.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) LookAt() common.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lookAt
}

func (c *cameraImpl) Up() common.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) RenderBaseViewMatrix() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.render()
	c.baseViewMatrix = c.viewMatrix
}

func (c *cameraImpl) BaseViewMatrix() common.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.baseViewMatrix
}

// render rotates the reference look and up vectors, offsets the look vector by the
// position and builds the view matrix. Caller must hold the mutex.
func (c *cameraImpl) render() {
	c.lookAt, c.up, c.viewMatrix = ViewMatrix(c.position, c.rotation)
}

// ViewMatrix computes the view matrix for an eye at position with rotation in degrees
// (pitch, yaw, roll about X, Y, Z).
//
// Parameters:
//   - position: the eye position
//   - rotation: the rotation in degrees
//
// Returns:
//   - lookAt: position plus the rotated +Z look direction
//   - up: the rotated +Y up direction
//   - view: the left-handed look-at matrix
func ViewMatrix(position, rotation common.Vec3) (lookAt, up common.Vec3, view common.Mat4) {
	pitch := common.DegToRad(rotation[0])
	yaw := common.DegToRad(rotation[1])
	roll := common.DegToRad(rotation[2])
	rot := common.RotationYawPitchRoll(yaw, pitch, roll)

	look := common.TransformCoord(referenceLook, rot)
	up = common.TransformCoord(referenceUp, rot)
	lookAt = position.Add(look)
	return lookAt, up, common.LookAtLH(position, lookAt, up)
}
