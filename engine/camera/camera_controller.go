package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-tutorial/common"
	"github.com/chewxy/math32"
)

// Per-millisecond rates of the controller. Each motion has an acceleration applied while its
// key is held, a cap, and a deceleration applied once released.
const (
	turnAcceleration = 0.01
	turnMaxSpeed     = 0.15
	turnDeceleration = 0.005

	moveAcceleration = 0.001
	moveMaxSpeed     = 0.03
	moveDeceleration = 0.0007

	// maxPitch limits looking up and down, in degrees.
	maxPitch = 90.0
)

// motion indexes the per-direction speeds of the controller.
type motion int

const (
	motionTurnLeft motion = iota
	motionTurnRight
	motionLookUp
	motionLookDown
	motionForward
	motionBackward
	motionCount
)

type cameraControllerImpl struct {
	mu *sync.Mutex

	frameTime float32
	scale     float32
	position  common.Vec3
	rotation  common.Vec3
	speeds    [motionCount]float32
}

// CameraController turns held keys into smooth camera motion. Every motion speeds up while its
// key is held and coasts to a stop after release, independent of frame rate. Rotation is in
// degrees with the same axes as Camera.
type CameraController interface {
	// SetFrameTime sets the duration of the current frame. Call it once per frame before any
	// motion method.
	//
	// Parameters:
	//   - ms: the frame duration in milliseconds
	SetFrameTime(ms float32)

	// SetPosition sets the position directly.
	//
	// Parameters:
	//   - x, y, z: world-space coordinates
	SetPosition(x, y, z float32)

	// SetRotation sets the rotation directly, in degrees.
	//
	// Parameters:
	//   - x, y, z: pitch, yaw and roll
	SetRotation(x, y, z float32)

	// Position returns the controlled position.
	Position() common.Vec3

	// Rotation returns the controlled rotation in degrees.
	Rotation() common.Vec3

	// TurnLeft decreases yaw, wrapping into [0, 360).
	//
	// Parameters:
	//   - keyDown: whether the turn key is held this frame
	TurnLeft(keyDown bool)

	// TurnRight increases yaw, wrapping into [0, 360).
	//
	// Parameters:
	//   - keyDown: whether the turn key is held this frame
	TurnRight(keyDown bool)

	// LookUpward decreases pitch, clamped to -90.
	//
	// Parameters:
	//   - keyDown: whether the look key is held this frame
	LookUpward(keyDown bool)

	// LookDownward increases pitch, clamped to 90.
	//
	// Parameters:
	//   - keyDown: whether the look key is held this frame
	LookDownward(keyDown bool)

	// MoveForward moves along the yaw direction in the XZ plane.
	//
	// Parameters:
	//   - keyDown: whether the move key is held this frame
	MoveForward(keyDown bool)

	// MoveBackward moves against the yaw direction in the XZ plane.
	//
	// Parameters:
	//   - keyDown: whether the move key is held this frame
	MoveBackward(keyDown bool)

	// Apply copies the controlled position and rotation onto cam.
	//
	// Parameters:
	//   - cam: the camera to update
	Apply(cam Camera)
}

// Compile-time interface compliance check
var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a controller at the origin with no rotation.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:    &sync.Mutex{},
		scale: 1,
	}
	for _, option := range options {
		option(cc)
	}
	return cc
}

// --- internal helpers ---

// step updates the speed of m for one frame and returns it. Caller must hold the mutex.
func (cc *cameraControllerImpl) step(m motion, keyDown bool, acceleration, maxSpeed, deceleration float32) float32 {
	t := cc.frameTime * cc.scale
	speed := cc.speeds[m]
	if keyDown {
		speed = min(speed+t*acceleration, t*maxSpeed)
	} else {
		speed = max(speed-t*deceleration, 0)
	}
	cc.speeds[m] = speed
	return speed
}

// wrapYaw keeps yaw in [0, 360). Caller must hold the mutex.
func (cc *cameraControllerImpl) wrapYaw() {
	cc.rotation[1] = math32.Mod(cc.rotation[1], 360)
	if cc.rotation[1] < 0 {
		cc.rotation[1] += 360
	}
}

// move translates along the yaw direction by distance. Caller must hold the mutex.
func (cc *cameraControllerImpl) move(distance float32) {
	yaw := common.DegToRad(cc.rotation[1])
	cc.position[0] += math32.Sin(yaw) * distance
	cc.position[2] += math32.Cos(yaw) * distance
}

// --- CameraController implementation ---

func (cc *cameraControllerImpl) SetFrameTime(ms float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.frameTime = max(ms, 0)
}

func (cc *cameraControllerImpl) SetPosition(x, y, z float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.position = common.Vec3{x, y, z}
}

func (cc *cameraControllerImpl) SetRotation(x, y, z float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.rotation = common.Vec3{x, y, z}
}

func (cc *cameraControllerImpl) Position() common.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position
}

func (cc *cameraControllerImpl) Rotation() common.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.rotation
}

func (cc *cameraControllerImpl) TurnLeft(keyDown bool) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.rotation[1] -= cc.step(motionTurnLeft, keyDown, turnAcceleration, turnMaxSpeed, turnDeceleration)
	cc.wrapYaw()
}

func (cc *cameraControllerImpl) TurnRight(keyDown bool) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.rotation[1] += cc.step(motionTurnRight, keyDown, turnAcceleration, turnMaxSpeed, turnDeceleration)
	cc.wrapYaw()
}

func (cc *cameraControllerImpl) LookUpward(keyDown bool) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.rotation[0] = max(cc.rotation[0]-cc.step(motionLookUp, keyDown, turnAcceleration, turnMaxSpeed, turnDeceleration), -maxPitch)
}

func (cc *cameraControllerImpl) LookDownward(keyDown bool) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.rotation[0] = min(cc.rotation[0]+cc.step(motionLookDown, keyDown, turnAcceleration, turnMaxSpeed, turnDeceleration), maxPitch)
}

func (cc *cameraControllerImpl) MoveForward(keyDown bool) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.move(cc.step(motionForward, keyDown, moveAcceleration, moveMaxSpeed, moveDeceleration))
}

func (cc *cameraControllerImpl) MoveBackward(keyDown bool) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.move(-cc.step(motionBackward, keyDown, moveAcceleration, moveMaxSpeed, moveDeceleration))
}

func (cc *cameraControllerImpl) Apply(cam Camera) {
	cc.mu.Lock()
	p, r := cc.position, cc.rotation
	cc.mu.Unlock()

	cam.SetPosition(p[0], p[1], p[2])
	cam.SetRotation(r[0], r[1], r[2])
}
