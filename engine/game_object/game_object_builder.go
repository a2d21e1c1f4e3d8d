package game_object

import (
	"github.com/Carmen-Shannon/oxy-tutorial/common"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer"
)

// GameObjectBuilderOption is a functional option for configuring a GameObject during construction.
type GameObjectBuilderOption func(*gameObject)

// WithID sets the ID of the GameObject.
//
// Parameters:
//   - id: unique identifier for the GameObject
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the ID
func WithID(id uint64) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.id = id
	}
}

// WithEnabled sets whether the GameObject is drawn.
//
// Parameters:
//   - enabled: true to draw the object, false to skip it
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Enabled state
func WithEnabled(enabled bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.enabled.Store(enabled)
	}
}

// WithTextures sets the texture handles bound for the object, in the slot order of its program.
//
// Parameters:
//   - textures: the texture handles
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the textures
func WithTextures(textures ...renderer.Handle) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.textures = append([]renderer.Handle(nil), textures...)
	}
}

// WithPosition sets the initial position of the GameObject.
//
// Parameters:
//   - x, y, z: position components
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the position
func WithPosition(x, y, z float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.position = common.Vec3{x, y, z}
	}
}

// WithRotation sets the initial rotation of the GameObject in radians.
//
// Parameters:
//   - x, y, z: pitch, yaw and roll
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the rotation
func WithRotation(x, y, z float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.rotation = common.Vec3{x, y, z}
	}
}

// WithRotationSpeed sets the rotation added per nominal frame in radians.
//
// Parameters:
//   - x, y, z: pitch, yaw and roll speed
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the rotation speed
func WithRotationSpeed(x, y, z float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.rotationSpeed = common.Vec3{x, y, z}
	}
}

// WithScale sets the initial scale of the GameObject.
//
// Parameters:
//   - x, y, z: scale components
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the scale
func WithScale(x, y, z float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.scale = common.Vec3{x, y, z}
	}
}
