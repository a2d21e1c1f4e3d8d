package audio

import "github.com/Carmen-Shannon/oxy-tutorial/common"

// ContextBuilderOption is a functional option for configuring a Context via NewContext.
type ContextBuilderOption func(*contextImpl)

// WithDevice sets the output device instead of opening the system one.
//
// Parameters:
//   - device: the device players are created on
//
// Returns:
//   - ContextBuilderOption: a function that applies the device option
func WithDevice(device Device) ContextBuilderOption {
	return func(c *contextImpl) {
		c.device = device
	}
}

// WithLooping sets whether sounds restart after their last sample. Looping is on by default.
//
// Parameters:
//   - loop: true to loop
//
// Returns:
//   - ContextBuilderOption: a function that applies the looping option
func WithLooping(loop bool) ContextBuilderOption {
	return func(c *contextImpl) {
		c.loop = loop
	}
}

// WithVolume sets the player volume of every sound loaded afterwards.
//
// Parameters:
//   - volume: 0 for silence through 1 for full scale
//
// Returns:
//   - ContextBuilderOption: a function that applies the volume option
func WithVolume(volume float64) ContextBuilderOption {
	return func(c *contextImpl) {
		c.volume = common.Clamp(volume, 0, 1)
	}
}
