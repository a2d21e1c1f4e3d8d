package light

import (
	"github.com/Carmen-Shannon/oxy-tutorial/common"
	"github.com/chewxy/math32"
)

// LightBuilderOption is a function that configures a Light instance during construction.
type LightBuilderOption func(*lightImpl)

// WithAmbientColor is an option builder that sets the ambient colour of the light.
//
// Parameters:
//   - r, g, b, a: the colour components
//
// Returns:
//   - LightBuilderOption: a function that applies the ambient colour option to a lightImpl
func WithAmbientColor(r, g, b, a float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.ambientColor = common.Vec4{r, g, b, a}
	}
}

// WithDiffuseColor is an option builder that sets the diffuse colour of the light.
//
// Parameters:
//   - r, g, b, a: the colour components
//
// Returns:
//   - LightBuilderOption: a function that applies the diffuse colour option to a lightImpl
func WithDiffuseColor(r, g, b, a float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.diffuseColor = common.Vec4{r, g, b, a}
	}
}

// WithSpecularColor is an option builder that sets the specular colour of the light.
//
// Parameters:
//   - r, g, b, a: the colour components
//
// Returns:
//   - LightBuilderOption: a function that applies the specular colour option to a lightImpl
func WithSpecularColor(r, g, b, a float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.specularColor = common.Vec4{r, g, b, a}
	}
}

// WithSpecularPower is an option builder that sets the specular exponent of the light.
//
// Parameters:
//   - power: the exponent
//
// Returns:
//   - LightBuilderOption: a function that applies the specular power option to a lightImpl
func WithSpecularPower(power float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.specularPower = power
	}
}

// WithDirection is an option builder that sets the direction of the light.
// The direction is normalized before storing.
//
// Parameters:
//   - x: the x direction component
//   - y: the y direction component
//   - z: the z direction component
//
// Returns:
//   - LightBuilderOption: a function that applies the direction option to a lightImpl
func WithDirection(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.direction = normalize3(x, y, z)
	}
}

// WithPosition is an option builder that sets the world-space position of the light.
//
// Parameters:
//   - x: the x position component
//   - y: the y position component
//   - z: the z position component
//
// Returns:
//   - LightBuilderOption: a function that applies the position option to a lightImpl
func WithPosition(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.position = common.Vec3{x, y, z}
	}
}

// normalize3 returns (x, y, z) scaled to unit length, or the zero vector unchanged.
func normalize3(x, y, z float32) common.Vec3 {
	length := math32.Sqrt(x*x + y*y + z*z)
	if length == 0 {
		return common.Vec3{}
	}
	inv := 1.0 / length
	return common.Vec3{x * inv, y * inv, z * inv}
}
