package light

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-tutorial/common"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer/shader"
)

// Defaults of a new Light: a white directional light shining along +Z with no ambient term
// and a dim white specular highlight.
var (
	DefaultAmbientColor  = common.Vec4{0, 0, 0, 1}
	DefaultDiffuseColor  = common.Vec4{1, 1, 1, 1}
	DefaultSpecularColor = common.Vec4{1, 1, 1, 1}
	DefaultDirection     = common.Vec3{0, 0, 1}
)

// DefaultSpecularPower is the specular exponent of a new Light.
const DefaultSpecularPower float32 = 32

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	mu *sync.Mutex

	ambientColor  common.Vec4
	diffuseColor  common.Vec4
	specularColor common.Vec4
	specularPower float32
	direction     common.Vec3
	position      common.Vec3
}

// Light is a directional light with ambient, diffuse and specular terms. The position is only
// read by techniques that need a point to light from, such as the light-map demos.
type Light interface {
	// AmbientColor returns the colour added to every lit pixel.
	AmbientColor() common.Vec4

	// DiffuseColor returns the colour scaled by the Lambert term.
	DiffuseColor() common.Vec4

	// SpecularColor returns the colour of the specular highlight.
	SpecularColor() common.Vec4

	// SpecularPower returns the specular exponent. Larger values give a smaller highlight.
	SpecularPower() float32

	// Direction returns the normalized direction the light travels in.
	Direction() common.Vec3

	// Position returns the world-space position of the light.
	Position() common.Vec3

	// SetAmbientColor sets the ambient colour.
	//
	// Parameters:
	//   - r, g, b, a: the colour components
	SetAmbientColor(r, g, b, a float32)

	// SetDiffuseColor sets the diffuse colour.
	//
	// Parameters:
	//   - r, g, b, a: the colour components
	SetDiffuseColor(r, g, b, a float32)

	// SetSpecularColor sets the specular colour.
	//
	// Parameters:
	//   - r, g, b, a: the colour components
	SetSpecularColor(r, g, b, a float32)

	// SetSpecularPower sets the specular exponent.
	//
	// Parameters:
	//   - power: the exponent
	SetSpecularPower(power float32)

	// SetDirection sets the direction the light travels in. The vector is normalized before
	// storing; a zero vector is stored as is.
	//
	// Parameters:
	//   - x, y, z: the direction components
	SetDirection(x, y, z float32)

	// SetPosition sets the world-space position.
	//
	// Parameters:
	//   - x, y, z: world-space coordinates
	SetPosition(x, y, z float32)

	// ShaderParameters returns the light in the form shader programs consume.
	//
	// Returns:
	//   - shader.LightParameters: the colours, exponent and direction
	ShaderParameters() shader.LightParameters
}

var _ Light = &lightImpl{}

// NewLight creates a Light from the defaults and the given options.
//
// Parameters:
//   - options: functional options applied after defaults
//
// Returns:
//   - Light: the new light
func NewLight(options ...LightBuilderOption) Light {
	l := &lightImpl{
		mu:            &sync.Mutex{},
		ambientColor:  DefaultAmbientColor,
		diffuseColor:  DefaultDiffuseColor,
		specularColor: DefaultSpecularColor,
		specularPower: DefaultSpecularPower,
		direction:     DefaultDirection,
	}
	for _, option := range options {
		option(l)
	}
	return l
}

func (l *lightImpl) AmbientColor() common.Vec4 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ambientColor
}

func (l *lightImpl) DiffuseColor() common.Vec4 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.diffuseColor
}

func (l *lightImpl) SpecularColor() common.Vec4 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.specularColor
}

func (l *lightImpl) SpecularPower() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.specularPower
}

func (l *lightImpl) Direction() common.Vec3 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.direction
}

func (l *lightImpl) Position() common.Vec3 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.position
}

func (l *lightImpl) SetAmbientColor(r, g, b, a float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ambientColor = common.Vec4{r, g, b, a}
}

func (l *lightImpl) SetDiffuseColor(r, g, b, a float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.diffuseColor = common.Vec4{r, g, b, a}
}

func (l *lightImpl) SetSpecularColor(r, g, b, a float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.specularColor = common.Vec4{r, g, b, a}
}

func (l *lightImpl) SetSpecularPower(power float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.specularPower = power
}

func (l *lightImpl) SetDirection(x, y, z float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.direction = normalize3(x, y, z)
}

func (l *lightImpl) SetPosition(x, y, z float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.position = common.Vec3{x, y, z}
}

func (l *lightImpl) ShaderParameters() shader.LightParameters {
	l.mu.Lock()
	defer l.mu.Unlock()
	return shader.LightParameters{
		AmbientColor:  l.ambientColor,
		DiffuseColor:  l.diffuseColor,
		SpecularColor: l.specularColor,
		SpecularPower: l.specularPower,
		Direction:     l.direction,
	}
}
