package light

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-tutorial/common"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer/shader"
	"github.com/stretchr/testify/assert"
)

func TestNewLightDefaults(t *testing.T) {
	l := NewLight()

	assert.Equal(t, DefaultAmbientColor, l.AmbientColor())
	assert.Equal(t, DefaultDiffuseColor, l.DiffuseColor())
	assert.Equal(t, DefaultSpecularColor, l.SpecularColor())
	assert.Equal(t, DefaultSpecularPower, l.SpecularPower())
	assert.Equal(t, DefaultDirection, l.Direction())
	assert.Equal(t, common.Vec3{}, l.Position())
}

func TestLightOptions(t *testing.T) {
	l := NewLight(
		WithAmbientColor(0.15, 0.15, 0.15, 1),
		WithDiffuseColor(1, 0, 1, 1),
		WithSpecularColor(0.5, 0.5, 0.5, 1),
		WithSpecularPower(16),
		WithDirection(0, 0, 2),
		WithPosition(1, 2, 3),
	)

	assert.Equal(t, common.Vec4{0.15, 0.15, 0.15, 1}, l.AmbientColor())
	assert.Equal(t, common.Vec4{1, 0, 1, 1}, l.DiffuseColor())
	assert.Equal(t, common.Vec4{0.5, 0.5, 0.5, 1}, l.SpecularColor())
	assert.Equal(t, float32(16), l.SpecularPower())
	assert.Equal(t, common.Vec3{0, 0, 1}, l.Direction())
	assert.Equal(t, common.Vec3{1, 2, 3}, l.Position())
}

func TestLightSetters(t *testing.T) {
	l := NewLight()
	l.SetDirection(3, 0, 4)
	dir := l.Direction()
	assert.InDeltaSlice(t, []float32{0.6, 0, 0.8}, dir[:], 1e-6)

	l.SetDirection(0, 0, 0)
	assert.Equal(t, common.Vec3{}, l.Direction())

	l.SetAmbientColor(0.1, 0.2, 0.3, 1)
	l.SetDiffuseColor(0.4, 0.5, 0.6, 1)
	l.SetSpecularColor(0.7, 0.8, 0.9, 1)
	l.SetSpecularPower(8)
	l.SetPosition(-1, 0, 1)
	assert.Equal(t, common.Vec4{0.1, 0.2, 0.3, 1}, l.AmbientColor())
	assert.Equal(t, common.Vec4{0.4, 0.5, 0.6, 1}, l.DiffuseColor())
	assert.Equal(t, common.Vec4{0.7, 0.8, 0.9, 1}, l.SpecularColor())
	assert.Equal(t, float32(8), l.SpecularPower())
	assert.Equal(t, common.Vec3{-1, 0, 1}, l.Position())
}

func TestLightShaderParameters(t *testing.T) {
	l := NewLight(WithAmbientColor(0.1, 0.1, 0.1, 1), WithSpecularPower(4))

	assert.Equal(t, shader.LightParameters{
		AmbientColor:  common.Vec4{0.1, 0.1, 0.1, 1},
		DiffuseColor:  DefaultDiffuseColor,
		SpecularColor: DefaultSpecularColor,
		SpecularPower: 4,
		Direction:     DefaultDirection,
	}, l.ShaderParameters())
}
