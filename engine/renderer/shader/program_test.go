package shader

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/Carmen-Shannon/oxy-tutorial/common"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T) (renderer.DeviceContext, renderer.HeadlessBackend) {
	t.Helper()
	backend := renderer.NewHeadlessBackend()
	ctx, err := renderer.NewDeviceContext(backend)
	require.NoError(t, err)
	t.Cleanup(ctx.Shutdown)
	return ctx, backend
}

// bindMesh creates a three vertex mesh of the given stride and binds it on ctx.
func bindMesh(t *testing.T, ctx renderer.DeviceContext, stride uint64) {
	t.Helper()
	backend := ctx.Backend()
	vb, err := backend.CreateBuffer(renderer.BufferDescriptor{Label: "vb", Size: stride * 3, Bind: renderer.BindVertexBuffer}, nil)
	require.NoError(t, err)
	ib, err := backend.CreateBuffer(renderer.BufferDescriptor{Label: "ib", Size: 12, Bind: renderer.BindIndexBuffer}, nil)
	require.NoError(t, err)
	ctx.SetInputBuffers(vb, stride, ib)
}

func textures(t *testing.T, ctx renderer.DeviceContext, n int) []renderer.Handle {
	t.Helper()
	out := make([]renderer.Handle, n)
	for i := range out {
		h, err := ctx.Backend().CreateTexture(renderer.TextureDescriptor{Width: 1, Height: 1}, []byte{255, 255, 255, 255})
		require.NoError(t, err)
		out[i] = h
	}
	return out
}

func TestBuiltInTechniquesCompile(t *testing.T) {
	for name, technique := range techniquesByName {
		t.Run(name, func(t *testing.T) {
			ctx, backend := newTestContext(t)
			p, err := NewProgram(ctx, technique)
			require.NoError(t, err)
			assert.Equal(t, StateCompiled, p.State())

			live := backend.LiveObjects()
			assert.Equal(t, 2, live[renderer.KindShader])
			assert.Equal(t, 2, live[renderer.KindPipeline])
			assert.Equal(t, len(technique.ConstantBuffers), live[renderer.KindBuffer])

			p.Release()
			assert.Equal(t, StateUninitialized, p.State())
			live = backend.LiveObjects()
			assert.Zero(t, live[renderer.KindShader])
			assert.Zero(t, live[renderer.KindPipeline])
			assert.Zero(t, live[renderer.KindBuffer])
			assert.Zero(t, live[renderer.KindSampler])
		})
	}
}

func TestSetParametersTransposesOnce(t *testing.T) {
	ctx, backend := newTestContext(t)
	p, err := NewProgram(ctx, ColorTechnique)
	require.NoError(t, err)

	world := common.Translation(1, 2, 3).Mul4(common.RotationY(0.5))
	require.NotEqual(t, world, world.Transpose())
	view := common.LookAtLH(common.Vec3{0, 1, -10}, common.Vec3{0, 0, 0}, common.Vec3{0, 1, 0})

	require.NoError(t, p.SetParameters(Parameters{World: world, View: view, Projection: ctx.Projection()}))

	writes := backend.Writes()
	require.Len(t, writes, 1)
	data := writes[0].Data
	require.Len(t, data, 192)
	assert.Equal(t, common.MatrixBytes(world.Transpose()), data[0:64])
	assert.NotEqual(t, common.MatrixBytes(world), data[0:64])
	assert.Equal(t, common.MatrixBytes(view.Transpose()), data[64:128])
	assert.Equal(t, common.MatrixBytes(ctx.Projection().Transpose()), data[128:192])
}

func TestLightBufferEncoding(t *testing.T) {
	ctx, backend := newTestContext(t)
	p, err := NewProgram(ctx, LightTechnique)
	require.NoError(t, err)

	params := Parameters{
		World:          common.Identity(),
		View:           common.Identity(),
		Projection:     common.Identity(),
		Textures:       textures(t, ctx, 1),
		CameraPosition: common.Vec3{0, 0, -10},
		Light: LightParameters{
			AmbientColor:  common.Vec4{0.15, 0.15, 0.15, 1},
			DiffuseColor:  common.Vec4{1, 1, 1, 1},
			SpecularColor: common.Vec4{1, 1, 1, 1},
			SpecularPower: 32,
			Direction:     common.Vec3{0, 0, 1},
		},
	}
	require.NoError(t, p.SetParameters(params))

	writes := backend.Writes()
	require.Len(t, writes, 3)

	camera := make([]byte, 16)
	common.PutVec(camera, 0, 0, -10, 0)
	assert.Equal(t, camera, writes[1].Data)

	light := make([]byte, 64)
	common.PutVec(light[0:], 0.15, 0.15, 0.15, 1)
	common.PutVec(light[16:], 1, 1, 1, 1)
	common.PutVec(light[32:], 0, 0, 1, 32)
	common.PutVec(light[48:], 1, 1, 1, 1)
	assert.Equal(t, light, writes[2].Data)
}

func TestMissingShaderFile(t *testing.T) {
	ctx, backend := newTestContext(t)
	sources := fstest.MapFS{
		"color.vs.wgsl": defaultSourceFile(t, "color.vs.wgsl"),
	}

	p, err := NewProgram(ctx, ColorTechnique, WithSources(sources), WithDiagnosticsPath(filepath.Join(t.TempDir(), "shader-error.txt")))
	require.Error(t, err)
	assert.Nil(t, p)
	assert.Equal(t, common.ClassFatalStartup, common.Classify(err))
	assert.True(t, errors.Is(err, common.ErrNotFound))
	assert.Contains(t, err.Error(), "missing shader file")
	assert.Contains(t, err.Error(), "color.ps.wgsl")
	assert.Zero(t, backend.LiveObjects()[renderer.KindShader])
}

func TestCompileErrorWritesDiagnostics(t *testing.T) {
	ctx, backend := newTestContext(t)
	diagnostics := filepath.Join(t.TempDir(), "shader-error.txt")
	sources := fstest.MapFS{
		"color.vs.wgsl": defaultSourceFile(t, "color.vs.wgsl"),
		"color.ps.wgsl": &fstest.MapFile{Data: []byte("fn notAnEntryPoint() {}\n")},
	}

	_, err := NewProgram(ctx, ColorTechnique, WithSources(sources), WithDiagnosticsPath(diagnostics))
	require.Error(t, err)
	assert.Equal(t, common.ClassFatalStartup, common.Classify(err))
	assert.False(t, errors.Is(err, common.ErrNotFound))
	assert.Contains(t, err.Error(), "error compiling shader, check "+diagnostics+" for message")

	written, rerr := os.ReadFile(diagnostics)
	require.NoError(t, rerr)
	assert.Contains(t, string(written), "color.ps.wgsl")
	assert.Contains(t, string(written), "entry point 'main'")

	// The vertex shader compiled before the failure is released again.
	assert.Zero(t, backend.LiveObjects()[renderer.KindShader])
}

func TestInputLayoutMismatch(t *testing.T) {
	ctx, backend := newTestContext(t)
	mismatched := ColorTechnique
	mismatched.Name = "color-on-texture-source"
	mismatched.VertexSource = "texture.vs.wgsl"
	mismatched.PixelSource = "color.ps.wgsl"

	_, err := NewProgram(ctx, mismatched)
	require.Error(t, err)
	assert.Equal(t, common.ClassFatalStartup, common.Classify(err))
	assert.Contains(t, err.Error(), "create input layout")
	assert.Contains(t, err.Error(), "COLOR")
	assert.Zero(t, backend.LiveObjects()[renderer.KindShader])

	short := TextureTechnique
	short.Attributes = short.Attributes[:1]
	_, err = NewProgram(ctx, short)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reads 2 inputs")
}

func TestConstantBufferSizeMismatch(t *testing.T) {
	ctx, _ := newTestContext(t)
	wrong := TranslateTechnique
	wrong.ConstantBuffers = []ConstantBuffer{MatrixBuffer, DiffuseLightBuffer}

	_, err := NewProgram(ctx, wrong)
	require.Error(t, err)
	assert.Equal(t, common.ClassFatalStartup, common.Classify(err))
	assert.Contains(t, err.Error(), "TranslationBuffer is 16 bytes")
}

func TestTextureSlotsMustBeDeclared(t *testing.T) {
	ctx, _ := newTestContext(t)
	wrong := TextureTechnique
	wrong.TextureCount = 2

	_, err := NewProgram(ctx, wrong)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "texture slot 1")
}

func TestConstantRingPerFrame(t *testing.T) {
	ctx, backend := newTestContext(t)
	p, err := NewProgram(ctx, ColorTechnique, WithRingSize(2))
	require.NoError(t, err)
	params := Parameters{World: common.Identity(), View: common.Identity(), Projection: common.Identity()}

	require.NoError(t, ctx.BeginFrame(0, 0, 0, 1))
	require.NoError(t, p.SetParameters(params))
	require.NoError(t, p.SetParameters(params))
	err = p.SetParameters(params)
	assert.Equal(t, common.ClassFrameDropped, common.Classify(err))
	require.NoError(t, ctx.EndFrame())

	writes := backend.Writes()
	require.Len(t, writes, 2)
	assert.Equal(t, uint64(0), writes[0].Offset)
	assert.Equal(t, uint64(renderer.ConstantBufferAlignment), writes[1].Offset)

	require.NoError(t, ctx.BeginFrame(0, 0, 0, 1))
	require.NoError(t, p.SetParameters(params))
	require.NoError(t, ctx.EndFrame())
	assert.Equal(t, uint64(0), backend.Writes()[2].Offset)
}

func TestProgramStateMachine(t *testing.T) {
	ctx, _ := newTestContext(t)
	p, err := NewProgram(ctx, TextureTechnique)
	require.NoError(t, err)
	bindMesh(t, ctx, TextureTechnique.Stride())

	err = p.Draw(3)
	assert.Equal(t, common.ClassFrameDropped, common.Classify(err))
	assert.Equal(t, StateCompiled, p.State())

	err = p.SetParameters(Parameters{})
	assert.Equal(t, common.ClassFrameDropped, common.Classify(err), "texture count mismatch")

	require.NoError(t, p.SetParameters(Parameters{Textures: textures(t, ctx, 1)}))
	assert.Equal(t, StateBound, p.State())

	require.NoError(t, ctx.BeginFrame(0, 0, 0, 1))
	require.NoError(t, p.Draw(3))
	require.NoError(t, p.Draw(3))
	assert.Equal(t, StateBound, p.State())
	require.NoError(t, ctx.EndFrame())

	p.Release()
	assert.Equal(t, StateUninitialized, p.State())
	err = p.SetParameters(Parameters{Textures: textures(t, ctx, 1)})
	assert.Equal(t, common.ClassFrameDropped, common.Classify(err))
	p.Release()
}

func TestDrawUsesBoundDepthState(t *testing.T) {
	ctx, backend := newTestContext(t)
	p, err := NewProgram(ctx, ColorTechnique)
	require.NoError(t, err)
	bindMesh(t, ctx, ColorTechnique.Stride())
	handles := ctx.Handles()

	require.NoError(t, ctx.BeginFrame(0, 0, 0, 1))
	require.NoError(t, p.SetParameters(Parameters{}))
	require.NoError(t, p.Draw(3))
	ctx.SetDepthTestEnabled(false)
	require.NoError(t, p.Draw(3))
	ctx.SetDepthTestEnabled(true)
	require.NoError(t, ctx.EndFrame())

	draws := backend.Draws()
	require.Len(t, draws, 2)
	assert.Equal(t, handles.DepthEnabledState, draws[0].DepthStencilState)
	assert.Equal(t, handles.DepthDisabledState, draws[1].DepthStencilState)
	assert.NotEqual(t, draws[0].Call.Pipeline, draws[1].Call.Pipeline)
	assert.Equal(t, uint32(3), draws[0].Call.IndexCount)
}

func TestDrawRejectsMismatchedMesh(t *testing.T) {
	ctx, _ := newTestContext(t)
	p, err := NewProgram(ctx, ColorTechnique)
	require.NoError(t, err)
	require.NoError(t, p.SetParameters(Parameters{}))

	err = p.Draw(3)
	assert.Equal(t, common.ClassFrameDropped, common.Classify(err), "no mesh bound")

	bindMesh(t, ctx, TextureTechnique.Stride())
	require.NoError(t, ctx.BeginFrame(0, 0, 0, 1))
	err = p.Draw(3)
	assert.Equal(t, common.ClassFrameDropped, common.Classify(err))
	assert.Contains(t, err.Error(), "stride")
	require.NoError(t, ctx.EndFrame())
}

func TestTechniqueLayout(t *testing.T) {
	assert.Equal(t, uint64(28), ColorTechnique.Stride())
	assert.Equal(t, uint64(20), TextureTechnique.Stride())
	assert.Equal(t, uint64(32), LightTechnique.Stride())
	assert.Equal(t, uint64(56), BumpMapTechnique.Stride())

	layout := BumpMapTechnique.InputLayout()
	require.Len(t, layout, 5)
	assert.Equal(t, uint64(0), layout[0].Offset)
	assert.Equal(t, uint64(12), layout[1].Offset)
	assert.Equal(t, uint64(20), layout[2].Offset)
	assert.Equal(t, uint64(32), layout[3].Offset)
	assert.Equal(t, uint64(44), layout[4].Offset)
	assert.Equal(t, uint32(4), layout[4].Location)

	got, ok := TechniqueByName("bumpmap")
	require.True(t, ok)
	assert.Equal(t, BumpMapTechnique.Name, got.Name)
	_, ok = TechniqueByName("raytraced")
	assert.False(t, ok)
}

// defaultSourceFile copies one built-in source into a MapFS entry.
func defaultSourceFile(t *testing.T, name string) *fstest.MapFile {
	t.Helper()
	data, err := fs.ReadFile(DefaultSources(), name)
	require.NoError(t, err)
	return &fstest.MapFile{Data: data}
}
