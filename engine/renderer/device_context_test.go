package renderer

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-tutorial/common"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T, options ...DeviceContextBuilderOption) (DeviceContext, HeadlessBackend) {
	t.Helper()
	backend := NewHeadlessBackend()
	ctx, err := NewDeviceContext(backend, options...)
	require.NoError(t, err)
	return ctx, backend
}

func TestDeviceContextSixtyFrames(t *testing.T) {
	ctx, backend := newTestContext(t, WithScreenSize(800, 600), WithVSync(false))

	for i := 0; i < 60; i++ {
		require.NoError(t, ctx.BeginFrame(0, 0, 0, 1))
		assert.True(t, ctx.Handles().AllLive(), "frame %d", i)
		require.NoError(t, ctx.EndFrame())
	}
	assert.Equal(t, uint64(60), ctx.Frame())
	assert.Equal(t, 60, backend.Presents())
	assert.Equal(t, common.Rational{Numerator: 0, Denominator: 1}, ctx.RefreshRate())

	ctx.Shutdown()
	assert.True(t, ctx.Handles().AllNull())
	assert.Empty(t, backend.LiveObjects())
}

func TestDeviceContextDepthToggle(t *testing.T) {
	ctx, _ := newTestContext(t)
	h := ctx.Handles()
	assert.True(t, ctx.DepthTestEnabled())
	assert.Equal(t, h.DepthEnabledState, ctx.DepthStencilState())

	ctx.SetDepthTestEnabled(false)
	assert.False(t, ctx.DepthTestEnabled())
	assert.Equal(t, h.DepthDisabledState, ctx.DepthStencilState())

	ctx.SetDepthTestEnabled(true)
	assert.True(t, ctx.DepthTestEnabled())
	assert.Equal(t, h.DepthEnabledState, ctx.DepthStencilState())
}

func TestDeviceContextDepthStates(t *testing.T) {
	ctx, backend := newTestContext(t)
	h := ctx.Handles()

	kind, label, ok := backend.Object(h.DepthEnabledState)
	require.True(t, ok)
	assert.Equal(t, KindDepthStencilState, kind)
	assert.Equal(t, "Depth Stencil State", label)

	kind, label, ok = backend.Object(h.DepthDisabledState)
	require.True(t, ok)
	assert.Equal(t, KindDepthStencilState, kind)
	assert.Equal(t, "Depth Disabled Stencil State", label)

	enabled := depthStencilDescriptor(true)
	disabled := depthStencilDescriptor(false)
	assert.True(t, enabled.DepthEnable)
	assert.False(t, disabled.DepthEnable)
	assert.Equal(t, StencilIncrement, enabled.Front.DepthFailOp)
	assert.Equal(t, StencilDecrement, enabled.Back.DepthFailOp)
	enabled.Label, disabled.Label = "", ""
	enabled.DepthEnable = false
	assert.Equal(t, enabled, disabled)
}

func TestDeviceContextBeginTwiceDropsFrame(t *testing.T) {
	ctx, _ := newTestContext(t)

	require.NoError(t, ctx.BeginFrame(0.5, 0.5, 0.5, 1))
	err := ctx.BeginFrame(0.5, 0.5, 0.5, 1)
	require.Error(t, err)
	assert.Equal(t, common.ClassFrameDropped, common.Classify(err))
	assert.True(t, ctx.InFrame())

	require.NoError(t, ctx.EndFrame())
	err = ctx.EndFrame()
	assert.Equal(t, common.ClassFrameDropped, common.Classify(err))
}

func TestDeviceContextFrameAfterShutdown(t *testing.T) {
	ctx, _ := newTestContext(t)
	ctx.Shutdown()

	err := ctx.BeginFrame(0, 0, 0, 1)
	assert.Equal(t, common.ClassFrameDropped, common.Classify(err))
	assert.False(t, ctx.DepthTestEnabled())
}

func TestDeviceContextShutdownIsIdempotent(t *testing.T) {
	ctx, backend := newTestContext(t)
	ctx.Shutdown()
	order := backend.ReleaseOrder()
	ctx.Shutdown()
	assert.Equal(t, order, backend.ReleaseOrder())
}

func TestDeviceContextReleaseOrder(t *testing.T) {
	ctx, backend := newTestContext(t, WithFullscreen(true))
	assert.True(t, backend.Fullscreen())

	ctx.Shutdown()
	assert.False(t, backend.Fullscreen())
	assert.Equal(t, []ObjectKind{
		KindDepthStencilState,
		KindRasterizerState,
		KindDepthStencilView,
		KindDepthStencilState,
		KindDepthStencilBuffer,
		KindRenderTargetView,
		KindSwapChain,
		KindContext,
		KindDevice,
	}, backend.ReleaseOrder())
}

func TestDeviceContextStartupFailureRollsBack(t *testing.T) {
	for _, kind := range []ObjectKind{KindRenderTargetView, KindDepthStencilBuffer, KindDepthStencilView, KindRasterizerState} {
		t.Run(kind.String(), func(t *testing.T) {
			backend := NewHeadlessBackend()
			backend.FailOn(kind)

			ctx, err := NewDeviceContext(backend)
			require.Error(t, err)
			assert.Nil(t, ctx)
			assert.True(t, errors.Is(err, common.ErrFatalStartup))
			assert.Contains(t, err.Error(), "injected failure")
			assert.Empty(t, backend.LiveObjects())
		})
	}
}

func TestDeviceContextRejectsInvalidConfig(t *testing.T) {
	_, err := NewDeviceContext(nil)
	assert.Equal(t, common.ClassFatalStartup, common.Classify(err))

	_, err = NewDeviceContext(NewHeadlessBackend(), WithScreenSize(0, 600))
	assert.Equal(t, common.ClassFatalStartup, common.Classify(err))

	_, err = NewDeviceContext(NewHeadlessBackend(), WithDepthRange(10, 1))
	assert.Equal(t, common.ClassFatalStartup, common.Classify(err))
}

func TestDeviceContextRefreshRate(t *testing.T) {
	ctx, _ := newTestContext(t)
	assert.Equal(t, common.DefaultRefreshRate, ctx.RefreshRate())

	ctx, _ = newTestContext(t, WithScreenSize(1024, 768), WithDisplayModes([]common.DisplayMode{
		{Width: 800, Height: 600, Refresh: common.Rational{Numerator: 60, Denominator: 1}},
		{Width: 1024, Height: 768, Refresh: common.Rational{Numerator: 143995, Denominator: 1000}},
	}))
	assert.Equal(t, common.Rational{Numerator: 143995, Denominator: 1000}, ctx.RefreshRate())
}

func TestDeviceContextViewportAndMatrices(t *testing.T) {
	ctx, backend := newTestContext(t, WithScreenSize(1280, 720), WithDepthRange(0.1, 1000))

	assert.Equal(t, Viewport{Width: 1280, Height: 720, MinDepth: 0, MaxDepth: 1}, backend.Viewport())
	assert.Equal(t, common.Identity(), ctx.World())

	near := common.TransformCoord(common.Vec3{0, 0, 0.1}, ctx.Projection())
	far := common.TransformCoord(common.Vec3{0, 0, 1000}, ctx.Projection())
	assert.InDelta(t, 0, near.Z(), 1e-5)
	assert.InDelta(t, 1, far.Z(), 1e-5)

	edge := common.TransformCoord(common.Vec3{640, 360, 0.1}, ctx.Ortho())
	assert.InDelta(t, 1, edge.X(), 1e-5)
	assert.InDelta(t, 1, edge.Y(), 1e-5)
}
