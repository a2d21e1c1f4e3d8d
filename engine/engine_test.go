package engine

import (
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-tutorial/common"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/audio"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/config"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/profiler"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/scene"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/window"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

type fakePlayer struct {
	mu      sync.Mutex
	playing bool
	played  int
	closed  bool
}

func (p *fakePlayer) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = true
	p.played++
}

func (p *fakePlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
}

func (p *fakePlayer) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *fakePlayer) SetVolume(float64) {}

func (p *fakePlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
	p.closed = true
	return nil
}

type fakeDevice struct {
	mu      sync.Mutex
	players []*fakePlayer
}

func (d *fakeDevice) NewPlayer(io.Reader) audio.Player {
	d.mu.Lock()
	defer d.mu.Unlock()
	p := &fakePlayer{}
	d.players = append(d.players, p)
	return p
}

// steppingClock advances by step every time it is read.
func steppingClock(step time.Duration) func() time.Duration {
	var now time.Duration
	return func() time.Duration {
		now += step
		return now
	}
}

func newHeadlessEngine(t *testing.T, options ...EngineBuilderOption) (Engine, window.HeadlessWindow, renderer.HeadlessBackend) {
	t.Helper()
	w := window.NewHeadlessWindow()
	backend := renderer.NewHeadlessBackend()
	options = append([]EngineBuilderOption{
		WithWindow(w),
		WithBackend(backend),
		WithDeviceOptions(renderer.WithVSync(false)),
		WithSceneOptions(scene.WithTechnique(shader.ColorTechnique)),
		WithProfiler(profiler.NewProfiler(profiler.WithClock(steppingClock(time.Second / 60)))),
	}, options...)
	return NewEngine(options...), w, backend
}

func assertNothingLive(t *testing.T, backend renderer.HeadlessBackend) {
	t.Helper()
	for kind, n := range backend.LiveObjects() {
		assert.Zero(t, n, "live %s objects", kind)
	}
}

func TestRunHeadlessFrameBudget(t *testing.T) {
	e, w, backend := newHeadlessEngine(t, WithFrameBudget(60))

	liveFrames := 0
	e.SetTickCallback(func(float32) {
		ctx := e.Scene().DeviceContext()
		width, height := ctx.ScreenSize()
		assert.Equal(t, 800, width)
		assert.Equal(t, 600, height)
		if ctx.Handles().AllLive() {
			liveFrames++
		}
	})

	require.NoError(t, e.Run())

	assert.Equal(t, uint64(60), e.Frames())
	assert.Equal(t, 60, liveFrames)
	assert.Equal(t, 60, backend.Presents())
	assert.Len(t, backend.Draws(), 60)
	assert.True(t, e.Scene().DeviceContext().Handles().AllNull())
	assert.False(t, w.IsRunning())
	assert.Zero(t, e.Scene().DroppedFrames())
	assertNothingLive(t, backend)
}

func TestRunStopsOnQuitKey(t *testing.T) {
	e, w, backend := newHeadlessEngine(t)
	w.PressKey(common.KeyQuit)

	require.NoError(t, e.Run())

	assert.Zero(t, e.Frames())
	assert.Zero(t, backend.Presents())
	assertNothingLive(t, backend)
}

func TestRunStopsOnClose(t *testing.T) {
	e, w, backend := newHeadlessEngine(t)
	w.ClickClose()

	require.NoError(t, e.Run())

	assert.Zero(t, e.Frames())
	assert.True(t, e.Scene().DeviceContext().Handles().AllNull())
	assertNothingLive(t, backend)
}

func TestRunQuitFromTick(t *testing.T) {
	e, _, _ := newHeadlessEngine(t)
	e.SetTickCallback(func(float32) {
		if e.Frames() == 4 {
			e.Quit()
		}
	})

	require.NoError(t, e.Run())
	assert.Equal(t, uint64(5), e.Frames())
}

func TestRunArrowKeysTurnCamera(t *testing.T) {
	e, w, _ := newHeadlessEngine(t, WithFrameBudget(10))
	w.PressKey(common.KeyRight)

	var yaw float32
	var position float32
	e.SetTickCallback(func(float32) {
		cam := e.Scene().Camera()
		yaw = cam.Rotation().Y()
		position = cam.Position().Z()
	})

	require.NoError(t, e.Run())
	assert.Greater(t, yaw, float32(0))
	assert.Less(t, yaw, float32(180))
	assert.Equal(t, float32(-10), position)
}

func TestRunMissingAssetIsFatal(t *testing.T) {
	e, w, backend := newHeadlessEngine(t, WithAssets(scene.Assets{
		Mesh: filepath.Join(t.TempDir(), "missing.txt"),
	}))

	err := e.Run()
	require.Error(t, err)
	assert.Equal(t, common.ClassFatalStartup, common.Classify(err))
	assert.True(t, errors.Is(err, common.ErrNotFound))
	assert.Zero(t, e.Frames())
	assert.Zero(t, backend.Presents())
	assert.False(t, w.IsRunning())
	assertNothingLive(t, backend)
}

func TestRunPlaysSound(t *testing.T) {
	samples := []byte{1, 0, 2, 0, 3, 0, 4, 0}
	path := filepath.Join(t.TempDir(), "sound01.wav")
	data := append(audio.NewWaveHeader(uint32(len(samples))).Marshal(), samples...)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	device := &fakeDevice{}
	e, _, _ := newHeadlessEngine(t, WithFrameBudget(2), WithSound(path, audio.WithDevice(device)))

	require.NoError(t, e.Run())

	require.Len(t, device.players, 1)
	p := device.players[0]
	assert.Equal(t, 1, p.played)
	assert.True(t, p.closed)
	require.NotNil(t, e.Audio())
	assert.Empty(t, e.Audio().Sounds())
}

func TestRunMalformedSoundIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sound01.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF....WAVEfmt "), 0o644))

	e, _, backend := newHeadlessEngine(t, WithSound(path, audio.WithDevice(&fakeDevice{})))

	err := e.Run()
	require.Error(t, err)
	assert.Equal(t, common.ClassFatalStartup, common.Classify(err))
	assert.True(t, errors.Is(err, common.ErrMalformedData))
	assert.Zero(t, e.Frames())
	assertNothingLive(t, backend)
}

func TestRunPreconditions(t *testing.T) {
	err := NewEngine().Run()
	assert.Equal(t, common.ClassFatalStartup, common.Classify(err))

	err = NewEngine(WithWindow(window.NewHeadlessWindow())).Run()
	assert.Equal(t, common.ClassFatalStartup, common.Classify(err))

	e, _, _ := newHeadlessEngine(t, WithFrameBudget(1))
	require.NoError(t, e.Run())
	assert.Equal(t, common.ClassFatalStartup, common.Classify(e.Run()))
}

func TestSetRenderFrameLimit(t *testing.T) {
	e := NewEngine(WithRenderFrameLimit(50)).(*engine)
	assert.Equal(t, 20*time.Millisecond, e.renderFrameLimit)
	e.SetRenderFrameLimit(0)
	assert.Zero(t, e.renderFrameLimit)
}

func TestConfigOptions(t *testing.T) {
	dir := t.TempDir()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	f, err := os.Create(filepath.Join(dir, "stone01.bmp"))
	require.NoError(t, err)
	require.NoError(t, bmp.Encode(f, img))
	require.NoError(t, f.Close())

	samples := []byte{1, 0, 2, 0}
	wav := append(audio.NewWaveHeader(uint32(len(samples))).Marshal(), samples...)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sound01.wav"), wav, 0o644))

	cfg, err := config.Decode(strings.NewReader(`
[screen]
vsync = false

[assets]
dir = "` + filepath.ToSlash(dir) + `"
textures = ["stone01.bmp"]

[audio]
enabled = true
file = "sound01.wav"

[scene]
technique = "texture"

[debug]
frames = 3
`))
	require.NoError(t, err)

	device := &fakeDevice{}
	backend := renderer.NewHeadlessBackend()
	options := append(ConfigOptions(cfg),
		WithWindow(window.NewHeadlessWindow()),
		WithBackend(backend),
		WithSound(cfg.Resolve(cfg.Audio.File), audio.WithDevice(device)),
	)
	e := NewEngine(options...)

	require.NoError(t, e.Run())
	assert.Equal(t, uint64(3), e.Frames())
	assert.Equal(t, "texture", e.Scene().Technique().Name)
	assert.False(t, e.Scene().DeviceContext().VSync())
	draws := backend.Draws()
	require.Len(t, draws, 3)
	assert.Len(t, draws[0].Call.Textures, 1)
	require.Len(t, device.players, 1)
	assertNothingLive(t, backend)
}
