package audio

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-tutorial/common"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPlayer struct {
	source  io.Reader
	playing bool
	volume  float64
	closed  bool
}

func (p *recordingPlayer) Play()                    { p.playing = true }
func (p *recordingPlayer) Pause()                   { p.playing = false }
func (p *recordingPlayer) IsPlaying() bool          { return p.playing }
func (p *recordingPlayer) SetVolume(volume float64) { p.volume = volume }
func (p *recordingPlayer) Close() error {
	p.closed = true
	return nil
}

type recordingDevice struct {
	mu      sync.Mutex
	players []*recordingPlayer
}

func (d *recordingDevice) NewPlayer(r io.Reader) Player {
	d.mu.Lock()
	defer d.mu.Unlock()
	p := &recordingPlayer{source: r}
	d.players = append(d.players, p)
	return p
}

func writeSound(t *testing.T, samples []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sound01.wav")
	require.NoError(t, os.WriteFile(path, validWAV(samples), 0o644))
	return path
}

func TestSoundPlayLoopsAtFullVolume(t *testing.T) {
	device := &recordingDevice{}
	ctx, err := NewContext(WithDevice(device))
	require.NoError(t, err)
	defer ctx.Shutdown()

	sound, err := ctx.LoadSound(writeSound(t, []byte{1, 2, 3, 4}))
	require.NoError(t, err)
	assert.Equal(t, "sound01.wav", sound.Name())
	assert.Equal(t, 4, sound.Len())
	assert.False(t, sound.Playing())

	require.NoError(t, sound.Play())
	assert.True(t, sound.Playing())
	require.Len(t, device.players, 1)
	assert.Equal(t, DefaultVolume, device.players[0].volume)

	buf := make([]byte, 10)
	n, err := io.ReadFull(device.players[0].source, buf)
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Equal(t, []byte{1, 2, 3, 4, 1, 2, 3, 4, 1, 2}, buf)
}

func TestSoundPlayRewinds(t *testing.T) {
	device := &recordingDevice{}
	ctx, err := NewContext(WithDevice(device), WithLooping(false), WithVolume(0.5))
	require.NoError(t, err)
	defer ctx.Shutdown()

	sound, err := ctx.LoadSound(writeSound(t, []byte{1, 2, 3, 4}))
	require.NoError(t, err)

	require.NoError(t, sound.Play())
	first, err := io.ReadAll(device.players[0].source)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, first)

	require.NoError(t, sound.Play())
	require.Len(t, device.players, 2)
	assert.True(t, device.players[0].closed)
	assert.Equal(t, 0.5, device.players[1].volume)
	second, err := io.ReadAll(device.players[1].source)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, second)

	sound.Stop()
	assert.False(t, sound.Playing())
}

func TestContextShutdownClosesSounds(t *testing.T) {
	device := &recordingDevice{}
	ctx, err := NewContext(WithDevice(device))
	require.NoError(t, err)

	a, err := ctx.LoadSound(writeSound(t, []byte{0, 0, 0, 0}))
	require.NoError(t, err)
	b, err := ctx.LoadSound(writeSound(t, []byte{1, 1, 1, 1}))
	require.NoError(t, err)
	require.NoError(t, a.Play())
	require.NoError(t, b.Play())
	assert.Len(t, ctx.Sounds(), 2)

	ctx.Shutdown()
	ctx.Shutdown()
	for _, p := range device.players {
		assert.True(t, p.closed)
		assert.False(t, p.playing)
	}
	assert.Empty(t, ctx.Sounds())
	assert.Error(t, a.Play())

	_, err = ctx.LoadSound(writeSound(t, []byte{0, 0, 0, 0}))
	assert.Equal(t, common.ClassFatalStartup, common.Classify(err))
}

func TestLoadSoundErrorsAreFatal(t *testing.T) {
	ctx, err := NewContext(WithDevice(&recordingDevice{}))
	require.NoError(t, err)
	defer ctx.Shutdown()

	_, err = ctx.LoadSound(filepath.Join(t.TempDir(), "missing.wav"))
	require.Error(t, err)
	assert.Equal(t, common.ClassFatalStartup, common.Classify(err))
	assert.True(t, errors.Is(err, common.ErrNotFound))

	h := NewWaveHeader(4)
	h.SampleRate = 48000
	path := filepath.Join(t.TempDir(), "bad.wav")
	require.NoError(t, os.WriteFile(path, append(h.Marshal(), 0, 0, 0, 0), 0o644))
	_, err = ctx.LoadSound(path)
	require.Error(t, err)
	assert.Equal(t, common.ClassFatalStartup, common.Classify(err))
	assert.True(t, errors.Is(err, common.ErrMalformedData))
}

func TestWithVolumeClamps(t *testing.T) {
	c := &contextImpl{}
	WithVolume(2)(c)
	assert.Equal(t, 1.0, c.volume)
	WithVolume(-1)(c)
	assert.Equal(t, 0.0, c.volume)
}
