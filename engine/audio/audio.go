package audio

import (
	"log"
	"path/filepath"
	"sync"

	"github.com/Carmen-Shannon/oxy-tutorial/common"
	"github.com/cockroachdb/errors"
)

// DefaultVolume is the player volume of a new Sound, full scale.
const DefaultVolume = 1.0

type contextImpl struct {
	mu *sync.Mutex

	device Device
	loop   bool
	volume float64
	sounds []*soundImpl
	closed bool
}

// Context owns the sound device and every Sound loaded through it. It is independent of the
// renderer.
type Context interface {
	// LoadSound reads a WAV file into a new Sound.
	//
	// Parameters:
	//   - path: the .wav file
	//
	// Returns:
	//   - Sound: the loaded sound
	//   - error: a fatal startup error that also matches ErrNotFound or ErrMalformedData
	LoadSound(path string) (Sound, error)

	// Sounds returns every sound loaded so far, in load order.
	Sounds() []Sound

	// Shutdown stops and closes every sound. Calling it again does nothing.
	Shutdown()
}

// Sound is one loaded sample buffer and the player it plays on.
type Sound interface {
	// Name returns the base name of the file the sound was loaded from.
	Name() string

	// Header returns the parsed WAV header.
	Header() WaveHeader

	// Len returns the sample data size in bytes.
	Len() int

	// Play rewinds to the first sample and starts playback at the context volume.
	//
	// Returns:
	//   - error: an error if the sound was closed
	Play() error

	// Stop pauses playback.
	Stop()

	// Playing reports whether the sound is playing.
	Playing() bool

	// Close stops playback and releases the player.
	Close()
}

var (
	_ Context = &contextImpl{}
	_ Sound   = &soundImpl{}
)

// NewContext creates an audio context. Without WithDevice the system output is opened with
// NewDefaultDevice.
//
// Parameters:
//   - options: functional options applied after defaults
//
// Returns:
//   - Context: the new context
//   - error: a fatal startup error when the device cannot be opened
func NewContext(options ...ContextBuilderOption) (Context, error) {
	c := &contextImpl{
		mu:     &sync.Mutex{},
		loop:   true,
		volume: DefaultVolume,
	}
	for _, option := range options {
		option(c)
	}
	if c.device == nil {
		device, err := NewDefaultDevice()
		if err != nil {
			return nil, common.Fatal(err, "audio")
		}
		c.device = device
	}
	return c, nil
}

func (c *contextImpl) LoadSound(path string) (Sound, error) {
	header, data, err := LoadWAV(path)
	if err != nil {
		return nil, common.Fatal(err, "audio")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, common.Fatal(nil, "audio: load %s after shutdown", path)
	}
	s := &soundImpl{
		mu:     &sync.Mutex{},
		device: c.device,
		name:   filepath.Base(path),
		header: header,
		data:   data,
		loop:   c.loop,
		volume: c.volume,
	}
	c.sounds = append(c.sounds, s)
	log.Printf("audio: loaded %s (%d bytes, %d Hz)", s.name, len(data), header.SampleRate)
	return s, nil
}

func (c *contextImpl) Sounds() []Sound {
	c.mu.Lock()
	defer c.mu.Unlock()
	sounds := make([]Sound, len(c.sounds))
	for i, s := range c.sounds {
		sounds[i] = s
	}
	return sounds
}

func (c *contextImpl) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	for i := len(c.sounds) - 1; i >= 0; i-- {
		c.sounds[i].Close()
	}
	c.sounds = nil
	c.closed = true
}

type soundImpl struct {
	mu *sync.Mutex

	device Device
	name   string
	header WaveHeader
	data   []byte
	loop   bool
	volume float64
	player Player
	closed bool
}

func (s *soundImpl) Name() string {
	return s.name
}

func (s *soundImpl) Header() WaveHeader {
	return s.header
}

func (s *soundImpl) Len() int {
	return len(s.data)
}

func (s *soundImpl) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.Newf("play %s: sound is closed", s.name)
	}
	s.closePlayer()
	s.player = s.device.NewPlayer(newLoopReader(s.data, s.loop))
	s.player.SetVolume(s.volume)
	s.player.Play()
	return nil
}

func (s *soundImpl) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.player != nil {
		s.player.Pause()
	}
}

func (s *soundImpl) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.player != nil && s.player.IsPlaying()
}

func (s *soundImpl) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closePlayer()
	s.closed = true
}

// closePlayer pauses and closes the current player. Caller must hold the mutex.
func (s *soundImpl) closePlayer() {
	if s.player == nil {
		return
	}
	s.player.Pause()
	if err := s.player.Close(); err != nil {
		log.Printf("audio: close %s: %v", s.name, err)
	}
	s.player = nil
}
