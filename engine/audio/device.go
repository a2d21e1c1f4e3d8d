package audio

import (
	"io"
	"sync"
)

// Player plays one stream. *oto.Player satisfies it.
type Player interface {
	Play()
	Pause()
	IsPlaying() bool
	SetVolume(volume float64)
	Close() error
}

// Device opens players on the sound output. The stream format is always 44.1 kHz 16-bit
// stereo little-endian PCM.
type Device interface {
	// NewPlayer creates a paused player that reads samples from r.
	//
	// Parameters:
	//   - r: the sample source
	//
	// Returns:
	//   - Player: the new player
	NewPlayer(r io.Reader) Player
}

// loopReader serves data once, or forever when loop is set, restarting after the last byte.
type loopReader struct {
	mu   sync.Mutex
	data []byte
	pos  int
	loop bool
}

func newLoopReader(data []byte, loop bool) *loopReader {
	return &loopReader{data: data, loop: loop}
}

func (l *loopReader) Read(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.data) == 0 {
		return 0, io.EOF
	}
	n := 0
	for n < len(p) {
		if l.pos == len(l.data) {
			if !l.loop {
				break
			}
			l.pos = 0
		}
		c := copy(p[n:], l.data[l.pos:])
		n += c
		l.pos += c
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}
