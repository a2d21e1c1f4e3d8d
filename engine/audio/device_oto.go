//go:build !headless

package audio

import (
	"io"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/ebitengine/oto/v3"
)

// oto allows a single context per process.
var (
	otoOnce    sync.Once
	otoContext *oto.Context
	otoErr     error
)

type otoDevice struct {
	ctx *oto.Context
}

var _ Device = &otoDevice{}

// NewDefaultDevice opens the system sound output through oto and waits until it is ready.
//
// Returns:
//   - Device: the output device
//   - error: the error reported by the audio driver
func NewDefaultDevice() (Device, error) {
	otoOnce.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   int(SampleRate),
			ChannelCount: int(Channels),
			Format:       oto.FormatSignedInt16LE,
		})
		if err != nil {
			otoErr = errors.Wrap(err, "open sound device")
			return
		}
		<-ready
		otoContext = ctx
	})
	if otoErr != nil {
		return nil, otoErr
	}
	return &otoDevice{ctx: otoContext}, nil
}

func (d *otoDevice) NewPlayer(r io.Reader) Player {
	return d.ctx.NewPlayer(r)
}
