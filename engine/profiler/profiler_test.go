package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	t time.Duration
}

func (c *fakeClock) now() time.Duration {
	return c.t
}

func TestTickMeasuresFrameTime(t *testing.T) {
	clock := &fakeClock{t: 5 * time.Second}
	p := NewProfiler(WithClock(clock.now))

	assert.Zero(t, p.Tick())
	assert.Zero(t, p.Frames())

	clock.t += 16 * time.Millisecond
	assert.Equal(t, 16*time.Millisecond, p.Tick())
	assert.Equal(t, 16*time.Millisecond, p.FrameTime())
	assert.InDelta(t, 16, p.FrameTimeMs(), 1e-4)
	assert.Equal(t, uint64(1), p.Frames())
}

func TestFPSAfterInterval(t *testing.T) {
	clock := &fakeClock{}
	p := NewProfiler(WithClock(clock.now), WithUpdateInterval(time.Second), WithLogging(true))
	p.Tick()

	for range 59 {
		clock.t += time.Second / 60
		p.Tick()
	}
	assert.Zero(t, p.FPS())

	clock.t = time.Second
	p.Tick()
	assert.InDelta(t, 60, p.FPS(), 1e-6)
	assert.Equal(t, uint64(60), p.Frames())
}

func TestRealClockAdvances(t *testing.T) {
	p := NewProfiler()
	p.Tick()
	time.Sleep(time.Millisecond)
	assert.Greater(t, p.Tick(), time.Duration(0))
}
