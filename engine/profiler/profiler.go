package profiler

import (
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/loov/hrtime"
)

// Profiler measures frame time and frame rate with the high resolution clock, and optionally
// logs frame rate and memory statistics at a configurable interval.
type Profiler struct {
	mu *sync.Mutex

	now            func() time.Duration
	updateInterval time.Duration
	logging        bool

	started     bool
	last        time.Duration
	frameTime   time.Duration
	frames      uint64
	windowStart time.Duration
	windowCount int
	fps         float64

	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second and logging is off.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		mu:             &sync.Mutex{},
		now:            hrtime.Now,
		updateInterval: time.Second,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Tick should be called once per frame. The first call starts the clock and returns zero.
// Every later call returns the time elapsed since the previous call. Once a full update
// interval has elapsed the frame rate is recomputed, and logged when logging is on.
//
// Returns:
//   - time.Duration: the duration of the frame that just ended
func (p *Profiler) Tick() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	current := p.now()
	if !p.started {
		p.started = true
		p.last = current
		p.windowStart = current
		return 0
	}

	p.frameTime = current - p.last
	p.last = current
	p.frames++
	p.windowCount++

	elapsed := current - p.windowStart
	if elapsed >= p.updateInterval {
		p.fps = float64(p.windowCount) / elapsed.Seconds()
		if p.logging {
			p.logStats(elapsed)
		}
		p.windowCount = 0
		p.windowStart = current
	}
	return p.frameTime
}

// SetLogging turns the periodic statistics line on or off.
//
// Parameters:
//   - enabled: true to log once per update interval
func (p *Profiler) SetLogging(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logging = enabled
}

// FrameTime returns the duration of the last completed frame.
func (p *Profiler) FrameTime() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frameTime
}

// FrameTimeMs returns the duration of the last completed frame in milliseconds.
func (p *Profiler) FrameTimeMs() float32 {
	return float32(p.FrameTime().Seconds() * 1000)
}

// FPS returns the frame rate measured over the last full update interval, 0 before one has
// elapsed.
func (p *Profiler) FPS() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fps
}

// Frames returns the number of completed frames.
func (p *Profiler) Frames() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frames
}

// logStats writes FPS, heap usage, allocation rate, GC count/pause times and total memory.
func (p *Profiler) logStats(elapsed time.Duration) {
	runtime.ReadMemStats(&p.memStats)
	// Alloc: Bytes of allocated heap objects (live memory)
	// TotalAlloc: Cumulative bytes allocated for heap objects (increases forever, tracks churn)
	// Sys: Total bytes of memory obtained from the OS (actual process footprint)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024

	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of last 256 GC pauses
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			maxPauseUs = max(maxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	log.Printf("[Profiler] FPS: %.2f | Frame: %.3f ms | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
		p.fps, p.frameTime.Seconds()*1000, allocMB, allocRateMB, gcCount, lastPauseUs, maxPauseUs, sysMB)

	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
}
