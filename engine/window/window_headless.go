package window

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-tutorial/common"
	"github.com/cockroachdb/errors"
	"github.com/cogentcore/webgpu/wgpu"
)

// HeadlessWindow is a Window with no OS window behind it. Key and close events are injected by
// the caller and delivered on the next message loop iteration, in the order they were queued.
type HeadlessWindow interface {
	Window

	// PressKey queues a key press.
	//
	// Parameters:
	//   - keyCode: the virtual key code
	PressKey(keyCode uint32)

	// ReleaseKey queues a key release.
	//
	// Parameters:
	//   - keyCode: the virtual key code
	ReleaseKey(keyCode uint32)

	// ClickClose queues a user close request, as if the close button was clicked.
	ClickClose()

	// Iterations returns how many message loop iterations have run.
	Iterations() uint64
}

type headlessEventKind int

const (
	headlessKeyDown headlessEventKind = iota
	headlessKeyUp
	headlessClose
)

type headlessEvent struct {
	kind    headlessEventKind
	keyCode uint32
}

type headlessWindow struct {
	*engineWindow

	mu         *sync.Mutex
	queue      []headlessEvent
	running    bool
	fullscreen bool
	modes      []common.DisplayMode
	iterations uint64
}

var _ HeadlessWindow = &headlessWindow{}
var _ platform = &headlessWindow{}

// NewHeadlessWindow creates a window that runs its message loop without any display. It
// reports a single display mode matching its size at 60 Hz.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - HeadlessWindow: the created window
func NewHeadlessWindow(options ...WindowBuilderOption) HeadlessWindow {
	w := newEngineWindow(options...)
	hw := &headlessWindow{
		engineWindow: w,
		mu:           &sync.Mutex{},
		running:      true,
		fullscreen:   w.fullscreen,
		modes: []common.DisplayMode{
			{Width: w.width, Height: w.height, Refresh: common.DefaultRefreshRate},
		},
	}
	w.platform = hw
	return hw
}

func (hw *headlessWindow) PressKey(keyCode uint32) {
	hw.push(headlessEvent{kind: headlessKeyDown, keyCode: keyCode})
}

func (hw *headlessWindow) ReleaseKey(keyCode uint32) {
	hw.push(headlessEvent{kind: headlessKeyUp, keyCode: keyCode})
}

func (hw *headlessWindow) ClickClose() {
	hw.push(headlessEvent{kind: headlessClose})
}

func (hw *headlessWindow) Iterations() uint64 {
	hw.mu.Lock()
	defer hw.mu.Unlock()
	return hw.iterations
}

func (hw *headlessWindow) push(e headlessEvent) {
	hw.mu.Lock()
	defer hw.mu.Unlock()
	hw.queue = append(hw.queue, e)
}

func (hw *headlessWindow) pollEvents() bool {
	hw.mu.Lock()
	events := hw.queue
	hw.queue = nil
	hw.iterations++
	hw.mu.Unlock()

	for _, e := range events {
		switch e.kind {
		case headlessKeyDown:
			hw.keyDown(e.keyCode)
		case headlessKeyUp:
			hw.keyUp(e.keyCode)
		case headlessClose:
			hw.requestClose()
			hw.closeRequested()
		}
	}
	return hw.isRunning()
}

func (hw *headlessWindow) isRunning() bool {
	hw.mu.Lock()
	defer hw.mu.Unlock()
	return hw.running
}

func (hw *headlessWindow) requestClose() {
	hw.mu.Lock()
	defer hw.mu.Unlock()
	hw.running = false
}

func (hw *headlessWindow) close() error {
	hw.requestClose()
	return nil
}

func (hw *headlessWindow) surfaceDescriptor() *wgpu.SurfaceDescriptor {
	return nil
}

func (hw *headlessWindow) displayModes() []common.DisplayMode {
	return append([]common.DisplayMode(nil), hw.modes...)
}

func (hw *headlessWindow) setFullscreen(fullscreen bool) error {
	if !hw.isRunning() {
		return errors.New("window is closed")
	}
	hw.mu.Lock()
	defer hw.mu.Unlock()
	hw.fullscreen = fullscreen
	return nil
}
