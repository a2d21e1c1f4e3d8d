package window

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-tutorial/common"
)

// Input is a key state table fed by window key callbacks. Codes outside the table are ignored.
type Input struct {
	mu   *sync.Mutex
	keys [common.KeyCount]bool
}

// NewInput creates an Input with every key released.
//
// Returns:
//   - *Input: the key state table
func NewInput() *Input {
	return &Input{mu: &sync.Mutex{}}
}

// Attach routes the key callbacks of w into the table, replacing any callbacks set before.
//
// Parameters:
//   - w: the window to listen to
func (in *Input) Attach(w Window) {
	w.SetKeyDownCallback(in.KeyDown)
	w.SetKeyUpCallback(in.KeyUp)
}

// KeyDown marks a key as held.
func (in *Input) KeyDown(keyCode uint32) {
	in.set(keyCode, true)
}

// KeyUp marks a key as released.
func (in *Input) KeyUp(keyCode uint32) {
	in.set(keyCode, false)
}

// IsKeyDown reports whether a key is held.
//
// Parameters:
//   - keyCode: the virtual key code
//
// Returns:
//   - bool: true while the key is held
func (in *Input) IsKeyDown(keyCode uint32) bool {
	if keyCode >= common.KeyCount {
		return false
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.keys[keyCode]
}

// IsEscapePressed reports whether the quit key is held.
func (in *Input) IsEscapePressed() bool {
	return in.IsKeyDown(common.KeyQuit)
}

// Reset releases every key.
func (in *Input) Reset() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.keys = [common.KeyCount]bool{}
}

func (in *Input) set(keyCode uint32, down bool) {
	if keyCode >= common.KeyCount {
		return
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	in.keys[keyCode] = down
}
