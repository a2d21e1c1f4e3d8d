package common

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyW        = 87  // W key (ASCII)
	KeyA        = 65  // A key (ASCII)
	KeyS        = 83  // S key (ASCII)
	KeyD        = 68  // D key (ASCII)
	KeyF        = 70  // F key (ASCII)
	KeyM        = 77  // M key (ASCII)
	KeySpace    = 32  // Spacebar (ASCII)
	KeyEscape   = 256 // Escape key (GLFW)
	KeyEnter    = 257 // Enter key (GLFW)
	KeyRight    = 262 // Right arrow (GLFW)
	KeyLeft     = 263 // Left arrow (GLFW)
	KeyDown     = 264 // Down arrow (GLFW)
	KeyUp       = 265 // Up arrow (GLFW)
	KeyPageUp   = 266 // Page up (GLFW)
	KeyPageDown = 267 // Page down (GLFW)
	KeyF1       = 290 // F1 (GLFW)

	Key1 = 49 // 1 key (ASCII)
	Key2 = 50 // 2 key (ASCII)
	Key3 = 51 // 3 key (ASCII)
)

// KeyCount is the size of a key state table indexed by key code. GLFW key codes stop at 348.
const KeyCount = 512

// KeyQuit is the key that ends the application loop.
const KeyQuit = KeyEscape
