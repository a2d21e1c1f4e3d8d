// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import "fmt"

// Rational is a refresh rate expressed as numerator over denominator, the way display
// drivers report it.
type Rational struct {
	Numerator   uint32
	Denominator uint32
}

// DefaultRefreshRate is used when no enumerated display mode matches the requested size.
var DefaultRefreshRate = Rational{Numerator: 60, Denominator: 1}

// Hz returns the refresh rate in hertz, or zero for an unset rate.
func (r Rational) Hz() float64 {
	if r.Denominator == 0 {
		return 0
	}
	return float64(r.Numerator) / float64(r.Denominator)
}

func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Numerator, r.Denominator)
}

// DisplayMode is one video mode reported by the primary display.
type DisplayMode struct {
	Width   int
	Height  int
	Refresh Rational
}

// SelectDisplayMode scans modes for an exact width and height match and returns its refresh
// rate. When several modes match, the last one wins. When none match, DefaultRefreshRate is
// returned together with false.
//
// Parameters:
//   - modes: the display modes reported by the adapter output
//   - width: the requested back buffer width
//   - height: the requested back buffer height
//
// Returns:
//   - Rational: the refresh rate to request for the swap chain
//   - bool: true if an exact match was found
func SelectDisplayMode(modes []DisplayMode, width, height int) (Rational, bool) {
	rate := DefaultRefreshRate
	found := false
	for _, m := range modes {
		if m.Width == width && m.Height == height && m.Refresh.Denominator != 0 {
			rate = m.Refresh
			found = true
		}
	}
	return rate, found
}

// AdapterInfo describes the graphics adapter a device was created on.
type AdapterInfo struct {
	Name        string
	Description string
	// MemoryMB is the dedicated video memory in megabytes, zero when the API does not expose it.
	MemoryMB int
}
