//go:build headless

package window

import (
	"github.com/cockroachdb/errors"
)

// newPlatformWindow always fails in headless builds. Use NewHeadlessWindow instead.
func newPlatformWindow(_ *engineWindow) error {
	return errors.New("create desktop window: built with the headless tag")
}
