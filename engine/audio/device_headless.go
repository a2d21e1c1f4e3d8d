//go:build headless

package audio

import (
	"github.com/cockroachdb/errors"
)

// NewDefaultDevice always fails in headless builds. Supply a device with WithDevice instead.
func NewDefaultDevice() (Device, error) {
	return nil, errors.New("open sound device: built with the headless tag")
}
