package common

import (
	"github.com/cockroachdb/errors"
)

// Marker errors. Every failure surfaced by the engine carries one of these marks so callers
// can branch on the failure class with errors.Is instead of on message text.
var (
	// ErrFatalStartup marks a failure while acquiring a device, shader, mesh, texture or
	// sound. The application must not reach its first frame.
	ErrFatalStartup = errors.New("fatal startup error")

	// ErrFrameDropped marks a failure while recording a single frame. The frame is left
	// incomplete and the loop continues.
	ErrFrameDropped = errors.New("frame dropped")

	// ErrMalformedData marks input that was read but does not have the required shape.
	ErrMalformedData = errors.New("malformed data")

	// ErrNotFound marks an input file that could not be opened.
	ErrNotFound = errors.New("not found")
)

// ErrorClass is the failure category of an error returned by the engine.
type ErrorClass int

const (
	ClassNone ErrorClass = iota
	ClassFatalStartup
	ClassFrameDropped
	ClassData
)

func (c ErrorClass) String() string {
	switch c {
	case ClassNone:
		return "none"
	case ClassFatalStartup:
		return "fatal-startup"
	case ClassFrameDropped:
		return "frame-dropped"
	case ClassData:
		return "data"
	default:
		return "unknown"
	}
}

// Classify returns the failure class of err. A fatal mark wins over a data mark, so a
// missing asset found during startup classifies as fatal while still matching ErrNotFound.
//
// Parameters:
//   - err: the error to classify, may be nil
//
// Returns:
//   - ErrorClass: the class carried by err, or ClassNone for nil
func Classify(err error) ErrorClass {
	switch {
	case err == nil:
		return ClassNone
	case errors.Is(err, ErrFatalStartup):
		return ClassFatalStartup
	case errors.Is(err, ErrFrameDropped):
		return ClassFrameDropped
	case errors.Is(err, ErrMalformedData), errors.Is(err, ErrNotFound):
		return ClassData
	default:
		return ClassNone
	}
}

// Fatal wraps err with a message and marks it as a fatal startup error. A nil err produces
// a new error carrying only the message.
func Fatal(err error, format string, args ...any) error {
	if err == nil {
		return errors.Mark(errors.Newf(format, args...), ErrFatalStartup)
	}
	return errors.Mark(errors.Wrapf(err, format, args...), ErrFatalStartup)
}

// Dropped wraps err with a message and marks it as a dropped frame. A nil err produces a
// new error carrying only the message.
func Dropped(err error, format string, args ...any) error {
	if err == nil {
		return errors.Mark(errors.Newf(format, args...), ErrFrameDropped)
	}
	return errors.Mark(errors.Wrapf(err, format, args...), ErrFrameDropped)
}

// Malformed returns a new error marked as malformed data.
func Malformed(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrMalformedData)
}

// NotFound wraps an open failure for path and marks it as not found.
func NotFound(err error, path string) error {
	if err == nil {
		return errors.Mark(errors.Newf("open %s", path), ErrNotFound)
	}
	return errors.Mark(errors.Wrapf(err, "open %s", path), ErrNotFound)
}
