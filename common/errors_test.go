package common

import (
	"os"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorClass
	}{
		{"nil", nil, ClassNone},
		{"plain", errors.New("boom"), ClassNone},
		{"fatal", Fatal(nil, "device lost"), ClassFatalStartup},
		{"dropped", Dropped(errors.New("map failed"), "set parameters"), ClassFrameDropped},
		{"malformed", Malformed("bad header"), ClassData},
		{"not found", NotFound(os.ErrNotExist, "cube.txt"), ClassData},
		{"fatal wins over data", Fatal(NotFound(os.ErrNotExist, "cube.txt"), "load mesh"), ClassFatalStartup},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.err))
		})
	}
}

func TestMarksSurviveWrapping(t *testing.T) {
	err := Fatal(NotFound(os.ErrNotExist, "seafloor.dds"), "load texture")

	assert.True(t, errors.Is(err, ErrFatalStartup))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.False(t, errors.Is(err, ErrMalformedData))
	assert.Contains(t, err.Error(), "seafloor.dds")
}

func TestErrorClassString(t *testing.T) {
	assert.Equal(t, "frame-dropped", ClassFrameDropped.String())
	assert.Equal(t, "unknown", ErrorClass(42).String())
}
