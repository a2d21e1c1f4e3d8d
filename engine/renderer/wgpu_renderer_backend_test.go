package renderer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWGPUFailedDeviceLeavesNoDevice(t *testing.T) {
	b := &wgpuRendererBackendImpl{mu: &sync.Mutex{}, objects: map[Handle]*wgpuObject{}}

	b.mu.Lock()
	b.releaseDeviceLocked()
	b.releaseDeviceLocked()
	b.mu.Unlock()

	assert.Nil(t, b.device)
	assert.Nil(t, b.queue)
	_, err := b.CreateRenderTargetView()
	require.Error(t, err)
	assert.Empty(t, b.LiveObjects())
}
