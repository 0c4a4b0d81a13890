package gpu

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

func TestParsePresentMode(t *testing.T) {
	for in, want := range map[string]wgpu.PresentMode{
		"":          wgpu.PresentModeFifo,
		"fifo":      wgpu.PresentModeFifo,
		"FIFO":      wgpu.PresentModeFifo,
		"immediate": wgpu.PresentModeImmediate,
		"mailbox":   wgpu.PresentModeMailbox,
	} {
		got, err := ParsePresentMode(in)
		assert.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParsePresentMode("vsync")
	assert.Error(t, err)
}

func TestConfigure_IgnoresZeroSize(t *testing.T) {
	c := &Context{Config: &wgpu.SurfaceConfiguration{Width: 640, Height: 480}}
	assert.False(t, c.Configure(0, 480))
	assert.False(t, c.Configure(640, 0))
	w, h := c.Size()
	assert.Equal(t, uint32(640), w)
	assert.Equal(t, uint32(480), h)
}
