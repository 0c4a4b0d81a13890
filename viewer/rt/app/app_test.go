package app

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/oitview"
	"github.com/gekko3d/oitview/viewer/rt/core"
	"github.com/gekko3d/oitview/viewer/rt/gpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsFromConfig(t *testing.T) {
	cfg := oitview.DefaultConfig()
	opts, err := OptionsFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, DefaultOptions(), opts)
	assert.Equal(t, wgpu.Color{R: 0.1, G: 0.2, B: 0.3, A: 1}, opts.ClearColor)

	cfg.Render.Mode = "opaque"
	cfg.Render.Filter = "nearest"
	opts, err = OptionsFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, ModeOpaque, opts.Mode)
	assert.Equal(t, wgpu.FilterModeNearest, opts.Sampler.Filter)

	cfg.Render.Wrap = "sideways"
	_, err = OptionsFromConfig(cfg)
	assert.Error(t, err)
}

func TestApplyCameraConfig(t *testing.T) {
	cam := core.NewCamera(1)
	applyCameraConfig(cam, oitview.CameraConfig{
		FovyDeg:   60,
		Near:      0.5,
		Far:       50,
		MoveSpeed: 4,
		ZoomMin:   30,
		ZoomMax:   90,
		ZoomStep:  5,
	})
	assert.InDelta(t, 60, cam.FovyDegrees(), 1e-4)
	assert.Equal(t, float32(0.5), cam.Near)
	assert.Equal(t, float32(50), cam.Far)
	assert.Equal(t, float32(4), cam.MoveSpeed)
	assert.Equal(t, float32(5), cam.ZoomStep)

	// zero values keep the camera defaults
	cam = core.NewCamera(1)
	applyCameraConfig(cam, oitview.CameraConfig{})
	assert.Equal(t, *core.NewCamera(1), *cam)
}

func TestUniformSlots(t *testing.T) {
	assert.Equal(t, uint32(0), slotOffset(0))
	assert.Equal(t, uint32(512), slotOffset(2))
	assert.Equal(t, uint64(3*gpu.UniformSlotSize), uniformBufferSize(3))
	assert.Equal(t, uint64(gpu.UniformSlotSize), uniformBufferSize(0))
}

func TestIndexBytes(t *testing.T) {
	indices := core.QuadIndices()
	data := indexBytes(indices)
	assert.Zero(t, len(data)%4)
	for i, idx := range indices {
		assert.Equal(t, idx, binary.LittleEndian.Uint16(data[2*i:]))
	}

	odd := indexBytes([]uint16{1, 2, 3})
	assert.Len(t, odd, 8)
	assert.Equal(t, []byte{0, 0}, odd[6:])
}

func TestRebuildForSize(t *testing.T) {
	var calls []string
	build := func(fail bool) func(w, h uint32) (string, error) {
		return func(w, h uint32) (string, error) {
			calls = append(calls, "build")
			if fail {
				return "", errors.New("out of memory")
			}
			return "targets", nil
		}
	}
	configure := func(w, h int) bool {
		calls = append(calls, "configure")
		return true
	}

	got, err := rebuildForSize(800, 600, build(false), configure)
	require.NoError(t, err)
	assert.Equal(t, "targets", got)
	assert.Equal(t, []string{"build", "configure"}, calls)

	// a failed build must not resize the swapchain
	calls = nil
	_, err = rebuildForSize(1024, 768, build(true), configure)
	assert.EqualError(t, err, "out of memory")
	assert.Equal(t, []string{"build"}, calls)

	calls = nil
	_, err = rebuildForSize(0, 768, build(false), configure)
	assert.ErrorIs(t, err, errZeroSize)
	assert.Empty(t, calls)
}
