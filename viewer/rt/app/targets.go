package app

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/oitview/viewer/rt/gpu"
)

// frameTargets are the size-dependent attachments of a frame. They are built
// and released together so the composite bind group never points at a
// released view.
type frameTargets struct {
	depth     *gpu.Texture
	accum     *gpu.Texture
	revealage *gpu.Texture
	composite *wgpu.BindGroup
}

func newFrameTargets(device *wgpu.Device, screenLayout *wgpu.BindGroupLayout, width, height uint32) (*frameTargets, error) {
	t := &frameTargets{}
	var err error

	if t.depth, err = gpu.CreateDepth(device, width, height, "depth texture"); err != nil {
		return nil, err
	}
	if t.accum, err = gpu.CreateEmpty(device, width, height, gpu.AccumFormat, "accum texture"); err != nil {
		t.Release()
		return nil, err
	}
	if t.revealage, err = gpu.CreateEmpty(device, width, height, gpu.RevealFormat, "revealage texture"); err != nil {
		t.Release()
		return nil, err
	}

	t.composite, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "composite bind group",
		Layout: screenLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: t.accum.View},
			{Binding: 1, TextureView: t.revealage.View},
		},
	})
	if err != nil {
		t.Release()
		return nil, fmt.Errorf("composite bind group: %w", err)
	}
	return t, nil
}

func (t *frameTargets) views(back *wgpu.TextureView) gpu.FrameViews {
	return gpu.FrameViews{
		Back:      back,
		Depth:     t.depth.View,
		Accum:     t.accum.View,
		Revealage: t.revealage.View,
	}
}

func (t *frameTargets) Release() {
	if t == nil {
		return
	}
	if t.composite != nil {
		t.composite.Release()
		t.composite = nil
	}
	t.depth.Release()
	t.accum.Release()
	t.revealage.Release()
}
