package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// Attachment clear values for a frame.
var (
	AccumClear     = wgpu.Color{R: 0, G: 0, B: 0, A: 0}
	RevealageClear = wgpu.Color{R: 1, G: 0, B: 0, A: 0}
)

const DepthClear float32 = 1.0

// FrameViews are the views a frame renders into. Back is the swapchain image
// acquired for this frame; the rest live until the next resize.
type FrameViews struct {
	Back      *wgpu.TextureView
	Depth     *wgpu.TextureView
	Accum     *wgpu.TextureView
	Revealage *wgpu.TextureView
}

// ClearPass resets every attachment the transparency path touches. No
// pipeline is bound; beginning and ending the pass performs the clears.
func ClearPass(v FrameViews, clear wgpu.Color) *wgpu.RenderPassDescriptor {
	return &wgpu.RenderPassDescriptor{
		Label: "clear pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			clearAttachment(v.Back, clear),
			clearAttachment(v.Accum, AccumClear),
			clearAttachment(v.Revealage, RevealageClear),
		},
		DepthStencilAttachment: depthAttachment(v.Depth, wgpu.LoadOpClear),
	}
}

// AccumulatePass loads the accumulation targets so successive per-model
// passes add into them.
func AccumulatePass(v FrameViews) *wgpu.RenderPassDescriptor {
	return &wgpu.RenderPassDescriptor{
		Label: "accumulate pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			loadAttachment(v.Accum),
			loadAttachment(v.Revealage),
		},
		DepthStencilAttachment: depthAttachment(v.Depth, wgpu.LoadOpLoad),
	}
}

// CompositePass blends the resolved transparency over the back buffer.
func CompositePass(v FrameViews) *wgpu.RenderPassDescriptor {
	return &wgpu.RenderPassDescriptor{
		Label: "composite pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			loadAttachment(v.Back),
		},
	}
}

// OpaquePass clears the back buffer and depth and draws straight into them.
func OpaquePass(v FrameViews, clear wgpu.Color) *wgpu.RenderPassDescriptor {
	return &wgpu.RenderPassDescriptor{
		Label: "opaque pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			clearAttachment(v.Back, clear),
		},
		DepthStencilAttachment: depthAttachment(v.Depth, wgpu.LoadOpClear),
	}
}

// ClearColor converts a configured RGBA clear colour.
func ClearColor(c [4]float64) wgpu.Color {
	return wgpu.Color{R: c[0], G: c[1], B: c[2], A: c[3]}
}

func clearAttachment(view *wgpu.TextureView, clear wgpu.Color) wgpu.RenderPassColorAttachment {
	return wgpu.RenderPassColorAttachment{
		View:       view,
		LoadOp:     wgpu.LoadOpClear,
		StoreOp:    wgpu.StoreOpStore,
		ClearValue: clear,
	}
}

func loadAttachment(view *wgpu.TextureView) wgpu.RenderPassColorAttachment {
	return wgpu.RenderPassColorAttachment{
		View:    view,
		LoadOp:  wgpu.LoadOpLoad,
		StoreOp: wgpu.StoreOpStore,
	}
}

func depthAttachment(view *wgpu.TextureView, load wgpu.LoadOp) *wgpu.RenderPassDepthStencilAttachment {
	return &wgpu.RenderPassDepthStencilAttachment{
		View:            view,
		DepthLoadOp:     load,
		DepthStoreOp:    wgpu.StoreOpStore,
		DepthClearValue: DepthClear,
	}
}
