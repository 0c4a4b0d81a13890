package gpu

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

var ErrNoAdapter = errors.New("no compatible GPU adapter")

// Context is the explicit device state handed to every GPU component.
type Context struct {
	Instance *wgpu.Instance
	Surface  *wgpu.Surface
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	Config   *wgpu.SurfaceConfiguration
}

type ContextOptions struct {
	PresentMode     wgpu.PresentMode
	PowerPreference wgpu.PowerPreference
}

func DefaultContextOptions() ContextOptions {
	return ContextOptions{
		PresentMode:     wgpu.PresentModeFifo,
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	}
}

// NewContext acquires an adapter and device compatible with the surface and
// configures the surface at width x height.
func NewContext(surfaceDesc *wgpu.SurfaceDescriptor, width, height int, opts ContextOptions) (*Context, error) {
	instance := wgpu.CreateInstance(nil)
	// wraps the native window into a wgpu surface
	surface := instance.CreateSurface(surfaceDesc)

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: surface,
		PowerPreference:   opts.PowerPreference,
	})
	if err != nil {
		surface.Release()
		instance.Release()
		return nil, fmt.Errorf("%w: %v", ErrNoAdapter, err)
	}

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "oitview device",
	})
	if err != nil {
		adapter.Release()
		surface.Release()
		instance.Release()
		return nil, fmt.Errorf("request device: %w", err)
	}

	caps := surface.GetCapabilities(adapter)
	if len(caps.Formats) == 0 || len(caps.AlphaModes) == 0 {
		device.Release()
		adapter.Release()
		surface.Release()
		instance.Release()
		return nil, fmt.Errorf("%w: surface reports no formats", ErrNoAdapter)
	}

	c := &Context{
		Instance: instance,
		Surface:  surface,
		Adapter:  adapter,
		Device:   device,
		Queue:    device.GetQueue(),
		Config: &wgpu.SurfaceConfiguration{
			Usage:       wgpu.TextureUsageRenderAttachment,
			Format:      caps.Formats[0],
			Width:       uint32(max(width, 1)),
			Height:      uint32(max(height, 1)),
			PresentMode: opts.PresentMode,
			AlphaMode:   caps.AlphaModes[0],
		},
	}
	c.Surface.Configure(c.Adapter, c.Device, c.Config)
	return c, nil
}

// Configure resizes the swapchain. Zero sizes (a minimised window) are
// ignored and reported as false.
func (c *Context) Configure(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	c.Config.Width = uint32(width)
	c.Config.Height = uint32(height)
	c.Surface.Configure(c.Adapter, c.Device, c.Config)
	return true
}

func (c *Context) Format() wgpu.TextureFormat {
	return c.Config.Format
}

func (c *Context) Size() (uint32, uint32) {
	return c.Config.Width, c.Config.Height
}

func (c *Context) Release() {
	if c.Queue != nil {
		c.Queue.Release()
	}
	if c.Device != nil {
		c.Device.Release()
	}
	if c.Adapter != nil {
		c.Adapter.Release()
	}
	if c.Surface != nil {
		c.Surface.Release()
	}
	if c.Instance != nil {
		c.Instance.Release()
	}
}

func ParsePresentMode(mode string) (wgpu.PresentMode, error) {
	switch strings.ToLower(mode) {
	case "fifo", "":
		return wgpu.PresentModeFifo, nil
	case "immediate":
		return wgpu.PresentModeImmediate, nil
	case "mailbox":
		return wgpu.PresentModeMailbox, nil
	}
	return 0, fmt.Errorf("unknown present mode %q", mode)
}
