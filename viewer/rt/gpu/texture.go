package gpu

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	DepthFormat   = wgpu.TextureFormatDepth32Float
	AccumFormat   = wgpu.TextureFormatRGBA16Float
	RevealFormat  = wgpu.TextureFormatR8Unorm
	SampledFormat = wgpu.TextureFormatRGBA8UnormSrgb
)

var ErrDecode = errors.New("unsupported image data")

// Texture bundles a GPU image with a full view and, for sampled textures, a
// sampler. Attachments are replaced wholesale on resize, never mutated.
type Texture struct {
	Texture *wgpu.Texture
	View    *wgpu.TextureView
	Sampler *wgpu.Sampler
	Width   uint32
	Height  uint32
	Format  wgpu.TextureFormat
}

type SamplerOptions struct {
	Filter wgpu.FilterMode
	Wrap   wgpu.AddressMode
}

// DefaultSamplerOptions is bilinear filtering with clamp-to-edge addressing.
func DefaultSamplerOptions() SamplerOptions {
	return SamplerOptions{
		Filter: wgpu.FilterModeLinear,
		Wrap:   wgpu.AddressModeClampToEdge,
	}
}

// Upload is pixel data waiting to be copied into a texture. The texture must
// not be sampled before Submit.
type Upload struct {
	texture *wgpu.Texture
	data    []byte
	layout  wgpu.TextureDataLayout
	extent  wgpu.Extent3D
}

func (u *Upload) Submit(queue *wgpu.Queue) {
	queue.WriteTexture(u.texture.AsImageCopy(), u.data, &u.layout, &u.extent)
}

// DecodeImage sniffs and decodes an encoded image into straight-alpha RGBA.
func DecodeImage(data []byte) (*image.NRGBA, error) {
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown || !filetype.IsImage(data) {
		return nil, ErrDecode
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, kind.Extension, err)
	}

	if nrgba, ok := img.(*image.NRGBA); ok && nrgba.Rect.Min == (image.Point{}) && nrgba.Stride == 4*nrgba.Rect.Dx() {
		return nrgba, nil
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst, nil
}

// FromBytes decodes an image and allocates a sampled texture for it. The
// returned Upload must be submitted before the texture is used.
func FromBytes(device *wgpu.Device, data []byte, label string, opts SamplerOptions) (*Texture, *Upload, error) {
	img, err := DecodeImage(data)
	if err != nil {
		return nil, nil, err
	}
	return FromImage(device, img, label, opts)
}

func FromImage(device *wgpu.Device, img *image.NRGBA, label string, opts SamplerOptions) (*Texture, *Upload, error) {
	w, h := uint32(img.Rect.Dx()), uint32(img.Rect.Dy())
	desc := SampledDescriptor(w, h, label)

	tex, err := newTexture(device, desc)
	if err != nil {
		return nil, nil, err
	}
	tex.Sampler, err = device.CreateSampler(SamplerDescriptor(label, opts))
	if err != nil {
		tex.Release()
		return nil, nil, fmt.Errorf("create sampler %s: %w", label, err)
	}

	bpp, err := BytesPerPixel(desc.Format)
	if err != nil {
		tex.Release()
		return nil, nil, err
	}
	upload := &Upload{
		texture: tex.Texture,
		data:    img.Pix,
		layout: wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  w * bpp,
			RowsPerImage: h,
		},
		extent: desc.Size,
	}
	return tex, upload, nil
}

// CreateDepth allocates a depth attachment matching the surface size.
func CreateDepth(device *wgpu.Device, width, height uint32, label string) (*Texture, error) {
	return newTexture(device, DepthDescriptor(width, height, label))
}

// CreateEmpty allocates a colour attachment that can also be sampled.
func CreateEmpty(device *wgpu.Device, width, height uint32, format wgpu.TextureFormat, label string) (*Texture, error) {
	return newTexture(device, EmptyDescriptor(width, height, format, label))
}

func newTexture(device *wgpu.Device, desc *wgpu.TextureDescriptor) (*Texture, error) {
	tex, err := device.CreateTexture(desc)
	if err != nil {
		return nil, fmt.Errorf("create texture %s: %w", desc.Label, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("create view %s: %w", desc.Label, err)
	}
	return &Texture{
		Texture: tex,
		View:    view,
		Width:   desc.Size.Width,
		Height:  desc.Size.Height,
		Format:  desc.Format,
	}, nil
}

func DepthDescriptor(width, height uint32, label string) *wgpu.TextureDescriptor {
	return attachmentDescriptor(width, height, DepthFormat, label,
		wgpu.TextureUsageRenderAttachment|wgpu.TextureUsageTextureBinding)
}

func EmptyDescriptor(width, height uint32, format wgpu.TextureFormat, label string) *wgpu.TextureDescriptor {
	return attachmentDescriptor(width, height, format, label,
		wgpu.TextureUsageRenderAttachment|wgpu.TextureUsageTextureBinding)
}

func SampledDescriptor(width, height uint32, label string) *wgpu.TextureDescriptor {
	return attachmentDescriptor(width, height, SampledFormat, label,
		wgpu.TextureUsageTextureBinding|wgpu.TextureUsageCopyDst)
}

func attachmentDescriptor(width, height uint32, format wgpu.TextureFormat, label string, usage wgpu.TextureUsage) *wgpu.TextureDescriptor {
	return &wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              max(width, 1),
			Height:             max(height, 1),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	}
}

func SamplerDescriptor(label string, opts SamplerOptions) *wgpu.SamplerDescriptor {
	return &wgpu.SamplerDescriptor{
		Label:         label,
		AddressModeU:  opts.Wrap,
		AddressModeV:  opts.Wrap,
		AddressModeW:  opts.Wrap,
		MagFilter:     opts.Filter,
		MinFilter:     opts.Filter,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	}
}

func (t *Texture) Release() {
	if t == nil {
		return
	}
	if t.Sampler != nil {
		t.Sampler.Release()
		t.Sampler = nil
	}
	if t.View != nil {
		t.View.Release()
		t.View = nil
	}
	if t.Texture != nil {
		t.Texture.Release()
		t.Texture = nil
	}
}
