package gpu

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/oitview/viewer/res"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodeImage_EmbeddedTexture(t *testing.T) {
	data, err := fs.ReadFile(res.FS, res.GlassTexture)
	require.NoError(t, err)

	img, err := DecodeImage(data)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Rect.Dx())
	assert.Equal(t, 64, img.Rect.Dy())
	assert.Len(t, img.Pix, 64*64*4)
}

func TestDecodeImage_ConvertsToStraightAlpha(t *testing.T) {
	src := image.NewPaletted(image.Rect(0, 0, 2, 1), color.Palette{
		color.NRGBA{R: 255, A: 128},
		color.NRGBA{B: 255, A: 255},
	})
	src.SetColorIndex(0, 0, 0)
	src.SetColorIndex(1, 0, 1)

	img, err := DecodeImage(encodePNG(t, src))
	require.NoError(t, err)

	assert.Equal(t, []uint8{255, 0, 0, 128, 0, 0, 255, 255}, img.Pix)
	assert.Equal(t, 8, img.Stride)
}

func TestDecodeImage_Rejects(t *testing.T) {
	_, err := DecodeImage([]byte("definitely not an image"))
	assert.ErrorIs(t, err, ErrDecode)

	_, err = DecodeImage(nil)
	assert.ErrorIs(t, err, ErrDecode)

	// correct magic, truncated body
	data := encodePNG(t, image.NewNRGBA(image.Rect(0, 0, 4, 4)))
	_, err = DecodeImage(data[:20])
	assert.ErrorIs(t, err, ErrDecode)
}

func TestAttachmentDescriptors(t *testing.T) {
	depth := DepthDescriptor(800, 600, "depth")
	assert.Equal(t, DepthFormat, depth.Format)
	assert.Equal(t, wgpu.Extent3D{Width: 800, Height: 600, DepthOrArrayLayers: 1}, depth.Size)
	assert.NotZero(t, depth.Usage&wgpu.TextureUsageRenderAttachment)

	accum := EmptyDescriptor(800, 600, AccumFormat, "accum")
	assert.Equal(t, AccumFormat, accum.Format)
	assert.NotZero(t, accum.Usage&wgpu.TextureUsageTextureBinding)

	sampled := SampledDescriptor(64, 32, "glass")
	assert.Equal(t, SampledFormat, sampled.Format)
	assert.NotZero(t, sampled.Usage&wgpu.TextureUsageCopyDst)
	assert.Zero(t, sampled.Usage&wgpu.TextureUsageRenderAttachment)

	// a minimised window still yields a valid allocation
	empty := EmptyDescriptor(0, 0, RevealFormat, "revealage")
	assert.Equal(t, uint32(1), empty.Size.Width)
	assert.Equal(t, uint32(1), empty.Size.Height)
}

func TestSamplerDescriptor(t *testing.T) {
	desc := SamplerDescriptor("glass", DefaultSamplerOptions())
	assert.Equal(t, wgpu.FilterModeLinear, desc.MagFilter)
	assert.Equal(t, wgpu.FilterModeLinear, desc.MinFilter)
	assert.Equal(t, wgpu.AddressModeClampToEdge, desc.AddressModeU)
	assert.Equal(t, wgpu.AddressModeClampToEdge, desc.AddressModeV)

	desc = SamplerDescriptor("glass", SamplerOptions{Filter: wgpu.FilterModeNearest, Wrap: wgpu.AddressModeRepeat})
	assert.Equal(t, wgpu.FilterModeNearest, desc.MagFilter)
	assert.Equal(t, wgpu.AddressModeRepeat, desc.AddressModeW)
}

func TestAttachmentDescriptors_ResizeIdempotent(t *testing.T) {
	for _, format := range []wgpu.TextureFormat{AccumFormat, RevealFormat} {
		assert.Equal(t, EmptyDescriptor(1024, 768, format, "target"), EmptyDescriptor(1024, 768, format, "target"))
	}
	assert.Equal(t, DepthDescriptor(1024, 768, "depth"), DepthDescriptor(1024, 768, "depth"))
}
