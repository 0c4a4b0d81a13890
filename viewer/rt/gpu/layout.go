package gpu

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

func vertexFormat(name string) (wgpu.VertexFormat, error) {
	switch name {
	case "float2":
		return wgpu.VertexFormatFloat32x2, nil
	case "float3":
		return wgpu.VertexFormatFloat32x3, nil
	case "float4":
		return wgpu.VertexFormatFloat32x4, nil
	}
	return 0, fmt.Errorf("unsupported vertex layout format: %q", name)
}

// VertexLayout derives a vertex buffer layout from a struct. Fields tagged
// gpu:"layout" become attributes with their format and location tags;
// untagged fields still advance the offset.
func VertexLayout(vertexType any) (wgpu.VertexBufferLayout, error) {
	t := reflect.TypeOf(vertexType)
	if t == nil || t.Kind() != reflect.Struct {
		return wgpu.VertexBufferLayout{}, fmt.Errorf("vertex must be a struct, got %v", t)
	}

	var attributes []wgpu.VertexAttribute
	var offset uint64 = 0

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if "layout" == field.Tag.Get("gpu") {
			format, err := vertexFormat(field.Tag.Get("format"))
			if err != nil {
				return wgpu.VertexBufferLayout{}, fmt.Errorf("field %s: %w", field.Name, err)
			}
			location, err := strconv.Atoi(field.Tag.Get("location"))
			if nil != err {
				return wgpu.VertexBufferLayout{}, fmt.Errorf("field %s: bad location: %w", field.Name, err)
			}

			attributes = append(attributes, wgpu.VertexAttribute{
				ShaderLocation: uint32(location),
				Offset:         offset,
				Format:         format,
			})
		}

		offset = uint64(field.Offset) + uint64(field.Type.Size())
	}

	return wgpu.VertexBufferLayout{
		ArrayStride: uint64(t.Size()),
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attributes,
	}, nil
}

// BytesPerPixel is the texel size of uncompressed colour formats.
func BytesPerPixel(format wgpu.TextureFormat) (uint32, error) {
	switch format {
	case wgpu.TextureFormatR8Unorm, wgpu.TextureFormatR8Snorm,
		wgpu.TextureFormatR8Uint, wgpu.TextureFormatR8Sint:
		return 1, nil

	case wgpu.TextureFormatR16Uint, wgpu.TextureFormatR16Sint, wgpu.TextureFormatR16Float,
		wgpu.TextureFormatRG8Unorm, wgpu.TextureFormatRG8Snorm,
		wgpu.TextureFormatRG8Uint, wgpu.TextureFormatRG8Sint:
		return 2, nil

	case wgpu.TextureFormatR32Float, wgpu.TextureFormatR32Uint, wgpu.TextureFormatR32Sint,
		wgpu.TextureFormatRG16Uint, wgpu.TextureFormatRG16Sint, wgpu.TextureFormatRG16Float,
		wgpu.TextureFormatRGBA8Unorm, wgpu.TextureFormatRGBA8UnormSrgb,
		wgpu.TextureFormatRGBA8Snorm, wgpu.TextureFormatRGBA8Uint, wgpu.TextureFormatRGBA8Sint,
		wgpu.TextureFormatBGRA8Unorm, wgpu.TextureFormatBGRA8UnormSrgb,
		wgpu.TextureFormatRGB10A2Uint, wgpu.TextureFormatRGB10A2Unorm,
		wgpu.TextureFormatRG11B10Ufloat, wgpu.TextureFormatRGB9E5Ufloat,
		wgpu.TextureFormatDepth32Float:
		return 4, nil

	case wgpu.TextureFormatRG32Float, wgpu.TextureFormatRG32Uint, wgpu.TextureFormatRG32Sint,
		wgpu.TextureFormatRGBA16Uint, wgpu.TextureFormatRGBA16Sint, wgpu.TextureFormatRGBA16Float:
		return 8, nil

	case wgpu.TextureFormatRGBA32Float, wgpu.TextureFormatRGBA32Uint, wgpu.TextureFormatRGBA32Sint:
		return 16, nil
	}
	return 0, fmt.Errorf("no texel size for texture format %v", format)
}

func ParseAddressMode(mode string) (wgpu.AddressMode, error) {
	switch strings.ToLower(mode) {
	case "wrap", "repeat":
		return wgpu.AddressModeRepeat, nil
	case "mirror":
		return wgpu.AddressModeMirrorRepeat, nil
	case "clamp", "":
		return wgpu.AddressModeClampToEdge, nil
	}
	return 0, fmt.Errorf("unknown wrap mode: %q", mode)
}

func ParseFilterMode(mode string) (wgpu.FilterMode, error) {
	switch strings.ToLower(mode) {
	case "nearest":
		return wgpu.FilterModeNearest, nil
	case "linear", "":
		return wgpu.FilterModeLinear, nil
	}
	return 0, fmt.Errorf("unknown filter mode: %q", mode)
}

// ParseSamplerOptions reads the render.filter and render.wrap config values.
func ParseSamplerOptions(filter, wrap string) (SamplerOptions, error) {
	f, err := ParseFilterMode(filter)
	if err != nil {
		return SamplerOptions{}, err
	}
	w, err := ParseAddressMode(wrap)
	if err != nil {
		return SamplerOptions{}, err
	}
	return SamplerOptions{Filter: f, Wrap: w}, nil
}
