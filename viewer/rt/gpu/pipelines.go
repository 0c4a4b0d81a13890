package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// UniformSlotSize is the stride between per-model uniform blocks in the
// dynamic uniform buffer; WebGPU requires dynamic offsets to be 256 aligned.
const UniformSlotSize = 256

// Layouts holds the bind group layouts shared by the pipelines.
//
//	group 0 (opaque, transparency): material texture + sampler
//	group 1 (opaque, transparency): per-model uniforms, dynamic offset
//	group 0 (screen): accum + revealage attachments
type Layouts struct {
	Material *wgpu.BindGroupLayout
	Uniforms *wgpu.BindGroupLayout
	Screen   *wgpu.BindGroupLayout
}

func NewLayouts(device *wgpu.Device, uniformSize uint64) (*Layouts, error) {
	l := &Layouts{}
	var err error
	if l.Material, err = device.CreateBindGroupLayout(MaterialLayoutDescriptor()); err != nil {
		return nil, fmt.Errorf("material layout: %w", err)
	}
	if l.Uniforms, err = device.CreateBindGroupLayout(UniformLayoutDescriptor(uniformSize)); err != nil {
		l.Release()
		return nil, fmt.Errorf("uniform layout: %w", err)
	}
	if l.Screen, err = device.CreateBindGroupLayout(ScreenLayoutDescriptor()); err != nil {
		l.Release()
		return nil, fmt.Errorf("screen layout: %w", err)
	}
	return l, nil
}

func (l *Layouts) Release() {
	for _, bgl := range []*wgpu.BindGroupLayout{l.Material, l.Uniforms, l.Screen} {
		if bgl != nil {
			bgl.Release()
		}
	}
}

func MaterialLayoutDescriptor() *wgpu.BindGroupLayoutDescriptor {
	return &wgpu.BindGroupLayoutDescriptor{
		Label: "material bind group layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
					Multisampled:  false,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeFiltering,
				},
			},
		},
	}
}

func UniformLayoutDescriptor(size uint64) *wgpu.BindGroupLayoutDescriptor {
	return &wgpu.BindGroupLayoutDescriptor{
		Label: "uniform bind group layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:             wgpu.BufferBindingTypeUniform,
					HasDynamicOffset: true,
					MinBindingSize:   size,
				},
			},
		},
	}
}

func ScreenLayoutDescriptor() *wgpu.BindGroupLayoutDescriptor {
	attachment := func(binding uint32) wgpu.BindGroupLayoutEntry {
		return wgpu.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: wgpu.ShaderStageFragment,
			Texture: wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeUnfilterableFloat,
				ViewDimension: wgpu.TextureViewDimension2D,
				Multisampled:  false,
			},
		}
	}
	return &wgpu.BindGroupLayoutDescriptor{
		Label:   "screen bind group layout",
		Entries: []wgpu.BindGroupLayoutEntry{attachment(0), attachment(1)},
	}
}

// PipelineSet holds the three immutable pipelines. Rebuilding (for a shader
// reload) creates a new set.
type PipelineSet struct {
	Opaque       *wgpu.RenderPipeline
	Transparency *wgpu.RenderPipeline
	Screen       *wgpu.RenderPipeline

	layouts []*wgpu.PipelineLayout
}

type PipelineSources struct {
	Opaque       *ShaderModules
	Transparency *ShaderModules
	Screen       *ShaderModules
}

func (s PipelineSources) Release() {
	s.Opaque.Release()
	s.Transparency.Release()
	s.Screen.Release()
}

func NewPipelineSet(device *wgpu.Device, layouts *Layouts, src PipelineSources, surfaceFormat wgpu.TextureFormat, vertex wgpu.VertexBufferLayout) (*PipelineSet, error) {
	set := &PipelineSet{}

	sceneLayout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "scene pipeline layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{layouts.Material, layouts.Uniforms},
	})
	if err != nil {
		return nil, fmt.Errorf("scene pipeline layout: %w", err)
	}
	set.layouts = append(set.layouts, sceneLayout)

	screenLayout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "screen pipeline layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{layouts.Screen},
	})
	if err != nil {
		set.Release()
		return nil, fmt.Errorf("screen pipeline layout: %w", err)
	}
	set.layouts = append(set.layouts, screenLayout)

	if set.Opaque, err = device.CreateRenderPipeline(OpaquePipelineDescriptor(sceneLayout, src.Opaque, surfaceFormat, vertex)); err != nil {
		set.Release()
		return nil, fmt.Errorf("opaque pipeline: %w", err)
	}
	if set.Transparency, err = device.CreateRenderPipeline(TransparencyPipelineDescriptor(sceneLayout, src.Transparency, vertex)); err != nil {
		set.Release()
		return nil, fmt.Errorf("transparency pipeline: %w", err)
	}
	if set.Screen, err = device.CreateRenderPipeline(ScreenPipelineDescriptor(screenLayout, src.Screen, surfaceFormat)); err != nil {
		set.Release()
		return nil, fmt.Errorf("screen pipeline: %w", err)
	}
	return set, nil
}

func (s *PipelineSet) Release() {
	if s == nil {
		return
	}
	for _, p := range []*wgpu.RenderPipeline{s.Opaque, s.Transparency, s.Screen} {
		if p != nil {
			p.Release()
		}
	}
	for _, l := range s.layouts {
		l.Release()
	}
	s.Opaque, s.Transparency, s.Screen, s.layouts = nil, nil, nil, nil
}

func OpaquePipelineDescriptor(layout *wgpu.PipelineLayout, mods *ShaderModules, format wgpu.TextureFormat, vertex wgpu.VertexBufferLayout) *wgpu.RenderPipelineDescriptor {
	return scenePipelineDescriptor("opaque pipeline", layout, mods, vertex, OpaqueTargets(format), OpaqueDepthStencil())
}

func TransparencyPipelineDescriptor(layout *wgpu.PipelineLayout, mods *ShaderModules, vertex wgpu.VertexBufferLayout) *wgpu.RenderPipelineDescriptor {
	return scenePipelineDescriptor("transparency pipeline", layout, mods, vertex, TransparencyTargets(), TransparencyDepthStencil())
}

func scenePipelineDescriptor(label string, layout *wgpu.PipelineLayout, mods *ShaderModules, vertex wgpu.VertexBufferLayout, targets []wgpu.ColorTargetState, depth *wgpu.DepthStencilState) *wgpu.RenderPipelineDescriptor {
	return &wgpu.RenderPipelineDescriptor{
		Label:  label,
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     mods.Vertex,
			EntryPoint: EntryPoint,
			Buffers:    []wgpu.VertexBufferLayout{vertex},
		},
		Fragment: &wgpu.FragmentState{
			Module:     mods.Fragment,
			EntryPoint: EntryPoint,
			Targets:    targets,
		},
		Primitive:    QuadPrimitive(),
		DepthStencil: depth,
		Multisample:  singleSample(),
	}
}

// ScreenPipelineDescriptor draws six implicit vertices with no vertex buffer
// and no depth test.
func ScreenPipelineDescriptor(layout *wgpu.PipelineLayout, mods *ShaderModules, format wgpu.TextureFormat) *wgpu.RenderPipelineDescriptor {
	return &wgpu.RenderPipelineDescriptor{
		Label:  "screen pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     mods.Vertex,
			EntryPoint: EntryPoint,
		},
		Fragment: &wgpu.FragmentState{
			Module:     mods.Fragment,
			EntryPoint: EntryPoint,
			Targets:    ScreenTargets(format),
		},
		Primitive:    QuadPrimitive(),
		DepthStencil: nil,
		Multisample:  singleSample(),
	}
}

func QuadPrimitive() wgpu.PrimitiveState {
	return wgpu.PrimitiveState{
		Topology:  wgpu.PrimitiveTopologyTriangleList,
		FrontFace: wgpu.FrontFaceCCW,
		CullMode:  wgpu.CullModeBack,
	}
}

func singleSample() wgpu.MultisampleState {
	return wgpu.MultisampleState{
		Count:                  1,
		Mask:                   0xFFFFFFFF,
		AlphaToCoverageEnabled: false,
	}
}

func blend(src, dst wgpu.BlendFactor) wgpu.BlendComponent {
	return wgpu.BlendComponent{
		Operation: wgpu.BlendOperationAdd,
		SrcFactor: src,
		DstFactor: dst,
	}
}

// OpaqueTargets is straight alpha blending onto the back buffer.
func OpaqueTargets(format wgpu.TextureFormat) []wgpu.ColorTargetState {
	return []wgpu.ColorTargetState{
		{
			Format: format,
			Blend: &wgpu.BlendState{
				Color: blend(wgpu.BlendFactorSrcAlpha, wgpu.BlendFactorOneMinusSrcAlpha),
				Alpha: blend(wgpu.BlendFactorOne, wgpu.BlendFactorOne),
			},
			WriteMask: wgpu.ColorWriteMaskAll,
		},
	}
}

// TransparencyTargets sums weighted colour into accum and multiplies
// revealage down by (1 - alpha).
func TransparencyTargets() []wgpu.ColorTargetState {
	return []wgpu.ColorTargetState{
		{
			Format: AccumFormat,
			Blend: &wgpu.BlendState{
				Color: blend(wgpu.BlendFactorOne, wgpu.BlendFactorOne),
				Alpha: blend(wgpu.BlendFactorOne, wgpu.BlendFactorOne),
			},
			WriteMask: wgpu.ColorWriteMaskAll,
		},
		{
			Format: RevealFormat,
			Blend: &wgpu.BlendState{
				Color: blend(wgpu.BlendFactorZero, wgpu.BlendFactorOneMinusSrc),
				Alpha: blend(wgpu.BlendFactorZero, wgpu.BlendFactorZero),
			},
			WriteMask: wgpu.ColorWriteMaskAll,
		},
	}
}

func ScreenTargets(format wgpu.TextureFormat) []wgpu.ColorTargetState {
	return []wgpu.ColorTargetState{
		{
			Format: format,
			Blend: &wgpu.BlendState{
				Color: blend(wgpu.BlendFactorSrcAlpha, wgpu.BlendFactorOneMinusSrcAlpha),
				Alpha: blend(wgpu.BlendFactorSrcAlpha, wgpu.BlendFactorOneMinusSrcAlpha),
			},
			WriteMask: wgpu.ColorWriteMaskAll,
		},
	}
}

func OpaqueDepthStencil() *wgpu.DepthStencilState {
	return depthState(true)
}

// TransparencyDepthStencil tests against the depth buffer without writing it.
func TransparencyDepthStencil() *wgpu.DepthStencilState {
	return depthState(false)
}

func depthState(write bool) *wgpu.DepthStencilState {
	return &wgpu.DepthStencilState{
		Format:            DepthFormat,
		DepthWriteEnabled: write,
		DepthCompare:      wgpu.CompareFunctionLess,
		StencilFront:      ignoreStencil(),
		StencilBack:       ignoreStencil(),
		StencilReadMask:   0,
		StencilWriteMask:  0,
	}
}

func ignoreStencil() wgpu.StencilFaceState {
	return wgpu.StencilFaceState{
		Compare:     wgpu.CompareFunctionAlways,
		FailOp:      wgpu.StencilOperationKeep,
		DepthFailOp: wgpu.StencilOperationKeep,
		PassOp:      wgpu.StencilOperationKeep,
	}
}
