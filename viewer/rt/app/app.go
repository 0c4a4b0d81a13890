package app

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/oitview"
	"github.com/gekko3d/oitview/viewer/res"
	"github.com/gekko3d/oitview/viewer/rt/core"
	"github.com/gekko3d/oitview/viewer/rt/gpu"
	"github.com/gekko3d/oitview/viewer/rt/shaders"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrSurfaceLost means no swapchain image could be acquired this frame. The
// surface usually needs reconfiguring.
var ErrSurfaceLost = errors.New("surface lost")

type Options struct {
	Mode            RenderMode
	ClearColor      wgpu.Color
	Sampler         gpu.SamplerOptions
	ValidateShaders bool
	// Texture is the image name resolved by the asset server.
	Texture string
	Camera  oitview.CameraConfig
}

func DefaultOptions() Options {
	cfg := oitview.DefaultConfig()
	return Options{
		Mode:            ModeOIT,
		ClearColor:      gpu.ClearColor(cfg.Render.ClearColor),
		Sampler:         gpu.DefaultSamplerOptions(),
		ValidateShaders: cfg.Render.ValidateShaders,
		Texture:         res.GlassTexture,
		Camera:          cfg.Camera,
	}
}

// OptionsFromConfig maps the render, camera and assets sections.
func OptionsFromConfig(cfg oitview.Config) (Options, error) {
	mode, err := ParseRenderMode(cfg.Render.Mode)
	if err != nil {
		return Options{}, err
	}
	sampler, err := gpu.ParseSamplerOptions(cfg.Render.Filter, cfg.Render.Wrap)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Mode:            mode,
		ClearColor:      gpu.ClearColor(cfg.Render.ClearColor),
		Sampler:         sampler,
		ValidateShaders: cfg.Render.ValidateShaders,
		Texture:         cfg.Assets.Texture,
		Camera:          cfg.Camera,
	}, nil
}

// App owns every GPU resource of the viewer and renders the scene in the
// selected mode.
type App struct {
	ctx      *gpu.Context
	assets   *oitview.AssetServer
	logger   oitview.Logger
	compiler *gpu.ShaderCompiler
	opts     Options

	camera   *core.Camera
	scene    *core.Scene
	uniforms core.Uniforms
	profiler *Profiler
	mode     RenderMode

	vertexLayout wgpu.VertexBufferLayout
	layouts      *gpu.Layouts
	pipelines    *gpu.PipelineSet
	shaderIds    map[string]oitview.AssetId

	texture       *gpu.Texture
	materialGroup *wgpu.BindGroup
	uniformBuf    *wgpu.Buffer
	uniformGroup  *wgpu.BindGroup
	vertexBuf     *wgpu.Buffer
	indexBuf      *wgpu.Buffer

	targets *frameTargets
}

func NewApp(ctx *gpu.Context, assets *oitview.AssetServer, logger oitview.Logger, opts Options) (*App, error) {
	width, height := ctx.Size()
	a := &App{
		ctx:       ctx,
		assets:    assets,
		logger:    logger,
		compiler:  gpu.NewShaderCompiler(ctx.Device, opts.ValidateShaders),
		opts:      opts,
		camera:    core.NewCamera(float32(width) / float32(height)),
		scene:     core.NewScene(),
		uniforms:  core.NewUniforms(),
		profiler:  NewProfiler(),
		mode:      opts.Mode,
		shaderIds: make(map[string]oitview.AssetId),
	}
	applyCameraConfig(a.camera, opts.Camera)

	if err := a.setup(); err != nil {
		a.Release()
		return nil, err
	}
	return a, nil
}

func applyCameraConfig(c *core.Camera, cfg oitview.CameraConfig) {
	if cfg.FovyDeg > 0 {
		c.Fovy = mgl32.DegToRad(cfg.FovyDeg)
	}
	if cfg.Near > 0 && cfg.Far > cfg.Near {
		c.Near, c.Far = cfg.Near, cfg.Far
	}
	if cfg.MoveSpeed > 0 {
		c.MoveSpeed = cfg.MoveSpeed
	}
	if cfg.ZoomMin > 0 && cfg.ZoomMax >= cfg.ZoomMin {
		c.ZoomMin, c.ZoomMax = cfg.ZoomMin, cfg.ZoomMax
	}
	if cfg.ZoomStep > 0 {
		c.ZoomStep = cfg.ZoomStep
	}
}

func (a *App) setup() error {
	var err error
	device := a.ctx.Device

	if a.vertexLayout, err = gpu.VertexLayout(core.Vertex{}); err != nil {
		return err
	}
	if a.layouts, err = gpu.NewLayouts(device, core.UniformsSize); err != nil {
		return err
	}
	if err = a.loadTexture(); err != nil {
		return err
	}
	if err = a.createBuffers(); err != nil {
		return err
	}

	for _, dir := range shaders.Dirs() {
		id, err := a.assets.LoadShader(dir)
		if err != nil {
			return err
		}
		a.shaderIds[dir] = id
	}
	if a.pipelines, err = a.buildPipelines(); err != nil {
		return err
	}

	w, h := a.ctx.Size()
	if a.targets, err = newFrameTargets(device, a.layouts.Screen, w, h); err != nil {
		return err
	}
	a.logger.Infof("renderer ready: %dx%d %v, mode %v", w, h, a.ctx.Format(), a.mode)
	return nil
}

func (a *App) loadTexture() error {
	id, err := a.assets.LoadImage(a.opts.Texture)
	if err != nil {
		return err
	}
	img, err := a.assets.Image(id)
	if err != nil {
		return err
	}

	tex, upload, err := gpu.FromBytes(a.ctx.Device, img.Data, img.Name, a.opts.Sampler)
	if err != nil {
		return fmt.Errorf("texture %s: %w", img.Name, err)
	}
	a.texture = tex
	upload.Submit(a.ctx.Queue)

	a.materialGroup, err = a.ctx.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "material bind group",
		Layout: a.layouts.Material,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: tex.View},
			{Binding: 1, Sampler: tex.Sampler},
		},
	})
	if err != nil {
		return fmt.Errorf("material bind group: %w", err)
	}
	a.logger.Debugf("loaded texture %s (%dx%d)", img.Name, tex.Width, tex.Height)
	return nil
}

func (a *App) createBuffers() error {
	device := a.ctx.Device
	var err error

	vertices := a.scene.Vertices
	vSize := uint64(len(vertices)) * uint64(unsafe.Sizeof(core.Vertex{}))
	a.vertexBuf, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "vertex buffer",
		Size:  vSize,
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("vertex buffer: %w", err)
	}
	a.ctx.Queue.WriteBuffer(a.vertexBuf, 0, unsafe.Slice((*byte)(unsafe.Pointer(&vertices[0])), vSize))

	indices := a.scene.Indices
	iSize := uint64(len(indices)) * 2
	a.indexBuf, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "index buffer",
		// copies must be 4-byte multiples
		Size:  (iSize + 3) &^ 3,
		Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("index buffer: %w", err)
	}
	a.ctx.Queue.WriteBuffer(a.indexBuf, 0, indexBytes(indices))

	a.uniformBuf, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "uniform buffer",
		Size:  uniformBufferSize(len(a.scene.Models)),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("uniform buffer: %w", err)
	}

	a.uniformGroup, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "uniform bind group",
		Layout: a.layouts.Uniforms,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: a.uniformBuf, Offset: 0, Size: core.UniformsSize},
		},
	})
	if err != nil {
		return fmt.Errorf("uniform bind group: %w", err)
	}
	a.writeUniforms()
	return nil
}

// indexBytes pads the index data to a 4-byte multiple.
func indexBytes(indices []uint16) []byte {
	out := make([]byte, (len(indices)*2+3)&^3)
	copy(out, unsafe.Slice((*byte)(unsafe.Pointer(&indices[0])), len(indices)*2))
	return out
}

func uniformBufferSize(models int) uint64 {
	return uint64(max(models, 1)) * gpu.UniformSlotSize
}

func slotOffset(model int) uint32 {
	return uint32(model * gpu.UniformSlotSize)
}

func (a *App) shaderSources() (gpu.PipelineSources, error) {
	var src gpu.PipelineSources
	for _, dir := range shaders.Dirs() {
		asset, err := a.assets.Shader(a.shaderIds[dir])
		if err != nil {
			src.Release()
			return gpu.PipelineSources{}, err
		}
		mods, err := a.compiler.Compile(asset)
		if err != nil {
			src.Release()
			return gpu.PipelineSources{}, err
		}
		switch dir {
		case shaders.Opaque:
			src.Opaque = mods
		case shaders.Transparency:
			src.Transparency = mods
		case shaders.Screen:
			src.Screen = mods
		}
	}
	return src, nil
}

func (a *App) buildPipelines() (*gpu.PipelineSet, error) {
	src, err := a.shaderSources()
	if err != nil {
		return nil, err
	}
	defer src.Release()
	return gpu.NewPipelineSet(a.ctx.Device, a.layouts, src, a.ctx.Format(), a.vertexLayout)
}

// ReloadShaders re-reads every shader directory and rebuilds the pipelines.
// On failure the current pipelines stay in use.
func (a *App) ReloadShaders() error {
	for dir, id := range a.shaderIds {
		if _, err := a.assets.ReloadShader(id); err != nil {
			return fmt.Errorf("reload %s: %w", dir, err)
		}
	}
	set, err := a.buildPipelines()
	if err != nil {
		return err
	}
	a.pipelines.Release()
	a.pipelines = set
	a.logger.Infof("shaders reloaded")
	return nil
}

// Resize rebuilds the size-dependent targets and reconfigures the surface.
// Zero sizes are ignored.
func (a *App) Resize(width, height int) bool {
	targets, err := rebuildForSize(width, height, func(w, h uint32) (*frameTargets, error) {
		return newFrameTargets(a.ctx.Device, a.layouts.Screen, w, h)
	}, a.ctx.Configure)
	if err != nil {
		if !errors.Is(err, errZeroSize) {
			a.logger.Errorf("resize to %dx%d: %v", width, height, err)
		}
		return false
	}
	a.targets.Release()
	a.targets = targets
	a.camera.SetAspect(width, height)
	a.writeUniforms()
	a.logger.Debugf("resized to %dx%d", width, height)
	return true
}

var errZeroSize = errors.New("zero framebuffer size")

// rebuildForSize builds the targets before the swapchain is touched. A failed
// build leaves both at the previous size.
func rebuildForSize[T any](width, height int, build func(w, h uint32) (T, error), configure func(w, h int) bool) (T, error) {
	var zero T
	if width <= 0 || height <= 0 {
		return zero, errZeroSize
	}
	next, err := build(uint32(width), uint32(height))
	if err != nil {
		return zero, err
	}
	configure(width, height)
	return next, nil
}

func (a *App) Update(dt float32) {
	a.camera.Update(dt)
	a.writeUniforms()
}

func (a *App) writeUniforms() {
	a.uniforms.UpdateView(a.camera)
	for i, model := range a.scene.Models {
		a.uniforms.UpdateModel(model)
		a.ctx.Queue.WriteBuffer(a.uniformBuf, uint64(slotOffset(i)), a.uniforms.Bytes())
	}
}

func (a *App) Render() error {
	a.profiler.Reset()
	a.profiler.BeginScope("render")
	defer a.profiler.EndScope("render")

	nextTexture, err := a.ctx.Surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSurfaceLost, err)
	}
	defer nextTexture.Release()

	view, err := nextTexture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSurfaceLost, err)
	}
	defer view.Release()

	// look changes applied since the last tick
	a.writeUniforms()

	encoder, err := a.ctx.Device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	defer encoder.Release()

	plan := PlanFrame(a.mode, a.scene.DrawOrder())
	views := a.targets.views(view)
	draws := 0
	for _, step := range plan {
		if err := a.encodeStep(encoder, step, views); err != nil {
			return err
		}
		draws += len(step.Models)
	}
	a.profiler.SetCount("passes", len(plan))
	a.profiler.SetCount("draws", draws)

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("finish frame: %w", err)
	}
	defer cmd.Release()

	a.ctx.Queue.Submit(cmd)
	a.ctx.Surface.Present()
	return nil
}

func (a *App) encodeStep(encoder *wgpu.CommandEncoder, step Step, views gpu.FrameViews) error {
	var desc *wgpu.RenderPassDescriptor
	var pipeline *wgpu.RenderPipeline
	switch step.Kind {
	case StepClear:
		desc = gpu.ClearPass(views, a.opts.ClearColor)
	case StepAccumulate:
		desc, pipeline = gpu.AccumulatePass(views), a.pipelines.Transparency
	case StepComposite:
		desc, pipeline = gpu.CompositePass(views), a.pipelines.Screen
	case StepOpaque:
		desc, pipeline = gpu.OpaquePass(views, a.opts.ClearColor), a.pipelines.Opaque
	default:
		return fmt.Errorf("unknown frame step %v", step.Kind)
	}

	pass := encoder.BeginRenderPass(desc)
	switch step.Kind {
	case StepAccumulate, StepOpaque:
		pass.SetPipeline(pipeline)
		pass.SetBindGroup(0, a.materialGroup, nil)
		pass.SetVertexBuffer(0, a.vertexBuf, 0, wgpu.WholeSize)
		pass.SetIndexBuffer(a.indexBuf, wgpu.IndexFormatUint16, 0, wgpu.WholeSize)
		for _, m := range step.Models {
			pass.SetBindGroup(1, a.uniformGroup, []uint32{slotOffset(m)})
			pass.DrawIndexed(a.scene.IndexCount(), 1, 0, 0, 0)
		}
	case StepComposite:
		pass.SetPipeline(pipeline)
		pass.SetBindGroup(0, a.targets.composite, nil)
		pass.Draw(6, 1, 0, 0)
	}
	err := pass.End()
	pass.Release()
	if err != nil {
		return fmt.Errorf("%v pass: %w", step.Kind, err)
	}
	return nil
}

func (a *App) Camera() *core.Camera {
	return a.camera
}

func (a *App) Profiler() *Profiler {
	return a.profiler
}

func (a *App) Mode() RenderMode {
	return a.mode
}

func (a *App) SetMode(mode RenderMode) {
	a.mode = mode
}

func (a *App) CycleMode() RenderMode {
	a.mode = a.mode.Next()
	return a.mode
}

func (a *App) Release() {
	a.targets.Release()
	a.pipelines.Release()
	for _, bg := range []*wgpu.BindGroup{a.materialGroup, a.uniformGroup} {
		if bg != nil {
			bg.Release()
		}
	}
	for _, buf := range []*wgpu.Buffer{a.vertexBuf, a.indexBuf, a.uniformBuf} {
		if buf != nil {
			buf.Release()
		}
	}
	a.texture.Release()
	if a.layouts != nil {
		a.layouts.Release()
	}
}
