package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/oitview"
	"github.com/gogpu/naga"
)

const EntryPoint = "main"

// ShaderModules is a compiled vertex/fragment pair.
type ShaderModules struct {
	Vertex   *wgpu.ShaderModule
	Fragment *wgpu.ShaderModule
}

func (m *ShaderModules) Release() {
	if m == nil {
		return
	}
	if m.Vertex != nil {
		m.Vertex.Release()
	}
	if m.Fragment != nil {
		m.Fragment.Release()
	}
}

// ShaderCompiler turns shader directory sources into device modules. With
// Validate set, every stage is first run through the naga WGSL front end so
// errors name the failing file rather than surfacing at pipeline creation.
type ShaderCompiler struct {
	Device   *wgpu.Device
	Validate bool
}

func NewShaderCompiler(device *wgpu.Device, validate bool) *ShaderCompiler {
	return &ShaderCompiler{Device: device, Validate: validate}
}

// ValidateWGSL compiles src to SPIR-V and discards the result.
func ValidateWGSL(name, src string) error {
	spirv, err := naga.Compile(src)
	if err != nil {
		return fmt.Errorf("compile %s: %w", name, err)
	}
	if len(spirv) < 4 {
		return fmt.Errorf("compile %s: empty SPIR-V output", name)
	}
	return nil
}

func (c *ShaderCompiler) Compile(src oitview.ShaderAsset) (*ShaderModules, error) {
	vertName := src.Dir + "/" + oitview.VertexShaderFile
	fragName := src.Dir + "/" + oitview.FragmentShaderFile

	if c.Validate {
		if err := ValidateWGSL(vertName, src.Vertex); err != nil {
			return nil, err
		}
		if err := ValidateWGSL(fragName, src.Fragment); err != nil {
			return nil, err
		}
	}

	vs, err := c.module(vertName, src.Vertex)
	if err != nil {
		return nil, err
	}
	fs, err := c.module(fragName, src.Fragment)
	if err != nil {
		vs.Release()
		return nil, err
	}
	return &ShaderModules{Vertex: vs, Fragment: fs}, nil
}

func (c *ShaderCompiler) module(name, code string) (*wgpu.ShaderModule, error) {
	m, err := c.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          name,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: code},
	})
	if err != nil {
		return nil, fmt.Errorf("create shader module %s: %w", name, err)
	}
	return m, nil
}
