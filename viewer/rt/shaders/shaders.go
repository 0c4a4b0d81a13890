package shaders

import (
	"embed"
)

// Shader directories. Each holds a shader.vert and shader.frag WGSL pair with
// entry points named main.
const (
	Opaque       = "opaque"
	Transparency = "transparency"
	Screen       = "screen"
)

//go:embed opaque transparency screen
var FS embed.FS

// Dirs lists every shader directory the renderer loads.
func Dirs() []string {
	return []string{Opaque, Transparency, Screen}
}
