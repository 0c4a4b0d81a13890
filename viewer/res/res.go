// Package res embeds the default resource root.
package res

import (
	"embed"
)

const GlassTexture = "img/glass.png"

//go:embed img
var FS embed.FS
