package shaders

import (
	_ "embed"
)

//go:embed chunk.wgsl
var ChunkWGSL string
