package shaders

import (
	_ "embed"
)

//go:embed castle.wgsl
var CastleWGSL string
