package gpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
)

//go:embed shaders/canvas.wgsl
var canvasShaderSource string

// ShaderSource returns the WGSL source of the canvas shading core. The same
// module holds both entry points, vs_main and fs_main.
func ShaderSource() string {
	return canvasShaderSource
}

// CompileShaderToSPIRV compiles WGSL source to a SPIR-V word slice for
// backends that cannot consume WGSL directly.
func CompileShaderToSPIRV(wgslSource string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}

	// SPIR-V is little-endian 32-bit words.
	spirvCode := make([]uint32, len(spirvBytes)/4)
	for i := range spirvCode {
		spirvCode[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return spirvCode, nil
}
