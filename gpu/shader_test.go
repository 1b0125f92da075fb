package gpu

import (
	"strings"
	"testing"
)

func TestShaderSource_Embedded(t *testing.T) {
	src := ShaderSource()
	if src == "" {
		t.Fatal("shader source is empty")
	}

	for _, entry := range []string{"fn vs_main", "fn fs_main"} {
		if !strings.Contains(src, entry) {
			t.Errorf("shader source missing entry point %q", entry)
		}
	}
}

func TestShaderSource_BindingLayout(t *testing.T) {
	src := ShaderSource()

	// The bind group numbering is a wire contract with pipeline.go and
	// with the record encoders; catch accidental renumbering.
	bindings := []string{
		"@group(0) @binding(0) var<storage, read> elements",
		"@group(1) @binding(0) var textures",
		"@group(1) @binding(1) var tex_sampler",
		"@group(2) @binding(0) var<uniform> transform",
		"@group(3) @binding(0) var<storage, read> brushes",
	}
	for _, b := range bindings {
		if !strings.Contains(src, b) {
			t.Errorf("shader source missing binding %q", b)
		}
	}
}

func TestShaderSource_RecordFields(t *testing.T) {
	src := ShaderSource()

	// The Element struct must keep the field order the encoder writes.
	fields := []string{
		"position: vec2<f32>",
		"image: vec2<f32>",
		"src: vec2<f32>",
		"uv: vec2<f32>",
		"size: vec2<f32>",
		"attrs: vec4<u32>",
	}
	for _, f := range fields {
		if !strings.Contains(src, f) {
			t.Errorf("shader source missing element field %q", f)
		}
	}
}
