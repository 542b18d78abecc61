package printer_test

import (
	"testing"

	"github.com/nzslang/nzslc/internal/printer"
	"github.com/stretchr/testify/require"
)

func TestGenerateGLSLMinimalFragmentShaderHasEmptyMain(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
[entry(frag)]
fn main()
{
}
`)
	out := printer.GenerateGLSL(mod, printer.GLSLOptions{})
	require.Contains(t, out, "void main()")
	require.NotContains(t, out, " in ")
	require.NotContains(t, out, " out ")
}

func TestGenerateGLSLFlattensEntryStructIO(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
struct VertIn
{
	pos: vec3[f32],
	uv: vec2[f32]
}
struct VertOut
{
	[builtin(position)] position: vec4[f32],
	uv: vec2[f32]
}
[entry(vert)]
fn main(input: VertIn) -> VertOut
{
	let result: VertOut;
	result.position = vec4[f32](input.pos.x, input.pos.y, input.pos.z, 1.0);
	result.uv = input.uv;
	return result;
}
`)
	out := printer.GenerateGLSL(mod, printer.GLSLOptions{})
	require.Contains(t, out, "void main()")
	require.Contains(t, out, "layout(location = 0) in vec3")
	require.Contains(t, out, "layout(location = 1) in vec2")
	require.Contains(t, out, "layout(location = 0) out vec2")
	require.Contains(t, out, "gl_Position")
}

func TestGenerateGLSLFlipYOnlyAppliesWhenPositionIsWritten(t *testing.T) {
	withPosition := resolveSource(t, `
[nzsl_version("1.0")] module;
struct VertOut
{
	[builtin(position)] position: vec4[f32]
}
[entry(vert)]
fn main() -> VertOut
{
	let result: VertOut;
	result.position = vec4[f32](0.0, 0.0, 0.0, 1.0);
	return result;
}
`)
	out := printer.GenerateGLSL(withPosition, printer.GLSLOptions{FlipY: true})
	require.Contains(t, out, "gl_Position.y = -gl_Position.y;")

	withoutPosition := resolveSource(t, `
[nzsl_version("1.0")] module;
[entry(frag)]
fn main() -> vec4[f32]
{
	return vec4[f32](1.0, 0.0, 0.0, 1.0);
}
`)
	out2 := printer.GenerateGLSL(withoutPosition, printer.GLSLOptions{FlipY: true})
	require.NotContains(t, out2, "gl_Position")
}

func TestGenerateGLSLVersionDirectiveHonorsESAndVersion(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
[entry(frag)]
fn main()
{
}
`)
	out := printer.GenerateGLSL(mod, printer.GLSLOptions{ES: true, Version: 310})
	require.Contains(t, out, "#version 310 es")
}
