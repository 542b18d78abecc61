package serial_test

import (
	"testing"

	"github.com/nzslang/nzslc/internal/ast"
	"github.com/nzslang/nzslc/internal/constfold"
	"github.com/nzslang/nzslc/internal/parser"
	"github.com/nzslang/nzslc/internal/sema"
	"github.com/nzslang/nzslc/internal/serial"
	"github.com/stretchr/testify/require"
)

func resolveSource(t *testing.T, src string) *ast.Module {
	t.Helper()
	mod, perrs := parser.Parse(src, "test.nzsl")
	require.Empty(t, perrs, "unexpected parse errors")
	errs := sema.Resolve(mod, nil)
	require.Empty(t, errs, "unexpected sema errors")
	ferrs := constfold.Fold(mod)
	require.Empty(t, ferrs, "unexpected constfold errors")
	return mod
}

func funcNames(mod *ast.Module) []string {
	var out []string
	for _, s := range mod.Root.Statements {
		if fn, ok := s.(*ast.DeclareFunctionStmt); ok {
			out = append(out, fn.Name)
		}
	}
	return out
}

func structNames(mod *ast.Module) []string {
	var out []string
	for _, s := range mod.Root.Statements {
		if d, ok := s.(*ast.DeclareStructStmt); ok {
			out = append(out, d.Name)
		}
	}
	return out
}

func TestRoundTripHeaderAndMetadata(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0"), author("nzsl"), desc("test module"), license("MIT")] module Foo;
fn main() -> i32
{
	return 1;
}
`)
	data := serial.Serialize(mod)
	got, err := serial.Deserialize(data)
	require.NoError(t, err)
	require.Equal(t, mod.Metadata.ModuleName, got.Metadata.ModuleName)
	require.Equal(t, mod.Metadata.LangVersion, got.Metadata.LangVersion)
	require.Equal(t, mod.Metadata.Author, got.Metadata.Author)
	require.Equal(t, mod.Metadata.Description, got.Metadata.Description)
	require.Equal(t, mod.Metadata.License, got.Metadata.License)
}

func TestRoundTripPreservesDeclarations(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
const factor = 2;
struct VertexOut
{
	[builtin(position)] pos: vec4[f32]
}
fn scale(x: i32) -> i32
{
	return x * factor;
}
[entry(vert)]
fn main() -> VertexOut
{
	let out: VertexOut;
	return out;
}
`)
	data := serial.Serialize(mod)
	got, err := serial.Deserialize(data)
	require.NoError(t, err)
	require.ElementsMatch(t, funcNames(mod), funcNames(got))
	require.ElementsMatch(t, structNames(mod), structNames(got))
	require.Equal(t, len(mod.Constants), len(got.Constants))
	require.Equal(t, len(mod.Functions), len(got.Functions))
	require.Equal(t, len(mod.Structs), len(got.Structs))
	for i, sym := range mod.Constants {
		require.Equal(t, sym.Name, got.Constants[i].Name)
	}
}

func TestRoundTripPreservesExpressionsAndControlFlow(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
fn classify(x: i32) -> i32
{
	if (x > 0)
	{
		return 1;
	}
	else if (x < 0)
	{
		return -1;
	}
	else
	{
		return 0;
	}
}
fn sum(n: i32) -> i32
{
	let total = 0;
	for i in 0 -> n
	{
		total += i;
	}
	return total;
}
`)
	data := serial.Serialize(mod)
	got, err := serial.Deserialize(data)
	require.NoError(t, err)
	require.ElementsMatch(t, funcNames(mod), funcNames(got))

	var origBody, gotBody *ast.MultiStmt
	for _, s := range mod.Root.Statements {
		if fn, ok := s.(*ast.DeclareFunctionStmt); ok && fn.Name == "classify" {
			origBody = fn.Body
		}
	}
	for _, s := range got.Root.Statements {
		if fn, ok := s.(*ast.DeclareFunctionStmt); ok && fn.Name == "classify" {
			gotBody = fn.Body
		}
	}
	require.NotNil(t, origBody)
	require.NotNil(t, gotBody)
	require.Equal(t, len(origBody.Statements), len(gotBody.Statements))

	branch, ok := gotBody.Statements[0].(*ast.BranchStmt)
	require.True(t, ok, "expected the deserialized first statement to be a branch")
	require.Len(t, branch.Cases, 2, "if/else-if should keep two conditional arms")
	require.NotNil(t, branch.Else, "trailing else must survive the round trip")
}

func TestRoundTripPreservesExternalsAndResourceTypes(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
struct Camera
{
	fov: f32
}
external
{
	[set(0), binding(0)] cam: uniform[Camera]
}
[entry(frag)]
fn main() -> i32
{
	return 1;
}
`)
	data := serial.Serialize(mod)
	got, err := serial.Deserialize(data)
	require.NoError(t, err)

	var ext *ast.DeclareExternalStmt
	for _, s := range got.Root.Statements {
		if d, ok := s.(*ast.DeclareExternalStmt); ok {
			ext = d
		}
	}
	require.NotNil(t, ext, "external block must survive round trip")
	require.Len(t, ext.Members, 1)
	require.Equal(t, "cam", ext.Members[0].Name)
	require.True(t, ext.Members[0].Set.IsResultingValue())
	require.Equal(t, uint32(0), ext.Members[0].Set.GetResultingValue())
	require.True(t, ext.Members[0].Binding.IsResultingValue())
	require.Equal(t, uint32(0), ext.Members[0].Binding.GetResultingValue())
	require.True(t, ext.Members[0].Type.Equals(mod.Root.Statements[1].(*ast.DeclareExternalStmt).Members[0].Type))
}

func TestDeserializeRejectsBadMagic(t *testing.T) {
	_, err := serial.Deserialize([]byte{0, 0, 0, 0, 0, 0, 0, 1})
	require.Error(t, err)
}

func TestDeserializeRejectsTruncatedStream(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
fn main() -> i32
{
	return 1;
}
`)
	data := serial.Serialize(mod)
	_, err := serial.Deserialize(data[:len(data)-4])
	require.Error(t, err)
}

func TestDeserializeRejectsUnsupportedVersion(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
fn main() -> i32
{
	return 1;
}
`)
	data := serial.Serialize(mod)
	// version is the second u32 in the header, big-endian.
	data[7] = 99
	_, err := serial.Deserialize(data)
	require.Error(t, err)
}
