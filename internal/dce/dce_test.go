package dce_test

import (
	"testing"

	"github.com/nzslang/nzslc/internal/ast"
	"github.com/nzslang/nzslc/internal/constfold"
	"github.com/nzslang/nzslc/internal/dce"
	"github.com/nzslang/nzslc/internal/parser"
	"github.com/nzslang/nzslc/internal/sema"
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

func constNames(mod *ast.Module) []string {
	var out []string
	for _, s := range mod.Root.Statements {
		if d, ok := s.(*ast.DeclareConstStmt); ok {
			out = append(out, d.Name)
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

func TestMarkNoEntryPointsKeepsEverythingLive(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
const unused = 1;
fn helper() -> i32
{
	return 2;
}
`)
	result := dce.Mark(mod)
	for _, s := range mod.Root.Statements {
		switch d := s.(type) {
		case *ast.DeclareConstStmt:
			require.True(t, result.IsLive(d.Ref), "const %q should be live without an entry point", d.Name)
		case *ast.DeclareFunctionStmt:
			require.True(t, result.IsLive(d.Ref), "function %q should be live without an entry point", d.Name)
		}
	}
}

func TestPruneRemovesUnreachableFunctionAndConst(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
const dead = 1;
const used = 2;
fn unreached() -> i32
{
	return dead;
}
[entry(frag)]
fn main() -> i32
{
	return used;
}
`)
	result := dce.Mark(mod)
	removed := dce.Prune(mod, result)
	require.Equal(t, 2, removed, "expected both `dead` and `unreached` to be pruned")
	require.ElementsMatch(t, []string{"main"}, funcNames(mod))
	require.ElementsMatch(t, []string{"used"}, constNames(mod))
}

func TestMarkKeepsConstReachedThroughFunctionCall(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
const factor = 2;
fn scale(x: i32) -> i32
{
	return x * factor;
}
[entry(frag)]
fn main() -> i32
{
	return scale(1);
}
`)
	result := dce.Mark(mod)
	removed := dce.Prune(mod, result)
	require.Equal(t, 0, removed)
	require.ElementsMatch(t, []string{"scale", "main"}, funcNames(mod))
	require.ElementsMatch(t, []string{"factor"}, constNames(mod))
}

func TestMarkKeepsStructReachedOnlyThroughType(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
struct Unused
{
	x: f32
}
struct VertexOut
{
	[builtin(position)] pos: vec4[f32]
}
[entry(vert)]
fn main() -> VertexOut
{
	let out: VertexOut;
	return out;
}
`)
	result := dce.Mark(mod)
	removed := dce.Prune(mod, result)
	require.Equal(t, 1, removed, "expected the unreferenced `Unused` struct to be pruned")
	require.ElementsMatch(t, []string{"VertexOut"}, structNames(mod))
}

// TestMarkKeepsExternalsEvenWhenUnread exercises the package's documented
// scope decision: external resource blocks are always treated as roots,
// since removing one changes a host-visible binding layout even if the
// reachable function graph never happens to read it.
func TestMarkKeepsExternalsEvenWhenUnread(t *testing.T) {
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
	result := dce.Mark(mod)
	removed := dce.Prune(mod, result)
	require.Equal(t, 0, removed)
	require.ElementsMatch(t, []string{"Camera"}, structNames(mod))

	found := false
	for _, s := range mod.Root.Statements {
		if _, ok := s.(*ast.DeclareExternalStmt); ok {
			found = true
		}
	}
	require.True(t, found, "external block must survive pruning")
}
