package printer_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nzslang/nzslc/internal/ast"
	"github.com/nzslang/nzslc/internal/constfold"
	"github.com/nzslang/nzslc/internal/parser"
	"github.com/nzslang/nzslc/internal/printer"
	"github.com/nzslang/nzslc/internal/resolver"
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

func TestPrintRoundTripsConstAndFunction(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
const size = 4;
fn f() -> i32
{
	return size;
}
`)
	out := printer.Print(mod, printer.Options{})

	reparsed, perrs := parser.Parse(out, "roundtrip.nzsl")
	require.Empty(t, perrs, "printed source failed to reparse:\n%s", out)
	errs := sema.Resolve(reparsed, nil)
	require.Empty(t, errs, "printed source failed to re-resolve:\n%s", out)

	require.Contains(t, out, "const size")
	require.Contains(t, out, "fn f()")
}

func TestPrintPreservesModuleMetadata(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0"), author("jane"), desc("a shader"), license("MIT")] module Demo;
`)
	out := printer.Print(mod, printer.Options{})
	require.Contains(t, out, `author("jane")`)
	require.Contains(t, out, `desc("a shader")`)
	require.Contains(t, out, `license("MIT")`)
	require.Contains(t, out, "module Demo;")
}

func TestPrintOmitsAttributesWithoutAValue(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
struct V
{
	pos: vec3[f32]
}
`)
	out := printer.Print(mod, printer.Options{})
	// `pos` carries no builtin/location/interp/cond attribute, so no
	// leading [...] should precede it (§4.11 "attributes printed only
	// when has_value").
	require.Contains(t, out, "pos: vec3[f32]")
	require.NotContains(t, out, "[builtin")
	require.NotContains(t, out, "[location")
}

func TestPrintResolvesExplicitBindingAttributes(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
struct Camera
{
	fov: f32
}
external
{
	[set(2), binding(5)] cam: uniform[Camera]
}
`)
	out := printer.Print(mod, printer.Options{})
	require.Contains(t, out, "set(2)")
	require.Contains(t, out, "binding(5)")
	require.Contains(t, out, "uniform[Camera]")
}

func TestPrintEntryPointAndWorkgroupAttributes(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
[entry(compute), workgroup(8, 8, 1)]
fn main()
{
}
`)
	out := printer.Print(mod, printer.Options{})
	require.Contains(t, out, "entry(compute)")
	require.Contains(t, out, "workgroup(8, 8, 1)")
}

func TestPrintMinifyWhitespaceOmitsIndentAndBlankLines(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
fn f() -> i32
{
	return 1;
}
`)
	pretty := printer.Print(mod, printer.Options{})
	minified := printer.Print(mod, printer.Options{MinifyWhitespace: true})
	require.Greater(t, len(pretty), len(minified))
	require.NotContains(t, minified, "\n")
}

func writeModuleFile(t *testing.T, root, relPath, body string) {
	t.Helper()
	full := filepath.Join(root, relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(body), 0o644))
}

// TestPrintInlinesImportedSubmodule exercises §8 scenario 5: a module
// with an `import … as M;` edge prints the imported module as an
// inlined `module M { … }` block rather than the original import line.
func TestPrintInlinesImportedSubmodule(t *testing.T) {
	root := t.TempDir()
	writeModuleFile(t, root, "Simple/Module.nzsl", `
[nzsl_version("1.0")] module Simple.Module;
struct Block
{
	value: f32
}
`)

	var res *resolver.FilesystemResolver
	res = resolver.NewFilesystemResolver([]string{root}, func(source, fileName string) (*ast.Module, error) {
		m, perrs := parser.Parse(source, fileName)
		if len(perrs) > 0 {
			return nil, perrs[0]
		}
		if errs := sema.Resolve(m, res); len(errs) > 0 {
			return nil, errs[0]
		}
		return m, nil
	})

	mod, perrs := parser.Parse(`
[nzsl_version("1.0")] module;
import Simple.Module from "simple/module.nzsl" as M;
`, "main.nzsl")
	require.Empty(t, perrs)
	errs := sema.Resolve(mod, res)
	require.Empty(t, errs)

	out := printer.Print(mod, printer.Options{})
	require.Contains(t, out, "module M {")
	require.Contains(t, out, "struct Block")
	require.NotContains(t, out, `import Simple.Module from`)
}
