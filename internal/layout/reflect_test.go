package layout_test

import (
	"testing"

	"github.com/nzslang/nzslc/internal/constfold"
	"github.com/nzslang/nzslc/internal/layout"
	"github.com/nzslang/nzslc/internal/parser"
	"github.com/nzslang/nzslc/internal/sema"
	"github.com/stretchr/testify/require"
)

func resolve(t *testing.T, src string) *layout.Report {
	t.Helper()
	mod, perrs := parser.Parse(src, "test.nzsl")
	require.Empty(t, perrs)
	errs := sema.Resolve(mod, nil)
	require.Empty(t, errs)
	// The real pipeline runs constfold between sema and reflection so
	// any set/binding/workgroup attribute written as more than a bare
	// literal (sema itself resolves the bare-literal case) is reduced
	// to a concrete value before a renderer inspects it.
	ferrs := constfold.Fold(mod)
	require.Empty(t, ferrs)
	report := layout.Reflect(mod)
	return &report
}

func TestReflectUniformBlockUsesStd140Vec3Padding(t *testing.T) {
	report := resolve(t, `
[nzsl_version("1.0")] module;
struct Camera
{
	position: vec3[f32],
	fov: f32
}
external
{
	[set(0), binding(0)] cam: uniform[Camera]
}
`)
	require.Len(t, report.Bindings, 1)
	b := report.Bindings[0]
	require.Equal(t, "uniform", b.Kind)
	require.NotNil(t, b.Layout)
	require.Equal(t, 0, b.Layout.Fields[0].Offset)
	// std140 rounds a vec3's alignment up to 16 bytes but leaves its size
	// at 12, so the 4-byte `fov` packs directly after it at offset 12.
	require.Equal(t, 12, b.Layout.Fields[1].Offset)
}

func TestReflectStorageBlockDoesNotPadVec3(t *testing.T) {
	report := resolve(t, `
[nzsl_version("1.0")] module;
struct Particle
{
	velocity: vec3[f32],
	mass: f32
}
external
{
	[set(0), binding(0)] particles: storage[Particle]
}
`)
	require.Len(t, report.Bindings, 1)
	b := report.Bindings[0]
	require.Equal(t, "storage", b.Kind)
	require.Equal(t, 12, b.Layout.Fields[1].Offset)
}

func TestReflectEntryPointStage(t *testing.T) {
	report := resolve(t, `
[nzsl_version("1.0")] module;
[entry(frag)]
fn main()
{
}
`)
	require.Len(t, report.EntryPoints, 1)
	require.Equal(t, "main", report.EntryPoints[0].Name)
	require.Equal(t, "fragment", report.EntryPoints[0].Stage)
}

func TestReflectComputeWorkgroupSize(t *testing.T) {
	report := resolve(t, `
[nzsl_version("1.0")] module;
[entry(compute), workgroup(8, 8, 1)]
fn main()
{
}
`)
	require.Len(t, report.EntryPoints, 1)
	require.Equal(t, [3]uint32{8, 8, 1}, report.EntryPoints[0].Workgroup)
}

func TestFieldOffsetsNestedStruct(t *testing.T) {
	mod, perrs := parser.Parse(`
[nzsl_version("1.0")] module;
struct Inner
{
	a: f32,
	b: f32
}
struct Outer
{
	x: f32,
	inner: Inner
}
`, "test.nzsl")
	require.Empty(t, perrs)
	errs := sema.Resolve(mod, nil)
	require.Empty(t, errs)

	c := layout.NewComputer(mod, layout.Std430)
	offsets := c.FieldOffsets(1)
	require.Equal(t, []int{0, 4}, offsets)
}
