package constfold_test

import (
	"testing"

	"github.com/nzslang/nzslc/internal/ast"
	"github.com/nzslang/nzslc/internal/constfold"
	"github.com/nzslang/nzslc/internal/parser"
	"github.com/nzslang/nzslc/internal/sema"
	"github.com/nzslang/nzslc/internal/types"
	"github.com/stretchr/testify/require"
)

func resolveSource(t *testing.T, src string) *ast.Module {
	t.Helper()
	mod, perrs := parser.Parse(src, "test.nzsl")
	require.Empty(t, perrs, "unexpected parse errors")
	errs := sema.Resolve(mod, nil)
	require.Empty(t, errs, "unexpected sema errors")
	return mod
}

func findFunc(mod *ast.Module, name string) *ast.DeclareFunctionStmt {
	for _, s := range mod.Root.Statements {
		if d, ok := s.(*ast.DeclareFunctionStmt); ok && d.Name == name {
			return d
		}
	}
	return nil
}

func TestFoldBinaryAddConstants(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
fn f() -> i32
{
	return 1 + 2;
}
`)
	errs := constfold.Fold(mod)
	require.Empty(t, errs)
	fn := findFunc(mod, "f")
	ret := fn.Body.Statements[0].(*ast.ReturnStmt)
	c, ok := ret.Value.(*ast.ConstantExpr)
	require.True(t, ok, "expected folded ConstantExpr, got %T", ret.Value)
	require.Equal(t, int64(3), c.Value.I64)
}

func TestFoldIntegerDivisionByZeroReportsError(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
fn f() -> i32
{
	return 1 / 0;
}
`)
	errs := constfold.Fold(mod)
	require.Len(t, errs, 1)
	require.Equal(t, constfold.ErrIntegralDivisionByZero, errs[0].Kind)

	fn := findFunc(mod, "f")
	ret := fn.Body.Statements[0].(*ast.ReturnStmt)
	_, ok := ret.Value.(*ast.ConstantExpr)
	require.False(t, ok, "division by zero must not produce a folded constant")
}

func TestFoldShiftByTooLargeAmountReportsError(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
fn f() -> i32
{
	return 1 << 40;
}
`)
	errs := constfold.Fold(mod)
	require.Len(t, errs, 1)
	require.Equal(t, constfold.ErrTooLargeShift, errs[0].Kind)
}

func TestFoldVectorScalarBroadcast(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
fn f() -> vec3[f32]
{
	return vec3[f32](1.0, 2.0, 3.0) * 2.0;
}
`)
	errs := constfold.Fold(mod)
	require.Empty(t, errs)
	fn := findFunc(mod, "f")
	ret := fn.Body.Statements[0].(*ast.ReturnStmt)
	c, ok := ret.Value.(*ast.ConstantExpr)
	require.True(t, ok, "expected folded ConstantExpr, got %T", ret.Value)
	require.Len(t, c.Value.Vec, 3)
	require.Equal(t, 2.0, c.Value.Vec[0].F64)
	require.Equal(t, 4.0, c.Value.Vec[1].F64)
	require.Equal(t, 6.0, c.Value.Vec[2].F64)
}

func TestFoldSwizzleOfSwizzleCollapses(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
fn f(v: vec4[f32]) -> f32
{
	return v.wzyx.x;
}
`)
	errs := constfold.Fold(mod)
	require.Empty(t, errs)
	fn := findFunc(mod, "f")
	ret := fn.Body.Statements[0].(*ast.ReturnStmt)
	sw, ok := ret.Value.(*ast.SwizzleExpr)
	require.True(t, ok, "expected a collapsed SwizzleExpr, got %T", ret.Value)
	_, stillNested := sw.Object.(*ast.SwizzleExpr)
	require.False(t, stillNested, "swizzle-of-swizzle must collapse into one SwizzleExpr")
	require.Equal(t, []uint8{3}, sw.Components)
	_, isVar := sw.Object.(*ast.VariableValueExpr)
	require.True(t, isVar, "expected the collapsed swizzle to reference v directly, got %T", sw.Object)
}

func TestFoldCastTruncatesFloatTowardZero(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
fn f() -> i32
{
	return i32(3.9);
}
`)
	errs := constfold.Fold(mod)
	require.Empty(t, errs)
	fn := findFunc(mod, "f")
	ret := fn.Body.Statements[0].(*ast.ReturnStmt)
	c, ok := ret.Value.(*ast.ConstantExpr)
	require.True(t, ok, "expected folded ConstantExpr, got %T", ret.Value)
	require.Equal(t, ast.KI32, c.Value.Kind)
	require.Equal(t, int64(3), c.Value.I64)
}

func TestFoldConstIfEliminatesDeadBranch(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
fn f() -> i32
{
	if const (false)
	{
		return 1;
	}
	else
	{
		return 2;
	}
}
`)
	errs := constfold.Fold(mod)
	require.Empty(t, errs)
	fn := findFunc(mod, "f")
	require.Len(t, fn.Body.Statements, 1)
	scoped, ok := fn.Body.Statements[0].(*ast.ScopedStmt)
	require.True(t, ok, "expected the live else body spliced in as a ScopedStmt, got %T", fn.Body.Statements[0])
	require.Len(t, scoped.Body.Statements, 1)
	ret := scoped.Body.Statements[0].(*ast.ReturnStmt)
	c, ok := ret.Value.(*ast.ConstantExpr)
	require.True(t, ok)
	require.Equal(t, int64(2), c.Value.I64)
}

func TestFoldArraySizeIntrinsic(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
fn f(xs: array[f32, 4]) -> u32
{
	return ArraySize(xs);
}
`)
	errs := constfold.Fold(mod)
	require.Empty(t, errs)
	fn := findFunc(mod, "f")
	ret := fn.Body.Statements[0].(*ast.ReturnStmt)
	c, ok := ret.Value.(*ast.ConstantExpr)
	require.True(t, ok, "expected folded ConstantExpr, got %T", ret.Value)
	require.Equal(t, types.U32, c.Value.Type().(*types.Prim).Kind)
	require.Equal(t, int64(4), c.Value.I64)
}

func TestFoldIsIdempotent(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
fn f() -> i32
{
	return (1 + 2) * 3;
}
`)
	errs1 := constfold.Fold(mod)
	require.Empty(t, errs1)
	errs2 := constfold.Fold(mod)
	require.Empty(t, errs2)

	fn := findFunc(mod, "f")
	ret := fn.Body.Statements[0].(*ast.ReturnStmt)
	c, ok := ret.Value.(*ast.ConstantExpr)
	require.True(t, ok)
	require.Equal(t, int64(9), c.Value.I64)
}

func TestFoldResolvesExplicitBindingLiteral(t *testing.T) {
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
	errs := constfold.Fold(mod)
	require.Empty(t, errs)

	ext := mod.Root.Statements[1].(*ast.DeclareExternalStmt)
	require.True(t, ext.Members[0].Set.IsResultingValue())
	require.Equal(t, uint32(2), ext.Members[0].Set.GetResultingValue())
	require.True(t, ext.Members[0].Binding.IsResultingValue())
	require.Equal(t, uint32(5), ext.Members[0].Binding.GetResultingValue())
}

func TestFoldResolvesComputeWorkgroupExpression(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
[entry(compute), workgroup(4 + 4, 4 + 4, 1)]
fn main()
{
}
`)
	errs := constfold.Fold(mod)
	require.Empty(t, errs)
	fn := findFunc(mod, "main")
	require.True(t, fn.Workgroup[0].IsResultingValue())
	require.Equal(t, uint32(8), fn.Workgroup[0].GetResultingValue())
	require.Equal(t, uint32(1), fn.Workgroup[2].GetResultingValue())
}
