package sema_test

import (
	"testing"

	"github.com/nzslang/nzslc/internal/ast"
	"github.com/nzslang/nzslc/internal/parser"
	"github.com/nzslang/nzslc/internal/sema"
	"github.com/nzslang/nzslc/internal/types"
	"github.com/stretchr/testify/require"
)

func resolveSource(t *testing.T, src string) (*ast.Module, []*sema.Error) {
	t.Helper()
	mod, perrs := parser.Parse(src, "test.nzsl")
	require.Empty(t, perrs, "unexpected parse errors")
	errs := sema.Resolve(mod, nil)
	return mod, errs
}

func findFunc(mod *ast.Module, name string) *ast.DeclareFunctionStmt {
	for _, s := range mod.Root.Statements {
		if d, ok := s.(*ast.DeclareFunctionStmt); ok && d.Name == name {
			return d
		}
	}
	return nil
}

func TestResolveConstIntLiteralNarrowsToI32(t *testing.T) {
	mod, errs := resolveSource(t, `
[nzsl_version("1.0")] module;
const x = 1;
`)
	require.Empty(t, errs)
	for _, s := range mod.Root.Statements {
		if d, ok := s.(*ast.DeclareConstStmt); ok {
			require.Equal(t, &types.Prim{Kind: types.I32}, d.Type)
			return
		}
	}
	t.Fatal("const x not found")
}

func TestResolveFunctionReturnsParamValue(t *testing.T) {
	mod, errs := resolveSource(t, `
[nzsl_version("1.0")] module;
fn identity(x: i32) -> i32
{
	return x;
}
`)
	require.Empty(t, errs)
	fn := findFunc(mod, "identity")
	require.NotNil(t, fn)
	ret := fn.Body.Statements[0].(*ast.ReturnStmt)
	val, ok := ret.Value.(*ast.VariableValueExpr)
	require.True(t, ok, "expected a resolved VariableValueExpr, got %T", ret.Value)
	require.Equal(t, ast.CatVariable, val.Variable.Category)
	require.Equal(t, &types.Prim{Kind: types.I32}, val.Type())
}

func TestResolveUndeclaredIdentifierReportsError(t *testing.T) {
	_, errs := resolveSource(t, `
[nzsl_version("1.0")] module;
fn f() -> i32
{
	return y;
}
`)
	require.Len(t, errs, 1)
	require.Equal(t, sema.ErrUndeclaredIdentifier, errs[0].Kind)
}

func TestResolveBinaryExprUnifiesUntypedLiterals(t *testing.T) {
	mod, errs := resolveSource(t, `
[nzsl_version("1.0")] module;
fn f(a: f32) -> f32
{
	return a + 1;
}
`)
	require.Empty(t, errs)
	fn := findFunc(mod, "f")
	ret := fn.Body.Statements[0].(*ast.ReturnStmt)
	require.Equal(t, &types.Prim{Kind: types.F32}, ret.Value.Type())
}

func TestResolveFieldAccessFindsStructMember(t *testing.T) {
	mod, errs := resolveSource(t, `
[nzsl_version("1.0")] module;
struct Point
{
	x: f32,
	y: f32
}

fn getX(p: Point) -> f32
{
	return p.x;
}
`)
	require.Empty(t, errs)
	fn := findFunc(mod, "getX")
	ret := fn.Body.Statements[0].(*ast.ReturnStmt)
	fe, ok := ret.Value.(*ast.AccessFieldExpr)
	require.True(t, ok, "expected AccessFieldExpr, got %T", ret.Value)
	require.Equal(t, 0, fe.FieldIndex)
	require.Equal(t, "x", fe.FieldName)
}

func TestResolveUnknownFieldReportsError(t *testing.T) {
	_, errs := resolveSource(t, `
[nzsl_version("1.0")] module;
struct Point
{
	x: f32
}

fn f(p: Point) -> f32
{
	return p.z;
}
`)
	require.Len(t, errs, 1)
	require.Equal(t, sema.ErrUnknownField, errs[0].Kind)
}

func TestResolveSwizzleSelectsVectorComponents(t *testing.T) {
	mod, errs := resolveSource(t, `
[nzsl_version("1.0")] module;
fn f(v: vec3[f32]) -> vec2[f32]
{
	return v.xy;
}
`)
	require.Empty(t, errs)
	fn := findFunc(mod, "f")
	ret := fn.Body.Statements[0].(*ast.ReturnStmt)
	sw, ok := ret.Value.(*ast.SwizzleExpr)
	require.True(t, ok, "expected SwizzleExpr, got %T", ret.Value)
	require.Equal(t, []uint8{0, 1}, sw.Components)
	require.Equal(t, &types.Vector{ComponentCount: 2, Primitive: types.F32}, sw.Type())
}

func TestResolveSingleSwizzleComponentIsScalar(t *testing.T) {
	mod, errs := resolveSource(t, `
[nzsl_version("1.0")] module;
fn f(v: vec3[f32]) -> f32
{
	return v.x;
}
`)
	require.Empty(t, errs)
	fn := findFunc(mod, "f")
	ret := fn.Body.Statements[0].(*ast.ReturnStmt)
	sw, ok := ret.Value.(*ast.SwizzleExpr)
	require.True(t, ok, "expected SwizzleExpr, got %T", ret.Value)
	require.Equal(t, &types.Prim{Kind: types.F32}, sw.Type())
}

func TestResolveCastCallBecomesCastExpr(t *testing.T) {
	mod, errs := resolveSource(t, `
[nzsl_version("1.0")] module;
fn f() -> f32
{
	return f32(1);
}
`)
	require.Empty(t, errs)
	fn := findFunc(mod, "f")
	ret := fn.Body.Statements[0].(*ast.ReturnStmt)
	ce, ok := ret.Value.(*ast.CastExpr)
	require.True(t, ok, "expected CastExpr, got %T", ret.Value)
	require.Equal(t, &types.Prim{Kind: types.F32}, ce.TargetType)
}

func TestResolveFunctionCallBecomesCallFunctionExpr(t *testing.T) {
	mod, errs := resolveSource(t, `
[nzsl_version("1.0")] module;
fn helper() -> i32
{
	return 1;
}

fn f() -> i32
{
	return helper();
}
`)
	require.Empty(t, errs)
	fn := findFunc(mod, "f")
	ret := fn.Body.Statements[0].(*ast.ReturnStmt)
	call, ok := ret.Value.(*ast.CallFunctionExpr)
	require.True(t, ok, "expected CallFunctionExpr, got %T", ret.Value)
	ref, ok := call.Callee.(*ast.FunctionRefExpr)
	require.True(t, ok, "expected resolved FunctionRefExpr callee, got %T", call.Callee)
	require.Equal(t, ast.CatFunction, ref.Function.Category)
	require.Equal(t, &types.Prim{Kind: types.I32}, call.Type())
}

func TestResolveArrayLenMethodCall(t *testing.T) {
	mod, errs := resolveSource(t, `
[nzsl_version("1.0")] module;
fn f(xs: array[f32, 4]) -> u32
{
	return xs.len();
}
`)
	require.Empty(t, errs)
	fn := findFunc(mod, "f")
	ret := fn.Body.Statements[0].(*ast.ReturnStmt)
	mc, ok := ret.Value.(*ast.CallMethodExpr)
	require.True(t, ok, "expected CallMethodExpr, got %T", ret.Value)
	require.Equal(t, &types.Prim{Kind: types.U32}, mc.Type())
}

func TestResolveInvalidAssignTargetReportsError(t *testing.T) {
	_, errs := resolveSource(t, `
[nzsl_version("1.0")] module;
fn f() -> i32
{
	1 = 2;
	return 0;
}
`)
	require.NotEmpty(t, errs)
	found := false
	for _, e := range errs {
		if e.Kind == sema.ErrInvalidLvalue {
			found = true
		}
	}
	require.True(t, found, "expected an ErrInvalidLvalue among %v", errs)
}

func TestResolveAssignToVariableIsLegal(t *testing.T) {
	_, errs := resolveSource(t, `
[nzsl_version("1.0")] module;
fn f() -> i32
{
	let x = 1;
	x = 2;
	return x;
}
`)
	require.Empty(t, errs)
}

func TestResolveForEachBindsElementType(t *testing.T) {
	mod, errs := resolveSource(t, `
[nzsl_version("1.0")] module;
fn f(xs: array[f32, 4]) -> f32
{
	let total = 0.0;
	for (x in xs)
	{
		total = total + x;
	}
	return total;
}
`)
	require.Empty(t, errs)
	fn := findFunc(mod, "f")
	require.NotNil(t, fn)
}

func TestResolveDuplicateStructReportsError(t *testing.T) {
	_, errs := resolveSource(t, `
[nzsl_version("1.0")] module;
struct S { x: f32 }
struct S { y: f32 }
`)
	require.NotEmpty(t, errs)
	found := false
	for _, e := range errs {
		if e.Kind == sema.ErrDuplicateDeclaration {
			found = true
		}
	}
	require.True(t, found)
}
