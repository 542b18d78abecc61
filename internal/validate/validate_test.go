package validate_test

import (
	"testing"

	"github.com/nzslang/nzslc/internal/ast"
	"github.com/nzslang/nzslc/internal/constfold"
	"github.com/nzslang/nzslc/internal/parser"
	"github.com/nzslang/nzslc/internal/sema"
	"github.com/nzslang/nzslc/internal/validate"
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

func codes(res *validate.Result) []string {
	var out []string
	for _, d := range res.Diagnostics.Items() {
		out = append(out, d.Code)
	}
	return out
}

func TestValidateAcceptsWellFormedModule(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
fn f() -> i32
{
	return 1;
}
`)
	res := validate.Validate(mod, validate.Options{})
	require.True(t, res.Valid, "%v", codes(res))
}

func TestValidateRejectsBreakOutsideLoop(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
fn f()
{
	break;
}
`)
	res := validate.Validate(mod, validate.Options{})
	require.False(t, res.Valid)
	require.Contains(t, codes(res), string(validate.CodeLoopControl))
}

func TestValidateAllowsBreakInsideLoop(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
fn f()
{
	while (true)
	{
		break;
	}
}
`)
	res := validate.Validate(mod, validate.Options{})
	require.True(t, res.Valid, "%v", codes(res))
}

func TestValidateRejectsDiscardOutsideFragment(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
fn f()
{
	discard;
}
`)
	res := validate.Validate(mod, validate.Options{})
	require.False(t, res.Valid)
	require.Contains(t, codes(res), string(validate.CodeDiscardStage))
}

func TestValidateAllowsDiscardReachableFromFragmentEntry(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
fn helper()
{
	discard;
}
[entry(frag)]
fn main()
{
	helper();
}
`)
	res := validate.Validate(mod, validate.Options{})
	require.True(t, res.Valid, "%v", codes(res))
}

func TestValidateRejectsReturnShapeMismatch(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
fn f() -> i32
{
	return;
}
`)
	res := validate.Validate(mod, validate.Options{})
	require.False(t, res.Valid)
	require.Contains(t, codes(res), string(validate.CodeReturnShape))
}

func TestValidateRejectsCallOfNonLvalueOutArgument(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
fn set(out x: i32)
{
	x = 1;
}
fn f()
{
	set(1);
}
`)
	res := validate.Validate(mod, validate.Options{})
	require.False(t, res.Valid)
	require.Contains(t, codes(res), string(validate.CodeCallSemantic))
}

func TestValidateAllowsCallOfLvalueOutArgument(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
fn set(out x: i32)
{
	x = 1;
}
fn f()
{
	let v: i32 = 0;
	set(v);
}
`)
	res := validate.Validate(mod, validate.Options{})
	require.True(t, res.Valid, "%v", codes(res))
}

func TestValidateRejectsComputeEntryMissingWorkgroup(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
[entry(compute)]
fn main()
{
}
`)
	res := validate.Validate(mod, validate.Options{})
	require.False(t, res.Valid)
	require.Contains(t, codes(res), string(validate.CodeEntryWorkgroup))
}

func TestValidateRejectsDepthWriteOnNonFragmentEntry(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
[entry(vert), depth_write]
fn main()
{
}
`)
	res := validate.Validate(mod, validate.Options{})
	require.False(t, res.Valid)
	require.Contains(t, codes(res), string(validate.CodeEntryStageAttr))
}

func TestValidateRejectsMultiplePushConstants(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
struct A { x: f32 }
struct B { y: f32 }
external
{
	a: push_constant[A],
	b: push_constant[B]
}
`)
	res := validate.Validate(mod, validate.Options{})
	require.False(t, res.Valid)
	require.Contains(t, codes(res), string(validate.CodeMultiPushConstant))
}

func TestValidateRejectsPushConstantWithBinding(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
struct A { x: f32 }
external
{
	[binding(0)] a: push_constant[A]
}
`)
	res := validate.Validate(mod, validate.Options{})
	require.False(t, res.Valid)
	require.Contains(t, codes(res), string(validate.CodePushConstantBound))
}

func TestValidateRejectsUniformWithoutBinding(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
struct Camera { fov: f32 }
external
{
	[set(0)] cam: uniform[Camera]
}
`)
	res := validate.Validate(mod, validate.Options{})
	require.False(t, res.Valid)
	require.Contains(t, codes(res), string(validate.CodeExternalBinding))
}

func TestValidateRejectsUnknownBuiltin(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
struct VertexOut
{
	[builtin(not_a_real_builtin)] pos: vec4[f32]
}
`)
	res := validate.Validate(mod, validate.Options{})
	require.False(t, res.Valid)
	require.Contains(t, codes(res), string(validate.CodeBuiltinUnknown))
}

func TestValidateRejectsBuiltinWrongType(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
struct VertexOut
{
	[builtin(position)] pos: f32
}
`)
	res := validate.Validate(mod, validate.Options{})
	require.False(t, res.Valid)
	require.Contains(t, codes(res), string(validate.CodeBuiltinType))
}

func TestValidateRejectsCondNotBool(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
struct S
{
	[cond(1)] x: f32
}
`)
	res := validate.Validate(mod, validate.Options{})
	require.False(t, res.Valid)
	require.Contains(t, codes(res), string(validate.CodeCondNotBool))
}

func TestValidateRejectsEntryWithNonStructParam(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
[entry(frag)]
fn main(x: f32)
{
}
`)
	res := validate.Validate(mod, validate.Options{})
	require.False(t, res.Valid)
	require.Contains(t, codes(res), string(validate.CodeStructExpected))
}

func TestValidateRejectsIntrinsicArgumentTypeMismatch(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
fn f() -> f32
{
	return dot(vec3[f32](1.0, 2.0, 3.0), vec2[f32](1.0, 2.0));
}
`)
	res := validate.Validate(mod, validate.Options{})
	require.False(t, res.Valid)
	require.Contains(t, codes(res), string(validate.CodeIntrinsicSignature))
}

// TestValidateCatchesArityEvenWithoutSema exercises the package's core
// design point (§4.8's header doc): it still catches a malformed call
// even when the mismatch was introduced after sema ran (e.g. a module
// reconstructed by internal/serial), by mutating an already-resolved
// call site directly rather than relying on sema having validated it.
func TestValidateCatchesArityEvenWithoutSema(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
fn g(x: f32) {}
fn f()
{
	g(1.0);
}
`)
	fn := findFunc(mod, "f")
	call := fn.Body.Statements[0].(*ast.ExpressionStmt).Expr.(*ast.CallFunctionExpr)
	call.Args = append(call.Args, call.Args[0])

	res := validate.Validate(mod, validate.Options{})
	require.False(t, res.Valid)
	require.Contains(t, codes(res), string(validate.CodeCallArity))
}

func findFunc(mod *ast.Module, name string) *ast.DeclareFunctionStmt {
	for _, s := range mod.Root.Statements {
		if d, ok := s.(*ast.DeclareFunctionStmt); ok && d.Name == name {
			return d
		}
	}
	return nil
}

func TestValidatePartialModeDowngradesToWarning(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
fn f() -> f32
{
	return dot(vec3[f32](1.0, 2.0, 3.0), vec2[f32](1.0, 2.0));
}
`)
	res := validate.Validate(mod, validate.Options{PartialCompilation: true})
	require.True(t, res.Valid, "partial mode should downgrade to a warning, not fail validation: %v", codes(res))
}
