package spirv_test

import (
	"encoding/binary"
	"testing"

	"github.com/nzslang/nzslc/internal/ast"
	"github.com/nzslang/nzslc/internal/constfold"
	"github.com/nzslang/nzslc/internal/layout"
	"github.com/nzslang/nzslc/internal/parser"
	"github.com/nzslang/nzslc/internal/sema"
	"github.com/nzslang/nzslc/internal/spirv"
	"github.com/nzslang/nzslc/internal/types"
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

// decodeWords reinterprets an assembled module's bytes as its
// underlying little-endian word stream (§4.10.1's physical layout).
func decodeWords(t *testing.T, data []byte) []uint32 {
	t.Helper()
	require.Zero(t, len(data)%4, "module byte length must be word-aligned")
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return words
}

// opcodesOf walks the instruction stream after the 5-word header and
// returns every opcode encountered, in order, using each instruction's
// own word-count field to find the next one.
func opcodesOf(t *testing.T, words []uint32) []uint16 {
	t.Helper()
	var ops []uint16
	i := 5
	for i < len(words) {
		wordCount := words[i] >> 16
		require.Greater(t, int(wordCount), 0, "zero-length instruction at word %d", i)
		ops = append(ops, uint16(words[i]&0xFFFF))
		i += int(wordCount)
	}
	return ops
}

func containsOp(ops []uint16, op uint16) bool {
	for _, o := range ops {
		if o == op {
			return true
		}
	}
	return false
}

func TestAssembleProducesValidHeader(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
[entry(frag)]
fn main(in color: vec4[f32]) -> vec4[f32] {
	return color;
}
`)
	data := spirv.Emit(mod)
	words := decodeWords(t, data)
	require.GreaterOrEqual(t, len(words), 5)
	require.Equal(t, uint32(spirv.MagicNumber), words[0])
	require.Equal(t, spirv.MakeVersion(spirv.DefaultMajor, spirv.DefaultMinor), words[1])
	require.Greater(t, words[3], uint32(1), "id bound must exceed the reserved 0 id")
	require.Zero(t, words[4], "schema word must be zero")
}

func TestFragmentEntryPointEmitsExpectedShape(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
[entry(frag)]
fn main(in color: vec4[f32]) -> vec4[f32] {
	return color;
}
`)
	words := decodeWords(t, spirv.Emit(mod))
	ops := opcodesOf(t, words)

	require.True(t, containsOp(ops, spirv.OpCapability))
	require.True(t, containsOp(ops, spirv.OpMemoryModel))
	require.True(t, containsOp(ops, spirv.OpEntryPoint))
	require.True(t, containsOp(ops, spirv.OpExecutionMode))
	require.True(t, containsOp(ops, spirv.OpFunction))
	require.True(t, containsOp(ops, spirv.OpLabel))
	require.True(t, containsOp(ops, spirv.OpReturn))
	require.True(t, containsOp(ops, spirv.OpFunctionEnd))
	// an entry point's lowered body is always void: it must never emit
	// OpReturnValue even though the source function returns a vec4.
	require.False(t, containsOp(ops, spirv.OpReturnValue))
}

func TestOrdinaryFunctionUsesReturnValue(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
fn square(x: f32) -> f32 {
	return x * x;
}
`)
	ops := opcodesOf(t, decodeWords(t, spirv.Emit(mod)))
	require.True(t, containsOp(ops, spirv.OpReturnValue))
	require.False(t, containsOp(ops, spirv.OpEntryPoint))
}

func TestUniformExternalEmitsDecoratedGlobal(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
struct Camera { fov: f32 }
external
{
	[set(0), binding(1)] cam: uniform[Camera]
}
`)
	ops := opcodesOf(t, decodeWords(t, spirv.Emit(mod)))
	require.True(t, containsOp(ops, spirv.OpTypeStruct))
	require.True(t, containsOp(ops, spirv.OpDecorate))
	require.True(t, containsOp(ops, spirv.OpVariable))
}

func TestBranchChainLowersToNestedSelection(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
fn pick(x: i32) -> i32 {
	if (x > 2) {
		return 1;
	} else if (x > 0) {
		return 2;
	} else {
		return 3;
	}
}
`)
	ops := opcodesOf(t, decodeWords(t, spirv.Emit(mod)))
	require.True(t, containsOp(ops, spirv.OpSelectionMerge))
	require.True(t, containsOp(ops, spirv.OpBranchConditional))
}

func TestWhileLoopLowersToStructuredLoop(t *testing.T) {
	mod := resolveSource(t, `
[nzsl_version("1.0")] module;
fn countdown(n: i32) -> i32 {
	let i: i32 = n;
	while (i > 0) {
		i = i - 1;
	}
	return i;
}
`)
	ops := opcodesOf(t, decodeWords(t, spirv.Emit(mod)))
	require.True(t, containsOp(ops, spirv.OpLoopMerge))
	require.True(t, containsOp(ops, spirv.OpBranch))
}

// ----------------------------------------------------------------------------
// Cache hash-consing / layout-mode sensitivity
// ----------------------------------------------------------------------------

func emptyModule() *ast.Module {
	return &ast.Module{Root: &ast.MultiStmt{}}
}

func TestCacheCollapsesStructurallyIdenticalTypes(t *testing.T) {
	c := spirv.NewCache()
	lc := layout.NewComputer(emptyModule(), layout.Std430)
	vecType := &types.Vector{ComponentCount: 4, Primitive: types.F32}
	id1 := c.Type(lc, vecType, layout.Std430)
	id2 := c.Type(lc, &types.Vector{ComponentCount: 4, Primitive: types.F32}, layout.Std430)
	require.Equal(t, id1, id2, "two structurally identical vector types must collapse to one id")
}

func TestArrayStrideDiffersBetweenStd140AndStd430(t *testing.T) {
	elem := &types.Prim{Kind: types.F32}
	arr := &types.Array{Element: elem, Length: 4}

	c430 := spirv.NewCache()
	lc430 := layout.NewComputer(emptyModule(), layout.Std430)
	c430.Type(lc430, arr, layout.Std430)

	c140 := spirv.NewCache()
	lc140 := layout.NewComputer(emptyModule(), layout.Std140)
	c140.Type(lc140, arr, layout.Std140)

	stride430 := arrayStrideFrom(c430.Annotations())
	stride140 := arrayStrideFrom(c140.Annotations())
	require.Equal(t, uint32(4), stride430, "std430 f32 array stride is tightly packed")
	require.Equal(t, uint32(16), stride140, "std140 rounds array stride up to 16 bytes")
}

// arrayStrideFrom finds the literal operand of the single OpDecorate
// ArrayStride annotation among annotations.
func arrayStrideFrom(annotations []spirv.Instruction) uint32 {
	for _, in := range annotations {
		words := in.Words()
		// Instr layout for `OpDecorate %id ArrayStride %n`: header, id,
		// decoration enum, then the stride literal.
		if uint16(words[0]&0xFFFF) == spirv.OpDecorate && len(words) >= 4 && words[2] == spirv.DecorationArrayStride {
			return words[3]
		}
	}
	return 0
}
