// Package serial implements NZSL's binary module (de)serializer (C9,
// §4.9, §6.2): `u32 magic; u32 version; <module>`, with strings emitted
// through a first-use table, constant values tagged by the 30-entry
// ConstKind switch (internal/ast.ConstKind), and types tagged by a
// 22-entry switch over internal/types's closed Type sum. Serializing a
// fully-resolved module and deserializing it again yields a
// structurally equal module (§4.9 ROUND-TRIP).
//
// Scope note: the writer always emits CurrentVersion and the reader
// only ever reads CurrentVersion; the original tool's per-version
// compatibility branches (§4.9 mentions the language-version packing
// changing in v14 and the feature set moving to a bitmask in v16) are
// about that tool's multi-year version history, which a fresh
// implementation starting at version 1 has no predecessor formats to
// stay compatible with. A version mismatch is reported as an error
// rather than silently accepted.
package serial

import (
	"fmt"
	"math"

	"github.com/nzslang/nzslc/internal/ast"
	"github.com/nzslang/nzslc/internal/lexer"
	"github.com/nzslang/nzslc/internal/types"
)

// Magic identifies an NZSL binary module stream (§6.2).
const Magic uint32 = 0x4E534852

// CurrentVersion is the only format version this package writes or
// reads.
const CurrentVersion uint32 = 1

// Serialize encodes mod into the binary module format.
func Serialize(mod *ast.Module) []byte {
	w := &writer{}
	w.u32(Magic)
	w.u32(CurrentVersion)
	w.module(mod)
	return w.buf
}

// Deserialize decodes a binary module stream produced by Serialize.
func Deserialize(data []byte) (*ast.Module, error) {
	r := &reader{buf: data}
	magic := r.u32()
	if r.err == nil && magic != Magic {
		return nil, fmt.Errorf("serial: bad magic %#x, want %#x", magic, Magic)
	}
	version := r.u32()
	if r.err == nil && version != CurrentVersion {
		return nil, fmt.Errorf("serial: unsupported format version %d (this build only reads %d)", version, CurrentVersion)
	}
	mod := r.module()
	if r.err != nil {
		return nil, r.err
	}
	return mod, nil
}

// ----------------------------------------------------------------------------
// Low-level writer
// ----------------------------------------------------------------------------

// writer accumulates a byte stream; every write always succeeds
// (growing a slice cannot fail), so its methods have no error return.
type writer struct {
	buf       []byte
	strTable  map[string]uint32
	strOrder  []string
}

func (w *writer) u8(v uint8) { w.buf = append(w.buf, v) }

func (w *writer) boolean(v bool) {
	if v {
		w.u8(1)
	} else {
		w.u8(0)
	}
}

func (w *writer) u32(v uint32) {
	w.buf = append(w.buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

func (w *writer) u64(v uint64) {
	w.u32(uint32(v >> 32))
	w.u32(uint32(v))
}

func (w *writer) i64(v int64) { w.u64(uint64(v)) }

func (w *writer) f64(v float64) { w.u64(math.Float64bits(v)) }

func (w *writer) bytes(b []byte) {
	w.u32(uint32(len(b)))
	w.buf = append(w.buf, b...)
}

// str implements §6.2's first-use string table: `bool hasValue, bool
// isNew, [either u32 index or u32 len+bytes]`.
func (w *writer) str(s string) {
	if s == "" {
		w.boolean(false)
		return
	}
	w.boolean(true)
	if w.strTable == nil {
		w.strTable = make(map[string]uint32)
	}
	if idx, ok := w.strTable[s]; ok {
		w.boolean(false)
		w.u32(idx)
		return
	}
	idx := uint32(len(w.strOrder))
	w.strTable[s] = idx
	w.strOrder = append(w.strOrder, s)
	w.boolean(true)
	w.bytes([]byte(s))
}

func (w *writer) loc(l lexer.SourceLocation) {
	if !l.IsValid() {
		w.boolean(false)
		return
	}
	w.boolean(true)
	w.str(l.File.Name)
	w.u32(uint32(l.StartLine))
	w.u32(uint32(l.StartCol))
	w.u32(uint32(l.EndLine))
	w.u32(uint32(l.EndCol))
}

func (w *writer) ref(r ast.Ref) {
	w.u8(uint8(r.Category))
	w.u32(r.Index)
}

// exprValueU32 serializes an ast.ExpressionValue[uint32] through its
// exported accessor methods; the state tag mirrors the three-state
// dual representation (§9 "expression-or-value dual representation").
func (w *writer) exprValueU32(v ast.ExpressionValue[uint32]) {
	switch {
	case !v.HasValue():
		w.u8(0)
	case v.IsResultingValue():
		w.u8(1)
		w.u32(v.GetResultingValue())
	default:
		w.u8(2)
		w.expr(v.GetExpression())
	}
}

// ----------------------------------------------------------------------------
// Low-level reader
// ----------------------------------------------------------------------------

// reader decodes a byte stream with a sticky first error: once err is
// set every subsequent read is a no-op returning the zero value, so
// callers can chain reads without checking an error after each one and
// inspect err once at the end (mirrored by Deserialize).
type reader struct {
	buf      []byte
	pos      int
	err      error
	strTable []string
	files    map[string]*lexer.SourceFile
}

func (r *reader) fail(format string, args ...any) {
	if r.err == nil {
		r.err = fmt.Errorf("serial: "+format, args...)
	}
}

func (r *reader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if r.pos+n > len(r.buf) {
		r.fail("unexpected end of stream (need %d bytes at offset %d, have %d)", n, r.pos, len(r.buf))
		return false
	}
	return true
}

func (r *reader) u8() uint8 {
	if !r.need(1) {
		return 0
	}
	v := r.buf[r.pos]
	r.pos++
	return v
}

func (r *reader) boolean() bool { return r.u8() != 0 }

func (r *reader) u32() uint32 {
	if !r.need(4) {
		return 0
	}
	v := uint32(r.buf[r.pos])<<24 | uint32(r.buf[r.pos+1])<<16 | uint32(r.buf[r.pos+2])<<8 | uint32(r.buf[r.pos+3])
	r.pos += 4
	return v
}

func (r *reader) u64() uint64 {
	hi := uint64(r.u32())
	lo := uint64(r.u32())
	return hi<<32 | lo
}

func (r *reader) i64() int64 { return int64(r.u64()) }

func (r *reader) f64() float64 { return math.Float64frombits(r.u64()) }

func (r *reader) bytes() []byte {
	n := r.u32()
	if !r.need(int(n)) {
		return nil
	}
	b := append([]byte(nil), r.buf[r.pos:r.pos+int(n)]...)
	r.pos += int(n)
	return b
}

func (r *reader) str() string {
	hasValue := r.boolean()
	if r.err != nil || !hasValue {
		return ""
	}
	isNew := r.boolean()
	if isNew {
		s := string(r.bytes())
		r.strTable = append(r.strTable, s)
		return s
	}
	idx := r.u32()
	if r.err != nil {
		return ""
	}
	if int(idx) >= len(r.strTable) {
		r.fail("string table index %d out of range (table has %d entries)", idx, len(r.strTable))
		return ""
	}
	return r.strTable[idx]
}

func (r *reader) loc() lexer.SourceLocation {
	if !r.boolean() {
		return lexer.SourceLocation{}
	}
	name := r.str()
	startLine := r.u32()
	startCol := r.u32()
	endLine := r.u32()
	endCol := r.u32()
	if r.err != nil {
		return lexer.SourceLocation{}
	}
	if r.files == nil {
		r.files = make(map[string]*lexer.SourceFile)
	}
	f, ok := r.files[name]
	if !ok {
		f = &lexer.SourceFile{Name: name}
		r.files[name] = f
	}
	return lexer.SourceLocation{
		File:      f,
		StartLine: int(startLine),
		StartCol:  int(startCol),
		EndLine:   int(endLine),
		EndCol:    int(endCol),
	}
}

func (r *reader) ref() ast.Ref {
	cat := ast.SymbolCategory(r.u8())
	idx := r.u32()
	return ast.Ref{Category: cat, Index: idx}
}

func (r *reader) exprValueU32() ast.ExpressionValue[uint32] {
	switch r.u8() {
	case 0:
		return ast.ExpressionValue[uint32]{}
	case 1:
		return ast.ValueOf(r.u32())
	case 2:
		return ast.ExprValueOf[uint32](r.expr())
	default:
		r.fail("unknown ExpressionValue state tag")
		return ast.ExpressionValue[uint32]{}
	}
}


// ----------------------------------------------------------------------------
// Types — 22-entry tag over internal/types's closed Type sum (§3.3, §6.2).
// types.Unresolved is excluded: it never survives past C6 (sema), so a
// fully-resolved module passed to Serialize can never contain one; if the
// writer is ever handed one anyway that is a caller bug, and the writer
// panics rather than silently emitting a bogus tag.
// ----------------------------------------------------------------------------

const (
	tNone uint8 = iota
	tPrim
	tVector
	tMatrix
	tArray
	tDynArray
	tStruct
	tAlias
	tFunction
	tMethod
	tIntrinsic
	tModule
	tNamedExternalBlock
	tTypeOf
	tSampler
	tTexture
	tStorage
	tUniform
	tPushConstant
	tImplicitVector
	tImplicitMatrix
	tImplicitArray
	tAbsent uint8 = 255
)

func (w *writer) typ(t types.Type) {
	if t == nil {
		w.u8(tAbsent)
		return
	}
	switch tt := t.(type) {
	case *types.None:
		w.u8(tNone)
	case *types.Prim:
		w.u8(tPrim)
		w.u8(uint8(tt.Kind))
	case *types.Vector:
		w.u8(tVector)
		w.u8(uint8(tt.ComponentCount))
		w.u8(uint8(tt.Primitive))
	case *types.Matrix:
		w.u8(tMatrix)
		w.u8(uint8(tt.Columns))
		w.u8(uint8(tt.Rows))
		w.u8(uint8(tt.Primitive))
	case *types.Array:
		w.u8(tArray)
		w.typ(tt.Element)
		w.u32(tt.Length)
	case *types.DynArray:
		w.u8(tDynArray)
		w.typ(tt.Element)
	case *types.Struct:
		w.u8(tStruct)
		w.u32(tt.Index)
	case *types.Alias:
		w.u8(tAlias)
		w.u32(tt.Index)
		w.typ(tt.Target)
	case *types.Function:
		w.u8(tFunction)
		w.u32(tt.Index)
	case *types.Method:
		w.u8(tMethod)
		w.typ(tt.Object)
		w.u32(tt.MethodIndex)
	case *types.Intrinsic:
		w.u8(tIntrinsic)
		w.u32(tt.ID)
	case *types.Module:
		w.u8(tModule)
		w.u32(tt.Index)
	case *types.NamedExternalBlock:
		w.u8(tNamedExternalBlock)
		w.u32(tt.Index)
	case *types.TypeOf:
		w.u8(tTypeOf)
		w.u32(tt.Index)
	case *types.Sampler:
		w.u8(tSampler)
		w.u8(uint8(tt.Dim))
		w.u8(uint8(tt.SampledPrimitive))
		w.boolean(tt.Depth)
	case *types.Texture:
		w.u8(tTexture)
		w.u8(uint8(tt.Dim))
		w.u8(uint8(tt.Format))
		w.u8(uint8(tt.Base))
		w.u8(uint8(tt.Access))
	case *types.Storage:
		w.u8(tStorage)
		w.u32(tt.StructIndex)
		w.u8(uint8(tt.Access))
	case *types.Uniform:
		w.u8(tUniform)
		w.u32(tt.StructIndex)
	case *types.PushConstant:
		w.u8(tPushConstant)
		w.u32(tt.StructIndex)
	case *types.ImplicitVector:
		w.u8(tImplicitVector)
		w.u8(uint8(tt.ComponentCount))
	case *types.ImplicitMatrix:
		w.u8(tImplicitMatrix)
		w.u8(uint8(tt.Columns))
		w.u8(uint8(tt.Rows))
	case *types.ImplicitArray:
		w.u8(tImplicitArray)
	default:
		// types.Unresolved, or any future variant: never legal in a
		// fully-resolved module.
		panic(fmt.Sprintf("serial: cannot serialize unresolved type %T", t))
	}
}

func (r *reader) typ() types.Type {
	if r.err != nil {
		return nil
	}
	tag := r.u8()
	switch tag {
	case tAbsent:
		return nil
	case tNone:
		return &types.None{}
	case tPrim:
		return &types.Prim{Kind: types.Primitive(r.u8())}
	case tVector:
		n := r.u8()
		p := r.u8()
		return &types.Vector{ComponentCount: int(n), Primitive: types.Primitive(p)}
	case tMatrix:
		c := r.u8()
		rows := r.u8()
		p := r.u8()
		return &types.Matrix{Columns: int(c), Rows: int(rows), Primitive: types.Primitive(p)}
	case tArray:
		elem := r.typ()
		length := r.u32()
		return &types.Array{Element: elem, Length: length}
	case tDynArray:
		return &types.DynArray{Element: r.typ()}
	case tStruct:
		return &types.Struct{Index: r.u32()}
	case tAlias:
		idx := r.u32()
		target := r.typ()
		return &types.Alias{Index: idx, Target: target}
	case tFunction:
		return &types.Function{Index: r.u32()}
	case tMethod:
		obj := r.typ()
		idx := r.u32()
		return &types.Method{Object: obj, MethodIndex: idx}
	case tIntrinsic:
		return &types.Intrinsic{ID: r.u32()}
	case tModule:
		return &types.Module{Index: r.u32()}
	case tNamedExternalBlock:
		return &types.NamedExternalBlock{Index: r.u32()}
	case tTypeOf:
		return &types.TypeOf{Index: r.u32()}
	case tSampler:
		dim := r.u8()
		prim := r.u8()
		depth := r.boolean()
		return &types.Sampler{Dim: types.SamplerDim(dim), SampledPrimitive: types.Primitive(prim), Depth: depth}
	case tTexture:
		dim := r.u8()
		format := r.u8()
		base := r.u8()
		access := r.u8()
		return &types.Texture{Dim: types.SamplerDim(dim), Format: types.TextureFormat(format), Base: types.Primitive(base), Access: types.TextureAccess(access)}
	case tStorage:
		idx := r.u32()
		access := r.u8()
		return &types.Storage{StructIndex: idx, Access: types.TextureAccess(access)}
	case tUniform:
		return &types.Uniform{StructIndex: r.u32()}
	case tPushConstant:
		return &types.PushConstant{StructIndex: r.u32()}
	case tImplicitVector:
		return &types.ImplicitVector{ComponentCount: int(r.u8())}
	case tImplicitMatrix:
		c := r.u8()
		rows := r.u8()
		return &types.ImplicitMatrix{Columns: int(c), Rows: int(rows)}
	case tImplicitArray:
		return &types.ImplicitArray{}
	default:
		r.fail("unknown type tag %d", tag)
		return nil
	}
}

// ----------------------------------------------------------------------------
// Constant values — 30-entry ConstKind tag (§3.7, §6.2).
// ----------------------------------------------------------------------------

func (w *writer) constVal(c ast.Const) {
	w.u8(uint8(c.Kind))
	switch c.Kind {
	case ast.KBool:
		w.boolean(c.Bool)
	case ast.KF32, ast.KF64, ast.KFloatLiteral:
		w.f64(c.F64)
	case ast.KI32, ast.KU32, ast.KIntLiteral:
		w.i64(c.I64)
	case ast.KString:
		w.str(c.Str)
	case ast.KArray:
		w.u8(uint8(c.ElemOf))
		w.u32(uint32(len(c.Array)))
		for _, e := range c.Array {
			w.constVal(e)
		}
	default:
		// One of the KVec* kinds: a dense fixed-size component vector.
		w.u32(uint32(len(c.Vec)))
		for _, e := range c.Vec {
			w.constVal(e)
		}
	}
}

func (r *reader) constVal() ast.Const {
	if r.err != nil {
		return ast.Const{}
	}
	kind := ast.ConstKind(r.u8())
	c := ast.Const{Kind: kind}
	switch kind {
	case ast.KBool:
		c.Bool = r.boolean()
	case ast.KF32, ast.KF64, ast.KFloatLiteral:
		c.F64 = r.f64()
	case ast.KI32, ast.KU32, ast.KIntLiteral:
		c.I64 = r.i64()
	case ast.KString:
		c.Str = r.str()
	case ast.KArray:
		c.ElemOf = ast.ConstKind(r.u8())
		n := r.u32()
		c.Array = make([]ast.Const, 0, n)
		for i := uint32(0); i < n; i++ {
			c.Array = append(c.Array, r.constVal())
		}
	default:
		n := r.u32()
		c.Vec = make([]ast.Const, 0, n)
		for i := uint32(0); i < n; i++ {
			c.Vec = append(c.Vec, r.constVal())
		}
	}
	return c
}

// ----------------------------------------------------------------------------
// Expressions — tag over the 24-entry closed Expr sum (§3.4, §6.2). 255
// marks a nil Expr (e.g. ForStmt.Step, DeclareVariableStmt.Initializer,
// DeclareStructMember.Cond).
// ----------------------------------------------------------------------------

const (
	eConstant uint8 = iota
	eIdentifier
	eAccessField
	eAccessIdentifier
	eAccessIndex
	eAliasValue
	eAssign
	eBinary
	eCallFunction
	eCallMethod
	eCast
	eConditional
	eConstantRef
	eFunctionRef
	eIdentifierValue
	eIntrinsic
	eIntrinsicFunctionRef
	eModuleRef
	eNamedExternalBlockRef
	eStructTypeRef
	eSwizzle
	eTypeRef
	eUnary
	eVariableValue
	eNil uint8 = 255
)

// exprBase writes the fields every Expr embeds: its location and its
// resolved type (absent only for a statically-dead node never reached
// by sema, per §3.3's concrete-type invariant).
func (w *writer) exprBase(e ast.Expr) {
	w.loc(e.Location())
	w.typ(e.Type())
}

func (r *reader) exprBase() ast.ExprBase {
	loc := r.loc()
	t := r.typ()
	b := ast.ExprAt(loc)
	b.SetType(t)
	return b
}

func (w *writer) exprs(es []ast.Expr) {
	w.u32(uint32(len(es)))
	for _, e := range es {
		w.expr(e)
	}
}

func (r *reader) exprs() []ast.Expr {
	n := r.u32()
	out := make([]ast.Expr, 0, n)
	for i := uint32(0); i < n; i++ {
		out = append(out, r.expr())
	}
	return out
}

func (w *writer) expr(e ast.Expr) {
	if e == nil {
		w.u8(eNil)
		return
	}
	switch n := e.(type) {
	case *ast.ConstantExpr:
		w.u8(eConstant)
		w.exprBase(n)
		w.constVal(n.Value)
	case *ast.IdentifierExpr:
		w.u8(eIdentifier)
		w.exprBase(n)
		w.str(n.Name)
	case *ast.AccessFieldExpr:
		w.u8(eAccessField)
		w.exprBase(n)
		w.expr(n.Object)
		w.str(n.FieldName)
		w.i64(int64(n.FieldIndex))
	case *ast.AccessIdentifierExpr:
		w.u8(eAccessIdentifier)
		w.exprBase(n)
		w.expr(n.Object)
		w.str(n.Name)
	case *ast.AccessIndexExpr:
		w.u8(eAccessIndex)
		w.exprBase(n)
		w.expr(n.Object)
		w.expr(n.Index)
	case *ast.AliasValueExpr:
		w.u8(eAliasValue)
		w.exprBase(n)
		w.ref(n.Alias)
	case *ast.AssignExpr:
		w.u8(eAssign)
		w.exprBase(n)
		w.u8(uint8(n.Op))
		w.expr(n.Left)
		w.expr(n.Right)
	case *ast.BinaryExpr:
		w.u8(eBinary)
		w.exprBase(n)
		w.u8(uint8(n.Op))
		w.expr(n.Left)
		w.expr(n.Right)
	case *ast.CallFunctionExpr:
		w.u8(eCallFunction)
		w.exprBase(n)
		w.expr(n.Callee)
		w.exprs(n.Args)
	case *ast.CallMethodExpr:
		w.u8(eCallMethod)
		w.exprBase(n)
		w.expr(n.Object)
		w.u32(n.MethodIndex)
		w.exprs(n.Args)
	case *ast.CastExpr:
		w.u8(eCast)
		w.exprBase(n)
		w.typ(n.TargetType)
		w.exprs(n.Args)
	case *ast.ConditionalExpr:
		w.u8(eConditional)
		w.exprBase(n)
		w.expr(n.Condition)
		w.expr(n.WhenTrue)
		w.expr(n.WhenFalse)
	case *ast.ConstantRefExpr:
		w.u8(eConstantRef)
		w.exprBase(n)
		w.ref(n.Constant)
	case *ast.FunctionRefExpr:
		w.u8(eFunctionRef)
		w.exprBase(n)
		w.ref(n.Function)
	case *ast.IdentifierValueExpr:
		w.u8(eIdentifierValue)
		w.exprBase(n)
		w.str(n.Name)
		w.ref(n.Ref)
	case *ast.IntrinsicExpr:
		w.u8(eIntrinsic)
		w.exprBase(n)
		w.u32(n.IntrinsicID)
		w.exprs(n.Args)
	case *ast.IntrinsicFunctionRefExpr:
		w.u8(eIntrinsicFunctionRef)
		w.exprBase(n)
		w.u32(n.IntrinsicID)
	case *ast.ModuleRefExpr:
		w.u8(eModuleRef)
		w.exprBase(n)
		w.ref(n.Module)
	case *ast.NamedExternalBlockRefExpr:
		w.u8(eNamedExternalBlockRef)
		w.exprBase(n)
		w.ref(n.External)
	case *ast.StructTypeRefExpr:
		w.u8(eStructTypeRef)
		w.exprBase(n)
		w.ref(n.Struct)
	case *ast.SwizzleExpr:
		w.u8(eSwizzle)
		w.exprBase(n)
		w.expr(n.Object)
		w.bytes(n.Components)
	case *ast.TypeRefExpr:
		w.u8(eTypeRef)
		w.exprBase(n)
		w.typ(n.Referenced)
	case *ast.UnaryExpr:
		w.u8(eUnary)
		w.exprBase(n)
		w.u8(uint8(n.Op))
		w.expr(n.Operand)
	case *ast.VariableValueExpr:
		w.u8(eVariableValue)
		w.exprBase(n)
		w.ref(n.Variable)
	default:
		panic(fmt.Sprintf("serial: unhandled expression type %T", e))
	}
}

func (r *reader) expr() ast.Expr {
	if r.err != nil {
		return nil
	}
	tag := r.u8()
	switch tag {
	case eNil:
		return nil
	case eConstant:
		base := r.exprBase()
		v := r.constVal()
		return &ast.ConstantExpr{ExprBase: base, Value: v}
	case eIdentifier:
		base := r.exprBase()
		name := r.str()
		return &ast.IdentifierExpr{ExprBase: base, Name: name}
	case eAccessField:
		base := r.exprBase()
		obj := r.expr()
		name := r.str()
		idx := r.i64()
		return &ast.AccessFieldExpr{ExprBase: base, Object: obj, FieldName: name, FieldIndex: int(idx)}
	case eAccessIdentifier:
		base := r.exprBase()
		obj := r.expr()
		name := r.str()
		return &ast.AccessIdentifierExpr{ExprBase: base, Object: obj, Name: name}
	case eAccessIndex:
		base := r.exprBase()
		obj := r.expr()
		idx := r.expr()
		return &ast.AccessIndexExpr{ExprBase: base, Object: obj, Index: idx}
	case eAliasValue:
		base := r.exprBase()
		ref := r.ref()
		return &ast.AliasValueExpr{ExprBase: base, Alias: ref}
	case eAssign:
		base := r.exprBase()
		op := r.u8()
		l := r.expr()
		rr := r.expr()
		return &ast.AssignExpr{ExprBase: base, Op: ast.AssignOp(op), Left: l, Right: rr}
	case eBinary:
		base := r.exprBase()
		op := r.u8()
		l := r.expr()
		rr := r.expr()
		return &ast.BinaryExpr{ExprBase: base, Op: ast.BinaryOp(op), Left: l, Right: rr}
	case eCallFunction:
		base := r.exprBase()
		callee := r.expr()
		args := r.exprs()
		return &ast.CallFunctionExpr{ExprBase: base, Callee: callee, Args: args}
	case eCallMethod:
		base := r.exprBase()
		obj := r.expr()
		idx := r.u32()
		args := r.exprs()
		return &ast.CallMethodExpr{ExprBase: base, Object: obj, MethodIndex: idx, Args: args}
	case eCast:
		base := r.exprBase()
		target := r.typ()
		args := r.exprs()
		return &ast.CastExpr{ExprBase: base, TargetType: target, Args: args}
	case eConditional:
		base := r.exprBase()
		cond := r.expr()
		wt := r.expr()
		wf := r.expr()
		return &ast.ConditionalExpr{ExprBase: base, Condition: cond, WhenTrue: wt, WhenFalse: wf}
	case eConstantRef:
		base := r.exprBase()
		ref := r.ref()
		return &ast.ConstantRefExpr{ExprBase: base, Constant: ref}
	case eFunctionRef:
		base := r.exprBase()
		ref := r.ref()
		return &ast.FunctionRefExpr{ExprBase: base, Function: ref}
	case eIdentifierValue:
		base := r.exprBase()
		name := r.str()
		ref := r.ref()
		return &ast.IdentifierValueExpr{ExprBase: base, Name: name, Ref: ref}
	case eIntrinsic:
		base := r.exprBase()
		id := r.u32()
		args := r.exprs()
		return &ast.IntrinsicExpr{ExprBase: base, IntrinsicID: id, Args: args}
	case eIntrinsicFunctionRef:
		base := r.exprBase()
		id := r.u32()
		return &ast.IntrinsicFunctionRefExpr{ExprBase: base, IntrinsicID: id}
	case eModuleRef:
		base := r.exprBase()
		ref := r.ref()
		return &ast.ModuleRefExpr{ExprBase: base, Module: ref}
	case eNamedExternalBlockRef:
		base := r.exprBase()
		ref := r.ref()
		return &ast.NamedExternalBlockRefExpr{ExprBase: base, External: ref}
	case eStructTypeRef:
		base := r.exprBase()
		ref := r.ref()
		return &ast.StructTypeRefExpr{ExprBase: base, Struct: ref}
	case eSwizzle:
		base := r.exprBase()
		obj := r.expr()
		comps := r.bytes()
		return &ast.SwizzleExpr{ExprBase: base, Object: obj, Components: comps}
	case eTypeRef:
		base := r.exprBase()
		t := r.typ()
		return &ast.TypeRefExpr{ExprBase: base, Referenced: t}
	case eUnary:
		base := r.exprBase()
		op := r.u8()
		operand := r.expr()
		return &ast.UnaryExpr{ExprBase: base, Op: ast.UnaryOp(op), Operand: operand}
	case eVariableValue:
		base := r.exprBase()
		ref := r.ref()
		return &ast.VariableValueExpr{ExprBase: base, Variable: ref}
	default:
		r.fail("unknown expression tag %d", tag)
		return nil
	}
}

// ----------------------------------------------------------------------------
// Statements — tag over the 21-entry closed Stmt sum (§3.4, §6.2). 255
// marks a nil Stmt (ConditionalStmt.Else after constant propagation
// collapses a branch with no else arm).
// ----------------------------------------------------------------------------

const (
	sBranch uint8 = iota
	sBreak
	sConditional
	sContinue
	sDeclareAlias
	sDeclareConst
	sDeclareExternal
	sDeclareFunction
	sDeclareOption
	sDeclareStruct
	sDeclareVariable
	sDiscard
	sExpression
	sFor
	sForEach
	sImport
	sMultiStmt
	sNoOp
	sReturn
	sScoped
	sWhile
	sNil uint8 = 255
)

// block serializes a *MultiStmt's own fields (location + statement
// list) without a leading presence flag; use blockPtr for fields that
// may be nil.
func (w *writer) block(m *ast.MultiStmt) {
	w.loc(m.Location())
	w.u32(uint32(len(m.Statements)))
	for _, s := range m.Statements {
		w.stmt(s)
	}
}

func (r *reader) block() *ast.MultiStmt {
	loc := r.loc()
	n := r.u32()
	stmts := make([]ast.Stmt, 0, n)
	for i := uint32(0); i < n; i++ {
		stmts = append(stmts, r.stmt())
	}
	return &ast.MultiStmt{StmtBase: ast.StmtAt(loc), Statements: stmts}
}

func (w *writer) blockPtr(m *ast.MultiStmt) {
	if m == nil {
		w.boolean(false)
		return
	}
	w.boolean(true)
	w.block(m)
}

func (r *reader) blockPtr() *ast.MultiStmt {
	if !r.boolean() {
		return nil
	}
	return r.block()
}

func (w *writer) externalMember(m ast.DeclareExternalMember) {
	w.loc(m.Loc)
	w.str(m.Name)
	w.ref(m.Ref)
	w.typ(m.Type)
	w.exprValueU32(m.Set)
	w.exprValueU32(m.Binding)
	w.boolean(m.AutoBinding)
}

func (r *reader) externalMember() ast.DeclareExternalMember {
	loc := r.loc()
	name := r.str()
	ref := r.ref()
	t := r.typ()
	set := r.exprValueU32()
	binding := r.exprValueU32()
	auto := r.boolean()
	return ast.DeclareExternalMember{Loc: loc, Name: name, Ref: ref, Type: t, Set: set, Binding: binding, AutoBinding: auto}
}

func (w *writer) structMember(m ast.DeclareStructMember) {
	w.loc(m.Loc)
	w.str(m.Name)
	w.typ(m.Type)
	w.str(m.Builtin)
	w.exprValueU32(m.Locations)
	w.expr(m.Cond)
	w.str(m.Interp)
}

func (r *reader) structMember() ast.DeclareStructMember {
	loc := r.loc()
	name := r.str()
	t := r.typ()
	builtin := r.str()
	locations := r.exprValueU32()
	cond := r.expr()
	interp := r.str()
	return ast.DeclareStructMember{Loc: loc, Name: name, Type: t, Builtin: builtin, Locations: locations, Cond: cond, Interp: interp}
}

func (w *writer) funcParam(p ast.DeclareFunctionParam) {
	w.str(p.Name)
	w.ref(p.Ref)
	w.typ(p.Type)
	w.u8(uint8(p.Semantic))
}

func (r *reader) funcParam() ast.DeclareFunctionParam {
	name := r.str()
	ref := r.ref()
	t := r.typ()
	sem := r.u8()
	return ast.DeclareFunctionParam{Name: name, Ref: ref, Type: t, Semantic: ast.ParamSemantic(sem)}
}

func (w *writer) stmt(s ast.Stmt) {
	if s == nil {
		w.u8(sNil)
		return
	}
	switch d := s.(type) {
	case *ast.BranchStmt:
		w.u8(sBranch)
		w.loc(d.Location())
		w.u32(uint32(len(d.Cases)))
		for _, c := range d.Cases {
			w.expr(c.Condition)
			w.blockPtr(c.Body)
			w.boolean(c.IsConst)
		}
		w.blockPtr(d.Else)
	case *ast.BreakStmt:
		w.u8(sBreak)
		w.loc(d.Location())
	case *ast.ConditionalStmt:
		w.u8(sConditional)
		w.loc(d.Location())
		w.expr(d.Condition)
		w.stmt(d.Then)
		w.stmt(d.Else)
	case *ast.ContinueStmt:
		w.u8(sContinue)
		w.loc(d.Location())
	case *ast.DeclareAliasStmt:
		w.u8(sDeclareAlias)
		w.loc(d.Location())
		w.str(d.Name)
		w.ref(d.Ref)
		w.typ(d.Value)
	case *ast.DeclareConstStmt:
		w.u8(sDeclareConst)
		w.loc(d.Location())
		w.str(d.Name)
		w.ref(d.Ref)
		w.typ(d.Type)
		w.expr(d.Initializer)
	case *ast.DeclareExternalStmt:
		w.u8(sDeclareExternal)
		w.loc(d.Location())
		w.str(d.BlockName)
		w.ref(d.BlockRef)
		w.u32(uint32(len(d.Members)))
		for _, m := range d.Members {
			w.externalMember(m)
		}
	case *ast.DeclareFunctionStmt:
		w.u8(sDeclareFunction)
		w.loc(d.Location())
		w.str(d.Name)
		w.ref(d.Ref)
		w.u32(uint32(len(d.Params)))
		for _, p := range d.Params {
			w.funcParam(p)
		}
		w.typ(d.ReturnType)
		w.blockPtr(d.Body)
		w.u8(uint8(d.Entry))
		for _, wg := range d.Workgroup {
			w.exprValueU32(wg)
		}
		w.boolean(d.EarlyFragmentTests)
		w.boolean(d.DepthWrite)
	case *ast.DeclareOptionStmt:
		w.u8(sDeclareOption)
		w.loc(d.Location())
		w.str(d.Name)
		w.ref(d.Ref)
		w.typ(d.Type)
		w.expr(d.Default)
		w.u64(d.Hash)
	case *ast.DeclareStructStmt:
		w.u8(sDeclareStruct)
		w.loc(d.Location())
		w.str(d.Name)
		w.ref(d.Ref)
		w.u32(uint32(len(d.Members)))
		for _, m := range d.Members {
			w.structMember(m)
		}
	case *ast.DeclareVariableStmt:
		w.u8(sDeclareVariable)
		w.loc(d.Location())
		w.str(d.Name)
		w.ref(d.Ref)
		w.typ(d.Type)
		w.expr(d.Initializer)
		w.boolean(d.Mutable)
	case *ast.DiscardStmt:
		w.u8(sDiscard)
		w.loc(d.Location())
	case *ast.ExpressionStmt:
		w.u8(sExpression)
		w.loc(d.Location())
		w.expr(d.Expr)
	case *ast.ForStmt:
		w.u8(sFor)
		w.loc(d.Location())
		w.str(d.VarName)
		w.ref(d.VarRef)
		w.expr(d.From)
		w.expr(d.To)
		w.expr(d.Step)
		w.blockPtr(d.Body)
	case *ast.ForEachStmt:
		w.u8(sForEach)
		w.loc(d.Location())
		w.str(d.VarName)
		w.ref(d.VarRef)
		w.expr(d.Container)
		w.blockPtr(d.Body)
	case *ast.ImportStmt:
		w.u8(sImport)
		w.loc(d.Location())
		w.str(d.ModulePath)
		w.str(d.LocalAlias)
		w.ref(d.ModuleRef)
	case *ast.MultiStmt:
		w.u8(sMultiStmt)
		w.block(d)
	case *ast.NoOpStmt:
		w.u8(sNoOp)
		w.loc(d.Location())
	case *ast.ReturnStmt:
		w.u8(sReturn)
		w.loc(d.Location())
		w.expr(d.Value)
	case *ast.ScopedStmt:
		w.u8(sScoped)
		w.loc(d.Location())
		w.blockPtr(d.Body)
	case *ast.WhileStmt:
		w.u8(sWhile)
		w.loc(d.Location())
		w.expr(d.Condition)
		w.blockPtr(d.Body)
	default:
		panic(fmt.Sprintf("serial: unhandled statement type %T", s))
	}
}

func (r *reader) stmt() ast.Stmt {
	if r.err != nil {
		return nil
	}
	tag := r.u8()
	switch tag {
	case sNil:
		return nil
	case sBranch:
		loc := r.loc()
		n := r.u32()
		cases := make([]ast.BranchCase, 0, n)
		for i := uint32(0); i < n; i++ {
			cond := r.expr()
			body := r.blockPtr()
			isConst := r.boolean()
			cases = append(cases, ast.BranchCase{Condition: cond, Body: body, IsConst: isConst})
		}
		els := r.blockPtr()
		return &ast.BranchStmt{StmtBase: ast.StmtAt(loc), Cases: cases, Else: els}
	case sBreak:
		return &ast.BreakStmt{StmtBase: ast.StmtAt(r.loc())}
	case sConditional:
		loc := r.loc()
		cond := r.expr()
		then := r.stmt()
		els := r.stmt()
		return &ast.ConditionalStmt{StmtBase: ast.StmtAt(loc), Condition: cond, Then: then, Else: els}
	case sContinue:
		return &ast.ContinueStmt{StmtBase: ast.StmtAt(r.loc())}
	case sDeclareAlias:
		loc := r.loc()
		name := r.str()
		ref := r.ref()
		value := r.typ()
		return &ast.DeclareAliasStmt{StmtBase: ast.StmtAt(loc), Name: name, Ref: ref, Value: value}
	case sDeclareConst:
		loc := r.loc()
		name := r.str()
		ref := r.ref()
		t := r.typ()
		init := r.expr()
		return &ast.DeclareConstStmt{StmtBase: ast.StmtAt(loc), Name: name, Ref: ref, Type: t, Initializer: init}
	case sDeclareExternal:
		loc := r.loc()
		blockName := r.str()
		blockRef := r.ref()
		n := r.u32()
		members := make([]ast.DeclareExternalMember, 0, n)
		for i := uint32(0); i < n; i++ {
			members = append(members, r.externalMember())
		}
		return &ast.DeclareExternalStmt{StmtBase: ast.StmtAt(loc), BlockName: blockName, BlockRef: blockRef, Members: members}
	case sDeclareFunction:
		loc := r.loc()
		name := r.str()
		ref := r.ref()
		n := r.u32()
		params := make([]ast.DeclareFunctionParam, 0, n)
		for i := uint32(0); i < n; i++ {
			params = append(params, r.funcParam())
		}
		retType := r.typ()
		body := r.blockPtr()
		entry := r.u8()
		var workgroup [3]ast.ExpressionValue[uint32]
		for i := range workgroup {
			workgroup[i] = r.exprValueU32()
		}
		earlyFrag := r.boolean()
		depthWrite := r.boolean()
		return &ast.DeclareFunctionStmt{
			StmtBase: ast.StmtAt(loc), Name: name, Ref: ref, Params: params, ReturnType: retType,
			Body: body, Entry: ast.EntryStage(entry), Workgroup: workgroup,
			EarlyFragmentTests: earlyFrag, DepthWrite: depthWrite,
		}
	case sDeclareOption:
		loc := r.loc()
		name := r.str()
		ref := r.ref()
		t := r.typ()
		def := r.expr()
		hash := r.u64()
		return &ast.DeclareOptionStmt{StmtBase: ast.StmtAt(loc), Name: name, Ref: ref, Type: t, Default: def, Hash: hash}
	case sDeclareStruct:
		loc := r.loc()
		name := r.str()
		ref := r.ref()
		n := r.u32()
		members := make([]ast.DeclareStructMember, 0, n)
		for i := uint32(0); i < n; i++ {
			members = append(members, r.structMember())
		}
		return &ast.DeclareStructStmt{StmtBase: ast.StmtAt(loc), Name: name, Ref: ref, Members: members}
	case sDeclareVariable:
		loc := r.loc()
		name := r.str()
		ref := r.ref()
		t := r.typ()
		init := r.expr()
		mutable := r.boolean()
		return &ast.DeclareVariableStmt{StmtBase: ast.StmtAt(loc), Name: name, Ref: ref, Type: t, Initializer: init, Mutable: mutable}
	case sDiscard:
		return &ast.DiscardStmt{StmtBase: ast.StmtAt(r.loc())}
	case sExpression:
		loc := r.loc()
		e := r.expr()
		return &ast.ExpressionStmt{StmtBase: ast.StmtAt(loc), Expr: e}
	case sFor:
		loc := r.loc()
		varName := r.str()
		varRef := r.ref()
		from := r.expr()
		to := r.expr()
		step := r.expr()
		body := r.blockPtr()
		return &ast.ForStmt{StmtBase: ast.StmtAt(loc), VarName: varName, VarRef: varRef, From: from, To: to, Step: step, Body: body}
	case sForEach:
		loc := r.loc()
		varName := r.str()
		varRef := r.ref()
		container := r.expr()
		body := r.blockPtr()
		return &ast.ForEachStmt{StmtBase: ast.StmtAt(loc), VarName: varName, VarRef: varRef, Container: container, Body: body}
	case sImport:
		loc := r.loc()
		path := r.str()
		alias := r.str()
		ref := r.ref()
		return &ast.ImportStmt{StmtBase: ast.StmtAt(loc), ModulePath: path, LocalAlias: alias, ModuleRef: ref}
	case sMultiStmt:
		return r.block()
	case sNoOp:
		return &ast.NoOpStmt{StmtBase: ast.StmtAt(r.loc())}
	case sReturn:
		loc := r.loc()
		v := r.expr()
		return &ast.ReturnStmt{StmtBase: ast.StmtAt(loc), Value: v}
	case sScoped:
		loc := r.loc()
		body := r.blockPtr()
		return &ast.ScopedStmt{StmtBase: ast.StmtAt(loc), Body: body}
	case sWhile:
		loc := r.loc()
		cond := r.expr()
		body := r.blockPtr()
		return &ast.WhileStmt{StmtBase: ast.StmtAt(loc), Condition: cond, Body: body}
	default:
		r.fail("unknown statement tag %d", tag)
		return nil
	}
}

// ----------------------------------------------------------------------------
// Symbols, metadata, module (§3.5, §3.6, §6.2).
// ----------------------------------------------------------------------------

func (w *writer) symbol(s ast.Symbol) {
	w.str(s.Name)
	w.loc(s.Loc)
	w.u8(uint8(s.Kind))
}

func (r *reader) symbol() ast.Symbol {
	name := r.str()
	loc := r.loc()
	kind := r.u8()
	return ast.Symbol{Name: name, Loc: loc, Kind: ast.SymbolCategory(kind)}
}

func (w *writer) symbols(syms []ast.Symbol) {
	w.u32(uint32(len(syms)))
	for _, s := range syms {
		w.symbol(s)
	}
}

func (r *reader) symbols() []ast.Symbol {
	n := r.u32()
	out := make([]ast.Symbol, 0, n)
	for i := uint32(0); i < n; i++ {
		out = append(out, r.symbol())
	}
	return out
}

// knownFeatures enumerates the fixed enabled-feature set (§3.5) in
// bitmask order.
var knownFeatures = []ast.Feature{ast.FeatureF64, ast.FeaturePrimitiveExternals, ast.FeatureTexture1D}

func (w *writer) metadata(m ast.Metadata) {
	w.str(m.ModuleName)
	w.u32(m.LangVersion)
	w.str(m.Author)
	w.str(m.Description)
	w.str(m.License)
	var mask uint8
	for i, f := range knownFeatures {
		if m.EnabledFeatures[f] {
			mask |= 1 << uint(i)
		}
	}
	w.u8(mask)
}

func (r *reader) metadata() ast.Metadata {
	name := r.str()
	version := r.u32()
	author := r.str()
	desc := r.str()
	license := r.str()
	mask := r.u8()
	features := make(map[ast.Feature]bool)
	for i, f := range knownFeatures {
		if mask&(1<<uint(i)) != 0 {
			features[f] = true
		}
	}
	return ast.Metadata{
		ModuleName: name, LangVersion: version, Author: author,
		Description: desc, License: license, EnabledFeatures: features,
	}
}

// module writes mod's body; Serialize writes the magic/version header
// before calling it.
func (w *writer) module(mod *ast.Module) { w.moduleBody(mod) }

// moduleBody serializes a Module's content (no magic/version header);
// it recurses for every imported module, inlining each one's full
// serialized form in place (§3.5 "Imports ... order is significant").
func (w *writer) moduleBody(mod *ast.Module) {
	w.metadata(mod.Metadata)
	w.u32(uint32(len(mod.Imports)))
	for _, imp := range mod.Imports {
		w.str(imp.Identifier)
		w.moduleBody(imp.Module)
	}
	w.symbols(mod.Aliases)
	w.symbols(mod.Constants)
	w.symbols(mod.Externals)
	w.symbols(mod.Functions)
	w.symbols(mod.Modules)
	w.symbols(mod.Structs)
	w.symbols(mod.Variables)
	w.symbols(mod.Options)
	w.blockPtr(mod.Root)
}

func (r *reader) module() *ast.Module { return r.moduleBody() }

func (r *reader) moduleBody() *ast.Module {
	if r.err != nil {
		return nil
	}
	metadata := r.metadata()
	n := r.u32()
	imports := make([]ast.ImportedModule, 0, n)
	for i := uint32(0); i < n; i++ {
		ident := r.str()
		sub := r.moduleBody()
		imports = append(imports, ast.ImportedModule{Identifier: ident, Module: sub})
	}
	mod := &ast.Module{Metadata: metadata, Imports: imports}
	mod.Aliases = r.symbols()
	mod.Constants = r.symbols()
	mod.Externals = r.symbols()
	mod.Functions = r.symbols()
	mod.Modules = r.symbols()
	mod.Structs = r.symbols()
	mod.Variables = r.symbols()
	mod.Options = r.symbols()
	mod.Root = r.blockPtr()
	if r.err != nil {
		return nil
	}
	return mod
}
