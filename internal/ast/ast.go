// Package ast defines the NZSL abstract syntax tree: expressions,
// statements, declarations, and the Module that roots them (§3.4, §3.5).
//
// Node kinds are closed sums implemented as Go interfaces sealed with an
// unexported marker method, mirroring the teacher's WGSL AST; the
// transformer framework (internal/transform) dispatches over these
// sums with an exhaustive type switch per node category.
package ast

import (
	"github.com/nzslang/nzslc/internal/lexer"
	"github.com/nzslang/nzslc/internal/types"
)

// Ref is an index into one of the dense per-category symbol tables
// (§3.6): aliases, constants, externals, functions, modules, structs,
// variables. Indices never alias across categories.
type Ref struct {
	Category SymbolCategory
	Index    uint32
}

// SymbolCategory distinguishes the dense index spaces of §3.6.
type SymbolCategory uint8

const (
	CatNone SymbolCategory = iota
	CatAlias
	CatConstant
	CatExternal
	CatFunction
	CatModule
	CatStruct
	CatVariable
	CatOption
)

// InvalidRef is the zero Ref; it never names a live entry.
var InvalidRef = Ref{}

// IsValid reports whether r was assigned a category.
func (r Ref) IsValid() bool { return r.Category != CatNone }

// ----------------------------------------------------------------------------
// ExpressionValue[T] — §3.4, §9 "Expression-or-value dual representation"
// ----------------------------------------------------------------------------

// valueState distinguishes the three states an ExpressionValue can be in.
type valueState uint8

const (
	stateAbsent valueState = iota
	stateValue
	stateExpression
)

// ExpressionValue is "a constant once resolved but an expression until
// then": it is in exactly one of three states (absent / resolved value
// / unresolved expression). Assigning a raw T via SetValue makes it a
// resulting value.
type ExpressionValue[T any] struct {
	state valueState
	value T
	expr  Expr
}

// ExprValueOf wraps an unresolved expression.
func ExprValueOf[T any](e Expr) ExpressionValue[T] {
	return ExpressionValue[T]{state: stateExpression, expr: e}
}

// ValueOf wraps an already-resolved value.
func ValueOf[T any](v T) ExpressionValue[T] {
	return ExpressionValue[T]{state: stateValue, value: v}
}

// HasValue reports whether the state is not absent: either a resolved
// value or an unresolved expression.
func (v ExpressionValue[T]) HasValue() bool { return v.state != stateAbsent }

// IsResultingValue reports whether this has been reduced to a concrete
// T (as opposed to remaining an unresolved Expr).
func (v ExpressionValue[T]) IsResultingValue() bool { return v.state == stateValue }

// GetResultingValue panics if the value is not yet resolved; callers
// must check IsResultingValue first.
func (v ExpressionValue[T]) GetResultingValue() T {
	if v.state != stateValue {
		panic("ast: GetResultingValue called on a non-resolved ExpressionValue")
	}
	return v.value
}

// GetExpression returns the unresolved expression, or nil if this is
// already a resulting value or absent.
func (v ExpressionValue[T]) GetExpression() Expr {
	if v.state != stateExpression {
		return nil
	}
	return v.expr
}

// SetValue transitions the ExpressionValue to a resulting value.
func (v *ExpressionValue[T]) SetValue(val T) {
	v.state = stateValue
	v.value = val
	v.expr = nil
}

// ----------------------------------------------------------------------------
// Constant values — §3.7
// ----------------------------------------------------------------------------

// ConstKind tags the 30-entry type index used by the binary serializer
// (§3.7, §4.9, §6.2): single values first (one entry per scalar kind and
// its vec2/vec3/vec4 forms, for each of bool/f32/f64/i32/u32/string plus
// the two untyped literal kinds), then the corresponding dense-array
// forms.
type ConstKind uint8

const (
	KBool ConstKind = iota
	KF32
	KF64
	KI32
	KU32
	KString
	KIntLiteral
	KFloatLiteral
	KVecBool2
	KVecBool3
	KVecBool4
	KVecF32_2
	KVecF32_3
	KVecF32_4
	KVecF64_2
	KVecF64_3
	KVecF64_4
	KVecI32_2
	KVecI32_3
	KVecI32_4
	KVecU32_2
	KVecU32_3
	KVecU32_4
	KVecIntLiteral2
	KVecIntLiteral3
	KVecIntLiteral4
	KVecFloatLiteral2
	KVecFloatLiteral3
	KVecFloatLiteral4
	// Array variants (dense sequence of one of the single kinds above)
	KArray
)

// Const is a tagged constant value: either a single value or a dense
// array of single values of the same Kind (§3.7).
type Const struct {
	Kind ConstKind
	// Single-value payloads. Only the field matching Kind is valid.
	Bool   bool
	I64    int64   // backs I32/U32/IntLiteral scalar payloads
	F64    float64 // backs F32/F64/FloatLiteral scalar payloads
	Str    string
	Vec    []Const // vector components, when Kind is one of the KVec* kinds
	Array  []Const // array elements, when Kind == KArray
	ElemOf ConstKind // element kind, when Kind == KArray
}

// Type returns the ExpressionType this constant carries (§3.7).
func (c Const) Type() types.Type {
	switch c.Kind {
	case KBool:
		return &types.Prim{Kind: types.Bool}
	case KF32:
		return &types.Prim{Kind: types.F32}
	case KF64:
		return &types.Prim{Kind: types.F64}
	case KI32:
		return &types.Prim{Kind: types.I32}
	case KU32:
		return &types.Prim{Kind: types.U32}
	case KString:
		return &types.Prim{Kind: types.Str}
	case KIntLiteral:
		return &types.Prim{Kind: types.IntLiteral}
	case KFloatLiteral:
		return &types.Prim{Kind: types.FloatLiteral}
	case KArray:
		var elemType types.Type
		if len(c.Array) > 0 {
			elemType = c.Array[0].Type()
		}
		return &types.Array{Element: elemType, Length: uint32(len(c.Array))}
	default:
		if n, prim, ok := vecKindInfo(c.Kind); ok {
			return &types.Vector{ComponentCount: n, Primitive: prim}
		}
	}
	return &types.None{}
}

func vecKindInfo(k ConstKind) (count int, prim types.Primitive, ok bool) {
	switch k {
	case KVecBool2:
		return 2, types.Bool, true
	case KVecBool3:
		return 3, types.Bool, true
	case KVecBool4:
		return 4, types.Bool, true
	case KVecF32_2:
		return 2, types.F32, true
	case KVecF32_3:
		return 3, types.F32, true
	case KVecF32_4:
		return 4, types.F32, true
	case KVecF64_2:
		return 2, types.F64, true
	case KVecF64_3:
		return 3, types.F64, true
	case KVecF64_4:
		return 4, types.F64, true
	case KVecI32_2:
		return 2, types.I32, true
	case KVecI32_3:
		return 3, types.I32, true
	case KVecI32_4:
		return 4, types.I32, true
	case KVecU32_2:
		return 2, types.U32, true
	case KVecU32_3:
		return 3, types.U32, true
	case KVecU32_4:
		return 4, types.U32, true
	case KVecIntLiteral2:
		return 2, types.IntLiteral, true
	case KVecIntLiteral3:
		return 3, types.IntLiteral, true
	case KVecIntLiteral4:
		return 4, types.IntLiteral, true
	case KVecFloatLiteral2:
		return 2, types.FloatLiteral, true
	case KVecFloatLiteral3:
		return 3, types.FloatLiteral, true
	case KVecFloatLiteral4:
		return 4, types.FloatLiteral, true
	}
	return 0, 0, false
}

// ----------------------------------------------------------------------------
// Expressions — §3.4
// ----------------------------------------------------------------------------

// Expr is any expression node. CachedType is absent (nil) before
// resolution and must hold a non-implicit, non-untyped type after
// (§3.3 invariant), except for statically-dead nodes.
type Expr interface {
	isExpr()
	Location() lexer.SourceLocation
	Type() types.Type
	SetType(types.Type)
}

type ExprBase struct {
	Loc     lexer.SourceLocation
	Cached  types.Type
}

func (e *ExprBase) isExpr()                       {}
func (e *ExprBase) Location() lexer.SourceLocation { return e.Loc }
func (e *ExprBase) Type() types.Type               { return e.Cached }
func (e *ExprBase) SetType(t types.Type)           { e.Cached = t }

// ExprAt builds an ExprBase carrying loc, for embedding in a freshly
// parsed node's composite literal.
func ExprAt(loc lexer.SourceLocation) ExprBase { return ExprBase{Loc: loc} }

// ConstantExpr is a literal constant, scalar or array (§3.4).
type ConstantExpr struct {
	ExprBase
	Value Const
}

// IdentifierExpr is an unresolved name reference, eliminated by C6 in
// favor of one of the *Ref expressions below.
type IdentifierExpr struct {
	ExprBase
	Name string
}

// AccessFieldExpr is `expr.field`; FieldIndex is filled in by C6 and
// must be less than the number of cond-enabled members (§8 invariant).
type AccessFieldExpr struct {
	ExprBase
	Object     Expr
	FieldName  string
	FieldIndex int
}

// AccessIdentifierExpr is `expr.ident` before the resolver decides
// whether `ident` names a field, a swizzle, or a method.
type AccessIdentifierExpr struct {
	ExprBase
	Object Expr
	Name   string
}

// AccessIndexExpr is `expr[index]`.
type AccessIndexExpr struct {
	ExprBase
	Object Expr
	Index  Expr
}

// AliasValueExpr is a resolved reference to a declared alias.
type AliasValueExpr struct {
	ExprBase
	Alias Ref
}

// AssignExpr is `lhs = rhs` (or a compound-assignment operator) used in
// expression position.
type AssignExpr struct {
	ExprBase
	Op    AssignOp
	Left  Expr
	Right Expr
}

// AssignOp enumerates `=` and the compound-assignment operators.
type AssignOp uint8

const (
	AssignSet AssignOp = iota
	AssignAdd
	AssignSub
	AssignMul
	AssignDiv
	AssignMod
	AssignAnd
	AssignOr
	AssignXor
	AssignShl
	AssignShr
)

// BinaryExpr is a binary operator application (§4.3 precedence table,
// §4.7 folding rules).
type BinaryExpr struct {
	ExprBase
	Op    BinaryOp
	Left  Expr
	Right Expr
}

// BinaryOp enumerates every binary operator in the precedence table.
type BinaryOp uint8

const (
	BinAdd BinaryOp = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	BinShl
	BinShr
	BinEq
	BinNe
	BinLt
	BinLe
	BinGt
	BinGe
	BinBitAnd
	BinBitXor
	BinBitOr
	BinLogicalAnd
	BinLogicalOr
)

// CallFunctionExpr invokes a resolved function or type constructor.
type CallFunctionExpr struct {
	ExprBase
	Callee Expr
	Args   []Expr
}

// CallMethodExpr invokes a method on an object expression.
type CallMethodExpr struct {
	ExprBase
	Object      Expr
	MethodIndex uint32
	Args        []Expr
}

// CastExpr is an explicit `TargetType(expr, ...)` conversion (§4.6).
type CastExpr struct {
	ExprBase
	TargetType types.Type
	Args       []Expr
}

// ConditionalExpr is `const_select(cond, whenTrue, whenFalse)` (§3.4).
type ConditionalExpr struct {
	ExprBase
	Condition Expr
	WhenTrue  Expr
	WhenFalse Expr
}

// ConstantRefExpr is a resolved reference to a declared const.
type ConstantRefExpr struct {
	ExprBase
	Constant Ref
}

// FunctionRefExpr is a resolved reference to a declared function used as
// a first-class value (before being called).
type FunctionRefExpr struct {
	ExprBase
	Function Ref
}

// IdentifierValueExpr is the unified post-resolution identifier
// reference the resolver settles on when none of the more specific
// *Ref/*Value expressions apply directly (e.g. a function parameter).
type IdentifierValueExpr struct {
	ExprBase
	Name string
	Ref  Ref
}

// IntrinsicExpr is an applied call to a built-in intrinsic (§4.8,
// §4.10.5).
type IntrinsicExpr struct {
	ExprBase
	IntrinsicID uint32
	Args        []Expr
}

// IntrinsicFunctionRefExpr is an unapplied reference to an intrinsic
// (e.g. passed to a higher-order position); NZSL has none today but the
// node exists for the closed sum's completeness and future-proofing of
// the const-eval table.
type IntrinsicFunctionRefExpr struct {
	ExprBase
	IntrinsicID uint32
}

// ModuleRefExpr is a resolved reference to an imported module's local
// alias (`M` in `import X as M`).
type ModuleRefExpr struct {
	ExprBase
	Module Ref
}

// NamedExternalBlockRefExpr is a resolved reference to an `external`
// block by its declared name.
type NamedExternalBlockRefExpr struct {
	ExprBase
	External Ref
}

// StructTypeRefExpr is a resolved reference to a struct used as a type
// value (as in `uniform[Block]`).
type StructTypeRefExpr struct {
	ExprBase
	Struct Ref
}

// SwizzleExpr is `vec.xyzw`-style component reselection.
type SwizzleExpr struct {
	ExprBase
	Object     Expr
	Components []uint8 // indices into {x,y,z,w} / {r,g,b,a}, 0..3
}

// TypeRefExpr is a resolved reference to any other named type (alias,
// primitive, vector/matrix shorthand) used as a value.
type TypeRefExpr struct {
	ExprBase
	Referenced types.Type
}

// UnaryExpr is a prefix unary operator application.
type UnaryExpr struct {
	ExprBase
	Op      UnaryOp
	Operand Expr
}

// UnaryOp enumerates `- + ! ~`.
type UnaryOp uint8

const (
	UnaryNeg UnaryOp = iota
	UnaryPlus
	UnaryLogicalNot
	UnaryBitNot
)

// VariableValueExpr is a resolved reference to a local/parameter
// variable.
type VariableValueExpr struct {
	ExprBase
	Variable Ref
}

func (*ConstantExpr) isExpr()              {}
func (*IdentifierExpr) isExpr()            {}
func (*AccessFieldExpr) isExpr()           {}
func (*AccessIdentifierExpr) isExpr()      {}
func (*AccessIndexExpr) isExpr()           {}
func (*AliasValueExpr) isExpr()            {}
func (*AssignExpr) isExpr()                {}
func (*BinaryExpr) isExpr()                {}
func (*CallFunctionExpr) isExpr()          {}
func (*CallMethodExpr) isExpr()            {}
func (*CastExpr) isExpr()                  {}
func (*ConditionalExpr) isExpr()           {}
func (*ConstantRefExpr) isExpr()           {}
func (*FunctionRefExpr) isExpr()           {}
func (*IdentifierValueExpr) isExpr()       {}
func (*IntrinsicExpr) isExpr()             {}
func (*IntrinsicFunctionRefExpr) isExpr()  {}
func (*ModuleRefExpr) isExpr()             {}
func (*NamedExternalBlockRefExpr) isExpr() {}
func (*StructTypeRefExpr) isExpr()         {}
func (*SwizzleExpr) isExpr()               {}
func (*TypeRefExpr) isExpr()               {}
func (*UnaryExpr) isExpr()                 {}
func (*VariableValueExpr) isExpr()         {}

// ----------------------------------------------------------------------------
// Statements — §3.4
// ----------------------------------------------------------------------------

// Stmt is any statement node.
type Stmt interface {
	isStmt()
	Location() lexer.SourceLocation
}

type StmtBase struct {
	Loc lexer.SourceLocation
}

func (s *StmtBase) isStmt()                       {}
func (s *StmtBase) Location() lexer.SourceLocation { return s.Loc }

// StmtAt builds a StmtBase carrying loc, for embedding in a freshly
// parsed node's composite literal.
func StmtAt(loc lexer.SourceLocation) StmtBase { return StmtBase{Loc: loc} }

// BranchCase is one `if`/`else if` arm of a BranchStmt.
type BranchCase struct {
	Condition Expr
	Body      *MultiStmt
	IsConst   bool // `const if`
}

// BranchStmt models `if`/`else if`/`else` chains, const or not (§3.4).
// Multi-arm chains reach every backend unsplit: no pass rewrites them
// into nested single-arm BranchStmts, and the SPIR-V backend's
// emitBranch lowers the multi-arm form directly.
type BranchStmt struct {
	StmtBase
	Cases []BranchCase
	Else  *MultiStmt // nil if no trailing else
}

// BreakStmt is `break;`.
type BreakStmt struct{ StmtBase }

// ConditionalStmt is the resolver's static `if (const)` wrapper: after
// constant propagation exactly one of Then/Else survives, collapsing
// into the statement list in its place.
type ConditionalStmt struct {
	StmtBase
	Condition Expr
	Then      Stmt
	Else      Stmt // may be nil
}

// ContinueStmt is `continue;`.
type ContinueStmt struct{ StmtBase }

// DeclareAliasStmt declares a local alias.
type DeclareAliasStmt struct {
	StmtBase
	Name  string
	Ref   Ref
	Value types.Type
}

// DeclareConstStmt declares a local `const`.
type DeclareConstStmt struct {
	StmtBase
	Name        string
	Ref         Ref
	Type        types.Type // nil if inferred
	Initializer Expr
}

// DeclareExternalMember is one binding inside an `external { ... }` block.
type DeclareExternalMember struct {
	Loc        lexer.SourceLocation
	Name       string
	Ref        Ref
	Type       types.Type
	Set        ExpressionValue[uint32]
	Binding    ExpressionValue[uint32]
	AutoBinding bool
}

// DeclareExternalStmt declares a block of resource bindings (§4.8
// "Externals").
type DeclareExternalStmt struct {
	StmtBase
	BlockName string // empty if anonymous
	BlockRef  Ref
	Members   []DeclareExternalMember
}

// DeclareFunctionParam is one parameter of a declared function.
type DeclareFunctionParam struct {
	Name     string
	Ref      Ref
	Type     types.Type
	Semantic ParamSemantic
}

// ParamSemantic is in/out/inout.
type ParamSemantic uint8

const (
	SemanticIn ParamSemantic = iota
	SemanticOut
	SemanticInout
)

// EntryStage names the shader stage a function is an entry point for.
type EntryStage uint8

const (
	StageNone EntryStage = iota
	StageVertex
	StageFragment
	StageCompute
)

// DeclareFunctionStmt declares a function (§3.4, §4.8 "Entry points").
type DeclareFunctionStmt struct {
	StmtBase
	Name             string
	Ref              Ref
	Params           []DeclareFunctionParam
	ReturnType       types.Type
	Body             *MultiStmt
	Entry            EntryStage
	Workgroup        [3]ExpressionValue[uint32]
	EarlyFragmentTests bool
	DepthWrite       bool
}

// DeclareOptionStmt declares a compile-time option (§4.6, GLOSSARY
// "Option").
type DeclareOptionStmt struct {
	StmtBase
	Name    string
	Ref     Ref
	Type    types.Type
	Default Expr
	Hash    uint64 // FNV-1a over the dotted option path, §SPEC_FULL C.3
}

// DeclareStructMember is one field of a declared struct.
type DeclareStructMember struct {
	Loc        lexer.SourceLocation
	Name       string
	Type       types.Type
	Builtin    string // empty if not builtin-tagged
	Locations  ExpressionValue[uint32]
	Cond       Expr // nil if unconditional; §4.8 "cond-disabled members"
	Interp     string
}

// DeclareStructStmt declares a struct type.
type DeclareStructStmt struct {
	StmtBase
	Name    string
	Ref     Ref
	Members []DeclareStructMember
}

// DeclareVariableStmt declares a local `let`/`var` (mutability is
// tracked separately by the resolver's symbol table).
type DeclareVariableStmt struct {
	StmtBase
	Name        string
	Ref         Ref
	Type        types.Type // nil if inferred
	Initializer Expr
	Mutable     bool
}

// DiscardStmt is `discard;`, legal only inside a fragment-reachable
// function (§4.8).
type DiscardStmt struct{ StmtBase }

// ExpressionStmt wraps an expression used as a statement.
type ExpressionStmt struct {
	StmtBase
	Expr Expr
}

// ForStmt is a numeric-range `for` loop.
type ForStmt struct {
	StmtBase
	VarName string
	VarRef  Ref
	From    Expr
	To      Expr
	Step    Expr // nil for a step of 1
	Body    *MultiStmt
}

// ForEachStmt iterates over an array/dyn-array container.
type ForEachStmt struct {
	StmtBase
	VarName   string
	VarRef    Ref
	Container Expr
	Body      *MultiStmt
}

// ImportStmt is a module-scope `import X from "mod" as alias;` that the
// forward-registration pass (C6) expands into the imported module's
// declarations.
type ImportStmt struct {
	StmtBase
	ModulePath string
	LocalAlias string
	ModuleRef  Ref
}

// MultiStmt is a compound block of statements.
type MultiStmt struct {
	StmtBase
	Statements []Stmt
}

// NoOpStmt replaces a statement the constant propagator eliminated
// entirely (§4.7 "On an empty branch chain, replaces the node with a
// no-op").
type NoOpStmt struct{ StmtBase }

// ReturnStmt is `return [value];`.
type ReturnStmt struct {
	StmtBase
	Value Expr // nil for a bare return
}

// ScopedStmt introduces a fresh lexical scope around Body without being
// a loop or branch (a bare `{ ... }` block).
type ScopedStmt struct {
	StmtBase
	Body *MultiStmt
}

// WhileStmt is a `while (cond) { }` loop.
type WhileStmt struct {
	StmtBase
	Condition Expr
	Body      *MultiStmt
}

func (*BranchStmt) isStmt()          {}
func (*BreakStmt) isStmt()           {}
func (*ConditionalStmt) isStmt()     {}
func (*ContinueStmt) isStmt()        {}
func (*DeclareAliasStmt) isStmt()    {}
func (*DeclareConstStmt) isStmt()    {}
func (*DeclareExternalStmt) isStmt() {}
func (*DeclareFunctionStmt) isStmt() {}
func (*DeclareOptionStmt) isStmt()   {}
func (*DeclareStructStmt) isStmt()   {}
func (*DeclareVariableStmt) isStmt() {}
func (*DiscardStmt) isStmt()         {}
func (*ExpressionStmt) isStmt()      {}
func (*ForStmt) isStmt()             {}
func (*ForEachStmt) isStmt()         {}
func (*ImportStmt) isStmt()          {}
func (*MultiStmt) isStmt()           {}
func (*NoOpStmt) isStmt()            {}
func (*ReturnStmt) isStmt()          {}
func (*ScopedStmt) isStmt()          {}
func (*WhileStmt) isStmt()           {}

// ----------------------------------------------------------------------------
// Symbols, imports, module — §3.5, §3.6
// ----------------------------------------------------------------------------

// Symbol is a declared name tracked in one of the per-category dense
// tables (§3.6).
type Symbol struct {
	Name string
	Loc  lexer.SourceLocation
	Kind SymbolCategory
}

// ImportedModule records one `import ... as alias` edge; order is
// significant and preserved by every pass (§3.5 invariant).
type ImportedModule struct {
	Identifier string
	Module     *Module
}

// Feature is one entry of the fixed enabled-feature enumeration (§3.5).
type Feature uint8

const (
	FeatureF64 Feature = iota
	FeaturePrimitiveExternals
	FeatureTexture1D
)

// Metadata is the descriptive header carried by every module (§3.5).
type Metadata struct {
	ModuleName     string
	LangVersion    uint32 // packed 24-bit major.minor.patch
	Author         string
	Description    string
	License        string
	EnabledFeatures map[Feature]bool
}

// PackVersion packs (major,minor,patch) into the 24-bit encoding used by
// module metadata and, pre-v14, the binary serializer (§4.3, §4.9).
func PackVersion(major, minor, patch uint32) uint32 {
	return (major << 16) | (minor << 8) | patch
}

// UnpackVersion is the inverse of PackVersion.
func UnpackVersion(v uint32) (major, minor, patch uint32) {
	return (v >> 16) & 0xFF, (v >> 8) & 0xFF, v & 0xFF
}

// Module owns metadata, ordered imports, and a root statement list
// (§3.5).
type Module struct {
	Metadata Metadata
	Imports  []ImportedModule
	Root     *MultiStmt

	// Dense per-category symbol tables, populated during forward
	// registration (C6, §3.6). Index i of a table is the declaration
	// for Ref{Category, uint32(i)}.
	Aliases   []Symbol
	Constants []Symbol
	Externals []Symbol
	Functions []Symbol
	Modules   []Symbol
	Structs   []Symbol
	Variables []Symbol
	Options   []Symbol
}

// SymbolTable returns the slice backing category cat, for index
// validation (§8 "every reference-expression index names a live
// entry").
func (m *Module) SymbolTable(cat SymbolCategory) []Symbol {
	switch cat {
	case CatAlias:
		return m.Aliases
	case CatConstant:
		return m.Constants
	case CatExternal:
		return m.Externals
	case CatFunction:
		return m.Functions
	case CatModule:
		return m.Modules
	case CatStruct:
		return m.Structs
	case CatVariable:
		return m.Variables
	case CatOption:
		return m.Options
	}
	return nil
}

// IsLive reports whether ref names an entry within its category table's
// current bounds.
func (m *Module) IsLive(ref Ref) bool {
	tbl := m.SymbolTable(ref.Category)
	return ref.IsValid() && int(ref.Index) < len(tbl)
}
