// Package builtins is the signature table for NZSL's free intrinsic
// functions (§4.8): the names a shader can call without a user
// declaration, their arity, and the rule used to compute a call's result
// type. internal/sema consults it to resolve intrinsic identifiers and
// calls; internal/spirv consults it again when emitting each intrinsic
// through the GLSL.std.450 extended instruction set or a core opcode.
package builtins

import "github.com/nzslang/nzslc/internal/types"

// ID tags one intrinsic entry; it is carried on ast.IntrinsicExpr and
// ast.IntrinsicFunctionRefExpr so later passes never need to re-match on
// the source name.
type ID uint32

const (
	IDNone ID = iota
	IDAbs
	IDMin
	IDMax
	IDClamp
	IDMix
	IDStep
	IDSmoothstep
	IDPow
	IDSqrt
	IDInverseSqrt
	IDFloor
	IDCeil
	IDFract
	IDSin
	IDCos
	IDTan
	IDExp
	IDLog
	IDExp2
	IDLog2
	IDDot
	IDCross
	IDNormalize
	IDLength
	IDDistance
	IDReflect
	IDRefract
	IDSign
	IDArraySize
)

// ResultRule picks how a call's result type is derived from its
// resolved argument types (§4.8).
type ResultRule uint8

const (
	// ResultFirstArg yields argument 0's own type unchanged (abs, min, clamp, ...).
	ResultFirstArg ResultRule = iota
	// ResultScalarOfFirst yields argument 0's scalar component type,
	// even when argument 0 is a vector (dot, length, distance).
	ResultScalarOfFirst
	// ResultU32 always yields u32 (ArraySize).
	ResultU32
)

// Signature is one intrinsic's entry: its name, id, accepted argument
// count range, and result rule.
type Signature struct {
	Name    string
	ID      ID
	MinArgs int
	MaxArgs int
	Result  ResultRule
}

var table = []Signature{
	{"abs", IDAbs, 1, 1, ResultFirstArg},
	{"min", IDMin, 2, 2, ResultFirstArg},
	{"max", IDMax, 2, 2, ResultFirstArg},
	{"clamp", IDClamp, 3, 3, ResultFirstArg},
	{"mix", IDMix, 3, 3, ResultFirstArg},
	{"step", IDStep, 2, 2, ResultFirstArg},
	{"smoothstep", IDSmoothstep, 3, 3, ResultFirstArg},
	{"pow", IDPow, 2, 2, ResultFirstArg},
	{"sqrt", IDSqrt, 1, 1, ResultFirstArg},
	{"inverseSqrt", IDInverseSqrt, 1, 1, ResultFirstArg},
	{"floor", IDFloor, 1, 1, ResultFirstArg},
	{"ceil", IDCeil, 1, 1, ResultFirstArg},
	{"fract", IDFract, 1, 1, ResultFirstArg},
	{"sin", IDSin, 1, 1, ResultFirstArg},
	{"cos", IDCos, 1, 1, ResultFirstArg},
	{"tan", IDTan, 1, 1, ResultFirstArg},
	{"exp", IDExp, 1, 1, ResultFirstArg},
	{"log", IDLog, 1, 1, ResultFirstArg},
	{"exp2", IDExp2, 1, 1, ResultFirstArg},
	{"log2", IDLog2, 1, 1, ResultFirstArg},
	{"dot", IDDot, 2, 2, ResultScalarOfFirst},
	{"cross", IDCross, 2, 2, ResultFirstArg},
	{"normalize", IDNormalize, 1, 1, ResultFirstArg},
	{"length", IDLength, 1, 1, ResultScalarOfFirst},
	{"distance", IDDistance, 2, 2, ResultScalarOfFirst},
	{"reflect", IDReflect, 2, 2, ResultFirstArg},
	{"refract", IDRefract, 3, 3, ResultFirstArg},
	{"sign", IDSign, 1, 1, ResultFirstArg},
	{"ArraySize", IDArraySize, 1, 1, ResultU32},
}

var (
	byName = make(map[string]Signature, len(table))
	byID   = make(map[ID]Signature, len(table))
)

func init() {
	for _, s := range table {
		byName[s.Name] = s
		byID[s.ID] = s
	}
}

// Lookup finds an intrinsic's signature by its source spelling.
func Lookup(name string) (Signature, bool) {
	s, ok := byName[name]
	return s, ok
}

// LookupID finds an intrinsic's signature by its id, for passes that
// only carry the id (e.g. a resolved ast.IntrinsicFunctionRefExpr).
func LookupID(id ID) (Signature, bool) {
	s, ok := byID[id]
	return s, ok
}

// ResultType computes the result type of calling sig with the given
// resolved argument types, per sig.Result (§4.8).
func ResultType(sig Signature, args []types.Type) types.Type {
	switch sig.Result {
	case ResultScalarOfFirst:
		if len(args) == 0 {
			return &types.Prim{Kind: types.F32}
		}
		return scalarOf(args[0])
	case ResultU32:
		return &types.Prim{Kind: types.U32}
	default:
		if len(args) == 0 {
			return &types.Prim{Kind: types.F32}
		}
		return args[0]
	}
}

func scalarOf(t types.Type) types.Type {
	if v, ok := t.(*types.Vector); ok {
		return &types.Prim{Kind: v.Primitive}
	}
	return t
}
