package sema

import (
	"github.com/nzslang/nzslc/internal/ast"
	"github.com/nzslang/nzslc/internal/lexer"
	"github.com/nzslang/nzslc/internal/types"
)

func isComparisonOp(op ast.BinaryOp) bool {
	switch op {
	case ast.BinEq, ast.BinNe, ast.BinLt, ast.BinLe, ast.BinGt, ast.BinGe:
		return true
	}
	return false
}

func isBitwiseOp(op ast.BinaryOp) bool {
	switch op {
	case ast.BinBitAnd, ast.BinBitXor, ast.BinBitOr, ast.BinShl, ast.BinShr:
		return true
	}
	return false
}

// primShape is the scalar-or-vector shape of an operand, used to drive
// the arithmetic/bitwise operand table (§4.6, §4.7).
type primShape struct {
	prim     types.Primitive
	vecCount int // 0 for a bare scalar
}

func shapeOf(t types.Type) (primShape, bool) {
	switch v := types.ResolveAlias(t).(type) {
	case *types.Prim:
		return primShape{prim: v.Kind}, true
	case *types.Vector:
		return primShape{prim: v.Primitive, vecCount: v.ComponentCount}, true
	}
	return primShape{}, false
}

// unifyPrimitive narrows an untyped literal kind to the other operand's
// concrete kind (§4.7); if both are untyped, a float literal wins since
// NZSL's default narrowing never silently truncates a float to an int.
func unifyPrimitive(a, b types.Primitive) types.Primitive {
	if a == b {
		return a
	}
	if a.IsUntyped() && !b.IsUntyped() {
		return b
	}
	if b.IsUntyped() && !a.IsUntyped() {
		return a
	}
	if a.IsUntyped() && b.IsUntyped() {
		if a == types.FloatLiteral || b == types.FloatLiteral {
			return types.FloatLiteral
		}
		return types.IntLiteral
	}
	return a
}

// binaryResultType computes the result type of a binary operator
// application (§4.6.2), reporting ErrUnsupportedOperands and recovering
// with the left operand's type so the pass can keep going.
func (r *Resolver) binaryResultType(op ast.BinaryOp, left, right types.Type, loc lexer.SourceLocation) types.Type {
	if isComparisonOp(op) {
		if _, lok := shapeOf(left); !lok {
			r.errorf(ErrUnsupportedOperands, loc, "comparison operand %s is not comparable", left)
		}
		return &types.Prim{Kind: types.Bool}
	}
	if op == ast.BinLogicalAnd || op == ast.BinLogicalOr {
		lp, lok := left.(*types.Prim)
		rp, rok := right.(*types.Prim)
		if !lok || !rok || lp.Kind != types.Bool || rp.Kind != types.Bool {
			r.errorf(ErrUnsupportedOperands, loc, "logical operator requires bool operands, got %s and %s", left, right)
		}
		return &types.Prim{Kind: types.Bool}
	}

	lshape, lok := shapeOf(left)
	rshape, rok := shapeOf(right)
	if !lok || !rok {
		r.errorf(ErrUnsupportedOperands, loc, "operator is not defined for %s and %s", left, right)
		return left
	}
	if isBitwiseOp(op) && (!lshape.prim.IsInteger() || !rshape.prim.IsInteger()) {
		r.errorf(ErrUnsupportedOperands, loc, "bitwise operator requires integer operands, got %s and %s", left, right)
	}
	if !lshape.prim.IsNumeric() || !rshape.prim.IsNumeric() {
		r.errorf(ErrUnsupportedOperands, loc, "arithmetic operator requires numeric operands, got %s and %s", left, right)
	}

	concrete := unifyPrimitive(lshape.prim, rshape.prim)

	switch {
	case lshape.vecCount > 0 && rshape.vecCount > 0:
		if lshape.vecCount != rshape.vecCount {
			r.errorf(ErrUnsupportedOperands, loc, "vector size mismatch: %s and %s", left, right)
		}
		return &types.Vector{ComponentCount: lshape.vecCount, Primitive: concrete}
	case lshape.vecCount > 0:
		return &types.Vector{ComponentCount: lshape.vecCount, Primitive: concrete}
	case rshape.vecCount > 0:
		return &types.Vector{ComponentCount: rshape.vecCount, Primitive: concrete}
	default:
		return &types.Prim{Kind: concrete}
	}
}

// unaryResultType computes the result type of a prefix unary operator
// (§4.6.2): `- +` need a numeric operand, `!` needs bool, `~` needs an
// integer, and every case preserves the operand's shape.
func (r *Resolver) unaryResultType(op ast.UnaryOp, operand types.Type, loc lexer.SourceLocation) types.Type {
	shape, ok := shapeOf(operand)
	if !ok {
		r.errorf(ErrUnsupportedOperands, loc, "unary operator is not defined for %s", operand)
		return operand
	}
	switch op {
	case ast.UnaryNeg, ast.UnaryPlus:
		if !shape.prim.IsNumeric() {
			r.errorf(ErrUnsupportedOperands, loc, "unary +/- requires a numeric operand, got %s", operand)
		}
	case ast.UnaryLogicalNot:
		if shape.prim != types.Bool {
			r.errorf(ErrUnsupportedOperands, loc, "! requires a bool operand, got %s", operand)
		}
	case ast.UnaryBitNot:
		if !shape.prim.IsInteger() {
			r.errorf(ErrUnsupportedOperands, loc, "~ requires an integer operand, got %s", operand)
		}
	}
	return operand
}
