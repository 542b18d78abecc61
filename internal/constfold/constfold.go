// Package constfold folds constant subexpressions in a resolved module
// (§4.7): arithmetic/comparison/logical operators applied to literals,
// swizzle-of-swizzle collapsing, scalar casts, `const_select`, `const if`
// branch elimination, and the `ArraySize` intrinsic. It also resolves the
// ExpressionValue[uint32] attribute fields (external `set`/`binding`,
// struct member `location`, function `workgroup`) that internal/sema
// leaves as unevaluated expressions whenever they weren't a bare integer
// literal sema could already read off during registration.
//
// Folding builds on internal/transform's Visitor framework: EnterExpr
// does its own post-order recursion (folding children before folding
// their parent, per that package's documented pattern for passes like
// this one) and EnterStmt specially handles *ast.BranchStmt to prune
// statically-dead `const if` arms.
package constfold

import (
	"math"

	"github.com/nzslang/nzslc/internal/ast"
	"github.com/nzslang/nzslc/internal/builtins"
	"github.com/nzslang/nzslc/internal/lexer"
	"github.com/nzslang/nzslc/internal/transform"
	"github.com/nzslang/nzslc/internal/types"
)

// ErrorKind distinguishes the fold-time error conditions of §4.7.
type ErrorKind int

const (
	ErrIntegralDivisionByZero ErrorKind = iota
	ErrIntegralModuloByZero
	ErrNegativeShift
	ErrTooLargeShift
)

// Error is one fold-time diagnostic: an operation on two constants that
// has no well-defined result (integer division/modulo by zero, a shift
// by a negative or too-large amount).
type Error struct {
	Kind    ErrorKind
	Loc     lexer.SourceLocation
	Message string
}

func (e *Error) Error() string { return e.Message }

// Fold folds every constant subexpression reachable from mod's
// top-level statements, in place, and resolves external/struct/function
// attribute fields that reduce to a literal integer. It is idempotent:
// running it again on an already-folded module finds nothing left to do.
func Fold(mod *ast.Module) []*Error {
	f := &folder{}
	ctx := &transform.Context{}
	transform.Walk(mod, f, ctx)
	f.foldAttributes(mod, ctx)
	return f.errors
}

type folder struct {
	errors []*Error
}

func (f *folder) record(kind ErrorKind, loc lexer.SourceLocation, msg string) {
	f.errors = append(f.errors, &Error{Kind: kind, Loc: loc, Message: msg})
}

// EnterStmt lets every statement kind but BranchStmt pass through
// unchanged; transform.Walk still visits their expression children,
// which reach EnterExpr the normal way.
func (f *folder) EnterStmt(s ast.Stmt, ctx *transform.Context) transform.StmtResult {
	if b, ok := s.(*ast.BranchStmt); ok {
		return f.foldBranch(b, ctx)
	}
	return transform.StmtResult{Action: transform.VisitChildren}
}

// EnterExpr always handles its own recursion (folding children first)
// and reports DontVisitChildren so transform.Walk doesn't also descend.
func (f *folder) EnterExpr(e ast.Expr, ctx *transform.Context) transform.ExprResult {
	return transform.ExprResult{Action: transform.DontVisitChildren, Replace: f.foldExpr(e, ctx)}
}

// foldBranch folds every case's condition and body, then eliminates
// statically-false `const if` arms. A case whose condition folds to
// constant `true` makes everything after it dead: the whole BranchStmt
// is replaced by that case's body.
func (f *folder) foldBranch(b *ast.BranchStmt, ctx *transform.Context) transform.StmtResult {
	var live []ast.BranchCase
	for i := range b.Cases {
		c := &b.Cases[i]
		c.Condition = transform.WalkExprReplace(c.Condition, f, ctx)
		transform.WalkBlock(c.Body, f, ctx)

		if c.IsConst {
			if lit, ok := c.Condition.(*ast.ConstantExpr); ok && lit.Value.Kind == ast.KBool {
				if lit.Value.Bool {
					return transform.StmtResult{
						Action:  transform.DontVisitChildren,
						Replace: &ast.ScopedStmt{StmtBase: ast.StmtAt(b.Location()), Body: c.Body},
					}
				}
				continue // statically false: drop this case
			}
		}
		live = append(live, *c)
	}
	b.Cases = live

	if b.Else != nil {
		transform.WalkBlock(b.Else, f, ctx)
	}

	if len(b.Cases) == 0 {
		if b.Else != nil {
			return transform.StmtResult{
				Action:  transform.DontVisitChildren,
				Replace: &ast.ScopedStmt{StmtBase: ast.StmtAt(b.Location()), Body: b.Else},
			}
		}
		return transform.StmtResult{Action: transform.DontVisitChildren, Remove: true}
	}
	return transform.StmtResult{Action: transform.DontVisitChildren}
}

// foldExpr folds e's children (by recursing through transform, which
// calls back into EnterExpr), then attempts to fold e itself. Nodes
// that cannot be constant-folded are returned unchanged once their
// children have been updated in place.
func (f *folder) foldExpr(e ast.Expr, ctx *transform.Context) ast.Expr {
	switch n := e.(type) {
	case *ast.BinaryExpr:
		n.Left = transform.WalkExprReplace(n.Left, f, ctx)
		n.Right = transform.WalkExprReplace(n.Right, f, ctx)
		return f.foldBinary(n)
	case *ast.UnaryExpr:
		n.Operand = transform.WalkExprReplace(n.Operand, f, ctx)
		return f.foldUnary(n)
	case *ast.SwizzleExpr:
		n.Object = transform.WalkExprReplace(n.Object, f, ctx)
		return f.foldSwizzle(n)
	case *ast.CastExpr:
		for i := range n.Args {
			n.Args[i] = transform.WalkExprReplace(n.Args[i], f, ctx)
		}
		return f.foldCast(n)
	case *ast.ConditionalExpr:
		n.Condition = transform.WalkExprReplace(n.Condition, f, ctx)
		n.WhenTrue = transform.WalkExprReplace(n.WhenTrue, f, ctx)
		n.WhenFalse = transform.WalkExprReplace(n.WhenFalse, f, ctx)
		return f.foldConditional(n)
	case *ast.IntrinsicExpr:
		for i := range n.Args {
			n.Args[i] = transform.WalkExprReplace(n.Args[i], f, ctx)
		}
		return f.foldIntrinsic(n)
	case *ast.AccessFieldExpr:
		n.Object = transform.WalkExprReplace(n.Object, f, ctx)
		return n
	case *ast.AccessIndexExpr:
		n.Object = transform.WalkExprReplace(n.Object, f, ctx)
		n.Index = transform.WalkExprReplace(n.Index, f, ctx)
		return n
	case *ast.AssignExpr:
		n.Left = transform.WalkExprReplace(n.Left, f, ctx)
		n.Right = transform.WalkExprReplace(n.Right, f, ctx)
		return n
	case *ast.CallFunctionExpr:
		n.Callee = transform.WalkExprReplace(n.Callee, f, ctx)
		for i := range n.Args {
			n.Args[i] = transform.WalkExprReplace(n.Args[i], f, ctx)
		}
		return n
	case *ast.CallMethodExpr:
		n.Object = transform.WalkExprReplace(n.Object, f, ctx)
		for i := range n.Args {
			n.Args[i] = transform.WalkExprReplace(n.Args[i], f, ctx)
		}
		return n
	default:
		return e
	}
}

func asConst(e ast.Expr) (ast.Const, bool) {
	c, ok := e.(*ast.ConstantExpr)
	if !ok {
		return ast.Const{}, false
	}
	return c.Value, true
}

func constExpr(loc lexer.SourceLocation, v ast.Const) ast.Expr {
	e := &ast.ConstantExpr{ExprBase: ast.ExprAt(loc), Value: v}
	e.SetType(v.Type())
	return e
}

func isFloatKind(k ast.ConstKind) bool {
	return k == ast.KF32 || k == ast.KF64 || k == ast.KFloatLiteral
}

func isIntKind(k ast.ConstKind) bool {
	return k == ast.KI32 || k == ast.KU32 || k == ast.KIntLiteral
}

func isVecKind(k ast.ConstKind) bool {
	return k >= ast.KVecBool2 && k <= ast.KVecFloatLiteral4
}

// vecKindFor recovers the dense KVec* tag for a component kind/count
// pair; the inverse of ast's own (unexported) vecKindInfo.
func vecKindFor(elem ast.ConstKind, count int) (ast.ConstKind, bool) {
	table := map[ast.ConstKind][3]ast.ConstKind{
		ast.KBool:         {ast.KVecBool2, ast.KVecBool3, ast.KVecBool4},
		ast.KF32:          {ast.KVecF32_2, ast.KVecF32_3, ast.KVecF32_4},
		ast.KF64:          {ast.KVecF64_2, ast.KVecF64_3, ast.KVecF64_4},
		ast.KI32:          {ast.KVecI32_2, ast.KVecI32_3, ast.KVecI32_4},
		ast.KU32:          {ast.KVecU32_2, ast.KVecU32_3, ast.KVecU32_4},
		ast.KIntLiteral:   {ast.KVecIntLiteral2, ast.KVecIntLiteral3, ast.KVecIntLiteral4},
		ast.KFloatLiteral: {ast.KVecFloatLiteral2, ast.KVecFloatLiteral3, ast.KVecFloatLiteral4},
	}
	row, ok := table[elem]
	if !ok || count < 2 || count > 4 {
		return 0, false
	}
	return row[count-2], true
}

func numAsFloat(c ast.Const) float64 {
	if isFloatKind(c.Kind) {
		return c.F64
	}
	if c.Kind == ast.KBool {
		if c.Bool {
			return 1
		}
		return 0
	}
	return float64(c.I64)
}

func resultNumericKind(l, r ast.ConstKind) (ast.ConstKind, bool) {
	if isFloatKind(l) || isFloatKind(r) {
		if l == ast.KF64 || r == ast.KF64 {
			return ast.KF64, true
		}
		if l == ast.KF32 || r == ast.KF32 {
			return ast.KF32, true
		}
		return ast.KFloatLiteral, true
	}
	if isIntKind(l) && isIntKind(r) {
		if l == ast.KU32 || r == ast.KU32 {
			return ast.KU32, true
		}
		if l == ast.KI32 || r == ast.KI32 {
			return ast.KI32, true
		}
		return ast.KIntLiteral, true
	}
	return 0, false
}

func constEqual(l, r ast.Const) bool {
	if l.Kind == ast.KBool || r.Kind == ast.KBool {
		return l.Bool == r.Bool
	}
	return numAsFloat(l) == numAsFloat(r)
}

// foldScalarBinary evaluates op over two scalar constants. The second
// return is false when the operands don't support op (left for the
// validator to reject) or an error was recorded (division/modulo by
// zero, an out-of-range shift).
func (f *folder) foldScalarBinary(op ast.BinaryOp, l, r ast.Const, loc lexer.SourceLocation) (ast.Const, bool) {
	switch op {
	case ast.BinLogicalAnd:
		if l.Kind == ast.KBool && r.Kind == ast.KBool {
			return ast.Const{Kind: ast.KBool, Bool: l.Bool && r.Bool}, true
		}
		return ast.Const{}, false
	case ast.BinLogicalOr:
		if l.Kind == ast.KBool && r.Kind == ast.KBool {
			return ast.Const{Kind: ast.KBool, Bool: l.Bool || r.Bool}, true
		}
		return ast.Const{}, false
	case ast.BinEq, ast.BinNe:
		eq := constEqual(l, r)
		if op == ast.BinNe {
			eq = !eq
		}
		return ast.Const{Kind: ast.KBool, Bool: eq}, true
	}

	rk, ok := resultNumericKind(l.Kind, r.Kind)
	if !ok {
		return ast.Const{}, false
	}

	switch op {
	case ast.BinLt, ast.BinLe, ast.BinGt, ast.BinGe:
		var cmp int
		if isFloatKind(rk) {
			lf, rf := numAsFloat(l), numAsFloat(r)
			switch {
			case lf < rf:
				cmp = -1
			case lf > rf:
				cmp = 1
			}
		} else {
			switch {
			case l.I64 < r.I64:
				cmp = -1
			case l.I64 > r.I64:
				cmp = 1
			}
		}
		var res bool
		switch op {
		case ast.BinLt:
			res = cmp < 0
		case ast.BinLe:
			res = cmp <= 0
		case ast.BinGt:
			res = cmp > 0
		case ast.BinGe:
			res = cmp >= 0
		}
		return ast.Const{Kind: ast.KBool, Bool: res}, true

	case ast.BinBitAnd, ast.BinBitOr, ast.BinBitXor, ast.BinShl, ast.BinShr:
		if !isIntKind(rk) {
			return ast.Const{}, false
		}
		var v int64
		switch op {
		case ast.BinBitAnd:
			v = l.I64 & r.I64
		case ast.BinBitOr:
			v = l.I64 | r.I64
		case ast.BinBitXor:
			v = l.I64 ^ r.I64
		case ast.BinShl:
			if r.I64 < 0 {
				f.record(ErrNegativeShift, loc, "shift by a negative amount")
				return ast.Const{}, false
			}
			if r.I64 >= 32 {
				f.record(ErrTooLargeShift, loc, "shift amount exceeds the operand's bit width")
				return ast.Const{}, false
			}
			v = l.I64 << uint(r.I64)
		case ast.BinShr:
			if r.I64 < 0 {
				f.record(ErrNegativeShift, loc, "shift by a negative amount")
				return ast.Const{}, false
			}
			if r.I64 >= 32 {
				f.record(ErrTooLargeShift, loc, "shift amount exceeds the operand's bit width")
				return ast.Const{}, false
			}
			v = l.I64 >> uint(r.I64)
		}
		return ast.Const{Kind: rk, I64: v}, true

	default: // Add/Sub/Mul/Div/Mod
		if isFloatKind(rk) {
			lf, rf := numAsFloat(l), numAsFloat(r)
			var v float64
			switch op {
			case ast.BinAdd:
				v = lf + rf
			case ast.BinSub:
				v = lf - rf
			case ast.BinMul:
				v = lf * rf
			case ast.BinDiv:
				v = lf / rf
			default:
				return ast.Const{}, false
			}
			return ast.Const{Kind: rk, F64: v}, true
		}
		li, ri := l.I64, r.I64
		var v int64
		switch op {
		case ast.BinAdd:
			v = li + ri
		case ast.BinSub:
			v = li - ri
		case ast.BinMul:
			v = li * ri
		case ast.BinDiv:
			if ri == 0 {
				f.record(ErrIntegralDivisionByZero, loc, "integer division by zero")
				return ast.Const{}, false
			}
			v = li / ri
		case ast.BinMod:
			if ri == 0 {
				f.record(ErrIntegralModuloByZero, loc, "integer modulo by zero")
				return ast.Const{}, false
			}
			v = li % ri
		default:
			return ast.Const{}, false
		}
		return ast.Const{Kind: rk, I64: v}, true
	}
}

// foldBinary handles the vector/scalar broadcast forms of §4.3's
// arithmetic operators (`vec3[f32] * f32`, `f32 / vec3[f32]`) in
// addition to plain scalar/scalar and vector/vector.
func (f *folder) foldBinary(n *ast.BinaryExpr) ast.Expr {
	lc, lok := asConst(n.Left)
	rc, rok := asConst(n.Right)
	if !lok || !rok {
		return n
	}

	lv, rv := isVecKind(lc.Kind), isVecKind(rc.Kind)
	switch {
	case lv && rv:
		if len(lc.Vec) != len(rc.Vec) {
			return n
		}
		comps := make([]ast.Const, len(lc.Vec))
		for i := range comps {
			v, ok := f.foldScalarBinary(n.Op, lc.Vec[i], rc.Vec[i], n.Location())
			if !ok {
				return n
			}
			comps[i] = v
		}
		return f.vecExprOrSelf(n, comps)

	case lv && !rv:
		comps := make([]ast.Const, len(lc.Vec))
		for i := range comps {
			v, ok := f.foldScalarBinary(n.Op, lc.Vec[i], rc, n.Location())
			if !ok {
				return n
			}
			comps[i] = v
		}
		return f.vecExprOrSelf(n, comps)

	case !lv && rv:
		comps := make([]ast.Const, len(rc.Vec))
		for i := range comps {
			v, ok := f.foldScalarBinary(n.Op, lc, rc.Vec[i], n.Location())
			if !ok {
				return n
			}
			comps[i] = v
		}
		return f.vecExprOrSelf(n, comps)

	default:
		v, ok := f.foldScalarBinary(n.Op, lc, rc, n.Location())
		if !ok {
			return n
		}
		return constExpr(n.Location(), v)
	}
}

// vecExprOrSelf builds the vector constant from already-folded
// components, or returns n unchanged if the component kind has no
// dense vector form (comparison/logical ops applied component-wise
// don't occur in NZSL source and are left for the validator to flag).
func (f *folder) vecExprOrSelf(n *ast.BinaryExpr, comps []ast.Const) ast.Expr {
	kind, ok := vecKindFor(comps[0].Kind, len(comps))
	if !ok {
		return n
	}
	return constExpr(n.Location(), ast.Const{Kind: kind, Vec: comps})
}

func (f *folder) foldUnary(n *ast.UnaryExpr) ast.Expr {
	c, ok := asConst(n.Operand)
	if !ok {
		return n
	}
	switch n.Op {
	case ast.UnaryPlus:
		return n.Operand
	case ast.UnaryLogicalNot:
		if c.Kind != ast.KBool {
			return n
		}
		return constExpr(n.Location(), ast.Const{Kind: ast.KBool, Bool: !c.Bool})
	case ast.UnaryBitNot:
		if !isIntKind(c.Kind) {
			return n
		}
		return constExpr(n.Location(), ast.Const{Kind: c.Kind, I64: ^c.I64})
	case ast.UnaryNeg:
		if isFloatKind(c.Kind) {
			return constExpr(n.Location(), ast.Const{Kind: c.Kind, F64: -c.F64})
		}
		if isIntKind(c.Kind) {
			return constExpr(n.Location(), ast.Const{Kind: c.Kind, I64: -c.I64})
		}
		if isVecKind(c.Kind) {
			neg := make([]ast.Const, len(c.Vec))
			for i, comp := range c.Vec {
				if isFloatKind(comp.Kind) {
					neg[i] = ast.Const{Kind: comp.Kind, F64: -comp.F64}
				} else if isIntKind(comp.Kind) {
					neg[i] = ast.Const{Kind: comp.Kind, I64: -comp.I64}
				} else {
					return n
				}
			}
			kind, ok := vecKindFor(neg[0].Kind, len(neg))
			if !ok {
				return n
			}
			return constExpr(n.Location(), ast.Const{Kind: kind, Vec: neg})
		}
	}
	return n
}

// foldSwizzle collapses a swizzle of a swizzle into one (§4.7
// "swizzle-of-swizzle folding") regardless of whether the underlying
// object is itself constant, and additionally evaluates a swizzle of a
// constant vector into a narrower (or scalar) constant.
func (f *folder) foldSwizzle(n *ast.SwizzleExpr) ast.Expr {
	if inner, ok := n.Object.(*ast.SwizzleExpr); ok {
		combined := make([]uint8, len(n.Components))
		for i, c := range n.Components {
			combined[i] = inner.Components[c]
		}
		e := &ast.SwizzleExpr{ExprBase: ast.ExprAt(n.Location()), Object: inner.Object, Components: combined}
		e.SetType(n.Type())
		return f.foldSwizzle(e)
	}

	c, ok := asConst(n.Object)
	if !ok || !isVecKind(c.Kind) {
		return n
	}
	comps := make([]ast.Const, len(n.Components))
	for i, idx := range n.Components {
		if int(idx) >= len(c.Vec) {
			return n
		}
		comps[i] = c.Vec[idx]
	}
	if len(comps) == 1 {
		return constExpr(n.Location(), comps[0])
	}
	kind, ok := vecKindFor(comps[0].Kind, len(comps))
	if !ok {
		return n
	}
	return constExpr(n.Location(), ast.Const{Kind: kind, Vec: comps})
}

// foldCast evaluates a single-argument scalar cast (`f32(x)`, `i32(x)`,
// …) and a vector constructor cast whose arguments are all constant
// (`vec3[f32](a, b, c)`, or the single-scalar broadcast form
// `vec3[f32](0.0)`).
func (f *folder) foldCast(n *ast.CastExpr) ast.Expr {
	switch tt := types.ResolveAlias(n.TargetType).(type) {
	case *types.Prim:
		if len(n.Args) != 1 {
			return n
		}
		c, ok := asConst(n.Args[0])
		if !ok {
			return n
		}
		v, ok := castScalar(tt.Kind, c)
		if !ok {
			return n
		}
		return constExpr(n.Location(), v)
	case *types.Vector:
		return f.foldVectorConstructor(n, tt)
	default:
		return n
	}
}

// castScalar converts a scalar constant to the primitive kind prim,
// truncating a float source toward zero per §4.7's cast-folding rule.
func castScalar(prim types.Primitive, c ast.Const) (ast.Const, bool) {
	switch prim {
	case types.Bool:
		return ast.Const{Kind: ast.KBool, Bool: numAsFloat(c) != 0}, true
	case types.F32:
		return ast.Const{Kind: ast.KF32, F64: numAsFloat(c)}, true
	case types.F64:
		return ast.Const{Kind: ast.KF64, F64: numAsFloat(c)}, true
	case types.I32:
		return ast.Const{Kind: ast.KI32, I64: truncToInt(c)}, true
	case types.U32:
		return ast.Const{Kind: ast.KU32, I64: truncToInt(c)}, true
	}
	return ast.Const{}, false
}

// foldVectorConstructor folds `vecN[T](args...)` when every argument is
// constant: scalar arguments are concatenated component-wise, a vector
// argument contributes all of its components (so `vec4[f32](v3, 1.0)`
// folds too), and a single scalar argument broadcasts to every
// component.
func (f *folder) foldVectorConstructor(n *ast.CastExpr, vt *types.Vector) ast.Expr {
	comps := make([]ast.Const, 0, vt.ComponentCount)
	for _, a := range n.Args {
		c, ok := asConst(a)
		if !ok {
			return n
		}
		if isVecKind(c.Kind) {
			comps = append(comps, c.Vec...)
		} else {
			comps = append(comps, c)
		}
	}
	if len(comps) == 1 && vt.ComponentCount > 1 {
		full := make([]ast.Const, vt.ComponentCount)
		for i := range full {
			full[i] = comps[0]
		}
		comps = full
	}
	if len(comps) != vt.ComponentCount {
		return n
	}
	for i, c := range comps {
		v, ok := castScalar(vt.Primitive, c)
		if !ok {
			return n
		}
		comps[i] = v
	}
	kind, ok := vecKindFor(comps[0].Kind, len(comps))
	if !ok {
		return n
	}
	return constExpr(n.Location(), ast.Const{Kind: kind, Vec: comps})
}

// truncToInt truncates toward zero on a float source, per §4.7's
// explicit cast-folding rule.
func truncToInt(c ast.Const) int64 {
	if isFloatKind(c.Kind) {
		return int64(math.Trunc(c.F64))
	}
	if c.Kind == ast.KBool {
		if c.Bool {
			return 1
		}
		return 0
	}
	return c.I64
}

// foldConditional evaluates `const_select(cond, a, b)` once cond is a
// constant bool, replacing the whole expression with whichever branch
// was chosen.
func (f *folder) foldConditional(n *ast.ConditionalExpr) ast.Expr {
	c, ok := asConst(n.Condition)
	if !ok || c.Kind != ast.KBool {
		return n
	}
	if c.Bool {
		return n.WhenTrue
	}
	return n.WhenFalse
}

// foldIntrinsic folds `ArraySize(x)` into a literal when x's type is a
// fixed-length array; a dyn_array has no compile-time size and is left
// for the backend's runtime length query.
func (f *folder) foldIntrinsic(n *ast.IntrinsicExpr) ast.Expr {
	if builtins.ID(n.IntrinsicID) != builtins.IDArraySize || len(n.Args) != 1 {
		return n
	}
	arr, ok := types.ResolveAlias(n.Args[0].Type()).(*types.Array)
	if !ok {
		return n
	}
	return constExpr(n.Location(), ast.Const{Kind: ast.KU32, I64: int64(arr.Length)})
}

// foldAttributes resolves the ExpressionValue[uint32] attribute fields
// that internal/sema leaves unevaluated: everything but a bare integer
// literal written directly as `set(N)`/`binding(N)` (those are already
// resolved by sema itself during registration).
func (f *folder) foldAttributes(mod *ast.Module, ctx *transform.Context) {
	for _, s := range mod.Root.Statements {
		switch d := s.(type) {
		case *ast.DeclareExternalStmt:
			for i := range d.Members {
				f.foldUint32Attr(&d.Members[i].Set, ctx)
				f.foldUint32Attr(&d.Members[i].Binding, ctx)
			}
		case *ast.DeclareStructStmt:
			for i := range d.Members {
				f.foldUint32Attr(&d.Members[i].Locations, ctx)
			}
		case *ast.DeclareFunctionStmt:
			for i := range d.Workgroup {
				f.foldUint32Attr(&d.Workgroup[i], ctx)
			}
		}
	}
}

func (f *folder) foldUint32Attr(ev *ast.ExpressionValue[uint32], ctx *transform.Context) {
	if ev.IsResultingValue() {
		return
	}
	expr := ev.GetExpression()
	if expr == nil {
		return
	}
	folded := f.foldExpr(expr, ctx)
	c, ok := folded.(*ast.ConstantExpr)
	if !ok {
		return
	}
	switch c.Value.Kind {
	case ast.KI32, ast.KU32, ast.KIntLiteral:
		ev.SetValue(uint32(c.Value.I64))
	}
}
