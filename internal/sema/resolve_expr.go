package sema

import (
	"github.com/nzslang/nzslc/internal/ast"
	"github.com/nzslang/nzslc/internal/builtins"
	"github.com/nzslang/nzslc/internal/lexer"
	"github.com/nzslang/nzslc/internal/types"
)

// resolveExpr child-first rewrites e: every operand is resolved before
// the node itself picks its result type, so a parent always sees its
// children's final, concrete-where-possible types (§4.6.2).
func (r *Resolver) resolveExpr(e ast.Expr, sc *scope) ast.Expr {
	if e == nil {
		return nil
	}
	switch n := e.(type) {
	case *ast.ConstantExpr:
		n.SetType(n.Value.Type())
		return n

	case *ast.IdentifierExpr:
		return r.resolveIdentifier(n.Name, n.Location(), sc)

	case *ast.AccessIdentifierExpr:
		n.Object = r.resolveExpr(n.Object, sc)
		return r.resolveAccess(n, sc)

	case *ast.AccessIndexExpr:
		n.Object = r.resolveExpr(n.Object, sc)
		n.Index = r.resolveExpr(n.Index, sc)
		n.SetType(elementTypeOf(n.Object.Type()))
		return n

	case *ast.AssignExpr:
		n.Left = r.resolveExpr(n.Left, sc)
		n.Right = r.resolveExpr(n.Right, sc)
		if !isLvalue(n.Left) {
			r.errorf(ErrInvalidLvalue, n.Location(), "left-hand side of assignment is not an lvalue")
		}
		n.SetType(n.Left.Type())
		return n

	case *ast.BinaryExpr:
		n.Left = r.resolveExpr(n.Left, sc)
		n.Right = r.resolveExpr(n.Right, sc)
		n.SetType(r.binaryResultType(n.Op, n.Left.Type(), n.Right.Type(), n.Location()))
		return n

	case *ast.UnaryExpr:
		n.Operand = r.resolveExpr(n.Operand, sc)
		n.SetType(r.unaryResultType(n.Op, n.Operand.Type(), n.Location()))
		return n

	case *ast.ConditionalExpr:
		n.Condition = r.resolveExpr(n.Condition, sc)
		n.WhenTrue = r.resolveExpr(n.WhenTrue, sc)
		n.WhenFalse = r.resolveExpr(n.WhenFalse, sc)
		n.SetType(n.WhenTrue.Type())
		return n

	case *ast.CallFunctionExpr:
		return r.resolveCall(n, sc)

	default:
		// Already a post-resolution node (re-entry from a later pass); no
		// further rewriting needed.
		return e
	}
}

// resolveIdentifier settles a bare name into the specific reference
// expression its binding kind calls for (§4.6.2).
func (r *Resolver) resolveIdentifier(name string, loc lexer.SourceLocation, sc *scope) ast.Expr {
	if b, ok := sc.lookup(name); ok {
		e := &ast.VariableValueExpr{ExprBase: ast.ExprAt(loc), Variable: b.ref}
		e.SetType(b.typ)
		return e
	}
	if b, ok := r.constsByName[name]; ok {
		e := &ast.ConstantRefExpr{ExprBase: ast.ExprAt(loc), Constant: b.ref}
		e.SetType(b.typ)
		return e
	}
	if f, ok := r.funcsByName[name]; ok {
		e := &ast.FunctionRefExpr{ExprBase: ast.ExprAt(loc), Function: f.ref}
		e.SetType(&types.Function{Index: f.ref.Index})
		return e
	}
	if idx, ok := r.structsByName[name]; ok {
		e := &ast.StructTypeRefExpr{ExprBase: ast.ExprAt(loc), Struct: ast.Ref{Category: ast.CatStruct, Index: idx}}
		e.SetType(&types.TypeOf{Index: idx})
		return e
	}
	if target, ok := r.aliasesByName[name]; ok {
		alias := target.(*types.Alias)
		e := &ast.AliasValueExpr{ExprBase: ast.ExprAt(loc), Alias: ast.Ref{Category: ast.CatAlias, Index: alias.Index}}
		e.SetType(types.ResolveAlias(alias))
		return e
	}
	if b, ok := r.externByName[name]; ok {
		e := &ast.IdentifierValueExpr{ExprBase: ast.ExprAt(loc), Name: name, Ref: b.ref}
		e.SetType(b.typ)
		return e
	}
	if b, ok := r.optionsByName[name]; ok {
		e := &ast.IdentifierValueExpr{ExprBase: ast.ExprAt(loc), Name: name, Ref: b.ref}
		e.SetType(b.typ)
		return e
	}
	if _, ok := r.importsByName[name]; ok {
		idx := r.moduleRefIndex(name)
		e := &ast.ModuleRefExpr{ExprBase: ast.ExprAt(loc), Module: ast.Ref{Category: ast.CatModule, Index: idx}}
		e.SetType(&types.Module{Index: idx})
		return e
	}
	if prim, ok := primitiveNames[name]; ok {
		e := &ast.TypeRefExpr{ExprBase: ast.ExprAt(loc), Referenced: &types.Prim{Kind: prim}}
		e.SetType(&types.TypeOf{})
		return e
	}
	if _, _, ok := vectorName(name); ok {
		e := &ast.TypeRefExpr{ExprBase: ast.ExprAt(loc), Referenced: r.resolveType(&types.Unresolved{Name: name}, loc)}
		e.SetType(&types.TypeOf{})
		return e
	}
	if _, _, ok := matrixName(name); ok {
		e := &ast.TypeRefExpr{ExprBase: ast.ExprAt(loc), Referenced: r.resolveType(&types.Unresolved{Name: name}, loc)}
		e.SetType(&types.TypeOf{})
		return e
	}
	if sig, ok := builtins.Lookup(name); ok {
		e := &ast.IntrinsicFunctionRefExpr{ExprBase: ast.ExprAt(loc), IntrinsicID: uint32(sig.ID)}
		e.SetType(&types.Intrinsic{ID: uint32(sig.ID)})
		return e
	}

	r.errorf(ErrUndeclaredIdentifier, loc, "undeclared identifier %q", name)
	e := &ast.IdentifierValueExpr{ExprBase: ast.ExprAt(loc), Name: name}
	e.SetType(&types.Prim{Kind: types.I32})
	return e
}

func (r *Resolver) moduleRefIndex(alias string) uint32 {
	for i, sym := range r.mod.Modules {
		if sym.Name == alias {
			return uint32(i)
		}
	}
	return 0
}

// resolveAccess specializes `object.name` into a field access or a
// swizzle once the object's type is known; method-call shapes are
// already peeled off in resolveCall before an AccessIdentifierExpr ever
// reaches here as a bare (non-called) expression.
func (r *Resolver) resolveAccess(n *ast.AccessIdentifierExpr, sc *scope) ast.Expr {
	objType := n.Object.Type()
	if st, ok := types.ResolveAlias(objType).(*types.Struct); ok {
		if decl, ok := r.structDecls[st.Index]; ok {
			for i, m := range decl.Members {
				if m.Name == n.Name {
					fe := &ast.AccessFieldExpr{ExprBase: ast.ExprAt(n.Location()), Object: n.Object, FieldName: n.Name, FieldIndex: i}
					fe.SetType(m.Type)
					return fe
				}
			}
		}
		r.errorf(ErrUnknownField, n.Location(), "struct has no field %q", n.Name)
		return n
	}
	if vec, ok := types.ResolveAlias(objType).(*types.Vector); ok {
		if comps, ok := swizzleComponents(n.Name, vec.ComponentCount); ok {
			se := &ast.SwizzleExpr{ExprBase: ast.ExprAt(n.Location()), Object: n.Object, Components: comps}
			if len(comps) == 1 {
				se.SetType(&types.Prim{Kind: vec.Primitive})
			} else {
				se.SetType(&types.Vector{ComponentCount: len(comps), Primitive: vec.Primitive})
			}
			return se
		}
		r.errorf(ErrUnknownField, n.Location(), "invalid swizzle %q", n.Name)
		return n
	}
	r.errorf(ErrUnknownField, n.Location(), "type %s has no field or swizzle %q", objType, n.Name)
	return n
}

var swizzleSets = [2]string{"xyzw", "rgba"}

// swizzleComponents maps a swizzle string ("xy", "rgba", ...) to
// {x,y,z,w}-style component indices, rejecting names that mix the two
// accepted letter sets or exceed the source vector's component count.
func swizzleComponents(name string, srcCount int) ([]uint8, bool) {
	if len(name) == 0 || len(name) > 4 {
		return nil, false
	}
	var set string
	for _, candidate := range swizzleSets {
		if containsAny(candidate, name) {
			set = candidate
			break
		}
	}
	if set == "" {
		return nil, false
	}
	comps := make([]uint8, 0, len(name))
	for _, ch := range name {
		idx := indexByte(set, byte(ch))
		if idx < 0 || idx >= srcCount {
			return nil, false
		}
		comps = append(comps, uint8(idx))
	}
	return comps, true
}

func containsAny(set, name string) bool {
	return indexByte(set, name[0]) >= 0
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

// isLvalue reports whether an assignment target is a legal one (§4.6.2
// "Assignment targets must be lvalues"): a variable, an external, or a
// field/index access rooted in one — never a constant, function, or
// literal.
func isLvalue(e ast.Expr) bool {
	switch n := e.(type) {
	case *ast.VariableValueExpr:
		return true
	case *ast.IdentifierValueExpr:
		return n.Ref.Category == ast.CatExternal
	case *ast.AccessFieldExpr:
		return isLvalue(n.Object)
	case *ast.AccessIndexExpr:
		return isLvalue(n.Object)
	case *ast.SwizzleExpr:
		return isLvalue(n.Object)
	}
	return false
}

// resolveCall disambiguates `callee(args)` into a method call, a cast,
// or a function call, depending on what the callee expression turns out
// to reference (§4.6.2's cast-vs-call and method-vs-field resolution).
func (r *Resolver) resolveCall(n *ast.CallFunctionExpr, sc *scope) ast.Expr {
	if access, ok := n.Callee.(*ast.AccessIdentifierExpr); ok {
		object := r.resolveExpr(access.Object, sc)
		return r.resolveMethodCall(object, access.Name, n.Args, n.Location(), sc)
	}

	callee := r.resolveExpr(n.Callee, sc)
	args := make([]ast.Expr, len(n.Args))
	for i, a := range n.Args {
		args[i] = r.resolveExpr(a, sc)
	}

	switch c := callee.(type) {
	case *ast.TypeRefExpr:
		ce := &ast.CastExpr{ExprBase: ast.ExprAt(n.Location()), TargetType: c.Referenced, Args: args}
		ce.SetType(c.Referenced)
		if err := validateCastArity(c.Referenced, args); err != "" {
			r.errorf(ErrCastArity, n.Location(), "%s", err)
		}
		return ce
	case *ast.StructTypeRefExpr:
		target := &types.Struct{Index: c.Struct.Index}
		ce := &ast.CastExpr{ExprBase: ast.ExprAt(n.Location()), TargetType: target, Args: args}
		ce.SetType(target)
		return ce
	case *ast.FunctionRefExpr:
		decl := r.funcDecls[c.Function.Index].decl
		if r.callStack[decl.Name] {
			r.errorf(ErrForbiddenRecursion, n.Location(), "function %q calls itself", decl.Name)
		}
		if len(args) != len(decl.Params) {
			r.errorf(ErrUnsupportedOperands, n.Location(), "function %q expects %d arguments, got %d", decl.Name, len(decl.Params), len(args))
		}
		n.Callee = c
		n.Args = args
		n.SetType(decl.ReturnType)
		return n
	case *ast.IntrinsicFunctionRefExpr:
		sig, _ := builtins.LookupID(builtins.ID(c.IntrinsicID))
		if len(args) < sig.MinArgs || len(args) > sig.MaxArgs {
			r.errorf(ErrUnsupportedOperands, n.Location(), "intrinsic %q expects between %d and %d arguments, got %d", sig.Name, sig.MinArgs, sig.MaxArgs, len(args))
		}
		argTypes := make([]types.Type, len(args))
		for i, a := range args {
			argTypes[i] = a.Type()
		}
		ie := &ast.IntrinsicExpr{ExprBase: ast.ExprAt(n.Location()), IntrinsicID: c.IntrinsicID, Args: args}
		ie.SetType(builtins.ResultType(sig, argTypes))
		return ie
	default:
		r.errorf(ErrUndeclaredIdentifier, n.Location(), "callee does not name a function, type, or method")
		n.Callee = callee
		n.Args = args
		n.SetType(&types.Prim{Kind: types.I32})
		return n
	}
}

// resolveMethodCall implements the small built-in method set every
// container type exposes directly (today: `.len()` on array-shaped
// values); anything else is an unknown-field error, since NZSL routes
// texture/sampler operations through free intrinsic calls rather than
// methods (internal/builtins owns those, §4.8).
func (r *Resolver) resolveMethodCall(object ast.Expr, name string, rawArgs []ast.Expr, loc lexer.SourceLocation, sc *scope) ast.Expr {
	args := make([]ast.Expr, len(rawArgs))
	for i, a := range rawArgs {
		args[i] = r.resolveExpr(a, sc)
	}
	switch types.ResolveAlias(object.Type()).(type) {
	case *types.Array, *types.DynArray:
		if name == "len" {
			ce := &ast.CallMethodExpr{ExprBase: ast.ExprAt(loc), Object: object, MethodIndex: 0, Args: args}
			ce.SetType(&types.Prim{Kind: types.U32})
			return ce
		}
	}
	r.errorf(ErrUnknownField, loc, "unknown method %q", name)
	ce := &ast.CallMethodExpr{ExprBase: ast.ExprAt(loc), Object: object, Args: args}
	ce.SetType(&types.Prim{Kind: types.I32})
	return ce
}

func validateCastArity(target types.Type, args []ast.Expr) string {
	if v, ok := target.(*types.Vector); ok {
		if len(args) != 1 && len(args) != v.ComponentCount {
			return "vector construction needs either one source value or one value per component"
		}
	}
	return ""
}
