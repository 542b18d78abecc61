// Package sema implements the identifier/type resolver (C6, §4.6): a
// two-phase pass over a purely syntactic *ast.Module (as produced by
// internal/parser) that assigns dense Ref indices to every declaration,
// wires imports through internal/resolver, rewrites identifier
// expressions into the specific reference-expression kind their target
// turns out to be, and computes a cached ExpressionType for every
// expression in the tree.
//
// Unlike internal/transform's node-generic Visitor, this pass drives its
// own recursion: correct lexical scoping needs push/pop symmetry around
// block entry and exit that the Visitor's enter-only verdict can't
// express, so sema walks function bodies directly instead of going
// through transform.Walk (internal/constfold and the dead-code pass,
// which are post-order and scope-free, are the natural users of the
// shared framework).
package sema

import (
	"fmt"

	"github.com/nzslang/nzslc/internal/ast"
	"github.com/nzslang/nzslc/internal/lexer"
	"github.com/nzslang/nzslc/internal/resolver"
	"github.com/nzslang/nzslc/internal/types"
)

// ErrorKind classifies a resolve-time error (§4.6 FAILS WITH list, §7
// ResolveError family).
type ErrorKind uint8

const (
	ErrUndeclaredIdentifier ErrorKind = iota
	ErrDuplicateDeclaration
	ErrTypeMismatch
	ErrInvalidLvalue
	ErrUnknownField
	ErrCastArity
	ErrUnsupportedOperands
	ErrForbiddenRecursion
	ErrOptionHashCollision
	ErrUnknownType
	ErrUnknownImport
	ErrModuleResolution
)

// Error is the ResolveError family member.
type Error struct {
	Kind    ErrorKind
	Loc     lexer.SourceLocation
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Loc.StartLine, e.Loc.StartCol, e.Message)
}

// funcInfo remembers a function's signature for call-site checking and
// recursion detection.
type funcInfo struct {
	decl *ast.DeclareFunctionStmt
	ref  ast.Ref
}

// Resolver carries all state for one module's two-phase resolution.
type Resolver struct {
	mod      *ast.Module
	fsRes    resolver.Resolver
	errors   []*Error

	structsByName map[string]uint32
	aliasesByName map[string]types.Type
	constsByName  map[string]binding
	externByName  map[string]binding
	funcsByName   map[string]funcInfo
	optionsByName map[string]binding
	importsByName map[string]*ast.Module

	structDecls map[uint32]*ast.DeclareStructStmt
	funcDecls   []funcInfo

	optionHashes map[uint64]string // hash -> the first option name claiming it

	// callStack holds the function whose body is being resolved, so a
	// call to it from its own body reports ErrForbiddenRecursion (§4.6).
	// A call cycle through other functions is not detected.
	callStack map[string]bool
}

// Resolve runs forward registration then the expression/type pass over
// mod, wiring imports through fsRes (nil is accepted for modules with no
// imports — e.g. in tests). It mutates mod in place and returns every
// error encountered; a non-empty return does not stop the pass early so
// later stages can report as much as possible in one run, matching the
// parser's synchronize-and-continue error model.
func Resolve(mod *ast.Module, fsRes resolver.Resolver) []*Error {
	r := &Resolver{
		mod:           mod,
		fsRes:         fsRes,
		structsByName: make(map[string]uint32),
		aliasesByName: make(map[string]types.Type),
		constsByName:  make(map[string]binding),
		externByName:  make(map[string]binding),
		funcsByName:   make(map[string]funcInfo),
		optionsByName: make(map[string]binding),
		importsByName: make(map[string]*ast.Module),
		structDecls:   make(map[uint32]*ast.DeclareStructStmt),
		optionHashes:  make(map[uint64]string),
		callStack:     make(map[string]bool),
	}
	r.registerDeclarations()
	r.resolveDeclarationBodies()
	return r.errors
}

func (r *Resolver) errorf(kind ErrorKind, loc lexer.SourceLocation, format string, args ...any) {
	r.errors = append(r.errors, &Error{Kind: kind, Loc: loc, Message: fmt.Sprintf(format, args...)})
}

// ----------------------------------------------------------------------------
// Phase 1: forward registration (§4.6.1)
// ----------------------------------------------------------------------------

// registerDeclarations assigns a Ref to every module-level declaration
// in source order and records its name in the appropriate lookup table,
// so phase 2 can resolve forward references (a function calling one
// declared later, a struct used before its own declaration) uniformly.
func (r *Resolver) registerDeclarations() {
	for _, stmt := range r.mod.Root.Statements {
		switch d := stmt.(type) {
		case *ast.ImportStmt:
			r.registerImport(d)
		case *ast.DeclareStructStmt:
			idx := uint32(len(r.mod.Structs))
			d.Ref = ast.Ref{Category: ast.CatStruct, Index: idx}
			r.mod.Structs = append(r.mod.Structs, ast.Symbol{Name: d.Name, Loc: d.Location(), Kind: ast.CatStruct})
			if _, dup := r.structsByName[d.Name]; dup {
				r.errorf(ErrDuplicateDeclaration, d.Location(), "struct %q already declared", d.Name)
			}
			r.structsByName[d.Name] = idx
			r.structDecls[idx] = d
		}
	}

	// Struct member types are resolved only once every struct name is
	// known, so one struct's member can reference another declared later
	// in the same module.
	for _, stmt := range r.mod.Root.Statements {
		if d, ok := stmt.(*ast.DeclareStructStmt); ok {
			for i := range d.Members {
				d.Members[i].Type = r.resolveType(d.Members[i].Type, d.Members[i].Loc)
			}
		}
	}

	// Aliases may reference structs (forward or backward) but not other
	// aliases cyclically in this pipeline; register their target types
	// after every struct name is known.
	for _, stmt := range r.mod.Root.Statements {
		if d, ok := stmt.(*ast.DeclareAliasStmt); ok {
			idx := uint32(len(r.mod.Aliases))
			d.Ref = ast.Ref{Category: ast.CatAlias, Index: idx}
			r.mod.Aliases = append(r.mod.Aliases, ast.Symbol{Name: d.Name, Loc: d.Location(), Kind: ast.CatAlias})
			if _, dup := r.aliasesByName[d.Name]; dup {
				r.errorf(ErrDuplicateDeclaration, d.Location(), "alias %q already declared", d.Name)
			}
			target := r.resolveType(d.Value, d.Location())
			d.Value = target
			r.aliasesByName[d.Name] = &types.Alias{Index: idx, Target: target}
		}
	}

	for _, stmt := range r.mod.Root.Statements {
		switch d := stmt.(type) {
		case *ast.DeclareExternalStmt:
			r.registerExternal(d)
		case *ast.DeclareConstStmt:
			idx := uint32(len(r.mod.Constants))
			d.Ref = ast.Ref{Category: ast.CatConstant, Index: idx}
			r.mod.Constants = append(r.mod.Constants, ast.Symbol{Name: d.Name, Loc: d.Location(), Kind: ast.CatConstant})
			if _, dup := r.constsByName[d.Name]; dup {
				r.errorf(ErrDuplicateDeclaration, d.Location(), "const %q already declared", d.Name)
			}
			declType := d.Type
			if declType != nil {
				declType = r.resolveType(declType, d.Location())
				d.Type = declType
			}
			r.constsByName[d.Name] = binding{ref: d.Ref, typ: declType}
		case *ast.DeclareOptionStmt:
			idx := uint32(len(r.mod.Options))
			d.Ref = ast.Ref{Category: ast.CatOption, Index: idx}
			r.mod.Options = append(r.mod.Options, ast.Symbol{Name: d.Name, Loc: d.Location(), Kind: ast.CatOption})
			if prior, collide := r.optionHashes[d.Hash]; collide && prior != d.Name {
				r.errorf(ErrOptionHashCollision, d.Location(), "option %q's hash collides with %q", d.Name, prior)
			}
			r.optionHashes[d.Hash] = d.Name
			declType := r.resolveType(d.Type, d.Location())
			d.Type = declType
			r.optionsByName[d.Name] = binding{ref: d.Ref, typ: declType}
		case *ast.DeclareFunctionStmt:
			idx := uint32(len(r.mod.Functions))
			d.Ref = ast.Ref{Category: ast.CatFunction, Index: idx}
			r.mod.Functions = append(r.mod.Functions, ast.Symbol{Name: d.Name, Loc: d.Location(), Kind: ast.CatFunction})
			if _, dup := r.funcsByName[d.Name]; dup {
				r.errorf(ErrDuplicateDeclaration, d.Location(), "function %q already declared", d.Name)
			}
			for i := range d.Params {
				d.Params[i].Type = r.resolveType(d.Params[i].Type, d.Location())
			}
			if d.ReturnType != nil {
				d.ReturnType = r.resolveType(d.ReturnType, d.Location())
			} else {
				d.ReturnType = &types.None{}
			}
			info := funcInfo{decl: d, ref: d.Ref}
			r.funcsByName[d.Name] = info
			r.funcDecls = append(r.funcDecls, info)
		}
	}
}

// registerImport resolves the imported module through the injected
// resolver.Resolver and records it under its local alias (§4.4, §4.6
// "each import becoming a set of alias statements" — represented here as
// a name-table entry rather than literal injected statements, since this
// pipeline resolves identifiers by table lookup instead of rewriting the
// statement list).
func (r *Resolver) registerImport(d *ast.ImportStmt) {
	idx := uint32(len(r.mod.Modules))
	d.ModuleRef = ast.Ref{Category: ast.CatModule, Index: idx}
	r.mod.Modules = append(r.mod.Modules, ast.Symbol{Name: d.LocalAlias, Loc: d.Location(), Kind: ast.CatModule})

	if r.fsRes == nil {
		r.errorf(ErrModuleResolution, d.Location(), "import %q requires a module resolver", d.ModulePath)
		return
	}
	imported, err := r.fsRes.Resolve(d.ModulePath)
	if err != nil {
		r.errorf(ErrModuleResolution, d.Location(), "resolving %q: %v", d.ModulePath, err)
		return
	}
	r.mod.Imports = append(r.mod.Imports, ast.ImportedModule{Identifier: d.LocalAlias, Module: imported})
	r.importsByName[d.LocalAlias] = imported
}

// registerExternal assigns one Ref per member (NZSL externals are
// referenced directly by member name, not through the block), and
// implements auto_binding slot assignment (SPEC_FULL §C.2): members
// tagged [auto_binding] receive the next (set 0, binding N) pair not
// already explicitly claimed by a sibling member.
func (r *Resolver) registerExternal(d *ast.DeclareExternalStmt) {
	taken := map[uint32]bool{}
	for i := range d.Members {
		if v, ok := literalUint32(d.Members[i].Binding.GetExpression()); ok {
			d.Members[i].Binding.SetValue(v)
		}
		if d.Members[i].Binding.IsResultingValue() {
			taken[d.Members[i].Binding.GetResultingValue()] = true
		}
	}
	next := uint32(0)
	nextFreeBinding := func() uint32 {
		for taken[next] {
			next++
		}
		taken[next] = true
		return next
	}

	for i := range d.Members {
		m := &d.Members[i]
		idx := uint32(len(r.mod.Externals))
		m.Ref = ast.Ref{Category: ast.CatExternal, Index: idx}
		r.mod.Externals = append(r.mod.Externals, ast.Symbol{Name: m.Name, Loc: m.Loc, Kind: ast.CatExternal})
		if _, dup := r.externByName[m.Name]; dup {
			r.errorf(ErrDuplicateDeclaration, m.Loc, "external %q already declared", m.Name)
		}
		declType := r.resolveType(m.Type, m.Loc)
		m.Type = declType

		if v, ok := literalUint32(m.Set.GetExpression()); ok {
			m.Set.SetValue(v)
		}
		if m.AutoBinding && !m.Binding.IsResultingValue() {
			m.Binding.SetValue(nextFreeBinding())
		}
		if !m.Set.IsResultingValue() {
			m.Set.SetValue(0)
		}

		r.externByName[m.Name] = binding{ref: m.Ref, typ: declType}
	}
	if d.BlockName != "" {
		d.BlockRef = ast.Ref{Category: ast.CatExternal, Index: 0}
	}
}

// ----------------------------------------------------------------------------
// Phase 2: expression/type pass (§4.6.2)
// ----------------------------------------------------------------------------

func (r *Resolver) resolveDeclarationBodies() {
	for _, stmt := range r.mod.Root.Statements {
		switch d := stmt.(type) {
		case *ast.DeclareConstStmt:
			sc := newScope(nil)
			d.Initializer = r.resolveExpr(d.Initializer, sc)
			if d.Type == nil {
				d.Type = defaultConcreteType(d.Initializer.Type())
			}
		case *ast.DeclareOptionStmt:
			if d.Default != nil {
				sc := newScope(nil)
				d.Default = r.resolveExpr(d.Default, sc)
			}
		case *ast.DeclareFunctionStmt:
			r.resolveFunctionBody(d)
		}
	}
}

func (r *Resolver) resolveFunctionBody(d *ast.DeclareFunctionStmt) {
	if r.callStack[d.Name] {
		r.errorf(ErrForbiddenRecursion, d.Location(), "function %q recurses", d.Name)
		return
	}
	r.callStack[d.Name] = true
	defer delete(r.callStack, d.Name)

	sc := newScope(nil)
	for i := range d.Params {
		p := &d.Params[i]
		p.Ref = ast.Ref{Category: ast.CatVariable, Index: uint32(len(r.mod.Variables))}
		r.mod.Variables = append(r.mod.Variables, ast.Symbol{Name: p.Name, Loc: d.Location(), Kind: ast.CatVariable})
		sc.define(p.Name, p.Ref, p.Type)
	}
	if d.Body != nil {
		r.resolveBlock(d.Body, sc)
	}
}

func (r *Resolver) resolveBlock(m *ast.MultiStmt, parent *scope) {
	sc := newScope(parent)
	for _, s := range m.Statements {
		r.resolveStmt(s, sc)
	}
}

func (r *Resolver) resolveStmt(s ast.Stmt, sc *scope) {
	switch n := s.(type) {
	case *ast.ScopedStmt:
		r.resolveBlock(n.Body, sc)
	case *ast.DeclareVariableStmt:
		var typ types.Type
		if n.Initializer != nil {
			n.Initializer = r.resolveExpr(n.Initializer, sc)
			typ = n.Initializer.Type()
		}
		if n.Type != nil {
			typ = r.resolveType(n.Type, n.Location())
		} else {
			typ = defaultConcreteType(typ)
		}
		n.Type = typ
		n.Ref = ast.Ref{Category: ast.CatVariable, Index: uint32(len(r.mod.Variables))}
		r.mod.Variables = append(r.mod.Variables, ast.Symbol{Name: n.Name, Loc: n.Location(), Kind: ast.CatVariable})
		sc.define(n.Name, n.Ref, typ)
	case *ast.DeclareConstStmt:
		n.Initializer = r.resolveExpr(n.Initializer, sc)
		typ := n.Type
		if typ != nil {
			typ = r.resolveType(typ, n.Location())
		} else {
			typ = defaultConcreteType(n.Initializer.Type())
		}
		n.Type = typ
		n.Ref = ast.Ref{Category: ast.CatConstant, Index: uint32(len(r.mod.Constants))}
		r.mod.Constants = append(r.mod.Constants, ast.Symbol{Name: n.Name, Loc: n.Location(), Kind: ast.CatConstant})
		sc.define(n.Name, n.Ref, typ)
	case *ast.DeclareAliasStmt:
		n.Value = r.resolveType(n.Value, n.Location())
		n.Ref = ast.Ref{Category: ast.CatAlias, Index: uint32(len(r.mod.Aliases))}
		r.mod.Aliases = append(r.mod.Aliases, ast.Symbol{Name: n.Name, Loc: n.Location(), Kind: ast.CatAlias})
	case *ast.BranchStmt:
		for i := range n.Cases {
			n.Cases[i].Condition = r.resolveExpr(n.Cases[i].Condition, sc)
			r.resolveBlock(n.Cases[i].Body, sc)
		}
		if n.Else != nil {
			r.resolveBlock(n.Else, sc)
		}
	case *ast.WhileStmt:
		n.Condition = r.resolveExpr(n.Condition, sc)
		r.resolveBlock(n.Body, sc)
	case *ast.ForStmt:
		n.From = r.resolveExpr(n.From, sc)
		n.To = r.resolveExpr(n.To, sc)
		if n.Step != nil {
			n.Step = r.resolveExpr(n.Step, sc)
		}
		loopScope := newScope(sc)
		n.VarRef = ast.Ref{Category: ast.CatVariable, Index: uint32(len(r.mod.Variables))}
		r.mod.Variables = append(r.mod.Variables, ast.Symbol{Name: n.VarName, Loc: n.Location(), Kind: ast.CatVariable})
		loopScope.define(n.VarName, n.VarRef, n.From.Type())
		r.resolveBlock(n.Body, loopScope)
	case *ast.ForEachStmt:
		n.Container = r.resolveExpr(n.Container, sc)
		loopScope := newScope(sc)
		n.VarRef = ast.Ref{Category: ast.CatVariable, Index: uint32(len(r.mod.Variables))}
		r.mod.Variables = append(r.mod.Variables, ast.Symbol{Name: n.VarName, Loc: n.Location(), Kind: ast.CatVariable})
		loopScope.define(n.VarName, n.VarRef, elementTypeOf(n.Container.Type()))
		r.resolveBlock(n.Body, loopScope)
	case *ast.ExpressionStmt:
		n.Expr = r.resolveExpr(n.Expr, sc)
	case *ast.ReturnStmt:
		if n.Value != nil {
			n.Value = r.resolveExpr(n.Value, sc)
		}
	// BreakStmt, ContinueStmt, DiscardStmt, NoOpStmt, DeclareExternalStmt,
	// DeclareStructStmt, DeclareFunctionStmt, ImportStmt, ConditionalStmt,
	// MultiStmt inside a function body are either leaf statements or
	// already handled by the enclosing case (MultiStmt via resolveBlock).
	}
}

// elementTypeOf returns the per-iteration type a for-each loop variable
// takes on, given the resolved type of the container expression.
func elementTypeOf(t types.Type) types.Type {
	switch c := t.(type) {
	case *types.Array:
		return c.Element
	case *types.DynArray:
		return c.Element
	}
	return t
}

// defaultConcreteType narrows an untyped literal to its default concrete
// type when a `let`/`const` has no explicit type annotation (§4.7
// "Resulting value propagation").
func defaultConcreteType(t types.Type) types.Type {
	if p, ok := t.(*types.Prim); ok {
		switch p.Kind {
		case types.IntLiteral:
			return &types.Prim{Kind: types.I32}
		case types.FloatLiteral:
			return &types.Prim{Kind: types.F32}
		}
	}
	return t
}

// literalUint32 extracts the value of an attribute argument expression
// written as a bare integer literal (e.g. `set(2)`), so registerExternal
// can resolve an explicit set/binding index without waiting for
// internal/constfold. Anything more complex than a literal (an
// identifier, a named const, an arithmetic expression) is left for
// constfold to resolve once it runs.
func literalUint32(e ast.Expr) (uint32, bool) {
	c, ok := e.(*ast.ConstantExpr)
	if !ok {
		return 0, false
	}
	switch c.Value.Kind {
	case ast.KI32, ast.KU32, ast.KIntLiteral:
		return uint32(c.Value.I64), true
	}
	return 0, false
}
