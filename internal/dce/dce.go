// Package dce implements dead-code elimination for NZSL modules (§6.1
// `--optimize`: "constant propagation and dead-code elimination passes
// in the backend pipeline").
//
// DCE works by:
// 1. Finding entry-point functions (`[entry(...)]`) and every external
//    resource block (kept unconditionally — see Mark's doc comment).
// 2. Building a dependency graph from each module-scope declaration to
//    the other declarations its type(s) and body/initializer reference.
// 3. Marking everything reachable from those roots as live.
// 4. Pruning unreached declarations from the module's statement list.
package dce

import (
	"github.com/nzslang/nzslc/internal/ast"
	"github.com/nzslang/nzslc/internal/transform"
	"github.com/nzslang/nzslc/internal/types"
)

// key names one module-scope symbol by category and table index.
type key struct {
	cat ast.SymbolCategory
	idx uint32
}

// Result is the outcome of Mark: which symbols are reachable from an
// entry point (or, for a library module with none, from anything at
// all — see Mark).
type Result struct {
	live map[key]bool
}

// IsLive reports whether ref names a symbol Mark found reachable.
func (r *Result) IsLive(ref ast.Ref) bool {
	return r.live[key{ref.Category, ref.Index}]
}

// Count returns the number of live symbols, for reporting (mirrors the
// teacher's `Mark` returning a dead-symbol count).
func (r *Result) Count() int {
	return len(r.live)
}

// Mark computes liveness over mod and returns the Result; it does not
// mutate mod (see Prune for that). External resource blocks are always
// treated as additional roots alongside entry points: unlike a
// function or constant, an external binding is host-visible (it
// reserves a `set`/`binding` slot the host pipeline layout expects),
// so DCE never removes one even if nothing in a reachable function
// happens to read it yet.
//
// A module that declares no entry point (a library module meant to be
// `import`ed rather than compiled standalone) has no reachability roots
// to start from; Mark then conservatively treats every declaration as
// live, mirroring the teacher's `Mark`'s "no entry points found" case.
func Mark(mod *ast.Module) *Result {
	deps := buildDependencyGraph(mod)
	roots := entryPointRoots(mod)
	for _, s := range mod.Root.Statements {
		if d, ok := s.(*ast.DeclareExternalStmt); ok {
			roots = append(roots, key{ast.CatExternal, d.BlockRef.Index})
		}
	}

	live := make(map[key]bool)
	if len(roots) == 0 {
		for k := range deps {
			live[k] = true
		}
		for _, s := range mod.Root.Statements {
			if k, ok := declKey(s); ok {
				live[k] = true
			}
		}
		return &Result{live: live}
	}

	var walk func(key)
	walk = func(k key) {
		if live[k] {
			return
		}
		live[k] = true
		for _, d := range deps[k] {
			walk(d)
		}
	}
	for _, r := range roots {
		walk(r)
	}
	return &Result{live: live}
}

// Prune removes every module-scope declaration Mark found unreachable
// from mod.Root.Statements, in place, returning the number removed.
// Non-declaration top-level statements (such as import statements) pass
// through untouched.
func Prune(mod *ast.Module, result *Result) int {
	kept := mod.Root.Statements[:0]
	removed := 0
	for _, s := range mod.Root.Statements {
		k, ok := declKey(s)
		if !ok || result.live[k] {
			kept = append(kept, s)
			continue
		}
		removed++
	}
	mod.Root.Statements = kept
	return removed
}

func declKey(s ast.Stmt) (key, bool) {
	switch d := s.(type) {
	case *ast.DeclareFunctionStmt:
		return key{ast.CatFunction, d.Ref.Index}, true
	case *ast.DeclareConstStmt:
		return key{ast.CatConstant, d.Ref.Index}, true
	case *ast.DeclareStructStmt:
		return key{ast.CatStruct, d.Ref.Index}, true
	case *ast.DeclareAliasStmt:
		return key{ast.CatAlias, d.Ref.Index}, true
	case *ast.DeclareOptionStmt:
		return key{ast.CatOption, d.Ref.Index}, true
	case *ast.DeclareVariableStmt:
		return key{ast.CatVariable, d.Ref.Index}, true
	case *ast.DeclareExternalStmt:
		return key{ast.CatExternal, d.BlockRef.Index}, true
	}
	return key{}, false
}

func entryPointRoots(mod *ast.Module) []key {
	var roots []key
	for _, s := range mod.Root.Statements {
		if fn, ok := s.(*ast.DeclareFunctionStmt); ok && fn.Entry != ast.StageNone {
			roots = append(roots, key{ast.CatFunction, fn.Ref.Index})
		}
	}
	return roots
}

// buildDependencyGraph maps each module-scope declaration to the other
// declarations its types, initializer, or body reference.
func buildDependencyGraph(mod *ast.Module) map[key][]key {
	deps := make(map[key][]key)
	for _, s := range mod.Root.Statements {
		k, ok := declKey(s)
		if !ok {
			continue
		}
		deps[k] = declDeps(s)
	}
	return deps
}

func declDeps(s ast.Stmt) []key {
	var out []key
	add := func(ks ...key) { out = append(out, ks...) }

	switch d := s.(type) {
	case *ast.DeclareFunctionStmt:
		for _, p := range d.Params {
			add(typeDeps(p.Type)...)
		}
		add(typeDeps(d.ReturnType)...)
		if d.Body != nil {
			add(exprDeps(d.Body)...)
		}
	case *ast.DeclareConstStmt:
		add(typeDeps(d.Type)...)
		add(exprDeps(d.Initializer)...)
	case *ast.DeclareVariableStmt:
		add(typeDeps(d.Type)...)
		add(exprDeps(d.Initializer)...)
	case *ast.DeclareStructStmt:
		for _, m := range d.Members {
			add(typeDeps(m.Type)...)
			add(exprDeps(m.Cond)...)
		}
	case *ast.DeclareAliasStmt:
		add(typeDeps(d.Value)...)
	case *ast.DeclareOptionStmt:
		add(typeDeps(d.Type)...)
		add(exprDeps(d.Default)...)
	case *ast.DeclareExternalStmt:
		for _, m := range d.Members {
			add(typeDeps(m.Type)...)
		}
	}
	return out
}

// typeDeps recurses through a resolved types.Type, collecting the
// struct/alias declarations it names (§3.3's closed Type sum).
func typeDeps(t types.Type) []key {
	if t == nil {
		return nil
	}
	switch tt := t.(type) {
	case *types.Struct:
		return []key{{ast.CatStruct, tt.Index}}
	case *types.Alias:
		return append([]key{{ast.CatAlias, tt.Index}}, typeDeps(tt.Target)...)
	case *types.Array:
		return typeDeps(tt.Element)
	case *types.DynArray:
		return typeDeps(tt.Element)
	case *types.Uniform:
		return []key{{ast.CatStruct, tt.StructIndex}}
	case *types.Storage:
		return []key{{ast.CatStruct, tt.StructIndex}}
	case *types.PushConstant:
		return []key{{ast.CatStruct, tt.StructIndex}}
	}
	return nil
}

// exprDeps walks a statement or expression subtree (function bodies
// and member `cond` expressions alike) collecting every symbol
// reference it contains, via internal/transform's shared Visitor.
func exprDeps(n any) []key {
	var refs []key
	collect := refCollector{refs: &refs}
	ctx := &transform.Context{}
	switch v := n.(type) {
	case *ast.MultiStmt:
		if v != nil {
			transform.WalkBlock(v, collect, ctx)
		}
	case ast.Expr:
		if v != nil {
			transform.WalkExpr(v, collect, ctx)
		}
	}
	return refs
}

type refCollector struct{ refs *[]key }

func (c refCollector) EnterStmt(s ast.Stmt, _ *transform.Context) transform.StmtResult {
	if d, ok := s.(*ast.DeclareVariableStmt); ok {
		*c.refs = append(*c.refs, typeDeps(d.Type)...)
	}
	return transform.StmtResult{Action: transform.VisitChildren}
}

func (c refCollector) EnterExpr(e ast.Expr, _ *transform.Context) transform.ExprResult {
	switch n := e.(type) {
	case *ast.FunctionRefExpr:
		*c.refs = append(*c.refs, key{ast.CatFunction, n.Function.Index})
	case *ast.ConstantRefExpr:
		*c.refs = append(*c.refs, key{ast.CatConstant, n.Constant.Index})
	case *ast.VariableValueExpr:
		*c.refs = append(*c.refs, key{ast.CatVariable, n.Variable.Index})
	case *ast.AliasValueExpr:
		*c.refs = append(*c.refs, key{ast.CatAlias, n.Alias.Index})
	case *ast.StructTypeRefExpr:
		*c.refs = append(*c.refs, key{ast.CatStruct, n.Struct.Index})
	case *ast.ModuleRefExpr:
		*c.refs = append(*c.refs, key{ast.CatModule, n.Module.Index})
	case *ast.NamedExternalBlockRefExpr:
		*c.refs = append(*c.refs, key{ast.CatExternal, n.External.Index})
	case *ast.IdentifierValueExpr:
		if n.Ref.IsValid() {
			*c.refs = append(*c.refs, key{n.Ref.Category, n.Ref.Index})
		}
	}
	return transform.ExprResult{Action: transform.VisitChildren}
}
