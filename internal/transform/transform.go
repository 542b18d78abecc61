// Package transform provides the generic tree-rewriting framework every
// later pass (identifier/type resolution, constant propagation,
// validation, dead-code elimination) builds on.
//
// Unlike the teacher's per-purpose walkers — dce.Mark, validator.Validate,
// printer.Print each hand-roll their own switch over ast.Decl/Stmt/Expr —
// every pass here implements the single Visitor interface
// and is driven by one Walk, so a cursor-based statement list walk (with
// splice/remove support) is written once instead of once per pass.
package transform

import (
	"github.com/nzslang/nzslc/internal/ast"
)

// Action is the verdict a visitor returns for one node.
type Action uint8

const (
	// VisitChildren descends into the node's children with the same visitor.
	VisitChildren Action = iota
	// DontVisitChildren skips the node's children; the visitor already
	// handled them (or deliberately chose not to recurse).
	DontVisitChildren
)

// StmtResult is what a statement visit produces: an action, and
// optionally a replacement or removal instruction for the containing list.
type StmtResult struct {
	Action  Action
	Replace ast.Stmt // non-nil: splice this in place of the visited statement
	Remove  bool     // true: delete the visited statement from its list
}

// ExprResult is what an expression visit produces.
type ExprResult struct {
	Action  Action
	Replace ast.Expr // non-nil: splice this in place of the visited expression
}

// Visitor is implemented by every tree-rewriting pass. EnterStmt/EnterExpr
// are called before children are visited (pre-order); a pass that needs
// post-order behavior (e.g. constant folding, which must fold children
// before folding their parent) calls back into Walk on the children
// itself and returns DontVisitChildren.
type Visitor interface {
	EnterStmt(s ast.Stmt, ctx *Context) StmtResult
	EnterExpr(e ast.Expr, ctx *Context) ExprResult
}

// Context carries state that is stable across one Walk but mutable pass
// to pass (the partial-compilation flag, for instance). It is reused
// across passes, matching §4.5's contract.
type Context struct {
	// PartialCompilation records that the walk runs under `--partial`
	// (internal/validate sets it from its own Options). No pass reads
	// it: a name the resolver could not bind is still reported as an
	// error.
	PartialCompilation bool

	// UserData lets a specific pass stash per-walk state (symbol tables,
	// scope stacks) without widening this struct for every pass.
	UserData any
}

// Walk runs v over every top-level statement of root's Root block,
// in place. Statement lists are rebuilt as they are walked, so a
// StmtResult's Remove drops a statement without skipping the next one
// and its Replace puts the replacement in the statement's slot. The
// replacement itself is not visited: under VisitChildren, the children
// walked are those of the original statement.
func Walk(root *ast.Module, v Visitor, ctx *Context) {
	WalkBlock(root.Root, v, ctx)
}

// WalkBlock rewrites m.Statements in place.
func WalkBlock(m *ast.MultiStmt, v Visitor, ctx *Context) {
	if m == nil {
		return
	}
	out := m.Statements[:0]
	for _, s := range m.Statements {
		if s == nil {
			continue
		}
		res := WalkStmt(s, v, ctx)
		if res.Remove {
			continue
		}
		if res.Replace != nil {
			out = append(out, res.Replace)
			continue
		}
		out = append(out, s)
	}
	m.Statements = out
}

// WalkStmt visits s, recursing into its children per the visitor's
// verdict, and returns the splice/remove instruction for s's container.
func WalkStmt(s ast.Stmt, v Visitor, ctx *Context) StmtResult {
	res := v.EnterStmt(s, ctx)
	if res.Action == DontVisitChildren {
		return res
	}
	walkStmtChildren(s, v, ctx)
	return res
}

// walkStmtChildren descends into one statement's nested statement lists
// and expressions. Each node kind names its own children explicitly —
// there is no reflection-driven generic descent, matching the teacher's
// preference for exhaustive type switches over reflection everywhere
// else in the pack.
func walkStmtChildren(s ast.Stmt, v Visitor, ctx *Context) {
	switch n := s.(type) {
	case *ast.MultiStmt:
		WalkBlock(n, v, ctx)
	case *ast.ScopedStmt:
		WalkBlock(n.Body, v, ctx)
	case *ast.BranchStmt:
		for i := range n.Cases {
			n.Cases[i].Condition = WalkExprReplace(n.Cases[i].Condition, v, ctx)
			WalkBlock(n.Cases[i].Body, v, ctx)
		}
		if n.Else != nil {
			WalkBlock(n.Else, v, ctx)
		}
	case *ast.ConditionalStmt:
		n.Condition = WalkExprReplace(n.Condition, v, ctx)
		if n.Then != nil {
			n.Then = WalkStmtReplace(n.Then, v, ctx)
		}
		if n.Else != nil {
			n.Else = WalkStmtReplace(n.Else, v, ctx)
		}
	case *ast.WhileStmt:
		n.Condition = WalkExprReplace(n.Condition, v, ctx)
		WalkBlock(n.Body, v, ctx)
	case *ast.ForStmt:
		n.From = WalkExprReplace(n.From, v, ctx)
		n.To = WalkExprReplace(n.To, v, ctx)
		if n.Step != nil {
			n.Step = WalkExprReplace(n.Step, v, ctx)
		}
		WalkBlock(n.Body, v, ctx)
	case *ast.ForEachStmt:
		n.Container = WalkExprReplace(n.Container, v, ctx)
		WalkBlock(n.Body, v, ctx)
	case *ast.DeclareConstStmt:
		n.Initializer = WalkExprReplace(n.Initializer, v, ctx)
	case *ast.DeclareVariableStmt:
		if n.Initializer != nil {
			n.Initializer = WalkExprReplace(n.Initializer, v, ctx)
		}
	case *ast.DeclareOptionStmt:
		if n.Default != nil {
			n.Default = WalkExprReplace(n.Default, v, ctx)
		}
	case *ast.DeclareFunctionStmt:
		if n.Body != nil {
			WalkBlock(n.Body, v, ctx)
		}
	case *ast.DeclareStructStmt:
		for i := range n.Members {
			if n.Members[i].Cond != nil {
				n.Members[i].Cond = WalkExprReplace(n.Members[i].Cond, v, ctx)
			}
		}
	case *ast.ExpressionStmt:
		n.Expr = WalkExprReplace(n.Expr, v, ctx)
	case *ast.ReturnStmt:
		if n.Value != nil {
			n.Value = WalkExprReplace(n.Value, v, ctx)
		}
	// BreakStmt, ContinueStmt, DiscardStmt, NoOpStmt, DeclareAliasStmt,
	// DeclareExternalStmt, ImportStmt carry no nested statements or
	// expressions that this framework needs to visit.
	}
}

// WalkStmtReplace visits s and returns whatever statement should occupy
// its slot afterward (s itself, unless the visitor replaced or removed
// it — a removal is represented by a NoOpStmt since a single-statement
// slot, unlike a list, can't simply vanish).
func WalkStmtReplace(s ast.Stmt, v Visitor, ctx *Context) ast.Stmt {
	res := WalkStmt(s, v, ctx)
	if res.Remove {
		return &ast.NoOpStmt{StmtBase: ast.StmtAt(s.Location())}
	}
	if res.Replace != nil {
		return res.Replace
	}
	return s
}

// WalkExpr visits e, recursing into its children per the visitor's
// verdict, and returns the splice instruction for e's container.
func WalkExpr(e ast.Expr, v Visitor, ctx *Context) ExprResult {
	if e == nil {
		return ExprResult{}
	}
	res := v.EnterExpr(e, ctx)
	if res.Action == DontVisitChildren {
		return res
	}
	walkExprChildren(e, v, ctx)
	return res
}

// WalkExprReplace visits e and returns whatever expression should occupy
// its slot afterward.
func WalkExprReplace(e ast.Expr, v Visitor, ctx *Context) ast.Expr {
	if e == nil {
		return nil
	}
	res := WalkExpr(e, v, ctx)
	if res.Replace != nil {
		return res.Replace
	}
	return e
}

func walkExprChildren(e ast.Expr, v Visitor, ctx *Context) {
	switch n := e.(type) {
	case *ast.AccessFieldExpr:
		n.Object = WalkExprReplace(n.Object, v, ctx)
	case *ast.AccessIdentifierExpr:
		n.Object = WalkExprReplace(n.Object, v, ctx)
	case *ast.AccessIndexExpr:
		n.Object = WalkExprReplace(n.Object, v, ctx)
		n.Index = WalkExprReplace(n.Index, v, ctx)
	case *ast.AssignExpr:
		n.Left = WalkExprReplace(n.Left, v, ctx)
		n.Right = WalkExprReplace(n.Right, v, ctx)
	case *ast.BinaryExpr:
		n.Left = WalkExprReplace(n.Left, v, ctx)
		n.Right = WalkExprReplace(n.Right, v, ctx)
	case *ast.CallFunctionExpr:
		n.Callee = WalkExprReplace(n.Callee, v, ctx)
		for i := range n.Args {
			n.Args[i] = WalkExprReplace(n.Args[i], v, ctx)
		}
	case *ast.CallMethodExpr:
		n.Object = WalkExprReplace(n.Object, v, ctx)
		for i := range n.Args {
			n.Args[i] = WalkExprReplace(n.Args[i], v, ctx)
		}
	case *ast.CastExpr:
		for i := range n.Args {
			n.Args[i] = WalkExprReplace(n.Args[i], v, ctx)
		}
	case *ast.ConditionalExpr:
		n.Condition = WalkExprReplace(n.Condition, v, ctx)
		n.WhenTrue = WalkExprReplace(n.WhenTrue, v, ctx)
		n.WhenFalse = WalkExprReplace(n.WhenFalse, v, ctx)
	case *ast.IntrinsicExpr:
		for i := range n.Args {
			n.Args[i] = WalkExprReplace(n.Args[i], v, ctx)
		}
	case *ast.SwizzleExpr:
		n.Object = WalkExprReplace(n.Object, v, ctx)
	case *ast.UnaryExpr:
		n.Operand = WalkExprReplace(n.Operand, v, ctx)
	// ConstantExpr, IdentifierExpr, AliasValueExpr, ConstantRefExpr,
	// FunctionRefExpr, IdentifierValueExpr, IntrinsicFunctionRefExpr,
	// ModuleRefExpr, NamedExternalBlockRefExpr, StructTypeRefExpr,
	// TypeRefExpr, VariableValueExpr are leaves.
	}
}
