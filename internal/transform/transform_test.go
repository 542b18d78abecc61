package transform

import (
	"testing"

	"github.com/nzslang/nzslc/internal/ast"
)

// countingVisitor counts how many statements/expressions it enters.
type countingVisitor struct {
	stmts, exprs int
}

func (v *countingVisitor) EnterStmt(s ast.Stmt, ctx *Context) StmtResult {
	v.stmts++
	return StmtResult{Action: VisitChildren}
}

func (v *countingVisitor) EnterExpr(e ast.Expr, ctx *Context) ExprResult {
	v.exprs++
	return ExprResult{Action: VisitChildren}
}

func TestWalkVisitsNestedStatementsAndExpressions(t *testing.T) {
	mod := &ast.Module{Root: &ast.MultiStmt{Statements: []ast.Stmt{
		&ast.DeclareConstStmt{
			Name: "x",
			Initializer: &ast.BinaryExpr{
				Op:    ast.BinAdd,
				Left:  &ast.ConstantExpr{Value: ast.Const{Kind: ast.KIntLiteral, I64: 1}},
				Right: &ast.ConstantExpr{Value: ast.Const{Kind: ast.KIntLiteral, I64: 2}},
			},
		},
		&ast.WhileStmt{
			Condition: &ast.ConstantExpr{Value: ast.Const{Kind: ast.KBool, Bool: true}},
			Body: &ast.MultiStmt{Statements: []ast.Stmt{
				&ast.BreakStmt{},
			}},
		},
	}}}

	v := &countingVisitor{}
	Walk(mod, v, &Context{})

	// stmts: DeclareConstStmt, WhileStmt, BreakStmt = 3
	if v.stmts != 3 {
		t.Fatalf("got %d statement visits want 3", v.stmts)
	}
	// exprs: BinaryExpr, its two literals, the while condition = 4
	if v.exprs != 4 {
		t.Fatalf("got %d expression visits want 4", v.exprs)
	}
}

// removeBreaks is a test visitor that deletes every BreakStmt it sees.
type removeBreaks struct{}

func (removeBreaks) EnterStmt(s ast.Stmt, ctx *Context) StmtResult {
	if _, ok := s.(*ast.BreakStmt); ok {
		return StmtResult{Remove: true}
	}
	return StmtResult{Action: VisitChildren}
}

func (removeBreaks) EnterExpr(e ast.Expr, ctx *Context) ExprResult {
	return ExprResult{Action: VisitChildren}
}

func TestRemoveStatementSplicesOutOfList(t *testing.T) {
	body := &ast.MultiStmt{Statements: []ast.Stmt{
		&ast.BreakStmt{},
		&ast.ContinueStmt{},
		&ast.BreakStmt{},
	}}
	WalkBlock(body, removeBreaks{}, &Context{})
	if len(body.Statements) != 1 {
		t.Fatalf("got %d statements want 1 after removing both breaks", len(body.Statements))
	}
	if _, ok := body.Statements[0].(*ast.ContinueStmt); !ok {
		t.Fatalf("got %T want the surviving ContinueStmt", body.Statements[0])
	}
}

// replaceLiteralsWithZero rewrites every int-literal constant expression to 0.
type replaceLiteralsWithZero struct{ replaced int }

func (replaceLiteralsWithZero) EnterStmt(s ast.Stmt, ctx *Context) StmtResult {
	return StmtResult{Action: VisitChildren}
}

func (r *replaceLiteralsWithZero) EnterExpr(e ast.Expr, ctx *Context) ExprResult {
	if c, ok := e.(*ast.ConstantExpr); ok && c.Value.Kind == ast.KIntLiteral && c.Value.I64 != 0 {
		r.replaced++
		return ExprResult{Replace: &ast.ConstantExpr{Value: ast.Const{Kind: ast.KIntLiteral, I64: 0}}}
	}
	return ExprResult{Action: VisitChildren}
}

func TestReplaceExpressionSplicesIntoParent(t *testing.T) {
	decl := &ast.DeclareConstStmt{
		Name: "x",
		Initializer: &ast.BinaryExpr{
			Op:    ast.BinAdd,
			Left:  &ast.ConstantExpr{Value: ast.Const{Kind: ast.KIntLiteral, I64: 7}},
			Right: &ast.ConstantExpr{Value: ast.Const{Kind: ast.KIntLiteral, I64: 9}},
		},
	}
	mod := &ast.Module{Root: &ast.MultiStmt{Statements: []ast.Stmt{decl}}}

	v := &replaceLiteralsWithZero{}
	Walk(mod, v, &Context{})

	if v.replaced != 2 {
		t.Fatalf("got %d replacements want 2", v.replaced)
	}
	bin := decl.Initializer.(*ast.BinaryExpr)
	left := bin.Left.(*ast.ConstantExpr)
	right := bin.Right.(*ast.ConstantExpr)
	if left.Value.I64 != 0 || right.Value.I64 != 0 {
		t.Fatalf("got left=%d right=%d want both 0", left.Value.I64, right.Value.I64)
	}
}

func TestDontVisitChildrenSkipsDescent(t *testing.T) {
	mod := &ast.Module{Root: &ast.MultiStmt{Statements: []ast.Stmt{
		&ast.BranchStmt{Cases: []ast.BranchCase{
			{Condition: &ast.ConstantExpr{Value: ast.Const{Kind: ast.KBool, Bool: true}},
				Body: &ast.MultiStmt{Statements: []ast.Stmt{&ast.BreakStmt{}}}},
		}},
	}}}
	// A visitor that stops descent at the BranchStmt itself should not
	// error or panic walking past it, even though it never visits the
	// nested case body or condition.
	Walk(mod, stopAtBranch{}, &Context{})
	if len(mod.Root.Statements) != 1 {
		t.Fatalf("got %d top-level statements want 1 (branch kept, untouched)", len(mod.Root.Statements))
	}
}

type stopAtBranch struct{}

func (stopAtBranch) EnterStmt(s ast.Stmt, ctx *Context) StmtResult {
	if _, ok := s.(*ast.BranchStmt); ok {
		return StmtResult{Action: DontVisitChildren}
	}
	return StmtResult{Action: VisitChildren}
}

func (stopAtBranch) EnterExpr(e ast.Expr, ctx *Context) ExprResult {
	return ExprResult{Action: VisitChildren}
}
