package ast

import (
	"testing"

	"github.com/nzslang/nzslc/internal/types"
)

func TestExpressionValueStates(t *testing.T) {
	var v ExpressionValue[uint32]
	if v.HasValue() {
		t.Fatal("zero-value ExpressionValue must be absent")
	}

	ident := &IdentifierExpr{Name: "binding_slot"}
	v = ExprValueOf[uint32](ident)
	if !v.HasValue() {
		t.Fatal("expression-backed ExpressionValue should report HasValue")
	}
	if v.IsResultingValue() {
		t.Fatal("expression-backed ExpressionValue should not be a resulting value yet")
	}
	if v.GetExpression() != ident {
		t.Fatal("GetExpression should return the wrapped expression")
	}

	v.SetValue(3)
	if !v.IsResultingValue() {
		t.Fatal("after SetValue, ExpressionValue must be a resulting value")
	}
	if v.GetResultingValue() != 3 {
		t.Fatalf("got %d want 3", v.GetResultingValue())
	}
	if v.GetExpression() != nil {
		t.Fatal("a resulting value must not retain its prior expression")
	}
}

func TestGetResultingValuePanicsWhenUnresolved(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic calling GetResultingValue on an unresolved ExpressionValue")
		}
	}()
	v := ExprValueOf[uint32](&IdentifierExpr{Name: "x"})
	_ = v.GetResultingValue()
}

func TestConstTypeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		c    Const
		want string
	}{
		{"bool", Const{Kind: KBool}, "bool"},
		{"f32", Const{Kind: KF32}, "f32"},
		{"int literal", Const{Kind: KIntLiteral}, "{integer}"},
		{"vec3 f32", Const{Kind: KVecF32_3}, "vec3[f32]"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.c.Type().String(); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestConstArrayTypeUsesElementType(t *testing.T) {
	arr := Const{Kind: KArray, Array: []Const{{Kind: KF32, F64: 1}, {Kind: KF32, F64: 2}}}
	typ, ok := arr.Type().(*types.Array)
	if !ok {
		t.Fatalf("expected *types.Array, got %T", arr.Type())
	}
	if typ.Length != 2 {
		t.Fatalf("got length %d want 2", typ.Length)
	}
	if !typ.Element.Equals(&types.Prim{Kind: types.F32}) {
		t.Fatalf("element type mismatch: %s", typ.Element)
	}
}

func TestRefValidity(t *testing.T) {
	if InvalidRef.IsValid() {
		t.Fatal("zero Ref must be invalid")
	}
	r := Ref{Category: CatFunction, Index: 0}
	if !r.IsValid() {
		t.Fatal("a Ref with a real category must be valid")
	}
}

func TestModuleIsLiveRespectsTableBounds(t *testing.T) {
	m := &Module{Functions: []Symbol{{Name: "main"}}}
	if !m.IsLive(Ref{Category: CatFunction, Index: 0}) {
		t.Fatal("index 0 should be live in a one-entry table")
	}
	if m.IsLive(Ref{Category: CatFunction, Index: 1}) {
		t.Fatal("index 1 should not be live in a one-entry table")
	}
	if m.IsLive(InvalidRef) {
		t.Fatal("the invalid ref should never be live")
	}
}

func TestPackUnpackVersion(t *testing.T) {
	packed := PackVersion(1, 2, 3)
	major, minor, patch := UnpackVersion(packed)
	if major != 1 || minor != 2 || patch != 3 {
		t.Fatalf("got %d.%d.%d want 1.2.3", major, minor, patch)
	}
}

func TestNodeKindsSatisfyInterfaces(t *testing.T) {
	var exprs = []Expr{
		&ConstantExpr{}, &IdentifierExpr{}, &AccessFieldExpr{}, &AccessIdentifierExpr{},
		&AccessIndexExpr{}, &AliasValueExpr{}, &AssignExpr{}, &BinaryExpr{}, &CallFunctionExpr{},
		&CallMethodExpr{}, &CastExpr{}, &ConditionalExpr{}, &ConstantRefExpr{}, &FunctionRefExpr{},
		&IdentifierValueExpr{}, &IntrinsicExpr{}, &IntrinsicFunctionRefExpr{}, &ModuleRefExpr{},
		&NamedExternalBlockRefExpr{}, &StructTypeRefExpr{}, &SwizzleExpr{}, &TypeRefExpr{}, &UnaryExpr{},
		&VariableValueExpr{},
	}
	for _, e := range exprs {
		if e == nil {
			t.Fatal("nil expression in table")
		}
	}

	var stmts = []Stmt{
		&BranchStmt{}, &BreakStmt{}, &ConditionalStmt{}, &ContinueStmt{}, &DeclareAliasStmt{},
		&DeclareConstStmt{}, &DeclareExternalStmt{}, &DeclareFunctionStmt{}, &DeclareOptionStmt{},
		&DeclareStructStmt{}, &DeclareVariableStmt{}, &DiscardStmt{}, &ExpressionStmt{}, &ForStmt{},
		&ForEachStmt{}, &ImportStmt{}, &MultiStmt{}, &NoOpStmt{}, &ReturnStmt{}, &ScopedStmt{}, &WhileStmt{},
	}
	for _, s := range stmts {
		if s == nil {
			t.Fatal("nil statement in table")
		}
	}
}

func TestExprCachedTypeSetAndGet(t *testing.T) {
	e := &IdentifierValueExpr{Name: "x"}
	if e.Type() != nil {
		t.Fatal("freshly constructed expression should have no cached type")
	}
	e.SetType(&types.Prim{Kind: types.F32})
	if !e.Type().Equals(&types.Prim{Kind: types.F32}) {
		t.Fatalf("got %s want f32", e.Type())
	}
}
