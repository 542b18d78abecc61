// Package validate implements NZSL's semantic validator (§4.8, C8).
//
// Unlike internal/sema, Validate never runs against raw source — it
// runs against an already-resolved *ast.Module, and it is written to be
// self-sufficient: a module that reached this pass by deserializing a
// .nzslb file (internal/serial) rather than by going through
// internal/sema at all still gets every check run against it. So
// nothing here assumes a particular earlier pass already caught a
// given mistake.
//
// Grounded on NazaraEngine/ShaderLang's ValidationTransformer
// (original_source/src/NZSL/Ast/Transformations/ValidationTransformer.cpp,
// in particular its per-function usedBuiltins/compatibleStages check and
// its struct-member builtin type check), adapted into the teacher's
// internal/validate_old/validator.go Options/Result envelope and onto
// internal/transform's shared Visitor framework the way constfold
// builds on it.
package validate

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/nzslang/nzslc/internal/ast"
	"github.com/nzslang/nzslc/internal/builtins"
	"github.com/nzslang/nzslc/internal/diagnostic"
	"github.com/nzslang/nzslc/internal/lexer"
	"github.com/nzslang/nzslc/internal/transform"
	"github.com/nzslang/nzslc/internal/types"
)

// Options controls validation behavior (§6.1 `-p`/`--partial`).
type Options struct {
	// PartialCompilation downgrades the call-argument-type and
	// intrinsic-signature checks from hard errors to warnings (§7
	// POLICY). It applies to every such violation, not only to those
	// involving a type the resolver could not pin down.
	PartialCompilation bool
}

// Result is the outcome of one Validate call.
type Result struct {
	Valid       bool
	Diagnostics *diagnostic.List
}

// Code identifies one ValidationError variant (§7).
type Code string

const (
	CodeIndexIntegrity     Code = "index-integrity"
	CodeLoopControl        Code = "loop-control-outside-loop"
	CodeDiscardStage       Code = "discard-outside-fragment"
	CodeReturnShape        Code = "return-shape"
	CodeCallArity          Code = "call-arity-mismatch"
	CodeCallType           Code = "call-type-mismatch"
	CodeCallSemantic       Code = "call-semantic-mismatch"
	CodeEntryNotCallable   Code = "entry-point-called-directly"
	CodeEntryWorkgroup     Code = "entry-missing-workgroup"
	CodeEntryStageAttr     Code = "entry-attribute-wrong-stage"
	CodeBuiltinUnknown     Code = "builtin-unknown"
	CodeBuiltinStage       Code = "builtin-unsupported-stage"
	CodeBuiltinType        Code = "builtin-unexpected-type"
	CodeMultiPushConstant  Code = "multiple-push-constants"
	CodePushConstantBound  Code = "push-constant-has-binding"
	CodeExternalBinding    Code = "external-missing-binding"
	CodeStructExpected     Code = "struct-expected"
	CodeCondNotBool        Code = "cond-not-bool"
	CodeIntrinsicSignature Code = "intrinsic-signature-violation"
)

// stage bit positions into a BuiltinData.Stages bitset (§4.8 "built-in
// members ... legal for that stage").
const (
	bitVertex uint = iota
	bitFragment
	bitCompute
)

// BuiltinData is one entry of the builtin-name table: the type a
// builtin-tagged struct member must carry, and the stages it may
// legally appear in (ValidationTransformer.cpp's s_builtinData).
type BuiltinData struct {
	Type   types.Type
	Stages *bitset.BitSet
}

func stages(bits ...uint) *bitset.BitSet {
	b := bitset.New(3)
	for _, i := range bits {
		b.Set(i)
	}
	return b
}

var builtinTable = map[string]BuiltinData{
	"position":               {Type: &types.Vector{ComponentCount: 4, Primitive: types.F32}, Stages: stages(bitVertex, bitFragment)},
	"vertex_index":           {Type: &types.Prim{Kind: types.U32}, Stages: stages(bitVertex)},
	"instance_index":         {Type: &types.Prim{Kind: types.U32}, Stages: stages(bitVertex)},
	"frag_coord":             {Type: &types.Vector{ComponentCount: 4, Primitive: types.F32}, Stages: stages(bitFragment)},
	"frag_depth":             {Type: &types.Prim{Kind: types.F32}, Stages: stages(bitFragment)},
	"front_facing":           {Type: &types.Prim{Kind: types.Bool}, Stages: stages(bitFragment)},
	"local_invocation_index": {Type: &types.Prim{Kind: types.U32}, Stages: stages(bitCompute)},
	"local_invocation_id":    {Type: &types.Vector{ComponentCount: 3, Primitive: types.U32}, Stages: stages(bitCompute)},
	"global_invocation_id":   {Type: &types.Vector{ComponentCount: 3, Primitive: types.U32}, Stages: stages(bitCompute)},
	"num_workgroups":         {Type: &types.Vector{ComponentCount: 3, Primitive: types.U32}, Stages: stages(bitCompute)},
}

func stageBit(stage ast.EntryStage) (uint, bool) {
	switch stage {
	case ast.StageVertex:
		return bitVertex, true
	case ast.StageFragment:
		return bitFragment, true
	case ast.StageCompute:
		return bitCompute, true
	default:
		return 0, false
	}
}

// intrinsicArg is one positional-argument domain predicate for an
// intrinsic's signature (§4.8's FVal/FValVec/SameType family, scoped to
// the predicates internal/builtins' argument-less table can't already
// express: arity is checked by internal/sema/resolve_expr.go itself).
type intrinsicArg uint8

const (
	argFValVec     intrinsicArg = iota // float scalar or float vector
	argSameAsFirst                     // resolved type equal to argument 0
	argArrayLike                       // array or dyn_array
)

var intrinsicRules = map[builtins.ID][]intrinsicArg{
	builtins.IDAbs:          {argFValVec},
	builtins.IDMin:          {argFValVec, argSameAsFirst},
	builtins.IDMax:          {argFValVec, argSameAsFirst},
	builtins.IDClamp:        {argFValVec, argSameAsFirst, argSameAsFirst},
	builtins.IDMix:          {argFValVec, argSameAsFirst},
	builtins.IDStep:         {argFValVec, argSameAsFirst},
	builtins.IDSmoothstep:   {argFValVec, argSameAsFirst, argSameAsFirst},
	builtins.IDPow:          {argFValVec, argSameAsFirst},
	builtins.IDSqrt:         {argFValVec},
	builtins.IDInverseSqrt:  {argFValVec},
	builtins.IDFloor:        {argFValVec},
	builtins.IDCeil:         {argFValVec},
	builtins.IDFract:        {argFValVec},
	builtins.IDSin:          {argFValVec},
	builtins.IDCos:          {argFValVec},
	builtins.IDTan:          {argFValVec},
	builtins.IDExp:          {argFValVec},
	builtins.IDLog:          {argFValVec},
	builtins.IDExp2:         {argFValVec},
	builtins.IDLog2:         {argFValVec},
	builtins.IDDot:          {argFValVec, argSameAsFirst},
	builtins.IDCross:        {argFValVec, argSameAsFirst},
	builtins.IDNormalize:    {argFValVec},
	builtins.IDLength:       {argFValVec},
	builtins.IDDistance:     {argFValVec, argSameAsFirst},
	builtins.IDReflect:      {argFValVec, argSameAsFirst},
	builtins.IDRefract:      {argFValVec, argSameAsFirst},
	builtins.IDSign:         {argFValVec},
	builtins.IDArraySize:    {argArrayLike},
}

func isFloatScalarOrVector(t types.Type) bool {
	switch tt := types.ResolveAlias(t).(type) {
	case *types.Prim:
		return tt.Kind == types.F32 || tt.Kind == types.F64 || tt.Kind == types.FloatLiteral
	case *types.Vector:
		return tt.Primitive == types.F32 || tt.Primitive == types.F64
	}
	return false
}

func isArrayLike(t types.Type) bool {
	switch types.ResolveAlias(t).(type) {
	case *types.Array, *types.DynArray:
		return true
	}
	return false
}

// validator carries state for one Validate call.
type validator struct {
	mod     *ast.Module
	diags   *diagnostic.List
	options Options

	funcs  map[uint32]*ast.DeclareFunctionStmt
	graph  map[uint32][]uint32
	fragmentReachable map[uint32]bool

	currentFunc *ast.DeclareFunctionStmt
	loopDepth   int
}

// Validate runs every §4.8 check over mod and returns the combined
// diagnostics. mod is expected to already carry resolved types (either
// from internal/sema or from a deserialized module).
func Validate(mod *ast.Module, options Options) *Result {
	v := &validator{
		mod:     mod,
		diags:   diagnostic.NewList(""),
		options: options,
		funcs:   make(map[uint32]*ast.DeclareFunctionStmt),
	}
	for _, s := range mod.Root.Statements {
		if fn, ok := s.(*ast.DeclareFunctionStmt); ok {
			v.funcs[fn.Ref.Index] = fn
		}
	}
	v.graph = v.buildCallGraph()
	v.fragmentReachable = v.computeFragmentReachability()

	ctx := &transform.Context{PartialCompilation: options.PartialCompilation}
	transform.Walk(mod, indexChecker{v: v}, ctx)

	v.checkExternals()
	v.checkStructs()

	for _, s := range mod.Root.Statements {
		fn, ok := s.(*ast.DeclareFunctionStmt)
		if !ok {
			continue
		}
		v.checkEntryPoint(fn)
		v.currentFunc = fn
		v.loopDepth = 0
		transform.WalkBlock(fn.Body, bodyChecker{v: v}, ctx)
	}

	return &Result{Valid: !v.diags.HasErrors(), Diagnostics: v.diags}
}

func (v *validator) errorf(code Code, loc lexer.SourceLocation, format string, args ...any) {
	v.diags.Errorf(diagnostic.FamilyValidation, loc, string(code), format, args...)
}

// deferrable reports code as an error, or as a warning under --partial
// (§7 POLICY). The choice depends only on that option, not on whether
// the violation involves an unresolved type.
func (v *validator) deferrable(code Code, loc lexer.SourceLocation, format string, args ...any) {
	if v.options.PartialCompilation {
		v.diags.Warnf(diagnostic.FamilyValidation, loc, string(code), format, args...)
		return
	}
	v.errorf(code, loc, format, args...)
}

// ----------------------------------------------------------------------------
// Index integrity
// ----------------------------------------------------------------------------

type indexChecker struct{ v *validator }

func (c indexChecker) EnterStmt(ast.Stmt, *transform.Context) transform.StmtResult {
	return transform.StmtResult{Action: transform.VisitChildren}
}

func (c indexChecker) EnterExpr(e ast.Expr, _ *transform.Context) transform.ExprResult {
	switch n := e.(type) {
	case *ast.FunctionRefExpr:
		c.v.checkRef(ast.CatFunction, n.Function, n.Location())
	case *ast.ConstantRefExpr:
		c.v.checkRef(ast.CatConstant, n.Constant, n.Location())
	case *ast.VariableValueExpr:
		c.v.checkRef(ast.CatVariable, n.Variable, n.Location())
	case *ast.AliasValueExpr:
		c.v.checkRef(ast.CatAlias, n.Alias, n.Location())
	case *ast.StructTypeRefExpr:
		c.v.checkRef(ast.CatStruct, n.Struct, n.Location())
	case *ast.ModuleRefExpr:
		c.v.checkRef(ast.CatModule, n.Module, n.Location())
	case *ast.NamedExternalBlockRefExpr:
		c.v.checkRef(ast.CatExternal, n.External, n.Location())
	case *ast.IdentifierValueExpr:
		if n.Ref.IsValid() {
			c.v.checkRef(n.Ref.Category, n.Ref, n.Location())
		}
	}
	return transform.ExprResult{Action: transform.VisitChildren}
}

func (v *validator) checkRef(cat ast.SymbolCategory, ref ast.Ref, loc lexer.SourceLocation) {
	table := v.mod.SymbolTable(cat)
	if int(ref.Index) >= len(table) {
		v.errorf(CodeIndexIntegrity, loc, "index %d does not name a live entry (table has %d)", ref.Index, len(table))
	}
}

// ----------------------------------------------------------------------------
// Call graph (shared by discard-stage and builtin-stage checks)
// ----------------------------------------------------------------------------

type callCollector struct{ calls *[]uint32 }

func (c callCollector) EnterStmt(ast.Stmt, *transform.Context) transform.StmtResult {
	return transform.StmtResult{Action: transform.VisitChildren}
}

func (c callCollector) EnterExpr(e ast.Expr, _ *transform.Context) transform.ExprResult {
	if call, ok := e.(*ast.CallFunctionExpr); ok {
		if ref, ok := call.Callee.(*ast.FunctionRefExpr); ok {
			*c.calls = append(*c.calls, ref.Function.Index)
		}
	}
	return transform.ExprResult{Action: transform.VisitChildren}
}

func (v *validator) buildCallGraph() map[uint32][]uint32 {
	graph := make(map[uint32][]uint32, len(v.funcs))
	ctx := &transform.Context{}
	for idx, fn := range v.funcs {
		var calls []uint32
		body := &ast.MultiStmt{Statements: append([]ast.Stmt(nil), fn.Body.Statements...)}
		transform.WalkBlock(body, callCollector{calls: &calls}, ctx)
		graph[idx] = calls
	}
	return graph
}

func reachableSet(graph map[uint32][]uint32, start uint32) map[uint32]bool {
	seen := map[uint32]bool{start: true}
	queue := []uint32{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range graph[cur] {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return seen
}

func (v *validator) computeFragmentReachability() map[uint32]bool {
	result := make(map[uint32]bool)
	for idx, fn := range v.funcs {
		if fn.Entry != ast.StageFragment {
			continue
		}
		for r := range reachableSet(v.graph, idx) {
			result[r] = true
		}
	}
	return result
}

// ----------------------------------------------------------------------------
// Entry points (§4.8 "Entry points")
// ----------------------------------------------------------------------------

func (v *validator) checkEntryPoint(fn *ast.DeclareFunctionStmt) {
	if fn.Entry == ast.StageNone {
		if fn.EarlyFragmentTests || fn.DepthWrite {
			v.errorf(CodeEntryStageAttr, fn.Location(), "function %q: early_fragment_tests/depth_write require a fragment entry", fn.Name)
		}
		return
	}

	for _, p := range fn.Params {
		if _, ok := types.ResolveAlias(p.Type).(*types.Struct); !ok {
			v.errorf(CodeStructExpected, fn.Location(), "entry %q: parameter %q must be a struct type for I/O linkage", fn.Name, p.Name)
		}
	}
	if _, isNone := fn.ReturnType.(*types.None); !isNone && fn.ReturnType != nil {
		if _, ok := types.ResolveAlias(fn.ReturnType).(*types.Struct); !ok {
			v.errorf(CodeStructExpected, fn.Location(), "entry %q: return type must be a struct type for I/O linkage", fn.Name)
		}
	}

	if fn.Entry == ast.StageCompute {
		for i := range fn.Workgroup {
			if !fn.Workgroup[i].HasValue() {
				v.errorf(CodeEntryWorkgroup, fn.Location(), "compute entry %q requires a workgroup(x, y, z) attribute", fn.Name)
				break
			}
		}
	}
	if (fn.EarlyFragmentTests || fn.DepthWrite) && fn.Entry != ast.StageFragment {
		v.errorf(CodeEntryStageAttr, fn.Location(), "function %q: early_fragment_tests/depth_write require a fragment entry", fn.Name)
	}

	bit, ok := stageBit(fn.Entry)
	if !ok {
		return
	}
	for reached := range reachableSet(v.graph, fn.Ref.Index) {
		callee, ok := v.funcs[reached]
		if !ok {
			continue
		}
		v.checkBuiltinsForStage(callee, fn.Entry, bit)
	}
}

func (v *validator) checkBuiltinsForStage(fn *ast.DeclareFunctionStmt, stage ast.EntryStage, bit uint) {
	check := func(member ast.DeclareStructMember) {
		if member.Builtin == "" {
			return
		}
		data, ok := builtinTable[member.Builtin]
		if !ok {
			v.errorf(CodeBuiltinUnknown, member.Loc, "unknown builtin %q", member.Builtin)
			return
		}
		if !data.Stages.Test(bit) {
			v.errorf(CodeBuiltinStage, member.Loc, "builtin %q is not legal in a %s entry", member.Builtin, stage)
		}
	}
	for _, p := range fn.Params {
		if st, ok := types.ResolveAlias(p.Type).(*types.Struct); ok {
			v.forEachMember(st, check)
		}
	}
	if st, ok := types.ResolveAlias(fn.ReturnType).(*types.Struct); ok {
		v.forEachMember(st, check)
	}
}

func (v *validator) forEachMember(st *types.Struct, f func(ast.DeclareStructMember)) {
	for _, s := range v.mod.Root.Statements {
		decl, ok := s.(*ast.DeclareStructStmt)
		if !ok || decl.Ref.Index != st.Index {
			continue
		}
		for _, m := range decl.Members {
			f(m)
		}
		return
	}
}

// ----------------------------------------------------------------------------
// Externals (§4.8 "Externals")
// ----------------------------------------------------------------------------

func (v *validator) checkExternals() {
	pushConstants := 0
	for _, s := range v.mod.Root.Statements {
		d, ok := s.(*ast.DeclareExternalStmt)
		if !ok {
			continue
		}
		for _, m := range d.Members {
			if _, isPush := types.ResolveAlias(m.Type).(*types.PushConstant); isPush {
				pushConstants++
				if m.Binding.HasValue() {
					v.errorf(CodePushConstantBound, m.Loc, "push-constant external %q may not carry a binding", m.Name)
				}
				continue
			}
			if !m.AutoBinding && !m.Binding.HasValue() {
				v.errorf(CodeExternalBinding, m.Loc, "external %q requires a binding (or auto_binding)", m.Name)
			}
		}
	}
	if pushConstants > 1 {
		v.errorf(CodeMultiPushConstant, v.mod.Root.Location(), "module declares %d push-constant externals, at most one is allowed", pushConstants)
	}
}

// ----------------------------------------------------------------------------
// Structs (§4.8 "Struct members")
// ----------------------------------------------------------------------------

func (v *validator) checkStructs() {
	for _, s := range v.mod.Root.Statements {
		d, ok := s.(*ast.DeclareStructStmt)
		if !ok {
			continue
		}
		for _, m := range d.Members {
			if m.Builtin != "" {
				data, ok := builtinTable[m.Builtin]
				if !ok {
					v.errorf(CodeBuiltinUnknown, m.Loc, "unknown builtin %q on member %q", m.Builtin, m.Name)
				} else if !types.ResolveAlias(m.Type).Equals(types.ResolveAlias(data.Type)) {
					v.errorf(CodeBuiltinType, m.Loc, "member %q tagged builtin %q must have type %s, has %s", m.Name, m.Builtin, data.Type, m.Type)
				}
			}
			if m.Cond != nil {
				if p, ok := types.ResolveAlias(m.Cond.Type()).(*types.Prim); !ok || p.Kind != types.Bool {
					v.errorf(CodeCondNotBool, m.Loc, "member %q's cond must be a bool expression", m.Name)
				}
			}
		}
	}
}

// ----------------------------------------------------------------------------
// Function bodies: control flow, calls, intrinsics (§4.8)
// ----------------------------------------------------------------------------

type bodyChecker struct{ v *validator }

func (c bodyChecker) EnterStmt(s ast.Stmt, ctx *transform.Context) transform.StmtResult {
	v := c.v
	switch n := s.(type) {
	case *ast.WhileStmt:
		v.loopDepth++
		n.Condition = transform.WalkExprReplace(n.Condition, c, ctx)
		transform.WalkBlock(n.Body, c, ctx)
		v.loopDepth--
		return transform.StmtResult{Action: transform.DontVisitChildren}
	case *ast.ForStmt:
		v.loopDepth++
		transform.WalkBlock(n.Body, c, ctx)
		v.loopDepth--
		return transform.StmtResult{Action: transform.DontVisitChildren}
	case *ast.ForEachStmt:
		v.loopDepth++
		transform.WalkBlock(n.Body, c, ctx)
		v.loopDepth--
		return transform.StmtResult{Action: transform.DontVisitChildren}
	case *ast.BreakStmt:
		if v.loopDepth == 0 {
			v.errorf(CodeLoopControl, n.Location(), "break outside a loop")
		}
	case *ast.ContinueStmt:
		if v.loopDepth == 0 {
			v.errorf(CodeLoopControl, n.Location(), "continue outside a loop")
		}
	case *ast.DiscardStmt:
		if v.currentFunc == nil || !v.fragmentReachable[v.currentFunc.Ref.Index] {
			v.errorf(CodeDiscardStage, n.Location(), "discard outside a function reachable from a fragment entry")
		}
	case *ast.ReturnStmt:
		v.checkReturnShape(n)
	}
	return transform.StmtResult{Action: transform.VisitChildren}
}

func (v *validator) checkReturnShape(n *ast.ReturnStmt) {
	if v.currentFunc == nil {
		v.errorf(CodeReturnShape, n.Location(), "return outside a function")
		return
	}
	_, wantsNone := v.currentFunc.ReturnType.(*types.None)
	wantsValue := v.currentFunc.ReturnType != nil && !wantsNone
	hasValue := n.Value != nil
	if hasValue != wantsValue {
		v.errorf(CodeReturnShape, n.Location(), "function %q: return value shape does not match declared return type", v.currentFunc.Name)
	}
}

func (c bodyChecker) EnterExpr(e ast.Expr, _ *transform.Context) transform.ExprResult {
	v := c.v
	switch n := e.(type) {
	case *ast.CallFunctionExpr:
		v.checkCall(n)
	case *ast.IntrinsicExpr:
		v.checkIntrinsic(n)
	}
	return transform.ExprResult{Action: transform.VisitChildren}
}

func (v *validator) checkCall(n *ast.CallFunctionExpr) {
	ref, ok := n.Callee.(*ast.FunctionRefExpr)
	if !ok {
		return
	}
	decl, ok := v.funcs[ref.Function.Index]
	if !ok {
		return
	}
	if decl.Entry != ast.StageNone {
		v.errorf(CodeEntryNotCallable, n.Location(), "entry point %q cannot be called directly", decl.Name)
	}
	if len(n.Args) != len(decl.Params) {
		v.errorf(CodeCallArity, n.Location(), "function %q expects %d arguments, got %d", decl.Name, len(decl.Params), len(n.Args))
		return
	}
	for i, p := range decl.Params {
		arg := n.Args[i]
		argType, paramType := types.ResolveAlias(arg.Type()), types.ResolveAlias(p.Type)
		// An untyped literal argument narrows to a scalar parameter of its
		// own family (integer or float).
		if lit, ok := argType.(*types.Prim); ok && lit.Kind.IsUntyped() {
			if want, ok := paramType.(*types.Prim); ok && want.Kind.IsNumeric() && want.Kind.IsInteger() == lit.Kind.IsInteger() {
				argType = want
			}
		}
		if !argType.Equals(paramType) {
			v.deferrable(CodeCallType, n.Location(), "function %q argument %d: expected %s, got %s", decl.Name, i, p.Type, arg.Type())
			continue
		}
		if p.Semantic != ast.SemanticIn && !isLvalue(arg) {
			v.errorf(CodeCallSemantic, n.Location(), "function %q argument %d is %s and requires an assignable expression", decl.Name, i, semanticName(p.Semantic))
		}
	}
}

func isLvalue(e ast.Expr) bool {
	switch e.(type) {
	case *ast.IdentifierValueExpr, *ast.VariableValueExpr, *ast.AccessFieldExpr, *ast.AccessIdentifierExpr, *ast.AccessIndexExpr, *ast.SwizzleExpr:
		return true
	default:
		return false
	}
}

func semanticName(s ast.ParamSemantic) string {
	switch s {
	case ast.SemanticOut:
		return "out"
	case ast.SemanticInout:
		return "inout"
	default:
		return "in"
	}
}

func (v *validator) checkIntrinsic(n *ast.IntrinsicExpr) {
	id := builtins.ID(n.IntrinsicID)
	sig, _ := builtins.LookupID(id)
	rules, hasRules := intrinsicRules[id]
	if !hasRules {
		return
	}
	var first types.Type
	for i, rule := range rules {
		if i >= len(n.Args) {
			break
		}
		argType := types.ResolveAlias(n.Args[i].Type())
		if i == 0 {
			first = argType
		}
		switch rule {
		case argFValVec:
			if !isFloatScalarOrVector(argType) {
				v.deferrable(CodeIntrinsicSignature, n.Location(), "intrinsic %q argument %d must be a float scalar or vector, got %s", sig.Name, i, argType)
			}
		case argSameAsFirst:
			if first != nil && !argType.Equals(first) {
				v.deferrable(CodeIntrinsicSignature, n.Location(), "intrinsic %q argument %d must match the type of argument 0 (%s), got %s", sig.Name, i, first, argType)
			}
		case argArrayLike:
			if !isArrayLike(argType) {
				v.deferrable(CodeIntrinsicSignature, n.Location(), "intrinsic %q argument %d must be an array type, got %s", sig.Name, i, argType)
			}
		}
	}
}
