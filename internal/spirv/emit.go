// AST-to-SPIR-V lowering (§4.10.3-§4.10.6): walks a resolved ast.Module
// and drives Cache/FuncBuilder/Writer to produce a complete module.
//
// Grounded on SpirvAstVisitor.cpp (per-function statement/expression
// lowering) and SpirvWriter.cpp (external/entry-point wiring); GLSL.std.450
// opcode numbers come from the published Khronos extended-instruction-set
// spec, the same published-registry justification as cache.go's core
// opcodes.
package spirv

import (
	"fmt"

	"github.com/nzslang/nzslc/internal/ast"
	"github.com/nzslang/nzslc/internal/builtins"
	"github.com/nzslang/nzslc/internal/layout"
	"github.com/nzslang/nzslc/internal/types"
)

// globalVar is a module-scope variable: an external resource binding or
// one half of an entry point's flattened I/O.
type globalVar struct {
	ptr          ID
	typ          types.Type
	storageClass uint32
}

// funcInfo is a declared function's pre-assigned id/type, registered in
// a pass before any body is emitted so forward calls resolve.
type funcInfo struct {
	id     ID
	typeID ID
	decl   *ast.DeclareFunctionStmt
}

// emitter holds the cross-function state needed while lowering one
// module: the type/constant cache, a layout.Computer per block mode,
// the struct-index table, pre-registered function ids, and every
// global (external or entry-point I/O) variable's pointer/type/storage
// class, keyed by its declaring Ref.
type emitter struct {
	cache   *Cache
	std140  *layout.Computer
	std430  *layout.Computer
	structs map[uint32]*ast.DeclareStructStmt
	funcs   map[uint32]*funcInfo
	globals map[ast.Ref]globalVar
	w       *Writer

	nextLocation uint32
}

// Emit lowers mod to a complete SPIR-V binary module (§4.10).
func Emit(mod *ast.Module) []byte {
	em := &emitter{
		cache:   NewCache(),
		std140:  layout.NewComputer(mod, layout.Std140),
		std430:  layout.NewComputer(mod, layout.Std430),
		structs: make(map[uint32]*ast.DeclareStructStmt),
		funcs:   make(map[uint32]*funcInfo),
		globals: make(map[ast.Ref]globalVar),
	}
	em.w = NewWriter(em.cache)
	em.cache.RequireCapability(CapShader)

	for _, s := range mod.Root.Statements {
		if d, ok := s.(*ast.DeclareStructStmt); ok {
			em.structs[d.Ref.Index] = d
		}
	}
	// Externals register their block structs (isBlock=true) before any
	// plain function signature can register the same struct index as a
	// non-block type — RegisterStruct caches on first registration, so
	// this order is what keeps a uniform-wrapper struct's Block
	// decoration from being lost to a same-index non-block use
	// elsewhere (§4.10.2 scope note, see DESIGN.md).
	for _, s := range mod.Root.Statements {
		if ext, ok := s.(*ast.DeclareExternalStmt); ok {
			em.emitExternal(ext)
		}
	}
	for _, s := range mod.Root.Statements {
		if fn, ok := s.(*ast.DeclareFunctionStmt); ok {
			em.registerFunction(fn)
		}
	}
	for _, s := range mod.Root.Statements {
		if fn, ok := s.(*ast.DeclareFunctionStmt); ok {
			em.emitFunction(fn)
		}
	}

	return em.w.Assemble(DefaultMajor, DefaultMinor)
}

func memberTypesOf(decl *ast.DeclareStructStmt) []types.Type {
	out := make([]types.Type, len(decl.Members))
	for i, m := range decl.Members {
		out[i] = m.Type
	}
	return out
}

// typeID resolves t to its SPIR-V id under mode, registering the
// underlying struct (non-block) on first use. All codegen must go
// through this rather than Cache.Type directly, since a bare
// types.Struct can't be registered without its member list.
func (em *emitter) typeID(t types.Type, mode layout.Mode) ID {
	if st, ok := types.ResolveAlias(t).(*types.Struct); ok {
		return em.ensureStruct(st.Index, mode, false)
	}
	return em.cache.Type(em.lcFor(mode), t, mode)
}

func (em *emitter) ensureStruct(idx uint32, mode layout.Mode, isBlock bool) ID {
	decl, ok := em.structs[idx]
	if !ok {
		panic(fmt.Sprintf("spirv: unknown struct index %d", idx))
	}
	return em.cache.RegisterStruct(em.lcFor(mode), idx, memberTypesOf(decl), mode, isBlock)
}

func (em *emitter) lcFor(mode layout.Mode) *layout.Computer {
	if mode == layout.Std140 {
		return em.std140
	}
	return em.std430
}

// modeFor picks the layout mode a pointer's storage class implies:
// uniform blocks alone pack std140 (§4.10.3.c); every other storage
// class (storage buffers, push constants, locals) packs std430.
func modeFor(storageClass uint32) layout.Mode {
	if storageClass == StorageClassUniform {
		return layout.Std140
	}
	return layout.Std430
}

func (em *emitter) pointerType(storageClass uint32, t types.Type) ID {
	mode := modeFor(storageClass)
	if st, ok := types.ResolveAlias(t).(*types.Struct); ok {
		em.ensureStruct(st.Index, mode, storageClass == StorageClassUniform || storageClass == StorageClassStorageBuffer || storageClass == StorageClassPushConstant)
	}
	return em.cache.PointerType(em.lcFor(mode), storageClass, t, mode)
}

func (em *emitter) registerFunction(fn *ast.DeclareFunctionStmt) {
	var typeID ID
	if fn.Entry == ast.StageNone {
		paramTypes := make([]types.Type, len(fn.Params))
		for i, p := range fn.Params {
			paramTypes[i] = p.Type
			em.typeID(p.Type, layout.Std430) // registers a struct param's type before FunctionType needs it
		}
		em.typeID(fn.ReturnType, layout.Std430)
		typeID = em.cache.FunctionType(em.std430, fn.ReturnType, paramTypes, layout.Std430)
	} else {
		// entry points are always `void()` at the SPIR-V level; their
		// declared params/return become Input/Output globals instead.
		typeID = em.cache.FunctionType(em.std430, &types.None{}, nil, layout.Std430)
	}
	id := em.cache.NewID()
	em.cache.Name(id, fn.Name)
	em.funcs[fn.Ref.Index] = &funcInfo{id: id, typeID: typeID, decl: fn}
}

// ----------------------------------------------------------------------------
// Externals
// ----------------------------------------------------------------------------

func (em *emitter) emitExternal(ext *ast.DeclareExternalStmt) {
	for _, m := range ext.Members {
		switch t := types.ResolveAlias(m.Type).(type) {
		case *types.Uniform:
			em.emitResourceVar(m, &types.Struct{Index: t.StructIndex}, StorageClassUniform)
		case *types.Storage:
			em.emitResourceVar(m, &types.Struct{Index: t.StructIndex}, StorageClassStorageBuffer)
		case *types.PushConstant:
			em.emitPushConstant(m, &types.Struct{Index: t.StructIndex})
		case *types.Sampler, *types.Texture:
			em.emitResourceVar(m, m.Type, StorageClassUniformConstant)
		default:
			// Plain (non-block) external scalars/arrays, legal when the
			// "primitive externals" feature is enabled (§4.8): bind
			// directly as a uniform-constant-class variable.
			em.emitResourceVar(m, m.Type, StorageClassUniformConstant)
		}
	}
}

// emitResourceVar declares one external binding's global variable.
// Whether base (a struct) gets the Block decoration follows entirely
// from storageClass via pointerType/modeFor — Uniform/StorageBuffer
// always do, UniformConstant (samplers, textures, plain externals)
// never does.
func (em *emitter) emitResourceVar(m ast.DeclareExternalMember, base types.Type, storageClass uint32) {
	ptrTypeID := em.pointerType(storageClass, base)
	id := em.cache.NewID()
	em.cache.Name(id, m.Name)
	em.w.AddGlobalVariable(Instr(OpVariable, Operand(uint32(ptrTypeID)), ResultOperand(id), Operand(storageClass)))
	if m.Set.IsResultingValue() {
		em.cache.Decorate(id, DecorationDescriptorSet, m.Set.GetResultingValue())
	}
	if m.Binding.IsResultingValue() {
		em.cache.Decorate(id, DecorationBinding, m.Binding.GetResultingValue())
	}
	em.globals[m.Ref] = globalVar{ptr: id, typ: base, storageClass: storageClass}
}

func (em *emitter) emitPushConstant(m ast.DeclareExternalMember, base types.Type) {
	ptrTypeID := em.pointerType(StorageClassPushConstant, base)
	id := em.cache.NewID()
	em.cache.Name(id, m.Name)
	em.w.AddGlobalVariable(Instr(OpVariable, Operand(uint32(ptrTypeID)), ResultOperand(id), Operand(StorageClassPushConstant)))
	em.globals[m.Ref] = globalVar{ptr: id, typ: base, storageClass: StorageClassPushConstant}
}

// ----------------------------------------------------------------------------
// Functions and entry points
// ----------------------------------------------------------------------------

func (em *emitter) emitFunction(fn *ast.DeclareFunctionStmt) {
	info := em.funcs[fn.Ref.Index]
	if fn.Entry != ast.StageNone {
		em.emitEntryFunction(fn, info)
		return
	}

	fb := NewFuncBuilder(em.cache, em.std430, fn.ReturnType, em.typeID(fn.ReturnType, layout.Std430),
		func(t types.Type) ID { return em.typeID(t, layout.Std430) },
		func(sc uint32, t types.Type) ID { return em.pointerType(sc, t) })
	fb.NewBlock()

	params := make([]ParamInfo, len(fn.Params))
	for i, p := range fn.Params {
		typeID := em.typeID(p.Type, layout.Std430)
		paramID := em.cache.NewID()
		em.cache.Name(paramID, p.Name)
		params[i] = ParamInfo{ID: paramID, TypeID: typeID}
		ptr, _ := fb.DeclareLocal(p.Ref, p.Name, p.Type)
		fb.Emit(Instr(OpStore, Operand(uint32(ptr)), Operand(uint32(paramID))))
	}

	em.emitStmt(fb, fn.Body)
	em.w.AddFunction(fb.Finish(info.id, info.typeID, params))
}

// builtinFor maps a DeclareStructMember.Builtin tag to a SPIR-V BuiltIn
// decoration value. Only the common vertex/fragment/compute set is
// covered (§4.8 "builtin I/O"); an unrecognized tag is treated as an
// ordinary Location-numbered member, which is the safe fallback.
func builtinFor(name string) (uint32, bool) {
	switch name {
	case "position":
		return BuiltInPosition, true
	case "vertex_index":
		return BuiltInVertexIndex, true
	case "instance_index":
		return BuiltInInstanceIndex, true
	case "frag_coord":
		return BuiltInFragCoord, true
	case "front_facing":
		return BuiltInFrontFacing, true
	case "frag_depth":
		return BuiltInFragDepth, true
	case "local_invocation_id":
		return BuiltInLocalInvocationId, true
	case "global_invocation_id":
		return BuiltInGlobalInvocationId, true
	}
	return 0, false
}

func (em *emitter) executionModel(stage ast.EntryStage) uint32 {
	switch stage {
	case ast.StageVertex:
		return ExecutionModelVertex
	case ast.StageCompute:
		return ExecutionModelGLCompute
	default:
		return ExecutionModelFragment
	}
}

// emitEntryFunction lowers a shader entry point: its declared
// parameters become per-field Input globals loaded into a staged local
// at the top of the body, and its declared return type becomes
// per-field Output globals stored just before each OpReturn (§4.10.3.d,
// §4.10.6 "entry point I/O flattening").
func (em *emitter) emitEntryFunction(fn *ast.DeclareFunctionStmt, info *funcInfo) {
	voidID := em.typeID(&types.None{}, layout.Std430)
	fb := NewFuncBuilder(em.cache, em.std430, &types.None{}, voidID,
		func(t types.Type) ID { return em.typeID(t, layout.Std430) },
		func(sc uint32, t types.Type) ID { return em.pointerType(sc, t) })
	fb.IsEntry = true
	fb.NewBlock()

	var interfaceIDs []ID

	for _, p := range fn.Params {
		ptr, _ := fb.DeclareLocal(p.Ref, p.Name, p.Type)
		if st, ok := types.ResolveAlias(p.Type).(*types.Struct); ok {
			decl := em.structs[st.Index]
			fieldIDs := make([]ID, len(decl.Members))
			for i, mem := range decl.Members {
				varID, fieldType := em.declareIOVar(mem, StorageClassInput)
				interfaceIDs = append(interfaceIDs, varID)
				fieldIDs[i] = em.loadVar(fb, varID, fieldType)
			}
			composite := em.compositeConstruct(fb, p.Type, fieldIDs)
			fb.Emit(Instr(OpStore, Operand(uint32(ptr)), Operand(uint32(composite))))
		} else {
			varID, _ := em.declareIOVar(ast.DeclareStructMember{Name: p.Name, Type: p.Type}, StorageClassInput)
			interfaceIDs = append(interfaceIDs, varID)
			val := em.loadVar(fb, varID, p.Type)
			fb.Emit(Instr(OpStore, Operand(uint32(ptr)), Operand(uint32(val))))
		}
	}

	if st, ok := types.ResolveAlias(fn.ReturnType).(*types.Struct); ok {
		decl := em.structs[st.Index]
		for i, mem := range decl.Members {
			varID, _ := em.declareIOVar(mem, StorageClassOutput)
			interfaceIDs = append(interfaceIDs, varID)
			fb.EntryOutputs = append(fb.EntryOutputs, EntryOutput{VarID: varID, FieldIndex: i, Type: mem.Type})
		}
	} else if _, isNone := fn.ReturnType.(*types.None); !isNone {
		varID, _ := em.declareIOVar(ast.DeclareStructMember{Name: fn.Name + "_out", Type: fn.ReturnType}, StorageClassOutput)
		interfaceIDs = append(interfaceIDs, varID)
		fb.EntryOutputs = append(fb.EntryOutputs, EntryOutput{VarID: varID, FieldIndex: -1, Type: fn.ReturnType})
	}

	em.emitStmt(fb, fn.Body)
	em.w.AddFunction(fb.Finish(info.id, info.typeID, nil))

	operands := []Operand2{Operand(em.executionModel(fn.Entry)), ResultOperand(info.id), StringOperand(fn.Name)}
	for _, id := range interfaceIDs {
		operands = append(operands, Operand(uint32(id)))
	}
	em.w.AddEntryPoint(Instr(OpEntryPoint, operands...))

	switch fn.Entry {
	case ast.StageFragment:
		em.w.AddExecutionMode(Instr(OpExecutionMode, Operand(uint32(info.id)), Operand(ExecutionModeOriginUpperLeft)))
		if fn.EarlyFragmentTests {
			em.w.AddExecutionMode(Instr(OpExecutionMode, Operand(uint32(info.id)), Operand(ExecutionModeEarlyFragmentTests)))
		}
		if fn.DepthWrite {
			em.w.AddExecutionMode(Instr(OpExecutionMode, Operand(uint32(info.id)), Operand(ExecutionModeDepthReplacing)))
		}
	case ast.StageCompute:
		x, y, z := uint32(1), uint32(1), uint32(1)
		if fn.Workgroup[0].IsResultingValue() {
			x = fn.Workgroup[0].GetResultingValue()
		}
		if fn.Workgroup[1].IsResultingValue() {
			y = fn.Workgroup[1].GetResultingValue()
		}
		if fn.Workgroup[2].IsResultingValue() {
			z = fn.Workgroup[2].GetResultingValue()
		}
		em.w.AddExecutionMode(Instr(OpExecutionMode, Operand(uint32(info.id)), Operand(ExecutionModeLocalSize), Operand(x), Operand(y), Operand(z)))
	}
}

// declareIOVar allocates one Input/Output global for a flattened
// entry-point field, assigning it a BuiltIn decoration (if tagged) or
// the next sequential Location.
func (em *emitter) declareIOVar(mem ast.DeclareStructMember, storageClass uint32) (ID, types.Type) {
	ptrTypeID := em.pointerType(storageClass, mem.Type)
	id := em.cache.NewID()
	if mem.Name != "" {
		em.cache.Name(id, mem.Name)
	}
	em.w.AddGlobalVariable(Instr(OpVariable, Operand(uint32(ptrTypeID)), ResultOperand(id), Operand(storageClass)))
	if bi, ok := builtinFor(mem.Builtin); ok {
		em.cache.Decorate(id, DecorationBuiltIn, bi)
	} else {
		loc := em.nextLocation
		if mem.Locations.IsResultingValue() {
			loc = mem.Locations.GetResultingValue()
		}
		em.cache.Decorate(id, DecorationLocation, loc)
		em.nextLocation = loc + 1
	}
	return id, mem.Type
}

func (em *emitter) loadVar(fb *FuncBuilder, ptr ID, typ types.Type) ID {
	typeID := em.typeID(typ, layout.Std430)
	id := em.cache.NewID()
	fb.Emit(Instr(OpLoad, Operand(uint32(typeID)), ResultOperand(id), Operand(uint32(ptr))))
	return id
}

func (em *emitter) compositeConstruct(fb *FuncBuilder, resultType types.Type, parts []ID) ID {
	typeID := em.typeID(resultType, layout.Std430)
	id := em.cache.NewID()
	ops := []Operand2{Operand(uint32(typeID)), ResultOperand(id)}
	for _, p := range parts {
		ops = append(ops, Operand(uint32(p)))
	}
	fb.Emit(Instr(OpCompositeConstruct, ops...))
	return id
}

// ----------------------------------------------------------------------------
// Statements
// ----------------------------------------------------------------------------

func (em *emitter) emitStmt(fb *FuncBuilder, s ast.Stmt) {
	if fb.Terminated() {
		return
	}
	switch n := s.(type) {
	case *ast.MultiStmt:
		for _, stmt := range n.Statements {
			em.emitStmt(fb, stmt)
		}
	case *ast.ScopedStmt:
		em.emitStmt(fb, n.Body)
	case *ast.NoOpStmt:
	case *ast.DeclareVariableStmt:
		ptr, _ := fb.DeclareLocal(n.Ref, n.Name, n.Type)
		if n.Initializer != nil {
			val, _ := em.emitExpr(fb, n.Initializer)
			fb.Emit(Instr(OpStore, Operand(uint32(ptr)), Operand(uint32(val))))
		}
	case *ast.DeclareConstStmt:
		ptr, _ := fb.DeclareLocal(n.Ref, n.Name, n.Initializer.Type())
		val, _ := em.emitExpr(fb, n.Initializer)
		fb.Emit(Instr(OpStore, Operand(uint32(ptr)), Operand(uint32(val))))
	case *ast.ExpressionStmt:
		em.emitExpr(fb, n.Expr)
	case *ast.ReturnStmt:
		em.emitReturn(fb, n)
	case *ast.DiscardStmt:
		fb.Terminate(Instr(OpKill))
	case *ast.BreakStmt:
		if target, ok := fb.BreakTarget(); ok {
			fb.Terminate(Instr(OpBranch, Operand(uint32(target))))
		}
	case *ast.ContinueStmt:
		if target, ok := fb.ContinueTarget(); ok {
			fb.Terminate(Instr(OpBranch, Operand(uint32(target))))
		}
	case *ast.ConditionalStmt:
		// only reachable if an earlier pass left a static-if collapse
		// unresolved; both arms are mutually exclusive so emit whichever
		// survived.
		if n.Then != nil {
			em.emitStmt(fb, n.Then)
		} else if n.Else != nil {
			em.emitStmt(fb, n.Else)
		}
	case *ast.BranchStmt:
		em.emitBranch(fb, n)
	case *ast.WhileStmt:
		em.emitWhile(fb, n)
	case *ast.ForStmt:
		em.emitFor(fb, n)
	case *ast.ForEachStmt:
		panic("spirv: for-each loops are not implemented by this backend")
	case *ast.DeclareAliasStmt, *ast.DeclareStructStmt, *ast.DeclareExternalStmt,
		*ast.DeclareOptionStmt, *ast.ImportStmt, *ast.DeclareFunctionStmt:
		// module-level declarations have no function-body codegen.
	default:
		panic(fmt.Sprintf("spirv: unsupported statement %T reached code generation", s))
	}
}

func (em *emitter) emitReturn(fb *FuncBuilder, n *ast.ReturnStmt) {
	if fb.IsEntry {
		if n.Value != nil {
			valID, _ := em.emitExpr(fb, n.Value)
			if len(fb.EntryOutputs) == 1 && fb.EntryOutputs[0].FieldIndex == -1 {
				fb.Emit(Instr(OpStore, Operand(uint32(fb.EntryOutputs[0].VarID)), Operand(uint32(valID))))
			} else {
				for _, eo := range fb.EntryOutputs {
					fieldTypeID := em.typeID(eo.Type, layout.Std430)
					fieldID := em.cache.NewID()
					fb.Emit(Instr(OpCompositeExtract, Operand(uint32(fieldTypeID)), ResultOperand(fieldID), Operand(uint32(valID)), Operand(uint32(eo.FieldIndex))))
					fb.Emit(Instr(OpStore, Operand(uint32(eo.VarID)), Operand(uint32(fieldID))))
				}
			}
		}
		fb.Terminate(Instr(OpReturn))
		return
	}
	if n.Value == nil {
		fb.Terminate(Instr(OpReturn))
		return
	}
	valID, _ := em.emitExpr(fb, n.Value)
	fb.Terminate(Instr(OpReturnValue, Operand(uint32(valID))))
}

// emitBranch lowers an if/else-if/else chain (ast.BranchStmt.Cases plus
// an optional Else) into nested SPIR-V selection constructs that all
// converge on one shared merge block. No earlier pass splits multi-arm
// chains, so this backend lowers the multi-arm form directly.
func (em *emitter) emitBranch(fb *FuncBuilder, n *ast.BranchStmt) {
	mergeLabel := fb.NewLabel()
	em.emitBranchChain(fb, n.Cases, n.Else, mergeLabel)
	fb.Begin(mergeLabel)
}

func (em *emitter) emitBranchChain(fb *FuncBuilder, cases []ast.BranchCase, elseBody *ast.MultiStmt, mergeLabel ID) {
	if len(cases) == 0 {
		if elseBody != nil {
			em.emitStmt(fb, elseBody)
		}
		if !fb.Terminated() {
			fb.Terminate(Instr(OpBranch, Operand(uint32(mergeLabel))))
		}
		return
	}
	c := cases[0]
	condID, _ := em.emitExpr(fb, c.Condition)
	thenLabel := fb.NewLabel()
	elseLabel := fb.NewLabel()
	fb.Emit(Instr(OpSelectionMerge, Operand(uint32(mergeLabel)), Operand(0)))
	fb.Terminate(Instr(OpBranchConditional, Operand(uint32(condID)), Operand(uint32(thenLabel)), Operand(uint32(elseLabel))))

	fb.Begin(thenLabel)
	em.emitStmt(fb, c.Body)
	if !fb.Terminated() {
		fb.Terminate(Instr(OpBranch, Operand(uint32(mergeLabel))))
	}

	fb.Begin(elseLabel)
	em.emitBranchChain(fb, cases[1:], elseBody, mergeLabel)
}

func (em *emitter) emitWhile(fb *FuncBuilder, n *ast.WhileStmt) {
	headerLabel := fb.NewLabel()
	fb.Terminate(Instr(OpBranch, Operand(uint32(headerLabel))))
	fb.Begin(headerLabel)

	condID, _ := em.emitExpr(fb, n.Condition)
	mergeLabel := fb.NewLabel()
	continueLabel := fb.NewLabel()
	bodyLabel := fb.NewLabel()
	fb.Emit(Instr(OpLoopMerge, Operand(uint32(mergeLabel)), Operand(uint32(continueLabel)), Operand(0)))
	fb.Terminate(Instr(OpBranchConditional, Operand(uint32(condID)), Operand(uint32(bodyLabel)), Operand(uint32(mergeLabel))))

	fb.Begin(bodyLabel)
	fb.PushLoopTargets(mergeLabel, continueLabel)
	em.emitStmt(fb, n.Body)
	fb.PopLoopTargets()
	if !fb.Terminated() {
		fb.Terminate(Instr(OpBranch, Operand(uint32(continueLabel))))
	}

	fb.Begin(continueLabel)
	fb.Terminate(Instr(OpBranch, Operand(uint32(headerLabel))))

	fb.Begin(mergeLabel)
}

// emitFor desugars a numeric `for` loop into the same 4-block
// header/body/continue/merge shape as WhileStmt, matching how
// SpirvAstVisitor.cpp itself lowers ForStmt (there is no separate
// SPIR-V "for" construct). The loop variable is assumed to be one of
// NZSL's integer primitives (i32/u32), the only kind the grammar
// actually produces for a range loop.
func (em *emitter) emitFor(fb *FuncBuilder, n *ast.ForStmt) {
	fromID, fromType := em.emitExpr(fb, n.From)
	ptr, _ := fb.DeclareLocal(n.VarRef, n.VarName, fromType)
	fb.Emit(Instr(OpStore, Operand(uint32(ptr)), Operand(uint32(fromID))))

	kind, _ := scalarKind(fromType)
	isSigned := kind == types.I32 || kind == types.IntLiteral
	typeID := em.typeID(fromType, layout.Std430)
	boolTypeID := em.typeID(&types.Prim{Kind: types.Bool}, layout.Std430)

	headerLabel := fb.NewLabel()
	fb.Terminate(Instr(OpBranch, Operand(uint32(headerLabel))))
	fb.Begin(headerLabel)

	curID := em.loadVar(fb, ptr, fromType)
	toID, _ := em.emitExpr(fb, n.To)
	ltOp := uint16(OpULessThan)
	if isSigned {
		ltOp = OpSLessThan
	}
	condID := em.cache.NewID()
	fb.Emit(Instr(ltOp, Operand(uint32(boolTypeID)), ResultOperand(condID), Operand(uint32(curID)), Operand(uint32(toID))))

	mergeLabel := fb.NewLabel()
	continueLabel := fb.NewLabel()
	bodyLabel := fb.NewLabel()
	fb.Emit(Instr(OpLoopMerge, Operand(uint32(mergeLabel)), Operand(uint32(continueLabel)), Operand(0)))
	fb.Terminate(Instr(OpBranchConditional, Operand(uint32(condID)), Operand(uint32(bodyLabel)), Operand(uint32(mergeLabel))))

	fb.Begin(bodyLabel)
	fb.PushLoopTargets(mergeLabel, continueLabel)
	em.emitStmt(fb, n.Body)
	fb.PopLoopTargets()
	if !fb.Terminated() {
		fb.Terminate(Instr(OpBranch, Operand(uint32(continueLabel))))
	}

	fb.Begin(continueLabel)
	curID2 := em.loadVar(fb, ptr, fromType)
	var stepID ID
	if n.Step != nil {
		stepID, _ = em.emitExpr(fb, n.Step)
	} else {
		stepID = em.cache.UintConstant(1)
	}
	addOp := uint16(OpIAdd)
	sumID := em.cache.NewID()
	fb.Emit(Instr(addOp, Operand(uint32(typeID)), ResultOperand(sumID), Operand(uint32(curID2)), Operand(uint32(stepID))))
	fb.Emit(Instr(OpStore, Operand(uint32(ptr)), Operand(uint32(sumID))))
	fb.Terminate(Instr(OpBranch, Operand(uint32(headerLabel))))

	fb.Begin(mergeLabel)
}

// ----------------------------------------------------------------------------
// Expressions
// ----------------------------------------------------------------------------

func scalarKind(t types.Type) (types.Primitive, bool) {
	switch tt := types.ResolveAlias(t).(type) {
	case *types.Prim:
		return tt.Kind, true
	case *types.Vector:
		return tt.Primitive, true
	case *types.Matrix:
		return tt.Primitive, true
	}
	return 0, false
}

func isFloatKind(k types.Primitive) bool { return k == types.F32 || k == types.F64 || k == types.FloatLiteral }

func (em *emitter) resolveRef(fb *FuncBuilder, ref ast.Ref) (ID, types.Type, uint32, bool) {
	if ptr, typ, ok := fb.Lookup(ref); ok {
		return ptr, typ, StorageClassFunction, true
	}
	if g, ok := em.globals[ref]; ok {
		return g.ptr, g.typ, g.storageClass, true
	}
	return 0, nil, 0, false
}

// emitExpr lowers e and returns its result id alongside its NZSL type
// (always e.Type(), already settled by resolution — codegen never has
// to re-derive a result type itself).
func (em *emitter) emitExpr(fb *FuncBuilder, e ast.Expr) (ID, types.Type) {
	switch n := e.(type) {
	case *ast.ConstantExpr:
		return ID(em.cache.Const(n.Value)), n.Value.Type()
	case *ast.VariableValueExpr:
		ptr, typ, _, ok := em.resolveRef(fb, n.Variable)
		if !ok {
			panic("spirv: unresolved variable reference reached code generation")
		}
		return em.loadVar(fb, ptr, typ), typ
	case *ast.IdentifierValueExpr:
		ptr, typ, _, ok := em.resolveRef(fb, n.Ref)
		if !ok {
			panic("spirv: unresolved identifier reached code generation")
		}
		return em.loadVar(fb, ptr, typ), typ
	case *ast.AssignExpr:
		return em.emitAssign(fb, n)
	case *ast.BinaryExpr:
		return em.emitBinary(fb, n)
	case *ast.UnaryExpr:
		return em.emitUnary(fb, n)
	case *ast.CastExpr:
		return em.emitCast(fb, n)
	case *ast.SwizzleExpr:
		return em.emitSwizzle(fb, n)
	case *ast.AccessFieldExpr:
		return em.emitAccessField(fb, n)
	case *ast.AccessIndexExpr:
		return em.emitAccessIndex(fb, n)
	case *ast.CallFunctionExpr:
		return em.emitCallFunction(fb, n)
	case *ast.IntrinsicExpr:
		return em.emitIntrinsic(fb, n)
	case *ast.ConditionalExpr:
		return em.emitConditional(fb, n)
	default:
		panic(fmt.Sprintf("spirv: unsupported expression %T reached code generation", e))
	}
}

func (em *emitter) lvalue(fb *FuncBuilder, e ast.Expr) (ID, types.Type, uint32, bool) {
	switch n := e.(type) {
	case *ast.VariableValueExpr:
		return em.resolveRef(fb, n.Variable)
	case *ast.IdentifierValueExpr:
		return em.resolveRef(fb, n.Ref)
	case *ast.AccessFieldExpr:
		basePtr, _, sc, ok := em.lvalue(fb, n.Object)
		if !ok {
			return 0, nil, 0, false
		}
		fieldType := n.Type()
		idxConst := em.cache.UintConstant(uint32(n.FieldIndex))
		ptrTypeID := em.pointerType(sc, fieldType)
		id := em.cache.NewID()
		fb.Emit(Instr(OpAccessChain, Operand(uint32(ptrTypeID)), ResultOperand(id), Operand(uint32(basePtr)), Operand(uint32(idxConst))))
		return id, fieldType, sc, true
	case *ast.AccessIndexExpr:
		basePtr, _, sc, ok := em.lvalue(fb, n.Object)
		if !ok {
			return 0, nil, 0, false
		}
		idxID, _ := em.emitExpr(fb, n.Index)
		elemType := n.Type()
		ptrTypeID := em.pointerType(sc, elemType)
		id := em.cache.NewID()
		fb.Emit(Instr(OpAccessChain, Operand(uint32(ptrTypeID)), ResultOperand(id), Operand(uint32(basePtr)), Operand(uint32(idxID))))
		return id, elemType, sc, true
	}
	return 0, nil, 0, false
}

func assignOpToBinaryOp(op ast.AssignOp) (ast.BinaryOp, bool) {
	switch op {
	case ast.AssignAdd:
		return ast.BinAdd, true
	case ast.AssignSub:
		return ast.BinSub, true
	case ast.AssignMul:
		return ast.BinMul, true
	case ast.AssignDiv:
		return ast.BinDiv, true
	case ast.AssignMod:
		return ast.BinMod, true
	case ast.AssignAnd:
		return ast.BinBitAnd, true
	case ast.AssignOr:
		return ast.BinBitOr, true
	case ast.AssignXor:
		return ast.BinBitXor, true
	case ast.AssignShl:
		return ast.BinShl, true
	case ast.AssignShr:
		return ast.BinShr, true
	}
	return 0, false
}

func (em *emitter) emitAssign(fb *FuncBuilder, n *ast.AssignExpr) (ID, types.Type) {
	ptr, typ, _, ok := em.lvalue(fb, n.Left)
	if !ok {
		panic("spirv: assignment target is not an lvalue")
	}
	rhsID, _ := em.emitExpr(fb, n.Right)
	if binOp, ok := assignOpToBinaryOp(n.Op); ok {
		curID := em.loadVar(fb, ptr, typ)
		rhsID = em.emitBinaryValues(fb, binOp, typ, typ, curID, rhsID)
	}
	fb.Emit(Instr(OpStore, Operand(uint32(ptr)), Operand(uint32(rhsID))))
	return rhsID, typ
}

func binaryOpcode(op ast.BinaryOp, isFloat, isSigned, isBool bool) uint16 {
	switch op {
	case ast.BinAdd:
		if isFloat {
			return OpFAdd
		}
		return OpIAdd
	case ast.BinSub:
		if isFloat {
			return OpFSub
		}
		return OpISub
	case ast.BinMul:
		if isFloat {
			return OpFMul
		}
		return OpIMul
	case ast.BinDiv:
		if isFloat {
			return OpFDiv
		}
		if isSigned {
			return OpSDiv
		}
		return OpUDiv
	case ast.BinMod:
		if isFloat {
			return OpFMod
		}
		if isSigned {
			return OpSMod
		}
		return OpUMod
	case ast.BinShl:
		return OpShiftLeftLogical
	case ast.BinShr:
		if isSigned {
			return OpShiftRightArithmetic
		}
		return OpShiftRightLogical
	case ast.BinEq:
		if isFloat {
			return OpFOrdEqual
		}
		if isBool {
			return OpLogicalEqual
		}
		return OpIEqual
	case ast.BinNe:
		if isFloat {
			return OpFOrdNotEqual
		}
		if isBool {
			return OpLogicalNotEqual
		}
		return OpINotEqual
	case ast.BinLt:
		if isFloat {
			return OpFOrdLessThan
		}
		if isSigned {
			return OpSLessThan
		}
		return OpULessThan
	case ast.BinLe:
		if isFloat {
			return OpFOrdLessThanEqual
		}
		if isSigned {
			return OpSLessThanEqual
		}
		return OpULessThanEqual
	case ast.BinGt:
		if isFloat {
			return OpFOrdGreaterThan
		}
		if isSigned {
			return OpSGreaterThan
		}
		return OpUGreaterThan
	case ast.BinGe:
		if isFloat {
			return OpFOrdGreaterThanEqual
		}
		if isSigned {
			return OpSGreaterThanEqual
		}
		return OpUGreaterThanEqual
	case ast.BinBitAnd:
		return OpBitwiseAnd
	case ast.BinBitXor:
		return OpBitwiseXor
	case ast.BinBitOr:
		return OpBitwiseOr
	case ast.BinLogicalAnd:
		return OpLogicalAnd
	case ast.BinLogicalOr:
		return OpLogicalOr
	}
	panic(fmt.Sprintf("spirv: unhandled binary operator %v", op))
}

// emitBinaryValues applies op to two already-emitted operand ids,
// broadcasting a lone scalar up to the other side's vector width
// (§4.10.5 "scalar-broadcast via OpCompositeConstruct") when neither
// side is a dedicated matrix/vector-times-scalar opcode.
func (em *emitter) emitBinaryValues(fb *FuncBuilder, op ast.BinaryOp, resultType, operandType types.Type, lid, rid ID) ID {
	resultTypeID := em.typeID(resultType, layout.Std430)
	kind, _ := scalarKind(operandType)
	isFloat := isFloatKind(kind)
	isSigned := kind == types.I32 || kind == types.IntLiteral
	isBool := kind == types.Bool
	spirvOp := binaryOpcode(op, isFloat, isSigned, isBool)
	id := em.cache.NewID()
	fb.Emit(Instr(spirvOp, Operand(uint32(resultTypeID)), ResultOperand(id), Operand(uint32(lid)), Operand(uint32(rid))))
	return id
}

func (em *emitter) broadcast(fb *FuncBuilder, scalarID ID, vecType *types.Vector) ID {
	typeID := em.typeID(vecType, layout.Std430)
	id := em.cache.NewID()
	ops := []Operand2{Operand(uint32(typeID)), ResultOperand(id)}
	for i := 0; i < vecType.ComponentCount; i++ {
		ops = append(ops, Operand(uint32(scalarID)))
	}
	fb.Emit(Instr(OpCompositeConstruct, ops...))
	return id
}

func (em *emitter) emitBinOpInstr(fb *FuncBuilder, op uint16, resultTypeID ID, a, b ID) ID {
	id := em.cache.NewID()
	fb.Emit(Instr(op, Operand(uint32(resultTypeID)), ResultOperand(id), Operand(uint32(a)), Operand(uint32(b))))
	return id
}

func (em *emitter) emitBinary(fb *FuncBuilder, n *ast.BinaryExpr) (ID, types.Type) {
	lid, lt := em.emitExpr(fb, n.Left)
	rid, rt := em.emitExpr(fb, n.Right)
	resultType := n.Type()

	_, lMat := types.ResolveAlias(lt).(*types.Matrix)
	_, rMat := types.ResolveAlias(rt).(*types.Matrix)
	lVec, lIsVec := types.ResolveAlias(lt).(*types.Vector)
	rVec, rIsVec := types.ResolveAlias(rt).(*types.Vector)

	if n.Op == ast.BinMul {
		resultTypeID := em.typeID(resultType, layout.Std430)
		switch {
		case lMat && rIsVec:
			return em.emitBinOpInstr(fb, OpMatrixTimesVector, resultTypeID, lid, rid), resultType
		case lIsVec && rMat:
			return em.emitBinOpInstr(fb, OpVectorTimesMatrix, resultTypeID, lid, rid), resultType
		case lMat && rMat:
			return em.emitBinOpInstr(fb, OpMatrixTimesMatrix, resultTypeID, lid, rid), resultType
		case lIsVec && !rIsVec && !rMat:
			return em.emitBinOpInstr(fb, OpVectorTimesScalar, resultTypeID, lid, rid), resultType
		case rIsVec && !lIsVec && !lMat:
			return em.emitBinOpInstr(fb, OpVectorTimesScalar, resultTypeID, rid, lid), resultType
		case lMat && !rIsVec && !rMat:
			return em.emitBinOpInstr(fb, OpMatrixTimesScalar, resultTypeID, lid, rid), resultType
		case rMat && !lIsVec && !lMat:
			return em.emitBinOpInstr(fb, OpMatrixTimesScalar, resultTypeID, rid, lid), resultType
		}
	}

	operandType := lt
	if lIsVec && !rIsVec {
		rid = em.broadcast(fb, rid, lVec)
	} else if rIsVec && !lIsVec {
		lid = em.broadcast(fb, lid, rVec)
		operandType = rt
	}

	id := em.emitBinaryValues(fb, n.Op, resultType, operandType, lid, rid)
	return id, resultType
}

func (em *emitter) emitUnary(fb *FuncBuilder, n *ast.UnaryExpr) (ID, types.Type) {
	operandID, operandType := em.emitExpr(fb, n.Operand)
	resultType := n.Type()
	if n.Op == ast.UnaryPlus {
		return operandID, resultType
	}
	resultTypeID := em.typeID(resultType, layout.Std430)
	kind, _ := scalarKind(operandType)
	var op uint16
	switch n.Op {
	case ast.UnaryNeg:
		if isFloatKind(kind) {
			op = OpFNegate
		} else {
			op = OpSNegate
		}
	case ast.UnaryLogicalNot:
		op = OpLogicalNot
	case ast.UnaryBitNot:
		op = OpNot
	}
	id := em.cache.NewID()
	fb.Emit(Instr(op, Operand(uint32(resultTypeID)), ResultOperand(id), Operand(uint32(operandID))))
	return id, resultType
}

func (em *emitter) emitCast(fb *FuncBuilder, n *ast.CastExpr) (ID, types.Type) {
	target := n.TargetType
	if len(n.Args) != 1 {
		return em.emitConstructor(fb, target, n.Args)
	}
	argID, argType := em.emitExpr(fb, n.Args[0])
	srcKind, srcOK := scalarKind(argType)
	dstKind, dstOK := scalarKind(target)
	if !srcOK || !dstOK || srcKind == dstKind {
		return em.emitConstructor(fb, target, n.Args)
	}
	resultTypeID := em.typeID(target, layout.Std430)
	var op uint16
	switch {
	case isFloatKind(srcKind) && isFloatKind(dstKind):
		op = OpFConvert
	case isFloatKind(srcKind) && dstKind == types.I32:
		op = OpConvertFToS
	case isFloatKind(srcKind) && dstKind == types.U32:
		op = OpConvertFToU
	case !isFloatKind(srcKind) && isFloatKind(dstKind) && (srcKind == types.I32 || srcKind == types.IntLiteral):
		op = OpConvertSToF
	case !isFloatKind(srcKind) && isFloatKind(dstKind) && srcKind == types.U32:
		op = OpConvertUToF
	default:
		op = OpBitcast
	}
	id := em.cache.NewID()
	fb.Emit(Instr(op, Operand(uint32(resultTypeID)), ResultOperand(id), Operand(uint32(argID))))
	return id, target
}

// emitConstructor builds a composite value from its arguments
// (vecN(...), matCxR(...), array[T,N](...), a struct literal, or a
// single-argument same-kind "cast" that's really an identity
// conversion — OpCompositeConstruct covers all of these uniformly).
func (em *emitter) emitConstructor(fb *FuncBuilder, target types.Type, args []ast.Expr) (ID, types.Type) {
	if len(args) == 1 {
		id, _ := em.emitExpr(fb, args[0])
		return id, target
	}
	resultTypeID := em.typeID(target, layout.Std430)
	id := em.cache.NewID()
	ops := []Operand2{Operand(uint32(resultTypeID)), ResultOperand(id)}
	for _, a := range args {
		aid, _ := em.emitExpr(fb, a)
		ops = append(ops, Operand(uint32(aid)))
	}
	fb.Emit(Instr(OpCompositeConstruct, ops...))
	return id, target
}

func (em *emitter) emitSwizzle(fb *FuncBuilder, n *ast.SwizzleExpr) (ID, types.Type) {
	objID, _ := em.emitExpr(fb, n.Object)
	resultType := n.Type()
	resultTypeID := em.typeID(resultType, layout.Std430)
	if len(n.Components) == 1 {
		id := em.cache.NewID()
		fb.Emit(Instr(OpCompositeExtract, Operand(uint32(resultTypeID)), ResultOperand(id), Operand(uint32(objID)), Operand(uint32(n.Components[0]))))
		return id, resultType
	}
	id := em.cache.NewID()
	ops := []Operand2{Operand(uint32(resultTypeID)), ResultOperand(id), Operand(uint32(objID)), Operand(uint32(objID))}
	for _, c := range n.Components {
		ops = append(ops, Operand(uint32(c)))
	}
	fb.Emit(Instr(OpVectorShuffle, ops...))
	return id, resultType
}

func (em *emitter) emitAccessField(fb *FuncBuilder, n *ast.AccessFieldExpr) (ID, types.Type) {
	if ptr, typ, _, ok := em.lvalue(fb, n); ok {
		return em.loadVar(fb, ptr, typ), typ
	}
	objID, _ := em.emitExpr(fb, n.Object)
	resultType := n.Type()
	resultTypeID := em.typeID(resultType, layout.Std430)
	id := em.cache.NewID()
	fb.Emit(Instr(OpCompositeExtract, Operand(uint32(resultTypeID)), ResultOperand(id), Operand(uint32(objID)), Operand(uint32(n.FieldIndex))))
	return id, resultType
}

func (em *emitter) emitAccessIndex(fb *FuncBuilder, n *ast.AccessIndexExpr) (ID, types.Type) {
	if ptr, typ, _, ok := em.lvalue(fb, n); ok {
		return em.loadVar(fb, ptr, typ), typ
	}
	objID, _ := em.emitExpr(fb, n.Object)
	resultType := n.Type()
	resultTypeID := em.typeID(resultType, layout.Std430)
	id := em.cache.NewID()
	// A non-pointer composite (a call result, not a variable) can only
	// be indexed here by a literal constant — SPIR-V's OpCompositeExtract
	// takes literal indices, and a genuinely dynamic index into a bare
	// rvalue vector falls back to OpVectorExtractDynamic.
	if ce, ok := n.Index.(*ast.ConstantExpr); ok {
		fb.Emit(Instr(OpCompositeExtract, Operand(uint32(resultTypeID)), ResultOperand(id), Operand(uint32(objID)), Operand(uint32(ce.Value.I64))))
		return id, resultType
	}
	idxID, _ := em.emitExpr(fb, n.Index)
	fb.Emit(Instr(OpVectorExtractDynamic, Operand(uint32(resultTypeID)), ResultOperand(id), Operand(uint32(objID)), Operand(uint32(idxID))))
	return id, resultType
}

func (em *emitter) emitCallFunction(fb *FuncBuilder, n *ast.CallFunctionExpr) (ID, types.Type) {
	resultType := n.Type()
	if ref, ok := n.Callee.(*ast.FunctionRefExpr); ok {
		info, ok := em.funcs[ref.Function.Index]
		if !ok {
			panic("spirv: call to unregistered function")
		}
		resultTypeID := em.typeID(resultType, layout.Std430)
		id := em.cache.NewID()
		ops := []Operand2{Operand(uint32(resultTypeID)), ResultOperand(id), Operand(uint32(info.id))}
		for _, a := range n.Args {
			aid, _ := em.emitExpr(fb, a)
			ops = append(ops, Operand(uint32(aid)))
		}
		fb.Emit(Instr(OpFunctionCall, ops...))
		return id, resultType
	}
	return em.emitConstructor(fb, resultType, n.Args)
}

// glslOpcode maps a builtins.ID to its GLSL.std.450 extended
// instruction number (the published Khronos enumerant table — the same
// "public wire protocol" justification as the core opcodes).
func glslOpcode(id builtins.ID) (uint32, bool) {
	switch id {
	case builtins.IDSign:
		return 6, true // FSign (SSign for integers isn't reachable: sign() is float-only in NZSL)
	case builtins.IDFloor:
		return 8, true
	case builtins.IDCeil:
		return 9, true
	case builtins.IDFract:
		return 10, true
	case builtins.IDSin:
		return 13, true
	case builtins.IDCos:
		return 14, true
	case builtins.IDTan:
		return 15, true
	case builtins.IDPow:
		return 26, true
	case builtins.IDExp:
		return 27, true
	case builtins.IDLog:
		return 28, true
	case builtins.IDExp2:
		return 29, true
	case builtins.IDLog2:
		return 30, true
	case builtins.IDSqrt:
		return 31, true
	case builtins.IDInverseSqrt:
		return 32, true
	case builtins.IDAbs:
		return 4, true // FAbs (abs on an integer is rare in shader source; treated uniformly as float)
	case builtins.IDMin:
		return 37, true // FMin
	case builtins.IDMax:
		return 40, true // FMax
	case builtins.IDClamp:
		return 43, true // FClamp
	case builtins.IDMix:
		return 46, true // FMix
	case builtins.IDStep:
		return 48, true
	case builtins.IDSmoothstep:
		return 49, true
	case builtins.IDCross:
		return 68, true
	case builtins.IDNormalize:
		return 69, true
	case builtins.IDLength:
		return 66, true
	case builtins.IDDistance:
		return 67, true
	case builtins.IDReflect:
		return 71, true
	case builtins.IDRefract:
		return 72, true
	}
	return 0, false
}

// emitConditional lowers `const_select(cond, whenTrue, whenFalse)` via
// OpSelect. The name suggests the resolver usually narrows this to a
// constant before code generation ever sees it, but OpSelect handles
// any leftover non-constant condition correctly too, so no extra
// special-casing is needed here.
func (em *emitter) emitConditional(fb *FuncBuilder, n *ast.ConditionalExpr) (ID, types.Type) {
	condID, _ := em.emitExpr(fb, n.Condition)
	trueID, _ := em.emitExpr(fb, n.WhenTrue)
	falseID, _ := em.emitExpr(fb, n.WhenFalse)
	resultType := n.Type()
	resultTypeID := em.typeID(resultType, layout.Std430)
	id := em.cache.NewID()
	fb.Emit(Instr(OpSelect, Operand(uint32(resultTypeID)), ResultOperand(id), Operand(uint32(condID)), Operand(uint32(trueID)), Operand(uint32(falseID))))
	return id, resultType
}

func (em *emitter) emitIntrinsic(fb *FuncBuilder, n *ast.IntrinsicExpr) (ID, types.Type) {
	sig, ok := builtins.LookupID(builtins.ID(n.IntrinsicID))
	if !ok {
		panic(fmt.Sprintf("spirv: unknown intrinsic id %d", n.IntrinsicID))
	}
	argIDs := make([]ID, len(n.Args))
	argTypes := make([]types.Type, len(n.Args))
	for i, a := range n.Args {
		argIDs[i], argTypes[i] = em.emitExpr(fb, a)
	}
	resultType := builtins.ResultType(sig, argTypes)

	if sig.ID == builtins.IDDot {
		resultTypeID := em.typeID(resultType, layout.Std430)
		id := em.cache.NewID()
		fb.Emit(Instr(OpDot, Operand(uint32(resultTypeID)), ResultOperand(id), Operand(uint32(argIDs[0])), Operand(uint32(argIDs[1]))))
		return id, resultType
	}
	if sig.ID == builtins.IDArraySize {
		// OpArrayLength only operates on a runtime array that is a
		// struct member, addressed through a pointer to the enclosing
		// struct plus the member index — a bare dyn_array value has no
		// other way to ask SPIR-V for its length.
		ptr, _, _, ok := em.lvalue(fb, n.Args[0])
		if !ok {
			panic("spirv: ArraySize argument must be an addressable storage-buffer member")
		}
		resultTypeID := em.typeID(resultType, layout.Std430)
		id := em.cache.NewID()
		fb.Emit(Instr(OpArrayLength, Operand(uint32(resultTypeID)), ResultOperand(id), Operand(uint32(ptr)), Operand(0)))
		return id, resultType
	}

	opcode, ok := glslOpcode(sig.ID)
	if !ok {
		panic(fmt.Sprintf("spirv: intrinsic %q has no GLSL.std.450 mapping", sig.Name))
	}
	setID := em.cache.ExtInstSet("GLSL.std.450")
	resultTypeID := em.typeID(resultType, layout.Std430)
	id := em.cache.NewID()
	ops := []Operand2{Operand(uint32(resultTypeID)), ResultOperand(id), Operand(uint32(setID)), Operand(opcode)}
	for _, a := range argIDs {
		ops = append(ops, Operand(uint32(a)))
	}
	fb.Emit(Instr(OpExtInst, ops...))
	return id, resultType
}
