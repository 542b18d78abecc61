package spirv

import (
	"github.com/nzslang/nzslc/internal/ast"
	"github.com/nzslang/nzslc/internal/layout"
	"github.com/nzslang/nzslc/internal/types"
)

// rawBlock is one basic block under construction: a label id plus its
// body instructions, ending once a terminator (OpBranch*, OpReturn*,
// OpKill, OpUnreachable) has been appended.
type rawBlock struct {
	label      ID
	instrs     []Instruction
	terminated bool
}

// localVar is one Function-storage-class local: its pointer id and the
// pointee's NZSL type, needed to load/store through it.
type localVar struct {
	ptr ID
	typ types.Type
}

// ParamInfo names a function parameter's already-allocated id and
// SPIR-V type id, supplied to Finish.
type ParamInfo struct {
	ID     ID
	TypeID ID
}

// FuncBuilder assembles one function's structured-control-flow body
// (§4.10.4, §4.10.6): a sequence of basic blocks, with Function-storage
// locals hoisted to the entry block per SPIR-V's requirement that every
// OpVariable Function precede all other instructions in a function's
// first block. Grounded on SpirvAstVisitor.cpp's per-function visitor,
// which keeps exactly this separation between "variable declarations"
// and "current instruction block".
type FuncBuilder struct {
	cache *Cache
	lc    *layout.Computer

	retType   types.Type
	retTypeID ID

	localDecls []Instruction
	blocks     []*rawBlock
	cur        *rawBlock

	vars map[ast.Ref]localVar

	breakTargets    []ID
	continueTargets []ID

	// IsEntry marks a function lowered as a shader entry point: its
	// return must become per-field stores into Output-storage-class
	// globals (or a direct store for a non-struct return) followed by a
	// bare OpReturn, never OpReturnValue, since SPIR-V entry-point
	// functions are void.
	IsEntry      bool
	EntryOutputs []EntryOutput

	// resolveType/resolvePointerType let the emitter supply struct-aware
	// type resolution (a plain types.Type switch can't build
	// OpTypeStruct on its own — it needs the struct's member list).
	resolveType        func(types.Type) ID
	resolvePointerType func(storageClass uint32, t types.Type) ID
}

// EntryOutput binds one value produced by an entry point's return to
// the Output-storage-class global it must be stored into. FieldIndex
// is -1 when the whole returned value (not a struct field) maps to a
// single output variable.
type EntryOutput struct {
	VarID      ID
	FieldIndex int
	Type       types.Type
}

// NewFuncBuilder starts a function whose body will be built against
// cache, using lc (a layout.Computer in Std430 mode) for local variable
// and parameter pointer types. resolveType/resolvePointerType resolve
// a types.Type (including *types.Struct) to its SPIR-V id.
func NewFuncBuilder(cache *Cache, lc *layout.Computer, retType types.Type, retTypeID ID, resolveType func(types.Type) ID, resolvePointerType func(uint32, types.Type) ID) *FuncBuilder {
	return &FuncBuilder{
		cache:              cache,
		lc:                 lc,
		retType:            retType,
		retTypeID:          retTypeID,
		vars:               make(map[ast.Ref]localVar),
		resolveType:        resolveType,
		resolvePointerType: resolvePointerType,
	}
}

// NewBlock opens a fresh basic block and makes it current, returning
// its label id.
func (fb *FuncBuilder) NewBlock() ID {
	id := fb.cache.NewID()
	fb.blocks = append(fb.blocks, &rawBlock{label: id})
	fb.cur = fb.blocks[len(fb.blocks)-1]
	return id
}

// NewLabel allocates a block label id without opening it yet, for
// branch instructions that must name a target block before that block
// has been built (loop headers, if/else merge points).
func (fb *FuncBuilder) NewLabel() ID { return fb.cache.NewID() }

// Begin opens a block under a label already allocated via NewLabel and
// makes it current.
func (fb *FuncBuilder) Begin(label ID) {
	fb.blocks = append(fb.blocks, &rawBlock{label: label})
	fb.cur = fb.blocks[len(fb.blocks)-1]
}

// SetBlock switches the current insertion point to an already-opened
// block (used when finishing one arm of a branch and resuming the
// merge block built earlier).
func (fb *FuncBuilder) SetBlock(id ID) {
	for _, b := range fb.blocks {
		if b.label == id {
			fb.cur = b
			return
		}
	}
}

// Current returns the current block's label.
func (fb *FuncBuilder) Current() ID { return fb.cur.label }

// Terminated reports whether the current block already has a
// terminator (a return/branch/kill already emitted).
func (fb *FuncBuilder) Terminated() bool { return fb.cur.terminated }

// Emit appends instr to the current block. A no-op once the block is
// terminated — code after `return`/`break`/`continue` is unreachable
// and SPIR-V forbids instructions after a block's terminator.
func (fb *FuncBuilder) Emit(instr Instruction) {
	if fb.cur.terminated {
		return
	}
	fb.cur.instrs = append(fb.cur.instrs, instr)
}

// Terminate appends instr as the current block's terminator.
func (fb *FuncBuilder) Terminate(instr Instruction) {
	if fb.cur.terminated {
		return
	}
	fb.cur.instrs = append(fb.cur.instrs, instr)
	fb.cur.terminated = true
}

// DeclareLocal allocates a Function-storage-class pointer for a
// `let`/`var`/parameter named ref, hoisting its OpVariable to the
// entry block per SPIR-V's layout rule.
func (fb *FuncBuilder) DeclareLocal(ref ast.Ref, name string, typ types.Type) (ptrID ID, typeID ID) {
	typeID = fb.resolveType(typ)
	ptrTypeID := fb.resolvePointerType(StorageClassFunction, typ)
	id := fb.cache.NewID()
	fb.vars[ref] = localVar{ptr: id, typ: typ}
	if name != "" {
		fb.cache.Name(id, name)
	}
	fb.localDecls = append(fb.localDecls, Instr(OpVariable, Operand(uint32(ptrTypeID)), ResultOperand(id), Operand(StorageClassFunction)))
	return id, typeID
}

// BindParam registers ref (a function parameter) against an
// already-allocated Function-storage pointer holding its staged value
// — NZSL parameters are staged into a local variable on entry so
// reads/writes inside the body go through the same OpLoad/OpStore path
// as any other local (§4.10.3 "SSA locals for call-argument staging").
func (fb *FuncBuilder) BindParam(ref ast.Ref, ptr ID, typ types.Type) {
	fb.vars[ref] = localVar{ptr: ptr, typ: typ}
}

// Lookup resolves ref to its pointer id and pointee type.
func (fb *FuncBuilder) Lookup(ref ast.Ref) (ID, types.Type, bool) {
	v, ok := fb.vars[ref]
	return v.ptr, v.typ, ok
}

// PushLoopTargets records the break/continue targets for a loop body.
func (fb *FuncBuilder) PushLoopTargets(breakTarget, continueTarget ID) {
	fb.breakTargets = append(fb.breakTargets, breakTarget)
	fb.continueTargets = append(fb.continueTargets, continueTarget)
}

// PopLoopTargets discards the innermost loop's break/continue targets.
func (fb *FuncBuilder) PopLoopTargets() {
	fb.breakTargets = fb.breakTargets[:len(fb.breakTargets)-1]
	fb.continueTargets = fb.continueTargets[:len(fb.continueTargets)-1]
}

// BreakTarget returns the innermost loop's merge block, if inside one.
func (fb *FuncBuilder) BreakTarget() (ID, bool) {
	if len(fb.breakTargets) == 0 {
		return 0, false
	}
	return fb.breakTargets[len(fb.breakTargets)-1], true
}

// ContinueTarget returns the innermost loop's continue block, if
// inside one.
func (fb *FuncBuilder) ContinueTarget() (ID, bool) {
	if len(fb.continueTargets) == 0 {
		return 0, false
	}
	return fb.continueTargets[len(fb.continueTargets)-1], true
}

// Finish renders the complete OpFunction..OpFunctionEnd instruction
// stream. A block left unterminated gets an implicit terminator: plain
// OpReturn for a void function (§4.10.4 "implicit OpReturn if
// unterminated", reachable when the sema pass (C6) already guarantees
// no value-returning path falls off the end), or OpUnreachable for a
// value-returning one — the only way such a block goes unterminated is
// a branch-chain merge block with no live predecessor (every arm
// already returned), which OpReturn can't legally close since it
// requires a value there.
func (fb *FuncBuilder) Finish(funcID, funcTypeID ID, params []ParamInfo) []Instruction {
	_, isVoid := fb.retType.(*types.None)
	out := []Instruction{
		Instr(OpFunction, Operand(uint32(fb.retTypeID)), ResultOperand(funcID), Operand(0), Operand(uint32(funcTypeID))),
	}
	for _, p := range params {
		out = append(out, Instr(OpFunctionParameter, Operand(uint32(p.TypeID)), ResultOperand(p.ID)))
	}
	for i, b := range fb.blocks {
		out = append(out, Instr(OpLabel, ResultOperand(b.label)))
		if i == 0 {
			out = append(out, fb.localDecls...)
		}
		out = append(out, b.instrs...)
		if !b.terminated {
			if isVoid {
				out = append(out, Instr(OpReturn))
			} else {
				out = append(out, Instr(OpUnreachable))
			}
		}
	}
	out = append(out, Instr(OpFunctionEnd))
	return out
}
