// GLSL backend (C11, §4.11/§6.4): transforms a resolved module's single
// entry point into a GLSL translation unit. Grounded on the same
// statement/expression walk as nzsl.go, adapted to GLSL restrictions:
// entry-point parameter/return structs flatten to `in`/`out` globals,
// the entry function always renders as `void main()`, and identifiers
// colliding with GLSL reserved words get a trailing underscore.
//
// This is the "interface level" emitter the spec calls for (§0 OUT OF
// SCOPE names "the concrete emitter prose for GLSL/WGSL" as an external
// collaborator's concern): common constructs round-trip, but texture
// arrays, storage-buffer atomics, and multiple simultaneous entry
// points in one module are not covered.
package printer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nzslang/nzslc/internal/ast"
	"github.com/nzslang/nzslc/internal/builtins"
	"github.com/nzslang/nzslc/internal/types"
)

// GLSLOptions controls GLSL generation (§6.1's `--gl-*` flags).
type GLSLOptions struct {
	ES      bool // --gl-es: GLSL ES instead of desktop GLSL
	Version int  // --gl-version: version x100, e.g. 330
	FlipY   bool // --gl-flipy
	RemapZ  bool // --gl-remapz
}

// glslPrinter renders one module's chosen entry point plus every
// function/struct/external the module declares (reachable or not), as
// GLSL source text.
type glslPrinter struct {
	mod     *ast.Module
	opts    GLSLOptions
	structs map[uint32]*ast.DeclareStructStmt
	buf     strings.Builder
	indent  int

	entry      *ast.DeclareFunctionStmt
	inputs     []glslIOVar
	outputs    []glslIOVar
	outVarName map[int]string // struct field index (or -1 for scalar return) -> global name
}

type glslIOVar struct {
	name string
	typ  types.Type
	loc  int
}

// GenerateGLSL renders mod's first entry-point function as a complete
// GLSL translation unit (§6.4 "a single translation unit per entry
// point"). If mod declares no entry function, it emits just the
// ordinary declarations (structs, externals, functions) with no
// `main`.
func GenerateGLSL(mod *ast.Module, opts GLSLOptions) string {
	p := &glslPrinter{
		mod:        mod,
		opts:       opts,
		structs:    make(map[uint32]*ast.DeclareStructStmt),
		outVarName: make(map[int]string),
	}
	for _, s := range mod.Root.Statements {
		if d, ok := s.(*ast.DeclareStructStmt); ok {
			p.structs[d.Ref.Index] = d
		}
	}
	for _, s := range mod.Root.Statements {
		if fn, ok := s.(*ast.DeclareFunctionStmt); ok && fn.Entry != ast.StageNone {
			p.entry = fn
			break
		}
	}

	p.printVersionDirective()

	for _, s := range mod.Root.Statements {
		switch d := s.(type) {
		case *ast.DeclareStructStmt:
			// A param/return struct used only for I/O flattening still
			// needs its GLSL struct declared: the entry body keeps
			// constructing and assigning it as an ordinary local value
			// (flattenEntryIO only changes how its fields cross the
			// shader-stage boundary, not whether the type exists).
			p.printStruct(d)
		case *ast.DeclareExternalStmt:
			p.printExternal(d)
		}
	}

	if p.entry != nil {
		p.flattenEntryIO()
	}

	for _, s := range mod.Root.Statements {
		if fn, ok := s.(*ast.DeclareFunctionStmt); ok && fn != p.entry {
			p.printFunction(fn, "")
		}
	}
	if p.entry != nil {
		p.printFunction(p.entry, "main")
	}

	return p.buf.String()
}

func (p *glslPrinter) printVersionDirective() {
	version := p.opts.Version
	if version == 0 {
		version = 330
	}
	p.buf.WriteString(fmt.Sprintf("#version %d", version))
	if p.opts.ES {
		p.buf.WriteString(" es")
	}
	p.buf.WriteString("\n\n")
}

// flattenEntryIO assigns one `in`/`out` global per field of the entry
// function's parameter structs and return type (§4.10.3.d / §4.10.6,
// mirrored here from the SPIR-V backend's declareIOVar), sequentially
// numbering `layout(location = n)` unless a builtin tag overrides it.
func (p *glslPrinter) flattenEntryIO() {
	loc := 0
	for _, param := range p.entry.Params {
		if st, ok := types.ResolveAlias(param.Type).(*types.Struct); ok {
			decl := p.structs[st.Index]
			for _, mem := range decl.Members {
				if bi, ok := glBuiltinName(mem.Builtin, false); ok {
					p.inputs = append(p.inputs, glslIOVar{name: bi, typ: mem.Type, loc: -1})
					continue
				}
				name := "in_" + mem.Name
				p.inputs = append(p.inputs, glslIOVar{name: name, typ: mem.Type, loc: loc})
				loc++
			}
		} else {
			name := "in_" + param.Name
			p.inputs = append(p.inputs, glslIOVar{name: name, typ: param.Type, loc: loc})
			loc++
		}
	}

	loc = 0
	if st, ok := types.ResolveAlias(p.entry.ReturnType).(*types.Struct); ok {
		decl := p.structs[st.Index]
		for i, mem := range decl.Members {
			if bi, ok := glBuiltinName(mem.Builtin, true); ok {
				p.outVarName[i] = bi
				continue
			}
			name := "out_" + mem.Name
			p.outputs = append(p.outputs, glslIOVar{name: name, typ: mem.Type, loc: loc})
			p.outVarName[i] = name
			loc++
		}
	} else if _, isNone := p.entry.ReturnType.(*types.None); !isNone {
		name := "out_" + p.entry.Name
		p.outputs = append(p.outputs, glslIOVar{name: name, typ: p.entry.ReturnType, loc: loc})
		p.outVarName[-1] = name
	}

	for _, in := range p.inputs {
		if in.loc < 0 {
			continue // builtin, no explicit location
		}
		p.buf.WriteString(fmt.Sprintf("layout(location = %d) in %s %s;\n", in.loc, p.typeName(in.typ), in.name))
	}
	for _, out := range p.outputs {
		p.buf.WriteString(fmt.Sprintf("layout(location = %d) out %s %s;\n", out.loc, p.typeName(out.typ), out.name))
	}
	if len(p.inputs) > 0 || len(p.outputs) > 0 {
		p.buf.WriteString("\n")
	}
}

// glBuiltinName maps an NZSL builtin tag to its GLSL built-in
// identifier. `isOutput` only matters for `frag_depth`, which maps to the
// write-only gl_FragDepth as an output and to nothing as an input;
// `position` maps to gl_Position either way. An unrecognized tag falls
// back to an ordinary location-numbered varying.
func glBuiltinName(tag string, isOutput bool) (string, bool) {
	switch tag {
	case "position":
		return "gl_Position", true
	case "vertex_index":
		return "gl_VertexID", true
	case "instance_index":
		return "gl_InstanceID", true
	case "frag_coord":
		return "gl_FragCoord", true
	case "front_facing":
		return "gl_FrontFacing", true
	case "frag_depth":
		if isOutput {
			return "gl_FragDepth", true
		}
	}
	return "", false
}

func (p *glslPrinter) writeIndent() { p.buf.WriteString(strings.Repeat("\t", p.indent)) }

func (p *glslPrinter) printStruct(d *ast.DeclareStructStmt) {
	p.buf.WriteString("struct " + glslIdent(d.Name) + " {\n")
	p.indent++
	for _, m := range d.Members {
		p.writeIndent()
		p.buf.WriteString(p.typeName(m.Type) + " " + glslIdent(m.Name) + ";\n")
	}
	p.indent--
	p.buf.WriteString("};\n\n")
}

// printExternal renders a uniform block (Uniform/Storage struct
// resources) or a bare sampler/texture binding, always with an explicit
// `layout(set = S, binding = B)` qualifier. Bindings are not
// linearized, and no JSON binding-map side file is written.
func (p *glslPrinter) printExternal(d *ast.DeclareExternalStmt) {
	for _, m := range d.Members {
		set, binding := uint32(0), uint32(0)
		if m.Set.IsResultingValue() {
			set = m.Set.GetResultingValue()
		}
		if m.Binding.IsResultingValue() {
			binding = m.Binding.GetResultingValue()
		}
		layout := fmt.Sprintf("layout(set = %d, binding = %d)", set, binding)
		switch t := types.ResolveAlias(m.Type).(type) {
		case *types.Uniform:
			p.printUniformBlock(layout, m.Name, t.StructIndex)
		case *types.Storage:
			p.printUniformBlock(layout+" buffer", m.Name, t.StructIndex)
		case *types.Sampler, *types.Texture:
			p.buf.WriteString(layout + " uniform " + p.typeName(m.Type) + " " + glslIdent(m.Name) + ";\n\n")
		default:
			p.buf.WriteString(layout + " uniform " + p.typeName(m.Type) + " " + glslIdent(m.Name) + ";\n\n")
		}
	}
}

func (p *glslPrinter) printUniformBlock(qualifiers, name string, structIdx uint32) {
	decl := p.structs[structIdx]
	p.buf.WriteString(qualifiers + " " + glslIdent(name) + "Block {\n")
	p.indent++
	if decl != nil {
		for _, m := range decl.Members {
			p.writeIndent()
			p.buf.WriteString(p.typeName(m.Type) + " " + glslIdent(m.Name) + ";\n")
		}
	}
	p.indent--
	p.buf.WriteString("} " + glslIdent(name) + ";\n\n")
}

// printFunction renders d; overrideName forces the entry point's GLSL
// name to "main" (§6.4 "generated entry function is always main"),
// rewrites its body's returns into writes to the flattened output
// globals, and drops its parameter list in favor of the `in` globals
// flattenEntryIO already declared.
func (p *glslPrinter) printFunction(d *ast.DeclareFunctionStmt, overrideName string) {
	name := overrideName
	if name == "" {
		name = glslIdent(d.Name)
	}
	retType := "void"
	if overrideName == "" {
		if _, isUnit := d.ReturnType.(*types.None); d.ReturnType != nil && !isUnit {
			retType = p.typeName(d.ReturnType)
		}
	}
	p.buf.WriteString(retType + " " + name + "(")
	if overrideName == "" {
		for i, param := range d.Params {
			if i > 0 {
				p.buf.WriteString(", ")
			}
			switch param.Semantic {
			case ast.SemanticOut:
				p.buf.WriteString("out ")
			case ast.SemanticInout:
				p.buf.WriteString("inout ")
			}
			p.buf.WriteString(p.typeName(param.Type) + " " + glslIdent(param.Name))
		}
	}
	p.buf.WriteString(") {\n")
	p.indent++
	isEntry := overrideName != ""
	if isEntry {
		p.printEntryPrologue()
	}
	if d.Body != nil {
		for _, s := range d.Body.Statements {
			p.printStmt(s, isEntry)
		}
	}
	if isEntry {
		p.printEntryEpilogueFlipRemap()
	}
	p.indent--
	p.buf.WriteString("}\n\n")
}

// printEntryPrologue stages each flattened `in` global back into the
// entry function's declared parameter struct(s), so the body's field
// accesses (`input.position`, …) keep working unmodified.
func (p *glslPrinter) printEntryPrologue() {
	idx := 0
	for _, param := range p.entry.Params {
		p.writeIndent()
		p.buf.WriteString(p.typeName(param.Type) + " " + glslIdent(param.Name))
		if st, ok := types.ResolveAlias(param.Type).(*types.Struct); ok {
			decl := p.structs[st.Index]
			parts := make([]string, len(decl.Members))
			for i := range decl.Members {
				parts[i] = p.inputs[idx].name
				idx++
			}
			p.buf.WriteString(" = " + p.typeName(param.Type) + "(" + strings.Join(parts, ", ") + ");\n")
		} else {
			p.buf.WriteString(" = " + p.inputs[idx].name + ";\n")
			idx++
		}
	}
}

// printEntryEpilogueFlipRemap appends the `--gl-flipy`/`--gl-remapz`
// clip-space fixups (§6.1) just before the generated `main` returns,
// when the entry actually wrote `gl_Position`.
func (p *glslPrinter) printEntryEpilogueFlipRemap() {
	wrotePosition := false
	for _, out := range p.outVarName {
		if out == "gl_Position" {
			wrotePosition = true
		}
	}
	if !wrotePosition {
		return
	}
	if p.opts.FlipY {
		p.writeIndent()
		p.buf.WriteString("gl_Position.y = -gl_Position.y;\n")
	}
	if p.opts.RemapZ {
		p.writeIndent()
		p.buf.WriteString("gl_Position.z = gl_Position.z * 2.0 - gl_Position.w;\n")
	}
}

func (p *glslPrinter) printStmt(s ast.Stmt, inEntry bool) {
	switch n := s.(type) {
	case *ast.NoOpStmt:
		return
	case *ast.MultiStmt:
		for _, c := range n.Statements {
			p.printStmt(c, inEntry)
		}
	case *ast.ScopedStmt:
		p.writeIndent()
		p.buf.WriteString("{\n")
		p.indent++
		if n.Body != nil {
			for _, c := range n.Body.Statements {
				p.printStmt(c, inEntry)
			}
		}
		p.indent--
		p.writeIndent()
		p.buf.WriteString("}\n")
	case *ast.BranchStmt:
		for i, c := range n.Cases {
			p.writeIndent()
			if i > 0 {
				p.buf.WriteString("else ")
			}
			p.buf.WriteString("if (" + p.exprString(c.Condition) + ") {\n")
			p.printBlockBody(c.Body, inEntry)
			p.writeIndent()
			p.buf.WriteString("}\n")
		}
		if n.Else != nil {
			p.writeIndent()
			p.buf.WriteString("else {\n")
			p.printBlockBody(n.Else, inEntry)
			p.writeIndent()
			p.buf.WriteString("}\n")
		}
	case *ast.ConditionalStmt:
		p.writeIndent()
		p.buf.WriteString("if (" + p.exprString(n.Condition) + ") ")
		p.printInlineBlock(n.Then, inEntry)
		if n.Else != nil {
			p.writeIndent()
			p.buf.WriteString("else ")
			p.printInlineBlock(n.Else, inEntry)
		}
	case *ast.WhileStmt:
		p.writeIndent()
		p.buf.WriteString("while (" + p.exprString(n.Condition) + ") {\n")
		p.printBlockBody(n.Body, inEntry)
		p.writeIndent()
		p.buf.WriteString("}\n")
	case *ast.ForStmt:
		p.writeIndent()
		step := "1"
		if n.Step != nil {
			step = p.exprString(n.Step)
		}
		p.buf.WriteString(fmt.Sprintf("for (int %s = %s; %s < %s; %s += %s) {\n",
			glslIdent(n.VarName), p.exprString(n.From), glslIdent(n.VarName), p.exprString(n.To), glslIdent(n.VarName), step))
		p.printBlockBody(n.Body, inEntry)
		p.writeIndent()
		p.buf.WriteString("}\n")
	case *ast.ForEachStmt:
		p.writeIndent()
		p.buf.WriteString(fmt.Sprintf("// for-each over %s not representable in GLSL; loop body inlined manually\n", p.exprString(n.Container)))
		p.printBlockBody(n.Body, inEntry)
	case *ast.DeclareConstStmt:
		p.writeIndent()
		p.buf.WriteString("const " + p.constTypeName(n) + " " + glslIdent(n.Name) + " = " + p.exprString(n.Initializer) + ";\n")
	case *ast.DeclareVariableStmt:
		p.writeIndent()
		typ := "float"
		if n.Type != nil {
			typ = p.typeName(n.Type)
		}
		p.buf.WriteString(typ + " " + glslIdent(n.Name))
		if n.Initializer != nil {
			p.buf.WriteString(" = " + p.exprString(n.Initializer))
		}
		p.buf.WriteString(";\n")
	case *ast.ReturnStmt:
		p.writeIndent()
		if inEntry {
			p.printEntryReturn(n.Value)
		} else if n.Value != nil {
			p.buf.WriteString("return " + p.exprString(n.Value) + ";\n")
		} else {
			p.buf.WriteString("return;\n")
		}
	case *ast.BreakStmt:
		p.writeIndent()
		p.buf.WriteString("break;\n")
	case *ast.ContinueStmt:
		p.writeIndent()
		p.buf.WriteString("continue;\n")
	case *ast.DiscardStmt:
		p.writeIndent()
		p.buf.WriteString("discard;\n")
	case *ast.ExpressionStmt:
		p.writeIndent()
		p.buf.WriteString(p.exprString(n.Expr) + ";\n")
	default:
		return
	}
}

// printEntryReturn scatters the entry function's returned value across
// the flattened `out` globals computed by flattenEntryIO, then emits a
// bare `return;` — GLSL's `main` is void.
func (p *glslPrinter) printEntryReturn(value ast.Expr) {
	if value == nil {
		p.buf.WriteString("return;\n")
		return
	}
	valStr := p.exprString(value)
	if st, ok := types.ResolveAlias(p.entry.ReturnType).(*types.Struct); ok {
		scratch := "__ret"
		p.buf.WriteString(p.typeName(p.entry.ReturnType) + " " + scratch + " = " + valStr + ";\n")
		decl := p.structs[st.Index]
		for i, mem := range decl.Members {
			name, ok := p.outVarName[i]
			if !ok {
				continue
			}
			p.writeIndent()
			p.buf.WriteString(fmt.Sprintf("%s = %s.%s;\n", name, scratch, glslIdent(mem.Name)))
		}
	} else if name, ok := p.outVarName[-1]; ok {
		p.buf.WriteString(name + " = " + valStr + ";\n")
	}
	p.writeIndent()
	p.buf.WriteString("return;\n")
}

func (p *glslPrinter) printBlockBody(m *ast.MultiStmt, inEntry bool) {
	p.indent++
	if m != nil {
		for _, c := range m.Statements {
			p.printStmt(c, inEntry)
		}
	}
	p.indent--
}

func (p *glslPrinter) printInlineBlock(s ast.Stmt, inEntry bool) {
	p.buf.WriteString("{\n")
	switch n := s.(type) {
	case *ast.MultiStmt:
		p.printBlockBody(n, inEntry)
	case *ast.ScopedStmt:
		p.printBlockBody(n.Body, inEntry)
	default:
		p.indent++
		p.printStmt(s, inEntry)
		p.indent--
	}
	p.writeIndent()
	p.buf.WriteString("}\n")
}

func (p *glslPrinter) exprString(e ast.Expr) string {
	scratch := &glslPrinter{mod: p.mod, opts: p.opts, structs: p.structs, entry: p.entry, outVarName: p.outVarName, inputs: p.inputs}
	scratch.printExpr(e)
	return scratch.buf.String()
}

func (p *glslPrinter) printExpr(e ast.Expr) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *ast.ConstantExpr:
		p.buf.WriteString(glslConstString(n.Value))
	case *ast.IdentifierExpr:
		p.buf.WriteString(glslIdent(n.Name))
	case *ast.IdentifierValueExpr:
		p.buf.WriteString(glslIdent(n.Name))
	case *ast.VariableValueExpr:
		p.buf.WriteString(glslIdent(p.symbolName(ast.CatVariable, n.Variable)))
	case *ast.ConstantRefExpr:
		p.buf.WriteString(glslIdent(p.symbolName(ast.CatConstant, n.Constant)))
	case *ast.FunctionRefExpr:
		p.buf.WriteString(glslIdent(p.symbolName(ast.CatFunction, n.Function)))
	case *ast.AccessFieldExpr:
		p.printExpr(n.Object)
		p.buf.WriteString("." + glslIdent(n.FieldName))
	case *ast.AccessIdentifierExpr:
		p.printExpr(n.Object)
		p.buf.WriteString("." + glslIdent(n.Name))
	case *ast.AccessIndexExpr:
		p.printExpr(n.Object)
		p.buf.WriteString("[")
		p.printExpr(n.Index)
		p.buf.WriteString("]")
	case *ast.SwizzleExpr:
		p.printExpr(n.Object)
		p.buf.WriteString("." + swizzleString(n.Components))
	case *ast.AssignExpr:
		p.printExpr(n.Left)
		p.buf.WriteString(" " + assignOpString(n.Op) + " ")
		p.printExpr(n.Right)
	case *ast.BinaryExpr:
		p.buf.WriteString("(")
		p.printExpr(n.Left)
		p.buf.WriteString(" " + binaryOpString(n.Op) + " ")
		p.printExpr(n.Right)
		p.buf.WriteString(")")
	case *ast.UnaryExpr:
		p.buf.WriteString(unaryOpString(n.Op))
		p.printExpr(n.Operand)
	case *ast.CastExpr:
		p.buf.WriteString(p.typeName(n.TargetType) + "(")
		p.printArgs(n.Args)
		p.buf.WriteString(")")
	case *ast.ConditionalExpr:
		p.buf.WriteString("(")
		p.printExpr(n.Condition)
		p.buf.WriteString(" ? ")
		p.printExpr(n.WhenTrue)
		p.buf.WriteString(" : ")
		p.printExpr(n.WhenFalse)
		p.buf.WriteString(")")
	case *ast.CallFunctionExpr:
		p.printExpr(n.Callee)
		p.buf.WriteString("(")
		p.printArgs(n.Args)
		p.buf.WriteString(")")
	case *ast.IntrinsicExpr:
		p.buf.WriteString(glslIntrinsicName(n.IntrinsicID) + "(")
		p.printArgs(n.Args)
		p.buf.WriteString(")")
	default:
		p.buf.WriteString("/* unsupported expr */")
	}
}

func (p *glslPrinter) printArgs(args []ast.Expr) {
	for i, a := range args {
		if i > 0 {
			p.buf.WriteString(", ")
		}
		p.printExpr(a)
	}
}

func (p *glslPrinter) symbolName(cat ast.SymbolCategory, ref ast.Ref) string {
	tbl := p.mod.SymbolTable(cat)
	if int(ref.Index) < len(tbl) {
		return tbl[ref.Index].Name
	}
	return fmt.Sprintf("sym%d", ref.Index)
}

func (p *glslPrinter) constTypeName(n *ast.DeclareConstStmt) string {
	if n.Type != nil {
		return p.typeName(n.Type)
	}
	return "float"
}

// glslIntrinsicName maps an internal/builtins intrinsic id to GLSL's
// built-in function name; every NZSL intrinsic except `inverseSqrt`
// (GLSL `inversesqrt`) already shares its GLSL spelling. Unrecognized
// ids, and `ArraySize` (which has no GLSL free function), fall back to
// a numbered placeholder rather than guessing wrong.
func glslIntrinsicName(id uint32) string {
	sig, ok := builtins.LookupID(builtins.ID(id))
	if !ok || sig.ID == builtins.IDArraySize {
		return fmt.Sprintf("intrinsic_%d", id)
	}
	if sig.ID == builtins.IDInverseSqrt {
		return "inversesqrt"
	}
	return sig.Name
}

func glslConstString(c ast.Const) string {
	switch c.Kind {
	case ast.KBool:
		return strconv.FormatBool(c.Bool)
	case ast.KF32, ast.KF64, ast.KFloatLiteral:
		return strconv.FormatFloat(c.F64, 'g', -1, 64)
	case ast.KI32, ast.KIntLiteral:
		return strconv.FormatInt(c.I64, 10)
	case ast.KU32:
		return strconv.FormatInt(c.I64, 10) + "u"
	case ast.KString:
		return strconv.Quote(c.Str)
	default:
		if len(c.Vec) > 0 {
			parts := make([]string, len(c.Vec))
			for i, comp := range c.Vec {
				parts[i] = glslConstString(comp)
			}
			return strings.Join(parts, ", ")
		}
		return "0"
	}
}

// typeName renders t in GLSL syntax: primitive keywords, `vecN`/`matN`
// (desktop GLSL names, not NZSL's bracketed `vecN[T]`), fixed-size
// arrays as a trailing `[N]`, and `samplerND`/`textureND` for
// sampler/texture resources.
func (p *glslPrinter) typeName(t types.Type) string {
	switch tt := types.ResolveAlias(t).(type) {
	case *types.None:
		return "void"
	case *types.Prim:
		return glslPrimName(tt.Kind)
	case *types.Vector:
		return glslVecName(tt.Primitive, tt.ComponentCount)
	case *types.Matrix:
		if tt.Columns == tt.Rows {
			return fmt.Sprintf("mat%d", tt.Columns)
		}
		return fmt.Sprintf("mat%dx%d", tt.Columns, tt.Rows)
	case *types.Array:
		return fmt.Sprintf("%s[%d]", p.typeName(tt.Element), tt.Length)
	case *types.DynArray:
		return p.typeName(tt.Element) + "[]"
	case *types.Struct:
		if decl, ok := p.structs[tt.Index]; ok {
			return glslIdent(decl.Name)
		}
		return fmt.Sprintf("struct%d", tt.Index)
	case *types.Sampler:
		return glslSamplerName(tt.Dim, tt.SampledPrimitive, tt.Depth)
	case *types.Texture:
		return glslSamplerName(tt.Dim, tt.Base, false)
	default:
		return "float"
	}
}

func glslPrimName(prim types.Primitive) string {
	switch prim {
	case types.Bool:
		return "bool"
	case types.F32, types.F64:
		return "float"
	case types.I32:
		return "int"
	case types.U32:
		return "uint"
	default:
		return "float"
	}
}

func glslVecName(prim types.Primitive, n int) string {
	switch prim {
	case types.Bool:
		return fmt.Sprintf("bvec%d", n)
	case types.I32:
		return fmt.Sprintf("ivec%d", n)
	case types.U32:
		return fmt.Sprintf("uvec%d", n)
	default:
		return fmt.Sprintf("vec%d", n)
	}
}

func glslSamplerName(dim types.SamplerDim, base types.Primitive, depth bool) string {
	prefix := ""
	switch base {
	case types.I32:
		prefix = "i"
	case types.U32:
		prefix = "u"
	}
	suffix := map[types.SamplerDim]string{
		types.Dim1D: "1D", types.Dim2D: "2D", types.Dim2DArray: "2DArray",
		types.Dim3D: "3D", types.DimCube: "Cube", types.DimCubeArray: "CubeArray",
	}[dim]
	if depth {
		return prefix + "sampler" + suffix + "Shadow"
	}
	return prefix + "sampler" + suffix
}

// glslReservedWords are GLSL keywords that are legal NZSL identifiers;
// an identifier colliding with one gets a trailing underscore rather
// than failing to compile.
var glslReservedWords = map[string]bool{
	"input": true, "output": true, "class": true, "sample": true,
	"centroid": true, "buffer": true, "texture": true, "common": true,
	"partition": true, "active": true, "filter": true, "image": true,
	"sampler": true, "matrix": true, "row": true, "column": true,
	"public": true, "static": true, "extern": true, "external": true,
	"interface": true, "long": true, "short": true, "half": true,
	"fixed": true, "superp": true, "hvec2": true, "hvec3": true, "hvec4": true,
}

func glslIdent(name string) string {
	if glslReservedWords[name] {
		return name + "_"
	}
	return name
}
