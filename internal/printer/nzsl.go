// Package printer renders a resolved module back into NZSL source text
// (§4.11, C11).
//
// Mirroring the teacher's two-mode design, Print can emit either a
// fully indented, human-readable form or a whitespace-minimal one; the
// decision is made inline while walking the tree rather than as a
// separate minification pass over the text.
package printer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nzslang/nzslc/internal/ast"
	"github.com/nzslang/nzslc/internal/types"
)

// Options controls printer output.
type Options struct {
	// MinifyWhitespace collapses indentation and blank lines between
	// declarations.
	MinifyWhitespace bool
}

// Printer renders one module's Root statements (plus the imports it
// carries) as NZSL source.
type Printer struct {
	mod     *ast.Module
	options Options
	buf     strings.Builder
	indent  int
}

// Print renders mod under options. The source-language round trip law
// (§8) requires that parsing this output reproduce mod's structure; the
// renderer preserves module metadata, inlines imported submodules as
// `module <alias> { … }` blocks (§8 scenario 5), and omits any
// attribute argument whose ExpressionValue hasn't resolved to a
// concrete value.
func Print(mod *ast.Module, options Options) string {
	p := &Printer{mod: mod, options: options}
	p.printModuleHeader()
	for _, s := range mod.Root.Statements {
		p.printTopLevelStmt(s)
	}
	return p.buf.String()
}

func (p *Printer) nl() {
	if !p.options.MinifyWhitespace {
		p.buf.WriteByte('\n')
	}
}

func (p *Printer) writeIndent() {
	if p.options.MinifyWhitespace {
		return
	}
	p.buf.WriteString(strings.Repeat("\t", p.indent))
}

func (p *Printer) printModuleHeader() {
	m := p.mod.Metadata
	major, minor, patch := ast.UnpackVersion(m.LangVersion)
	p.buf.WriteString(fmt.Sprintf("[nzsl_version(%q)]", fmt.Sprintf("%d.%d.%d", major, minor, patch)))
	if m.Author != "" {
		p.buf.WriteString(fmt.Sprintf(" [author(%q)]", m.Author))
	}
	if m.Description != "" {
		p.buf.WriteString(fmt.Sprintf(" [desc(%q)]", m.Description))
	}
	if m.License != "" {
		p.buf.WriteString(fmt.Sprintf(" [license(%q)]", m.License))
	}
	p.buf.WriteString(" module")
	if m.ModuleName != "" {
		p.buf.WriteString(" " + m.ModuleName)
	}
	p.buf.WriteString(";")
	p.nl()
	p.nl()
}

// printImportStmt inlines the imported submodule named by d as a
// `module <alias> { … }` block in place of the original `import …
// from "…" as alias;` line, per §8 scenario 5 ("re-emits the imported
// module as an inlined block"). mod.Imports carries the resolved
// edge (§3.5); a dangling ImportStmt the resolver never attached (e.g.
// one dropped for a resolve error) falls back to the bare import line
// so Print never silently swallows a statement.
func (p *Printer) printImportStmt(d *ast.ImportStmt) {
	for _, imp := range p.mod.Imports {
		if imp.Identifier == d.LocalAlias {
			p.writeIndent()
			p.buf.WriteString("module " + imp.Identifier + " {")
			p.nl()
			p.indent++
			if imp.Module != nil {
				for _, s := range imp.Module.Root.Statements {
					p.printTopLevelStmt(s)
				}
			}
			p.indent--
			p.writeIndent()
			p.buf.WriteString("}")
			p.nl()
			return
		}
	}
	p.writeIndent()
	p.buf.WriteString(fmt.Sprintf("import %s from %q as %s;", d.ModulePath, d.ModulePath, d.LocalAlias))
	p.nl()
}

func (p *Printer) printTopLevelStmt(s ast.Stmt) {
	switch d := s.(type) {
	case *ast.DeclareStructStmt:
		p.printStruct(d)
	case *ast.DeclareConstStmt:
		p.writeIndent()
		p.buf.WriteString("const " + d.Name + " = ")
		p.printExpr(d.Initializer)
		p.buf.WriteString(";")
		p.nl()
	case *ast.DeclareAliasStmt:
		p.writeIndent()
		p.buf.WriteString("alias " + d.Name + " = " + p.typeName(d.Value) + ";")
		p.nl()
	case *ast.DeclareOptionStmt:
		p.printOption(d)
	case *ast.DeclareExternalStmt:
		p.printExternal(d)
	case *ast.DeclareFunctionStmt:
		p.printFunction(d)
	case *ast.ImportStmt:
		p.printImportStmt(d)
	default:
		return
	}
	p.nl()
}

func (p *Printer) printStruct(d *ast.DeclareStructStmt) {
	p.writeIndent()
	p.buf.WriteString("struct " + d.Name)
	p.nl()
	p.writeIndent()
	p.buf.WriteString("{")
	p.nl()
	p.indent++
	for i, m := range d.Members {
		p.writeIndent()
		p.printStructMemberAttrs(m)
		p.buf.WriteString(m.Name + ": " + p.typeName(m.Type))
		if i < len(d.Members)-1 {
			p.buf.WriteString(",")
		}
		p.nl()
	}
	p.indent--
	p.writeIndent()
	p.buf.WriteString("}")
	p.nl()
}

func (p *Printer) printStructMemberAttrs(m ast.DeclareStructMember) {
	var attrs []string
	if m.Builtin != "" {
		attrs = append(attrs, fmt.Sprintf("builtin(%s)", m.Builtin))
	}
	if m.Locations.IsResultingValue() {
		attrs = append(attrs, fmt.Sprintf("location(%d)", m.Locations.GetResultingValue()))
	}
	if m.Interp != "" {
		attrs = append(attrs, fmt.Sprintf("interp(%s)", m.Interp))
	}
	if m.Cond != nil {
		attrs = append(attrs, "cond("+p.exprString(m.Cond)+")")
	}
	if len(attrs) > 0 {
		p.buf.WriteString("[" + strings.Join(attrs, ", ") + "] ")
	}
}

func (p *Printer) printOption(d *ast.DeclareOptionStmt) {
	p.writeIndent()
	p.buf.WriteString("option " + d.Name + ": " + p.typeName(d.Type))
	if d.Default != nil {
		p.buf.WriteString(" = " + p.exprString(d.Default))
	}
	p.buf.WriteString(";")
	p.nl()
}

func (p *Printer) printExternal(d *ast.DeclareExternalStmt) {
	p.writeIndent()
	p.buf.WriteString("external")
	if d.BlockName != "" {
		p.buf.WriteString(" " + d.BlockName)
	}
	p.nl()
	p.writeIndent()
	p.buf.WriteString("{")
	p.nl()
	p.indent++
	for i, m := range d.Members {
		p.writeIndent()
		p.printExternalMemberAttrs(m)
		p.buf.WriteString(m.Name + ": " + p.typeName(m.Type))
		if i < len(d.Members)-1 {
			p.buf.WriteString(",")
		}
		p.nl()
	}
	p.indent--
	p.writeIndent()
	p.buf.WriteString("}")
	p.nl()
}

func (p *Printer) printExternalMemberAttrs(m ast.DeclareExternalMember) {
	var attrs []string
	if m.AutoBinding {
		attrs = append(attrs, "auto_binding")
	}
	if m.Set.IsResultingValue() {
		attrs = append(attrs, fmt.Sprintf("set(%d)", m.Set.GetResultingValue()))
	}
	if m.Binding.IsResultingValue() {
		attrs = append(attrs, fmt.Sprintf("binding(%d)", m.Binding.GetResultingValue()))
	}
	if len(attrs) > 0 {
		p.buf.WriteString("[" + strings.Join(attrs, ", ") + "] ")
	}
}

func (p *Printer) printFunction(d *ast.DeclareFunctionStmt) {
	p.writeIndent()
	if p.printFunctionAttrs(d) {
		p.nl()
		p.writeIndent()
	}
	p.buf.WriteString("fn " + d.Name + "(")
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
		p.buf.WriteString(param.Name + ": " + p.typeName(param.Type))
	}
	p.buf.WriteString(")")
	if _, isUnit := d.ReturnType.(*types.None); d.ReturnType != nil && !isUnit {
		p.buf.WriteString(" -> " + p.typeName(d.ReturnType))
	}
	p.nl()
	p.writeIndent()
	p.buf.WriteString("{")
	p.nl()
	p.indent++
	if d.Body != nil {
		for _, s := range d.Body.Statements {
			p.printStmt(s)
		}
	}
	p.indent--
	p.writeIndent()
	p.buf.WriteString("}")
	p.nl()
}

// printFunctionAttrs writes the function's leading `[entry(...), ...]`
// attribute list if it has one, and reports whether it wrote anything
// so printFunction knows whether to start `fn` on a fresh line.
func (p *Printer) printFunctionAttrs(d *ast.DeclareFunctionStmt) bool {
	var attrs []string
	switch d.Entry {
	case ast.StageVertex:
		attrs = append(attrs, "entry(vert)")
	case ast.StageFragment:
		attrs = append(attrs, "entry(frag)")
	case ast.StageCompute:
		attrs = append(attrs, "entry(compute)")
	}
	if d.Workgroup[0].IsResultingValue() || d.Workgroup[1].IsResultingValue() || d.Workgroup[2].IsResultingValue() {
		dims := make([]string, 3)
		for i := range dims {
			if d.Workgroup[i].IsResultingValue() {
				dims[i] = strconv.FormatUint(uint64(d.Workgroup[i].GetResultingValue()), 10)
			} else {
				dims[i] = "1"
			}
		}
		attrs = append(attrs, "workgroup("+strings.Join(dims, ", ")+")")
	}
	if d.EarlyFragmentTests {
		attrs = append(attrs, "early_fragment_tests")
	}
	if d.DepthWrite {
		attrs = append(attrs, "depth_write")
	}
	if len(attrs) > 0 {
		p.buf.WriteString("[" + strings.Join(attrs, ", ") + "]")
		return true
	}
	return false
}

func (p *Printer) printStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.NoOpStmt:
		return
	case *ast.MultiStmt, *ast.ScopedStmt:
		p.writeIndent()
		p.buf.WriteString("{")
		p.nl()
		p.indent++
		p.printStmtBody(n)
		p.indent--
		p.writeIndent()
		p.buf.WriteString("}")
		p.nl()
	case *ast.BranchStmt:
		p.printBranch(n)
	case *ast.ConditionalStmt:
		p.writeIndent()
		p.buf.WriteString("if (" + p.exprString(n.Condition) + ")")
		p.nl()
		if n.Then != nil {
			p.printStmt(n.Then)
		}
		if n.Else != nil {
			p.writeIndent()
			p.buf.WriteString("else")
			p.nl()
			p.printStmt(n.Else)
		}
	case *ast.WhileStmt:
		p.writeIndent()
		p.buf.WriteString("while (" + p.exprString(n.Condition) + ")")
		p.nl()
		p.printBlock(n.Body)
	case *ast.ForStmt:
		p.writeIndent()
		to := fmt.Sprintf("for (%s in %s -> %s", n.VarName, p.exprString(n.From), p.exprString(n.To))
		if n.Step != nil {
			to += ": " + p.exprString(n.Step)
		}
		p.buf.WriteString(to + ")")
		p.nl()
		p.printBlock(n.Body)
	case *ast.ForEachStmt:
		p.writeIndent()
		p.buf.WriteString(fmt.Sprintf("for (%s in %s)", n.VarName, p.exprString(n.Container)))
		p.nl()
		p.printBlock(n.Body)
	case *ast.DeclareConstStmt:
		p.writeIndent()
		p.buf.WriteString("const " + n.Name + " = " + p.exprString(n.Initializer) + ";")
		p.nl()
	case *ast.DeclareVariableStmt:
		p.writeIndent()
		p.buf.WriteString("let " + n.Name)
		if n.Type != nil {
			p.buf.WriteString(": " + p.typeName(n.Type))
		}
		if n.Initializer != nil {
			p.buf.WriteString(" = " + p.exprString(n.Initializer))
		}
		p.buf.WriteString(";")
		p.nl()
	case *ast.ReturnStmt:
		p.writeIndent()
		if n.Value != nil {
			p.buf.WriteString("return " + p.exprString(n.Value) + ";")
		} else {
			p.buf.WriteString("return;")
		}
		p.nl()
	case *ast.BreakStmt:
		p.writeIndent()
		p.buf.WriteString("break;")
		p.nl()
	case *ast.ContinueStmt:
		p.writeIndent()
		p.buf.WriteString("continue;")
		p.nl()
	case *ast.DiscardStmt:
		p.writeIndent()
		p.buf.WriteString("discard;")
		p.nl()
	case *ast.ExpressionStmt:
		p.writeIndent()
		p.buf.WriteString(p.exprString(n.Expr) + ";")
		p.nl()
	default:
		return
	}
}

// printStmtBody prints the Statements of a MultiStmt or the Body of a
// ScopedStmt without re-wrapping them in braces (the caller already
// did).
func (p *Printer) printStmtBody(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.MultiStmt:
		for _, c := range n.Statements {
			p.printStmt(c)
		}
	case *ast.ScopedStmt:
		if n.Body != nil {
			for _, c := range n.Body.Statements {
				p.printStmt(c)
			}
		}
	}
}

func (p *Printer) printBlock(m *ast.MultiStmt) {
	p.writeIndent()
	p.buf.WriteString("{")
	p.nl()
	p.indent++
	if m != nil {
		for _, c := range m.Statements {
			p.printStmt(c)
		}
	}
	p.indent--
	p.writeIndent()
	p.buf.WriteString("}")
	p.nl()
}

func (p *Printer) printBranch(b *ast.BranchStmt) {
	for i, c := range b.Cases {
		p.writeIndent()
		if i > 0 {
			p.buf.WriteString("else ")
		}
		kw := "if"
		if c.IsConst {
			kw = "if const"
		}
		p.buf.WriteString(kw + " (" + p.exprString(c.Condition) + ")")
		p.nl()
		p.printBlock(c.Body)
	}
	if b.Else != nil {
		p.writeIndent()
		p.buf.WriteString("else")
		p.nl()
		p.printBlock(b.Else)
	}
}

// exprString prints e into a fresh scratch Printer sharing this one's
// module and options, for the statement-level call sites (attribute
// arguments, single-line `let` initializers) that need an expression
// rendered as a string rather than appended to the module's buffer.
func (p *Printer) exprString(e ast.Expr) string {
	scratch := &Printer{mod: p.mod, options: p.options}
	scratch.printExpr(e)
	return scratch.buf.String()
}

func (p *Printer) printExpr(e ast.Expr) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *ast.ConstantExpr:
		p.buf.WriteString(constString(n.Value))
	case *ast.IdentifierExpr:
		p.buf.WriteString(n.Name)
	case *ast.IdentifierValueExpr:
		p.buf.WriteString(n.Name)
	case *ast.VariableValueExpr:
		p.buf.WriteString(p.symbolName(ast.CatVariable, n.Variable))
	case *ast.ConstantRefExpr:
		p.buf.WriteString(p.symbolName(ast.CatConstant, n.Constant))
	case *ast.FunctionRefExpr:
		p.buf.WriteString(p.symbolName(ast.CatFunction, n.Function))
	case *ast.AliasValueExpr:
		p.buf.WriteString(p.symbolName(ast.CatAlias, n.Alias))
	case *ast.StructTypeRefExpr:
		p.buf.WriteString(p.symbolName(ast.CatStruct, n.Struct))
	case *ast.ModuleRefExpr:
		p.buf.WriteString(p.symbolName(ast.CatModule, n.Module))
	case *ast.TypeRefExpr:
		p.buf.WriteString(p.typeName(n.Referenced))
	case *ast.NamedExternalBlockRefExpr:
		p.buf.WriteString("<external>")
	case *ast.IntrinsicFunctionRefExpr:
		p.buf.WriteString("<intrinsic>")
	case *ast.AccessFieldExpr:
		p.printExpr(n.Object)
		p.buf.WriteString("." + n.FieldName)
	case *ast.AccessIdentifierExpr:
		p.printExpr(n.Object)
		p.buf.WriteString("." + n.Name)
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
		p.buf.WriteString("const_select(")
		p.printExpr(n.Condition)
		p.buf.WriteString(", ")
		p.printExpr(n.WhenTrue)
		p.buf.WriteString(", ")
		p.printExpr(n.WhenFalse)
		p.buf.WriteString(")")
	case *ast.CallFunctionExpr:
		p.printExpr(n.Callee)
		p.buf.WriteString("(")
		p.printArgs(n.Args)
		p.buf.WriteString(")")
	case *ast.CallMethodExpr:
		p.printExpr(n.Object)
		p.buf.WriteString(fmt.Sprintf(".method#%d(", n.MethodIndex))
		p.printArgs(n.Args)
		p.buf.WriteString(")")
	case *ast.IntrinsicExpr:
		name := fmt.Sprintf("intrinsic#%d", n.IntrinsicID)
		p.buf.WriteString(name + "(")
		p.printArgs(n.Args)
		p.buf.WriteString(")")
	default:
		p.buf.WriteString("<?>")
	}
}

func (p *Printer) printArgs(args []ast.Expr) {
	for i, a := range args {
		if i > 0 {
			p.buf.WriteString(", ")
		}
		p.printExpr(a)
	}
}

func (p *Printer) symbolName(cat ast.SymbolCategory, ref ast.Ref) string {
	tbl := p.mod.SymbolTable(cat)
	if int(ref.Index) < len(tbl) {
		return tbl[ref.Index].Name
	}
	return fmt.Sprintf("<%d>", ref.Index)
}

func constString(c ast.Const) string {
	switch c.Kind {
	case ast.KBool:
		return strconv.FormatBool(c.Bool)
	case ast.KF32, ast.KF64, ast.KFloatLiteral:
		return strconv.FormatFloat(c.F64, 'g', -1, 64)
	case ast.KI32, ast.KU32, ast.KIntLiteral:
		return strconv.FormatInt(c.I64, 10)
	case ast.KString:
		return strconv.Quote(c.Str)
	default:
		if len(c.Vec) > 0 {
			parts := make([]string, len(c.Vec))
			for i, comp := range c.Vec {
				parts[i] = constString(comp)
			}
			return "vec(" + strings.Join(parts, ", ") + ")"
		}
		return "<const>"
	}
}

func swizzleString(components []uint8) string {
	const letters = "xyzw"
	var sb strings.Builder
	for _, c := range components {
		if int(c) < len(letters) {
			sb.WriteByte(letters[c])
		}
	}
	return sb.String()
}

func assignOpString(op ast.AssignOp) string {
	switch op {
	case ast.AssignAdd:
		return "+="
	case ast.AssignSub:
		return "-="
	case ast.AssignMul:
		return "*="
	case ast.AssignDiv:
		return "/="
	case ast.AssignMod:
		return "%="
	case ast.AssignAnd:
		return "&="
	case ast.AssignOr:
		return "|="
	case ast.AssignXor:
		return "^="
	case ast.AssignShl:
		return "<<="
	case ast.AssignShr:
		return ">>="
	default:
		return "="
	}
}

func binaryOpString(op ast.BinaryOp) string {
	switch op {
	case ast.BinAdd:
		return "+"
	case ast.BinSub:
		return "-"
	case ast.BinMul:
		return "*"
	case ast.BinDiv:
		return "/"
	case ast.BinMod:
		return "%"
	case ast.BinShl:
		return "<<"
	case ast.BinShr:
		return ">>"
	case ast.BinEq:
		return "=="
	case ast.BinNe:
		return "!="
	case ast.BinLt:
		return "<"
	case ast.BinLe:
		return "<="
	case ast.BinGt:
		return ">"
	case ast.BinGe:
		return ">="
	case ast.BinBitAnd:
		return "&"
	case ast.BinBitXor:
		return "^"
	case ast.BinBitOr:
		return "|"
	case ast.BinLogicalAnd:
		return "&&"
	case ast.BinLogicalOr:
		return "||"
	default:
		return "?"
	}
}

func unaryOpString(op ast.UnaryOp) string {
	switch op {
	case ast.UnaryNeg:
		return "-"
	case ast.UnaryPlus:
		return "+"
	case ast.UnaryLogicalNot:
		return "!"
	case ast.UnaryBitNot:
		return "~"
	default:
		return ""
	}
}

// typeName renders t in NZSL's bracketed template syntax (`vecN[T]`,
// `array[T,N]`, …), the inverse of internal/sema's resolveType (§3.3).
func (p *Printer) typeName(t types.Type) string {
	switch tt := types.ResolveAlias(t).(type) {
	case *types.None:
		return "()"
	case *types.Prim:
		return primName(tt.Kind)
	case *types.Vector:
		return fmt.Sprintf("vec%d[%s]", tt.ComponentCount, primName(tt.Primitive))
	case *types.Matrix:
		if tt.Columns == tt.Rows {
			return fmt.Sprintf("mat%d[%s]", tt.Columns, primName(tt.Primitive))
		}
		return fmt.Sprintf("mat%dx%d[%s]", tt.Columns, tt.Rows, primName(tt.Primitive))
	case *types.Array:
		return fmt.Sprintf("array[%s,%d]", p.typeName(tt.Element), tt.Length)
	case *types.DynArray:
		return fmt.Sprintf("dyn_array[%s]", p.typeName(tt.Element))
	case *types.Struct:
		return p.symbolName(ast.CatStruct, ast.Ref{Category: ast.CatStruct, Index: uint32(tt.Index)})
	case *types.Uniform:
		return "uniform[" + p.structName(tt.StructIndex) + "]"
	case *types.Storage:
		return fmt.Sprintf("storage[%s,%s]", p.structName(tt.StructIndex), accessName(tt.Access))
	case *types.PushConstant:
		return "push_constant[" + p.structName(tt.StructIndex) + "]"
	case *types.Sampler:
		if tt.Depth {
			return fmt.Sprintf("sampler_depth%d", tt.Dim)
		}
		return fmt.Sprintf("sampler%d[%s]", tt.Dim, primName(tt.SampledPrimitive))
	case *types.Texture:
		return fmt.Sprintf("texture%d[%s]", tt.Dim, primName(tt.Base))
	default:
		return t.String()
	}
}

func (p *Printer) structName(idx uint32) string {
	return p.symbolName(ast.CatStruct, ast.Ref{Category: ast.CatStruct, Index: idx})
}

func primName(prim types.Primitive) string {
	switch prim {
	case types.Bool:
		return "bool"
	case types.F32:
		return "f32"
	case types.F64:
		return "f64"
	case types.I32:
		return "i32"
	case types.U32:
		return "u32"
	default:
		return prim.String()
	}
}

func accessName(a types.TextureAccess) string {
	switch a {
	case types.AccessReadOnly:
		return "readonly"
	case types.AccessWriteOnly:
		return "writeonly"
	case types.AccessReadWrite:
		return "readwrite"
	default:
		return "readonly"
	}
}
