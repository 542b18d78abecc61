// Package parser turns an NZSL token stream into an unresolved AST
// module via recursive descent with Pratt-style precedence climbing for
// expressions (§4.3).
//
// Unlike a two-pass parser that binds identifiers as it goes, this
// parser produces a purely syntactic tree: every name stays an
// IdentifierExpr/types.Unresolved placeholder until the identifier/type
// resolver (internal/sema) walks the tree in a later, separate pass.
// That split lets imports, forward references and mutual recursion
// resolve uniformly regardless of declaration order.
package parser

import (
	"fmt"
	"strconv"

	"github.com/nzslang/nzslc/internal/ast"
	"github.com/nzslang/nzslc/internal/lexer"
	"github.com/nzslang/nzslc/internal/types"
)

// CompiledMaxVersion is the highest `nzsl_version` this parser accepts;
// a module declaring a strictly greater version is rejected (§4.3).
const CompiledMaxVersion = 0x010200 // 1.2.0, packed per ast.PackVersion

// ErrorKind classifies a ParseError (§4.3).
type ErrorKind uint8

const (
	ErrUnexpectedToken ErrorKind = iota
	ErrExpectedToken
	ErrDuplicateModule
	ErrDuplicateAttribute
	ErrInvalidVersion
	ErrUnknownAttribute
	ErrUnknownImportIdentifier
	ErrMissingRequiredAttribute
)

// ParseError is the C3 error family member (§7).
type ParseError struct {
	Kind    ErrorKind
	Loc     lexer.SourceLocation
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Loc.StartLine, e.Loc.StartCol, e.Message)
}

// recognizedAttributes is the closed attribute set (§4.3).
var recognizedAttributes = map[string]bool{
	"author": true, "binding": true, "builtin": true, "cond": true,
	"depth_write": true, "desc": true, "early_fragment_tests": true,
	"entry": true, "export": true, "feature": true, "interp": true,
	"layout": true, "license": true, "location": true, "nzsl_version": true,
	"set": true, "tag": true, "unroll": true, "workgroup": true, "auto_binding": true,
}

// Attribute is one parsed `name(args)` bracket entry, fused across
// adjacent bracket groups (§4.3 "identical attributes in separate
// brackets fuse").
type Attribute struct {
	Name string
	Args []ast.Expr
	Loc  lexer.SourceLocation
}

// Parser holds token-stream cursor state; it carries no symbol table —
// name binding is internal/sema's job.
type Parser struct {
	tokens []lexer.Token
	pos    int
	errors []*ParseError
}

// Parse tokenizes source and parses it into a Module. A lexer failure
// is reported as a single-element ParseError list wrapping the
// LexError's message and location.
func Parse(source, fileName string) (*ast.Module, []*ParseError) {
	toks, err := lexer.Tokenize(source, fileName)
	if err != nil {
		loc := lexer.SourceLocation{}
		if le, ok := err.(*lexer.LexError); ok {
			loc = le.Loc
		}
		return nil, []*ParseError{{Kind: ErrUnexpectedToken, Loc: loc, Message: err.Error()}}
	}
	p := &Parser{tokens: toks}
	mod := p.parseModule()
	return mod, p.errors
}

// ----------------------------------------------------------------------------
// Token helpers
// ----------------------------------------------------------------------------

func (p *Parser) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		return lexer.Token{Kind: lexer.TokEOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peek(offset int) lexer.Token {
	idx := p.pos + offset
	if idx >= len(p.tokens) {
		return lexer.Token{Kind: lexer.TokEOF}
	}
	return p.tokens[idx]
}

func (p *Parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) match(kind lexer.TokenKind) bool {
	if p.current().Kind == kind {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(kind lexer.TokenKind) (lexer.Token, bool) {
	tok := p.current()
	if tok.Kind != kind {
		p.errorAt(ErrExpectedToken, tok.Loc, fmt.Sprintf("expected %s, got %s", kind, tok.Kind))
		return tok, false
	}
	p.advance()
	return tok, true
}

func (p *Parser) errorAt(kind ErrorKind, loc lexer.SourceLocation, msg string) {
	p.errors = append(p.errors, &ParseError{Kind: kind, Loc: loc, Message: msg})
}

func (p *Parser) errorHere(kind ErrorKind, msg string) {
	p.errorAt(kind, p.current().Loc, msg)
}

// synchronize skips tokens until a plausible declaration boundary, so
// one malformed construct does not cascade into spurious follow-on
// errors.
func (p *Parser) synchronize() {
	for p.current().Kind != lexer.TokEOF {
		if p.current().Kind == lexer.TokSemicolon {
			p.advance()
			return
		}
		switch p.current().Kind {
		case lexer.TokFn, lexer.TokStruct, lexer.TokConst, lexer.TokAlias,
			lexer.TokExternal, lexer.TokOption, lexer.TokImport, lexer.TokModule:
			return
		}
		p.advance()
	}
}

// ----------------------------------------------------------------------------
// Attributes — §4.3
// ----------------------------------------------------------------------------

// parseAttributes consumes zero or more `[name(args), …]` bracket
// groups, fusing their entries into one slice, and rejects duplicate or
// unknown attribute names.
func (p *Parser) parseAttributes() []Attribute {
	var attrs []Attribute
	seen := map[string]bool{}
	for p.current().Kind == lexer.TokLBracket {
		p.advance()
		for {
			if p.current().Kind == lexer.TokRBracket {
				break
			}
			nameTok, ok := p.expect(lexer.TokIdent)
			if !ok {
				break
			}
			attr := Attribute{Name: nameTok.Ident, Loc: nameTok.Loc}
			if !recognizedAttributes[attr.Name] {
				p.errorAt(ErrUnknownAttribute, nameTok.Loc, "unknown attribute "+attr.Name)
			}
			if p.match(lexer.TokLParen) {
				for p.current().Kind != lexer.TokRParen && p.current().Kind != lexer.TokEOF {
					attr.Args = append(attr.Args, p.parseExpression())
					if !p.match(lexer.TokComma) {
						break
					}
				}
				p.expect(lexer.TokRParen)
			}
			if seen[attr.Name] {
				p.errorAt(ErrDuplicateAttribute, attr.Loc, "duplicate attribute "+attr.Name)
			}
			seen[attr.Name] = true
			attrs = append(attrs, attr)
			if !p.match(lexer.TokComma) {
				break
			}
		}
		p.expect(lexer.TokRBracket)
	}
	return attrs
}

func findAttribute(attrs []Attribute, name string) (Attribute, bool) {
	for _, a := range attrs {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// stringArg extracts a simple name/text payload from an attribute's
// first argument. Most attributes carry a string literal (`desc("...")`),
// but a handful (`entry`, `builtin`, `interp`) are written with a bare
// keyword-like identifier (`entry(frag)`, `builtin(position)`) — both
// spellings are accepted here.
func stringArg(a Attribute) string {
	if len(a.Args) == 0 {
		return ""
	}
	switch arg := a.Args[0].(type) {
	case *ast.ConstantExpr:
		if arg.Value.Kind == ast.KString {
			return arg.Value.Str
		}
	case *ast.IdentifierExpr:
		return arg.Name
	}
	return ""
}

// ----------------------------------------------------------------------------
// Module / top level — §4.3
// ----------------------------------------------------------------------------

func (p *Parser) parseModule() *ast.Module {
	mod := &ast.Module{Root: &ast.MultiStmt{}}

	attrs := p.parseAttributes()
	if p.current().Kind != lexer.TokModule {
		p.errorHere(ErrExpectedToken, "expected module declaration")
	} else {
		p.parseModuleStatement(mod, attrs, true)
	}

	for p.current().Kind != lexer.TokEOF {
		if p.current().Kind == lexer.TokModule && !(p.peek(1).Kind == lexer.TokIdent && p.peek(2).Kind == lexer.TokLBrace) {
			p.errorHere(ErrDuplicateModule, "nested module declaration must use `module name { ... }`")
			p.advance()
			p.synchronize()
			continue
		}
		stmt := p.parseModuleLevelStatement()
		if stmt != nil {
			mod.Root.Statements = append(mod.Root.Statements, stmt)
		}
	}
	return mod
}

// parseModuleStatement consumes `module;` or `module name;`, validating
// the preceding attribute list (an `nzsl_version` is mandatory on the
// root module, §4.3).
func (p *Parser) parseModuleStatement(mod *ast.Module, attrs []Attribute, isRoot bool) {
	tok := p.advance() // `module`
	if tok.Kind != lexer.TokModule {
		return
	}
	if isRoot {
		ver, ok := findAttribute(attrs, "nzsl_version")
		if !ok {
			p.errorAt(ErrMissingRequiredAttribute, tok.Loc, "module declaration requires an nzsl_version attribute")
		} else {
			mod.Metadata.LangVersion = p.evalVersionAttribute(ver)
			if mod.Metadata.LangVersion > CompiledMaxVersion {
				p.errorAt(ErrInvalidVersion, ver.Loc, "nzsl_version exceeds the compiled-in maximum")
			}
		}
		if a, ok := findAttribute(attrs, "author"); ok {
			mod.Metadata.Author = stringArg(a)
		}
		if a, ok := findAttribute(attrs, "desc"); ok {
			mod.Metadata.Description = stringArg(a)
		}
		if a, ok := findAttribute(attrs, "license"); ok {
			mod.Metadata.License = stringArg(a)
		}
	}
	if p.current().Kind == lexer.TokIdent {
		name := p.advance().Ident
		for p.match(lexer.TokDot) {
			seg, ok := p.expect(lexer.TokIdent)
			if !ok {
				break
			}
			name += "." + seg.Ident
		}
		mod.Metadata.ModuleName = name
	}
	p.expect(lexer.TokSemicolon)
}

// evalVersionAttribute expects a single string literal argument of the
// form "major.minor[.patch]".
func (p *Parser) evalVersionAttribute(a Attribute) uint32 {
	s := stringArg(a)
	var major, minor, patch uint32
	n, _ := fmt.Sscanf(s, "%d.%d.%d", &major, &minor, &patch)
	if n < 2 {
		p.errorAt(ErrInvalidVersion, a.Loc, "malformed nzsl_version string "+s)
	}
	return ast.PackVersion(major, minor, patch)
}

// parseModuleLevelStatement parses one of the module-scope
// declarations or a nested `module name { ... }` import block.
func (p *Parser) parseModuleLevelStatement() ast.Stmt {
	attrs := p.parseAttributes()

	switch p.current().Kind {
	case lexer.TokModule:
		return p.parseNestedModule(attrs)
	case lexer.TokImport:
		return p.parseImport()
	case lexer.TokOption:
		return p.parseOption(attrs)
	case lexer.TokConst:
		return p.parseConst(attrs)
	case lexer.TokExternal:
		return p.parseExternal(attrs)
	case lexer.TokStruct:
		return p.parseStruct(attrs)
	case lexer.TokFn:
		return p.parseFunction(attrs)
	case lexer.TokAlias:
		return p.parseAlias(attrs)
	default:
		p.errorHere(ErrUnexpectedToken, "expected a module-level declaration")
		p.synchronize()
		return nil
	}
}

// parseNestedModule parses `module name { ... }` and records it as an
// import (§4.3 "subsequent module <name> { … } blocks… are imported
// sub-modules"); a further nested `module` inside it is rejected.
func (p *Parser) parseNestedModule(attrs []Attribute) ast.Stmt {
	loc := p.current().Loc
	p.advance() // `module`
	nameTok, _ := p.expect(lexer.TokIdent)
	p.expect(lexer.TokLBrace)

	for p.current().Kind != lexer.TokRBrace && p.current().Kind != lexer.TokEOF {
		if p.current().Kind == lexer.TokModule {
			p.errorHere(ErrDuplicateModule, "nested module within an imported module body is an error")
			p.advance()
			p.synchronize()
			continue
		}
		// Declarations inside an inline sub-module are parsed purely to
		// validate their syntax and advance the cursor; the resolver
		// re-parses the imported file proper via internal/resolver.
		p.parseModuleLevelStatement()
	}
	p.expect(lexer.TokRBrace)

	return &ast.ImportStmt{
		StmtBase: ast.StmtAt(loc),
		ModulePath: nameTok.Ident,
		LocalAlias: nameTok.Ident,
	}
}

func (p *Parser) parseImport() ast.Stmt {
	loc := p.current().Loc
	p.advance() // `import`
	nameTok, ok := p.expect(lexer.TokIdent)
	if !ok {
		return nil
	}
	path := nameTok.Ident
	for p.match(lexer.TokDot) {
		seg, ok := p.expect(lexer.TokIdent)
		if !ok {
			break
		}
		path += "." + seg.Ident
	}
	alias := path
	p.expect(lexer.TokFrom)
	// `from "file"` names the source file; NZSL resolves by module path,
	// so the string is accepted and discarded here (C4 owns file lookup).
	p.expect(lexer.TokStringLiteral)
	if p.match(lexer.TokAs) {
		aliasTok, ok := p.expect(lexer.TokIdent)
		if ok {
			alias = aliasTok.Ident
		}
	}
	p.expect(lexer.TokSemicolon)
	return &ast.ImportStmt{StmtBase: ast.StmtAt(loc), ModulePath: path, LocalAlias: alias}
}

func (p *Parser) parseOption(attrs []Attribute) ast.Stmt {
	loc := p.current().Loc
	p.advance() // `option`
	nameTok, _ := p.expect(lexer.TokIdent)
	p.expect(lexer.TokColon)
	typ := p.parseType()
	var def ast.Expr
	if p.match(lexer.TokEq) {
		def = p.parseExpression()
	}
	p.expect(lexer.TokSemicolon)
	return &ast.DeclareOptionStmt{
		StmtBase: ast.StmtAt(loc),
		Name:     nameTok.Ident,
		Type:     typ,
		Default:  def,
		Hash:     fnv1a(nameTok.Ident),
	}
}

// fnv1a hashes an option's dotted path per SPEC_FULL §C.3.
func fnv1a(s string) uint64 {
	const offset = 14695981039346656037
	const prime = 1099511628211
	h := uint64(offset)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime
	}
	return h
}

func (p *Parser) parseConst(attrs []Attribute) ast.Stmt {
	loc := p.current().Loc
	p.advance() // `const`
	nameTok, _ := p.expect(lexer.TokIdent)
	var typ types.Type
	if p.match(lexer.TokColon) {
		typ = p.parseType()
	}
	p.expect(lexer.TokEq)
	init := p.parseExpression()
	p.expect(lexer.TokSemicolon)
	return &ast.DeclareConstStmt{
		StmtBase: ast.StmtAt(loc),
		Name:        nameTok.Ident,
		Type:        typ,
		Initializer: init,
	}
}

func (p *Parser) parseAlias(attrs []Attribute) ast.Stmt {
	loc := p.current().Loc
	p.advance() // `alias`
	nameTok, _ := p.expect(lexer.TokIdent)
	p.expect(lexer.TokEq)
	typ := p.parseType()
	p.expect(lexer.TokSemicolon)
	return &ast.DeclareAliasStmt{StmtBase: ast.StmtAt(loc), Name: nameTok.Ident, Value: typ}
}

func (p *Parser) parseExternal(attrs []Attribute) ast.Stmt {
	loc := p.current().Loc
	p.advance() // `external`
	blockName := ""
	if p.current().Kind == lexer.TokIdent {
		blockName = p.advance().Ident
	}
	p.expect(lexer.TokLBrace)

	var members []ast.DeclareExternalMember
	for p.current().Kind != lexer.TokRBrace && p.current().Kind != lexer.TokEOF {
		memberAttrs := p.parseAttributes()
		mLoc := p.current().Loc
		mNameTok, _ := p.expect(lexer.TokIdent)
		p.expect(lexer.TokColon)
		mType := p.parseType()

		member := ast.DeclareExternalMember{Loc: mLoc, Name: mNameTok.Ident, Type: mType}
		if a, ok := findAttribute(memberAttrs, "set"); ok && len(a.Args) > 0 {
			member.Set = ast.ExprValueOf[uint32](a.Args[0])
		}
		if a, ok := findAttribute(memberAttrs, "binding"); ok && len(a.Args) > 0 {
			member.Binding = ast.ExprValueOf[uint32](a.Args[0])
		}
		if _, ok := findAttribute(memberAttrs, "auto_binding"); ok {
			member.AutoBinding = true
		}
		members = append(members, member)

		if !p.match(lexer.TokComma) {
			break
		}
	}
	p.expect(lexer.TokRBrace)

	return &ast.DeclareExternalStmt{
		StmtBase: ast.StmtAt(loc),
		BlockName: blockName,
		Members:   members,
	}
}

func (p *Parser) parseStruct(attrs []Attribute) ast.Stmt {
	loc := p.current().Loc
	p.advance() // `struct`
	nameTok, _ := p.expect(lexer.TokIdent)
	p.expect(lexer.TokLBrace)

	var members []ast.DeclareStructMember
	for p.current().Kind != lexer.TokRBrace && p.current().Kind != lexer.TokEOF {
		memberAttrs := p.parseAttributes()
		mLoc := p.current().Loc
		mNameTok, _ := p.expect(lexer.TokIdent)
		p.expect(lexer.TokColon)
		mType := p.parseType()

		member := ast.DeclareStructMember{Loc: mLoc, Name: mNameTok.Ident, Type: mType}
		if a, ok := findAttribute(memberAttrs, "builtin"); ok {
			member.Builtin = stringArg(a)
		}
		if a, ok := findAttribute(memberAttrs, "location"); ok && len(a.Args) > 0 {
			member.Locations = ast.ExprValueOf[uint32](a.Args[0])
		}
		if a, ok := findAttribute(memberAttrs, "cond"); ok && len(a.Args) > 0 {
			member.Cond = a.Args[0]
		}
		if a, ok := findAttribute(memberAttrs, "interp"); ok {
			member.Interp = stringArg(a)
		}
		members = append(members, member)

		if !p.match(lexer.TokComma) {
			break
		}
	}
	p.expect(lexer.TokRBrace)

	return &ast.DeclareStructStmt{StmtBase: ast.StmtAt(loc), Name: nameTok.Ident, Members: members}
}

func (p *Parser) parseFunction(attrs []Attribute) ast.Stmt {
	loc := p.current().Loc
	p.advance() // `fn`
	nameTok, _ := p.expect(lexer.TokIdent)
	p.expect(lexer.TokLParen)

	var params []ast.DeclareFunctionParam
	for p.current().Kind != lexer.TokRParen && p.current().Kind != lexer.TokEOF {
		semantic := ast.SemanticIn
		switch p.current().Kind {
		case lexer.TokIn:
			p.advance()
		case lexer.TokOut:
			semantic = ast.SemanticOut
			p.advance()
		case lexer.TokInout:
			semantic = ast.SemanticInout
			p.advance()
		}
		pNameTok, _ := p.expect(lexer.TokIdent)
		p.expect(lexer.TokColon)
		pType := p.parseType()
		params = append(params, ast.DeclareFunctionParam{Name: pNameTok.Ident, Type: pType, Semantic: semantic})
		if !p.match(lexer.TokComma) {
			break
		}
	}
	p.expect(lexer.TokRParen)

	var retType types.Type
	if p.match(lexer.TokArrow) {
		retType = p.parseType()
	}

	body := p.parseBlock()

	decl := &ast.DeclareFunctionStmt{
		StmtBase: ast.StmtAt(loc),
		Name:       nameTok.Ident,
		Params:     params,
		ReturnType: retType,
		Body:       body,
	}
	if a, ok := findAttribute(attrs, "entry"); ok {
		switch stringArg(a) {
		case "vert":
			decl.Entry = ast.StageVertex
		case "frag":
			decl.Entry = ast.StageFragment
		case "compute":
			decl.Entry = ast.StageCompute
		}
	}
	if _, ok := findAttribute(attrs, "early_fragment_tests"); ok {
		decl.EarlyFragmentTests = true
	}
	if _, ok := findAttribute(attrs, "depth_write"); ok {
		decl.DepthWrite = true
	}
	if a, ok := findAttribute(attrs, "workgroup"); ok {
		for i := 0; i < 3 && i < len(a.Args); i++ {
			decl.Workgroup[i] = ast.ExprValueOf[uint32](a.Args[i])
		}
	}
	return decl
}

// ----------------------------------------------------------------------------
// Statements — §3.4
// ----------------------------------------------------------------------------

func (p *Parser) parseBlock() *ast.MultiStmt {
	loc := p.current().Loc
	p.expect(lexer.TokLBrace)
	m := &ast.MultiStmt{}
	m.Loc = loc
	for p.current().Kind != lexer.TokRBrace && p.current().Kind != lexer.TokEOF {
		if s := p.parseStatement(); s != nil {
			m.Statements = append(m.Statements, s)
		}
	}
	p.expect(lexer.TokRBrace)
	return m
}

func (p *Parser) parseStatement() ast.Stmt {
	switch p.current().Kind {
	case lexer.TokLBrace:
		return &ast.ScopedStmt{StmtBase: ast.StmtAt(p.current().Loc), Body: p.parseBlock()}
	case lexer.TokLet:
		return p.parseLet()
	case lexer.TokConst:
		return p.parseConst(nil)
	case lexer.TokAlias:
		return p.parseAlias(nil)
	case lexer.TokIf:
		return p.parseBranch()
	case lexer.TokWhile:
		return p.parseWhile()
	case lexer.TokFor:
		return p.parseFor()
	case lexer.TokBreak:
		loc := p.advance().Loc
		p.expect(lexer.TokSemicolon)
		return &ast.BreakStmt{StmtBase: ast.StmtAt(loc)}
	case lexer.TokContinue:
		loc := p.advance().Loc
		p.expect(lexer.TokSemicolon)
		return &ast.ContinueStmt{StmtBase: ast.StmtAt(loc)}
	case lexer.TokDiscard:
		loc := p.advance().Loc
		p.expect(lexer.TokSemicolon)
		return &ast.DiscardStmt{StmtBase: ast.StmtAt(loc)}
	case lexer.TokReturn:
		loc := p.advance().Loc
		var val ast.Expr
		if p.current().Kind != lexer.TokSemicolon {
			val = p.parseExpression()
		}
		p.expect(lexer.TokSemicolon)
		return &ast.ReturnStmt{StmtBase: ast.StmtAt(loc), Value: val}
	default:
		loc := p.current().Loc
		expr := p.parseExpression()
		p.expect(lexer.TokSemicolon)
		return &ast.ExpressionStmt{StmtBase: ast.StmtAt(loc), Expr: expr}
	}
}

func (p *Parser) parseLet() ast.Stmt {
	loc := p.advance().Loc // `let`
	nameTok, _ := p.expect(lexer.TokIdent)
	var typ types.Type
	if p.match(lexer.TokColon) {
		typ = p.parseType()
	}
	var init ast.Expr
	if p.match(lexer.TokEq) {
		init = p.parseExpression()
	}
	p.expect(lexer.TokSemicolon)
	return &ast.DeclareVariableStmt{
		StmtBase: ast.StmtAt(loc),
		Name:        nameTok.Ident,
		Type:        typ,
		Initializer: init,
		Mutable:     true,
	}
}

func (p *Parser) parseBranch() ast.Stmt {
	loc := p.current().Loc
	var cases []ast.BranchCase
	for {
		p.advance() // `if`
		isConst := p.match(lexer.TokConst)
		p.expect(lexer.TokLParen)
		cond := p.parseExpression()
		p.expect(lexer.TokRParen)
		body := p.parseBlock()
		cases = append(cases, ast.BranchCase{Condition: cond, Body: body, IsConst: isConst})
		if p.current().Kind == lexer.TokElse && p.peek(1).Kind == lexer.TokIf {
			p.advance() // `else`
			continue
		}
		break
	}
	var elseBody *ast.MultiStmt
	if p.match(lexer.TokElse) {
		elseBody = p.parseBlock()
	}
	return &ast.BranchStmt{StmtBase: ast.StmtAt(loc), Cases: cases, Else: elseBody}
}

func (p *Parser) parseWhile() ast.Stmt {
	loc := p.advance().Loc // `while`
	p.expect(lexer.TokLParen)
	cond := p.parseExpression()
	p.expect(lexer.TokRParen)
	body := p.parseBlock()
	return &ast.WhileStmt{StmtBase: ast.StmtAt(loc), Condition: cond, Body: body}
}

// parseFor handles both the numeric-range `for (i in a -> b [: step])`
// form and the container-iteration `for (e in container)` form,
// disambiguated by what follows the first operand.
func (p *Parser) parseFor() ast.Stmt {
	loc := p.advance().Loc // `for`
	p.expect(lexer.TokLParen)
	nameTok, _ := p.expect(lexer.TokIdent)
	p.expect(lexer.TokIn)
	first := p.parseExpression()

	if p.match(lexer.TokArrow) {
		to := p.parseExpression()
		var step ast.Expr
		if p.match(lexer.TokColon) {
			step = p.parseExpression()
		}
		p.expect(lexer.TokRParen)
		body := p.parseBlock()
		return &ast.ForStmt{
			StmtBase: ast.StmtAt(loc), VarName: nameTok.Ident,
			From: first, To: to, Step: step, Body: body,
		}
	}
	p.expect(lexer.TokRParen)
	body := p.parseBlock()
	return &ast.ForEachStmt{
		StmtBase: ast.StmtAt(loc), VarName: nameTok.Ident,
		Container: first, Body: body,
	}
}

// ----------------------------------------------------------------------------
// Types — §3.3/§4.3
// ----------------------------------------------------------------------------

// parseType parses a type expression as written in source; the result
// is always a *types.Unresolved until internal/sema maps names to real
// ExpressionType values, except for `()` which is the concrete
// types.None.
func (p *Parser) parseType() types.Type {
	if p.current().Kind == lexer.TokLParen && p.peek(1).Kind == lexer.TokRParen {
		p.advance()
		p.advance()
		return &types.None{}
	}
	nameTok, ok := p.expect(lexer.TokIdent)
	if !ok {
		return &types.Unresolved{Name: "<error>"}
	}
	name := nameTok.Ident
	for p.match(lexer.TokDot) {
		seg, ok := p.expect(lexer.TokIdent)
		if !ok {
			break
		}
		name += "." + seg.Ident
	}

	var args []types.Type
	if p.match(lexer.TokLBracket) {
		for p.current().Kind != lexer.TokRBracket && p.current().Kind != lexer.TokEOF {
			if p.current().Kind == lexer.TokIdent {
				args = append(args, p.parseType())
			} else {
				// A bare integer length argument (array size, vector/matrix
				// dimension) is stashed as an Unresolved carrying its
				// literal text for sema to evaluate.
				tok := p.advance()
				args = append(args, &types.Unresolved{Name: tokenText(tok)})
			}
			if !p.match(lexer.TokComma) {
				break
			}
		}
		p.expect(lexer.TokRBracket)
	}
	return &types.Unresolved{Name: name, TemplateArgs: args}
}

func tokenText(tok lexer.Token) string {
	switch tok.Kind {
	case lexer.TokIntLiteral:
		return strconv.FormatInt(tok.Int, 10)
	case lexer.TokIdent:
		return tok.Ident
	default:
		return tok.Raw
	}
}

// ----------------------------------------------------------------------------
// Expressions — Pratt precedence climbing, §4.3
// ----------------------------------------------------------------------------

// bindingPower gives the left binding power for each binary operator
// token, per the precedence table in §4.3 (higher binds tighter).
func bindingPower(kind lexer.TokenKind) (ast.BinaryOp, int, bool) {
	switch kind {
	case lexer.TokStar:
		return ast.BinMul, 80, true
	case lexer.TokSlash:
		return ast.BinDiv, 80, true
	case lexer.TokPercent:
		return ast.BinMod, 80, true
	case lexer.TokPlus:
		return ast.BinAdd, 60, true
	case lexer.TokMinus:
		return ast.BinSub, 60, true
	case lexer.TokLtLt:
		return ast.BinShl, 55, true
	case lexer.TokGtGt:
		return ast.BinShr, 55, true
	case lexer.TokEqEq:
		return ast.BinEq, 50, true
	case lexer.TokBangEq:
		return ast.BinNe, 50, true
	case lexer.TokLt:
		return ast.BinLt, 40, true
	case lexer.TokLe:
		return ast.BinLe, 40, true
	case lexer.TokGt:
		return ast.BinGt, 40, true
	case lexer.TokGe:
		return ast.BinGe, 40, true
	case lexer.TokAmp:
		return ast.BinBitAnd, 35, true
	case lexer.TokCaret:
		return ast.BinBitXor, 30, true
	case lexer.TokPipe:
		return ast.BinBitOr, 25, true
	case lexer.TokAmpAmp:
		return ast.BinLogicalAnd, 20, true
	case lexer.TokPipePipe:
		return ast.BinLogicalOr, 10, true
	}
	return 0, 0, false
}

func (p *Parser) parseExpression() ast.Expr {
	if expr, ok := p.tryParseAssign(); ok {
		return expr
	}
	return p.parseBinaryExpr(0)
}

// tryParseAssign looks ahead for a top-level `lvalue (op)= rhs` pattern;
// assignment binds looser than every operator in the precedence table
// and is right-associative, so it is handled above the Pratt loop
// rather than inside it.
func (p *Parser) tryParseAssign() (ast.Expr, bool) {
	start := p.pos
	startErrs := len(p.errors)
	left := p.parseBinaryExpr(0)
	op, ok := assignOpFor(p.current().Kind)
	if !ok {
		p.pos = start
		p.errors = p.errors[:startErrs]
		return nil, false
	}
	loc := p.advance().Loc
	right := p.parseExpression()
	return &ast.AssignExpr{ExprBase: ast.ExprAt(loc), Op: op, Left: left, Right: right}, true
}

func assignOpFor(kind lexer.TokenKind) (ast.AssignOp, bool) {
	switch kind {
	case lexer.TokEq:
		return ast.AssignSet, true
	case lexer.TokPlusEq:
		return ast.AssignAdd, true
	case lexer.TokMinusEq:
		return ast.AssignSub, true
	case lexer.TokStarEq:
		return ast.AssignMul, true
	case lexer.TokSlashEq:
		return ast.AssignDiv, true
	case lexer.TokPercentEq:
		return ast.AssignMod, true
	case lexer.TokAmpEq:
		return ast.AssignAnd, true
	case lexer.TokPipeEq:
		return ast.AssignOr, true
	case lexer.TokCaretEq:
		return ast.AssignXor, true
	case lexer.TokLtLtEq:
		return ast.AssignShl, true
	case lexer.TokGtGtEq:
		return ast.AssignShr, true
	}
	return 0, false
}

func (p *Parser) parseBinaryExpr(minPower int) ast.Expr {
	left := p.parseUnaryExpr()
	for {
		op, power, ok := bindingPower(p.current().Kind)
		if !ok || power < minPower {
			return left
		}
		loc := p.advance().Loc
		// Left-associative: the recursive call demands strictly higher
		// power so same-precedence operators bind to the left.
		right := p.parseBinaryExpr(power + 1)
		left = &ast.BinaryExpr{ExprBase: ast.ExprAt(loc), Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseUnaryExpr() ast.Expr {
	var op ast.UnaryOp
	switch p.current().Kind {
	case lexer.TokMinus:
		op = ast.UnaryNeg
	case lexer.TokPlus:
		op = ast.UnaryPlus
	case lexer.TokBang:
		op = ast.UnaryLogicalNot
	case lexer.TokTilde:
		op = ast.UnaryBitNot
	default:
		return p.parsePostfixExpr()
	}
	loc := p.advance().Loc
	// Unary is right-associative: recurse into unary again (not the
	// full binary chain) so `- - x` parses as `-(-x)`.
	operand := p.parseUnaryExpr()
	return &ast.UnaryExpr{ExprBase: ast.ExprAt(loc), Op: op, Operand: operand}
}

func (p *Parser) parsePostfixExpr() ast.Expr {
	expr := p.parsePrimaryExpr()
	for {
		switch p.current().Kind {
		case lexer.TokDot:
			loc := p.advance().Loc
			nameTok, ok := p.expect(lexer.TokIdent)
			if !ok {
				return expr
			}
			if p.current().Kind == lexer.TokLParen {
				p.advance()
				args := p.parseArgList()
				// The resolver later decides, from the object's resolved
				// type, whether `name` denotes a method (rewritten into
				// CallMethodExpr) or a swizzle-then-call error; at parse
				// time both look identical so a generic access+call pair
				// is recorded and left for C6 to specialize.
				expr = &ast.CallFunctionExpr{
					ExprBase: ast.ExprAt(loc),
					Callee:   &ast.AccessIdentifierExpr{ExprBase: ast.ExprAt(loc), Object: expr, Name: nameTok.Ident},
					Args:     args,
				}
				continue
			}
			expr = &ast.AccessIdentifierExpr{ExprBase: ast.ExprAt(loc), Object: expr, Name: nameTok.Ident}
		case lexer.TokLBracket:
			loc := p.advance().Loc
			idx := p.parseExpression()
			p.expect(lexer.TokRBracket)
			expr = &ast.AccessIndexExpr{ExprBase: ast.ExprAt(loc), Object: expr, Index: idx}
		case lexer.TokLParen:
			loc := p.advance().Loc
			args := p.parseArgList()
			expr = &ast.CallFunctionExpr{ExprBase: ast.ExprAt(loc), Callee: expr, Args: args}
		default:
			return expr
		}
	}
}

func (p *Parser) parseArgList() []ast.Expr {
	var args []ast.Expr
	for p.current().Kind != lexer.TokRParen && p.current().Kind != lexer.TokEOF {
		args = append(args, p.parseExpression())
		if !p.match(lexer.TokComma) {
			break
		}
	}
	p.expect(lexer.TokRParen)
	return args
}

func (p *Parser) parsePrimaryExpr() ast.Expr {
	tok := p.current()
	switch tok.Kind {
	case lexer.TokIntLiteral:
		p.advance()
		return &ast.ConstantExpr{ExprBase: ast.ExprAt(tok.Loc), Value: ast.Const{Kind: ast.KIntLiteral, I64: tok.Int}}
	case lexer.TokFloatLiteral:
		p.advance()
		return &ast.ConstantExpr{ExprBase: ast.ExprAt(tok.Loc), Value: ast.Const{Kind: ast.KFloatLiteral, F64: tok.Float}}
	case lexer.TokStringLiteral:
		p.advance()
		return &ast.ConstantExpr{ExprBase: ast.ExprAt(tok.Loc), Value: ast.Const{Kind: ast.KString, Str: tok.Str}}
	case lexer.TokTrue:
		p.advance()
		return &ast.ConstantExpr{ExprBase: ast.ExprAt(tok.Loc), Value: ast.Const{Kind: ast.KBool, Bool: true}}
	case lexer.TokFalse:
		p.advance()
		return &ast.ConstantExpr{ExprBase: ast.ExprAt(tok.Loc), Value: ast.Const{Kind: ast.KBool, Bool: false}}
	case lexer.TokConstSelect:
		p.advance()
		p.expect(lexer.TokLParen)
		cond := p.parseExpression()
		p.expect(lexer.TokComma)
		whenTrue := p.parseExpression()
		p.expect(lexer.TokComma)
		whenFalse := p.parseExpression()
		p.expect(lexer.TokRParen)
		return &ast.ConditionalExpr{ExprBase: ast.ExprAt(tok.Loc), Condition: cond, WhenTrue: whenTrue, WhenFalse: whenFalse}
	case lexer.TokLParen:
		p.advance()
		if p.current().Kind == lexer.TokRParen {
			p.advance()
			return &ast.ConstantExpr{ExprBase: ast.ExprAt(tok.Loc), Value: ast.Const{}}
		}
		inner := p.parseExpression()
		p.expect(lexer.TokRParen)
		return inner
	case lexer.TokIdent:
		p.advance()
		// A type-cast call `Name(args)` and an ordinary function call
		// share this same IdentifierExpr+CallFunctionExpr shape; the
		// resolver (C6) disambiguates once it knows whether `Name` names
		// a type or a function.
		return &ast.IdentifierExpr{ExprBase: ast.ExprAt(tok.Loc), Name: tok.Ident}
	default:
		p.errorHere(ErrUnexpectedToken, "expected an expression, got "+tok.Kind.String())
		p.advance()
		return &ast.ConstantExpr{ExprBase: ast.ExprAt(tok.Loc), Value: ast.Const{}}
	}
}
