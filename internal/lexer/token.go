// Package lexer tokenizes NZSL (the shading source language) source text.
//
// The lexer converts a source string into a sequence of tokens with
// precise source locations, handling keywords, operators, numeric and
// string literals, and both comment forms.
package lexer

// SourceFile identifies a file a token or AST node was read from. Files
// are compared by pointer identity so two modules can share one File
// without re-reading it.
type SourceFile struct {
	Name string
}

// SourceLocation is a half-open-free, inclusive-both-ends source range:
// (file, start line, start column, end line, end column). Locations are
// 1-based. A zero-value SourceLocation has no File and is "missing" —
// only the validator diagnoses that.
type SourceLocation struct {
	File       *SourceFile
	StartLine  int
	StartCol   int
	EndLine    int
	EndCol     int
}

// IsValid reports whether the location carries a file reference.
func (l SourceLocation) IsValid() bool {
	return l.File != nil
}

// ExtendTo merges two locations from the same file into their
// encompassing range: the start of l and the end of other.
func (l SourceLocation) ExtendTo(other SourceLocation) SourceLocation {
	return SourceLocation{
		File:      l.File,
		StartLine: l.StartLine,
		StartCol:  l.StartCol,
		EndLine:   other.EndLine,
		EndCol:    other.EndCol,
	}
}

// TokenKind identifies the lexical category of a Token.
type TokenKind uint8

const (
	TokError TokenKind = iota
	TokEOF

	TokIdent
	TokIntLiteral
	TokFloatLiteral
	TokStringLiteral

	// Keywords
	TokModule
	TokFn
	TokLet
	TokConst
	TokIf
	TokElse
	TokWhile
	TokFor
	TokReturn
	TokBreak
	TokContinue
	TokDiscard
	TokStruct
	TokAlias
	TokExternal
	TokOption
	TokImport
	TokFrom
	TokAs
	TokIn
	TokOut
	TokInout
	TokTrue
	TokFalse
	TokConstSelect

	// Punctuators
	TokLParen
	TokRParen
	TokLBrace
	TokRBrace
	TokLBracket
	TokRBracket
	TokSemicolon
	TokColon
	TokComma
	TokDot
	TokArrow
	TokAt

	// Operators
	TokPlus
	TokMinus
	TokStar
	TokSlash
	TokPercent
	TokAmp
	TokPipe
	TokCaret
	TokTilde
	TokBang
	TokAmpAmp
	TokPipePipe
	TokLtLt
	TokGtGt
	TokEqEq
	TokBangEq
	TokLt
	TokLe
	TokGt
	TokGe
	TokEq

	// Compound assignment
	TokPlusEq
	TokMinusEq
	TokStarEq
	TokSlashEq
	TokPercentEq
	TokAmpEq
	TokPipeEq
	TokCaretEq
	TokLtLtEq
	TokGtGtEq
)

var tokenNames = map[TokenKind]string{
	TokError: "error", TokEOF: "end-of-stream",
	TokIdent: "identifier", TokIntLiteral: "integer literal",
	TokFloatLiteral: "float literal", TokStringLiteral: "string literal",
	TokModule: "module", TokFn: "fn", TokLet: "let", TokConst: "const",
	TokIf: "if", TokElse: "else", TokWhile: "while", TokFor: "for",
	TokReturn: "return", TokBreak: "break", TokContinue: "continue",
	TokDiscard: "discard", TokStruct: "struct", TokAlias: "alias",
	TokExternal: "external", TokOption: "option", TokImport: "import",
	TokFrom: "from", TokAs: "as", TokIn: "in", TokOut: "out", TokInout: "inout",
	TokTrue: "true", TokFalse: "false", TokConstSelect: "const_select",
	TokLParen: "(", TokRParen: ")", TokLBrace: "{", TokRBrace: "}",
	TokLBracket: "[", TokRBracket: "]", TokSemicolon: ";", TokColon: ":",
	TokComma: ",", TokDot: ".", TokArrow: "->", TokAt: "@",
	TokPlus: "+", TokMinus: "-", TokStar: "*", TokSlash: "/", TokPercent: "%",
	TokAmp: "&", TokPipe: "|", TokCaret: "^", TokTilde: "~", TokBang: "!",
	TokAmpAmp: "&&", TokPipePipe: "||", TokLtLt: "<<", TokGtGt: ">>",
	TokEqEq: "==", TokBangEq: "!=", TokLt: "<", TokLe: "<=", TokGt: ">",
	TokGe: ">=", TokEq: "=",
	TokPlusEq: "+=", TokMinusEq: "-=", TokStarEq: "*=", TokSlashEq: "/=",
	TokPercentEq: "%=", TokAmpEq: "&=", TokPipeEq: "|=", TokCaretEq: "^=",
	TokLtLtEq: "<<=", TokGtGtEq: ">>=",
}

func (k TokenKind) String() string {
	if s, ok := tokenNames[k]; ok {
		return s
	}
	return "unknown"
}

// Keywords maps keyword spellings to their token kind. const_select is a
// keyword (§3.2) distinct from the select(...) builtin call.
var Keywords = map[string]TokenKind{
	"module": TokModule, "fn": TokFn, "let": TokLet, "const": TokConst,
	"if": TokIf, "else": TokElse, "while": TokWhile, "for": TokFor,
	"return": TokReturn, "break": TokBreak, "continue": TokContinue,
	"discard": TokDiscard, "struct": TokStruct, "alias": TokAlias,
	"external": TokExternal, "option": TokOption, "import": TokImport,
	"from": TokFrom, "as": TokAs, "in": TokIn, "out": TokOut, "inout": TokInout,
	"true": TokTrue, "false": TokFalse, "const_select": TokConstSelect,
}

// Token is a single lexical unit with its source location and payload.
type Token struct {
	Kind  TokenKind
	Loc   SourceLocation
	Ident string // TokIdent payload
	Int   int64  // TokIntLiteral payload
	Float float64 // TokFloatLiteral payload
	Str   string // TokStringLiteral payload (already unescaped)
	Raw   string // original source text, used for diagnostics
}
