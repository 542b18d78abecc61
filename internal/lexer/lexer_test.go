package lexer

import "testing"

func kinds(t *testing.T, toks []Token) []TokenKind {
	t.Helper()
	out := make([]TokenKind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestTokenizeKeywordsAndPunctuation(t *testing.T) {
	toks, err := Tokenize(`[nzsl_version("1.0")] module; fn main() {}`, "t.nzsl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []TokenKind{
		TokLBracket, TokIdent, TokLParen, TokStringLiteral, TokRParen, TokRBracket,
		TokModule, TokSemicolon, TokFn, TokIdent, TokLParen, TokRParen, TokLBrace, TokRBrace, TokEOF,
	}
	got := kinds(t, toks)
	if len(got) != len(want) {
		t.Fatalf("token count mismatch: got %d want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %s want %s", i, got[i], want[i])
		}
	}
}

func TestTokenizeNumberForms(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		kind    TokenKind
		isFloat bool
	}{
		{"decimal int", "42", TokIntLiteral, false},
		{"hex int", "0x2A", TokIntLiteral, false},
		{"bin int", "0b101010", TokIntLiteral, false},
		{"oct int", "0o52", TokIntLiteral, false},
		{"plain float", "3.14", TokFloatLiteral, true},
		{"exponent float", "1e10", TokFloatLiteral, true},
		{"f suffix", "1f", TokFloatLiteral, true},
		{"trailing dot", "1.", TokFloatLiteral, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			toks, err := Tokenize(tc.src, "t.nzsl")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if toks[0].Kind != tc.kind {
				t.Fatalf("got kind %s want %s", toks[0].Kind, tc.kind)
			}
		})
	}
}

func TestTokenizeStringEscapes(t *testing.T) {
	toks, err := Tokenize(`"a\nb\tc\\d\"e\x41"`, "t.nzsl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "a\nb\tc\\d\"eA"
	if toks[0].Str != want {
		t.Fatalf("got %q want %q", toks[0].Str, want)
	}
}

func TestTokenizeUnterminatedStringFails(t *testing.T) {
	_, err := Tokenize(`"abc`, "t.nzsl")
	if err == nil {
		t.Fatal("expected LexError")
	}
	if _, ok := err.(*LexError); !ok {
		t.Fatalf("expected *LexError, got %T", err)
	}
}

func TestTokenizeUnterminatedBlockCommentFails(t *testing.T) {
	_, err := Tokenize("/* never closes", "t.nzsl")
	if err == nil {
		t.Fatal("expected LexError")
	}
}

func TestTokenizeInvalidEscapeFails(t *testing.T) {
	_, err := Tokenize(`"\q"`, "t.nzsl")
	if err == nil {
		t.Fatal("expected LexError")
	}
}

func TestTokenizeLineCommentsAndBlockComments(t *testing.T) {
	toks, err := Tokenize("// line\nfn /* block */ main", "t.nzsl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []TokenKind{TokFn, TokIdent, TokEOF}
	got := kinds(t, toks)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %s want %s", i, got[i], want[i])
		}
	}
}

func TestSourceLocationsAreOneBasedInclusive(t *testing.T) {
	toks, err := Tokenize("fn", "t.nzsl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loc := toks[0].Loc
	if loc.StartLine != 1 || loc.StartCol != 1 {
		t.Fatalf("got start %d:%d want 1:1", loc.StartLine, loc.StartCol)
	}
}
