package lexer

import (
	"testing"

	"github.com/berdon/asmx86/asmerr"
	"github.com/berdon/asmx86/token"
)

func kinds(toks []token.Token) []token.Kind {
	var out []token.Kind
	for _, t := range toks {
		out = append(out, t.Kind)
	}
	return out
}

func TestTokenizeDirectiveAndLabel(t *testing.T) {
	src := "@SetBitMode(16)\nstart:\n  ax = 0x1234\n  jmp start\n"
	toks := New([]byte(src), "t.asm").TokenizeAll()

	want := []token.Kind{
		token.SymbolAt, token.ReservedSetBitMode, token.SymbolLeftParanthesis,
		token.Number, token.SymbolRightParanthesis, token.NewLine,
		token.Identifier, token.SymbolColon, token.NewLine,
		token.Identifier, token.SymbolEquals, token.Number, token.NewLine,
		token.InstructionJmp, token.Identifier, token.NewLine,
		token.EOF,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestNumberBases(t *testing.T) {
	cases := map[string]string{
		"0x1337": "0x1337",
		"0b1010": "0b1010",
		"42":     "42",
	}
	for src, want := range cases {
		toks := New([]byte(src), "t.asm").TokenizeAll()
		if toks[0].Kind != token.Number || toks[0].Lexeme != want {
			t.Errorf("src %q: got %+v", src, toks[0])
		}
	}
}

func TestLineCommentsDiscarded(t *testing.T) {
	src := "ax = 1 ; a comment\nbx = 2 // another\n"
	toks := New([]byte(src), "t.asm").TokenizeAll()
	for _, tok := range toks {
		if tok.Kind == token.InvalidSymbol {
			t.Fatalf("unexpected invalid token: %+v", tok)
		}
	}
}

func TestBlockComment(t *testing.T) {
	src := "ax /* inline\nmultiline */ = 1\n"
	toks := New([]byte(src), "t.asm").TokenizeAll()
	want := []token.Kind{token.Identifier, token.SymbolEquals, token.Number, token.NewLine, token.EOF}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestUnterminatedBlockCommentFails(t *testing.T) {
	lx := New([]byte("/* never closed"), "t.asm")
	lx.TokenizeAll()
	if !lx.Errors().HasErrors() {
		t.Fatal("expected an InvalidMultilineComment error")
	}
	if lx.Errors().First().Kind != asmerr.InvalidMultilineComment {
		t.Errorf("got %v", lx.Errors().First().Kind)
	}
}

func TestStringLiteralWithEscapedQuote(t *testing.T) {
	src := `"hello \"world\""`
	toks := New([]byte(src), "t.asm").TokenizeAll()
	if toks[0].Kind != token.Literal {
		t.Fatalf("got %+v", toks[0])
	}
	if toks[0].Lexeme != `hello \"world\"` {
		t.Errorf("got lexeme %q", toks[0].Lexeme)
	}
}

func TestTripleQuotedMultilineString(t *testing.T) {
	src := "\"\"\"line one\nline two\"\"\""
	toks := New([]byte(src), "t.asm").TokenizeAll()
	if toks[0].Kind != token.Literal {
		t.Fatalf("got %+v", toks[0])
	}
	if toks[0].Lexeme != "line one\nline two" {
		t.Errorf("got lexeme %q", toks[0].Lexeme)
	}
}

func TestUnterminatedStringFails(t *testing.T) {
	lx := New([]byte(`"no closing quote`), "t.asm")
	lx.TokenizeAll()
	if !lx.Errors().HasErrors() {
		t.Fatal("expected InvalidString error")
	}
}

func TestReinitRestartsStream(t *testing.T) {
	lx := New([]byte("ax = 1\n"), "t.asm")
	first := lx.TokenizeAll()
	lx.Reinit()
	second := lx.TokenizeAll()
	if len(first) != len(second) {
		t.Fatalf("reinit produced a different token count: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Kind != second[i].Kind || first[i].Lexeme != second[i].Lexeme {
			t.Errorf("token %d differs after reinit: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestEOFRepeats(t *testing.T) {
	lx := New([]byte(""), "t.asm")
	a := lx.NextToken()
	b := lx.NextToken()
	if a.Kind != token.EOF || b.Kind != token.EOF {
		t.Fatalf("expected repeated EOF, got %+v then %+v", a, b)
	}
}
