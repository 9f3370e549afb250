package parser

import (
	"strings"
	"testing"
)

func TestLexer_Run(t *testing.T) {
	symTok := func(text string) *token {
		return newSymbolToken(text, newPosition(1, 0))
	}

	markTok := func(kind tokenKind, text string) *token {
		return newMarkToken(kind, text, newPosition(1, 0))
	}

	newlineTok := markTok(tokenKindNewline, "")

	tests := []struct {
		caption string
		src     string
		tokens  []*token
	}{
		{
			caption: "the lexer can recognize all kinds of tokens",
			src:     `E -> E + T | ε`,
			tokens: []*token{
				symTok("E"),
				markTok(tokenKindArrow, "->"),
				symTok("E"),
				symTok("+"),
				symTok("T"),
				markTok(tokenKindOr, "|"),
				markTok(tokenKindEmpty, "ε"),
				newEOFToken(newPosition(1, 0)),
			},
		},
		{
			caption: "the lexer can recognize alternative spellings of the arrow and the empty string marker",
			src:     `A → ϵ | %empty ::=`,
			tokens: []*token{
				symTok("A"),
				markTok(tokenKindArrow, "→"),
				markTok(tokenKindEmpty, "ϵ"),
				markTok(tokenKindOr, "|"),
				markTok(tokenKindEmpty, "%empty"),
				markTok(tokenKindArrow, "::="),
				newEOFToken(newPosition(1, 0)),
			},
		},
		{
			caption: "a symbol is a run of characters other than white spaces and |",
			src:     "id_1 ( ) a|b A->B -x ε'",
			tokens: []*token{
				symTok("id_1"),
				symTok("("),
				symTok(")"),
				symTok("a"),
				markTok(tokenKindOr, "|"),
				symTok("b"),
				symTok("A->B"),
				symTok("-x"),
				symTok("ε'"),
				newEOFToken(newPosition(1, 0)),
			},
		},
		{
			caption: "the lexer normalizes symbols into NFC",
			src:     "e\u0301",
			tokens: []*token{
				symTok("\u00e9"),
				newEOFToken(newPosition(1, 0)),
			},
		},
		{
			caption: "the lexer can recognize newlines and combine consecutive newlines into one",
			src:     "a\u000A\u000D\u000D\u000A \u000Ab\u000D\u000A",
			tokens: []*token{
				symTok("a"),
				newlineTok,
				symTok("b"),
				newlineTok,
				newEOFToken(newPosition(1, 0)),
			},
		},
		{
			caption: "the lexer ignores white spaces",
			src:     "\u0009a   b\u0009",
			tokens: []*token{
				symTok("a"),
				symTok("b"),
				newEOFToken(newPosition(1, 0)),
			},
		},
		{
			caption: "the lexer returns only the EOF token for an empty source",
			src:     "",
			tokens: []*token{
				newEOFToken(newPosition(1, 0)),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			l, err := newLexer(strings.NewReader(tt.src))
			if err != nil {
				t.Fatal(err)
			}
			n := 0
			for {
				tok, err := l.next()
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if n >= len(tt.tokens) {
					t.Fatalf("too many tokens; want: %v tokens, got: %+v", len(tt.tokens), tok)
				}
				testToken(t, tok, tt.tokens[n])
				n++
				if tok.kind == tokenKindEOF {
					break
				}
			}
			if n != len(tt.tokens) {
				t.Fatalf("unexpected token count; want: %v, got: %v", len(tt.tokens), n)
			}
		})
	}
}

func TestLexer_Position(t *testing.T) {
	l, err := newLexer(strings.NewReader("S -> a\n  | b"))
	if err != nil {
		t.Fatal(err)
	}
	expected := []Position{
		newPosition(1, 1),
		newPosition(1, 3),
		newPosition(1, 6),
		newPosition(1, 7),
		newPosition(2, 3),
		newPosition(2, 5),
	}
	for i, want := range expected {
		tok, err := l.next()
		if err != nil {
			t.Fatal(err)
		}
		if tok.pos != want {
			t.Fatalf("unexpected position; token #%v: %+v, want: %+v, got: %+v", i, tok, want, tok.pos)
		}
	}
}

func TestLexer_PositionInCodePoints(t *testing.T) {
	tests := []struct {
		caption  string
		src      string
		expected []Position
	}{
		{
			caption: "columns count code points rather than bytes",
			src:     "\u00e9 → ε | \u00fc",
			expected: []Position{
				newPosition(1, 1),
				newPosition(1, 3),
				newPosition(1, 5),
				newPosition(1, 7),
				newPosition(1, 9),
				newPosition(1, 10),
			},
		},
		{
			caption: "a CR LF pair ends a line",
			src:     "a\r\nb c",
			expected: []Position{
				newPosition(1, 1),
				newPosition(1, 2),
				newPosition(2, 1),
				newPosition(2, 3),
				newPosition(2, 4),
			},
		},
		{
			caption: "the EOF token follows a trailing newline",
			src:     "a\n",
			expected: []Position{
				newPosition(1, 1),
				newPosition(1, 2),
				newPosition(2, 1),
			},
		},
		{
			caption: "the EOF token of an empty source is at the beginning",
			src:     "",
			expected: []Position{
				newPosition(1, 1),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			l, err := newLexer(strings.NewReader(tt.src))
			if err != nil {
				t.Fatal(err)
			}
			for i, want := range tt.expected {
				tok, err := l.next()
				if err != nil {
					t.Fatal(err)
				}
				if tok.pos != want {
					t.Fatalf("unexpected position; token #%v: %+v, want: %+v, got: %+v", i, tok, want, tok.pos)
				}
			}
			tok, err := l.next()
			if err != nil {
				t.Fatal(err)
			}
			if tok.kind != tokenKindEOF {
				t.Fatalf("the lexer must reach EOF; got: %+v", tok)
			}
		})
	}
}

func testToken(t *testing.T, tok, expected *token) {
	t.Helper()
	if tok.kind != expected.kind || tok.text != expected.text {
		t.Fatalf("unexpected token; want: %+v, got: %+v", expected, tok)
	}
}
