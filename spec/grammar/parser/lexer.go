package parser

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/nihei9/ffcalc/grammar/symbol"
	mlcompiler "github.com/nihei9/maleeni/compiler"
	mldriver "github.com/nihei9/maleeni/driver"
	mlspec "github.com/nihei9/maleeni/spec"
)

type tokenKind string

const (
	tokenKindSymbol  = tokenKind("symbol")
	tokenKindArrow   = tokenKind("->")
	tokenKindOr      = tokenKind("|")
	tokenKindEmpty   = tokenKind("ε")
	tokenKindNewline = tokenKind("newline")
	tokenKindEOF     = tokenKind("eof")
	tokenKindInvalid = tokenKind("invalid")
)

type Position struct {
	Row int
	Col int
}

func newPosition(row, col int) Position {
	return Position{
		Row: row,
		Col: col,
	}
}

type token struct {
	kind tokenKind
	text string
	pos  Position
}

func newMarkToken(kind tokenKind, text string, pos Position) *token {
	return &token{
		kind: kind,
		text: text,
		pos:  pos,
	}
}

func newSymbolToken(text string, pos Position) *token {
	return &token{
		kind: tokenKindSymbol,
		text: text,
		pos:  pos,
	}
}

func newEOFToken(pos Position) *token {
	return &token{
		kind: tokenKindEOF,
		pos:  pos,
	}
}

func newInvalidToken(text string, pos Position) *token {
	return &token{
		kind: tokenKindInvalid,
		text: text,
		pos:  pos,
	}
}

// The lexer prefers the entry that appears first when two entries match the same length,
// so the markers must precede the symbol entry.
var lexEntries = []*mlspec.LexEntry{
	{
		Kind:    mlspec.LexKindName("white_space"),
		Pattern: mlspec.LexPattern(`[\u{0009}\u{0020}]+`),
	},
	{
		Kind:    mlspec.LexKindName("newline"),
		Pattern: mlspec.LexPattern(`\u{000A}|\u{000D}\u{000A}|\u{000D}`),
	},
	{
		Kind:    mlspec.LexKindName("arrow"),
		Pattern: mlspec.LexPattern(`->|→|::=`),
	},
	{
		Kind:    mlspec.LexKindName("or"),
		Pattern: mlspec.LexPattern(`\|`),
	},
	{
		Kind:    mlspec.LexKindName("empty"),
		Pattern: mlspec.LexPattern(`ε|ϵ|%empty`),
	},
	{
		Kind:    mlspec.LexKindName("symbol"),
		Pattern: mlspec.LexPattern(`[^\u{0009}\u{0020}\u{000A}\u{000D}|]+`),
	},
}

var (
	compileLexSpecOnce sync.Once
	compiledLexSpec    *mlspec.CompiledLexSpec
	compileLexSpecErr  error
)

func loadLexSpec() (*mlspec.CompiledLexSpec, error) {
	compileLexSpecOnce.Do(func() {
		s := &mlspec.LexSpec{
			Name:    "productions",
			Entries: lexEntries,
		}
		clspec, err, cErrs := mlcompiler.Compile(s, mlcompiler.CompressionLevel(mlcompiler.CompressionLevelMax))
		if err != nil {
			if len(cErrs) > 0 {
				var b strings.Builder
				writeCompileError(&b, cErrs[0])
				for _, cErr := range cErrs[1:] {
					fmt.Fprintf(&b, "\n")
					writeCompileError(&b, cErr)
				}
				compileLexSpecErr = fmt.Errorf("cannot compile the lexical specification: %v", b.String())
				return
			}
			compileLexSpecErr = fmt.Errorf("cannot compile the lexical specification: %w", err)
			return
		}
		compiledLexSpec = clspec
	})
	return compiledLexSpec, compileLexSpecErr
}

func writeCompileError(w io.Writer, cErr *mlcompiler.CompileError) {
	fmt.Fprintf(w, "%v: %v", cErr.Kind, cErr.Cause)
	if cErr.Detail != "" {
		fmt.Fprintf(w, ": %v", cErr.Detail)
	}
}

type lexer struct {
	s   *mlspec.CompiledLexSpec
	d   *mldriver.Lexer
	buf *token
	eof *token

	// end is the 0-based position just after the last lexeme. The driver reports the EOF token at 0:0.
	endRow int
	endCol int
}

func newLexer(src io.Reader) (*lexer, error) {
	s, err := loadLexSpec()
	if err != nil {
		return nil, err
	}
	d, err := mldriver.NewLexer(mldriver.NewLexSpec(s), src)
	if err != nil {
		return nil, err
	}
	return &lexer{
		s: s,
		d: d,
	}, nil
}

// next returns the next token. Consecutive newlines are combined into one newline token.
func (l *lexer) next() (*token, error) {
	if l.buf != nil {
		tok := l.buf
		l.buf = nil
		return tok, nil
	}

	var newline *token
	for {
		tok, err := l.lexAndSkipWSs()
		if err != nil {
			return nil, err
		}
		if tok.kind == tokenKindNewline {
			newline = tok
			continue
		}

		if newline != nil {
			l.buf = tok
			return newline, nil
		}
		return tok, nil
	}
}

func (l *lexer) lexAndSkipWSs() (*token, error) {
	if l.eof != nil {
		return l.eof, nil
	}

	var tok *mldriver.Token
	var kind mlspec.LexKindName
	for {
		var err error
		tok, err = l.d.Next()
		if err != nil {
			return nil, err
		}
		if tok.EOF {
			l.eof = newEOFToken(newPosition(l.endRow+1, l.endCol+1))
			return l.eof, nil
		}
		l.advance(tok)
		if tok.Invalid {
			return newInvalidToken(string(tok.Lexeme), newPosition(tok.Row+1, tok.Col+1)), nil
		}
		kind = l.s.KindNames[tok.KindID]
		if kind == "white_space" {
			continue
		}

		break
	}

	pos := newPosition(tok.Row+1, tok.Col+1)
	text := string(tok.Lexeme)
	switch kind {
	case "newline":
		return newMarkToken(tokenKindNewline, "", pos), nil
	case "arrow":
		return newMarkToken(tokenKindArrow, text, pos), nil
	case "or":
		return newMarkToken(tokenKindOr, text, pos), nil
	case "empty":
		return newMarkToken(tokenKindEmpty, text, pos), nil
	case "symbol":
		return newSymbolToken(symbol.Normalize(text), pos), nil
	default:
		return newInvalidToken(text, pos), nil
	}
}

// advance moves the end position over a lexeme. Like the driver, it treats LF as the end of lines
// and counts columns in code points.
func (l *lexer) advance(tok *mldriver.Token) {
	l.endRow = tok.Row
	l.endCol = tok.Col
	for _, r := range string(tok.Lexeme) {
		if r == '\n' {
			l.endRow++
			l.endCol = 0
			continue
		}
		l.endCol++
	}
}
