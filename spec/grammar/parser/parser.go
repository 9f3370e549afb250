package parser

import (
	"fmt"
	"io"

	verr "github.com/nihei9/ffcalc/error"
)

type RootNode struct {
	Productions []*ProductionNode
}

type ProductionNode struct {
	LHS string
	RHS []*AlternativeNode
	Pos Position
}

// AlternativeNode is a right-hand side. An alternative without elements derives the empty string.
type AlternativeNode struct {
	Elements []*ElementNode
	Pos      Position
}

func (n *AlternativeNode) IsEmpty() bool {
	return len(n.Elements) == 0
}

type ElementNode struct {
	ID  string
	Pos Position
}

func raiseSyntaxError(tok *token, synErr *SyntaxError) {
	panic(&verr.SpecError{
		Cause:  synErr,
		Detail: tok.text,
		Row:    tok.pos.Row,
		Col:    tok.pos.Col,
	})
}

// Parse parses productions written one rule per line:
//
//	E -> E + T | T
//	T -> T * F
//	   | F
//	F -> ( E ) | id
//	A -> ε
//
// Symbols are separated by white spaces. A line beginning with | continues the previous rule.
// When the source contains syntax errors, Parse reports all of them as verr.SpecErrors.
func Parse(src io.Reader) (*RootNode, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	return p.parse()
}

type parser struct {
	lex     *lexer
	queue   []*token
	lastTok *token
	errs    verr.SpecErrors
}

func newParser(src io.Reader) (*parser, error) {
	lex, err := newLexer(src)
	if err != nil {
		return nil, err
	}
	return &parser{
		lex: lex,
	}, nil
}

func (p *parser) parse() (root *RootNode, retErr error) {
	defer func() {
		v := recover()
		if v != nil {
			err, ok := v.(error)
			if !ok {
				retErr = fmt.Errorf("an unexpected error occurred: %v", v)
				return
			}
			root = nil
			retErr = err
		}
	}()

	root = p.parseRoot()
	if len(p.errs) > 0 {
		return nil, p.errs
	}
	return root, nil
}

func (p *parser) parseRoot() *RootNode {
	root := &RootNode{
		Productions: []*ProductionNode{},
	}
	for {
		switch p.peek(0).kind {
		case tokenKindNewline:
			p.pop()
			continue
		case tokenKindEOF:
			return root
		}
		prod := p.parseProduction()
		if prod != nil {
			root.Productions = append(root.Productions, prod)
		}
	}
}

func (p *parser) parseProduction() (prod *ProductionNode) {
	defer func() {
		v := recover()
		if v == nil {
			return
		}
		specErr, ok := v.(*verr.SpecError)
		if !ok {
			panic(v)
		}
		p.errs = append(p.errs, specErr)
		p.skipProduction()
		prod = nil
	}()

	if !p.consume(tokenKindSymbol) {
		raiseSyntaxError(p.peek(0), synErrNoLHS)
	}
	lhs := p.lastTok

	if !p.consume(tokenKindArrow) {
		raiseSyntaxError(p.peek(0), synErrNoArrow)
	}

	rhs := []*AlternativeNode{p.parseAlternative()}
	for {
		if p.consume(tokenKindOr) || p.consumeContinuation() {
			rhs = append(rhs, p.parseAlternative())
			continue
		}
		break
	}

	if !p.consume(tokenKindNewline) && p.peek(0).kind != tokenKindEOF {
		raiseSyntaxError(p.peek(0), synErrUnexpectedToken)
	}

	return &ProductionNode{
		LHS: lhs.text,
		RHS: rhs,
		Pos: lhs.pos,
	}
}

func (p *parser) parseAlternative() *AlternativeNode {
	pos := p.peek(0).pos
	if p.consume(tokenKindEmpty) {
		if next := p.peek(0); next.kind == tokenKindSymbol || next.kind == tokenKindEmpty {
			raiseSyntaxError(next, synErrEmptyNotAlone)
		}
		return &AlternativeNode{
			Elements: []*ElementNode{},
			Pos:      pos,
		}
	}

	elems := []*ElementNode{}
	for p.consume(tokenKindSymbol) {
		elems = append(elems, &ElementNode{
			ID:  p.lastTok.text,
			Pos: p.lastTok.pos,
		})
	}
	switch next := p.peek(0); next.kind {
	case tokenKindEmpty:
		raiseSyntaxError(next, synErrEmptyNotAlone)
	case tokenKindArrow:
		raiseSyntaxError(next, synErrArrowInRHS)
	}
	return &AlternativeNode{
		Elements: elems,
		Pos:      pos,
	}
}

// consumeContinuation consumes a newline only when the next line begins with |.
func (p *parser) consumeContinuation() bool {
	if p.peek(0).kind != tokenKindNewline || p.peek(1).kind != tokenKindOr {
		return false
	}
	p.pop()
	p.pop()
	return true
}

// skipProduction discards tokens up to the end of the current rule, including its continuation lines.
func (p *parser) skipProduction() {
	for {
		tok := p.peek(0)
		if tok.kind == tokenKindEOF {
			return
		}
		p.pop()
		if tok.kind == tokenKindNewline && p.peek(0).kind != tokenKindOr {
			return
		}
	}
}

func (p *parser) peek(n int) *token {
	for len(p.queue) <= n {
		tok, err := p.lex.next()
		if err != nil {
			panic(err)
		}
		p.queue = append(p.queue, tok)
	}
	return p.queue[n]
}

func (p *parser) pop() *token {
	tok := p.peek(0)
	p.queue = p.queue[1:]
	return tok
}

func (p *parser) consume(expected tokenKind) bool {
	tok := p.peek(0)
	if tok.kind == tokenKindInvalid {
		p.pop()
		raiseSyntaxError(tok, synErrInvalidToken)
	}
	if tok.kind != expected {
		return false
	}
	p.pop()
	p.lastTok = tok
	return true
}
