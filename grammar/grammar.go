package grammar

import (
	"errors"
	"fmt"
	"strings"

	verr "github.com/nihei9/ffcalc/error"
	"github.com/nihei9/ffcalc/grammar/symbol"
	"github.com/nihei9/ffcalc/spec/grammar/parser"
)

// Grammar is a validated context-free grammar augmented with a production S' → S,
// where S is the start symbol.
type Grammar struct {
	productionSet        *productionSet
	augmentedStartSymbol symbol.Symbol
	startSymbol          symbol.Symbol
	symbolTable          *symbol.SymbolTableReader
}

// StartSymbol returns the name of the start symbol.
func (g *Grammar) StartSymbol() string {
	text, _ := g.symbolTable.ToText(g.startSymbol)
	return text
}

// nonTerminalSymbols returns the augmented start symbol followed by the declared non-terminals
// in declaration order.
func (g *Grammar) nonTerminalSymbols() []symbol.Symbol {
	return append([]symbol.Symbol{g.augmentedStartSymbol}, g.symbolTable.NonTerminalSymbols()...)
}

func (g *Grammar) productionText(prod *production) string {
	var b strings.Builder
	lhs, _ := g.symbolTable.ToText(prod.lhs)
	fmt.Fprintf(&b, "%v →", lhs)
	if prod.isEmpty() {
		fmt.Fprintf(&b, " %v", symbol.NameEmpty)
		return b.String()
	}
	for _, sym := range prod.rhs {
		text, _ := g.symbolTable.ToText(sym)
		fmt.Fprintf(&b, " %v", text)
	}
	return b.String()
}

// itemText renders an item like `E → E ・ + T`.
func (g *Grammar) itemText(it lr0Item) string {
	var b strings.Builder
	lhs, _ := g.symbolTable.ToText(it.prod.lhs)
	fmt.Fprintf(&b, "%v →", lhs)
	for i, sym := range it.prod.rhs {
		if i == it.dot {
			fmt.Fprintf(&b, " ・")
		}
		text, _ := g.symbolTable.ToText(sym)
		fmt.Fprintf(&b, " %v", text)
	}
	if it.reducible() {
		fmt.Fprintf(&b, " ・")
	}
	return b.String()
}

// GrammarBuilder validates declared symbols and parsed productions and builds a Grammar.
// When Start is empty, the first declared non-terminal becomes the start symbol.
type GrammarBuilder struct {
	NonTerminals []string
	Terminals    []string
	Start        string
	AST          *parser.RootNode

	errs verr.SpecErrors
}

// Build returns verr.SpecErrors containing every semantic error found. Each of them
// matches either verr.ErrInvalidGrammar or verr.ErrAmbiguousStartSymbol.
func (b *GrammarBuilder) Build() (*Grammar, error) {
	symTab := symbol.NewSymbolTable()

	nonTermSyms := b.declareSymbols(symTab, b.NonTerminals, false)
	b.declareSymbols(symTab, b.Terminals, true)

	startSym, ok := b.findStartSymbol(symTab.Reader(), nonTermSyms)
	if !ok {
		return nil, b.errs
	}

	startText, _ := symTab.Reader().ToText(startSym)
	augStartSym, err := symTab.Writer().RegisterStartSymbol(startText)
	if err != nil {
		return nil, err
	}

	prods := newProductionSet()
	{
		p, err := newProduction(augStartSym, []symbol.Symbol{startSym})
		if err != nil {
			return nil, err
		}
		prods.append(p)
	}

	if b.AST != nil {
		err := b.genProductions(symTab.Reader(), prods)
		if err != nil {
			return nil, err
		}
	}

	if len(b.errs) > 0 {
		return nil, b.errs
	}

	return &Grammar{
		productionSet:        prods,
		augmentedStartSymbol: augStartSym,
		startSymbol:          startSym,
		symbolTable:          symTab.Reader(),
	}, nil
}

func (b *GrammarBuilder) declareSymbols(symTab *symbol.SymbolTable, names []string, terminal bool) []symbol.Symbol {
	w := symTab.Writer()
	r := symTab.Reader()
	syms := []symbol.Symbol{}
	for _, name := range names {
		text := symbol.Normalize(name)
		if text == "" {
			continue
		}
		if symbol.IsReserved(text) {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrReservedName,
				Detail: text,
			})
			continue
		}
		if !symbol.IsReferable(text) {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrUnreferableName,
				Detail: text,
			})
			continue
		}
		if sym, ok := r.ToSymbol(text); ok {
			cause := semErrDuplicateName
			switch {
			case terminal && sym.IsTerminal():
				cause = semErrDuplicateTerminal
			case !terminal && sym.IsNonTerminal():
				cause = semErrDuplicateNonTerminal
			}
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  cause,
				Detail: text,
			})
			continue
		}

		var sym symbol.Symbol
		var err error
		if terminal {
			sym, err = w.RegisterTerminalSymbol(text)
		} else {
			sym, err = w.RegisterNonTerminalSymbol(text)
		}
		if err != nil {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrTooManySymbols,
				Detail: text,
			})
			break
		}
		syms = append(syms, sym)
	}
	return syms
}

func (b *GrammarBuilder) findStartSymbol(r *symbol.SymbolTableReader, nonTermSyms []symbol.Symbol) (symbol.Symbol, bool) {
	start := symbol.Normalize(b.Start)
	if start == "" {
		if len(nonTermSyms) == 0 {
			b.errs = append(b.errs, &verr.SpecError{
				Cause: semErrNoNonTerminal,
			})
			return symbol.SymbolNil, false
		}
		return nonTermSyms[0], true
	}

	sym, ok := r.ToSymbol(start)
	if !ok || !sym.IsNonTerminal() {
		b.errs = append(b.errs, &verr.SpecError{
			Cause:  semErrUnknownStart,
			Detail: start,
		})
		return symbol.SymbolNil, false
	}
	return sym, true
}

func (b *GrammarBuilder) genProductions(r *symbol.SymbolTableReader, prods *productionSet) error {
	for _, prodNode := range b.AST.Productions {
		lhsSym, ok := b.lookUpSymbol(r, prodNode.LHS, prodNode.Pos)
		if ok && lhsSym.IsTerminal() {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrTerminalLHS,
				Detail: prodNode.LHS,
				Row:    prodNode.Pos.Row,
				Col:    prodNode.Pos.Col,
			})
			ok = false
		}

		for _, alt := range prodNode.RHS {
			rhsOK := true
			rhsSyms := make([]symbol.Symbol, 0, len(alt.Elements))
			for _, elem := range alt.Elements {
				sym, found := b.lookUpSymbol(r, elem.ID, elem.Pos)
				if !found {
					rhsOK = false
					continue
				}
				rhsSyms = append(rhsSyms, sym)
			}
			if !ok || !rhsOK {
				continue
			}

			p, err := newProduction(lhsSym, rhsSyms)
			if err != nil {
				return err
			}
			prods.append(p)
		}
	}
	return nil
}

// lookUpSymbol finds a declared symbol. The augmented start symbol and the EOF symbol are
// internal, so they are treated as undeclared.
func (b *GrammarBuilder) lookUpSymbol(r *symbol.SymbolTableReader, text string, pos parser.Position) (symbol.Symbol, bool) {
	sym, ok := r.ToSymbol(text)
	if !ok || sym.IsStart() || sym.IsEOF() {
		b.errs = append(b.errs, &verr.SpecError{
			Cause:  semErrUndefinedSym,
			Detail: text,
			Row:    pos.Row,
			Col:    pos.Col,
		})
		return symbol.SymbolNil, false
	}
	return sym, true
}

// IsInvalidGrammar reports whether err is caused by a malformed or inconsistent grammar definition.
func IsInvalidGrammar(err error) bool {
	return errors.Is(err, verr.ErrInvalidGrammar)
}

// IsAmbiguousStartSymbol reports whether err is caused by a start symbol that cannot be determined.
func IsAmbiguousStartSymbol(err error) bool {
	return errors.Is(err, verr.ErrAmbiguousStartSymbol)
}
