package grammar

import (
	"strings"
	"testing"

	"github.com/nihei9/ffcalc/grammar/symbol"
	"github.com/nihei9/ffcalc/spec/grammar/parser"
)

type testGrammarSource struct {
	nonTerms []string
	terms    []string
	start    string
	src      string
}

var exprGrammar = testGrammarSource{
	nonTerms: []string{"expr", "term", "factor"},
	terms:    []string{"+", "*", "(", ")", "id"},
	src: `
expr -> expr + term | term
term -> term * factor | factor
factor -> ( expr ) | id
`,
}

func genTestGrammar(t *testing.T, s testGrammarSource) *Grammar {
	t.Helper()

	ast, err := parser.Parse(strings.NewReader(s.src))
	if err != nil {
		t.Fatal(err)
	}
	b := GrammarBuilder{
		NonTerminals: s.nonTerms,
		Terminals:    s.terms,
		Start:        s.start,
		AST:          ast,
	}
	gram, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	return gram
}

type testSymbolGenerator func(text string) symbol.Symbol

func newTestSymbolGenerator(t *testing.T, symTab *symbol.SymbolTableReader) testSymbolGenerator {
	return func(text string) symbol.Symbol {
		t.Helper()

		sym, ok := symTab.ToSymbol(text)
		if !ok {
			t.Fatalf("symbol was not found: %v", text)
		}
		return sym
	}
}

type testProductionGenerator func(lhs string, rhs ...string) *production

func newTestProductionGenerator(t *testing.T, genSym testSymbolGenerator) testProductionGenerator {
	return func(lhs string, rhs ...string) *production {
		t.Helper()

		rhsSym := []symbol.Symbol{}
		for _, text := range rhs {
			rhsSym = append(rhsSym, genSym(text))
		}
		prod, err := newProduction(genSym(lhs), rhsSym)
		if err != nil {
			t.Fatalf("failed to create a production: %v", err)
		}

		return prod
	}
}

func testStrings(t *testing.T, caption string, actual, expected []string) {
	t.Helper()
	if len(actual) != len(expected) {
		t.Fatalf("unexpected %v; want: %v, got: %v", caption, expected, actual)
	}
	for i, e := range expected {
		if actual[i] != e {
			t.Fatalf("unexpected %v; want: %v, got: %v", caption, expected, actual)
		}
	}
}
