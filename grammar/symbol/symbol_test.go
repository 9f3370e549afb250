package symbol

import "testing"

func TestSymbol(t *testing.T) {
	tab := NewSymbolTable()
	w := tab.Writer()
	_, _ = w.RegisterNonTerminalSymbol("expr")
	_, _ = w.RegisterNonTerminalSymbol("term")
	_, _ = w.RegisterNonTerminalSymbol("factor")
	_, _ = w.RegisterTerminalSymbol("id")
	_, _ = w.RegisterTerminalSymbol("+")
	_, _ = w.RegisterTerminalSymbol("*")
	_, _ = w.RegisterStartSymbol("expr")

	tests := []struct {
		text          string
		isStart       bool
		isEOF         bool
		isNonTerminal bool
		isTerminal    bool
	}{
		{
			text:          "expr'",
			isStart:       true,
			isNonTerminal: true,
		},
		{
			text:          "expr",
			isNonTerminal: true,
		},
		{
			text:          "factor",
			isNonTerminal: true,
		},
		{
			text:       "id",
			isTerminal: true,
		},
		{
			text:       "*",
			isTerminal: true,
		},
		{
			text:       NameEOF,
			isEOF:      true,
			isTerminal: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			r := tab.Reader()
			sym, ok := r.ToSymbol(tt.text)
			if !ok {
				t.Fatalf("symbol was not found")
			}
			if sym.IsNil() {
				t.Fatalf("symbol must not be nil")
			}
			if sym.IsStart() != tt.isStart {
				t.Fatalf("unexpected start flag; want: %v, got: %v", tt.isStart, sym.IsStart())
			}
			if sym.IsEOF() != tt.isEOF {
				t.Fatalf("unexpected EOF flag; want: %v, got: %v", tt.isEOF, sym.IsEOF())
			}
			if sym.IsNonTerminal() != tt.isNonTerminal {
				t.Fatalf("unexpected non-terminal flag; want: %v, got: %v", tt.isNonTerminal, sym.IsNonTerminal())
			}
			if sym.IsTerminal() != tt.isTerminal {
				t.Fatalf("unexpected terminal flag; want: %v, got: %v", tt.isTerminal, sym.IsTerminal())
			}
			text, ok := r.ToText(sym)
			if !ok {
				t.Fatalf("text was not found")
			}
			if text != tt.text {
				t.Fatalf("unexpected text representation; want: %v, got: %v", tt.text, text)
			}
		})
	}

	t.Run("symbols are listed in declaration order", func(t *testing.T) {
		r := tab.Reader()
		testTexts(t, r, r.NonTerminalSymbols(), []string{"expr", "term", "factor"})
		testTexts(t, r, r.TerminalSymbols(), []string{"id", "+", "*"})
	})

	t.Run("registering a known name returns the same symbol", func(t *testing.T) {
		r := tab.Reader()
		want, _ := r.ToSymbol("term")
		got, err := w.RegisterNonTerminalSymbol("term")
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Fatalf("unexpected symbol; want: %v, got: %v", want, got)
		}
	})

	t.Run("the augmented start symbol can be registered only once", func(t *testing.T) {
		_, err := w.RegisterStartSymbol("term")
		if err == nil {
			t.Fatal("an error was not returned")
		}
	})
}

func TestRegisterStartSymbol_AvoidsUserDefinedNames(t *testing.T) {
	tab := NewSymbolTable()
	w := tab.Writer()
	_, _ = w.RegisterNonTerminalSymbol("s")
	_, _ = w.RegisterNonTerminalSymbol("s'")
	_, _ = w.RegisterNonTerminalSymbol("s''")
	sym, err := w.RegisterStartSymbol("s")
	if err != nil {
		t.Fatal(err)
	}
	text, _ := tab.Reader().ToText(sym)
	if text != "s'''" {
		t.Fatalf("unexpected name of the augmented start symbol; want: %v, got: %v", "s'''", text)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		caption string
		name    string
		want    string
	}{
		{
			caption: "surrounding white spaces are removed",
			name:    " \tid  ",
			want:    "id",
		},
		{
			caption: "a decomposed name is composed",
			name:    "e\u0301",
			want:    "\u00e9",
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			got := Normalize(tt.name)
			if got != tt.want {
				t.Fatalf("unexpected name; want: %+q, got: %+q", tt.want, got)
			}
		})
	}
}

func TestIsReferable(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{name: "id", want: true},
		{name: "(", want: true},
		{name: "", want: false},
		{name: "a b", want: false},
		{name: "a|b", want: false},
	}
	for _, tt := range tests {
		if got := IsReferable(tt.name); got != tt.want {
			t.Errorf("unexpected result; name: %+q, want: %v, got: %v", tt.name, tt.want, got)
		}
	}
}

func testTexts(t *testing.T, r *SymbolTableReader, syms []Symbol, want []string) {
	t.Helper()
	if len(syms) != len(want) {
		t.Fatalf("unexpected symbol count; want: %v, got: %v", len(want), len(syms))
	}
	for i, sym := range syms {
		text, _ := r.ToText(sym)
		if text != want[i] {
			t.Fatalf("unexpected symbol; index: %v, want: %v, got: %v", i, want[i], text)
		}
	}
}
