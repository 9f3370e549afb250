package grammar

import (
	"fmt"

	"github.com/nihei9/ffcalc/grammar/symbol"
	spec "github.com/nihei9/ffcalc/spec/grammar"
)

// actionEntry encodes a shift as a negative state number and a reduce as a production number.
// The augmented production reduces only on EOF, and reducing it means accept.
type actionEntry int

const actionEntryEmpty = actionEntry(0)

func newShiftActionEntry(state stateNum) actionEntry {
	return actionEntry(state * -1)
}

func newReduceActionEntry(prod productionNum) actionEntry {
	return actionEntry(prod)
}

func (e actionEntry) isEmpty() bool {
	return e == actionEntryEmpty
}

func (e actionEntry) describe() (string, stateNum, productionNum) {
	switch {
	case e < 0:
		return spec.ActionTypeShift, stateNum(e * -1), 0
	case productionNum(e) == productionNumStart:
		return spec.ActionTypeAccept, 0, productionNumStart
	}
	return spec.ActionTypeReduce, 0, productionNum(e)
}

type goToEntry uint

const goToEntryEmpty = goToEntry(0)

func newGoToEntry(state stateNum) goToEntry {
	return goToEntry(state)
}

// parsingTable is an ACTION/GOTO table indexed by state numbers and symbol numbers. A cell of the
// ACTION table holds every action written to it, so a cell holding two or more is a conflict.
type parsingTable struct {
	actionTable      [][]actionEntry
	goToTable        []goToEntry
	stateCount       int
	terminalCount    int
	nonTerminalCount int
}

func (t *parsingTable) getActions(state stateNum, sym symbol.Symbol) []actionEntry {
	return t.actionTable[state.Int()*t.terminalCount+sym.Num().Int()]
}

func (t *parsingTable) getGoTo(state stateNum, sym symbol.Symbol) (stateNum, bool) {
	e := t.goToTable[state.Int()*t.nonTerminalCount+sym.Num().Int()]
	if e == goToEntryEmpty {
		return 0, false
	}
	return stateNum(e), true
}

func (t *parsingTable) writeAction(state stateNum, sym symbol.Symbol, act actionEntry) {
	pos := state.Int()*t.terminalCount + sym.Num().Int()
	for _, a := range t.actionTable[pos] {
		if a == act {
			return
		}
	}
	t.actionTable[pos] = append(t.actionTable[pos], act)
}

func (t *parsingTable) writeGoTo(state stateNum, sym symbol.Symbol, nextState stateNum) {
	t.goToTable[state.Int()*t.nonTerminalCount+sym.Num().Int()] = newGoToEntry(nextState)
}

// lookAheadFunc returns the terminals on which a production other than the augmented one is reduced.
type lookAheadFunc func(prod *production) ([]symbol.Symbol, error)

// lr0LookAhead reduces on every terminal.
func lr0LookAhead(symTab *symbol.SymbolTableReader) lookAheadFunc {
	terms := append(symTab.TerminalSymbols(), symbol.SymbolEOF)
	return func(prod *production) ([]symbol.Symbol, error) {
		return terms, nil
	}
}

// slr1LookAhead reduces on FOLLOW of the LHS.
func slr1LookAhead(follow *followSet) lookAheadFunc {
	return func(prod *production) ([]symbol.Symbol, error) {
		flw, err := follow.find(prod.lhs)
		if err != nil {
			return nil, err
		}
		syms := make([]symbol.Symbol, 0, len(flw.symbols)+1)
		for sym := range flw.symbols {
			syms = append(syms, sym)
		}
		if flw.eof {
			syms = append(syms, symbol.SymbolEOF)
		}
		return syms, nil
	}
}

type lrTableBuilder struct {
	automaton *lr0Automaton
	symTab    *symbol.SymbolTableReader
	lookAhead lookAheadFunc
}

func (b *lrTableBuilder) build() (*parsingTable, error) {
	// The indices 0 and 1 are taken by the nil symbol and by EOF or the augmented start symbol.
	termCount := len(b.symTab.TerminalSymbols()) + 2
	nonTermCount := len(b.symTab.NonTerminalSymbols()) + 2
	stateCount := len(b.automaton.states)
	tab := &parsingTable{
		actionTable:      make([][]actionEntry, stateCount*termCount),
		goToTable:        make([]goToEntry, stateCount*nonTermCount),
		stateCount:       stateCount,
		terminalCount:    termCount,
		nonTerminalCount: nonTermCount,
	}

	for _, state := range b.automaton.states {
		for sym, next := range state.goTo {
			if sym.IsTerminal() {
				tab.writeAction(state.num, sym, newShiftActionEntry(next))
			} else {
				tab.writeGoTo(state.num, sym, next)
			}
		}
	}

	// Reductions follow the shifts so that a conflicting cell lists its shift first.
	for _, state := range b.automaton.states {
		for _, prod := range state.reduces {
			if prod.lhs.IsStart() {
				tab.writeAction(state.num, symbol.SymbolEOF, newReduceActionEntry(prod.num))
				continue
			}
			syms, err := b.lookAhead(prod)
			if err != nil {
				return nil, err
			}
			for _, sym := range syms {
				tab.writeAction(state.num, sym, newReduceActionEntry(prod.num))
			}
		}
	}

	return tab, nil
}

// genTable lays out a parsing table with the terminals in declaration order followed by EOF, and
// the non-terminals in declaration order.
func (g *Grammar) genTable(tab *parsingTable) (*spec.Table, error) {
	terms := append(g.symbolTable.TerminalSymbols(), symbol.SymbolEOF)
	nonTerms := g.symbolTable.NonTerminalSymbols()

	table := &spec.Table{
		Terminals:    make([]string, 0, len(terms)),
		NonTerminals: make([]string, 0, len(nonTerms)),
		Rows:         make([]*spec.TableRow, 0, tab.stateCount),
	}
	for _, sym := range terms {
		text, ok := g.symbolTable.ToText(sym)
		if !ok {
			return nil, fmt.Errorf("failed to generate a table: symbol not found: %v", sym)
		}
		table.Terminals = append(table.Terminals, text)
	}
	for _, sym := range nonTerms {
		text, ok := g.symbolTable.ToText(sym)
		if !ok {
			return nil, fmt.Errorf("failed to generate a table: symbol not found: %v", sym)
		}
		table.NonTerminals = append(table.NonTerminals, text)
	}

	for i := 0; i < tab.stateCount; i++ {
		state := stateNum(i)
		row := &spec.TableRow{
			State:  state.Int(),
			Action: map[string][]*spec.Action{},
			GoTo:   map[string]int{},
		}
		for j, sym := range terms {
			for _, e := range tab.getActions(state, sym) {
				if e.isEmpty() {
					continue
				}
				ty, next, prod := e.describe()
				act := &spec.Action{
					Type: ty,
				}
				switch ty {
				case spec.ActionTypeShift:
					act.State = next.Int()
				case spec.ActionTypeReduce:
					act.Production = reportNum(prod)
				}
				row.Action[table.Terminals[j]] = append(row.Action[table.Terminals[j]], act)
			}
		}
		for j, sym := range nonTerms {
			if next, ok := tab.getGoTo(state, sym); ok {
				row.GoTo[table.NonTerminals[j]] = next.Int()
			}
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}
