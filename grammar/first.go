package grammar

import (
	"fmt"

	"github.com/nihei9/ffcalc/grammar/symbol"
)

type symbolSet map[symbol.Symbol]struct{}

func (s symbolSet) add(sym symbol.Symbol) bool {
	if _, ok := s[sym]; ok {
		return false
	}
	s[sym] = struct{}{}
	return true
}

func (s symbolSet) addAll(t symbolSet) bool {
	changed := false
	for sym := range t {
		if s.add(sym) {
			changed = true
		}
	}
	return changed
}

// firstEntry holds the terminals that can begin a string derived from a symbol sequence.
// empty is true when the sequence can derive the empty string.
type firstEntry struct {
	symbols symbolSet
	empty   bool
}

func newFirstEntry() *firstEntry {
	return &firstEntry{
		symbols: symbolSet{},
	}
}

func (e *firstEntry) add(sym symbol.Symbol) bool {
	return e.symbols.add(sym)
}

func (e *firstEntry) addEmpty() bool {
	if e.empty {
		return false
	}
	e.empty = true
	return true
}

type firstSet struct {
	entries map[symbol.Symbol]*firstEntry
}

// newFirstSet creates an entry for every non-terminal, including ones having no productions.
func newFirstSet(nonTerms []symbol.Symbol) *firstSet {
	fst := &firstSet{
		entries: make(map[symbol.Symbol]*firstEntry, len(nonTerms)),
	}
	for _, sym := range nonTerms {
		fst.entries[sym] = newFirstEntry()
	}
	return fst
}

func (fst *firstSet) findBySymbol(sym symbol.Symbol) *firstEntry {
	return fst.entries[sym]
}

// find returns FIRST of the RHS of a production from the head-th symbol to the end.
func (fst *firstSet) find(prod *production, head int) (*firstEntry, error) {
	if head > prod.rhsLen {
		head = prod.rhsLen
	}
	entry := newFirstEntry()
	_, err := fst.collect(entry, prod.rhs[head:])
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// collect adds FIRST of seq to acc and reports whether acc changed. The sequence contributes ε
// only when every symbol of it is nullable, so an empty sequence contributes ε.
func (fst *firstSet) collect(acc *firstEntry, seq []symbol.Symbol) (bool, error) {
	changed := false
	for _, sym := range seq {
		if sym.IsTerminal() {
			if acc.add(sym) {
				changed = true
			}
			return changed, nil
		}

		e := fst.findBySymbol(sym)
		if e == nil {
			return false, fmt.Errorf("an entry of FIRST was not found; symbol: %v", sym)
		}
		if acc.symbols.addAll(e.symbols) {
			changed = true
		}
		if !e.empty {
			return changed, nil
		}
	}
	if acc.addEmpty() {
		changed = true
	}
	return changed, nil
}

// genFirstSet repeats passes over all productions until a pass adds nothing. Entries only grow
// and are bounded by the terminals, so the loop terminates even for left-recursive grammars.
func genFirstSet(prods *productionSet, nonTerms []symbol.Symbol) (*firstSet, error) {
	fst := newFirstSet(nonTerms)
	for pass := 1; ; pass++ {
		more := false
		for _, prod := range prods.getAllProductions() {
			acc := fst.findBySymbol(prod.lhs)
			if acc == nil {
				return nil, fmt.Errorf("an entry of FIRST was not found; symbol: %v", prod.lhs)
			}
			changed, err := fst.collect(acc, prod.rhs)
			if err != nil {
				return nil, err
			}
			if changed {
				more = true
			}
		}
		if !more {
			tracer().Debugf("FIRST converged after %v passes", pass)
			return fst, nil
		}
	}
}
