package grammar

import (
	"fmt"

	"github.com/nihei9/ffcalc/grammar/symbol"
)

// followEntry holds the terminals that can appear right after a non-terminal. eof is true when
// the non-terminal can end the input.
type followEntry struct {
	symbols symbolSet
	eof     bool
}

func newFollowEntry() *followEntry {
	return &followEntry{
		symbols: symbolSet{},
	}
}

func (e *followEntry) add(sym symbol.Symbol) bool {
	return e.symbols.add(sym)
}

func (e *followEntry) addEOF() bool {
	if e.eof {
		return false
	}
	e.eof = true
	return true
}

// mergeFirst adds the terminals of a FIRST entry. ε is never a member of FOLLOW.
func (e *followEntry) mergeFirst(fst *firstEntry) bool {
	return e.symbols.addAll(fst.symbols)
}

func (e *followEntry) mergeFollow(flw *followEntry) bool {
	changed := e.symbols.addAll(flw.symbols)
	if flw.eof && e.addEOF() {
		changed = true
	}
	return changed
}

type followSet struct {
	entries map[symbol.Symbol]*followEntry
}

func newFollowSet(nonTerms []symbol.Symbol) *followSet {
	flw := &followSet{
		entries: make(map[symbol.Symbol]*followEntry, len(nonTerms)),
	}
	for _, sym := range nonTerms {
		flw.entries[sym] = newFollowEntry()
	}
	return flw
}

func (flw *followSet) find(sym symbol.Symbol) (*followEntry, error) {
	e, ok := flw.entries[sym]
	if !ok {
		return nil, fmt.Errorf("an entry of FOLLOW was not found; symbol: %v", sym)
	}
	return e, nil
}

// genFollowSet seeds FOLLOW of the augmented start symbol with EOF. The start symbol receives
// EOF through the production S' → S. For every occurrence A → αBβ, FIRST(β) flows into FOLLOW(B),
// and FOLLOW(A) does too when β is nullable.
func genFollowSet(prods *productionSet, first *firstSet, nonTerms []symbol.Symbol) (*followSet, error) {
	flw := newFollowSet(nonTerms)
	for sym, e := range flw.entries {
		if sym.IsStart() {
			e.addEOF()
		}
	}

	for pass := 1; ; pass++ {
		more := false
		for _, prod := range prods.getAllProductions() {
			lhs, err := flw.find(prod.lhs)
			if err != nil {
				return nil, err
			}
			for i, sym := range prod.rhs {
				if !sym.IsNonTerminal() {
					continue
				}
				acc, err := flw.find(sym)
				if err != nil {
					return nil, err
				}
				rest, err := first.find(prod, i+1)
				if err != nil {
					return nil, err
				}
				if acc.mergeFirst(rest) {
					more = true
				}
				if rest.empty && acc.mergeFollow(lhs) {
					more = true
				}
			}
		}
		if !more {
			tracer().Debugf("FOLLOW converged after %v passes", pass)
			return flw, nil
		}
	}
}
