package grammar

import (
	"sort"

	"github.com/nihei9/ffcalc/grammar/symbol"
	spec "github.com/nihei9/ffcalc/spec/grammar"
)

type conflict struct {
	state stateNum
	kind  string

	// symbol is the look-ahead symbol causing the conflict. It is nil for LR(0) conflicts.
	symbol symbol.Symbol

	prods []productionNum
}

func newConflict(state stateNum, kind string, sym symbol.Symbol, prods []*production) *conflict {
	nums := make([]productionNum, 0, len(prods))
	for _, p := range prods {
		nums = append(nums, p.num)
	}
	return &conflict{
		state:  state,
		kind:   kind,
		symbol: sym,
		prods:  nums,
	}
}

// detectLR0Conflicts finds states where a reduction competes with a shift of any terminal or with
// another reduction. The accept item S' → S・ is not a reduction in LR(0) terms.
func detectLR0Conflicts(a *lr0Automaton) []*conflict {
	conflicts := []*conflict{}
	for _, state := range a.states {
		var reduces []*production
		for _, p := range state.reduces {
			if !p.lhs.IsStart() {
				reduces = append(reduces, p)
			}
		}
		if len(reduces) == 0 {
			continue
		}
		if state.shiftsTerminal() {
			conflicts = append(conflicts, newConflict(state.num, spec.ConflictKindShiftReduce, symbol.SymbolNil, reduces))
		}
		if len(reduces) > 1 {
			conflicts = append(conflicts, newConflict(state.num, spec.ConflictKindReduceReduce, symbol.SymbolNil, reduces))
		}
	}
	return conflicts
}

// detectSLR1Conflicts uses FOLLOW of the LHS as the look-ahead symbols of each reduction.
// The accept item reduces on EOF.
func detectSLR1Conflicts(a *lr0Automaton, follow *followSet) ([]*conflict, error) {
	conflicts := []*conflict{}
	for _, state := range a.states {
		if len(state.reduces) == 0 {
			continue
		}

		lookAheads := map[symbol.Symbol][]*production{}
		for _, p := range state.reduces {
			if p.lhs.IsStart() {
				lookAheads[symbol.SymbolEOF] = append(lookAheads[symbol.SymbolEOF], p)
				continue
			}
			flw, err := follow.find(p.lhs)
			if err != nil {
				return nil, err
			}
			for sym := range flw.symbols {
				lookAheads[sym] = append(lookAheads[sym], p)
			}
			if flw.eof {
				lookAheads[symbol.SymbolEOF] = append(lookAheads[symbol.SymbolEOF], p)
			}
		}

		syms := make([]symbol.Symbol, 0, len(lookAheads))
		for sym := range lookAheads {
			syms = append(syms, sym)
		}
		sort.Slice(syms, func(i, j int) bool {
			return symbolOrder(syms[i]) < symbolOrder(syms[j])
		})
		for _, sym := range syms {
			reduces := lookAheads[sym]
			if _, shift := state.goTo[sym]; shift {
				conflicts = append(conflicts, newConflict(state.num, spec.ConflictKindShiftReduce, sym, reduces))
			}
			if len(reduces) > 1 {
				conflicts = append(conflicts, newConflict(state.num, spec.ConflictKindReduceReduce, sym, reduces))
			}
		}
	}
	return conflicts, nil
}
