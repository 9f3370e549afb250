package grammar

import (
	"fmt"
	"sort"

	"github.com/nihei9/ffcalc/grammar/symbol"
)

// lr0Automaton is the canonical LR(0) collection. states[n] is the state numbered n, and
// states[0] is the initial state.
type lr0Automaton struct {
	states []*lr0State
}

// genLR0Automaton numbers states in the order they are discovered by a breadth-first walk from
// the initial state. The transitions of a state are walked in ascending order of symbols, which
// puts non-terminals before terminals and otherwise follows declaration order.
func genLR0Automaton(prods *productionSet, startSym symbol.Symbol) (*lr0Automaton, error) {
	if !startSym.IsStart() {
		return nil, fmt.Errorf("passed symbol is not the augmented start symbol: %v", startSym)
	}
	startProds, ok := prods.findByLHS(startSym)
	if !ok || len(startProds) != 1 {
		return nil, fmt.Errorf("the augmented start symbol must have exactly one production")
	}
	initialItem, err := newLR0Item(startProds[0], 0)
	if err != nil {
		return nil, err
	}

	a := &lr0Automaton{}
	known := map[string]stateNum{}
	add := func(kernel *itemSet) stateNum {
		if num, ok := known[kernel.key]; ok {
			return num
		}
		num := stateNum(len(a.states))
		known[kernel.key] = num
		a.states = append(a.states, &lr0State{
			num:    num,
			kernel: kernel,
			goTo:   map[symbol.Symbol]stateNum{},
		})
		return num
	}
	add(newItemSet([]lr0Item{initialItem}))

	// a.states grows while it is walked.
	for i := 0; i < len(a.states); i++ {
		state := a.states[i]
		closure := genLR0Closure(state.kernel, prods)
		state.closure = closure

		moves := map[symbol.Symbol][]lr0Item{}
		for _, it := range closure {
			if it.reducible() {
				state.reduces = append(state.reduces, it.prod)
				continue
			}
			sym := it.dottedSymbol()
			moves[sym] = append(moves[sym], it.advance())
		}
		sort.Slice(state.reduces, func(i, j int) bool {
			return state.reduces[i].num < state.reduces[j].num
		})

		syms := make([]symbol.Symbol, 0, len(moves))
		for sym := range moves {
			syms = append(syms, sym)
		}
		sort.Slice(syms, func(i, j int) bool {
			return syms[i] < syms[j]
		})
		for _, sym := range syms {
			state.goTo[sym] = add(newItemSet(moves[sym]))
		}
	}

	return a, nil
}

// genLR0Closure returns the kernel items followed by the items `B →・γ` added for every
// non-terminal B appearing right after a dot.
func genLR0Closure(kernel *itemSet, prods *productionSet) []lr0Item {
	items := append([]lr0Item{}, kernel.items...)
	expanded := map[symbol.Symbol]struct{}{}
	for i := 0; i < len(items); i++ {
		sym := items[i].dottedSymbol()
		if !sym.IsNonTerminal() {
			continue
		}
		if _, ok := expanded[sym]; ok {
			continue
		}
		expanded[sym] = struct{}{}

		ps, _ := prods.findByLHS(sym)
		for _, p := range ps {
			items = append(items, lr0Item{
				prod: p,
				dot:  0,
			})
		}
	}
	return items
}
