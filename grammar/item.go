package grammar

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nihei9/ffcalc/grammar/symbol"
)

// lr0Item is a production with a position in its RHS.
//
//	dot | item
//	----+------------
//	0   | E →・E + T
//	1   | E → E・+ T
//	2   | E → E +・T
//	3   | E → E + T・
type lr0Item struct {
	prod *production
	dot  int
}

func newLR0Item(prod *production, dot int) (lr0Item, error) {
	if prod == nil {
		return lr0Item{}, fmt.Errorf("production must be non-nil")
	}
	if dot < 0 || dot > prod.rhsLen {
		return lr0Item{}, fmt.Errorf("dot must be between 0 and %v; passed: %v", prod.rhsLen, dot)
	}
	return lr0Item{
		prod: prod,
		dot:  dot,
	}, nil
}

// dottedSymbol returns the symbol right after the dot, or the nil symbol when the item is reducible.
func (it lr0Item) dottedSymbol() symbol.Symbol {
	if it.reducible() {
		return symbol.SymbolNil
	}
	return it.prod.rhs[it.dot]
}

func (it lr0Item) reducible() bool {
	return it.dot == it.prod.rhsLen
}

func (it lr0Item) advance() lr0Item {
	return lr0Item{
		prod: it.prod,
		dot:  it.dot + 1,
	}
}

func (it lr0Item) less(o lr0Item) bool {
	if it.prod.num != o.prod.num {
		return it.prod.num < o.prod.num
	}
	return it.dot < o.dot
}

// itemSet is a duplicate-free list of items sorted by production number and dot.
// Two sets holding the same items have the same key.
type itemSet struct {
	items []lr0Item
	key   string
}

func newItemSet(items []lr0Item) *itemSet {
	type position struct {
		prod productionNum
		dot  int
	}
	seen := map[position]struct{}{}
	sorted := make([]lr0Item, 0, len(items))
	for _, it := range items {
		pos := position{it.prod.num, it.dot}
		if _, ok := seen[pos]; ok {
			continue
		}
		seen[pos] = struct{}{}
		sorted = append(sorted, it)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].less(sorted[j])
	})

	var b strings.Builder
	for i, it := range sorted {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%v.%v", it.prod.num, it.dot)
	}

	return &itemSet{
		items: sorted,
		key:   b.String(),
	}
}

type stateNum int

func (n stateNum) Int() int {
	return int(n)
}

type lr0State struct {
	num    stateNum
	kernel *itemSet

	// closure holds the kernel items followed by the items the closure adds.
	closure []lr0Item

	// goTo maps a symbol to the state reached by shifting it, or by the goto on a non-terminal.
	goTo map[symbol.Symbol]stateNum

	// reduces holds the productions of all reducible items of the closure in ascending order of
	// their numbers, including empty productions like `A → ・ε` that the kernel doesn't contain.
	reduces []*production
}

func (s *lr0State) shiftsTerminal() bool {
	for sym := range s.goTo {
		if sym.IsTerminal() {
			return true
		}
	}
	return false
}
