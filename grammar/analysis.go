package grammar

import (
	"math"
	"sort"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
	"github.com/nihei9/ffcalc/grammar/symbol"
	spec "github.com/nihei9/ffcalc/spec/grammar"
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to the core tracer.
func tracer() tracing.Trace {
	return gtrace.CoreTracer
}

type analysisOptions struct {
	report bool
}

type AnalysisOption func(opts *analysisOptions)

// EnableReporting makes Analyze attach the LR classification report to the result.
func EnableReporting() AnalysisOption {
	return func(opts *analysisOptions) {
		opts.report = true
	}
}

// Analyze computes FIRST and FOLLOW of every declared non-terminal. Non-terminals having no
// productions get empty entries. The members of each entry are listed in the declaration order
// of terminals, followed by `$` or `ε`.
func Analyze(gram *Grammar, opts ...AnalysisOption) (*spec.Result, error) {
	options := &analysisOptions{}
	for _, opt := range opts {
		opt(options)
	}

	nonTerms := gram.nonTerminalSymbols()
	first, err := genFirstSet(gram.productionSet, nonTerms)
	if err != nil {
		return nil, err
	}
	follow, err := genFollowSet(gram.productionSet, first, nonTerms)
	if err != nil {
		return nil, err
	}

	res := &spec.Result{
		First:  map[string][]string{},
		Follow: map[string][]string{},
	}
	for _, sym := range gram.symbolTable.NonTerminalSymbols() {
		text, _ := gram.symbolTable.ToText(sym)

		fst := first.findBySymbol(sym)
		fstSyms := newOutputSet()
		for s := range fst.symbols {
			fstSyms.Add(s)
		}
		if fst.empty {
			fstSyms.Add(symbol.SymbolNil)
		}
		res.First[text] = gram.outputTexts(fstSyms)

		flw, err := follow.find(sym)
		if err != nil {
			return nil, err
		}
		flwSyms := newOutputSet()
		for s := range flw.symbols {
			flwSyms.Add(s)
		}
		if flw.eof {
			flwSyms.Add(symbol.SymbolEOF)
		}
		res.Follow[text] = gram.outputTexts(flwSyms)
	}

	if options.report {
		report, err := genReport(gram, first, follow)
		if err != nil {
			return nil, err
		}
		res.Report = report
	}

	return res, nil
}

// symbolOrder ranks terminals by declaration order. The EOF symbol and the nil symbol, which
// stands for ε in FIRST entries, come last.
func symbolOrder(sym symbol.Symbol) int {
	if sym.IsNil() || sym.IsEOF() {
		return math.MaxInt32
	}
	return int(sym)
}

func newOutputSet() *treeset.Set {
	return treeset.NewWith(func(a, b interface{}) int {
		return utils.IntComparator(symbolOrder(a.(symbol.Symbol)), symbolOrder(b.(symbol.Symbol)))
	})
}

func (g *Grammar) outputTexts(syms *treeset.Set) []string {
	texts := make([]string, 0, syms.Size())
	it := syms.Iterator()
	for it.Next() {
		sym := it.Value().(symbol.Symbol)
		if sym.IsNil() {
			texts = append(texts, symbol.NameEmpty)
			continue
		}
		text, _ := g.symbolTable.ToText(sym)
		texts = append(texts, text)
	}
	return texts
}

// reportNum numbers the augmented production #0 and the rest from #1 in definition order.
func reportNum(num productionNum) int {
	return num.Int() - productionNumStart.Int()
}

func genReport(gram *Grammar, first *firstSet, follow *followSet) (*spec.Report, error) {
	report := &spec.Report{
		Start:       gram.StartSymbol(),
		Productions: []*spec.Production{},
		Nullable:    []string{},
	}

	for _, prod := range gram.productionSet.getAllProductions() {
		report.Productions = append(report.Productions, &spec.Production{
			Number: reportNum(prod.num),
			Text:   gram.productionText(prod),
		})
	}

	for _, sym := range gram.symbolTable.NonTerminalSymbols() {
		if !first.findBySymbol(sym).empty {
			continue
		}
		text, _ := gram.symbolTable.ToText(sym)
		report.Nullable = append(report.Nullable, text)
	}

	automaton, err := genLR0Automaton(gram.productionSet, gram.augmentedStartSymbol)
	if err != nil {
		return nil, err
	}
	report.StateCount = len(automaton.states)
	tracer().Debugf("the LR(0) automaton has %v states", report.StateCount)
	report.States = gram.genStates(automaton)

	report.LR0 = gram.genClass("LR(0)", detectLR0Conflicts(automaton))
	report.LR0.Table, err = gram.genParsingTable(automaton, lr0LookAhead(gram.symbolTable))
	if err != nil {
		return nil, err
	}

	slr1Conflicts, err := detectSLR1Conflicts(automaton, follow)
	if err != nil {
		return nil, err
	}
	report.SLR1 = gram.genClass("SLR(1)", slr1Conflicts)
	report.SLR1.Table, err = gram.genParsingTable(automaton, slr1LookAhead(follow))
	if err != nil {
		return nil, err
	}

	return report, nil
}

func (g *Grammar) genParsingTable(automaton *lr0Automaton, lookAhead lookAheadFunc) (*spec.Table, error) {
	b := &lrTableBuilder{
		automaton: automaton,
		symTab:    g.symbolTable,
		lookAhead: lookAhead,
	}
	tab, err := b.build()
	if err != nil {
		return nil, err
	}
	return g.genTable(tab)
}

// genStates lists the transitions of each state in ascending order of symbols, so terminals
// appear in declaration order.
func (g *Grammar) genStates(automaton *lr0Automaton) []*spec.State {
	states := make([]*spec.State, 0, len(automaton.states))
	for _, s := range automaton.states {
		state := &spec.State{
			Number:  s.num.Int(),
			Kernel:  make([]*spec.Item, 0, len(s.kernel.items)),
			Closure: []*spec.Item{},
			Shift:   []*spec.Transition{},
			GoTo:    []*spec.Transition{},
			Reduce:  make([]int, 0, len(s.reduces)),
		}
		for i, it := range s.closure {
			item := &spec.Item{
				Production: reportNum(it.prod.num),
				Dot:        it.dot,
				Text:       g.itemText(it),
			}
			if i < len(s.kernel.items) {
				state.Kernel = append(state.Kernel, item)
			} else {
				state.Closure = append(state.Closure, item)
			}
		}

		syms := make([]symbol.Symbol, 0, len(s.goTo))
		for sym := range s.goTo {
			syms = append(syms, sym)
		}
		sort.Slice(syms, func(i, j int) bool {
			return syms[i] < syms[j]
		})
		for _, sym := range syms {
			text, _ := g.symbolTable.ToText(sym)
			tran := &spec.Transition{
				Symbol: text,
				State:  s.goTo[sym].Int(),
			}
			if sym.IsTerminal() {
				state.Shift = append(state.Shift, tran)
			} else {
				state.GoTo = append(state.GoTo, tran)
			}
		}

		for _, p := range s.reduces {
			state.Reduce = append(state.Reduce, reportNum(p.num))
		}
		states = append(states, state)
	}
	return states
}

func (g *Grammar) genClass(name string, conflicts []*conflict) *spec.Class {
	class := &spec.Class{
		Name:      name,
		OK:        len(conflicts) == 0,
		Conflicts: []*spec.Conflict{},
	}
	for _, c := range conflicts {
		con := &spec.Conflict{
			State:       c.state.Int(),
			Kind:        c.kind,
			Productions: []int{},
		}
		if !c.symbol.IsNil() {
			con.Symbol, _ = g.symbolTable.ToText(c.symbol)
		}
		for _, num := range c.prods {
			con.Productions = append(con.Productions, reportNum(num))
		}
		class.Conflicts = append(class.Conflicts, con)
	}
	return class
}
