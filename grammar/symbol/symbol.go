package symbol

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

type SymbolNum uint16

func (n SymbolNum) Int() int {
	return int(n)
}

// Symbol packs a kind bit and a number. Numbers are assigned in registration order,
// so comparing two symbols of the same kind compares their declaration order.
type Symbol uint16

const (
	maskKindPart    = uint16(0x8000) // 1000 0000 0000 0000
	maskNonTerminal = uint16(0x0000) // 0000 0000 0000 0000
	maskTerminal    = uint16(0x8000) // 1000 0000 0000 0000
	maskNumberPart  = uint16(0x7fff) // 0111 1111 1111 1111

	SymbolNil   = Symbol(0)                         // 0000 0000 0000 0000
	SymbolStart = Symbol(maskNonTerminal | 0x0001) // 0000 0000 0000 0001: The augmented start symbol.
	SymbolEOF   = Symbol(maskTerminal | 0x0001)    // 1000 0000 0000 0001: The EOF symbol is treated as a terminal symbol.

	nonTerminalNumMin = SymbolNum(2) // The number 1 is used by the augmented start symbol.
	terminalNumMin    = SymbolNum(2) // The number 1 is used by the EOF symbol.
	symbolNumMax      = SymbolNum(maskNumberPart)
)

// MaxSymbols is how many terminals, and separately how many non-terminals, a symbol table can hold.
const MaxSymbols = int(symbolNumMax - nonTerminalNumMin + 1)

// Names of the markers that appear in FIRST and FOLLOW sets. They are not user-definable.
const (
	NameEOF   = "$"
	NameEmpty = "ε"
)

var reservedNames = map[string]struct{}{
	NameEOF:   {},
	NameEmpty: {},
	"ϵ":       {},
	"%empty":  {},
	"->":      {},
	"→":       {},
	"::=":     {},
	"|":       {},
}

// IsReserved reports whether a name collides with a marker or a token of the productions text.
func IsReserved(name string) bool {
	_, ok := reservedNames[name]
	return ok
}

// IsReferable reports whether a name can appear as a single symbol in the productions text.
func IsReferable(name string) bool {
	if name == "" {
		return false
	}
	return !strings.ContainsFunc(name, func(r rune) bool {
		return unicode.IsSpace(r) || r == '|'
	})
}

// Normalize trims a symbol name and converts it to NFC.
func Normalize(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

func newSymbol(terminal bool, num SymbolNum) (Symbol, error) {
	if num > symbolNumMax {
		return SymbolNil, fmt.Errorf("a symbol number exceeds the limit; limit: %v, passed: %v", symbolNumMax, num)
	}
	kindMask := maskNonTerminal
	if terminal {
		kindMask = maskTerminal
	}
	return Symbol(kindMask | uint16(num)), nil
}

func (s Symbol) String() string {
	var prefix string
	switch {
	case s.IsNil():
		prefix = "?"
	case s.IsStart():
		prefix = "s"
	case s.IsEOF():
		prefix = "e"
	case s.IsTerminal():
		prefix = "t"
	default:
		prefix = "n"
	}
	return fmt.Sprintf("%v%v", prefix, s.Num())
}

func (s Symbol) Num() SymbolNum {
	return SymbolNum(uint16(s) & maskNumberPart)
}

func (s Symbol) Byte() []byte {
	return []byte{byte(uint16(s) >> 8), byte(uint16(s) & 0x00ff)}
}

func (s Symbol) IsNil() bool {
	return s.Num() == 0
}

func (s Symbol) IsStart() bool {
	return s == SymbolStart
}

func (s Symbol) IsEOF() bool {
	return s == SymbolEOF
}

func (s Symbol) IsTerminal() bool {
	if s.IsNil() {
		return false
	}
	return uint16(s)&maskKindPart == maskTerminal
}

func (s Symbol) IsNonTerminal() bool {
	if s.IsNil() {
		return false
	}
	return uint16(s)&maskKindPart == maskNonTerminal
}

type SymbolTable struct {
	text2Sym   map[string]Symbol
	sym2Text   map[Symbol]string
	nonTermNum SymbolNum
	termNum    SymbolNum
}

type SymbolTableWriter struct {
	*SymbolTable
}

type SymbolTableReader struct {
	*SymbolTable
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		text2Sym: map[string]Symbol{
			NameEOF: SymbolEOF,
		},
		sym2Text: map[Symbol]string{
			SymbolEOF: NameEOF,
		},
		nonTermNum: nonTerminalNumMin,
		termNum:    terminalNumMin,
	}
}

func (t *SymbolTable) Writer() *SymbolTableWriter {
	return &SymbolTableWriter{
		SymbolTable: t,
	}
}

func (t *SymbolTable) Reader() *SymbolTableReader {
	return &SymbolTableReader{
		SymbolTable: t,
	}
}

// RegisterStartSymbol names the augmented start symbol. The name is derived from the
// user's start symbol by appending primes until it is unused.
func (w *SymbolTableWriter) RegisterStartSymbol(base string) (Symbol, error) {
	if _, ok := w.sym2Text[SymbolStart]; ok {
		return SymbolNil, fmt.Errorf("the augmented start symbol is already registered")
	}
	text := base + "'"
	for {
		if _, ok := w.text2Sym[text]; !ok {
			break
		}
		text += "'"
	}
	w.text2Sym[text] = SymbolStart
	w.sym2Text[SymbolStart] = text
	return SymbolStart, nil
}

func (w *SymbolTableWriter) RegisterNonTerminalSymbol(text string) (Symbol, error) {
	if sym, ok := w.text2Sym[text]; ok {
		return sym, nil
	}
	sym, err := newSymbol(false, w.nonTermNum)
	if err != nil {
		return SymbolNil, err
	}
	w.nonTermNum++
	w.text2Sym[text] = sym
	w.sym2Text[sym] = text
	return sym, nil
}

func (w *SymbolTableWriter) RegisterTerminalSymbol(text string) (Symbol, error) {
	if sym, ok := w.text2Sym[text]; ok {
		return sym, nil
	}
	sym, err := newSymbol(true, w.termNum)
	if err != nil {
		return SymbolNil, err
	}
	w.termNum++
	w.text2Sym[text] = sym
	w.sym2Text[sym] = text
	return sym, nil
}

func (r *SymbolTableReader) ToSymbol(text string) (Symbol, bool) {
	if sym, ok := r.text2Sym[text]; ok {
		return sym, true
	}
	return SymbolNil, false
}

func (r *SymbolTableReader) ToText(sym Symbol) (string, bool) {
	text, ok := r.sym2Text[sym]
	return text, ok
}

// TerminalSymbols returns the user-defined terminals in declaration order. The EOF symbol is not included.
func (r *SymbolTableReader) TerminalSymbols() []Symbol {
	syms := make([]Symbol, 0, r.termNum.Int()-terminalNumMin.Int())
	for sym := range r.sym2Text {
		if !sym.IsTerminal() || sym.IsEOF() {
			continue
		}
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool {
		return syms[i] < syms[j]
	})
	return syms
}

// NonTerminalSymbols returns the user-defined non-terminals in declaration order.
// The augmented start symbol is not included.
func (r *SymbolTableReader) NonTerminalSymbols() []Symbol {
	syms := make([]Symbol, 0, r.nonTermNum.Int()-nonTerminalNumMin.Int())
	for sym := range r.sym2Text {
		if !sym.IsNonTerminal() || sym.IsStart() {
			continue
		}
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool {
		return syms[i] < syms[j]
	})
	return syms
}
