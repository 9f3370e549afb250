package grammar

import (
	"fmt"

	verr "github.com/nihei9/ffcalc/error"
	"github.com/nihei9/ffcalc/grammar/symbol"
)

type SemanticError struct {
	message string
	class   error
}

func newSemanticError(class error, message string) *SemanticError {
	return &SemanticError{
		message: message,
		class:   class,
	}
}

func (e *SemanticError) Error() string {
	return e.message
}

// Unwrap returns verr.ErrInvalidGrammar or verr.ErrAmbiguousStartSymbol.
func (e *SemanticError) Unwrap() error {
	return e.class
}

var (
	semErrNoNonTerminal = newSemanticError(verr.ErrAmbiguousStartSymbol, "a grammar needs at least one non-terminal")
	semErrUnknownStart  = newSemanticError(verr.ErrAmbiguousStartSymbol, "the start symbol must be a declared non-terminal")

	semErrUndefinedSym         = newSemanticError(verr.ErrInvalidGrammar, "undeclared symbol")
	semErrTerminalLHS          = newSemanticError(verr.ErrInvalidGrammar, "a terminal cannot be the left-hand side of a production")
	semErrDuplicateNonTerminal = newSemanticError(verr.ErrInvalidGrammar, "duplicate non-terminal")
	semErrDuplicateTerminal    = newSemanticError(verr.ErrInvalidGrammar, "duplicate terminal")
	semErrDuplicateName        = newSemanticError(verr.ErrInvalidGrammar, "duplicate names are not allowed between terminals and non-terminals")
	semErrReservedName         = newSemanticError(verr.ErrInvalidGrammar, "a reserved name cannot be declared as a symbol")
	semErrUnreferableName      = newSemanticError(verr.ErrInvalidGrammar, "a symbol name cannot contain white spaces or |")
	semErrTooManySymbols       = newSemanticError(verr.ErrInvalidGrammar, fmt.Sprintf("a grammar can declare at most %v terminals and %v non-terminals", symbol.MaxSymbols, symbol.MaxSymbols))
)
