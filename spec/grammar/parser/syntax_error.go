package parser

import verr "github.com/nihei9/ffcalc/error"

type SyntaxError struct {
	message string
}

func newSyntaxError(message string) *SyntaxError {
	return &SyntaxError{
		message: message,
	}
}

func (e *SyntaxError) Error() string {
	return e.message
}

// Unwrap classifies every syntax error as an invalid grammar.
func (e *SyntaxError) Unwrap() error {
	return verr.ErrInvalidGrammar
}

var (
	// lexical errors
	synErrInvalidToken = newSyntaxError("invalid token")

	// syntax errors
	synErrNoLHS           = newSyntaxError("a rule must begin with a left-hand side symbol")
	synErrNoArrow         = newSyntaxError("an arrow (->, →, or ::=) must follow the left-hand side")
	synErrArrowInRHS      = newSyntaxError("an arrow cannot appear in a right-hand side; put each rule on its own line")
	synErrEmptyNotAlone   = newSyntaxError("the empty string marker must be the only element of an alternative")
	synErrUnexpectedToken = newSyntaxError("unexpected token at the end of a rule")
)
