package grammar

import (
	"errors"
	"strings"

	verr "github.com/nihei9/ffcalc/error"
	spec "github.com/nihei9/ffcalc/spec/grammar"
	"github.com/nihei9/ffcalc/spec/grammar/parser"
)

// Calculate parses the productions text of a request, validates the grammar, and analyzes it.
// Every error caused by the request itself satisfies IsInvalidGrammar or IsAmbiguousStartSymbol.
func Calculate(req *spec.Request) (*spec.Result, error) {
	ast, err := parser.Parse(strings.NewReader(req.Productions))
	if err != nil {
		var synErrs verr.SpecErrors
		if !errors.As(err, &synErrs) {
			return nil, err
		}
		return nil, checkDeclarations(req, synErrs)
	}

	b := &GrammarBuilder{
		NonTerminals: req.NonTerminals,
		Terminals:    req.Terminals,
		Start:        req.Start,
		AST:          ast,
	}
	gram, err := b.Build()
	if err != nil {
		return nil, err
	}

	var opts []AnalysisOption
	if req.Report {
		opts = append(opts, EnableReporting())
	}
	return Analyze(gram, opts...)
}

// checkDeclarations validates the declared symbols and the start symbol of a request whose
// productions contain syntax errors. The declaration errors precede the syntax errors.
func checkDeclarations(req *spec.Request, synErrs verr.SpecErrors) error {
	b := &GrammarBuilder{
		NonTerminals: req.NonTerminals,
		Terminals:    req.Terminals,
		Start:        req.Start,
	}
	_, err := b.Build()
	if err == nil {
		return synErrs
	}
	var declErrs verr.SpecErrors
	if !errors.As(err, &declErrs) {
		return err
	}
	return append(declErrs, synErrs...)
}

// ErrorKind classifies an error returned by Calculate. It returns false when the error isn't caused
// by the request.
func ErrorKind(err error) (string, bool) {
	switch {
	case IsAmbiguousStartSymbol(err):
		return spec.ErrorKindAmbiguousStartSymbol, true
	case IsInvalidGrammar(err):
		return spec.ErrorKindInvalidGrammar, true
	}
	return "", false
}
