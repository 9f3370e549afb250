package error

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Every error a grammar definition can cause belongs to one of these classes.
// Use errors.Is to classify an error returned by the parser or the grammar builder.
var (
	ErrInvalidGrammar       = errors.New("invalid grammar")
	ErrAmbiguousStartSymbol = errors.New("ambiguous start symbol")
)

// SpecErrors is a list of errors found in one grammar definition. errors.Is and errors.As look
// into every element.
type SpecErrors []*SpecError

func (e SpecErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "\n")
}

func (e SpecErrors) Unwrap() []error {
	errs := make([]error, len(e))
	for i, err := range e {
		errs[i] = err
	}
	return errs
}

// SpecError locates a cause in a grammar definition. Row and Col are 1-based and zero when the
// cause has no position, like a duplicate declaration. When FilePath is set, Error quotes the line.
type SpecError struct {
	Cause      error
	Detail     string
	FilePath   string
	SourceName string
	Row        int
	Col        int
}

func (e *SpecError) Error() string {
	var b strings.Builder
	if e.SourceName != "" {
		b.WriteString(e.SourceName + ": ")
	}
	if e.Row > 0 && e.Col > 0 {
		fmt.Fprintf(&b, "%v:%v: ", e.Row, e.Col)
	}
	fmt.Fprintf(&b, "error: %v", e.Cause)
	if e.Detail != "" {
		b.WriteString(": " + e.Detail)
	}
	if line, ok := quoteLine(e.FilePath, e.Row); ok {
		b.WriteString("\n    " + line)
	}
	return b.String()
}

func (e *SpecError) Unwrap() error {
	return e.Cause
}

func quoteLine(filePath string, row int) (string, bool) {
	if filePath == "" || row <= 0 {
		return "", false
	}
	f, err := os.Open(filePath)
	if err != nil {
		return "", false
	}
	defer f.Close()

	s := bufio.NewScanner(f)
	for i := 1; s.Scan(); i++ {
		if i == row {
			return s.Text(), true
		}
	}
	return "", false
}
