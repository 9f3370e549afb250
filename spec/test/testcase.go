package test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	spec "github.com/nihei9/ffcalc/spec/grammar"
)

type ResultDiff struct {
	Path    string
	Message string
}

const (
	TableFirst  = "first"
	TableFollow = "follow"
)

// Expectation lists the entries a test case checks. Entries of non-terminals that aren't listed
// are not checked. When ErrorKind is not empty, the case expects the analysis to fail.
type Expectation struct {
	First     map[string][]string
	Follow    map[string][]string
	ErrorKind string
}

// DiffResult compares the members of each expected entry with the actual ones regardless of order.
func DiffResult(expected *Expectation, actual *spec.Result) []*ResultDiff {
	var diffs []*ResultDiff
	diffs = append(diffs, diffTable(TableFirst, expected.First, actual.First)...)
	diffs = append(diffs, diffTable(TableFollow, expected.Follow, actual.Follow)...)
	return diffs
}

func diffTable(name string, expected, actual map[string][]string) []*ResultDiff {
	nonTerms := make([]string, 0, len(expected))
	for nonTerm := range expected {
		nonTerms = append(nonTerms, nonTerm)
	}
	sort.Strings(nonTerms)

	var diffs []*ResultDiff
	for _, nonTerm := range nonTerms {
		path := fmt.Sprintf("%v[%v]", name, nonTerm)
		act, ok := actual[nonTerm]
		if !ok {
			diffs = append(diffs, &ResultDiff{
				Path:    path,
				Message: "the entry was not found",
			})
			continue
		}

		exp := expected[nonTerm]
		missing := subtract(exp, act)
		extra := subtract(act, exp)
		if len(missing) == 0 && len(extra) == 0 {
			continue
		}
		var b strings.Builder
		fmt.Fprintf(&b, "expected {%v} but got {%v}", strings.Join(exp, ", "), strings.Join(act, ", "))
		if len(missing) > 0 {
			fmt.Fprintf(&b, "; missing: %v", strings.Join(missing, ", "))
		}
		if len(extra) > 0 {
			fmt.Fprintf(&b, "; unexpected: %v", strings.Join(extra, ", "))
		}
		diffs = append(diffs, &ResultDiff{
			Path:    path,
			Message: b.String(),
		})
	}
	return diffs
}

func subtract(a, b []string) []string {
	m := make(map[string]struct{}, len(b))
	for _, s := range b {
		m[s] = struct{}{}
	}
	var d []string
	for _, s := range a {
		if _, ok := m[s]; !ok {
			d = append(d, s)
		}
	}
	return d
}

// TestCase consists of four parts separated by a line of hyphens: a description, a request in JSON
// without productions, productions, and expectations.
//
//	Nullable prefix
//	---
//	{"nonTerminals": ["S", "A"], "terminals": ["a", "b"]}
//	---
//	S -> A b
//	A -> a | ε
//	---
//	first S = a b
//	follow A = b
//
// An expectation line is either `first <non-terminal> = <members>`, `follow <non-terminal> = <members>`,
// or `error <kind>`.
type TestCase struct {
	Description string
	Request     *spec.Request
	Expected    *Expectation
}

func ParseTestCase(r io.Reader) (*TestCase, error) {
	parts, err := splitIntoParts(r)
	if err != nil {
		return nil, err
	}
	if len(parts) != 4 {
		return nil, fmt.Errorf("too many or too few part delimiters: a test case consists of just four parts: %v parts found", len(parts))
	}

	req := &spec.Request{}
	if len(bytes.TrimSpace(parts[1].buf)) > 0 {
		err = json.Unmarshal(parts[1].buf, req)
		if err != nil {
			return nil, fmt.Errorf("invalid request (line %v): %w", parts[0].lineCount+2, err)
		}
	}
	req.Productions = string(parts[2].buf)

	lineOffset := parts[0].lineCount + parts[1].lineCount + parts[2].lineCount + 3
	exp, err := parseExpectation(parts[3].buf, lineOffset)
	if err != nil {
		return nil, err
	}

	return &TestCase{
		Description: strings.TrimSpace(string(parts[0].buf)),
		Request:     req,
		Expected:    exp,
	}, nil
}

func parseExpectation(src []byte, lineOffset int) (*Expectation, error) {
	exp := &Expectation{
		First:  map[string][]string{},
		Follow: map[string][]string{},
	}
	s := bufio.NewScanner(bytes.NewReader(src))
	row := lineOffset
	for s.Scan() {
		row++
		fields := strings.Fields(s.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "error":
			if len(fields) != 2 {
				return nil, fmt.Errorf("line %v: an error expectation needs just one kind", row)
			}
			exp.ErrorKind = fields[1]
		case TableFirst, TableFollow:
			if len(fields) < 3 || fields[2] != "=" {
				return nil, fmt.Errorf("line %v: an entry expectation looks like `%v <non-terminal> = <members>`", row, fields[0])
			}
			table := exp.First
			if fields[0] == TableFollow {
				table = exp.Follow
			}
			if _, ok := table[fields[1]]; ok {
				return nil, fmt.Errorf("line %v: duplicate expectation: %v %v", row, fields[0], fields[1])
			}
			table[fields[1]] = append([]string{}, fields[3:]...)
		default:
			return nil, fmt.Errorf("line %v: unknown expectation: %v", row, fields[0])
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	if exp.ErrorKind != "" && (len(exp.First) > 0 || len(exp.Follow) > 0) {
		return nil, fmt.Errorf("an error expectation cannot be combined with entry expectations")
	}
	return exp, nil
}

type testCasePart struct {
	buf       []byte
	lineCount int
}

func splitIntoParts(r io.Reader) ([]*testCasePart, error) {
	var bufs []*testCasePart
	s := bufio.NewScanner(r)
	for {
		buf, lineCount, err := readPart(s)
		if err != nil {
			return nil, err
		}
		if buf == nil {
			break
		}
		bufs = append(bufs, &testCasePart{
			buf:       buf,
			lineCount: lineCount,
		})
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return bufs, nil
}

var reDelim = regexp.MustCompile(`^\s*---+\s*$`)

func readPart(s *bufio.Scanner) ([]byte, int, error) {
	if !s.Scan() {
		return nil, 0, s.Err()
	}
	buf := &bytes.Buffer{}
	line := s.Bytes()
	if reDelim.Match(line) {
		// Return an empty slice because (*bytes.Buffer).Bytes() returns nil if we have never written data.
		return []byte{}, 0, nil
	}
	_, err := buf.Write(line)
	if err != nil {
		return nil, 0, err
	}
	lineCount := 1
	for s.Scan() {
		line := s.Bytes()
		if reDelim.Match(line) {
			return buf.Bytes(), lineCount, nil
		}
		_, err := buf.Write([]byte("\n"))
		if err != nil {
			return nil, 0, err
		}
		_, err = buf.Write(line)
		if err != nil {
			return nil, 0, err
		}
		lineCount++
	}
	if err := s.Err(); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), lineCount, nil
}
