// Package tester runs test cases that pair a grammar with the FIRST and FOLLOW entries or the error
// kind it is expected to produce.
package tester

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/nihei9/ffcalc/grammar"
	tspec "github.com/nihei9/ffcalc/spec/test"
)

type TestResult struct {
	TestCasePath string
	Error        error
	Diffs        []*tspec.ResultDiff
}

func (r *TestResult) String() string {
	if r.Error == nil {
		return fmt.Sprintf("Passed %v", r.TestCasePath)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Failed %v:", r.TestCasePath)
	for _, line := range strings.Split(r.Error.Error(), "\n") {
		fmt.Fprintf(&b, "\n    %v", line)
	}
	for _, diff := range r.Diffs {
		fmt.Fprintf(&b, "\n        %v: %v", diff.Path, diff.Message)
	}
	return b.String()
}

type TestCaseWithMetadata struct {
	TestCase *tspec.TestCase
	FilePath string
	Error    error
}

// ListTestCases reads a test case file, or every file under a directory in lexical order.
// A file that cannot be read or parsed is listed with its error.
func ListTestCases(testPath string) []*TestCaseWithMetadata {
	var cases []*TestCaseWithMetadata
	err := filepath.WalkDir(testPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			cases = append(cases, &TestCaseWithMetadata{
				FilePath: path,
				Error:    err,
			})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		c, err := parseTestCase(path)
		cases = append(cases, &TestCaseWithMetadata{
			TestCase: c,
			FilePath: path,
			Error:    err,
		})
		return nil
	})
	if err != nil {
		cases = append(cases, &TestCaseWithMetadata{
			FilePath: testPath,
			Error:    err,
		})
	}
	return cases
}

func parseTestCase(testCasePath string) (*tspec.TestCase, error) {
	f, err := os.Open(testCasePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return tspec.ParseTestCase(f)
}

type Tester struct {
	Cases []*TestCaseWithMetadata
}

func (t *Tester) Run() []*TestResult {
	rs := make([]*TestResult, 0, len(t.Cases))
	for _, c := range t.Cases {
		r := &TestResult{
			TestCasePath: c.FilePath,
		}
		if c.Error != nil {
			r.Error = c.Error
		} else {
			r.Diffs, r.Error = check(c.TestCase)
		}
		rs = append(rs, r)
	}
	return rs
}

var errMismatch = errors.New("output mismatch")

func check(c *tspec.TestCase) ([]*tspec.ResultDiff, error) {
	exp := c.Expected
	res, err := grammar.Calculate(c.Request)
	if err != nil {
		kind, ok := grammar.ErrorKind(err)
		switch {
		case !ok || exp.ErrorKind == "":
			return nil, err
		case kind != exp.ErrorKind:
			return nil, fmt.Errorf("unexpected error kind: expected '%v' but got '%v':\n%v", exp.ErrorKind, kind, err)
		}
		return nil, nil
	}
	if exp.ErrorKind != "" {
		return nil, fmt.Errorf("an expected error didn't occur: %v", exp.ErrorKind)
	}

	diffs := tspec.DiffResult(exp, res)
	if len(diffs) > 0 {
		return diffs, errMismatch
	}
	return nil, nil
}
