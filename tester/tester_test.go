package tester

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tspec "github.com/nihei9/ffcalc/spec/test"
)

func TestTester_Run(t *testing.T) {
	header := `{"nonTerminals": ["S", "A", "B"], "terminals": ["a", "b"]}`
	productions := `
S -> A B
A -> a | ε
B -> b
`

	tests := []struct {
		testSrc string
		error   bool
	}{
		{
			testSrc: fmt.Sprintf(`
Test
---
%v
---%v---
first S = a b
first A = ε a
follow A = b
follow B = $
`, header, productions),
		},
		{
			testSrc: fmt.Sprintf(`
Test
---
%v
---
S -> A x
---
error invalid_grammar
`, header),
		},
		{
			testSrc: `
Test
---
{"terminals": ["a"]}
---
---
error ambiguous_start_symbol
`,
		},
		{
			testSrc: fmt.Sprintf(`
Test
---
%v
---%v---
first A = a
`, header, productions),
			error: true,
		},
		{
			testSrc: fmt.Sprintf(`
Test
---
%v
---%v---
follow X = $
`, header, productions),
			error: true,
		},
		{
			testSrc: fmt.Sprintf(`
Test
---
%v
---%v---
error invalid_grammar
`, header, productions),
			error: true,
		},
		{
			testSrc: fmt.Sprintf(`
Test
---
%v
---
S -> A x
---
error ambiguous_start_symbol
`, header),
			error: true,
		},
		{
			testSrc: fmt.Sprintf(`
Test
---
%v
---
S -> A x
---
first S = a
`, header),
			error: true,
		},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprintf("#%v", i), func(t *testing.T) {
			c, err := tspec.ParseTestCase(strings.NewReader(tt.testSrc))
			if err != nil {
				t.Fatal(err)
			}
			tester := &Tester{
				Cases: []*TestCaseWithMetadata{
					{
						TestCase: c,
					},
				},
			}
			rs := tester.Run()
			if tt.error {
				errOccurred := false
				for _, r := range rs {
					if r.Error != nil {
						errOccurred = true
					}
				}
				if !errOccurred {
					t.Fatal("this test must fail, but it passed")
				}
			} else {
				for _, r := range rs {
					if r.Error != nil {
						t.Fatalf("unexpected error occurred: %v", r.Error)
					}
				}
			}
		})
	}
}

func TestListTestCases(t *testing.T) {
	dir := t.TempDir()
	src := `Test
---
{"nonTerminals": ["S"]}
---
S -> ε
---
first S = ε
`
	err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte(src), 0600)
	if err != nil {
		t.Fatal(err)
	}
	err = os.Mkdir(filepath.Join(dir, "sub"), 0700)
	if err != nil {
		t.Fatal(err)
	}
	err = os.WriteFile(filepath.Join(dir, "sub", "b.txt"), []byte("broken"), 0600)
	if err != nil {
		t.Fatal(err)
	}

	cs := ListTestCases(dir)
	if len(cs) != 2 {
		t.Fatalf("unexpected test case count; want: 2, got: %v", len(cs))
	}
	if cs[0].Error != nil || cs[0].TestCase == nil {
		t.Fatalf("a valid test case must be read: %v", cs[0].Error)
	}
	if cs[1].Error == nil {
		t.Fatalf("a broken test case must have an error")
	}

	cs = ListTestCases(filepath.Join(dir, "missing"))
	if len(cs) != 1 || cs[0].Error == nil {
		t.Fatalf("a missing path must have an error")
	}
}

func TestTester_Testdata(t *testing.T) {
	cs := ListTestCases(filepath.Join("..", "testdata"))
	if len(cs) == 0 {
		t.Fatal("no test cases were found")
	}
	for _, c := range cs {
		if c.Error != nil {
			t.Fatalf("failed to read a test case: %v: %v", c.FilePath, c.Error)
		}
	}
	tester := &Tester{
		Cases: cs,
	}
	for _, r := range tester.Run() {
		if r.Error != nil {
			t.Error(r)
		}
	}
}

func TestTester_Run_ReadError(t *testing.T) {
	tester := &Tester{
		Cases: []*TestCaseWithMetadata{
			{
				FilePath: "broken.txt",
				Error:    fmt.Errorf("too many or too few part delimiters"),
			},
		},
	}
	rs := tester.Run()
	if len(rs) != 1 || rs[0].Error == nil {
		t.Fatalf("a case that couldn't be read must fail: %v", rs)
	}
	if !strings.HasPrefix(rs[0].String(), "Failed broken.txt:") {
		t.Fatalf("unexpected result: %v", rs[0])
	}
}
