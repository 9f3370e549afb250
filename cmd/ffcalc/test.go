package main

import (
	"fmt"

	"github.com/nihei9/ffcalc/tester"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "test <test file path>|<test directory path>",
		Short: "Test grammars against expected FIRST and FOLLOW entries",
		Long: `test runs a test case file, or every test case file under a directory.
A test case consists of four parts separated by lines of hyphens:
a description, a request in JSON, productions, and expectations.`,
		Example: `  ffcalc test testdata`,
		Args:    cobra.ExactArgs(1),
		RunE:    runTest,
	}
	rootCmd.AddCommand(cmd)
}

func runTest(cmd *cobra.Command, args []string) error {
	t := &tester.Tester{
		Cases: tester.ListTestCases(args[0]),
	}
	if len(t.Cases) == 0 {
		return fmt.Errorf("no test cases were found: %v", args[0])
	}

	failed := 0
	for _, r := range t.Run() {
		fmt.Fprintln(cmd.OutOrStdout(), r)
		if r.Error != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%v of %v test cases failed", failed, len(t.Cases))
	}
	return nil
}
