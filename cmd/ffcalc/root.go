package main

import (
	"fmt"
	"os"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/spf13/cobra"
)

var rootFlags = struct {
	traceLevel *string
}{}

var rootCmd = &cobra.Command{
	Use:   "ffcalc",
	Short: "Calculate FIRST and FOLLOW sets of a context-free grammar",
	Long: `ffcalc provides three features:
- Calculates FIRST and FOLLOW sets of every non-terminal of a grammar.
- Serves the calculation over HTTP.
- Tests a grammar against expected FIRST and FOLLOW entries.`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setUpTracing,
}

func init() {
	rootFlags.traceLevel = rootCmd.PersistentFlags().String("trace-level", "error", "trace level (error, info, debug)")
}

func setUpTracing(cmd *cobra.Command, args []string) error {
	var level tracing.TraceLevel
	switch *rootFlags.traceLevel {
	case "error":
		level = tracing.LevelError
	case "info":
		level = tracing.LevelInfo
	case "debug":
		level = tracing.LevelDebug
	default:
		return fmt.Errorf("invalid trace level: %v (error, info, or debug is available)", *rootFlags.traceLevel)
	}
	gtrace.CoreTracer = gologadapter.New()
	gtrace.CoreTracer.SetTraceLevel(level)
	return nil
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}
