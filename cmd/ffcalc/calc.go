package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	verr "github.com/nihei9/ffcalc/error"
	"github.com/nihei9/ffcalc/grammar"
	spec "github.com/nihei9/ffcalc/spec/grammar"
	"github.com/spf13/cobra"
)

const (
	formatJSON = "json"
	formatText = "text"
)

var calcFlags = struct {
	nonTerminals *[]string
	terminals    *[]string
	start        *string
	report       *bool
	format       *string
	output       *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:   "calc [file]",
		Short: "Calculate FIRST and FOLLOW sets of a grammar",
		Long: `calc reads a request in JSON. When --non-terminals or --terminals is specified,
calc reads productions text instead, one rule per line.`,
		Example: `  ffcalc calc request.json
  ffcalc calc -n S,A,B -t a,b --format text productions.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCalc,
	}
	calcFlags.nonTerminals = cmd.Flags().StringSliceP("non-terminals", "n", nil, "non-terminal symbols; the productions text is read from the input")
	calcFlags.terminals = cmd.Flags().StringSliceP("terminals", "t", nil, "terminal symbols; the productions text is read from the input")
	calcFlags.start = cmd.Flags().String("start", "", "start symbol (default the first non-terminal)")
	calcFlags.report = cmd.Flags().Bool("report", false, "include the LR classification report")
	calcFlags.format = cmd.Flags().String("format", formatJSON, "output format (json or text)")
	calcFlags.output = cmd.Flags().StringP("output", "o", "", "output file path (default stdout)")
	rootCmd.AddCommand(cmd)
}

func runCalc(cmd *cobra.Command, args []string) (retErr error) {
	if *calcFlags.format != formatJSON && *calcFlags.format != formatText {
		return fmt.Errorf("invalid format: %v (json or text is available)", *calcFlags.format)
	}

	var srcPath string
	if len(args) > 0 {
		srcPath = args[0]
	}
	textMode := cmd.Flags().Changed("non-terminals") || cmd.Flags().Changed("terminals")
	defer func() {
		if retErr != nil {
			specErrs, ok := retErr.(verr.SpecErrors)
			if ok {
				for _, err := range specErrs {
					switch {
					case !textMode:
						err.SourceName = "productions"
					case srcPath != "":
						err.FilePath = srcPath
						err.SourceName = srcPath
					default:
						err.SourceName = "stdin"
					}
				}
			}
		}
	}()

	src, err := readInput(srcPath)
	if err != nil {
		return err
	}

	req := &spec.Request{}
	if textMode {
		req.NonTerminals = *calcFlags.nonTerminals
		req.Terminals = *calcFlags.terminals
		req.Productions = string(src)
	} else {
		err := json.Unmarshal(src, req)
		if err != nil {
			return fmt.Errorf("Cannot read a request: %w", err)
		}
	}
	if cmd.Flags().Changed("start") {
		req.Start = *calcFlags.start
	}
	if *calcFlags.report {
		req.Report = true
	}

	res, err := grammar.Calculate(req)
	if err != nil {
		return err
	}

	err = writeOutput(res, *calcFlags.format, *calcFlags.output)
	if err != nil {
		return fmt.Errorf("Cannot write an output: %w", err)
	}

	return nil
}

func readInput(path string) ([]byte, error) {
	if path == "" {
		return io.ReadAll(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Cannot open the file %s: %w", path, err)
	}
	defer f.Close()
	return io.ReadAll(f)
}

func writeOutput(res *spec.Result, format string, path string) error {
	var w io.Writer
	if path != "" {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	} else {
		w = os.Stdout
	}

	if format == formatText {
		return writeResult(w, res)
	}

	b, err := json.Marshal(res)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%v\n", string(b))
	return nil
}
