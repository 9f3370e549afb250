package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"text/template"

	spec "github.com/nihei9/ffcalc/spec/grammar"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:     "show",
		Short:   "Print a result in a readable format",
		Example: `  ffcalc show result.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runShow,
	}
	rootCmd.AddCommand(cmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	res, err := readResult(args[0])
	if err != nil {
		return err
	}

	err = writeResult(os.Stdout, res)
	if err != nil {
		return err
	}

	return nil
}

func readResult(path string) (*spec.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Cannot open the result %s: %w", path, err)
	}
	defer f.Close()

	d, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	res := &spec.Result{}
	err = json.Unmarshal(d, res)
	if err != nil {
		return nil, err
	}

	return res, nil
}

const resultTemplate = `# FIRST

{{ range entries .First -}}
{{ printEntry . }}
{{ end }}
# FOLLOW

{{ range entries .Follow -}}
{{ printEntry . }}
{{ end -}}
{{ with .Report }}
# Productions

{{ range .Productions -}}
{{ printProduction . }}
{{ end }}
# Nullable Non-terminals

{{ if .Nullable }}{{ join .Nullable ", " }}{{ else }}None{{ end }}

# Classification

{{ .StateCount }} states
{{ printClass .LR0 }}
{{ printClass .SLR1 }}
{{ if .States }}
# States
{{ range .States }}
## State {{ .Number }}

{{ range .Kernel -}}
{{ printItem . }}
{{ end -}}
{{ range .Closure -}}
{{ printItem . }}
{{ end }}
{{ range .Shift -}}
{{ printShift . }}
{{ end -}}
{{ range .GoTo -}}
{{ printGoTo . }}
{{ end -}}
{{ range .Reduce -}}
{{ printReduce . }}
{{ end -}}
{{ end -}}
{{ end -}}
{{ printTable .LR0 }}{{ printTable .SLR1 }}
{{- end }}`

type entry struct {
	nonTerm string
	members []string
}

func writeResult(w io.Writer, res *spec.Result) error {
	fns := template.FuncMap{
		"entries": func(table map[string][]string) []*entry {
			es := make([]*entry, 0, len(table))
			for nonTerm, members := range table {
				es = append(es, &entry{
					nonTerm: nonTerm,
					members: members,
				})
			}
			sort.Slice(es, func(i, j int) bool {
				return es[i].nonTerm < es[j].nonTerm
			})
			return es
		},
		"printEntry": func(e *entry) string {
			return fmt.Sprintf("%v: {%v}", e.nonTerm, strings.Join(e.members, ", "))
		},
		"printProduction": func(prod *spec.Production) string {
			return fmt.Sprintf("%4v %v", prod.Number, prod.Text)
		},
		"join": strings.Join,
		"printItem": func(item *spec.Item) string {
			return fmt.Sprintf("%4v %v", item.Production, item.Text)
		},
		"printShift": func(tran *spec.Transition) string {
			return fmt.Sprintf("shift  %4v on %v", tran.State, tran.Symbol)
		},
		"printGoTo": func(tran *spec.Transition) string {
			return fmt.Sprintf("goto   %4v on %v", tran.State, tran.Symbol)
		},
		"printReduce": func(prod int) string {
			if prod == 0 {
				return "accept"
			}
			return fmt.Sprintf("reduce %4v", prod)
		},
		"printTable": printTable,
		"printClass": func(class *spec.Class) string {
			if class == nil {
				return ""
			}
			var b strings.Builder
			switch len(class.Conflicts) {
			case 0:
				fmt.Fprintf(&b, "%v: OK", class.Name)
			case 1:
				fmt.Fprintf(&b, "%v: 1 conflict", class.Name)
			default:
				fmt.Fprintf(&b, "%v: %v conflicts", class.Name, len(class.Conflicts))
			}
			for _, c := range class.Conflicts {
				prods := make([]string, 0, len(c.Productions))
				for _, p := range c.Productions {
					prods = append(prods, fmt.Sprintf("%v", p))
				}
				if c.Symbol != "" {
					fmt.Fprintf(&b, "\n    state %v: %v conflict on %v (reduce %v)", c.State, c.Kind, c.Symbol, strings.Join(prods, ", "))
				} else {
					fmt.Fprintf(&b, "\n    state %v: %v conflict (reduce %v)", c.State, c.Kind, strings.Join(prods, ", "))
				}
			}
			return b.String()
		},
	}

	tmpl, err := template.New("").Funcs(fns).Parse(resultTemplate)
	if err != nil {
		return err
	}

	err = tmpl.Execute(w, res)
	if err != nil {
		return err
	}

	return nil
}

// printTable renders the ACTION columns followed by the GOTO columns. Conflicting actions in a cell
// are joined with slashes.
func printTable(class *spec.Class) (string, error) {
	if class == nil || class.Table == nil {
		return "", nil
	}
	tab := class.Table

	var b strings.Builder
	fmt.Fprintf(&b, "\n# %v Parsing Table\n\n", class.Name)
	w := tabwriter.NewWriter(&b, 0, 0, 1, ' ', tabwriter.Debug)
	fmt.Fprintf(w, "state\t")
	for _, sym := range tab.Terminals {
		fmt.Fprintf(w, "%v\t", sym)
	}
	for _, sym := range tab.NonTerminals {
		fmt.Fprintf(w, "%v\t", sym)
	}
	fmt.Fprintf(w, "\n")
	for _, row := range tab.Rows {
		fmt.Fprintf(w, "%v\t", row.State)
		for _, sym := range tab.Terminals {
			texts := make([]string, 0, len(row.Action[sym]))
			for _, act := range row.Action[sym] {
				switch act.Type {
				case spec.ActionTypeShift:
					texts = append(texts, fmt.Sprintf("s%v", act.State))
				case spec.ActionTypeReduce:
					texts = append(texts, fmt.Sprintf("r%v", act.Production))
				case spec.ActionTypeAccept:
					texts = append(texts, "acc")
				}
			}
			fmt.Fprintf(w, "%v\t", strings.Join(texts, "/"))
		}
		for _, sym := range tab.NonTerminals {
			if next, ok := row.GoTo[sym]; ok {
				fmt.Fprintf(w, "%v\t", next)
			} else {
				fmt.Fprintf(w, "\t")
			}
		}
		fmt.Fprintf(w, "\n")
	}
	err := w.Flush()
	if err != nil {
		return "", err
	}
	return b.String(), nil
}
