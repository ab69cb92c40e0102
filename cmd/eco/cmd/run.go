package cmd

import (
	"fmt"
	"os"

	"github.com/eco-lang/eco/host"
	"github.com/eco-lang/eco/lexer"
	"github.com/eco-lang/eco/parser"
	"github.com/eco-lang/eco/runtime"
	"github.com/spf13/cobra"
)

var (
	runEval       string
	runGlobals    string
	runPrintJSON  bool
	runPrintPlain bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run an eco file or expression",
	Long: `Lex, parse, and evaluate an eco program, printing its final
statement's value.

Examples:
  eco run script.eco
  eco run -e "1 + 2 * 3;"
  eco run --globals globals.json --print-json script.eco`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runEval, "eval", "e", "", "evaluate inline code instead of reading from file")
	runCmd.Flags().StringVar(&runGlobals, "globals", "", "JSON file seeding the global record (spec.md §6's `global` collaborator)")
	runCmd.Flags().BoolVar(&runPrintJSON, "print-json", false, "print the result as JSON instead of its string coercion")
	runCmd.Flags().BoolVar(&runPrintPlain, "pretty", false, "pretty-print --print-json output")
}

func runRun(_ *cobra.Command, args []string) error {
	input, filename, err := readSource(runEval, args)
	if err != nil {
		return err
	}

	l := lexer.New(input)
	p := parser.New(l)
	program, err := p.ParseProgram()
	if err != nil {
		return reportParseError(err, input, filename)
	}

	global := runtime.NewObject()
	if runGlobals != "" {
		if err := host.LoadGlobals(runGlobals, global); err != nil {
			return err
		}
	}

	rt := runtime.New(global)
	result, err := runtime.Run(program, rt)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return fmt.Errorf("execution failed")
	}

	if runPrintJSON {
		var out string
		var jerr error
		if runPrintPlain {
			out, jerr = host.ToJSONPretty(result, 2)
		} else {
			out, jerr = host.ToJSON(result)
		}
		if jerr != nil {
			return jerr
		}
		fmt.Println(out)
		return nil
	}

	fmt.Println(result.String())
	return nil
}
