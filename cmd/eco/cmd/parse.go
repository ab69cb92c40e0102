package cmd

import (
	"fmt"
	"os"

	ecoerrors "github.com/eco-lang/eco/errors"
	"github.com/eco-lang/eco/lexer"
	"github.com/eco-lang/eco/parser"
	"github.com/kr/pretty"
	"github.com/spf13/cobra"
)

var (
	parseEval    string
	parseDumpAST bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse eco source and display the AST",
	Long: `Parse eco source code and display the Abstract Syntax Tree.

Use -e to parse inline code from the command line as a program. Use --dump-ast
for a more verbose, struct-level dump via kr/pretty.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVarP(&parseEval, "eval", "e", "", "parse inline code instead of reading from file")
	parseCmd.Flags().BoolVar(&parseDumpAST, "dump-ast", false, "dump the full AST structure via kr/pretty")
}

func runParse(_ *cobra.Command, args []string) error {
	input, filename, err := readSource(parseEval, args)
	if err != nil {
		return err
	}

	l := lexer.New(input)
	p := parser.New(l)
	program, err := p.ParseProgram()
	if err != nil {
		return reportParseError(err, input, filename)
	}

	if parseDumpAST {
		if _, err := pretty.Println(program); err != nil {
			return err
		}
		return nil
	}
	fmt.Printf("Program: %d statement(s)\n", len(program.Statements))
	for i, stmt := range program.Statements {
		fmt.Printf("  [%d] %T\n", i, stmt)
	}
	return nil
}

func reportParseError(err error, source, filename string) error {
	if perr, ok := err.(*parser.Error); ok {
		diag := ecoerrors.FromPositioned(perr, source, filename)
		fmt.Fprintln(os.Stderr, diag.Format(false))
		return fmt.Errorf("parsing failed")
	}
	return err
}
