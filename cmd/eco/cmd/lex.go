package cmd

import (
	"fmt"
	"os"

	"github.com/eco-lang/eco/lexer"
	"github.com/spf13/cobra"
)

var (
	lexEval    string
	lexShowPos bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize an eco file or expression",
	Long: `Tokenize (lex) an eco program and print the resulting tokens.

Examples:
  eco lex script.eco
  eco lex -e "const x = 1 + 2;"
  eco lex --show-pos script.eco`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().StringVarP(&lexEval, "eval", "e", "", "tokenize inline code instead of reading from file")
	lexCmd.Flags().BoolVar(&lexShowPos, "show-pos", false, "show token positions (line:column)")
}

func runLex(_ *cobra.Command, args []string) error {
	input, _, err := readSource(lexEval, args)
	if err != nil {
		return err
	}

	l := lexer.New(input)
	count := 0
	for {
		tok, err := l.Peek()
		if err != nil {
			return err
		}
		if tok == nil {
			break
		}
		if _, err := l.Consume(); err != nil {
			return err
		}
		count++
		printToken(l, *tok)
	}
	fmt.Printf("--- %d token(s)\n", count)
	return nil
}

func printToken(l *lexer.Lexer, tok lexer.Token) {
	var suffix string
	if lexShowPos {
		line, col := l.GetLineAndColumn(tok.Pos)
		suffix = fmt.Sprintf(" @%d:%d", line, col)
	}
	fmt.Fprintf(os.Stdout, "[%-10s] %q%s\n", tok.Kind, tok.Literal, suffix)
}

// readSource determines input source: inline eval text or a file argument,
// returning the text and a display filename. With neither it returns an
// error; stdin is not read.
func readSource(eval string, args []string) (input, filename string, err error) {
	switch {
	case eval != "":
		return eval, "<eval>", nil
	case len(args) == 1:
		content, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		return string(content), args[0], nil
	default:
		return "", "", fmt.Errorf("either provide a file path or use -e for inline code")
	}
}
