// Command eco is the lexer/parser/runtime/bundler CLI for the eco
// language: lex, parse, run, and bundle subcommands over the packages in
// this module.
package main

import (
	"os"

	"github.com/eco-lang/eco/cmd/eco/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
