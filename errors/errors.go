// Package errors formats parser and runtime diagnostics with source
// context: a line/column header plus the offending source line and a caret
// pointing at the column, the same shape spec.md §6/§7 names for
// parser.Error's and lexer.Error's Error() string, just with the surrounding snippet a human
// reads at a terminal.
package errors

import (
	"fmt"
	"strings"
)

// Positioned is implemented by parser.Error and lexer.Error: anything that
// already carries a line/column and the canonical "Error at line L, column
// C: <reason>" message.
type Positioned interface {
	error
	Position() (line, column int)
}

// Diagnostic is a single compiler error with enough context to render a
// source snippet: a line/column, a message, the full source it came from,
// and an optional file name.
type Diagnostic struct {
	Line    int
	Column  int
	Message string
	Source  string
	File    string
}

// FromPositioned builds a Diagnostic from any Positioned error (a
// *parser.Error or *lexer.Error), stripping its own "Error at line L,
// column C:" prefix since Format rebuilds that header itself.
func FromPositioned(err Positioned, source, file string) *Diagnostic {
	line, col := err.Position()
	msg := err.Error()
	if prefix := fmt.Sprintf("Error at line %d, column %d: ", line, col); strings.HasPrefix(msg, prefix) {
		msg = msg[len(prefix):]
	}
	return &Diagnostic{Line: line, Column: col, Message: msg, Source: source, File: file}
}

// New builds a Diagnostic directly from a line, column, and message.
func New(line, column int, message, source, file string) *Diagnostic {
	return &Diagnostic{Line: line, Column: column, Message: message, Source: source, File: file}
}

// Error implements the error interface as the plain, uncolored format.
func (d *Diagnostic) Error() string {
	return d.Format(false)
}

// Format renders the header, offending source line, and caret. If color is
// true, ANSI codes highlight the caret and message for terminal output.
func (d *Diagnostic) Format(color bool) string {
	var sb strings.Builder

	if d.File != "" {
		fmt.Fprintf(&sb, "Error in %s:%d:%d\n", d.File, d.Line, d.Column)
	} else {
		fmt.Fprintf(&sb, "Error at line %d, column %d\n", d.Line, d.Column)
	}

	if line := d.sourceLine(d.Line); line != "" {
		lineNumStr := fmt.Sprintf("%4d | ", d.Line)
		sb.WriteString(lineNumStr)
		sb.WriteString(line)
		sb.WriteString("\n")

		sb.WriteString(strings.Repeat(" ", len(lineNumStr)+d.Column-1))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteString("^")
		if color {
			sb.WriteString("\033[0m")
		}
		sb.WriteString("\n")
	}

	if color {
		sb.WriteString("\033[1m")
	}
	sb.WriteString(d.Message)
	if color {
		sb.WriteString("\033[0m")
	}
	return sb.String()
}

// sourceLine returns the 1-indexed line from Source, or "" if out of range
// or Source is empty.
func (d *Diagnostic) sourceLine(lineNum int) string {
	if d.Source == "" {
		return ""
	}
	lines := strings.Split(d.Source, "\n")
	if lineNum < 1 || lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

// FormatDiagnostics renders a batch of diagnostics, numbering each one when
// there is more than one.
func FormatDiagnostics(diags []*Diagnostic, color bool) string {
	if len(diags) == 0 {
		return ""
	}
	if len(diags) == 1 {
		return diags[0].Format(color)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Compilation failed with %d error(s):\n\n", len(diags))
	for i, d := range diags {
		fmt.Fprintf(&sb, "[Error %d of %d]\n", i+1, len(diags))
		sb.WriteString(d.Format(color))
		if i < len(diags)-1 {
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}
