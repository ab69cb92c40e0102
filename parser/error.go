package parser

import (
	"fmt"

	"github.com/eco-lang/eco/lexer"
)

// Error is a parse-time failure carrying position, line, and column, per
// spec.md §6/§7. Kind is one of the closed error-kind names listed in
// spec.md §7, used for tests and programmatic handling; it never appears
// in the rendered message.
type Error struct {
	Kind    string
	Message string
	Pos     lexer.Pos
	Line    int
	Column  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("Error at line %d, column %d: %s", e.Line, e.Column, e.Message)
}

// Position implements errors.Positioned.
func (e *Error) Position() (line, column int) { return e.Line, e.Column }

// Error kind constants, mirroring spec.md §7's closed list.
const (
	ErrUnexpectedToken   = "unexpected token"
	ErrUnrecognisedToken = "unrecognised token"
	ErrUnexpectedEnd     = "unexpected end of string"
	ErrUnclosedComment   = "unclosed comment"
	ErrInvalidCharacter  = "invalid character"
	ErrExpectedGot       = "expected X got Y"
	ErrDestructureRest   = "cannot destructure more values after rest"
	ErrTopLevelOnly      = "imports/exports must be top level"
)

func (p *Parser) errorf(kind string, pos lexer.Pos, format string, args ...any) *Error {
	line, col := p.lex.GetLineAndColumn(pos)
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Pos: pos, Line: line, Column: col}
}
