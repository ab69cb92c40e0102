package lexer

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Error is a lexical scanning failure, carrying line/column the way the
// parser's errors do so the two surface identically to callers.
type Error struct {
	Msg    string
	Pos    Pos
	Line   int
	Column int
}

func (e *Error) Error() string {
	return fmt.Sprintf("Error at line %d, column %d: %s", e.Line, e.Column, e.Msg)
}

// Position implements errors.Positioned.
func (e *Error) Position() (line, column int) { return e.Line, e.Column }

// Lexer is a stateful character scanner with one cached token of lookahead.
// It holds no line/column bookkeeping of its own: GetLineAndColumn always
// recomputes from the original input, which is what makes Revert cheap and
// exact — there is nothing else to rewind.
type Lexer struct {
	input   string
	pos     int // byte offset of ch
	readPos int // byte offset of the rune after ch
	ch      rune

	cached  *Token // one token of lookahead; nil means "not yet scanned"
	atEOF   bool   // cached is valid and represents end-of-input
	lastEnd Pos    // end offset of the last token returned by Consume
}

// New creates a Lexer over the given source text.
func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
		l.pos = len(l.input)
		l.readPos = len(l.input) + 1
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.readPos:])
	l.pos = l.readPos
	l.ch = r
	l.readPos += w
}

func (l *Lexer) peekRune() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

// seek jumps the raw scan cursor to an arbitrary byte offset. Used by
// Revert and by GetUntil once it has located its terminator.
func (l *Lexer) seek(bytePos int) {
	if bytePos >= len(l.input) {
		l.pos = len(l.input)
		l.readPos = len(l.input) + 1
		l.ch = 0
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[bytePos:])
	l.pos = bytePos
	l.readPos = bytePos + w
	l.ch = r
}

// Input returns the original source, needed by callers that re-parse a
// literal span (string interpolation) or want to slice out token source.
func (l *Lexer) Input() string { return l.input }

func (l *Lexer) newError(pos Pos, format string, args ...any) *Error {
	line, col := l.GetLineAndColumn(pos)
	return &Error{Msg: fmt.Sprintf(format, args...), Pos: pos, Line: line, Column: col}
}

// GetLineAndColumn scans the original input counting newlines, per spec.
// Line and column are both 1-based; column counts runes, not bytes.
func (l *Lexer) GetLineAndColumn(pos Pos) (int, int) {
	line := 1
	col := 1
	limit := int(pos)
	if limit > len(l.input) {
		limit = len(l.input)
	}
	for i := 0; i < limit; {
		r, w := utf8.DecodeRuneInString(l.input[i:])
		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
		i += w
	}
	return line, col
}

func isLetter(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func (l *Lexer) skipWhitespaceAndComments() error {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
			l.readChar()
		}
		if l.ch == '/' && l.peekRune() == '/' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}
		if l.ch == '/' && l.peekRune() == '*' {
			start := Pos(l.pos)
			l.readChar()
			l.readChar()
			closed := false
			for l.ch != 0 {
				if l.ch == '*' && l.peekRune() == '/' {
					l.readChar()
					l.readChar()
					closed = true
					break
				}
				l.readChar()
			}
			if !closed {
				return l.newError(start, "unclosed comment")
			}
			continue
		}
		break
	}
	return nil
}

func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return norm.NFC.String(l.input[start:l.pos])
}

func (l *Lexer) readNumber() float64 {
	start := l.pos
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekRune()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	v, _ := strconv.ParseFloat(l.input[start:l.pos], 64)
	return v
}

// readString reads to the matching quote; escape sequences are NOT
// interpreted, per spec — a backslash is just another character.
func (l *Lexer) readString(quote rune) (string, error) {
	start := Pos(l.pos)
	l.readChar() // skip opening quote
	contentStart := l.pos
	for l.ch != quote {
		if l.ch == 0 {
			return "", l.newError(start, "unexpected end of string")
		}
		l.readChar()
	}
	content := l.input[contentStart:l.pos]
	l.readChar() // skip closing quote
	return content, nil
}

// lexemeCandidates entries are tried longest-first; length groups are
// already ordered 3,2,1 below so a linear scan implements longest match.
type lexemeCandidate struct {
	lexeme string
	kind   Kind
}

var lexemeCandidates = []lexemeCandidate{
	{"...", SPREAD},
	{"===", OPERATOR},
	{"!==", OPERATOR},
	{"=>", ARROW},
	{"${", DOLLARLBRC},
	{"</", CLOSETAG},
	{"/>", SELFCLOSE},
	{"==", OPERATOR},
	{"!=", OPERATOR},
	{">=", OPERATOR},
	{"<=", OPERATOR},
	{"&&", OPERATOR},
	{"||", OPERATOR},
	{"+=", OPERATOR},
	{"-=", OPERATOR},
	{"*=", OPERATOR},
	{"/=", OPERATOR},
	{"++", OPERATOR},
	{"--", OPERATOR},
	{"`", BACKTICK},
	{"<", LT},
	{">", GT},
	{"(", LPAREN},
	{")", RPAREN},
	{"[", LBRACKET},
	{"]", RBRACKET},
	{"{", LBRACE},
	{"}", RBRACE},
	{",", COMMA},
	{".", DOT},
	{"?", QUESTION},
	{":", COLON},
	{";", SEMI},
	{"+", OPERATOR},
	{"-", OPERATOR},
	{"*", OPERATOR},
	{"/", OPERATOR},
	{"!", OPERATOR},
	{"=", OPERATOR},
}

func (l *Lexer) scanSymbolOrOperator(start Pos) (*Token, error) {
	for _, cand := range lexemeCandidates {
		n := len(cand.lexeme)
		if l.pos+n > len(l.input) {
			continue
		}
		if l.input[l.pos:l.pos+n] == cand.lexeme {
			for range cand.lexeme {
				l.readChar()
			}
			return &Token{Kind: cand.kind, Literal: cand.lexeme, Value: cand.lexeme, Pos: start}, nil
		}
	}
	return nil, l.newError(start, "unrecognised token %q", string(l.ch))
}

// scan performs the actual tokenization; callers go through rawPeek so
// that the result is cached for the one-token lookahead contract.
func (l *Lexer) scan() (*Token, error) {
	if err := l.skipWhitespaceAndComments(); err != nil {
		return nil, err
	}
	if l.ch == 0 {
		return nil, nil
	}
	start := Pos(l.pos)

	switch {
	case isLetter(l.ch):
		lit := l.readIdentifier()
		if k, ok := literalKeywords[lit]; ok {
			var v any
			switch k {
			case TRUE:
				v = true
			case FALSE:
				v = false
			case NULL, UNDEFINED:
				v = nil
			}
			return &Token{Kind: k, Literal: lit, Value: v, Pos: start}, nil
		}
		if k, ok := keywords[lit]; ok {
			return &Token{Kind: k, Literal: lit, Value: lit, Pos: start}, nil
		}
		return &Token{Kind: IDENT, Literal: lit, Value: lit, Pos: start}, nil

	case isDigit(l.ch):
		n := l.readNumber()
		return &Token{Kind: NUMBER, Literal: strconv.FormatFloat(n, 'g', -1, 64), Value: n, Pos: start}, nil

	case l.ch == '"' || l.ch == '\'':
		s, err := l.readString(l.ch)
		if err != nil {
			return nil, err
		}
		return &Token{Kind: STRING, Literal: s, Value: s, Pos: start}, nil

	default:
		return l.scanSymbolOrOperator(start)
	}
}

func (l *Lexer) rawPeek() (*Token, error) {
	if l.cached == nil && !l.atEOF {
		tok, err := l.scan()
		if err != nil {
			return nil, err
		}
		if tok == nil {
			l.atEOF = true
			return nil, nil
		}
		l.cached = tok
	}
	return l.cached, nil
}

// Peek returns the next token without consuming it, or nil at end of
// input. If expected kinds are given and the next token's kind isn't
// among them, Peek returns nil (a non-match, not a null stream).
func (l *Lexer) Peek(expected ...Kind) (*Token, error) {
	tok, err := l.rawPeek()
	if err != nil || tok == nil {
		return tok, err
	}
	if len(expected) > 0 && !containsKind(expected, tok.Kind) {
		return nil, nil
	}
	return tok, nil
}

func containsKind(ks []Kind, k Kind) bool {
	for _, x := range ks {
		if x == k {
			return true
		}
	}
	return false
}

// Consume returns and advances past the next token, failing if expected
// kinds are given and the token's kind isn't among them.
func (l *Lexer) Consume(expected ...Kind) (Token, error) {
	tok, err := l.rawPeek()
	if err != nil {
		return Token{}, err
	}
	if tok == nil {
		return Token{}, l.newError(Pos(len(l.input)), "unexpected end of input")
	}
	if len(expected) > 0 && !containsKind(expected, tok.Kind) {
		return Token{}, l.newError(tok.Pos, "expected %v got %s %q", expected, tok.Kind, tok.Literal)
	}
	result := *tok
	l.cached = nil
	l.atEOF = false
	l.lastEnd = Pos(l.pos)
	return result, nil
}

// PeekOperator reports whether the next token is the OPERATOR with this
// exact lexeme, without consuming it.
func (l *Lexer) PeekOperator(op string) bool {
	tok, _ := l.rawPeek()
	return tok != nil && tok.IsOperator(op)
}

// ConsumeOperator consumes the next token iff it is the OPERATOR op.
func (l *Lexer) ConsumeOperator(op string) (Token, error) {
	tok, err := l.rawPeek()
	if err != nil {
		return Token{}, err
	}
	if tok == nil || !tok.IsOperator(op) {
		return Token{}, l.newError(l.curPos(tok), "expected operator %q", op)
	}
	return l.Consume()
}

// ConsumeIdentifier consumes the next token iff it is an IDENT with this
// exact name.
func (l *Lexer) ConsumeIdentifier(name string) (Token, error) {
	tok, err := l.rawPeek()
	if err != nil {
		return Token{}, err
	}
	if tok == nil || tok.Kind != IDENT || tok.Literal != name {
		return Token{}, l.newError(l.curPos(tok), "expected identifier %q", name)
	}
	return l.Consume()
}

func (l *Lexer) curPos(tok *Token) Pos {
	if tok != nil {
		return tok.Pos
	}
	return Pos(len(l.input))
}

// SwitchTokenKind dispatches on the next token's kind, calling the first
// matching case or, if none match (including at end of input), the
// default case.
func SwitchTokenKind[T any](l *Lexer, cases map[Kind]func() (T, error), def func() (T, error)) (T, error) {
	tok, err := l.rawPeek()
	if err != nil {
		var zero T
		return zero, err
	}
	if tok != nil {
		if fn, ok := cases[tok.Kind]; ok {
			return fn()
		}
	}
	return def()
}

// GetUntil returns a synthetic STRING token holding every byte from the
// scan position (or startPos, if given) up to the first occurrence of any
// terminator, WITHOUT consuming the terminator itself. Fails with
// "unexpected end" if no terminator occurs before end of input. Bypasses
// normal tokenization: used for HTML text runs and template-string
// literal segments.
func (l *Lexer) GetUntil(terminators []string, startPos ...Pos) (Token, error) {
	start := l.pos
	if len(startPos) > 0 {
		start = int(startPos[0])
	}
	best := -1
	for i := start; i <= len(l.input); i++ {
		for _, t := range terminators {
			if t == "" {
				continue
			}
			if i+len(t) <= len(l.input) && l.input[i:i+len(t)] == t {
				best = i
				break
			}
		}
		if best != -1 {
			break
		}
	}
	if best == -1 {
		return Token{}, l.newError(Pos(start), "unexpected end")
	}
	lit := l.input[start:best]
	tok := Token{Kind: STRING, Literal: lit, Value: lit, Pos: Pos(start)}
	l.seek(best)
	l.cached = nil
	l.atEOF = false
	return tok, nil
}

// Revert rewinds the stream to an earlier position and invalidates any
// cached lookahead token, enabling the parser's arrow-function backtrack.
func (l *Lexer) Revert(position Pos) {
	l.seek(int(position))
	l.cached = nil
	l.atEOF = false
}

// GetPosition returns the start offset of the token Peek() would return
// next — the position Revert needs to replay the same token.
func (l *Lexer) GetPosition() (Pos, error) {
	tok, err := l.rawPeek()
	if err != nil {
		return 0, err
	}
	if tok == nil {
		return Pos(len(l.input)), nil
	}
	return tok.Pos, nil
}

// GetLastPosition returns the end offset of the most recently consumed
// token, used to anchor "unexpected end" errors right after good input.
func (l *Lexer) GetLastPosition() Pos { return l.lastEnd }
