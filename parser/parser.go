// Package parser implements the Pratt-style recursive-descent parser
// described in spec.md §4.2: a left-to-right statement dispatcher over a
// non-associative (except at the access/call level) expression grammar,
// with lexer-position backtracking to disambiguate a parenthesized
// expression from an arrow-function parameter list.
package parser

import (
	"github.com/eco-lang/eco/ast"
	"github.com/eco-lang/eco/lexer"
)

// Parser consumes a *lexer.Lexer and emits an *ast.Program. It performs
// no error recovery: the first parse error is fatal to the parse.
type Parser struct {
	lex   *lexer.Lexer
	depth int // block nesting depth; imports/exports require depth == 0
}

// New creates a Parser over the given Lexer.
func New(l *lexer.Lexer) *Parser {
	return &Parser{lex: l}
}

// ParseProgram parses a complete source file.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	for {
		tok, err := p.lex.Peek()
		if err != nil {
			return nil, asError(err)
		}
		if tok == nil {
			break
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, asError(err)
		}
		prog.Statements = append(prog.Statements, stmt)
	}
	return prog, nil
}

// ParseExpression parses a single expression and is the entry point used
// by string-literal `#{...}` interpolation (re-parsed on demand) and by
// the `${ ... }` / `{ ... }` sub-parses inside template strings and HTML.
// Every error it returns is a *Error, even one raised deep in a raw
// lexer scan.
func (p *Parser) ParseExpression() (ast.Expression, error) {
	expr, err := p.parseAssignment()
	if err != nil {
		return nil, asError(err)
	}
	return expr, nil
}

// peekIs reports whether the next token's kind is among the given kinds,
// swallowing any scan error (a later Consume surfaces it properly).
func (p *Parser) peekIs(kinds ...lexer.Kind) bool {
	tok, _ := p.lex.Peek(kinds...)
	return tok != nil
}

// Errors up from any parse* helper are always *Error; this narrows a raw
// lexer error (which has the same shape) into one.
func asError(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}
	if le, ok := err.(*lexer.Error); ok {
		return &Error{Kind: ErrUnexpectedToken, Message: le.Msg, Pos: le.Pos, Line: le.Line, Column: le.Column}
	}
	return &Error{Message: err.Error()}
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	tok, err := p.lex.Peek()
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, p.errorf(ErrUnexpectedToken, lexer.Pos(0), "unexpected end of input")
	}
	switch tok.Kind {
	case lexer.CONST, lexer.LET:
		return p.parseVarDeclStatement()
	case lexer.LBRACE:
		return p.parseBlock()
	case lexer.IF:
		return p.parseIf()
	case lexer.WHILE:
		return p.parseWhile()
	case lexer.RETURN:
		return p.parseReturn()
	case lexer.THROW:
		return p.parseThrow()
	case lexer.TRY:
		return p.parseTryCatch()
	case lexer.IMPORT:
		return p.parseImport()
	case lexer.EXPORT:
		return p.parseExport()
	case lexer.SEMI:
		start, _ := p.lex.Consume(lexer.SEMI)
		return &ast.Noop{BaseNode: ast.BaseNode{Tok: start}}, nil
	default:
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.lex.Consume(lexer.SEMI); err != nil {
			return nil, asError(err)
		}
		return expr, nil
	}
}

func (p *Parser) parseVarDeclStatement() (ast.Statement, error) {
	vd, err := p.parseVarDecl()
	if err != nil {
		return nil, err
	}
	if _, err := p.lex.Consume(lexer.SEMI); err != nil {
		return nil, asError(err)
	}
	return vd, nil
}

func (p *Parser) parseVarDecl() (*ast.VarDecl, error) {
	kwTok, err := p.lex.Consume(lexer.CONST, lexer.LET)
	if err != nil {
		return nil, asError(err)
	}
	v, err := p.parseVariable()
	if err != nil {
		return nil, err
	}
	return &ast.VarDecl{BaseNode: ast.BaseNode{Tok: kwTok}, IsConst: kwTok.Kind == lexer.CONST, Variable: v}, nil
}

// parseVariable parses a Variable binding target: a plain identifier or a
// destructure pattern, with an optional `= default` expression.
func (p *Parser) parseVariable() (ast.Variable, error) {
	tok, err := p.lex.Peek()
	if err != nil {
		return ast.Variable{}, err
	}
	var v ast.Variable
	switch {
	case tok != nil && tok.Kind == lexer.LBRACKET:
		elems, err := p.parseDestructureElements(lexer.LBRACKET, lexer.RBRACKET, true)
		if err != nil {
			return ast.Variable{}, err
		}
		v = ast.Variable{Kind: ast.DestructureArray, Elements: elems}
	case tok != nil && tok.Kind == lexer.LBRACE:
		elems, err := p.parseDestructureElements(lexer.LBRACE, lexer.RBRACE, false)
		if err != nil {
			return ast.Variable{}, err
		}
		v = ast.Variable{Kind: ast.DestructureObject, Elements: elems}
	default:
		nameTok, err := p.lex.Consume(lexer.IDENT)
		if err != nil {
			return ast.Variable{}, asError(err)
		}
		v = ast.Variable{Kind: ast.Identifier, Name: nameTok.Literal}
	}
	if p.lex.PeekOperator("=") {
		if _, err := p.lex.ConsumeOperator("="); err != nil {
			return ast.Variable{}, asError(err)
		}
		def, err := p.parseAssignment()
		if err != nil {
			return ast.Variable{}, err
		}
		v.Default = def
	}
	return v, nil
}

// parseDestructureElements parses the comma-separated element list between
// open/close, honoring holes (array form only), a single trailing rest
// element, and per-element defaults.
func (p *Parser) parseDestructureElements(open, closeKind lexer.Kind, allowHoles bool) ([]ast.DestructuredValue, error) {
	if _, err := p.lex.Consume(open); err != nil {
		return nil, asError(err)
	}
	var elems []ast.DestructuredValue
	for {
		tok, err := p.lex.Peek()
		if err != nil {
			return nil, err
		}
		if tok != nil && tok.Kind == closeKind {
			break
		}
		if allowHoles && tok != nil && tok.Kind == lexer.COMMA {
			p.lex.Consume(lexer.COMMA)
			elems = append(elems, ast.DestructuredValue{IsHole: true})
			continue
		}
		isRest := false
		if tok != nil && tok.Kind == lexer.SPREAD {
			p.lex.Consume(lexer.SPREAD)
			isRest = true
		}
		nameTok, err := p.lex.Consume(lexer.IDENT)
		if err != nil {
			return nil, asError(err)
		}
		var def ast.Expression
		if !isRest && p.lex.PeekOperator("=") {
			p.lex.ConsumeOperator("=")
			def, err = p.parseAssignment()
			if err != nil {
				return nil, err
			}
		}
		elems = append(elems, ast.DestructuredValue{Name: nameTok.Literal, Default: def, IsRest: isRest})
		if isRest {
			next, err := p.lex.Peek()
			if err != nil {
				return nil, err
			}
			if next == nil || next.Kind != closeKind {
				return nil, p.errorf(ErrDestructureRest, nameTok.Pos, "cannot destructure more values after rest")
			}
			break
		}
		if p.peekIs(lexer.COMMA) {
			p.lex.Consume(lexer.COMMA)
			continue
		}
		break
	}
	if _, err := p.lex.Consume(closeKind); err != nil {
		return nil, asError(err)
	}
	return elems, nil
}

func (p *Parser) parseBlock() (*ast.Block, error) {
	openTok, err := p.lex.Consume(lexer.LBRACE)
	if err != nil {
		return nil, asError(err)
	}
	p.depth++
	defer func() { p.depth-- }()
	var stmts []ast.Statement
	for {
		tok, err := p.lex.Peek()
		if err != nil {
			return nil, err
		}
		if tok == nil {
			return nil, p.errorf(ErrUnexpectedEnd, p.lex.GetLastPosition(), "unexpected end of input inside block")
		}
		if tok.Kind == lexer.RBRACE {
			break
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	if _, err := p.lex.Consume(lexer.RBRACE); err != nil {
		return nil, asError(err)
	}
	return &ast.Block{BaseNode: ast.BaseNode{Tok: openTok}, Statements: stmts}, nil
}

func (p *Parser) parseIf() (ast.Statement, error) {
	tok, _ := p.lex.Consume(lexer.IF)
	if _, err := p.lex.Consume(lexer.LPAREN); err != nil {
		return nil, asError(err)
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.lex.Consume(lexer.RPAREN); err != nil {
		return nil, asError(err)
	}
	then, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	var elseStmt ast.Statement
	if p.peekIs(lexer.ELSE) {
		p.lex.Consume(lexer.ELSE)
		elseStmt, err = p.parseStatement()
		if err != nil {
			return nil, err
		}
	}
	return &ast.If{BaseNode: ast.BaseNode{Tok: tok}, Cond: cond, Then: then, Else: elseStmt}, nil
}

func (p *Parser) parseWhile() (ast.Statement, error) {
	tok, _ := p.lex.Consume(lexer.WHILE)
	if _, err := p.lex.Consume(lexer.LPAREN); err != nil {
		return nil, asError(err)
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.lex.Consume(lexer.RPAREN); err != nil {
		return nil, asError(err)
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.While{BaseNode: ast.BaseNode{Tok: tok}, Cond: cond, Body: body}, nil
}

func (p *Parser) parseReturn() (ast.Statement, error) {
	tok, _ := p.lex.Consume(lexer.RETURN)
	var val ast.Expression
	if !p.peekIs(lexer.SEMI) {
		var err error
		val, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.lex.Consume(lexer.SEMI); err != nil {
		return nil, asError(err)
	}
	return &ast.Return{BaseNode: ast.BaseNode{Tok: tok}, Value: val}, nil
}

func (p *Parser) parseThrow() (ast.Statement, error) {
	tok, _ := p.lex.Consume(lexer.THROW)
	val, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.lex.Consume(lexer.SEMI); err != nil {
		return nil, asError(err)
	}
	return &ast.Throw{BaseNode: ast.BaseNode{Tok: tok}, Value: val}, nil
}

func (p *Parser) parseTryCatch() (ast.Statement, error) {
	tok, _ := p.lex.Consume(lexer.TRY)
	tryBlock, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var catchBlock ast.Statement
	var catchName string
	if p.peekIs(lexer.CATCH) {
		p.lex.Consume(lexer.CATCH)
		if p.peekIs(lexer.LPAREN) {
			p.lex.Consume(lexer.LPAREN)
			nameTok, err := p.lex.Consume(lexer.IDENT)
			if err != nil {
				return nil, asError(err)
			}
			catchName = nameTok.Literal
			if _, err := p.lex.Consume(lexer.RPAREN); err != nil {
				return nil, asError(err)
			}
		}
		catchBlock, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	}
	var finallyBlock ast.Statement
	if p.peekIs(lexer.FINALLY) {
		p.lex.Consume(lexer.FINALLY)
		finallyBlock, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	}
	return &ast.TryCatch{
		BaseNode: ast.BaseNode{Tok: tok}, Try: tryBlock, Catch: catchBlock,
		CatchName: catchName, Finally: finallyBlock,
	}, nil
}

func (p *Parser) requireTopLevel(what string, pos lexer.Pos) error {
	if p.depth != 0 {
		return p.errorf(ErrTopLevelOnly, pos, "%s must be top level", what)
	}
	return nil
}

func (p *Parser) parseImport() (ast.Statement, error) {
	tok, _ := p.lex.Consume(lexer.IMPORT)
	if err := p.requireTopLevel("imports", tok.Pos); err != nil {
		return nil, err
	}

	if p.peekIs(lexer.STRING) {
		fileTok, _ := p.lex.Consume(lexer.STRING)
		if _, err := p.lex.Consume(lexer.SEMI); err != nil {
			return nil, asError(err)
		}
		return &ast.Import{BaseNode: ast.BaseNode{Tok: tok}, FromFile: fileTok.Literal}, nil
	}

	var defaultName, namespaceName string
	var objects []ast.ImportedObject

	switch {
	case p.lex.PeekOperator("*"):
		p.lex.ConsumeOperator("*")
		if _, err := p.lex.Consume(lexer.AS); err != nil {
			return nil, asError(err)
		}
		nsTok, err := p.lex.Consume(lexer.IDENT)
		if err != nil {
			return nil, asError(err)
		}
		namespaceName = nsTok.Literal
	case p.peekIs(lexer.LBRACE):
		p.lex.Consume(lexer.LBRACE)
		for {
			if p.peekIs(lexer.RBRACE) {
				break
			}
			nameTok, err := p.lex.Consume(lexer.IDENT)
			if err != nil {
				return nil, asError(err)
			}
			alias := nameTok.Literal
			if p.peekIs(lexer.AS) {
				p.lex.Consume(lexer.AS)
				aliasTok, err := p.lex.Consume(lexer.IDENT)
				if err != nil {
					return nil, asError(err)
				}
				alias = aliasTok.Literal
			}
			objects = append(objects, ast.ImportedObject{Name: nameTok.Literal, Alias: alias})
			if p.peekIs(lexer.COMMA) {
				p.lex.Consume(lexer.COMMA)
				continue
			}
			break
		}
		if _, err := p.lex.Consume(lexer.RBRACE); err != nil {
			return nil, asError(err)
		}
	default:
		nameTok, err := p.lex.Consume(lexer.IDENT)
		if err != nil {
			return nil, asError(err)
		}
		defaultName = nameTok.Literal
	}

	if _, err := p.lex.Consume(lexer.FROM); err != nil {
		return nil, asError(err)
	}
	fileTok, err := p.lex.Consume(lexer.STRING)
	if err != nil {
		return nil, asError(err)
	}
	if _, err := p.lex.Consume(lexer.SEMI); err != nil {
		return nil, asError(err)
	}
	return &ast.Import{
		BaseNode: ast.BaseNode{Tok: tok}, DefaultName: defaultName,
		NamespaceName: namespaceName, Objects: objects, FromFile: fileTok.Literal,
	}, nil
}

func (p *Parser) parseExport() (ast.Statement, error) {
	tok, _ := p.lex.Consume(lexer.EXPORT)
	if err := p.requireTopLevel("exports", tok.Pos); err != nil {
		return nil, err
	}

	switch {
	case p.peekIs(lexer.DEFAULT):
		p.lex.Consume(lexer.DEFAULT)
		val, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.lex.Consume(lexer.SEMI); err != nil {
			return nil, asError(err)
		}
		return &ast.Export{BaseNode: ast.BaseNode{Tok: tok}, DefaultValue: val}, nil

	case p.lex.PeekOperator("*"):
		p.lex.ConsumeOperator("*")
		if _, err := p.lex.Consume(lexer.FROM); err != nil {
			return nil, asError(err)
		}
		fileTok, err := p.lex.Consume(lexer.STRING)
		if err != nil {
			return nil, asError(err)
		}
		if _, err := p.lex.Consume(lexer.SEMI); err != nil {
			return nil, asError(err)
		}
		return &ast.Export{BaseNode: ast.BaseNode{Tok: tok}, FromFile: fileTok.Literal, FromAll: true}, nil

	case p.peekIs(lexer.LBRACE):
		p.lex.Consume(lexer.LBRACE)
		var named []ast.ExportedObject
		for {
			if p.peekIs(lexer.RBRACE) {
				break
			}
			nameTok, err := p.lex.Consume(lexer.IDENT, lexer.DEFAULT)
			if err != nil {
				return nil, asError(err)
			}
			alias := nameTok.Literal
			if p.peekIs(lexer.AS) {
				p.lex.Consume(lexer.AS)
				aliasTok, err := p.lex.Consume(lexer.IDENT)
				if err != nil {
					return nil, asError(err)
				}
				alias = aliasTok.Literal
			}
			named = append(named, ast.ExportedObject{Name: nameTok.Literal, Alias: alias})
			if p.peekIs(lexer.COMMA) {
				p.lex.Consume(lexer.COMMA)
				continue
			}
			break
		}
		if _, err := p.lex.Consume(lexer.RBRACE); err != nil {
			return nil, asError(err)
		}
		if _, err := p.lex.Consume(lexer.FROM); err != nil {
			return nil, asError(err)
		}
		fileTok, err := p.lex.Consume(lexer.STRING)
		if err != nil {
			return nil, asError(err)
		}
		if _, err := p.lex.Consume(lexer.SEMI); err != nil {
			return nil, asError(err)
		}
		return &ast.Export{BaseNode: ast.BaseNode{Tok: tok}, FromFile: fileTok.Literal, FromNamed: named}, nil

	case p.peekIs(lexer.CONST) || p.peekIs(lexer.LET):
		vd, err := p.parseVarDecl()
		if err != nil {
			return nil, err
		}
		if _, err := p.lex.Consume(lexer.SEMI); err != nil {
			return nil, asError(err)
		}
		return &ast.Export{BaseNode: ast.BaseNode{Tok: tok}, VarDeclStmt: vd}, nil

	default:
		badTok, _ := p.lex.Peek()
		return nil, p.errorf(ErrUnexpectedToken, tok.Pos, "unexpected token after export: %v", badTok)
	}
}
