package parser

import (
	"github.com/eco-lang/eco/ast"
	"github.com/eco-lang/eco/lexer"
)

var assignmentOps = []string{"=", "+=", "-=", "*=", "/="}

// parseAssignment is the lowest (and only right-associative) precedence
// level: `= += -= *= /=`.
func (p *Parser) parseAssignment() (ast.Expression, error) {
	left, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	for _, op := range assignmentOps {
		if p.lex.PeekOperator(op) {
			opTok, _ := p.lex.ConsumeOperator(op)
			right, err := p.parseAssignment() // right-associative
			if err != nil {
				return nil, err
			}
			return &ast.Assignment{BaseNode: ast.BaseNode{Tok: opTok}, Target: left, Op: op, Value: right}, nil
		}
	}
	return left, nil
}

func (p *Parser) parseTernary() (ast.Expression, error) {
	cond, err := p.parseLogical()
	if err != nil {
		return nil, err
	}
	if !p.peekIs(lexer.QUESTION) {
		return cond, nil
	}
	qTok, _ := p.lex.Consume(lexer.QUESTION)
	then, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	if _, err := p.lex.Consume(lexer.COLON); err != nil {
		return nil, asError(err)
	}
	els, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	return &ast.Ternary{BaseNode: ast.BaseNode{Tok: qTok}, Cond: cond, Then: then, Else: els}, nil
}

// parseLogical combines `||` and `&&` at a single precedence level, per
// spec.md §4.2. Non-associative: one match, one sub-call, no loop.
func (p *Parser) parseLogical() (ast.Expression, error) {
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for _, op := range []string{"||", "&&"} {
		if p.lex.PeekOperator(op) {
			opTok, _ := p.lex.ConsumeOperator(op)
			right, err := p.parseRelational()
			if err != nil {
				return nil, err
			}
			return &ast.Binary{BaseNode: ast.BaseNode{Tok: opTok}, Left: left, Op: op, Right: right}, nil
		}
	}
	return left, nil
}

// parseRelational combines equality and relational comparisons at one
// level: `=== == !== != >= <=` (OPERATOR tokens) plus bare `< >`, which
// the lexer produces as SYMBOL kinds (LT/GT) because '<' also opens an
// HTML literal — see lexer/token.go.
func (p *Parser) parseRelational() (ast.Expression, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for _, op := range []string{"===", "==", "!==", "!=", ">=", "<="} {
		if p.lex.PeekOperator(op) {
			opTok, _ := p.lex.ConsumeOperator(op)
			right, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			return &ast.Binary{BaseNode: ast.BaseNode{Tok: opTok}, Left: left, Op: op, Right: right}, nil
		}
	}
	if tok, _ := p.lex.Peek(lexer.LT, lexer.GT); tok != nil {
		opTok, _ := p.lex.Consume(tok.Kind)
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return &ast.Binary{BaseNode: ast.BaseNode{Tok: opTok}, Left: left, Op: string(tok.Kind), Right: right}, nil
	}
	return left, nil
}

func (p *Parser) parseAdditive() (ast.Expression, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for _, op := range []string{"+", "-"} {
		if p.lex.PeekOperator(op) {
			opTok, _ := p.lex.ConsumeOperator(op)
			right, err := p.parseMultiplicative()
			if err != nil {
				return nil, err
			}
			return &ast.Binary{BaseNode: ast.BaseNode{Tok: opTok}, Left: left, Op: op, Right: right}, nil
		}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (ast.Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for _, op := range []string{"*", "/"} {
		if p.lex.PeekOperator(op) {
			opTok, _ := p.lex.ConsumeOperator(op)
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			return &ast.Binary{BaseNode: ast.BaseNode{Tok: opTok}, Left: left, Op: op, Right: right}, nil
		}
	}
	return left, nil
}

func (p *Parser) parseUnary() (ast.Expression, error) {
	switch {
	case p.lex.PeekOperator("!"):
		opTok, _ := p.lex.ConsumeOperator("!")
		expr, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{BaseNode: ast.BaseNode{Tok: opTok}, Op: "!", Expr: expr}, nil
	case p.lex.PeekOperator("-"):
		opTok, _ := p.lex.ConsumeOperator("-")
		expr, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{BaseNode: ast.BaseNode{Tok: opTok}, Op: "-", Expr: expr}, nil
	case p.lex.PeekOperator("++"), p.lex.PeekOperator("--"):
		op := "++"
		if p.lex.PeekOperator("--") {
			op = "--"
		}
		opTok, _ := p.lex.ConsumeOperator(op)
		expr, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.IncOrDec{BaseNode: ast.BaseNode{Tok: opTok}, IsPrefix: true, Op: op, Expr: expr}, nil
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parsePostfix() (ast.Expression, error) {
	expr, err := p.parseAccessChain()
	if err != nil {
		return nil, err
	}
	if p.lex.PeekOperator("++") || p.lex.PeekOperator("--") {
		op := "++"
		if p.lex.PeekOperator("--") {
			op = "--"
		}
		opTok, _ := p.lex.ConsumeOperator(op)
		return &ast.IncOrDec{BaseNode: ast.BaseNode{Tok: opTok}, IsPrefix: false, Op: op, Expr: expr}, nil
	}
	return expr, nil
}

// parseAccessChain iterates `. [ ] ( )` left-associatively — the ONE
// level spec.md §4.2 calls out as looped rather than single-shot.
func (p *Parser) parseAccessChain() (ast.Expression, error) {
	left, err := p.parsePrimaryWithArrowCheck()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.peekIs(lexer.DOT):
			dotTok, _ := p.lex.Consume(lexer.DOT)
			nameTok, err := p.lex.Consume(lexer.IDENT)
			if err != nil {
				return nil, asError(err)
			}
			if p.peekIs(lexer.LPAREN) {
				args, err := p.parseCallArgs()
				if err != nil {
					return nil, err
				}
				left = &ast.MethodCall{BaseNode: ast.BaseNode{Tok: dotTok}, Object: left, FieldName: nameTok.Literal, Args: args}
			} else {
				left = &ast.FieldAccess{BaseNode: ast.BaseNode{Tok: dotTok}, Object: left, Field: nameTok.Literal}
			}
		case p.peekIs(lexer.LBRACKET):
			lb, _ := p.lex.Consume(lexer.LBRACKET)
			index, err := p.parseAssignment()
			if err != nil {
				return nil, err
			}
			if _, err := p.lex.Consume(lexer.RBRACKET); err != nil {
				return nil, asError(err)
			}
			left = &ast.ArrayAccess{BaseNode: ast.BaseNode{Tok: lb}, Object: left, Index: index}
		case p.peekIs(lexer.LPAREN):
			callTok, _ := p.lex.Peek()
			args, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			left = &ast.FuncCall{BaseNode: ast.BaseNode{Tok: *callTok}, Callee: left, Args: args}
		default:
			return left, nil
		}
	}
}

// parseCallArgs parses `(args...)`. Spreads are NOT supported at call
// sites, per spec.md §9 — only plain expressions.
func (p *Parser) parseCallArgs() ([]ast.Expression, error) {
	if _, err := p.lex.Consume(lexer.LPAREN); err != nil {
		return nil, asError(err)
	}
	var args []ast.Expression
	for {
		if p.peekIs(lexer.RPAREN) {
			break
		}
		arg, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.peekIs(lexer.COMMA) {
			p.lex.Consume(lexer.COMMA)
			continue
		}
		break
	}
	if _, err := p.lex.Consume(lexer.RPAREN); err != nil {
		return nil, asError(err)
	}
	return args, nil
}

// parsePrimaryWithArrowCheck implements the backtracking described in
// spec.md §4.2: after parsing a primary, a following `=>` means the
// primary should be discarded and reparsed as an arrow function; if the
// primary dispatch itself fails, the same rewind-and-retry applies.
func (p *Parser) parsePrimaryWithArrowCheck() (ast.Expression, error) {
	start, err := p.lex.GetPosition()
	if err != nil {
		return nil, err
	}
	expr, primaryErr := p.parsePrimary()
	if primaryErr == nil {
		if p.peekIs(lexer.ARROW) {
			p.lex.Revert(start)
			return p.parseArrowFunction()
		}
		return expr, nil
	}
	p.lex.Revert(start)
	if arrowExpr, arrowErr := p.parseArrowFunction(); arrowErr == nil {
		return arrowExpr, nil
	}
	p.lex.Revert(start)
	return nil, primaryErr
}

func (p *Parser) parsePrimary() (ast.Expression, error) {
	tok, err := p.lex.Peek()
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, p.errorf(ErrUnexpectedToken, p.lex.GetLastPosition(), "unexpected end of input")
	}
	switch tok.Kind {
	case lexer.TRUE, lexer.FALSE:
		lt, _ := p.lex.Consume(tok.Kind)
		return &ast.Literal{BaseNode: ast.BaseNode{Tok: lt}, Value: lt.Value}, nil
	case lexer.NULL:
		lt, _ := p.lex.Consume(lexer.NULL)
		return &ast.Literal{BaseNode: ast.BaseNode{Tok: lt}, IsNull: true}, nil
	case lexer.UNDEFINED:
		lt, _ := p.lex.Consume(lexer.UNDEFINED)
		return &ast.Literal{BaseNode: ast.BaseNode{Tok: lt}, IsUndef: true}, nil
	case lexer.NUMBER:
		lt, _ := p.lex.Consume(lexer.NUMBER)
		return &ast.Literal{BaseNode: ast.BaseNode{Tok: lt}, Value: lt.Value}, nil
	case lexer.STRING:
		lt, _ := p.lex.Consume(lexer.STRING)
		return &ast.Literal{BaseNode: ast.BaseNode{Tok: lt}, Value: lt.Value}, nil
	case lexer.LPAREN:
		return p.parseParens()
	case lexer.LBRACKET:
		return p.parseArray()
	case lexer.LBRACE:
		return p.parseObject()
	case lexer.LT:
		return p.parseHTML()
	case lexer.BACKTICK:
		return p.parseTemplateString()
	case lexer.NEW:
		return p.parseNew()
	case lexer.TYPEOF:
		return p.parseTypeof()
	case lexer.IDENT:
		lt, _ := p.lex.Consume(lexer.IDENT)
		return &ast.Load{BaseNode: ast.BaseNode{Tok: lt}, Name: lt.Literal}, nil
	default:
		return nil, p.errorf(ErrUnexpectedToken, tok.Pos, "unexpected token %s %q", tok.Kind, tok.Literal)
	}
}

func (p *Parser) parseParens() (ast.Expression, error) {
	lp, err := p.lex.Consume(lexer.LPAREN)
	if err != nil {
		return nil, asError(err)
	}
	inner, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.lex.Consume(lexer.RPAREN); err != nil {
		return nil, asError(err)
	}
	return &ast.Parens{BaseNode: ast.BaseNode{Tok: lp}, Inner: inner}, nil
}

func (p *Parser) parseArray() (ast.Expression, error) {
	lb, err := p.lex.Consume(lexer.LBRACKET)
	if err != nil {
		return nil, asError(err)
	}
	var elems []ast.Expression
	for {
		if p.peekIs(lexer.RBRACKET) {
			break
		}
		if p.peekIs(lexer.SPREAD) {
			spTok, _ := p.lex.Consume(lexer.SPREAD)
			v, err := p.parseAssignment()
			if err != nil {
				return nil, err
			}
			elems = append(elems, &ast.Spread{BaseNode: ast.BaseNode{Tok: spTok}, Value: v})
		} else {
			v, err := p.parseAssignment()
			if err != nil {
				return nil, err
			}
			elems = append(elems, v)
		}
		if p.peekIs(lexer.COMMA) {
			p.lex.Consume(lexer.COMMA)
			continue
		}
		break
	}
	if _, err := p.lex.Consume(lexer.RBRACKET); err != nil {
		return nil, asError(err)
	}
	return &ast.Array{BaseNode: ast.BaseNode{Tok: lb}, Elements: elems}, nil
}

func (p *Parser) parseObject() (ast.Expression, error) {
	lb, err := p.lex.Consume(lexer.LBRACE)
	if err != nil {
		return nil, asError(err)
	}
	var fields []ast.ObjectField
	for {
		if p.peekIs(lexer.RBRACE) {
			break
		}
		switch {
		case p.peekIs(lexer.SPREAD):
			spTok, _ := p.lex.Consume(lexer.SPREAD)
			v, err := p.parseAssignment()
			if err != nil {
				return nil, err
			}
			fields = append(fields, &ast.SpreadField{BaseNode: ast.BaseNode{Tok: spTok}, Value: v})
		case p.peekIs(lexer.LBRACKET):
			lk, _ := p.lex.Consume(lexer.LBRACKET)
			keyExpr, err := p.parseAssignment()
			if err != nil {
				return nil, err
			}
			if _, err := p.lex.Consume(lexer.RBRACKET); err != nil {
				return nil, asError(err)
			}
			if _, err := p.lex.Consume(lexer.COLON); err != nil {
				return nil, asError(err)
			}
			val, err := p.parseAssignment()
			if err != nil {
				return nil, err
			}
			fields = append(fields, &ast.DynamicField{BaseNode: ast.BaseNode{Tok: lk}, Key: keyExpr, Value: val})
		default:
			keyTok, err := p.lex.Consume(lexer.IDENT, lexer.STRING)
			if err != nil {
				return nil, asError(err)
			}
			if p.peekIs(lexer.COLON) {
				p.lex.Consume(lexer.COLON)
				val, err := p.parseAssignment()
				if err != nil {
					return nil, err
				}
				fields = append(fields, &ast.RegularField{BaseNode: ast.BaseNode{Tok: keyTok}, Key: keyTok.Literal, Value: val})
			} else {
				fields = append(fields, &ast.RegularField{BaseNode: ast.BaseNode{Tok: keyTok}, Key: keyTok.Literal})
			}
		}
		if p.peekIs(lexer.COMMA) {
			p.lex.Consume(lexer.COMMA)
			continue
		}
		break
	}
	if _, err := p.lex.Consume(lexer.RBRACE); err != nil {
		return nil, asError(err)
	}
	return &ast.Object{BaseNode: ast.BaseNode{Tok: lb}, Fields: fields}, nil
}

func (p *Parser) parseNew() (ast.Expression, error) {
	tok, _ := p.lex.Consume(lexer.NEW)
	nameTok, err := p.lex.Consume(lexer.IDENT)
	if err != nil {
		return nil, asError(err)
	}
	args, err := p.parseCallArgs()
	if err != nil {
		return nil, err
	}
	return &ast.New{BaseNode: ast.BaseNode{Tok: tok}, ClassName: nameTok.Literal, Args: args}, nil
}

func (p *Parser) parseTypeof() (ast.Expression, error) {
	tok, _ := p.lex.Consume(lexer.TYPEOF)
	expr, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &ast.Typeof{BaseNode: ast.BaseNode{Tok: tok}, Expr: expr}, nil
}

// parseArrowFunction parses `ident => body` or `(params) => body`.
func (p *Parser) parseArrowFunction() (ast.Expression, error) {
	start, err := p.lex.Peek()
	if err != nil {
		return nil, err
	}
	if start == nil {
		return nil, p.errorf(ErrUnexpectedToken, p.lex.GetLastPosition(), "unexpected end of input")
	}
	var params []ast.Variable
	var fnTok lexer.Token
	if start.Kind == lexer.IDENT {
		nameTok, _ := p.lex.Consume(lexer.IDENT)
		fnTok = nameTok
		params = []ast.Variable{{Kind: ast.Identifier, Name: nameTok.Literal}}
	} else if start.Kind == lexer.LPAREN {
		lp, _ := p.lex.Consume(lexer.LPAREN)
		fnTok = lp
		for {
			if p.peekIs(lexer.RPAREN) {
				break
			}
			v, err := p.parseVariable()
			if err != nil {
				return nil, err
			}
			params = append(params, v)
			if p.peekIs(lexer.COMMA) {
				p.lex.Consume(lexer.COMMA)
				continue
			}
			break
		}
		if _, err := p.lex.Consume(lexer.RPAREN); err != nil {
			return nil, asError(err)
		}
	} else {
		return nil, p.errorf(ErrUnexpectedToken, start.Pos, "expected arrow-function parameter list")
	}

	if _, err := p.lex.Consume(lexer.ARROW); err != nil {
		return nil, asError(err)
	}

	var body ast.Statement
	if p.peekIs(lexer.LBRACE) {
		body, err = p.parseBlock()
	} else {
		body, err = p.parseAssignment()
	}
	if err != nil {
		return nil, err
	}
	return &ast.Function{BaseNode: ast.BaseNode{Tok: fnTok}, Parameters: params, Body: body}, nil
}
