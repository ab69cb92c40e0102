package parser

import (
	"github.com/eco-lang/eco/ast"
	"github.com/eco-lang/eco/lexer"
)

// parseExpression is the internal entry point statements use for their
// condition/value sub-expressions; it is exported as ParseExpression for
// on-demand re-parses (string interpolation, template/HTML sub-parses).
func (p *Parser) parseExpression() (ast.Expression, error) {
	return p.parseAssignment()
}

// parseTemplateString parses `` `...` ``: alternating literal runs
// (scanned via GetUntil, never interpreted for escapes) and `${ expr }`
// interpolations.
func (p *Parser) parseTemplateString() (ast.Expression, error) {
	openTok, err := p.lex.Consume(lexer.BACKTICK)
	if err != nil {
		return nil, asError(err)
	}
	var parts []ast.Expression
	for {
		contentTok, err := p.lex.GetUntil([]string{"`", "${"})
		if err != nil {
			return nil, asError(err)
		}
		if contentTok.Literal != "" {
			parts = append(parts, &ast.TemplateStringContent{BaseNode: ast.BaseNode{Tok: contentTok}, Text: contentTok.Literal})
		}
		next, err := p.lex.Peek()
		if err != nil {
			return nil, err
		}
		if next == nil {
			return nil, p.errorf(ErrUnexpectedEnd, p.lex.GetLastPosition(), "unterminated template string")
		}
		if next.Kind == lexer.BACKTICK {
			p.lex.Consume(lexer.BACKTICK)
			break
		}
		// next.Kind == DOLLARLBRC
		p.lex.Consume(lexer.DOLLARLBRC)
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.lex.Consume(lexer.RBRACE); err != nil {
			return nil, asError(err)
		}
		parts = append(parts, expr)
	}
	return &ast.TemplateString{BaseNode: ast.BaseNode{Tok: openTok}, Parts: parts}, nil
}

// parseHTML parses `<tag attrs>children</tag>`, a self-closing
// `<tag attrs/>`, or a tagless fragment `<>...</>`.
func (p *Parser) parseHTML() (ast.Expression, error) {
	ltTok, err := p.lex.Consume(lexer.LT)
	if err != nil {
		return nil, asError(err)
	}
	tagName := ""
	if tok, _ := p.lex.Peek(lexer.IDENT); tok != nil {
		nameTok, _ := p.lex.Consume(lexer.IDENT)
		tagName = nameTok.Literal
	}

	attrs, err := p.parseHTMLAttributes()
	if err != nil {
		return nil, err
	}

	if p.peekIs(lexer.SELFCLOSE) {
		p.lex.Consume(lexer.SELFCLOSE)
		return &ast.HTML{BaseNode: ast.BaseNode{Tok: ltTok}, TagName: tagName, Attributes: attrs}, nil
	}

	if _, err := p.lex.Consume(lexer.GT); err != nil {
		return nil, asError(err)
	}

	children, err := p.parseHTMLChildren()
	if err != nil {
		return nil, err
	}

	if _, err := p.lex.Consume(lexer.CLOSETAG); err != nil {
		return nil, asError(err)
	}
	if tagName != "" {
		closeTok, err := p.lex.Consume(lexer.IDENT)
		if err != nil {
			return nil, asError(err)
		}
		if closeTok.Literal != tagName {
			return nil, p.errorf(ErrUnexpectedToken, closeTok.Pos, "closing tag %q does not match opening tag %q", closeTok.Literal, tagName)
		}
	}
	if _, err := p.lex.Consume(lexer.GT); err != nil {
		return nil, asError(err)
	}

	return &ast.HTML{BaseNode: ast.BaseNode{Tok: ltTok}, TagName: tagName, Attributes: attrs, Children: children}, nil
}

func (p *Parser) parseHTMLAttributes() ([]ast.HTMLAttribute, error) {
	var attrs []ast.HTMLAttribute
	for {
		tok, err := p.lex.Peek()
		if err != nil {
			return nil, err
		}
		if tok == nil || tok.Kind != lexer.IDENT {
			break
		}
		nameTok, _ := p.lex.Consume(lexer.IDENT)
		var value ast.Expression
		if p.lex.PeekOperator("=") {
			p.lex.ConsumeOperator("=")
			valTok, err := p.lex.Peek()
			if err != nil {
				return nil, err
			}
			if valTok != nil && valTok.Kind == lexer.STRING {
				strTok, _ := p.lex.Consume(lexer.STRING)
				value = &ast.Literal{BaseNode: ast.BaseNode{Tok: strTok}, Value: strTok.Literal}
			} else if valTok != nil && valTok.Kind == lexer.LBRACE {
				p.lex.Consume(lexer.LBRACE)
				expr, err := p.parseExpression()
				if err != nil {
					return nil, err
				}
				if _, err := p.lex.Consume(lexer.RBRACE); err != nil {
					return nil, asError(err)
				}
				value = expr
			} else {
				return nil, p.errorf(ErrUnexpectedToken, p.lex.GetLastPosition(), "expected attribute value")
			}
		} else {
			value = &ast.Literal{BaseNode: ast.BaseNode{Tok: nameTok}, Value: true}
		}
		attrs = append(attrs, ast.HTMLAttribute{Name: nameTok.Literal, Value: value})
	}
	return attrs, nil
}

// parseHTMLChildren scans literal text runs via GetUntil, stopping at a
// closing tag, an opening tag, or a braced expression child. The '{'
// terminator is a necessary addition beyond the literal two-terminator
// example in spec.md §4.2: without it, text scanning would swallow a
// following `{expr}` child as literal text.
func (p *Parser) parseHTMLChildren() ([]ast.Expression, error) {
	var children []ast.Expression
	for {
		textTok, err := p.lex.GetUntil([]string{"<", "</", "{"})
		if err != nil {
			return nil, asError(err)
		}
		if textTok.Literal != "" {
			children = append(children, &ast.HTMLText{BaseNode: ast.BaseNode{Tok: textTok}, Text: textTok.Literal})
		}
		tok, err := p.lex.Peek()
		if err != nil {
			return nil, err
		}
		if tok == nil {
			return nil, p.errorf(ErrUnexpectedEnd, p.lex.GetLastPosition(), "unterminated HTML element")
		}
		switch tok.Kind {
		case lexer.CLOSETAG:
			return children, nil
		case lexer.LT:
			child, err := p.parseHTML()
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		case lexer.LBRACE:
			braceTok, _ := p.lex.Consume(lexer.LBRACE)
			expr, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.lex.Consume(lexer.RBRACE); err != nil {
				return nil, asError(err)
			}
			children = append(children, &ast.HTMLExpr{BaseNode: ast.BaseNode{Tok: braceTok}, Expr: expr})
		default:
			return nil, p.errorf(ErrUnexpectedToken, tok.Pos, "unexpected token %s inside HTML children", tok.Kind)
		}
	}
}
