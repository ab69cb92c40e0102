package parser

import (
	"testing"

	"github.com/eco-lang/eco/ast"
	"github.com/eco-lang/eco/lexer"
)

func parseProgram(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := New(lexer.New(src))
	prog, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return prog
}

func TestParseVarDecl(t *testing.T) {
	prog := parseProgram(t, `const x = 1;`)
	if len(prog.Statements) != 1 {
		t.Fatalf("want 1 statement, got %d", len(prog.Statements))
	}
	vd, ok := prog.Statements[0].(*ast.VarDecl)
	if !ok {
		t.Fatalf("want *ast.VarDecl, got %T", prog.Statements[0])
	}
	if !vd.IsConst || vd.Variable.Name != "x" {
		t.Fatalf("unexpected var decl: %+v", vd)
	}
	lit, ok := vd.Variable.Default.(*ast.Literal)
	if !ok || lit.Value != float64(1) {
		t.Fatalf("unexpected default: %+v", vd.Variable.Default)
	}
}

func TestParseNonAssociativeBinary(t *testing.T) {
	// a + b + c parses as Binary{a, "+", b} per spec.md §4.2 & §9 — the
	// trailing `+ c` is left unconsumed at this sub-call and surfaces as
	// a syntax error at statement level (a bare `+ c;` is not valid).
	p := New(lexer.New(`a + b`))
	expr, err := p.ParseExpression()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bin, ok := expr.(*ast.Binary)
	if !ok {
		t.Fatalf("want *ast.Binary, got %T", expr)
	}
	if bin.Op != "+" {
		t.Fatalf("want op +, got %q", bin.Op)
	}
	if _, ok := bin.Left.(*ast.Load); !ok {
		t.Fatalf("want Load on left, got %T", bin.Left)
	}
	if _, ok := bin.Right.(*ast.Load); !ok {
		t.Fatalf("want Load on right, got %T", bin.Right)
	}
}

func TestParseAccessChainIsLeftAssociative(t *testing.T) {
	// Unlike every other level, the access/call chain DOES loop.
	p := New(lexer.New(`a.b.c(1)[2]`))
	expr, err := p.ParseExpression()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	access, ok := expr.(*ast.ArrayAccess)
	if !ok {
		t.Fatalf("want *ast.ArrayAccess, got %T", expr)
	}
	call, ok := access.Object.(*ast.MethodCall)
	if !ok {
		t.Fatalf("want *ast.MethodCall, got %T", access.Object)
	}
	if call.FieldName != "c" {
		t.Fatalf("want field c, got %q", call.FieldName)
	}
	field, ok := call.Object.(*ast.FieldAccess)
	if !ok || field.Field != "b" {
		t.Fatalf("want FieldAccess b, got %+v", call.Object)
	}
}

func TestParseRelationalAnglesAreSymbols(t *testing.T) {
	p := New(lexer.New(`a < b`))
	expr, err := p.ParseExpression()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bin, ok := expr.(*ast.Binary)
	if !ok || bin.Op != string(lexer.LT) {
		t.Fatalf("want Binary{Op: %q}, got %+v", lexer.LT, expr)
	}
}

func TestParseArrowFunctionBareIdent(t *testing.T) {
	p := New(lexer.New(`x => x + 1`))
	expr, err := p.ParseExpression()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fn, ok := expr.(*ast.Function)
	if !ok {
		t.Fatalf("want *ast.Function, got %T", expr)
	}
	if len(fn.Parameters) != 1 || fn.Parameters[0].Name != "x" {
		t.Fatalf("unexpected params: %+v", fn.Parameters)
	}
	if _, ok := fn.Body.(*ast.Binary); !ok {
		t.Fatalf("want expression body, got %T", fn.Body)
	}
}

func TestParseArrowFunctionParenParams(t *testing.T) {
	p := New(lexer.New(`(a, b = 2) => { return a + b; }`))
	expr, err := p.ParseExpression()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fn, ok := expr.(*ast.Function)
	if !ok {
		t.Fatalf("want *ast.Function, got %T", expr)
	}
	if len(fn.Parameters) != 2 {
		t.Fatalf("want 2 params, got %d", len(fn.Parameters))
	}
	if fn.Parameters[1].Default == nil {
		t.Fatalf("want default on second param")
	}
	if _, ok := fn.Body.(*ast.Block); !ok {
		t.Fatalf("want block body, got %T", fn.Body)
	}
}

func TestParseParensDisambiguatesFromArrow(t *testing.T) {
	// (a + b) is a parenthesized expression, not an arrow-function param
	// list — it must backtrack correctly.
	p := New(lexer.New(`(a + b)`))
	expr, err := p.ParseExpression()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	parens, ok := expr.(*ast.Parens)
	if !ok {
		t.Fatalf("want *ast.Parens, got %T", expr)
	}
	if _, ok := parens.Inner.(*ast.Binary); !ok {
		t.Fatalf("want Binary inner, got %T", parens.Inner)
	}
}

func TestParseArrayAndObjectLiterals(t *testing.T) {
	p := New(lexer.New(`[1, ...rest, 2]`))
	arr, err := p.ParseExpression()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a, ok := arr.(*ast.Array)
	if !ok || len(a.Elements) != 3 {
		t.Fatalf("want 3-element array, got %+v", arr)
	}
	if _, ok := a.Elements[1].(*ast.Spread); !ok {
		t.Fatalf("want spread element, got %T", a.Elements[1])
	}

	p2 := New(lexer.New(`{ a, b: 2, [c]: 3, ...d }`))
	obj, err := p2.ParseExpression()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	o, ok := obj.(*ast.Object)
	if !ok || len(o.Fields) != 4 {
		t.Fatalf("want 4-field object, got %+v", obj)
	}
	if _, ok := o.Fields[2].(*ast.DynamicField); !ok {
		t.Fatalf("want dynamic field, got %T", o.Fields[2])
	}
	if _, ok := o.Fields[3].(*ast.SpreadField); !ok {
		t.Fatalf("want spread field, got %T", o.Fields[3])
	}
}

func TestParseDestructureArrayWithHoleAndRest(t *testing.T) {
	prog := parseProgram(t, `const [a, , ...rest] = xs;`)
	vd := prog.Statements[0].(*ast.VarDecl)
	if vd.Variable.Kind != ast.DestructureArray {
		t.Fatalf("want DestructureArray, got %v", vd.Variable.Kind)
	}
	elems := vd.Variable.Elements
	if len(elems) != 3 {
		t.Fatalf("want 3 elements, got %d", len(elems))
	}
	if !elems[1].IsHole {
		t.Fatalf("want hole at index 1, got %+v", elems[1])
	}
	if !elems[2].IsRest {
		t.Fatalf("want rest at index 2, got %+v", elems[2])
	}
}

func TestParseDestructureRestMustBeLast(t *testing.T) {
	p := New(lexer.New(`const [...rest, a] = xs;`))
	_, err := p.ParseProgram()
	if err == nil {
		t.Fatalf("want error for rest not last")
	}
	perr, ok := err.(*Error)
	if !ok || perr.Kind != ErrDestructureRest {
		t.Fatalf("want ErrDestructureRest, got %v", err)
	}
}

func TestParseImportForms(t *testing.T) {
	cases := []string{
		`import './side-effect.eco';`,
		`import Default from './a.eco';`,
		`import { a, b as c } from './a.eco';`,
		`import * as ns from './a.eco';`,
	}
	for _, src := range cases {
		prog := parseProgram(t, src)
		if _, ok := prog.Statements[0].(*ast.Import); !ok {
			t.Fatalf("%q: want *ast.Import, got %T", src, prog.Statements[0])
		}
	}
}

func TestParseExportForms(t *testing.T) {
	cases := []string{
		`export default 1;`,
		`export const x = 1;`,
		`export { a, b as c } from './a.eco';`,
		`export * from './a.eco';`,
	}
	for _, src := range cases {
		prog := parseProgram(t, src)
		if _, ok := prog.Statements[0].(*ast.Export); !ok {
			t.Fatalf("%q: want *ast.Export, got %T", src, prog.Statements[0])
		}
	}
}

func TestParseImportExportRejectedInsideBlock(t *testing.T) {
	cases := []string{
		`if (true) { import './a.eco'; }`,
		`if (true) { export default 1; }`,
	}
	for _, src := range cases {
		p := New(lexer.New(src))
		_, err := p.ParseProgram()
		if err == nil {
			t.Fatalf("%q: want top-level-only error", src)
		}
		perr, ok := err.(*Error)
		if !ok || perr.Kind != ErrTopLevelOnly {
			t.Fatalf("%q: want ErrTopLevelOnly, got %v", src, err)
		}
	}
}

func TestParseIfWhileTryCatchFinally(t *testing.T) {
	src := `
try {
  while (x < 10) {
    if (x == 5) { throw "oops"; } else { x = x + 1; }
  }
} catch (e) {
  log(e);
} finally {
  cleanup();
}`
	prog := parseProgram(t, src)
	tc, ok := prog.Statements[0].(*ast.TryCatch)
	if !ok {
		t.Fatalf("want *ast.TryCatch, got %T", prog.Statements[0])
	}
	if tc.CatchName != "e" {
		t.Fatalf("want catch name e, got %q", tc.CatchName)
	}
	if tc.Finally == nil {
		t.Fatalf("want finally block")
	}
}

func TestParseTemplateString(t *testing.T) {
	p := New(lexer.New("`hello ${name}!`"))
	expr, err := p.ParseExpression()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ts, ok := expr.(*ast.TemplateString)
	if !ok {
		t.Fatalf("want *ast.TemplateString, got %T", expr)
	}
	if len(ts.Parts) != 3 {
		t.Fatalf("want 3 parts, got %d: %+v", len(ts.Parts), ts.Parts)
	}
	if _, ok := ts.Parts[1].(*ast.Load); !ok {
		t.Fatalf("want Load interpolation, got %T", ts.Parts[1])
	}
}

func TestParseHTMLElementWithBracedChild(t *testing.T) {
	p := New(lexer.New(`<div id="x" active>hello {name}</div>`))
	expr, err := p.ParseExpression()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	el, ok := expr.(*ast.HTML)
	if !ok {
		t.Fatalf("want *ast.HTML, got %T", expr)
	}
	if el.TagName != "div" {
		t.Fatalf("want tag div, got %q", el.TagName)
	}
	if len(el.Attributes) != 2 {
		t.Fatalf("want 2 attributes, got %d", len(el.Attributes))
	}
	if el.Attributes[1].Name != "active" {
		t.Fatalf("want bare attribute active, got %+v", el.Attributes[1])
	}
	if len(el.Children) != 2 {
		t.Fatalf("want 2 children, got %d: %+v", len(el.Children), el.Children)
	}
	if _, ok := el.Children[1].(*ast.HTMLExpr); !ok {
		t.Fatalf("want HTMLExpr child, got %T", el.Children[1])
	}
}

func TestParseHTMLSelfClosingAndFragment(t *testing.T) {
	p := New(lexer.New(`<br/>`))
	expr, err := p.ParseExpression()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if el := expr.(*ast.HTML); el.TagName != "br" || len(el.Children) != 0 {
		t.Fatalf("want empty self-closing br, got %+v", el)
	}

	p2 := New(lexer.New(`<>text</>`))
	expr2, err := p2.ParseExpression()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	frag := expr2.(*ast.HTML)
	if frag.TagName != "" {
		t.Fatalf("want fragment (empty tag name), got %q", frag.TagName)
	}
}

func TestParseMismatchedClosingTagFails(t *testing.T) {
	p := New(lexer.New(`<div>x</span>`))
	_, err := p.ParseExpression()
	if err == nil {
		t.Fatalf("want error for mismatched closing tag")
	}
}

func TestParseTernaryAndTypeofAndNew(t *testing.T) {
	prog := parseProgram(t, `x = typeof y === "number" ? new Foo(1, 2) : null;`)
	assign := prog.Statements[0].(*ast.Assignment)
	tern, ok := assign.Value.(*ast.Ternary)
	if !ok {
		t.Fatalf("want *ast.Ternary, got %T", assign.Value)
	}
	cond := tern.Cond.(*ast.Binary)
	if _, ok := cond.Left.(*ast.Typeof); !ok {
		t.Fatalf("want Typeof on left of ===, got %T", cond.Left)
	}
	if _, ok := tern.Then.(*ast.New); !ok {
		t.Fatalf("want New in then-branch, got %T", tern.Then)
	}
}

func TestParseIncDecPrefixAndPostfix(t *testing.T) {
	p := New(lexer.New(`++x`))
	expr, err := p.ParseExpression()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	inc, ok := expr.(*ast.IncOrDec)
	if !ok || !inc.IsPrefix {
		t.Fatalf("want prefix IncOrDec, got %+v", expr)
	}

	p2 := New(lexer.New(`x--`))
	expr2, err := p2.ParseExpression()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dec, ok := expr2.(*ast.IncOrDec)
	if !ok || dec.IsPrefix || dec.Op != "--" {
		t.Fatalf("want postfix -- IncOrDec, got %+v", expr2)
	}
}

func TestParseUnrecognisedTokenSurfacesParserError(t *testing.T) {
	p := New(lexer.New(`const x = @;`))
	_, err := p.ParseProgram()
	if err == nil {
		t.Fatalf("want error for '@'")
	}
	if _, ok := err.(*Error); !ok {
		t.Fatalf("want *parser.Error, got %T (%v)", err, err)
	}
}
