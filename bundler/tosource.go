package bundler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/eco-lang/eco/ast"
)

// toSource renders node back to eco source text. It is the generic half of
// spec.md §4.5's `to_source(bundler)` dispatcher; Import and Export are
// handled directly by bundleModule since their emission depends on bundler
// state (resolved canonical names, export aggregation), not just the node.
func toSource(node ast.Node) (string, error) {
	switch n := node.(type) {
	case *ast.Noop:
		return ";", nil
	case *ast.VarDecl:
		return toSourceVarDecl(n)
	case *ast.Block:
		return toSourceBlock(n)
	case *ast.If:
		return toSourceIf(n)
	case *ast.While:
		cond, err := toSource(n.Cond)
		if err != nil {
			return "", err
		}
		body, err := toSource(n.Body)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("while (%s) %s", cond, body), nil
	case *ast.Return:
		if n.Value == nil {
			return "return;", nil
		}
		v, err := toSource(n.Value)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("return %s;", v), nil
	case *ast.Throw:
		v, err := toSource(n.Value)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("throw %s;", v), nil
	case *ast.TryCatch:
		return toSourceTryCatch(n)

	case *ast.Literal:
		return toSourceLiteral(n)
	case *ast.Load:
		return n.Name, nil
	case *ast.Parens:
		inner, err := toSource(n.Inner)
		if err != nil {
			return "", err
		}
		return "(" + inner + ")", nil
	case *ast.Spread:
		v, err := toSource(n.Value)
		if err != nil {
			return "", err
		}
		return "..." + v, nil
	case *ast.Array:
		return toSourceArray(n)
	case *ast.Object:
		return toSourceObject(n)
	case *ast.Function:
		return toSourceFunction(n)
	case *ast.Unary:
		v, err := toSource(n.Expr)
		if err != nil {
			return "", err
		}
		return n.Op + v, nil
	case *ast.IncOrDec:
		v, err := toSource(n.Expr)
		if err != nil {
			return "", err
		}
		if n.IsPrefix {
			return n.Op + v, nil
		}
		return v + n.Op, nil
	case *ast.Binary:
		left, err := toSource(n.Left)
		if err != nil {
			return "", err
		}
		right, err := toSource(n.Right)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %s %s", left, n.Op, right), nil
	case *ast.Assignment:
		target, err := toSource(n.Target)
		if err != nil {
			return "", err
		}
		v, err := toSource(n.Value)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %s %s", target, n.Op, v), nil
	case *ast.Ternary:
		cond, err := toSource(n.Cond)
		if err != nil {
			return "", err
		}
		then, err := toSource(n.Then)
		if err != nil {
			return "", err
		}
		els, err := toSource(n.Else)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s ? %s : %s", cond, then, els), nil
	case *ast.ArrayAccess:
		obj, err := toSource(n.Object)
		if err != nil {
			return "", err
		}
		idx, err := toSource(n.Index)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s[%s]", obj, idx), nil
	case *ast.FieldAccess:
		obj, err := toSource(n.Object)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s.%s", obj, n.Field), nil
	case *ast.FuncCall:
		callee, err := toSource(n.Callee)
		if err != nil {
			return "", err
		}
		args, err := toSourceArgs(n.Args)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s(%s)", callee, args), nil
	case *ast.MethodCall:
		obj, err := toSource(n.Object)
		if err != nil {
			return "", err
		}
		args, err := toSourceArgs(n.Args)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s.%s(%s)", obj, n.FieldName, args), nil
	case *ast.New:
		args, err := toSourceArgs(n.Args)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("new %s(%s)", n.ClassName, args), nil
	case *ast.Typeof:
		v, err := toSource(n.Expr)
		if err != nil {
			return "", err
		}
		return "typeof " + v, nil
	case *ast.HTML:
		return toSourceHTML(n)
	case *ast.HTMLExpr:
		v, err := toSource(n.Expr)
		if err != nil {
			return "", err
		}
		return "{" + v + "}", nil
	case *ast.HTMLText:
		return n.Text, nil
	case *ast.TemplateString:
		return toSourceTemplateString(n)
	case *ast.TemplateStringContent:
		return n.Text, nil
	default:
		return "", fmt.Errorf("bundler: to_source has no rendering for %T", node)
	}
}

func toSourceVariable(v ast.Variable) (string, error) {
	var target string
	switch v.Kind {
	case ast.Identifier:
		target = v.Name
	case ast.DestructureArray:
		parts := make([]string, len(v.Elements))
		for i, el := range v.Elements {
			s, err := toSourceDestructuredValue(el)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		target = "[" + strings.Join(parts, ", ") + "]"
	case ast.DestructureObject:
		parts := make([]string, len(v.Elements))
		for i, el := range v.Elements {
			s, err := toSourceDestructuredValue(el)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		target = "{" + strings.Join(parts, ", ") + "}"
	}
	if v.Default == nil {
		return target, nil
	}
	def, err := toSource(v.Default)
	if err != nil {
		return "", err
	}
	return target + " = " + def, nil
}

func toSourceDestructuredValue(el ast.DestructuredValue) (string, error) {
	if el.IsHole {
		return "", nil
	}
	prefix := ""
	if el.IsRest {
		prefix = "..."
	}
	s := prefix + el.Name
	if el.Default != nil {
		def, err := toSource(el.Default)
		if err != nil {
			return "", err
		}
		s += " = " + def
	}
	return s, nil
}

func toSourceVarDecl(n *ast.VarDecl) (string, error) {
	kw := "let"
	if n.IsConst {
		kw = "const"
	}
	v, err := toSourceVariable(n.Variable)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s;", kw, v), nil
}

func toSourceBlock(n *ast.Block) (string, error) {
	var b strings.Builder
	b.WriteString("{\n")
	for _, stmt := range n.Statements {
		s, err := toSource(stmt)
		if err != nil {
			return "", err
		}
		b.WriteString(s)
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.String(), nil
}

func toSourceIf(n *ast.If) (string, error) {
	cond, err := toSource(n.Cond)
	if err != nil {
		return "", err
	}
	then, err := toSource(n.Then)
	if err != nil {
		return "", err
	}
	if n.Else == nil {
		return fmt.Sprintf("if (%s) %s", cond, then), nil
	}
	els, err := toSource(n.Else)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("if (%s) %s else %s", cond, then, els), nil
}

func toSourceTryCatch(n *ast.TryCatch) (string, error) {
	try, err := toSource(n.Try)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "try %s", try)
	if n.Catch != nil {
		catch, err := toSource(n.Catch)
		if err != nil {
			return "", err
		}
		if n.CatchName != "" {
			fmt.Fprintf(&b, " catch (%s) %s", n.CatchName, catch)
		} else {
			fmt.Fprintf(&b, " catch %s", catch)
		}
	}
	if n.Finally != nil {
		finally, err := toSource(n.Finally)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, " finally %s", finally)
	}
	return b.String(), nil
}

func toSourceLiteral(n *ast.Literal) (string, error) {
	if n.IsNull {
		return "null", nil
	}
	if n.IsUndef {
		return "undefined", nil
	}
	switch v := n.Value.(type) {
	case bool:
		return strconv.FormatBool(v), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case string:
		return "'" + strings.ReplaceAll(v, "'", "\\'") + "'", nil
	default:
		return "undefined", nil
	}
}

func toSourceArray(n *ast.Array) (string, error) {
	parts := make([]string, len(n.Elements))
	for i, el := range n.Elements {
		s, err := toSource(el)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return "[" + strings.Join(parts, ", ") + "]", nil
}

func toSourceObject(n *ast.Object) (string, error) {
	parts := make([]string, len(n.Fields))
	for i, field := range n.Fields {
		switch f := field.(type) {
		case *ast.RegularField:
			if f.Value == nil {
				parts[i] = f.Key
				continue
			}
			v, err := toSource(f.Value)
			if err != nil {
				return "", err
			}
			parts[i] = fmt.Sprintf("%s: %s", f.Key, v)
		case *ast.DynamicField:
			key, err := toSource(f.Key)
			if err != nil {
				return "", err
			}
			v, err := toSource(f.Value)
			if err != nil {
				return "", err
			}
			parts[i] = fmt.Sprintf("[%s]: %s", key, v)
		case *ast.SpreadField:
			v, err := toSource(f.Value)
			if err != nil {
				return "", err
			}
			parts[i] = "..." + v
		}
	}
	return "{" + strings.Join(parts, ", ") + "}", nil
}

func toSourceFunction(n *ast.Function) (string, error) {
	params := make([]string, len(n.Parameters))
	for i, p := range n.Parameters {
		s, err := toSourceVariable(p)
		if err != nil {
			return "", err
		}
		params[i] = s
	}
	body, err := toSource(n.Body)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("(%s) => %s", strings.Join(params, ", "), body), nil
}

func toSourceArgs(args []ast.Expression) (string, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		s, err := toSource(a)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return strings.Join(parts, ", "), nil
}

func toSourceHTML(n *ast.HTML) (string, error) {
	var b strings.Builder
	b.WriteString("<")
	b.WriteString(n.TagName)
	for _, attr := range n.Attributes {
		lit, isLit := attr.Value.(*ast.Literal)
		if isLit && lit.Value == true && !lit.IsNull && !lit.IsUndef {
			fmt.Fprintf(&b, " %s", attr.Name)
			continue
		}
		v, err := toSource(attr.Value)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, " %s={%s}", attr.Name, v)
	}
	if len(n.Children) == 0 {
		b.WriteString("/>")
		return b.String(), nil
	}
	b.WriteString(">")
	for _, child := range n.Children {
		s, err := toSource(child)
		if err != nil {
			return "", err
		}
		b.WriteString(s)
	}
	fmt.Fprintf(&b, "</%s>", n.TagName)
	return b.String(), nil
}

func toSourceTemplateString(n *ast.TemplateString) (string, error) {
	var b strings.Builder
	b.WriteString("`")
	for _, part := range n.Parts {
		if content, ok := part.(*ast.TemplateStringContent); ok {
			b.WriteString(content.Text)
			continue
		}
		v, err := toSource(part)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "${%s}", v)
	}
	b.WriteString("`")
	return b.String(), nil
}
