package runtime

import (
	"strings"

	"github.com/eco-lang/eco/ast"
	"github.com/eco-lang/eco/lexer"
	"github.com/eco-lang/eco/parser"
)

// Run evaluates every top-level statement of prog in order and returns
// the last statement's value (spec.md §8 scenario 1-6 shape: "... return
// x;" as the final statement). Import/Export nodes are no-ops here; they
// exist for the bundler (spec.md §4.3).
func Run(prog *ast.Program, rt *Runtime) (Value, error) {
	var last Value = Undefined{}
	for _, stmt := range prog.Statements {
		v, err := Eval(stmt, rt)
		if err != nil {
			if sig, ok := err.(*returnSignal); ok {
				return sig.value, nil
			}
			return nil, err
		}
		last = v
	}
	return last, nil
}

// Eval is the single type-switch dispatcher implementing every AST
// node's evaluate() semantics from spec.md §4.3. ast stays pure data;
// all behavior lives here, the way the teacher keeps evaluation logic
// out of its ast package.
func Eval(node ast.Node, rt *Runtime) (Value, error) {
	switch n := node.(type) {
	case *ast.Noop:
		return Undefined{}, nil
	case *ast.Literal:
		return evalLiteral(n, rt)
	case *ast.Load:
		return rt.GetLocal(n.Name), nil
	case *ast.Parens:
		return Eval(n.Inner, rt)
	case *ast.Spread:
		return Eval(n.Value, rt)
	case *ast.Array:
		return evalArray(n, rt)
	case *ast.Object:
		return evalObject(n, rt)
	case *ast.Function:
		return evalFunction(n, rt), nil
	case *ast.Unary:
		return evalUnary(n, rt)
	case *ast.IncOrDec:
		return evalIncOrDec(n, rt)
	case *ast.Binary:
		return evalBinary(n, rt)
	case *ast.Assignment:
		return evalAssignment(n, rt)
	case *ast.Ternary:
		cond, err := Eval(n.Cond, rt)
		if err != nil {
			return nil, err
		}
		if truthy(cond) {
			return Eval(n.Then, rt)
		}
		return Eval(n.Else, rt)
	case *ast.ArrayAccess:
		return evalArrayAccess(n, rt)
	case *ast.FieldAccess:
		return evalFieldAccess(n, rt)
	case *ast.FuncCall:
		return evalFuncCall(n, rt)
	case *ast.MethodCall:
		return evalMethodCall(n, rt)
	case *ast.New:
		return evalNew(n, rt)
	case *ast.Typeof:
		v, err := Eval(n.Expr, rt)
		if err != nil {
			return nil, err
		}
		return String(TypeOf(v)), nil
	case *ast.HTML:
		return evalHTML(n, rt)
	case *ast.HTMLExpr:
		return Eval(n.Expr, rt)
	case *ast.HTMLText:
		return String(n.Text), nil
	case *ast.TemplateString:
		return evalTemplateString(n, rt)
	case *ast.TemplateStringContent:
		return String(n.Text), nil
	case *ast.If:
		return evalIf(n, rt)
	case *ast.While:
		return evalWhile(n, rt)
	case *ast.Block:
		return evalBlock(n, rt)
	case *ast.Return:
		var v Value = Undefined{}
		if n.Value != nil {
			var err error
			v, err = Eval(n.Value, rt)
			if err != nil {
				return nil, err
			}
		}
		return nil, &returnSignal{value: v}
	case *ast.Throw:
		v, err := Eval(n.Value, rt)
		if err != nil {
			return nil, err
		}
		return nil, &ThrowSignal{Value: v}
	case *ast.TryCatch:
		return evalTryCatch(n, rt)
	case *ast.VarDecl:
		return evalVarDecl(n, rt)
	case *ast.Import, *ast.Export:
		return Undefined{}, nil
	default:
		return nil, newError("eval: unhandled node type %T", node)
	}
}

// TypeOf maps a runtime Value to its user-facing typeof string, per
// SPEC_FULL.md's pinned mapping table.
func TypeOf(v Value) string {
	switch v.(type) {
	case Undefined:
		return "undefined"
	case Null:
		return "object"
	case Bool:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case *Array, *Object:
		return "object"
	case *Closure:
		return "function"
	case *HtmlElement:
		return "object"
	default:
		// host_value, per SPEC_FULL.md's pinned typeof table: only a
		// *Closure reports "function".
		return "object"
	}
}

func truthy(v Value) bool {
	switch t := v.(type) {
	case Undefined, Null:
		return false
	case Bool:
		return bool(t)
	case Number:
		return t != 0
	case String:
		return t != ""
	default:
		return true
	}
}

func evalLiteral(n *ast.Literal, rt *Runtime) (Value, error) {
	if n.IsNull {
		return Null{}, nil
	}
	if n.IsUndef {
		return Undefined{}, nil
	}
	switch v := n.Value.(type) {
	case bool:
		return Bool(v), nil
	case float64:
		return Number(v), nil
	case string:
		if strings.Contains(v, "#{") {
			return interpolate(v, rt)
		}
		return String(v), nil
	default:
		return Undefined{}, nil
	}
}

// interpolate replaces every non-nesting `#{ expr }` run in s with the
// string form of its evaluated sub-expression, re-parsed on demand via
// the parser's expression entry point, per spec.md §4.3.
func interpolate(s string, rt *Runtime) (Value, error) {
	var out strings.Builder
	rest := s
	for {
		start := strings.Index(rest, "#{")
		if start == -1 {
			out.WriteString(rest)
			break
		}
		end := strings.Index(rest[start:], "}")
		if end == -1 {
			out.WriteString(rest)
			break
		}
		out.WriteString(rest[:start])
		exprSrc := rest[start+2 : start+end]
		p := parser.New(lexer.New(exprSrc))
		expr, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		v, err := Eval(expr, rt)
		if err != nil {
			return nil, err
		}
		out.WriteString(v.String())
		rest = rest[start+end+1:]
	}
	return String(out.String()), nil
}

func evalArray(n *ast.Array, rt *Runtime) (Value, error) {
	arr := &Array{}
	for _, elExpr := range n.Elements {
		if spread, ok := elExpr.(*ast.Spread); ok {
			v, err := Eval(spread.Value, rt)
			if err != nil {
				return nil, err
			}
			if inner, ok := v.(*Array); ok {
				arr.Elements = append(arr.Elements, inner.Elements...)
			}
			continue
		}
		v, err := Eval(elExpr, rt)
		if err != nil {
			return nil, err
		}
		arr.Elements = append(arr.Elements, v)
	}
	return arr, nil
}

func evalObject(n *ast.Object, rt *Runtime) (Value, error) {
	obj := NewObject()
	for _, field := range n.Fields {
		switch f := field.(type) {
		case *ast.RegularField:
			var v Value
			var err error
			if f.Value != nil {
				v, err = Eval(f.Value, rt)
			} else {
				v = rt.GetLocal(f.Key)
			}
			if err != nil {
				return nil, err
			}
			obj.Set(f.Key, v)
		case *ast.DynamicField:
			key, err := Eval(f.Key, rt)
			if err != nil {
				return nil, err
			}
			v, err := Eval(f.Value, rt)
			if err != nil {
				return nil, err
			}
			obj.Set(key.String(), v)
		case *ast.SpreadField:
			v, err := Eval(f.Value, rt)
			if err != nil {
				return nil, err
			}
			if src, ok := v.(*Object); ok {
				for _, k := range src.Keys() {
					obj.Set(k, src.Get(k))
				}
			}
		}
	}
	return obj, nil
}

func evalFunction(n *ast.Function, rt *Runtime) Value {
	return &Closure{
		Name:     n.Name,
		Params:   n.Parameters,
		Body:     n.Body,
		Captured: rt.GetFullScope(),
	}
}

func evalUnary(n *ast.Unary, rt *Runtime) (Value, error) {
	v, err := Eval(n.Expr, rt)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case "!":
		return Bool(!truthy(v)), nil
	case "-":
		num, ok := v.(Number)
		if !ok {
			return nil, newError("unary '-' requires a number")
		}
		return -num, nil
	}
	return nil, newError("unknown unary operator %q", n.Op)
}

func evalIncOrDec(n *ast.IncOrDec, rt *Runtime) (Value, error) {
	old, err := Eval(n.Expr, rt)
	if err != nil {
		return nil, err
	}
	oldNum, ok := old.(Number)
	if !ok {
		return nil, newError("illegal assignment: %s target is not a number", n.Op)
	}
	var newVal Number
	if n.Op == "++" {
		newVal = oldNum + 1
	} else {
		newVal = oldNum - 1
	}
	if err := assignTo(n.Expr, newVal, rt); err != nil {
		return nil, err
	}
	if n.IsPrefix {
		return newVal, nil
	}
	return oldNum, nil
}

func evalBinary(n *ast.Binary, rt *Runtime) (Value, error) {
	left, err := Eval(n.Left, rt)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case "&&":
		if !truthy(left) {
			return left, nil
		}
		return Eval(n.Right, rt)
	case "||":
		if truthy(left) {
			return left, nil
		}
		return Eval(n.Right, rt)
	}
	right, err := Eval(n.Right, rt)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case "===":
		return Bool(strictEquals(left, right)), nil
	case "!==":
		return Bool(!strictEquals(left, right)), nil
	case "==":
		return Bool(looseEquals(left, right)), nil
	case "!=":
		return Bool(!looseEquals(left, right)), nil
	case string(lexer.LT):
		return compareNumbers(left, right, func(a, b float64) bool { return a < b })
	case string(lexer.GT):
		return compareNumbers(left, right, func(a, b float64) bool { return a > b })
	case ">=":
		return compareNumbers(left, right, func(a, b float64) bool { return a >= b })
	case "<=":
		return compareNumbers(left, right, func(a, b float64) bool { return a <= b })
	case "+":
		return evalAdd(left, right)
	case "-", "*", "/":
		return evalArith(n.Op, left, right)
	}
	return nil, newError("unknown binary operator %q", n.Op)
}

func compareNumbers(left, right Value, cmp func(a, b float64) bool) (Value, error) {
	ln, lok := left.(Number)
	rn, rok := right.(Number)
	if !lok || !rok {
		return nil, newError("relational comparison requires numbers")
	}
	return Bool(cmp(float64(ln), float64(rn))), nil
}

func evalAdd(left, right Value) (Value, error) {
	ls, lIsStr := left.(String)
	rs, rIsStr := right.(String)
	if lIsStr || rIsStr {
		return String(valueToConcat(left, ls, lIsStr) + valueToConcat(right, rs, rIsStr)), nil
	}
	ln, lok := left.(Number)
	rn, rok := right.(Number)
	if lok && rok {
		return ln + rn, nil
	}
	return nil, newError("'+' requires two numbers or a string operand")
}

func valueToConcat(v Value, s String, isStr bool) string {
	if isStr {
		return string(s)
	}
	return v.String()
}

func evalArith(op string, left, right Value) (Value, error) {
	ln, lok := left.(Number)
	rn, rok := right.(Number)
	if !lok || !rok {
		return nil, newError("%q requires two numbers", op)
	}
	switch op {
	case "-":
		return ln - rn, nil
	case "*":
		return ln * rn, nil
	case "/":
		return ln / rn, nil
	}
	return nil, newError("unknown arithmetic operator %q", op)
}

// strictEquals never coerces across dynamic tags.
func strictEquals(a, b Value) bool {
	if TypeOf(a) != TypeOf(b) {
		return false
	}
	return deepEquals(a, b)
}

// looseEquals pins the host semantic SPEC_FULL.md resolves spec.md's
// open question with: same-tag values compare structurally; different
// tags are unequal except null == undefined (both ways).
func looseEquals(a, b Value) bool {
	_, aUndef := a.(Undefined)
	_, aNull := a.(Null)
	_, bUndef := b.(Undefined)
	_, bNull := b.(Null)
	if (aUndef || aNull) && (bUndef || bNull) {
		return true
	}
	if TypeOf(a) != TypeOf(b) {
		return false
	}
	return deepEquals(a, b)
}

func deepEquals(a, b Value) bool {
	switch av := a.(type) {
	case Undefined:
		_, ok := b.(Undefined)
		return ok
	case Null:
		_, ok := b.(Null)
		return ok
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Number:
		bv, ok := b.(Number)
		return ok && av == bv
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case *Array:
		bv, ok := b.(*Array)
		if !ok || len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i := range av.Elements {
			if !deepEquals(av.Elements[i], bv.Elements[i]) {
				return false
			}
		}
		return true
	case *Object:
		bv, ok := b.(*Object)
		if !ok || len(av.Keys()) != len(bv.Keys()) {
			return false
		}
		for _, k := range av.Keys() {
			if !bv.Has(k) || !deepEquals(av.Get(k), bv.Get(k)) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

func evalAssignment(n *ast.Assignment, rt *Runtime) (Value, error) {
	var newVal Value
	if n.Op == "=" {
		v, err := Eval(n.Value, rt)
		if err != nil {
			return nil, err
		}
		newVal = v
	} else {
		cur, err := Eval(n.Target, rt)
		if err != nil {
			return nil, err
		}
		rhs, err := Eval(n.Value, rt)
		if err != nil {
			return nil, err
		}
		op := strings.TrimSuffix(n.Op, "=")
		switch op {
		case "+":
			newVal, err = evalAdd(cur, rhs)
		default:
			newVal, err = evalArith(op, cur, rhs)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := assignTo(n.Target, newVal, rt); err != nil {
		return nil, err
	}
	return newVal, nil
}

// assignTo writes newVal through target, which must be a Load,
// ArrayAccess, or FieldAccess (spec.md §4.3's Assignment/IncOrDec
// contract); anything else is an illegal-assignment runtime error.
func assignTo(target ast.Expression, newVal Value, rt *Runtime) error {
	switch t := target.(type) {
	case *ast.Load:
		rt.SetLocal(t.Name, newVal)
		return nil
	case *ast.ArrayAccess:
		obj, err := Eval(t.Object, rt)
		if err != nil {
			return err
		}
		idx, err := Eval(t.Index, rt)
		if err != nil {
			return err
		}
		arr, ok := obj.(*Array)
		if !ok {
			return newError("illegal assignment: index target is not an array")
		}
		i := int(idx.(Number))
		if i < 0 {
			return newError("illegal assignment: negative array index")
		}
		for len(arr.Elements) <= i {
			arr.Elements = append(arr.Elements, Undefined{})
		}
		arr.Elements[i] = newVal
		return nil
	case *ast.FieldAccess:
		obj, err := Eval(t.Object, rt)
		if err != nil {
			return err
		}
		rec, ok := obj.(*Object)
		if !ok {
			return newError("illegal assignment: field target is not an object")
		}
		rec.Set(t.Field, newVal)
		return nil
	default:
		return newError("illegal assignment target %T", target)
	}
}

func evalArrayAccess(n *ast.ArrayAccess, rt *Runtime) (Value, error) {
	obj, err := Eval(n.Object, rt)
	if err != nil {
		return nil, err
	}
	idx, err := Eval(n.Index, rt)
	if err != nil {
		return nil, err
	}
	switch o := obj.(type) {
	case *Array:
		num, ok := idx.(Number)
		if !ok {
			return Undefined{}, nil
		}
		i := int(num)
		if i < 0 || i >= len(o.Elements) {
			return Undefined{}, nil
		}
		return o.Elements[i], nil
	case *Object:
		return o.Get(idx.String()), nil
	default:
		return Undefined{}, nil
	}
}

func evalFieldAccess(n *ast.FieldAccess, rt *Runtime) (Value, error) {
	obj, err := Eval(n.Object, rt)
	if err != nil {
		return nil, err
	}
	switch o := obj.(type) {
	case *Object:
		return o.Get(n.Field), nil
	case *Array:
		if n.Field == "length" {
			return Number(len(o.Elements)), nil
		}
		return Undefined{}, nil
	case String:
		if n.Field == "length" {
			return Number(len([]rune(string(o)))), nil
		}
		return Undefined{}, nil
	default:
		return Undefined{}, nil
	}
}

func evalFuncCall(n *ast.FuncCall, rt *Runtime) (Value, error) {
	callee, err := Eval(n.Callee, rt)
	if err != nil {
		return nil, err
	}
	args, err := evalArgs(n.Args, rt)
	if err != nil {
		return nil, err
	}
	return invokeValue(rt, callee, rt.Global, args)
}

func evalMethodCall(n *ast.MethodCall, rt *Runtime) (Value, error) {
	obj, err := Eval(n.Object, rt)
	if err != nil {
		return nil, err
	}
	var callee Value
	switch o := obj.(type) {
	case *Object:
		callee = o.Get(n.FieldName)
	default:
		callee = Undefined{}
	}
	args, err := evalArgs(n.Args, rt)
	if err != nil {
		return nil, err
	}
	return invokeValue(rt, callee, obj, args)
}

// invokeValue dispatches a call through whichever calling convention the
// callee implements: *Closure and host values both route through here so
// FuncCall/MethodCall don't need to know which.
func invokeValue(rt *Runtime, callee Value, thisArg Value, args []Value) (Value, error) {
	switch c := callee.(type) {
	case Callable:
		return c.Invoke(rt, thisArg, args)
	case HostValue:
		return c.Call(thisArg, args)
	default:
		return nil, newError("call target is not callable (%s)", TypeOf(callee))
	}
}

func evalArgs(exprs []ast.Expression, rt *Runtime) ([]Value, error) {
	args := make([]Value, 0, len(exprs))
	for _, e := range exprs {
		v, err := Eval(e, rt)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}

func evalNew(n *ast.New, rt *Runtime) (Value, error) {
	args, err := evalArgs(n.Args, rt)
	if err != nil {
		return nil, err
	}
	return rt.Instantiate(n.ClassName, args)
}

func evalHTML(n *ast.HTML, rt *Runtime) (Value, error) {
	attrs := NewObject()
	for _, a := range n.Attributes {
		v, err := Eval(a.Value, rt)
		if err != nil {
			return nil, err
		}
		attrs.Set(a.Name, v)
	}
	var children []Value
	for _, c := range n.Children {
		v, err := Eval(c, rt)
		if err != nil {
			return nil, err
		}
		children = append(children, v)
	}
	var tag Value = String(n.TagName)
	if n.TagName != "" {
		bound := rt.GetLocal(n.TagName)
		if _, ok := bound.(Callable); ok {
			tag = bound
		}
	}
	return &HtmlElement{TagOrComponent: tag, Attributes: attrs, Children: children}, nil
}

func evalTemplateString(n *ast.TemplateString, rt *Runtime) (Value, error) {
	var out strings.Builder
	for _, part := range n.Parts {
		v, err := Eval(part, rt)
		if err != nil {
			return nil, err
		}
		out.WriteString(v.String())
	}
	return String(out.String()), nil
}

func evalIf(n *ast.If, rt *Runtime) (Value, error) {
	cond, err := Eval(n.Cond, rt)
	if err != nil {
		return nil, err
	}
	if truthy(cond) {
		return Eval(n.Then, rt)
	}
	if n.Else != nil {
		return Eval(n.Else, rt)
	}
	return Undefined{}, nil
}

func evalWhile(n *ast.While, rt *Runtime) (Value, error) {
	var last Value = Undefined{}
	for {
		cond, err := Eval(n.Cond, rt)
		if err != nil {
			return nil, err
		}
		if !truthy(cond) {
			return last, nil
		}
		v, err := Eval(n.Body, rt)
		if err != nil {
			return nil, err
		}
		last = v
	}
}

func evalBlock(n *ast.Block, rt *Runtime) (Value, error) {
	rt.PushScope(nil)
	defer rt.PopScope()
	var last Value = Undefined{}
	for _, stmt := range n.Statements {
		v, err := Eval(stmt, rt)
		if err != nil {
			return nil, err // non-local-return/throw re-propagate after the deferred pop
		}
		last = v
	}
	return last, nil
}

func evalTryCatch(n *ast.TryCatch, rt *Runtime) (v Value, err error) {
	if n.Finally != nil {
		defer func() {
			fv, ferr := Eval(n.Finally, rt)
			if ferr != nil {
				v, err = nil, ferr
				return
			}
			if err == nil {
				v = fv
			}
		}()
	}

	v, err = Eval(n.Try, rt)
	if err == nil {
		return v, nil
	}
	if _, ok := err.(*returnSignal); ok {
		return nil, err // non-local-return is never catchable
	}
	if n.Catch == nil {
		return nil, err
	}
	// Per spec.md §7, try/catch catches any of illegal-assignment/failed-
	// instantiation/host errors in addition to a user throw — everything
	// except the non-local-return signal above. A non-ThrowSignal error
	// binds its message as a string, matching host-raised-exception
	// handling; a ThrowSignal binds its original payload unchanged.
	var caught Value
	if thrown, ok := err.(*ThrowSignal); ok {
		caught = thrown.Value
	} else {
		caught = String(err.Error())
	}
	rt.PushScope(nil)
	if n.CatchName != "" {
		rt.Declare(n.CatchName, caught)
	}
	cv, cerr := Eval(n.Catch, rt)
	rt.PopScope()
	return cv, cerr
}

func evalVarDecl(n *ast.VarDecl, rt *Runtime) (Value, error) {
	var val Value = Undefined{}
	if n.Variable.Default != nil {
		v, err := Eval(n.Variable.Default, rt)
		if err != nil {
			return nil, err
		}
		val = v
	}
	switch n.Variable.Kind {
	case ast.Identifier:
		rt.Declare(n.Variable.Name, val)
	case ast.DestructureArray:
		if err := destructureArray(rt, n.Variable.Elements, val); err != nil {
			return nil, err
		}
	case ast.DestructureObject:
		if err := destructureObject(rt, n.Variable.Elements, val); err != nil {
			return nil, err
		}
	}
	return Undefined{}, nil
}
