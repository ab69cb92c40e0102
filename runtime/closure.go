package runtime

import "github.com/eco-lang/eco/ast"

// Closure is the callable value a Function expression evaluates to:
// a captured scope snapshot plus the parameter list and body it closes
// over, per spec.md §3. The runtime outlives every closure created
// within it; Closure holds no owning reference back.
type Closure struct {
	Name      string
	Params    []ast.Variable
	Body      ast.Statement
	Captured  Frame
	ThisArg   Value // Value bound at creation time if this is a method-style closure; usually nil
	HasBoundThis bool
}

func (*Closure) Type() string   { return "function" }
func (*Closure) String() string { return "[function]" }

// Invoke implements spec.md §4.3's Function call sequence: push the
// closure, push the captured-scope frame, push a parameter frame, bind
// each argument (honouring destructuring and defaults), evaluate the
// body, and pop everything on every exit path including an unwound
// non-local return.
func (c *Closure) Invoke(rt *Runtime, thisArg Value, args []Value) (Value, error) {
	callThis := thisArg
	if c.HasBoundThis {
		callThis = c.ThisArg
	}
	rt.PushStack(c)
	rt.PushScope(c.Captured)
	rt.PushScope(Frame{})
	rt.SetThis(callThis)
	defer func() {
		rt.PopThis()
		rt.PopScope()
		rt.PopScope()
		rt.PopStack()
	}()

	for i, param := range c.Params {
		var argVal Value = Undefined{}
		if i < len(args) {
			argVal = args[i]
		}
		if err := bindParameter(rt, param, argVal); err != nil {
			return nil, err
		}
	}

	val, err := Eval(c.Body, rt)
	if err != nil {
		if signal, ok := err.(*returnSignal); ok {
			return signal.value, nil
		}
		return nil, err
	}
	return val, nil
}

// bindParameter assigns argVal to param in the current (parameter)
// frame, honouring destructuring and per-element/per-parameter defaults:
// a missing argument (Undefined{}) falls back to the default expression,
// evaluated in the parameter frame itself.
func bindParameter(rt *Runtime, param ast.Variable, argVal Value) error {
	if _, isUndef := argVal.(Undefined); isUndef && param.Default != nil {
		v, err := Eval(param.Default, rt)
		if err != nil {
			return err
		}
		argVal = v
	}
	switch param.Kind {
	case ast.Identifier:
		rt.Declare(param.Name, argVal)
		return nil
	case ast.DestructureArray:
		return destructureArray(rt, param.Elements, argVal)
	case ast.DestructureObject:
		return destructureObject(rt, param.Elements, argVal)
	}
	return nil
}

func destructureArray(rt *Runtime, elems []ast.DestructuredValue, val Value) error {
	arr, _ := val.(*Array)
	var items []Value
	if arr != nil {
		items = arr.Elements
	}
	idx := 0
	for _, el := range elems {
		if el.IsHole {
			idx++
			continue
		}
		if el.IsRest {
			var rest []Value
			if idx < len(items) {
				rest = append(rest, items[idx:]...)
			}
			rt.Declare(el.Name, &Array{Elements: rest})
			return nil
		}
		var v Value = Undefined{}
		if idx < len(items) {
			v = items[idx]
		}
		if _, isUndef := v.(Undefined); isUndef && el.Default != nil {
			dv, err := Eval(el.Default, rt)
			if err != nil {
				return err
			}
			v = dv
		}
		rt.Declare(el.Name, v)
		idx++
	}
	return nil
}

func destructureObject(rt *Runtime, elems []ast.DestructuredValue, val Value) error {
	obj, _ := val.(*Object)
	for _, el := range elems {
		if el.IsRest {
			rest := NewObject()
			if obj != nil {
				taken := map[string]bool{}
				for _, e := range elems {
					if !e.IsRest {
						taken[e.Name] = true
					}
				}
				for _, k := range obj.Keys() {
					if !taken[k] {
						rest.Set(k, obj.Get(k))
					}
				}
			}
			rt.Declare(el.Name, rest)
			continue
		}
		var v Value = Undefined{}
		if obj != nil {
			v = obj.Get(el.Name)
		}
		if _, isUndef := v.(Undefined); isUndef && el.Default != nil {
			dv, err := Eval(el.Default, rt)
			if err != nil {
				return err
			}
			v = dv
		}
		rt.Declare(el.Name, v)
	}
	return nil
}
