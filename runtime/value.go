// Package runtime implements the tree-walking evaluator described in
// spec.md §4.3/§4.4: a scope-frame stack, a closure-call stack, a `this`
// register, and the global record, plus the Eval dispatcher that gives
// every ast.Node its evaluate() semantics from outside the ast package
// (which stays pure data, the way the teacher keeps ast free of
// evaluator logic).
package runtime

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Value is a runtime value in the eco interpreter. Concrete variants are
// Undefined, Null, Bool, Number, String, *Array, *Object, *Closure,
// *HtmlElement, and HostValue — the tagged sum from spec.md §9.
type Value interface {
	// Type returns a typeof-independent type tag (see TypeOf for the
	// user-facing typeof string); equality and dispatch use TypeOf and type
	// switches, not Type.
	Type() string
	// String returns the value's string coercion.
	String() string
}

// Undefined is the value of an unbound Load and a missing argument.
type Undefined struct{}

func (Undefined) Type() string   { return "undefined" }
func (Undefined) String() string { return "undefined" }

// Null is the `null` literal.
type Null struct{}

func (Null) Type() string   { return "null" }
func (Null) String() string { return "null" }

// Bool wraps a boolean.
type Bool bool

func (b Bool) Type() string { return "bool" }
func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}

// Number wraps a float64; the language has no separate integer type.
type Number float64

func (Number) Type() string { return "number" }
func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'g', -1, 64)
}

// String wraps a string.
type String string

func (String) Type() string     { return "string" }
func (s String) String() string { return string(s) }

// Array is a mutable, ordered value sequence.
type Array struct {
	Elements []Value
}

func (*Array) Type() string { return "array" }
func (a *Array) String() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Object is a mutable string-keyed record. Keys preserve insertion order
// for Keys() and JSON serialization; String() renders keys sorted.
type Object struct {
	keys   []string
	values map[string]Value
}

// NewObject returns an empty Object.
func NewObject() *Object {
	return &Object{values: map[string]Value{}}
}

func (*Object) Type() string { return "object" }

// Get returns the field value, or Undefined{} if unset.
func (o *Object) Get(key string) Value {
	if v, ok := o.values[key]; ok {
		return v
	}
	return Undefined{}
}

// Has reports whether key is an own property.
func (o *Object) Has(key string) bool {
	_, ok := o.values[key]
	return ok
}

// Set assigns key, appending it to the key order the first time it is seen.
func (o *Object) Set(key string, v Value) {
	if o.values == nil {
		o.values = map[string]Value{}
	}
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Keys returns the own property names in insertion order.
func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

func (o *Object) String() string {
	keys := append([]string(nil), o.keys...)
	sort.Strings(keys) // stable, deterministic rendering; insertion order is kept by Keys()
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, o.values[k].String()))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// HtmlElement is the opaque value `HTML` evaluates to — an external
// collaborator per spec.md §6; eco only carries its shape.
type HtmlElement struct {
	TagOrComponent Value
	Attributes     *Object
	Children       []Value
}

func (*HtmlElement) Type() string   { return "html_element" }
func (*HtmlElement) String() string { return "[object HtmlElement]" }

// HostValue is a value supplied by the embedding host (via the global
// record) that eco code can call through New or FuncCall/MethodCall
// without eco having any notion of its internals.
type HostValue interface {
	Value
	// Call invokes the host value as a function; thisArg is the `this`
	// binding a MethodCall would supply.
	Call(thisArg Value, args []Value) (Value, error)
}

// Instantiator lets a HostValue serve as a `new ClassName(args)` target
// (spec.md §4.3's `New` node, resolved per SPEC_FULL.md's supplemented
// instantiation semantics).
type Instantiator interface {
	Instantiate(args []Value) (Value, error)
}

// Callable is implemented by *Closure. FuncCall/MethodCall dispatch through
// invokeValue's type switch: a Callable is invoked through Invoke, and a
// HostValue that is not Callable through its Call method.
type Callable interface {
	Value
	Invoke(rt *Runtime, thisArg Value, args []Value) (Value, error)
}
